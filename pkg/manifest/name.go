package manifest

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gosimple/slug"
)

// MaxNameLength is the longest application name the control plane accepts.
const MaxNameLength = 63

// ErrInvalidName is matched by every *NameError.
var ErrInvalidName = errors.New("invalid application name")

// NameError describes why an application name was rejected.
type NameError struct {
	Name       string
	Reason     string
	Suggestion string
}

func (e *NameError) Error() string {
	msg := fmt.Sprintf("invalid application name %q: %s", e.Name, e.Reason)
	if e.Suggestion != "" && e.Suggestion != e.Name {
		msg += fmt.Sprintf(" (try %q)", e.Suggestion)
	}
	return msg
}

// Is lets errors.Is(err, ErrInvalidName) match.
func (e *NameError) Is(target error) bool {
	return target == ErrInvalidName
}

// ValidateName checks the syntactic rules for application names: non-empty,
// at most 63 characters, lowercase letters, digits and hyphens only, and no
// leading or trailing hyphen.
func ValidateName(name string) error {
	fail := func(reason string) error {
		return &NameError{Name: name, Reason: reason, Suggestion: SuggestName(name)}
	}

	if name == "" {
		return fail("name cannot be empty")
	}
	if len(name) > MaxNameLength {
		return fail(fmt.Sprintf("name cannot exceed %d characters", MaxNameLength))
	}
	for _, r := range name {
		if !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9' || r == '-') {
			return fail("only lowercase letters, numbers, and hyphens are allowed")
		}
	}
	if strings.HasPrefix(name, "-") || strings.HasSuffix(name, "-") {
		return fail("name cannot start or end with a hyphen")
	}

	return nil
}

// SuggestName turns an arbitrary package name (e.g. "@acme/My App") into a
// candidate that passes ValidateName. It returns "" when nothing usable remains.
func SuggestName(name string) string {
	name = strings.TrimPrefix(strings.TrimSpace(name), "@")
	s := slug.Make(strings.ReplaceAll(name, "/", "-"))
	s = strings.ReplaceAll(s, "_", "-")
	if len(s) > MaxNameLength {
		s = s[:MaxNameLength]
	}
	return strings.Trim(s, "-")
}

// FindProjectRoot walks up from start until it finds a directory containing
// package.json.
func FindProjectRoot(start string) (string, error) {
	dir, err := filepath.Abs(start)
	if err != nil {
		return "", fmt.Errorf("failed to resolve path %s: %w", start, err)
	}

	for {
		if info, err := os.Stat(filepath.Join(dir, FileName)); err == nil && !info.IsDir() {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("%w: no %s found in %s or any parent directory", ErrMissingManifest, FileName, start)
		}
		dir = parent
	}
}
