package artifact

import (
	"archive/tar"
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/aetherengine/aether-cli/pkg/detect"
	"github.com/aetherengine/aether-cli/pkg/manifest"
)

// Extension is the archive suffix used for every artifact.
const Extension = "tar.gz"

var (
	// SourceDirs are conventional source and build output directories, packaged recursively.
	SourceDirs = []string{"src", "lib", "dist", "build", "public", "views"}

	// EntryFiles are conventional entry points and companions, packaged when present.
	EntryFiles = []string{"index.js", "server.js", "app.js", "main.js", ".env.example"}
)

// openFile is swapped in tests to simulate read failures.
var openFile = os.Open

// ErrPackaging is matched by every *IOError.
var ErrPackaging = errors.New("packaging failed")

// IOError is a filesystem failure while reading project files or writing the archive.
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("packaging failed: %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

// Is lets errors.Is(err, ErrPackaging) match.
func (e *IOError) Is(target error) bool { return target == ErrPackaging }

// DefaultPath returns a per-run archive path in the system temp directory.
// The nanosecond timestamp keeps concurrent runs for the same app apart.
func DefaultPath(appName string) string {
	return filepath.Join(os.TempDir(), fmt.Sprintf("%s-%d.%s", appName, time.Now().UnixNano(), Extension))
}

// Packager writes deployable archives from a project directory.
type Packager struct {
	logger hclog.Logger
}

// NewPackager creates a Packager
func NewPackager(logger hclog.Logger) *Packager {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Packager{logger: logger}
}

// Pack archives projectDir into dest (DefaultPath when empty). Only these
// paths are ever included, each skipped silently when absent:
//
//  1. package.json
//  2. any lock file
//  3. node_modules, recursively
//  4. SourceDirs, recursively
//  5. EntryFiles
//
// On any error the partially written archive is removed.
func (p *Packager) Pack(projectDir string, m *manifest.Manifest, dest string) (art *Artifact, err error) {
	if dest == "" {
		dest = DefaultPath(m.Name)
	}

	f, err := os.OpenFile(dest, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0600)
	if err != nil {
		return nil, &IOError{Op: "create", Path: dest, Err: err}
	}

	closed := false
	defer func() {
		if err == nil {
			return
		}
		if !closed {
			f.Close()
		}
		if rmErr := os.Remove(dest); rmErr != nil && !os.IsNotExist(rmErr) {
			p.logger.Warn("failed to remove partial archive", "path", dest, "error", rmErr)
		}
	}()

	gz := gzip.NewWriter(f)
	w := &archiveWriter{tw: tar.NewWriter(gz), root: projectDir}

	if err := w.addFile(manifest.FileName); err != nil {
		return nil, err
	}
	for _, lf := range detect.LockFiles() {
		if err := w.addFile(lf); err != nil {
			return nil, err
		}
	}
	if err := w.addDir(detect.DependencyDir); err != nil {
		return nil, err
	}
	for _, dir := range SourceDirs {
		if err := w.addDir(dir); err != nil {
			return nil, err
		}
	}
	for _, file := range EntryFiles {
		if err := w.addFile(file); err != nil {
			return nil, err
		}
	}

	if err := w.tw.Close(); err != nil {
		return nil, &IOError{Op: "finalize tar", Path: dest, Err: err}
	}
	if err := gz.Close(); err != nil {
		return nil, &IOError{Op: "finalize gzip", Path: dest, Err: err}
	}
	closed = true
	if err := f.Close(); err != nil {
		return nil, &IOError{Op: "close", Path: dest, Err: err}
	}

	info, err := os.Stat(dest)
	if err != nil {
		return nil, &IOError{Op: "stat", Path: dest, Err: err}
	}

	p.logger.Info("artifact packaged", "path", dest, "entries", w.count, "size", info.Size())

	return &Artifact{
		Path:      dest,
		AppName:   m.Name,
		Version:   m.Version,
		Size:      info.Size(),
		Entries:   w.count,
		BuildTime: time.Now(),
	}, nil
}

type archiveWriter struct {
	tw    *tar.Writer
	root  string
	count int
}

// addFile adds a single top-level file. Missing paths and directories are skipped.
func (w *archiveWriter) addFile(name string) error {
	path := filepath.Join(w.root, name)
	info, err := os.Lstat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return &IOError{Op: "stat", Path: path, Err: err}
	}
	if info.IsDir() {
		return nil
	}
	return w.add(path, name, info)
}

// addDir adds a top-level directory recursively. Missing paths and plain files are skipped.
func (w *archiveWriter) addDir(name string) error {
	dir := filepath.Join(w.root, name)
	info, err := os.Lstat(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return &IOError{Op: "stat", Path: dir, Err: err}
	}
	if !info.IsDir() {
		return nil
	}

	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return &IOError{Op: "walk", Path: path, Err: walkErr}
		}
		info, err := d.Info()
		if err != nil {
			return &IOError{Op: "stat", Path: path, Err: err}
		}
		rel, err := filepath.Rel(w.root, path)
		if err != nil {
			return &IOError{Op: "resolve", Path: path, Err: err}
		}
		return w.add(path, rel, info)
	})
}

func (w *archiveWriter) add(path, name string, info fs.FileInfo) error {
	mode := info.Mode()
	if !mode.IsRegular() && !mode.IsDir() && mode&fs.ModeSymlink == 0 {
		return nil
	}

	var link string
	if mode&fs.ModeSymlink != 0 {
		target, err := os.Readlink(path)
		if err != nil {
			return &IOError{Op: "readlink", Path: path, Err: err}
		}
		link = target
	}

	hdr, err := tar.FileInfoHeader(info, link)
	if err != nil {
		return &IOError{Op: "header", Path: path, Err: err}
	}
	hdr.Name = filepath.ToSlash(name)
	if mode.IsDir() {
		hdr.Name += "/"
	}

	if err := w.tw.WriteHeader(hdr); err != nil {
		return &IOError{Op: "write header", Path: path, Err: err}
	}
	w.count++

	if !mode.IsRegular() {
		return nil
	}

	src, err := openFile(path)
	if err != nil {
		return &IOError{Op: "open", Path: path, Err: err}
	}
	defer src.Close()

	if _, err := io.Copy(w.tw, src); err != nil {
		return &IOError{Op: "write", Path: path, Err: err}
	}
	return nil
}

// List returns the entry names of a tar.gz archive in archive order.
func List(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	gzr, err := gzip.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("failed to create gzip reader: %w", err)
	}
	defer gzr.Close()

	tr := tar.NewReader(gzr)
	var names []string
	for {
		header, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read tar header: %w", err)
		}
		names = append(names, header.Name)
	}
	return names, nil
}
