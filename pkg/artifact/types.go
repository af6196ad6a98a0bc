package artifact

import (
	"path/filepath"
	"time"
)

// Artifact is a packaged, compressed archive representing one deployable build.
// It is owned by a single pipeline run and removed when that run ends.
type Artifact struct {
	// Path is the archive location on disk
	Path string `json:"path"`

	// AppName is the application the archive was built for
	AppName string `json:"app_name"`

	// Version is the manifest version that was packaged
	Version string `json:"version"`

	// Size is the archive size in bytes
	Size int64 `json:"size"`

	// Entries is the number of files, directories and links written
	Entries int `json:"entries"`

	// BuildTime is when the archive was written
	BuildTime time.Time `json:"build_time"`
}

// FileName returns the base name of the archive
func (a *Artifact) FileName() string {
	return filepath.Base(a.Path)
}
