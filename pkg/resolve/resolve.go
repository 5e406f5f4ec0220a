// Package resolve maps paths printed by the oracle tool to files on disk.
package resolve

import (
	"os"
	"path/filepath"
	"time"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
)

// File is a handle to a file that exists on the resolver's filesystem.
type File struct {
	// Path is the absolute, cleaned path of the file.
	Path string `json:"path"`

	// Size is the file size in bytes.
	Size int64 `json:"size"`

	// ModTime is the last modification time reported by the filesystem.
	ModTime time.Time `json:"mod_time"`

	// IsDir is true when the path names a directory.
	IsDir bool `json:"is_dir"`
}

// Resolver looks up paths on a billy filesystem. Relative paths are joined
// to the working directory the resolver was created with.
//
// Resolve has no side effects, so a Resolver may be shared between streams.
type Resolver struct {
	fs      billy.Filesystem
	workDir string
}

// New creates a Resolver over fs. workDir anchors relative paths and should be
// absolute; an empty workDir means "/".
func New(fs billy.Filesystem, workDir string) *Resolver {
	if workDir == "" {
		workDir = string(filepath.Separator)
	}
	return &Resolver{
		fs:      fs,
		workDir: filepath.Clean(workDir),
	}
}

// NewOS creates a Resolver backed by the host filesystem. An empty workDir
// uses the process working directory.
func NewOS(workDir string) (*Resolver, error) {
	if workDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, err
		}
		workDir = wd
	}
	abs, err := filepath.Abs(workDir)
	if err != nil {
		return nil, err
	}
	return New(osfs.New(string(filepath.Separator)), abs), nil
}

// Resolve returns a handle for path, or nil when nothing exists there.
func (r *Resolver) Resolve(path string) *File {
	if path == "" {
		return nil
	}
	abs := r.Abs(path)

	info, err := r.fs.Stat(abs)
	if err != nil {
		return nil
	}

	return &File{
		Path:    abs,
		Size:    info.Size(),
		ModTime: info.ModTime(),
		IsDir:   info.IsDir(),
	}
}

// Abs returns path made absolute against the resolver's working directory.
func (r *Resolver) Abs(path string) string {
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Join(r.workDir, path)
}

// WorkDir returns the directory relative paths are resolved against.
func (r *Resolver) WorkDir() string {
	return r.workDir
}

// Filesystem returns the underlying filesystem.
func (r *Resolver) Filesystem() billy.Filesystem {
	return r.fs
}
