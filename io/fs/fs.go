// Package fs provides a simple read-only interface for a filesystem
package fs

import (
	"fmt"
	"io"
	"io/fs"
	"path"
	"time"

	"github.com/datarhei/jobhistory/glob"
)

var ErrNotExist = fs.ErrNotExist
var ErrIsDir = fmt.Errorf("is a directory")

// FileInfo describes a file and is returned by Stat and List.
type FileInfo interface {
	// Name returns the full name of the file within the filesystem.
	Name() string

	// Size reports the size of the file in bytes.
	Size() int64

	// ModTime returns the time of last modification.
	ModTime() time.Time

	// IsDir returns whether the file represents a directory.
	IsDir() bool
}

// File provides access to a single file.
type File interface {
	io.ReadCloser

	// Name returns the Name of the file.
	Name() string

	// Stat returns the FileInfo to this file. In case of an error FileInfo is nil
	// and the error is non-nil.
	Stat() (FileInfo, error)
}

// ReadFilesystem is an interface that provides read access to a filesystem.
type ReadFilesystem interface {
	// Name returns the name of the filesystem.
	Name() string

	// Type returns the type of the filesystem, e.g. disk, mem, s3
	Type() string

	// Open returns the file stored at the given path. The caller
	// has to close the file.
	Open(path string) (File, error)

	// ReadFile reads the content of the file at the given path.
	ReadFile(path string) ([]byte, error)

	// Stat returns info about the file at path. If the file doesn't exist, an error
	// will be returned.
	Stat(path string) (FileInfo, error)

	// List returns the files directly in the directory dir whose base name
	// matches the glob pattern. An empty pattern matches all files. Directories
	// are not listed. The files are returned in the order the underlying storage
	// lists them; this order is not necessarily sorted.
	List(dir, pattern string) ([]FileInfo, error)
}

// matcher compiles the pattern for matching base names. A nil matcher
// matches everything.
func matcher(pattern string) (glob.Glob, error) {
	if len(pattern) == 0 {
		return nil, nil
	}

	g, err := glob.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid pattern '%s': %w", pattern, err)
	}

	return g, nil
}

func matches(g glob.Glob, name string) bool {
	if g == nil {
		return true
	}

	return g.Match(path.Base(name))
}

// cleanPath returns the path as absolute path within the filesystem.
func cleanPath(p string) string {
	return path.Clean("/" + p)
}
