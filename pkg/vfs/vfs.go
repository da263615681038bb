// Package vfs provides the file systems classes are loaded from: the host
// file system, a directory-rooted view of another file system, an
// in-memory file system, a copy-on-write overlay, and read-only jar and
// jmod archives.
//
// Paths are slash-separated. Not-found errors wrap fs.ErrNotExist and
// already-exists errors wrap fs.ErrExist.
package vfs

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path"
	"strings"
)

var (
	// ErrReadOnly is returned by write operations on read-only backends.
	ErrReadOnly = errors.New("vfs: read-only file system")

	// ErrOutsideBase is returned when a path climbs above a BasePath root.
	ErrOutsideBase = errors.New("vfs: path escapes base directory")

	// ErrNotEmpty is returned when removing a directory that has entries.
	ErrNotEmpty = errors.New("vfs: directory not empty")

	// ErrIsDir is returned when a file operation names a directory.
	ErrIsDir = errors.New("vfs: is a directory")

	// ErrNotDir is returned when a directory operation names a file.
	ErrNotDir = errors.New("vfs: not a directory")
)

// File is an open file.
type File interface {
	io.Reader
	io.Writer
	io.Seeker
	io.Closer
}

// FileSystem is the byte-source abstraction class loading reads through.
type FileSystem interface {
	// Open opens an existing file.
	Open(name string) (File, error)
	// Exists reports whether a file or directory exists.
	Exists(name string) (bool, error)
	// Create creates a new empty file. It fails if name exists.
	Create(name string) (File, error)
	// CreateDir creates a directory and any missing parents.
	CreateDir(name string) error
	// Move renames a file or directory.
	Move(from, to string) error
	// RemoveFile removes a file.
	RemoveFile(name string) error
	// RemoveDir removes an empty directory.
	RemoveDir(name string) error
}

// ReadFile reads the whole named file.
func ReadFile(fsys FileSystem, name string) ([]byte, error) {
	f, err := fsys.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

// WriteFile creates name with the given contents.
func WriteFile(fsys FileSystem, name string, data []byte) error {
	f, err := fsys.Create(name)
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// clean normalizes a path to the rooted form used as a map key by the
// in-memory backends.
func clean(name string) string {
	return path.Clean("/" + name)
}

// within reports whether name is dir or below it. Both must be clean.
func within(name, dir string) bool {
	if dir == "/" {
		return true
	}
	return name == dir || strings.HasPrefix(name, dir+"/")
}

func notExist(op, name string) error {
	return &fs.PathError{Op: op, Path: name, Err: fs.ErrNotExist}
}

func exist(op, name string) error {
	return &fs.PathError{Op: op, Path: name, Err: fs.ErrExist}
}

func pathError(op, name string, err error) error {
	return &fs.PathError{Op: op, Path: name, Err: err}
}

// copyFile copies src in from to dst in to, creating dst.
func copyFile(from FileSystem, src string, to FileSystem, dst string) error {
	data, err := ReadFile(from, src)
	if err != nil {
		return err
	}
	if err := WriteFile(to, dst, data); err != nil {
		return fmt.Errorf("copy %s: %w", src, err)
	}
	return nil
}
