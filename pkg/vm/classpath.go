package vm

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/daimatz/classvm/pkg/vfs"
)

// ClassPathEntry is one place class files are read from.
type ClassPathEntry interface {
	// ReadClass returns the bytes of the class with the given internal
	// name. A missing class is reported with ErrClassNotFound.
	ReadClass(name string) ([]byte, error)
	String() string
}

type dirEntry struct {
	fs vfs.FileSystem
}

// Dir returns an entry that maps a/b/C to a/b/C.class on fsys.
func Dir(fsys vfs.FileSystem) ClassPathEntry {
	return &dirEntry{fs: fsys}
}

func (d *dirEntry) ReadClass(name string) ([]byte, error) {
	data, err := vfs.ReadFile(d.fs, name+".class")
	if errors.Is(err, fs.ErrNotExist) || errors.Is(err, vfs.ErrIsDir) {
		return nil, fmt.Errorf("%w: %s", ErrClassNotFound, name)
	}
	return data, err
}

func (d *dirEntry) String() string { return fmt.Sprintf("dir(%T)", d.fs) }

type archiveEntry struct {
	archive *vfs.Archive
	prefix  string
}

// Archive returns an entry reading from a jar or jmod. Classes in a jmod
// live under classes/.
func Archive(a *vfs.Archive) ClassPathEntry {
	e := &archiveEntry{archive: a}
	if a.IsJmod() {
		e.prefix = "classes/"
	}
	return e
}

func (e *archiveEntry) ReadClass(name string) ([]byte, error) {
	data, err := vfs.ReadFile(e.archive, e.prefix+name+".class")
	if errors.Is(err, fs.ErrNotExist) || errors.Is(err, vfs.ErrIsDir) {
		return nil, fmt.Errorf("%w: %s", ErrClassNotFound, name)
	}
	return data, err
}

func (e *archiveEntry) String() string { return "archive(" + e.prefix + ")" }

// ClassPath is an ordered list of entries. The first entry holding a class
// wins.
type ClassPath []ClassPathEntry

// ReadClass searches the entries in order.
func (cp ClassPath) ReadClass(name string) ([]byte, error) {
	for _, e := range cp {
		data, err := e.ReadClass(name)
		if err == nil {
			return data, nil
		}
		if !errors.Is(err, ErrClassNotFound) {
			return nil, fmt.Errorf("%s: %w", e, err)
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrClassNotFound, name)
}

// ParseClassPath builds a class path on the host file system from a
// list separated by the OS path list separator. Elements ending in .jar,
// .zip or .jmod are opened as archives with the given cache size; other
// elements are directories.
func ParseClassPath(list string, archiveCache int) (ClassPath, error) {
	host := vfs.NewOS()
	var cp ClassPath
	for _, elem := range filepath.SplitList(list) {
		if elem == "" {
			continue
		}
		switch strings.ToLower(filepath.Ext(elem)) {
		case ".jar", ".zip", ".jmod":
			a, err := vfs.OpenArchive(host, elem, archiveCache)
			if err != nil {
				return nil, fmt.Errorf("classpath: %w", err)
			}
			cp = append(cp, Archive(a))
		default:
			cp = append(cp, Dir(vfs.NewBasePath(elem, host)))
		}
	}
	return cp, nil
}
