package vfs

import (
	"path"
	"path/filepath"
	"strings"
)

// BasePath exposes the subtree of another file system rooted at a
// directory. Every path is interpreted relative to the root.
type BasePath struct {
	root string
	fs   FileSystem
}

// NewBasePath roots fsys at root.
func NewBasePath(root string, fsys FileSystem) *BasePath {
	return &BasePath{root: root, fs: fsys}
}

func (b *BasePath) resolve(op, name string) (string, error) {
	rel := path.Clean(strings.TrimLeft(filepath.ToSlash(name), "/"))
	if rel == ".." || strings.HasPrefix(rel, "../") {
		return "", pathError(op, name, ErrOutsideBase)
	}
	if rel == "." {
		return b.root, nil
	}
	return filepath.Join(b.root, filepath.FromSlash(rel)), nil
}

func (b *BasePath) Open(name string) (File, error) {
	p, err := b.resolve("open", name)
	if err != nil {
		return nil, err
	}
	return b.fs.Open(p)
}

func (b *BasePath) Exists(name string) (bool, error) {
	p, err := b.resolve("stat", name)
	if err != nil {
		return false, err
	}
	return b.fs.Exists(p)
}

func (b *BasePath) Create(name string) (File, error) {
	p, err := b.resolve("create", name)
	if err != nil {
		return nil, err
	}
	return b.fs.Create(p)
}

func (b *BasePath) CreateDir(name string) error {
	p, err := b.resolve("mkdir", name)
	if err != nil {
		return err
	}
	return b.fs.CreateDir(p)
}

func (b *BasePath) Move(from, to string) error {
	src, err := b.resolve("rename", from)
	if err != nil {
		return err
	}
	dst, err := b.resolve("rename", to)
	if err != nil {
		return err
	}
	return b.fs.Move(src, dst)
}

func (b *BasePath) RemoveFile(name string) error {
	p, err := b.resolve("remove", name)
	if err != nil {
		return err
	}
	return b.fs.RemoveFile(p)
}

func (b *BasePath) RemoveDir(name string) error {
	p, err := b.resolve("remove", name)
	if err != nil {
		return err
	}
	return b.fs.RemoveDir(p)
}
