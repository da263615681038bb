package vfs

import (
	"errors"
	"io/fs"
	"os"
)

// OS is the host file system. Paths are passed to the os package as is;
// wrap it in a BasePath to use rooted paths relative to a directory.
type OS struct{}

// NewOS returns the host file system.
func NewOS() OS { return OS{} }

// Open opens name for reading and writing, or for reading only when the
// file is not writable.
func (OS) Open(name string) (File, error) {
	f, err := os.OpenFile(name, os.O_RDWR, 0)
	if errors.Is(err, fs.ErrPermission) {
		return os.Open(name)
	}
	return f, err
}

func (OS) Exists(name string) (bool, error) {
	_, err := os.Stat(name)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, err
}

func (OS) Create(name string) (File, error) {
	return os.OpenFile(name, os.O_RDWR|os.O_CREATE|os.O_EXCL, 0o644)
}

func (OS) CreateDir(name string) error {
	return os.MkdirAll(name, 0o755)
}

func (OS) Move(from, to string) error {
	return os.Rename(from, to)
}

func (OS) RemoveFile(name string) error {
	info, err := os.Stat(name)
	if err != nil {
		return err
	}
	if info.IsDir() {
		return pathError("remove", name, ErrIsDir)
	}
	return os.Remove(name)
}

func (OS) RemoveDir(name string) error {
	info, err := os.Stat(name)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return pathError("remove", name, ErrNotDir)
	}
	return os.Remove(name)
}
