package vfs

import (
	"fmt"
	"io"
	"sync"
)

// CopyOnWrite overlays a writable layer on a base file system. Reads fall
// through to the base; writes and creations land in the layer; removals
// of base entries are recorded as whiteouts. The base is never modified.
//
// Layer entries are always visible. A base entry is visible unless it or
// one of its parents has a whiteout.
type CopyOnWrite struct {
	base  FileSystem
	layer FileSystem

	mu        sync.RWMutex
	whiteouts map[string]bool
}

// NewCopyOnWrite overlays layer on base. A nil layer uses a fresh Mem.
func NewCopyOnWrite(base, layer FileSystem) *CopyOnWrite {
	if layer == nil {
		layer = NewMem()
	}
	return &CopyOnWrite{base: base, layer: layer, whiteouts: make(map[string]bool)}
}

func (c *CopyOnWrite) hidden(p string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for dir := p; ; dir = parent(dir) {
		if c.whiteouts[dir] {
			return true
		}
		if dir == "/" {
			return false
		}
	}
}

func (c *CopyOnWrite) inBase(p string) (bool, error) {
	if c.hidden(p) {
		return false, nil
	}
	return c.base.Exists(p)
}

func (c *CopyOnWrite) Open(name string) (File, error) {
	p := clean(name)
	if ok, err := c.layer.Exists(p); err != nil {
		return nil, err
	} else if ok {
		return c.layer.Open(p)
	}
	if c.hidden(p) {
		return nil, notExist("open", name)
	}
	f, err := c.base.Open(p)
	if err != nil {
		return nil, err
	}
	return &cowFile{cow: c, path: p, base: f}, nil
}

func (c *CopyOnWrite) Exists(name string) (bool, error) {
	p := clean(name)
	if ok, err := c.layer.Exists(p); err != nil || ok {
		return ok, err
	}
	return c.inBase(p)
}

func (c *CopyOnWrite) Create(name string) (File, error) {
	p := clean(name)
	if ok, err := c.Exists(p); err != nil {
		return nil, err
	} else if ok {
		return nil, exist("create", name)
	}
	c.mu.Lock()
	delete(c.whiteouts, p)
	c.mu.Unlock()
	return c.layer.Create(p)
}

func (c *CopyOnWrite) CreateDir(name string) error {
	p := clean(name)
	c.mu.Lock()
	delete(c.whiteouts, p)
	c.mu.Unlock()
	return c.layer.CreateDir(p)
}

// copyUp copies a base file into the layer so it can be modified.
func (c *CopyOnWrite) copyUp(p string) error {
	if ok, err := c.layer.Exists(p); err != nil || ok {
		return err
	}
	if dir := parent(p); dir != "/" {
		if err := c.layer.CreateDir(dir); err != nil {
			return err
		}
	}
	return copyFile(c.base, p, c.layer, p)
}

func (c *CopyOnWrite) Move(from, to string) error {
	src, dst := clean(from), clean(to)
	inLayer, err := c.layer.Exists(src)
	if err != nil {
		return err
	}
	if !inLayer {
		ok, err := c.inBase(src)
		if err != nil {
			return err
		}
		if !ok {
			return notExist("rename", from)
		}
		if err := c.copyUp(src); err != nil {
			return fmt.Errorf("rename %s: %w", from, err)
		}
	}
	if err := c.layer.Move(src, dst); err != nil {
		return err
	}
	c.mu.Lock()
	delete(c.whiteouts, dst)
	c.mu.Unlock()
	return c.whiteout(src)
}

// whiteout hides p in the base if the base has it.
func (c *CopyOnWrite) whiteout(p string) error {
	ok, err := c.inBase(p)
	if err != nil || !ok {
		return err
	}
	c.mu.Lock()
	c.whiteouts[p] = true
	c.mu.Unlock()
	return nil
}

func (c *CopyOnWrite) RemoveFile(name string) error {
	p := clean(name)
	inLayer, err := c.layer.Exists(p)
	if err != nil {
		return err
	}
	inBase, err := c.inBase(p)
	if err != nil {
		return err
	}
	if !inLayer && !inBase {
		return notExist("remove", name)
	}
	if inLayer {
		if err := c.layer.RemoveFile(p); err != nil {
			return err
		}
	}
	return c.whiteout(p)
}

func (c *CopyOnWrite) RemoveDir(name string) error {
	p := clean(name)
	inLayer, err := c.layer.Exists(p)
	if err != nil {
		return err
	}
	inBase, err := c.inBase(p)
	if err != nil {
		return err
	}
	if !inLayer && !inBase {
		return notExist("remove", name)
	}
	if inLayer {
		if err := c.layer.RemoveDir(p); err != nil {
			return err
		}
	}
	return c.whiteout(p)
}

// cowFile reads from the base until the first write, which copies the
// file into the layer and continues there at the same offset.
type cowFile struct {
	cow  *CopyOnWrite
	path string
	base File
	up   File
}

func (f *cowFile) current() File {
	if f.up != nil {
		return f.up
	}
	return f.base
}

func (f *cowFile) Read(p []byte) (int, error) { return f.current().Read(p) }

func (f *cowFile) Seek(offset int64, whence int) (int64, error) {
	return f.current().Seek(offset, whence)
}

func (f *cowFile) Write(p []byte) (int, error) {
	if f.up == nil {
		off, err := f.base.Seek(0, io.SeekCurrent)
		if err != nil {
			return 0, err
		}
		if err := f.cow.copyUp(f.path); err != nil {
			return 0, err
		}
		up, err := f.cow.layer.Open(f.path)
		if err != nil {
			return 0, err
		}
		if _, err := up.Seek(off, io.SeekStart); err != nil {
			up.Close()
			return 0, err
		}
		f.up = up
	}
	return f.up.Write(p)
}

func (f *cowFile) Close() error {
	err := f.base.Close()
	if f.up != nil {
		if uerr := f.up.Close(); err == nil {
			err = uerr
		}
	}
	return err
}
