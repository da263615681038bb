package vfs

import (
	"errors"
	"io"
	"sort"
	"sync"
)

type memData struct {
	mu  sync.RWMutex
	buf []byte
}

type memEntry struct {
	dir  bool
	data *memData
}

// Mem is an in-memory file system. Files keep their contents after Close
// and every open handle of a path shares them.
type Mem struct {
	mu      sync.RWMutex
	entries map[string]*memEntry
}

// NewMem creates an empty in-memory file system.
func NewMem() *Mem {
	return &Mem{entries: map[string]*memEntry{"/": {dir: true}}}
}

// isDirLocked reports whether p is a directory, explicit or implied by a
// file below it.
func (m *Mem) isDirLocked(p string) bool {
	if e, ok := m.entries[p]; ok {
		return e.dir
	}
	for name := range m.entries {
		if name != p && within(name, p) {
			return true
		}
	}
	return false
}

func (m *Mem) Open(name string) (File, error) {
	p := clean(name)
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.entries[p]
	if !ok {
		if m.isDirLocked(p) {
			return nil, pathError("open", name, ErrIsDir)
		}
		return nil, notExist("open", name)
	}
	if e.dir {
		return nil, pathError("open", name, ErrIsDir)
	}
	return &memFile{data: e.data}, nil
}

func (m *Mem) Exists(name string) (bool, error) {
	p := clean(name)
	m.mu.RLock()
	defer m.mu.RUnlock()
	if _, ok := m.entries[p]; ok {
		return true, nil
	}
	return m.isDirLocked(p), nil
}

func (m *Mem) Create(name string) (File, error) {
	p := clean(name)
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.entries[p]; ok || m.isDirLocked(p) {
		return nil, exist("create", name)
	}
	data := &memData{}
	m.entries[p] = &memEntry{data: data}
	return &memFile{data: data}, nil
}

func (m *Mem) CreateDir(name string) error {
	p := clean(name)
	m.mu.Lock()
	defer m.mu.Unlock()
	for dir := p; ; dir = parent(dir) {
		if e, ok := m.entries[dir]; ok {
			if !e.dir {
				return pathError("mkdir", dir, ErrNotDir)
			}
		} else {
			m.entries[dir] = &memEntry{dir: true}
		}
		if dir == "/" {
			return nil
		}
	}
}

func (m *Mem) Move(from, to string) error {
	src, dst := clean(from), clean(to)
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.entries[src]; !ok && !m.isDirLocked(src) {
		return notExist("rename", from)
	}
	if within(dst, src) && dst != src {
		return pathError("rename", to, errors.New("vfs: cannot move a directory into itself"))
	}
	moved := make(map[string]*memEntry)
	for name, e := range m.entries {
		if within(name, src) {
			moved[dst+name[len(src):]] = e
			delete(m.entries, name)
		}
	}
	for name, e := range moved {
		m.entries[name] = e
	}
	return nil
}

func (m *Mem) RemoveFile(name string) error {
	p := clean(name)
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[p]
	if !ok {
		if m.isDirLocked(p) {
			return pathError("remove", name, ErrIsDir)
		}
		return notExist("remove", name)
	}
	if e.dir {
		return pathError("remove", name, ErrIsDir)
	}
	delete(m.entries, p)
	return nil
}

func (m *Mem) RemoveDir(name string) error {
	p := clean(name)
	m.mu.Lock()
	defer m.mu.Unlock()
	if e, ok := m.entries[p]; ok && !e.dir {
		return pathError("remove", name, ErrNotDir)
	}
	if !m.isDirLocked(p) {
		return notExist("remove", name)
	}
	for n := range m.entries {
		if n != p && within(n, p) {
			return pathError("remove", name, ErrNotEmpty)
		}
	}
	delete(m.entries, p)
	return nil
}

// Paths returns every file path in sorted order.
func (m *Mem) Paths() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []string
	for name, e := range m.entries {
		if !e.dir {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}

func parent(p string) string {
	for i := len(p) - 1; i > 0; i-- {
		if p[i] == '/' {
			return p[:i]
		}
	}
	return "/"
}

// memFile is one open handle with its own offset.
type memFile struct {
	data   *memData
	off    int64
	closed bool
}

func (f *memFile) Read(p []byte) (int, error) {
	if f.closed {
		return 0, errClosed
	}
	f.data.mu.RLock()
	defer f.data.mu.RUnlock()
	if f.off >= int64(len(f.data.buf)) {
		return 0, io.EOF
	}
	n := copy(p, f.data.buf[f.off:])
	f.off += int64(n)
	return n, nil
}

func (f *memFile) Write(p []byte) (int, error) {
	if f.closed {
		return 0, errClosed
	}
	f.data.mu.Lock()
	defer f.data.mu.Unlock()
	end := f.off + int64(len(p))
	if end > int64(len(f.data.buf)) {
		grown := make([]byte, end)
		copy(grown, f.data.buf)
		f.data.buf = grown
	}
	copy(f.data.buf[f.off:], p)
	f.off = end
	return len(p), nil
}

func (f *memFile) Seek(offset int64, whence int) (int64, error) {
	if f.closed {
		return 0, errClosed
	}
	f.data.mu.RLock()
	size := int64(len(f.data.buf))
	f.data.mu.RUnlock()
	var abs int64
	switch whence {
	case io.SeekStart:
		abs = offset
	case io.SeekCurrent:
		abs = f.off + offset
	case io.SeekEnd:
		abs = size + offset
	default:
		return 0, errors.New("vfs: invalid whence")
	}
	if abs < 0 {
		return 0, errors.New("vfs: negative position")
	}
	f.off = abs
	return abs, nil
}

func (f *memFile) Close() error {
	if f.closed {
		return errClosed
	}
	f.closed = true
	return nil
}

var errClosed = errors.New("vfs: file already closed")
