package vfs

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"strings"

	lru "github.com/hashicorp/golang-lru"
	"go.uber.org/zap"
)

// DefaultArchiveCache is the number of inflated entries an Archive keeps.
const DefaultArchiveCache = 256

var jmodMagic = []byte("JM\x01\x00")

// Archive is a read-only view of a jar, zip or jmod file. Inflated
// entries are kept in an LRU cache.
type Archive struct {
	name    string
	files   map[string]*zip.File
	dirs    map[string]bool
	cache   *lru.Cache
	hasJmod bool
}

// OpenArchive reads the archive at name from fsys.
func OpenArchive(fsys FileSystem, name string, cacheSize int) (*Archive, error) {
	data, err := ReadFile(fsys, name)
	if err != nil {
		return nil, fmt.Errorf("archive: reading %s: %w", name, err)
	}
	return NewArchive(name, data, cacheSize)
}

// NewArchive indexes an archive held in memory. A jmod header is skipped.
func NewArchive(name string, data []byte, cacheSize int) (*Archive, error) {
	jmod := bytes.HasPrefix(data, jmodMagic)
	if jmod {
		data = data[len(jmodMagic):]
	}
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("archive: opening %s: %w", name, err)
	}
	if cacheSize <= 0 {
		cacheSize = DefaultArchiveCache
	}
	cache, err := lru.New(cacheSize)
	if err != nil {
		return nil, fmt.Errorf("archive: %w", err)
	}
	a := &Archive{
		name:    name,
		files:   make(map[string]*zip.File, len(zr.File)),
		dirs:    map[string]bool{"/": true},
		cache:   cache,
		hasJmod: jmod,
	}
	for _, f := range zr.File {
		p := clean(f.Name)
		if strings.HasSuffix(f.Name, "/") {
			a.dirs[p] = true
		} else {
			a.files[p] = f
		}
		for dir := parent(p); dir != "/"; dir = parent(dir) {
			a.dirs[dir] = true
		}
	}
	Logger().Debug("archive opened",
		zap.String("archive", name),
		zap.Int("entries", len(a.files)),
		zap.Bool("jmod", jmod))
	return a, nil
}

// IsJmod reports whether the archive had a jmod header.
func (a *Archive) IsJmod() bool { return a.hasJmod }

func (a *Archive) read(p string) ([]byte, error) {
	if v, ok := a.cache.Get(p); ok {
		return v.([]byte), nil
	}
	f, ok := a.files[p]
	if !ok {
		return nil, notExist("open", p)
	}
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("archive: opening %s in %s: %w", f.Name, a.name, err)
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("archive: inflating %s in %s: %w", f.Name, a.name, err)
	}
	a.cache.Add(p, data)
	return data, nil
}

func (a *Archive) Open(name string) (File, error) {
	p := clean(name)
	if a.dirs[p] {
		return nil, pathError("open", name, ErrIsDir)
	}
	data, err := a.read(p)
	if err != nil {
		return nil, err
	}
	return &readOnlyFile{Reader: bytes.NewReader(data)}, nil
}

func (a *Archive) Exists(name string) (bool, error) {
	p := clean(name)
	_, ok := a.files[p]
	return ok || a.dirs[p], nil
}

func (a *Archive) Create(name string) (File, error) {
	return nil, pathError("create", name, ErrReadOnly)
}

func (a *Archive) CreateDir(name string) error {
	return pathError("mkdir", name, ErrReadOnly)
}

func (a *Archive) Move(from, to string) error {
	return pathError("rename", from, ErrReadOnly)
}

func (a *Archive) RemoveFile(name string) error {
	return pathError("remove", name, ErrReadOnly)
}

func (a *Archive) RemoveDir(name string) error {
	return pathError("remove", name, ErrReadOnly)
}

type readOnlyFile struct {
	*bytes.Reader
}

func (*readOnlyFile) Write([]byte) (int, error) { return 0, ErrReadOnly }
func (*readOnlyFile) Close() error              { return nil }
