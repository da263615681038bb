package vm

import (
	"fmt"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/daimatz/classvm/pkg/classfile"
)

// ClassLoader loads classes by internal name.
type ClassLoader interface {
	// FindClass returns a class this loader has already loaded. It never
	// reads the class path and reports ErrClassNotFound otherwise.
	FindClass(name string) (*Class, error)

	// FindOrLoadClass returns the loaded class, reading and decoding it
	// from the class path on first use.
	FindOrLoadClass(name string) (*Class, error)
}

// BootstrapClassLoader loads classes from a ClassPath. Each class is
// decoded at most once and kept for the loader's lifetime; failed lookups
// are not remembered.
type BootstrapClassLoader struct {
	path ClassPath

	mu      sync.Mutex
	classes map[string]*Class
	loading singleflight.Group
}

// NewBootstrapClassLoader creates a loader over cp.
func NewBootstrapClassLoader(cp ClassPath) *BootstrapClassLoader {
	return &BootstrapClassLoader{
		path:    cp,
		classes: make(map[string]*Class),
	}
}

func (l *BootstrapClassLoader) FindClass(name string) (*Class, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if c, ok := l.classes[name]; ok {
		return c, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrClassNotFound, name)
}

func (l *BootstrapClassLoader) FindOrLoadClass(name string) (*Class, error) {
	if c, err := l.FindClass(name); err == nil {
		return c, nil
	}
	v, err, _ := l.loading.Do(name, func() (any, error) {
		if c, err := l.FindClass(name); err == nil {
			return c, nil
		}
		data, err := l.path.ReadClass(name)
		if err != nil {
			return nil, err
		}
		return l.define(name, data)
	})
	if err != nil {
		return nil, err
	}
	return v.(*Class), nil
}

// DefineClass decodes data and registers it under the name it declares.
func (l *BootstrapClassLoader) DefineClass(data []byte) (*Class, error) {
	return l.define("", data)
}

func (l *BootstrapClassLoader) define(want string, data []byte) (*Class, error) {
	cf, err := classfile.ParseBytes(data)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", want, err)
	}
	c, err := NewClass(cf, l)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", want, err)
	}
	if want != "" && c.Name != want {
		return nil, fmt.Errorf("loading %s: file declares %s", want, c.Name)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.classes[c.Name]; ok {
		return nil, fmt.Errorf("duplicate class definition %s", c.Name)
	}
	l.classes[c.Name] = c
	Logger().Debug("class loaded",
		zap.String("class", c.Name),
		zap.String("super", c.SuperName),
		zap.Uint16("major", cf.MajorVersion))
	return c, nil
}
