package vm

import (
	"fmt"

	"github.com/daimatz/classvm/pkg/classfile"
)

// Class is a decoded class as defined by a loader. It is immutable; the
// per-VM state (initialization, static fields) lives in the VM's method
// area.
type Class struct {
	Name         string
	File         *classfile.ClassFile
	ConstantPool *classfile.ConstantPool
	Loader       ClassLoader
	SuperName    string
	Interfaces   []string
}

// NewClass wraps a decoded class file.
func NewClass(cf *classfile.ClassFile, loader ClassLoader) (*Class, error) {
	name, err := cf.ClassName()
	if err != nil {
		return nil, fmt.Errorf("resolving this_class: %w", err)
	}
	return &Class{
		Name:         name,
		File:         cf,
		ConstantPool: cf.ConstantPool,
		Loader:       loader,
		SuperName:    cf.SuperClassName(),
		Interfaces:   cf.InterfaceNames(),
	}, nil
}

// FindMethod finds a method declared by this class.
func (c *Class) FindMethod(name, desc string) *classfile.MethodInfo {
	return c.File.FindMethod(name, desc)
}

// IsInterface reports whether the class is an interface.
func (c *Class) IsInterface() bool {
	return c.File.AccessFlags.IsInterface()
}

func (c *Class) String() string { return c.Name }

type classState int

const (
	classLinked classState = iota
	classInitializing
	classInitialized
	classFailed
)

// classData is a class's entry in a VM's method area. Guarded by VM.mu.
type classData struct {
	class       *Class
	state       classState
	initializer *Thread
	statics     map[string]Value
}

// link prepares the static fields of c: ConstantValue attributes give the
// initial value, everything else starts at its default. The caller holds
// the write lock; String constants are interned into h.
func link(c *Class, h *Heap) (*classData, error) {
	cd := &classData{class: c, statics: make(map[string]Value)}
	pool := c.ConstantPool
	for i := range c.File.Fields {
		field := &c.File.Fields[i]
		if !field.AccessFlags.IsStatic() {
			continue
		}
		name, desc := field.Name(pool), field.Descriptor(pool)
		v := zeroValue(desc)
		if cv := field.ConstantValue(); cv != nil {
			entry, err := pool.Get(cv.ConstantValueIndex)
			if err != nil {
				return nil, fmt.Errorf("linking %s.%s: %w", c.Name, name, err)
			}
			switch e := entry.(type) {
			case *classfile.ConstantInteger:
				v = IntValue(e.Value)
			case *classfile.ConstantFloat:
				v = FloatValue(e.Value)
			case *classfile.ConstantLong:
				v = LongValue(e.Value)
			case *classfile.ConstantDouble:
				v = DoubleValue(e.Value)
			case *classfile.ConstantString:
				s, err := pool.Utf8(e.StringIndex)
				if err != nil {
					return nil, fmt.Errorf("linking %s.%s: %w", c.Name, name, err)
				}
				v = RefValue(h.Intern(s))
			default:
				return nil, fmt.Errorf("linking %s.%s: constant of type %s", c.Name, name, entry.Tag())
			}
		}
		cd.statics[name] = v
	}
	return cd, nil
}
