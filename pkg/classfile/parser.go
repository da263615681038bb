package classfile

import (
	"bytes"
	"fmt"
	"io"
	"os"
)

const classMagic = 0xCAFEBABE

// ParseFile opens and parses a .class file from the given path.
func ParseFile(path string) (*ClassFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Parse(f)
}

// ParseBytes parses a class file held in memory.
func ParseBytes(data []byte) (*ClassFile, error) {
	return Parse(bytes.NewReader(data))
}

// Parse reads a .class file from the given reader and returns a ClassFile.
// The reader is consumed sequentially; wrap it in a bufio.Reader if it is
// unbuffered. On error no partial ClassFile is returned and the error is a
// *ParseError unless the underlying reader itself failed.
func Parse(src io.Reader) (*ClassFile, error) {
	r := newReader(src)
	cf := &ClassFile{}

	magic, err := r.u4()
	if err != nil {
		return nil, withContext(err, "magic")
	}
	if magic != classMagic {
		return nil, &ParseError{
			Kind:   InvalidMagicValue,
			Detail: fmt.Sprintf("0x%08X (expected 0xCAFEBABE)", magic),
		}
	}

	if cf.MinorVersion, err = r.u2(); err != nil {
		return nil, withContext(err, "minor_version")
	}
	if cf.MajorVersion, err = r.u2(); err != nil {
		return nil, withContext(err, "major_version")
	}

	cpCount, err := r.u2()
	if err != nil {
		return nil, withContext(err, "constant_pool_count")
	}
	if cf.ConstantPool, err = parseConstantPool(r, cpCount); err != nil {
		return nil, err
	}

	flags, err := r.u2()
	if err != nil {
		return nil, withContext(err, "access_flags")
	}
	cf.AccessFlags = NewClassAccessFlags(flags)

	if cf.ThisClass, err = r.u2(); err != nil {
		return nil, withContext(err, "this_class")
	}
	if cf.SuperClass, err = r.u2(); err != nil {
		return nil, withContext(err, "super_class")
	}
	if cf.Interfaces, err = r.u2s(); err != nil {
		return nil, withContext(err, "interfaces")
	}

	if cf.Fields, err = parseFields(r, cf.ConstantPool); err != nil {
		return nil, err
	}
	if cf.Methods, err = parseMethods(r, cf.ConstantPool); err != nil {
		return nil, err
	}
	if cf.Attributes, err = parseAttributes(r, cf.ConstantPool); err != nil {
		return nil, withContext(err, "class")
	}

	return cf, nil
}

// parseMember reads the fields shared by field_info and method_info.
func parseMember(r *reader, pool *ConstantPool) (flags, nameIndex, descIndex uint16, attrs Attributes, err error) {
	if flags, err = r.u2(); err != nil {
		return
	}
	if nameIndex, err = r.u2(); err != nil {
		return
	}
	if descIndex, err = r.u2(); err != nil {
		return
	}
	attrs, err = parseAttributes(r, pool)
	return
}

func parseFields(r *reader, pool *ConstantPool) ([]FieldInfo, error) {
	count, err := r.u2()
	if err != nil {
		return nil, withContext(err, "fields_count")
	}
	fields := make([]FieldInfo, count)
	for i := range fields {
		flags, nameIndex, descIndex, attrs, err := parseMember(r, pool)
		if err != nil {
			return nil, withContext(err, fmt.Sprintf("field[%d]", i))
		}
		fields[i] = FieldInfo{
			AccessFlags:     NewFieldAccessFlags(flags),
			NameIndex:       nameIndex,
			DescriptorIndex: descIndex,
			Attributes:      attrs,
		}
	}
	return fields, nil
}

func parseMethods(r *reader, pool *ConstantPool) ([]MethodInfo, error) {
	count, err := r.u2()
	if err != nil {
		return nil, withContext(err, "methods_count")
	}
	methods := make([]MethodInfo, count)
	for i := range methods {
		flags, nameIndex, descIndex, attrs, err := parseMember(r, pool)
		if err != nil {
			return nil, withContext(err, fmt.Sprintf("method[%d]", i))
		}
		methods[i] = MethodInfo{
			AccessFlags:     NewMethodAccessFlags(flags),
			NameIndex:       nameIndex,
			DescriptorIndex: descIndex,
			Attributes:      attrs,
		}
	}
	return methods, nil
}
