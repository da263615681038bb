package classfile

// ClassFile represents a parsed .class file.
type ClassFile struct {
	MinorVersion uint16
	MajorVersion uint16
	ConstantPool *ConstantPool
	AccessFlags  ClassAccessFlags
	ThisClass    uint16
	SuperClass   uint16
	Interfaces   []uint16
	Fields       []FieldInfo
	Methods      []MethodInfo
	Attributes   Attributes
}

// ClassName returns the internal name of this class, e.g. "java/lang/Object".
func (cf *ClassFile) ClassName() (string, error) {
	return cf.ConstantPool.ClassName(cf.ThisClass)
}

// SuperClassName returns the internal name of the super class.
// Returns "" if this is java/lang/Object (SuperClass == 0).
func (cf *ClassFile) SuperClassName() string {
	if cf.SuperClass == 0 {
		return ""
	}
	name, err := cf.ConstantPool.ClassName(cf.SuperClass)
	if err != nil {
		return ""
	}
	return name
}

// InterfaceNames resolves the direct superinterfaces. Unresolvable entries
// are skipped.
func (cf *ClassFile) InterfaceNames() []string {
	names := make([]string, 0, len(cf.Interfaces))
	for _, idx := range cf.Interfaces {
		if name, err := cf.ConstantPool.ClassName(idx); err == nil {
			names = append(names, name)
		}
	}
	return names
}

// FindMethod finds a method by name and descriptor.
func (cf *ClassFile) FindMethod(name, descriptor string) *MethodInfo {
	for i := range cf.Methods {
		m := &cf.Methods[i]
		if m.Name(cf.ConstantPool) == name && m.Descriptor(cf.ConstantPool) == descriptor {
			return m
		}
	}
	return nil
}

// FindMethodByName finds a method by name only (first match).
func (cf *ClassFile) FindMethodByName(name string) *MethodInfo {
	for i := range cf.Methods {
		if cf.Methods[i].Name(cf.ConstantPool) == name {
			return &cf.Methods[i]
		}
	}
	return nil
}

// FindField finds a field by name and descriptor.
func (cf *ClassFile) FindField(name, descriptor string) *FieldInfo {
	for i := range cf.Fields {
		f := &cf.Fields[i]
		if f.Name(cf.ConstantPool) == name && f.Descriptor(cf.ConstantPool) == descriptor {
			return f
		}
	}
	return nil
}

// FieldInfo represents a field in a class file.
type FieldInfo struct {
	AccessFlags     FieldAccessFlags
	NameIndex       uint16
	DescriptorIndex uint16
	Attributes      Attributes
}

// Name resolves the field name, or "" if the index is unusable.
func (f *FieldInfo) Name(pool *ConstantPool) string {
	s, _ := pool.Utf8(f.NameIndex)
	return s
}

// Descriptor resolves the field descriptor, or "" if the index is unusable.
func (f *FieldInfo) Descriptor(pool *ConstantPool) string {
	s, _ := pool.Utf8(f.DescriptorIndex)
	return s
}

// ConstantValue returns the ConstantValue attribute, or nil.
func (f *FieldInfo) ConstantValue() *ConstantValueAttribute {
	c, _ := f.Attributes.Find(AttrConstantValue).(*ConstantValueAttribute)
	return c
}

// MethodInfo represents a method in a class file. A method that is neither
// abstract nor native carries exactly one Code attribute; the decoder does
// not check this.
type MethodInfo struct {
	AccessFlags     MethodAccessFlags
	NameIndex       uint16
	DescriptorIndex uint16
	Attributes      Attributes
}

// Name resolves the method name, or "" if the index is unusable.
func (m *MethodInfo) Name(pool *ConstantPool) string {
	s, _ := pool.Utf8(m.NameIndex)
	return s
}

// Descriptor resolves the method descriptor, or "" if the index is unusable.
func (m *MethodInfo) Descriptor(pool *ConstantPool) string {
	s, _ := pool.Utf8(m.DescriptorIndex)
	return s
}

// Code returns the method body, or nil for abstract and native methods.
func (m *MethodInfo) Code() *CodeAttribute {
	return m.Attributes.Code()
}
