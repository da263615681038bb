package classfile

import (
	"fmt"
	"io"
)

// Attribute names recognised by the decoder. Anything else is skipped.
const (
	AttrConstantValue                        = "ConstantValue"
	AttrCode                                 = "Code"
	AttrStackMapTable                        = "StackMapTable"
	AttrExceptions                           = "Exceptions"
	AttrInnerClasses                         = "InnerClasses"
	AttrEnclosingMethod                      = "EnclosingMethod"
	AttrSynthetic                            = "Synthetic"
	AttrSignature                            = "Signature"
	AttrSourceFile                           = "SourceFile"
	AttrSourceDebugExtension                 = "SourceDebugExtension"
	AttrLineNumberTable                      = "LineNumberTable"
	AttrLocalVariableTable                   = "LocalVariableTable"
	AttrLocalVariableTypeTable               = "LocalVariableTypeTable"
	AttrDeprecated                           = "Deprecated"
	AttrRuntimeVisibleAnnotations            = "RuntimeVisibleAnnotations"
	AttrRuntimeInvisibleAnnotations          = "RuntimeInvisibleAnnotations"
	AttrRuntimeVisibleParameterAnnotations   = "RuntimeVisibleParameterAnnotations"
	AttrRuntimeInvisibleParameterAnnotations = "RuntimeInvisibleParameterAnnotations"
	AttrRuntimeVisibleTypeAnnotations        = "RuntimeVisibleTypeAnnotations"
	AttrRuntimeInvisibleTypeAnnotations      = "RuntimeInvisibleTypeAnnotations"
	AttrAnnotationDefault                    = "AnnotationDefault"
	AttrBootstrapMethods                     = "BootstrapMethods"
	AttrMethodParameters                     = "MethodParameters"
	AttrModule                               = "Module"
	AttrModulePackages                       = "ModulePackages"
	AttrModuleMainClass                      = "ModuleMainClass"
	AttrNestHost                             = "NestHost"
	AttrNestMembers                          = "NestMembers"
	AttrRecord                               = "Record"
	AttrPermittedSubclasses                  = "PermittedSubclasses"
)

// Attribute is one decoded attribute_info structure.
type Attribute interface {
	AttributeName() string
}

// Attributes is an attribute list in class-file order.
type Attributes []Attribute

// Find returns the first attribute with the given name, or nil.
func (as Attributes) Find(name string) Attribute {
	for _, a := range as {
		if a.AttributeName() == name {
			return a
		}
	}
	return nil
}

// Code returns the Code attribute, or nil.
func (as Attributes) Code() *CodeAttribute {
	c, _ := as.Find(AttrCode).(*CodeAttribute)
	return c
}

// SourceFile returns the SourceFile attribute, or nil.
func (as Attributes) SourceFile() *SourceFileAttribute {
	s, _ := as.Find(AttrSourceFile).(*SourceFileAttribute)
	return s
}

// LineNumberTable returns the LineNumberTable attribute, or nil.
func (as Attributes) LineNumberTable() *LineNumberTableAttribute {
	l, _ := as.Find(AttrLineNumberTable).(*LineNumberTableAttribute)
	return l
}

// BootstrapMethods returns the BootstrapMethods attribute, or nil.
func (as Attributes) BootstrapMethods() *BootstrapMethodsAttribute {
	b, _ := as.Find(AttrBootstrapMethods).(*BootstrapMethodsAttribute)
	return b
}

type ConstantValueAttribute struct {
	ConstantValueIndex uint16
}

func (*ConstantValueAttribute) AttributeName() string { return AttrConstantValue }

// CodeAttribute holds a method body.
type CodeAttribute struct {
	MaxStack       uint16
	MaxLocals      uint16
	Code           []byte
	ExceptionTable []ExceptionTableEntry
	Attributes     Attributes
}

func (*CodeAttribute) AttributeName() string { return AttrCode }

// ExceptionTableEntry covers [StartPC, EndPC). CatchType 0 catches everything.
type ExceptionTableEntry struct {
	StartPC   uint16
	EndPC     uint16
	HandlerPC uint16
	CatchType uint16
}

// LineNumber returns the source line for pc, or -1 when unknown.
func (c *CodeAttribute) LineNumber(pc int) int {
	lnt := c.Attributes.LineNumberTable()
	if lnt == nil {
		return -1
	}
	line := -1
	best := -1
	for _, e := range lnt.Entries {
		if int(e.StartPC) <= pc && int(e.StartPC) > best {
			best = int(e.StartPC)
			line = int(e.LineNumber)
		}
	}
	return line
}

type StackMapTableAttribute struct {
	Entries []StackMapFrame
}

func (*StackMapTableAttribute) AttributeName() string { return AttrStackMapTable }

type ExceptionsAttribute struct {
	ExceptionIndexTable []uint16
}

func (*ExceptionsAttribute) AttributeName() string { return AttrExceptions }

type InnerClassesAttribute struct {
	Classes []InnerClass
}

func (*InnerClassesAttribute) AttributeName() string { return AttrInnerClasses }

type InnerClass struct {
	InnerClassInfoIndex   uint16
	OuterClassInfoIndex   uint16
	InnerNameIndex        uint16
	InnerClassAccessFlags InnerClassAccessFlags
}

type EnclosingMethodAttribute struct {
	ClassIndex  uint16
	MethodIndex uint16
}

func (*EnclosingMethodAttribute) AttributeName() string { return AttrEnclosingMethod }

type SyntheticAttribute struct{}

func (*SyntheticAttribute) AttributeName() string { return AttrSynthetic }

type SignatureAttribute struct {
	SignatureIndex uint16
}

func (*SignatureAttribute) AttributeName() string { return AttrSignature }

type SourceFileAttribute struct {
	SourceFileIndex uint16
}

func (*SourceFileAttribute) AttributeName() string { return AttrSourceFile }

type SourceDebugExtensionAttribute struct {
	DebugExtension []byte
}

func (*SourceDebugExtensionAttribute) AttributeName() string { return AttrSourceDebugExtension }

type LineNumberTableAttribute struct {
	Entries []LineNumber
}

func (*LineNumberTableAttribute) AttributeName() string { return AttrLineNumberTable }

type LineNumber struct {
	StartPC    uint16
	LineNumber uint16
}

type LocalVariableTableAttribute struct {
	Entries []LocalVariable
}

func (*LocalVariableTableAttribute) AttributeName() string { return AttrLocalVariableTable }

type LocalVariable struct {
	StartPC         uint16
	Length          uint16
	NameIndex       uint16
	DescriptorIndex uint16
	Index           uint16
}

type LocalVariableTypeTableAttribute struct {
	Entries []LocalVariableType
}

func (*LocalVariableTypeTableAttribute) AttributeName() string { return AttrLocalVariableTypeTable }

type LocalVariableType struct {
	StartPC        uint16
	Length         uint16
	NameIndex      uint16
	SignatureIndex uint16
	Index          uint16
}

type DeprecatedAttribute struct{}

func (*DeprecatedAttribute) AttributeName() string { return AttrDeprecated }

// AnnotationsAttribute is RuntimeVisibleAnnotations or
// RuntimeInvisibleAnnotations, depending on Visible.
type AnnotationsAttribute struct {
	Visible     bool
	Annotations []Annotation
}

func (a *AnnotationsAttribute) AttributeName() string {
	if a.Visible {
		return AttrRuntimeVisibleAnnotations
	}
	return AttrRuntimeInvisibleAnnotations
}

// ParameterAnnotationsAttribute holds one annotation list per parameter.
type ParameterAnnotationsAttribute struct {
	Visible    bool
	Parameters [][]Annotation
}

func (a *ParameterAnnotationsAttribute) AttributeName() string {
	if a.Visible {
		return AttrRuntimeVisibleParameterAnnotations
	}
	return AttrRuntimeInvisibleParameterAnnotations
}

type TypeAnnotationsAttribute struct {
	Visible     bool
	Annotations []TypeAnnotation
}

func (a *TypeAnnotationsAttribute) AttributeName() string {
	if a.Visible {
		return AttrRuntimeVisibleTypeAnnotations
	}
	return AttrRuntimeInvisibleTypeAnnotations
}

type AnnotationDefaultAttribute struct {
	DefaultValue ElementValue
}

func (*AnnotationDefaultAttribute) AttributeName() string { return AttrAnnotationDefault }

type BootstrapMethodsAttribute struct {
	Methods []BootstrapMethod
}

func (*BootstrapMethodsAttribute) AttributeName() string { return AttrBootstrapMethods }

type BootstrapMethod struct {
	MethodRef uint16
	Arguments []uint16
}

type MethodParametersAttribute struct {
	Parameters []MethodParameter
}

func (*MethodParametersAttribute) AttributeName() string { return AttrMethodParameters }

type MethodParameter struct {
	NameIndex   uint16
	AccessFlags MethodParameterAccessFlags
}

type ModuleAttribute struct {
	NameIndex    uint16
	Flags        ModuleFlags
	VersionIndex uint16
	Requires     []ModuleRequires
	Exports      []ModuleExports
	Opens        []ModuleOpens
	Uses         []uint16
	Provides     []ModuleProvides
}

func (*ModuleAttribute) AttributeName() string { return AttrModule }

type ModuleRequires struct {
	RequiresIndex        uint16
	Flags                RequiresFlags
	RequiresVersionIndex uint16
}

type ModuleExports struct {
	ExportsIndex   uint16
	Flags          ExportsFlags
	ExportsToIndex []uint16
}

type ModuleOpens struct {
	OpensIndex   uint16
	Flags        OpensFlags
	OpensToIndex []uint16
}

type ModuleProvides struct {
	ProvidesIndex     uint16
	ProvidesWithIndex []uint16
}

type ModulePackagesAttribute struct {
	PackageIndex []uint16
}

func (*ModulePackagesAttribute) AttributeName() string { return AttrModulePackages }

type ModuleMainClassAttribute struct {
	MainClassIndex uint16
}

func (*ModuleMainClassAttribute) AttributeName() string { return AttrModuleMainClass }

type NestHostAttribute struct {
	HostClassIndex uint16
}

func (*NestHostAttribute) AttributeName() string { return AttrNestHost }

type NestMembersAttribute struct {
	Classes []uint16
}

func (*NestMembersAttribute) AttributeName() string { return AttrNestMembers }

type RecordAttribute struct {
	Components []RecordComponent
}

func (*RecordAttribute) AttributeName() string { return AttrRecord }

type RecordComponent struct {
	NameIndex       uint16
	DescriptorIndex uint16
	Attributes      Attributes
}

type PermittedSubclassesAttribute struct {
	Classes []uint16
}

func (*PermittedSubclassesAttribute) AttributeName() string { return AttrPermittedSubclasses }

// parseAttributes reads a u2 count followed by that many attributes.
// Unrecognised attributes are skipped and left out of the result.
func parseAttributes(r *reader, pool *ConstantPool) (Attributes, error) {
	count, err := r.u2()
	if err != nil {
		return nil, err
	}
	attrs := make(Attributes, 0, count)
	for i := 0; i < int(count); i++ {
		a, err := parseAttribute(r, pool)
		if err != nil {
			return nil, withContext(err, fmt.Sprintf("attributes[%d]", i))
		}
		if a != nil {
			attrs = append(attrs, a)
		}
	}
	return attrs, nil
}

func parseAttribute(r *reader, pool *ConstantPool) (Attribute, error) {
	nameIndex, err := r.u2()
	if err != nil {
		return nil, err
	}
	length, err := r.u4()
	if err != nil {
		return nil, err
	}

	var name string
	resolved := false
	if e, err := pool.Get(nameIndex); err == nil {
		if u, ok := e.(*ConstantUtf8); ok {
			name, resolved = string(u.Bytes), true
		}
	}
	if !resolved {
		return nil, r.fail(InvalidAttributeNameIndex, "name index %d", nameIndex)
	}

	decode, known := attributeDecoders[name]
	if !known {
		if err := r.skip(int64(length)); err != nil {
			return nil, err
		}
		return nil, nil
	}

	if name == AttrConstantValue && length != 2 {
		return nil, r.fail(InvalidAttributeLength, "ConstantValue length %d, expected 2", length)
	}

	var attr Attribute
	err = r.limited(int64(length), func() error {
		var err error
		attr, err = decode(r, pool)
		return err
	})
	if err != nil {
		return nil, withContext(err, name)
	}
	return attr, nil
}

type attributeDecoder func(r *reader, pool *ConstantPool) (Attribute, error)

var attributeDecoders map[string]attributeDecoder

func init() {
	attributeDecoders = map[string]attributeDecoder{
		AttrConstantValue: func(r *reader, _ *ConstantPool) (Attribute, error) {
			idx, err := r.u2()
			return &ConstantValueAttribute{ConstantValueIndex: idx}, err
		},
		AttrCode:          parseCode,
		AttrStackMapTable: parseStackMapTable,
		AttrExceptions: func(r *reader, _ *ConstantPool) (Attribute, error) {
			idx, err := r.u2s()
			return &ExceptionsAttribute{ExceptionIndexTable: idx}, err
		},
		AttrInnerClasses: parseInnerClasses,
		AttrEnclosingMethod: func(r *reader, _ *ConstantPool) (Attribute, error) {
			a := &EnclosingMethodAttribute{}
			var err error
			if a.ClassIndex, err = r.u2(); err != nil {
				return nil, err
			}
			a.MethodIndex, err = r.u2()
			return a, err
		},
		AttrSynthetic: func(*reader, *ConstantPool) (Attribute, error) {
			return &SyntheticAttribute{}, nil
		},
		AttrSignature: func(r *reader, _ *ConstantPool) (Attribute, error) {
			idx, err := r.u2()
			return &SignatureAttribute{SignatureIndex: idx}, err
		},
		AttrSourceFile: func(r *reader, _ *ConstantPool) (Attribute, error) {
			idx, err := r.u2()
			return &SourceFileAttribute{SourceFileIndex: idx}, err
		},
		AttrSourceDebugExtension: parseSourceDebugExtension,
		AttrLineNumberTable:      parseLineNumberTable,
		AttrLocalVariableTable:   parseLocalVariableTable,
		AttrLocalVariableTypeTable: func(r *reader, _ *ConstantPool) (Attribute, error) {
			entries, err := parseLocalVariables(r)
			if err != nil {
				return nil, err
			}
			out := make([]LocalVariableType, len(entries))
			for i, e := range entries {
				out[i] = LocalVariableType{
					StartPC:        e.StartPC,
					Length:         e.Length,
					NameIndex:      e.NameIndex,
					SignatureIndex: e.DescriptorIndex,
					Index:          e.Index,
				}
			}
			return &LocalVariableTypeTableAttribute{Entries: out}, nil
		},
		AttrDeprecated: func(*reader, *ConstantPool) (Attribute, error) {
			return &DeprecatedAttribute{}, nil
		},
		AttrRuntimeVisibleAnnotations:            annotationsDecoder(true),
		AttrRuntimeInvisibleAnnotations:          annotationsDecoder(false),
		AttrRuntimeVisibleParameterAnnotations:   parameterAnnotationsDecoder(true),
		AttrRuntimeInvisibleParameterAnnotations: parameterAnnotationsDecoder(false),
		AttrRuntimeVisibleTypeAnnotations:        typeAnnotationsDecoder(true),
		AttrRuntimeInvisibleTypeAnnotations:      typeAnnotationsDecoder(false),
		AttrAnnotationDefault: func(r *reader, _ *ConstantPool) (Attribute, error) {
			v, err := parseElementValue(r)
			if err != nil {
				return nil, err
			}
			return &AnnotationDefaultAttribute{DefaultValue: v}, nil
		},
		AttrBootstrapMethods: parseBootstrapMethods,
		AttrMethodParameters: parseMethodParameters,
		AttrModule:           parseModule,
		AttrModulePackages: func(r *reader, _ *ConstantPool) (Attribute, error) {
			idx, err := r.u2s()
			return &ModulePackagesAttribute{PackageIndex: idx}, err
		},
		AttrModuleMainClass: func(r *reader, _ *ConstantPool) (Attribute, error) {
			idx, err := r.u2()
			return &ModuleMainClassAttribute{MainClassIndex: idx}, err
		},
		AttrNestHost: func(r *reader, _ *ConstantPool) (Attribute, error) {
			idx, err := r.u2()
			return &NestHostAttribute{HostClassIndex: idx}, err
		},
		AttrNestMembers: func(r *reader, _ *ConstantPool) (Attribute, error) {
			idx, err := r.u2s()
			return &NestMembersAttribute{Classes: idx}, err
		},
		AttrRecord: parseRecord,
		AttrPermittedSubclasses: func(r *reader, _ *ConstantPool) (Attribute, error) {
			idx, err := r.u2s()
			return &PermittedSubclassesAttribute{Classes: idx}, err
		},
	}
}

func parseCode(r *reader, pool *ConstantPool) (Attribute, error) {
	c := &CodeAttribute{}
	var err error
	if c.MaxStack, err = r.u2(); err != nil {
		return nil, err
	}
	if c.MaxLocals, err = r.u2(); err != nil {
		return nil, err
	}
	codeLength, err := r.u4()
	if err != nil {
		return nil, err
	}
	if c.Code, err = r.bytes(int64(codeLength)); err != nil {
		return nil, err
	}

	excCount, err := r.u2()
	if err != nil {
		return nil, err
	}
	c.ExceptionTable = make([]ExceptionTableEntry, excCount)
	for i := range c.ExceptionTable {
		e := &c.ExceptionTable[i]
		if e.StartPC, err = r.u2(); err != nil {
			return nil, err
		}
		if e.EndPC, err = r.u2(); err != nil {
			return nil, err
		}
		if e.HandlerPC, err = r.u2(); err != nil {
			return nil, err
		}
		if e.CatchType, err = r.u2(); err != nil {
			return nil, err
		}
	}

	if c.Attributes, err = parseAttributes(r, pool); err != nil {
		return nil, err
	}
	return c, nil
}

func parseInnerClasses(r *reader, _ *ConstantPool) (Attribute, error) {
	count, err := r.u2()
	if err != nil {
		return nil, err
	}
	a := &InnerClassesAttribute{Classes: make([]InnerClass, count)}
	for i := range a.Classes {
		ic := &a.Classes[i]
		if ic.InnerClassInfoIndex, err = r.u2(); err != nil {
			return nil, err
		}
		if ic.OuterClassInfoIndex, err = r.u2(); err != nil {
			return nil, err
		}
		if ic.InnerNameIndex, err = r.u2(); err != nil {
			return nil, err
		}
		flags, err := r.u2()
		if err != nil {
			return nil, err
		}
		ic.InnerClassAccessFlags = NewInnerClassAccessFlags(flags)
	}
	return a, nil
}

// parseSourceDebugExtension takes whatever remains of the attribute.
func parseSourceDebugExtension(r *reader, _ *ConstantPool) (Attribute, error) {
	var n int64
	if lr, ok := r.r.(*io.LimitedReader); ok {
		n = lr.N
	}
	b, err := r.bytes(n)
	if err != nil {
		return nil, err
	}
	return &SourceDebugExtensionAttribute{DebugExtension: b}, nil
}

func parseLineNumberTable(r *reader, _ *ConstantPool) (Attribute, error) {
	count, err := r.u2()
	if err != nil {
		return nil, err
	}
	a := &LineNumberTableAttribute{Entries: make([]LineNumber, count)}
	for i := range a.Entries {
		if a.Entries[i].StartPC, err = r.u2(); err != nil {
			return nil, err
		}
		if a.Entries[i].LineNumber, err = r.u2(); err != nil {
			return nil, err
		}
	}
	return a, nil
}

func parseLocalVariables(r *reader) ([]LocalVariable, error) {
	count, err := r.u2()
	if err != nil {
		return nil, err
	}
	out := make([]LocalVariable, count)
	for i := range out {
		lv := &out[i]
		for _, dst := range []*uint16{&lv.StartPC, &lv.Length, &lv.NameIndex, &lv.DescriptorIndex, &lv.Index} {
			if *dst, err = r.u2(); err != nil {
				return nil, err
			}
		}
	}
	return out, nil
}

func parseLocalVariableTable(r *reader, _ *ConstantPool) (Attribute, error) {
	entries, err := parseLocalVariables(r)
	if err != nil {
		return nil, err
	}
	return &LocalVariableTableAttribute{Entries: entries}, nil
}

func parseBootstrapMethods(r *reader, _ *ConstantPool) (Attribute, error) {
	count, err := r.u2()
	if err != nil {
		return nil, err
	}
	a := &BootstrapMethodsAttribute{Methods: make([]BootstrapMethod, count)}
	for i := range a.Methods {
		if a.Methods[i].MethodRef, err = r.u2(); err != nil {
			return nil, err
		}
		if a.Methods[i].Arguments, err = r.u2s(); err != nil {
			return nil, err
		}
	}
	return a, nil
}

func parseMethodParameters(r *reader, _ *ConstantPool) (Attribute, error) {
	count, err := r.u1()
	if err != nil {
		return nil, err
	}
	a := &MethodParametersAttribute{Parameters: make([]MethodParameter, count)}
	for i := range a.Parameters {
		if a.Parameters[i].NameIndex, err = r.u2(); err != nil {
			return nil, err
		}
		flags, err := r.u2()
		if err != nil {
			return nil, err
		}
		a.Parameters[i].AccessFlags = NewMethodParameterAccessFlags(flags)
	}
	return a, nil
}

func parseModule(r *reader, _ *ConstantPool) (Attribute, error) {
	m := &ModuleAttribute{}
	var err error
	if m.NameIndex, err = r.u2(); err != nil {
		return nil, err
	}
	flags, err := r.u2()
	if err != nil {
		return nil, err
	}
	m.Flags = NewModuleFlags(flags)
	if m.VersionIndex, err = r.u2(); err != nil {
		return nil, err
	}

	count, err := r.u2()
	if err != nil {
		return nil, err
	}
	m.Requires = make([]ModuleRequires, count)
	for i := range m.Requires {
		req := &m.Requires[i]
		if req.RequiresIndex, err = r.u2(); err != nil {
			return nil, err
		}
		if flags, err = r.u2(); err != nil {
			return nil, err
		}
		req.Flags = NewRequiresFlags(flags)
		if req.RequiresVersionIndex, err = r.u2(); err != nil {
			return nil, err
		}
	}

	if count, err = r.u2(); err != nil {
		return nil, err
	}
	m.Exports = make([]ModuleExports, count)
	for i := range m.Exports {
		exp := &m.Exports[i]
		if exp.ExportsIndex, err = r.u2(); err != nil {
			return nil, err
		}
		if flags, err = r.u2(); err != nil {
			return nil, err
		}
		exp.Flags = NewExportsFlags(flags)
		if exp.ExportsToIndex, err = r.u2s(); err != nil {
			return nil, err
		}
	}

	if count, err = r.u2(); err != nil {
		return nil, err
	}
	m.Opens = make([]ModuleOpens, count)
	for i := range m.Opens {
		op := &m.Opens[i]
		if op.OpensIndex, err = r.u2(); err != nil {
			return nil, err
		}
		if flags, err = r.u2(); err != nil {
			return nil, err
		}
		op.Flags = NewOpensFlags(flags)
		if op.OpensToIndex, err = r.u2s(); err != nil {
			return nil, err
		}
	}

	if m.Uses, err = r.u2s(); err != nil {
		return nil, err
	}

	if count, err = r.u2(); err != nil {
		return nil, err
	}
	m.Provides = make([]ModuleProvides, count)
	for i := range m.Provides {
		if m.Provides[i].ProvidesIndex, err = r.u2(); err != nil {
			return nil, err
		}
		if m.Provides[i].ProvidesWithIndex, err = r.u2s(); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func parseRecord(r *reader, pool *ConstantPool) (Attribute, error) {
	count, err := r.u2()
	if err != nil {
		return nil, err
	}
	a := &RecordAttribute{Components: make([]RecordComponent, count)}
	for i := range a.Components {
		c := &a.Components[i]
		if c.NameIndex, err = r.u2(); err != nil {
			return nil, err
		}
		if c.DescriptorIndex, err = r.u2(); err != nil {
			return nil, err
		}
		if c.Attributes, err = parseAttributes(r, pool); err != nil {
			return nil, withContext(err, fmt.Sprintf("components[%d]", i))
		}
	}
	return a, nil
}
