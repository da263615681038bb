package classfile

import (
	"reflect"
	"testing"

	"github.com/daimatz/classvm/internal/classtest"
)

// decodeClassAttribute wraps payload in a class-level attribute named name
// and returns the single decoded attribute.
func decodeClassAttribute(t *testing.T, name string, payload []byte) Attribute {
	t.Helper()

	b := classtest.New("Attr", "java/lang/Object")
	b.AddAttribute(b.Attribute(name, payload))
	cf, err := ParseBytes(b.Bytes())
	if err != nil {
		t.Fatalf("%s: %v", name, err)
	}
	if len(cf.Attributes) != 1 {
		t.Fatalf("%s: got %d attributes, want 1", name, len(cf.Attributes))
	}
	if got := cf.Attributes[0].AttributeName(); got != name {
		t.Errorf("AttributeName: got %q, want %q", got, name)
	}
	return cf.Attributes[0]
}

func TestAttributeShapes(t *testing.T) {
	tests := []struct {
		name    string
		payload []byte
		want    Attribute
	}{
		{
			name:    AttrConstantValue,
			payload: []byte{0x00, 0x05},
			want:    &ConstantValueAttribute{ConstantValueIndex: 5},
		},
		{
			name:    AttrExceptions,
			payload: []byte{0x00, 0x02, 0x00, 0x03, 0x00, 0x04},
			want:    &ExceptionsAttribute{ExceptionIndexTable: []uint16{3, 4}},
		},
		{
			name: AttrInnerClasses,
			payload: []byte{
				0x00, 0x01,
				0x00, 0x02, 0x00, 0x03, 0x00, 0x04,
				0xFF, 0xFF, // undefined bits are dropped
			},
			want: &InnerClassesAttribute{Classes: []InnerClass{{
				InnerClassInfoIndex:   2,
				OuterClassInfoIndex:   3,
				InnerNameIndex:        4,
				InnerClassAccessFlags: innerClassAccessMask,
			}}},
		},
		{
			name:    AttrEnclosingMethod,
			payload: []byte{0x00, 0x02, 0x00, 0x00},
			want:    &EnclosingMethodAttribute{ClassIndex: 2},
		},
		{
			name: AttrSynthetic,
			want: &SyntheticAttribute{},
		},
		{
			name:    AttrSignature,
			payload: []byte{0x00, 0x09},
			want:    &SignatureAttribute{SignatureIndex: 9},
		},
		{
			name:    AttrSourceDebugExtension,
			payload: []byte("SMAP\nFoo.java\n"),
			want:    &SourceDebugExtensionAttribute{DebugExtension: []byte("SMAP\nFoo.java\n")},
		},
		{
			name:    AttrLocalVariableTable,
			payload: []byte{0x00, 0x01, 0x00, 0x00, 0x00, 0x05, 0x00, 0x06, 0x00, 0x07, 0x00, 0x01},
			want: &LocalVariableTableAttribute{Entries: []LocalVariable{
				{StartPC: 0, Length: 5, NameIndex: 6, DescriptorIndex: 7, Index: 1},
			}},
		},
		{
			name:    AttrLocalVariableTypeTable,
			payload: []byte{0x00, 0x01, 0x00, 0x01, 0x00, 0x02, 0x00, 0x03, 0x00, 0x04, 0x00, 0x05},
			want: &LocalVariableTypeTableAttribute{Entries: []LocalVariableType{
				{StartPC: 1, Length: 2, NameIndex: 3, SignatureIndex: 4, Index: 5},
			}},
		},
		{
			name: AttrDeprecated,
			want: &DeprecatedAttribute{},
		},
		{
			name: AttrRuntimeVisibleAnnotations,
			payload: []byte{
				0x00, 0x01, // num_annotations
				0x00, 0x02, // type_index
				0x00, 0x05, // num_element_value_pairs
				0x00, 0x03, 'I', 0x00, 0x04,
				0x00, 0x03, 'e', 0x00, 0x05, 0x00, 0x06,
				0x00, 0x03, 'c', 0x00, 0x07,
				0x00, 0x03, '@', 0x00, 0x08, 0x00, 0x00,
				0x00, 0x03, '[', 0x00, 0x02, 's', 0x00, 0x09, 'Z', 0x00, 0x0A,
			},
			want: &AnnotationsAttribute{Visible: true, Annotations: []Annotation{{
				TypeIndex: 2,
				ElementValuePairs: []ElementValuePair{
					{ElementNameIndex: 3, Value: &ConstElementValue{TagChar: 'I', ConstValueIndex: 4}},
					{ElementNameIndex: 3, Value: &EnumElementValue{TypeNameIndex: 5, ConstNameIndex: 6}},
					{ElementNameIndex: 3, Value: &ClassElementValue{ClassInfoIndex: 7}},
					{ElementNameIndex: 3, Value: &AnnotationElementValue{Annotation: Annotation{
						TypeIndex: 8, ElementValuePairs: []ElementValuePair{},
					}}},
					{ElementNameIndex: 3, Value: &ArrayElementValue{Values: []ElementValue{
						&ConstElementValue{TagChar: 's', ConstValueIndex: 9},
						&ConstElementValue{TagChar: 'Z', ConstValueIndex: 10},
					}}},
				},
			}}},
		},
		{
			name:    AttrRuntimeInvisibleAnnotations,
			payload: []byte{0x00, 0x00},
			want:    &AnnotationsAttribute{Visible: false, Annotations: []Annotation{}},
		},
		{
			name: AttrRuntimeVisibleParameterAnnotations,
			payload: []byte{
				0x02,       // num_parameters (u1)
				0x00, 0x00, // parameter 0: none
				0x00, 0x01, 0x00, 0x02, 0x00, 0x00,
			},
			want: &ParameterAnnotationsAttribute{Visible: true, Parameters: [][]Annotation{
				{},
				{{TypeIndex: 2, ElementValuePairs: []ElementValuePair{}}},
			}},
		},
		{
			name: AttrRuntimeVisibleTypeAnnotations,
			payload: []byte{
				0x00, 0x0A,
				0x00, 0x01, 0x00, 0x00, 0x02, 0x00, 0x00, // type parameter
				0x10, 0xFF, 0xFF, 0x00, 0x00, 0x02, 0x00, 0x00, // supertype
				0x12, 0x01, 0x02, 0x00, 0x00, 0x02, 0x00, 0x00, // type parameter bound
				0x14, 0x00, 0x00, 0x02, 0x00, 0x00, // empty
				0x16, 0x03, 0x00, 0x00, 0x02, 0x00, 0x00, // formal parameter
				0x17, 0x00, 0x04, 0x00, 0x00, 0x02, 0x00, 0x00, // throws
				0x40, 0x00, 0x01, 0x00, 0x01, 0x00, 0x02, 0x00, 0x03, 0x00, 0x00, 0x02, 0x00, 0x00, // localvar
				0x42, 0x00, 0x05, 0x00, 0x00, 0x02, 0x00, 0x00, // catch
				0x45, 0x00, 0x06, 0x00, 0x00, 0x02, 0x00, 0x00, // offset
				0x4B, 0x00, 0x07, 0x01, 0x01, 0x03, 0x01, 0x00, 0x02, 0x00, 0x00, // type argument with path
			},
			want: &TypeAnnotationsAttribute{Visible: true, Annotations: []TypeAnnotation{
				{TargetType: 0x00, TargetInfo: TypeParameterTarget{TypeParameterIndex: 1}, TargetPath: []TypePathEntry{}, TypeIndex: 2, ElementValuePairs: []ElementValuePair{}},
				{TargetType: 0x10, TargetInfo: SupertypeTarget{SupertypeIndex: 0xFFFF}, TargetPath: []TypePathEntry{}, TypeIndex: 2, ElementValuePairs: []ElementValuePair{}},
				{TargetType: 0x12, TargetInfo: TypeParameterBoundTarget{TypeParameterIndex: 1, BoundIndex: 2}, TargetPath: []TypePathEntry{}, TypeIndex: 2, ElementValuePairs: []ElementValuePair{}},
				{TargetType: 0x14, TargetInfo: EmptyTarget{}, TargetPath: []TypePathEntry{}, TypeIndex: 2, ElementValuePairs: []ElementValuePair{}},
				{TargetType: 0x16, TargetInfo: FormalParameterTarget{FormalParameterIndex: 3}, TargetPath: []TypePathEntry{}, TypeIndex: 2, ElementValuePairs: []ElementValuePair{}},
				{TargetType: 0x17, TargetInfo: ThrowsTarget{ThrowsTypeIndex: 4}, TargetPath: []TypePathEntry{}, TypeIndex: 2, ElementValuePairs: []ElementValuePair{}},
				{TargetType: 0x40, TargetInfo: LocalvarTarget{Table: []LocalvarTargetEntry{{StartPC: 1, Length: 2, Index: 3}}}, TargetPath: []TypePathEntry{}, TypeIndex: 2, ElementValuePairs: []ElementValuePair{}},
				{TargetType: 0x42, TargetInfo: CatchTarget{ExceptionTableIndex: 5}, TargetPath: []TypePathEntry{}, TypeIndex: 2, ElementValuePairs: []ElementValuePair{}},
				{TargetType: 0x45, TargetInfo: OffsetTarget{Offset: 6}, TargetPath: []TypePathEntry{}, TypeIndex: 2, ElementValuePairs: []ElementValuePair{}},
				{TargetType: 0x4B, TargetInfo: TypeArgumentTarget{Offset: 7, TypeArgumentIndex: 1}, TargetPath: []TypePathEntry{{Kind: PathTypeArgument, TypeArgumentIndex: 1}}, TypeIndex: 2, ElementValuePairs: []ElementValuePair{}},
			}},
		},
		{
			name:    AttrAnnotationDefault,
			payload: []byte{'J', 0x00, 0x04},
			want:    &AnnotationDefaultAttribute{DefaultValue: &ConstElementValue{TagChar: 'J', ConstValueIndex: 4}},
		},
		{
			name:    AttrBootstrapMethods,
			payload: []byte{0x00, 0x02, 0x00, 0x01, 0x00, 0x00, 0x00, 0x02, 0x00, 0x02, 0x00, 0x03, 0x00, 0x04},
			want: &BootstrapMethodsAttribute{Methods: []BootstrapMethod{
				{MethodRef: 1, Arguments: []uint16{}},
				{MethodRef: 2, Arguments: []uint16{3, 4}},
			}},
		},
		{
			name:    AttrMethodParameters,
			payload: []byte{0x02, 0x00, 0x03, 0x00, 0x10, 0x00, 0x00, 0x80, 0x00},
			want: &MethodParametersAttribute{Parameters: []MethodParameter{
				{NameIndex: 3, AccessFlags: ParameterFinal},
				{NameIndex: 0, AccessFlags: ParameterMandated},
			}},
		},
		{
			name: AttrModule,
			payload: []byte{
				0x00, 0x02, 0x00, 0x20, 0x00, 0x00, // name, ACC_OPEN, no version
				0x00, 0x01, 0x00, 0x03, 0x80, 0x20, 0x00, 0x00, // requires
				0x00, 0x01, 0x00, 0x04, 0x10, 0x00, 0x00, 0x01, 0x00, 0x05, // exports
				0x00, 0x01, 0x00, 0x06, 0x00, 0x00, 0x00, 0x00, // opens
				0x00, 0x01, 0x00, 0x07, // uses
				0x00, 0x01, 0x00, 0x08, 0x00, 0x01, 0x00, 0x09, // provides
			},
			want: &ModuleAttribute{
				NameIndex: 2,
				Flags:     ModuleOpen,
				Requires:  []ModuleRequires{{RequiresIndex: 3, Flags: RequiresMandated | RequiresTransitive}},
				Exports:   []ModuleExports{{ExportsIndex: 4, Flags: ExportsSynthetic, ExportsToIndex: []uint16{5}}},
				Opens:     []ModuleOpens{{OpensIndex: 6, OpensToIndex: []uint16{}}},
				Uses:      []uint16{7},
				Provides:  []ModuleProvides{{ProvidesIndex: 8, ProvidesWithIndex: []uint16{9}}},
			},
		},
		{
			name:    AttrModulePackages,
			payload: []byte{0x00, 0x01, 0x00, 0x0B},
			want:    &ModulePackagesAttribute{PackageIndex: []uint16{11}},
		},
		{
			name:    AttrModuleMainClass,
			payload: []byte{0x00, 0x02},
			want:    &ModuleMainClassAttribute{MainClassIndex: 2},
		},
		{
			name:    AttrNestHost,
			payload: []byte{0x00, 0x02},
			want:    &NestHostAttribute{HostClassIndex: 2},
		},
		{
			name:    AttrNestMembers,
			payload: []byte{0x00, 0x01, 0x00, 0x02},
			want:    &NestMembersAttribute{Classes: []uint16{2}},
		},
		{
			name:    AttrPermittedSubclasses,
			payload: []byte{0x00, 0x00},
			want:    &PermittedSubclassesAttribute{Classes: []uint16{}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := decodeClassAttribute(t, tt.name, tt.payload)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("got  %#v\nwant %#v", got, tt.want)
			}
		})
	}
}

func TestRecordAttribute(t *testing.T) {
	b := classtest.New("Point", "java/lang/Record")
	x, i := b.Utf8("x"), b.Utf8("I")
	sig := b.Attribute("Signature", []byte{0x00, byte(i)})
	vendor := b.Attribute("Vendor", []byte{0xAA})
	payload := []byte{0x00, 0x01, 0x00, byte(x), 0x00, byte(i), 0x00, 0x02}
	payload = append(payload, vendor...)
	payload = append(payload, sig...)
	b.AddAttribute(b.Attribute("Record", payload))

	cf, err := ParseBytes(b.Bytes())
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	rec, ok := cf.Attributes.Find(AttrRecord).(*RecordAttribute)
	if !ok {
		t.Fatalf("Record attribute missing: %#v", cf.Attributes)
	}
	want := []RecordComponent{{
		NameIndex:       x,
		DescriptorIndex: i,
		Attributes:      Attributes{&SignatureAttribute{SignatureIndex: i}},
	}}
	if !reflect.DeepEqual(rec.Components, want) {
		t.Errorf("components: got %#v, want %#v", rec.Components, want)
	}
}

func TestStackMapFrames(t *testing.T) {
	b := classtest.New("Frames", "java/lang/Object")
	payload := []byte{
		0x00, 0x08, // number_of_entries
		0x05,             // same, delta 5
		0x41, 0x01,       // same_locals_1_stack_item, delta 1, int
		0xF7, 0x01, 0x00, 0x07, 0x00, 0x02, // extended, delta 256, Object #2
		0xF9, 0x00, 0x03, // chop 2
		0xFB, 0x00, 0x04, // same_frame_extended
		0xFD, 0x00, 0x05, 0x04, 0x03, // append 2: long, double
		0xFF, 0x00, 0x06, 0x00, 0x01, 0x08, 0x00, 0x0A, 0x00, 0x01, 0x06, // full
		0x3F, // same, delta 63
	}
	b.AddMethod(0x0009, "m", "()V", b.Code(0, 0, []byte{0xB1}, nil, b.Attribute("StackMapTable", payload)))

	cf, err := ParseBytes(b.Bytes())
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	smt, ok := cf.Methods[0].Code().Attributes.Find(AttrStackMapTable).(*StackMapTableAttribute)
	if !ok {
		t.Fatal("StackMapTable missing")
	}

	want := []StackMapFrame{
		&SameFrame{Type: 5},
		&SameLocals1StackItemFrame{Type: 0x41, Stack: VerificationTypeInfo{Tag: ItemInteger}},
		&SameLocals1StackItemFrameExtended{Delta: 256, Stack: VerificationTypeInfo{Tag: ItemObject, CPoolIndex: 2}},
		&ChopFrame{Type: 0xF9, Delta: 3},
		&SameFrameExtended{Delta: 4},
		&AppendFrame{Type: 0xFD, Delta: 5, Locals: []VerificationTypeInfo{{Tag: ItemLong}, {Tag: ItemDouble}}},
		&FullFrame{
			Delta:  6,
			Locals: []VerificationTypeInfo{{Tag: ItemUninitialized, Offset: 10}},
			Stack:  []VerificationTypeInfo{{Tag: ItemUninitializedThis}},
		},
		&SameFrame{Type: 63},
	}
	if !reflect.DeepEqual(smt.Entries, want) {
		t.Fatalf("frames:\ngot  %#v\nwant %#v", smt.Entries, want)
	}

	deltas := []uint16{5, 1, 256, 3, 4, 5, 6, 63}
	for i, f := range smt.Entries {
		if f.OffsetDelta() != deltas[i] {
			t.Errorf("frame %d: offset delta got %d, want %d", i, f.OffsetDelta(), deltas[i])
		}
	}
	if chop := smt.Entries[3].(*ChopFrame); chop.Chopped() != 2 {
		t.Errorf("chop: got %d, want 2", chop.Chopped())
	}
}
