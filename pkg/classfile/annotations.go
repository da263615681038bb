package classfile

import "fmt"

// Annotation is one annotation structure.
type Annotation struct {
	TypeIndex         uint16
	ElementValuePairs []ElementValuePair
}

type ElementValuePair struct {
	ElementNameIndex uint16
	Value            ElementValue
}

// ElementValue is the value of an annotation element. Tag returns the ASCII
// tag character it was encoded with.
type ElementValue interface {
	Tag() byte
}

// ConstElementValue covers the primitive tags B C D F I J S Z and the
// string tag s.
type ConstElementValue struct {
	TagChar         byte
	ConstValueIndex uint16
}

func (v *ConstElementValue) Tag() byte { return v.TagChar }

type EnumElementValue struct {
	TypeNameIndex  uint16
	ConstNameIndex uint16
}

func (*EnumElementValue) Tag() byte { return 'e' }

type ClassElementValue struct {
	ClassInfoIndex uint16
}

func (*ClassElementValue) Tag() byte { return 'c' }

type AnnotationElementValue struct {
	Annotation Annotation
}

func (*AnnotationElementValue) Tag() byte { return '@' }

type ArrayElementValue struct {
	Values []ElementValue
}

func (*ArrayElementValue) Tag() byte { return '[' }

// TargetInfo is the target_info union of a type annotation.
type TargetInfo interface {
	isTargetInfo()
}

// TypeParameterTarget: target_type 0x00, 0x01.
type TypeParameterTarget struct {
	TypeParameterIndex uint8
}

// SupertypeTarget: target_type 0x10.
type SupertypeTarget struct {
	SupertypeIndex uint16
}

// TypeParameterBoundTarget: target_type 0x11, 0x12.
type TypeParameterBoundTarget struct {
	TypeParameterIndex uint8
	BoundIndex         uint8
}

// EmptyTarget: target_type 0x13-0x15.
type EmptyTarget struct{}

// FormalParameterTarget: target_type 0x16.
type FormalParameterTarget struct {
	FormalParameterIndex uint8
}

// ThrowsTarget: target_type 0x17.
type ThrowsTarget struct {
	ThrowsTypeIndex uint16
}

// LocalvarTarget: target_type 0x40, 0x41.
type LocalvarTarget struct {
	Table []LocalvarTargetEntry
}

type LocalvarTargetEntry struct {
	StartPC uint16
	Length  uint16
	Index   uint16
}

// CatchTarget: target_type 0x42.
type CatchTarget struct {
	ExceptionTableIndex uint16
}

// OffsetTarget: target_type 0x43-0x46.
type OffsetTarget struct {
	Offset uint16
}

// TypeArgumentTarget: target_type 0x47-0x4B.
type TypeArgumentTarget struct {
	Offset            uint16
	TypeArgumentIndex uint8
}

func (TypeParameterTarget) isTargetInfo()      {}
func (SupertypeTarget) isTargetInfo()          {}
func (TypeParameterBoundTarget) isTargetInfo() {}
func (EmptyTarget) isTargetInfo()              {}
func (FormalParameterTarget) isTargetInfo()    {}
func (ThrowsTarget) isTargetInfo()             {}
func (LocalvarTarget) isTargetInfo()           {}
func (CatchTarget) isTargetInfo()              {}
func (OffsetTarget) isTargetInfo()             {}
func (TypeArgumentTarget) isTargetInfo()       {}

// TypePathKind is the type_path_kind of a type path step.
type TypePathKind uint8

const (
	PathArray         TypePathKind = 0
	PathNested        TypePathKind = 1
	PathWildcardBound TypePathKind = 2
	PathTypeArgument  TypePathKind = 3
)

type TypePathEntry struct {
	Kind              TypePathKind
	TypeArgumentIndex uint8
}

type TypeAnnotation struct {
	TargetType        uint8
	TargetInfo        TargetInfo
	TargetPath        []TypePathEntry
	TypeIndex         uint16
	ElementValuePairs []ElementValuePair
}

func annotationsDecoder(visible bool) attributeDecoder {
	return func(r *reader, _ *ConstantPool) (Attribute, error) {
		anns, err := parseAnnotationList(r)
		if err != nil {
			return nil, err
		}
		return &AnnotationsAttribute{Visible: visible, Annotations: anns}, nil
	}
}

func parameterAnnotationsDecoder(visible bool) attributeDecoder {
	return func(r *reader, _ *ConstantPool) (Attribute, error) {
		n, err := r.u1()
		if err != nil {
			return nil, err
		}
		a := &ParameterAnnotationsAttribute{Visible: visible, Parameters: make([][]Annotation, n)}
		for i := range a.Parameters {
			if a.Parameters[i], err = parseAnnotationList(r); err != nil {
				return nil, withContext(err, fmt.Sprintf("parameters[%d]", i))
			}
		}
		return a, nil
	}
}

func typeAnnotationsDecoder(visible bool) attributeDecoder {
	return func(r *reader, _ *ConstantPool) (Attribute, error) {
		count, err := r.u2()
		if err != nil {
			return nil, err
		}
		a := &TypeAnnotationsAttribute{Visible: visible, Annotations: make([]TypeAnnotation, count)}
		for i := range a.Annotations {
			if a.Annotations[i], err = parseTypeAnnotation(r); err != nil {
				return nil, withContext(err, fmt.Sprintf("annotations[%d]", i))
			}
		}
		return a, nil
	}
}

func parseAnnotationList(r *reader) ([]Annotation, error) {
	count, err := r.u2()
	if err != nil {
		return nil, err
	}
	out := make([]Annotation, count)
	for i := range out {
		if out[i], err = parseAnnotation(r); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func parseAnnotation(r *reader) (Annotation, error) {
	typeIndex, err := r.u2()
	if err != nil {
		return Annotation{}, err
	}
	pairs, err := parseElementValuePairs(r)
	if err != nil {
		return Annotation{}, err
	}
	return Annotation{TypeIndex: typeIndex, ElementValuePairs: pairs}, nil
}

func parseElementValuePairs(r *reader) ([]ElementValuePair, error) {
	count, err := r.u2()
	if err != nil {
		return nil, err
	}
	out := make([]ElementValuePair, count)
	for i := range out {
		if out[i].ElementNameIndex, err = r.u2(); err != nil {
			return nil, err
		}
		if out[i].Value, err = parseElementValue(r); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func parseElementValue(r *reader) (ElementValue, error) {
	leave, err := r.enter()
	if err != nil {
		return nil, err
	}
	defer leave()

	tag, err := r.u1()
	if err != nil {
		return nil, err
	}

	switch tag {
	case 'B', 'C', 'D', 'F', 'I', 'J', 'S', 'Z', 's':
		idx, err := r.u2()
		if err != nil {
			return nil, err
		}
		return &ConstElementValue{TagChar: tag, ConstValueIndex: idx}, nil

	case 'e':
		v := &EnumElementValue{}
		if v.TypeNameIndex, err = r.u2(); err != nil {
			return nil, err
		}
		if v.ConstNameIndex, err = r.u2(); err != nil {
			return nil, err
		}
		return v, nil

	case 'c':
		idx, err := r.u2()
		if err != nil {
			return nil, err
		}
		return &ClassElementValue{ClassInfoIndex: idx}, nil

	case '@':
		ann, err := parseAnnotation(r)
		if err != nil {
			return nil, err
		}
		return &AnnotationElementValue{Annotation: ann}, nil

	case '[':
		count, err := r.u2()
		if err != nil {
			return nil, err
		}
		v := &ArrayElementValue{Values: make([]ElementValue, count)}
		for i := range v.Values {
			if v.Values[i], err = parseElementValue(r); err != nil {
				return nil, err
			}
		}
		return v, nil

	default:
		return nil, r.fail(InvalidElementValueTag, "tag %q", tag)
	}
}

func parseTypeAnnotation(r *reader) (TypeAnnotation, error) {
	var ta TypeAnnotation
	var err error
	if ta.TargetType, err = r.u1(); err != nil {
		return ta, err
	}
	if ta.TargetInfo, err = parseTargetInfo(r, ta.TargetType); err != nil {
		return ta, err
	}
	if ta.TargetPath, err = parseTypePath(r); err != nil {
		return ta, err
	}
	if ta.TypeIndex, err = r.u2(); err != nil {
		return ta, err
	}
	if ta.ElementValuePairs, err = parseElementValuePairs(r); err != nil {
		return ta, err
	}
	return ta, nil
}

func parseTargetInfo(r *reader, targetType uint8) (TargetInfo, error) {
	switch {
	case targetType == 0x00 || targetType == 0x01:
		idx, err := r.u1()
		return TypeParameterTarget{TypeParameterIndex: idx}, err

	case targetType == 0x10:
		idx, err := r.u2()
		return SupertypeTarget{SupertypeIndex: idx}, err

	case targetType == 0x11 || targetType == 0x12:
		param, err := r.u1()
		if err != nil {
			return nil, err
		}
		bound, err := r.u1()
		return TypeParameterBoundTarget{TypeParameterIndex: param, BoundIndex: bound}, err

	case targetType >= 0x13 && targetType <= 0x15:
		return EmptyTarget{}, nil

	case targetType == 0x16:
		idx, err := r.u1()
		return FormalParameterTarget{FormalParameterIndex: idx}, err

	case targetType == 0x17:
		idx, err := r.u2()
		return ThrowsTarget{ThrowsTypeIndex: idx}, err

	case targetType == 0x40 || targetType == 0x41:
		count, err := r.u2()
		if err != nil {
			return nil, err
		}
		t := LocalvarTarget{Table: make([]LocalvarTargetEntry, count)}
		for i := range t.Table {
			e := &t.Table[i]
			if e.StartPC, err = r.u2(); err != nil {
				return nil, err
			}
			if e.Length, err = r.u2(); err != nil {
				return nil, err
			}
			if e.Index, err = r.u2(); err != nil {
				return nil, err
			}
		}
		return t, nil

	case targetType == 0x42:
		idx, err := r.u2()
		return CatchTarget{ExceptionTableIndex: idx}, err

	case targetType >= 0x43 && targetType <= 0x46:
		off, err := r.u2()
		return OffsetTarget{Offset: off}, err

	case targetType >= 0x47 && targetType <= 0x4B:
		off, err := r.u2()
		if err != nil {
			return nil, err
		}
		idx, err := r.u1()
		return TypeArgumentTarget{Offset: off, TypeArgumentIndex: idx}, err

	default:
		return nil, r.fail(InvalidTypeAnnotationTargetType, "target type 0x%02X", targetType)
	}
}

func parseTypePath(r *reader) ([]TypePathEntry, error) {
	length, err := r.u1()
	if err != nil {
		return nil, err
	}
	path := make([]TypePathEntry, length)
	for i := range path {
		kind, err := r.u1()
		if err != nil {
			return nil, err
		}
		if kind > uint8(PathTypeArgument) {
			return nil, r.fail(InvalidTypePathKind, "kind %d", kind)
		}
		arg, err := r.u1()
		if err != nil {
			return nil, err
		}
		path[i] = TypePathEntry{Kind: TypePathKind(kind), TypeArgumentIndex: arg}
	}
	return path, nil
}
