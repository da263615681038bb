package classfile

import (
	"fmt"
	"math"
	"unicode/utf16"
)

// ConstantTag identifies the kind of a constant pool entry.
type ConstantTag uint8

const (
	TagUtf8               ConstantTag = 1
	TagInteger            ConstantTag = 3
	TagFloat              ConstantTag = 4
	TagLong               ConstantTag = 5
	TagDouble             ConstantTag = 6
	TagClass              ConstantTag = 7
	TagString             ConstantTag = 8
	TagFieldref           ConstantTag = 9
	TagMethodref          ConstantTag = 10
	TagInterfaceMethodref ConstantTag = 11
	TagNameAndType        ConstantTag = 12
	TagMethodHandle       ConstantTag = 15
	TagMethodType         ConstantTag = 16
	TagDynamic            ConstantTag = 17
	TagInvokeDynamic      ConstantTag = 18
	TagModule             ConstantTag = 19
	TagPackage            ConstantTag = 20
)

var tagNames = map[ConstantTag]string{
	TagUtf8:               "Utf8",
	TagInteger:            "Integer",
	TagFloat:              "Float",
	TagLong:               "Long",
	TagDouble:             "Double",
	TagClass:              "Class",
	TagString:             "String",
	TagFieldref:           "Fieldref",
	TagMethodref:          "Methodref",
	TagInterfaceMethodref: "InterfaceMethodref",
	TagNameAndType:        "NameAndType",
	TagMethodHandle:       "MethodHandle",
	TagMethodType:         "MethodType",
	TagDynamic:            "Dynamic",
	TagInvokeDynamic:      "InvokeDynamic",
	TagModule:             "Module",
	TagPackage:            "Package",
}

func (t ConstantTag) String() string {
	if s, ok := tagNames[t]; ok {
		return s
	}
	return fmt.Sprintf("ConstantTag(%d)", uint8(t))
}

// ReferenceKind is the reference_kind of a MethodHandle entry.
type ReferenceKind uint8

const (
	RefGetField         ReferenceKind = 1
	RefGetStatic        ReferenceKind = 2
	RefPutField         ReferenceKind = 3
	RefPutStatic        ReferenceKind = 4
	RefInvokeVirtual    ReferenceKind = 5
	RefInvokeStatic     ReferenceKind = 6
	RefInvokeSpecial    ReferenceKind = 7
	RefNewInvokeSpecial ReferenceKind = 8
	RefInvokeInterface  ReferenceKind = 9
)

func (k ReferenceKind) valid() bool { return k >= RefGetField && k <= RefInvokeInterface }

// ConstantPoolInfo is implemented by every constant pool entry.
type ConstantPoolInfo interface {
	Tag() ConstantTag
}

type ConstantUtf8 struct {
	Bytes []byte // modified UTF-8, as stored in the class file
}

func (c *ConstantUtf8) Tag() ConstantTag { return TagUtf8 }

// String decodes the modified UTF-8 bytes.
func (c *ConstantUtf8) String() string { return decodeModifiedUTF8(c.Bytes) }

type ConstantInteger struct {
	Value int32
}

func (c *ConstantInteger) Tag() ConstantTag { return TagInteger }

type ConstantFloat struct {
	Value float32
}

func (c *ConstantFloat) Tag() ConstantTag { return TagFloat }

type ConstantLong struct {
	Value int64
}

func (c *ConstantLong) Tag() ConstantTag { return TagLong }

type ConstantDouble struct {
	Value float64
}

func (c *ConstantDouble) Tag() ConstantTag { return TagDouble }

type ConstantClass struct {
	NameIndex uint16
}

func (c *ConstantClass) Tag() ConstantTag { return TagClass }

type ConstantString struct {
	StringIndex uint16
}

func (c *ConstantString) Tag() ConstantTag { return TagString }

type ConstantFieldref struct {
	ClassIndex       uint16
	NameAndTypeIndex uint16
}

func (c *ConstantFieldref) Tag() ConstantTag { return TagFieldref }

type ConstantMethodref struct {
	ClassIndex       uint16
	NameAndTypeIndex uint16
}

func (c *ConstantMethodref) Tag() ConstantTag { return TagMethodref }

type ConstantInterfaceMethodref struct {
	ClassIndex       uint16
	NameAndTypeIndex uint16
}

func (c *ConstantInterfaceMethodref) Tag() ConstantTag { return TagInterfaceMethodref }

type ConstantNameAndType struct {
	NameIndex       uint16
	DescriptorIndex uint16
}

func (c *ConstantNameAndType) Tag() ConstantTag { return TagNameAndType }

type ConstantMethodHandle struct {
	ReferenceKind  ReferenceKind
	ReferenceIndex uint16
}

func (c *ConstantMethodHandle) Tag() ConstantTag { return TagMethodHandle }

type ConstantMethodType struct {
	DescriptorIndex uint16
}

func (c *ConstantMethodType) Tag() ConstantTag { return TagMethodType }

type ConstantDynamic struct {
	BootstrapMethodAttrIndex uint16
	NameAndTypeIndex         uint16
}

func (c *ConstantDynamic) Tag() ConstantTag { return TagDynamic }

type ConstantInvokeDynamic struct {
	BootstrapMethodAttrIndex uint16
	NameAndTypeIndex         uint16
}

func (c *ConstantInvokeDynamic) Tag() ConstantTag { return TagInvokeDynamic }

type ConstantModule struct {
	NameIndex uint16
}

func (c *ConstantModule) Tag() ConstantTag { return TagModule }

type ConstantPackage struct {
	NameIndex uint16
}

func (c *ConstantPackage) Tag() ConstantTag { return TagPackage }

// ConstantPool is the decoded constant pool of one class. It is never
// modified after decoding and is shared by pointer.
//
// Slot 0 is reserved and the slot following a Long or Double entry is
// vacant; both hold nil.
type ConstantPool struct {
	entries []ConstantPoolInfo
}

// NewConstantPool builds a pool from entries indexed by slot. entries[0]
// and vacant slots must be nil.
func NewConstantPool(entries []ConstantPoolInfo) *ConstantPool {
	if len(entries) == 0 {
		entries = []ConstantPoolInfo{nil}
	}
	return &ConstantPool{entries: entries}
}

// Count returns constant_pool_count: one more than the highest slot.
func (p *ConstantPool) Count() uint16 {
	return uint16(len(p.entries))
}

// Get returns the entry at slot index.
func (p *ConstantPool) Get(index uint16) (ConstantPoolInfo, error) {
	if index == 0 || int(index) >= len(p.entries) {
		return nil, fmt.Errorf("%w: %d (count %d)", ErrInvalidConstantPoolIndex, index, len(p.entries))
	}
	e := p.entries[index]
	if e == nil {
		return nil, fmt.Errorf("%w: %d is the vacant slot after a Long or Double", ErrInvalidConstantPoolIndex, index)
	}
	return e, nil
}

// Entries calls fn for every usable slot in order, skipping vacant slots,
// until fn returns false.
func (p *ConstantPool) Entries(fn func(index uint16, entry ConstantPoolInfo) bool) {
	for i := 1; i < len(p.entries); i++ {
		if p.entries[i] == nil {
			continue
		}
		if !fn(uint16(i), p.entries[i]) {
			return
		}
	}
}

func lookup[T ConstantPoolInfo](p *ConstantPool, index uint16, want ConstantTag) (T, error) {
	var zero T
	e, err := p.Get(index)
	if err != nil {
		return zero, err
	}
	t, ok := e.(T)
	if !ok {
		return zero, fmt.Errorf("%w: index %d is %s, expected %s", ErrUnexpectedConstantType, index, e.Tag(), want)
	}
	return t, nil
}

// Utf8 returns the decoded string at index.
func (p *ConstantPool) Utf8(index uint16) (string, error) {
	c, err := lookup[*ConstantUtf8](p, index, TagUtf8)
	if err != nil {
		return "", err
	}
	return c.String(), nil
}

// ClassName returns the internal name referenced by the Class entry at index.
func (p *ConstantPool) ClassName(index uint16) (string, error) {
	c, err := lookup[*ConstantClass](p, index, TagClass)
	if err != nil {
		return "", err
	}
	return p.Utf8(c.NameIndex)
}

// NameAndType returns the name and descriptor of the NameAndType entry at index.
func (p *ConstantPool) NameAndType(index uint16) (name, descriptor string, err error) {
	nt, err := lookup[*ConstantNameAndType](p, index, TagNameAndType)
	if err != nil {
		return "", "", err
	}
	if name, err = p.Utf8(nt.NameIndex); err != nil {
		return "", "", err
	}
	if descriptor, err = p.Utf8(nt.DescriptorIndex); err != nil {
		return "", "", err
	}
	return name, descriptor, nil
}

// StringLiteral returns the value of the String entry at index.
func (p *ConstantPool) StringLiteral(index uint16) (string, error) {
	c, err := lookup[*ConstantString](p, index, TagString)
	if err != nil {
		return "", err
	}
	return p.Utf8(c.StringIndex)
}

// MemberRef is a resolved Fieldref, Methodref or InterfaceMethodref.
type MemberRef struct {
	ClassName  string
	Name       string
	Descriptor string
}

func (m *MemberRef) String() string {
	return m.ClassName + "." + m.Name + ":" + m.Descriptor
}

func (p *ConstantPool) resolveMember(classIndex, natIndex uint16) (*MemberRef, error) {
	className, err := p.ClassName(classIndex)
	if err != nil {
		return nil, fmt.Errorf("resolving class: %w", err)
	}
	name, desc, err := p.NameAndType(natIndex)
	if err != nil {
		return nil, fmt.Errorf("resolving name and type: %w", err)
	}
	return &MemberRef{ClassName: className, Name: name, Descriptor: desc}, nil
}

// ResolveFieldref resolves the Fieldref entry at index.
func (p *ConstantPool) ResolveFieldref(index uint16) (*MemberRef, error) {
	ref, err := lookup[*ConstantFieldref](p, index, TagFieldref)
	if err != nil {
		return nil, err
	}
	return p.resolveMember(ref.ClassIndex, ref.NameAndTypeIndex)
}

// ResolveMethodref resolves the entry at index, which may be a Methodref or
// an InterfaceMethodref.
func (p *ConstantPool) ResolveMethodref(index uint16) (*MemberRef, error) {
	e, err := p.Get(index)
	if err != nil {
		return nil, err
	}
	switch ref := e.(type) {
	case *ConstantMethodref:
		return p.resolveMember(ref.ClassIndex, ref.NameAndTypeIndex)
	case *ConstantInterfaceMethodref:
		return p.resolveMember(ref.ClassIndex, ref.NameAndTypeIndex)
	default:
		return nil, fmt.Errorf("%w: index %d is %s, expected Methodref", ErrUnexpectedConstantType, index, e.Tag())
	}
}

// ResolveInterfaceMethodref resolves the InterfaceMethodref entry at index.
func (p *ConstantPool) ResolveInterfaceMethodref(index uint16) (*MemberRef, error) {
	ref, err := lookup[*ConstantInterfaceMethodref](p, index, TagInterfaceMethodref)
	if err != nil {
		return nil, err
	}
	return p.resolveMember(ref.ClassIndex, ref.NameAndTypeIndex)
}

// parseConstantPool reads count-1 slots. Long and Double consume two.
func parseConstantPool(r *reader, count uint16) (*ConstantPool, error) {
	if count == 0 {
		count = 1
	}
	entries := make([]ConstantPoolInfo, count)

	for i := 1; i < int(count); i++ {
		entry, err := parseConstant(r)
		if err != nil {
			return nil, withContext(err, fmt.Sprintf("constant_pool[%d]", i))
		}
		entries[i] = entry
		if t := entry.Tag(); t == TagLong || t == TagDouble {
			i++ // the next slot is vacant
		}
	}
	return &ConstantPool{entries: entries}, nil
}

func parseConstant(r *reader) (ConstantPoolInfo, error) {
	tag, err := r.u1()
	if err != nil {
		return nil, err
	}

	switch ConstantTag(tag) {
	case TagUtf8:
		length, err := r.u2()
		if err != nil {
			return nil, err
		}
		b, err := r.bytes(int64(length))
		if err != nil {
			return nil, err
		}
		return &ConstantUtf8{Bytes: b}, nil

	case TagInteger:
		v, err := r.u4()
		if err != nil {
			return nil, err
		}
		return &ConstantInteger{Value: int32(v)}, nil

	case TagFloat:
		v, err := r.u4()
		if err != nil {
			return nil, err
		}
		return &ConstantFloat{Value: math.Float32frombits(v)}, nil

	case TagLong:
		v, err := r.u8()
		if err != nil {
			return nil, err
		}
		return &ConstantLong{Value: int64(v)}, nil

	case TagDouble:
		v, err := r.u8()
		if err != nil {
			return nil, err
		}
		return &ConstantDouble{Value: math.Float64frombits(v)}, nil

	case TagClass:
		idx, err := r.u2()
		if err != nil {
			return nil, err
		}
		return &ConstantClass{NameIndex: idx}, nil

	case TagString:
		idx, err := r.u2()
		if err != nil {
			return nil, err
		}
		return &ConstantString{StringIndex: idx}, nil

	case TagFieldref, TagMethodref, TagInterfaceMethodref:
		classIdx, err := r.u2()
		if err != nil {
			return nil, err
		}
		natIdx, err := r.u2()
		if err != nil {
			return nil, err
		}
		switch ConstantTag(tag) {
		case TagFieldref:
			return &ConstantFieldref{ClassIndex: classIdx, NameAndTypeIndex: natIdx}, nil
		case TagMethodref:
			return &ConstantMethodref{ClassIndex: classIdx, NameAndTypeIndex: natIdx}, nil
		default:
			return &ConstantInterfaceMethodref{ClassIndex: classIdx, NameAndTypeIndex: natIdx}, nil
		}

	case TagNameAndType:
		nameIdx, err := r.u2()
		if err != nil {
			return nil, err
		}
		descIdx, err := r.u2()
		if err != nil {
			return nil, err
		}
		return &ConstantNameAndType{NameIndex: nameIdx, DescriptorIndex: descIdx}, nil

	case TagMethodHandle:
		kind, err := r.u1()
		if err != nil {
			return nil, err
		}
		if !ReferenceKind(kind).valid() {
			return nil, r.fail(InvalidReferenceKind, "reference kind %d", kind)
		}
		idx, err := r.u2()
		if err != nil {
			return nil, err
		}
		return &ConstantMethodHandle{ReferenceKind: ReferenceKind(kind), ReferenceIndex: idx}, nil

	case TagMethodType:
		idx, err := r.u2()
		if err != nil {
			return nil, err
		}
		return &ConstantMethodType{DescriptorIndex: idx}, nil

	case TagDynamic, TagInvokeDynamic:
		bsmIdx, err := r.u2()
		if err != nil {
			return nil, err
		}
		natIdx, err := r.u2()
		if err != nil {
			return nil, err
		}
		if ConstantTag(tag) == TagDynamic {
			return &ConstantDynamic{BootstrapMethodAttrIndex: bsmIdx, NameAndTypeIndex: natIdx}, nil
		}
		return &ConstantInvokeDynamic{BootstrapMethodAttrIndex: bsmIdx, NameAndTypeIndex: natIdx}, nil

	case TagModule:
		idx, err := r.u2()
		if err != nil {
			return nil, err
		}
		return &ConstantModule{NameIndex: idx}, nil

	case TagPackage:
		idx, err := r.u2()
		if err != nil {
			return nil, err
		}
		return &ConstantPackage{NameIndex: idx}, nil

	default:
		return nil, r.fail(InvalidConstantPoolInfoTag, "tag %d", tag)
	}
}

// decodeModifiedUTF8 decodes the class-file variant of UTF-8: NUL is two
// bytes and supplementary characters are encoded as surrogate pairs.
// Malformed sequences decode to U+FFFD.
func decodeModifiedUTF8(b []byte) string {
	units := make([]uint16, 0, len(b))
	for i := 0; i < len(b); {
		c := b[i]
		switch {
		case c < 0x80:
			units = append(units, uint16(c))
			i++
		case c&0xE0 == 0xC0 && i+1 < len(b) && b[i+1]&0xC0 == 0x80:
			units = append(units, uint16(c&0x1F)<<6|uint16(b[i+1]&0x3F))
			i += 2
		case c&0xF0 == 0xE0 && i+2 < len(b) && b[i+1]&0xC0 == 0x80 && b[i+2]&0xC0 == 0x80:
			units = append(units, uint16(c&0x0F)<<12|uint16(b[i+1]&0x3F)<<6|uint16(b[i+2]&0x3F))
			i += 3
		default:
			units = append(units, 0xFFFD)
			i++
		}
	}
	return string(utf16.Decode(units))
}
