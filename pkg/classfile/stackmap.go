package classfile

import "fmt"

// VerificationTypeTag is the tag of a verification_type_info.
type VerificationTypeTag uint8

const (
	ItemTop               VerificationTypeTag = 0
	ItemInteger           VerificationTypeTag = 1
	ItemFloat             VerificationTypeTag = 2
	ItemDouble            VerificationTypeTag = 3
	ItemLong              VerificationTypeTag = 4
	ItemNull              VerificationTypeTag = 5
	ItemUninitializedThis VerificationTypeTag = 6
	ItemObject            VerificationTypeTag = 7
	ItemUninitialized     VerificationTypeTag = 8
)

// VerificationTypeInfo describes one local or stack slot in a stack map
// frame. CPoolIndex is set only for ItemObject and Offset only for
// ItemUninitialized.
type VerificationTypeInfo struct {
	Tag        VerificationTypeTag
	CPoolIndex uint16
	Offset     uint16
}

// StackMapFrame is one entry of a StackMapTable.
type StackMapFrame interface {
	FrameType() uint8
	OffsetDelta() uint16
}

// SameFrame has frame_type 0-63; the type is the offset delta.
type SameFrame struct {
	Type uint8
}

func (f *SameFrame) FrameType() uint8    { return f.Type }
func (f *SameFrame) OffsetDelta() uint16 { return uint16(f.Type) }

// SameLocals1StackItemFrame has frame_type 64-127.
type SameLocals1StackItemFrame struct {
	Type  uint8
	Stack VerificationTypeInfo
}

func (f *SameLocals1StackItemFrame) FrameType() uint8    { return f.Type }
func (f *SameLocals1StackItemFrame) OffsetDelta() uint16 { return uint16(f.Type - 64) }

// SameLocals1StackItemFrameExtended has frame_type 247.
type SameLocals1StackItemFrameExtended struct {
	Delta uint16
	Stack VerificationTypeInfo
}

func (f *SameLocals1StackItemFrameExtended) FrameType() uint8    { return 247 }
func (f *SameLocals1StackItemFrameExtended) OffsetDelta() uint16 { return f.Delta }

// ChopFrame has frame_type 248-250 and drops 251-type locals.
type ChopFrame struct {
	Type  uint8
	Delta uint16
}

func (f *ChopFrame) FrameType() uint8    { return f.Type }
func (f *ChopFrame) OffsetDelta() uint16 { return f.Delta }

// Chopped returns the number of locals removed.
func (f *ChopFrame) Chopped() int { return 251 - int(f.Type) }

// SameFrameExtended has frame_type 251.
type SameFrameExtended struct {
	Delta uint16
}

func (f *SameFrameExtended) FrameType() uint8    { return 251 }
func (f *SameFrameExtended) OffsetDelta() uint16 { return f.Delta }

// AppendFrame has frame_type 252-254 and adds type-251 locals.
type AppendFrame struct {
	Type   uint8
	Delta  uint16
	Locals []VerificationTypeInfo
}

func (f *AppendFrame) FrameType() uint8    { return f.Type }
func (f *AppendFrame) OffsetDelta() uint16 { return f.Delta }

// FullFrame has frame_type 255.
type FullFrame struct {
	Delta  uint16
	Locals []VerificationTypeInfo
	Stack  []VerificationTypeInfo
}

func (f *FullFrame) FrameType() uint8    { return 255 }
func (f *FullFrame) OffsetDelta() uint16 { return f.Delta }

func parseStackMapTable(r *reader, _ *ConstantPool) (Attribute, error) {
	count, err := r.u2()
	if err != nil {
		return nil, err
	}
	a := &StackMapTableAttribute{Entries: make([]StackMapFrame, 0, count)}
	for i := 0; i < int(count); i++ {
		f, err := parseStackMapFrame(r)
		if err != nil {
			return nil, withContext(err, fmt.Sprintf("entries[%d]", i))
		}
		a.Entries = append(a.Entries, f)
	}
	return a, nil
}

func parseStackMapFrame(r *reader) (StackMapFrame, error) {
	frameType, err := r.u1()
	if err != nil {
		return nil, err
	}

	switch {
	case frameType <= 63:
		return &SameFrame{Type: frameType}, nil

	case frameType <= 127:
		vti, err := parseVerificationTypeInfo(r)
		if err != nil {
			return nil, err
		}
		return &SameLocals1StackItemFrame{Type: frameType, Stack: vti}, nil

	case frameType == 247:
		delta, err := r.u2()
		if err != nil {
			return nil, err
		}
		vti, err := parseVerificationTypeInfo(r)
		if err != nil {
			return nil, err
		}
		return &SameLocals1StackItemFrameExtended{Delta: delta, Stack: vti}, nil

	case frameType >= 248 && frameType <= 250:
		delta, err := r.u2()
		if err != nil {
			return nil, err
		}
		return &ChopFrame{Type: frameType, Delta: delta}, nil

	case frameType == 251:
		delta, err := r.u2()
		if err != nil {
			return nil, err
		}
		return &SameFrameExtended{Delta: delta}, nil

	case frameType >= 252 && frameType <= 254:
		delta, err := r.u2()
		if err != nil {
			return nil, err
		}
		locals, err := parseVerificationTypeInfos(r, int(frameType)-251)
		if err != nil {
			return nil, err
		}
		return &AppendFrame{Type: frameType, Delta: delta, Locals: locals}, nil

	case frameType == 255:
		delta, err := r.u2()
		if err != nil {
			return nil, err
		}
		nLocals, err := r.u2()
		if err != nil {
			return nil, err
		}
		locals, err := parseVerificationTypeInfos(r, int(nLocals))
		if err != nil {
			return nil, err
		}
		nStack, err := r.u2()
		if err != nil {
			return nil, err
		}
		stack, err := parseVerificationTypeInfos(r, int(nStack))
		if err != nil {
			return nil, err
		}
		return &FullFrame{Delta: delta, Locals: locals, Stack: stack}, nil

	default:
		// 128-246 are reserved
		return nil, r.fail(InvalidStackMapFrameType, "frame type %d", frameType)
	}
}

func parseVerificationTypeInfos(r *reader, n int) ([]VerificationTypeInfo, error) {
	out := make([]VerificationTypeInfo, n)
	for i := range out {
		vti, err := parseVerificationTypeInfo(r)
		if err != nil {
			return nil, err
		}
		out[i] = vti
	}
	return out, nil
}

func parseVerificationTypeInfo(r *reader) (VerificationTypeInfo, error) {
	tag, err := r.u1()
	if err != nil {
		return VerificationTypeInfo{}, err
	}
	vti := VerificationTypeInfo{Tag: VerificationTypeTag(tag)}
	switch vti.Tag {
	case ItemTop, ItemInteger, ItemFloat, ItemDouble, ItemLong, ItemNull, ItemUninitializedThis:
	case ItemObject:
		if vti.CPoolIndex, err = r.u2(); err != nil {
			return VerificationTypeInfo{}, err
		}
	case ItemUninitialized:
		if vti.Offset, err = r.u2(); err != nil {
			return VerificationTypeInfo{}, err
		}
	default:
		return VerificationTypeInfo{}, r.fail(InvalidVerificationTypeTag, "tag %d", tag)
	}
	return vti, nil
}
