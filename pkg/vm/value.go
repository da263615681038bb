package vm

import (
	"fmt"
	"math"
)

// Kind identifies the native representation carried by a Value.
type Kind uint8

// The zero Kind marks an empty local variable slot.
const (
	KindBoolean Kind = iota + 1
	KindByte
	KindChar
	KindShort
	KindInt
	KindFloat
	KindLong
	KindDouble
	KindReference
	KindReturnAddress
)

var kindNames = [...]string{
	0:                 "empty",
	KindBoolean:       "boolean",
	KindByte:          "byte",
	KindChar:          "char",
	KindShort:         "short",
	KindInt:           "int",
	KindFloat:         "float",
	KindLong:          "long",
	KindDouble:        "double",
	KindReference:     "reference",
	KindReturnAddress: "returnAddress",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", k)
}

// Category returns 2 for long and double, 1 otherwise.
func (k Kind) Category() int {
	if k == KindLong || k == KindDouble {
		return 2
	}
	return 1
}

// Ref is a heap reference. Ref 0 is null.
type Ref uint32

// Value is one operand stack entry or local variable slot. Values are
// comparable; two Values are equal only if both kind and payload match.
type Value struct {
	kind Kind
	bits uint64
}

func BooleanValue(v bool) Value {
	if v {
		return Value{kind: KindBoolean, bits: 1}
	}
	return Value{kind: KindBoolean}
}

func ByteValue(v int8) Value   { return Value{kind: KindByte, bits: uint64(int64(v))} }
func CharValue(v uint16) Value { return Value{kind: KindChar, bits: uint64(v)} }
func ShortValue(v int16) Value { return Value{kind: KindShort, bits: uint64(int64(v))} }
func IntValue(v int32) Value   { return Value{kind: KindInt, bits: uint64(int64(v))} }
func LongValue(v int64) Value  { return Value{kind: KindLong, bits: uint64(v)} }

func FloatValue(v float32) Value {
	return Value{kind: KindFloat, bits: uint64(math.Float32bits(v))}
}

func DoubleValue(v float64) Value {
	return Value{kind: KindDouble, bits: math.Float64bits(v)}
}

// RefValue creates a reference Value.
func RefValue(r Ref) Value { return Value{kind: KindReference, bits: uint64(r)} }

// NullValue creates a null reference Value.
func NullValue() Value { return RefValue(0) }

// ReturnAddressValue creates the value pushed by jsr.
func ReturnAddressValue(pc int) Value {
	return Value{kind: KindReturnAddress, bits: uint64(pc)}
}

// Kind returns the value's kind. The zero Value has kind 0.
func (v Value) Kind() Kind { return v.kind }

// IsEmpty reports whether v is an unset slot.
func (v Value) IsEmpty() bool { return v.kind == 0 }

// IsNull reports whether v is the null reference.
func (v Value) IsNull() bool { return v.kind == KindReference && v.bits == 0 }

func (v Value) want(k Kind) {
	if v.kind != k {
		panic(newFault(FaultTypeMismatch, "expected %s, got %s", k, v.kind))
	}
}

func (v Value) AsBoolean() bool { v.want(KindBoolean); return v.bits != 0 }
func (v Value) AsByte() int8    { v.want(KindByte); return int8(v.bits) }
func (v Value) AsChar() uint16  { v.want(KindChar); return uint16(v.bits) }
func (v Value) AsShort() int16  { v.want(KindShort); return int16(v.bits) }
func (v Value) AsInt() int32    { v.want(KindInt); return int32(v.bits) }
func (v Value) AsLong() int64   { v.want(KindLong); return int64(v.bits) }
func (v Value) AsRef() Ref      { v.want(KindReference); return Ref(v.bits) }

func (v Value) AsFloat() float32 {
	v.want(KindFloat)
	return math.Float32frombits(uint32(v.bits))
}

func (v Value) AsDouble() float64 {
	v.want(KindDouble)
	return math.Float64frombits(v.bits)
}

func (v Value) AsReturnAddress() int {
	v.want(KindReturnAddress)
	return int(v.bits)
}

// widen converts boolean, byte, char and short values to int, the
// representation the instruction set computes with. Other kinds are
// returned unchanged.
func (v Value) widen() Value {
	switch v.kind {
	case KindBoolean, KindChar:
		return IntValue(int32(v.bits))
	case KindByte, KindShort:
		return IntValue(int32(int64(v.bits)))
	}
	return v
}

func (v Value) String() string {
	switch v.kind {
	case 0:
		return "<empty>"
	case KindBoolean:
		return fmt.Sprintf("boolean(%t)", v.bits != 0)
	case KindByte:
		return fmt.Sprintf("byte(%d)", int8(v.bits))
	case KindChar:
		return fmt.Sprintf("char(%d)", uint16(v.bits))
	case KindShort:
		return fmt.Sprintf("short(%d)", int16(v.bits))
	case KindInt:
		return fmt.Sprintf("int(%d)", int32(v.bits))
	case KindFloat:
		return fmt.Sprintf("float(%g)", math.Float32frombits(uint32(v.bits)))
	case KindLong:
		return fmt.Sprintf("long(%d)", int64(v.bits))
	case KindDouble:
		return fmt.Sprintf("double(%g)", math.Float64frombits(v.bits))
	case KindReference:
		if v.bits == 0 {
			return "null"
		}
		return fmt.Sprintf("ref(%d)", v.bits)
	case KindReturnAddress:
		return fmt.Sprintf("returnAddress(%d)", v.bits)
	}
	return fmt.Sprintf("Value(%d, %#x)", v.kind, v.bits)
}

// zeroValue returns the default value for a field descriptor.
func zeroValue(desc string) Value {
	if desc == "" {
		return NullValue()
	}
	switch desc[0] {
	case 'B', 'C', 'I', 'S', 'Z':
		return IntValue(0)
	case 'J':
		return LongValue(0)
	case 'F':
		return FloatValue(0)
	case 'D':
		return DoubleValue(0)
	}
	return NullValue()
}
