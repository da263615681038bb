package classfile

import (
	"errors"
	"math"
	"testing"

	"github.com/daimatz/classvm/internal/classtest"
)

func TestConstantPoolWideEntries(t *testing.T) {
	b := classtest.New("Wide", "java/lang/Object")
	longIdx := b.Long(-1)
	doubleIdx := b.Double(math.Pi)
	after := b.Utf8("after")

	cf, err := ParseBytes(b.Bytes())
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	pool := cf.ConstantPool

	if doubleIdx != longIdx+2 || after != doubleIdx+2 {
		t.Fatalf("builder slots: long=%d double=%d after=%d", longIdx, doubleIdx, after)
	}

	e, err := pool.Get(longIdx)
	if err != nil {
		t.Fatalf("Get(long): %v", err)
	}
	if l, ok := e.(*ConstantLong); !ok || l.Value != -1 {
		t.Errorf("long entry: got %#v", e)
	}
	e, err = pool.Get(doubleIdx)
	if err != nil {
		t.Fatalf("Get(double): %v", err)
	}
	if d, ok := e.(*ConstantDouble); !ok || d.Value != math.Pi {
		t.Errorf("double entry: got %#v", e)
	}

	// the slot after a Long or Double is unusable
	for _, vacant := range []uint16{longIdx + 1, doubleIdx + 1} {
		if _, err := pool.Get(vacant); !errors.Is(err, ErrInvalidConstantPoolIndex) {
			t.Errorf("Get(%d): got %v, want ErrInvalidConstantPoolIndex", vacant, err)
		}
	}

	if s, err := pool.Utf8(after); err != nil || s != "after" {
		t.Errorf("Utf8(after): got %q, %v", s, err)
	}

	var walked []uint16
	pool.Entries(func(index uint16, _ ConstantPoolInfo) bool {
		walked = append(walked, index)
		return true
	})
	for _, idx := range walked {
		if idx == longIdx+1 || idx == doubleIdx+1 {
			t.Errorf("Entries visited vacant slot %d", idx)
		}
	}
	if want := int(pool.Count()) - 1 - 2; len(walked) != want {
		t.Errorf("Entries visited %d slots, want %d", len(walked), want)
	}
}

func TestConstantPoolLookups(t *testing.T) {
	b := classtest.New("Look", "java/lang/Object")
	field := b.Fieldref("Look", "count", "I")
	method := b.Methodref("Look", "run", "(I)V")
	iface := b.InterfaceMethodref("java/lang/Runnable", "run", "()V")
	str := b.String("hello")
	num := b.Integer(-42)
	flt := b.Float(1.5)

	cf, err := ParseBytes(b.Bytes())
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	pool := cf.ConstantPool

	ref, err := pool.ResolveFieldref(field)
	if err != nil || ref.String() != "Look.count:I" {
		t.Errorf("ResolveFieldref: got %v, %v", ref, err)
	}
	ref, err = pool.ResolveMethodref(method)
	if err != nil || ref.String() != "Look.run:(I)V" {
		t.Errorf("ResolveMethodref: got %v, %v", ref, err)
	}
	ref, err = pool.ResolveMethodref(iface)
	if err != nil || ref.ClassName != "java/lang/Runnable" {
		t.Errorf("ResolveMethodref(interface): got %v, %v", ref, err)
	}
	if _, err := pool.ResolveInterfaceMethodref(method); !errors.Is(err, ErrUnexpectedConstantType) {
		t.Errorf("ResolveInterfaceMethodref(methodref): got %v", err)
	}
	if _, err := pool.ResolveFieldref(method); !errors.Is(err, ErrUnexpectedConstantType) {
		t.Errorf("ResolveFieldref(methodref): got %v", err)
	}
	if s, err := pool.StringLiteral(str); err != nil || s != "hello" {
		t.Errorf("StringLiteral: got %q, %v", s, err)
	}
	if e, _ := pool.Get(num); e.(*ConstantInteger).Value != -42 {
		t.Errorf("Integer: got %#v", e)
	}
	if e, _ := pool.Get(flt); e.(*ConstantFloat).Value != 1.5 {
		t.Errorf("Float: got %#v", e)
	}
	if _, err := pool.Get(0); !errors.Is(err, ErrInvalidConstantPoolIndex) {
		t.Errorf("Get(0): got %v", err)
	}
	if _, err := pool.Get(pool.Count()); !errors.Is(err, ErrInvalidConstantPoolIndex) {
		t.Errorf("Get(count): got %v", err)
	}
}

func TestDecodeModifiedUTF8(t *testing.T) {
	tests := []struct {
		name string
		in   []byte
		want string
	}{
		{"ascii", []byte("java/lang/Object"), "java/lang/Object"},
		{"two byte nul", []byte{'a', 0xC0, 0x80, 'b'}, "a\x00b"},
		{"two byte", []byte{0xC3, 0xA9}, "é"},
		{"three byte", []byte{0xE3, 0x81, 0x82}, "あ"},
		{"surrogate pair", []byte{0xED, 0xA0, 0xBD, 0xED, 0xB8, 0x80}, "\U0001F600"},
		{"malformed", []byte{0xFF}, "�"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := decodeModifiedUTF8(tt.in); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}
