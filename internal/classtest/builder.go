// Package classtest assembles class files in memory for tests.
package classtest

import (
	"bytes"
	"encoding/binary"
	"math"
)

// Builder accumulates a constant pool, members and attributes, and encodes
// them as a class file with Bytes. Pool entries are deduplicated.
type Builder struct {
	Major       uint16
	Minor       uint16
	AccessFlags uint16

	pool    bytes.Buffer
	next    uint16
	index   map[string]uint16
	this    uint16
	super   uint16
	ifaces  []uint16
	fields  [][]byte
	methods [][]byte
	attrs   [][]byte
}

// New starts a public class named name. An empty super leaves super_class 0.
func New(name, super string) *Builder {
	b := &Builder{
		Major:       61,
		AccessFlags: 0x0021, // ACC_PUBLIC | ACC_SUPER
		next:        1,
		index:       make(map[string]uint16),
	}
	b.this = b.Class(name)
	if super != "" {
		b.super = b.Class(super)
	}
	return b
}

// Handler is an exception table entry. An empty CatchType catches everything.
type Handler struct {
	StartPC   uint16
	EndPC     uint16
	HandlerPC uint16
	CatchType string
}

func u2(v uint16) []byte { return binary.BigEndian.AppendUint16(nil, v) }
func u4(v uint32) []byte { return binary.BigEndian.AppendUint32(nil, v) }

func (b *Builder) add(key string, slots uint16, entry []byte) uint16 {
	if idx, ok := b.index[key]; ok {
		return idx
	}
	idx := b.next
	b.pool.Write(entry)
	b.next += slots
	b.index[key] = idx
	return idx
}

// Raw appends an entry with an arbitrary tag and payload without
// deduplication. It takes one slot.
func (b *Builder) Raw(tag byte, payload ...byte) uint16 {
	idx := b.next
	b.pool.WriteByte(tag)
	b.pool.Write(payload)
	b.next++
	return idx
}

func (b *Builder) Utf8(s string) uint16 {
	entry := append([]byte{1}, u2(uint16(len(s)))...)
	return b.add("U:"+s, 1, append(entry, s...))
}

func (b *Builder) Class(name string) uint16 {
	n := b.Utf8(name)
	return b.add("C:"+name, 1, append([]byte{7}, u2(n)...))
}

func (b *Builder) String(s string) uint16 {
	n := b.Utf8(s)
	return b.add("S:"+s, 1, append([]byte{8}, u2(n)...))
}

func (b *Builder) Integer(v int32) uint16 {
	key := "I:" + string(u4(uint32(v)))
	return b.add(key, 1, append([]byte{3}, u4(uint32(v))...))
}

func (b *Builder) Float(v float32) uint16 {
	bits := math.Float32bits(v)
	return b.add("F:"+string(u4(bits)), 1, append([]byte{4}, u4(bits)...))
}

// Long adds a Long entry, which occupies two slots.
func (b *Builder) Long(v int64) uint16 {
	payload := binary.BigEndian.AppendUint64(nil, uint64(v))
	return b.add("J:"+string(payload), 2, append([]byte{5}, payload...))
}

// Double adds a Double entry, which occupies two slots.
func (b *Builder) Double(v float64) uint16 {
	payload := binary.BigEndian.AppendUint64(nil, math.Float64bits(v))
	return b.add("D:"+string(payload), 2, append([]byte{6}, payload...))
}

func (b *Builder) NameAndType(name, desc string) uint16 {
	n, d := b.Utf8(name), b.Utf8(desc)
	entry := append(append([]byte{12}, u2(n)...), u2(d)...)
	return b.add("N:"+name+":"+desc, 1, entry)
}

func (b *Builder) ref(tag byte, class, name, desc string) uint16 {
	c, nt := b.Class(class), b.NameAndType(name, desc)
	entry := append(append([]byte{tag}, u2(c)...), u2(nt)...)
	return b.add(string(rune('0'+tag))+":"+class+"."+name+":"+desc, 1, entry)
}

func (b *Builder) Fieldref(class, name, desc string) uint16 {
	return b.ref(9, class, name, desc)
}

func (b *Builder) Methodref(class, name, desc string) uint16 {
	return b.ref(10, class, name, desc)
}

func (b *Builder) InterfaceMethodref(class, name, desc string) uint16 {
	return b.ref(11, class, name, desc)
}

// AddInterface adds a direct superinterface.
func (b *Builder) AddInterface(name string) {
	b.ifaces = append(b.ifaces, b.Class(name))
}

// Attribute encodes an attribute_info with the given payload.
func (b *Builder) Attribute(name string, payload []byte) []byte {
	out := u2(b.Utf8(name))
	out = append(out, u4(uint32(len(payload)))...)
	return append(out, payload...)
}

// Code encodes a Code attribute.
func (b *Builder) Code(maxStack, maxLocals uint16, code []byte, handlers []Handler, attrs ...[]byte) []byte {
	var p []byte
	p = append(p, u2(maxStack)...)
	p = append(p, u2(maxLocals)...)
	p = append(p, u4(uint32(len(code)))...)
	p = append(p, code...)
	p = append(p, u2(uint16(len(handlers)))...)
	for _, h := range handlers {
		var catchType uint16
		if h.CatchType != "" {
			catchType = b.Class(h.CatchType)
		}
		p = append(p, u2(h.StartPC)...)
		p = append(p, u2(h.EndPC)...)
		p = append(p, u2(h.HandlerPC)...)
		p = append(p, u2(catchType)...)
	}
	p = append(p, u2(uint16(len(attrs)))...)
	for _, a := range attrs {
		p = append(p, a...)
	}
	return b.Attribute("Code", p)
}

func (b *Builder) member(flags uint16, name, desc string, attrs [][]byte) []byte {
	out := u2(flags)
	out = append(out, u2(b.Utf8(name))...)
	out = append(out, u2(b.Utf8(desc))...)
	out = append(out, u2(uint16(len(attrs)))...)
	for _, a := range attrs {
		out = append(out, a...)
	}
	return out
}

func (b *Builder) AddField(flags uint16, name, desc string, attrs ...[]byte) {
	b.fields = append(b.fields, b.member(flags, name, desc, attrs))
}

func (b *Builder) AddMethod(flags uint16, name, desc string, attrs ...[]byte) {
	b.methods = append(b.methods, b.member(flags, name, desc, attrs))
}

// AddAttribute appends an encoded class-level attribute.
func (b *Builder) AddAttribute(attr []byte) {
	b.attrs = append(b.attrs, attr)
}

// Bytes encodes the class file.
func (b *Builder) Bytes() []byte {
	var out bytes.Buffer
	out.Write(u4(0xCAFEBABE))
	out.Write(u2(b.Minor))
	out.Write(u2(b.Major))
	out.Write(u2(b.next))
	out.Write(b.pool.Bytes())
	out.Write(u2(b.AccessFlags))
	out.Write(u2(b.this))
	out.Write(u2(b.super))
	out.Write(u2(uint16(len(b.ifaces))))
	for _, i := range b.ifaces {
		out.Write(u2(i))
	}
	for _, list := range [][][]byte{b.fields, b.methods, b.attrs} {
		out.Write(u2(uint16(len(list))))
		for _, item := range list {
			out.Write(item)
		}
	}
	return out.Bytes()
}
