package vm

import (
	"fmt"
	"strconv"
	"strings"
)

// Object represents a JVM object instance.
type Object struct {
	ClassName string
	Fields    map[string]Value

	// Native holds the host payload of built-in classes: the contents of a
	// java/lang/String, a PrintStream writer, a StringBuilder buffer.
	Native any
}

// Field returns the named field, or the descriptor's default value when
// the field was never written.
func (o *Object) Field(name, desc string) Value {
	if v, ok := o.Fields[name]; ok {
		return v
	}
	return zeroValue(desc)
}

// Array represents a JVM array. Type is the component descriptor, e.g.
// "I", "Ljava/lang/String;" or "[J".
type Array struct {
	Type     string
	Elements []Value
}

// ClassName returns the array class name, e.g. "[I".
func (a *Array) ClassName() string { return "[" + a.Type }

// elementZero returns the stored form of a fresh array element. Narrow
// primitive arrays keep their native kind.
func elementZero(typ string) Value {
	switch typ {
	case "Z":
		return BooleanValue(false)
	case "B":
		return ByteValue(0)
	case "C":
		return CharValue(0)
	case "S":
		return ShortValue(0)
	}
	return zeroValue(typ)
}

// arrayTypes maps newarray atype codes to component descriptors.
var arrayTypes = map[uint8]string{
	4:  "Z",
	5:  "C",
	6:  "F",
	7:  "D",
	8:  "B",
	9:  "S",
	10: "I",
	11: "J",
}

// array returns the array at r. A non-array reference is a fault.
func (vm *VM) array(r Ref) *Array {
	var arr *Array
	vm.read(func(h *Heap) { arr, _ = h.Array(r) })
	if arr == nil {
		panic(newFault(FaultTypeMismatch, "ref %d (%s) is not an array", r, vm.classOf(r)))
	}
	return arr
}

// checkArrayType faults unless the component descriptor starts with one
// of the letters in types.
func checkArrayType(arr *Array, types string) {
	if !strings.ContainsRune(types, rune(arr.Type[0])) {
		panic(newFault(FaultTypeMismatch, "%s array accessed as %s", arr.ClassName(), types))
	}
}

func (t *Thread) arrayIndex(arr *Array, index int32) error {
	if index < 0 || int(index) >= len(arr.Elements) {
		return t.vm.throwNew("java/lang/ArrayIndexOutOfBoundsException",
			fmt.Sprintf("Index %d out of bounds for length %d", index, len(arr.Elements)))
	}
	return nil
}

// arrayLoad implements the <t>aload instructions.
func (t *Thread) arrayLoad(f *Frame, types string) error {
	index := f.PopInt()
	ref := f.PopRef()
	if ref == 0 {
		return t.vm.throwNPE()
	}
	arr := t.vm.array(ref)
	checkArrayType(arr, types)
	if err := t.arrayIndex(arr, index); err != nil {
		return err
	}
	var v Value
	t.vm.read(func(*Heap) { v = arr.Elements[index] })
	f.Push(v.widen())
	return nil
}

// arrayStore implements the <t>astore instructions. Narrow values are
// truncated to the array's component type.
func (t *Thread) arrayStore(f *Frame, types string) error {
	v := f.Pop()
	index := f.PopInt()
	ref := f.PopRef()
	if ref == 0 {
		return t.vm.throwNPE()
	}
	arr := t.vm.array(ref)
	checkArrayType(arr, types)
	if err := t.arrayIndex(arr, index); err != nil {
		return err
	}
	stored := storedElement(arr.Type, v)
	if stored.Kind() == KindReference && !stored.IsNull() {
		r := stored.AsRef()
		elem := strings.TrimPrefix(arr.Type, "L")
		elem = strings.TrimSuffix(elem, ";")
		ok, err := t.vm.assignable(t.vm.classOf(r), elem)
		if err != nil {
			return err
		}
		if !ok {
			return t.vm.throwNew("java/lang/ArrayStoreException", javaTypeName(t.vm.classOf(r)))
		}
	}
	t.vm.write(func(*Heap) { arr.Elements[index] = stored })
	return nil
}

// storedElement converts an operand to the form kept in an array of the
// given component type.
func storedElement(typ string, v Value) Value {
	switch typ {
	case "Z":
		return BooleanValue(v.AsInt()&1 != 0)
	case "B":
		return ByteValue(int8(v.AsInt()))
	case "C":
		return CharValue(uint16(v.AsInt()))
	case "S":
		return ShortValue(int16(v.AsInt()))
	case "I":
		v.want(KindInt)
	case "J":
		v.want(KindLong)
	case "F":
		v.want(KindFloat)
	case "D":
		v.want(KindDouble)
	default:
		v.want(KindReference)
	}
	return v
}

// newArray implements newarray and anewarray. typ is the component
// descriptor.
func (t *Thread) newArray(f *Frame, typ string) error {
	n := f.PopInt()
	if n < 0 {
		return t.vm.throwNew("java/lang/NegativeArraySizeException", strconv.Itoa(int(n)))
	}
	var r Ref
	t.vm.write(func(h *Heap) { r = h.NewArray(typ, int(n)) })
	f.Push(RefValue(r))
	return nil
}

// multianewarray allocates nested arrays for the first dimensions counts;
// deeper components stay null.
func (t *Thread) multianewarray(f *Frame) error {
	pool, err := f.constantPool()
	if err != nil {
		return err
	}
	name, err := pool.ClassName(f.ReadU16())
	if err != nil {
		return fmt.Errorf("multianewarray: %w", err)
	}
	dims := int(f.ReadU8())
	if dims < 1 || dims > strings.Count(name, "[") || !strings.HasPrefix(name, "[") {
		return fmt.Errorf("multianewarray: %d dimensions for %s", dims, name)
	}
	counts := make([]int32, dims)
	for i := dims - 1; i >= 0; i-- {
		counts[i] = f.PopInt()
	}
	for _, n := range counts {
		if n < 0 {
			return t.vm.throwNew("java/lang/NegativeArraySizeException", strconv.Itoa(int(n)))
		}
	}
	var r Ref
	t.vm.write(func(h *Heap) { r = allocMulti(h, name[1:], counts) })
	f.Push(RefValue(r))
	return nil
}

func allocMulti(h *Heap, typ string, counts []int32) Ref {
	r := h.NewArray(typ, int(counts[0]))
	if len(counts) == 1 {
		return r
	}
	arr, _ := h.Array(r)
	for i := range arr.Elements {
		arr.Elements[i] = RefValue(allocMulti(h, typ[1:], counts[1:]))
	}
	return r
}
