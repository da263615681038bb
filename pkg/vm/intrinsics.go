package vm

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/daimatz/classvm/pkg/classfile"
	"github.com/daimatz/classvm/pkg/native"
)

// intrinsic implements a method of a built-in class on the host. args
// holds the receiver (for instance methods) followed by the arguments.
type intrinsic func(t *Thread, args []Value) (Value, error)

// intrinsics is keyed by methodKey. Filled in by init to break the
// reference cycle through findMethod.
var intrinsics map[string]intrinsic

const (
	objectDesc   = "Ljava/lang/Object;"
	stringDesc   = "Ljava/lang/String;"
	toStringDesc = "()" + stringDesc
)

func init() {
	intrinsics = map[string]intrinsic{
		"java/lang/Object.<init>:()V":                   func(*Thread, []Value) (Value, error) { return Value{}, nil },
		"java/lang/Object.hashCode:()I":                 objectHashCode,
		"java/lang/Object.equals:(" + objectDesc + ")Z": objectEquals,
		"java/lang/Object.toString:" + toStringDesc:     objectToString,
		"java/lang/Object.getClass:()Ljava/lang/Class;": objectGetClass,
		"java/lang/Class.getName:" + toStringDesc:       classGetName,

		"java/lang/String.length:()I":                               stringLength,
		"java/lang/String.charAt:(I)C":                              stringCharAt,
		"java/lang/String.equals:(" + objectDesc + ")Z":             stringEquals,
		"java/lang/String.hashCode:()I":                             stringHashCode,
		"java/lang/String.concat:(" + stringDesc + ")" + stringDesc: stringConcat,
		"java/lang/String.isEmpty:()Z":                              stringIsEmpty,
		"java/lang/String.intern:" + toStringDesc:                   stringIntern,
		"java/lang/String.toString:" + toStringDesc:                 func(_ *Thread, args []Value) (Value, error) { return args[0], nil },

		"java/lang/StringBuilder.<init>:()V":                   builderInit,
		"java/lang/StringBuilder.<init>:(" + stringDesc + ")V": builderInit,
		"java/lang/StringBuilder.toString:" + toStringDesc:     builderToString,
		"java/lang/StringBuilder.length:()I":                   builderLength,

		"java/lang/Integer.<init>:(I)V":                     integerInit,
		"java/lang/Integer.valueOf:(I)Ljava/lang/Integer;":  integerValueOf,
		"java/lang/Integer.intValue:()I":                    integerIntValue,
		"java/lang/Integer.hashCode:()I":                    integerIntValue,
		"java/lang/Integer.equals:(" + objectDesc + ")Z":    integerEquals,
		"java/lang/Integer.toString:" + toStringDesc:        integerToString,
		"java/lang/Integer.toString:(I)" + stringDesc:       integerFormat,
		"java/lang/Integer.parseInt:(" + stringDesc + ")I":  integerParseInt,
		"java/lang/Integer.parseInt:(" + stringDesc + "I)I": integerParseInt,

		"java/util/HashMap.<init>:()V":                                         hashMapInit,
		"java/util/HashMap.put:(" + objectDesc + objectDesc + ")" + objectDesc: hashMapPut,
		"java/util/HashMap.get:(" + objectDesc + ")" + objectDesc:              hashMapGet,
		"java/util/HashMap.containsKey:(" + objectDesc + ")Z":                  hashMapContainsKey,
		"java/util/HashMap.remove:(" + objectDesc + ")" + objectDesc:           hashMapRemove,
		"java/util/HashMap.size:()I":                                           hashMapSize,
		"java/util/HashMap.isEmpty:()Z":                                        hashMapIsEmpty,

		"java/lang/System.currentTimeMillis:()J":                                systemCurrentTimeMillis,
		"java/lang/System.nanoTime:()J":                                         systemNanoTime,
		"java/lang/System.arraycopy:(" + objectDesc + "I" + objectDesc + "II)V": systemArraycopy,
		"java/lang/System.identityHashCode:(" + objectDesc + ")I":               objectHashCode,

		"java/lang/Math.abs:(I)I":   mathInt(func(a, _ int32) int32 { return absInt(a) }),
		"java/lang/Math.max:(II)I":  mathInt(func(a, b int32) int32 { return max(a, b) }),
		"java/lang/Math.min:(II)I":  mathInt(func(a, b int32) int32 { return min(a, b) }),
		"java/lang/Math.abs:(J)J":   mathLong(func(a, _ int64) int64 { return absLong(a) }),
		"java/lang/Math.max:(JJ)J":  mathLong(func(a, b int64) int64 { return max(a, b) }),
		"java/lang/Math.min:(JJ)J":  mathLong(func(a, b int64) int64 { return min(a, b) }),
		"java/lang/Math.abs:(D)D":   mathDouble(func(a, _ float64) float64 { return math.Abs(a) }),
		"java/lang/Math.max:(DD)D":  mathDouble(maxDouble),
		"java/lang/Math.min:(DD)D":  mathDouble(minDouble),
		"java/lang/Math.sqrt:(D)D":  mathDouble(func(a, _ float64) float64 { return math.Sqrt(a) }),
		"java/lang/Math.pow:(DD)D":  mathDouble(math.Pow),
		"java/lang/Math.floor:(D)D": mathDouble(func(a, _ float64) float64 { return math.Floor(a) }),
		"java/lang/Math.ceil:(D)D":  mathDouble(func(a, _ float64) float64 { return math.Ceil(a) }),

		"java/lang/Throwable.<init>:()V":                                        throwableInit,
		"java/lang/Throwable.<init>:(" + stringDesc + ")V":                      throwableInit,
		"java/lang/Throwable.<init>:(" + stringDesc + "Ljava/lang/Throwable;)V": throwableInit,
		"java/lang/Throwable.<init>:(Ljava/lang/Throwable;)V":                   throwableInitCause,
		"java/lang/Throwable.getMessage:" + toStringDesc:                        throwableGetMessage,
		"java/lang/Throwable.getCause:()Ljava/lang/Throwable;":                  throwableGetCause,
		"java/lang/Throwable.toString:" + toStringDesc:                          throwableToString,
		"java/lang/Throwable.printStackTrace:()V":                               throwablePrintStackTrace,
	}

	// print and println of every overload, plus String.valueOf and
	// StringBuilder.append, share the Java string conversion of each type.
	for desc, conv := range stringConversions {
		intrinsics["java/io/PrintStream.print:("+desc+")V"] = printer(false, conv)
		intrinsics["java/io/PrintStream.println:("+desc+")V"] = printer(true, conv)
		intrinsics["java/lang/String.valueOf:("+desc+")"+stringDesc] = stringValueOf(conv)
		intrinsics["java/lang/StringBuilder.append:("+desc+")Ljava/lang/StringBuilder;"] = builderAppend(conv)
	}
	intrinsics["java/io/PrintStream.println:()V"] = printer(true, nil)
}

// A conversion renders one argument as Java string concatenation would.
type conversion func(t *Thread, v Value) (string, error)

var stringConversions = map[string]conversion{
	"I":        func(_ *Thread, v Value) (string, error) { return native.FormatInt(v.AsInt()), nil },
	"J":        func(_ *Thread, v Value) (string, error) { return strconv.FormatInt(v.AsLong(), 10), nil },
	"F":        func(_ *Thread, v Value) (string, error) { return native.FormatFloat(v.AsFloat()), nil },
	"D":        func(_ *Thread, v Value) (string, error) { return native.FormatDouble(v.AsDouble()), nil },
	"Z":        func(_ *Thread, v Value) (string, error) { return native.FormatBoolean(v.AsInt() != 0), nil },
	"C":        func(_ *Thread, v Value) (string, error) { return native.FormatChar(uint16(v.AsInt())), nil },
	"[C":       charArrayString,
	stringDesc: func(t *Thread, v Value) (string, error) { return t.stringOf(v.AsRef()) },
	objectDesc: func(t *Thread, v Value) (string, error) { return t.stringOf(v.AsRef()) },
}

func charArrayString(t *Thread, v Value) (string, error) {
	if v.IsNull() {
		return "", t.vm.throwNPE()
	}
	arr := t.vm.array(v.AsRef())
	checkArrayType(arr, "C")
	units := make([]uint16, len(arr.Elements))
	t.vm.read(func(*Heap) {
		for i, e := range arr.Elements {
			units[i] = e.AsChar()
		}
	})
	return native.DecodeUTF16(units), nil
}

// stringOf converts a reference the way String.valueOf(Object) does,
// calling toString on anything that is not a String.
func (t *Thread) stringOf(r Ref) (string, error) {
	if r == 0 {
		return "null", nil
	}
	if s, ok := t.vm.GoString(r); ok {
		return s, nil
	}
	class := t.vm.classOf(r)
	if strings.HasPrefix(class, "[") {
		class = "java/lang/Object"
	}
	m, err := t.vm.findMethod(class, "toString", toStringDesc)
	if err != nil {
		return "", err
	}
	md, err := classfile.ParseMethodDescriptor(toStringDesc)
	if err != nil {
		return "", err
	}
	v, err := t.callback(m, md, []Value{RefValue(r)})
	if err != nil {
		return "", err
	}
	return t.stringOf(v.AsRef())
}

// str returns the contents of a String argument. Null is a
// NullPointerException.
func (t *Thread) str(v Value) (string, error) {
	r := v.AsRef()
	if r == 0 {
		return "", t.vm.throwNPE()
	}
	s, ok := t.vm.GoString(r)
	if !ok {
		panic(newFault(FaultTypeMismatch, "ref %d (%s) is not a String", r, t.vm.classOf(r)))
	}
	return s, nil
}

func (vm *VM) stringValue(s string) Value {
	return RefValue(vm.NewString(s))
}

func boolValue(b bool) Value {
	if b {
		return IntValue(1)
	}
	return IntValue(0)
}

// --- java/lang/Object ---

func objectHashCode(t *Thread, args []Value) (Value, error) {
	return IntValue(int32(args[0].AsRef())), nil
}

func objectEquals(t *Thread, args []Value) (Value, error) {
	return boolValue(args[0].AsRef() == args[1].AsRef()), nil
}

func objectToString(t *Thread, args []Value) (Value, error) {
	r := args[0].AsRef()
	s := native.JavaName(t.vm.classOf(r)) + "@" + strconv.FormatUint(uint64(r), 16)
	return t.vm.stringValue(s), nil
}

func objectGetClass(t *Thread, args []Value) (Value, error) {
	return RefValue(t.vm.classObject(t.vm.classOf(args[0].AsRef()))), nil
}

func classGetName(t *Thread, args []Value) (Value, error) {
	name, _ := t.vm.nativeOf(args[0].AsRef()).(string)
	return t.vm.stringValue(native.JavaName(name)), nil
}

// --- java/lang/String ---

func stringLength(t *Thread, args []Value) (Value, error) {
	s, err := t.str(args[0])
	if err != nil {
		return Value{}, err
	}
	return IntValue(int32(native.StringLength(s))), nil
}

func stringCharAt(t *Thread, args []Value) (Value, error) {
	s, err := t.str(args[0])
	if err != nil {
		return Value{}, err
	}
	i := args[1].AsInt()
	c, ok := native.CharAt(s, int(i))
	if !ok {
		return Value{}, t.vm.throwNew("java/lang/StringIndexOutOfBoundsException",
			fmt.Sprintf("Index %d out of bounds for length %d", i, native.StringLength(s)))
	}
	return CharValue(c), nil
}

func stringEquals(t *Thread, args []Value) (Value, error) {
	s, err := t.str(args[0])
	if err != nil {
		return Value{}, err
	}
	other, ok := t.vm.GoString(args[1].AsRef())
	return boolValue(ok && s == other), nil
}

func stringHashCode(t *Thread, args []Value) (Value, error) {
	s, err := t.str(args[0])
	if err != nil {
		return Value{}, err
	}
	return IntValue(native.StringHashCode(s)), nil
}

func stringConcat(t *Thread, args []Value) (Value, error) {
	s, err := t.str(args[0])
	if err != nil {
		return Value{}, err
	}
	other, err := t.str(args[1])
	if err != nil {
		return Value{}, err
	}
	if other == "" {
		return args[0], nil
	}
	return t.vm.stringValue(s + other), nil
}

func stringIsEmpty(t *Thread, args []Value) (Value, error) {
	s, err := t.str(args[0])
	if err != nil {
		return Value{}, err
	}
	return boolValue(s == ""), nil
}

func stringIntern(t *Thread, args []Value) (Value, error) {
	s, err := t.str(args[0])
	if err != nil {
		return Value{}, err
	}
	var r Ref
	t.vm.write(func(h *Heap) { r = h.Intern(s) })
	return RefValue(r), nil
}

func stringValueOf(conv conversion) intrinsic {
	return func(t *Thread, args []Value) (Value, error) {
		s, err := conv(t, args[0])
		if err != nil {
			return Value{}, err
		}
		return t.vm.stringValue(s), nil
	}
}

// --- java/io/PrintStream ---

func printer(newline bool, conv conversion) intrinsic {
	return func(t *Thread, args []Value) (Value, error) {
		ps, ok := t.vm.nativeOf(args[0].AsRef()).(*native.PrintStream)
		if !ok {
			return Value{}, fmt.Errorf("%w: PrintStream %s has no host stream", ErrUnsupported, args[0])
		}
		var s string
		if conv != nil {
			var err error
			if s, err = conv(t, args[1]); err != nil {
				return Value{}, err
			}
		}
		if newline {
			return Value{}, ps.Println(s)
		}
		return Value{}, ps.Print(s)
	}
}

// --- java/lang/StringBuilder ---

func (t *Thread) builder(v Value) *strings.Builder {
	sb, ok := t.vm.nativeOf(v.AsRef()).(*strings.Builder)
	if !ok {
		panic(newFault(FaultTypeMismatch, "%s is not a StringBuilder", v))
	}
	return sb
}

func builderInit(t *Thread, args []Value) (Value, error) {
	sb := t.builder(args[0])
	if len(args) == 1 {
		return Value{}, nil
	}
	s, err := t.str(args[1])
	if err != nil {
		return Value{}, err
	}
	t.vm.write(func(*Heap) { sb.WriteString(s) })
	return Value{}, nil
}

func builderAppend(conv conversion) intrinsic {
	return func(t *Thread, args []Value) (Value, error) {
		sb := t.builder(args[0])
		s, err := conv(t, args[1])
		if err != nil {
			return Value{}, err
		}
		t.vm.write(func(*Heap) { sb.WriteString(s) })
		return args[0], nil
	}
}

func builderToString(t *Thread, args []Value) (Value, error) {
	sb := t.builder(args[0])
	var s string
	t.vm.read(func(*Heap) { s = sb.String() })
	return t.vm.stringValue(s), nil
}

func builderLength(t *Thread, args []Value) (Value, error) {
	sb := t.builder(args[0])
	var s string
	t.vm.read(func(*Heap) { s = sb.String() })
	return IntValue(int32(native.StringLength(s))), nil
}

// --- java/lang/Integer ---

func (t *Thread) boxedInt(v Value) (int32, bool) {
	i, ok := t.vm.nativeOf(v.AsRef()).(int32)
	return i, ok
}

// box returns an Integer for i. Values in the cache range always yield
// the same object.
func (vm *VM) box(i int32) Ref {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	if r, ok := vm.integers[i]; ok {
		return r
	}
	r := vm.heap.NewObject("java/lang/Integer", i)
	if native.IntegerCached(i) {
		vm.integers[i] = r
	}
	return r
}

func integerInit(t *Thread, args []Value) (Value, error) {
	i := args[1].AsInt()
	t.vm.write(func(h *Heap) {
		if o, ok := h.Object(args[0].AsRef()); ok {
			o.Native = i
		}
	})
	return Value{}, nil
}

func integerValueOf(t *Thread, args []Value) (Value, error) {
	return RefValue(t.vm.box(args[0].AsInt())), nil
}

func integerIntValue(t *Thread, args []Value) (Value, error) {
	i, _ := t.boxedInt(args[0])
	return IntValue(i), nil
}

func integerEquals(t *Thread, args []Value) (Value, error) {
	i, _ := t.boxedInt(args[0])
	j, ok := t.boxedInt(args[1])
	return boolValue(ok && i == j), nil
}

func integerToString(t *Thread, args []Value) (Value, error) {
	i, _ := t.boxedInt(args[0])
	return t.vm.stringValue(native.FormatInt(i)), nil
}

func integerFormat(t *Thread, args []Value) (Value, error) {
	return t.vm.stringValue(native.FormatInt(args[0].AsInt())), nil
}

func integerParseInt(t *Thread, args []Value) (Value, error) {
	radix := 10
	if len(args) == 2 {
		radix = int(args[1].AsInt())
	}
	var s string
	if r := args[0].AsRef(); r != 0 {
		s, _ = t.vm.GoString(r)
	} else {
		return Value{}, t.vm.throwNew("java/lang/NumberFormatException", "Cannot parse null string: null")
	}
	i, err := native.ParseInt(s, radix)
	if err != nil {
		return Value{}, t.vm.throwNew("java/lang/NumberFormatException", err.Error())
	}
	return IntValue(i), nil
}

// --- java/util/HashMap ---

// hashKey encodes Java key equality: Strings by contents, Integers by
// value and everything else by identity.
type hashKey struct {
	kind  uint8
	str   string
	boxed int32
	ref   Ref
}

const (
	keyNull uint8 = iota
	keyString
	keyInteger
	keyIdentity
)

type hashMap = native.HashMap[hashKey, Value]

func (t *Thread) hashKey(v Value) hashKey {
	r := v.AsRef()
	if r == 0 {
		return hashKey{kind: keyNull}
	}
	var k hashKey
	t.vm.read(func(h *Heap) {
		o, ok := h.Object(r)
		switch {
		case !ok:
			k = hashKey{kind: keyIdentity, ref: r}
		case o.ClassName == "java/lang/String":
			k = hashKey{kind: keyString, str: o.Native.(string)}
		case o.ClassName == "java/lang/Integer":
			i, _ := o.Native.(int32)
			k = hashKey{kind: keyInteger, boxed: i}
		default:
			k = hashKey{kind: keyIdentity, ref: r}
		}
	})
	return k
}

func (t *Thread) hashMap(v Value) *hashMap {
	m, ok := t.vm.nativeOf(v.AsRef()).(*hashMap)
	if !ok {
		panic(newFault(FaultTypeMismatch, "%s is not a HashMap", v))
	}
	return m
}

func hashMapInit(t *Thread, args []Value) (Value, error) {
	t.hashMap(args[0])
	return Value{}, nil
}

func hashMapPut(t *Thread, args []Value) (Value, error) {
	m, k := t.hashMap(args[0]), t.hashKey(args[1])
	var old Value
	var ok bool
	t.vm.write(func(*Heap) { old, ok = m.Put(k, args[2]) })
	if !ok {
		return NullValue(), nil
	}
	return old, nil
}

func hashMapGet(t *Thread, args []Value) (Value, error) {
	m, k := t.hashMap(args[0]), t.hashKey(args[1])
	var v Value
	var ok bool
	t.vm.read(func(*Heap) { v, ok = m.Get(k) })
	if !ok {
		return NullValue(), nil
	}
	return v, nil
}

func hashMapContainsKey(t *Thread, args []Value) (Value, error) {
	m, k := t.hashMap(args[0]), t.hashKey(args[1])
	var ok bool
	t.vm.read(func(*Heap) { ok = m.ContainsKey(k) })
	return boolValue(ok), nil
}

func hashMapRemove(t *Thread, args []Value) (Value, error) {
	m, k := t.hashMap(args[0]), t.hashKey(args[1])
	var v Value
	var ok bool
	t.vm.write(func(*Heap) { v, ok = m.Remove(k) })
	if !ok {
		return NullValue(), nil
	}
	return v, nil
}

func hashMapSize(t *Thread, args []Value) (Value, error) {
	m := t.hashMap(args[0])
	var n int
	t.vm.read(func(*Heap) { n = m.Len() })
	return IntValue(int32(n)), nil
}

func hashMapIsEmpty(t *Thread, args []Value) (Value, error) {
	m := t.hashMap(args[0])
	var n int
	t.vm.read(func(*Heap) { n = m.Len() })
	return boolValue(n == 0), nil
}

// newPayload returns the host state for a new instance of name. Classes
// extending StringBuilder or HashMap get their ancestor's payload.
func (vm *VM) newPayload(name string) any {
	for c := name; c != ""; {
		switch c {
		case "java/lang/StringBuilder":
			return new(strings.Builder)
		case "java/util/HashMap":
			return native.NewHashMap[hashKey, Value]()
		}
		if native.IsBuiltin(c) {
			return nil
		}
		super, _, err := vm.superTypes(c)
		if err != nil {
			return nil
		}
		c = super
	}
	return nil
}

// --- java/lang/System ---

func systemCurrentTimeMillis(t *Thread, args []Value) (Value, error) {
	return LongValue(time.Now().UnixMilli()), nil
}

func systemNanoTime(t *Thread, args []Value) (Value, error) {
	return LongValue(int64(time.Since(t.vm.started))), nil
}

func systemArraycopy(t *Thread, args []Value) (Value, error) {
	srcRef, srcPos := args[0].AsRef(), int(args[1].AsInt())
	dstRef, dstPos := args[2].AsRef(), int(args[3].AsInt())
	n := int(args[4].AsInt())
	if srcRef == 0 || dstRef == 0 {
		return Value{}, t.vm.throwNPE()
	}
	var src, dst *Array
	t.vm.read(func(h *Heap) {
		src, _ = h.Array(srcRef)
		dst, _ = h.Array(dstRef)
	})
	if src == nil || dst == nil {
		return Value{}, t.vm.throwNew("java/lang/ArrayStoreException", "arraycopy: argument is not an array")
	}
	primitive := func(a *Array) bool { return len(a.Type) == 1 }
	if (primitive(src) || primitive(dst)) && src.Type != dst.Type {
		return Value{}, t.vm.throwNew("java/lang/ArrayStoreException",
			fmt.Sprintf("arraycopy: type mismatch: can not copy %s into %s", src.ClassName(), dst.ClassName()))
	}
	switch {
	case n < 0:
		return Value{}, t.vm.throwNew("java/lang/ArrayIndexOutOfBoundsException",
			fmt.Sprintf("arraycopy: length %d is negative", n))
	case srcPos < 0 || srcPos+n > len(src.Elements):
		return Value{}, t.vm.throwNew("java/lang/ArrayIndexOutOfBoundsException",
			fmt.Sprintf("arraycopy: last source index %d out of bounds for length %d", srcPos+n, len(src.Elements)))
	case dstPos < 0 || dstPos+n > len(dst.Elements):
		return Value{}, t.vm.throwNew("java/lang/ArrayIndexOutOfBoundsException",
			fmt.Sprintf("arraycopy: last destination index %d out of bounds for length %d", dstPos+n, len(dst.Elements)))
	}

	if src.Type != dst.Type {
		// Reference arrays of different types: check each element.
		elem := strings.TrimSuffix(strings.TrimPrefix(dst.Type, "L"), ";")
		var vals []Value
		t.vm.read(func(*Heap) { vals = append(vals, src.Elements[srcPos:srcPos+n]...) })
		for _, v := range vals {
			if v.IsNull() {
				continue
			}
			ok, err := t.vm.assignable(t.vm.classOf(v.AsRef()), elem)
			if err != nil {
				return Value{}, err
			}
			if !ok {
				return Value{}, t.vm.throwNew("java/lang/ArrayStoreException",
					"arraycopy: element type mismatch")
			}
		}
	}
	t.vm.write(func(*Heap) { copy(dst.Elements[dstPos:dstPos+n], src.Elements[srcPos:srcPos+n]) })
	return Value{}, nil
}

// --- java/lang/Math ---

func mathInt(fn func(a, b int32) int32) intrinsic {
	return func(_ *Thread, args []Value) (Value, error) {
		var b int32
		if len(args) > 1 {
			b = args[1].AsInt()
		}
		return IntValue(fn(args[0].AsInt(), b)), nil
	}
}

func mathLong(fn func(a, b int64) int64) intrinsic {
	return func(_ *Thread, args []Value) (Value, error) {
		var b int64
		if len(args) > 1 {
			b = args[1].AsLong()
		}
		return LongValue(fn(args[0].AsLong(), b)), nil
	}
}

func mathDouble(fn func(a, b float64) float64) intrinsic {
	return func(_ *Thread, args []Value) (Value, error) {
		var b float64
		if len(args) > 1 {
			b = args[1].AsDouble()
		}
		return DoubleValue(fn(args[0].AsDouble(), b)), nil
	}
}

// absInt leaves MinInt32 unchanged, as Java does.
func absInt(a int32) int32 {
	if a < 0 {
		return -a
	}
	return a
}

func absLong(a int64) int64 {
	if a < 0 {
		return -a
	}
	return a
}

// maxDouble and minDouble propagate NaN and order -0.0 below 0.0.
func maxDouble(a, b float64) float64 {
	if math.IsNaN(a) || math.IsNaN(b) {
		return math.NaN()
	}
	return math.Max(a, b)
}

func minDouble(a, b float64) float64 {
	if math.IsNaN(a) || math.IsNaN(b) {
		return math.NaN()
	}
	return math.Min(a, b)
}

// --- java/lang/Throwable ---

func throwableInit(t *Thread, args []Value) (Value, error) {
	t.vm.write(func(h *Heap) {
		o, ok := h.Object(args[0].AsRef())
		if !ok {
			return
		}
		if len(args) > 1 {
			o.Fields["detailMessage"] = args[1]
		}
		if len(args) > 2 {
			o.Fields["cause"] = args[2]
		}
	})
	return Value{}, nil
}

func throwableInitCause(t *Thread, args []Value) (Value, error) {
	msg := NullValue()
	if cause := args[1].AsRef(); cause != 0 {
		s, err := t.stringOf(cause)
		if err != nil {
			return Value{}, err
		}
		msg = t.vm.stringValue(s)
	}
	return throwableInit(t, []Value{args[0], msg, args[1]})
}

func throwableField(t *Thread, r Ref, name string) Value {
	v := NullValue()
	t.vm.read(func(h *Heap) {
		if o, ok := h.Object(r); ok {
			v = o.Field(name, objectDesc)
		}
	})
	return v
}

func throwableGetMessage(t *Thread, args []Value) (Value, error) {
	return throwableField(t, args[0].AsRef(), "detailMessage"), nil
}

func throwableGetCause(t *Thread, args []Value) (Value, error) {
	return throwableField(t, args[0].AsRef(), "cause"), nil
}

func throwableToString(t *Thread, args []Value) (Value, error) {
	r := args[0].AsRef()
	s := native.JavaName(t.vm.classOf(r))
	if msg := t.vm.throwableMessage(r); msg != "" {
		s += ": " + msg
	}
	return t.vm.stringValue(s), nil
}

func throwablePrintStackTrace(t *Thread, args []Value) (Value, error) {
	s, err := t.stringOf(args[0].AsRef())
	if err != nil {
		return Value{}, err
	}
	return Value{}, t.vm.stderr.Println(s)
}
