package vm

import (
	"errors"
	"fmt"
	"math"

	"github.com/daimatz/classvm/pkg/classfile"
)

// execute executes a single bytecode instruction whose opcode has already
// been read. Faults panic; Java exceptions are returned as *JavaException.
func (t *Thread) execute(f *Frame, opcode byte) error {
	switch opcode {
	case OpNop:
		// do nothing

	// --- Constants ---
	case OpAconstNull:
		f.Push(NullValue())
	case OpIconstM1, OpIconst0, OpIconst1, OpIconst2, OpIconst3, OpIconst4, OpIconst5:
		f.Push(IntValue(int32(opcode) - OpIconst0))
	case OpLconst0, OpLconst1:
		f.Push(LongValue(int64(opcode) - OpLconst0))
	case OpFconst0, OpFconst1, OpFconst2:
		f.Push(FloatValue(float32(opcode - OpFconst0)))
	case OpDconst0, OpDconst1:
		f.Push(DoubleValue(float64(opcode - OpDconst0)))
	case OpBipush:
		f.Push(IntValue(int32(f.ReadI8())))
	case OpSipush:
		f.Push(IntValue(int32(f.ReadI16())))
	case OpLdc:
		return t.ldc(f, uint16(f.ReadU8()))
	case OpLdcW, OpLdc2W:
		return t.ldc(f, f.ReadU16())

	// --- Loads ---
	case OpIload:
		loadLocal(f, int(f.ReadU8()), KindInt)
	case OpLload:
		loadLocal(f, int(f.ReadU8()), KindLong)
	case OpFload:
		loadLocal(f, int(f.ReadU8()), KindFloat)
	case OpDload:
		loadLocal(f, int(f.ReadU8()), KindDouble)
	case OpAload:
		loadLocal(f, int(f.ReadU8()), KindReference)
	case OpIload0, OpIload1, OpIload2, OpIload3:
		loadLocal(f, int(opcode-OpIload0), KindInt)
	case OpLload0, OpLload1, OpLload2, OpLload3:
		loadLocal(f, int(opcode-OpLload0), KindLong)
	case OpFload0, OpFload1, OpFload2, OpFload3:
		loadLocal(f, int(opcode-OpFload0), KindFloat)
	case OpDload0, OpDload1, OpDload2, OpDload3:
		loadLocal(f, int(opcode-OpDload0), KindDouble)
	case OpAload0, OpAload1, OpAload2, OpAload3:
		loadLocal(f, int(opcode-OpAload0), KindReference)

	case OpIaload:
		return t.arrayLoad(f, "I")
	case OpLaload:
		return t.arrayLoad(f, "J")
	case OpFaload:
		return t.arrayLoad(f, "F")
	case OpDaload:
		return t.arrayLoad(f, "D")
	case OpAaload:
		return t.arrayLoad(f, "L[")
	case OpBaload:
		return t.arrayLoad(f, "BZ")
	case OpCaload:
		return t.arrayLoad(f, "C")
	case OpSaload:
		return t.arrayLoad(f, "S")

	// --- Stores ---
	case OpIstore:
		storeLocal(f, int(f.ReadU8()), KindInt)
	case OpLstore:
		storeLocal(f, int(f.ReadU8()), KindLong)
	case OpFstore:
		storeLocal(f, int(f.ReadU8()), KindFloat)
	case OpDstore:
		storeLocal(f, int(f.ReadU8()), KindDouble)
	case OpAstore:
		storeLocal(f, int(f.ReadU8()), KindReference)
	case OpIstore0, OpIstore1, OpIstore2, OpIstore3:
		storeLocal(f, int(opcode-OpIstore0), KindInt)
	case OpLstore0, OpLstore1, OpLstore2, OpLstore3:
		storeLocal(f, int(opcode-OpLstore0), KindLong)
	case OpFstore0, OpFstore1, OpFstore2, OpFstore3:
		storeLocal(f, int(opcode-OpFstore0), KindFloat)
	case OpDstore0, OpDstore1, OpDstore2, OpDstore3:
		storeLocal(f, int(opcode-OpDstore0), KindDouble)
	case OpAstore0, OpAstore1, OpAstore2, OpAstore3:
		storeLocal(f, int(opcode-OpAstore0), KindReference)

	case OpIastore:
		return t.arrayStore(f, "I")
	case OpLastore:
		return t.arrayStore(f, "J")
	case OpFastore:
		return t.arrayStore(f, "F")
	case OpDastore:
		return t.arrayStore(f, "D")
	case OpAastore:
		return t.arrayStore(f, "L[")
	case OpBastore:
		return t.arrayStore(f, "BZ")
	case OpCastore:
		return t.arrayStore(f, "C")
	case OpSastore:
		return t.arrayStore(f, "S")

	// --- Stack ---
	case OpPop:
		f.Pop()
	case OpPop2:
		if f.Pop().Kind().Category() == 1 {
			f.Pop()
		}
	case OpDup:
		f.Push(f.Peek(0))
	case OpDupX1:
		v1 := f.Pop()
		v2 := f.Pop()
		pushAll(f, v1, v2, v1)
	case OpDupX2:
		v1 := f.Pop()
		v2 := f.Pop()
		if v2.Kind().Category() == 2 {
			pushAll(f, v1, v2, v1)
		} else {
			v3 := f.Pop()
			pushAll(f, v1, v3, v2, v1)
		}
	case OpDup2:
		v1 := f.Pop()
		if v1.Kind().Category() == 2 {
			pushAll(f, v1, v1)
		} else {
			v2 := f.Pop()
			pushAll(f, v2, v1, v2, v1)
		}
	case OpDup2X1:
		v1 := f.Pop()
		v2 := f.Pop()
		if v1.Kind().Category() == 2 {
			pushAll(f, v1, v2, v1)
		} else {
			v3 := f.Pop()
			pushAll(f, v2, v1, v3, v2, v1)
		}
	case OpDup2X2:
		dup2x2(f)
	case OpSwap:
		v1 := f.Pop()
		v2 := f.Pop()
		pushAll(f, v1, v2)

	// --- Arithmetic (int) ---
	case OpIadd:
		v2, v1 := f.PopInt(), f.PopInt()
		f.Push(IntValue(v1 + v2))
	case OpIsub:
		v2, v1 := f.PopInt(), f.PopInt()
		f.Push(IntValue(v1 - v2))
	case OpImul:
		v2, v1 := f.PopInt(), f.PopInt()
		f.Push(IntValue(v1 * v2))
	case OpIdiv:
		v2, v1 := f.PopInt(), f.PopInt()
		if v2 == 0 {
			return t.vm.throwNew("java/lang/ArithmeticException", "/ by zero")
		}
		f.Push(IntValue(v1 / v2))
	case OpIrem:
		v2, v1 := f.PopInt(), f.PopInt()
		if v2 == 0 {
			return t.vm.throwNew("java/lang/ArithmeticException", "/ by zero")
		}
		f.Push(IntValue(v1 % v2))
	case OpIneg:
		f.Push(IntValue(-f.PopInt()))
	case OpIshl:
		v2, v1 := f.PopInt(), f.PopInt()
		f.Push(IntValue(v1 << (v2 & 0x1f)))
	case OpIshr:
		v2, v1 := f.PopInt(), f.PopInt()
		f.Push(IntValue(v1 >> (v2 & 0x1f)))
	case OpIushr:
		v2, v1 := f.PopInt(), f.PopInt()
		f.Push(IntValue(int32(uint32(v1) >> (v2 & 0x1f))))
	case OpIand:
		v2, v1 := f.PopInt(), f.PopInt()
		f.Push(IntValue(v1 & v2))
	case OpIor:
		v2, v1 := f.PopInt(), f.PopInt()
		f.Push(IntValue(v1 | v2))
	case OpIxor:
		v2, v1 := f.PopInt(), f.PopInt()
		f.Push(IntValue(v1 ^ v2))
	case OpIinc:
		index := int(f.ReadU8())
		delta := int32(f.ReadI8())
		f.SetLocal(index, IntValue(f.GetLocal(index).AsInt()+delta))

	// --- Arithmetic (long) ---
	case OpLadd:
		v2, v1 := f.PopLong(), f.PopLong()
		f.Push(LongValue(v1 + v2))
	case OpLsub:
		v2, v1 := f.PopLong(), f.PopLong()
		f.Push(LongValue(v1 - v2))
	case OpLmul:
		v2, v1 := f.PopLong(), f.PopLong()
		f.Push(LongValue(v1 * v2))
	case OpLdiv:
		v2, v1 := f.PopLong(), f.PopLong()
		if v2 == 0 {
			return t.vm.throwNew("java/lang/ArithmeticException", "/ by zero")
		}
		f.Push(LongValue(v1 / v2))
	case OpLrem:
		v2, v1 := f.PopLong(), f.PopLong()
		if v2 == 0 {
			return t.vm.throwNew("java/lang/ArithmeticException", "/ by zero")
		}
		f.Push(LongValue(v1 % v2))
	case OpLneg:
		f.Push(LongValue(-f.PopLong()))
	case OpLshl:
		v2, v1 := f.PopInt(), f.PopLong()
		f.Push(LongValue(v1 << (v2 & 0x3f)))
	case OpLshr:
		v2, v1 := f.PopInt(), f.PopLong()
		f.Push(LongValue(v1 >> (v2 & 0x3f)))
	case OpLushr:
		v2, v1 := f.PopInt(), f.PopLong()
		f.Push(LongValue(int64(uint64(v1) >> (v2 & 0x3f))))
	case OpLand:
		v2, v1 := f.PopLong(), f.PopLong()
		f.Push(LongValue(v1 & v2))
	case OpLor:
		v2, v1 := f.PopLong(), f.PopLong()
		f.Push(LongValue(v1 | v2))
	case OpLxor:
		v2, v1 := f.PopLong(), f.PopLong()
		f.Push(LongValue(v1 ^ v2))

	// --- Arithmetic (float, double) ---
	case OpFadd:
		v2, v1 := f.PopFloat(), f.PopFloat()
		f.Push(FloatValue(v1 + v2))
	case OpFsub:
		v2, v1 := f.PopFloat(), f.PopFloat()
		f.Push(FloatValue(v1 - v2))
	case OpFmul:
		v2, v1 := f.PopFloat(), f.PopFloat()
		f.Push(FloatValue(v1 * v2))
	case OpFdiv:
		v2, v1 := f.PopFloat(), f.PopFloat()
		f.Push(FloatValue(v1 / v2))
	case OpFrem:
		v2, v1 := f.PopFloat(), f.PopFloat()
		f.Push(FloatValue(float32(math.Mod(float64(v1), float64(v2)))))
	case OpFneg:
		f.Push(FloatValue(-f.PopFloat()))
	case OpDadd:
		v2, v1 := f.PopDouble(), f.PopDouble()
		f.Push(DoubleValue(v1 + v2))
	case OpDsub:
		v2, v1 := f.PopDouble(), f.PopDouble()
		f.Push(DoubleValue(v1 - v2))
	case OpDmul:
		v2, v1 := f.PopDouble(), f.PopDouble()
		f.Push(DoubleValue(v1 * v2))
	case OpDdiv:
		v2, v1 := f.PopDouble(), f.PopDouble()
		f.Push(DoubleValue(v1 / v2))
	case OpDrem:
		v2, v1 := f.PopDouble(), f.PopDouble()
		f.Push(DoubleValue(math.Mod(v1, v2)))
	case OpDneg:
		f.Push(DoubleValue(-f.PopDouble()))

	// --- Conversions ---
	case OpI2l:
		f.Push(LongValue(int64(f.PopInt())))
	case OpI2f:
		f.Push(FloatValue(float32(f.PopInt())))
	case OpI2d:
		f.Push(DoubleValue(float64(f.PopInt())))
	case OpL2i:
		f.Push(IntValue(int32(f.PopLong())))
	case OpL2f:
		f.Push(FloatValue(float32(f.PopLong())))
	case OpL2d:
		f.Push(DoubleValue(float64(f.PopLong())))
	case OpF2i:
		f.Push(IntValue(toInt32(float64(f.PopFloat()))))
	case OpF2l:
		f.Push(LongValue(toInt64(float64(f.PopFloat()))))
	case OpF2d:
		f.Push(DoubleValue(float64(f.PopFloat())))
	case OpD2i:
		f.Push(IntValue(toInt32(f.PopDouble())))
	case OpD2l:
		f.Push(LongValue(toInt64(f.PopDouble())))
	case OpD2f:
		f.Push(FloatValue(float32(f.PopDouble())))
	case OpI2b:
		f.Push(IntValue(int32(int8(f.PopInt()))))
	case OpI2c:
		f.Push(IntValue(int32(uint16(f.PopInt()))))
	case OpI2s:
		f.Push(IntValue(int32(int16(f.PopInt()))))

	// --- Comparisons ---
	case OpLcmp:
		v2, v1 := f.PopLong(), f.PopLong()
		switch {
		case v1 > v2:
			f.Push(IntValue(1))
		case v1 < v2:
			f.Push(IntValue(-1))
		default:
			f.Push(IntValue(0))
		}
	case OpFcmpl, OpFcmpg:
		v2, v1 := f.PopFloat(), f.PopFloat()
		f.Push(IntValue(compareFloat(float64(v1), float64(v2), opcode == OpFcmpg)))
	case OpDcmpl, OpDcmpg:
		v2, v1 := f.PopDouble(), f.PopDouble()
		f.Push(IntValue(compareFloat(v1, v2, opcode == OpDcmpg)))

	// --- Branches ---
	case OpIfeq:
		branchUnary(f, func(v int32) bool { return v == 0 })
	case OpIfne:
		branchUnary(f, func(v int32) bool { return v != 0 })
	case OpIflt:
		branchUnary(f, func(v int32) bool { return v < 0 })
	case OpIfge:
		branchUnary(f, func(v int32) bool { return v >= 0 })
	case OpIfgt:
		branchUnary(f, func(v int32) bool { return v > 0 })
	case OpIfle:
		branchUnary(f, func(v int32) bool { return v <= 0 })
	case OpIfIcmpeq:
		branchBinary(f, func(a, b int32) bool { return a == b })
	case OpIfIcmpne:
		branchBinary(f, func(a, b int32) bool { return a != b })
	case OpIfIcmplt:
		branchBinary(f, func(a, b int32) bool { return a < b })
	case OpIfIcmpge:
		branchBinary(f, func(a, b int32) bool { return a >= b })
	case OpIfIcmpgt:
		branchBinary(f, func(a, b int32) bool { return a > b })
	case OpIfIcmple:
		branchBinary(f, func(a, b int32) bool { return a <= b })
	case OpIfAcmpeq, OpIfAcmpne:
		offset := f.ReadI16()
		v2, v1 := f.PopRef(), f.PopRef()
		if (v1 == v2) == (opcode == OpIfAcmpeq) {
			f.jump(int(offset))
		}
	case OpIfnull, OpIfnonnull:
		offset := f.ReadI16()
		isNull := f.PopRef() == 0
		if isNull == (opcode == OpIfnull) {
			f.jump(int(offset))
		}
	case OpGoto:
		f.jump(int(f.ReadI16()))
	case OpGotoW:
		f.jump(int(f.ReadI32()))
	case OpJsr:
		offset := f.ReadI16()
		f.Push(ReturnAddressValue(f.PC))
		f.jump(int(offset))
	case OpJsrW:
		offset := f.ReadI32()
		f.Push(ReturnAddressValue(f.PC))
		f.jump(int(offset))
	case OpRet:
		retLocal(f, int(f.ReadU8()))

	case OpTableswitch:
		// Padding to align to 4-byte boundary
		for f.PC%4 != 0 {
			f.ReadU8()
		}
		defaultOffset := f.ReadI32()
		low := f.ReadI32()
		high := f.ReadI32()
		if high < low {
			panic(newFault(FaultPCOutOfRange, "tableswitch low %d > high %d", low, high))
		}
		base := f.PC
		index := f.PopInt()
		if index < low || index > high {
			f.jump(int(defaultOffset))
			break
		}
		f.PC = base + int(index-low)*4
		f.jump(int(f.ReadI32()))

	case OpLookupswitch:
		for f.PC%4 != 0 {
			f.ReadU8()
		}
		defaultOffset := f.ReadI32()
		npairs := f.ReadI32()
		key := f.PopInt()
		target := defaultOffset
		for i := int32(0); i < npairs; i++ {
			match := f.ReadI32()
			offset := f.ReadI32()
			if key == match {
				target = offset
				break
			}
		}
		f.jump(int(target))

	// --- Return ---
	case OpIreturn:
		t.ret(popKind(f, KindInt), true)
	case OpLreturn:
		t.ret(popKind(f, KindLong), true)
	case OpFreturn:
		t.ret(popKind(f, KindFloat), true)
	case OpDreturn:
		t.ret(popKind(f, KindDouble), true)
	case OpAreturn:
		t.ret(popKind(f, KindReference), true)
	case OpReturn:
		t.ret(Value{}, false)

	// --- Fields and methods ---
	case OpGetstatic:
		return t.getstatic(f)
	case OpPutstatic:
		return t.putstatic(f)
	case OpGetfield:
		return t.getfield(f)
	case OpPutfield:
		return t.putfield(f)
	case OpInvokevirtual, OpInvokespecial, OpInvokestatic, OpInvokeinterface:
		return t.invoke(f, opcode)
	case OpInvokedynamic:
		index := f.ReadU16()
		f.ReadU16() // two zero bytes
		return fmt.Errorf("%w: invokedynamic #%d (bootstrap methods are not linked)", ErrUnsupported, index)

	// --- Objects and arrays ---
	case OpNew:
		return t.newObject(f)
	case OpNewarray:
		atype := f.ReadU8()
		typ, ok := arrayTypes[atype]
		if !ok {
			return fmt.Errorf("newarray: invalid atype %d", atype)
		}
		return t.newArray(f, typ)
	case OpAnewarray:
		pool, err := f.constantPool()
		if err != nil {
			return err
		}
		name, err := pool.ClassName(f.ReadU16())
		if err != nil {
			return fmt.Errorf("anewarray: %w", err)
		}
		if name[0] != '[' {
			name = "L" + name + ";"
		}
		return t.newArray(f, name)
	case OpMultianewarray:
		return t.multianewarray(f)
	case OpArraylength:
		ref := f.PopRef()
		if ref == 0 {
			return t.vm.throwNPE()
		}
		f.Push(IntValue(int32(len(t.vm.array(ref).Elements))))

	case OpAthrow:
		ref := f.PopRef()
		if ref == 0 {
			return t.vm.throwNPE()
		}
		return &JavaException{Ref: ref, ClassName: t.vm.classOf(ref)}

	case OpCheckcast:
		pool, err := f.constantPool()
		if err != nil {
			return err
		}
		name, err := pool.ClassName(f.ReadU16())
		if err != nil {
			return fmt.Errorf("checkcast: %w", err)
		}
		ref := f.Peek(0).AsRef()
		if ref == 0 {
			break
		}
		ok, err := t.instanceOf(ref, name)
		if err != nil {
			return fmt.Errorf("checkcast %s: %w", name, err)
		}
		if !ok {
			from := t.vm.classOf(ref)
			return t.vm.throwNew("java/lang/ClassCastException",
				fmt.Sprintf("class %s cannot be cast to class %s", javaTypeName(from), javaTypeName(name)))
		}

	case OpInstanceof:
		pool, err := f.constantPool()
		if err != nil {
			return err
		}
		name, err := pool.ClassName(f.ReadU16())
		if err != nil {
			return fmt.Errorf("instanceof: %w", err)
		}
		ref := f.PopRef()
		if ref == 0 {
			f.Push(IntValue(0))
			break
		}
		ok, err := t.instanceOf(ref, name)
		if err != nil {
			return fmt.Errorf("instanceof %s: %w", name, err)
		}
		if ok {
			f.Push(IntValue(1))
		} else {
			f.Push(IntValue(0))
		}

	case OpMonitorenter, OpMonitorexit:
		// Monitors are not implemented beyond the null check.
		if f.PopRef() == 0 {
			return t.vm.throwNPE()
		}

	case OpWide:
		wide(f)

	default:
		panic(newFault(FaultUnknownOpcode, "0x%02X", opcode))
	}

	return nil
}

func (f *Frame) constantPool() (*classfile.ConstantPool, error) {
	if f.Pool == nil {
		return nil, errors.New("frame has no constant pool")
	}
	return f.Pool, nil
}

func pushAll(f *Frame, vs ...Value) {
	for _, v := range vs {
		f.Push(v)
	}
}

func popKind(f *Frame, k Kind) Value {
	v := f.Pop()
	v.want(k)
	return v
}

func loadLocal(f *Frame, index int, k Kind) {
	v := f.GetLocal(index)
	v.want(k)
	f.Push(v)
}

// storeLocal pops a value of kind k into a local. astore also accepts
// the return address pushed by jsr.
func storeLocal(f *Frame, index int, k Kind) {
	v := f.Pop()
	if !(k == KindReference && v.Kind() == KindReturnAddress) {
		v.want(k)
	}
	f.SetLocal(index, v)
}

func retLocal(f *Frame, index int) {
	target := f.GetLocal(index).AsReturnAddress()
	if target < 0 || target >= len(f.Code) {
		panic(newFault(FaultPCOutOfRange, "ret to %d, code length %d", target, len(f.Code)))
	}
	f.PC = target
}

// wide executes the instruction following a wide prefix with a 16-bit
// local index.
func wide(f *Frame) {
	op := f.ReadU8()
	index := int(f.ReadU16())
	switch op {
	case OpIload:
		loadLocal(f, index, KindInt)
	case OpLload:
		loadLocal(f, index, KindLong)
	case OpFload:
		loadLocal(f, index, KindFloat)
	case OpDload:
		loadLocal(f, index, KindDouble)
	case OpAload:
		loadLocal(f, index, KindReference)
	case OpIstore:
		storeLocal(f, index, KindInt)
	case OpLstore:
		storeLocal(f, index, KindLong)
	case OpFstore:
		storeLocal(f, index, KindFloat)
	case OpDstore:
		storeLocal(f, index, KindDouble)
	case OpAstore:
		storeLocal(f, index, KindReference)
	case OpRet:
		retLocal(f, index)
	case OpIinc:
		delta := int32(f.ReadI16())
		f.SetLocal(index, IntValue(f.GetLocal(index).AsInt()+delta))
	default:
		panic(newFault(FaultUnknownOpcode, "wide %s", OpcodeName(op)))
	}
}

func dup2x2(f *Frame) {
	v1 := f.Pop()
	v2 := f.Pop()
	switch {
	case v1.Kind().Category() == 2 && v2.Kind().Category() == 2:
		pushAll(f, v1, v2, v1)
	case v1.Kind().Category() == 2:
		v3 := f.Pop()
		pushAll(f, v1, v3, v2, v1)
	default:
		v3 := f.Pop()
		if v3.Kind().Category() == 2 {
			pushAll(f, v2, v1, v3, v2, v1)
			return
		}
		v4 := f.Pop()
		pushAll(f, v2, v1, v4, v3, v2, v1)
	}
}

// branchUnary handles unary branch instructions (ifeq, ifne, etc.)
func branchUnary(f *Frame, cond func(int32) bool) {
	offset := f.ReadI16()
	if cond(f.PopInt()) {
		f.jump(int(offset))
	}
}

// branchBinary handles binary branch instructions (if_icmpeq, etc.)
func branchBinary(f *Frame, cond func(int32, int32) bool) {
	offset := f.ReadI16()
	v2 := f.PopInt()
	v1 := f.PopInt()
	if cond(v1, v2) {
		f.jump(int(offset))
	}
}

// compareFloat implements fcmp<op> and dcmp<op>. A NaN operand gives 1
// for the g variants and -1 for the l variants.
func compareFloat(v1, v2 float64, nanIsGreater bool) int32 {
	switch {
	case v1 > v2:
		return 1
	case v1 == v2:
		return 0
	case v1 < v2:
		return -1
	case nanIsGreater:
		return 1
	}
	return -1
}

// toInt32 converts with Java semantics: NaN is 0 and out-of-range values
// saturate.
func toInt32(d float64) int32 {
	switch {
	case math.IsNaN(d):
		return 0
	case d >= math.MaxInt32:
		return math.MaxInt32
	case d <= math.MinInt32:
		return math.MinInt32
	}
	return int32(d)
}

func toInt64(d float64) int64 {
	switch {
	case math.IsNaN(d):
		return 0
	case d >= math.MaxInt64:
		return math.MaxInt64
	case d <= math.MinInt64:
		return math.MinInt64
	}
	return int64(d)
}

// ldc pushes a loadable constant.
func (t *Thread) ldc(f *Frame, index uint16) error {
	pool, err := f.constantPool()
	if err != nil {
		return err
	}
	entry, err := pool.Get(index)
	if err != nil {
		return fmt.Errorf("ldc: %w", err)
	}
	switch c := entry.(type) {
	case *classfile.ConstantInteger:
		f.Push(IntValue(c.Value))
	case *classfile.ConstantFloat:
		f.Push(FloatValue(c.Value))
	case *classfile.ConstantLong:
		f.Push(LongValue(c.Value))
	case *classfile.ConstantDouble:
		f.Push(DoubleValue(c.Value))
	case *classfile.ConstantString:
		s, err := pool.Utf8(c.StringIndex)
		if err != nil {
			return fmt.Errorf("ldc: resolving string: %w", err)
		}
		var r Ref
		t.vm.write(func(h *Heap) { r = h.Intern(s) })
		f.Push(RefValue(r))
	case *classfile.ConstantClass:
		name, err := pool.Utf8(c.NameIndex)
		if err != nil {
			return fmt.Errorf("ldc: resolving class: %w", err)
		}
		f.Push(RefValue(t.vm.classObject(name)))
	default:
		return fmt.Errorf("%w: ldc of a %s constant", ErrUnsupported, entry.Tag())
	}
	return nil
}

// instanceOf reports whether the object at ref is an instance of the
// named class, interface or array type.
func (t *Thread) instanceOf(ref Ref, name string) (bool, error) {
	if err := t.vm.resolveType(name); err != nil {
		return false, err
	}
	return t.vm.assignable(t.vm.classOf(ref), name)
}

// javaTypeName formats an internal or array name for messages.
func javaTypeName(name string) string {
	b := []byte(name)
	for i, c := range b {
		if c == '/' {
			b[i] = '.'
		}
	}
	return string(b)
}
