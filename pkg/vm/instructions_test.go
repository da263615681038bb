package vm

import (
	"errors"
	"io"
	"math"
	"testing"
)

// run executes raw bytecode on a fresh thread. Locals are laid out from
// index 0, longs and doubles taking two slots.
func run(t *testing.T, code []byte, locals ...Value) (Value, error) {
	t.Helper()

	v := New(Options{Stdout: io.Discard, Stderr: io.Discard})
	th := v.NewThread("test")
	frame := NewFrame(8, 10, code, nil)
	slot := 0
	for _, val := range locals {
		frame.SetLocal(slot, val)
		slot += val.Kind().Category()
	}
	if err := th.Stack().PushFrame(frame); err != nil {
		t.Fatal(err)
	}
	return th.Run()
}

// executeAndGetInt runs bytecode that must end with ireturn (0xAC) and
// returns the int result. Optional locals are set as int32 values
// starting at index 0.
func executeAndGetInt(t *testing.T, code []byte, locals ...int32) int32 {
	t.Helper()

	vals := make([]Value, len(locals))
	for i, l := range locals {
		vals[i] = IntValue(l)
	}
	got, err := run(t, code, vals...)
	if err != nil {
		t.Fatalf("execution error: %v", err)
	}
	return got.AsInt()
}

// expectUncaught runs code and checks it ends with the given exception.
func expectUncaught(t *testing.T, code []byte, className, msg string, locals ...Value) {
	t.Helper()

	_, err := run(t, code, locals...)
	var ue *UncaughtException
	if !errors.As(err, &ue) {
		t.Fatalf("got %v, want uncaught %s", err, className)
	}
	if ue.ClassName != className {
		t.Errorf("exception: got %s, want %s", ue.ClassName, className)
	}
	if ue.Message != msg {
		t.Errorf("message: got %q, want %q", ue.Message, msg)
	}
}

func TestIconst(t *testing.T) {
	tests := []struct {
		name   string
		opcode byte
		want   int32
	}{
		{"iconst_m1", 0x02, -1},
		{"iconst_0", 0x03, 0},
		{"iconst_1", 0x04, 1},
		{"iconst_2", 0x05, 2},
		{"iconst_3", 0x06, 3},
		{"iconst_4", 0x07, 4},
		{"iconst_5", 0x08, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code := []byte{tt.opcode, 0xAC} // iconst_N, ireturn
			got := executeAndGetInt(t, code)
			if got != tt.want {
				t.Errorf("%s: got %d, want %d", tt.name, got, tt.want)
			}
		})
	}
}

func TestBipushSipush(t *testing.T) {
	tests := []struct {
		name string
		code []byte
		want int32
	}{
		{"bipush positive", []byte{0x10, 42, 0xAC}, 42},
		{"bipush negative", []byte{0x10, 0xFB, 0xAC}, -5},
		{"bipush min_byte", []byte{0x10, 0x80, 0xAC}, -128},
		{"sipush 1000", []byte{0x11, 0x03, 0xE8, 0xAC}, 1000},
		{"sipush -1000", []byte{0x11, 0xFC, 0x18, 0xAC}, -1000},
		{"sipush max_short", []byte{0x11, 0x7F, 0xFF, 0xAC}, 32767},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := executeAndGetInt(t, tt.code); got != tt.want {
				t.Errorf("got %d, want %d", got, tt.want)
			}
		})
	}
}

func TestArithmeticInstructions(t *testing.T) {
	tests := []struct {
		name   string
		opcode byte
		a, b   int32
		want   int32
	}{
		{"iadd", 0x60, 3, 4, 7},
		{"iadd wraps", 0x60, math.MaxInt32, 1, math.MinInt32},
		{"isub", 0x64, 10, 3, 7},
		{"isub wraps", 0x64, math.MinInt32, 1, math.MaxInt32},
		{"imul", 0x68, 6, 7, 42},
		{"imul wraps", 0x68, 1763, 2487369, 90264251},
		{"idiv", 0x6C, 20, 3, 6},
		{"idiv negative truncates toward zero", 0x6C, -7, 2, -3},
		{"idiv MinInt32 by -1", 0x6C, math.MinInt32, -1, math.MinInt32},
		{"irem", 0x70, 20, 3, 2},
		{"irem negative", 0x70, -7, 2, -1},
		{"ishl", 0x78, 1, 4, 16},
		{"ishl masks shift", 0x78, 1, 33, 2},
		{"ishr", 0x7A, -16, 2, -4},
		{"iushr", 0x7C, -16, 28, 15},
		{"iand", 0x7E, 0b1100, 0b1010, 0b1000},
		{"ior", 0x80, 0b1100, 0b1010, 0b1110},
		{"ixor", 0x82, 0b1100, 0b1010, 0b0110},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// iload_0, iload_1, <op>, ireturn
			code := []byte{0x1A, 0x1B, tt.opcode, 0xAC}
			got := executeAndGetInt(t, code, tt.a, tt.b)
			if got != tt.want {
				t.Errorf("%s(%d, %d): got %d, want %d", tt.name, tt.a, tt.b, got, tt.want)
			}
		})
	}

	t.Run("ineg", func(t *testing.T) {
		// iload_0, ineg, ireturn
		if got := executeAndGetInt(t, []byte{0x1A, 0x74, 0xAC}, math.MinInt32); got != math.MinInt32 {
			t.Errorf("ineg(MinInt32): got %d", got)
		}
	})
}

func TestLongArithmetic(t *testing.T) {
	tests := []struct {
		name   string
		opcode byte
		a, b   int64
		want   int64
	}{
		{"ladd", 0x61, 1 << 40, 1, 1<<40 + 1},
		{"ladd wraps", 0x61, math.MaxInt64, 1, math.MinInt64},
		{"lsub", 0x65, 5, 7, -2},
		{"lmul", 0x69, 1 << 32, 1 << 31, math.MinInt64},
		{"ldiv", 0x6D, -9, 2, -4},
		{"lrem", 0x71, -9, 2, -1},
		{"land", 0x7F, 0xFF00, 0x0FF0, 0x0F00},
		{"lor", 0x81, 0xFF00, 0x0FF0, 0xFFF0},
		{"lxor", 0x83, 0xFF00, 0x0FF0, 0xF0F0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// lload_0, lload_2, <op>, lreturn
			code := []byte{0x1E, 0x20, tt.opcode, 0xAD}
			got, err := run(t, code, LongValue(tt.a), LongValue(tt.b))
			if err != nil {
				t.Fatal(err)
			}
			if got.AsLong() != tt.want {
				t.Errorf("got %d, want %d", got.AsLong(), tt.want)
			}
		})
	}

	t.Run("lshl masks shift", func(t *testing.T) {
		// lload_0, iload_2, lshl, lreturn
		got, err := run(t, []byte{0x1E, 0x1C, 0x79, 0xAD}, LongValue(1), IntValue(65))
		if err != nil {
			t.Fatal(err)
		}
		if got.AsLong() != 2 {
			t.Errorf("got %d, want 2", got.AsLong())
		}
	})
}

func TestConversions(t *testing.T) {
	intTests := []struct {
		name   string
		opcode byte
		in     int32
		want   int32
	}{
		{"i2b", 0x91, 250, -6},
		{"i2b positive", 0x91, 0x17F, 127},
		{"i2c", 0x92, 70000, 4464},
		{"i2c negative", 0x92, -1, 65535},
		{"i2s", 0x93, 40000, -25536},
	}
	for _, tt := range intTests {
		t.Run(tt.name, func(t *testing.T) {
			// iload_0, <op>, ireturn
			got := executeAndGetInt(t, []byte{0x1A, tt.opcode, 0xAC}, tt.in)
			if got != tt.want {
				t.Errorf("%s(%d): got %d, want %d", tt.name, tt.in, got, tt.want)
			}
		})
	}

	t.Run("i2d", func(t *testing.T) {
		got, err := run(t, []byte{0x1A, 0x87, 0xAF}, IntValue(-17)) // iload_0, i2d, dreturn
		if err != nil {
			t.Fatal(err)
		}
		if got != DoubleValue(-17.0) {
			t.Errorf("got %v, want double(-17)", got)
		}
	})

	t.Run("i2f", func(t *testing.T) {
		got, err := run(t, []byte{0x1A, 0x86, 0xAE}, IntValue(17)) // iload_0, i2f, freturn
		if err != nil {
			t.Fatal(err)
		}
		if got != FloatValue(17.0) {
			t.Errorf("got %v, want float(17)", got)
		}
	})

	t.Run("i2l", func(t *testing.T) {
		got, err := run(t, []byte{0x1A, 0x85, 0xAD}, IntValue(17)) // iload_0, i2l, lreturn
		if err != nil {
			t.Fatal(err)
		}
		if got != LongValue(17) {
			t.Errorf("got %v, want long(17)", got)
		}
	})

	// NaN is 0, out of range saturates
	d2i := []struct {
		in   float64
		want int32
	}{
		{3.9, 3},
		{-3.9, -3},
		{math.NaN(), 0},
		{1e20, math.MaxInt32},
		{math.Inf(-1), math.MinInt32},
	}
	for _, tt := range d2i {
		// dload_0, d2i, ireturn
		got, err := run(t, []byte{0x26, 0x8E, 0xAC}, DoubleValue(tt.in))
		if err != nil {
			t.Fatal(err)
		}
		if got.AsInt() != tt.want {
			t.Errorf("d2i(%v): got %d, want %d", tt.in, got.AsInt(), tt.want)
		}
	}
}

func TestComparisons(t *testing.T) {
	t.Run("lcmp", func(t *testing.T) {
		for _, tt := range []struct {
			a, b int64
			want int32
		}{{1, 2, -1}, {2, 2, 0}, {3, 2, 1}} {
			// lload_0, lload_2, lcmp, ireturn
			got, err := run(t, []byte{0x1E, 0x20, 0x94, 0xAC}, LongValue(tt.a), LongValue(tt.b))
			if err != nil {
				t.Fatal(err)
			}
			if got.AsInt() != tt.want {
				t.Errorf("lcmp(%d, %d): got %d, want %d", tt.a, tt.b, got.AsInt(), tt.want)
			}
		}
	})

	t.Run("fcmpl and fcmpg with NaN", func(t *testing.T) {
		nan := float32(math.NaN())
		for _, tt := range []struct {
			opcode byte
			want   int32
		}{{0x95, -1}, {0x96, 1}} {
			// fload_0, fload_1, fcmp<op>, ireturn
			got, err := run(t, []byte{0x22, 0x23, tt.opcode, 0xAC}, FloatValue(nan), FloatValue(1))
			if err != nil {
				t.Fatal(err)
			}
			if got.AsInt() != tt.want {
				t.Errorf("opcode %#x: got %d, want %d", tt.opcode, got.AsInt(), tt.want)
			}
		}
	})

	t.Run("dcmpg", func(t *testing.T) {
		// dload_0, dload_2, dcmpg, ireturn
		got, err := run(t, []byte{0x26, 0x28, 0x98, 0xAC}, DoubleValue(1.5), DoubleValue(0.5))
		if err != nil {
			t.Fatal(err)
		}
		if got.AsInt() != 1 {
			t.Errorf("got %d, want 1", got.AsInt())
		}
	})
}

func TestBranch(t *testing.T) {
	// Returns 1 if the branch is taken, 0 otherwise.
	//   0: iload_0
	//   1: if<cond> +5 (-> 6)
	//   4: iconst_0
	//   5: ireturn
	//   6: iconst_1
	//   7: ireturn
	tests := []struct {
		name   string
		opcode byte
		in     int32
		want   int32
	}{
		{"ifeq taken", 0x99, 0, 1},
		{"ifeq not taken", 0x99, 5, 0},
		{"ifne taken", 0x9A, 5, 1},
		{"iflt taken", 0x9B, -1, 1},
		{"iflt not taken", 0x9B, 0, 0},
		{"ifge taken", 0x9C, 0, 1},
		{"ifgt not taken", 0x9D, 0, 0},
		{"ifle taken", 0x9E, 0, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code := []byte{0x1A, tt.opcode, 0x00, 0x05, 0x03, 0xAC, 0x04, 0xAC}
			if got := executeAndGetInt(t, code, tt.in); got != tt.want {
				t.Errorf("got %d, want %d", got, tt.want)
			}
		})
	}
}

func TestIfIcmp(t *testing.T) {
	//   0: iload_0
	//   1: iload_1
	//   2: if_icmp<cond> +5 (-> 7)
	//   5: iconst_0
	//   6: ireturn
	//   7: iconst_1
	//   8: ireturn
	tests := []struct {
		name   string
		opcode byte
		a, b   int32
		want   int32
	}{
		{"if_icmpeq", 0x9F, 3, 3, 1},
		{"if_icmpne", 0xA0, 3, 3, 0},
		{"if_icmplt", 0xA1, 2, 3, 1},
		{"if_icmpge", 0xA2, 2, 3, 0},
		{"if_icmpgt", 0xA3, 4, 3, 1},
		{"if_icmple", 0xA4, 4, 3, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code := []byte{0x1A, 0x1B, tt.opcode, 0x00, 0x05, 0x03, 0xAC, 0x04, 0xAC}
			if got := executeAndGetInt(t, code, tt.a, tt.b); got != tt.want {
				t.Errorf("got %d, want %d", got, tt.want)
			}
		})
	}
}

func TestReferenceBranches(t *testing.T) {
	//   0: aload_0
	//   1: if<cond> +5 (-> 6)
	//   4: iconst_0
	//   5: ireturn
	//   6: iconst_1
	//   7: ireturn
	for _, tt := range []struct {
		name   string
		opcode byte
		in     Value
		want   int32
	}{
		{"ifnull with null", 0xC6, NullValue(), 1},
		{"ifnull with ref", 0xC6, RefValue(1), 0},
		{"ifnonnull with ref", 0xC7, RefValue(1), 1},
	} {
		t.Run(tt.name, func(t *testing.T) {
			got, err := run(t, []byte{0x2A, tt.opcode, 0x00, 0x05, 0x03, 0xAC, 0x04, 0xAC}, tt.in)
			if err != nil {
				t.Fatal(err)
			}
			if got.AsInt() != tt.want {
				t.Errorf("got %d, want %d", got.AsInt(), tt.want)
			}
		})
	}

	t.Run("if_acmpne", func(t *testing.T) {
		// aload_0, aload_1, if_acmpne +5, iconst_0, ireturn, iconst_1, ireturn
		code := []byte{0x2A, 0x2B, 0xA6, 0x00, 0x05, 0x03, 0xAC, 0x04, 0xAC}
		same, err := run(t, code, RefValue(1), RefValue(1))
		if err != nil {
			t.Fatal(err)
		}
		diff, err := run(t, code, RefValue(1), NullValue())
		if err != nil {
			t.Fatal(err)
		}
		if same.AsInt() != 0 || diff.AsInt() != 1 {
			t.Errorf("got same=%d diff=%d, want 0 and 1", same.AsInt(), diff.AsInt())
		}
	})
}

func TestLoop(t *testing.T) {
	// sum = 0; while (n > 0) { sum += n; n--; } return sum
	code := []byte{
		0x03,             //  0: iconst_0
		0x3C,             //  1: istore_1
		0x1A,             //  2: iload_0
		0x9E, 0x00, 0x0D, //  3: ifle +13 (-> 16)
		0x1B,             //  6: iload_1
		0x1A,             //  7: iload_0
		0x60,             //  8: iadd
		0x3C,             //  9: istore_1
		0x84, 0x00, 0xFF, // 10: iinc 0, -1
		0xA7, 0xFF, 0xF5, // 13: goto -11 (-> 2)
		0x1B,             // 16: iload_1
		0xAC,             // 17: ireturn
	}
	if got := executeAndGetInt(t, code, 10); got != 55 {
		t.Errorf("sum(10): got %d, want 55", got)
	}
}

func TestSwitch(t *testing.T) {
	t.Run("tableswitch", func(t *testing.T) {
		code := []byte{
			0x1A,                   //  0: iload_0
			0xAA,                   //  1: tableswitch
			0x00, 0x00,             //  2: padding
			0x00, 0x00, 0x00, 0x24, //  4: default -> 37
			0x00, 0x00, 0x00, 0x00, //  8: low 0
			0x00, 0x00, 0x00, 0x02, // 12: high 2
			0x00, 0x00, 0x00, 0x1B, // 16: 0 -> 28
			0x00, 0x00, 0x00, 0x1E, // 20: 1 -> 31
			0x00, 0x00, 0x00, 0x21, // 24: 2 -> 34
			0x10, 10, 0xAC,         // 28: bipush 10, ireturn
			0x10, 20, 0xAC,         // 31: bipush 20, ireturn
			0x10, 30, 0xAC,         // 34: bipush 30, ireturn
			0x02, 0xAC,             // 37: iconst_m1, ireturn
		}
		for in, want := range map[int32]int32{0: 10, 1: 20, 2: 30, 3: -1, -1: -1} {
			if got := executeAndGetInt(t, code, in); got != want {
				t.Errorf("switch(%d): got %d, want %d", in, got, want)
			}
		}
	})

	t.Run("lookupswitch", func(t *testing.T) {
		code := []byte{
			0x1A,                   //  0: iload_0
			0xAB,                   //  1: lookupswitch
			0x00, 0x00,             //  2: padding
			0x00, 0x00, 0x00, 0x21, //  4: default -> 34
			0x00, 0x00, 0x00, 0x02, //  8: npairs 2
			0x00, 0x00, 0x00, 0x0A, // 12: key 10
			0x00, 0x00, 0x00, 0x1B, // 16: -> 28
			0x00, 0x00, 0x00, 0x64, // 20: key 100
			0x00, 0x00, 0x00, 0x1E, // 24: -> 31
			0x10, 1, 0xAC,          // 28: bipush 1, ireturn
			0x10, 2, 0xAC,          // 31: bipush 2, ireturn
			0x02, 0xAC,             // 34: iconst_m1, ireturn
		}
		for in, want := range map[int32]int32{10: 1, 100: 2, 50: -1} {
			if got := executeAndGetInt(t, code, in); got != want {
				t.Errorf("switch(%d): got %d, want %d", in, got, want)
			}
		}
	})
}

func TestJsrRet(t *testing.T) {
	code := []byte{
		0xA8, 0x00, 0x05, // 0: jsr +5 (-> 5)
		0x1B,             // 3: iload_1
		0xAC,             // 4: ireturn
		0x4D,             // 5: astore_2
		0x10, 0x07,       // 6: bipush 7
		0x3C,             // 8: istore_1
		0xA9, 0x02,       // 9: ret 2
	}
	if got := executeAndGetInt(t, code); got != 7 {
		t.Errorf("got %d, want 7", got)
	}
}

func TestWide(t *testing.T) {
	code := []byte{
		0xC4, 0x84, 0x00, 0x00, 0x03, 0xE8, // 0: wide iinc 0, 1000
		0xC4, 0x15, 0x00, 0x00,             //             6: wide iload 0
		0xAC,                               //                               10: ireturn
	}
	if got := executeAndGetInt(t, code, 5); got != 1005 {
		t.Errorf("got %d, want 1005", got)
	}
}

func TestStackOps(t *testing.T) {
	tests := []struct {
		name string
		code []byte
		want int32
	}{
		{"dup", []byte{0x05, 0x59, 0x60, 0xAC}, 4},                // iconst_2, dup, iadd
		{"swap", []byte{0x04, 0x05, 0x5F, 0x64, 0xAC}, 1},         // iconst_1, iconst_2, swap, isub
		{"pop", []byte{0x04, 0x05, 0x57, 0xAC}, 1},                // iconst_1, iconst_2, pop
		{"dup_x1", []byte{0x04, 0x05, 0x5A, 0x64, 0x60, 0xAC}, 1}, // 1 2 -> 2 1 2; isub; iadd
		{"pop2 of two ints", []byte{0x04, 0x05, 0x06, 0x58, 0xAC}, 1},
		{"pop2 of a long", []byte{0x04, 0x0A, 0x58, 0xAC}, 1}, // iconst_1, lconst_1, pop2
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := executeAndGetInt(t, tt.code); got != tt.want {
				t.Errorf("got %d, want %d", got, tt.want)
			}
		})
	}

	t.Run("dup2 of a long", func(t *testing.T) {
		got, err := run(t, []byte{0x0A, 0x5C, 0x61, 0xAD}) // lconst_1, dup2, ladd, lreturn
		if err != nil {
			t.Fatal(err)
		}
		if got != LongValue(2) {
			t.Errorf("got %v, want long(2)", got)
		}
	})

}

func TestDupKeepsKind(t *testing.T) {
	th := New(Options{Stdout: io.Discard, Stderr: io.Discard}).NewThread("test")
	values := []Value{
		BooleanValue(true),
		ByteValue(-3),
		CharValue('x'),
		ShortValue(-300),
		IntValue(42),
		FloatValue(1.5),
		LongValue(1 << 40),
		DoubleValue(2.5),
		RefValue(7),
		ReturnAddressValue(12),
	}
	for _, v := range values {
		t.Run(v.Kind().String(), func(t *testing.T) {
			frame := NewFrame(0, 2, nil, nil)
			frame.Push(v)
			if err := th.execute(frame, OpDup); err != nil {
				t.Fatal(err)
			}
			if frame.Len() != 2 {
				t.Fatalf("Len: got %d, want 2", frame.Len())
			}
			if a, b := frame.Pop(), frame.Pop(); a != v || b != v {
				t.Errorf("got %v and %v, want two of %v", a, b, v)
			}
		})
	}
}

func TestIinc(t *testing.T) {
	tests := []struct {
		name  string
		delta byte
		in    int32
		want  int32
	}{
		{"increment", 0x01, 10, 11},
		{"decrement", 0xFF, 10, 9},
		{"wraps", 0x01, math.MaxInt32, math.MinInt32},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code := []byte{0x84, 0x00, tt.delta, 0x1A, 0xAC} // iinc 0 delta, iload_0, ireturn
			if got := executeAndGetInt(t, code, tt.in); got != tt.want {
				t.Errorf("got %d, want %d", got, tt.want)
			}
		})
	}
}

func TestArrays(t *testing.T) {
	t.Run("int array round trip", func(t *testing.T) {
		code := []byte{
			0x06,       //  0: iconst_3
			0xBC, 0x0A, //  1: newarray int
			0x4B,       //  3: astore_0
			0x2A,       //  4: aload_0
			0x04,       //  5: iconst_1
			0x10, 0x2A, //  6: bipush 42
			0x4F,       //  8: iastore
			0x2A,       //  9: aload_0
			0x04,       // 10: iconst_1
			0x2E,       // 11: iaload
			0x2A,       // 12: aload_0
			0xBE,       // 13: arraylength
			0x60,       // 14: iadd
			0xAC,       // 15: ireturn
		}
		if got := executeAndGetInt(t, code); got != 45 {
			t.Errorf("got %d, want 45", got)
		}
	})

	t.Run("byte array truncates", func(t *testing.T) {
		code := []byte{
			0x04,             //  0: iconst_1
			0xBC, 0x08,       //  1: newarray byte
			0x59,             //  3: dup
			0x03,             //  4: iconst_0
			0x11, 0x00, 0xC8, //  5: sipush 200
			0x54,             //  8: bastore
			0x03,             //  9: iconst_0
			0x33,             // 10: baload
			0xAC,             // 11: ireturn
		}
		if got := executeAndGetInt(t, code); got != -56 {
			t.Errorf("got %d, want -56", got)
		}
	})

	t.Run("char array is unsigned", func(t *testing.T) {
		code := []byte{
			0x04,       // 0: iconst_1
			0xBC, 0x05, // 1: newarray char
			0x59,       // 3: dup
			0x03,       // 4: iconst_0
			0x02,       // 5: iconst_m1
			0x55,       // 6: castore
			0x03,       // 7: iconst_0
			0x34,       // 8: caload
			0xAC,       // 9: ireturn
		}
		if got := executeAndGetInt(t, code); got != 65535 {
			t.Errorf("got %d, want 65535", got)
		}
	})

	t.Run("index out of bounds", func(t *testing.T) {
		// iconst_1, newarray int, iconst_1, iaload, ireturn
		code := []byte{0x04, 0xBC, 0x0A, 0x04, 0x2E, 0xAC}
		expectUncaught(t, code, "java/lang/ArrayIndexOutOfBoundsException", "Index 1 out of bounds for length 1")
	})

	t.Run("negative size", func(t *testing.T) {
		// iconst_m1, newarray int, areturn
		expectUncaught(t, []byte{0x02, 0xBC, 0x0A, 0xB0}, "java/lang/NegativeArraySizeException", "-1")
	})

	t.Run("null array", func(t *testing.T) {
		// aconst_null, arraylength, ireturn
		expectUncaught(t, []byte{0x01, 0xBE, 0xAC}, "java/lang/NullPointerException", "")
	})

	t.Run("wrong array kind faults", func(t *testing.T) {
		// iconst_1, newarray int, iconst_0, laload, lreturn
		_, err := run(t, []byte{0x04, 0xBC, 0x0A, 0x03, 0x2F, 0xAD})
		if !errors.Is(err, &Fault{Kind: FaultTypeMismatch}) {
			t.Errorf("got %v, want type mismatch fault", err)
		}
	})
}

func TestExceptions(t *testing.T) {
	t.Run("idiv by zero", func(t *testing.T) {
		expectUncaught(t, []byte{0x1A, 0x1B, 0x6C, 0xAC}, "java/lang/ArithmeticException", "/ by zero",
			IntValue(1), IntValue(0))
	})

	t.Run("lrem by zero", func(t *testing.T) {
		expectUncaught(t, []byte{0x1E, 0x20, 0x71, 0xAD}, "java/lang/ArithmeticException", "/ by zero",
			LongValue(1), LongValue(0))
	})

	t.Run("athrow null", func(t *testing.T) {
		expectUncaught(t, []byte{0x01, 0xBF}, "java/lang/NullPointerException", "") // aconst_null, athrow
	})

	t.Run("monitorenter null", func(t *testing.T) {
		expectUncaught(t, []byte{0x01, 0xC2, 0xB1}, "java/lang/NullPointerException", "")
	})

	t.Run("fdiv by zero is infinity", func(t *testing.T) {
		// fconst_1, fconst_0, fdiv, freturn
		got, err := run(t, []byte{0x0C, 0x0B, 0x6E, 0xAE})
		if err != nil {
			t.Fatal(err)
		}
		if !math.IsInf(float64(got.AsFloat()), 1) {
			t.Errorf("got %v, want +Inf", got)
		}
	})
}

func TestFaults(t *testing.T) {
	tests := []struct {
		name string
		code []byte
		kind FaultKind
	}{
		{"type mismatch", []byte{0x0B, 0x04, 0x60, 0xAC}, FaultTypeMismatch}, // fconst_0, iconst_1, iadd
		{"underflow", []byte{0x60, 0xAC}, FaultStackUnderflow},
		{"unknown opcode", []byte{0xCB}, FaultUnknownOpcode},
		{"fall off the end", []byte{0x00}, FaultPCOutOfRange},
		{"branch out of code", []byte{0xA7, 0x00, 0x40}, FaultPCOutOfRange},
		{"return type mismatch", []byte{0x03, 0xAD}, FaultTypeMismatch}, // iconst_0, lreturn
		{"local out of range", []byte{0x15, 0x20, 0xAC}, FaultLocalIndexOutOfRange},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, tt.code)
			if !errors.Is(err, &Fault{Kind: tt.kind}) {
				t.Fatalf("got %v, want %v fault", err, tt.kind)
			}
			var f *Fault
			if errors.As(err, &f) && f.Method != "<code>" {
				t.Errorf("fault method: got %q, want <code>", f.Method)
			}
		})
	}
}

func TestConstants(t *testing.T) {
	tests := []struct {
		name string
		code []byte
		want Value
	}{
		{"aconst_null", []byte{0x01, 0xB0}, NullValue()},
		{"lconst_1", []byte{0x0A, 0xAD}, LongValue(1)},
		{"fconst_2", []byte{0x0D, 0xAE}, FloatValue(2)},
		{"dconst_1", []byte{0x0F, 0xAF}, DoubleValue(1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := run(t, tt.code)
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}

	t.Run("void return", func(t *testing.T) {
		got, err := run(t, []byte{0xB1})
		if err != nil {
			t.Fatal(err)
		}
		if !got.IsEmpty() {
			t.Errorf("got %v, want empty", got)
		}
	})
}
