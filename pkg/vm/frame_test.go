package vm

import (
	"errors"
	"testing"
)

// expectFault runs fn and checks that it panics with a *Fault of the
// given kind.
func expectFault(t *testing.T, kind FaultKind, fn func()) {
	t.Helper()
	defer func() {
		t.Helper()
		r := recover()
		f, ok := r.(*Fault)
		if !ok {
			t.Fatalf("recovered %v, want *Fault", r)
		}
		if f.Kind != kind {
			t.Errorf("fault kind: got %v, want %v", f.Kind, kind)
		}
	}()
	fn()
}

func TestOperandStack(t *testing.T) {
	t.Run("LIFO order", func(t *testing.T) {
		frame := NewFrame(0, 10, nil, nil)

		frame.Push(IntValue(10))
		frame.Push(LongValue(20))
		frame.Push(RefValue(30))

		if v := frame.Pop(); v != RefValue(30) {
			t.Errorf("first Pop: got %v, want ref(30)", v)
		}
		if v := frame.Pop(); v != LongValue(20) {
			t.Errorf("second Pop: got %v, want long(20)", v)
		}
		if v := frame.PopInt(); v != 10 {
			t.Errorf("third Pop: got %d, want 10", v)
		}
	})

	t.Run("peek", func(t *testing.T) {
		frame := NewFrame(0, 4, nil, nil)
		frame.Push(IntValue(1))
		frame.Push(IntValue(2))
		if v := frame.Peek(0); v != IntValue(2) {
			t.Errorf("Peek(0): got %v", v)
		}
		if v := frame.Peek(1); v != IntValue(1) {
			t.Errorf("Peek(1): got %v", v)
		}
		if frame.Len() != 2 || frame.Cap() != 4 {
			t.Errorf("Len/Cap: got %d/%d, want 2/4", frame.Len(), frame.Cap())
		}
	})

	t.Run("clear", func(t *testing.T) {
		frame := NewFrame(0, 4, nil, nil)
		frame.Push(IntValue(1))
		frame.Push(IntValue(2))
		frame.Clear()
		if frame.Len() != 0 {
			t.Errorf("Len after Clear: got %d", frame.Len())
		}
	})

	t.Run("overflow", func(t *testing.T) {
		frame := NewFrame(0, 1, nil, nil)
		frame.Push(IntValue(1))
		expectFault(t, FaultStackOverflow, func() { frame.Push(IntValue(2)) })
	})

	t.Run("underflow", func(t *testing.T) {
		frame := NewFrame(0, 1, nil, nil)
		expectFault(t, FaultStackUnderflow, func() { frame.Pop() })
	})

	t.Run("typed pops", func(t *testing.T) {
		tests := []struct {
			name string
			push Value
			pop  func(*Frame) any
			want any
		}{
			{"int", IntValue(-5), func(f *Frame) any { return f.PopInt() }, int32(-5)},
			{"long", LongValue(1 << 40), func(f *Frame) any { return f.PopLong() }, int64(1 << 40)},
			{"float", FloatValue(0.5), func(f *Frame) any { return f.PopFloat() }, float32(0.5)},
			{"double", DoubleValue(-2.25), func(f *Frame) any { return f.PopDouble() }, -2.25},
			{"ref", RefValue(9), func(f *Frame) any { return f.PopRef() }, Ref(9)},
			{"return address", ReturnAddressValue(17), func(f *Frame) any { return f.PopReturnAddress() }, 17},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				frame := NewFrame(0, 1, nil, nil)
				frame.Push(tt.push)
				if got := tt.pop(frame); got != tt.want {
					t.Errorf("got %v (%T), want %v (%T)", got, got, tt.want, tt.want)
				}
				if frame.Len() != 0 {
					t.Errorf("Len after pop: got %d", frame.Len())
				}
			})
		}
	})

	t.Run("return address pop mismatch", func(t *testing.T) {
		frame := NewFrame(0, 1, nil, nil)
		frame.Push(IntValue(3))
		expectFault(t, FaultTypeMismatch, func() { frame.PopReturnAddress() })
	})

	// a mistyped pop faults
	t.Run("typed pop mismatch", func(t *testing.T) {
		frame := NewFrame(0, 1, nil, nil)
		frame.Push(FloatValue(1))
		expectFault(t, FaultTypeMismatch, func() { frame.PopInt() })
	})
}

func TestFrameLocalVars(t *testing.T) {
	t.Run("set and get", func(t *testing.T) {
		frame := NewFrame(4, 0, nil, nil)
		frame.SetLocal(0, IntValue(100))
		frame.SetLocal(3, RefValue(7))
		if v := frame.GetLocal(0); v != IntValue(100) {
			t.Errorf("local 0: got %v", v)
		}
		if v := frame.GetLocal(3); v != RefValue(7) {
			t.Errorf("local 3: got %v", v)
		}
		if v := frame.GetLocal(1); !v.IsEmpty() {
			t.Errorf("local 1: got %v, want empty", v)
		}
	})

	t.Run("long takes two slots", func(t *testing.T) {
		frame := NewFrame(3, 0, nil, nil)
		frame.SetLocal(1, IntValue(5))
		frame.SetLocal(0, LongValue(1<<40))
		if v := frame.GetLocal(1); !v.IsEmpty() {
			t.Errorf("second half of long: got %v, want empty", v)
		}

		// Writing into the second half invalidates the long.
		frame.SetLocal(1, IntValue(9))
		if v := frame.GetLocal(0); !v.IsEmpty() {
			t.Errorf("local 0 after overwrite: got %v, want empty", v)
		}
	})

	t.Run("out of range", func(t *testing.T) {
		frame := NewFrame(2, 0, nil, nil)
		expectFault(t, FaultLocalIndexOutOfRange, func() { frame.GetLocal(2) })
		expectFault(t, FaultLocalIndexOutOfRange, func() { frame.SetLocal(1, DoubleValue(1)) })
	})
}

func TestFrameOperands(t *testing.T) {
	frame := NewFrame(0, 0, []byte{0xFF, 0x12, 0x34, 0x80, 0x00, 0x00, 0x01}, nil)

	if v := frame.ReadI8(); v != -1 {
		t.Errorf("ReadI8: got %d, want -1", v)
	}
	if v := frame.ReadU16(); v != 0x1234 {
		t.Errorf("ReadU16: got %#x, want 0x1234", v)
	}
	if v := frame.ReadI32(); v != -0x7fffffff {
		t.Errorf("ReadI32: got %d", v)
	}
	expectFault(t, FaultPCOutOfRange, func() { frame.ReadU8() })
}

func TestStack(t *testing.T) {
	s := NewStack(2)
	if s.Current() != nil || s.PopFrame() != nil {
		t.Fatal("empty stack has a frame")
	}

	a, b := NewFrame(0, 0, nil, nil), NewFrame(0, 0, nil, nil)
	if err := s.PushFrame(a); err != nil {
		t.Fatal(err)
	}
	if err := s.PushFrame(b); err != nil {
		t.Fatal(err)
	}
	if s.Current() != b || s.Depth() != 2 {
		t.Errorf("Current/Depth after two pushes: %p/%d", s.Current(), s.Depth())
	}
	if err := s.PushFrame(NewFrame(0, 0, nil, nil)); !errors.Is(err, ErrStackOverflow) {
		t.Errorf("third push: got %v, want ErrStackOverflow", err)
	}
	if s.PopFrame() != b || s.Current() != a {
		t.Error("PopFrame did not expose the caller")
	}
}
