package vm

import (
	"fmt"

	"github.com/daimatz/classvm/pkg/classfile"
)

// DefaultMaxFrames is the default maximum number of nested method calls.
const DefaultMaxFrames = 1024

// OperandStack is a bounded LIFO of typed values.
type OperandStack struct {
	slots []Value
	sp    int
}

// NewOperandStack creates an operand stack holding at most maxStack values.
func NewOperandStack(maxStack int) OperandStack {
	return OperandStack{slots: make([]Value, maxStack)}
}

// Push pushes a value onto the operand stack.
func (s *OperandStack) Push(v Value) {
	if s.sp >= len(s.slots) {
		panic(newFault(FaultStackOverflow, "SP=%d, max=%d", s.sp, len(s.slots)))
	}
	s.slots[s.sp] = v
	s.sp++
}

// Pop pops a value from the operand stack.
func (s *OperandStack) Pop() Value {
	if s.sp <= 0 {
		panic(newFault(FaultStackUnderflow, "SP=0"))
	}
	s.sp--
	v := s.slots[s.sp]
	s.slots[s.sp] = Value{}
	return v
}

// Peek returns the value n entries below the top without removing it.
// Peek(0) is the top.
func (s *OperandStack) Peek(n int) Value {
	if n < 0 || n >= s.sp {
		panic(newFault(FaultStackUnderflow, "peek %d with SP=%d", n, s.sp))
	}
	return s.slots[s.sp-1-n]
}

func (s *OperandStack) PopInt() int32      { return s.Pop().AsInt() }
func (s *OperandStack) PopLong() int64     { return s.Pop().AsLong() }
func (s *OperandStack) PopFloat() float32  { return s.Pop().AsFloat() }
func (s *OperandStack) PopDouble() float64 { return s.Pop().AsDouble() }
func (s *OperandStack) PopRef() Ref        { return s.Pop().AsRef() }

func (s *OperandStack) PopReturnAddress() int { return s.Pop().AsReturnAddress() }

// Len returns the number of values on the stack.
func (s *OperandStack) Len() int { return s.sp }

// Cap returns max_stack.
func (s *OperandStack) Cap() int { return len(s.slots) }

// Clear empties the stack.
func (s *OperandStack) Clear() {
	for i := 0; i < s.sp; i++ {
		s.slots[i] = Value{}
	}
	s.sp = 0
}

// Frame represents a stack frame for method execution.
type Frame struct {
	OperandStack

	Locals []Value
	Code   []byte
	PC     int
	Pool   *classfile.ConstantPool

	// Nil for frames built directly from code bytes.
	Class  *Class
	Method *classfile.MethodInfo
	attr   *classfile.CodeAttribute

	opPC int

	// Set on a <clinit> frame; its return marks the class initialized.
	init *classData
	// Set once the frame has executed an instruction.
	started bool

	// A bridge frame receives the result of a method an intrinsic calls
	// back into. Exceptions stop unwinding there.
	bridge bool
}

// NewFrame creates a frame over raw code bytes. The pool may be nil when
// the code does not reference it.
func NewFrame(maxLocals, maxStack int, code []byte, pool *classfile.ConstantPool) *Frame {
	return &Frame{
		OperandStack: NewOperandStack(maxStack),
		Locals:       make([]Value, maxLocals),
		Code:         code,
		Pool:         pool,
	}
}

func newMethodFrame(class *Class, method *classfile.MethodInfo, code *classfile.CodeAttribute) *Frame {
	f := NewFrame(int(code.MaxLocals), int(code.MaxStack), code.Code, class.ConstantPool)
	f.Class = class
	f.Method = method
	f.attr = code
	return f
}

// String names the frame's method as class.name:descriptor.
func (f *Frame) String() string {
	if f.Class == nil || f.Method == nil {
		return "<code>"
	}
	return f.Class.Name + "." + f.Method.Name(f.Pool) + ":" + f.Method.Descriptor(f.Pool)
}

func (f *Frame) checkLocal(index int) {
	if index < 0 || index >= len(f.Locals) {
		panic(newFault(FaultLocalIndexOutOfRange, "index=%d, max=%d", index, len(f.Locals)))
	}
}

// GetLocal returns the value at the given local variable index.
func (f *Frame) GetLocal(index int) Value {
	f.checkLocal(index)
	return f.Locals[index]
}

// SetLocal stores v at index. A long or double also claims index+1, and a
// store into the second half of a long or double invalidates it.
func (f *Frame) SetLocal(index int, v Value) {
	f.checkLocal(index)
	if v.Kind().Category() == 2 {
		f.checkLocal(index + 1)
		f.Locals[index+1] = Value{}
	}
	if index > 0 && f.Locals[index-1].Kind().Category() == 2 {
		f.Locals[index-1] = Value{}
	}
	f.Locals[index] = v
}

func (f *Frame) need(n int) {
	if f.PC < 0 || f.PC+n > len(f.Code) {
		panic(newFault(FaultPCOutOfRange, "reading %d bytes at PC=%d, code length %d", n, f.PC, len(f.Code)))
	}
}

// ReadU8 reads a uint8 operand and advances PC.
func (f *Frame) ReadU8() uint8 {
	f.need(1)
	val := f.Code[f.PC]
	f.PC++
	return val
}

// ReadI8 reads an int8 operand and advances PC.
func (f *Frame) ReadI8() int8 {
	return int8(f.ReadU8())
}

// ReadU16 reads a uint16 operand (big-endian) and advances PC by 2.
func (f *Frame) ReadU16() uint16 {
	f.need(2)
	val := uint16(f.Code[f.PC])<<8 | uint16(f.Code[f.PC+1])
	f.PC += 2
	return val
}

// ReadI16 reads an int16 operand (big-endian) and advances PC by 2.
func (f *Frame) ReadI16() int16 {
	return int16(f.ReadU16())
}

// ReadI32 reads an int32 operand (big-endian) and advances PC by 4.
func (f *Frame) ReadI32() int32 {
	f.need(4)
	c := f.Code[f.PC:]
	val := int32(uint32(c[0])<<24 | uint32(c[1])<<16 | uint32(c[2])<<8 | uint32(c[3]))
	f.PC += 4
	return val
}

// jump moves PC to the current instruction's address plus offset.
func (f *Frame) jump(offset int) {
	target := f.opPC + offset
	if target < 0 || target >= len(f.Code) {
		panic(newFault(FaultPCOutOfRange, "branch from %d to %d, code length %d", f.opPC, target, len(f.Code)))
	}
	f.PC = target
}

// Stack is one thread's call stack. The current frame is the top.
type Stack struct {
	frames []*Frame
	max    int
}

// NewStack creates a call stack that holds at most maxFrames frames.
func NewStack(maxFrames int) *Stack {
	if maxFrames <= 0 {
		maxFrames = DefaultMaxFrames
	}
	return &Stack{max: maxFrames}
}

// PushFrame makes f the current frame.
func (s *Stack) PushFrame(f *Frame) error {
	if len(s.frames) >= s.max {
		return fmt.Errorf("%w: frame depth exceeded %d", ErrStackOverflow, s.max)
	}
	s.frames = append(s.frames, f)
	return nil
}

// PopFrame removes and returns the current frame, or nil if the stack is
// empty.
func (s *Stack) PopFrame() *Frame {
	n := len(s.frames)
	if n == 0 {
		return nil
	}
	f := s.frames[n-1]
	s.frames[n-1] = nil
	s.frames = s.frames[:n-1]
	return f
}

// Current returns the top frame, or nil.
func (s *Stack) Current() *Frame {
	if len(s.frames) == 0 {
		return nil
	}
	return s.frames[len(s.frames)-1]
}

// Depth returns the number of frames.
func (s *Stack) Depth() int { return len(s.frames) }
