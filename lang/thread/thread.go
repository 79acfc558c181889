// Package thread implements Thread, the per-script execution state driven
// one instruction at a time by the interpreter (§4.3).
package thread

import (
	"fmt"

	"stagevm/lang/instruction"
	"stagevm/lang/value"
)

// Status is the lifecycle state of a Thread.
type Status uint8

const (
	// Done is the initial status; a Thread transitions out of it via
	// start() and transitions back into it when it runs off the end of its
	// instruction sequence.
	Done Status = iota
	Running
	// Yield parks the thread for exactly the remainder of the current
	// inner-iteration round of the scheduler's tick loop.
	Yield
	// YieldTick parks the thread until the next tick's first inner
	// iteration.
	YieldTick
)

func (s Status) String() string {
	switch s {
	case Done:
		return "done"
	case Running:
		return "running"
	case Yield:
		return "yield"
	case YieldTick:
		return "yieldtick"
	default:
		return "invalid"
	}
}

// StackFrame is the per-loop scratch slot a SaveStackFrame/RestoreStackFrame
// pair manages, typically holding a control_repeat iteration counter.
type StackFrame struct {
	FrameValue value.Value
}

// Thread owns the mutable execution state for one compiled Script: its
// program counter, operand stack, frame stack and lifecycle Status. A
// Thread is created once per (Target instance, Script) pair by the
// scheduler and reused across ticks.
type Thread struct {
	Script *instruction.Script
	Status Status
	PC     int

	operand []value.Value
	frames  []StackFrame
}

// New returns a Thread bound to script, initially Done.
func New(script *instruction.Script) *Thread {
	return &Thread{Script: script, Status: Done}
}

// Start resets the thread to run its script from the beginning: status
// becomes Running, PC resets to 0, both stacks are cleared. Called by the
// scheduler when a trigger matches (§4.3, §4.4).
func (t *Thread) Start() {
	t.Status = Running
	t.PC = 0
	t.operand = t.operand[:0]
	t.frames = t.frames[:0]
}

// Resume un-parks a YieldTick thread at the start of a new tick.
func (t *Thread) Resume() { t.Status = Running }

// YieldOnce parks the thread for the remainder of the current tick's inner
// iteration round.
func (t *Thread) YieldOnce() { t.Status = Yield }

// YieldForTick parks the thread until the scheduler's next tick. No opcode
// in the current alphabet produces this transition; it exists so a future
// "wait one frame" block has a Status to land in without a Thread API
// change, the same reserved-but-unreachable state the instruction set it
// was ported from also carries.
func (t *Thread) YieldForTick() { t.Status = YieldTick }

// Finish transitions the thread to Done: it ran off the end of its
// instruction sequence.
func (t *Thread) Finish() { t.Status = Done }

// PushOperand pushes v onto the operand stack.
func (t *Thread) PushOperand(v value.Value) { t.operand = append(t.operand, v) }

// PopOperand pops and returns the top of the operand stack. Popping an
// empty stack is a compiler invariant violation (§7) and panics: the
// bytecode that drives a Thread is produced by the compiler and must be
// well-formed.
func (t *Thread) PopOperand() value.Value {
	n := len(t.operand)
	if n == 0 {
		panic("thread: pop from empty operand stack")
	}
	v := t.operand[n-1]
	t.operand = t.operand[:n-1]
	return v
}

// PeekOperand returns the top of the operand stack without popping it.
func (t *Thread) PeekOperand() value.Value {
	n := len(t.operand)
	if n == 0 {
		panic("thread: peek on empty operand stack")
	}
	return t.operand[n-1]
}

// OperandLen reports the current depth of the operand stack (used by tests
// to assert net-zero stack effect, §8 item 3).
func (t *Thread) OperandLen() int { return len(t.operand) }

// PushFrame pushes a fresh StackFrame with FrameValue = Num(0).
func (t *Thread) PushFrame() {
	t.frames = append(t.frames, StackFrame{FrameValue: value.Num(0)})
}

// PopFrame pops the top frame. Popping an empty frame stack is a compiler
// invariant violation and panics (§7).
func (t *Thread) PopFrame() StackFrame {
	n := len(t.frames)
	if n == 0 {
		panic("thread: pop from empty frame stack")
	}
	f := t.frames[n-1]
	t.frames = t.frames[:n-1]
	return f
}

// CurrentFrame returns a pointer to the top frame, for ReadFrameValue and
// WriteFrameValue. Panics if there is no active frame (compiler invariant
// violation).
func (t *Thread) CurrentFrame() *StackFrame {
	n := len(t.frames)
	if n == 0 {
		panic("thread: no active stack frame")
	}
	return &t.frames[n-1]
}

// FrameLen reports the current depth of the frame stack (used by tests to
// assert frame balance, §8 item 4).
func (t *Thread) FrameLen() int { return len(t.frames) }

func (t *Thread) String() string {
	return fmt.Sprintf("thread(pc=%d status=%s operand=%d frames=%d)", t.PC, t.Status, len(t.operand), len(t.frames))
}
