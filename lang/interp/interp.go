// Package interp implements single-step execution of one instruction
// against a Thread and a Sprite (§4.2). The interpreter is the only mutator
// of Sprite state and Thread state during a tick (§5).
package interp

import (
	"fmt"
	"math"

	"stagevm/lang/actor"
	"stagevm/lang/instruction"
	"stagevm/lang/renderer"
	"stagevm/lang/thread"
	"stagevm/lang/value"
)

// Redraw tracks whether the current tick has had a redraw requested; the
// scheduler owns one of these per tick and clears it before stepping (§4.4).
type Redraw struct {
	Requested bool
}

// Step executes exactly one instruction of th.Script against th and sprite.
// It is an invariant violation (§7) to call Step on a Done thread; the
// scheduler must not do so.
//
// After the opcode executes, PC advances by 1 unless the opcode itself set
// PC (Jump, a taken JumpIfTrue).
func Step(th *thread.Thread, sprite *actor.Sprite, r renderer.Renderer, redraw *Redraw) {
	if th.Status == thread.Done {
		panic("interp: Step called on a Done thread")
	}

	insns := th.Script.Instructions
	if th.PC < 0 || th.PC >= len(insns) {
		panic("interp: program counter out of range")
	}
	in := insns[th.PC]
	jumped := false

	switch in.Op {
	case instruction.Push:
		th.PushOperand(in.Value)

	case instruction.Yield:
		th.YieldOnce()

	case instruction.Pop:
		th.PopOperand()

	case instruction.Jump:
		th.PC = in.Target
		jumped = true

	case instruction.JumpIfTrue:
		cond := th.PopOperand()
		if cond.ToBool() {
			th.PC = in.Target
			jumped = true
		}

	case instruction.SaveStackFrame:
		th.PushFrame()

	case instruction.RestoreStackFrame:
		th.PopFrame()

	case instruction.ReadFrameValue:
		th.PushOperand(th.CurrentFrame().FrameValue)

	case instruction.WriteFrameValue:
		th.CurrentFrame().FrameValue = th.PeekOperand()

	case instruction.RequestRedraw:
		redraw.Requested = true

	case instruction.Add:
		op1 := th.PopOperand()
		op2 := th.PopOperand()
		th.PushOperand(value.Add(op2, op1))

	case instruction.Subtract:
		op1 := th.PopOperand()
		op2 := th.PopOperand()
		th.PushOperand(value.Subtract(op2, op1))

	case instruction.LessThan:
		op1 := th.PopOperand()
		op2 := th.PopOperand()
		th.PushOperand(value.Bool(value.LessThan(op2, op1)))

	case instruction.Equals:
		op1 := th.PopOperand()
		op2 := th.PopOperand()
		th.PushOperand(value.Bool(value.Equals(op2, op1)))

	case instruction.GreaterThan:
		op1 := th.PopOperand()
		op2 := th.PopOperand()
		th.PushOperand(value.Bool(value.GreaterThan(op2, op1)))

	case instruction.GotoXY:
		y := th.PopOperand().ToNum()
		x := th.PopOperand().ToNum()
		sprite.MoveTo(r, x, y)

	case instruction.MoveSteps:
		// Direction 0 deg = up (+y), 90 deg = right (+x); radians = (90-direction)
		// maps that convention onto the standard unit circle, where cos gives
		// the x component and sin the y component (§4.2, §8 scenario S1).
		steps := th.PopOperand().ToNum()
		radians := (90 - sprite.Direction) * math.Pi / 180
		sprite.MoveTo(r, sprite.X+math.Cos(radians)*steps, sprite.Y+math.Sin(radians)*steps)

	default:
		panic(fmt.Sprintf("interp: unimplemented opcode %s", in.Op))
	}

	if !jumped {
		th.PC++
	}
	// The thread transitions to Done here rather than forcing every caller
	// of Step to separately check the program counter: it is the same
	// "ran off the end" transition §4.3 assigns to the scheduler, just
	// performed at the one place that already knows the new PC.
	if th.PC >= len(insns) && th.Status != thread.Done {
		th.Finish()
	}
}
