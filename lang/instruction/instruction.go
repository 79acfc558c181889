// Package instruction defines the bytecode alphabet the compiler emits and
// the interpreter executes (§4.2), and the Script container (§3). This is
// an in-process representation only; it is never persisted, so its encoding
// may change freely (§6).
package instruction

import (
	"fmt"

	"stagevm/lang/block"
	"stagevm/lang/value"
)

// Opcode is one instruction in the bytecode alphabet.
type Opcode uint8

const ( //nolint:revive
	// control
	Push //          - Push<v>          v
	Yield
	Jump       //       - Jump<addr>       -
	JumpIfTrue //    cond JumpIfTrue<addr> -
	// Pop discards the operand stack top. Not named among the alphabet of
	// §4.2, but needed (and grounded in the teacher's own POP opcode) to let
	// the compiler balance the stack left behind by WriteFrameValue's
	// non-consuming write — see compiler.lowerRepeat.
	Pop

	// frame
	SaveStackFrame
	RestoreStackFrame
	ReadFrameValue  //    -  ReadFrameValue  v
	WriteFrameValue //    v  WriteFrameValue -    (v preserved on stack)

	// scheduler hook
	RequestRedraw

	// arithmetic / compare
	Add
	Subtract
	LessThan
	Equals
	GreaterThan

	// motion
	GotoXY
	MoveSteps
)

var opcodeNames = [...]string{
	Push:              "push",
	Yield:             "yield",
	Jump:              "jump",
	JumpIfTrue:        "jumpiftrue",
	Pop:               "pop",
	SaveStackFrame:    "savestackframe",
	RestoreStackFrame: "restorestackframe",
	ReadFrameValue:    "readframevalue",
	WriteFrameValue:   "writeframevalue",
	RequestRedraw:     "requestredraw",
	Add:               "add",
	Subtract:          "subtract",
	LessThan:          "lessthan",
	Equals:            "equals",
	GreaterThan:       "greaterthan",
	GotoXY:            "gotoxy",
	MoveSteps:         "movesteps",
}

func (op Opcode) String() string {
	if int(op) < len(opcodeNames) && opcodeNames[op] != "" {
		return opcodeNames[op]
	}
	return fmt.Sprintf("illegal op (%d)", op)
}

// HasArg reports whether op carries an Arg operand (Push's value, or a jump
// address).
func (op Opcode) HasArg() bool {
	switch op {
	case Push, Jump, JumpIfTrue:
		return true
	default:
		return false
	}
}

// Instruction is one emitted bytecode entry: an Opcode plus, for the
// handful of opcodes that need one, an argument. Push carries a literal
// Value; Jump and JumpIfTrue carry an absolute index into the owning
// Script's instruction sequence.
type Instruction struct {
	Op     Opcode
	Value  value.Value // valid when Op == Push
	Target int         // valid when Op == Jump or Op == JumpIfTrue
}

// Script is a compiled, immutable unit of execution: a Trigger plus the
// flat Instruction sequence lowered from one hat-rooted block subtree.
type Script struct {
	Trigger      block.Trigger
	Instructions []Instruction
}

// ValidJumps reports whether every Jump/JumpIfTrue target in the script
// lies within [0, len(Instructions)], per §8 item 2.
func (s *Script) ValidJumps() bool {
	n := len(s.Instructions)
	for _, in := range s.Instructions {
		if in.Op == Jump || in.Op == JumpIfTrue {
			if in.Target < 0 || in.Target > n {
				return false
			}
		}
	}
	return true
}
