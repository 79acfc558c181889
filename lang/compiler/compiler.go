// Package compiler lowers a Target's block graph, rooted at a hat, into a
// Script of flat bytecode (§4.1). It implements the backpatching scheme
// control_repeat needs and collects non-fatal diagnostics for unknown
// opcodes.
package compiler

import (
	"fmt"

	"stagevm/lang/block"
	"stagevm/lang/instruction"
	"stagevm/lang/value"
)

// Diagnostic is a non-fatal compile-time observation (§7: unknown opcode is
// a warning, the block compiles to no instructions).
type Diagnostic struct {
	BlockIndex int
	Message    string
}

// ErrUnknownHat is returned when a hat root uses an opcode this compiler
// has no Trigger mapping for; unlike an unknown non-hat opcode, this is
// fatal for that script (§4.1, §7).
type ErrUnknownHat struct {
	Opcode string
}

func (e *ErrUnknownHat) Error() string {
	return fmt.Sprintf("compiler: unknown hat opcode %q", e.Opcode)
}

// compiler holds the mutable state for lowering one hat-rooted script.
type compiler struct {
	table       *block.Table
	insns       []instruction.Instruction
	diagnostics []Diagnostic
}

// CompileTarget compiles every hat-rooted script in table, returning one
// Script per hat root (in table order) plus the diagnostics collected
// across all of them. A hat whose opcode has no Trigger mapping is skipped
// (with an ErrUnknownHat recorded) rather than aborting the whole target.
func CompileTarget(table *block.Table) ([]*instruction.Script, []Diagnostic, []error) {
	var scripts []*instruction.Script
	var diags []Diagnostic
	var errs []error

	for _, root := range table.Roots() {
		hat := table.Blocks[root]
		trig, ok := hatTrigger(hat)
		if !ok {
			errs = append(errs, &ErrUnknownHat{Opcode: hat.Spec.Opcode})
			continue
		}

		c := &compiler{table: table}
		c.lowerSubstackFrom(hat.Next)
		scripts = append(scripts, &instruction.Script{Trigger: trig, Instructions: c.insns})
		diags = append(diags, c.diagnostics...)
	}
	return scripts, diags, errs
}

// hatTrigger extracts the Trigger a hat block carries, reading the hat's
// own field values (SPEC_FULL.md EXPANSION G: the teacher's original
// behavior of never evaluating the hat block itself is preserved only for
// instruction lowering, which starts at hat.Next; trigger parameters are
// read here, directly from the hat).
func hatTrigger(hat *block.Block) (block.Trigger, bool) {
	switch hat.Spec.Opcode {
	case "event_whenflagclicked":
		return block.Trigger{Kind: block.WhenFlagClicked}, true
	case "event_whenthisspriteclicked":
		return block.Trigger{Kind: block.WhenSpriteClicked}, true
	case "control_start_as_clone":
		return block.Trigger{Kind: block.WhenIStartAsAClone}, true
	case "event_whenkeypressed":
		return block.Trigger{Kind: block.WhenKeyPressed, Param: fieldLiteralText(hat, "KEY_OPTION")}, true
	case "event_whenbackdropswitchesto":
		return block.Trigger{Kind: block.WhenBackdropSwitches, Param: fieldLiteralText(hat, "BACKDROP")}, true
	case "event_whenbroadcastreceived":
		return block.Trigger{Kind: block.WhenIReceive, Param: fieldLiteralText(hat, "BROADCAST_OPTION")}, true
	default:
		return block.Trigger{}, false
	}
}

// fieldLiteralText returns the text of a literal field value, or "" if the
// field is absent or not a literal (schema errors in hat parameters are
// caught by the loader, §7; the compiler never rejects a successfully
// loaded program).
func fieldLiteralText(b *block.Block, name string) string {
	idx := b.Spec.FieldIndex(name)
	if idx < 0 || idx >= len(b.FieldValues) {
		return ""
	}
	in := b.FieldValues[idx]
	if in.Kind != block.InputLiteral {
		return ""
	}
	return in.Literal.ToText()
}

func (c *compiler) emit(in instruction.Instruction) int {
	c.insns = append(c.insns, in)
	return len(c.insns) - 1
}

func (c *compiler) emitOp(op instruction.Opcode) int {
	return c.emit(instruction.Instruction{Op: op})
}

// backpatch overwrites the Target of the jump instruction at index pc to
// addr, per §4.1/§9 ("forward jumps... emitted with a placeholder target
// and the placeholder's instruction position is retained; after the loop
// body is emitted the target slot is overwritten").
func (c *compiler) backpatch(pc, addr int) {
	c.insns[pc].Target = addr
}

// here returns the address the next emitted instruction will land at.
func (c *compiler) here() int { return len(c.insns) }

// lowerSubstackFrom walks the linked list via Next starting at start,
// lowering each block as a command (§4.1: "Substack input → walk the linked
// list via next from the given start block, lowering each as a command").
// start == -1 lowers nothing.
func (c *compiler) lowerSubstackFrom(start int) {
	for i := start; i != -1; {
		b := c.table.Blocks[i]
		c.lowerCommand(i, b)
		i = b.Next
	}
}

// lowerCommand lowers one command block. Unknown opcodes record a
// diagnostic and emit nothing (§4.1, §7).
func (c *compiler) lowerCommand(index int, b *block.Block) {
	switch b.Spec.Opcode {
	case "motion_movesteps":
		c.lowerInput(b, "STEPS")
		c.emitOp(instruction.MoveSteps)

	case "motion_gotoxy":
		c.lowerInput(b, "X")
		c.lowerInput(b, "Y")
		c.emitOp(instruction.GotoXY)

	case "control_repeat":
		c.lowerRepeat(b)

	default:
		c.diagnostics = append(c.diagnostics, Diagnostic{
			BlockIndex: index,
			Message:    fmt.Sprintf("unknown opcode %q: no instructions emitted", b.Spec.Opcode),
		})
	}
}

// lowerRepeat implements the control_repeat lowering of §4.1:
//
//  1. SaveStackFrame (frame_value = 0)
//  2. lower TIMES -> WriteFrameValue; Pop
//  3. L_iter: ReadFrameValue; Push(0.5); LessThan; JumpIfTrue(L_cleanup) [backpatched]
//  4. ReadFrameValue; Push(1.0); Subtract; WriteFrameValue; Pop
//  5. lower SUBSTACK body
//  6. Jump(L_iter)
//  7. L_cleanup: RestoreStackFrame
func (c *compiler) lowerRepeat(b *block.Block) {
	c.emitOp(instruction.SaveStackFrame)
	c.lowerInput(b, "TIMES")
	c.emitOp(instruction.WriteFrameValue)
	// WriteFrameValue does not consume the TIMES value the compiler pushed;
	// the interpreter leaves it on the stack, so pop it here to keep the
	// script's net stack effect at zero across the block (§8 item 3).
	c.emitOp(instruction.Pop)

	lIter := c.here()
	c.emitOp(instruction.ReadFrameValue)
	c.emit(instruction.Instruction{Op: instruction.Push, Value: value.Num(0.5)})
	c.emitOp(instruction.LessThan)
	jumpToCleanup := c.emit(instruction.Instruction{Op: instruction.JumpIfTrue})

	c.emitOp(instruction.ReadFrameValue)
	c.emit(instruction.Instruction{Op: instruction.Push, Value: value.Num(1.0)})
	c.emitOp(instruction.Subtract)
	c.emitOp(instruction.WriteFrameValue)
	c.emitOp(instruction.Pop)

	c.lowerInput(b, "SUBSTACK")

	c.emit(instruction.Instruction{Op: instruction.Jump, Target: lIter})

	lCleanup := c.here()
	c.backpatch(jumpToCleanup, lCleanup)
	c.emitOp(instruction.RestoreStackFrame)
}

// lowerInput lowers the input held in b's named field: a Literal becomes
// Push(value); a Reporter recurses and must leave exactly one value on the
// stack; a Substack walks its linked list as commands (§4.1).
func (c *compiler) lowerInput(b *block.Block, name string) {
	idx := b.Spec.FieldIndex(name)
	if idx < 0 || idx >= len(b.FieldValues) {
		return
	}
	c.lowerInputSlot(b.FieldValues[idx])
}

func (c *compiler) lowerInputSlot(in block.Input) {
	if !in.HasValue {
		// A disconnected optional input (no shadow, no reporter attached)
		// still needs a value on the stack for a reporter slot; default to 0,
		// per the "value coercion never fails" stance of §7.
		c.emit(instruction.Instruction{Op: instruction.Push, Value: value.Num(0)})
		return
	}
	switch in.Kind {
	case block.InputLiteral:
		c.emit(instruction.Instruction{Op: instruction.Push, Value: in.Literal})
	case block.InputReporter:
		c.lowerReporter(in.Reporter)
	case block.InputSubstack:
		c.lowerSubstackFrom(in.Substack)
	}
}

// lowerReporter lowers a reporter block, which must leave exactly one
// value on the operand stack (§4.1).
func (c *compiler) lowerReporter(b *block.Block) {
	switch b.Spec.Opcode {
	case "math_number":
		// math_number lowers its single field (a literal) as Push(num), §4.1.
		c.lowerInput(b, "NUM")
	default:
		c.diagnostics = append(c.diagnostics, Diagnostic{
			Message: fmt.Sprintf("unknown reporter opcode %q: no value pushed", b.Spec.Opcode),
		})
	}
}

// CheckArity reports whether every block in table satisfies the compiler
// arity invariant of §8 item 1: field_values.length == spec.field_names.length.
func CheckArity(table *block.Table) bool {
	for _, b := range table.Blocks {
		if len(b.FieldValues) != len(b.Spec.FieldNames) {
			return false
		}
	}
	return true
}
