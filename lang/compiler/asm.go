package compiler

// This file implements a human-readable/writable form of a compiled Script,
// adapted from the teacher's own assembly format (lang/compiler/asm.go in
// the original): "mostly to support testing of the VM without going through"
// the full block-graph compile. It is not source-text reconstruction of the
// visual language (a non-goal) — it is a debugging/testing format for the
// bytecode alphabet only, the same role the teacher's asm format plays for
// its own bytecode.
//
// One instruction per line:
//
//	push 3
//	push "hello"
//	push true
//	yield
//	jump 0
//	jumpiftrue 7
//
// Push values are written as a Go-syntax-ish literal: a bare number, a
// double-quoted string, or true/false. Jump targets are written as the
// absolute instruction index they address.

import (
	"bufio"
	"fmt"
	"strconv"
	"strings"

	"stagevm/lang/block"
	"stagevm/lang/instruction"
	"stagevm/lang/value"
)

// Disassemble renders script as one mnemonic per line.
func Disassemble(script *instruction.Script) string {
	var sb strings.Builder
	for _, in := range script.Instructions {
		switch in.Op {
		case instruction.Push:
			fmt.Fprintf(&sb, "push %s\n", literalText(in.Value))
		case instruction.Jump, instruction.JumpIfTrue:
			fmt.Fprintf(&sb, "%s %d\n", in.Op, in.Target)
		default:
			fmt.Fprintf(&sb, "%s\n", in.Op)
		}
	}
	return sb.String()
}

// literalText renders v the way parseLiteral expects to read it back:
// strings quoted, bools as bare words, numbers in Go's default format.
func literalText(v value.Value) string {
	switch v.Kind() {
	case value.KindText:
		return strconv.Quote(v.ToText())
	case value.KindBool:
		if v.ToBool() {
			return "true"
		}
		return "false"
	default:
		return v.ToText()
	}
}

// Assemble parses the textual form produced by Disassemble back into a
// Script bound to trigger. Round-tripping Disassemble then Assemble
// reproduces an equivalent instruction sequence (tested as a property in
// asm_test.go).
func Assemble(trigger block.Trigger, src string) (*instruction.Script, error) {
	sc := bufio.NewScanner(strings.NewReader(src))
	var insns []instruction.Instruction
	for lineNo := 1; sc.Scan(); lineNo++ {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		fields := strings.SplitN(line, " ", 2)
		mnemonic := strings.ToLower(fields[0])
		op, ok := reverseOpcodeNames[mnemonic]
		if !ok {
			return nil, fmt.Errorf("compiler: asm line %d: unknown mnemonic %q", lineNo, fields[0])
		}

		in := instruction.Instruction{Op: op}
		switch op {
		case instruction.Push:
			if len(fields) != 2 {
				return nil, fmt.Errorf("compiler: asm line %d: push requires a value", lineNo)
			}
			v, err := parseLiteral(fields[1])
			if err != nil {
				return nil, fmt.Errorf("compiler: asm line %d: %w", lineNo, err)
			}
			in.Value = v
		case instruction.Jump, instruction.JumpIfTrue:
			if len(fields) != 2 {
				return nil, fmt.Errorf("compiler: asm line %d: %s requires a target", lineNo, mnemonic)
			}
			target, err := strconv.Atoi(strings.TrimSpace(fields[1]))
			if err != nil {
				return nil, fmt.Errorf("compiler: asm line %d: invalid jump target: %w", lineNo, err)
			}
			in.Target = target
		default:
			if len(fields) != 1 {
				return nil, fmt.Errorf("compiler: asm line %d: %s takes no argument", lineNo, mnemonic)
			}
		}
		insns = append(insns, in)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return &instruction.Script{Trigger: trigger, Instructions: insns}, nil
}

// parseLiteral parses the text following a push mnemonic into a Value: a
// double-quoted string, the bare words true/false, or a number.
func parseLiteral(text string) (value.Value, error) {
	text = strings.TrimSpace(text)
	switch {
	case strings.HasPrefix(text, `"`) && strings.HasSuffix(text, `"`) && len(text) >= 2:
		unquoted, err := strconv.Unquote(text)
		if err != nil {
			return value.Value{}, fmt.Errorf("invalid string literal %q: %w", text, err)
		}
		return value.Text(unquoted), nil
	case text == "true":
		return value.Bool(true), nil
	case text == "false":
		return value.Bool(false), nil
	default:
		n, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return value.Value{}, fmt.Errorf("invalid literal %q", text)
		}
		return value.Num(n), nil
	}
}

var reverseOpcodeNames = func() map[string]instruction.Opcode {
	m := make(map[string]instruction.Opcode)
	for _, op := range []instruction.Opcode{
		instruction.Push, instruction.Yield, instruction.Jump, instruction.JumpIfTrue, instruction.Pop,
		instruction.SaveStackFrame, instruction.RestoreStackFrame, instruction.ReadFrameValue, instruction.WriteFrameValue,
		instruction.RequestRedraw, instruction.Add, instruction.Subtract, instruction.LessThan, instruction.Equals,
		instruction.GreaterThan, instruction.GotoXY, instruction.MoveSteps,
	} {
		m[op.String()] = op
	}
	return m
}()
