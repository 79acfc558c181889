package compiler

import (
	"testing"

	"github.com/stretchr/testify/require"

	"stagevm/lang/block"
	"stagevm/lang/blockspec"
	"stagevm/lang/instruction"
	"stagevm/lang/value"
)

func hatSpecForTest() *blockspec.BlockSpec {
	return &blockspec.BlockSpec{
		Opcode:      "event_whenflagclicked",
		DisplayName: "when green flag clicked",
		Shape:       blockspec.Hat,
	}
}

func repeatBlockSpecForTest() *blockspec.BlockSpec {
	return &blockspec.BlockSpec{
		Opcode:      "control_repeat",
		DisplayName: "repeat",
		FieldNames:  []string{"TIMES", "SUBSTACK"},
		FieldKinds:  []blockspec.FieldKind{blockspec.Input, blockspec.Input},
		Shape:       blockspec.Command,
	}
}

func moveStepsSpecForTest() *blockspec.BlockSpec {
	return &blockspec.BlockSpec{
		Opcode:      "motion_movesteps",
		DisplayName: "move steps",
		FieldNames:  []string{"STEPS"},
		FieldKinds:  []blockspec.FieldKind{blockspec.Input},
		Shape:       blockspec.Command,
	}
}

// TestCompileTargetSkipsUnknownHat exercises §7: a hat with no Trigger
// mapping is recorded as an ErrUnknownHat and produces no Script, while
// every other hat root still compiles.
func TestCompileTargetSkipsUnknownHat(t *testing.T) {
	unknownHat := &blockspec.BlockSpec{Opcode: "sensing_askandwait", Shape: blockspec.Hat}
	table := &block.Table{Blocks: []*block.Block{
		{Spec: unknownHat, Next: -1, Parent: -1},
		{Spec: hatSpecForTest(), Next: 2, Parent: -1},
		{
			Spec:        moveStepsSpecForTest(),
			FieldValues: []block.Input{block.LiteralInput(value.Num(10))},
			Next:        -1,
			Parent:      1,
		},
	}}

	scripts, _, errs := CompileTarget(table)
	require.Len(t, errs, 1)
	require.ErrorAs(t, errs[0], new(*ErrUnknownHat))
	require.Len(t, scripts, 1)
	require.Equal(t, block.WhenFlagClicked, scripts[0].Trigger.Kind)
}

// TestCompileTargetRecordsUnknownCommandDiagnostic exercises §7: an unknown
// non-hat opcode emits no instructions but does not abort the script.
func TestCompileTargetRecordsUnknownCommandDiagnostic(t *testing.T) {
	unknownCommand := &blockspec.BlockSpec{Opcode: "sound_play", Shape: blockspec.Command}
	table := &block.Table{Blocks: []*block.Block{
		{Spec: hatSpecForTest(), Next: 1, Parent: -1},
		{Spec: unknownCommand, Next: 2, Parent: 0},
		{
			Spec:        moveStepsSpecForTest(),
			FieldValues: []block.Input{block.LiteralInput(value.Num(5))},
			Next:        -1,
			Parent:      0,
		},
	}}

	scripts, diags, errs := CompileTarget(table)
	require.Empty(t, errs)
	require.Len(t, diags, 1)
	require.Len(t, scripts, 1)

	var moveCount int
	for _, in := range scripts[0].Instructions {
		if in.Op == instruction.MoveSteps {
			moveCount++
		}
	}
	require.Equal(t, 1, moveCount)
}

func TestCheckArityDetectsMismatch(t *testing.T) {
	bad := &block.Table{Blocks: []*block.Block{
		{Spec: moveStepsSpecForTest(), FieldValues: nil},
	}}
	require.False(t, CheckArity(bad))

	good := &block.Table{Blocks: []*block.Block{
		{Spec: moveStepsSpecForTest(), FieldValues: []block.Input{block.LiteralInput(value.Num(1))}},
	}}
	require.True(t, CheckArity(good))
}
