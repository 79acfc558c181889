package instruction

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestOpcodeString(t *testing.T) {
	require.Equal(t, "push", Push.String())
	require.Equal(t, "pop", Pop.String())
	require.Equal(t, "movesteps", MoveSteps.String())
}

func TestOpcodeStringOnIllegalValue(t *testing.T) {
	require.Contains(t, Opcode(255).String(), "illegal")
}

func TestHasArg(t *testing.T) {
	require.True(t, Push.HasArg())
	require.True(t, Jump.HasArg())
	require.True(t, JumpIfTrue.HasArg())
	require.False(t, Pop.HasArg())
	require.False(t, Yield.HasArg())
	require.False(t, Add.HasArg())
}

// TestValidJumpsDetectsRange exercises §8 item 2: every jump target must
// land within [0, len(Instructions)].
func TestValidJumpsDetectsRange(t *testing.T) {
	valid := &Script{Instructions: []Instruction{
		{Op: Jump, Target: 1},
		{Op: Yield},
	}}
	require.True(t, valid.ValidJumps())

	// A jump target equal to len(Instructions) addresses "one past the end",
	// which is the address control_repeat's cleanup label can legitimately
	// resolve to when it is the last thing in the script.
	onePastEnd := &Script{Instructions: []Instruction{
		{Op: JumpIfTrue, Target: 1},
	}}
	require.True(t, onePastEnd.ValidJumps())

	invalid := &Script{Instructions: []Instruction{
		{Op: Jump, Target: -1},
	}}
	require.False(t, invalid.ValidJumps())

	invalidHigh := &Script{Instructions: []Instruction{
		{Op: Jump, Target: 5},
		{Op: Yield},
	}}
	require.False(t, invalidHigh.ValidJumps())
}
