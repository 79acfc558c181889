package runtime

import (
	"testing"

	"github.com/stretchr/testify/require"

	"stagevm/lang/actor"
	"stagevm/lang/block"
	"stagevm/lang/instruction"
	"stagevm/lang/renderer"
	"stagevm/lang/thread"
	"stagevm/lang/value"
)

func yieldScript(trigger block.Trigger, n int) *instruction.Script {
	insns := make([]instruction.Instruction, n)
	for i := range insns {
		insns[i] = instruction.Instruction{Op: instruction.Yield}
	}
	return &instruction.Script{Trigger: trigger, Instructions: insns}
}

// TestStepThreadsExitsOnAllIdle: the only thread yields on its first
// instruction, which leaves no Running thread after the first pass, so
// step_threads exits with active_count == 0 and the thread parked at PC 1.
func TestStepThreadsExitsOnAllIdle(t *testing.T) {
	target := &actor.Target{
		LayerOrder: 0,
		Scripts:    []*instruction.Script{yieldScript(block.Trigger{Kind: block.WhenFlagClicked}, 3)},
	}
	project := &actor.Project{Targets: []*actor.Target{target}}
	r := renderer.NewHeadless()
	rt := NewRuntime(project, r)

	rt.StartHats(block.Trigger{Kind: block.WhenFlagClicked})
	rt.StepThreads()

	th := rt.Contexts()[0].Threads[0]
	require.Equal(t, thread.Yield, th.Status)
	require.Equal(t, 1, th.PC)
}

// TestStepDrawsExactlyOnce exercises §8 S6: one Step call invokes the
// renderer exactly once regardless of how many instructions ran.
func TestStepDrawsExactlyOnce(t *testing.T) {
	targetA := &actor.Target{
		Name:       "a",
		LayerOrder: 0,
		Scripts:    []*instruction.Script{yieldScript(block.Trigger{Kind: block.WhenFlagClicked}, 1000)},
	}
	targetB := &actor.Target{
		Name:       "b",
		LayerOrder: 1,
		Scripts:    []*instruction.Script{yieldScript(block.Trigger{Kind: block.WhenFlagClicked}, 1000)},
	}
	project := &actor.Project{Targets: []*actor.Target{targetA, targetB}}
	r := renderer.NewHeadless()
	rt := NewRuntime(project, r)

	rt.StartHats(block.Trigger{Kind: block.WhenFlagClicked})
	err := rt.Step()
	require.NoError(t, err)
	require.Equal(t, 1, r.DrawCount)
}

// TestNewRuntimeOrdersContextsByLayer exercises §8 item 7: SortedContexts
// orders contexts by LayerOrder ascending.
func TestNewRuntimeOrdersContextsByLayer(t *testing.T) {
	high := &actor.Target{Name: "high", LayerOrder: 5}
	low := &actor.Target{Name: "low", LayerOrder: 1}
	project := &actor.Project{Targets: []*actor.Target{high, low}}
	r := renderer.NewHeadless()
	rt := NewRuntime(project, r)

	require.Equal(t, "low", rt.Contexts()[0].Sprite.Target.Name)
	require.Equal(t, "high", rt.Contexts()[1].Sprite.Target.Name)
}

// TestWhenKeyPressedDoesNotRestartRunningThread exercises the resolved
// restart policy (SPEC_FULL.md EXPANSION G): WhenKeyPressed is edge
// triggered and must not re-Start an already-running thread.
func TestWhenKeyPressedDoesNotRestartRunningThread(t *testing.T) {
	trig := block.Trigger{Kind: block.WhenKeyPressed, Param: "space"}
	script := yieldScript(trig, 5)
	target := &actor.Target{Scripts: []*instruction.Script{script}}
	project := &actor.Project{Targets: []*actor.Target{target}}
	r := renderer.NewHeadless()
	rt := NewRuntime(project, r)

	rt.StartHats(trig)
	th := rt.Contexts()[0].Threads[0]
	th.PC = 2 // simulate progress since Start()
	rt.StartHats(trig)

	require.Equal(t, 2, th.PC, "a second WhenKeyPressed dispatch must not reset an already-running thread")
}

// TestWhenFlagClickedRestartsRunningThread exercises the level-triggered
// half of the same policy: re-dispatch hard-resets a running thread.
func TestWhenFlagClickedRestartsRunningThread(t *testing.T) {
	trig := block.Trigger{Kind: block.WhenFlagClicked}
	script := yieldScript(trig, 5)
	target := &actor.Target{Scripts: []*instruction.Script{script}}
	project := &actor.Project{Targets: []*actor.Target{target}}
	r := renderer.NewHeadless()
	rt := NewRuntime(project, r)

	rt.StartHats(trig)
	th := rt.Contexts()[0].Threads[0]
	th.PC = 3
	rt.StartHats(trig)

	require.Equal(t, 0, th.PC, "WhenFlagClicked re-dispatch restarts an already-running thread")
}

// TestBroadcastDispatchStartsOnlyMatchingListeners exercises WhenIReceive
// routing through the broadcast dispatch table.
func TestBroadcastDispatchStartsOnlyMatchingListeners(t *testing.T) {
	wantsA := yieldScript(block.Trigger{Kind: block.WhenIReceive, Param: "a"}, 1)
	wantsB := yieldScript(block.Trigger{Kind: block.WhenIReceive, Param: "b"}, 1)
	target := &actor.Target{Scripts: []*instruction.Script{wantsA, wantsB}}
	project := &actor.Project{Targets: []*actor.Target{target}}
	r := renderer.NewHeadless()
	rt := NewRuntime(project, r)

	rt.StartHats(block.Trigger{Kind: block.WhenIReceive, Param: "a"})

	threads := rt.Contexts()[0].Threads
	require.Equal(t, thread.Running, threads[0].Status)
	require.Equal(t, thread.Done, threads[1].Status)
}

// TestMoveStepsUpdatesDrawablePosition smoke-tests that the interpreter,
// driven through the scheduler, mirrors sprite motion to the renderer.
func TestMoveStepsUpdatesDrawablePosition(t *testing.T) {
	trig := block.Trigger{Kind: block.WhenFlagClicked}
	script := &instruction.Script{
		Trigger: trig,
		Instructions: []instruction.Instruction{
			{Op: instruction.Push, Value: value.Num(10)},
			{Op: instruction.MoveSteps},
		},
	}
	target := &actor.Target{Scripts: []*instruction.Script{script}}
	project := &actor.Project{Targets: []*actor.Target{target}}
	r := renderer.NewHeadless()
	rt := NewRuntime(project, r)

	rt.StartHats(trig)
	rt.StepThreads()

	sprite := rt.Contexts()[0].Sprite
	require.InDelta(t, 10, sprite.X, 1e-9)
	require.InDelta(t, 0, sprite.Y, 1e-9)
}
