// Package runtime implements the cooperative tick scheduler (§4.4): it
// drives every Thread of every ExecutionContext one instruction at a time
// under a per-tick time budget and a redraw gate, then asks the renderer to
// draw a frame.
package runtime

import (
	"time"

	"github.com/mna/swiss"

	"stagevm/lang/actor"
	"stagevm/lang/block"
	"stagevm/lang/interp"
	"stagevm/lang/renderer"
	"stagevm/lang/thread"
)

// StepTime is the scheduler's per-tick wall-clock budget: one 30 Hz frame,
// 33⅓ milliseconds (§4.4, §5).
const StepTime = time.Second / 30

// Runtime pairs a Project's ExecutionContexts with a Renderer and drives
// them through ticks. Its only mutable scheduling state is the broadcast
// dispatch table; the per-tick redraw gate is local to StepThreads.
type Runtime struct {
	Renderer renderer.Renderer
	contexts []*actor.ExecutionContext

	// broadcasts maps a broadcast name to the threads listening for it
	// (WhenIReceive), populated once at construction from every context's
	// scripts. Backed by a swiss.Map for the same amortized-O(1) reason the
	// BlockSpec registry is (§3).
	broadcasts *swiss.Map[string, []*thread.Thread]
}

// NewRuntime builds one ExecutionContext per Target of project (sorted by
// layer order, §4.4 Construction), binds renderer, and indexes every
// WhenIReceive thread into the broadcast dispatch table.
func NewRuntime(project *actor.Project, r renderer.Renderer) *Runtime {
	rt := &Runtime{
		Renderer:   r,
		contexts:   project.SortedContexts(r),
		broadcasts: swiss.NewMap[string, []*thread.Thread](8),
	}
	for _, ctx := range rt.contexts {
		for _, th := range ctx.Threads {
			if th.Script.Trigger.Kind == block.WhenIReceive {
				name := th.Script.Trigger.Param
				listeners, _ := rt.broadcasts.Get(name)
				rt.broadcasts.Put(name, append(listeners, th))
			}
		}
	}
	return rt
}

// Contexts returns the scheduler's ExecutionContexts in layer order, for
// tests and the renderer's own iteration needs.
func (rt *Runtime) Contexts() []*actor.ExecutionContext { return rt.contexts }

// restartsRunning reports whether kind's hat dispatch restarts a thread
// that is already Running/Yield/YieldTick, per the resolved restart policy
// (SPEC_FULL.md EXPANSION G): every trigger kind except WhenKeyPressed is
// level-triggered and restarts; WhenKeyPressed is edge-triggered and must
// not pile up threads while a key is held.
func restartsRunning(kind block.TriggerKind) bool {
	return kind != block.WhenKeyPressed
}

// StartHats dispatches trigger: every thread whose Script.Trigger equals
// trigger (structural equality) is started, subject to the restart policy
// above (§4.4 Trigger dispatch).
func (rt *Runtime) StartHats(trigger block.Trigger) {
	if trigger.Kind == block.WhenIReceive {
		listeners, _ := rt.broadcasts.Get(trigger.Param)
		for _, th := range listeners {
			rt.startIfPolicy(th, trigger.Kind)
		}
		return
	}
	for _, ctx := range rt.contexts {
		for _, th := range ctx.Threads {
			if th.Script.Trigger.Equal(trigger) {
				rt.startIfPolicy(th, trigger.Kind)
			}
		}
	}
}

func (rt *Runtime) startIfPolicy(th *thread.Thread, kind block.TriggerKind) {
	if th.Status != thread.Done && !restartsRunning(kind) {
		return
	}
	th.Start()
}

// StepThreads runs the tick loop of §4.4: it rounds-robins one instruction
// per thread, in layer order, until every thread is idle, the StepTime
// budget is spent, or a script requested a redraw.
func (rt *Runtime) StepThreads() {
	start := time.Now()
	redraw := &interp.Redraw{}
	firstPass := true
	for {
		activeCount := 0
		for _, ctx := range rt.contexts {
			for _, th := range ctx.Threads {
				if th.Status == thread.Done {
					break // early-exit this context's threads, §4.4 step 2
				}
				if th.Status == thread.YieldTick && firstPass {
					th.Resume()
				}
				if th.Status == thread.Running || th.Status == thread.Yield {
					interp.Step(th, ctx.Sprite, rt.Renderer, redraw)
				}
				if th.Status == thread.Running {
					activeCount++
				}
			}
		}
		firstPass = false

		if activeCount == 0 || time.Since(start) >= StepTime || redraw.Requested {
			break
		}
	}
}

// Step runs StepThreads, then asks the renderer to draw exactly one frame
// (§4.4 Step).
func (rt *Runtime) Step() error {
	rt.StepThreads()
	return rt.Renderer.Draw()
}

// Resize forwards to the renderer (§4.4 Step: "resize((w,h)) forwards to
// the renderer").
func (rt *Runtime) Resize(size renderer.Size) {
	rt.Renderer.Resize(size)
}
