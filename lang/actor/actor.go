// Package actor implements the runtime actor model: the immutable Target
// prototype, the mutable Sprite instance, Costume assets, and the
// ExecutionContext that pairs a Sprite with its Threads (§3, §4.5).
package actor

import (
	"sort"

	"stagevm/lang/instruction"
	"stagevm/lang/renderer"
	"stagevm/lang/thread"
)

// Costume is a named image asset bound to a renderer skin handle.
type Costume struct {
	Name           string
	Skin           renderer.SkinHandle
	RotationCenter renderer.Point
}

// Target is the immutable prototype describing one actor's compiled scripts
// and costumes. Targets are built at load and live until shutdown.
type Target struct {
	Name       string
	IsStage    bool
	LayerOrder uint32
	Scripts    []*instruction.Script
	Costumes   []Costume
}

// Sprite is the mutable runtime instance of a Target: position, direction,
// size, visibility, current costume, and a back-reference to its prototype
// and renderer drawable.
type Sprite struct {
	X, Y      float64
	Direction float64 // degrees; 90 points "right", 0 points "up"
	Size      float64 // percent
	Visible   bool
	Costume   int

	Target   *Target
	Drawable renderer.DrawableID
}

// NewSprite returns a Sprite instance of target at the stage center,
// pointing right (direction 90), full size, visible, with costume 0
// selected. If target has
// at least one costume, a renderer drawable is created for it immediately
// (§4.5: the sprite always has a drawable to mirror position/rotation to).
func NewSprite(target *Target, r renderer.Renderer) *Sprite {
	s := &Sprite{
		Direction: 90,
		Size:      100,
		Visible:   true,
		Target:    target,
	}
	if len(target.Costumes) > 0 {
		s.Drawable = r.CreateDrawable(target.Costumes[0].Skin)
	}
	return s
}

// MoveTo updates x/y and mirrors the new position to the renderer's
// drawable, per §4.5.
func (s *Sprite) MoveTo(r renderer.Renderer, x, y float64) {
	s.X, s.Y = x, y
	r.UpdateDrawablePosition(s.Drawable, renderer.Point{X: x, Y: y})
}

// ExecutionContext pairs one Sprite instance with one Thread per compiled
// Script of its Target, per §3/§4.4.
type ExecutionContext struct {
	Sprite  *Sprite
	Threads []*thread.Thread
}

// NewExecutionContext allocates a fresh Thread for every Script of target
// and wraps them with a new Sprite instance bound to r.
func NewExecutionContext(target *Target, r renderer.Renderer) *ExecutionContext {
	ec := &ExecutionContext{Sprite: NewSprite(target, r)}
	for _, sc := range target.Scripts {
		ec.Threads = append(ec.Threads, thread.New(sc))
	}
	return ec
}

// Project is the ordered list of Targets that make up one program. The
// stage (IsStage == true) is always present.
type Project struct {
	Targets []*Target
}

// SortedContexts builds one ExecutionContext per Target and returns them
// sorted by Target.LayerOrder ascending, stable (equal-order contexts
// retain Project.Targets order), per §4.4 and §8 item 7.
func (p *Project) SortedContexts(r renderer.Renderer) []*ExecutionContext {
	ctxs := make([]*ExecutionContext, len(p.Targets))
	for i, t := range p.Targets {
		ctxs[i] = NewExecutionContext(t, r)
	}
	sort.SliceStable(ctxs, func(i, j int) bool {
		return ctxs[i].Sprite.Target.LayerOrder < ctxs[j].Sprite.Target.LayerOrder
	})
	return ctxs
}
