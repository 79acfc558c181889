package actor

import (
	"testing"

	"github.com/stretchr/testify/require"

	"stagevm/lang/instruction"
	"stagevm/lang/renderer"
)

func TestNewSpriteDefaults(t *testing.T) {
	target := &Target{Name: "cat"}
	s := NewSprite(target, renderer.NewHeadless())
	require.Equal(t, 90.0, s.Direction)
	require.Equal(t, 100.0, s.Size)
	require.True(t, s.Visible)
	require.Same(t, target, s.Target)
}

func TestNewSpriteCreatesDrawableWhenCostumePresent(t *testing.T) {
	r := renderer.NewHeadless()
	skin := r.CreateSVGSkin([]byte("<svg/>"), renderer.Point{})
	target := &Target{Costumes: []Costume{{Name: "costume1", Skin: skin}}}
	s := NewSprite(target, r)
	require.Equal(t, renderer.Point{}, r.DrawablePosition(s.Drawable))
}

func TestMoveToUpdatesSpriteAndRendererDrawable(t *testing.T) {
	r := renderer.NewHeadless()
	skin := r.CreateSVGSkin([]byte("<svg/>"), renderer.Point{})
	target := &Target{Costumes: []Costume{{Name: "costume1", Skin: skin}}}
	s := NewSprite(target, r)

	s.MoveTo(r, 3, 4)
	require.Equal(t, 3.0, s.X)
	require.Equal(t, 4.0, s.Y)
	require.Equal(t, renderer.Point{X: 3, Y: 4}, r.DrawablePosition(s.Drawable))
}

// TestSortedContextsOrdersByLayer exercises §8 item 7: stable ascending
// sort by LayerOrder, preserving input order among equal keys.
func TestSortedContextsOrdersByLayer(t *testing.T) {
	a := &Target{Name: "a", LayerOrder: 2}
	b := &Target{Name: "b", LayerOrder: 1}
	c := &Target{Name: "c", LayerOrder: 1}
	project := &Project{Targets: []*Target{a, b, c}}

	ctxs := project.SortedContexts(renderer.NewHeadless())
	require.Equal(t, []string{"b", "c", "a"}, []string{
		ctxs[0].Sprite.Target.Name,
		ctxs[1].Sprite.Target.Name,
		ctxs[2].Sprite.Target.Name,
	})
}

func TestNewExecutionContextOneThreadPerScript(t *testing.T) {
	target := &Target{Scripts: []*instruction.Script{{}, {}, {}}}
	ec := NewExecutionContext(target, renderer.NewHeadless())
	require.Len(t, ec.Threads, 3)
}
