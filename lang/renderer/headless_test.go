package renderer

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHeadlessDefaultSize(t *testing.T) {
	h := NewHeadless()
	require.Equal(t, Size{Width: 480, Height: 360}, h.Size)
}

func TestHeadlessCreateAndUpdateDrawable(t *testing.T) {
	h := NewHeadless()
	skin := h.CreateSVGSkin([]byte("<svg/>"), Point{X: 1, Y: 2})
	require.Equal(t, SkinHandle(0), skin)

	id := h.CreateDrawable(skin)
	require.Equal(t, DrawableID(0), id)

	h.UpdateDrawablePosition(id, Point{X: 5, Y: 6})
	require.Equal(t, Point{X: 5, Y: 6}, h.DrawablePosition(id))

	h.UpdateDrawableRotationScale(id, 1.5, Point{X: 50, Y: 50})
}

func TestHeadlessUpdateOnUnknownDrawableIsNoop(t *testing.T) {
	h := NewHeadless()
	require.NotPanics(t, func() {
		h.UpdateDrawablePosition(DrawableID(42), Point{X: 1, Y: 1})
		h.UpdateDrawableRotationScale(DrawableID(42), 0, Point{})
	})
}

func TestHeadlessDrawIncrementsCount(t *testing.T) {
	h := NewHeadless()
	require.NoError(t, h.Draw())
	require.NoError(t, h.Draw())
	require.Equal(t, 2, h.DrawCount)
}

func TestHeadlessResize(t *testing.T) {
	h := NewHeadless()
	h.Resize(Size{Width: 100, Height: 200})
	require.Equal(t, Size{Width: 100, Height: 200}, h.Size)
}
