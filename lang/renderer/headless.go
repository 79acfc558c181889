package renderer

// drawableState is the headless record of one drawable's last-known
// renderer-visible state.
type drawableState struct {
	skin     SkinHandle
	pos      Point
	rotation float64
	scale    Point
}

// skinState records enough of a registered skin to exercise the contract
// without decoding image bytes (decoding is an external collaborator, §1).
type skinState struct {
	byteLen        int
	rotationCenter Point
}

// Headless is a Renderer that records every call instead of presenting
// anything, for use in scheduler tests and by the CLI, which always renders
// through it.
type Headless struct {
	Size      Size
	DrawCount int
	skins     []skinState
	drawables []drawableState
}

// NewHeadless returns a Headless renderer with the logical stage's default
// size (§6: 480x360).
func NewHeadless() *Headless {
	return &Headless{Size: Size{Width: 480, Height: 360}}
}

func (h *Headless) CreateSVGSkin(imageBytes []byte, rotationCenter Point) SkinHandle {
	h.skins = append(h.skins, skinState{byteLen: len(imageBytes), rotationCenter: rotationCenter})
	return SkinHandle(len(h.skins) - 1)
}

func (h *Headless) CreateDrawable(skin SkinHandle) DrawableID {
	h.drawables = append(h.drawables, drawableState{skin: skin, scale: Point{X: 100, Y: 100}})
	return DrawableID(len(h.drawables) - 1)
}

func (h *Headless) UpdateDrawablePosition(id DrawableID, pos Point) {
	if int(id) < 0 || int(id) >= len(h.drawables) {
		return
	}
	h.drawables[id].pos = pos
}

func (h *Headless) UpdateDrawableRotationScale(id DrawableID, rotationRadians float64, scale Point) {
	if int(id) < 0 || int(id) >= len(h.drawables) {
		return
	}
	h.drawables[id].rotation = rotationRadians
	h.drawables[id].scale = scale
}

func (h *Headless) Resize(size Size) { h.Size = size }

func (h *Headless) Draw() error {
	h.DrawCount++
	return nil
}

// DrawablePosition returns the last position recorded for id, for test
// assertions.
func (h *Headless) DrawablePosition(id DrawableID) Point {
	return h.drawables[id].pos
}
