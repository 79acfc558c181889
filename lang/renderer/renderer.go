// Package renderer defines the stable façade the runtime depends on (§6):
// skin creation from decoded costume assets, drawable lifecycle, position
// and rotation/scale updates, stage resize, and frame presentation.
//
// Decoding SVG/PNG/JPEG bytes and the GPU pipeline itself are external
// collaborators per §1 — this package only defines the seam and a headless
// reference implementation that exercises the contract without a window
// system, used by the scheduler's tests and by the CLI.
package renderer

// Point is a stage-centered coordinate pair, also reused for non-uniform
// scale factors (sx, sy).
type Point struct {
	X, Y float64
}

// Size is a pixel dimension, used for the logical stage size (§6: fixed at
// 480x360) and for window resize requests.
type Size struct {
	Width, Height int
}

// SkinHandle is an opaque reference to a decoded costume image, created by
// CreateSVGSkin and consumed by CreateDrawable.
type SkinHandle int

// DrawableID is an opaque renderer reference to one composited actor.
type DrawableID int

// Renderer is the façade the runtime calls into once per tick plus once per
// drawable lifecycle event. All calls are expected to be serialized by the
// single-threaded scheduler (§5); an implementation need not be
// concurrency-safe.
type Renderer interface {
	// CreateSVGSkin registers a decoded (externally) costume image and
	// returns an opaque skin handle. rotationCenter is in the image's own
	// coordinate space.
	CreateSVGSkin(imageBytes []byte, rotationCenter Point) SkinHandle

	// CreateDrawable allocates a new drawable bound to skin and returns its
	// id.
	CreateDrawable(skin SkinHandle) DrawableID

	// UpdateDrawablePosition moves a drawable to a stage-centered position.
	UpdateDrawablePosition(id DrawableID, pos Point)

	// UpdateDrawableRotationScale sets a drawable's rotation (radians) and
	// non-uniform scale.
	UpdateDrawableRotationScale(id DrawableID, rotationRadians float64, scale Point)

	// Resize changes the window/presentation size; it does not change the
	// logical stage size (always 480x360).
	Resize(size Size)

	// Draw presents one composited frame of the logical stage to the
	// screen.
	Draw() error
}
