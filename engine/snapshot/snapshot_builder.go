package snapshot

import "image/color"

// RenderOption is a functional option for configuring a Render or Save call.
// Use the With* functions to create options.
type RenderOption func(*renderOptions)

type renderOptions struct {
	size        int
	supersample int

	background color.NRGBA
	boneColor  color.NRGBA
	jointColor color.NRGBA

	eye    [3]float32
	target [3]float32
	up     [3]float32
	margin float32

	perspective bool
	fovY        float32
}

func defaultRenderOptions() renderOptions {
	return renderOptions{
		size:        512,
		supersample: 2,
		background:  color.NRGBA{R: 18, G: 18, B: 24, A: 255},
		boneColor:   color.NRGBA{R: 226, G: 230, B: 240, A: 255},
		jointColor:  color.NRGBA{R: 255, G: 170, B: 40, A: 255},
		eye:         [3]float32{3, 2, 3},
		target:      [3]float32{0, 0, 0},
		up:          [3]float32{0, 1, 0},
		margin:      0.15,
	}
}

// WithSize sets the output image width and height in pixels. Default is 512.
//
// Parameters:
//   - size: the output edge length in pixels (minimum 1)
//
// Returns:
//   - RenderOption: option function to apply
func WithSize(size int) RenderOption {
	return func(o *renderOptions) {
		o.size = size
	}
}

// WithSupersample sets the supersampling factor: the pose is rendered at
// size*factor and filtered back down for smoother lines. Default is 2; use 1
// to rasterize at the output size directly, which keeps pixel placement
// exact for golden-image comparisons.
//
// Parameters:
//   - factor: the supersampling factor (minimum 1)
//
// Returns:
//   - RenderOption: option function to apply
func WithSupersample(factor int) RenderOption {
	return func(o *renderOptions) {
		o.supersample = factor
	}
}

// WithBackground sets the background fill color.
//
// Parameters:
//   - c: the background color
//
// Returns:
//   - RenderOption: option function to apply
func WithBackground(c color.NRGBA) RenderOption {
	return func(o *renderOptions) {
		o.background = c
	}
}

// WithBoneColor sets the color of the parent-to-joint bone lines.
//
// Parameters:
//   - c: the bone line color
//
// Returns:
//   - RenderOption: option function to apply
func WithBoneColor(c color.NRGBA) RenderOption {
	return func(o *renderOptions) {
		o.boneColor = c
	}
}

// WithJointColor sets the color of the joint markers.
//
// Parameters:
//   - c: the joint marker color
//
// Returns:
//   - RenderOption: option function to apply
func WithJointColor(c color.NRGBA) RenderOption {
	return func(o *renderOptions) {
		o.jointColor = c
	}
}

// WithCamera sets the camera position and the point it looks at. With the
// default orthographic projection only the view direction matters for
// framing; the pose is auto-framed around its bounds.
//
// Parameters:
//   - eye: the camera position in world space
//   - target: the point the camera looks at
//
// Returns:
//   - RenderOption: option function to apply
func WithCamera(eye, target [3]float32) RenderOption {
	return func(o *renderOptions) {
		o.eye = eye
		o.target = target
	}
}

// WithUp sets the camera up vector. Default is +Y.
//
// Parameters:
//   - up: the up vector
//
// Returns:
//   - RenderOption: option function to apply
func WithUp(up [3]float32) RenderOption {
	return func(o *renderOptions) {
		o.up = up
	}
}

// WithMargin sets the auto-framing margin as a fraction of the pose's
// half-extent. Only used by the orthographic projection. Default is 0.15.
//
// Parameters:
//   - margin: the margin fraction (0 frames the pose edge to edge)
//
// Returns:
//   - RenderOption: option function to apply
func WithMargin(margin float32) RenderOption {
	return func(o *renderOptions) {
		if margin < 0 {
			margin = 0
		}
		o.margin = margin
	}
}

// WithPerspective switches from the auto-framed orthographic projection to a
// perspective projection with the given vertical field of view. Framing is
// then controlled entirely by WithCamera.
//
// Parameters:
//   - fovY: the vertical field of view in radians
//
// Returns:
//   - RenderOption: option function to apply
func WithPerspective(fovY float32) RenderOption {
	return func(o *renderOptions) {
		o.perspective = true
		o.fovY = fovY
	}
}
