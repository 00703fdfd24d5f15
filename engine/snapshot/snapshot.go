// package snapshot renders an animator's current pose to a wireframe debug
// image: joints as markers, bones as lines from each joint to its parent,
// encoded as WebP. It exists for asset debugging and golden-image checks;
// it is not a renderer.
package snapshot

import (
	"errors"
	"fmt"
	"image"
	"io"
	"math"
	"os"

	"github.com/Carmen-Shannon/rig-go/common"
	"github.com/Carmen-Shannon/rig-go/engine/animator"
	"github.com/Carmen-Shannon/rig-go/engine/rig"

	"github.com/HugoSmits86/nativewebp"
)

var (
	// ErrNoPose is returned when the animator has no assigned clip, so there
	// is no palette to draw.
	ErrNoPose = errors.New("snapshot: animator has no posed skeleton")

	// ErrInvalidSize is returned when the configured render size or
	// supersample factor is not positive.
	ErrInvalidSize = errors.New("snapshot: render size must be positive")

	// ErrSingularBind is returned when a joint's inverse bind matrix cannot
	// be inverted to recover the joint's bind-pose position.
	ErrSingularBind = errors.New("snapshot: joint has a singular inverse bind matrix")
)

// Render draws the animator's current pose as a wireframe skeleton. Joint
// world positions are recovered from the skinning palette, viewed through a
// look-at camera, and projected orthographically into a square image that
// auto-frames the whole pose with a margin. WithPerspective switches to a
// perspective projection framed by the camera alone. The image is rendered
// at size times the supersample factor and filtered back down.
//
// Parameters:
//   - a: the animator whose pose to draw
//   - options: functional options controlling size, colors, and camera
//
// Returns:
//   - *image.NRGBA: the rendered image, size x size pixels
//   - error: error if the animator is unposed or an option is invalid
func Render(a animator.SkeletonAnimator, options ...RenderOption) (*image.NRGBA, error) {
	opts := defaultRenderOptions()
	for _, option := range options {
		option(&opts)
	}
	if opts.size < 1 || opts.supersample < 1 {
		return nil, ErrInvalidSize
	}

	skeleton := a.Skeleton()
	if skeleton == nil || len(a.JointMatrices()) == 0 {
		return nil, ErrNoPose
	}
	jointCount := skeleton.JointCount()

	// Recover each joint's world position: the skinning matrix maps the
	// bind pose to the current pose, so applying it to the joint's bind
	// position (the translation of the inverted inverse-bind matrix) yields
	// the posed position.
	world := make([][3]float32, jointCount)
	var inv [16]float32
	for j := range world {
		ibm := skeleton.InverseBindMatrix(rig.JointID(j))
		if !common.Invert4(inv[:], ibm[:]) {
			return nil, fmt.Errorf("joint %d: %w", j, ErrSingularBind)
		}
		bind := [3]float32{inv[12], inv[13], inv[14]}
		palette := a.JointMatrix(rig.JointID(j))
		world[j] = common.TransformPoint(palette[:], bind)
	}

	// View transform plus view-space bounds for framing.
	var view [16]float32
	common.LookAt(view[:],
		opts.eye[0], opts.eye[1], opts.eye[2],
		opts.target[0], opts.target[1], opts.target[2],
		opts.up[0], opts.up[1], opts.up[2])

	viewPos := make([][3]float32, jointCount)
	minX, minY := float32(math.Inf(1)), float32(math.Inf(1))
	maxX, maxY := float32(math.Inf(-1)), float32(math.Inf(-1))
	minDepth, maxDepth := float32(math.Inf(1)), float32(math.Inf(-1))
	for j := range viewPos {
		v := common.TransformPoint(view[:], world[j])
		viewPos[j] = v

		minX, maxX = min(minX, v[0]), max(maxX, v[0])
		minY, maxY = min(minY, v[1]), max(maxY, v[1])
		depth := -v[2] // the camera looks down -Z
		minDepth, maxDepth = min(minDepth, depth), max(maxDepth, depth)
	}

	var proj [16]float32
	if opts.perspective {
		near := max(minDepth*0.5, 0.05)
		far := max(maxDepth*2, near+1)
		common.Perspective(proj[:], opts.fovY, 1, near, far)
	} else {
		// Auto-frame: a symmetric square box around the pose's view-space
		// bounds, padded by the margin fraction.
		cx, cy := (minX+maxX)/2, (minY+maxY)/2
		half := max(maxX-minX, maxY-minY) / 2
		if half < 0.001 {
			half = 0.001
		}
		half *= 1 + opts.margin
		common.Orthographic(proj[:], cx-half, cx+half, cy-half, cy+half, minDepth-1, maxDepth+1)
	}

	renderSize := opts.size * opts.supersample
	px := make([][2]int, jointCount)
	visible := make([]bool, jointCount)
	for j, v := range viewPos {
		x, y, ok := projectToPixels(proj[:], v, renderSize)
		px[j] = [2]int{x, y}
		visible[j] = ok
	}

	img := image.NewNRGBA(image.Rect(0, 0, renderSize, renderSize))
	fill(img, opts.background)

	for j := 1; j < jointCount; j++ {
		parent := skeleton.Parent(rig.JointID(j))
		if parent == rig.NullJointID || !visible[j] || !visible[parent] {
			continue
		}
		drawLine(img, px[parent][0], px[parent][1], px[j][0], px[j][1], opts.boneColor)
	}
	markerHalf := 2 * opts.supersample
	for j := range px {
		if !visible[j] {
			continue
		}
		drawMarker(img, px[j][0], px[j][1], markerHalf, opts.jointColor)
	}

	if opts.supersample > 1 {
		img = downsample(img, opts.size)
	}
	return img, nil
}

// Encode writes the image to w as lossless WebP.
//
// Parameters:
//   - w: the destination writer
//   - img: the image to encode
//
// Returns:
//   - error: error if encoding fails
func Encode(w io.Writer, img *image.NRGBA) error {
	return nativewebp.Encode(w, img, nil)
}

// Save renders the animator's pose and writes it to the given path as WebP.
//
// Parameters:
//   - path: the destination file path
//   - a: the animator whose pose to draw
//   - options: functional options controlling size, colors, and camera
//
// Returns:
//   - error: error if rendering, file creation, or encoding fails
func Save(path string, a animator.SkeletonAnimator, options ...RenderOption) error {
	img, err := Render(a, options...)
	if err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := nativewebp.Encode(f, img, nil); err != nil {
		return fmt.Errorf("snapshot: webp encode: %w", err)
	}
	return nil
}

// projectToPixels maps one view-space point through the projection matrix to
// pixel coordinates, including the perspective divide. Points behind the
// camera, or landing absurdly far outside the image, are reported as not
// drawable so line spans stay bounded.
func projectToPixels(proj []float32, v [3]float32, renderSize int) (int, int, bool) {
	x := proj[0]*v[0] + proj[4]*v[1] + proj[8]*v[2] + proj[12]
	y := proj[1]*v[0] + proj[5]*v[1] + proj[9]*v[2] + proj[13]
	w := proj[3]*v[0] + proj[7]*v[1] + proj[11]*v[2] + proj[15]
	if w <= 0 {
		return 0, 0, false
	}

	ndcX, ndcY := x/w, y/w
	sx := int((ndcX*0.5 + 0.5) * float32(renderSize-1))
	// NDC +Y is up; image +Y is down.
	sy := int((1 - (ndcY*0.5 + 0.5)) * float32(renderSize-1))

	band := 2 * renderSize
	if sx < -band || sx > renderSize+band || sy < -band || sy > renderSize+band {
		return 0, 0, false
	}
	return sx, sy, true
}
