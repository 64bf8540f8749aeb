package transforms

import (
	"fmt"
	"image"
	"math/rand"
	"time"

	"github.com/Tutortoise/gerald-loader/frame"
	"github.com/Tutortoise/gerald-loader/models"

	"github.com/chewxy/math32"
	"gorgonia.org/tensor"
)

// CenterCrop keeps the centered Factor×Factor part of the image. Boxes are
// clipped to stay Tolerance pixels inside the crop; boxes that collapse
// are removed.
type CenterCrop struct {
	Factor    float64
	Tolerance float32
}

func NewCenterCrop(factor float64, tolerance float32) CenterCrop {
	return CenterCrop{Factor: factor, Tolerance: tolerance}
}

func (c CenterCrop) Apply(s Sample) (Sample, error) {
	w, h, err := size(s.Image)
	if err != nil {
		return s, err
	}

	cw, ch := int(float64(w)*c.Factor), int(float64(h)*c.Factor)
	xc, yc := w/2, h/2
	window := image.Rect(xc-cw/2, yc-ch/2, xc+cw/2, yc+ch/2)

	switch im := s.Image.(type) {
	case *frame.Frame:
		s.Image = im.Crop(window)
	case *tensor.Dense:
		s.Image, err = cropTensor(im, window)
		if err != nil {
			return s, err
		}
	}

	left, top := float32((w-cw)/2), float32((h-ch)/2)
	s.Targets = cropTargets(s.Targets, left, top, image.Pt(cw, ch), c.Tolerance)
	return s, nil
}

// RandomCrop cuts a window of a size chosen once at construction from a
// random position, resampling the position until at least one box
// survives.
type RandomCrop struct {
	Size      image.Point
	Tolerance float32
	// KeepAspect stretches the window along the image aspect ratio.
	KeepAspect bool

	rng *rand.Rand
}

// NewRandomCrop draws the crop size uniformly from [min, max] per axis. A
// nil rng is replaced by a time-seeded one.
func NewRandomCrop(min, max image.Point, tolerance float32, rng *rand.Rand) (*RandomCrop, error) {
	if min.X > max.X || min.Y > max.Y {
		return nil, fmt.Errorf("random crop: min size %v exceeds max size %v", min, max)
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &RandomCrop{
		Size:       image.Pt(min.X+rng.Intn(max.X-min.X+1), min.Y+rng.Intn(max.Y-min.Y+1)),
		Tolerance:  tolerance,
		KeepAspect: true,
		rng:        rng,
	}, nil
}

// NewSquareRandomCrop draws a single edge length from [min, max].
func NewSquareRandomCrop(min, max int, tolerance float32, rng *rand.Rand) (*RandomCrop, error) {
	rc, err := NewRandomCrop(image.Pt(min, min), image.Pt(max, max), tolerance, rng)
	if err != nil {
		return nil, err
	}
	rc.Size.Y = rc.Size.X
	return rc, nil
}

func (c *RandomCrop) cropSize(w, h int) image.Point {
	sz := c.Size
	if !c.KeepAspect {
		return sz
	}
	aspect := float64(w) / float64(h)
	if aspect >= 1 {
		sz.X = int(float64(sz.X) * aspect)
	} else {
		sz.Y = int(float64(sz.Y) * aspect)
	}
	return sz
}

func (c *RandomCrop) Apply(s Sample) (Sample, error) {
	f, err := asFrame(s.Image)
	if err != nil {
		return s, err
	}

	sz := c.cropSize(f.Width, f.Height)
	if sz.X > f.Width || sz.Y > f.Height {
		return s, fmt.Errorf("%w: crop %dx%d, image %dx%d", ErrCropLargerThanImage, sz.X, sz.Y, f.Width, f.Height)
	}
	if len(s.Targets) == 0 {
		return s, fmt.Errorf("%w: sample has no targets", ErrNoValidCropFound)
	}

	for attempt := 0; attempt < MaxCropAttempts; attempt++ {
		top := c.intn(f.Height - sz.Y)
		left := c.intn(f.Width - sz.X)

		targets := cropTargets(s.Targets, float32(left), float32(top), sz, c.Tolerance)
		if len(targets) == 0 {
			continue
		}
		s.Image = f.Crop(image.Rect(left, top, left+sz.X, top+sz.Y))
		s.Targets = targets
		return s, nil
	}
	return s, fmt.Errorf("%w after %d attempts", ErrNoValidCropFound, MaxCropAttempts)
}

// intn draws from [0, n), or returns 0 when the window fits exactly.
func (c *RandomCrop) intn(n int) int {
	if n <= 0 {
		return 0
	}
	return c.rng.Intn(n)
}

// cropTargets moves rows into the frame of a crop at (left, top), clamps
// their corners to [tol, size-tol] and drops rows that collapse on either
// axis.
func cropTargets(rows models.Targets, left, top float32, sz image.Point, tol float32) models.Targets {
	maxX, maxY := float32(sz.X)-tol, float32(sz.Y)-tol

	out := make(models.Targets, 0, len(rows))
	for _, src := range rows {
		moved := src
		moved[0] -= left
		moved[1] -= top
		corners := moved.Corners()

		x1 := clamp(corners[0], tol, maxX)
		y1 := clamp(corners[1], tol, maxY)
		x2 := clamp(corners[2], tol, maxX)
		y2 := clamp(corners[3], tol, maxY)
		if x1 == x2 || y1 == y2 {
			continue
		}

		row := src
		row[0] = roundHalfEven((x1 + x2) / 2)
		row[1] = roundHalfEven((y1 + y2) / 2)
		row[2] = math32.Floor(x2 - x1)
		row[3] = math32.Floor(y2 - y1)
		out = append(out, row)
	}
	return out
}

func cropTensor(t *tensor.Dense, r image.Rectangle) (*tensor.Dense, error) {
	data, err := chw(t)
	if err != nil {
		return nil, err
	}
	shape := t.Shape()
	c, h, w := shape[0], shape[1], shape[2]
	r = r.Intersect(image.Rect(0, 0, w, h))

	cw, ch := r.Dx(), r.Dy()
	out := make([]float32, c*ch*cw)
	for k := 0; k < c; k++ {
		for y := 0; y < ch; y++ {
			src := (k*h+r.Min.Y+y)*w + r.Min.X
			dst := (k*ch + y) * cw
			copy(out[dst:dst+cw], data[src:src+cw])
		}
	}
	return tensor.New(tensor.WithShape(c, ch, cw), tensor.WithBacking(out)), nil
}
