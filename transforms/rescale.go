package transforms

import (
	"fmt"
	"math"

	"github.com/Tutortoise/gerald-loader/frame"

	"github.com/chewxy/math32"
	"github.com/disintegration/imaging"
	"gorgonia.org/tensor"
)

// Rescale resizes the image and scales the targets with it.
//
// With Width and Height set the output has exactly that size. With only
// ShorterEdge set the shorter image edge is scaled to it and the aspect
// ratio is kept.
type Rescale struct {
	Width, Height int
	ShorterEdge   int
}

func NewRescale(width, height int) Rescale {
	return Rescale{Width: width, Height: height}
}

func NewRescaleShorterEdge(n int) Rescale {
	return Rescale{ShorterEdge: n}
}

func (r Rescale) outputSize(w, h int) (int, int, error) {
	if r.Width > 0 && r.Height > 0 {
		return r.Width, r.Height, nil
	}
	if r.ShorterEdge <= 0 {
		return 0, 0, fmt.Errorf("rescale: no output size configured")
	}
	n := float64(r.ShorterEdge)
	if h > w {
		return r.ShorterEdge, int(n * float64(h) / float64(w)), nil
	}
	return int(n * float64(w) / float64(h)), r.ShorterEdge, nil
}

func (r Rescale) Apply(s Sample) (Sample, error) {
	w, h, err := size(s.Image)
	if err != nil {
		return s, err
	}
	newW, newH, err := r.outputSize(w, h)
	if err != nil {
		return s, err
	}

	switch im := s.Image.(type) {
	case *frame.Frame:
		resized := imaging.Resize(im.NRGBA(), newW, newH, imaging.Linear)
		s.Image = frame.FromImage(resized)
	case *tensor.Dense:
		s.Image, err = resizeNearest(im, newW, newH)
		if err != nil {
			return s, err
		}
	}

	sx := float32(newW) / float32(w)
	sy := float32(newH) / float32(h)
	targets := s.Targets.Clone()
	for i := range targets {
		row := &targets[i]
		row[0] = roundHalfEven(row[0] * sx)
		row[1] = roundHalfEven(row[1] * sy)
		row[2] = clamp(row[2]*sx, 1, float32(newW))
		row[3] = clamp(row[3]*sy, 1, float32(newH))
	}
	s.Targets = targets
	return s, nil
}

// resizeNearest scales a C×H×W tensor with nearest neighbour sampling.
func resizeNearest(t *tensor.Dense, newW, newH int) (*tensor.Dense, error) {
	data, err := chw(t)
	if err != nil {
		return nil, err
	}
	shape := t.Shape()
	c, h, w := shape[0], shape[1], shape[2]

	out := make([]float32, c*newH*newW)
	for ch := 0; ch < c; ch++ {
		for y := 0; y < newH; y++ {
			sy := y * h / newH
			for x := 0; x < newW; x++ {
				sx := x * w / newW
				out[(ch*newH+y)*newW+x] = data[(ch*h+sy)*w+sx]
			}
		}
	}
	return tensor.New(tensor.WithShape(c, newH, newW), tensor.WithBacking(out)), nil
}

// roundHalfEven rounds half-way cases to the even neighbour.
func roundHalfEven(v float32) float32 {
	return float32(math.RoundToEven(float64(v)))
}

func clamp(v, lo, hi float32) float32 {
	return math32.Min(math32.Max(v, lo), hi)
}
