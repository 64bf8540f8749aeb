package transforms

import "fmt"

type FlipKind string

const (
	FlipUpDown    FlipKind = "ud"
	FlipLeftRight FlipKind = "lr"
)

// Flip mirrors the image vertically ("ud") or horizontally ("lr").
// Box sizes are unchanged.
type Flip struct {
	Kind FlipKind
}

func NewFlip(kind string) (Flip, error) {
	k := FlipKind(kind)
	if k != FlipUpDown && k != FlipLeftRight {
		return Flip{}, fmt.Errorf("%w: got %q", ErrInvalidFlipKind, kind)
	}
	return Flip{Kind: k}, nil
}

func (fl Flip) Apply(s Sample) (Sample, error) {
	if fl.Kind != FlipUpDown && fl.Kind != FlipLeftRight {
		return s, fmt.Errorf("%w: got %q", ErrInvalidFlipKind, fl.Kind)
	}
	f, err := asFrame(s.Image)
	if err != nil {
		return s, err
	}

	w, h := float32(f.Width), float32(f.Height)
	targets := s.Targets.Clone()
	if fl.Kind == FlipUpDown {
		s.Image = f.FlipUD()
		for i := range targets {
			targets[i][1] = h - targets[i][1]
		}
	} else {
		s.Image = f.FlipLR()
		for i := range targets {
			targets[i][0] = w - targets[i][0]
		}
	}
	s.Targets = targets
	return s, nil
}
