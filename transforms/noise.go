package transforms

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/Tutortoise/gerald-loader/frame"

	"gorgonia.org/tensor"
)

// GaussianNoise adds independent normal noise to every channel value.
// Values are not clamped afterwards.
type GaussianNoise struct {
	Mean, Std float64

	rng *rand.Rand
}

func NewGaussianNoise(mean, std float64, rng *rand.Rand) *GaussianNoise {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &GaussianNoise{Mean: mean, Std: std, rng: rng}
}

func (n *GaussianNoise) Apply(s Sample) (Sample, error) {
	switch im := s.Image.(type) {
	case *frame.Frame:
		out := im.Clone()
		n.addTo(out.Pix)
		s.Image = out
	case *tensor.Dense:
		data, err := chw(im)
		if err != nil {
			return s, err
		}
		noisy := make([]float32, len(data))
		copy(noisy, data)
		n.addTo(noisy)
		s.Image = tensor.New(tensor.WithShape(im.Shape().Clone()...), tensor.WithBacking(noisy))
	default:
		return s, fmt.Errorf("%w: %T, cannot add noise", ErrUnsupportedImageType, s.Image)
	}
	return s, nil
}

func (n *GaussianNoise) addTo(values []float32) {
	for i := range values {
		values[i] += float32(n.rng.NormFloat64()*n.Std + n.Mean)
	}
}
