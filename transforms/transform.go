// Package transforms implements image augmentations that keep the target
// rows of a sample consistent with the transformed image.
package transforms

import (
	"errors"
	"fmt"

	"github.com/Tutortoise/gerald-loader/frame"
	"github.com/Tutortoise/gerald-loader/models"

	"gorgonia.org/tensor"
)

var (
	ErrInvalidAngle         = errors.New("angle has to be 0, 90, 180 or 270")
	ErrInvalidFlipKind      = errors.New("flip has to be of kind ud (up-down) or lr (left-right)")
	ErrUnsupportedImageType = errors.New("unsupported image type")
	ErrCropLargerThanImage  = errors.New("crop size exceeds image size")
	ErrNoValidCropFound     = errors.New("no crop keeps any target")
)

// Image is either a *frame.Frame (H×W×C) or a *tensor.Dense (C×H×W).
type Image interface {
	Shape() tensor.Shape
}

// Sample is an image together with its target rows and dataset index.
type Sample struct {
	Image   Image
	Targets models.Targets
	Index   int
}

type Transform interface {
	Apply(s Sample) (Sample, error)
}

// Func adapts a plain function to Transform.
type Func func(s Sample) (Sample, error)

func (f Func) Apply(s Sample) (Sample, error) {
	return f(s)
}

// Compose applies its transforms in order and stops at the first error.
type Compose []Transform

func (c Compose) Apply(s Sample) (Sample, error) {
	var err error
	for i, t := range c {
		s, err = t.Apply(s)
		if err != nil {
			return s, fmt.Errorf("transform %d (%T): %w", i, t, err)
		}
	}
	return s, nil
}

// size returns width and height of either image form.
func size(img Image) (w, h int, err error) {
	switch im := img.(type) {
	case *frame.Frame:
		return im.Width, im.Height, nil
	case *tensor.Dense:
		if _, err := chw(im); err != nil {
			return 0, 0, err
		}
		shape := im.Shape()
		return shape[2], shape[1], nil
	default:
		return 0, 0, fmt.Errorf("%w: %T", ErrUnsupportedImageType, img)
	}
}

func asFrame(img Image) (*frame.Frame, error) {
	f, ok := img.(*frame.Frame)
	if !ok {
		return nil, fmt.Errorf("%w: %T, expected *frame.Frame", ErrUnsupportedImageType, img)
	}
	return f, nil
}

// chw returns the float32 backing of a 3-dimensional tensor.
func chw(t *tensor.Dense) ([]float32, error) {
	if t.Dims() != 3 {
		return nil, fmt.Errorf("%w: tensor of shape %v, expected C×H×W", ErrUnsupportedImageType, t.Shape())
	}
	data, ok := t.Data().([]float32)
	if !ok {
		return nil, fmt.Errorf("%w: tensor of type %v, expected float32", ErrUnsupportedImageType, t.Dtype())
	}
	return data, nil
}
