// Package batch merges per-sample images and targets into model-ready
// batches.
package batch

import (
	"github.com/Tutortoise/gerald-loader/frame"
	"github.com/Tutortoise/gerald-loader/models"
	"github.com/Tutortoise/gerald-loader/transforms"

	"github.com/pkg/errors"
	ort "github.com/yalue/onnxruntime_go"
	"gorgonia.org/tensor"
)

var (
	ErrEmptyBatch    = errors.New("batch has no samples")
	ErrShapeMismatch = errors.New("sample shapes differ within batch")
)

// Batch is N stacked C×H×W images, their combined target rows with the
// batch slot column filled in, and the dataset index of every sample.
type Batch struct {
	Images  *tensor.Dense
	Targets models.Targets
	Indices []int
}

// Len is the number of samples in the batch.
func (b *Batch) Len() int {
	return len(b.Indices)
}

// Collate stacks samples into one batch. Frames are converted with
// ToTensor first. The input samples are not modified.
func Collate(samples []transforms.Sample) (*Batch, error) {
	return collate(samples, nil)
}

func collate(samples []transforms.Sample, alloc func(n int) []float32) (*Batch, error) {
	if len(samples) == 0 {
		return nil, ErrEmptyBatch
	}

	var shape tensor.Shape
	var buffer []float32
	var sampleSize int

	b := &Batch{Indices: make([]int, len(samples))}
	for i, s := range samples {
		data, sh, err := chw(s.Image)
		if err != nil {
			return nil, errors.Wrapf(err, "sample %d", i)
		}

		if i == 0 {
			shape = sh
			sampleSize = sh.TotalSize()
			n := sampleSize * len(samples)
			if alloc != nil {
				buffer = alloc(n)
			} else {
				buffer = make([]float32, n)
			}
		} else if !sh.Eq(shape) {
			return nil, errors.Wrapf(ErrShapeMismatch, "sample %d has shape %v, expected %v", i, sh, shape)
		}
		copy(buffer[i*sampleSize:(i+1)*sampleSize], data)

		for _, row := range s.Targets {
			row[models.ColSlot] = float32(i)
			b.Targets = append(b.Targets, row)
		}
		b.Indices[i] = s.Index
	}

	b.Images = tensor.New(
		tensor.WithShape(len(samples), shape[0], shape[1], shape[2]),
		tensor.WithBacking(buffer),
	)
	return b, nil
}

// chw returns the C×H×W data of either image form.
func chw(img transforms.Image) ([]float32, tensor.Shape, error) {
	switch im := img.(type) {
	case *frame.Frame:
		t := transforms.FrameToTensor(im)
		return t.Data().([]float32), t.Shape(), nil
	case *tensor.Dense:
		data, ok := im.Data().([]float32)
		if !ok || im.Dims() != 3 || len(data) != im.Shape().TotalSize() {
			return nil, nil, errors.Wrapf(transforms.ErrUnsupportedImageType, "tensor %v of %v", im.Shape(), im.Dtype())
		}
		return data, im.Shape(), nil
	default:
		return nil, nil, errors.Wrapf(transforms.ErrUnsupportedImageType, "%T", img)
	}
}

// InputShape is the N×C×H×W shape in the form ONNX Runtime expects.
func (b *Batch) InputShape() ort.Shape {
	s := b.Images.Shape()
	dims := make([]int64, len(s))
	for i, d := range s {
		dims[i] = int64(d)
	}
	return ort.NewShape(dims...)
}

// InputTensor copies the images into a new ONNX Runtime tensor. The
// runtime environment must already be initialized; the caller destroys
// the tensor.
func (b *Batch) InputTensor() (*ort.Tensor[float32], error) {
	data := make([]float32, b.Images.Shape().TotalSize())
	copy(data, b.Images.Data().([]float32))
	t, err := ort.NewTensor(b.InputShape(), data)
	if err != nil {
		return nil, errors.Wrap(err, "create input tensor")
	}
	return t, nil
}

// CopyInto fills an existing model input tensor, which must have the
// batch's element count.
func (b *Batch) CopyInto(dst *ort.Tensor[float32]) error {
	data := dst.GetData()
	src := b.Images.Data().([]float32)
	if len(data) != len(src) {
		return errors.Wrapf(ErrShapeMismatch, "input tensor holds %d values, batch has %d", len(data), len(src))
	}
	copy(data, src)
	return nil
}
