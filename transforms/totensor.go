package transforms

import (
	"github.com/Tutortoise/gerald-loader/frame"

	"gorgonia.org/tensor"
)

// ToTensor reorders an H×W×C frame into a C×H×W float32 tensor. Targets
// are left untouched.
type ToTensor struct{}

func (ToTensor) Apply(s Sample) (Sample, error) {
	f, err := asFrame(s.Image)
	if err != nil {
		return s, err
	}
	s.Image = FrameToTensor(f)
	return s, nil
}

// FrameToTensor copies f into a new C×H×W tensor.
func FrameToTensor(f *frame.Frame) *tensor.Dense {
	cp := newChannelProcessor(f.Width, f.Height)
	cp.processChannels(f)
	return tensor.New(
		tensor.WithShape(frame.Channels, f.Height, f.Width),
		tensor.WithBacking(cp.buffer),
	)
}

type channelProcessor struct {
	width, height int
	buffer        []float32
	channelSize   int
}

func newChannelProcessor(width, height int) *channelProcessor {
	return &channelProcessor{
		width:       width,
		height:      height,
		channelSize: width * height,
		buffer:      make([]float32, width*height*frame.Channels),
	}
}

func (cp *channelProcessor) processChannels(f *frame.Frame) {
	for y := 0; y < cp.height; y++ {
		offset := y * cp.width
		for x := 0; x < cp.width; x++ {
			i := offset + x
			src := i * frame.Channels
			cp.buffer[i] = f.Pix[src]
			cp.buffer[cp.channelSize+i] = f.Pix[src+1]
			cp.buffer[cp.channelSize*2+i] = f.Pix[src+2]
		}
	}
}
