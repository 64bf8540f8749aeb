package transforms

import (
	"fmt"
	"image/color"
	"math"
	"math/rand"
	"time"

	"github.com/Tutortoise/gerald-loader/frame"

	"github.com/disintegration/imaging"
)

// Range is a closed interval of multiplicative factors. The zero Range
// disables the adjustment.
type Range struct {
	Lo, Hi float64
}

func (r Range) IsZero() bool {
	return r.Lo == 0 && r.Hi == 0
}

func (r Range) sample(rng *rand.Rand) float64 {
	return r.Lo + rng.Float64()*(r.Hi-r.Lo)
}

// ColorJitter randomly changes brightness, saturation and hue. The
// adjustments run in random order on the 8-bit image; geometry and targets
// are not touched.
type ColorJitter struct {
	Brightness Range
	Saturation Range
	// Hue is the maximum shift as a fraction of the hue circle, in [0, 0.5].
	Hue float64

	rng *rand.Rand
}

func NewColorJitter(brightness, saturation Range, hue float64, rng *rand.Rand) (*ColorJitter, error) {
	if hue < 0 || hue > 0.5 {
		return nil, fmt.Errorf("color jitter: hue %.3f outside [0, 0.5]", hue)
	}
	if brightness.Lo < 0 || brightness.Lo > brightness.Hi || saturation.Lo < 0 || saturation.Lo > saturation.Hi {
		return nil, fmt.Errorf("color jitter: invalid factor range")
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &ColorJitter{Brightness: brightness, Saturation: saturation, Hue: hue, rng: rng}, nil
}

func (j *ColorJitter) Apply(s Sample) (Sample, error) {
	f, err := asFrame(s.Image)
	if err != nil {
		return s, err
	}

	var adjust []func(color.NRGBA) color.NRGBA
	if !j.Brightness.IsZero() {
		adjust = append(adjust, brightnessFunc(j.Brightness.sample(j.rng)))
	}
	if !j.Saturation.IsZero() {
		adjust = append(adjust, saturationFunc(j.Saturation.sample(j.rng)))
	}
	if j.Hue > 0 {
		adjust = append(adjust, hueFunc(-j.Hue+j.rng.Float64()*2*j.Hue))
	}

	img := f.NRGBA()
	for _, i := range j.rng.Perm(len(adjust)) {
		img = imaging.AdjustFunc(img, adjust[i])
	}
	s.Image = frame.FromImage(img)
	return s, nil
}

func brightnessFunc(factor float64) func(color.NRGBA) color.NRGBA {
	return func(c color.NRGBA) color.NRGBA {
		return color.NRGBA{
			R: clampByte(float64(c.R) * factor),
			G: clampByte(float64(c.G) * factor),
			B: clampByte(float64(c.B) * factor),
			A: c.A,
		}
	}
}

// saturationFunc blends each pixel with its luma.
func saturationFunc(factor float64) func(color.NRGBA) color.NRGBA {
	return func(c color.NRGBA) color.NRGBA {
		gray := 0.299*float64(c.R) + 0.587*float64(c.G) + 0.114*float64(c.B)
		return color.NRGBA{
			R: clampByte(gray + factor*(float64(c.R)-gray)),
			G: clampByte(gray + factor*(float64(c.G)-gray)),
			B: clampByte(gray + factor*(float64(c.B)-gray)),
			A: c.A,
		}
	}
}

// hueFunc rotates the HSV hue by shift turns.
func hueFunc(shift float64) func(color.NRGBA) color.NRGBA {
	return func(c color.NRGBA) color.NRGBA {
		h, sat, v := rgbToHSV(float64(c.R)/255, float64(c.G)/255, float64(c.B)/255)
		h = math.Mod(h+shift+1, 1)
		r, g, b := hsvToRGB(h, sat, v)
		return color.NRGBA{R: clampByte(r * 255), G: clampByte(g * 255), B: clampByte(b * 255), A: c.A}
	}
}

func rgbToHSV(r, g, b float64) (h, s, v float64) {
	max := math.Max(r, math.Max(g, b))
	min := math.Min(r, math.Min(g, b))
	v = max
	d := max - min
	if max == 0 || d == 0 {
		return 0, 0, v
	}
	s = d / max
	switch max {
	case r:
		h = (g - b) / d
		if g < b {
			h += 6
		}
	case g:
		h = (b-r)/d + 2
	default:
		h = (r-g)/d + 4
	}
	return h / 6, s, v
}

func hsvToRGB(h, s, v float64) (r, g, b float64) {
	i := math.Floor(h * 6)
	f := h*6 - i
	p := v * (1 - s)
	q := v * (1 - f*s)
	t := v * (1 - (1-f)*s)
	switch int(i) % 6 {
	case 0:
		return v, t, p
	case 1:
		return q, v, p
	case 2:
		return p, v, t
	case 3:
		return p, q, v
	case 4:
		return t, p, v
	default:
		return v, p, q
	}
}

func clampByte(v float64) uint8 {
	switch {
	case v <= 0:
		return 0
	case v >= 255:
		return 255
	}
	return uint8(v + 0.5)
}
