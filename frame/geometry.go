package frame

import "image"

// Rot90 rotates the frame counter-clockwise by k quarter turns.
func (f *Frame) Rot90(k int) *Frame {
	k = ((k % 4) + 4) % 4
	if k == 0 {
		return f.Clone()
	}

	var out *Frame
	if k == 2 {
		out = New(f.Width, f.Height)
	} else {
		out = New(f.Height, f.Width)
	}

	for y := 0; y < f.Height; y++ {
		for x := 0; x < f.Width; x++ {
			var nx, ny int
			switch k {
			case 1:
				nx, ny = y, f.Width-1-x
			case 2:
				nx, ny = f.Width-1-x, f.Height-1-y
			case 3:
				nx, ny = f.Height-1-y, x
			}
			src := f.offset(x, y)
			copy(out.Pix[out.offset(nx, ny):out.offset(nx, ny)+Channels], f.Pix[src:src+Channels])
		}
	}
	return out
}

// FlipUD mirrors the rows.
func (f *Frame) FlipUD() *Frame {
	out := New(f.Width, f.Height)
	rowLen := f.Width * Channels
	for y := 0; y < f.Height; y++ {
		src := y * rowLen
		dst := (f.Height - 1 - y) * rowLen
		copy(out.Pix[dst:dst+rowLen], f.Pix[src:src+rowLen])
	}
	return out
}

// FlipLR mirrors the columns.
func (f *Frame) FlipLR() *Frame {
	out := New(f.Width, f.Height)
	for y := 0; y < f.Height; y++ {
		for x := 0; x < f.Width; x++ {
			src := f.offset(x, y)
			dst := out.offset(f.Width-1-x, y)
			copy(out.Pix[dst:dst+Channels], f.Pix[src:src+Channels])
		}
	}
	return out
}

// Crop copies the part of the frame inside r. r is clipped to the frame.
func (f *Frame) Crop(r image.Rectangle) *Frame {
	r = r.Intersect(f.Bounds())
	out := New(r.Dx(), r.Dy())
	rowLen := r.Dx() * Channels
	for y := 0; y < r.Dy(); y++ {
		src := f.offset(r.Min.X, r.Min.Y+y)
		copy(out.Pix[y*rowLen:(y+1)*rowLen], f.Pix[src:src+rowLen])
	}
	return out
}
