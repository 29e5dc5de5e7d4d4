// Package frame holds the Frame value type shared by every codec package.
package frame

import (
	"fmt"
	"image"
	"image/color"
)

// Frame is a fixed-shape (H, W, C) grid of 8-bit samples. C is 1 (grayscale)
// or 3 (RGB). Pix is row-major, channel-interleaved: the sample at (y, x,
// c) lives at Pix[(y*W+x)*C+c].
type Frame struct {
	H, W, C int
	Pix     []uint8
}

// New allocates a zeroed frame of the given shape.
func New(h, w, c int) Frame {
	return Frame{H: h, W: w, C: c, Pix: make([]uint8, h*w*c)}
}

// At returns the sample at (y, x, c).
func (f Frame) At(y, x, c int) uint8 {
	return f.Pix[(y*f.W+x)*f.C+c]
}

// Set writes the sample at (y, x, c).
func (f Frame) Set(y, x, c int, v uint8) {
	f.Pix[(y*f.W+x)*f.C+c] = v
}

// SameShape reports whether f and other share (H, W, C).
func (f Frame) SameShape(other Frame) bool {
	return f.H == other.H && f.W == other.W && f.C == other.C
}

// Clone returns a deep copy.
func (f Frame) Clone() Frame {
	cp := Frame{H: f.H, W: f.W, C: f.C, Pix: make([]uint8, len(f.Pix))}
	copy(cp.Pix, f.Pix)
	return cp
}

// Equal reports whether two frames have identical shape and pixels.
func (f Frame) Equal(other Frame) bool {
	if !f.SameShape(other) {
		return false
	}
	for i := range f.Pix {
		if f.Pix[i] != other.Pix[i] {
			return false
		}
	}
	return true
}

func (f Frame) String() string {
	return fmt.Sprintf("Frame(%dx%dx%d)", f.H, f.W, f.C)
}

// ToImage converts f to an image.Image: *image.Gray for C==1, *image.NRGBA
// (opaque) for C==3. Used at the edges where a Frame needs to pass through
// an image.Image-shaped API (filters, imagecodec).
func (f Frame) ToImage() image.Image {
	if f.C == 1 {
		img := image.NewGray(image.Rect(0, 0, f.W, f.H))
		for y := 0; y < f.H; y++ {
			for x := 0; x < f.W; x++ {
				img.SetGray(x, y, color.Gray{Y: f.At(y, x, 0)})
			}
		}
		return img
	}
	img := image.NewNRGBA(image.Rect(0, 0, f.W, f.H))
	for y := 0; y < f.H; y++ {
		for x := 0; x < f.W; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: f.At(y, x, 0), G: f.At(y, x, 1), B: f.At(y, x, 2), A: 255})
		}
	}
	return img
}

// FromImage builds a Frame from an image.Image. The image is treated as
// grayscale (C==1) only when its native color model is color.GrayModel or
// color.Gray16Model; every other source normalizes to RGB (C==3).
func FromImage(img image.Image) Frame {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()

	if isGrayModel(img) {
		f := New(h, w, 1)
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				c := color.GrayModel.Convert(img.At(b.Min.X+x, b.Min.Y+y)).(color.Gray)
				f.Set(y, x, 0, c.Y)
			}
		}
		return f
	}

	f := New(h, w, 3)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r, g, bl, _ := img.At(b.Min.X+x, b.Min.Y+y).RGBA()
			f.Set(y, x, 0, uint8(r>>8))
			f.Set(y, x, 1, uint8(g>>8))
			f.Set(y, x, 2, uint8(bl>>8))
		}
	}
	return f
}

func isGrayModel(img image.Image) bool {
	switch img.ColorModel() {
	case color.GrayModel, color.Gray16Model:
		return true
	default:
		return false
	}
}

// Named pairs a Frame with its file name, preserving the order frames were
// produced or read in.
type Named struct {
	Name  string
	Frame Frame
}

// Set is an ordered, name-keyed collection of frames. It is the in-memory
// hand-off shape between container/filter and the core codec packages —
// plumbing, not a core type.
type Set struct {
	order []string
	byKey map[string]Frame
}

// NewSet builds a Set from an ordered slice of Named frames.
func NewSet(items []Named) Set {
	s := Set{byKey: make(map[string]Frame, len(items))}
	for _, it := range items {
		if _, exists := s.byKey[it.Name]; !exists {
			s.order = append(s.order, it.Name)
		}
		s.byKey[it.Name] = it.Frame
	}
	return s
}

// Names returns file names in insertion order.
func (s Set) Names() []string {
	return append([]string(nil), s.order...)
}

// Get looks up a frame by name.
func (s Set) Get(name string) (Frame, bool) {
	f, ok := s.byKey[name]
	return f, ok
}

// Put inserts or overwrites a frame, appending name to the order if new.
func (s *Set) Put(name string, f Frame) {
	if s.byKey == nil {
		s.byKey = make(map[string]Frame)
	}
	if _, exists := s.byKey[name]; !exists {
		s.order = append(s.order, name)
	}
	s.byKey[name] = f
}

// Len returns the number of frames.
func (s Set) Len() int {
	return len(s.order)
}

// Ordered returns the frames in insertion order as Named pairs.
func (s Set) Ordered() []Named {
	out := make([]Named, 0, len(s.order))
	for _, name := range s.order {
		out = append(out, Named{Name: name, Frame: s.byKey[name]})
	}
	return out
}
