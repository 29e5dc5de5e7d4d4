// Package filter implements the per-pixel filter registry named in
// spec.md §6. These are pure pixel maps with no systemic structure — per
// the spec's own framing they are "library fodder, not the hard
// engineering" — so negative, blur and sharp use their
// disintegration/imaging primitive directly; the other variants
// (binarization, brillo, sepia, grey, averaging, edges, embossing) hand-roll
// the pixel map, convolution or matrix transform, grounded on the original
// filter scripts.
package filter

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/disintegration/imaging"

	"github.com/sirkaza/tilecodec/internal/frame"
)

// ErrIncompatibleFilter is a recoverable error: the caller (CLI) should warn
// and skip the offending filter rather than abort the run.
var ErrIncompatibleFilter = errors.New("incompatible filter")

// Kind names one of the ten registered filter variants.
type Kind string

const (
	Binarization Kind = "binarization"
	Brillo       Kind = "brillo"
	Negative     Kind = "negative"
	Sepia        Kind = "sepia"
	Grey         Kind = "grey"
	Averaging    Kind = "averaging"
	Blur         Kind = "blur"
	Edges        Kind = "edges"
	Embossing    Kind = "embossing"
	Sharp        Kind = "sharp"
)

// Filter is one parsed directive, e.g. "brillo=10,1.5" or "sepia".
type Filter struct {
	Kind       Kind
	Threshold  float64 // binarization
	Brightness float64 // brillo
	Contrast   float64 // brillo
	KernelSize int     // averaging, blur
}

// Parse parses a single "name[=value]" directive, per the CLI's
// semicolon-separated --filter syntax.
func Parse(directive string) (Filter, error) {
	name, rawValue, hasValue := strings.Cut(directive, "=")
	name = strings.TrimSpace(name)
	kind := Kind(name)

	switch kind {
	case Binarization:
		threshold := 127.0
		if hasValue {
			v, err := strconv.ParseFloat(rawValue, 64)
			if err != nil {
				return Filter{}, fmt.Errorf("binarization: %w", err)
			}
			threshold = v
		}
		return Filter{Kind: kind, Threshold: threshold}, nil

	case Brillo:
		brightness, contrast := 0.0, 1.0
		if hasValue {
			parts := strings.Split(rawValue, ",")
			if len(parts) != 2 {
				return Filter{}, fmt.Errorf("brillo: expected brightness,contrast, got %q", rawValue)
			}
			b, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
			if err != nil {
				return Filter{}, fmt.Errorf("brillo brightness: %w", err)
			}
			c, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
			if err != nil {
				return Filter{}, fmt.Errorf("brillo contrast: %w", err)
			}
			brightness, contrast = b, c
		}
		return Filter{Kind: kind, Brightness: brightness, Contrast: contrast}, nil

	case Negative, Sepia, Grey, Edges, Embossing, Sharp:
		return Filter{Kind: kind}, nil

	case Averaging, Blur:
		size := 3
		if hasValue {
			v, err := strconv.Atoi(rawValue)
			if err != nil {
				return Filter{}, fmt.Errorf("%s: %w", kind, err)
			}
			size = v
		}
		if size < 1 || size%2 == 0 {
			return Filter{}, fmt.Errorf("%s: kernel size must be a positive odd integer, got %d", kind, size)
		}
		return Filter{Kind: kind, KernelSize: size}, nil

	default:
		return Filter{}, fmt.Errorf("unknown filter %q", name)
	}
}

// CheckCompatible is a pure function over the filters already applied this
// run plus the session's channel count: sepia and grey are mutually
// exclusive with each other, and both are incompatible with an
// already-grayscale session.
func CheckCompatible(history []Kind, next Kind, isGrayscale bool) error {
	if next != Sepia && next != Grey {
		return nil
	}
	if isGrayscale {
		return fmt.Errorf("%w: %s cannot be applied to a grayscale session", ErrIncompatibleFilter, next)
	}
	for _, applied := range history {
		if applied == Sepia || applied == Grey {
			return fmt.Errorf("%w: %s conflicts with already-applied %s", ErrIncompatibleFilter, next, applied)
		}
	}
	return nil
}

// Apply runs f against frame in, returning the transformed frame.
func Apply(f Filter, in frame.Frame) (frame.Frame, error) {
	switch f.Kind {
	case Binarization:
		return binarization(in, f.Threshold), nil
	case Brillo:
		return brillo(in, f.Brightness, f.Contrast), nil
	case Negative:
		return frame.FromImage(imaging.Invert(in.ToImage())), nil
	case Sepia:
		return sepia(in), nil
	case Grey:
		return toLuminance(in), nil
	case Averaging:
		return boxFilter(in, f.KernelSize), nil
	case Blur:
		return frame.FromImage(imaging.Blur(in.ToImage(), float64(f.KernelSize)/2)), nil
	case Edges:
		return edges(in), nil
	case Embossing:
		return convolve3x3(in, embossKernel, 0), nil
	case Sharp:
		return frame.FromImage(imaging.Sharpen(in.ToImage(), 1.0)), nil
	default:
		return frame.Frame{}, fmt.Errorf("unknown filter %q", f.Kind)
	}
}

func binarization(in frame.Frame, threshold float64) frame.Frame {
	out := frame.New(in.H, in.W, in.C)
	for i, v := range in.Pix {
		if float64(v) > threshold {
			out.Pix[i] = 255
		} else {
			out.Pix[i] = 0
		}
	}
	return out
}

func brillo(in frame.Frame, brightness, contrast float64) frame.Frame {
	out := frame.New(in.H, in.W, in.C)
	for i, v := range in.Pix {
		withContrast := contrast*(float64(v)-128) + 128
		out.Pix[i] = clamp(withContrast + brightness)
	}
	return out
}

// sepia applies the classic sepia matrix transform; requires RGB input.
var sepiaMatrix = [3][3]float64{
	{0.393, 0.769, 0.189},
	{0.349, 0.686, 0.168},
	{0.272, 0.534, 0.131},
}

func sepia(in frame.Frame) frame.Frame {
	out := frame.New(in.H, in.W, in.C)
	for y := 0; y < in.H; y++ {
		for x := 0; x < in.W; x++ {
			r := float64(in.At(y, x, 0))
			g := float64(in.At(y, x, 1))
			b := float64(in.At(y, x, 2))
			for c := 0; c < 3; c++ {
				v := sepiaMatrix[c][0]*r + sepiaMatrix[c][1]*g + sepiaMatrix[c][2]*b
				out.Set(y, x, c, clamp(v))
			}
		}
	}
	return out
}

// boxFilter averages every channel over a size×size window, per the
// original averaging.py/blur.py scripts. Border pixels, outside the range
// the kernel fully covers, are copied through unchanged rather than
// zeroed (a deliberate fix of the original's zero-border artifact — see
// DESIGN.md).
func boxFilter(in frame.Frame, size int) frame.Frame {
	offset := size / 2
	out := in.Clone()
	for y := offset; y < in.H-offset; y++ {
		for x := offset; x < in.W-offset; x++ {
			for c := 0; c < in.C; c++ {
				var sum float64
				for ky := -offset; ky <= offset; ky++ {
					for kx := -offset; kx <= offset; kx++ {
						sum += float64(in.At(y+ky, x+kx, c))
					}
				}
				out.Set(y, x, c, clamp(sum/float64(size*size)))
			}
		}
	}
	return out
}

var sobelX = [3][3]float64{{-1, 0, 1}, {-2, 0, 2}, {-1, 0, 1}}
var sobelY = [3][3]float64{{-1, -2, -1}, {0, 0, 0}, {1, 2, 1}}

// edges computes the Sobel gradient magnitude on the luminance of in and
// normalizes it to [0, 255], producing a single-channel frame.
func edges(in frame.Frame) frame.Frame {
	gray := toLuminance(in)
	mags := make([]float64, gray.H*gray.W)
	var maxMag float64

	for y := 1; y < gray.H-1; y++ {
		for x := 1; x < gray.W-1; x++ {
			var gx, gy float64
			for ky := -1; ky <= 1; ky++ {
				for kx := -1; kx <= 1; kx++ {
					v := float64(gray.At(y+ky, x+kx, 0))
					gx += v * sobelX[ky+1][kx+1]
					gy += v * sobelY[ky+1][kx+1]
				}
			}
			mag := math.Sqrt(gx*gx + gy*gy)
			mags[y*gray.W+x] = mag
			if mag > maxMag {
				maxMag = mag
			}
		}
	}

	out := frame.New(gray.H, gray.W, 1)
	if maxMag == 0 {
		return out
	}
	for y := 0; y < gray.H; y++ {
		for x := 0; x < gray.W; x++ {
			out.Set(y, x, 0, clamp(mags[y*gray.W+x]*255/maxMag))
		}
	}
	return out
}

var embossKernel = [3][3]float64{{0, -1, -1}, {1, 0, -1}, {1, 1, 0}}

// convolve3x3 applies kernel to every channel independently, leaving the
// one-pixel border unchanged (matching the original scripts' loop bounds).
func convolve3x3(in frame.Frame, kernel [3][3]float64, bias float64) frame.Frame {
	out := in.Clone()
	for y := 1; y < in.H-1; y++ {
		for x := 1; x < in.W-1; x++ {
			for c := 0; c < in.C; c++ {
				var sum float64
				for ky := -1; ky <= 1; ky++ {
					for kx := -1; kx <= 1; kx++ {
						sum += float64(in.At(y+ky, x+kx, c)) * kernel[ky+1][kx+1]
					}
				}
				out.Set(y, x, c, clamp(sum+bias))
			}
		}
	}
	return out
}

// toLuminance converts in to a single-channel frame using ITU-R BT.601
// weights, a no-op if in is already grayscale.
func toLuminance(in frame.Frame) frame.Frame {
	if in.C == 1 {
		return in
	}
	out := frame.New(in.H, in.W, 1)
	for y := 0; y < in.H; y++ {
		for x := 0; x < in.W; x++ {
			r := float64(in.At(y, x, 0))
			g := float64(in.At(y, x, 1))
			b := float64(in.At(y, x, 2))
			out.Set(y, x, 0, clamp(0.299*r+0.587*g+0.114*b))
		}
	}
	return out
}

func clamp(v float64) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(math.Round(v))
}
