// Package meanfill computes the per-channel mean color of a frame and
// produces solid-color tiles filled with it.
package meanfill

import (
	"math"

	"github.com/sirkaza/tilecodec/internal/frame"
)

// Mean returns the per-channel arithmetic mean of every pixel in f, clamped
// to [0, 255] and rounded to the nearest integer.
func Mean(f frame.Frame) []uint8 {
	sums := make([]float64, f.C)
	count := f.H * f.W
	for y := 0; y < f.H; y++ {
		for x := 0; x < f.W; x++ {
			for c := 0; c < f.C; c++ {
				sums[c] += float64(f.At(y, x, c))
			}
		}
	}
	out := make([]uint8, f.C)
	for c := range sums {
		v := sums[c] / float64(count)
		out[c] = clampRound(v)
	}
	return out
}

// Fill returns a tile of shape (h, w, len(color)) filled with color.
func Fill(h, w int, color []uint8) frame.Frame {
	t := frame.New(h, w, len(color))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			for c, v := range color {
				t.Set(y, x, c, v)
			}
		}
	}
	return t
}

func clampRound(v float64) uint8 {
	if v < 0 {
		v = 0
	}
	if v > 255 {
		v = 255
	}
	return uint8(math.Round(v))
}
