// Package psnr computes peak signal-to-noise ratio, a fidelity metric used
// only for reporting — it never feeds back into encode/decode decisions.
package psnr

import (
	"math"

	"github.com/sirkaza/tilecodec/internal/frame"
)

// Report computes the mean PSNR in decibels across every matching-shape pair
// of (original, reconstruction) frames looked up by name. Frames with zero
// MSE (identical) are skipped, as are shape mismatches. Returns (0, false)
// if no pair yields a usable MSE.
func Report(originals, reconstructions frame.Set) (float64, bool) {
	var sum float64
	var count int

	for _, name := range originals.Names() {
		orig, ok := originals.Get(name)
		if !ok {
			continue
		}
		recon, ok := reconstructions.Get(name)
		if !ok {
			continue
		}
		if !orig.SameShape(recon) {
			continue
		}

		mse := meanSquaredError(orig, recon)
		if mse == 0 {
			continue
		}
		sum += 10 * math.Log10((255*255)/mse)
		count++
	}

	if count == 0 {
		return 0, false
	}
	return sum / float64(count), true
}

func meanSquaredError(a, b frame.Frame) float64 {
	var sum float64
	for i := range a.Pix {
		d := float64(a.Pix[i]) - float64(b.Pix[i])
		sum += d * d
	}
	return sum / float64(len(a.Pix))
}
