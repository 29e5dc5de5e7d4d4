// Package correlation implements the bounded-window normalized
// cross-correlation search used to decide whether a current tile matches a
// reference tile.
package correlation

import (
	"errors"
	"fmt"
	"math"

	"github.com/sirkaza/tilecodec/internal/frame"
)

// ErrTileShapeMismatch is returned when the two tiles don't share a shape.
var ErrTileShapeMismatch = errors.New("tile shape mismatch")

// Offset is a motion vector (Dx, Dy) within ±seekRange.
type Offset struct {
	Dx, Dy int
}

// Result is the outcome of BestMatch: the best Pearson correlation score
// found and the offset that produced it.
type Result struct {
	Score  float64
	Offset Offset
}

// BestMatch scans every integer offset (dx, dy) in [-seekRange, +seekRange]²
// in lexicographic order (dy outer, dx inner, both ascending), cyclically
// shifting current by (dy, dx) and computing the zero-mean normalized
// cross-correlation against reference. It returns the maximum score and the
// first offset that achieved it.
//
// If every shift produces a zero or NaN denominator (one tile is constant),
// the result is {-Inf, {0, 0}}.
func BestMatch(current, reference frame.Frame, seekRange int) (Result, error) {
	if !current.SameShape(reference) {
		return Result{}, fmt.Errorf("%w: current %v, reference %v", ErrTileShapeMismatch, current, reference)
	}

	best := Result{Score: math.Inf(-1), Offset: Offset{0, 0}}
	refMean := mean(reference)

	for dy := -seekRange; dy <= seekRange; dy++ {
		for dx := -seekRange; dx <= seekRange; dx++ {
			score := pearson(current, reference, dx, dy, refMean)
			if score > best.Score {
				best.Score = score
				best.Offset = Offset{Dx: dx, Dy: dy}
			}
		}
	}
	return best, nil
}

// mean returns the arithmetic mean of every sample in f.
func mean(f frame.Frame) float64 {
	var sum float64
	for _, v := range f.Pix {
		sum += float64(v)
	}
	n := float64(len(f.Pix))
	if n == 0 {
		return 0
	}
	return sum / n
}

// pearson computes the zero-mean normalized cross-correlation between
// current cyclically shifted by (dy, dx) and reference, whose mean is
// already known (refMean). current[y,x,c] shifted reads from
// current[(y-dy) mod H, (x-dx) mod W, c], matching the np.roll semantics of
// the original implementation.
func pearson(current, reference frame.Frame, dx, dy int, refMean float64) float64 {
	h, w, c := current.H, current.W, current.C

	curMean := mean(current) // np.roll does not change the mean

	var num, sumCurSq, sumRefSq float64
	for y := 0; y < h; y++ {
		sy := mod(y-dy, h)
		for x := 0; x < w; x++ {
			sx := mod(x-dx, w)
			for ch := 0; ch < c; ch++ {
				a := float64(current.At(sy, sx, ch)) - curMean
				b := float64(reference.At(y, x, ch)) - refMean
				num += a * b
				sumCurSq += a * a
				sumRefSq += b * b
			}
		}
	}

	denom := math.Sqrt(sumCurSq * sumRefSq)
	if denom == 0 || math.IsNaN(denom) {
		return math.Inf(-1)
	}
	score := num / denom
	if math.IsNaN(score) {
		return math.Inf(-1)
	}
	return score
}

// mod is the Euclidean (always non-negative) modulus used for the cyclic
// shift, matching Python's np.roll wrap-around.
func mod(a, n int) int {
	m := a % n
	if m < 0 {
		m += n
	}
	return m
}
