// Package tilegrid partitions a frame into a fixed rows×cols grid of tiles
// and reassembles tiles back into a frame. It is pure geometry: no
// correlation, no fill, no metadata.
package tilegrid

import (
	"errors"
	"fmt"

	"github.com/sirkaza/tilecodec/internal/frame"
)

// ErrInvalidGrid is returned when the grid dimensions don't fit the frame.
var ErrInvalidGrid = errors.New("invalid grid")

// ErrTileShapeMismatch is returned when tiles fed to Assemble don't match
// the shape the grid expects.
var ErrTileShapeMismatch = errors.New("tile shape mismatch")

// ID is a grid coordinate (row, col), 0 ≤ Row < Ty, 0 ≤ Col < Tx.
type ID struct {
	Row, Col int
}

// Grid describes the tiling of one frame shape into Ty rows by Tx columns.
// TileH and TileW are the interior tile dimensions; any remainder pixels
// along the bottom/right margins are excluded from tiling and left
// untouched by Assemble (see the margin policy in DESIGN.md).
type Grid struct {
	Ty, Tx       int
	H, W, C      int
	TileH, TileW int
}

// New validates (Ty, Tx) against the frame shape and returns a Grid.
func New(h, w, c, ty, tx int) (Grid, error) {
	if ty <= 0 || tx <= 0 || ty > h || tx > w {
		return Grid{}, fmt.Errorf("%w: ty=%d tx=%d for frame %dx%d", ErrInvalidGrid, ty, tx, h, w)
	}
	return Grid{
		Ty: ty, Tx: tx,
		H: h, W: w, C: c,
		TileH: h / ty, TileW: w / tx,
	}, nil
}

// Bounds returns the interior pixel rectangle [y0,y1) x [x0,x1) for id, in
// row-major cell order.
func (g Grid) Bounds(id ID) (y0, x0, y1, x1 int) {
	y0 = id.Row * g.TileH
	x0 = id.Col * g.TileW
	return y0, x0, y0 + g.TileH, x0 + g.TileW
}

// IDs returns every tile ID in deterministic row-major scan order: row
// outer, col inner.
func (g Grid) IDs() []ID {
	ids := make([]ID, 0, g.Ty*g.Tx)
	for r := 0; r < g.Ty; r++ {
		for c := 0; c < g.Tx; c++ {
			ids = append(ids, ID{Row: r, Col: c})
		}
	}
	return ids
}

// Valid reports whether id is within the grid.
func (g Grid) Valid(id ID) bool {
	return id.Row >= 0 && id.Row < g.Ty && id.Col >= 0 && id.Col < g.Tx
}

// Split extracts every interior tile of f as an independent Frame of shape
// (TileH, TileW, C). Margin pixels (H mod Ty, W mod Tx) are excluded.
func Split(g Grid, f frame.Frame) (map[ID]frame.Frame, error) {
	if f.H != g.H || f.W != g.W || f.C != g.C {
		return nil, fmt.Errorf("%w: frame %dx%dx%d does not match grid frame %dx%dx%d",
			ErrTileShapeMismatch, f.H, f.W, f.C, g.H, g.W, g.C)
	}
	tiles := make(map[ID]frame.Frame, g.Ty*g.Tx)
	for _, id := range g.IDs() {
		y0, x0, y1, x1 := g.Bounds(id)
		t := frame.New(g.TileH, g.TileW, g.C)
		for y := y0; y < y1; y++ {
			for x := x0; x < x1; x++ {
				for c := 0; c < g.C; c++ {
					t.Set(y-y0, x-x0, c, f.At(y, x, c))
				}
			}
		}
		tiles[id] = t
	}
	return tiles, nil
}

// Assemble writes every tile in tiles into a copy of base at its grid cell,
// leaving margin pixels untouched. Every tile ID in the grid must be
// present with shape (TileH, TileW, C).
func Assemble(g Grid, base frame.Frame, tiles map[ID]frame.Frame) (frame.Frame, error) {
	if base.H != g.H || base.W != g.W || base.C != g.C {
		return frame.Frame{}, fmt.Errorf("%w: base frame %dx%dx%d does not match grid frame %dx%dx%d",
			ErrTileShapeMismatch, base.H, base.W, base.C, g.H, g.W, g.C)
	}
	out := base.Clone()
	for _, id := range g.IDs() {
		t, ok := tiles[id]
		if !ok {
			return frame.Frame{}, fmt.Errorf("%w: missing tile %v", ErrTileShapeMismatch, id)
		}
		if t.H != g.TileH || t.W != g.TileW || t.C != g.C {
			return frame.Frame{}, fmt.Errorf("%w: tile %v has shape %dx%dx%d, want %dx%dx%d",
				ErrTileShapeMismatch, id, t.H, t.W, t.C, g.TileH, g.TileW, g.C)
		}
		y0, x0, y1, x1 := g.Bounds(id)
		for y := y0; y < y1; y++ {
			for x := x0; x < x1; x++ {
				for c := 0; c < g.C; c++ {
					out.Set(y, x, c, t.At(y-y0, x-x0, c))
				}
			}
		}
	}
	return out, nil
}
