package codec

import (
	"fmt"

	"github.com/sirkaza/tilecodec/internal/frame"
	"github.com/sirkaza/tilecodec/internal/tilegrid"
)

// DecodeGOP reconstructs one group of pictures from its frames and
// FrameRecords. records must contain one entry per frame in frames;
// matching between the two is by file name, not position. A frame without a
// record, or a record without a frame, fails with ErrOrphanFrameRecord.
func DecodeGOP(frames []frame.Named, records []FrameRecord, params EncoderParameters) ([]frame.Named, error) {
	if len(frames) == 0 {
		return nil, fmt.Errorf("%w", ErrEmptyInput)
	}

	recByName := make(map[string]FrameRecord, len(records))
	for _, r := range records {
		recByName[r.FileName] = r
	}
	frameNames := make(map[string]bool, len(frames))
	for _, named := range frames {
		frameNames[named.Name] = true
	}
	for _, r := range records {
		if !frameNames[r.FileName] {
			return nil, fmt.Errorf("record %q: %w", r.FileName, ErrOrphanFrameRecord)
		}
	}

	var (
		refTiles map[tilegrid.ID]frame.Frame
		grid     tilegrid.Grid
		haveRef  bool
	)

	out := make([]frame.Named, 0, len(frames))

	for _, named := range frames {
		rec, ok := recByName[named.Name]
		if !ok {
			return nil, fmt.Errorf("%q: %w", named.Name, ErrOrphanFrameRecord)
		}

		if rec.IsReference {
			ref := named.Frame
			g, err := tilegrid.New(ref.H, ref.W, ref.C, params.NTilesY, params.NTilesX)
			if err != nil {
				return nil, fmt.Errorf("reference %q: %w", named.Name, err)
			}
			grid = g
			refTiles, err = tilegrid.Split(grid, ref)
			if err != nil {
				return nil, fmt.Errorf("reference %q: %w", named.Name, err)
			}
			haveRef = true
			out = append(out, named)
			continue
		}

		if len(rec.Tiles) == 0 {
			out = append(out, named)
			continue
		}
		if !haveRef {
			return nil, fmt.Errorf("%q: %w", named.Name, ErrMissingReference)
		}
		for _, t := range rec.Tiles {
			id := tilegrid.ID{Row: t.ReferenceTileID[0], Col: t.ReferenceTileID[1]}
			if !grid.Valid(id) {
				return nil, fmt.Errorf("%q, tile %v: %w", named.Name, id, ErrTileIDOutOfRange)
			}
		}

		out = append(out, frame.Named{Name: named.Name, Frame: applyTileRecords(named.Frame, rec.Tiles, refTiles, grid)})
	}

	return out, nil
}

// applyTileRecords copies reference-tile content into frame f at every
// recorded target position, clipping to the frame bounds and applying
// records in list order (last write wins on overlap).
func applyTileRecords(f frame.Frame, tiles []TileRecord, refTiles map[tilegrid.ID]frame.Frame, grid tilegrid.Grid) frame.Frame {
	out := f.Clone()
	for _, t := range tiles {
		id := tilegrid.ID{Row: t.ReferenceTileID[0], Col: t.ReferenceTileID[1]}
		refTile := refTiles[id]

		x, y := t.TargetPosition[0], t.TargetPosition[1]
		rh := grid.TileH
		if y+rh > out.H {
			rh = out.H - y
		}
		rw := grid.TileW
		if x+rw > out.W {
			rw = out.W - x
		}
		for dy := 0; dy < rh; dy++ {
			for dx := 0; dx < rw; dx++ {
				for c := 0; c < out.C; c++ {
					out.Set(y+dy, x+dx, c, refTile.At(dy, dx, c))
				}
			}
		}
	}
	return out
}
