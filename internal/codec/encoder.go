package codec

import (
	"fmt"

	"github.com/sirkaza/tilecodec/internal/correlation"
	"github.com/sirkaza/tilecodec/internal/frame"
	"github.com/sirkaza/tilecodec/internal/gop"
	"github.com/sirkaza/tilecodec/internal/meanfill"
	"github.com/sirkaza/tilecodec/internal/tilegrid"
)

// EncodeGOP encodes a single group of pictures: the first frame is the
// reference (preserved verbatim); every later frame has its matched tiles
// replaced by the frame's mean-color fill, per spec.md §4.5.
//
// It returns the rewritten frames (same order as g.Frames) and one
// FrameRecord per frame.
func EncodeGOP(g gop.Group, params EncoderParameters) ([]frame.Named, []FrameRecord, error) {
	if len(g.Frames) == 0 {
		return nil, nil, fmt.Errorf("gop %d: %w", g.Index, ErrEmptyInput)
	}

	refNamed := g.Frames[0]
	ref := refNamed.Frame

	grid, err := tilegrid.New(ref.H, ref.W, ref.C, params.NTilesY, params.NTilesX)
	if err != nil {
		return nil, nil, fmt.Errorf("gop %d: %w", g.Index, err)
	}

	refTiles, err := tilegrid.Split(grid, ref)
	if err != nil {
		return nil, nil, fmt.Errorf("gop %d, reference %q: %w", g.Index, refNamed.Name, err)
	}
	refIDs := grid.IDs() // row-major scan order, reused as the candidate scan order

	rewritten := make([]frame.Named, 0, len(g.Frames))
	records := make([]FrameRecord, 0, len(g.Frames))

	rewritten = append(rewritten, refNamed)
	records = append(records, FrameRecord{FileName: refNamed.Name, IsReference: true})

	for _, named := range g.Frames[1:] {
		f := named.Frame
		curGrid, err := tilegrid.New(f.H, f.W, f.C, params.NTilesY, params.NTilesX)
		if err != nil {
			return nil, nil, fmt.Errorf("gop %d, frame %q: %w", g.Index, named.Name, err)
		}
		curTiles, err := tilegrid.Split(curGrid, f)
		if err != nil {
			return nil, nil, fmt.Errorf("gop %d, frame %q: %w", g.Index, named.Name, err)
		}

		var tileRecords []TileRecord
		matched := make(map[tilegrid.ID]bool)

		for _, cid := range curGrid.IDs() {
			curTile := curTiles[cid]

			var (
				won    bool
				winner tilegrid.ID
				offset correlation.Offset
			)
			for _, rid := range refIDs {
				res, err := correlation.BestMatch(curTile, refTiles[rid], params.SeekRange)
				if err != nil {
					return nil, nil, fmt.Errorf("gop %d, frame %q, tile %v vs %v: %w", g.Index, named.Name, cid, rid, err)
				}
				if res.Score >= params.Quality {
					won = true
					winner = rid
					offset = res.Offset
					break // first reference tile clearing the threshold wins, not the best
				}
			}
			if !won {
				continue
			}

			matched[cid] = true
			x := cid.Col*curGrid.TileW + offset.Dx
			y := cid.Row*curGrid.TileH + offset.Dy
			if x < 0 {
				x = 0
			}
			if y < 0 {
				y = 0
			}
			tileRecords = append(tileRecords, TileRecord{
				ReferenceTileID: [2]int{winner.Row, winner.Col},
				TargetPosition:  [2]int{x, y},
			})
		}

		rewrittenFrame := f
		if len(matched) > 0 {
			fillColor := meanfill.Mean(f)
			replaced := make(map[tilegrid.ID]frame.Frame, len(curTiles))
			for id, t := range curTiles {
				if matched[id] {
					replaced[id] = meanfill.Fill(curGrid.TileH, curGrid.TileW, fillColor)
				} else {
					replaced[id] = t
				}
			}
			rewrittenFrame, err = tilegrid.Assemble(curGrid, f, replaced)
			if err != nil {
				return nil, nil, fmt.Errorf("gop %d, frame %q: %w", g.Index, named.Name, err)
			}
		}

		rewritten = append(rewritten, frame.Named{Name: named.Name, Frame: rewrittenFrame})
		records = append(records, FrameRecord{
			FileName:    named.Name,
			IsReference: false,
			Tiles:       tileRecords,
		})
	}

	return rewritten, records, nil
}
