// Package codec implements the GOP-based encoder and decoder: the pieces
// that orchestrate TileGrid, CorrelationSearch, FrameMeanFill and
// GopPartitioner into the motion-compensated tile codec.
package codec

import "errors"

// Sentinel error kinds surfaced by Encoder/Decoder, per the error handling
// design: propagated up wrapped with fmt.Errorf("...: %w", ...), never bare
// strings.
var (
	ErrEmptyInput        = errors.New("empty input")
	ErrOrphanFrameRecord = errors.New("frame and frame record do not match up")
	ErrMissingReference  = errors.New("gop has tile records but no reference frame")
	ErrTileIDOutOfRange  = errors.New("tile id out of range")
)

// EncoderParameters configures both the encoder and the decoder. It is the
// typed configuration struct bound directly from CLI flags (see
// cmd/tilecodec), and doubles as the wire shape of the "encoder_parameters"
// object in the container's encoder_metadata.json.
type EncoderParameters struct {
	NTilesX   int     `json:"n_tiles_x"`
	NTilesY   int     `json:"n_tiles_y"`
	Gop       int     `json:"gop"`
	Quality   float64 `json:"quality"`
	SeekRange int     `json:"seek_range"`
}

// TileRecord records that a non-reference tile was replaced by the content
// of a reference tile at decode time.
type TileRecord struct {
	// ReferenceTileID is (row, col) of the winning reference tile.
	ReferenceTileID [2]int `json:"tb_id"`
	// TargetPosition is the top-left pixel (x, y) in the reconstructed
	// frame where the reference tile's content is written.
	TargetPosition [2]int `json:"td_position"`
}

// FrameRecord is the per-frame metadata entry. For reference frames, Tiles
// is empty.
type FrameRecord struct {
	FileName    string       `json:"file_name"`
	IsReference bool         `json:"reference_frame"`
	Tiles       []TileRecord `json:"tiles,omitempty"`
}

// FilterRecord is one entry of the append-only filter application log.
type FilterRecord struct {
	FilterName string `json:"filter_name"`
	Parameters any    `json:"parameters"`
}

// EncodedBundle is the full wire shape of encoder_metadata.json.
type EncodedBundle struct {
	Params  EncoderParameters `json:"encoder_parameters"`
	Frames  []FrameRecord     `json:"frames"`
	Filters []FilterRecord    `json:"filters"`
}
