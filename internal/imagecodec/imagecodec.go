// Package imagecodec decodes/encodes the container's per-frame image format.
// It normalizes every ingest format to a frame.Frame and always encodes back
// out as JPEG, per the container contract (spec.md §6).
package imagecodec

import (
	"bytes"
	"errors"
	"fmt"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"path/filepath"
	"strings"

	"github.com/gen2brain/webp"
	"golang.org/x/image/bmp"

	"github.com/sirkaza/tilecodec/internal/frame"
)

// ErrInvalidInputFormat is returned for an unrecognized file extension.
var ErrInvalidInputFormat = errors.New("invalid input format")

// Decode decodes a single still image, dispatching on name's extension, and
// normalizes the result to a Frame.
func Decode(name string, r io.Reader) (frame.Frame, error) {
	switch ext := strings.ToLower(filepath.Ext(name)); ext {
	case ".jpeg", ".jpg":
		img, err := jpeg.Decode(r)
		if err != nil {
			return frame.Frame{}, fmt.Errorf("decoding %q: %w", name, err)
		}
		return frame.FromImage(img), nil
	case ".png":
		img, err := png.Decode(r)
		if err != nil {
			return frame.Frame{}, fmt.Errorf("decoding %q: %w", name, err)
		}
		return frame.FromImage(img), nil
	case ".bmp":
		img, err := bmp.Decode(r)
		if err != nil {
			return frame.Frame{}, fmt.Errorf("decoding %q: %w", name, err)
		}
		return frame.FromImage(img), nil
	case ".webp":
		img, err := webp.Decode(r)
		if err != nil {
			return frame.Frame{}, fmt.Errorf("decoding %q: %w", name, err)
		}
		return frame.FromImage(img), nil
	case ".gif":
		frames, err := DecodeGIF(r)
		if err != nil {
			return frame.Frame{}, fmt.Errorf("decoding %q: %w", name, err)
		}
		if len(frames) == 0 {
			return frame.Frame{}, fmt.Errorf("decoding %q: empty gif", name)
		}
		return frames[0], nil
	default:
		return frame.Frame{}, fmt.Errorf("%w: %q", ErrInvalidInputFormat, ext)
	}
}

// DecodeGIF decodes every frame of an animated GIF in sequence. Each frame
// is normalized to RGB: a paletted frame's color model is never treated as
// grayscale, even when its palette holds only gray entries.
func DecodeGIF(r io.Reader) ([]frame.Frame, error) {
	g, err := gif.DecodeAll(r)
	if err != nil {
		return nil, fmt.Errorf("decoding gif: %w", err)
	}
	out := make([]frame.Frame, 0, len(g.Image))
	for _, paletted := range g.Image {
		out = append(out, frame.FromImage(paletted))
	}
	return out, nil
}

// Encode always writes f as a JPEG, matching the container's
// "<stem>.jpeg" contract.
func Encode(w io.Writer, f frame.Frame) error {
	return jpeg.Encode(w, f.ToImage(), &jpeg.Options{Quality: 90})
}

// EncodeBytes is a convenience wrapper around Encode for callers that want
// the encoded bytes directly.
func EncodeBytes(f frame.Frame) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, f); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
