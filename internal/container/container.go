// Package container implements the zip archive format described in
// spec.md §6: one "<stem>.jpeg" entry per frame, lexicographically ordered,
// plus an optional encoder_metadata.json. Adapted from the teacher's
// PMTiles Writer/Reader (internal/pmtiles), generalized from a binary
// directory-indexed tile archive to a flat zip of per-frame JPEGs.
package container

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/sirkaza/tilecodec/internal/codec"
	"github.com/sirkaza/tilecodec/internal/frame"
	"github.com/sirkaza/tilecodec/internal/imagecodec"
)

// MetadataFileName is the reserved entry name for encoder metadata. Its
// presence in an archive signals already-encoded input.
const MetadataFileName = "encoder_metadata.json"

// ErrCorruptBundle is returned for missing, malformed, or inconsistent
// encoder_metadata.json content.
var ErrCorruptBundle = errors.New("corrupt bundle")

// ReadArchive opens a zip archive, decodes every image entry into a
// frame.Set (ordered by lexicographic entry name, per spec.md §6), and
// parses encoder_metadata.json if present. A nil bundle return means the
// archive holds raw, not-yet-encoded frames.
func ReadArchive(path string) (frame.Set, *codec.EncodedBundle, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return frame.Set{}, nil, fmt.Errorf("opening archive %q: %w", path, err)
	}
	defer zr.Close()

	names := make([]string, 0, len(zr.File))
	byName := make(map[string]*zip.File, len(zr.File))
	for _, f := range zr.File {
		names = append(names, f.Name)
		byName[f.Name] = f
	}
	sort.Strings(names)

	var bundle *codec.EncodedBundle
	var frames frame.Set

	for _, name := range names {
		if name == MetadataFileName {
			b, err := readAll(byName[name])
			if err != nil {
				return frame.Set{}, nil, fmt.Errorf("reading %s: %w", MetadataFileName, err)
			}
			var parsed codec.EncodedBundle
			if err := json.Unmarshal(b, &parsed); err != nil {
				return frame.Set{}, nil, fmt.Errorf("%w: malformed %s: %v", ErrCorruptBundle, MetadataFileName, err)
			}
			bundle = &parsed
			continue
		}

		b, err := readAll(byName[name])
		if err != nil {
			return frame.Set{}, nil, fmt.Errorf("reading %q: %w", name, err)
		}
		f, err := imagecodec.Decode(name, bytes.NewReader(b))
		if err != nil {
			return frame.Set{}, nil, err
		}
		frames.Put(name, f)
	}

	if bundle != nil {
		for _, rec := range bundle.Frames {
			if _, ok := frames.Get(rec.FileName); !ok {
				return frame.Set{}, nil, fmt.Errorf("%w: record %q has no matching archive entry", ErrCorruptBundle, rec.FileName)
			}
		}
	}

	return frames, bundle, nil
}

// WriteArchive writes every frame as "<stem>.jpeg", lexicographically
// ordered by the resulting file name, followed by encoder_metadata.json
// when bundle is non-nil.
func WriteArchive(path string, frames frame.Set, bundle *codec.EncodedBundle) error {
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating archive %q: %w", path, err)
	}
	defer out.Close()

	zw := zip.NewWriter(out)
	defer zw.Close()

	names := frames.Names()
	jpegNames := make([]string, len(names))
	for i, n := range names {
		jpegNames[i] = stemJPEG(n)
	}
	sort.Strings(jpegNames)

	byJPEGName := make(map[string]frame.Frame, len(names))
	for _, n := range names {
		f, _ := frames.Get(n)
		byJPEGName[stemJPEG(n)] = f
	}

	for _, jn := range jpegNames {
		w, err := zw.Create(jn)
		if err != nil {
			return fmt.Errorf("creating entry %q: %w", jn, err)
		}
		if err := imagecodec.Encode(w, byJPEGName[jn]); err != nil {
			return fmt.Errorf("encoding %q: %w", jn, err)
		}
	}

	if bundle != nil {
		renamed := *bundle
		renamed.Frames = make([]codec.FrameRecord, len(bundle.Frames))
		for i, rec := range bundle.Frames {
			rec.FileName = stemJPEG(rec.FileName)
			renamed.Frames[i] = rec
		}
		data, err := json.MarshalIndent(renamed, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling %s: %w", MetadataFileName, err)
		}
		w, err := zw.Create(MetadataFileName)
		if err != nil {
			return fmt.Errorf("creating entry %s: %w", MetadataFileName, err)
		}
		if _, err := w.Write(data); err != nil {
			return fmt.Errorf("writing %s: %w", MetadataFileName, err)
		}
	}

	return nil
}

func stemJPEG(name string) string {
	ext := filepath.Ext(name)
	return strings.TrimSuffix(name, ext) + ".jpeg"
}

func readAll(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}
