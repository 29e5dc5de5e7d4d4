// Command tilecodec implements the CLI surface of spec.md §6: ingest a zip
// archive or GIF, optionally decode/filter/re-encode it, and write the
// result back out (or summarize it, in place of interactive playback).
package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"github.com/sirkaza/tilecodec/internal/codec"
	"github.com/sirkaza/tilecodec/internal/container"
	"github.com/sirkaza/tilecodec/internal/filter"
	"github.com/sirkaza/tilecodec/internal/frame"
	"github.com/sirkaza/tilecodec/internal/imagecodec"
	"github.com/sirkaza/tilecodec/internal/psnr"
)

func main() {
	var (
		input       string
		output      string
		fps         int
		filterSpec  string
		ntiles      string
		seekRange   int
		gopSize     int
		quality     float64
		reproduce   bool
		concurrency int
		verbose     bool
	)

	flag.StringVar(&input, "input", "", "Path to a zip or gif archive (required)")
	flag.StringVar(&output, "output", "", "Path to output zip. If omitted, a summary is printed instead of playback.")
	flag.IntVar(&fps, "fps", 25, "Playback frame rate (reported only; no live player)")
	flag.StringVar(&filterSpec, "filter", "", "Semicolon-separated filter directives, e.g. \"sepia;brillo=10,1.2\"")
	flag.StringVar(&ntiles, "ntiles", "4,4", "Tile grid as Ty,Tx")
	flag.IntVar(&seekRange, "seekRange", 0, "Maximum search offset for tile matching")
	flag.IntVar(&gopSize, "gop", 10, "Number of frames between reference frames")
	flag.Float64Var(&quality, "quality", 0.9, "Minimum correlation for a tile match, in [-1, 1]")
	flag.BoolVar(&reproduce, "reproduce", false, "Also print playback info after saving")
	flag.IntVar(&concurrency, "concurrency", runtime.NumCPU(), "Number of parallel GOP workers")
	flag.BoolVar(&verbose, "verbose", false, "Accepted but has no effect; the progress bar is always printed")

	flag.Parse()

	if input == "" {
		fmt.Fprintln(os.Stderr, "tilecodec: -input is required")
		flag.Usage()
		os.Exit(1)
	}

	ty, tx, err := parseNTiles(ntiles)
	if err != nil {
		log.Fatalf("tilecodec: -ntiles: %v", err)
	}

	params := codec.EncoderParameters{
		NTilesX: tx, NTilesY: ty,
		Gop:       gopSize,
		Quality:   quality,
		SeekRange: seekRange,
	}

	if err := run(input, output, fps, filterSpec, reproduce, concurrency, verbose, params); err != nil {
		log.Fatalf("tilecodec: %v", err)
	}
}

func run(input, output string, fps int, filterSpec string, reproduce bool, concurrency int, verbose bool, params codec.EncoderParameters) error {
	frames, bundle, err := ingest(input)
	if err != nil {
		return err
	}
	wasEncoded := bundle != nil

	if wasEncoded {
		gops := 0
		for _, rec := range bundle.Frames {
			if rec.IsReference {
				gops++
			}
		}
		log.Printf("Decoding %d frames across %d GOP(s)...", frames.Len(), gops)
		decoded, err := codec.DecodeAll(frames, bundle, codec.DecodeConfig{Params: bundle.Params, Concurrency: concurrency})
		if err != nil {
			return fmt.Errorf("decoding: %w", err)
		}
		frames = decoded
	}

	isGrayscale := sessionIsGrayscale(frames)
	var applied []codec.FilterRecord
	if filterSpec != "" {
		frames, applied, isGrayscale = applyFilters(frames, filterSpec, isGrayscale)
	}

	if output == "" {
		log.Printf("No -output given; summary only (playback is outside this codec's scope): %d frames at %d fps.", frames.Len(), fps)
		return nil
	}

	if !wasEncoded {
		original := frames
		log.Printf("Encoding %d frames: ntiles=(%d,%d) seekRange=%d gop=%d quality=%.2f",
			frames.Len(), params.NTilesY, params.NTilesX, params.SeekRange, params.Gop, params.Quality)
		encoded, newBundle, err := codec.EncodeAll(frames, codec.EncodeConfig{Params: params, Concurrency: concurrency, Verbose: verbose})
		if err != nil {
			return fmt.Errorf("encoding: %w", err)
		}
		newBundle.Filters = applied
		if db, ok := psnr.Report(original, encoded); ok {
			log.Printf("PSNR: %.2f dB", db)
		} else {
			log.Println("PSNR: unavailable (all frames identical or no pairs)")
		}
		if err := container.WriteArchive(output, encoded, newBundle); err != nil {
			return fmt.Errorf("writing %q: %w", output, err)
		}
		logCompressionRatio(input, output)
	} else {
		if err := container.WriteArchive(output, frames, nil); err != nil {
			return fmt.Errorf("writing %q: %w", output, err)
		}
	}

	if reproduce {
		log.Printf("Saved %d frames to %q (playback not implemented in this build).", frames.Len(), output)
	}
	return nil
}

// ingest dispatches on input's extension. Video containers (avi/mpeg/mp4)
// are recognized but unsupported: no pack dependency offers a pure-Go
// general demuxer, per SPEC_FULL.md §4.12.
func ingest(input string) (frame.Set, *codec.EncodedBundle, error) {
	switch ext := strings.ToLower(filepath.Ext(input)); ext {
	case ".zip":
		return container.ReadArchive(input)
	case ".gif":
		f, err := os.Open(input)
		if err != nil {
			return frame.Set{}, nil, fmt.Errorf("opening %q: %w", input, err)
		}
		defer f.Close()
		decoded, err := imagecodec.DecodeGIF(f)
		if err != nil {
			return frame.Set{}, nil, err
		}
		var set frame.Set
		stem := strings.TrimSuffix(filepath.Base(input), ext)
		for i, fr := range decoded {
			set.Put(fmt.Sprintf("%s_%04d.gif", stem, i), fr)
		}
		return set, nil, nil
	case ".avi", ".mpeg", ".mp4":
		return frame.Set{}, nil, fmt.Errorf("%w: video container %q requires a demuxer outside this module's dependency set", imagecodec.ErrInvalidInputFormat, ext)
	default:
		return frame.Set{}, nil, fmt.Errorf("%w: %q", imagecodec.ErrInvalidInputFormat, ext)
	}
}

// logCompressionRatio reports input-size/output-size, per SPEC_FULL.md
// §4.12's "report PSNR plus compression ratio" requirement. It only logs a
// warning on stat failure rather than aborting, since the archive has
// already been written successfully by this point.
func logCompressionRatio(input, output string) {
	in, err := os.Stat(input)
	if err != nil {
		log.Printf("compression ratio unavailable: %v", err)
		return
	}
	out, err := os.Stat(output)
	if err != nil {
		log.Printf("compression ratio unavailable: %v", err)
		return
	}
	if out.Size() == 0 {
		log.Printf("compression ratio unavailable: %q is empty", output)
		return
	}
	log.Printf("Compression ratio: %.2fx (%d bytes -> %d bytes)",
		float64(in.Size())/float64(out.Size()), in.Size(), out.Size())
}

func sessionIsGrayscale(frames frame.Set) bool {
	for _, name := range frames.Names() {
		f, _ := frames.Get(name)
		return f.C == 1
	}
	return false
}

// applyFilters runs every directive in spec in order, skipping (with a
// warning) any that CheckCompatible rejects, per spec.md §7.
func applyFilters(frames frame.Set, spec string, isGrayscale bool) (frame.Set, []codec.FilterRecord, bool) {
	var records []codec.FilterRecord
	var history []filter.Kind

	directives := strings.Split(spec, ";")
	for _, d := range directives {
		d = strings.TrimSpace(d)
		if d == "" {
			continue
		}
		f, err := filter.Parse(d)
		if err != nil {
			log.Printf("skipping filter %q: %v", d, err)
			continue
		}
		if err := filter.CheckCompatible(history, f.Kind, isGrayscale); err != nil {
			if errors.Is(err, filter.ErrIncompatibleFilter) {
				log.Printf("warning: %v; skipping", err)
				continue
			}
			log.Printf("skipping filter %q: %v", d, err)
			continue
		}

		var next frame.Set
		for _, name := range frames.Names() {
			fr, _ := frames.Get(name)
			out, err := filter.Apply(f, fr)
			if err != nil {
				log.Printf("applying filter %q to %q: %v", d, name, err)
				next.Put(name, fr)
				continue
			}
			next.Put(name, out)
		}
		frames = next
		history = append(history, f.Kind)
		if f.Kind == filter.Grey {
			isGrayscale = true
		}
		records = append(records, codec.FilterRecord{FilterName: string(f.Kind), Parameters: filterParameters(f)})
	}
	return frames, records, isGrayscale
}

func filterParameters(f filter.Filter) any {
	switch f.Kind {
	case filter.Binarization:
		return f.Threshold
	case filter.Brillo:
		return []float64{f.Brightness, f.Contrast}
	case filter.Averaging, filter.Blur:
		return f.KernelSize
	default:
		return nil
	}
}

func parseNTiles(s string) (ty, tx int, err error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("expected Ty,Tx, got %q", s)
	}
	ty, err = strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return 0, 0, err
	}
	tx, err = strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return 0, 0, err
	}
	return ty, tx, nil
}
