package codec

import (
	"fmt"
	"sort"
	"sync"

	"github.com/sirkaza/tilecodec/internal/frame"
	"github.com/sirkaza/tilecodec/internal/gop"
)

// EncodeConfig configures the parallel GOP encoder.
type EncodeConfig struct {
	Params      EncoderParameters
	Concurrency int // number of worker goroutines; <=0 means 1
	Verbose     bool
}

// gopJob is one unit of parallel encoding work: a single GOP.
type gopJob struct {
	group gop.Group
}

// EncodeAll partitions frames into GOPs and encodes every GOP concurrently,
// mirroring the teacher's zoom-level worker loop (internal/tile/generator.go)
// generalized from "one job per tile" to "one job per GOP". Each worker
// writes only the frame keys belonging to its own GOP (disjoint by
// construction), so results are merged into frame.Set lock-free; FrameRecords
// are stored in a results slot per GOP index, concatenated and sorted by file
// name at join, per spec.md §4.5/§4.7.
func EncodeAll(frames frame.Set, cfg EncodeConfig) (frame.Set, *EncodedBundle, error) {
	ordered := frames.Ordered()
	if len(ordered) == 0 {
		return frame.Set{}, nil, fmt.Errorf("%w", ErrEmptyInput)
	}

	groups := gop.Partition(ordered, cfg.Params.Gop)
	concurrency := cfg.Concurrency
	if concurrency <= 0 {
		concurrency = 1
	}
	if concurrency > len(groups) {
		concurrency = len(groups)
	}

	jobs := make(chan gopJob, len(groups))
	for _, g := range groups {
		jobs <- gopJob{group: g}
	}
	close(jobs)

	type outcome struct {
		rewritten []frame.Named
		records   []FrameRecord
		err       error
	}
	results := make([]outcome, len(groups))

	pb := newProgressBar("Encoding GOPs", int64(len(groups)))
	var wg sync.WaitGroup
	for w := 0; w < concurrency; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobs {
				rewritten, records, err := EncodeGOP(job.group, cfg.Params)
				results[job.group.Index] = outcome{rewritten: rewritten, records: records, err: err}
				if err == nil {
					pb.AddTileStats(tileMatchStats(records, cfg.Params))
				}
				pb.Increment()
			}
		}()
	}
	wg.Wait()
	pb.Finish()

	var out frame.Set
	var allRecords []FrameRecord
	for _, r := range results {
		if r.err != nil {
			return frame.Set{}, nil, r.err
		}
		for _, named := range r.rewritten {
			out.Put(named.Name, named.Frame)
		}
		allRecords = append(allRecords, r.records...)
	}

	sort.Slice(allRecords, func(i, j int) bool {
		return allRecords[i].FileName < allRecords[j].FileName
	})

	bundle := &EncodedBundle{Params: cfg.Params, Frames: allRecords}
	return out, bundle, nil
}

// DecodeConfig configures the parallel GOP decoder.
type DecodeConfig struct {
	Params      EncoderParameters
	Concurrency int
}

// DecodeAll partitions frames using the same GOP size as encoding (derived
// from the bundle's recorded reference positions) and decodes every GOP
// concurrently. GOPs are identified by scanning the sorted records for
// consecutive runs starting at each is_reference=true entry, since the
// container only records frame order via file-name sort (see
// internal/container).
func DecodeAll(frames frame.Set, bundle *EncodedBundle, cfg DecodeConfig) (frame.Set, error) {
	ordered := frames.Ordered()
	if len(ordered) == 0 {
		return frame.Set{}, fmt.Errorf("%w", ErrEmptyInput)
	}

	recByName := make(map[string]FrameRecord, len(bundle.Frames))
	for _, r := range bundle.Frames {
		recByName[r.FileName] = r
	}

	var groups []gop.Group
	var current []frame.Named
	for _, named := range ordered {
		rec, ok := recByName[named.Name]
		if ok && rec.IsReference && len(current) > 0 {
			groups = append(groups, gop.Group{Index: len(groups), Frames: current})
			current = nil
		}
		current = append(current, named)
	}
	if len(current) > 0 {
		groups = append(groups, gop.Group{Index: len(groups), Frames: current})
	}

	concurrency := cfg.Concurrency
	if concurrency <= 0 {
		concurrency = 1
	}
	if concurrency > len(groups) {
		concurrency = len(groups)
	}

	jobs := make(chan gop.Group, len(groups))
	for _, g := range groups {
		jobs <- g
	}
	close(jobs)

	type outcome struct {
		frames []frame.Named
		err    error
	}
	results := make([]outcome, len(groups))

	pb := newProgressBar("Decoding GOPs", int64(len(groups)))
	var wg sync.WaitGroup
	for w := 0; w < concurrency; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for g := range jobs {
				groupRecords := make([]FrameRecord, 0, len(g.Frames))
				for _, named := range g.Frames {
					if r, ok := recByName[named.Name]; ok {
						groupRecords = append(groupRecords, r)
					}
				}
				decoded, err := DecodeGOP(g.Frames, groupRecords, cfg.Params)
				results[g.Index] = outcome{frames: decoded, err: err}
				pb.Increment()
			}
		}()
	}
	wg.Wait()
	pb.Finish()

	var out frame.Set
	for _, r := range results {
		if r.err != nil {
			return frame.Set{}, r.err
		}
		for _, named := range r.frames {
			out.Put(named.Name, named.Frame)
		}
	}
	return out, nil
}

// tileMatchStats tallies how many non-reference tiles matched a reference
// tile, out of how many were searched, across every non-reference frame in
// a single GOP's records.
func tileMatchStats(records []FrameRecord, params EncoderParameters) (matched, searched int) {
	tilesPerFrame := params.NTilesY * params.NTilesX
	for _, rec := range records {
		if rec.IsReference {
			continue
		}
		matched += len(rec.Tiles)
		searched += tilesPerFrame
	}
	return matched, searched
}
