package codec

import (
	"testing"

	"github.com/sirkaza/tilecodec/internal/frame"
)

func buildSet(names []string, f frame.Frame) frame.Set {
	var s frame.Set
	for _, n := range names {
		s.Put(n, f.Clone())
	}
	return s
}

func TestEncodeAllThenDecodeAllRoundTrip(t *testing.T) {
	g := gradientRGB(8, 8)
	names := []string{"f0.jpeg", "f1.jpeg", "f2.jpeg", "f3.jpeg", "f4.jpeg"}
	original := buildSet(names, g)

	params := EncoderParameters{NTilesY: 2, NTilesX: 2, Gop: 2, Quality: 0.99, SeekRange: 0}
	encoded, bundle, err := EncodeAll(original, EncodeConfig{Params: params, Concurrency: 2})
	if err != nil {
		t.Fatal(err)
	}
	if encoded.Len() != len(names) {
		t.Fatalf("encoded.Len() = %d, want %d", encoded.Len(), len(names))
	}

	refCount := 0
	for _, rec := range bundle.Frames {
		if rec.IsReference {
			refCount++
		}
	}
	if refCount != 3 {
		t.Fatalf("reference frame count = %d, want 3 (positions 0, 2, 4)", refCount)
	}

	decoded, err := DecodeAll(encoded, bundle, DecodeConfig{Params: params, Concurrency: 2})
	if err != nil {
		t.Fatal(err)
	}
	for _, n := range names {
		orig, _ := original.Get(n)
		dec, ok := decoded.Get(n)
		if !ok {
			t.Fatalf("missing decoded frame %q", n)
		}
		if !dec.Equal(orig) {
			t.Fatalf("decoded frame %q does not match original", n)
		}
	}
}

func TestEncodeAllEmptyInput(t *testing.T) {
	_, _, err := EncodeAll(frame.Set{}, EncodeConfig{Params: EncoderParameters{NTilesY: 1, NTilesX: 1, Gop: 2}})
	if err == nil {
		t.Fatal("expected error for empty input")
	}
}

func TestEncodeAllRecordsSortedByFileName(t *testing.T) {
	g := gradientRGB(4, 4)
	names := []string{"z.jpeg", "a.jpeg", "m.jpeg"}
	original := buildSet(names, g)
	params := EncoderParameters{NTilesY: 1, NTilesX: 1, Gop: 3, Quality: 0.99, SeekRange: 0}

	_, bundle, err := EncodeAll(original, EncodeConfig{Params: params, Concurrency: 4})
	if err != nil {
		t.Fatal(err)
	}
	for i := 1; i < len(bundle.Frames); i++ {
		if bundle.Frames[i-1].FileName > bundle.Frames[i].FileName {
			t.Fatalf("records not sorted: %q before %q", bundle.Frames[i-1].FileName, bundle.Frames[i].FileName)
		}
	}
}
