package filter

import (
	"errors"
	"testing"

	"github.com/sirkaza/tilecodec/internal/frame"
)

func TestParseDefaults(t *testing.T) {
	cases := []struct {
		directive string
		kind      Kind
	}{
		{"binarization", Binarization},
		{"brillo", Brillo},
		{"negative", Negative},
		{"sepia", Sepia},
		{"grey", Grey},
		{"averaging", Averaging},
		{"blur", Blur},
		{"edges", Edges},
		{"embossing", Embossing},
		{"sharp", Sharp},
	}
	for _, tc := range cases {
		t.Run(tc.directive, func(t *testing.T) {
			f, err := Parse(tc.directive)
			if err != nil {
				t.Fatal(err)
			}
			if f.Kind != tc.kind {
				t.Fatalf("Kind = %v, want %v", f.Kind, tc.kind)
			}
		})
	}
}

func TestParseBinarizationWithThreshold(t *testing.T) {
	f, err := Parse("binarization=100")
	if err != nil {
		t.Fatal(err)
	}
	if f.Threshold != 100 {
		t.Fatalf("Threshold = %v, want 100", f.Threshold)
	}
}

func TestParseBrilloWithValues(t *testing.T) {
	f, err := Parse("brillo=10,1.5")
	if err != nil {
		t.Fatal(err)
	}
	if f.Brightness != 10 || f.Contrast != 1.5 {
		t.Fatalf("Brightness/Contrast = %v/%v, want 10/1.5", f.Brightness, f.Contrast)
	}
}

func TestParseBrilloRejectsMalformedValue(t *testing.T) {
	_, err := Parse("brillo=10")
	if err == nil {
		t.Fatal("expected an error for a single-value brillo directive")
	}
}

func TestParseAveragingRejectsEvenKernel(t *testing.T) {
	_, err := Parse("averaging=4")
	if err == nil {
		t.Fatal("expected an error for an even kernel size")
	}
}

func TestParseUnknownFilter(t *testing.T) {
	_, err := Parse("not-a-filter")
	if err == nil {
		t.Fatal("expected an error for an unknown filter name")
	}
}

func TestCheckCompatibleSepiaGreyMutuallyExclusive(t *testing.T) {
	err := CheckCompatible([]Kind{Sepia}, Grey, false)
	if !errors.Is(err, ErrIncompatibleFilter) {
		t.Fatalf("expected ErrIncompatibleFilter, got %v", err)
	}
}

func TestCheckCompatibleGreyOnGrayscaleSession(t *testing.T) {
	err := CheckCompatible(nil, Grey, true)
	if !errors.Is(err, ErrIncompatibleFilter) {
		t.Fatalf("expected ErrIncompatibleFilter, got %v", err)
	}
}

func TestCheckCompatibleUnrelatedFiltersAlwaysOK(t *testing.T) {
	if err := CheckCompatible([]Kind{Sepia, Grey}, Sharp, true); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func rgbFrame(h, w int) frame.Frame {
	f := frame.New(h, w, 3)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			f.Set(y, x, 0, uint8(x*10))
			f.Set(y, x, 1, uint8(y*10))
			f.Set(y, x, 2, 128)
		}
	}
	return f
}

func TestApplyGreyProducesSingleChannel(t *testing.T) {
	out, err := Apply(Filter{Kind: Grey}, rgbFrame(4, 4))
	if err != nil {
		t.Fatal(err)
	}
	if out.C != 1 {
		t.Fatalf("C = %d, want 1", out.C)
	}
}

func TestApplyBinarizationProducesTwoLevels(t *testing.T) {
	out, err := Apply(Filter{Kind: Binarization, Threshold: 127}, rgbFrame(4, 4))
	if err != nil {
		t.Fatal(err)
	}
	for _, v := range out.Pix {
		if v != 0 && v != 255 {
			t.Fatalf("binarization produced non-binary value %d", v)
		}
	}
}

func TestApplyNegativeInverts(t *testing.T) {
	f := frame.New(2, 2, 3)
	f.Set(0, 0, 0, 10)
	out, err := Apply(Filter{Kind: Negative}, f)
	if err != nil {
		t.Fatal(err)
	}
	if out.At(0, 0, 0) != 245 {
		t.Fatalf("At(0,0,0) = %d, want 245", out.At(0, 0, 0))
	}
}

func TestApplySepiaKeepsThreeChannels(t *testing.T) {
	out, err := Apply(Filter{Kind: Sepia}, rgbFrame(4, 4))
	if err != nil {
		t.Fatal(err)
	}
	if out.C != 3 {
		t.Fatalf("C = %d, want 3", out.C)
	}
}

func TestApplyEdgesFlatFrameIsBlack(t *testing.T) {
	f := frame.New(5, 5, 3)
	for i := range f.Pix {
		f.Pix[i] = 100
	}
	out, err := Apply(Filter{Kind: Edges}, f)
	if err != nil {
		t.Fatal(err)
	}
	for _, v := range out.Pix {
		if v != 0 {
			t.Fatalf("expected a flat frame to have no edges, got %d", v)
		}
	}
}

func TestApplyAveragingPreservesFlatFrame(t *testing.T) {
	f := frame.New(5, 5, 1)
	for i := range f.Pix {
		f.Pix[i] = 42
	}
	out, err := Apply(Filter{Kind: Averaging, KernelSize: 3}, f)
	if err != nil {
		t.Fatal(err)
	}
	for _, v := range out.Pix {
		if v != 42 {
			t.Fatalf("averaging a flat frame changed a pixel to %d, want 42", v)
		}
	}
}

func TestApplyUnknownKind(t *testing.T) {
	_, err := Apply(Filter{Kind: "bogus"}, frame.New(2, 2, 1))
	if err == nil {
		t.Fatal("expected an error for an unknown filter kind")
	}
}
