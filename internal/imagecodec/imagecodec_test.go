package imagecodec

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/gif"
	"image/png"
	"testing"

	"github.com/sirkaza/tilecodec/internal/frame"
)

func TestDecodeUnknownExtension(t *testing.T) {
	_, err := Decode("clip.mov", bytes.NewReader(nil))
	if !errors.Is(err, ErrInvalidInputFormat) {
		t.Fatalf("expected ErrInvalidInputFormat, got %v", err)
	}
}

func TestEncodeDecodePNGRoundTrip(t *testing.T) {
	f := frame.New(4, 4, 3)
	for i := range f.Pix {
		f.Pix[i] = uint8(i * 7)
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, f.ToImage()); err != nil {
		t.Fatal(err)
	}
	decoded, err := Decode("frame.png", &buf)
	if err != nil {
		t.Fatal(err)
	}
	if decoded.H != 4 || decoded.W != 4 {
		t.Fatalf("shape = %dx%d, want 4x4", decoded.H, decoded.W)
	}
}

func TestEncodeAlwaysWritesJPEG(t *testing.T) {
	f := frame.New(3, 3, 3)
	data, err := EncodeBytes(f)
	if err != nil {
		t.Fatal(err)
	}
	if len(data) < 2 || data[0] != 0xFF || data[1] != 0xD8 {
		t.Fatal("expected output to start with a JPEG SOI marker")
	}
}

func TestDecodeGIFFirstFrameOnly(t *testing.T) {
	img := image.NewPaletted(image.Rect(0, 0, 2, 2), color.Palette{color.Black, color.White})
	for y := 0; y < 2; y++ {
		for x := 0; x < 2; x++ {
			img.SetColorIndex(x, y, 1)
		}
	}
	var buf bytes.Buffer
	if err := gif.EncodeAll(&buf, &gif.GIF{Image: []*image.Paletted{img}, Delay: []int{0}}); err != nil {
		t.Fatal(err)
	}
	decoded, err := Decode("anim.gif", &buf)
	if err != nil {
		t.Fatal(err)
	}
	if decoded.H != 2 || decoded.W != 2 {
		t.Fatalf("shape = %dx%d, want 2x2", decoded.H, decoded.W)
	}
}

func TestDecodeGIFAllFrames(t *testing.T) {
	img := image.NewPaletted(image.Rect(0, 0, 2, 2), color.Palette{color.Black, color.White})
	var buf bytes.Buffer
	g := &gif.GIF{Image: []*image.Paletted{img, img}, Delay: []int{0, 0}}
	if err := gif.EncodeAll(&buf, g); err != nil {
		t.Fatal(err)
	}
	frames, err := DecodeGIF(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if len(frames) != 2 {
		t.Fatalf("len(frames) = %d, want 2", len(frames))
	}
}
