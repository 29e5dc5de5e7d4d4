package tilegrid

import (
	"errors"
	"testing"

	"github.com/sirkaza/tilecodec/internal/frame"
)

func TestNewValidatesDimensions(t *testing.T) {
	cases := []struct {
		name          string
		h, w, c, ty, tx int
		wantErr       bool
	}{
		{"fits evenly", 8, 8, 3, 2, 2, false},
		{"fits with remainder", 10, 10, 1, 3, 3, false},
		{"zero rows", 8, 8, 3, 0, 2, true},
		{"more rows than pixels", 2, 8, 3, 4, 2, true},
		{"more cols than pixels", 8, 2, 3, 2, 4, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := New(tc.h, tc.w, tc.c, tc.ty, tc.tx)
			if (err != nil) != tc.wantErr {
				t.Fatalf("New() err = %v, wantErr %v", err, tc.wantErr)
			}
			if tc.wantErr && !errors.Is(err, ErrInvalidGrid) {
				t.Fatalf("expected ErrInvalidGrid, got %v", err)
			}
		})
	}
}

func TestIDsRowMajorOrder(t *testing.T) {
	g, err := New(8, 8, 1, 2, 3)
	if err != nil {
		t.Fatal(err)
	}
	want := []ID{{0, 0}, {0, 1}, {0, 2}, {1, 0}, {1, 1}, {1, 2}}
	got := g.IDs()
	if len(got) != len(want) {
		t.Fatalf("len(IDs()) = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("IDs()[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestSplitExcludesMargin(t *testing.T) {
	// 5x5 frame, 2x2 grid -> interior tiles are 2x2, leaving a 1-pixel
	// margin on the bottom/right that Split must not touch.
	f := frame.New(5, 5, 1)
	for i := range f.Pix {
		f.Pix[i] = uint8(i % 256)
	}
	g, err := New(5, 5, 1, 2, 2)
	if err != nil {
		t.Fatal(err)
	}
	tiles, err := Split(g, f)
	if err != nil {
		t.Fatal(err)
	}
	if len(tiles) != 4 {
		t.Fatalf("len(tiles) = %d, want 4", len(tiles))
	}
	for id, tile := range tiles {
		if tile.H != 2 || tile.W != 2 {
			t.Fatalf("tile %v shape = %dx%d, want 2x2", id, tile.H, tile.W)
		}
	}
}

func TestAssembleRoundTrip(t *testing.T) {
	f := frame.New(6, 6, 3)
	for i := range f.Pix {
		f.Pix[i] = uint8(i)
	}
	g, err := New(6, 6, 3, 3, 3)
	if err != nil {
		t.Fatal(err)
	}
	tiles, err := Split(g, f)
	if err != nil {
		t.Fatal(err)
	}
	out, err := Assemble(g, f, tiles)
	if err != nil {
		t.Fatal(err)
	}
	if !out.Equal(f) {
		t.Fatalf("Assemble(Split(f)) != f")
	}
}

func TestAssembleLeavesMarginUntouched(t *testing.T) {
	f := frame.New(5, 5, 1)
	for i := range f.Pix {
		f.Pix[i] = 99
	}
	g, err := New(5, 5, 1, 2, 2)
	if err != nil {
		t.Fatal(err)
	}
	tiles, err := Split(g, f)
	if err != nil {
		t.Fatal(err)
	}
	for id, tile := range tiles {
		filled := frame.New(tile.H, tile.W, tile.C)
		for i := range filled.Pix {
			filled.Pix[i] = 1
		}
		tiles[id] = filled
	}
	out, err := Assemble(g, f, tiles)
	if err != nil {
		t.Fatal(err)
	}
	// last row/col is margin and must still read 99.
	for x := 0; x < 5; x++ {
		if out.At(4, x, 0) != 99 {
			t.Fatalf("margin pixel (4,%d) = %d, want 99", x, out.At(4, x, 0))
		}
	}
	for y := 0; y < 5; y++ {
		if out.At(y, 4, 0) != 99 {
			t.Fatalf("margin pixel (%d,4) = %d, want 99", y, out.At(y, 4, 0))
		}
	}
}

func TestAssembleRejectsMissingTile(t *testing.T) {
	f := frame.New(4, 4, 1)
	g, err := New(4, 4, 1, 2, 2)
	if err != nil {
		t.Fatal(err)
	}
	_, err = Assemble(g, f, map[ID]frame.Frame{{Row: 0, Col: 0}: frame.New(2, 2, 1)})
	if !errors.Is(err, ErrTileShapeMismatch) {
		t.Fatalf("expected ErrTileShapeMismatch, got %v", err)
	}
}

func TestValid(t *testing.T) {
	g, err := New(4, 4, 1, 2, 2)
	if err != nil {
		t.Fatal(err)
	}
	if !g.Valid(ID{Row: 1, Col: 1}) {
		t.Fatal("expected (1,1) to be valid")
	}
	if g.Valid(ID{Row: 2, Col: 0}) {
		t.Fatal("expected (2,0) to be invalid")
	}
	if g.Valid(ID{Row: -1, Col: 0}) {
		t.Fatal("expected (-1,0) to be invalid")
	}
}
