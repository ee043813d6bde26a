package common

import "testing"

func TestAlignUp(t *testing.T) {
	tests := []struct {
		size, alignment, want uint64
	}{
		{0, 256, 0},
		{1, 256, 256},
		{16, 256, 256},
		{256, 256, 256},
		{257, 256, 512},
		{12, 0, 12},
	}
	for _, tt := range tests {
		if got := AlignUp(tt.size, tt.alignment); got != tt.want {
			t.Errorf("AlignUp(%d, %d): Expected %d, got %d", tt.size, tt.alignment, tt.want, got)
		}
	}
}

func TestCeilDiv(t *testing.T) {
	tests := []struct {
		a, b, want int
	}{
		{0, 256, 0},
		{1, 256, 1},
		{256, 256, 1},
		{257, 256, 2},
		{1280, 256, 5},
		{10, 0, 0},
	}
	for _, tt := range tests {
		if got := CeilDiv(tt.a, tt.b); got != tt.want {
			t.Errorf("CeilDiv(%d, %d): Expected %d, got %d", tt.a, tt.b, tt.want, got)
		}
	}
}

func TestFloorDiv(t *testing.T) {
	tests := []struct {
		a, b, want int32
	}{
		{0, 16, 0},
		{15, 16, 0},
		{16, 16, 1},
		{-1, 16, -1},
		{-16, 16, -1},
		{-17, 16, -2},
	}
	for _, tt := range tests {
		if got := FloorDiv(tt.a, tt.b); got != tt.want {
			t.Errorf("FloorDiv(%d, %d): Expected %d, got %d", tt.a, tt.b, tt.want, got)
		}
	}
}

func TestNextPowerOfTwo(t *testing.T) {
	tests := []struct {
		n, want int
	}{
		{0, 1},
		{1, 1},
		{2, 2},
		{3, 4},
		{16, 16},
		{17, 32},
		{1000, 1024},
	}
	for _, tt := range tests {
		if got := NextPowerOfTwo(tt.n); got != tt.want {
			t.Errorf("NextPowerOfTwo(%d): Expected %d, got %d", tt.n, tt.want, got)
		}
	}
}

func TestColorPack(t *testing.T) {
	c := Color{R: 0x11, G: 0x22, B: 0x33, A: 0x44}
	if got := c.Pack(); got != 0x44332211 {
		t.Fatalf("Expected 0x44332211, got %#08x", got)
	}
	if ColorWhite.Pack() != 0xFFFFFFFF {
		t.Errorf("Expected white to pack to 0xFFFFFFFF, got %#08x", ColorWhite.Pack())
	}
}

func TestCoalesce(t *testing.T) {
	if got := Coalesce(0, 0, 3, 4); got != 3 {
		t.Errorf("Expected 3, got %d", got)
	}
	if got := Coalesce("", ""); got != "" {
		t.Errorf("Expected empty string, got %q", got)
	}
}

func TestTextureStagingDataValid(t *testing.T) {
	good := TextureStagingData{Pixels: make([]byte, 2*3*4), Width: 2, Height: 3}
	if !good.Valid() {
		t.Errorf("Expected 2x3 staging data to be valid")
	}
	bad := TextureStagingData{Pixels: make([]byte, 5), Width: 2, Height: 3}
	if bad.Valid() {
		t.Errorf("Expected short pixel buffer to be invalid")
	}
}
