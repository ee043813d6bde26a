package globals

import (
	"bytes"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func TestGPUGlobalsLayout(t *testing.T) {
	g := GPUGlobals{Resolution: [2]uint32{1280, 720}, Camera: [2]float32{1, -2}}
	want := []byte{
		0x00, 0x05, 0x00, 0x00, // 1280
		0xD0, 0x02, 0x00, 0x00, // 720
		0x00, 0x00, 0x80, 0x3F, // 1.0
		0x00, 0x00, 0x00, 0xC0, // -2.0
	}
	if got := g.Marshal(); !bytes.Equal(got, want) {
		t.Fatalf("Expected % x, got % x", want, got)
	}
}

func TestResize(t *testing.T) {
	tests := []struct {
		name          string
		width, height int
		wantChanged   bool
		wantW, wantH  int
	}{
		{"same size", 800, 600, false, 800, 600},
		{"zero width", 0, 600, false, 800, 600},
		{"zero height", 800, 0, false, 800, 600},
		{"negative", -5, 10, false, 800, 600},
		{"grow", 1024, 768, true, 1024, 768},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewManager(800, 600)
			if changed := m.Resize(tt.width, tt.height); changed != tt.wantChanged {
				t.Errorf("Expected changed=%v, got %v", tt.wantChanged, changed)
			}
			if w, h := m.Resolution(); w != tt.wantW || h != tt.wantH {
				t.Errorf("Expected %dx%d, got %dx%d", tt.wantW, tt.wantH, w, h)
			}
		})
	}
}

func TestResizeIsIdempotent(t *testing.T) {
	m := NewManager(640, 480)
	m.SetCamera(mgl32.Vec2{32, 48})

	if !m.Resize(1920, 1080) {
		t.Fatalf("Expected first resize to report a change")
	}
	first := m.Globals().Marshal()
	if m.Resize(1920, 1080) {
		t.Errorf("Expected second resize to the same size to report no change")
	}
	if second := m.Globals().Marshal(); !bytes.Equal(first, second) {
		t.Errorf("Expected identical globals, got % x then % x", first, second)
	}
}

func TestGlobalsCarriesCamera(t *testing.T) {
	m := NewManager(100, 50)
	m.SetCamera(mgl32.Vec2{12.5, -3})
	g := m.Globals()
	if g.Resolution != [2]uint32{100, 50} {
		t.Errorf("Expected resolution [100 50], got %v", g.Resolution)
	}
	if g.Camera != [2]float32{12.5, -3} {
		t.Errorf("Expected camera [12.5 -3], got %v", g.Camera)
	}
}
