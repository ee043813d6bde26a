package window

import (
	"errors"
	"testing"

	"github.com/Carmen-Shannon/oxy-tiles/common"
)

func TestKeyState(t *testing.T) {
	w := newEngineWindow()
	var pressed, released []uint32
	w.SetKeyDownCallback(func(code uint32) { pressed = append(pressed, code) })
	w.SetKeyUpCallback(func(code uint32) { released = append(released, code) })

	w.handleKeyDown(common.KeyW)
	w.handleKeyDown(common.KeyLeftShift)
	if !w.IsKeyDown(common.KeyW) || !w.IsKeyDown(common.KeyLeftShift) {
		t.Error("Expected W and shift to be held")
	}

	w.handleKeyUp(common.KeyW)
	if w.IsKeyDown(common.KeyW) {
		t.Error("Expected W to be released")
	}
	if len(pressed) != 2 || len(released) != 1 || released[0] != common.KeyW {
		t.Errorf("Expected callbacks to be forwarded, got %v and %v", pressed, released)
	}

	w.releaseKeys()
	if w.IsKeyDown(common.KeyLeftShift) {
		t.Error("Expected focus loss to release every key")
	}
}

func TestKeyEventsReachCallbacks(t *testing.T) {
	tests := []struct {
		name string
		code uint32
	}{
		{"escape", common.KeyEsc},
		{"profiler toggle", common.KeyP},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := newEngineWindow()
			var down, up []uint32
			w.SetKeyDownCallback(func(code uint32) { down = append(down, code) })
			w.SetKeyUpCallback(func(code uint32) { up = append(up, code) })

			w.handleKeyEvent(tt.code, true)
			if len(down) != 1 || down[0] != tt.code || !w.IsKeyDown(tt.code) {
				t.Errorf("Expected key %d to be forwarded and held, got %v", tt.code, down)
			}
			w.handleKeyEvent(tt.code, false)
			if len(up) != 1 || up[0] != tt.code || w.IsKeyDown(tt.code) {
				t.Errorf("Expected key %d to be released, got %v", tt.code, up)
			}
		})
	}
}

func TestResizeForwardsZeroSizes(t *testing.T) {
	w := newEngineWindow()
	var got [][2]int
	w.SetResizeCallback(func(width, height int) { got = append(got, [2]int{width, height}) })

	w.handleResize(0, 0)
	w.handleResize(1024, 768)
	if len(got) != 2 || got[0] != [2]int{0, 0} || got[1] != [2]int{1024, 768} {
		t.Errorf("Expected both resizes forwarded, got %v", got)
	}
	if w.Width() != 1024 || w.Height() != 768 {
		t.Errorf("Expected 1024x768, got %dx%d", w.Width(), w.Height())
	}
}

func TestOptionsClampInitialSize(t *testing.T) {
	w := newEngineWindow(WithTitle("tiles"), WithSize(100, 5000), WithMaxSize(0, 1080))
	if w.title != "tiles" {
		t.Errorf("Expected title tiles, got %s", w.title)
	}
	if w.width != w.minWidth || w.height != 1080 {
		t.Errorf("Expected size clamped to %dx1080, got %dx%d", w.minWidth, w.width, w.height)
	}
}

func TestUninitializedWindow(t *testing.T) {
	w := newEngineWindow()
	if w.IsRunning() {
		t.Error("Expected an uninitialized window not to run")
	}
	if w.SurfaceDescriptor() != nil {
		t.Error("Expected no surface descriptor")
	}
	if err := w.Close(); !errors.Is(err, ErrNotInitialized) {
		t.Errorf("Expected ErrNotInitialized, got %v", err)
	}
}
