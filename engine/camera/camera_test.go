package camera

import (
	"math"
	"testing"

	"github.com/Carmen-Shannon/oxy-tiles/common"
	"github.com/go-gl/mathgl/mgl32"
)

type keys map[uint32]bool

func (k keys) IsKeyDown(code uint32) bool { return k[code] }

func TestControllerUpdate(t *testing.T) {
	tests := []struct {
		name  string
		held  keys
		want  mgl32.Vec2
		moved bool
	}{
		{"idle", keys{}, mgl32.Vec2{0, 0}, false},
		{"right", keys{common.KeyD: true}, mgl32.Vec2{100, 0}, true},
		{"left arrow", keys{common.KeyLeft: true}, mgl32.Vec2{-100, 0}, true},
		{"up", keys{common.KeyW: true}, mgl32.Vec2{0, -100}, true},
		{"down arrow", keys{common.KeyDown: true}, mgl32.Vec2{0, 100}, true},
		{"opposites cancel", keys{common.KeyA: true, common.KeyD: true}, mgl32.Vec2{0, 0}, false},
		{"boost", keys{common.KeyS: true, common.KeyLeftShift: true}, mgl32.Vec2{0, 200}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cc := NewCameraController(WithPanSpeed(200))
			moved := cc.Update(0.5, tt.held)
			if moved != tt.moved {
				t.Errorf("Expected moved=%v, got %v", tt.moved, moved)
			}
			if !cc.Position().ApproxEqual(tt.want) {
				t.Errorf("Expected position %v, got %v", tt.want, cc.Position())
			}
		})
	}
}

func TestControllerDiagonalIsNormalized(t *testing.T) {
	cc := NewCameraController(WithPanSpeed(100))
	cc.Update(1, keys{common.KeyD: true, common.KeyS: true})

	got := cc.Position().Len()
	if math.Abs(float64(got)-100) > 1e-3 {
		t.Errorf("Expected to travel 100 pixels, got %f", got)
	}
}

func TestControllerPan(t *testing.T) {
	cc := NewCameraController(WithPosition(mgl32.Vec2{10, 10}), WithPanSpeed(-5))
	if cc.PanSpeed() != 0 {
		t.Errorf("Expected negative speed clamped to 0, got %f", cc.PanSpeed())
	}
	if cc.Update(1, keys{common.KeyD: true}) {
		t.Error("Expected a stopped camera not to move")
	}

	cc.SetPanSpeed(4)
	cc.PanRight(2)
	cc.PanDown(-1)
	if want := (mgl32.Vec2{18, 6}); !cc.Position().ApproxEqual(want) {
		t.Errorf("Expected position %v, got %v", want, cc.Position())
	}
}

func TestCenterOn(t *testing.T) {
	c := NewCamera(WithViewport(800, 600))
	c.CenterOn(mgl32.Vec2{1000, 1000})

	if want := (mgl32.Vec2{600, 700}); !c.Position().ApproxEqual(want) {
		t.Errorf("Expected top-left %v, got %v", want, c.Position())
	}
	if want := (mgl32.Vec2{1000, 1000}); !c.Center().ApproxEqual(want) {
		t.Errorf("Expected center %v, got %v", want, c.Center())
	}

	c.SetViewport(0, 300)
	if w, h := c.Viewport(); w != 800 || h != 600 {
		t.Errorf("Expected zero viewport to be ignored, got %dx%d", w, h)
	}
}
