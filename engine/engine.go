// Package engine runs the frame loop. Everything happens on the window thread: each message loop iteration
// runs as many fixed-step ticks as the elapsed time allows, keeps the resident chunk window in step with the
// camera, and renders one frame.
package engine

import (
	"errors"
	"time"

	"github.com/Carmen-Shannon/oxy-tiles/engine/camera"
	"github.com/Carmen-Shannon/oxy-tiles/engine/chunk"
	"github.com/Carmen-Shannon/oxy-tiles/engine/compositor"
	"github.com/Carmen-Shannon/oxy-tiles/engine/profiler"
	"github.com/Carmen-Shannon/oxy-tiles/engine/tile"
	"github.com/Carmen-Shannon/oxy-tiles/engine/window"
	"github.com/Carmen-Shannon/oxy-tiles/engine/world"
	"github.com/go-gl/mathgl/mgl32"
	log "github.com/sirupsen/logrus"
)

const (
	// maxTicksPerFrame bounds catch-up after a stall. Time beyond it is dropped.
	maxTicksPerFrame = 5

	// maxFrameDelta clamps the time credited for a single frame.
	maxFrameDelta = 250 * time.Millisecond
)

// ErrNotConfigured is returned by Run when the engine has no window or compositor.
var ErrNotConfigured = errors.New("engine: window and compositor are required")

// engine implements the Engine interface.
type engine struct {
	window     window.Window
	compositor compositor.Compositor
	camera     camera.Camera
	world      *world.World

	profiler         *profiler.Profiler
	profilingEnabled bool

	tickRate     time.Duration
	tickCallback func(deltaTime float32)

	now         func() time.Time
	lastFrame   time.Time
	accumulator time.Duration

	// The chunk window last written to the compositor.
	resident      chunk.Window
	residentValid bool

	quit bool
	err  error
}

// Engine is the main entry point for the engine.
// It owns the frame loop and keeps the compositor fed from the world and the camera.
type Engine interface {
	// Window returns the underlying window.
	//
	// Returns:
	//   - window.Window: the window instance
	Window() window.Window

	// Compositor returns the frame renderer.
	Compositor() compositor.Compositor

	// Camera returns the camera panned by the keyboard each tick.
	Camera() camera.Camera

	// World returns the loaded world.
	World() *world.World

	// SetWorld replaces the world and uploads its chunks, entities and lights.
	//
	// Parameters:
	//   - w: the world to show
	//
	// Returns:
	//   - error: an error if the instance data exceeds the compositor's limits
	SetWorld(w *world.World) error

	// EnableProfiler enables performance profiling output to the log.
	EnableProfiler()

	// DisableProfiler disables performance profiling output.
	DisableProfiler()

	// SetTickRate sets the fixed update rate in ticks per second.
	//
	// Parameters:
	//   - tps: ticks per second (defaults to 60 if <= 0)
	SetTickRate(tps float64)

	// SetTickCallback registers the function called each fixed tick, after the camera has moved.
	//
	// Parameters:
	//   - callback: function receiving the fixed delta time in seconds
	SetTickCallback(callback func(deltaTime float32))

	// Run shows the world and blocks in the window message loop until the window closes, Quit is called or
	// a frame fails fatally.
	//
	// Returns:
	//   - error: the fatal error that stopped the loop, or nil
	Run() error

	// Quit stops the loop after the current iteration. Safe to call multiple times.
	Quit()
}

var _ Engine = &engine{}

// NewEngine creates a new Engine with the provided options. The tick rate defaults to 60 per second.
//
// Parameters:
//   - options: functional options for engine configuration
//
// Returns:
//   - Engine: the newly created engine
func NewEngine(options ...EngineBuilderOption) Engine {
	e := &engine{
		profiler: profiler.NewProfiler(),
		tickRate: time.Second / 60,
		now:      time.Now,
	}
	for _, opt := range options {
		opt(e)
	}
	if e.camera == nil {
		e.camera = camera.NewCamera()
	}
	if e.window != nil {
		e.camera.SetViewport(e.window.Width(), e.window.Height())
		e.window.SetResizeCallback(e.resize)
	}
	return e
}

func (e *engine) Window() window.Window {
	return e.window
}

func (e *engine) Compositor() compositor.Compositor {
	return e.compositor
}

func (e *engine) Camera() camera.Camera {
	return e.camera
}

func (e *engine) World() *world.World {
	return e.world
}

func (e *engine) SetWorld(w *world.World) error {
	e.world = w
	if e.compositor == nil {
		return nil
	}

	if spawn, ok := w.Spawn(); ok {
		half := float32(tile.Size) / 2
		e.camera.CenterOn(spawn.Mul(tile.Size).Add(mgl32.Vec2{half, half}))
		e.compositor.SetCamera(e.camera.Position())
	}
	if err := e.compositor.WriteEntities(w.Entities); err != nil {
		return err
	}
	if err := e.compositor.WriteLights(w.AllLights()); err != nil {
		return err
	}
	e.residentValid = false
	if err := e.syncChunks(); err != nil {
		return err
	}

	log.WithFields(log.Fields{
		"world":    w.Name,
		"chunks":   len(w.Chunks),
		"entities": len(w.Entities),
		"lights":   len(w.AllLights()),
	}).Info("world loaded")
	return nil
}

func (e *engine) Run() error {
	if e.window == nil || e.compositor == nil {
		return ErrNotConfigured
	}
	if e.world == nil {
		if err := e.SetWorld(world.New("empty", 0)); err != nil {
			return err
		}
	}

	e.lastFrame = e.now()
	e.window.SetUpdateCallback(func() {
		e.frame(e.now())
	})
	e.window.ProcessMessages()
	return e.err
}

func (e *engine) Quit() {
	if e.quit {
		return
	}
	e.quit = true
	if e.window != nil {
		e.window.RequestClose()
	}
}

// fail records the first fatal error and stops the loop.
func (e *engine) fail(err error, msg string) {
	log.WithError(err).Error(msg)
	if e.err == nil {
		e.err = err
	}
	e.Quit()
}

// frame runs the fixed ticks owed since the previous frame and renders once.
func (e *engine) frame(now time.Time) {
	if e.quit {
		return
	}

	elapsed := min(max(now.Sub(e.lastFrame), 0), maxFrameDelta)
	e.lastFrame = now
	e.accumulator += elapsed

	steps := 0
	for e.accumulator >= e.tickRate && steps < maxTicksPerFrame {
		e.tick(float32(e.tickRate.Seconds()))
		e.accumulator -= e.tickRate
		steps++
		if e.quit {
			return
		}
	}
	if steps == maxTicksPerFrame {
		e.accumulator %= e.tickRate
	}

	if err := e.compositor.Render(); err != nil {
		e.fail(err, "render failed")
		return
	}

	if e.profilingEnabled {
		stats := e.compositor.Stats()
		e.profiler.Tick(log.Fields{
			"draw_calls": stats.DrawCalls,
			"skipped":    stats.SkippedFrames,
			"entities":   stats.Entities,
			"lights":     stats.Lights,
		})
	}
}

// tick advances game state by one fixed step.
func (e *engine) tick(dt float32) {
	e.profiler.CountTick()
	if e.window != nil && e.camera.Update(dt, e.window) {
		e.compositor.SetCamera(e.camera.Position())
	}
	if e.tickCallback != nil {
		e.tickCallback(dt)
	}
	if err := e.syncChunks(); err != nil {
		e.fail(err, "chunk upload failed")
	}
}

// syncChunks uploads the world's chunks for the compositor's current window when it differs from the
// resident one.
func (e *engine) syncChunks() error {
	if e.world == nil {
		return nil
	}
	win := e.compositor.ChunkWindow()
	if e.residentValid && win == e.resident {
		return nil
	}
	if err := e.compositor.WriteChunks(win.Origin, e.world.ChunkWindow(win)); err != nil {
		return err
	}
	e.resident = win
	e.residentValid = true
	log.WithFields(log.Fields{
		"origin":  win.Origin,
		"columns": win.Columns,
		"rows":    win.Rows,
	}).Debug("chunk window uploaded")
	return nil
}

// resize follows the framebuffer. A minimized window reports zero and is ignored by the compositor.
func (e *engine) resize(width, height int) {
	e.camera.SetViewport(width, height)
	if e.compositor == nil {
		return
	}
	if err := e.compositor.Resize(width, height); err != nil {
		e.fail(err, "resize failed")
		return
	}
	if err := e.syncChunks(); err != nil {
		e.fail(err, "chunk upload failed")
	}
}

func (e *engine) EnableProfiler() {
	e.profilingEnabled = true
}

func (e *engine) DisableProfiler() {
	e.profilingEnabled = false
}

func (e *engine) SetTickRate(tps float64) {
	if tps <= 0 {
		tps = 60
	}
	e.tickRate = time.Duration(float64(time.Second) / tps)
}

func (e *engine) SetTickCallback(callback func(deltaTime float32)) {
	e.tickCallback = callback
}
