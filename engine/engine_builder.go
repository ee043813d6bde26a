package engine

import (
	"time"

	"github.com/Carmen-Shannon/oxy-tiles/engine/camera"
	"github.com/Carmen-Shannon/oxy-tiles/engine/compositor"
	"github.com/Carmen-Shannon/oxy-tiles/engine/window"
)

// EngineBuilderOption is a functional option for configuring an Engine.
// Use the With* functions to create options that are applied directly to the engine instance.
type EngineBuilderOption func(*engine)

// WithProfiling enables or disables performance profiling output.
//
// Parameters:
//   - enabled: if true, enables performance profiling
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithProfiling(enabled bool) EngineBuilderOption {
	return func(e *engine) {
		e.profilingEnabled = enabled
	}
}

// WithTickRate sets the fixed update rate in ticks per second.
// Values <= 0 will be treated as the default (60Hz).
//
// Parameters:
//   - tps: target ticks per second (default 60)
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithTickRate(tps float64) EngineBuilderOption {
	return func(e *engine) {
		e.SetTickRate(tps)
	}
}

// WithWindow sets the window whose message loop drives the engine.
//
// Parameters:
//   - w: a created Window instance
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithWindow(w window.Window) EngineBuilderOption {
	return func(e *engine) {
		e.window = w
	}
}

// WithCompositor sets the frame renderer.
//
// Parameters:
//   - c: a compositor created against the window's renderer
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithCompositor(c compositor.Compositor) EngineBuilderOption {
	return func(e *engine) {
		e.compositor = c
	}
}

// WithCamera replaces the default camera.
func WithCamera(c camera.Camera) EngineBuilderOption {
	return func(e *engine) {
		e.camera = c
	}
}

// withClock replaces the time source.
func withClock(now func() time.Time) EngineBuilderOption {
	return func(e *engine) {
		e.now = now
	}
}
