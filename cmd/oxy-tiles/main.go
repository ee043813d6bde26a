// Command oxy-tiles opens a window onto a tile world and pans over it with WASD or the arrow keys.
// Escape quits and P toggles the profiler.
package main

import (
	"os"

	"github.com/Carmen-Shannon/oxy-tiles/common"
	"github.com/Carmen-Shannon/oxy-tiles/engine"
	"github.com/Carmen-Shannon/oxy-tiles/engine/atlas"
	"github.com/Carmen-Shannon/oxy-tiles/engine/camera"
	"github.com/Carmen-Shannon/oxy-tiles/engine/compositor"
	"github.com/Carmen-Shannon/oxy-tiles/engine/config"
	"github.com/Carmen-Shannon/oxy-tiles/engine/logging"
	"github.com/Carmen-Shannon/oxy-tiles/engine/renderer"
	"github.com/Carmen-Shannon/oxy-tiles/engine/window"
	"github.com/Carmen-Shannon/oxy-tiles/engine/world"
	log "github.com/sirupsen/logrus"
)

func main() {
	if err := run(); err != nil {
		log.WithError(err).Error("oxy-tiles stopped")
		os.Exit(1)
	}
}

func run() error {
	// ── Config + Logging ────────────────────────────────────────────────
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logFile, err := logging.Setup(cfg.Log)
	if err != nil {
		return err
	}
	defer logFile.Close()

	// ── Window ──────────────────────────────────────────────────────────
	win, err := window.NewWindow(
		window.WithTitle(cfg.Window.Title),
		window.WithSize(cfg.Window.Width, cfg.Window.Height),
	)
	if err != nil {
		return err
	}
	defer win.Close()

	// ── Renderer ────────────────────────────────────────────────────────
	backend, err := renderer.ParseBackendType(cfg.Renderer.Backend)
	if err != nil {
		return err
	}
	presentMode := renderer.PresentModeUncapped
	if cfg.Renderer.VSync {
		presentMode = renderer.PresentModeVSync
	}
	r, err := renderer.NewRenderer(backend, win,
		renderer.WithPresentMode(presentMode),
		renderer.WithForceSoftwareRenderer(cfg.Renderer.ForceSoftware),
	)
	if err != nil {
		return err
	}
	defer r.Release()

	// ── Compositor ──────────────────────────────────────────────────────
	atlases, err := atlas.LoadAll()
	if err != nil {
		return err
	}
	comp, err := compositor.NewCompositor(r, atlases,
		compositor.WithMaxInstances(cfg.Renderer.MaxInstances),
	)
	if err != nil {
		return err
	}
	defer comp.Release()

	// ── World ───────────────────────────────────────────────────────────
	w, err := loadWorld(cfg.World.Path)
	if err != nil {
		return err
	}

	// ── Engine ──────────────────────────────────────────────────────────
	eng := engine.NewEngine(
		engine.WithWindow(win),
		engine.WithCompositor(comp),
		engine.WithCamera(camera.NewCamera(
			camera.WithController(camera.NewCameraController(
				camera.WithPanSpeed(cfg.Camera.PanSpeed),
			)),
		)),
		engine.WithTickRate(cfg.Engine.TickRate),
		engine.WithProfiling(cfg.Engine.Profiling),
	)
	if err := eng.SetWorld(w); err != nil {
		return err
	}

	win.SetKeyDownCallback(keyBindings(eng, cfg.Engine.Profiling))

	log.WithFields(log.Fields{
		"backend": cfg.Renderer.Backend,
		"vsync":   cfg.Renderer.VSync,
		"width":   win.Width(),
		"height":  win.Height(),
	}).Info("starting")
	return eng.Run()
}

// loadWorld reads the map at path, or builds the demo world when no path is configured. Map files carry
// only the world's name and seed, so the demo layout is placed into every loaded world.
func loadWorld(path string) (*world.World, error) {
	demo := world.Demo()
	if path == "" {
		return demo, nil
	}

	w, err := world.Load(path)
	if err != nil {
		return nil, err
	}
	w.Chunks = demo.Chunks
	w.Entities = demo.Entities
	w.Lights = demo.Lights
	return w, nil
}

// controls is the part of the engine the keyboard drives.
type controls interface {
	Quit()
	EnableProfiler()
	DisableProfiler()
}

// keyBindings maps Escape to quit and P to the profiler toggle.
func keyBindings(eng controls, profiling bool) func(keyCode uint32) {
	return func(keyCode uint32) {
		switch keyCode {
		case common.KeyEsc:
			eng.Quit()
		case common.KeyP:
			profiling = !profiling
			if profiling {
				eng.EnableProfiler()
			} else {
				eng.DisableProfiler()
			}
		}
	}
}
