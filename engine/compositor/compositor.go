// Package compositor draws the tile world in two passes. The unlit pass renders the chunk window and the
// entity sprites into an offscreen texture cleared to a dim ambient color. The lighting pass then draws one
// additive quad per light onto the surface, each sampling the unlit texture. Both passes are recorded into a
// single submission.
package compositor

import (
	"errors"
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/oxy-tiles/common"
	"github.com/Carmen-Shannon/oxy-tiles/engine/atlas"
	"github.com/Carmen-Shannon/oxy-tiles/engine/chunk"
	"github.com/Carmen-Shannon/oxy-tiles/engine/entity"
	"github.com/Carmen-Shannon/oxy-tiles/engine/globals"
	"github.com/Carmen-Shannon/oxy-tiles/engine/light"
	"github.com/Carmen-Shannon/oxy-tiles/engine/renderer"
	"github.com/Carmen-Shannon/oxy-tiles/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-tiles/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-tiles/engine/tile"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/go-gl/mathgl/mgl32"
	log "github.com/sirupsen/logrus"
)

// ErrChunkOverflow is returned by WriteChunks when more chunks are given than the window holds.
var ErrChunkOverflow = errors.New("compositor: chunk window overflow")

// UnlitFormat is the texture format of the offscreen unlit target.
const UnlitFormat = wgpu.TextureFormatRGBA8Unorm

var (
	// AmbientColor clears the unlit target, leaving unlit geometry faintly visible.
	AmbientColor = wgpu.Color{R: 0.02, G: 0.02, B: 0.035, A: 1}

	// LightingClearColor clears the surface before lights are accumulated.
	LightingClearColor = wgpu.Color{R: 0, G: 0, B: 0, A: 1}
)

// Stats is a snapshot of compositor counters.
type Stats struct {
	// Frames counts presented frames.
	Frames uint64
	// SkippedFrames counts frames dropped on a transient surface condition.
	SkippedFrames uint64
	// DrawCalls is the number of draws recorded in the last presented frame.
	DrawCalls int

	Chunks         int
	Entities       int
	Lights         int
	EntityCapacity int
	LightCapacity  int
}

// compositor is the implementation of the Compositor interface.
type compositor struct {
	mu *sync.Mutex

	renderer     renderer.Renderer
	globals      globals.Manager
	maxInstances int
	ambient      wgpu.Color

	pipelines pipelines

	globalsProvider bind_group_provider.BindGroupProvider
	globalsLayout   wgpu.BindGroupLayoutDescriptor
	globalsBinding  int

	chunkProvider bind_group_provider.BindGroupProvider
	chunkLayout   wgpu.BindGroupLayoutDescriptor
	localsBinding int
	chunksBinding int
	tilesBinding  int
	atlasBinding  int

	// The last chunk window written, retained so it can be re-uploaded after the buffer is reallocated.
	chunks       []chunk.Chunk
	chunksWindow chunk.Window

	entities *instanceArena
	lights   *instanceArena

	// unlitBinding is where the unlit target lives on the light arena's provider.
	unlitBinding int

	stats Stats
}

// Compositor is the two-pass frame renderer for the tile world.
//
// All methods are called from the render thread. Data written with WriteChunks, WriteEntities and WriteLights
// stays resident until the next write and is drawn by every following Render.
type Compositor interface {
	// WriteChunks replaces the resident chunk window in one bulk upload. Chunks fill the window slots in
	// row-major order starting at origin; a short slice is padded with Void chunks.
	//
	// Parameters:
	//   - origin: the chunk coordinate of slot 0
	//   - chunks: at most ChunkWindow().Capacity() chunks
	//
	// Returns:
	//   - error: ErrChunkOverflow if there are more chunks than slots, nothing is written
	WriteChunks(origin [2]int32, chunks []chunk.Chunk) error

	// WriteEntities replaces the active entities. Each is drawn with its own call, in order.
	//
	// Parameters:
	//   - entities: the entities to draw
	//
	// Returns:
	//   - error: ErrCapacityExceeded past the instance limit, nothing is written
	WriteEntities(entities []entity.Entity) error

	// WriteLights replaces the active lights. Each is drawn with its own additive call.
	//
	// Parameters:
	//   - lights: the lights to draw, in world tiles
	//
	// Returns:
	//   - error: ErrCapacityExceeded past the instance limit, nothing is written
	WriteLights(lights []light.Light) error

	// SetCamera sets the world pixel shown at the top-left corner of the viewport.
	SetCamera(camera mgl32.Vec2)

	// Camera returns the current camera position.
	Camera() mgl32.Vec2

	// Resize rebuilds every size-dependent resource. Zero and unchanged sizes are no-ops.
	//
	// Parameters:
	//   - width: the new viewport width in pixels
	//   - height: the new viewport height in pixels
	//
	// Returns:
	//   - error: an error if a GPU resource could not be recreated
	Resize(width, height int) error

	// Render draws one frame. A transient surface condition skips the frame and returns nil.
	//
	// Returns:
	//   - error: a fatal surface error or a recording error; the frame is discarded
	Render() error

	// ChunkWindow returns the chunk window that covers the viewport at the current camera position.
	ChunkWindow() chunk.Window

	// Stats returns a snapshot of the frame counters.
	Stats() Stats

	// Release releases every GPU resource the compositor created.
	Release()
}

var _ Compositor = &compositor{}

// NewCompositor registers the compositor's pipelines with r, uploads the atlases and the tile catalog and
// allocates every buffer at the renderer's current size.
//
// Parameters:
//   - r: the rendering context
//   - atlases: the decoded tile and entity sheets
//   - options: variadic CompositorBuilderOption functions
//
// Returns:
//   - Compositor: the ready compositor
//   - error: an error if a shader, pipeline or GPU resource could not be created
func NewCompositor(r renderer.Renderer, atlases atlas.Set, options ...CompositorBuilderOption) (Compositor, error) {
	width, height := r.Size()
	c := &compositor{
		mu:           &sync.Mutex{},
		renderer:     r,
		globals:      globals.NewManager(width, height),
		maxInstances: DefaultMaxInstances,
		ambient:      AmbientColor,
	}
	for _, opt := range options {
		opt(c)
	}

	p, err := buildPipelines(UnlitFormat)
	if err != nil {
		return nil, err
	}
	c.pipelines = p
	if err := r.RegisterPipelines(p.chunk, p.entity, p.light); err != nil {
		return nil, err
	}

	if err := c.initGlobals(); err != nil {
		return nil, err
	}
	if err := c.initChunks(atlases.Tiles, width, height); err != nil {
		return nil, err
	}
	if err := c.initEntities(atlases.Entities); err != nil {
		return nil, err
	}
	if err := c.initLights(width, height); err != nil {
		return nil, err
	}

	c.writeGlobals()
	log.WithFields(log.Fields{
		"width":         width,
		"height":        height,
		"max_instances": c.maxInstances,
	}).Info("compositor ready")
	return c, nil
}

func (c *compositor) initGlobals() error {
	descs, err := c.pipelines.chunk.BindGroupLayoutDescriptors()
	if err != nil {
		return err
	}
	c.globalsLayout = descs[globalsGroup]
	if c.globalsBinding, err = lookupBinding(c.pipelines.chunk, globalsGroup, shader.AnnotationArgGlobals, ""); err != nil {
		return err
	}
	c.globalsProvider = bind_group_provider.NewBindGroupProvider("globals")
	return c.renderer.InitBindGroup(c.globalsProvider, c.globalsLayout)
}

func (c *compositor) initChunks(tiles common.TextureStagingData, width, height int) error {
	var err error
	p := c.pipelines.chunk
	if c.chunkLayout, err = instanceLayout(p); err != nil {
		return err
	}
	if c.localsBinding, err = lookupBinding(p, instanceGroup, shader.AnnotationArgChunkLocals, ""); err != nil {
		return err
	}
	if c.chunksBinding, err = lookupBinding(p, instanceGroup, shader.AnnotationArgChunk, ""); err != nil {
		return err
	}
	if c.tilesBinding, err = lookupBinding(p, instanceGroup, shader.AnnotationArgTileData, ""); err != nil {
		return err
	}
	if c.atlasBinding, err = lookupBinding(p, instanceGroup, shader.AnnotationArgTileAtlas, shader.AnnotationArgTexture); err != nil {
		return err
	}

	c.chunkProvider = bind_group_provider.NewBindGroupProvider("chunks",
		bind_group_provider.WithBufferSize(c.localsBinding, chunk.GPUChunkLocalsStride),
		bind_group_provider.WithBufferSize(c.chunksBinding, chunk.BufferSize(width, height)),
		bind_group_provider.WithBufferSize(c.tilesBinding, tile.CatalogSize),
	)
	if err := c.renderer.InitTextureView(c.chunkProvider, c.atlasBinding, tiles); err != nil {
		return err
	}
	if err := c.renderer.InitBindGroup(c.chunkProvider, c.chunkLayout); err != nil {
		return err
	}

	c.chunksWindow = chunk.WindowAt(c.globals.Camera(), width, height)
	c.renderer.WriteBuffers([]bind_group_provider.BufferWrite{
		{Provider: c.chunkProvider, Binding: c.tilesBinding, Data: tile.MarshalCatalog()},
		{Provider: c.chunkProvider, Binding: c.localsBinding, Data: c.chunksWindow.Locals().Marshal()},
	})
	return nil
}

func (c *compositor) initEntities(sheet common.TextureStagingData) error {
	p := c.pipelines.entity
	layout, err := instanceLayout(p)
	if err != nil {
		return err
	}
	entityBinding, err := lookupBinding(p, instanceGroup, shader.AnnotationArgEntity, "")
	if err != nil {
		return err
	}
	textureBinding, err := lookupBinding(p, instanceGroup, shader.AnnotationArgEntityAtlas, shader.AnnotationArgTexture)
	if err != nil {
		return err
	}
	samplerBinding, err := lookupBinding(p, instanceGroup, shader.AnnotationArgEntityAtlas, shader.AnnotationArgSampler)
	if err != nil {
		return err
	}

	c.entities = newInstanceArena("entities", entityBinding, entity.GPUEntityStride, c.maxInstances, layout)
	if err := c.renderer.InitTextureView(c.entities.provider, textureBinding, sheet); err != nil {
		return err
	}
	if err := c.renderer.InitSampler(c.entities.provider, samplerBinding, common.NearestSampler()); err != nil {
		return err
	}
	return c.renderer.InitBindGroup(c.entities.provider, layout)
}

func (c *compositor) initLights(width, height int) error {
	p := c.pipelines.light
	layout, err := instanceLayout(p)
	if err != nil {
		return err
	}
	lightBinding, err := lookupBinding(p, instanceGroup, shader.AnnotationArgLight, "")
	if err != nil {
		return err
	}
	if c.unlitBinding, err = lookupBinding(p, instanceGroup, shader.AnnotationArgUnlit, ""); err != nil {
		return err
	}

	c.lights = newInstanceArena("lights", lightBinding, light.GPULightStride, c.maxInstances, layout)
	return c.initUnlitTarget(width, height)
}

// initUnlitTarget (re)creates the unlit texture and the lighting bind group that samples it.
func (c *compositor) initUnlitTarget(width, height int) error {
	if err := c.renderer.InitRenderTarget(c.lights.provider, c.unlitBinding, uint32(width), uint32(height), UnlitFormat); err != nil {
		return err
	}
	return c.renderer.InitBindGroup(c.lights.provider, c.lights.layout)
}

func (c *compositor) writeGlobals() {
	c.renderer.WriteBuffers([]bind_group_provider.BufferWrite{{
		Provider: c.globalsProvider,
		Binding:  c.globalsBinding,
		Data:     c.globals.Globals().Marshal(),
	}})
}

func (c *compositor) WriteChunks(origin [2]int32, chunks []chunk.Chunk) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	width, height := c.globals.Resolution()
	columns, rows := chunk.WindowSize(width, height)
	win := chunk.Window{Origin: origin, Columns: columns, Rows: rows}
	if len(chunks) > win.Capacity() {
		return fmt.Errorf("%w: %d chunks for %d slots", ErrChunkOverflow, len(chunks), win.Capacity())
	}

	if err := c.uploadChunks(win, chunks); err != nil {
		return err
	}
	c.chunks = append(c.chunks[:0], chunks...)
	c.chunksWindow = win
	return nil
}

// uploadChunks writes the window's chunks padded to its capacity and its locals record.
func (c *compositor) uploadChunks(win chunk.Window, chunks []chunk.Chunk) error {
	data, err := chunk.MarshalWindow(chunks, win.Capacity())
	if err != nil {
		return fmt.Errorf("%w: %v", ErrChunkOverflow, err)
	}
	c.renderer.WriteBuffers([]bind_group_provider.BufferWrite{
		{Provider: c.chunkProvider, Binding: c.chunksBinding, Data: data},
		{Provider: c.chunkProvider, Binding: c.localsBinding, Data: win.Locals().Marshal()},
	})
	return nil
}

func (c *compositor) WriteEntities(entities []entity.Entity) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.entities.write(c.renderer, entity.MarshalEntities(entities), len(entities))
}

func (c *compositor) WriteLights(lights []light.Light) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lights.write(c.renderer, light.MarshalLights(lights), len(lights))
}

func (c *compositor) SetCamera(camera mgl32.Vec2) {
	c.globals.SetCamera(camera)
}

func (c *compositor) Camera() mgl32.Vec2 {
	return c.globals.Camera()
}

func (c *compositor) ChunkWindow() chunk.Window {
	width, height := c.globals.Resolution()
	return chunk.WindowAt(c.globals.Camera(), width, height)
}

func (c *compositor) Resize(width, height int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if width <= 0 || height <= 0 {
		return nil
	}
	if w, h := c.globals.Resolution(); w == width && h == height {
		return nil
	}

	if _, err := c.renderer.Resize(width, height); err != nil {
		return fmt.Errorf("compositor: resize surface: %w", err)
	}
	if err := c.initUnlitTarget(width, height); err != nil {
		return fmt.Errorf("compositor: resize unlit target: %w", err)
	}
	if err := c.resizeChunkBuffer(width, height); err != nil {
		return fmt.Errorf("compositor: resize chunk buffer: %w", err)
	}
	c.globals.Resize(width, height)
	c.writeGlobals()

	log.WithFields(log.Fields{"width": width, "height": height}).Debug("compositor resized")
	return nil
}

// resizeChunkBuffer reallocates the chunk buffer for the new window capacity. The retained window is uploaded
// again when it still fits, otherwise it is dropped until the next WriteChunks.
func (c *compositor) resizeChunkBuffer(width, height int) error {
	size := chunk.BufferSize(width, height)
	if size == c.chunkProvider.BufferSize(c.chunksBinding) {
		return nil
	}

	if err := reallocBuffer(c.renderer, c.chunkProvider, c.chunksBinding, size, c.chunkLayout); err != nil {
		return err
	}

	capacity := chunk.Capacity(width, height)
	if c.chunksWindow.Capacity() > capacity {
		log.WithFields(log.Fields{
			"chunks":   len(c.chunks),
			"capacity": capacity,
		}).Warn("resident chunk window no longer fits, dropped until the next write")
		c.chunks = c.chunks[:0]
		c.chunksWindow = chunk.WindowAt(c.globals.Camera(), width, height)
	}

	// The retained window keeps its own columns and rows in its locals record, so slot addressing stays
	// consistent until the caller writes a window sized for the new viewport.
	padded := chunk.Window{Origin: c.chunksWindow.Origin, Columns: c.chunksWindow.Columns, Rows: c.chunksWindow.Rows}
	data, err := chunk.MarshalWindow(c.chunks, capacity)
	if err != nil {
		return err
	}
	c.renderer.WriteBuffers([]bind_group_provider.BufferWrite{
		{Provider: c.chunkProvider, Binding: c.chunksBinding, Data: data},
		{Provider: c.chunkProvider, Binding: c.localsBinding, Data: padded.Locals().Marshal()},
	})
	return nil
}

func (c *compositor) Render() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.writeGlobals()

	if err := c.renderer.BeginFrame(); err != nil {
		if errors.Is(err, renderer.ErrFrameSkipped) {
			c.stats.SkippedFrames++
			log.WithError(err).Debug("frame skipped")
			return nil
		}
		return fmt.Errorf("compositor: %w", err)
	}

	draws, err := c.record()
	if err != nil {
		c.renderer.DiscardFrame()
		return fmt.Errorf("compositor: frame discarded: %w", err)
	}
	c.renderer.Present()

	c.stats.Frames++
	c.stats.DrawCalls = draws
	return nil
}

// record encodes the unlit and lighting passes and submits them together.
func (c *compositor) record() (int, error) {
	draws := 0
	unlit := renderer.RenderTarget{Provider: c.lights.provider, Binding: c.unlitBinding}
	if err := c.renderer.BeginPass("unlit", unlit, c.ambient); err != nil {
		return draws, err
	}

	chunkGroups := []bind_group_provider.BindGroupProvider{c.globalsProvider, c.chunkProvider}
	if err := c.renderer.DrawCall(PipelineChunk, chunkGroups, [][]uint32{nil, {0}}); err != nil {
		return draws, err
	}
	draws++

	entityGroups := []bind_group_provider.BindGroupProvider{c.globalsProvider, c.entities.provider}
	for i := range c.entities.count {
		if err := c.renderer.DrawCall(PipelineEntity, entityGroups, [][]uint32{nil, {c.entities.offset(i)}}); err != nil {
			return draws, err
		}
		draws++
	}
	if err := c.renderer.EndPass(); err != nil {
		return draws, err
	}

	if err := c.renderer.BeginPass("lighting", renderer.SurfaceTarget, LightingClearColor); err != nil {
		return draws, err
	}
	lightGroups := []bind_group_provider.BindGroupProvider{c.globalsProvider, c.lights.provider}
	for i := range c.lights.count {
		if err := c.renderer.DrawCall(PipelineLight, lightGroups, [][]uint32{nil, {c.lights.offset(i)}}); err != nil {
			return draws, err
		}
		draws++
	}
	if err := c.renderer.EndPass(); err != nil {
		return draws, err
	}

	return draws, c.renderer.EndFrame()
}

func (c *compositor) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := c.stats
	s.Chunks = len(c.chunks)
	s.Entities = c.entities.count
	s.Lights = c.lights.count
	s.EntityCapacity = c.entities.capacity
	s.LightCapacity = c.lights.capacity
	return s
}

func (c *compositor) Release() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.globalsProvider.Release()
	c.chunkProvider.Release()
	c.entities.provider.Release()
	c.lights.provider.Release()
}
