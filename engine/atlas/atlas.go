// Package atlas decodes the tile and entity sprite sheets bundled into the binary. Both sheets are paletted
// GIFs laid out in 16x16 pixel cells.
package atlas

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"image"
	"image/gif"
	"io"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/oxy-tiles/common"
	log "github.com/sirupsen/logrus"
	"golang.org/x/image/draw"
)

//go:embed assets/tiles.gif
var tilesGIF []byte

//go:embed assets/entities.gif
var entitiesGIF []byte

// ErrAtlasDecode is returned when a bundled sheet is missing or corrupt. There is no fallback texture.
var ErrAtlasDecode = errors.New("atlas: decode failed")

// Set holds the decoded sheets uploaded by the compositor.
type Set struct {
	Tiles    common.TextureStagingData
	Entities common.TextureStagingData
}

// Decode reads a GIF and converts its first frame to tightly packed RGBA. Transparent palette entries become
// fully transparent texels.
//
// Parameters:
//   - r: the GIF source
//
// Returns:
//   - common.TextureStagingData: RGBA pixels with their dimensions
//   - error: an error wrapping ErrAtlasDecode if the image cannot be decoded
func Decode(r io.Reader) (common.TextureStagingData, error) {
	img, err := gif.Decode(r)
	if err != nil {
		return common.TextureStagingData{}, fmt.Errorf("%w: %v", ErrAtlasDecode, err)
	}
	bounds := img.Bounds()
	if bounds.Empty() {
		return common.TextureStagingData{}, fmt.Errorf("%w: empty image", ErrAtlasDecode)
	}

	// frames may sit at an offset inside the logical screen; the texture starts at the frame's origin
	rgba := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Copy(rgba, image.Point{}, img, bounds, draw.Src, nil)

	return common.TextureStagingData{
		Pixels: rgba.Pix,
		Width:  uint32(bounds.Dx()),
		Height: uint32(bounds.Dy()),
	}, nil
}

// LoadAll decodes both bundled sheets concurrently on a short-lived worker pool and waits for them. It runs
// once at startup, before any GPU resource exists.
//
// Returns:
//   - Set: the decoded tile and entity sheets
//   - error: the joined decode errors, each wrapping ErrAtlasDecode
func LoadAll() (Set, error) {
	return load(map[string][]byte{
		"tiles":    tilesGIF,
		"entities": entitiesGIF,
	})
}

// newPool builds the decode pool, replaced in tests to observe its lifecycle.
var newPool = worker.NewDynamicWorkerPool

func load(sources map[string][]byte) (Set, error) {
	pool := newPool(len(sources), len(sources), time.Second)
	defer pool.Stop()

	// pool.Wait only waits for the queue to drain, not for dequeued tasks to finish
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		decoded = make(map[string]common.TextureStagingData, len(sources))
		errs    []error
	)

	id := 0
	for name, data := range sources {
		wg.Add(1)
		pool.SubmitTask(worker.Task{
			ID: id,
			Do: func() (any, error) {
				defer wg.Done()
				start := time.Now()
				tex, err := Decode(bytes.NewReader(data))

				mu.Lock()
				defer mu.Unlock()
				if err != nil {
					errs = append(errs, fmt.Errorf("%s: %w", name, err))
					return nil, err
				}
				decoded[name] = tex
				log.WithFields(log.Fields{
					"sheet":    name,
					"width":    tex.Width,
					"height":   tex.Height,
					"duration": time.Since(start),
				}).Debug("decoded atlas")
				return tex, nil
			},
		})
		id++
	}
	wg.Wait()

	if len(errs) > 0 {
		return Set{}, errors.Join(errs...)
	}
	return Set{Tiles: decoded["tiles"], Entities: decoded["entities"]}, nil
}
