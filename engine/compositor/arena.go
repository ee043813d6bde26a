package compositor

import (
	"errors"
	"fmt"

	"github.com/Carmen-Shannon/oxy-tiles/common"
	"github.com/Carmen-Shannon/oxy-tiles/engine/renderer"
	"github.com/Carmen-Shannon/oxy-tiles/engine/renderer/bind_group_provider"
	"github.com/cogentcore/webgpu/wgpu"
	log "github.com/sirupsen/logrus"
)

const (
	// MinInstanceCapacity is the number of records an instance arena starts with.
	MinInstanceCapacity = 16

	// DefaultMaxInstances bounds arena growth when no limit is configured.
	DefaultMaxInstances = 4096
)

// ErrCapacityExceeded is returned when more instances are written than the arena may grow to. Nothing is
// written and the previous contents stay active.
var ErrCapacityExceeded = errors.New("compositor: instance capacity exceeded")

// instanceArena is a dynamic uniform buffer of fixed-stride records, one per draw call. Record i lives at
// byte i*stride, which is the dynamic offset of its draw.
type instanceArena struct {
	name     string
	provider bind_group_provider.BindGroupProvider
	binding  int
	layout   wgpu.BindGroupLayoutDescriptor

	stride      int
	capacity    int
	maxCapacity int
	count       int
}

func newInstanceArena(name string, binding, stride, maxCapacity int, layout wgpu.BindGroupLayoutDescriptor) *instanceArena {
	capacity := min(MinInstanceCapacity, maxCapacity)
	return &instanceArena{
		name:        name,
		provider:    bind_group_provider.NewBindGroupProvider(name, bind_group_provider.WithBufferSize(binding, uint64(capacity*stride))),
		binding:     binding,
		layout:      layout,
		stride:      stride,
		capacity:    capacity,
		maxCapacity: maxCapacity,
	}
}

// write replaces the arena contents with n packed records. The buffer is reallocated to the next power of
// two when n exceeds the current capacity, which also rebuilds the bind group.
func (a *instanceArena) write(r renderer.Renderer, data []byte, n int) error {
	if n > a.maxCapacity {
		return fmt.Errorf("%w: %d %s, limit %d", ErrCapacityExceeded, n, a.name, a.maxCapacity)
	}
	if len(data) != n*a.stride {
		return fmt.Errorf("compositor: %s data is %d bytes, want %d", a.name, len(data), n*a.stride)
	}

	if n > a.capacity {
		capacity := min(max(common.NextPowerOfTwo(n), MinInstanceCapacity), a.maxCapacity)
		if err := reallocBuffer(r, a.provider, a.binding, uint64(capacity*a.stride), a.layout); err != nil {
			return fmt.Errorf("compositor: grow %s: %w", a.name, err)
		}
		log.WithFields(log.Fields{
			"arena": a.name,
			"from":  a.capacity,
			"to":    capacity,
		}).Info("instance buffer grown")
		a.capacity = capacity
	}

	if n > 0 {
		r.WriteBuffers([]bind_group_provider.BufferWrite{{
			Provider: a.provider,
			Binding:  a.binding,
			Offset:   0,
			Data:     data,
		}})
	}
	a.count = n
	return nil
}

// reallocBuffer replaces the buffer at binding with one of size bytes and rebuilds the bind group around it.
// The old buffer is released only once the new bind group exists. On failure the provider keeps the old
// buffer, size and bind group.
func reallocBuffer(r renderer.Renderer, provider bind_group_provider.BindGroupProvider, binding int, size uint64, layout wgpu.BindGroupLayoutDescriptor) error {
	oldSize := provider.BufferSize(binding)
	old := provider.DetachBuffer(binding)
	provider.SetBufferSize(binding, size)

	if err := r.InitBindGroup(provider, layout); err != nil {
		provider.ReleaseBuffer(binding)
		provider.SetBuffer(binding, old)
		provider.SetBufferSize(binding, oldSize)
		return err
	}
	if old != nil {
		old.Release()
	}
	return nil
}

// offset returns the dynamic offset of record i.
func (a *instanceArena) offset(i int) uint32 {
	return uint32(i * a.stride)
}
