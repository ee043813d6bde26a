package renderer

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNoSuitableAdapter is returned at startup when no GPU adapter is compatible with the window surface.
	ErrNoSuitableAdapter = errors.New("renderer: no suitable adapter")

	// ErrNoSuitableDevice is returned at startup when the adapter cannot provide a device with the required limits.
	ErrNoSuitableDevice = errors.New("renderer: no suitable device")

	// ErrIncompatibleSurface is returned when the surface reports no usable texture format.
	ErrIncompatibleSurface = errors.New("renderer: incompatible surface")

	// ErrFrameSkipped marks a transient surface condition. The frame is dropped and the next one is attempted.
	ErrFrameSkipped = errors.New("renderer: frame skipped")

	// ErrSurfaceFatal marks a surface condition that requires recreating the surface or exiting.
	ErrSurfaceFatal = errors.New("renderer: surface lost")

	// ErrUnknownBackend is returned when the configured backend name is not recognised.
	ErrUnknownBackend = errors.New("renderer: unknown backend")

	// ErrPipelineNotFound is returned by DrawCall for a key that was never registered.
	ErrPipelineNotFound = errors.New("renderer: pipeline not found")

	// ErrFrameState is returned when frame or pass calls are made out of order.
	ErrFrameState = errors.New("renderer: invalid frame state")
)

// SurfaceStatus classifies why the next surface texture could not be acquired.
type SurfaceStatus int

const (
	SurfaceStatusTimeout SurfaceStatus = iota
	SurfaceStatusOutdated
	SurfaceStatusLost
	SurfaceStatusOutOfMemory
	SurfaceStatusUnknown
)

func (s SurfaceStatus) String() string {
	switch s {
	case SurfaceStatusTimeout:
		return "timeout"
	case SurfaceStatusOutdated:
		return "outdated"
	case SurfaceStatusLost:
		return "lost"
	case SurfaceStatusOutOfMemory:
		return "out of memory"
	default:
		return "unknown"
	}
}

// Transient reports whether the frame can simply be skipped.
func (s SurfaceStatus) Transient() bool {
	return s == SurfaceStatusTimeout || s == SurfaceStatusOutdated
}

// SurfaceError wraps a failed surface acquisition. errors.Is matches ErrFrameSkipped for transient
// statuses and ErrSurfaceFatal for everything else.
type SurfaceError struct {
	Status SurfaceStatus
	Err    error
}

func (e *SurfaceError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("renderer: acquire surface texture: %s", e.Status)
	}
	return fmt.Sprintf("renderer: acquire surface texture: %s: %v", e.Status, e.Err)
}

func (e *SurfaceError) Unwrap() error {
	return e.Err
}

func (e *SurfaceError) Is(target error) bool {
	switch target {
	case ErrFrameSkipped:
		return e.Status.Transient()
	case ErrSurfaceFatal:
		return !e.Status.Transient()
	}
	return false
}

// classifySurfaceError maps an acquisition error from the GPU API onto a SurfaceError. The native layer only
// reports the status as text, so the message is matched case-insensitively. Unrecognised failures are fatal.
func classifySurfaceError(err error) *SurfaceError {
	if err == nil {
		return nil
	}
	var se *SurfaceError
	if errors.As(err, &se) {
		return se
	}

	msg := strings.ToLower(err.Error())
	status := SurfaceStatusUnknown
	switch {
	case strings.Contains(msg, "timeout"):
		status = SurfaceStatusTimeout
	case strings.Contains(msg, "outdated"):
		status = SurfaceStatusOutdated
	case strings.Contains(msg, "lost"):
		status = SurfaceStatusLost
	case strings.Contains(msg, "memory"):
		status = SurfaceStatusOutOfMemory
	}
	return &SurfaceError{Status: status, Err: err}
}
