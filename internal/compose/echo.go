package compose

import (
	"image"

	"github.com/lumastudio/beatframe/internal/raster"
)

// EchoBuffer keeps a bounded FIFO of pre-echo frame snapshots used to render
// ghost trails. Snapshots are captured before the echo layer itself runs so
// echoes never compound.
type EchoBuffer struct {
	frames []*image.RGBA
	cap    int
}

// NewEchoBuffer sizes the buffer for trailCount trails plus two slack slots.
func NewEchoBuffer(trailCount int) *EchoBuffer {
	return &EchoBuffer{cap: trailCount + 2}
}

// Len reports stored snapshots.
func (e *EchoBuffer) Len() int { return len(e.frames) }

// Push stores a snapshot, evicting the oldest past capacity.
func (e *EchoBuffer) Push(frame *image.RGBA) {
	e.frames = append(e.frames, raster.Clone(frame))
	for len(e.frames) > e.cap {
		e.frames = e.frames[1:]
	}
}

// Clear drops all stored frames. Called when the effect is toggled off; the
// memory is released rather than kept for a later re-enable.
func (e *EchoBuffer) Clear() { e.frames = nil }

// Compose blends up to trailCount prior snapshots (excluding the newest)
// beneath the current frame, oldest first, each offset diagonally by
// age×offsetPx and faded by intensity·decay^age.
func (e *EchoBuffer) Compose(frame *image.RGBA, trailCount int, offsetPx int, intensity, decay float64) {
	n := len(e.frames) - 1 // newest is the current frame's own snapshot
	if n > trailCount {
		n = trailCount
	}
	if n <= 0 {
		return
	}
	// oldest of the n usable snapshots first
	for k := n; k >= 1; k-- {
		idx := len(e.frames) - 1 - k
		age := k
		alpha := intensity
		for a := 0; a < age; a++ {
			alpha *= decay
		}
		raster.OverOffsetAlpha(frame, e.frames[idx], age*offsetPx, age*offsetPx, alpha)
	}
}
