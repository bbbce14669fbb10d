package compose

import (
	"image"
	"testing"

	"github.com/lumastudio/beatframe/internal/raster"
)

func fill(w, h int, r, g, b uint8) *image.RGBA {
	img := raster.New(w, h)
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i+0] = r
		img.Pix[i+1] = g
		img.Pix[i+2] = b
	}
	return img
}

func TestEchoBufferCapacity(t *testing.T) {
	e := NewEchoBuffer(3) // capacity trailCount+2 = 5
	for i := 0; i < 7; i++ {
		e.Push(fill(4, 4, uint8(i*30), 0, 0))
	}
	if e.Len() != 5 {
		t.Fatalf("expected bounded buffer of 5, got %d", e.Len())
	}
	e.Clear()
	if e.Len() != 0 {
		t.Fatalf("expected empty buffer after clear, got %d", e.Len())
	}
}

func TestEchoComposeNeedsHistory(t *testing.T) {
	e := NewEchoBuffer(3)
	frame := fill(4, 4, 200, 200, 200)
	e.Push(frame)
	before := frame.Pix[0]
	// only the current frame's own snapshot exists: nothing to blend
	e.Compose(frame, 3, 2, 1.0, 0.8)
	if frame.Pix[0] != before {
		t.Fatal("compose with no prior snapshots must not touch the frame")
	}
}

func TestEchoComposeBlendsPrior(t *testing.T) {
	e := NewEchoBuffer(3)
	e.Push(fill(4, 4, 0, 0, 0))       // older, black
	frame := fill(4, 4, 255, 255, 255) // current, white
	e.Push(frame)
	e.Compose(frame, 3, 0, 0.5, 1.0)
	// the black ghost blends in at alpha 0.5
	got := frame.Pix[0]
	if got > 200 || got < 50 {
		t.Fatalf("expected mid-gray after 0.5 blend, got %d", got)
	}
}

func TestEchoSnapshotIsCopied(t *testing.T) {
	e := NewEchoBuffer(2)
	frame := fill(4, 4, 10, 10, 10)
	e.Push(frame)
	frame.Pix[0] = 250
	if e.frames[0].Pix[0] == 250 {
		t.Fatal("push must deep-copy; later frame edits leaked into the buffer")
	}
}
