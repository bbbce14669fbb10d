// Package compose applies the thirteen visual layers to a working frame and
// owns the cross-frame state (particles, echo buffer) one render job carries.
package compose

import (
	"image"
	"math"
	"math/rand"

	"github.com/lumastudio/beatframe/internal/raster"
	"github.com/lumastudio/beatframe/internal/vision"
)

// Physics constants. These are design constants, tuned for visual parity,
// not derived quantities.
const (
	particleDrag    = 0.98 // velocity retained per step at 1s timestep scale
	particleGravity = 50.0 // px/s^2 downward
)

// Particle is one live burst particle. Owned exclusively by the System.
type Particle struct {
	X, Y     float64
	VX, VY   float64
	Size     float64
	Color    vision.RGB
	Alpha    float64
	Birth    float64
	Lifetime float64
}

// ParticleSystem simulates burst particles across frames. One instance per
// render job; instances are not safe to share between jobs.
type ParticleSystem struct {
	particles []Particle
	rng       *rand.Rand
	sprite    *image.RGBA // optional custom sprite; nil uses the soft disc
	spawned   map[int]bool
}

// NewParticleSystem creates a system with a fixed seed so renders of the
// same job are reproducible.
func NewParticleSystem(seed int64, sprite *image.RGBA) *ParticleSystem {
	return &ParticleSystem{
		rng:     rand.New(rand.NewSource(seed)),
		sprite:  sprite,
		spawned: map[int]bool{},
	}
}

// Len reports the number of live particles.
func (s *ParticleSystem) Len() int { return len(s.particles) }

// Spawned reports whether the trigger with this sequence index has already
// burst. The index is the trigger's position in its owning parameter record,
// which stays stable even if bounds animate between frames.
func (s *ParticleSystem) Spawned(triggerIndex int) bool { return s.spawned[triggerIndex] }

// SpawnBurst emits count particles on the perimeter of an ellipse fit to the
// pixel-space bounds, expanded 10%, moving radially outward. Lifetimes are
// jittered ±15% around the requested value. The triggerIndex marks the burst
// as spawned so overlapping activation windows do not double-spawn.
func (s *ParticleSystem) SpawnBurst(triggerIndex int, cx, cy, rx, ry float64, count int, colors []vision.RGB, sizeMin, sizeMax, speed, lifetime, t float64) {
	if s.spawned[triggerIndex] {
		return
	}
	s.spawned[triggerIndex] = true
	if len(colors) == 0 {
		colors = []vision.RGB{{R: 255, G: 200, B: 100}}
	}
	rx *= 1.1
	ry *= 1.1
	for i := 0; i < count; i++ {
		angle := s.rng.Float64() * 2 * math.Pi
		px := cx + math.Cos(angle)*rx
		py := cy + math.Sin(angle)*ry
		v := speed * (0.5 + s.rng.Float64()*0.5)
		s.particles = append(s.particles, Particle{
			X:        px,
			Y:        py,
			VX:       math.Cos(angle) * v,
			VY:       math.Sin(angle) * v,
			Size:     sizeMin + s.rng.Float64()*(sizeMax-sizeMin),
			Color:    colors[i%len(colors)],
			Alpha:    0.7 + s.rng.Float64()*0.3,
			Birth:    t,
			Lifetime: lifetime * (0.85 + s.rng.Float64()*0.30),
		})
	}
}

// Update advances positions by velocity, applies drag and gravity, and culls
// particles whose age has reached their lifetime.
func (s *ParticleSystem) Update(t, dt float64) {
	if dt <= 0 {
		return
	}
	live := s.particles[:0]
	for _, p := range s.particles {
		if t-p.Birth >= p.Lifetime {
			continue
		}
		p.X += p.VX * dt
		p.Y += p.VY * dt
		decay := math.Pow(particleDrag, dt)
		p.VX *= decay
		p.VY *= decay
		p.VY += particleGravity * dt
		live = append(live, p)
	}
	s.particles = live
}

// Draw renders live particles as soft discs (or the custom sprite) in spawn
// order; later particles occlude earlier ones where they overlap. Alpha
// fades linearly and size shrinks up to 50% over the lifetime fraction.
func (s *ParticleSystem) Draw(overlay *image.RGBA, t float64) {
	for _, p := range s.particles {
		frac := (t - p.Birth) / p.Lifetime
		if frac < 0 || frac >= 1 {
			continue
		}
		alpha := p.Alpha * (1 - frac)
		size := p.Size * (1 - 0.5*frac)
		if s.sprite != nil {
			raster.StampSprite(overlay, s.sprite, p.X, p.Y, size*2, alpha)
		} else {
			raster.SoftDisc(overlay, p.X, p.Y, size, p.Color.R, p.Color.G, p.Color.B, alpha)
		}
	}
}
