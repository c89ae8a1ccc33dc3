package shape

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"

	"golang.org/x/sync/errgroup"

	"github.com/pthm-cable/particlemorph/config"
)

// Registry owns the precomputed buffers for every shape slot plus the shared
// phase buffer. It is immutable once built and safe to share read-only.
type Registry struct {
	n          int
	buffers    [Count]Buffer
	phases     []float64
	candidates [Count]int
}

// phaseStream is the RNG stream index used for the phase buffer.
const phaseStream = Count

// streamSeed derives an independent RNG seed per generation stream so that
// parallel generation stays reproducible for a given run seed.
func streamSeed(seed int64, stream int) int64 {
	x := uint64(seed) + uint64(stream+1)*0x9E3779B97F4A7C15
	x ^= x >> 30
	x *= 0xBF58476D1CE4E5B9
	x ^= x >> 27
	x *= 0x94D049BB133111EB
	x ^= x >> 31
	return int64(x)
}

// Build generates all shape buffers concurrently. It fails only for a
// non-positive particle count (or a cancelled context); degenerate text
// buffers are accepted and logged.
func Build(ctx context.Context, cfg *config.Config, seed int64) (*Registry, error) {
	n := cfg.Particles.Count
	if n <= 0 {
		return nil, fmt.Errorf("building shape registry: %w (got %d)", ErrInvalidCount, n)
	}

	rast, err := NewRasterizer(cfg.TextRaster)
	if err != nil {
		slog.Warn("font unavailable, falling back to Go fonts", "error", err)
		fallback := cfg.TextRaster
		fallback.FontFile = ""
		if rast, err = NewRasterizer(fallback); err != nil {
			return nil, fmt.Errorf("building shape registry: %w", err)
		}
	}

	r := &Registry{n: n}
	rngFor := func(stream int) *rand.Rand {
		return rand.New(rand.NewSource(streamSeed(seed, stream)))
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		r.buffers[Sphere] = GenerateSphere(n, cfg.Sphere.Radius)
		r.candidates[Sphere] = n
		return ctx.Err()
	})
	g.Go(func() error {
		r.buffers[Heart] = GenerateHeart(n, cfg.Heart, rngFor(int(Heart)))
		r.candidates[Heart] = n
		return ctx.Err()
	})
	g.Go(func() error {
		r.buffers[Rose] = GenerateRose(n, cfg.Rose, rngFor(int(Rose)))
		r.candidates[Rose] = n
		return ctx.Err()
	})
	for i := 0; i < config.NumTexts; i++ {
		slot := ShortText + ID(i)
		var tc config.TextConfig
		if i < len(cfg.Texts) {
			tc = cfg.Texts[i]
		}
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			buf, m, err := rast.GenerateTextCloud(tc, n, rngFor(int(slot)))
			if err != nil {
				slog.Warn("text rasterization failed", "shape", slot.String(), "error", err)
			}
			if m == 0 {
				slog.Warn("text cloud has no lit pixels, collapsing to origin", "shape", slot.String(), "text", tc.Text)
			}
			r.buffers[slot] = buf
			r.candidates[slot] = m
			return nil
		})
	}
	g.Go(func() error {
		r.phases = GenerateRandomPhases(n, rngFor(phaseStream))
		return ctx.Err()
	})

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("building shape registry: %w", err)
	}
	return r, nil
}

// Len returns the particle count N.
func (r *Registry) Len() int {
	return r.n
}

// Buffer returns the target positions for a slot, or nil for an invalid slot.
// Callers must not modify the returned slice.
func (r *Registry) Buffer(id ID) Buffer {
	if !id.Valid() {
		return nil
	}
	return r.buffers[id]
}

// Phases returns the per-particle random phases in [0,1).
// Callers must not modify the returned slice.
func (r *Registry) Phases() []float64 {
	return r.phases
}

// Candidates returns how many distinct samples backed a slot's buffer
// (N for the parametric shapes, M for text clouds).
func (r *Registry) Candidates(id ID) int {
	if !id.Valid() {
		return 0
	}
	return r.candidates[id]
}

// SizeBytes estimates the memory held by the buffers.
func (r *Registry) SizeBytes() uint64 {
	const vecBytes = 24
	return uint64(Count*r.n*vecBytes + r.n*8)
}

// LoadResult is the one-time publication of a background build.
type LoadResult struct {
	Registry *Registry
	Err      error
}

// LoadAsync builds the registry on a background goroutine. The returned
// channel receives exactly one result and is then closed.
func LoadAsync(ctx context.Context, cfg *config.Config, seed int64) <-chan LoadResult {
	out := make(chan LoadResult, 1)
	go func() {
		defer close(out)
		reg, err := Build(ctx, cfg, seed)
		out <- LoadResult{Registry: reg, Err: err}
	}()
	return out
}
