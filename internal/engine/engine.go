// Package engine orchestrates the review path: identity resolution, the
// spaced-repetition update, single-hop energy propagation over the content
// graph, and best-effort bandit attribution, committed as one user-store
// transaction.
package engine

import (
	"io"
	"log"
	"math/rand"
	"sync"
	"time"

	"hifz/engine/internal/content"
	"hifz/engine/internal/fsrs"
	"hifz/engine/internal/userstore"
)

// DefaultEpsilon is the no-op threshold: energy deltas below it are not
// written and do not trigger propagation.
const DefaultEpsilon = 0.001

// Engine wires the long-lived stores and services together. All dependencies
// are explicit; there is no ambient global state.
type Engine struct {
	Content  *content.Store
	Registry *content.Registry
	Users    *userstore.Store
	Model    *fsrs.Model

	epsilon float64
	logger  *log.Logger
	now     func() time.Time

	rngMu sync.Mutex
	rng   *rand.Rand
}

// Option tweaks an Engine at construction time.
type Option func(*Engine)

// WithEpsilon overrides the no-op threshold.
func WithEpsilon(eps float64) Option {
	return func(e *Engine) { e.epsilon = eps }
}

// WithRand injects the RNG used for edge-distribution sampling. Tests pass a
// seeded source for reproducible propagation.
func WithRand(rng *rand.Rand) Option {
	return func(e *Engine) { e.rng = rng }
}

// WithClock injects the time source. Tests pin it.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithLogger sets the logger for the best-effort bandit tier. Everything
// else returns errors instead of logging.
func WithLogger(l *log.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// New assembles an Engine over opened stores.
func New(cs *content.Store, reg *content.Registry, us *userstore.Store, model *fsrs.Model, opts ...Option) *Engine {
	e := &Engine{
		Content:  cs,
		Registry: reg,
		Users:    us,
		Model:    model,
		epsilon:  DefaultEpsilon,
		logger:   log.New(io.Discard, "", 0),
		now:      time.Now,
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func clampEnergy(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
