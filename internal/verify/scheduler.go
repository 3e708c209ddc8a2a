package verify

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/starford/fitch/internal/proof"
)

// ErrClosed is returned by Submit after Close.
var ErrClosed = errors.New("verify: scheduler closed")

// Pass is a finished verification run.
type Pass struct {
	ID         uuid.UUID
	Key        string
	Generation uint64
	Report     *Report
	Duration   time.Duration
}

// Scheduler runs verification passes in the background. Each document key
// has a generation counter; a pass is delivered only if no newer pass was
// submitted for the same key in the meantime, so the latest edit wins.
type Scheduler struct {
	mu   sync.Mutex
	gens map[string]uint64

	// life guards closed; Submit holds it shared while scheduling.
	life   sync.RWMutex
	closed bool

	// deliver serializes the staleness check and the callback.
	deliver sync.Mutex
	onDone  func(Pass)
	group   errgroup.Group
}

// SchedulerOption configures a Scheduler.
type SchedulerOption func(*Scheduler)

// WithWorkers bounds concurrent passes. Submit blocks while all workers are
// busy.
func WithWorkers(n int) SchedulerOption {
	return func(s *Scheduler) {
		if n > 0 {
			s.group.SetLimit(n)
		}
	}
}

// NewScheduler returns a scheduler delivering passes to onDone.
func NewScheduler(onDone func(Pass), opts ...SchedulerOption) *Scheduler {
	s := &Scheduler{gens: make(map[string]uint64), onDone: onDone}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Submit snapshots doc and verifies the snapshot in the background. It
// returns the generation assigned to the pass.
func (s *Scheduler) Submit(key string, doc *proof.Document, cfg Config) (uint64, error) {
	s.life.RLock()
	defer s.life.RUnlock()
	if s.closed {
		return 0, ErrClosed
	}

	s.mu.Lock()
	s.gens[key]++
	gen := s.gens[key]
	s.mu.Unlock()

	snapshot := doc.Clone()
	s.group.Go(func() error {
		p := Run(key, snapshot, cfg)
		p.Generation = gen
		s.finish(p)
		return nil
	})
	return gen, nil
}

// Run verifies doc synchronously and wraps the report in a Pass.
func Run(key string, doc *proof.Document, cfg Config) Pass {
	start := time.Now()
	report := Verify(doc, cfg)
	return Pass{
		ID:       uuid.New(),
		Key:      key,
		Report:   report,
		Duration: time.Since(start),
	}
}

// Forget discards the in-flight passes of key. It waits for a delivery of
// key already under way, so no stale pass is delivered after it returns.
func (s *Scheduler) Forget(key string) {
	s.deliver.Lock()
	defer s.deliver.Unlock()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gens[key]++
}

// Generation returns the latest generation submitted for key.
func (s *Scheduler) Generation(key string) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gens[key]
}

func (s *Scheduler) finish(p Pass) {
	s.deliver.Lock()
	defer s.deliver.Unlock()
	if s.Generation(p.Key) != p.Generation {
		return
	}
	if s.onDone != nil {
		s.onDone(p)
	}
}

// Close stops accepting work and waits for in-flight passes.
func (s *Scheduler) Close() {
	s.life.Lock()
	s.closed = true
	s.life.Unlock()
	_ = s.group.Wait()
}
