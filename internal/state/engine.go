package state

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"

	"github.com/labctl/labctl/internal/labapi"
	"github.com/labctl/labctl/internal/logging"
	"github.com/labctl/labctl/internal/notify"
)

// Engine keeps the list cache in step with server writes. Reads are served
// from the cache while fresh and coalesced while in flight; every successful
// mutation invalidates all cached lists. Nothing is applied optimistically.
type Engine struct {
	svc      labapi.Service
	cache    *Cache
	flights  singleflight.Group
	notifier notify.Notifier
	log      logrus.FieldLogger
	now      func() time.Time

	mu      sync.Mutex
	active  labapi.FilterKey
	seq     uint64
	pending map[uint64]Mutation
}

// EngineOption customises an Engine.
type EngineOption func(*Engine)

// WithNotifier sets the sink for mutation outcome messages.
func WithNotifier(n notify.Notifier) EngineOption {
	return func(e *Engine) {
		if n != nil {
			e.notifier = n
		}
	}
}

// WithLogger sets the engine logger.
func WithLogger(log logrus.FieldLogger) EngineOption {
	return func(e *Engine) {
		if log != nil {
			e.log = log
		}
	}
}

// WithClock overrides time.Now, for tests.
func WithClock(now func() time.Time) EngineOption {
	return func(e *Engine) {
		if now != nil {
			e.now = now
			e.cache.now = now
		}
	}
}

// NewEngine builds an Engine on top of svc.
func NewEngine(svc labapi.Service, opts ...EngineOption) *Engine {
	e := &Engine{
		svc:      svc,
		cache:    NewCache(),
		notifier: notify.Discard,
		log:      logging.Discard(),
		now:      time.Now,
		pending:  make(map[uint64]Mutation),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.log = e.log.WithField("component", "sync")
	return e
}

// SetFilter records the filter the UI is showing.
func (e *Engine) SetFilter(key labapi.FilterKey) {
	e.mu.Lock()
	e.active = key
	e.mu.Unlock()
}

// ActiveFilter returns the filter the UI is showing.
func (e *Engine) ActiveFilter() labapi.FilterKey {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.active
}

// Read returns the cached entry for key without touching the network.
func (e *Engine) Read(key labapi.FilterKey) Entry {
	return e.cache.Read(key)
}

// Fetch returns the entry for key, loading it only when it is not fresh.
func (e *Engine) Fetch(ctx context.Context, key labapi.FilterKey) (Entry, error) {
	if entry := e.cache.Read(key); entry.Ready() {
		return entry, nil
	}
	return e.load(ctx, key)
}

// Refresh loads key from the server even when the cached entry is fresh.
func (e *Engine) Refresh(ctx context.Context, key labapi.FilterKey) (Entry, error) {
	return e.load(ctx, key)
}

// Invalidate marks cached lists stale; no keys means every list.
func (e *Engine) Invalidate(keys ...labapi.FilterKey) {
	e.cache.Invalidate(keys...)
}

// load runs at most one List call per key and invalidation floor. Callers that
// arrive while it is in flight share its outcome.
func (e *Engine) load(ctx context.Context, key labapi.FilterKey) (Entry, error) {
	flight := fmt.Sprintf("%s@%d", key, e.cache.Floor(key))
	_, err, shared := e.flights.Do(flight, func() (any, error) {
		gen := e.cache.Begin(key)
		log := e.log.WithFields(logrus.Fields{"filter": key.String(), "generation": gen})
		// The request outlives any single caller that joined the flight.
		labs, err := e.svc.List(context.WithoutCancel(ctx), key)
		if !e.cache.Write(key, labs, err, gen) {
			log.Debug("discarded superseded list response")
			return nil, err
		}
		if err != nil {
			log.WithError(err).Warn("list labs failed")
			return nil, err
		}
		log.WithField("count", len(labs)).Debug("list labs refreshed")
		return nil, nil
	})
	if shared {
		e.log.WithField("filter", key.String()).Debug("joined in-flight list request")
	}
	return e.cache.Read(key), err
}

// Get fetches a single lab. Single reads are not cached.
func (e *Engine) Get(ctx context.Context, id string) (labapi.Lab, error) {
	return e.svc.Get(ctx, id)
}

// Create posts a new lab.
func (e *Engine) Create(ctx context.Context, draft labapi.CreateLabRequest) Mutation {
	return e.mutate(ctx, KindCreate, "", func(ctx context.Context) (*labapi.Lab, error) {
		lab, err := e.svc.Create(ctx, draft)
		return &lab, err
	})
}

// Update overwrites the editable fields of lab id.
func (e *Engine) Update(ctx context.Context, id string, draft labapi.CreateLabRequest) Mutation {
	return e.mutate(ctx, KindUpdate, id, func(ctx context.Context) (*labapi.Lab, error) {
		lab, err := e.svc.Update(ctx, id, draft)
		return &lab, err
	})
}

// Delete removes lab id.
func (e *Engine) Delete(ctx context.Context, id string) Mutation {
	return e.mutate(ctx, KindDelete, id, func(ctx context.Context) (*labapi.Lab, error) {
		return nil, e.svc.Delete(ctx, id)
	})
}

// Toggle flips the active flag of lab id.
func (e *Engine) Toggle(ctx context.Context, id string) Mutation {
	return e.mutate(ctx, KindToggle, id, func(ctx context.Context) (*labapi.Lab, error) {
		lab, err := e.svc.ToggleStatus(ctx, id)
		return &lab, err
	})
}

// Pending lists mutations still awaiting the server, oldest first.
func (e *Engine) Pending() []Mutation {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]Mutation, 0, len(e.pending))
	for _, m := range e.pending {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// IsPending reports whether a mutation against lab id is in flight.
func (e *Engine) IsPending(id string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, m := range e.pending {
		if m.LabID == id {
			return true
		}
	}
	return false
}

func (e *Engine) mutate(ctx context.Context, kind MutationKind, id string, call func(context.Context) (*labapi.Lab, error)) Mutation {
	e.mu.Lock()
	e.seq++
	m := Mutation{ID: e.seq, Kind: kind, LabID: id, Status: MutationPending, StartedAt: e.now()}
	e.pending[m.ID] = m
	e.mu.Unlock()

	log := e.log.WithFields(logrus.Fields{"mutation": m.ID, "kind": kind.String()})
	if id != "" {
		log = log.WithField("lab_id", id)
	}

	lab, err := call(ctx)

	e.mu.Lock()
	delete(e.pending, m.ID)
	e.mu.Unlock()

	m.FinishedAt = e.now()
	msgs := mutationMessages[kind]
	if err != nil {
		m.Status = MutationFailed
		m.Err = err
		log.WithError(err).Warn("mutation failed")
		e.notifier.Notify(notify.Notification{Level: notify.LevelError, Message: msgs.failure, At: m.FinishedAt})
		return m
	}

	m.Status = MutationSucceeded
	m.Lab = lab
	if m.LabID == "" && lab != nil {
		m.LabID = lab.ID
	}
	// Create, delete and toggle can change membership under any filter.
	e.cache.Invalidate()
	log.WithField("elapsed", m.FinishedAt.Sub(m.StartedAt)).Info("mutation succeeded")
	e.notifier.Notify(notify.Notification{Level: notify.LevelSuccess, Message: msgs.success, At: m.FinishedAt})
	return m
}
