package state

import (
	"sort"
	"sync"
	"time"

	"github.com/labctl/labctl/internal/labapi"
)

// EntryState is the read lifecycle of one cache entry.
type EntryState int

const (
	StateEmpty EntryState = iota
	StateLoading
	StateFresh
	StateFailed
)

func (s EntryState) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateFresh:
		return "fresh"
	case StateFailed:
		return "failed"
	default:
		return "empty"
	}
}

// Entry is a copy of one cached list snapshot.
type Entry struct {
	Key        labapi.FilterKey
	State      EntryState
	Labs       []labapi.Lab
	Err        error
	Stale      bool   // invalidated since the last completed read
	Generation uint64 // generation of the read that produced Labs/Err
	UpdatedAt  time.Time
}

// Ready reports whether the entry can be served without a network call.
func (e Entry) Ready() bool {
	return e.State == StateFresh && !e.Stale
}

type cacheEntry struct {
	Entry
	settled EntryState // state of the last accepted write
	pending uint64     // newest generation handed out by Begin
	floor   uint64     // generations <= floor were issued before an invalidation
}

// Cache holds one list snapshot per filter key. Reads are stamped with a
// monotonically increasing generation so that a response issued before an
// invalidation, or older than what is already stored, never overwrites newer
// data regardless of completion order.
type Cache struct {
	mu      sync.RWMutex
	seq     uint64
	entries map[labapi.FilterKey]*cacheEntry
	now     func() time.Time
}

// NewCache returns an empty cache.
func NewCache() *Cache {
	return &Cache{
		entries: make(map[labapi.FilterKey]*cacheEntry),
		now:     time.Now,
	}
}

// Read returns a copy of the entry for key. Unknown keys read as StateEmpty.
func (c *Cache) Read(key labapi.FilterKey) Entry {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[key]
	if !ok {
		return Entry{Key: key, State: StateEmpty}
	}
	out := e.Entry
	out.Labs = labapi.CloneLabs(e.Labs)
	return out
}

// Begin allocates a generation for a new read of key and marks the entry
// loading.
func (c *Cache) Begin(key labapi.FilterKey) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	e := c.ensure(key)
	c.seq++
	e.pending = c.seq
	e.State = StateLoading
	return c.seq
}

// Write stores the outcome of the read stamped gen. It returns false when the
// read was superseded and the outcome discarded.
func (c *Cache) Write(key labapi.FilterKey, labs []labapi.Lab, err error, gen uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	e := c.ensure(key)
	if gen <= e.floor || gen < e.Generation {
		if e.State == StateLoading && e.pending <= e.floor {
			e.State = e.settled
		}
		return false
	}

	if err != nil {
		e.settled = StateFailed
		e.Labs = nil
		e.Err = err
	} else {
		e.settled = StateFresh
		e.Labs = labapi.CloneLabs(labs)
		if e.Labs == nil {
			e.Labs = []labapi.Lab{}
		}
		e.Err = nil
	}
	e.State = e.settled
	if e.pending > gen {
		// A newer read is still in flight.
		e.State = StateLoading
	}
	e.Generation = gen
	e.Stale = false
	e.UpdatedAt = c.now()
	return true
}

// Invalidate marks the given entries (all entries when keys is empty) stale.
// Reads already in flight for them will be discarded when they complete.
func (c *Cache) Invalidate(keys ...labapi.FilterKey) {
	c.mu.Lock()
	defer c.mu.Unlock()

	targets := keys
	if len(targets) == 0 {
		targets = make([]labapi.FilterKey, 0, len(c.entries))
		for k := range c.entries {
			targets = append(targets, k)
		}
	}
	for _, k := range targets {
		e, ok := c.entries[k]
		if !ok {
			continue
		}
		e.floor = c.seq
		e.Stale = true
		if e.State == StateLoading {
			e.State = e.settled
		}
	}
}

// Floor returns the invalidation floor of key. Reads that share a floor see
// the same server state and may be coalesced.
func (c *Cache) Floor(key labapi.FilterKey) uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if e, ok := c.entries[key]; ok {
		return e.floor
	}
	return 0
}

// Keys lists the keys that have entries, in FilterKey order.
func (c *Cache) Keys() []labapi.FilterKey {
	c.mu.RLock()
	defer c.mu.RUnlock()
	keys := make([]labapi.FilterKey, 0, len(c.entries))
	for k := range c.entries {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

func (c *Cache) ensure(key labapi.FilterKey) *cacheEntry {
	e, ok := c.entries[key]
	if !ok {
		e = &cacheEntry{Entry: Entry{Key: key, State: StateEmpty}}
		c.entries[key] = e
	}
	return e
}
