// Package notify delivers fire-and-forget outcome messages (toasts) from the
// sync engine to whatever surface is showing them.
package notify

import (
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Level classifies a notification.
type Level int

const (
	LevelSuccess Level = iota
	LevelError
)

func (l Level) String() string {
	if l == LevelError {
		return "error"
	}
	return "success"
}

// Notification is one human-readable outcome message.
type Notification struct {
	Level   Level
	Message string
	At      time.Time
}

// Notifier receives notifications. Implementations must not block; a failure
// to display is never reported back to the caller.
type Notifier interface {
	Notify(Notification)
}

// Func adapts a function to Notifier.
type Func func(Notification)

// Notify implements Notifier.
func (f Func) Notify(n Notification) {
	if f != nil {
		f(n)
	}
}

// Discard drops every notification.
var Discard Notifier = Func(nil)

// Multi fans a notification out to several sinks.
func Multi(sinks ...Notifier) Notifier {
	return Func(func(n Notification) {
		for _, s := range sinks {
			if s != nil {
				s.Notify(n)
			}
		}
	})
}

// Log writes notifications to a logrus logger.
type Log struct {
	Logger logrus.FieldLogger
}

// Notify implements Notifier.
func (l Log) Notify(n Notification) {
	if l.Logger == nil {
		return
	}
	entry := l.Logger.WithFields(logrus.Fields{"component": "notify", "outcome": n.Level.String()})
	if n.Level == LevelError {
		entry.Warn(n.Message)
		return
	}
	entry.Info(n.Message)
}

// Queue buffers notifications for a UI that polls them. It keeps at most
// Limit entries, dropping the oldest first.
type Queue struct {
	mu    sync.Mutex
	items []Notification
	Limit int
}

const defaultQueueLimit = 5

// Notify implements Notifier.
func (q *Queue) Notify(n Notification) {
	if n.At.IsZero() {
		n.At = time.Now()
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	limit := q.Limit
	if limit <= 0 {
		limit = defaultQueueLimit
	}
	q.items = append(q.items, n)
	if over := len(q.items) - limit; over > 0 {
		q.items = append([]Notification(nil), q.items[over:]...)
	}
}

// Active returns notifications younger than ttl relative to now and prunes
// the expired ones.
func (q *Queue) Active(now time.Time, ttl time.Duration) []Notification {
	q.mu.Lock()
	defer q.mu.Unlock()
	kept := q.items[:0]
	for _, n := range q.items {
		if now.Sub(n.At) < ttl {
			kept = append(kept, n)
		}
	}
	q.items = kept
	if len(kept) == 0 {
		return nil
	}
	return append([]Notification(nil), kept...)
}

// Drain returns and clears every buffered notification.
func (q *Queue) Drain() []Notification {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := q.items
	q.items = nil
	return out
}
