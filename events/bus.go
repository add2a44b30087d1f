// Package events provides the in-process publish/subscribe bus that decouples
// mutation endpoints from notification delivery. Dispatch is synchronous on
// the publishing call stack; there is no buffering, persistence, or retry. A
// payload is delivered only to listeners registered at the moment of publish.
package events

import (
	"sync"

	log "github.com/sirupsen/logrus"
)

// Listener receives the payload published for the kind it subscribed to.
type Listener func(payload any)

// Subscription identifies one registration and is required to unsubscribe.
type Subscription struct {
	kind string
	id   uint64
}

type entry struct {
	id uint64
	fn Listener
}

// Bus is a typed pub/sub registry. It is constructed explicitly and injected
// into the endpoints and the multiplexer; there is no package-level instance.
type Bus struct {
	logger *log.Logger

	mu        sync.RWMutex
	nextID    uint64
	listeners map[string][]entry
}

// New creates an empty bus. A nil logger falls back to the standard one.
func New(logger *log.Logger) *Bus {
	if logger == nil {
		logger = log.StandardLogger()
	}
	return &Bus{
		logger:    logger,
		listeners: make(map[string][]entry),
	}
}

// Subscribe registers fn for kind and returns the handle needed to remove it.
func (b *Bus) Subscribe(kind string, fn Listener) Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	b.listeners[kind] = append(b.listeners[kind], entry{id: b.nextID, fn: fn})
	return Subscription{kind: kind, id: b.nextID}
}

// Unsubscribe removes exactly one registration. Unsubscribing a handle that
// is no longer registered is a no-op.
func (b *Bus) Unsubscribe(sub Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()
	ls := b.listeners[sub.kind]
	for i, e := range ls {
		if e.id == sub.id {
			b.listeners[sub.kind] = append(ls[:i:i], ls[i+1:]...)
			return
		}
	}
}

// Publish invokes every listener currently registered for kind, in
// registration order. A panicking listener is logged and isolated so it
// neither blocks later listeners nor reaches the publishing endpoint.
func (b *Bus) Publish(kind string, payload any) {
	b.mu.RLock()
	snapshot := b.listeners[kind]
	b.mu.RUnlock()
	for _, e := range snapshot {
		b.invoke(kind, e, payload)
	}
}

func (b *Bus) invoke(kind string, e entry, payload any) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.WithFields(log.Fields{
				"kind":     kind,
				"listener": e.id,
				"panic":    r,
			}).Error("event listener panicked")
		}
	}()
	e.fn(payload)
}
