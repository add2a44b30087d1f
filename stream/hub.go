// Package stream groups live client sessions by team and fans bus events out
// to them. Sessions are registered by the transport handler and removed on
// disconnect; the hub never owns a connection.
package stream

import (
	"sync"

	log "github.com/sirupsen/logrus"

	"teamboard/domain"
	"teamboard/events"
)

// Hub is the team channel multiplexer. It subscribes once to every event
// kind at construction and routes each payload to the sessions registered
// for the payload's team.
type Hub struct {
	logger *log.Logger

	mu       sync.Mutex
	sessions map[string]map[*Session]struct{}
	subs     []events.Subscription
	bus      *events.Bus
}

// NewHub creates a hub wired to bus.
func NewHub(bus *events.Bus, logger *log.Logger) *Hub {
	if logger == nil {
		logger = log.StandardLogger()
	}
	h := &Hub{
		logger:   logger,
		sessions: make(map[string]map[*Session]struct{}),
		bus:      bus,
	}
	for _, kind := range domain.EventKinds() {
		kind := kind
		h.subs = append(h.subs, bus.Subscribe(kind, func(payload any) {
			h.dispatch(kind, payload)
		}))
	}
	return h
}

// Register adds the session to its team's set. Registering the same session
// twice is a no-op.
func (h *Hub) Register(s *Session) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.sessions[s.TeamID()]
	if !ok {
		set = make(map[*Session]struct{})
		h.sessions[s.TeamID()] = set
	}
	set[s] = struct{}{}
	h.logger.WithFields(log.Fields{"team": s.TeamID(), "sessions": len(set)}).
		Debug("stream session registered")
}

// Unregister removes the session from its team's set. It is safe to call
// multiple times or after the team set is already gone; an emptied set is
// dropped so idle teams hold no resources.
func (h *Hub) Unregister(s *Session) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.sessions[s.TeamID()]
	if !ok {
		return
	}
	delete(set, s)
	if len(set) == 0 {
		delete(h.sessions, s.TeamID())
	}
}

// Close detaches the hub from the bus. Registered sessions are left to their
// transports; the hub simply stops routing to them.
func (h *Hub) Close() {
	for _, sub := range h.subs {
		h.bus.Unsubscribe(sub)
	}
}

// snapshot returns the sessions registered for teamID at this instant, so
// dispatch never iterates a set that registration is mutating.
func (h *Hub) snapshot(teamID string) []*Session {
	h.mu.Lock()
	defer h.mu.Unlock()
	set := h.sessions[teamID]
	if len(set) == 0 {
		return nil
	}
	out := make([]*Session, 0, len(set))
	for s := range set {
		out = append(out, s)
	}
	return out
}

func (h *Hub) dispatch(kind string, payload any) {
	scoped, ok := payload.(domain.TeamScoped)
	if !ok {
		h.logger.WithField("kind", kind).Warn("event payload has no team, dropping")
		return
	}
	ev := Envelope{Type: kind, Data: payload}
	for _, s := range h.snapshot(scoped.Team()) {
		if !s.Push(ev) {
			h.logger.WithFields(log.Fields{"kind": kind, "team": scoped.Team()}).
				Debug("session not keeping up, event dropped")
		}
	}
}
