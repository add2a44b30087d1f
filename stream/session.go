package stream

import "sync"

// Envelope is one framed notification pushed to a client: the event kind and
// its JSON-encoded payload.
type Envelope struct {
	Type string `json:"type"`
	Data any    `json:"data,omitempty"`
}

const sessionBuffer = 16

// Session is the server-side handle for one long-lived client connection.
// The transport handler owns its lifetime: it drains Events until the
// connection drops, then calls Close. The hub only holds a non-owning
// registration and pushes through Push.
type Session struct {
	teamID string
	ch     chan Envelope
	done   chan struct{}
	once   sync.Once
}

// NewSession creates a session watching teamID.
func NewSession(teamID string) *Session {
	return &Session{
		teamID: teamID,
		ch:     make(chan Envelope, sessionBuffer),
		done:   make(chan struct{}),
	}
}

// TeamID returns the team this session is registered for.
func (s *Session) TeamID() string { return s.teamID }

// Events is the push channel the transport drains.
func (s *Session) Events() <-chan Envelope { return s.ch }

// Done is closed when the session is closed.
func (s *Session) Done() <-chan struct{} { return s.done }

// Push hands an envelope to the session without blocking. It returns false
// when the session is closed or its buffer is full; a slow or broken
// consumer loses the event rather than delaying delivery to other sessions.
func (s *Session) Push(ev Envelope) bool {
	select {
	case <-s.done:
		return false
	default:
	}
	select {
	case s.ch <- ev:
		return true
	case <-s.done:
		return false
	default:
		return false
	}
}

// Close marks the session terminal. It is idempotent and safe to call from
// any teardown path; no push succeeds afterwards.
func (s *Session) Close() {
	s.once.Do(func() { close(s.done) })
}

// Closed reports whether Close has been called.
func (s *Session) Closed() bool {
	select {
	case <-s.done:
		return true
	default:
		return false
	}
}
