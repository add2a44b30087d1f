package api

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus/hooks/test"

	"teamboard/domain"
	"teamboard/events"
	"teamboard/stream"
)

// syncRecorder is a thread-safe response writer: the handler writes from its
// own goroutine while the test polls the body.
type syncRecorder struct {
	mu     sync.Mutex
	buf    bytes.Buffer
	header http.Header
	status int
}

func newSyncRecorder() *syncRecorder {
	return &syncRecorder{header: make(http.Header)}
}

func (r *syncRecorder) Header() http.Header {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.header
}

func (r *syncRecorder) Write(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.buf.Write(p)
}

func (r *syncRecorder) WriteHeader(status int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.status = status
}

func (r *syncRecorder) Flush() {}

func (r *syncRecorder) BodyString() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.buf.String()
}

func (r *syncRecorder) Status() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.status
}

func waitForBody(t *testing.T, rec *syncRecorder, substr string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if strings.Contains(rec.BodyString(), substr) {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("body never contained %q: %s", substr, rec.BodyString())
}

func startStream(t *testing.T, hub *stream.Hub, keepalive time.Duration) (*syncRecorder, context.CancelFunc, chan struct{}) {
	t.Helper()
	logger, _ := test.NewNullLogger()

	ctx, cancel := context.WithCancel(context.Background())
	req := httptest.NewRequest(http.MethodGet, "/api/events?teamId=t1", nil).WithContext(ctx)
	req.Header.Set(echo.HeaderAuthorization, "Bearer test")
	rec := newSyncRecorder()
	c := echo.New().NewContext(req, rec)

	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := streamEvents(hub, mockAuth{}, keepalive, logger)(c); err != nil {
			t.Errorf("handler: %v", err)
		}
	}()
	return rec, cancel, done
}

// recordingAuth captures the header the handler presents for verification.
type recordingAuth struct {
	mu     sync.Mutex
	header string
}

func (a *recordingAuth) UserIDFromAuthHeader(h string) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.header = h
	if h == "" {
		return "", errMissingAuthorization
	}
	return "user1", nil
}

func (a *recordingAuth) seen() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.header
}

// EventSource cannot set request headers, so a ?token= query parameter must
// work as a stand-in for the Authorization header.
func TestStreamEventsTokenQueryFallback(t *testing.T) {
	logger, _ := test.NewNullLogger()
	bus := events.New(logger)
	hub := stream.NewHub(bus, logger)
	defer hub.Close()

	auth := &recordingAuth{}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	req := httptest.NewRequest(http.MethodGet, "/api/events?teamId=t1&token=query-token", nil).WithContext(ctx)
	rec := newSyncRecorder()
	c := echo.New().NewContext(req, rec)

	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := streamEvents(hub, auth, time.Minute, logger)(c); err != nil {
			t.Errorf("handler: %v", err)
		}
	}()

	waitForBody(t, rec, `"type":"connected"`)
	if got := auth.seen(); got != "Bearer query-token" {
		t.Fatalf("expected token to be presented as a bearer header, got %q", got)
	}

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("handler did not return after disconnect")
	}
}

func TestStreamEventsRequiresTeam(t *testing.T) {
	logger, _ := test.NewNullLogger()
	bus := events.New(logger)
	hub := stream.NewHub(bus, logger)
	defer hub.Close()

	c, rec := newTestContext(http.MethodGet, "/api/events", "")
	if err := streamEvents(hub, mockAuth{}, time.Minute, logger)(c); err != nil {
		t.Fatalf("handler: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestStreamEventsUnauthorized(t *testing.T) {
	logger, _ := test.NewNullLogger()
	bus := events.New(logger)
	hub := stream.NewHub(bus, logger)
	defer hub.Close()

	c, rec := newTestContext(http.MethodGet, "/api/events?teamId=t1", "")
	if err := streamEvents(hub, deniedAuth{}, time.Minute, logger)(c); err != nil {
		t.Fatalf("handler: %v", err)
	}
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestStreamEventsDeliversTeamEvents(t *testing.T) {
	logger, _ := test.NewNullLogger()
	bus := events.New(logger)
	hub := stream.NewHub(bus, logger)
	defer hub.Close()

	rec, cancel, done := startStream(t, hub, time.Minute)
	defer cancel()

	waitForBody(t, rec, `"type":"connected"`)
	if rec.Status() != http.StatusOK {
		t.Fatalf("unexpected status %d", rec.Status())
	}
	if ct := rec.Header().Get(echo.HeaderContentType); ct != "text/event-stream" {
		t.Fatalf("unexpected content type %q", ct)
	}

	bus.Publish(domain.EventTaskCreated, domain.TaskEvent{TaskID: "task1", TeamID: "t1"})
	waitForBody(t, rec, `"type":"task:created"`)
	waitForBody(t, rec, `"taskId":"task1"`)

	// Events for other teams never reach this stream.
	bus.Publish(domain.EventTaskDeleted, domain.TaskEvent{TaskID: "other", TeamID: "t2"})
	bus.Publish(domain.EventTaskUpdated, domain.TaskEvent{TaskID: "task1", TeamID: "t1"})
	waitForBody(t, rec, `"type":"task:updated"`)
	if strings.Contains(rec.BodyString(), `"taskId":"other"`) {
		t.Fatal("received event for a different team")
	}

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("handler did not return after disconnect")
	}
}

func TestStreamEventsKeepalive(t *testing.T) {
	logger, _ := test.NewNullLogger()
	bus := events.New(logger)
	hub := stream.NewHub(bus, logger)
	defer hub.Close()

	rec, cancel, done := startStream(t, hub, 10*time.Millisecond)
	defer cancel()

	waitForBody(t, rec, `"type":"connected"`)
	waitForBody(t, rec, ":keepalive\n\n")

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("handler did not return after disconnect")
	}
}
