package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"

	"github.com/labstack/echo/v4"

	"teamboard/domain"
)

type mockStore struct {
	tasks      []domain.Task
	task       domain.Task
	messages   []domain.Message
	message    domain.Message
	nextCursor string
	err        error
	moved      bool

	lastTeamID  string
	lastStatus  *domain.TaskStatus
	lastDraft   domain.TaskDraft
	lastPatch   domain.TaskPatch
	lastTaskID  string
	lastNewRank int
	lastCursor  string
	lastLimit   int
	lastContent string
	lastAuthor  string
}

func (m *mockStore) ListTasks(ctx context.Context, teamID string, status *domain.TaskStatus) ([]domain.Task, error) {
	m.lastTeamID = teamID
	m.lastStatus = status
	return m.tasks, m.err
}

func (m *mockStore) CreateTask(ctx context.Context, draft domain.TaskDraft) (domain.Task, error) {
	m.lastDraft = draft
	return m.task, m.err
}

func (m *mockStore) UpdateTask(ctx context.Context, taskID string, patch domain.TaskPatch) (domain.Task, error) {
	m.lastTaskID = taskID
	m.lastPatch = patch
	return m.task, m.err
}

func (m *mockStore) DeleteTask(ctx context.Context, taskID string) (domain.Task, error) {
	m.lastTaskID = taskID
	return m.task, m.err
}

func (m *mockStore) ReorderTask(ctx context.Context, taskID, teamID string, newRank int) (bool, error) {
	m.lastTaskID = taskID
	m.lastTeamID = teamID
	m.lastNewRank = newRank
	return m.moved, m.err
}

func (m *mockStore) ListMessages(ctx context.Context, teamID, cursor string, limit int) ([]domain.Message, string, error) {
	m.lastTeamID = teamID
	m.lastCursor = cursor
	m.lastLimit = limit
	return m.messages, m.nextCursor, m.err
}

func (m *mockStore) CreateMessage(ctx context.Context, teamID, authorID, content string) (domain.Message, error) {
	m.lastTeamID = teamID
	m.lastAuthor = authorID
	m.lastContent = content
	return m.message, m.err
}

type mockAuth struct{}

func (mockAuth) UserIDFromAuthHeader(string) (string, error) { return "user1", nil }

type deniedAuth struct{}

func (deniedAuth) UserIDFromAuthHeader(string) (string, error) {
	return "", errMissingAuthorization
}

type published struct {
	kind    string
	payload any
}

type recordingBus struct {
	mu     sync.Mutex
	events []published
}

func (b *recordingBus) Publish(kind string, payload any) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, published{kind: kind, payload: payload})
}

func (b *recordingBus) all() []published {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]published, len(b.events))
	copy(out, b.events)
	return out
}

func newTestContext(method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	req.Header.Set(echo.HeaderAuthorization, "Bearer test")
	rec := httptest.NewRecorder()
	return echo.New().NewContext(req, rec), rec
}
