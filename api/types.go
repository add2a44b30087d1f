package api

import (
	"context"

	"teamboard/domain"
)

// Storage abstracts persistence for the handlers. Implemented by the gorm
// store and its caching wrapper.
type Storage interface {
	ListTasks(ctx context.Context, teamID string, status *domain.TaskStatus) ([]domain.Task, error)
	CreateTask(ctx context.Context, draft domain.TaskDraft) (domain.Task, error)
	UpdateTask(ctx context.Context, taskID string, patch domain.TaskPatch) (domain.Task, error)
	DeleteTask(ctx context.Context, taskID string) (domain.Task, error)
	ReorderTask(ctx context.Context, taskID, teamID string, newRank int) (bool, error)
	ListMessages(ctx context.Context, teamID, cursor string, limit int) ([]domain.Message, string, error)
	CreateMessage(ctx context.Context, teamID, authorID, content string) (domain.Message, error)
}

// Authenticator extracts the authenticated principal from an Authorization
// header. Team membership is the auth layer's concern, not ours.
type Authenticator interface {
	UserIDFromAuthHeader(string) (string, error)
}

// Publisher is the slice of the event bus the mutation endpoints need.
type Publisher interface {
	Publish(kind string, payload any)
}
