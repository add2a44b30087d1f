package domain

// Event kinds published on the bus. Events are ephemeral: never persisted,
// never replayed.
const (
	EventTaskCreated    = "task:created"
	EventTaskUpdated    = "task:updated"
	EventTaskDeleted    = "task:deleted"
	EventTaskReordered  = "task:reordered"
	EventMessageCreated = "message:created"
)

// EventKinds lists every kind the multiplexer listens on.
func EventKinds() []string {
	return []string{
		EventTaskCreated,
		EventTaskUpdated,
		EventTaskDeleted,
		EventTaskReordered,
		EventMessageCreated,
	}
}

// TeamScoped is implemented by every event payload so the multiplexer can
// route it to the sessions watching that team.
type TeamScoped interface {
	Team() string
}

// TaskEvent identifies the task touched by a create, update, or delete.
// Subscribers refetch the team's list rather than patching local state.
type TaskEvent struct {
	TaskID string `json:"taskId"`
	TeamID string `json:"teamId"`
}

func (e TaskEvent) Team() string { return e.TeamID }

// ReorderEvent signals that a team's ranks changed as a whole.
type ReorderEvent struct {
	TeamID string `json:"teamId"`
}

func (e ReorderEvent) Team() string { return e.TeamID }
