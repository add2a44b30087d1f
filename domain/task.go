package domain

import (
	"time"

	"gorm.io/gorm"
)

// TaskStatus is the workflow state of a task.
type TaskStatus string

const (
	TaskStatusTodo       TaskStatus = "todo"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusDone       TaskStatus = "done"
)

// Valid reports whether s is one of the known statuses.
func (s TaskStatus) Valid() bool {
	switch s {
	case TaskStatusTodo, TaskStatusInProgress, TaskStatusDone:
		return true
	}
	return false
}

// TaskPriority is the urgency assigned to a task.
type TaskPriority string

const (
	TaskPriorityLow    TaskPriority = "low"
	TaskPriorityMedium TaskPriority = "medium"
	TaskPriorityHigh   TaskPriority = "high"
)

// Valid reports whether p is one of the known priorities.
func (p TaskPriority) Valid() bool {
	switch p {
	case TaskPriorityLow, TaskPriorityMedium, TaskPriorityHigh:
		return true
	}
	return false
}

// Task is a single board item. Active tasks of a team hold contiguous
// zero-based ranks in Order; a soft-deleted task keeps its last rank but is
// excluded from listings and from rank maintenance.
type Task struct {
	ID          string         `gorm:"primaryKey;size:36" json:"id"`
	TeamID      string         `gorm:"size:36;not null;index:idx_tasks_team_order" json:"teamId"`
	Title       string         `gorm:"size:200;not null" json:"title"`
	Description *string        `gorm:"size:2000" json:"description,omitempty"`
	Status      TaskStatus     `gorm:"size:16;not null;default:todo" json:"status"`
	Priority    TaskPriority   `gorm:"size:16;not null;default:medium" json:"priority"`
	AssigneeID  *string        `gorm:"size:36" json:"assigneeId,omitempty"`
	Assignee    *User          `gorm:"foreignKey:AssigneeID" json:"assignee,omitempty"`
	Order       int            `gorm:"column:task_order;not null;index:idx_tasks_team_order" json:"order"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"deletedAt,omitempty"`
}

// TaskDraft carries the caller-supplied fields for a new task. The rank is
// assigned by the store on append.
type TaskDraft struct {
	TeamID      string
	Title       string
	Description *string
	Status      TaskStatus
	Priority    TaskPriority
	AssigneeID  *string
}

// TaskPatch is a partial update. Nil fields are left untouched; an empty
// AssigneeID clears the assignee.
type TaskPatch struct {
	Title       *string
	Description *string
	Status      *TaskStatus
	Priority    *TaskPriority
	AssigneeID  *string
}

// Empty reports whether the patch changes nothing.
func (p TaskPatch) Empty() bool {
	return p.Title == nil && p.Description == nil && p.Status == nil &&
		p.Priority == nil && p.AssigneeID == nil
}
