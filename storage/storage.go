// Package storage persists teams' tasks and messages through gorm and applies
// the rank maintenance that keeps each team's active tasks densely ordered.
package storage

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"teamboard/domain"
)

// Store is the relational persistence layer. Rank-changing operations on the
// same team are serialized by a per-team mutex: the read-shift-write sequence
// inside a reorder must not interleave with another reorder or append.
type Store struct {
	db    *gorm.DB
	locks teamLocks

	messagePageSize int
}

// New wraps an open gorm handle. messagePageSize is the default message page
// when the caller does not ask for a specific limit.
func New(db *gorm.DB, messagePageSize int) *Store {
	if messagePageSize <= 0 {
		messagePageSize = 50
	}
	return &Store{db: db, messagePageSize: messagePageSize}
}

// AutoMigrate creates or updates the backing tables.
func (s *Store) AutoMigrate() error {
	return s.db.AutoMigrate(&domain.User{}, &domain.Task{}, &domain.Message{})
}

type teamLocks struct {
	mu sync.Mutex
	m  map[string]*sync.Mutex
}

func (t *teamLocks) get(teamID string) *sync.Mutex {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.m == nil {
		t.m = make(map[string]*sync.Mutex)
	}
	l, ok := t.m[teamID]
	if !ok {
		l = &sync.Mutex{}
		t.m[teamID] = l
	}
	return l
}

// ListTasks returns the team's active tasks ordered by rank ascending,
// creation time descending on ties, optionally filtered by status.
func (s *Store) ListTasks(ctx context.Context, teamID string, status *domain.TaskStatus) ([]domain.Task, error) {
	q := s.db.WithContext(ctx).Where("team_id = ?", teamID)
	if status != nil {
		q = q.Where("status = ?", *status)
	}
	tasks := []domain.Task{}
	err := q.Preload("Assignee").
		Order("task_order asc").
		Order("created_at desc").
		Find(&tasks).Error
	if err != nil {
		return nil, err
	}
	return tasks, nil
}

// CreateTask appends a task at rank max+1 for its team. The append shares the
// team lock with reorders so a concurrent shift cannot hand out a duplicate
// rank.
func (s *Store) CreateTask(ctx context.Context, draft domain.TaskDraft) (domain.Task, error) {
	lock := s.locks.get(draft.TeamID)
	lock.Lock()
	defer lock.Unlock()

	task := domain.Task{
		ID:          uuid.NewString(),
		TeamID:      draft.TeamID,
		Title:       draft.Title,
		Description: draft.Description,
		Status:      draft.Status,
		Priority:    draft.Priority,
		AssigneeID:  draft.AssigneeID,
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var maxRank int
		if err := tx.Model(&domain.Task{}).
			Where("team_id = ?", draft.TeamID).
			Select("COALESCE(MAX(task_order), -1)").
			Scan(&maxRank).Error; err != nil {
			return err
		}
		task.Order = domain.NextRank(maxRank)
		return tx.Omit("Assignee").Create(&task).Error
	})
	if err != nil {
		return domain.Task{}, err
	}
	return s.getTask(ctx, task.ID)
}

// UpdateTask applies a partial update to an active task.
func (s *Store) UpdateTask(ctx context.Context, taskID string, patch domain.TaskPatch) (domain.Task, error) {
	updates := map[string]any{}
	if patch.Title != nil {
		updates["title"] = *patch.Title
	}
	if patch.Description != nil {
		updates["description"] = *patch.Description
	}
	if patch.Status != nil {
		updates["status"] = *patch.Status
	}
	if patch.Priority != nil {
		updates["priority"] = *patch.Priority
	}
	if patch.AssigneeID != nil {
		if *patch.AssigneeID == "" {
			updates["assignee_id"] = nil
		} else {
			updates["assignee_id"] = *patch.AssigneeID
		}
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var task domain.Task
		if err := tx.First(&task, "id = ?", taskID).Error; err != nil {
			return translateNotFound(err)
		}
		if len(updates) == 0 {
			return nil
		}
		return tx.Model(&task).Updates(updates).Error
	})
	if err != nil {
		return domain.Task{}, err
	}
	return s.getTask(ctx, taskID)
}

// DeleteTask soft-deletes a task and returns its last state. The vacated rank
// is deliberately not refilled: remaining tasks keep their ranks and the next
// append still takes max+1, so a gap persists until a reorder touches the
// team.
func (s *Store) DeleteTask(ctx context.Context, taskID string) (domain.Task, error) {
	var task domain.Task
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&task, "id = ?", taskID).Error; err != nil {
			return translateNotFound(err)
		}
		return tx.Delete(&task).Error
	})
	if err != nil {
		return domain.Task{}, err
	}
	return task, nil
}

// ReorderTask moves a task to newRank, shifting the active tasks between the
// old and new rank by one so the team's ranks stay dense. It returns false
// without writing anything when the task already sits at newRank. The whole
// read-shift-write sequence runs in one transaction under the team lock; if
// the shift fails, the move is not applied.
func (s *Store) ReorderTask(ctx context.Context, taskID, teamID string, newRank int) (bool, error) {
	lock := s.locks.get(teamID)
	lock.Lock()
	defer lock.Unlock()

	moved := false
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var task domain.Task
		if err := tx.First(&task, "id = ? AND team_id = ?", taskID, teamID).Error; err != nil {
			return translateNotFound(err)
		}
		shift, ok := domain.PlanMove(task.Order, newRank)
		if !ok {
			return nil
		}
		if err := tx.Model(&domain.Task{}).
			Where("team_id = ? AND task_order BETWEEN ? AND ?", teamID, shift.From, shift.To).
			UpdateColumn("task_order", gorm.Expr("task_order + ?", shift.Delta)).Error; err != nil {
			return err
		}
		if err := tx.Model(&task).Update("task_order", newRank).Error; err != nil {
			return err
		}
		moved = true
		return nil
	})
	if err != nil {
		return false, err
	}
	return moved, nil
}

// ListMessages pages through a team's messages newest-first. The cursor is a
// message ID; the page starts at that message inclusively, mirroring how the
// next cursor is taken from the first row beyond the previous page.
func (s *Store) ListMessages(ctx context.Context, teamID, cursor string, limit int) ([]domain.Message, string, error) {
	if limit <= 0 {
		limit = s.messagePageSize
	}
	q := s.db.WithContext(ctx).Where("team_id = ?", teamID)
	if cursor != "" {
		var cur domain.Message
		err := s.db.WithContext(ctx).
			First(&cur, "id = ? AND team_id = ?", cursor, teamID).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, "", domain.ErrInvalidCursor
			}
			return nil, "", err
		}
		q = q.Where("created_at < ? OR (created_at = ? AND id <= ?)",
			cur.CreatedAt, cur.CreatedAt, cur.ID)
	}

	messages := []domain.Message{}
	err := q.Preload("Author").
		Order("created_at desc").
		Order("id desc").
		Limit(limit + 1).
		Find(&messages).Error
	if err != nil {
		return nil, "", err
	}

	nextCursor := ""
	if len(messages) > limit {
		nextCursor = messages[limit].ID
		messages = messages[:limit]
	}
	return messages, nextCursor, nil
}

// CreateMessage stores a message and returns it with the author summary.
func (s *Store) CreateMessage(ctx context.Context, teamID, authorID, content string) (domain.Message, error) {
	msg := domain.Message{
		ID:       uuid.NewString(),
		TeamID:   teamID,
		AuthorID: authorID,
		Content:  content,
	}
	if err := s.db.WithContext(ctx).Omit("Author").Create(&msg).Error; err != nil {
		return domain.Message{}, err
	}
	var out domain.Message
	if err := s.db.WithContext(ctx).Preload("Author").First(&out, "id = ?", msg.ID).Error; err != nil {
		return domain.Message{}, err
	}
	return out, nil
}

// CreateUser registers an account summary row. Used by seeding and tests.
func (s *Store) CreateUser(ctx context.Context, user domain.User) error {
	return s.db.WithContext(ctx).Create(&user).Error
}

func (s *Store) getTask(ctx context.Context, taskID string) (domain.Task, error) {
	var task domain.Task
	if err := s.db.WithContext(ctx).Preload("Assignee").First(&task, "id = ?", taskID).Error; err != nil {
		return domain.Task{}, translateNotFound(err)
	}
	return task, nil
}

func translateNotFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.ErrNotFound
	}
	return err
}
