package storage

import (
	"context"
	"time"

	"github.com/bytedance/sonic"
	"github.com/redis/go-redis/v9"

	"teamboard/domain"
)

const taskCacheKeyPrefix = "teamboard:tasks:"

type backend interface {
	ListTasks(ctx context.Context, teamID string, status *domain.TaskStatus) ([]domain.Task, error)
	CreateTask(ctx context.Context, draft domain.TaskDraft) (domain.Task, error)
	UpdateTask(ctx context.Context, taskID string, patch domain.TaskPatch) (domain.Task, error)
	DeleteTask(ctx context.Context, taskID string) (domain.Task, error)
	ReorderTask(ctx context.Context, taskID, teamID string, newRank int) (bool, error)
	ListMessages(ctx context.Context, teamID, cursor string, limit int) ([]domain.Message, string, error)
	CreateMessage(ctx context.Context, teamID, authorID, content string) (domain.Message, error)
}

// Cache wraps a store with a Redis-backed read cache for task listings.
// Mutations write through and evict the affected team's entries; cache
// failures degrade to the base store and never fail a request.
type Cache struct {
	base  backend
	redis *redis.Client
	ttl   time.Duration
}

// NewCache creates the caching wrapper.
func NewCache(base backend, client *redis.Client, ttl time.Duration) *Cache {
	if base == nil {
		panic("storage.NewCache: base storage is nil")
	}
	if ttl < 0 {
		ttl = 0
	}
	return &Cache{base: base, redis: client, ttl: ttl}
}

func taskCacheKey(teamID string, status *domain.TaskStatus) string {
	if status == nil {
		return taskCacheKeyPrefix + teamID
	}
	return taskCacheKeyPrefix + teamID + ":" + string(*status)
}

func (c *Cache) ListTasks(ctx context.Context, teamID string, status *domain.TaskStatus) ([]domain.Task, error) {
	key := taskCacheKey(teamID, status)
	if data, err := c.redis.Get(ctx, key).Bytes(); err == nil {
		var tasks []domain.Task
		if err := sonic.Unmarshal(data, &tasks); err == nil {
			return tasks, nil
		}
	}

	tasks, err := c.base.ListTasks(ctx, teamID, status)
	if err != nil {
		return nil, err
	}
	if data, err := sonic.Marshal(tasks); err == nil {
		c.redis.Set(ctx, key, data, c.ttl)
	}
	return tasks, nil
}

func (c *Cache) CreateTask(ctx context.Context, draft domain.TaskDraft) (domain.Task, error) {
	task, err := c.base.CreateTask(ctx, draft)
	if err != nil {
		return domain.Task{}, err
	}
	c.evict(ctx, task.TeamID)
	return task, nil
}

func (c *Cache) UpdateTask(ctx context.Context, taskID string, patch domain.TaskPatch) (domain.Task, error) {
	task, err := c.base.UpdateTask(ctx, taskID, patch)
	if err != nil {
		return domain.Task{}, err
	}
	c.evict(ctx, task.TeamID)
	return task, nil
}

func (c *Cache) DeleteTask(ctx context.Context, taskID string) (domain.Task, error) {
	task, err := c.base.DeleteTask(ctx, taskID)
	if err != nil {
		return domain.Task{}, err
	}
	c.evict(ctx, task.TeamID)
	return task, nil
}

func (c *Cache) ReorderTask(ctx context.Context, taskID, teamID string, newRank int) (bool, error) {
	moved, err := c.base.ReorderTask(ctx, taskID, teamID, newRank)
	if err != nil {
		return false, err
	}
	if moved {
		c.evict(ctx, teamID)
	}
	return moved, nil
}

// Messages are not cached; listings are cursor-bound and cheap.

func (c *Cache) ListMessages(ctx context.Context, teamID, cursor string, limit int) ([]domain.Message, string, error) {
	return c.base.ListMessages(ctx, teamID, cursor, limit)
}

func (c *Cache) CreateMessage(ctx context.Context, teamID, authorID, content string) (domain.Message, error) {
	return c.base.CreateMessage(ctx, teamID, authorID, content)
}

func (c *Cache) evict(ctx context.Context, teamID string) {
	keys := []string{taskCacheKey(teamID, nil)}
	for _, st := range []domain.TaskStatus{domain.TaskStatusTodo, domain.TaskStatusInProgress, domain.TaskStatusDone} {
		st := st
		keys = append(keys, taskCacheKey(teamID, &st))
	}
	c.redis.Del(ctx, keys...)
}
