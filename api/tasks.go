package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	log "github.com/sirupsen/logrus"

	"teamboard/domain"
)

type tasksResponse struct {
	Tasks []domain.Task `json:"tasks"`
}

type createTaskRequest struct {
	TeamID      string              `json:"teamId" validate:"required"`
	Title       string              `json:"title" validate:"required,min=1,max=200"`
	Description *string             `json:"description" validate:"omitempty,max=2000"`
	Status      domain.TaskStatus   `json:"status" validate:"omitempty,oneof=todo in_progress done"`
	Priority    domain.TaskPriority `json:"priority" validate:"omitempty,oneof=low medium high"`
	AssigneeID  *string             `json:"assigneeId"`
}

type updateTaskRequest struct {
	Title       *string              `json:"title" validate:"omitempty,min=1,max=200"`
	Description *string              `json:"description" validate:"omitempty,max=2000"`
	Status      *domain.TaskStatus   `json:"status" validate:"omitempty,oneof=todo in_progress done"`
	Priority    *domain.TaskPriority `json:"priority" validate:"omitempty,oneof=low medium high"`
	AssigneeID  *string              `json:"assigneeId"`
}

type reorderTaskRequest struct {
	TeamID   string `json:"teamId" validate:"required"`
	NewOrder *int   `json:"newOrder" validate:"required,gte=0"`
}

type deleteTaskResponse struct {
	Success bool   `json:"success"`
	TaskID  string `json:"taskId"`
}

func listTasks(store Storage, auth Authenticator, logger *log.Logger) echo.HandlerFunc {
	return func(c echo.Context) (err error) {
		ctx := c.Request().Context()
		metrics, spanCtx := newTaskRequestMetrics(ctx, logger)
		if spanCtx != nil {
			c.SetRequest(c.Request().WithContext(spanCtx))
			ctx = spanCtx
		}
		defer func() {
			metrics.Log(c.Response().Status, err)
		}()

		authStart := time.Now()
		_, authErr := auth.UserIDFromAuthHeader(c.Request().Header.Get(echo.HeaderAuthorization))
		metrics.ObserveAuth(time.Since(authStart))
		if authErr != nil {
			metrics.SetErrorStage("auth")
			err = c.String(http.StatusUnauthorized, authErr.Error())
			return err
		}

		teamID := c.QueryParam("teamId")
		if teamID == "" {
			metrics.SetErrorStage("missing_team")
			err = c.String(http.StatusBadRequest, "missing teamId parameter")
			return err
		}
		var status *domain.TaskStatus
		if raw := c.QueryParam("status"); raw != "" {
			st := domain.TaskStatus(raw)
			if !st.Valid() {
				metrics.SetErrorStage("invalid_status")
				err = c.String(http.StatusBadRequest, "invalid status")
				return err
			}
			status = &st
		}

		fetchStart := time.Now()
		tasks, fetchErr := store.ListTasks(ctx, teamID, status)
		metrics.ObserveFetch(time.Since(fetchStart))
		if fetchErr != nil {
			metrics.SetErrorStage("storage")
			c.Logger().Error(fetchErr)
			err = c.String(http.StatusInternalServerError, "failed to list tasks")
			return err
		}
		metrics.SetTasksReturned(len(tasks))

		err = c.JSON(http.StatusOK, tasksResponse{Tasks: tasks})
		return err
	}
}

func createTask(store Storage, auth Authenticator, bus Publisher) echo.HandlerFunc {
	return func(c echo.Context) error {
		if _, err := auth.UserIDFromAuthHeader(c.Request().Header.Get(echo.HeaderAuthorization)); err != nil {
			return c.String(http.StatusUnauthorized, err.Error())
		}
		var req createTaskRequest
		if err := decodeBody(c, &req); err != nil {
			return c.String(http.StatusBadRequest, "invalid body")
		}
		if req.Status == "" {
			req.Status = domain.TaskStatusTodo
		}
		if req.Priority == "" {
			req.Priority = domain.TaskPriorityMedium
		}

		task, err := store.CreateTask(c.Request().Context(), domain.TaskDraft{
			TeamID:      req.TeamID,
			Title:       req.Title,
			Description: req.Description,
			Status:      req.Status,
			Priority:    req.Priority,
			AssigneeID:  req.AssigneeID,
		})
		if err != nil {
			c.Logger().Error(err)
			return c.String(http.StatusInternalServerError, "failed to create task")
		}

		bus.Publish(domain.EventTaskCreated, domain.TaskEvent{TaskID: task.ID, TeamID: task.TeamID})
		return c.JSON(http.StatusCreated, task)
	}
}

func updateTask(store Storage, auth Authenticator, bus Publisher) echo.HandlerFunc {
	return func(c echo.Context) error {
		if _, err := auth.UserIDFromAuthHeader(c.Request().Header.Get(echo.HeaderAuthorization)); err != nil {
			return c.String(http.StatusUnauthorized, err.Error())
		}
		var req updateTaskRequest
		if err := decodeBody(c, &req); err != nil {
			return c.String(http.StatusBadRequest, "invalid body")
		}
		patch := domain.TaskPatch{
			Title:       req.Title,
			Description: req.Description,
			Status:      req.Status,
			Priority:    req.Priority,
			AssigneeID:  req.AssigneeID,
		}
		if patch.Empty() {
			return c.String(http.StatusBadRequest, "at least one field must be provided")
		}

		task, err := store.UpdateTask(c.Request().Context(), c.Param("id"), patch)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return c.String(http.StatusNotFound, "task not found")
			}
			c.Logger().Error(err)
			return c.String(http.StatusInternalServerError, "failed to update task")
		}

		bus.Publish(domain.EventTaskUpdated, domain.TaskEvent{TaskID: task.ID, TeamID: task.TeamID})
		return c.JSON(http.StatusOK, task)
	}
}

func deleteTask(store Storage, auth Authenticator, bus Publisher) echo.HandlerFunc {
	return func(c echo.Context) error {
		if _, err := auth.UserIDFromAuthHeader(c.Request().Header.Get(echo.HeaderAuthorization)); err != nil {
			return c.String(http.StatusUnauthorized, err.Error())
		}

		task, err := store.DeleteTask(c.Request().Context(), c.Param("id"))
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return c.String(http.StatusNotFound, "task not found")
			}
			c.Logger().Error(err)
			return c.String(http.StatusInternalServerError, "failed to delete task")
		}

		bus.Publish(domain.EventTaskDeleted, domain.TaskEvent{TaskID: task.ID, TeamID: task.TeamID})
		return c.JSON(http.StatusOK, deleteTaskResponse{Success: true, TaskID: task.ID})
	}
}

func reorderTask(store Storage, auth Authenticator, bus Publisher) echo.HandlerFunc {
	return func(c echo.Context) error {
		if _, err := auth.UserIDFromAuthHeader(c.Request().Header.Get(echo.HeaderAuthorization)); err != nil {
			return c.String(http.StatusUnauthorized, err.Error())
		}
		var req reorderTaskRequest
		if err := decodeBody(c, &req); err != nil {
			return c.String(http.StatusBadRequest, "invalid body")
		}

		moved, err := store.ReorderTask(c.Request().Context(), c.Param("id"), req.TeamID, *req.NewOrder)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return c.String(http.StatusNotFound, "task not found")
			}
			c.Logger().Error(err)
			return c.String(http.StatusInternalServerError, "failed to reorder task")
		}
		if moved {
			bus.Publish(domain.EventTaskReordered, domain.ReorderEvent{TeamID: req.TeamID})
		}
		return c.NoContent(http.StatusNoContent)
	}
}
