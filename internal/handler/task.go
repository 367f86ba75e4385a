package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/office-operations/internal/cache"
	"github.com/iliyamo/office-operations/internal/realtime"
	"github.com/iliyamo/office-operations/internal/repository"
	"github.com/iliyamo/office-operations/internal/service"
)

// TaskHandler bundles dependencies for task endpoints.  Every mutation
// follows the same shape: durable write decides the response, then the
// coordinator purges the task snapshots and notifies the office room and
// the assignee's personal room.
type TaskHandler struct {
	Tasks   *repository.TaskRepo
	Users   *repository.UserRepo
	Offices *repository.OfficeRepo
	Cache   *cache.Store
	Coord   *service.Coordinator
}

func NewTaskHandler(tasks *repository.TaskRepo, users *repository.UserRepo, offices *repository.OfficeRepo, store *cache.Store, coord *service.Coordinator) *TaskHandler {
	return &TaskHandler{Tasks: tasks, Users: users, Offices: offices, Cache: store, Coord: coord}
}

// Create handles POST /api/v1/tasks.
func (h *TaskHandler) Create(c echo.Context) error {
	var req struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		Status      string `json:"status"`
		OfficeID    uint64 `json:"officeId"`
		AssignedTo  uint64 `json:"assigned_to"`
		CreatedBy   uint64 `json:"created_by"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid body"})
	}
	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" || req.OfficeID == 0 || req.AssignedTo == 0 || req.CreatedBy == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Missing required fields"})
	}
	if req.Status == "" {
		req.Status = repository.TaskStatusPending
	}
	if !repository.ValidTaskStatus(req.Status) {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid status"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if _, err := h.Offices.GetByID(ctx, req.OfficeID); err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "Office not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Internal server error"})
	}
	for _, uid := range []uint64{req.AssignedTo, req.CreatedBy} {
		if _, err := h.Users.GetByID(ctx, uid); err != nil {
			if err == repository.ErrNotFound {
				return c.JSON(http.StatusNotFound, echo.Map{"message": "Assigned user or creator not found"})
			}
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Internal server error"})
		}
	}

	t := &repository.Task{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		OfficeID:    req.OfficeID,
		AssignedTo:  req.AssignedTo,
		CreatedBy:   req.CreatedBy,
	}
	if err := h.Tasks.Create(ctx, t); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Internal server error"})
	}

	// Invalidation precedes both broadcasts: a client reacting to the
	// event and re-fetching must see the new task, not the old snapshot.
	h.Coord.After(
		[]string{cache.TasksAllKey, cache.TasksOfficeKey(t.OfficeID)},
		service.Event{
			Room:    realtime.UserRoom(t.AssignedTo),
			Name:    realtime.EventTaskCreated,
			Payload: echo.Map{"message": "You have a new task!", "task": t},
		},
		service.Event{
			Room:    realtime.OfficeRoom(t.OfficeID),
			Name:    realtime.EventNewTask,
			Payload: t,
		},
	)
	return c.JSON(http.StatusCreated, t)
}

// List handles GET /api/v1/tasks, served through the tasks:all snapshot.
func (h *TaskHandler) List(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	if b, ok := h.Cache.Get(ctx, cache.TasksAllKey); ok {
		return c.JSONBlob(http.StatusOK, b)
	}
	items, err := h.Tasks.ListAll(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Internal server error"})
	}
	if b, err := json.Marshal(items); err == nil {
		h.Cache.Set(ctx, cache.TasksAllKey, b, h.Cache.TaskTTL())
	}
	return c.JSON(http.StatusOK, items)
}

// Get handles GET /api/v1/tasks/:id.
func (h *TaskHandler) Get(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	t, err := h.Tasks.GetByID(ctx, id)
	if err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "Task not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Internal server error"})
	}
	return c.JSON(http.StatusOK, t)
}

// ByOffice handles GET /api/v1/tasks/office/:id through the per-office
// snapshot, keyed so one office never sees another's listing.
func (h *TaskHandler) ByOffice(c echo.Context) error {
	officeID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	key := cache.TasksOfficeKey(officeID)
	if b, ok := h.Cache.Get(ctx, key); ok {
		return c.JSONBlob(http.StatusOK, b)
	}
	items, err := h.Tasks.ListByOffice(ctx, officeID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Internal server error"})
	}
	if len(items) == 0 {
		return c.JSON(http.StatusNotFound, echo.Map{"message": "No tasks found for this office"})
	}
	if b, err := json.Marshal(items); err == nil {
		h.Cache.Set(ctx, key, b, h.Cache.TaskTTL())
	}
	return c.JSON(http.StatusOK, items)
}

// ByUser handles GET /api/v1/tasks/user/:userId.
func (h *TaskHandler) ByUser(c echo.Context) error {
	userID, err := pathID(c, "userId")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	items, err := h.Tasks.ListByAssignee(ctx, userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Internal server error"})
	}
	if len(items) == 0 {
		return c.JSON(http.StatusNotFound, echo.Map{"message": "No tasks found for this user"})
	}
	return c.JSON(http.StatusOK, items)
}

// ByStatus handles GET /api/v1/tasks/status?status=pending.
func (h *TaskHandler) ByStatus(c echo.Context) error {
	status := c.QueryParam("status")
	if status == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Status query parameter is required"})
	}
	if !repository.ValidTaskStatus(status) {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid status"})
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	items, err := h.Tasks.ListByStatus(ctx, status)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Internal server error"})
	}
	if len(items) == 0 {
		return c.JSON(http.StatusNotFound, echo.Map{"message": "No tasks found with this status"})
	}
	return c.JSON(http.StatusOK, items)
}

// Update handles PUT /api/v1/tasks/:id.
func (h *TaskHandler) Update(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	var req struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		Status      string `json:"status"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid body"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	t, err := h.Tasks.GetByID(ctx, id)
	if err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "Task not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Internal server error"})
	}
	if req.Title != "" {
		t.Title = req.Title
	}
	if req.Description != "" {
		t.Description = req.Description
	}
	if req.Status != "" {
		if !repository.ValidTaskStatus(req.Status) {
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid status"})
		}
		t.Status = req.Status
	}
	if err := h.Tasks.Update(ctx, &t); err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "Task not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Internal server error"})
	}

	h.Coord.After(
		[]string{cache.TasksAllKey, cache.TasksOfficeKey(t.OfficeID)},
		service.Event{
			Room:    realtime.UserRoom(t.AssignedTo),
			Name:    realtime.EventTaskUpdated,
			Payload: echo.Map{"message": "A task was updated", "task": t},
		},
		service.Event{
			Room:    realtime.OfficeRoom(t.OfficeID),
			Name:    realtime.EventTaskUpdated,
			Payload: t,
		},
	)
	return c.JSON(http.StatusOK, t)
}

// Delete handles DELETE /api/v1/tasks/:id.
func (h *TaskHandler) Delete(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	// The row is needed before it goes away: the rooms and cache keys to
	// notify live on it.
	t, err := h.Tasks.GetByID(ctx, id)
	if err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "Task not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Internal server error"})
	}
	if err := h.Tasks.Delete(ctx, id); err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "Task not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Internal server error"})
	}

	h.Coord.After(
		[]string{cache.TasksAllKey, cache.TasksOfficeKey(t.OfficeID)},
		service.Event{
			Room:    realtime.UserRoom(t.AssignedTo),
			Name:    realtime.EventTaskDeleted,
			Payload: echo.Map{"id": id},
		},
		service.Event{
			Room:    realtime.OfficeRoom(t.OfficeID),
			Name:    realtime.EventTaskDeleted,
			Payload: echo.Map{"id": id},
		},
	)
	return c.JSON(http.StatusOK, echo.Map{"message": "Task deleted", "id": id})
}
