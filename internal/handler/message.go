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

// MessageHandler bundles dependencies for office messaging endpoints.
// Messages may only be edited or deleted by their author.
type MessageHandler struct {
	Messages *repository.MessageRepo
	Cache    *cache.Store
	Coord    *service.Coordinator
}

func NewMessageHandler(messages *repository.MessageRepo, store *cache.Store, coord *service.Coordinator) *MessageHandler {
	return &MessageHandler{Messages: messages, Cache: store, Coord: coord}
}

// Create handles POST /api/v1/messages.  The author is the authenticated
// user; the office room gets the new message pushed live.
func (h *MessageHandler) Create(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "Unauthorized"})
	}
	var req struct {
		Content  string `json:"content"`
		OfficeID uint64 `json:"officeId"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid body"})
	}
	req.Content = strings.TrimSpace(req.Content)
	if req.Content == "" || req.OfficeID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Content and officeId are required"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	m := &repository.Message{Content: req.Content, OfficeID: req.OfficeID, UserID: userID}
	if err := h.Messages.Create(ctx, m); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Internal server error"})
	}

	h.Coord.After(
		[]string{cache.MessagesOfficeKey(m.OfficeID)},
		service.Event{
			Room:    realtime.OfficeRoom(m.OfficeID),
			Name:    realtime.EventNewMessage,
			Payload: m,
		},
	)
	return c.JSON(http.StatusCreated, m)
}

// ByOffice handles GET /api/v1/messages/:officeId, served through the
// messages:office:<id> snapshot.
func (h *MessageHandler) ByOffice(c echo.Context) error {
	officeID, err := pathID(c, "officeId")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "officeId is required"})
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	key := cache.MessagesOfficeKey(officeID)
	if b, ok := h.Cache.Get(ctx, key); ok {
		return c.JSONBlob(http.StatusOK, b)
	}
	items, err := h.Messages.ListByOffice(ctx, officeID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Internal server error"})
	}
	if b, err := json.Marshal(items); err == nil {
		h.Cache.Set(ctx, key, b, h.Cache.MessageTTL())
	}
	return c.JSON(http.StatusOK, items)
}

// Update handles PUT /api/v1/messages/:id.  Only the author may edit.
func (h *MessageHandler) Update(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "Unauthorized"})
	}
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	var req struct {
		Content string `json:"content"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid body"})
	}
	req.Content = strings.TrimSpace(req.Content)
	if req.Content == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Content is required"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	m, err := h.Messages.GetByID(ctx, id)
	if err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "Message not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Internal server error"})
	}
	if m.UserID != userID {
		return c.JSON(http.StatusForbidden, echo.Map{"message": "You are not authorized to update this message"})
	}
	m.Content = req.Content
	if err := h.Messages.UpdateContent(ctx, &m); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Internal server error"})
	}

	h.Coord.After(
		[]string{cache.MessagesOfficeKey(m.OfficeID)},
		service.Event{
			Room:    realtime.OfficeRoom(m.OfficeID),
			Name:    realtime.EventMessageUpdated,
			Payload: m,
		},
	)
	return c.JSON(http.StatusOK, m)
}

// Delete handles DELETE /api/v1/messages/:id.  Only the author may delete.
func (h *MessageHandler) Delete(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "Unauthorized"})
	}
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	m, err := h.Messages.GetByID(ctx, id)
	if err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "Message not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Internal server error"})
	}
	if m.UserID != userID {
		return c.JSON(http.StatusForbidden, echo.Map{"message": "You are not authorized to delete this message"})
	}
	if err := h.Messages.Delete(ctx, id); err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "Message not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Internal server error"})
	}

	h.Coord.After(
		[]string{cache.MessagesOfficeKey(m.OfficeID)},
		service.Event{
			Room:    realtime.OfficeRoom(m.OfficeID),
			Name:    realtime.EventMessageDeleted,
			Payload: echo.Map{"id": id},
		},
	)
	return c.NoContent(http.StatusNoContent)
}
