package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/office-operations/internal/repository"
)

// OfficeHandler bundles repositories for office management endpoints.
// Offices are plain CRUD: no caching, no broadcast.
type OfficeHandler struct {
	Offices *repository.OfficeRepo
	Users   *repository.UserRepo
}

func NewOfficeHandler(offices *repository.OfficeRepo, users *repository.UserRepo) *OfficeHandler {
	return &OfficeHandler{Offices: offices, Users: users}
}

// List handles GET /api/v1/offices.
func (h *OfficeHandler) List(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()
	items, err := h.Offices.List(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Internal server error"})
	}
	return c.JSON(http.StatusOK, items)
}

// Get handles GET /api/v1/offices/:id.
func (h *OfficeHandler) Get(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	o, err := h.Offices.GetByID(ctx, id)
	if err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "Office not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Internal server error"})
	}
	return c.JSON(http.StatusOK, o)
}

// Create handles POST /api/v1/offices.
func (h *OfficeHandler) Create(c echo.Context) error {
	var req struct {
		Name string `json:"name"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid body"})
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Name is required"})
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	o := &repository.Office{Name: name}
	if err := h.Offices.Create(ctx, o); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Internal server error"})
	}
	return c.JSON(http.StatusCreated, o)
}

// Update handles PUT /api/v1/offices/:id.
func (h *OfficeHandler) Update(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	var req struct {
		Name string `json:"name"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid body"})
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Name is required"})
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	if _, err := h.Offices.GetByID(ctx, id); err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "Office not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Internal server error"})
	}
	if err := h.Offices.UpdateName(ctx, id, name); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Internal server error"})
	}
	o, err := h.Offices.GetByID(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Internal server error"})
	}
	return c.JSON(http.StatusOK, o)
}

// Delete handles DELETE /api/v1/offices/:id.
func (h *OfficeHandler) Delete(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	if err := h.Offices.Delete(ctx, id); err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "Office not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Internal server error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Office deleted successfully"})
}

// ListUsers handles GET /api/v1/offices/:id/users.
func (h *OfficeHandler) ListUsers(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	if _, err := h.Offices.GetByID(ctx, id); err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "Office not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Internal server error"})
	}
	users, err := h.Users.ListByOffice(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Internal server error"})
	}
	return c.JSON(http.StatusOK, users)
}
