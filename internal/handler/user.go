package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/office-operations/internal/cache"
	"github.com/iliyamo/office-operations/internal/config"
	"github.com/iliyamo/office-operations/internal/repository"
	"github.com/iliyamo/office-operations/internal/service"
	"github.com/iliyamo/office-operations/internal/utils"
)

// UserHandler bundles dependencies for account and profile endpoints.
type UserHandler struct {
	Cfg     config.Config
	Users   *repository.UserRepo
	Offices *repository.OfficeRepo
	Cache   *cache.Store
	Coord   *service.Coordinator
}

func NewUserHandler(cfg config.Config, users *repository.UserRepo, offices *repository.OfficeRepo, store *cache.Store, coord *service.Coordinator) *UserHandler {
	return &UserHandler{Cfg: cfg, Users: users, Offices: offices, Cache: store, Coord: coord}
}

// Create handles POST /api/v1/users/create: validates the body, verifies
// the office exists, hashes the password and stores the user.
func (h *UserHandler) Create(c echo.Context) error {
	var req struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
		OfficeID uint64 `json:"officeId"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid body"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if !utils.ValidEmail(req.Email) {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid email format"})
	}
	if len(req.Password) < 6 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Password must be at least 6 characters long"})
	}
	if req.OfficeID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Office ID is required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if _, err := h.Offices.GetByID(ctx, req.OfficeID); err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "Office not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Internal server error"})
	}

	hash, err := utils.HashPassword(req.Password, h.Cfg.BcryptCost)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Internal server error"})
	}
	id, err := h.Users.Create(ctx, req.Name, req.Email, hash, "employee", req.OfficeID)
	if err != nil {
		if err == repository.ErrEmailExists {
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "User already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Internal server error"})
	}
	u, err := h.Users.GetByID(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Internal server error"})
	}
	return c.JSON(http.StatusCreated, u.Profile())
}

// Login handles POST /api/v1/users/login.  It sits behind the strict login
// rate limiter.  On success it sets the HttpOnly token cookie and returns
// the profile together with the token for header-based clients.
func (h *UserHandler) Login(c echo.Context) error {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid body"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "email/password required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, req.Email)
	if err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "User not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Internal server error"})
	}
	if !utils.VerifyPassword(u.PasswordHash, req.Password) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "Invalid password"})
	}

	access, err := utils.NewAccessToken(h.Cfg.JWTSecret, u.ID, u.Email, u.Role, h.Cfg.AccessTTLHour)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Internal server error"})
	}

	c.SetCookie(&http.Cookie{
		Name:     "token",
		Value:    access.Token,
		Path:     "/",
		Expires:  access.Exp,
		HttpOnly: true,
		Secure:   h.Cfg.Env == "prod",
	})

	return c.JSON(http.StatusOK, echo.Map{
		"user":  u.Profile(),
		"token": access.Token,
	})
}

// Logout clears the token cookie.  Access tokens are stateless, so nothing
// is revoked server side.
func (h *UserHandler) Logout(c echo.Context) error {
	c.SetCookie(&http.Cookie{
		Name:     "token",
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
	return c.JSON(http.StatusOK, echo.Map{"message": "User logged out successfully"})
}

// Profile handles GET /api/v1/users/profile for the authenticated user,
// served through the user:<id> cache (300s TTL).
func (h *UserHandler) Profile(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "Unauthorized"})
	}
	return h.serveProfile(c, userID)
}

// GetByID handles GET /api/v1/users/:id, cached the same way as Profile.
func (h *UserHandler) GetByID(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	return h.serveProfile(c, id)
}

// serveProfile is the shared read-through path: cache hit -> serve the
// snapshot; miss -> database, then best-effort populate.
func (h *UserHandler) serveProfile(c echo.Context, id uint64) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	key := cache.UserKey(id)
	if b, ok := h.Cache.Get(ctx, key); ok {
		return c.JSONBlob(http.StatusOK, b)
	}

	u, err := h.Users.GetByID(ctx, id)
	if err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "User not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Internal server error"})
	}
	profile := u.Profile()
	if b, err := json.Marshal(profile); err == nil {
		h.Cache.Set(ctx, key, b, h.Cache.UserTTL())
	}
	return c.JSON(http.StatusOK, profile)
}

// canEditUser decides whether the token holder may edit the target
// account: their own always, anyone's when the role is privileged.
func canEditUser(tokenID, targetID uint64, role string) bool {
	return tokenID == targetID || role == "admin" || role == "manager"
}

// Update handles PUT /api/v1/users/:id (and the legacy
// /profile/update/:id): the path id names the account to edit, and editing
// someone else's requires an admin or manager role.  Invalidates the
// target's user:<id> snapshot.
func (h *UserHandler) Update(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "Unauthorized"})
	}
	targetID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	role, _ := c.Get("role").(string)
	if !canEditUser(userID, targetID, role) {
		return c.JSON(http.StatusForbidden, echo.Map{"message": "You are not authorized to update this user"})
	}
	var req struct {
		Name  string `json:"name"`
		Email string `json:"email"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByID(ctx, targetID)
	if err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "User not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Internal server error"})
	}
	// Absent fields keep their current values, matching partial updates
	// from the frontends.
	if req.Name == "" {
		req.Name = u.Name
	}
	if req.Email == "" {
		req.Email = u.Email
	} else if !utils.ValidEmail(req.Email) {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid email format"})
	}
	if err := h.Users.Update(ctx, targetID, req.Name, req.Email); err != nil {
		if err == repository.ErrEmailExists {
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "User already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Internal server error"})
	}
	h.Coord.After([]string{cache.UserKey(targetID)})

	updated, err := h.Users.GetByID(ctx, targetID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Internal server error"})
	}
	return c.JSON(http.StatusOK, updated.Profile())
}

// ChangePassword handles PUT /api/v1/users/change-password for the
// authenticated user.
func (h *UserHandler) ChangePassword(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "Unauthorized"})
	}
	var req struct {
		OldPassword string `json:"oldPassword"`
		NewPassword string `json:"newPassword"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid body"})
	}
	if len(req.NewPassword) < 6 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Password must be at least 6 characters long"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByID(ctx, userID)
	if err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "User not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Internal server error"})
	}
	if !utils.VerifyPassword(u.PasswordHash, req.OldPassword) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "Invalid old password"})
	}
	hash, err := utils.HashPassword(req.NewPassword, h.Cfg.BcryptCost)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Internal server error"})
	}
	if err := h.Users.UpdatePassword(ctx, userID, hash); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Internal server error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Password changed successfully"})
}

// DeleteSelf handles DELETE /api/v1/users/delete for the authenticated
// user and purges their cached profile.
func (h *UserHandler) DeleteSelf(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "Unauthorized"})
	}
	return h.delete(c, userID)
}

// DeleteByID handles DELETE /api/v1/users/delete-by-id/:id (admin routes).
func (h *UserHandler) DeleteByID(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	return h.delete(c, id)
}

func (h *UserHandler) delete(c echo.Context, id uint64) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Users.Delete(ctx, id); err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "User not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Internal server error"})
	}
	h.Coord.After([]string{cache.UserKey(id)})
	return c.JSON(http.StatusOK, echo.Map{"message": "User deleted successfully"})
}
