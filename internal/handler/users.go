package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/laundry-pass-booking/internal/middleware"
	"github.com/iliyamo/laundry-pass-booking/internal/model"
	"github.com/iliyamo/laundry-pass-booking/internal/service"
)

// UserHandler serves the administrator-only user directory endpoints.
type UserHandler struct {
	Users *service.UserService
}

func NewUserHandler(users *service.UserService) *UserHandler {
	return &UserHandler{Users: users}
}

// RegisterResident creates a standard-privilege resident account on
// behalf of the authenticated administrator.
func (h *UserHandler) RegisterResident(c echo.Context) error {
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	info, status, err := h.Users.RegisterResident(ctx, middleware.Username(c), service.Registration{
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		PersonalNumber: req.PersonalNumber,
		Email:          req.Email,
		Username:       req.Username,
		Password:       req.Password,
	})
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "register failed"})
	}
	switch status {
	case model.UserOK:
		return c.JSON(http.StatusCreated, echo.Map{"status": status, "user": info})
	case model.UserInvalidUser:
		return c.JSON(http.StatusUnauthorized, echo.Map{"status": status})
	case model.UserInvalidPrivilege:
		return c.JSON(http.StatusForbidden, echo.Map{"status": status})
	default:
		return c.JSON(http.StatusConflict, echo.Map{"status": status})
	}
}

// List returns every resident, ordered by username.
func (h *UserHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	users, status, err := h.Users.ListUsers(ctx, middleware.Username(c))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list failed"})
	}
	switch status {
	case model.UserOK:
		if users == nil {
			users = []model.PersonInfo{}
		}
		return c.JSON(http.StatusOK, echo.Map{"users": users})
	case model.UserInvalidUser:
		return c.JSON(http.StatusUnauthorized, echo.Map{"status": status})
	default:
		return c.JSON(http.StatusForbidden, echo.Map{"status": status})
	}
}

// Delete removes a user and everything referencing it. Deleting an
// unknown username is a 404; the cascade itself is atomic.
func (h *UserHandler) Delete(c echo.Context) error {
	target := c.Param("username")
	if target == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "username required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	deleted, err := h.Users.DeleteUser(ctx, middleware.Username(c), target)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
	if !deleted {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
	}
	return c.JSON(http.StatusOK, echo.Map{"status": "OK"})
}
