package handler

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/laundry-pass-booking/internal/config"
	"github.com/iliyamo/laundry-pass-booking/internal/middleware"
	"github.com/iliyamo/laundry-pass-booking/internal/model"
	"github.com/iliyamo/laundry-pass-booking/internal/repository"
	"github.com/iliyamo/laundry-pass-booking/internal/service"
	"github.com/iliyamo/laundry-pass-booking/internal/utils"
)

// AuthHandler bundles dependencies for the auth endpoints.
type AuthHandler struct {
	Cfg     config.Config
	Log     *zap.Logger
	Users   *service.UserService
	Persons *repository.PersonRepo
	Tokens  *repository.TokenRepo
}

func NewAuthHandler(cfg config.Config, log *zap.Logger, users *service.UserService, persons *repository.PersonRepo, tokens *repository.TokenRepo) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Log: log, Users: users, Persons: persons, Tokens: tokens}
}

// ----- DTOs -----

type loginReq struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type registerReq struct {
	FirstName      string `json:"first_name" validate:"required"`
	LastName       string `json:"last_name" validate:"required"`
	PersonalNumber string `json:"personal_number" validate:"required,personalnumber"`
	Email          string `json:"email" validate:"required,email"`
	Username       string `json:"username" validate:"required,alphanum,min=3"`
	Password       string `json:"password" validate:"required,min=8"`
}

type refreshReq struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type tokenPart struct {
	Token   string    `json:"token"`
	Expires time.Time `json:"expires"`
}
type userPart struct {
	Username string `json:"username"`
	Role     string `json:"role"`
}
type authResp struct {
	User    userPart  `json:"user"`
	Access  tokenPart `json:"access"`
	Refresh tokenPart `json:"refresh"`
}

// Login verifies credentials and returns a fresh token pair. Unknown
// usernames and wrong passwords produce the same response.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	info, status, err := h.Users.Login(ctx, req.Username, req.Password)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "login failed"})
	}
	if status != model.UserOK {
		return c.JSON(http.StatusUnauthorized, echo.Map{"status": status})
	}
	return h.issuePair(ctx, c, http.StatusOK, info)
}

// RegisterAdministrator creates an administrator account and logs it in.
// This is the bootstrap path; resident accounts go through the admin
// user endpoints instead.
func (h *AuthHandler) RegisterAdministrator(c echo.Context) error {
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	info, status, err := h.Users.RegisterAdministrator(ctx, service.Registration{
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
	if status != model.UserOK {
		return c.JSON(http.StatusConflict, echo.Map{"status": status})
	}
	return h.issuePair(ctx, c, http.StatusCreated, info)
}

// Refresh exchanges a valid refresh token for a new pair and revokes the
// old one. Rotation means a stolen token works at most once.
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req refreshReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	hash := utils.HashRefreshRaw(req.RefreshToken)
	accountID, err := h.Tokens.ValidateRefresh(ctx, hash)
	if err == sql.ErrNoRows {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid refresh token"})
	}
	if err != nil {
		h.Log.Error("auth: refresh lookup", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "refresh failed"})
	}
	info, err := h.Persons.GetByAccountID(ctx, accountID)
	if err == sql.ErrNoRows {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid refresh token"})
	}
	if err != nil {
		h.Log.Error("auth: refresh account lookup", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "refresh failed"})
	}
	if err := h.Tokens.RevokeByHash(ctx, hash); err != nil {
		h.Log.Error("auth: refresh revoke", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "refresh failed"})
	}
	return h.issuePair(ctx, c, http.StatusOK, info)
}

// Logout revokes the presented refresh token. Access tokens simply
// expire; there is no server-side access token state.
func (h *AuthHandler) Logout(c echo.Context) error {
	var req refreshReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Tokens.RevokeByHash(ctx, utils.HashRefreshRaw(req.RefreshToken)); err != nil {
		h.Log.Error("auth: logout revoke", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "logout failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"status": "OK"})
}

// Me returns the authenticated identity from the access token claims.
func (h *AuthHandler) Me(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	info, err := h.Persons.GetByUsername(ctx, middleware.Username(c))
	if err == sql.ErrNoRows {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unknown user"})
	}
	if err != nil {
		h.Log.Error("auth: me lookup", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "lookup failed"})
	}
	return c.JSON(http.StatusOK, info)
}

// issuePair signs an access token, mints and stores a refresh token and
// writes the auth response. The raw refresh token goes back to the
// client; only its hash is stored.
func (h *AuthHandler) issuePair(ctx context.Context, c echo.Context, code int, info model.PersonInfo) error {
	role := info.Privilege.String()
	access, err := utils.NewAccessToken(h.Cfg.JWTSecret, info.Username, role, h.Cfg.AccessTTLMin)
	if err != nil {
		h.Log.Error("auth: issue access", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue access failed"})
	}
	refresh, err := utils.NewRefreshToken(h.Cfg.RefreshTTLDays)
	if err != nil {
		h.Log.Error("auth: issue refresh", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue refresh failed"})
	}
	if err := h.Tokens.StoreRefresh(ctx, info.AccountID, utils.HashRefreshRaw(refresh.Raw), refresh.Exp); err != nil {
		h.Log.Error("auth: store refresh", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "save refresh failed"})
	}
	return c.JSON(code, authResp{
		User:    userPart{Username: info.Username, Role: role},
		Access:  tokenPart{Token: access.Token, Expires: access.Exp},
		Refresh: tokenPart{Token: refresh.Raw, Expires: refresh.Exp},
	})
}
