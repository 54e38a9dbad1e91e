package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/laundry-pass-booking/internal/middleware"
	"github.com/iliyamo/laundry-pass-booking/internal/model"
	"github.com/iliyamo/laundry-pass-booking/internal/service"
)

// ScheduleHandler serves the weekly grid views.
type ScheduleHandler struct {
	Schedule *service.ScheduleService
}

func NewScheduleHandler(schedule *service.ScheduleService) *ScheduleHandler {
	return &ScheduleHandler{Schedule: schedule}
}

// relativeWeek reads the optional ?week= query parameter. Absent means
// the current week; a non-integer is reported as a bad request.
func relativeWeek(c echo.Context) (int, error) {
	raw := c.QueryParam("week")
	if raw == "" {
		return 0, nil
	}
	week, err := strconv.Atoi(raw)
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "week must be an integer")
	}
	return week, nil
}

// Week returns the resident view: previous, current or next week only,
// with occupant names scrubbed and the caller's own cells marked.
func (h *ScheduleHandler) Week(c echo.Context) error {
	week, err := relativeWeek(c)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	result, err := h.Schedule.ResidentWeekPasses(ctx, middleware.Username(c), week)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "schedule failed"})
	}
	return writeScheduleResult(c, result)
}

// AdminWeek returns the administrator view of any week, occupant
// usernames included.
func (h *ScheduleHandler) AdminWeek(c echo.Context) error {
	week, err := relativeWeek(c)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	result, err := h.Schedule.AdminWeekPasses(ctx, middleware.Username(c), week)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "schedule failed"})
	}
	return writeScheduleResult(c, result)
}

func writeScheduleResult(c echo.Context, result model.ScheduleResult) error {
	switch result.Status {
	case model.ScheduleOK:
		return c.JSON(http.StatusOK, result.Schedule)
	case model.ScheduleInvalidUser:
		return c.JSON(http.StatusUnauthorized, echo.Map{"status": result.Status})
	case model.ScheduleInvalidPrivilege:
		return c.JSON(http.StatusForbidden, echo.Map{"status": result.Status})
	default:
		return c.JSON(http.StatusBadRequest, echo.Map{"status": result.Status})
	}
}
