package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/laundry-pass-booking/internal/metrics"
	"github.com/iliyamo/laundry-pass-booking/internal/middleware"
	"github.com/iliyamo/laundry-pass-booking/internal/model"
	"github.com/iliyamo/laundry-pass-booking/internal/queue"
	"github.com/iliyamo/laundry-pass-booking/internal/service"
)

// PassHandler serves the lock and booking endpoints. Business rejections
// come back as 4xx with the status name in the body; only infrastructure
// failures are 500s.
type PassHandler struct {
	Log      *zap.Logger
	Locks    *service.LockService
	Bookings *service.BookingService
}

func NewPassHandler(log *zap.Logger, locks *service.LockService, bookings *service.BookingService) *PassHandler {
	return &PassHandler{Log: log, Locks: locks, Bookings: bookings}
}

type passReq struct {
	Room      int    `json:"room" validate:"required,min=1"`
	Date      string `json:"date" validate:"required,passdate"`
	TimeRange string `json:"time_range" validate:"required,timerange"`
}

// bindPassRequest binds, validates and converts the wire form into a
// normalized PassRequest with a midnight-UTC date.
func bindPassRequest(c echo.Context) (model.PassRequest, error) {
	var req passReq
	if err := c.Bind(&req); err != nil {
		return model.PassRequest{}, echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if err := c.Validate(&req); err != nil {
		return model.PassRequest{}, err
	}
	date, err := time.Parse(model.DateLayout, req.Date)
	if err != nil {
		return model.PassRequest{}, echo.NewHTTPError(http.StatusBadRequest, "invalid date")
	}
	pr, err := model.NewPassRequest(req.Room, date, req.TimeRange)
	if err != nil {
		return model.PassRequest{}, echo.NewHTTPError(http.StatusBadRequest, "invalid pass info")
	}
	return pr, nil
}

// Lock tries to hold a slot cell for the caller.
func (h *PassHandler) Lock(c echo.Context) error {
	pr, err := bindPassRequest(c)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	granted, err := h.Locks.Lock(ctx, middleware.Username(c), pr)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "lock failed"})
	}
	if !granted {
		metrics.LocksRejected.Inc()
		return c.JSON(http.StatusConflict, echo.Map{"locked": false})
	}
	metrics.LocksAcquired.Inc()
	return c.JSON(http.StatusOK, echo.Map{"locked": true})
}

// Unlock releases whatever lock the caller holds.
func (h *PassHandler) Unlock(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	released, err := h.Locks.Unlock(ctx, middleware.Username(c))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "unlock failed"})
	}
	if !released {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unknown user"})
	}
	return c.JSON(http.StatusOK, echo.Map{"locked": false})
}

// Book commits a pass booking. On success the event goes to the broker
// best-effort; a broker outage never fails a committed booking.
func (h *PassHandler) Book(c echo.Context) error {
	pr, err := bindPassRequest(c)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	username := middleware.Username(c)
	result, err := h.Bookings.Book(ctx, username, pr)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "booking failed"})
	}
	if result.Status != model.BookingOK {
		metrics.BookingsRejected.WithLabelValues(result.Status.String()).Inc()
		return c.JSON(bookingStatusCode(result.Status), echo.Map{"status": result.Status})
	}

	metrics.BookingsCreated.Inc()
	go func() {
		pubCtx, pubCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer pubCancel()
		if err := queue.PublishPassBooked(pubCtx, queue.PassBookedEvent{
			Reference: result.Reference,
			Username:  username,
			Room:      result.Room,
			Date:      result.Date,
			TimeRange: result.TimeRange,
			BookedAt:  time.Now().UTC().Format(time.RFC3339),
		}); err != nil {
			h.Log.Warn("booking: event publish", zap.String("reference", result.Reference), zap.Error(err))
		}
	}()

	return c.JSON(http.StatusCreated, result)
}

// Active returns the caller's single active pass, if any.
func (h *PassHandler) Active(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	result, err := h.Bookings.ActivePass(ctx, middleware.Username(c))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "lookup failed"})
	}
	if result.Status != model.BookingOK {
		return c.JSON(bookingStatusCode(result.Status), echo.Map{"status": result.Status})
	}
	return c.JSON(http.StatusOK, result)
}

// Cancel removes a booking the caller owns, or any booking when the
// caller is an administrator.
func (h *PassHandler) Cancel(c echo.Context) error {
	pr, err := bindPassRequest(c)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	cancelled, err := h.Bookings.Cancel(ctx, middleware.Username(c), pr)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "cancel failed"})
	}
	if !cancelled {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "no matching booking"})
	}
	return c.JSON(http.StatusOK, echo.Map{"status": "OK"})
}

// bookingStatusCode maps a rejected booking status to its HTTP code.
func bookingStatusCode(s model.BookingStatus) int {
	switch s {
	case model.BookingInvalidUser:
		return http.StatusUnauthorized
	case model.BookingInvalidPassInfo, model.BookingInvalidDate:
		return http.StatusBadRequest
	case model.BookingNoBooking:
		return http.StatusNotFound
	default:
		return http.StatusConflict
	}
}
