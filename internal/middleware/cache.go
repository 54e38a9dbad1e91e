package middleware

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/laundry-pass-booking/internal/config"
)

// bodyCapture forwards the response to the client while keeping a copy
// for the cache.
type bodyCapture struct {
	http.ResponseWriter
	status int
	buf    bytes.Buffer
}

func (w *bodyCapture) WriteHeader(code int) { w.status = code; w.ResponseWriter.WriteHeader(code) }
func (w *bodyCapture) Write(b []byte) (int, error) {
	w.buf.Write(b)
	return w.ResponseWriter.Write(b)
}

// CacheSchedule caches successful GET responses for a few seconds, keyed
// by route, query and authenticated username. The username is part of
// the key because resident views differ per caller (SelfBooking marks).
// Schedule data goes stale the moment someone books, so the TTL stays
// short. No redis means no caching.
func CacheSchedule(cfg config.CacheConfig, rdb *redis.Client) echo.MiddlewareFunc {
	if !cfg.Enabled || rdb == nil {
		return func(next echo.HandlerFunc) echo.HandlerFunc {
			return func(c echo.Context) error { return next(c) }
		}
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if c.Request().Method != http.MethodGet {
				return next(c)
			}
			key := fmt.Sprintf("%s:%s:%s:%s", cfg.Prefix, Username(c), c.Path(), c.Request().URL.RawQuery)

			ctx := c.Request().Context()
			if cached, err := rdb.Get(ctx, key).Bytes(); err == nil {
				return c.JSONBlob(http.StatusOK, cached)
			}

			cap := &bodyCapture{ResponseWriter: c.Response().Writer, status: http.StatusOK}
			c.Response().Writer = cap
			if err := next(c); err != nil {
				return err
			}
			if cap.status == http.StatusOK {
				rdb.Set(ctx, key, cap.buf.Bytes(), cfg.TTL)
			}
			return nil
		}
	}
}
