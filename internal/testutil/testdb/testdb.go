//go:build integration
// +build integration

// Package testdb starts a disposable MySQL container and applies the
// embedded migrations, giving integration tests the same schema the
// server runs against.
package testdb

import (
	"context"
	"database/sql"
	"errors"
	"time"

	_ "github.com/go-sql-driver/mysql"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/mysql"

	"github.com/iliyamo/laundry-pass-booking/internal/database"
)

type DBHandle struct {
	DB     *sql.DB
	cancel func()
	stop   func(context.Context) error
}

func (h *DBHandle) Close() {
	if h.DB != nil {
		_ = h.DB.Close()
	}
	if h.stop != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = h.stop(ctx)
	}
	if h.cancel != nil {
		h.cancel()
	}
}

func Start(ctx context.Context) (*DBHandle, error) {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)

	ctr, err := mysql.RunContainer(ctx,
		tc.WithImage("mysql:8.4"),
		mysql.WithDatabase("laundry"),
		mysql.WithUsername("laundry"),
		mysql.WithPassword("laundry"),
	)
	if err != nil {
		cancel()
		return nil, err
	}

	dsn, err := ctr.ConnectionString(ctx, "charset=utf8mb4", "parseTime=true", "loc=UTC")
	if err != nil {
		_ = ctr.Terminate(ctx)
		cancel()
		return nil, err
	}

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		_ = ctr.Terminate(ctx)
		cancel()
		return nil, err
	}
	if err := waitReady(ctx, db); err != nil {
		_ = ctr.Terminate(ctx)
		cancel()
		return nil, err
	}
	if err := database.Migrate(db); err != nil {
		_ = ctr.Terminate(ctx)
		cancel()
		return nil, err
	}

	return &DBHandle{
		DB:     db,
		cancel: cancel,
		stop:   ctr.Terminate,
	}, nil
}

func waitReady(ctx context.Context, db *sql.DB) error {
	dead := time.Now().Add(30 * time.Second)
	for time.Now().Before(dead) {
		if err := db.PingContext(ctx); err == nil {
			return nil
		}
		time.Sleep(200 * time.Millisecond)
	}
	return errors.New("db not ready")
}
