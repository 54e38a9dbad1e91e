package main

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/iliyamo/laundry-pass-booking/internal/config"
	"github.com/iliyamo/laundry-pass-booking/internal/database"
	"github.com/iliyamo/laundry-pass-booking/internal/handler"
	"github.com/iliyamo/laundry-pass-booking/internal/logging"
	"github.com/iliyamo/laundry-pass-booking/internal/queue"
	"github.com/iliyamo/laundry-pass-booking/internal/repository"
	"github.com/iliyamo/laundry-pass-booking/internal/router"
	"github.com/iliyamo/laundry-pass-booking/internal/service"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()

	logger, sync, err := logging.Init(cfg.LogLevel, cfg.Env)
	if err != nil {
		log.Fatalf("logger init: %v", err)
	}
	defer sync()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		logger.Fatal("database open", zap.Error(err))
	}
	defer func() { _ = db.Close() }()

	if err := database.Migrate(db); err != nil {
		logger.Fatal("database migrate", zap.Error(err))
	}

	// Redis is optional; rate limiting and schedule caching degrade to
	// no-ops when it is unreachable.
	rdb := config.NewRedisClient()
	rl := config.LoadRateLimitConfig()
	cc := config.LoadCacheConfig()

	persons := repository.NewPersonRepo(db)
	slots := repository.NewSlotRepo(db)
	bookings := repository.NewBookingRepo(db)
	locks := repository.NewLockRepo(db)
	tokens := repository.NewTokenRepo(db)

	users := &service.UserService{
		DB: db, Log: logger,
		Persons: persons, Tokens: tokens, Bookings: bookings, Locks: locks,
		BcryptCost: cfg.BcryptCost,
	}
	lockSvc := &service.LockService{
		DB: db, Log: logger,
		Persons: persons, Slots: slots, Bookings: bookings, Locks: locks,
		LockDuration:        cfg.LockDuration,
		ActivePassesAllowed: cfg.ActivePassesAllowed,
	}
	bookingSvc := &service.BookingService{
		DB: db, Log: logger,
		Persons: persons, Slots: slots, Bookings: bookings, Locks: locks,
		LockDuration:        cfg.LockDuration,
		ActivePassesAllowed: cfg.ActivePassesAllowed,
		MonthPassesAllowed:  cfg.MonthPassesAllowed,
	}
	scheduleSvc := &service.ScheduleService{
		DB: db, Log: logger,
		Persons: persons, Slots: slots, Bookings: bookings, Locks: locks,
		LockDuration: cfg.LockDuration,
	}

	go func() {
		if err := queue.StartPassBookedConsumer(); err != nil {
			logger.Warn("booking event consumer stopped", zap.Error(err))
		}
	}()

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())

	router.Register(e, router.Handlers{
		Auth:     handler.NewAuthHandler(cfg, logger, users, persons, tokens),
		Users:    handler.NewUserHandler(users),
		Passes:   handler.NewPassHandler(logger, lockSvc, bookingSvc),
		Schedule: handler.NewScheduleHandler(scheduleSvc),
	}, cfg, rl, cc, db, rdb)

	addr := ":" + cfg.Port
	logger.Info("listening", zap.String("addr", addr), zap.String("env", cfg.Env))
	if err := e.Start(addr); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}
