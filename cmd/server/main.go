package main // Entry point package

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/iliyamo/office-operations/internal/cache"
	"github.com/iliyamo/office-operations/internal/config"
	"github.com/iliyamo/office-operations/internal/database"
	"github.com/iliyamo/office-operations/internal/handler"
	"github.com/iliyamo/office-operations/internal/middleware"
	"github.com/iliyamo/office-operations/internal/queue"
	"github.com/iliyamo/office-operations/internal/realtime"
	"github.com/iliyamo/office-operations/internal/repository"
	"github.com/iliyamo/office-operations/internal/router"
	"github.com/iliyamo/office-operations/internal/service"
)

func main() {
	_ = godotenv.Load() // .env is optional; real deployments set the environment directly
	cfg := config.Load()

	// Entity store: the single owner of durable records.
	db, err := database.Open(cfg)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// Shared backend: one process-wide client for cache, rate limiting and
	// the broadcast bus.  nil means Redis was unreachable at startup and
	// every dependent component degrades instead of failing requests.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Printf("redis unavailable: caching, rate limiting and cross-process fan-out are disabled")
	} else {
		defer rdb.Close()
	}

	// ctx ends on SIGINT/SIGTERM and stops the bus subscription.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	hub := realtime.NewHub()
	bus := realtime.NewBroadcaster(rdb, hub)
	go bus.Run(ctx)

	// Attendance audit trail consumer; reconnects on its own.
	go func() {
		if err := queue.StartAttendanceConsumer(); err != nil {
			log.Printf("attendance consumer stopped: %v", err)
		}
	}()

	store := cache.New(rdb, config.LoadCacheConfig())
	coord := service.NewCoordinator(store, bus)

	offices := repository.NewOfficeRepo(db)
	users := repository.NewUserRepo(db)
	tasks := repository.NewTaskRepo(db)
	messages := repository.NewMessageRepo(db)
	attendance := repository.NewAttendanceRepo(db)

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Logger())
	e.Use(echomw.Recover())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
	}))
	// General limiter applies to all routes; the stricter login limiter is
	// attached to the login route alone.
	e.Use(middleware.NewFixedWindow(config.LoadRateLimitConfig(), rdb))
	loginLimiter := middleware.NewFixedWindow(config.LoadLoginRateLimitConfig(), rdb)

	router.RegisterRoutes(e, hub)
	router.RegisterUsers(e, handler.NewUserHandler(cfg, users, offices, store, coord), loginLimiter, cfg.JWTSecret)
	router.RegisterOffices(e, handler.NewOfficeHandler(offices, users), cfg.JWTSecret)
	router.RegisterTasks(e, handler.NewTaskHandler(tasks, users, offices, store, coord))
	router.RegisterMessages(e, handler.NewMessageHandler(messages, store, coord), cfg.JWTSecret)
	router.RegisterAttendance(e, handler.NewAttendanceHandler(attendance, coord))

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	go func() {
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server: %v", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}
}
