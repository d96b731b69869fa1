package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/iliyamo/movie-ticket-booking/internal/config"
	"github.com/iliyamo/movie-ticket-booking/internal/database"
	"github.com/iliyamo/movie-ticket-booking/internal/handler"
	"github.com/iliyamo/movie-ticket-booking/internal/logger"
	"github.com/iliyamo/movie-ticket-booking/internal/repository"
	"github.com/iliyamo/movie-ticket-booking/internal/repository/memrepo"
	"github.com/iliyamo/movie-ticket-booking/internal/router"
	"github.com/iliyamo/movie-ticket-booking/internal/service"
	"github.com/iliyamo/movie-ticket-booking/internal/session"
	"github.com/iliyamo/movie-ticket-booking/internal/storage"
)

const version = "1.0.0"

// store is what the services and the health check need from either backend.
type store interface {
	repository.UnitOfWork
	handler.Pinger
}

func main() {
	_ = godotenv.Load() // .env is optional

	cfg := config.Load()
	log, err := logger.New(cfg.Env, cfg.LogLevel)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	if err := cfg.Validate(); err != nil {
		log.Fatal("invalid configuration", zap.Error(err))
	}

	st, closeStore := openStore(cfg, log)
	defer closeStore()

	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Warn("redis unavailable, using in-process rate limiting and token revocation")
	} else {
		defer rdb.Close()
	}
	revoked := session.New(rdb)
	files := storage.NewLocal(cfg.UploadDir)

	auth := service.NewAuthService(st, revoked, service.AuthConfig{
		Secret:     cfg.JWTSecret,
		AccessTTL:  cfg.AccessTTL,
		RefreshTTL: cfg.RefreshTTL,
		BcryptCost: cfg.BcryptCost,
	}, log)
	accounts := service.NewAccountService(st, cfg.BcryptCost, log)
	cinemas := service.NewCinemaService(st, log)
	movies := service.NewMovieService(st, files, log)
	showtimes := service.NewShowtimeService(st, log)
	promotions := service.NewPromotionService(st)
	bookings := service.NewBookingService(st, log)
	reviews := service.NewReviewService(st)
	dashboard := service.NewDashboardService(st)

	if cfg.AdminEmail != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		_, err := accounts.EnsureAdmin(ctx, cfg.AdminEmail, cfg.AdminPassword)
		cancel()
		if err != nil {
			log.Fatal("bootstrap admin", zap.Error(err))
		}
	}

	e := router.New(log, router.Handlers{
		Health:   handler.NewHealthHandler(st, version),
		Auth:     handler.NewAuthHandler(auth),
		Public:   handler.NewPublicHandler(movies, cinemas, showtimes, reviews),
		Customer: handler.NewCustomerHandler(bookings, reviews),
		Admin:    handler.NewAdminHandler(accounts, cinemas, movies, showtimes, promotions, bookings, dashboard, files),
	}, router.Options{
		JWTSecret:   cfg.JWTSecret,
		Revoked:     revoked,
		Lookup:      auth.GetUserByID,
		CORSOrigins: cfg.CORSOrigins,
		BodyLimit:   cfg.MaxContentLength,
		RateLimit:   config.LoadRateLimitConfig(),
		Redis:       rdb,
		Files:       files,
	})

	addr := ":" + cfg.Port
	go func() {
		log.Info("listening", zap.String("addr", addr), zap.String("env", cfg.Env), zap.String("db", cfg.DBDriver))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server stopped", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		log.Error("forced shutdown", zap.Error(err))
	}
}

// openStore connects to MySQL (applying the schema when DB_AUTO_MIGRATE is
// set) or builds the in-memory store for DB_DRIVER=memory.
func openStore(cfg config.Config, log *zap.Logger) (store, func()) {
	if !cfg.MySQLEnabled() {
		log.Warn("using in-memory store, data is lost on restart")
		return memrepo.New(), func() {}
	}
	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatal("connect database", zap.Error(err))
	}
	if cfg.DBAutoMigrate {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := database.Migrate(ctx, db); err != nil {
			log.Fatal("migrate database", zap.Error(err))
		}
		log.Info("schema applied")
	}
	return repository.NewStore(db), func() { db.Close() }
}
