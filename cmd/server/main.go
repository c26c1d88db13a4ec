package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/UTDallasEPICS/the-samaritan-inn/config"
	"github.com/UTDallasEPICS/the-samaritan-inn/internal/api/handler"
	"github.com/UTDallasEPICS/the-samaritan-inn/internal/api/router"
	"github.com/UTDallasEPICS/the-samaritan-inn/internal/realtime"
	"github.com/UTDallasEPICS/the-samaritan-inn/internal/repository"
	"github.com/UTDallasEPICS/the-samaritan-inn/internal/service"
	"github.com/UTDallasEPICS/the-samaritan-inn/pkg/database"
	"github.com/UTDallasEPICS/the-samaritan-inn/pkg/jwt"
	applogger "github.com/UTDallasEPICS/the-samaritan-inn/pkg/logger"
	"github.com/UTDallasEPICS/the-samaritan-inn/pkg/redis"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	// 1. config
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	// 2. logger
	logger, err := applogger.NewLogger(&cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("starting samaritan inn api",
		zap.Int("port", cfg.Server.Port),
		zap.String("log_level", cfg.Log.Level),
		zap.String("curfew_timezone", cfg.Curfew.Location().String()),
	)

	// 3. database + migrations
	db, err := database.NewDB(&cfg.Database, cfg.Log.Level, logger)
	if err != nil {
		logger.Fatal("connect database failed", zap.Error(err))
	}
	sqlDB, err := db.DB()
	if err != nil {
		logger.Fatal("get sql.DB failed", zap.Error(err))
	}
	if err := database.RunMigrations(sqlDB, logger); err != nil {
		logger.Fatal("run migrations failed", zap.Error(err))
	}

	// 4. redis is optional; without it logout cannot revoke tokens and login is not rate limited
	rdb, err := redis.NewClient(&cfg.Redis, logger)
	if err != nil {
		logger.Warn("redis unavailable, running degraded", zap.Error(err))
		rdb = nil
	}
	var revoker service.TokenRevoker
	if rdb != nil {
		revoker = rdb
	}

	// 5. realtime hub
	var (
		hub      *realtime.Hub
		notifier service.Notifier
	)
	if cfg.Feature.RealtimeEnabled {
		hub = realtime.NewHub(logger)
		notifier = hub
	}

	// 6. repository → service → handler
	jwtMgr := jwt.NewManager(&cfg.Auth)
	repo := repository.NewRepository(db)
	svc := service.NewService(cfg, repo, jwtMgr, revoker, notifier, logger)
	h := handler.NewHandler(cfg, svc)

	if cfg.Log.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := router.Setup(cfg, h, jwtMgr, rdb, db, hub, logger)

	// 7. HTTP server with graceful shutdown
	srv := &http.Server{
		Addr:        fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:     engine,
		ReadTimeout: 15 * time.Second,
		// exports and ICS fetches can take a while
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("http server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("http server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	logger.Info("shutting down", zap.String("signal", sig.String()))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// hijacked websocket connections are not tracked by Shutdown
	if hub != nil {
		hub.CloseAll()
	}
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server shutdown failed", zap.Error(err))
	}

	sqlDB.Close()
	if rdb != nil {
		rdb.Close()
	}

	logger.Info("server stopped")
}
