package router

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/UTDallasEPICS/the-samaritan-inn/config"
	"github.com/UTDallasEPICS/the-samaritan-inn/internal/api/handler"
	"github.com/UTDallasEPICS/the-samaritan-inn/internal/api/middleware"
	"github.com/UTDallasEPICS/the-samaritan-inn/internal/model"
	"github.com/UTDallasEPICS/the-samaritan-inn/internal/realtime"
	"github.com/UTDallasEPICS/the-samaritan-inn/pkg/jwt"
	"github.com/UTDallasEPICS/the-samaritan-inn/pkg/redis"
)

// Setup builds the Gin engine. rdb, db and hub may be nil; the features
// backed by them then degrade or are left unregistered.
func Setup(cfg *config.Config, h *handler.Handler, jwtMgr *jwt.Manager, rdb *redis.Client, db *gorm.DB, hub *realtime.Hub, logger *zap.Logger) *gin.Engine {
	r := gin.New()

	// avoid storing a typed nil in the interfaces
	var (
		revocation middleware.RevocationChecker
		limiter    middleware.RateLimiter
	)
	if rdb != nil {
		revocation = rdb
		limiter = rdb
	}

	// ── global middleware ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.BodyLimit(cfg.Server.BodyLimitBytes))

	r.GET("/health", healthCheck(rdb, db))

	v1 := r.Group("/api/v1")
	{
		auth := v1.Group("/auth")
		{
			auth.POST("/register", h.Auth.Register)
			auth.POST("/login",
				middleware.RateLimit(limiter, cfg.Auth.LoginRateLimit, cfg.Auth.LoginRateWindow),
				h.Auth.Login)
		}

		authorized := v1.Group("")
		authorized.Use(middleware.JWTAuth(jwtMgr, revocation, cfg.Auth.Cookie.Name, logger))
		{
			authorized.POST("/auth/logout", h.Auth.Logout)
			authorized.GET("/auth/me", h.Auth.GetCurrentUser)

			authorized.GET("/caseworkers", h.Curfew.ListCaseWorkers)

			// residents submit, admins decide; listing is scoped in the service
			curfew := authorized.Group("/curfew")
			{
				curfew.POST("/submit", middleware.RoleAuth(model.RoleResident, model.RoleUser), h.Curfew.Submit)
				curfew.POST("", middleware.RoleAuth(model.RoleAdmin), h.Curfew.Decide)
				curfew.GET("", h.Curfew.List)
				curfew.GET("/export", middleware.RoleAuth(model.RoleAdmin), h.Export.ExportCurfewRequests)
				curfew.GET("/:id", h.Curfew.Get)
			}

			announcements := authorized.Group("/announcements")
			{
				announcements.GET("", h.Announcement.List)
				announcements.POST("", middleware.RoleAuth(model.RoleAdmin), h.Announcement.Create)
				announcements.PUT("/:id", middleware.RoleAuth(model.RoleAdmin), h.Announcement.Update)
				announcements.DELETE("/:id", middleware.RoleAuth(model.RoleAdmin), h.Announcement.Delete)
			}

			events := authorized.Group("/events")
			{
				events.GET("", h.Event.List)
				events.POST("", middleware.RoleAuth(model.RoleAdmin), h.Event.Create)
				events.POST("/import", middleware.RoleAuth(model.RoleAdmin), h.Event.ImportICS)
				events.PUT("/:id", middleware.RoleAuth(model.RoleAdmin), h.Event.Update)
				events.DELETE("/:id", middleware.RoleAuth(model.RoleAdmin), h.Event.Delete)
			}

			authorized.GET("/calendar.ics", h.Event.CalendarFeed)

			if cfg.Feature.RealtimeEnabled && hub != nil {
				authorized.GET("/ws", realtime.Handler(hub, realtime.OriginPatterns(cfg.Server.CORS.AllowOrigins), logger))
			}
		}
	}

	return r
}

func healthCheck(rdb *redis.Client, db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		status := http.StatusOK
		checks := gin.H{}

		if db != nil {
			checks["database"] = "ok"
			if sqlDB, err := db.DB(); err != nil || sqlDB.PingContext(ctx) != nil {
				checks["database"] = "down"
				status = http.StatusServiceUnavailable
			}
		}

		// redis is optional
		checks["redis"] = "disabled"
		if rdb != nil {
			checks["redis"] = "ok"
			if err := rdb.Ping(ctx); err != nil {
				checks["redis"] = "degraded"
			}
		}

		state := "ok"
		if status != http.StatusOK {
			state = "unavailable"
		}
		c.JSON(status, gin.H{"status": state, "checks": checks})
	}
}
