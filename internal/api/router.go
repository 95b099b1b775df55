package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/openturf/territory-backend-go/internal/config"
	"github.com/openturf/territory-backend-go/internal/handler"
	"github.com/openturf/territory-backend-go/internal/middleware"
	"github.com/openturf/territory-backend-go/internal/syncq"
)

// Deps collects everything the router wires together.
type Deps struct {
	Config      *config.Config
	Log         *zap.Logger
	Registry    *prometheus.Registry
	Auth        *handler.AuthHandler
	Sessions    *handler.SessionHandler
	Territories *handler.TerritoryHandler
	Queue       *syncq.Queue
}

// SetupRouter builds the HTTP surface.
func SetupRouter(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(middleware.Logger(d.Log))
	r.Use(gin.Recovery())

	// CORS
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	})

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"message": "Territory backend is running",
		})
	})
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(d.Registry, promhttp.HandlerOpts{})))

	limiter := middleware.NewRateLimiter(d.Config.RateLimit, d.Config.RateWindow)

	api := r.Group("/api/v1")
	api.POST("/auth/token", d.Auth.IssueToken)

	authed := api.Group("")
	authed.Use(middleware.Auth(d.Config.JWTSecret))
	authed.Use(limiter.Middleware())
	{
		sessions := authed.Group("/sessions")
		{
			sessions.POST("", d.Sessions.Start)
			sessions.GET("", d.Sessions.History)
			sessions.GET("/current", d.Sessions.Current)
			sessions.DELETE("/current", d.Sessions.Stop)
			sessions.POST("/current/pause", d.Sessions.Pause)
			sessions.POST("/current/resume", d.Sessions.Resume)
			sessions.POST("/current/points", d.Sessions.IngestPoint)
			sessions.POST("/current/steps", d.Sessions.SetSteps)
		}

		territories := authed.Group("/territories")
		{
			territories.GET("", d.Territories.List)
			territories.GET("/mine", d.Territories.Mine)
			territories.GET("/score", d.Territories.Score)
			territories.DELETE("/:id", d.Territories.Delete)
		}

		// App foreground transition: drain the pending-upload queues now.
		authed.POST("/sync/foreground", func(c *gin.Context) {
			d.Queue.Foreground()
			c.JSON(http.StatusOK, gin.H{"status": "draining"})
		})
	}

	return r
}
