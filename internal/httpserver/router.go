package httpserver

import (
	"context"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/jaeho19/sdc-lab-dashboard2-sub001/internal/handler"
	"github.com/jaeho19/sdc-lab-dashboard2-sub001/internal/metrics"
)

type Router struct {
	Engine *gin.Engine
}

func NewRouter(
	authHandler *handler.AuthHandler,
	projectHandler *handler.ProjectHandler,
	notificationHandler *handler.NotificationHandler,
	goalHandler *handler.GoalHandler,
	sweepHandler *handler.SweepHandler,
	jwtSecret string,
	db *pgxpool.Pool,
	logger *zap.Logger,
) *Router {
	r := gin.Default()

	r.Use(func(c *gin.Context) {
		start := time.Now()
		path := c.FullPath()

		c.Next()

		latency := time.Since(start)
		metrics.RecordHTTPRequestDuration(
			c.Request.Method, path, strconv.Itoa(c.Writer.Status()), latency,
		)
		logger.Info("HTTP Request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", latency),
			zap.String("client_ip", c.ClientIP()),
		)
	})

	// Health endpoints
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	r.HEAD("/healthz", func(c *gin.Context) {
		c.Status(200)
	})
	r.GET("/readyz", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c, 1*time.Second)
		defer cancel()

		if err := db.Ping(ctx); err != nil {
			c.JSON(500, gin.H{"status": "db_not_ready", "error": err.Error()})
			return
		}
		c.JSON(200, gin.H{"status": "ready"})
	})

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Public
	r.POST("/register", authHandler.Register)
	r.POST("/login", authHandler.Login)

	// Sweep trigger for the external scheduler; guarded by the cron secret,
	// not by member JWTs.
	r.GET("/internal/sweep/deadlines", sweepHandler.Trigger)
	r.POST("/internal/sweep/deadlines", sweepHandler.Trigger)

	// Protected
	auth := r.Group("/")
	auth.Use(AuthMiddleware(jwtSecret))
	{
		auth.POST("/projects", projectHandler.Create)
		auth.GET("/projects", projectHandler.List)
		auth.GET("/projects/:id", projectHandler.Get)
		auth.DELETE("/projects/:id", projectHandler.Delete)
		auth.PUT("/projects/:id/submission-status", projectHandler.UpdateSubmissionStatus)
		auth.POST("/projects/:id/archive", projectHandler.Archive)
		auth.POST("/projects/:id/members", projectHandler.AssignMember)
		auth.POST("/projects/:id/milestones", projectHandler.AddMilestone)
		auth.PUT("/milestones/:id/weight", projectHandler.UpdateMilestoneWeight)
		auth.DELETE("/milestones/:id", projectHandler.RemoveMilestone)
		auth.PUT("/checklist/:id", projectHandler.ToggleChecklistItem)

		auth.POST("/projects/:id/goals", goalHandler.Create)
		auth.GET("/projects/:id/goals", goalHandler.List)

		auth.GET("/notifications", notificationHandler.List)
		auth.POST("/notifications/:id/read", notificationHandler.MarkRead)
	}

	return &Router{Engine: r}
}

func (r *Router) Run(port string) error {
	return r.Engine.Run(port)
}
