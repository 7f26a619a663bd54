// Package server exposes the streakd core over HTTP. Authentication itself
// is external: a fronting identity layer is expected to set the
// X-Streakd-User header, and its absence makes every core operation fail
// with unauthorized.
package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/julianstephens/streakd/internal/reminder"
	"github.com/julianstephens/streakd/internal/service"
)

// IdentityHeader carries the authenticated user id set by the auth layer.
const IdentityHeader = "X-Streakd-User"

const actorKey = "actor_id"

type Server struct {
	svc        *service.Service
	sweeper    *reminder.Sweeper
	logger     *slog.Logger
	cronSecret string
}

func New(svc *service.Service, sweeper *reminder.Sweeper, logger *slog.Logger, cronSecret string) *Server {
	return &Server{
		svc:        svc,
		sweeper:    sweeper,
		logger:     logger,
		cronSecret: cronSecret,
	}
}

// Router builds the gin engine with all routes attached.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.requestLog())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// The cron endpoint authenticates with its own secret, not a user
	// identity. Both methods, for cron services that prefer POST.
	r.GET("/api/cron/reminders", s.handleCronReminders)
	r.POST("/api/cron/reminders", s.handleCronReminders)

	api := r.Group("/api", s.identity())
	{
		api.POST("/habits", s.handleCreateHabit)
		api.GET("/habits", s.handleListHabits)
		api.POST("/habits/:id/checkin", s.handleCheckIn)
		api.DELETE("/habits/:id", s.handleDeleteHabit)

		api.GET("/leaderboard", s.handleLeaderboard)
		api.GET("/feed", s.handleActivityFeed)

		api.GET("/users/search", s.handleSearchUsers)
		api.POST("/users/:id/follow", s.handleFollow)
		api.DELETE("/users/:id/follow", s.handleUnfollow)
		api.GET("/users/:id/follow", s.handleFollowStatus)
	}

	return r
}

// identity copies the authenticated user id into the request context. The
// service layer is the single place that rejects a missing identity.
func (s *Server) identity() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(actorKey, c.GetHeader(IdentityHeader))
		c.Next()
	}
}

func actorID(c *gin.Context) string {
	return c.GetString(actorKey)
}

func (s *Server) requestLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Info("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
		)
	}
}

func statusFor(err error) int {
	switch service.KindOf(err) {
	case service.KindUnauthorized:
		return http.StatusUnauthorized
	case service.KindNotFound, service.KindForbidden:
		return http.StatusNotFound
	case service.KindValidation:
		return http.StatusBadRequest
	case service.KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func respondError(c *gin.Context, err error) {
	c.JSON(statusFor(err), gin.H{"error": service.UserMessage(err)})
}
