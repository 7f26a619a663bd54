package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// handleCronReminders runs one reminder sweep. When a cron secret is
// configured the caller must present it as a bearer token; with no secret
// configured the endpoint is open, which is only sensible behind a private
// network.
func (s *Server) handleCronReminders(c *gin.Context) {
	if s.cronSecret != "" && c.GetHeader("Authorization") != "Bearer "+s.cronSecret {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	summary, err := s.sweeper.Run(c.Request.Context())
	if err != nil {
		s.logger.Error("reminder sweep failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "reminder sweep failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"attempted": summary.Attempted,
		"sent":      summary.Sent,
		"reminders": summary.Results,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
