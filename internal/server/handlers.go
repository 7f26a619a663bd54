package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/julianstephens/streakd/internal/service"
)

func (s *Server) handleCreateHabit(c *gin.Context) {
	var in service.CreateHabitInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	habit, err := s.svc.CreateHabit(c.Request.Context(), actorID(c), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, habit)
}

func (s *Server) handleListHabits(c *gin.Context) {
	habits, err := s.svc.ListHabits(c.Request.Context(), actorID(c), c.Query("category"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"habits": habits})
}

type checkInRequest struct {
	Note string `json:"note"`
}

func (s *Server) handleCheckIn(c *gin.Context) {
	var req checkInRequest
	// The body is optional; a bare POST is a check-in without a note.
	_ = c.ShouldBindJSON(&req)

	if err := s.svc.CheckIn(c.Request.Context(), actorID(c), c.Param("id"), req.Note); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (s *Server) handleDeleteHabit(c *gin.Context) {
	if err := s.svc.DeleteHabit(c.Request.Context(), actorID(c), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (s *Server) handleLeaderboard(c *gin.Context) {
	board, err := s.svc.Leaderboard(c.Request.Context(), actorID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"leaderboard": board})
}

func (s *Server) handleActivityFeed(c *gin.Context) {
	feed, err := s.svc.ActivityFeed(c.Request.Context(), actorID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"feed": feed})
}

func (s *Server) handleSearchUsers(c *gin.Context) {
	results, err := s.svc.SearchUsers(c.Request.Context(), actorID(c), c.Query("q"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": results})
}

func (s *Server) handleFollow(c *gin.Context) {
	if err := s.svc.Follow(c.Request.Context(), actorID(c), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true})
}

func (s *Server) handleUnfollow(c *gin.Context) {
	if err := s.svc.Unfollow(c.Request.Context(), actorID(c), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (s *Server) handleFollowStatus(c *gin.Context) {
	following, err := s.svc.IsFollowing(c.Request.Context(), actorID(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"following": following})
}
