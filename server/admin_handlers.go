package server

import (
	"net/http"
	"strconv"

	"github.com/example/keebstore/pkg/models"
	"github.com/example/keebstore/pkg/pricing"
	"github.com/example/keebstore/pkg/repository"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func (s *Server) adminStats(c *gin.Context) {
	ctx := c.Request.Context()

	orderCount, revenue, err := s.deps.Orders.Stats(ctx)
	if err != nil {
		s.logger.Error("failed to aggregate order stats", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "failed to load stats"})
		return
	}

	userCount, err := s.deps.Users.Count(ctx)
	if err != nil {
		s.logger.Error("failed to count users", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "failed to load stats"})
		return
	}

	productCount, err := s.deps.Products.Count(ctx)
	if err != nil {
		s.logger.Error("failed to count products", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "failed to load stats"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"orders":   orderCount,
		"revenue":  pricing.Round2(revenue),
		"users":    userCount,
		"products": productCount,
	})
}

func (s *Server) listUsers(c *gin.Context) {
	users, err := s.deps.Users.ListAll(c.Request.Context())
	if err != nil {
		s.logger.Error("failed to list users", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "failed to list users"})
		return
	}
	if users == nil {
		users = []models.User{}
	}
	c.JSON(http.StatusOK, users)
}

// auditTrail returns the most recent audit entries for one entity, newest
// first.
func (s *Server) auditTrail(c *gin.Context) {
	limit, _ := strconv.ParseInt(c.DefaultQuery("limit", "50"), 10, 64)
	if limit <= 0 {
		limit = 50
	}

	logs, err := s.deps.Audit.ListByEntity(c.Request.Context(), c.Param("entityId"), limit)
	if err != nil {
		s.logger.Error("failed to list audit logs", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "failed to load audit trail"})
		return
	}
	if logs == nil {
		logs = []*repository.AuditLog{}
	}
	c.JSON(http.StatusOK, logs)
}
