package server

import (
	"github.com/example/keebstore/pkg/repository"
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

// recordAudit writes an audit entry for a state-changing request. Audit
// failures are logged, never surfaced to the caller.
func (s *Server) recordAudit(c *gin.Context, action, entityID string, data bson.M) {
	entry := &repository.AuditLog{
		Action:   action,
		EntityID: entityID,
		ActorID:  c.GetString(ctxUserID),
		Data:     data,
	}
	if err := s.deps.Audit.Record(c.Request.Context(), entry); err != nil {
		s.logger.Warn("failed to record audit log",
			zap.String("action", action),
			zap.String("entity_id", entityID),
			zap.Error(err))
	}
}
