package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/your-org/trackd/internal/auth"
	"github.com/your-org/trackd/internal/models"
	"github.com/your-org/trackd/internal/storage"
)

type LogHandler struct {
	db *storage.PostgresStore
}

func NewLogHandler(db *storage.PostgresStore) *LogHandler {
	return &LogHandler{db: db}
}

// List returns the audit trail, optionally bounded below by a RFC3339
// timestamp. Reading the trail is itself audited. Admin only.
func (h *LogHandler) List(c *gin.Context) {
	var (
		logs []models.ActionLog
		err  error
	)

	if since := c.Query("since"); since != "" {
		cutoff, parseErr := time.Parse(time.RFC3339, since)
		if parseErr != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "since must be RFC3339"})
			return
		}
		logs, err = h.db.ActionLogsAfter(c.Request.Context(), cutoff)
	} else {
		logs, err = h.db.ListActionLogs(c.Request.Context())
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	h.recordAccess(c, nil)

	c.JSON(http.StatusOK, gin.H{"logs": logs, "total": len(logs)})
}

// ByUser returns one user's audit entries.
func (h *LogHandler) ByUser(c *gin.Context) {
	logs, err := h.db.ActionLogsByUser(c.Request.Context(), c.Param("badge"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	h.recordAccess(c, nil)

	c.JSON(http.StatusOK, gin.H{"logs": logs, "total": len(logs)})
}

// Get returns a single audit entry and records which entry was inspected.
func (h *LogHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid log id"})
		return
	}

	entry, err := h.db.GetActionLog(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if entry == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "log entry not found"})
		return
	}

	h.recordAccess(c, &id)

	c.JSON(http.StatusOK, entry)
}

func (h *LogHandler) recordAccess(c *gin.Context, accessed *uuid.UUID) {
	entry := &models.ActionLog{
		UserBadge:   c.GetString(auth.ContextBadge),
		UserName:    c.GetString(auth.ContextName),
		Action:      models.ActionAccessLogs,
		LogAccessed: accessed,
	}
	_ = h.db.InsertActionLog(c.Request.Context(), entry)
}
