package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/your-org/trackd/internal/queue"
	"github.com/your-org/trackd/internal/storage"
)

type SystemHandler struct {
	db    *storage.PostgresStore
	blobs *storage.MinIOStore
	mq    *queue.Producer
}

func NewSystemHandler(db *storage.PostgresStore, blobs *storage.MinIOStore, mq *queue.Producer) *SystemHandler {
	return &SystemHandler{db: db, blobs: blobs, mq: mq}
}

func (h *SystemHandler) Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Readyz reports ready only when every backing service answers.
func (h *SystemHandler) Readyz(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	checks := gin.H{}
	ready := true

	if err := h.db.Ping(ctx); err != nil {
		checks["postgres"] = err.Error()
		ready = false
	} else {
		checks["postgres"] = "ok"
	}

	if err := h.blobs.Ping(ctx); err != nil {
		checks["minio"] = err.Error()
		ready = false
	} else {
		checks["minio"] = "ok"
	}

	if err := h.mq.Ping(); err != nil {
		checks["nats"] = err.Error()
		ready = false
	} else {
		checks["nats"] = "ok"
	}

	status := http.StatusOK
	if !ready {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, checks)
}
