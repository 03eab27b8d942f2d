package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/your-org/trackd/internal/models"
	"github.com/your-org/trackd/internal/storage"
	"github.com/your-org/trackd/pkg/dto"
)

type CameraHandler struct {
	db *storage.PostgresStore
}

func NewCameraHandler(db *storage.PostgresStore) *CameraHandler {
	return &CameraHandler{db: db}
}

func (h *CameraHandler) Create(c *gin.Context) {
	var req dto.CreateCameraRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	cam, err := h.db.CreateCamera(c.Request.Context(), req.Name, req.Latitude, req.Longitude)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, cameraResponse(cam))
}

func (h *CameraHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid camera id"})
		return
	}

	cam, err := h.db.GetCamera(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if cam == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "camera not found"})
		return
	}

	c.JSON(http.StatusOK, cameraResponse(cam))
}

func (h *CameraHandler) List(c *gin.Context) {
	cameras, err := h.db.ListCameras(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	out := dto.CameraListResponse{Cameras: make([]dto.CameraResponse, 0, len(cameras))}
	for i := range cameras {
		out.Cameras = append(out.Cameras, *cameraResponse(&cameras[i]))
	}
	out.Total = len(out.Cameras)

	c.JSON(http.StatusOK, out)
}

func (h *CameraHandler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid camera id"})
		return
	}

	var req dto.UpdateCameraRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	cam, err := h.db.GetCamera(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if cam == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "camera not found"})
		return
	}

	cam.Name = req.Name
	cam.Latitude = req.Latitude
	cam.Longitude = req.Longitude
	cam.Active = req.Active
	if err := h.db.UpdateCamera(c.Request.Context(), cam); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, cameraResponse(cam))
}

// Deactivate retires a camera without losing its history.
func (h *CameraHandler) Deactivate(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid camera id"})
		return
	}

	if err := h.db.SetCameraActive(c.Request.Context(), id, false); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.Status(http.StatusNoContent)
}

func cameraResponse(cam *models.Camera) *dto.CameraResponse {
	return &dto.CameraResponse{
		ID:        cam.ID,
		Name:      cam.Name,
		Latitude:  cam.Latitude,
		Longitude: cam.Longitude,
		Active:    cam.Active,
		AddedAt:   cam.AddedAt.Format(time.RFC3339),
	}
}
