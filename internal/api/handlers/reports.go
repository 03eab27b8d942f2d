package handlers

import (
	"encoding/base64"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/your-org/trackd/internal/auth"
	"github.com/your-org/trackd/internal/models"
	"github.com/your-org/trackd/internal/storage"
	"github.com/your-org/trackd/pkg/dto"
)

type ReportHandler struct {
	db    *storage.PostgresStore
	blobs *storage.MinIOStore
}

func NewReportHandler(db *storage.PostgresStore, blobs *storage.MinIOStore) *ReportHandler {
	return &ReportHandler{db: db, blobs: blobs}
}

// Create registers a report with one upload slot per camera and hands back
// presigned PUT URLs for the video uploads. Every camera must exist and be
// active.
func (h *ReportHandler) Create(c *gin.Context) {
	var req dto.NewReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	active, err := h.db.CountActiveCameras(c.Request.Context(), req.Cameras)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if active != len(req.Cameras) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "one or more cameras are unknown or inactive"})
		return
	}

	badge := c.GetString(auth.ContextBadge)
	report, uploads, err := h.db.CreateReport(c.Request.Context(), req.Name, badge, req.Cameras)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	resp, err := h.reportResponse(c, report, uploads)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	entry := &models.ActionLog{
		UserBadge: badge,
		UserName:  c.GetString(auth.ContextName),
		Action:    models.ActionCreateReport,
	}
	_ = h.db.InsertActionLog(c.Request.Context(), entry)

	c.JSON(http.StatusCreated, resp)
}

func (h *ReportHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid report id"})
		return
	}

	report, err := h.db.GetReport(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if report == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "report not found"})
		return
	}

	uploads, err := h.db.UploadsForReport(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	resp, err := h.reportResponse(c, report, uploads)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *ReportHandler) List(c *gin.Context) {
	reports, err := h.db.ListReports(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	out := dto.ReportListResponse{Reports: make([]dto.ReportResponse, 0, len(reports))}
	for i := range reports {
		out.Reports = append(out.Reports, dto.ReportResponse{
			ID:        reports[i].ID,
			Name:      reports[i].Name,
			Creator:   reports[i].CreatorBadge,
			CreatedAt: reports[i].CreatedAt.Format(time.RFC3339),
		})
	}
	out.Total = len(out.Reports)

	c.JSON(http.StatusOK, out)
}

// Analyses lists every analysis id that has stored results for a report.
func (h *ReportHandler) Analyses(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid report id"})
		return
	}

	ids, err := h.db.DistinctAnalysisIDsByReportID(c.Request.Context(), id.String())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, dto.ReportAnalysisResponse{AnalysisIDs: ids})
}

// StoreSuspectImage attaches a suspect reference photo to a report.
func (h *ReportHandler) StoreSuspectImage(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid report id"})
		return
	}

	file, header, err := c.Request.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "image is required"})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "uploaded image is not valid"})
		return
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	key := storage.SuspectImageKey(id.String())
	if err := h.blobs.PutObject(c.Request.Context(), key, data, contentType); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	slog.Info("suspect image stored", "report_id", id, "size", len(data))
	c.Status(http.StatusNoContent)
}

// SuspectImage returns the suspect reference photo as base64.
func (h *ReportHandler) SuspectImage(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid report id"})
		return
	}

	key := storage.SuspectImageKey(id.String())
	exists, err := h.blobs.ObjectExists(c.Request.Context(), key)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if !exists {
		c.JSON(http.StatusNotFound, gin.H{"error": "no suspect image for report"})
		return
	}

	data, err := h.blobs.GetObject(c.Request.Context(), key)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"image": base64.StdEncoding.EncodeToString(data)})
}

// Video streams one uploaded video slot back to the caller.
func (h *ReportHandler) Video(c *gin.Context) {
	reportID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid report id"})
		return
	}
	uploadID, err := uuid.Parse(c.Param("uploadId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid upload id"})
		return
	}

	key := storage.VideoObjectKey(reportID.String(), uploadID.String())
	exists, err := h.blobs.ObjectExists(c.Request.Context(), key)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if !exists {
		c.JSON(http.StatusNotFound, gin.H{"error": "video not uploaded"})
		return
	}

	data, err := h.blobs.GetObject(c.Request.Context(), key)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.Data(http.StatusOK, "video/mp4", data)
}

// reportResponse folds a report and its upload slots into the API shape,
// issuing presigned upload URLs for slots that still lack an object.
func (h *ReportHandler) reportResponse(c *gin.Context, report *models.Report, uploads []models.Upload) (*dto.ReportResponse, error) {
	resp := &dto.ReportResponse{
		ID:        report.ID,
		Name:      report.Name,
		Creator:   report.CreatorBadge,
		Uploads:   make([]dto.UploadSlot, 0, len(uploads)),
		CreatedAt: report.CreatedAt.Format(time.RFC3339),
	}

	for i := range uploads {
		key := storage.VideoObjectKey(report.ID.String(), uploads[i].ID.String())
		uploaded, err := h.blobs.ObjectExists(c.Request.Context(), key)
		if err != nil {
			return nil, err
		}

		slot := dto.UploadSlot{ID: uploads[i].ID, CameraID: uploads[i].CameraID, Uploaded: uploaded}
		if !uploaded {
			url, err := h.blobs.PresignedUploadURL(c.Request.Context(), key)
			if err != nil {
				return nil, err
			}
			slot.UploadURL = url
		}
		resp.Uploads = append(resp.Uploads, slot)
	}

	return resp, nil
}
