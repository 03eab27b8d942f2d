package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/your-org/trackd/internal/analysis"
	"github.com/your-org/trackd/internal/auth"
	"github.com/your-org/trackd/internal/models"
	"github.com/your-org/trackd/internal/storage"
	"github.com/your-org/trackd/internal/worker"
	"github.com/your-org/trackd/pkg/dto"
)

type AnalysisHandler struct {
	dispatcher *analysis.Dispatcher
	assembler  *analysis.Assembler
	worker     *worker.Client
	db         *storage.PostgresStore
}

func NewAnalysisHandler(dispatcher *analysis.Dispatcher, assembler *analysis.Assembler, workerClient *worker.Client, db *storage.PostgresStore) *AnalysisHandler {
	return &AnalysisHandler{dispatcher: dispatcher, assembler: assembler, worker: workerClient, db: db}
}

// Dispatch submits a batch analysis of every video in a report, optionally
// seeded with a suspect selection. Returns the correlation id immediately;
// the analysis proceeds out of band.
func (h *AnalysisHandler) Dispatch(c *gin.Context) {
	reportID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid report id"})
		return
	}

	var selected *dto.SelectedPoint
	if c.Request.ContentLength > 0 {
		var body dto.SelectedPoint
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		selected = &body
	}

	analysisID, err := h.dispatcher.DispatchReportAnalysis(c.Request.Context(), reportID, selected)
	if err != nil {
		writeAnalysisError(c, err)
		return
	}

	h.logAction(c, models.ActionStartAnalysis)

	c.JSON(http.StatusOK, dto.DispatchResponse{AnalysisID: analysisID, ReportID: reportID.String()})
}

// StartLive starts a live multi-camera analysis.
func (h *AnalysisHandler) StartLive(c *gin.Context) {
	cameraIDs := c.QueryArray("camerasId")

	analysisID, err := h.dispatcher.DispatchLiveAnalysis(c.Request.Context(), cameraIDs)
	if err != nil {
		writeAnalysisError(c, err)
		return
	}

	h.logAction(c, models.ActionStartAnalysis)

	c.JSON(http.StatusOK, dto.DispatchResponse{AnalysisID: analysisID})
}

// StopLive signals the worker to end a live session.
func (h *AnalysisHandler) StopLive(c *gin.Context) {
	if err := h.dispatcher.StopLiveAnalysis(c.Request.Context(), c.Param("id")); err != nil {
		writeAnalysisError(c, err)
		return
	}

	h.logAction(c, models.ActionStopAnalysis)

	c.Status(http.StatusNoContent)
}

// Get returns the assembled analysis response. An id the result store has
// never seen is 404; a known job with no detections yet is an empty 200.
func (h *AnalysisHandler) Get(c *gin.Context) {
	resp, err := h.assembler.BuildResponse(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeAnalysisError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// Timestamps returns the reconstructed camera dwell intervals, 404 when the
// job has produced nothing yet.
func (h *AnalysisHandler) Timestamps(c *gin.Context) {
	intervals, err := h.assembler.BuildTimeIntervals(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeAnalysisError(c, err)
		return
	}
	if len(intervals) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "no detections for analysis"})
		return
	}

	c.JSON(http.StatusOK, intervals)
}

// DispatchFace submits a face-match job over a report's videos.
func (h *AnalysisHandler) DispatchFace(c *gin.Context) {
	h.dispatchFaceJob(c, false)
}

// ValidateFace submits the lighter usable-face pre-check.
func (h *AnalysisHandler) ValidateFace(c *gin.Context) {
	h.dispatchFaceJob(c, true)
}

func (h *AnalysisHandler) dispatchFaceJob(c *gin.Context, validate bool) {
	analysisID := c.Param("id")
	reportID := c.PostForm("reportId")
	if reportID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "reportId is required"})
		return
	}

	file, _, err := c.Request.FormFile("faceImage")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "faceImage is required"})
		return
	}
	defer file.Close()

	image, err := io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "uploaded image is not valid"})
		return
	}

	if validate {
		err = h.dispatcher.DispatchFaceValidation(c.Request.Context(), analysisID, reportID, image)
	} else {
		err = h.dispatcher.DispatchFaceDetection(c.Request.Context(), analysisID, reportID, image)
	}
	if err != nil {
		writeAnalysisError(c, err)
		return
	}

	c.JSON(http.StatusAccepted, dto.DispatchResponse{AnalysisID: analysisID, ReportID: reportID})
}

// SearchPerson proxies the synchronous search-person lookup to the worker.
func (h *AnalysisHandler) SearchPerson(c *gin.Context) {
	var req dto.SearchPersonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	resp, err := h.worker.SearchPersonInFrame(c.Request.Context(), &req)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *AnalysisHandler) logAction(c *gin.Context, action models.Action) {
	entry := &models.ActionLog{
		UserBadge: c.GetString(auth.ContextBadge),
		UserName:  c.GetString(auth.ContextName),
		Action:    action,
	}
	// Audit writes never fail the request.
	_ = h.db.InsertActionLog(c.Request.Context(), entry)
}

// writeAnalysisError maps the analysis error taxonomy onto HTTP statuses.
func writeAnalysisError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, analysis.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, analysis.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, analysis.ErrDispatchFailed):
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
	case errors.Is(err, analysis.ErrStoreUnavailable):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
