package api

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/your-org/trackd/internal/analysis"
	"github.com/your-org/trackd/internal/api/handlers"
	"github.com/your-org/trackd/internal/api/ws"
	"github.com/your-org/trackd/internal/auth"
	"github.com/your-org/trackd/internal/queue"
	"github.com/your-org/trackd/internal/storage"
	"github.com/your-org/trackd/internal/worker"
)

type RouterConfig struct {
	Tokens     *auth.Service
	DB         *storage.PostgresStore
	MinIO      *storage.MinIOStore
	Producer   *queue.Producer
	Dispatcher *analysis.Dispatcher
	Assembler  *analysis.Assembler
	Worker     *worker.Client
	Hub        *ws.Hub
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(LoggingMiddleware())
	r.Use(cors.Default())

	// System endpoints (no auth)
	systemH := handlers.NewSystemHandler(cfg.DB, cfg.MinIO, cfg.Producer)
	r.GET("/healthz", systemH.Healthz)
	r.GET("/readyz", systemH.Readyz)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	userH := handlers.NewUserHandler(cfg.DB, cfg.Tokens)
	r.POST("/api/v1/auth/login", userH.Login)

	// API v1 (with auth)
	v1 := r.Group("/api/v1")
	v1.Use(auth.Middleware(cfg.Tokens))

	// WebSocket
	v1.GET("/ws", cfg.Hub.HandleWS)

	// Users
	v1.POST("/users", auth.RequireAdmin(), userH.Create)
	v1.POST("/users/password", userH.ChangePassword)

	// Cameras
	cameraH := handlers.NewCameraHandler(cfg.DB)
	v1.POST("/cameras", cameraH.Create)
	v1.GET("/cameras", cameraH.List)
	v1.GET("/cameras/:id", cameraH.Get)
	v1.PUT("/cameras/:id", cameraH.Update)
	v1.DELETE("/cameras/:id", cameraH.Deactivate)

	// Reports
	reportH := handlers.NewReportHandler(cfg.DB, cfg.MinIO)
	v1.POST("/reports", reportH.Create)
	v1.GET("/reports", reportH.List)
	v1.GET("/reports/:id", reportH.Get)
	v1.GET("/reports/:id/analysis", reportH.Analyses)
	v1.POST("/reports/:id/suspect-image", reportH.StoreSuspectImage)
	v1.GET("/reports/:id/suspect-image", reportH.SuspectImage)
	v1.GET("/reports/:id/uploads/:uploadId/video", reportH.Video)

	// Analysis
	analysisH := handlers.NewAnalysisHandler(cfg.Dispatcher, cfg.Assembler, cfg.Worker, cfg.DB)
	v1.POST("/analysis/:id", analysisH.Dispatch)
	v1.GET("/analysis/live", analysisH.StartLive)
	v1.POST("/analysis/live/:id", analysisH.StopLive)
	v1.GET("/analysis/:id", analysisH.Get)
	v1.GET("/analysis/:id/timestamps", analysisH.Timestamps)
	v1.POST("/analysis/:id/face", analysisH.DispatchFace)
	v1.POST("/analysis/:id/face/validate", analysisH.ValidateFace)
	v1.POST("/analysis/search-person", analysisH.SearchPerson)

	// Audit trail
	logH := handlers.NewLogHandler(cfg.DB)
	v1.GET("/logs", auth.RequireAdmin(), logH.List)
	v1.GET("/logs/user/:badge", auth.RequireAdmin(), logH.ByUser)
	v1.GET("/logs/:id", auth.RequireAdmin(), logH.Get)

	return r
}
