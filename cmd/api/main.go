package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nats-io/nats.go/jetstream"
	"golang.org/x/crypto/bcrypt"

	"github.com/your-org/trackd/internal/analysis"
	"github.com/your-org/trackd/internal/api"
	"github.com/your-org/trackd/internal/api/ws"
	"github.com/your-org/trackd/internal/auth"
	"github.com/your-org/trackd/internal/config"
	"github.com/your-org/trackd/internal/models"
	"github.com/your-org/trackd/internal/observability"
	"github.com/your-org/trackd/internal/queue"
	"github.com/your-org/trackd/internal/storage"
	"github.com/your-org/trackd/internal/worker"
	"github.com/your-org/trackd/pkg/dto"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	observability.SetupLogger(cfg.Logging.Level, cfg.Logging.Format)

	slog.Info("starting trackd API service", "port", cfg.Server.Port)

	// Connect to Postgres
	db, err := storage.NewPostgresStore(cfg.Database)
	if err != nil {
		slog.Error("connect to postgres", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := seedAdmin(context.Background(), db, cfg.Server.AdminBadge, cfg.Server.AdminPassword); err != nil {
		slog.Warn("seed admin account", "error", err)
	}

	// Connect to MinIO
	minioStore, err := storage.NewMinIOStore(cfg.MinIO)
	if err != nil {
		slog.Error("connect to minio", "error", err)
		os.Exit(1)
	}
	if err := minioStore.EnsureBucket(context.Background()); err != nil {
		slog.Warn("ensure minio bucket", "error", err)
	}

	// Connect to NATS
	producer, err := queue.NewProducer(cfg.NATS.URL)
	if err != nil {
		slog.Error("connect to nats", "error", err)
		os.Exit(1)
	}
	defer producer.Close()

	if err := producer.EnsureStreams(context.Background()); err != nil {
		slog.Warn("ensure nats streams", "error", err)
	}

	// WebSocket hub
	hub := ws.NewHub()
	go hub.Run()

	// Consume worker detections: persist, then push to watching clients.
	consumer, err := queue.NewConsumer(cfg.NATS.URL)
	if err != nil {
		slog.Error("create detection consumer", "error", err)
		os.Exit(1)
	}
	defer consumer.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	err = consumer.ConsumeDetections(ctx, "api-detections", func(ctx context.Context, msg jetstream.Msg) error {
		var result models.DetectionResult
		if err := json.Unmarshal(msg.Data(), &result); err != nil {
			// A malformed payload never becomes valid on redelivery.
			slog.Error("malformed detection payload", "error", err)
			return nil
		}

		det, err := db.InsertDetection(ctx, &result)
		if err != nil {
			slog.Error("store detection", "error", err)
			return err
		}
		observability.DetectionsStored.Inc()

		hub.BroadcastEvent(&dto.WSEvent{
			Type:       "detection",
			AnalysisID: det.AnalysisID,
			Data:       detectionEvent(det),
		})

		return nil
	})
	if err != nil {
		slog.Warn("start detection consumer", "error", err)
	}

	// Core analysis wiring
	resolver := storage.NewReportVideoResolver(db, cfg.MinIO.Bucket, cfg.MinIO.PublicURL)
	dispatcher := analysis.NewDispatcher(producer, resolver)
	timeline := analysis.NewTimelineReconstructor(db)
	assembler := analysis.NewAssembler(db, timeline)

	tokens := auth.NewService(cfg.Server.JWTSecret, cfg.Server.TokenTTL)
	workerClient := worker.NewClient(cfg.Worker)

	// Setup router
	router := api.NewRouter(api.RouterConfig{
		Tokens:     tokens,
		DB:         db,
		MinIO:      minioStore,
		Producer:   producer,
		Dispatcher: dispatcher,
		Assembler:  assembler,
		Worker:     workerClient,
		Hub:        hub,
	})

	// Start HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("API server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down API server...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown error", "error", err)
	}

	slog.Info("API server stopped")
}

// seedAdmin creates the initial admin account on an empty users table.
func seedAdmin(ctx context.Context, db *storage.PostgresStore, badge, password string) error {
	if password == "" {
		return nil
	}

	count, err := db.CountUsers(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	admin := &models.User{
		Badge:        badge,
		Name:         "Administrator",
		PasswordHash: string(hash),
		IsAdmin:      true,
		CreatedAt:    time.Now().UTC(),
	}
	if err := db.CreateUser(ctx, admin); err != nil {
		return err
	}

	slog.Info("seeded admin account", "badge", badge)
	return nil
}

func detectionEvent(det *models.Detection) dto.DetectionEvent {
	box := make([]dto.Point, 0, len(det.DetectionBox))
	for _, p := range det.DetectionBox {
		box = append(box, dto.Point{X: p.X, Y: p.Y})
	}

	return dto.DetectionEvent{
		ID:               det.ID.String(),
		VideoID:          det.VideoID,
		AnalysisID:       det.AnalysisID,
		ReportID:         det.ReportID,
		Confidence:       det.Confidence,
		Timestamp:        det.Timestamp,
		Type:             det.Type,
		DetectionBox:     box,
		SegmentationMask: det.SegmentationMask,
		CreatedAt:        det.CreatedAt.Format(time.RFC3339),
	}
}
