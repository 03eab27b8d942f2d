package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/your-org/trackd/internal/config"
	"github.com/your-org/trackd/internal/models"
)

type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(cfg config.DatabaseConfig) (*PostgresStore, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}
	poolCfg.MaxConns = int32(cfg.MaxConns)

	pool, err := pgxpool.NewWithConfig(context.Background(), poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}

	if err := pool.Ping(context.Background()); err != nil {
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	return &PostgresStore{pool: pool}, nil
}

func (s *PostgresStore) Close() {
	s.pool.Close()
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// --- Cameras ---

func (s *PostgresStore) CreateCamera(ctx context.Context, name string, latitude, longitude float64) (*models.Camera, error) {
	cam := &models.Camera{
		ID:        uuid.New(),
		Name:      name,
		Latitude:  latitude,
		Longitude: longitude,
		Active:    true,
	}
	err := s.pool.QueryRow(ctx,
		`INSERT INTO cameras (id, name, latitude, longitude, active) VALUES ($1, $2, $3, $4, $5) RETURNING added_at`,
		cam.ID, cam.Name, cam.Latitude, cam.Longitude, cam.Active,
	).Scan(&cam.AddedAt)
	if err != nil {
		return nil, fmt.Errorf("create camera: %w", err)
	}
	return cam, nil
}

func (s *PostgresStore) GetCamera(ctx context.Context, id uuid.UUID) (*models.Camera, error) {
	cam := &models.Camera{}
	err := s.pool.QueryRow(ctx,
		`SELECT id, name, latitude, longitude, active, added_at FROM cameras WHERE id = $1`, id,
	).Scan(&cam.ID, &cam.Name, &cam.Latitude, &cam.Longitude, &cam.Active, &cam.AddedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get camera: %w", err)
	}
	return cam, nil
}

func (s *PostgresStore) ListCameras(ctx context.Context) ([]models.Camera, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, name, latitude, longitude, active, added_at FROM cameras ORDER BY added_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list cameras: %w", err)
	}
	defer rows.Close()

	var cameras []models.Camera
	for rows.Next() {
		var cam models.Camera
		if err := rows.Scan(&cam.ID, &cam.Name, &cam.Latitude, &cam.Longitude, &cam.Active, &cam.AddedAt); err != nil {
			return nil, fmt.Errorf("scan camera: %w", err)
		}
		cameras = append(cameras, cam)
	}
	return cameras, nil
}

func (s *PostgresStore) UpdateCamera(ctx context.Context, cam *models.Camera) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE cameras SET name = $1, latitude = $2, longitude = $3, active = $4 WHERE id = $5`,
		cam.Name, cam.Latitude, cam.Longitude, cam.Active, cam.ID)
	if err != nil {
		return fmt.Errorf("update camera: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("camera not found")
	}
	return nil
}

func (s *PostgresStore) SetCameraActive(ctx context.Context, id uuid.UUID, active bool) error {
	tag, err := s.pool.Exec(ctx, `UPDATE cameras SET active = $1 WHERE id = $2`, active, id)
	if err != nil {
		return fmt.Errorf("set camera active: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("camera not found")
	}
	return nil
}

// CountActiveCameras returns how many of the given ids are active cameras.
// Used to validate a new report's camera list in one round trip.
func (s *PostgresStore) CountActiveCameras(ctx context.Context, ids []uuid.UUID) (int, error) {
	var count int
	err := s.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM cameras WHERE id = ANY($1) AND active`, ids,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count active cameras: %w", err)
	}
	return count, nil
}

// --- Reports & uploads ---

// CreateReport inserts the report and one upload slot per camera, in order,
// in a single transaction.
func (s *PostgresStore) CreateReport(ctx context.Context, name, creatorBadge string, cameraIDs []uuid.UUID) (*models.Report, []models.Upload, error) {
	report := &models.Report{
		ID:           uuid.New(),
		Name:         name,
		CreatorBadge: creatorBadge,
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx,
		`INSERT INTO reports (id, name, creator_badge) VALUES ($1, $2, $3) RETURNING created_at`,
		report.ID, report.Name, report.CreatorBadge,
	).Scan(&report.CreatedAt)
	if err != nil {
		return nil, nil, fmt.Errorf("create report: %w", err)
	}

	uploads := make([]models.Upload, 0, len(cameraIDs))
	for _, camID := range cameraIDs {
		up := models.Upload{ID: uuid.New(), ReportID: report.ID, CameraID: camID}
		if _, err := tx.Exec(ctx,
			`INSERT INTO uploads (id, report_id, camera_id) VALUES ($1, $2, $3)`,
			up.ID, up.ReportID, up.CameraID,
		); err != nil {
			return nil, nil, fmt.Errorf("create upload slot: %w", err)
		}
		uploads = append(uploads, up)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, nil, fmt.Errorf("commit report: %w", err)
	}
	return report, uploads, nil
}

func (s *PostgresStore) GetReport(ctx context.Context, id uuid.UUID) (*models.Report, error) {
	report := &models.Report{}
	err := s.pool.QueryRow(ctx,
		`SELECT id, name, creator_badge, created_at FROM reports WHERE id = $1`, id,
	).Scan(&report.ID, &report.Name, &report.CreatorBadge, &report.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get report: %w", err)
	}
	return report, nil
}

func (s *PostgresStore) ListReports(ctx context.Context) ([]models.Report, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, name, creator_badge, created_at FROM reports ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}
	defer rows.Close()

	var reports []models.Report
	for rows.Next() {
		var r models.Report
		if err := rows.Scan(&r.ID, &r.Name, &r.CreatorBadge, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan report: %w", err)
		}
		reports = append(reports, r)
	}
	return reports, nil
}

// UploadsForReport returns the report's slots in insertion order, or nil if
// the report does not exist.
func (s *PostgresStore) UploadsForReport(ctx context.Context, reportID uuid.UUID) ([]models.Upload, error) {
	report, err := s.GetReport(ctx, reportID)
	if err != nil {
		return nil, err
	}
	if report == nil {
		return nil, nil
	}

	rows, err := s.pool.Query(ctx,
		`SELECT id, report_id, camera_id FROM uploads WHERE report_id = $1 ORDER BY id`, reportID)
	if err != nil {
		return nil, fmt.Errorf("list uploads: %w", err)
	}
	defer rows.Close()

	uploads := make([]models.Upload, 0)
	for rows.Next() {
		var up models.Upload
		if err := rows.Scan(&up.ID, &up.ReportID, &up.CameraID); err != nil {
			return nil, fmt.Errorf("scan upload: %w", err)
		}
		uploads = append(uploads, up)
	}
	return uploads, nil
}

// CameraForVideo maps an upload (video slot) id to its owning camera.
// Returns uuid.Nil with a nil error when no mapping exists, including when
// the id is not an upload id at all.
func (s *PostgresStore) CameraForVideo(ctx context.Context, videoID string) (uuid.UUID, error) {
	uploadID, err := uuid.Parse(videoID)
	if err != nil {
		return uuid.Nil, nil
	}

	var cameraID uuid.UUID
	err = s.pool.QueryRow(ctx,
		`SELECT camera_id FROM uploads WHERE id = $1`, uploadID,
	).Scan(&cameraID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return uuid.Nil, nil
		}
		return uuid.Nil, fmt.Errorf("resolve upload camera: %w", err)
	}
	return cameraID, nil
}

// --- Users ---

func (s *PostgresStore) CreateUser(ctx context.Context, u *models.User) error {
	err := s.pool.QueryRow(ctx,
		`INSERT INTO users (badge, name, email, password_hash, is_admin) VALUES ($1, $2, $3, $4, $5) RETURNING created_at`,
		u.Badge, u.Name, u.Email, u.PasswordHash, u.IsAdmin,
	).Scan(&u.CreatedAt)
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetUser(ctx context.Context, badge string) (*models.User, error) {
	u := &models.User{}
	err := s.pool.QueryRow(ctx,
		`SELECT badge, name, email, password_hash, is_admin, created_at FROM users WHERE badge = $1`, badge,
	).Scan(&u.Badge, &u.Name, &u.Email, &u.PasswordHash, &u.IsAdmin, &u.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

func (s *PostgresStore) CountUsers(ctx context.Context) (int, error) {
	var count int
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return count, nil
}

func (s *PostgresStore) UpdateUserPassword(ctx context.Context, badge, passwordHash string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE users SET password_hash = $1 WHERE badge = $2`, passwordHash, badge)
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("user not found")
	}
	return nil
}

// --- Action logs ---

func (s *PostgresStore) InsertActionLog(ctx context.Context, entry *models.ActionLog) error {
	entry.ID = uuid.New()
	entry.Timestamp = time.Now().UTC()
	_, err := s.pool.Exec(ctx,
		`INSERT INTO action_logs (id, user_badge, user_name, action, log_accessed, timestamp) VALUES ($1, $2, $3, $4, $5, $6)`,
		entry.ID, entry.UserBadge, entry.UserName, entry.Action, entry.LogAccessed, entry.Timestamp)
	if err != nil {
		return fmt.Errorf("insert action log: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListActionLogs(ctx context.Context) ([]models.ActionLog, error) {
	return s.queryActionLogs(ctx,
		`SELECT id, user_badge, user_name, action, log_accessed, timestamp FROM action_logs ORDER BY timestamp DESC`)
}

func (s *PostgresStore) ActionLogsByUser(ctx context.Context, badge string) ([]models.ActionLog, error) {
	return s.queryActionLogs(ctx,
		`SELECT id, user_badge, user_name, action, log_accessed, timestamp FROM action_logs WHERE user_badge = $1 ORDER BY timestamp DESC`,
		badge)
}

func (s *PostgresStore) ActionLogsAfter(ctx context.Context, cutoff time.Time) ([]models.ActionLog, error) {
	return s.queryActionLogs(ctx,
		`SELECT id, user_badge, user_name, action, log_accessed, timestamp FROM action_logs WHERE timestamp > $1 ORDER BY timestamp DESC`,
		cutoff)
}

func (s *PostgresStore) GetActionLog(ctx context.Context, id uuid.UUID) (*models.ActionLog, error) {
	entry := &models.ActionLog{}
	err := s.pool.QueryRow(ctx,
		`SELECT id, user_badge, user_name, action, log_accessed, timestamp FROM action_logs WHERE id = $1`, id,
	).Scan(&entry.ID, &entry.UserBadge, &entry.UserName, &entry.Action, &entry.LogAccessed, &entry.Timestamp)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get action log: %w", err)
	}
	return entry, nil
}

func (s *PostgresStore) queryActionLogs(ctx context.Context, query string, args ...interface{}) ([]models.ActionLog, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query action logs: %w", err)
	}
	defer rows.Close()

	var logs []models.ActionLog
	for rows.Next() {
		var entry models.ActionLog
		if err := rows.Scan(&entry.ID, &entry.UserBadge, &entry.UserName, &entry.Action, &entry.LogAccessed, &entry.Timestamp); err != nil {
			return nil, fmt.Errorf("scan action log: %w", err)
		}
		logs = append(logs, entry)
	}
	return logs, nil
}
