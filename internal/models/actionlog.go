package models

import (
	"time"

	"github.com/google/uuid"
)

type Action string

const (
	ActionLogin          Action = "login"
	ActionLogout         Action = "logout"
	ActionCreateReport   Action = "create_report"
	ActionStartAnalysis  Action = "start_analysis"
	ActionStopAnalysis   Action = "stop_analysis"
	ActionAccessLogs     Action = "access_logs"
	ActionCreateUser     Action = "create_user"
	ActionChangePassword Action = "change_password"
)

// ActionLog is one entry in the append-only audit trail.
type ActionLog struct {
	ID          uuid.UUID  `json:"id" db:"id"`
	UserBadge   string     `json:"user_badge" db:"user_badge"`
	UserName    string     `json:"user_name" db:"user_name"`
	Action      Action     `json:"action" db:"action"`
	LogAccessed *uuid.UUID `json:"log_accessed,omitempty" db:"log_accessed"`
	Timestamp   time.Time  `json:"timestamp" db:"timestamp"`
}
