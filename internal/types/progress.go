package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const (
	ProgressStatusNotStarted = "not-started"
	ProgressStatusInProgress = "in-progress"
	ProgressStatusCompleted  = "completed"
)

// progressRank orders the module/path state machine. Transitions only move
// forward; a completed record never drops back to in-progress.
func ProgressRank(status string) int {
	switch status {
	case ProgressStatusInProgress:
		return 1
	case ProgressStatusCompleted:
		return 2
	default:
		return 0
	}
}

// StudentProgress is the per-student aggregate row: cumulative counters plus
// the free-form career progress object (last write wins, no history).
type StudentProgress struct {
	ID               uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID           uuid.UUID      `gorm:"type:uuid;not null;index:idx_student_progress_key,unique" json:"user_id"`
	StudentID        uuid.UUID      `gorm:"type:uuid;not null;index:idx_student_progress_key,unique" json:"student_id"`
	ModulesCompleted int            `gorm:"not null;default:0;column:modules_completed" json:"modules_completed"`
	XP               int            `gorm:"not null;default:0;column:xp" json:"xp"`
	StreakDays       int            `gorm:"not null;default:0;column:streak_days" json:"streak_days"`
	CareerProgress   datatypes.JSON `gorm:"type:jsonb;column:career_progress" json:"career_progress"`
	CreatedAt        time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt        time.Time      `gorm:"not null" json:"updated_at"`
}

func (StudentProgress) TableName() string { return "student_progress" }

// ModuleProgress rows replace the array-of-subdocuments shape: the composite
// unique index makes "one entry per module per student" structural.
type ModuleProgress struct {
	ID          uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID      uuid.UUID      `gorm:"type:uuid;not null;index:idx_module_progress_key,unique" json:"user_id"`
	StudentID   uuid.UUID      `gorm:"type:uuid;not null;index:idx_module_progress_key,unique" json:"student_id"`
	ModuleID    string         `gorm:"not null;index:idx_module_progress_key,unique;column:module_id" json:"module_id"`
	Status      string         `gorm:"not null;default:'not-started';column:status" json:"status"`
	Progress    float64        `gorm:"not null;default:0;column:progress" json:"progress"`
	LastPage    int            `gorm:"not null;default:0;column:last_page" json:"last_page"`
	Metadata    datatypes.JSON `gorm:"type:jsonb;column:metadata" json:"metadata"`
	CompletedAt *time.Time     `gorm:"column:completed_at" json:"completed_at,omitempty"`
	CreatedAt   time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"not null" json:"updated_at"`
}

func (ModuleProgress) TableName() string { return "module_progress" }

// PathProgress tracks advancement through a recommended learning path,
// keyed the same way module progress is.
type PathProgress struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID      `gorm:"type:uuid;not null;index:idx_path_progress_key,unique" json:"user_id"`
	StudentID uuid.UUID      `gorm:"type:uuid;not null;index:idx_path_progress_key,unique" json:"student_id"`
	PathID    string         `gorm:"not null;index:idx_path_progress_key,unique;column:path_id" json:"path_id"`
	Status    string         `gorm:"not null;default:'not-started';column:status" json:"status"`
	Progress  float64        `gorm:"not null;default:0;column:progress" json:"progress"`
	Milestone int            `gorm:"not null;default:0;column:milestone" json:"milestone"`
	Metadata  datatypes.JSON `gorm:"type:jsonb;column:metadata" json:"metadata"`
	CreatedAt time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null" json:"updated_at"`
}

func (PathProgress) TableName() string { return "path_progress" }
