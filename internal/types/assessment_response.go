package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const (
	AssessmentStatusNotStarted = "not-started"
	AssessmentStatusInProgress = "in-progress"
	AssessmentStatusCompleted  = "completed"
)

// AssessmentResponse holds one active response per (unique_id,
// assessment_type); writes go through upsert, never insert-on-duplicate.
type AssessmentResponse struct {
	ID              uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UniqueID        string         `gorm:"not null;index:idx_assessment_key,unique;column:unique_id" json:"unique_id"`
	AssessmentType  string         `gorm:"not null;index:idx_assessment_key,unique;column:assessment_type" json:"assessment_type"`
	Status          string         `gorm:"not null;default:'not-started';column:status" json:"status"`
	CurrentQuestion int            `gorm:"not null;default:0;column:current_question" json:"current_question"`
	Answers         datatypes.JSON `gorm:"type:jsonb;column:answers" json:"answers"`
	Questions       datatypes.JSON `gorm:"type:jsonb;column:questions" json:"questions"`
	Result          datatypes.JSON `gorm:"type:jsonb;column:result" json:"result"`
	CreatedAt       time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt       time.Time      `gorm:"not null" json:"updated_at"`
}

func (AssessmentResponse) TableName() string { return "assessment_response" }
