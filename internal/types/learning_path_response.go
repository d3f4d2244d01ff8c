package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// LearningPathOutput is the fixed recommendation schema produced by the
// external recommendation process. Consumers (UI, automation) depend on
// these field names verbatim; do not rename.
type LearningPathOutput struct {
	Greeting     string           `json:"greeting"`
	Overview     []string         `json:"overview"`
	TimeRequired string           `json:"timeRequired"`
	FocusAreas   []string         `json:"focusAreas"`
	LearningPath []LearningOption `json:"learningPath"`
	FinalTip     string           `json:"finalTip"`
}

// LearningOption is one step of the recommended sequence.
type LearningOption struct {
	ModuleID    string `json:"moduleId"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Duration    string `json:"duration,omitempty"`
	Order       int    `json:"order"`
}

// LearningPathResponse stores a recommendation per (unique_id, career).
// Resubmitting the same career updates the row in place; the count per
// (unique_id, career) never exceeds one.
type LearningPathResponse struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UniqueID  string         `gorm:"not null;index:idx_learning_path_key,unique;column:unique_id" json:"unique_id"`
	Career    string         `gorm:"not null;index:idx_learning_path_key,unique;column:career" json:"career"`
	Output    datatypes.JSON `gorm:"type:jsonb;column:output" json:"output"`
	CreatedAt time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null" json:"updated_at"`
}

func (LearningPathResponse) TableName() string { return "learning_path_response" }
