package types

import (
	"time"

	"github.com/google/uuid"
)

// Student is the role-specific record behind a user with role=student.
// UniqueID is the platform-wide business key; downstream records
// (assessments, learning paths, video progress) correlate on it rather
// than on the row id.
type Student struct {
	ID                  uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID              uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"user_id"`
	User                *User     `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"user,omitempty"`
	UniqueID            string    `gorm:"uniqueIndex;not null;column:unique_id" json:"unique_id"`
	Grade               string    `gorm:"column:grade" json:"grade"`
	OnboardingCompleted bool      `gorm:"not null;default:false;column:onboarding_completed" json:"onboarding_completed"`
	AssessmentCompleted bool      `gorm:"not null;default:false;column:assessment_completed" json:"assessment_completed"`
	ModulesCompleted    int       `gorm:"not null;default:0;column:modules_completed" json:"modules_completed"`
	XP                  int       `gorm:"not null;default:0;column:xp" json:"xp"`
	StreakDays          int       `gorm:"not null;default:0;column:streak_days" json:"streak_days"`
	CreatedAt           time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt           time.Time `gorm:"not null" json:"updated_at"`
}

func (Student) TableName() string { return "student" }
