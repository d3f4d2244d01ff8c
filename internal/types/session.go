package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// SessionPageData is a whole-document "resume where you left off" snapshot
// per (user, page). Saves replace the previous snapshot; there is no merge.
type SessionPageData struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID      `gorm:"type:uuid;not null;index:idx_page_data_key,unique" json:"user_id"`
	Page      string         `gorm:"not null;index:idx_page_data_key,unique;column:page" json:"page"`
	Data      datatypes.JSON `gorm:"type:jsonb;column:data" json:"data"`
	Metadata  datatypes.JSON `gorm:"type:jsonb;column:metadata" json:"metadata"`
	SavedAt   time.Time      `gorm:"not null;column:saved_at" json:"saved_at"`
	CreatedAt time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null" json:"updated_at"`
}

func (SessionPageData) TableName() string { return "session_page_data" }

// UserSession is the lightweight UX continuation pointer: one active row per
// user correlating them to their most recent activity. It is not a security
// session.
type UserSession struct {
	ID                uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID            uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex" json:"user_id"`
	StudentID         *uuid.UUID     `gorm:"type:uuid;column:student_id" json:"student_id,omitempty"`
	CurrentPage       string         `gorm:"column:current_page" json:"current_page"`
	NavigationHistory datatypes.JSON `gorm:"type:jsonb;column:navigation_history" json:"navigation_history"`
	LastActiveAt      time.Time      `gorm:"not null;column:last_active_at" json:"last_active_at"`
	CreatedAt         time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt         time.Time      `gorm:"not null" json:"updated_at"`
}

func (UserSession) TableName() string { return "user_session" }

// NavigationEntry is one element of UserSession.NavigationHistory.
type NavigationEntry struct {
	Page      string    `json:"page"`
	VisitedAt time.Time `json:"visited_at"`
}
