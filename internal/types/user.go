package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const (
	RoleStudent            = "student"
	RoleParent             = "parent"
	RoleTeacher            = "teacher"
	RoleOrganization       = "organization"
	RoleAdmin              = "admin"
	RolePlatformSuperAdmin = "platform_super_admin"
)

func ValidRole(role string) bool {
	switch role {
	case RoleStudent, RoleParent, RoleTeacher, RoleOrganization, RoleAdmin, RolePlatformSuperAdmin:
		return true
	default:
		return false
	}
}

type User struct {
	ID              uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Email           string         `gorm:"uniqueIndex;not null;column:email" json:"email"`
	Password        string         `gorm:"not null;column:password" json:"-"`
	FirstName       string         `gorm:"not null;column:first_name" json:"first_name"`
	LastName        string         `gorm:"not null;column:last_name" json:"last_name"`
	Role            string         `gorm:"not null;index;column:role" json:"role"`
	Profile         datatypes.JSON `gorm:"type:jsonb;column:profile" json:"profile"`
	FirstTimeLogin  bool           `gorm:"not null;default:true;column:first_time_login" json:"first_time_login"`
	IsActive        bool           `gorm:"not null;default:true;column:is_active" json:"is_active"`
	AvatarBucketKey string         `gorm:"column:avatar_bucket_key" json:"avatar_bucket_key"`
	AvatarURL       string         `gorm:"column:avatar_url" json:"avatar_url"`
	CreatedAt       time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt       time.Time      `gorm:"not null" json:"updated_at"`
}

func (User) TableName() string {
	return "user"
}
