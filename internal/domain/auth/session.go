package auth

import (
	"time"

	"github.com/google/uuid"
	"github.com/yungbote/recipebook-backend/internal/domain/user"
)

// Session records one issued refresh token by its jti. Rotation and logout
// delete the row; a token whose jti has no live session is rejected.
type Session struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID  `gorm:"type:uuid;index;not null;column:user_id" json:"user_id"`
	User      *user.User `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"-"`
	ExpiresAt time.Time  `gorm:"index;not null;column:expires_at" json:"expires_at"`
	CreatedAt time.Time  `gorm:"not null" json:"created_at"`
}

func (Session) TableName() string { return "user_session" }

func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.After(now)
}
