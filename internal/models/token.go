package models

import "time"

// AuthToken is the single active API token of a user. The token string handed
// to clients is derived from this row, so deleting it revokes the token.
type AuthToken struct {
	ID        uint      `gorm:"primaryKey"`
	UserID    uint      `gorm:"uniqueIndex;not null"`
	User      User      `gorm:"constraint:OnDelete:CASCADE"`
	TokenID   string    `gorm:"size:36;uniqueIndex;not null"`
	CreatedAt time.Time `gorm:"not null"`
}

// TableName specifies the table name for AuthToken Model
func (AuthToken) TableName() string {
	return "auth_tokens"
}
