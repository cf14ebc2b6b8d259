package models

import "time"

// Comment is an append-only note on a task. CreatedAt is set on insert and
// never changed.
type Comment struct {
	ID        uint      `gorm:"primaryKey"`
	TaskID    uint      `gorm:"index;not null"`
	Task      Task      `gorm:"constraint:OnDelete:CASCADE"`
	AuthorID  uint      `gorm:"index;not null"`
	Author    User      `gorm:"constraint:OnDelete:CASCADE"`
	Content   string    `gorm:"type:text;not null"`
	CreatedAt time.Time `gorm:"autoCreateTime;not null"`
}

// TableName specifies the table name for Comment Model
func (Comment) TableName() string {
	return "comments"
}
