package models

import (
	"time"
)

// TaskStatus represents the status of a task
type TaskStatus string

const (
	StatusToDo       TaskStatus = "to-do"
	StatusInProgress TaskStatus = "in-progress"
	StatusReview     TaskStatus = "review"
	StatusDone       TaskStatus = "done"
)

// Valid reports whether s is one of the known statuses.
func (s TaskStatus) Valid() bool {
	switch s {
	case StatusToDo, StatusInProgress, StatusReview, StatusDone:
		return true
	}
	return false
}

// TaskPriority represents the priority of a task
type TaskPriority string

const (
	PriorityLow    TaskPriority = "low"
	PriorityMedium TaskPriority = "medium"
	PriorityHigh   TaskPriority = "high"
)

// Valid reports whether p is one of the known priorities.
func (p TaskPriority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// DateLayout is the wire format of due dates.
const DateLayout = "2006-01-02"

// Task is a unit of work on a board. BoardID and CreatedByID never change
// after creation. Assignee and reviewer are cleared, not cascaded, when the
// referenced user disappears.
type Task struct {
	ID          uint         `gorm:"primaryKey"`
	BoardID     uint         `gorm:"index;not null"`
	Board       Board        `gorm:"constraint:OnDelete:CASCADE"`
	Title       string       `gorm:"size:200;not null"`
	Description string       `gorm:"type:text;not null;default:''"`
	Status      TaskStatus   `gorm:"size:20;not null;index"`
	Priority    TaskPriority `gorm:"size:10;not null;index"`
	AssigneeID  *uint        `gorm:"index"`
	Assignee    *User        `gorm:"constraint:OnDelete:SET NULL"`
	ReviewerID  *uint        `gorm:"index"`
	Reviewer    *User        `gorm:"constraint:OnDelete:SET NULL"`
	DueDate     *time.Time
	CreatedByID uint `gorm:"index;not null"`
	CreatedBy   User `gorm:"constraint:OnDelete:CASCADE"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TableName specifies the table name for Task Model
func (Task) TableName() string {
	return "tasks"
}

// AllModels lists the models managed by AutoMigrate, in dependency order.
func AllModels() []any {
	return []any{&User{}, &AuthToken{}, &Board{}, &Task{}, &Comment{}}
}
