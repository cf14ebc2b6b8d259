package models

import (
	"time"
)

// User represents a registered account. Email is the login identifier and is
// stored lower-cased.
type User struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Email     string    `json:"email" gorm:"size:254;uniqueIndex;not null"`
	Fullname  string    `json:"fullname" gorm:"size:150;not null"`
	Password  string    `json:"-" gorm:"not null"`
	IsActive  bool      `json:"-" gorm:"not null;default:true"`
	IsStaff   bool      `json:"-" gorm:"not null;default:false"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}

// TableName specifies the table name for User Model
func (User) TableName() string {
	return "users"
}

// UserPublic is the representation of a user embedded in other resources.
type UserPublic struct {
	ID       uint   `json:"id"`
	Email    string `json:"email"`
	Fullname string `json:"fullname"`
}

// Public returns the public representation of u.
func (u User) Public() UserPublic {
	return UserPublic{ID: u.ID, Email: u.Email, Fullname: u.Fullname}
}

// PublicOrNil returns nil for a nil user.
func PublicOrNil(u *User) *UserPublic {
	if u == nil {
		return nil
	}
	p := u.Public()
	return &p
}
