package models

import "time"

// Board is a shared workspace. The owner has implicit access and is not
// required to be listed in Members.
type Board struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Title     string    `json:"title" gorm:"size:200;not null"`
	OwnerID   uint      `json:"owner_id" gorm:"index;not null"`
	Owner     User      `json:"-" gorm:"constraint:OnDelete:CASCADE"`
	Members   []User    `json:"-" gorm:"many2many:board_members;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}

// TableName specifies the table name for Board Model
func (Board) TableName() string {
	return "boards"
}

// MemberIDs returns the ids of the loaded members.
func (b Board) MemberIDs() []uint {
	ids := make([]uint, 0, len(b.Members))
	for _, m := range b.Members {
		ids = append(ids, m.ID)
	}
	return ids
}
