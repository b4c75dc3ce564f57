package models

import (
	"time"
)

// Follow is a directed edge: User receives Author's posts in their feed.
// The pair is unique and a user cannot follow themselves.
type Follow struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_follow_user_author;check:chk_follow_not_self,user_id <> author_id" json:"user_id"`
	AuthorID  uint      `gorm:"not null;uniqueIndex:idx_follow_user_author;index" json:"author_id"`

	// Relationships
	User   User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Author User `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE" json:"-"`
}
