package models

import (
	"time"
)

// CommentOrder lists comments oldest first.
const CommentOrder = "comments.created_at ASC, comments.id ASC"

// Comment is immutable once created; there is no edit or delete path.
type Comment struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	PostID    uint      `gorm:"not null;index" json:"post_id"`
	AuthorID  uint      `gorm:"not null;index" json:"author_id"`
	Text      string    `gorm:"type:text;not null" json:"text"`
	CreatedAt time.Time `gorm:"<-:create" json:"created_at"`

	// Relationships
	Post   Post `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE" json:"-"`
	Author User `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE" json:"author,omitempty"`
}

func (c Comment) String() string {
	return truncate(c.Text, 15)
}
