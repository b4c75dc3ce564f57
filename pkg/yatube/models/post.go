package models

import (
	"time"
)

// PostOrder is the listing order for posts: newest first, ties broken by id.
const PostOrder = "posts.created_at DESC, posts.id DESC"

// Post is a single authored text entry, optionally grouped and illustrated.
// CreatedAt is written once on insert and ignored by updates.
type Post struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	Text      string    `gorm:"type:text;not null" json:"text"`
	CreatedAt time.Time `gorm:"<-:create;index" json:"created_at"`
	AuthorID  uint      `gorm:"not null;index" json:"author_id"`
	GroupID   *uint     `gorm:"index" json:"group_id"`
	Image     string    `gorm:"size:255" json:"image,omitempty"` // media key under the posts/ upload path

	// Relationships
	Author User   `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE" json:"author,omitempty"`
	Group  *Group `gorm:"foreignKey:GroupID;constraint:OnDelete:SET NULL" json:"group,omitempty"`
}

func (p Post) String() string {
	return truncate(p.Text, 15)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
