package models

// Group is a named topic that posts may belong to.
type Group struct {
	ID          uint   `gorm:"primarykey" json:"id"`
	Title       string `gorm:"size:200;not null" json:"title"`
	Slug        string `gorm:"size:100;uniqueIndex;not null" json:"slug"`
	Description string `gorm:"type:text" json:"description"`
}

func (g Group) String() string {
	return g.Title
}
