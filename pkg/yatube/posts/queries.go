package posts

import (
	"github.com/mikepea/yatube/pkg/yatube/models"
	"github.com/mikepea/yatube/pkg/yatube/pagination"
	"gorm.io/gorm"
)

func inGroup(groupID uint) pagination.Scope {
	return func(q *gorm.DB) *gorm.DB {
		return q.Where("posts.group_id = ?", groupID)
	}
}

func byAuthor(authorID uint) pagination.Scope {
	return func(q *gorm.DB) *gorm.DB {
		return q.Where("posts.author_id = ?", authorID)
	}
}

// followedBy keeps posts whose author the user follows.
func followedBy(db *gorm.DB, userID uint) pagination.Scope {
	return func(q *gorm.DB) *gorm.DB {
		authors := db.Model(&models.Follow{}).Select("author_id").Where("user_id = ?", userID)
		return q.Where("posts.author_id IN (?)", authors)
	}
}
