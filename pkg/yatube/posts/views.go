package posts

import (
	"github.com/mikepea/yatube/pkg/yatube/models"
	"github.com/mikepea/yatube/pkg/yatube/pagination"
	"github.com/mikepea/yatube/pkg/yatube/web"
)

// View-models, one per template under posts/.

type indexPage struct {
	web.Layout
	Page pagination.Page[models.Post]
}

type groupPage struct {
	web.Layout
	Group models.Group
	Page  pagination.Page[models.Post]
}

type profilePage struct {
	web.Layout
	Author    models.User
	PostCount int64
	// CanFollow is false for anonymous viewers and on one's own profile.
	CanFollow bool
	Following bool
	Page      pagination.Page[models.Post]
}

type detailPage struct {
	web.Layout
	Post            models.Post
	AuthorPostCount int64
	Following       bool
	CanEdit         bool
	Comments        []models.Comment
	CommentForm     CommentForm
}

type postFormPage struct {
	web.Layout
	IsEdit bool
	Post   *models.Post
	Form   PostForm
	Errors map[string]string
	Groups []models.Group
}
