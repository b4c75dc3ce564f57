// Package posts serves the post listings, post pages, the post form,
// comments and follow edges.
package posts

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/mikepea/yatube/pkg/yatube/auth"
	"github.com/mikepea/yatube/pkg/yatube/logging"
	"github.com/mikepea/yatube/pkg/yatube/media"
	"github.com/mikepea/yatube/pkg/yatube/models"
	"github.com/mikepea/yatube/pkg/yatube/pagination"
	"github.com/mikepea/yatube/pkg/yatube/validation"
	"github.com/mikepea/yatube/pkg/yatube/web"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Handler handles the post pages
type Handler struct {
	db    *gorm.DB
	media media.Store

	PerPage        int
	MaxUploadBytes int64
}

// NewHandler creates a new posts handler
func NewHandler(db *gorm.DB, store media.Store) *Handler {
	validation.MustRegister()
	return &Handler{
		db:             db,
		media:          store,
		PerPage:        pagination.DefaultPerPage,
		MaxUploadBytes: 5 << 20,
	}
}

func (h *Handler) pageRequest(c *gin.Context) pagination.Request {
	return pagination.Request{
		PerPage: h.PerPage,
		Page:    c.Query("page"),
		Order:   models.PostOrder,
		Preload: []string{"Author", "Group"},
	}
}

// Index lists every post, newest first
func (h *Handler) Index(c *gin.Context) {
	page, err := pagination.Paginate[models.Post](h.db, h.pageRequest(c))
	if err != nil {
		h.serverError(c, err, "list posts")
		return
	}
	c.HTML(http.StatusOK, "posts/index.html", indexPage{
		Layout: auth.Layout(c, "Latest updates"),
		Page:   page,
	})
}

// GroupPosts lists the posts of one group
func (h *Handler) GroupPosts(c *gin.Context) {
	var group models.Group
	if err := h.db.Where("slug = ?", c.Param("slug")).First(&group).Error; err != nil {
		h.notFoundOr(c, err, "load group")
		return
	}

	page, err := pagination.Paginate[models.Post](h.db, h.pageRequest(c), inGroup(group.ID))
	if err != nil {
		h.serverError(c, err, "list group posts")
		return
	}
	c.HTML(http.StatusOK, "posts/group_list.html", groupPage{
		Layout: auth.Layout(c, "Group "+group.Title),
		Group:  group,
		Page:   page,
	})
}

// Profile lists an author's posts
func (h *Handler) Profile(c *gin.Context) {
	author, ok := h.findAuthor(c)
	if !ok {
		return
	}

	page, err := pagination.Paginate[models.Post](h.db, h.pageRequest(c), byAuthor(author.ID))
	if err != nil {
		h.serverError(c, err, "list author posts")
		return
	}
	viewer := auth.CurrentUser(c)
	following, err := h.isFollowing(viewer, author.ID)
	if err != nil {
		h.serverError(c, err, "check follow")
		return
	}

	c.HTML(http.StatusOK, "posts/profile.html", profilePage{
		Layout:    auth.Layout(c, "Profile of "+author.FullName()),
		Author:    author,
		PostCount: page.Count,
		CanFollow: viewer != nil && viewer.ID != author.ID,
		Following: following,
		Page:      page,
	})
}

// PostDetail shows a post with its comments
func (h *Handler) PostDetail(c *gin.Context) {
	post, ok := h.findPost(c)
	if !ok {
		return
	}

	var comments []models.Comment
	if err := h.db.Preload("Author").Where("post_id = ?", post.ID).Order(models.CommentOrder).Find(&comments).Error; err != nil {
		h.serverError(c, err, "list comments")
		return
	}
	var authorPosts int64
	if err := h.db.Model(&models.Post{}).Scopes(byAuthor(post.AuthorID)).Count(&authorPosts).Error; err != nil {
		h.serverError(c, err, "count author posts")
		return
	}
	viewer := auth.CurrentUser(c)
	following, err := h.isFollowing(viewer, post.AuthorID)
	if err != nil {
		h.serverError(c, err, "check follow")
		return
	}

	c.HTML(http.StatusOK, "posts/post_detail.html", detailPage{
		Layout:          auth.Layout(c, "Post "+post.String()),
		Post:            post,
		AuthorPostCount: authorPosts,
		Following:       following,
		CanEdit:         viewer != nil && viewer.ID == post.AuthorID,
		Comments:        comments,
	})
}

// FollowIndex lists the posts of every author the viewer follows
func (h *Handler) FollowIndex(c *gin.Context) {
	viewer := auth.CurrentUser(c)
	page, err := pagination.Paginate[models.Post](h.db, h.pageRequest(c), followedBy(h.db, viewer.ID))
	if err != nil {
		h.serverError(c, err, "list followed posts")
		return
	}
	c.HTML(http.StatusOK, "posts/follow.html", indexPage{
		Layout: auth.Layout(c, "Subscriptions"),
		Page:   page,
	})
}

// RegisterRoutes registers the post pages. indexMiddleware runs in front of
// the home listing only.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, indexMiddleware ...gin.HandlerFunc) {
	login := auth.LoginRequired()
	upload := h.limitUpload()

	rg.GET("/", append(indexMiddleware, h.Index)...)
	rg.GET("/group/:slug/", h.GroupPosts)
	rg.GET("/follow/", login, h.FollowIndex)

	rg.GET("/profile/:username/", h.Profile)
	rg.POST("/profile/:username/follow/", login, h.ProfileFollow)
	rg.POST("/profile/:username/unfollow/", login, h.ProfileUnfollow)

	rg.GET("/create/", login, h.CreatePage)
	rg.POST("/create/", login, upload, h.Create)

	rg.GET("/posts/:post_id/", h.PostDetail)
	rg.GET("/posts/:post_id/edit/", login, h.EditPage)
	rg.POST("/posts/:post_id/edit/", login, upload, h.Edit)
	rg.POST("/posts/:post_id/comment/", login, h.AddComment)
}

func (h *Handler) findAuthor(c *gin.Context) (models.User, bool) {
	var author models.User
	if err := h.db.Where("username = ?", c.Param("username")).First(&author).Error; err != nil {
		h.notFoundOr(c, err, "load author")
		return author, false
	}
	return author, true
}

func (h *Handler) findPost(c *gin.Context) (models.Post, bool) {
	var post models.Post
	id, err := strconv.ParseUint(c.Param("post_id"), 10, 64)
	if err != nil {
		h.notFound(c)
		return post, false
	}
	if err := h.db.Preload("Author").Preload("Group").First(&post, id).Error; err != nil {
		h.notFoundOr(c, err, "load post")
		return post, false
	}
	return post, true
}

func (h *Handler) isFollowing(viewer *models.User, authorID uint) (bool, error) {
	if viewer == nil || viewer.ID == authorID {
		return false, nil
	}
	var count int64
	err := h.db.Model(&models.Follow{}).Where("user_id = ? AND author_id = ?", viewer.ID, authorID).Count(&count).Error
	return count > 0, err
}

func (h *Handler) notFound(c *gin.Context) {
	c.HTML(http.StatusNotFound, "core/404.html", web.NotFoundPage{
		Layout: auth.Layout(c, "Page not found"),
		Path:   c.Request.URL.Path,
	})
}

func (h *Handler) notFoundOr(c *gin.Context, err error, action string) {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		h.notFound(c)
		return
	}
	h.serverError(c, err, action)
}

func (h *Handler) serverError(c *gin.Context, err error, action string) {
	logging.Log.WithError(err).WithFields(logrus.Fields{
		"action": action,
		"path":   c.Request.URL.Path,
	}).Error("request failed")
	c.HTML(http.StatusInternalServerError, "core/500.html", auth.Layout(c, "Server error"))
}
