// Package importexport moves a user's posts in and out as JSON.
package importexport

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mikepea/yatube/pkg/yatube/auth"
	"github.com/mikepea/yatube/pkg/yatube/logging"
	"github.com/mikepea/yatube/pkg/yatube/models"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Handler handles import/export requests
type Handler struct {
	db       *gorm.DB
	mediaURL func(key string) string
}

// NewHandler creates a new import/export handler. mediaURL resolves image
// keys in exported posts.
func NewHandler(db *gorm.DB, mediaURL func(key string) string) *Handler {
	if mediaURL == nil {
		mediaURL = func(key string) string { return "/media/" + key }
	}
	return &Handler{db: db, mediaURL: mediaURL}
}

// ImportPost is one post to import. Group is a group slug.
type ImportPost struct {
	Text  string `json:"text"`
	Group string `json:"group"`
}

// ImportRequest represents an import request
type ImportRequest struct {
	Posts []ImportPost `json:"posts" binding:"required"`
}

// ImportResult represents the result of an import operation
type ImportResult struct {
	Imported int      `json:"imported"`
	Skipped  int      `json:"skipped"`
	Errors   []string `json:"errors,omitempty"`
}

// ExportPost represents a post for export
type ExportPost struct {
	ID        uint   `json:"id"`
	Text      string `json:"text"`
	Group     string `json:"group,omitempty"`
	CreatedAt string `json:"created_at"`
	Image     string `json:"image,omitempty"`
}

// Import creates posts for the current user. Blank posts are skipped; a post
// naming an unknown group is imported without one. Creation times are
// always the time of import.
func (h *Handler) Import(c *gin.Context) {
	userID, _ := auth.GetUserID(c)

	var req ImportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var groups []models.Group
	if err := h.db.Find(&groups).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch groups"})
		return
	}
	groupIDs := make(map[string]uint, len(groups))
	for _, g := range groups {
		groupIDs[g.Slug] = g.ID
	}

	result := ImportResult{Errors: []string{}}
	var posts []models.Post
	for i, p := range req.Posts {
		if strings.TrimSpace(p.Text) == "" {
			result.Errors = append(result.Errors, fmt.Sprintf("post %d: text is blank", i))
			result.Skipped++
			continue
		}

		post := models.Post{Text: p.Text, AuthorID: userID}
		if slug := strings.TrimSpace(p.Group); slug != "" {
			if id, ok := groupIDs[slug]; ok {
				post.GroupID = &id
			} else {
				result.Errors = append(result.Errors, fmt.Sprintf("post %d: unknown group %q, imported without group", i, slug))
			}
		}
		posts = append(posts, post)
	}

	if len(posts) > 0 {
		err := h.db.Transaction(func(tx *gorm.DB) error {
			return tx.Create(&posts).Error
		})
		if err != nil {
			logging.Log.WithError(err).WithField("user_id", userID).Error("import posts failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to import posts"})
			return
		}
	}
	result.Imported = len(posts)

	logging.Log.WithFields(logrus.Fields{
		"user_id":  userID,
		"imported": result.Imported,
		"skipped":  result.Skipped,
	}).Info("posts imported")
	c.JSON(http.StatusOK, result)
}

// Export returns every post of the current user, newest first
func (h *Handler) Export(c *gin.Context) {
	userID, _ := auth.GetUserID(c)

	var posts []models.Post
	if err := h.db.Preload("Group").Where("author_id = ?", userID).Order(models.PostOrder).Find(&posts).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch posts"})
		return
	}

	export := make([]ExportPost, len(posts))
	for i, p := range posts {
		export[i] = ExportPost{
			ID:        p.ID,
			Text:      p.Text,
			CreatedAt: p.CreatedAt.UTC().Format(time.RFC3339),
		}
		if p.Group != nil {
			export[i].Group = p.Group.Slug
		}
		if p.Image != "" {
			export[i].Image = h.mediaURL(p.Image)
		}
	}

	c.JSON(http.StatusOK, export)
}

// RegisterRoutes registers import/export routes on the given router group
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/posts/export", h.Export)
	rg.POST("/posts/import", h.Import)
}
