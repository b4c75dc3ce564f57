package admin

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/mikepea/yatube/pkg/yatube/logging"
	"github.com/mikepea/yatube/pkg/yatube/models"
	"github.com/mikepea/yatube/pkg/yatube/validation"
	"gorm.io/gorm"
)

// CreateGroupRequest represents the request to create a group
type CreateGroupRequest struct {
	Title       string `json:"title" binding:"required,notblank,max=200"`
	Slug        string `json:"slug" binding:"required,max=100,slug"`
	Description string `json:"description"`
}

// UpdateGroupRequest represents the request to update a group
type UpdateGroupRequest struct {
	Title       *string `json:"title" binding:"omitempty,notblank,max=200"`
	Slug        *string `json:"slug" binding:"omitempty,max=100,slug"`
	Description *string `json:"description"`
}

// GroupResponse represents a group in API responses
type GroupResponse struct {
	ID          uint   `json:"id"`
	Title       string `json:"title"`
	Slug        string `json:"slug"`
	Description string `json:"description"`
	PostCount   int64  `json:"post_count"`
}

func (h *Handler) groupResponse(group models.Group) GroupResponse {
	resp := GroupResponse{
		ID:          group.ID,
		Title:       group.Title,
		Slug:        group.Slug,
		Description: group.Description,
	}
	h.db.Model(&models.Post{}).Where("group_id = ?", group.ID).Count(&resp.PostCount)
	return resp
}

func (h *Handler) slugTaken(slug string, exceptID uint) (bool, error) {
	var count int64
	err := h.db.Model(&models.Group{}).Where("slug = ? AND id <> ?", slug, exceptID).Count(&count).Error
	return count > 0, err
}

func (h *Handler) findGroup(c *gin.Context) (models.Group, bool) {
	var group models.Group
	if err := h.db.Where("slug = ?", c.Param("slug")).First(&group).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Group not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch group"})
		}
		return group, false
	}
	return group, true
}

// ListGroups returns all groups ordered by title
func (h *Handler) ListGroups(c *gin.Context) {
	var groups []models.Group
	if err := h.db.Order("title").Find(&groups).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch groups"})
		return
	}

	responses := make([]GroupResponse, len(groups))
	for i, group := range groups {
		responses[i] = h.groupResponse(group)
	}
	c.JSON(http.StatusOK, responses)
}

// CreateGroup creates a new group
func (h *Handler) CreateGroup(c *gin.Context) {
	var req CreateGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "fields": validation.FieldErrors(err)})
		return
	}

	taken, err := h.slugTaken(req.Slug, 0)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check slug"})
		return
	}
	if taken {
		c.JSON(http.StatusConflict, gin.H{"error": "Slug already in use"})
		return
	}

	group := models.Group{
		Title:       strings.TrimSpace(req.Title),
		Slug:        req.Slug,
		Description: req.Description,
	}
	if err := h.db.Create(&group).Error; err != nil {
		logging.Log.WithError(err).WithField("slug", req.Slug).Error("create group failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create group"})
		return
	}

	c.JSON(http.StatusCreated, h.groupResponse(group))
}

// GetGroup returns a group by slug
func (h *Handler) GetGroup(c *gin.Context) {
	group, ok := h.findGroup(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, h.groupResponse(group))
}

// UpdateGroup updates a group's title, slug or description
func (h *Handler) UpdateGroup(c *gin.Context) {
	group, ok := h.findGroup(c)
	if !ok {
		return
	}

	var req UpdateGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "fields": validation.FieldErrors(err)})
		return
	}

	updates := make(map[string]interface{})
	if req.Title != nil {
		updates["title"] = strings.TrimSpace(*req.Title)
	}
	if req.Slug != nil && *req.Slug != group.Slug {
		taken, err := h.slugTaken(*req.Slug, group.ID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check slug"})
			return
		}
		if taken {
			c.JSON(http.StatusConflict, gin.H{"error": "Slug already in use"})
			return
		}
		updates["slug"] = *req.Slug
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}

	if len(updates) > 0 {
		if err := h.db.Model(&group).Updates(updates).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update group"})
			return
		}
	}

	h.db.First(&group, group.ID)
	c.JSON(http.StatusOK, h.groupResponse(group))
}

// DeleteGroup removes a group. Its posts stay, without a group.
func (h *Handler) DeleteGroup(c *gin.Context) {
	group, ok := h.findGroup(c)
	if !ok {
		return
	}

	if err := h.db.Delete(&group).Error; err != nil {
		logging.Log.WithError(err).WithField("slug", group.Slug).Error("delete group failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete group"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Group deleted successfully"})
}
