// Package admin is the JSON administration API: users, groups and site
// statistics. Every route requires the admin system role.
package admin

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/mikepea/yatube/pkg/yatube/auth"
	"github.com/mikepea/yatube/pkg/yatube/logging"
	"github.com/mikepea/yatube/pkg/yatube/models"
	"github.com/mikepea/yatube/pkg/yatube/validation"
	"gorm.io/gorm"
)

// Handler handles admin requests
type Handler struct {
	db *gorm.DB
}

// NewHandler creates a new admin handler
func NewHandler(db *gorm.DB) *Handler {
	validation.MustRegister()
	return &Handler{db: db}
}

// UserResponse represents user data in admin responses
type UserResponse struct {
	ID             uint   `json:"id"`
	Username       string `json:"username"`
	Email          string `json:"email"`
	FirstName      string `json:"first_name"`
	LastName       string `json:"last_name"`
	SystemRole     string `json:"system_role"`
	CreatedAt      string `json:"created_at"`
	PostCount      int64  `json:"post_count"`
	CommentCount   int64  `json:"comment_count"`
	FollowerCount  int64  `json:"follower_count"`
	FollowingCount int64  `json:"following_count"`
}

// UpdateUserRequest represents the request to update a user
type UpdateUserRequest struct {
	FirstName  *string `json:"first_name" binding:"omitempty,max=150"`
	LastName   *string `json:"last_name" binding:"omitempty,max=150"`
	Email      *string `json:"email" binding:"omitempty,email"`
	SystemRole *string `json:"system_role"`
}

// StatsResponse represents site statistics
type StatsResponse struct {
	TotalUsers     int64 `json:"total_users"`
	AdminUsers     int64 `json:"admin_users"`
	TotalPosts     int64 `json:"total_posts"`
	PostsWithImage int64 `json:"posts_with_image"`
	UngroupedPosts int64 `json:"ungrouped_posts"`
	TotalGroups    int64 `json:"total_groups"`
	TotalComments  int64 `json:"total_comments"`
	TotalFollows   int64 `json:"total_follows"`
}

func (h *Handler) userResponse(user models.User) UserResponse {
	resp := UserResponse{
		ID:         user.ID,
		Username:   user.Username,
		Email:      user.Email,
		FirstName:  user.FirstName,
		LastName:   user.LastName,
		SystemRole: string(user.SystemRole),
		CreatedAt:  user.CreatedAt.UTC().Format("2006-01-02T15:04:05Z"),
	}
	h.db.Model(&models.Post{}).Where("author_id = ?", user.ID).Count(&resp.PostCount)
	h.db.Model(&models.Comment{}).Where("author_id = ?", user.ID).Count(&resp.CommentCount)
	h.db.Model(&models.Follow{}).Where("author_id = ?", user.ID).Count(&resp.FollowerCount)
	h.db.Model(&models.Follow{}).Where("user_id = ?", user.ID).Count(&resp.FollowingCount)
	return resp
}

// ListUsers returns all users (admin only)
func (h *Handler) ListUsers(c *gin.Context) {
	var users []models.User

	query := h.db.Order("created_at DESC, id DESC")

	// Optional search by username, email or name
	if search := c.Query("q"); search != "" {
		like := "%" + search + "%"
		query = query.Where("username LIKE ? OR email LIKE ? OR first_name LIKE ? OR last_name LIKE ?", like, like, like, like)
	}

	// Optional filter by role
	if role := c.Query("role"); role != "" {
		query = query.Where("system_role = ?", role)
	}

	if err := query.Find(&users).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch users"})
		return
	}

	responses := make([]UserResponse, len(users))
	for i, user := range users {
		responses[i] = h.userResponse(user)
	}

	c.JSON(http.StatusOK, responses)
}

func (h *Handler) findUser(c *gin.Context) (models.User, bool) {
	var user models.User
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return user, false
	}
	if err := h.db.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch user"})
		}
		return user, false
	}
	return user, true
}

// GetUser returns a single user by ID (admin only)
func (h *Handler) GetUser(c *gin.Context) {
	user, ok := h.findUser(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, h.userResponse(user))
}

// UpdateUser updates a user's profile and role (admin only)
func (h *Handler) UpdateUser(c *gin.Context) {
	user, ok := h.findUser(c)
	if !ok {
		return
	}

	var req UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// Prevent admin from demoting themselves
	currentUserID, _ := auth.GetUserID(c)
	if user.ID == currentUserID && req.SystemRole != nil && *req.SystemRole != string(models.SystemRoleAdmin) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Cannot demote yourself"})
		return
	}

	updates := make(map[string]interface{})
	if req.FirstName != nil {
		updates["first_name"] = *req.FirstName
	}
	if req.LastName != nil {
		updates["last_name"] = *req.LastName
	}
	if req.Email != nil {
		updates["email"] = *req.Email
	}
	if req.SystemRole != nil {
		switch models.SystemRole(*req.SystemRole) {
		case models.SystemRoleAdmin, models.SystemRoleUser:
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid system role"})
			return
		}
		updates["system_role"] = *req.SystemRole
	}

	if len(updates) > 0 {
		if err := h.db.Model(&user).Updates(updates).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update user"})
			return
		}
	}

	// Reload user
	h.db.First(&user, user.ID)

	c.JSON(http.StatusOK, h.userResponse(user))
}

// DeleteUser removes a user; the database cascades the delete to their
// posts, comments and follow edges (admin only)
func (h *Handler) DeleteUser(c *gin.Context) {
	user, ok := h.findUser(c)
	if !ok {
		return
	}

	// Prevent admin from deleting themselves
	currentUserID, _ := auth.GetUserID(c)
	if user.ID == currentUserID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Cannot delete yourself"})
		return
	}

	if err := h.db.Delete(&user).Error; err != nil {
		logging.Log.WithError(err).WithField("user_id", user.ID).Error("delete user failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete user"})
		return
	}

	logging.Log.WithField("user_id", user.ID).Info("user deleted")
	c.JSON(http.StatusOK, gin.H{"message": "User deleted successfully"})
}

// GetStats returns site-wide statistics (admin only)
func (h *Handler) GetStats(c *gin.Context) {
	var stats StatsResponse

	h.db.Model(&models.User{}).Count(&stats.TotalUsers)
	h.db.Model(&models.User{}).Where("system_role = ?", models.SystemRoleAdmin).Count(&stats.AdminUsers)
	h.db.Model(&models.Post{}).Count(&stats.TotalPosts)
	h.db.Model(&models.Post{}).Where("image <> ''").Count(&stats.PostsWithImage)
	h.db.Model(&models.Post{}).Where("group_id IS NULL").Count(&stats.UngroupedPosts)
	h.db.Model(&models.Group{}).Count(&stats.TotalGroups)
	h.db.Model(&models.Comment{}).Count(&stats.TotalComments)
	h.db.Model(&models.Follow{}).Count(&stats.TotalFollows)

	c.JSON(http.StatusOK, stats)
}

// RegisterRoutes registers admin routes on the given router group
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/stats", h.GetStats)

	rg.GET("/users", h.ListUsers)
	rg.GET("/users/:id", h.GetUser)
	rg.PUT("/users/:id", h.UpdateUser)
	rg.DELETE("/users/:id", h.DeleteUser)

	rg.GET("/groups", h.ListGroups)
	rg.POST("/groups", h.CreateGroup)
	rg.GET("/groups/:slug", h.GetGroup)
	rg.PUT("/groups/:slug", h.UpdateGroup)
	rg.DELETE("/groups/:slug", h.DeleteGroup)
}
