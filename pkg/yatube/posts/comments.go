package posts

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/mikepea/yatube/pkg/yatube/auth"
	"github.com/mikepea/yatube/pkg/yatube/models"
)

// AddComment attaches a comment to a post. Invalid comments are dropped;
// the viewer always lands back on the post page.
func (h *Handler) AddComment(c *gin.Context) {
	post, ok := h.findPost(c)
	if !ok {
		return
	}

	var form CommentForm
	if err := c.ShouldBindWith(&form, binding.Form); err == nil {
		comment := models.Comment{
			PostID:   post.ID,
			AuthorID: auth.CurrentUser(c).ID,
			Text:     form.Text,
		}
		if err := h.db.Create(&comment).Error; err != nil {
			h.serverError(c, err, "create comment")
			return
		}
	}

	c.Redirect(http.StatusFound, fmt.Sprintf("/posts/%d/", post.ID))
}
