package posts

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mikepea/yatube/pkg/yatube/auth"
	"github.com/mikepea/yatube/pkg/yatube/logging"
	"github.com/mikepea/yatube/pkg/yatube/models"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm/clause"
)

// ProfileFollow subscribes the viewer to an author. Following oneself is a
// no-op that lands on the home page; following twice keeps one edge.
func (h *Handler) ProfileFollow(c *gin.Context) {
	author, ok := h.findAuthor(c)
	if !ok {
		return
	}
	viewer := auth.CurrentUser(c)
	if viewer.ID == author.ID {
		c.Redirect(http.StatusFound, "/")
		return
	}

	follow := models.Follow{UserID: viewer.ID, AuthorID: author.ID}
	res := h.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&follow)
	if res.Error != nil {
		h.serverError(c, res.Error, "follow author")
		return
	}
	if res.RowsAffected > 0 {
		logging.Log.WithFields(logrus.Fields{"user_id": viewer.ID, "author_id": author.ID}).Info("author followed")
	}

	c.Redirect(http.StatusFound, fmt.Sprintf("/profile/%s/", author.Username))
}

// ProfileUnfollow removes the viewer's edge to an author. Without an edge it
// is a no-op that lands on the home page.
func (h *Handler) ProfileUnfollow(c *gin.Context) {
	author, ok := h.findAuthor(c)
	if !ok {
		return
	}
	viewer := auth.CurrentUser(c)

	res := h.db.Where("user_id = ? AND author_id = ?", viewer.ID, author.ID).Delete(&models.Follow{})
	if res.Error != nil {
		h.serverError(c, res.Error, "unfollow author")
		return
	}
	if res.RowsAffected == 0 {
		c.Redirect(http.StatusFound, "/")
		return
	}

	c.Redirect(http.StatusFound, fmt.Sprintf("/profile/%s/", author.Username))
}
