package posts

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mikepea/yatube/pkg/yatube/auth"
	"github.com/mikepea/yatube/pkg/yatube/logging"
	"github.com/mikepea/yatube/pkg/yatube/models"
	"github.com/sirupsen/logrus"
)

// CreatePage renders an empty post form
func (h *Handler) CreatePage(c *gin.Context) {
	h.renderForm(c, postFormPage{})
}

// Create publishes a new post for the viewer
func (h *Handler) Create(c *gin.Context) {
	viewer := auth.CurrentUser(c)
	sub, err := h.bindPost(c)
	if err != nil {
		h.serverError(c, err, "bind post")
		return
	}
	if !sub.valid() {
		h.renderForm(c, postFormPage{Form: sub.form, Errors: sub.errors})
		return
	}

	post := models.Post{
		Text:     sub.form.Text,
		AuthorID: viewer.ID,
		GroupID:  sub.groupID,
	}
	if sub.image != nil {
		key, err := h.saveImage(c, sub)
		if err != nil {
			h.serverError(c, err, "save image")
			return
		}
		post.Image = key
	}
	if err := h.db.Create(&post).Error; err != nil {
		h.discardImage(c, post.Image)
		h.serverError(c, err, "create post")
		return
	}

	logging.Log.WithFields(logrus.Fields{"post_id": post.ID, "author_id": viewer.ID}).Info("post created")
	c.Redirect(http.StatusFound, fmt.Sprintf("/profile/%s/", viewer.Username))
}

// EditPage renders the form for an existing post. Only its author may edit;
// anyone else is sent to the post page.
func (h *Handler) EditPage(c *gin.Context) {
	post, ok := h.findEditable(c)
	if !ok {
		return
	}
	h.renderForm(c, postFormPage{IsEdit: true, Post: &post, Form: formFromPost(post)})
}

// Edit saves the text, group and image of a post. Author and creation time
// never change.
func (h *Handler) Edit(c *gin.Context) {
	post, ok := h.findEditable(c)
	if !ok {
		return
	}
	sub, err := h.bindPost(c)
	if err != nil {
		h.serverError(c, err, "bind post")
		return
	}
	if !sub.valid() {
		h.renderForm(c, postFormPage{IsEdit: true, Post: &post, Form: sub.form, Errors: sub.errors})
		return
	}

	oldImage := post.Image
	image := oldImage
	if sub.image != nil {
		key, err := h.saveImage(c, sub)
		if err != nil {
			h.serverError(c, err, "save image")
			return
		}
		image = key
	} else if sub.clear {
		image = ""
	}

	var group any
	if sub.groupID != nil {
		group = *sub.groupID
	}
	err = h.db.Model(&models.Post{}).Where("id = ?", post.ID).Updates(map[string]any{
		"text":     sub.form.Text,
		"group_id": group,
		"image":    image,
	}).Error
	if err != nil {
		if image != oldImage {
			h.discardImage(c, image)
		}
		h.serverError(c, err, "update post")
		return
	}
	if oldImage != "" && image != oldImage {
		h.discardImage(c, oldImage)
	}

	c.Redirect(http.StatusFound, fmt.Sprintf("/posts/%d/", post.ID))
}

// findEditable loads the post and checks the viewer wrote it.
func (h *Handler) findEditable(c *gin.Context) (models.Post, bool) {
	post, ok := h.findPost(c)
	if !ok {
		return post, false
	}
	if viewer := auth.CurrentUser(c); viewer == nil || viewer.ID != post.AuthorID {
		c.Redirect(http.StatusFound, fmt.Sprintf("/posts/%d/", post.ID))
		return post, false
	}
	return post, true
}

func (h *Handler) renderForm(c *gin.Context, page postFormPage) {
	if err := h.db.Order("title").Find(&page.Groups).Error; err != nil {
		h.serverError(c, err, "list groups")
		return
	}
	title := "New post"
	if page.IsEdit {
		title = "Edit post"
	}
	page.Layout = auth.Layout(c, title)
	c.HTML(http.StatusOK, "posts/create_post.html", page)
}

func (h *Handler) saveImage(c *gin.Context, sub *postSubmission) (string, error) {
	f, err := sub.image.Open()
	if err != nil {
		return "", err
	}
	defer f.Close()
	return h.media.Save(c.Request.Context(), sub.image.Filename, f)
}

func (h *Handler) discardImage(c *gin.Context, key string) {
	if key == "" {
		return
	}
	if err := h.media.Delete(c.Request.Context(), key); err != nil {
		logging.Log.WithError(err).WithField("key", key).Warn("could not delete image")
	}
}
