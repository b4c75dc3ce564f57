package posts

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/mikepea/yatube/pkg/yatube/media"
	"github.com/mikepea/yatube/pkg/yatube/models"
	"github.com/mikepea/yatube/pkg/yatube/validation"
	"gorm.io/gorm"
)

// PostForm is the create/edit form. Group is the raw id from the select.
type PostForm struct {
	Text  string `form:"text" binding:"required,notblank"`
	Group string `form:"group"`
}

// CommentForm is the comment form on the post page.
type CommentForm struct {
	Text string `form:"text" binding:"required,notblank"`
}

const (
	invalidGroupChoice = "Select a valid choice. That choice is not one of the available choices."
	invalidImage       = "Upload a valid image. The file you uploaded was either not an image or a corrupted image."
	imageTooLarge      = "The image is too large (at most %d KB)."
)

// formSlack is the room left for the text fields of a multipart post form.
const formSlack = 1 << 20

// postSubmission is a bound and checked PostForm.
type postSubmission struct {
	form    PostForm
	groupID *uint
	image   *multipart.FileHeader
	clear   bool
	errors  map[string]string
}

func (s *postSubmission) valid() bool {
	return len(s.errors) == 0
}

// bindPost reads the post form, the group choice and the optional image,
// collecting every field error rather than stopping at the first.
func (h *Handler) bindPost(c *gin.Context) (*postSubmission, error) {
	sub := &postSubmission{errors: map[string]string{}}
	if limit := h.requestLimit(); limit > 0 && c.Request.ContentLength > limit {
		sub.errors["image"] = h.tooLargeMessage()
		return sub, nil
	}
	if err := c.ShouldBindWith(&sub.form, binding.Form); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			sub.errors["image"] = h.tooLargeMessage()
			return sub, nil
		}
		for field, msg := range validation.FieldErrors(err) {
			sub.errors[field] = msg
		}
	}
	sub.clear = c.PostForm("image-clear") != ""

	groupID, err := h.lookupGroup(sub.form.Group)
	switch {
	case errors.Is(err, errInvalidGroup):
		sub.errors["group"] = invalidGroupChoice
	case err != nil:
		return nil, err
	}
	sub.groupID = groupID

	image, msg := h.checkImage(c)
	if msg != "" {
		sub.errors["image"] = msg
	}
	sub.image = image
	return sub, nil
}

var errInvalidGroup = errors.New("invalid group")

func (h *Handler) lookupGroup(raw string) (*uint, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return nil, errInvalidGroup
	}
	var group models.Group
	if err := h.db.First(&group, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errInvalidGroup
		}
		return nil, err
	}
	return &group.ID, nil
}

// checkImage returns the uploaded image, or a field error message.
func (h *Handler) checkImage(c *gin.Context) (*multipart.FileHeader, string) {
	fh, err := c.FormFile("image")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return nil, ""
		}
		return nil, "The submitted data was not a file."
	}
	if fh.Size == 0 {
		return nil, "The submitted file is empty."
	}
	if h.MaxUploadBytes > 0 && fh.Size > h.MaxUploadBytes {
		return nil, h.tooLargeMessage()
	}
	f, err := fh.Open()
	if err != nil {
		return nil, "The submitted data was not a file."
	}
	defer f.Close()
	if _, err := media.DetectImage(f); err != nil {
		return nil, invalidImage
	}
	return fh, ""
}

// requestLimit caps the whole create/edit request body; 0 means unlimited.
func (h *Handler) requestLimit() int64 {
	if h.MaxUploadBytes <= 0 {
		return 0
	}
	return h.MaxUploadBytes + formSlack
}

func (h *Handler) tooLargeMessage() string {
	return fmt.Sprintf(imageTooLarge, h.MaxUploadBytes>>10)
}

// limitUpload caps the post form body at requestLimit.
func (h *Handler) limitUpload() gin.HandlerFunc {
	return func(c *gin.Context) {
		if limit := h.requestLimit(); limit > 0 {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
		}
		c.Next()
	}
}

func formFromPost(p models.Post) PostForm {
	form := PostForm{Text: p.Text}
	if p.GroupID != nil {
		form.Group = strconv.FormatUint(uint64(*p.GroupID), 10)
	}
	return form
}
