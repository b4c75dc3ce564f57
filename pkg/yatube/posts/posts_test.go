package posts

import (
	"bytes"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mikepea/yatube/pkg/yatube/auth"
	"github.com/mikepea/yatube/pkg/yatube/database"
	"github.com/mikepea/yatube/pkg/yatube/media"
	"github.com/mikepea/yatube/pkg/yatube/models"
	"github.com/mikepea/yatube/pkg/yatube/pagecache"
	"github.com/mikepea/yatube/pkg/yatube/web"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// smallGIF is a 1x1 transparent GIF.
var smallGIF = []byte{
	0x47, 0x49, 0x46, 0x38, 0x39, 0x61, 0x01, 0x00, 0x01, 0x00, 0x80, 0x00, 0x00,
	0xff, 0xff, 0xff, 0x00, 0x00, 0x00, 0x21, 0xf9, 0x04, 0x01, 0x00, 0x00, 0x00,
	0x00, 0x2c, 0x00, 0x00, 0x00, 0x00, 0x01, 0x00, 0x01, 0x00, 0x00, 0x02, 0x02,
	0x44, 0x01, 0x00, 0x3b,
}

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := database.Open(database.DriverSQLite, ":memory:")
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}
	if err := models.AutoMigrate(db); err != nil {
		t.Fatalf("AutoMigrate failed: %v", err)
	}
	return db
}

type testEnv struct {
	db      *gorm.DB
	router  *gin.Engine
	handler *Handler
	media   *media.LocalStore
	root    string
}

func setupTestRouter(t *testing.T, indexMiddleware ...gin.HandlerFunc) *testEnv {
	gin.SetMode(gin.TestMode)
	db := setupTestDB(t)
	root := t.TempDir()
	store, err := media.NewLocalStore(root, "/media/")
	require.NoError(t, err)

	r := gin.New()
	r.HTMLRender = web.MustRenderer(store.URL)
	r.Use(auth.Authenticate(db))
	handler := NewHandler(db, store)
	handler.RegisterRoutes(&r.RouterGroup, indexMiddleware...)

	return &testEnv{db: db, router: r, handler: handler, media: store, root: root}
}

func createTestUser(t *testing.T, db *gorm.DB, username string) models.User {
	user := models.User{Username: username, PasswordHash: "hash", SystemRole: models.SystemRoleUser}
	require.NoError(t, db.Create(&user).Error)
	return user
}

func createTestGroup(t *testing.T, db *gorm.DB, slug string) models.Group {
	group := models.Group{Title: "Group " + slug, Slug: slug, Description: "about " + slug}
	require.NoError(t, db.Create(&group).Error)
	return group
}

var seedStart = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

// createTestPosts creates n posts one minute apart; entry-00 is the oldest.
func createTestPosts(t *testing.T, db *gorm.DB, author models.User, group *models.Group, n int) []models.Post {
	posts := make([]models.Post, 0, n)
	for i := 0; i < n; i++ {
		post := models.Post{
			Text:      fmt.Sprintf("entry-%02d by %s", i, author.Username),
			AuthorID:  author.ID,
			CreatedAt: seedStart.Add(time.Duration(i) * time.Minute),
		}
		if group != nil {
			post.GroupID = &group.ID
		}
		require.NoError(t, db.Create(&post).Error)
		posts = append(posts, post)
	}
	return posts
}

func (e *testEnv) do(t *testing.T, req *http.Request, as *models.User) *httptest.ResponseRecorder {
	if as != nil {
		token, err := auth.GenerateToken(as.ID, as.Username, string(as.SystemRole))
		require.NoError(t, err)
		req.AddCookie(&http.Cookie{Name: auth.SessionCookie, Value: token})
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *testEnv) get(t *testing.T, target string, as *models.User) *httptest.ResponseRecorder {
	return e.do(t, httptest.NewRequest(http.MethodGet, target, nil), as)
}

func (e *testEnv) post(t *testing.T, target string, form url.Values, as *models.User) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return e.do(t, req, as)
}

func (e *testEnv) postMultipart(t *testing.T, target string, fields map[string]string, fileName string, file []byte, as *models.User) *httptest.ResponseRecorder {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if fileName != "" {
		fw, err := mw.CreateFormFile("image", fileName)
		require.NoError(t, err)
		_, err = fw.Write(file)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, target, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return e.do(t, req, as)
}

func countPosts(t *testing.T, db *gorm.DB) int64 {
	var n int64
	require.NoError(t, db.Model(&models.Post{}).Count(&n).Error)
	return n
}

func countCards(body string) int {
	return strings.Count(body, `<article class="post"`)
}

func TestIndexListsNewestFirst(t *testing.T) {
	env := setupTestRouter(t)
	leo := createTestUser(t, env.db, "leo")
	createTestPosts(t, env.db, leo, nil, 3)

	w := env.get(t, "/", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Equal(t, 3, countCards(body))
	assert.Less(t, strings.Index(body, "entry-02"), strings.Index(body, "entry-01"))
	assert.Less(t, strings.Index(body, "entry-01"), strings.Index(body, "entry-00"))
}

func TestGroupPaginationThirteenPosts(t *testing.T) {
	env := setupTestRouter(t)
	leo := createTestUser(t, env.db, "leo")
	cats := createTestGroup(t, env.db, "cats")
	dogs := createTestGroup(t, env.db, "dogs")
	createTestPosts(t, env.db, leo, &cats, 13)
	createTestPosts(t, env.db, createTestUser(t, env.db, "anna"), &dogs, 2)

	first := env.get(t, "/group/cats/", nil)
	require.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, 10, countCards(first.Body.String()))
	assert.Contains(t, first.Body.String(), "entry-12 by leo")
	assert.NotContains(t, first.Body.String(), "by anna")

	second := env.get(t, "/group/cats/?page=2", nil)
	require.Equal(t, http.StatusOK, second.Code)
	assert.Equal(t, 3, countCards(second.Body.String()))
	assert.Contains(t, second.Body.String(), "entry-00 by leo")

	// past the end shows the last page
	last := env.get(t, "/group/cats/?page=40", nil)
	assert.Equal(t, 3, countCards(last.Body.String()))
}

func TestGroupUnknownSlug(t *testing.T) {
	env := setupTestRouter(t)

	w := env.get(t, "/group/nope/", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "Page not found")
}

func TestProfile(t *testing.T) {
	env := setupTestRouter(t)
	leo := createTestUser(t, env.db, "leo")
	anna := createTestUser(t, env.db, "anna")
	createTestPosts(t, env.db, leo, nil, 2)
	createTestPosts(t, env.db, anna, nil, 1)

	w := env.get(t, "/profile/leo/", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 2, countCards(w.Body.String()))
	assert.Contains(t, w.Body.String(), "Posts: 2")
	assert.NotContains(t, w.Body.String(), "/profile/leo/follow/")

	w = env.get(t, "/profile/leo/", &anna)
	assert.Contains(t, w.Body.String(), `action="/profile/leo/follow/"`)

	require.NoError(t, env.db.Create(&models.Follow{UserID: anna.ID, AuthorID: leo.ID}).Error)
	w = env.get(t, "/profile/leo/", &anna)
	assert.Contains(t, w.Body.String(), `action="/profile/leo/unfollow/"`)

	// no follow controls on one's own profile
	w = env.get(t, "/profile/leo/", &leo)
	assert.NotContains(t, w.Body.String(), "/profile/leo/follow/")
	assert.NotContains(t, w.Body.String(), "/profile/leo/unfollow/")

	assert.Equal(t, http.StatusNotFound, env.get(t, "/profile/ghost/", nil).Code)
}

func TestPostDetail(t *testing.T) {
	env := setupTestRouter(t)
	leo := createTestUser(t, env.db, "leo")
	anna := createTestUser(t, env.db, "anna")
	cats := createTestGroup(t, env.db, "cats")
	post := createTestPosts(t, env.db, leo, &cats, 1)[0]

	for i, text := range []string{"first!", "second"} {
		comment := models.Comment{PostID: post.ID, AuthorID: anna.ID, Text: text, CreatedAt: seedStart.Add(time.Duration(i) * time.Hour)}
		require.NoError(t, env.db.Create(&comment).Error)
	}

	w := env.get(t, fmt.Sprintf("/posts/%d/", post.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, post.Text)
	assert.Contains(t, body, "/group/cats/")
	assert.Contains(t, body, "Author's posts: 1")
	assert.Less(t, strings.Index(body, "first!"), strings.Index(body, "second"))
	assert.NotContains(t, body, "Edit post")
	assert.NotContains(t, body, `class="comment-form"`)

	w = env.get(t, fmt.Sprintf("/posts/%d/", post.ID), &leo)
	assert.Contains(t, w.Body.String(), "Edit post")
	assert.Contains(t, w.Body.String(), `class="comment-form"`)
}

func TestPostDetailNotFound(t *testing.T) {
	env := setupTestRouter(t)

	assert.Equal(t, http.StatusNotFound, env.get(t, "/posts/999/", nil).Code)
	assert.Equal(t, http.StatusNotFound, env.get(t, "/posts/abc/", nil).Code)
}

func TestCreateRequiresLogin(t *testing.T) {
	env := setupTestRouter(t)

	w := env.get(t, "/create/", nil)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/auth/login/?next=/create/", w.Header().Get("Location"))

	w = env.post(t, "/create/", url.Values{"text": {"sneaky"}}, nil)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, int64(0), countPosts(t, env.db))
}

func TestCreatePost(t *testing.T) {
	env := setupTestRouter(t)
	leo := createTestUser(t, env.db, "leo")
	cats := createTestGroup(t, env.db, "cats")

	w := env.get(t, "/create/", &leo)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Group cats")

	before := countPosts(t, env.db)
	w = env.post(t, "/create/", url.Values{"text": {"hello\nworld"}, "group": {fmt.Sprint(cats.ID)}}, &leo)
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/profile/leo/", w.Header().Get("Location"))
	assert.Equal(t, before+1, countPosts(t, env.db))

	var post models.Post
	require.NoError(t, env.db.Order("id DESC").First(&post).Error)
	assert.Equal(t, leo.ID, post.AuthorID)
	assert.Equal(t, "hello\nworld", post.Text)
	require.NotNil(t, post.GroupID)
	assert.Equal(t, cats.ID, *post.GroupID)
	assert.WithinDuration(t, time.Now(), post.CreatedAt, time.Minute)
}

func TestCreatePostInvalid(t *testing.T) {
	env := setupTestRouter(t)
	leo := createTestUser(t, env.db, "leo")

	tests := []struct {
		name  string
		form  url.Values
		error string
	}{
		{"missing text", url.Values{}, "This field is required."},
		{"blank text", url.Values{"text": {"   \n "}}, "This field is required."},
		{"unknown group", url.Values{"text": {"ok"}, "group": {"999"}}, "Select a valid choice."},
		{"garbage group", url.Values{"text": {"ok"}, "group": {"cats"}}, "Select a valid choice."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.post(t, "/create/", tt.form, &leo)
			assert.Equal(t, http.StatusOK, w.Code)
			assert.Contains(t, w.Body.String(), tt.error)
		})
	}
	assert.Equal(t, int64(0), countPosts(t, env.db))
}

func TestCreatePostWithImage(t *testing.T) {
	env := setupTestRouter(t)
	leo := createTestUser(t, env.db, "leo")

	w := env.postMultipart(t, "/create/", map[string]string{"text": "look"}, "small.gif", smallGIF, &leo)
	require.Equal(t, http.StatusFound, w.Code)

	var post models.Post
	require.NoError(t, env.db.First(&post).Error)
	require.True(t, strings.HasPrefix(post.Image, "posts/"))
	data, err := os.ReadFile(filepath.Join(env.root, filepath.FromSlash(post.Image)))
	require.NoError(t, err)
	assert.Equal(t, smallGIF, data)

	w = env.get(t, "/", nil)
	assert.Contains(t, w.Body.String(), `src="/media/`+post.Image+`"`)
}

func TestCreatePostRejectsNonImage(t *testing.T) {
	env := setupTestRouter(t)
	leo := createTestUser(t, env.db, "leo")

	w := env.postMultipart(t, "/create/", map[string]string{"text": "look"}, "notes.gif", []byte("plain text, not a gif"), &leo)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Upload a valid image")
	assert.Equal(t, int64(0), countPosts(t, env.db))
}

func TestCreatePostRejectsOversizedImage(t *testing.T) {
	env := setupTestRouter(t)
	env.handler.MaxUploadBytes = 1 << 10
	leo := createTestUser(t, env.db, "leo")

	tests := []struct {
		name string
		size int
	}{
		{"over the image limit", 4 << 10},
		{"over the request limit", formSlack + 8<<10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			image := append(append([]byte{}, smallGIF...), make([]byte, tt.size)...)
			w := env.postMultipart(t, "/create/", map[string]string{"text": "big"}, "big.gif", image, &leo)
			assert.Equal(t, http.StatusOK, w.Code)
			assert.Contains(t, w.Body.String(), "The image is too large (at most 1 KB).")
			assert.Equal(t, int64(0), countPosts(t, env.db))

			stored, err := os.ReadDir(filepath.Join(env.root, media.UploadDir))
			require.NoError(t, err)
			assert.Empty(t, stored)
		})
	}
}

func TestEditByNonAuthorChangesNothing(t *testing.T) {
	env := setupTestRouter(t)
	leo := createTestUser(t, env.db, "leo")
	anna := createTestUser(t, env.db, "anna")
	post := createTestPosts(t, env.db, leo, nil, 1)[0]
	detail := fmt.Sprintf("/posts/%d/", post.ID)

	w := env.get(t, detail+"edit/", &anna)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, detail, w.Header().Get("Location"))

	w = env.post(t, detail+"edit/", url.Values{"text": {"hijacked"}}, &anna)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, detail, w.Header().Get("Location"))

	var stored models.Post
	require.NoError(t, env.db.First(&stored, post.ID).Error)
	assert.Equal(t, post.Text, stored.Text)

	w = env.get(t, detail+"edit/", nil)
	assert.Equal(t, "/auth/login/?next="+detail+"edit/", w.Header().Get("Location"))
}

func TestEditByAuthor(t *testing.T) {
	env := setupTestRouter(t)
	leo := createTestUser(t, env.db, "leo")
	cats := createTestGroup(t, env.db, "cats")
	post := createTestPosts(t, env.db, leo, &cats, 1)[0]
	detail := fmt.Sprintf("/posts/%d/", post.ID)

	w := env.get(t, detail+"edit/", &leo)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), post.Text)
	assert.Contains(t, w.Body.String(), fmt.Sprintf(`<option value="%d" selected>`, cats.ID))

	w = env.post(t, detail+"edit/", url.Values{"text": {"rewritten"}, "group": {""}}, &leo)
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, detail, w.Header().Get("Location"))

	var stored models.Post
	require.NoError(t, env.db.First(&stored, post.ID).Error)
	assert.Equal(t, "rewritten", stored.Text)
	assert.Nil(t, stored.GroupID)
	assert.Equal(t, leo.ID, stored.AuthorID)
	assert.True(t, post.CreatedAt.Equal(stored.CreatedAt))
}

func TestEditInvalidKeepsPost(t *testing.T) {
	env := setupTestRouter(t)
	leo := createTestUser(t, env.db, "leo")
	post := createTestPosts(t, env.db, leo, nil, 1)[0]

	w := env.post(t, fmt.Sprintf("/posts/%d/edit/", post.ID), url.Values{"text": {" "}}, &leo)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "This field is required.")

	var stored models.Post
	require.NoError(t, env.db.First(&stored, post.ID).Error)
	assert.Equal(t, post.Text, stored.Text)
}

func TestEditReplacesAndClearsImage(t *testing.T) {
	env := setupTestRouter(t)
	leo := createTestUser(t, env.db, "leo")
	env.postMultipart(t, "/create/", map[string]string{"text": "pic"}, "a.gif", smallGIF, &leo)

	var post models.Post
	require.NoError(t, env.db.First(&post).Error)
	first := post.Image
	edit := fmt.Sprintf("/posts/%d/edit/", post.ID)

	w := env.postMultipart(t, edit, map[string]string{"text": "pic"}, "b.gif", smallGIF, &leo)
	require.Equal(t, http.StatusFound, w.Code)
	require.NoError(t, env.db.First(&post, post.ID).Error)
	assert.NotEqual(t, first, post.Image)
	_, err := os.Stat(filepath.Join(env.root, filepath.FromSlash(first)))
	assert.True(t, os.IsNotExist(err))

	w = env.postMultipart(t, edit, map[string]string{"text": "pic", "image-clear": "on"}, "", nil, &leo)
	require.Equal(t, http.StatusFound, w.Code)
	require.NoError(t, env.db.First(&post, post.ID).Error)
	assert.Empty(t, post.Image)
}

func TestAddComment(t *testing.T) {
	env := setupTestRouter(t)
	leo := createTestUser(t, env.db, "leo")
	anna := createTestUser(t, env.db, "anna")
	post := createTestPosts(t, env.db, leo, nil, 1)[0]
	target := fmt.Sprintf("/posts/%d/comment/", post.ID)
	detail := fmt.Sprintf("/posts/%d/", post.ID)

	w := env.post(t, target, url.Values{"text": {"nice one"}}, &anna)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, detail, w.Header().Get("Location"))

	var comments []models.Comment
	require.NoError(t, env.db.Find(&comments).Error)
	require.Len(t, comments, 1)
	assert.Equal(t, anna.ID, comments[0].AuthorID)
	assert.Equal(t, post.ID, comments[0].PostID)

	// blank comments are dropped without an error page
	w = env.post(t, target, url.Values{"text": {"  "}}, &anna)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, detail, w.Header().Get("Location"))

	// anonymous visitors are sent to log in
	w = env.post(t, target, url.Values{"text": {"drive-by"}}, nil)
	assert.Equal(t, "/auth/login/?next="+target, w.Header().Get("Location"))

	var count int64
	env.db.Model(&models.Comment{}).Count(&count)
	assert.Equal(t, int64(1), count)

	w = env.post(t, "/posts/999/comment/", url.Values{"text": {"hi"}}, &anna)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func countFollows(t *testing.T, db *gorm.DB) int64 {
	var n int64
	require.NoError(t, db.Model(&models.Follow{}).Count(&n).Error)
	return n
}

func TestFollowIsIdempotent(t *testing.T) {
	env := setupTestRouter(t)
	leo := createTestUser(t, env.db, "leo")
	anna := createTestUser(t, env.db, "anna")

	for i := 0; i < 2; i++ {
		w := env.post(t, "/profile/leo/follow/", nil, &anna)
		assert.Equal(t, http.StatusFound, w.Code)
		assert.Equal(t, "/profile/leo/", w.Header().Get("Location"))
	}
	assert.Equal(t, int64(1), countFollows(t, env.db))

	var follow models.Follow
	require.NoError(t, env.db.First(&follow).Error)
	assert.Equal(t, anna.ID, follow.UserID)
	assert.Equal(t, leo.ID, follow.AuthorID)

	w := env.post(t, "/profile/leo/unfollow/", nil, &anna)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/profile/leo/", w.Header().Get("Location"))

	w = env.post(t, "/profile/leo/unfollow/", nil, &anna)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/", w.Header().Get("Location"))
	assert.Equal(t, int64(0), countFollows(t, env.db))
}

func TestSelfFollowNeverCreatesEdge(t *testing.T) {
	env := setupTestRouter(t)
	leo := createTestUser(t, env.db, "leo")

	w := env.post(t, "/profile/leo/follow/", nil, &leo)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/", w.Header().Get("Location"))
	assert.Equal(t, int64(0), countFollows(t, env.db))
}

func TestFollowUnknownAuthor(t *testing.T) {
	env := setupTestRouter(t)
	anna := createTestUser(t, env.db, "anna")

	assert.Equal(t, http.StatusNotFound, env.post(t, "/profile/ghost/follow/", nil, &anna).Code)
	assert.Equal(t, http.StatusNotFound, env.post(t, "/profile/ghost/unfollow/", nil, &anna).Code)
}

func TestFollowIndex(t *testing.T) {
	env := setupTestRouter(t)
	leo := createTestUser(t, env.db, "leo")
	anna := createTestUser(t, env.db, "anna")
	ivan := createTestUser(t, env.db, "ivan")
	createTestPosts(t, env.db, leo, nil, 2)
	createTestPosts(t, env.db, ivan, nil, 1)
	require.NoError(t, env.db.Create(&models.Follow{UserID: anna.ID, AuthorID: leo.ID}).Error)

	w := env.get(t, "/follow/", &anna)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 2, countCards(w.Body.String()))
	assert.NotContains(t, w.Body.String(), "by ivan")

	w = env.get(t, "/follow/", &ivan)
	assert.Equal(t, 0, countCards(w.Body.String()))

	w = env.get(t, "/follow/", nil)
	assert.Equal(t, "/auth/login/?next=/follow/", w.Header().Get("Location"))
}

func TestIndexCacheWindow(t *testing.T) {
	store := pagecache.NewMemoryStore(16, 200*time.Millisecond)
	env := setupTestRouter(t, pagecache.CachePage(store, nil))
	leo := createTestUser(t, env.db, "leo")
	createTestPosts(t, env.db, leo, nil, 1)

	first := env.get(t, "/", nil)
	require.Equal(t, http.StatusOK, first.Code)

	w := env.post(t, "/create/", url.Values{"text": {"fresh news"}}, &leo)
	require.Equal(t, http.StatusFound, w.Code)

	second := env.get(t, "/", nil)
	assert.Equal(t, "HIT", second.Header().Get(pagecache.HeaderName))
	assert.Equal(t, first.Body.Bytes(), second.Body.Bytes())
	assert.NotContains(t, second.Body.String(), "fresh news")

	time.Sleep(300 * time.Millisecond)
	third := env.get(t, "/", nil)
	assert.Equal(t, "MISS", third.Header().Get(pagecache.HeaderName))
	assert.Contains(t, third.Body.String(), "fresh news")
}
