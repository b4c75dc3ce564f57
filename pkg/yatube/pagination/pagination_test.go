package pagination_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/mikepea/yatube/pkg/yatube/database"
	"github.com/mikepea/yatube/pkg/yatube/models"
	"github.com/mikepea/yatube/pkg/yatube/pagination"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := database.Open(database.DriverSQLite, ":memory:")
	require.NoError(t, err)
	require.NoError(t, models.AutoMigrate(db))
	return db
}

// seedPosts creates n posts one minute apart, oldest first.
func seedPosts(t *testing.T, db *gorm.DB, n int, groupID *uint) models.User {
	author := models.User{Username: "leo", PasswordHash: "hash"}
	require.NoError(t, db.Create(&author).Error)

	start := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		post := models.Post{
			Text:      fmt.Sprintf("post %d", i),
			AuthorID:  author.ID,
			GroupID:   groupID,
			CreatedAt: start.Add(time.Duration(i) * time.Minute),
		}
		require.NoError(t, db.Create(&post).Error)
	}
	return author
}

func inGroup(id uint) pagination.Scope {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("posts.group_id = ?", id)
	}
}

func TestThirteenPostsSplitTenAndThree(t *testing.T) {
	db := setupTestDB(t)
	group := models.Group{Title: "Cats", Slug: "cats"}
	require.NoError(t, db.Create(&group).Error)
	seedPosts(t, db, 13, &group.ID)

	first, err := pagination.Paginate[models.Post](db, pagination.Request{PerPage: 10, Page: "1", Order: models.PostOrder}, inGroup(group.ID))
	require.NoError(t, err)
	assert.Len(t, first.Items, 10)
	assert.Equal(t, int64(13), first.Count)
	assert.Equal(t, 2, first.NumPages)
	assert.True(t, first.HasNext())
	assert.False(t, first.HasPrevious())

	second, err := pagination.Paginate[models.Post](db, pagination.Request{PerPage: 10, Page: "2", Order: models.PostOrder}, inGroup(group.ID))
	require.NoError(t, err)
	assert.Len(t, second.Items, 3)
	assert.False(t, second.HasNext())
	assert.Equal(t, 1, second.PreviousNumber())

	// newest first, and page 2 continues strictly after page 1
	for i := 1; i < len(first.Items); i++ {
		assert.True(t, first.Items[i-1].CreatedAt.After(first.Items[i].CreatedAt))
	}
	assert.True(t, first.Items[9].CreatedAt.After(second.Items[0].CreatedAt))
}

func TestPaginatePreloads(t *testing.T) {
	db := setupTestDB(t)
	seedPosts(t, db, 2, nil)

	page, err := pagination.Paginate[models.Post](db, pagination.Request{Order: models.PostOrder, Preload: []string{"Author", "Group"}})
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	assert.Equal(t, "leo", page.Items[0].Author.Username)
	assert.Nil(t, page.Items[0].Group)
	assert.Equal(t, "post 1", page.Items[0].Text)
}

func TestPaginateClampsPageNumber(t *testing.T) {
	db := setupTestDB(t)
	seedPosts(t, db, 25, nil)

	tests := []struct {
		raw  string
		want int
	}{
		{"", 1},
		{"abc", 1},
		{"0", 1},
		{"-4", 1},
		{"2", 2},
		{"3", 3},
		{"99", 3},
	}
	for _, tt := range tests {
		t.Run("page="+tt.raw, func(t *testing.T) {
			page, err := pagination.Paginate[models.Post](db, pagination.Request{PerPage: 10, Page: tt.raw, Order: models.PostOrder})
			require.NoError(t, err)
			assert.Equal(t, tt.want, page.Number)
			assert.NotEmpty(t, page.Items)
		})
	}
}

func TestPaginateEmpty(t *testing.T) {
	db := setupTestDB(t)

	page, err := pagination.Paginate[models.Post](db, pagination.Request{PerPage: 10, Page: "5"})
	require.NoError(t, err)
	assert.Equal(t, 1, page.Number)
	assert.Equal(t, 1, page.NumPages)
	assert.Empty(t, page.Items)
	assert.Equal(t, []int{1}, page.Pages())
}

func TestNumPages(t *testing.T) {
	assert.Equal(t, 1, pagination.NumPages(0, 10))
	assert.Equal(t, 1, pagination.NumPages(10, 10))
	assert.Equal(t, 2, pagination.NumPages(11, 10))
	assert.Equal(t, 3, pagination.NumPages(21, 0))
}
