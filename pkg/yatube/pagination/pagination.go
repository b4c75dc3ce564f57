// Package pagination slices ordered gorm queries into fixed-size pages.
package pagination

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// DefaultPerPage is used when a Request carries no page size.
const DefaultPerPage = 10

// Scope narrows the query being paginated.
type Scope = func(*gorm.DB) *gorm.DB

// Request describes one page of a listing.
type Request struct {
	PerPage int
	// Page is the raw ?page= value; see ParseNumber for how it is read.
	Page    string
	Order   string
	Preload []string
}

// Page is one slice of a listing together with its position in the whole.
type Page[T any] struct {
	Items    []T
	Number   int
	NumPages int
	Count    int64
	PerPage  int
}

func (p Page[T]) HasNext() bool {
	return p.Number < p.NumPages
}

func (p Page[T]) HasPrevious() bool {
	return p.Number > 1
}

func (p Page[T]) NextNumber() int {
	if !p.HasNext() {
		return p.Number
	}
	return p.Number + 1
}

func (p Page[T]) PreviousNumber() int {
	if !p.HasPrevious() {
		return p.Number
	}
	return p.Number - 1
}

// Pages lists every page number, starting at 1.
func (p Page[T]) Pages() []int {
	pages := make([]int, p.NumPages)
	for i := range pages {
		pages[i] = i + 1
	}
	return pages
}

// NumPages returns how many pages count rows fill. An empty listing still
// has one (empty) page.
func NumPages(count int64, perPage int) int {
	if perPage <= 0 {
		perPage = DefaultPerPage
	}
	if count <= 0 {
		return 1
	}
	return int((count + int64(perPage) - 1) / int64(perPage))
}

// ParseNumber reads a raw page number. Anything that is not an integer, or
// is below 1, means the first page; a number past the end means the last.
func ParseNumber(raw string, numPages int) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 1 {
		return 1
	}
	if n > numPages {
		return numPages
	}
	return n
}

// Paginate counts the rows matched by scopes and fetches the requested page.
// The order is applied to the fetch only.
func Paginate[T any](db *gorm.DB, req Request, scopes ...Scope) (Page[T], error) {
	perPage := req.PerPage
	if perPage <= 0 {
		perPage = DefaultPerPage
	}

	var count int64
	if err := db.Model(new(T)).Scopes(scopes...).Count(&count).Error; err != nil {
		return Page[T]{}, errors.Wrap(err, "count page rows")
	}

	page := Page[T]{
		Count:    count,
		PerPage:  perPage,
		NumPages: NumPages(count, perPage),
	}
	page.Number = ParseNumber(req.Page, page.NumPages)
	page.Items = []T{}
	if count == 0 {
		return page, nil
	}

	q := db.Model(new(T)).Scopes(scopes...)
	for _, rel := range req.Preload {
		q = q.Preload(rel)
	}
	if req.Order != "" {
		q = q.Order(req.Order)
	}
	if err := q.Limit(perPage).Offset((page.Number - 1) * perPage).Find(&page.Items).Error; err != nil {
		return Page[T]{}, errors.Wrapf(err, "fetch page %d", page.Number)
	}
	return page, nil
}
