// Package pagecache serves whole rendered pages from a time-bounded store.
// Entries are never invalidated on write; they simply expire.
package pagecache

import (
	"bytes"
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mikepea/yatube/pkg/yatube/logging"
)

// HeaderName reports whether a response came from the cache.
const HeaderName = "X-Cache"

// Entry is a cached response.
type Entry struct {
	Status      int    `json:"status"`
	ContentType string `json:"content_type"`
	Body        []byte `json:"body"`
}

// Store keeps entries for a fixed time-to-live chosen at construction.
type Store interface {
	Get(ctx context.Context, key string) (Entry, bool, error)
	Set(ctx context.Context, key string, entry Entry) error
	Purge(ctx context.Context) error
}

// KeyFunc derives the cache key of a request.
type KeyFunc func(c *gin.Context) string

// URIKey keys a request by its path and query string.
func URIKey(c *gin.Context) string {
	return c.Request.URL.RequestURI()
}

type recorder struct {
	gin.ResponseWriter
	body bytes.Buffer
}

func (r *recorder) Write(b []byte) (int, error) {
	r.body.Write(b)
	return r.ResponseWriter.Write(b)
}

func (r *recorder) WriteString(s string) (int, error) {
	r.body.WriteString(s)
	return r.ResponseWriter.WriteString(s)
}

// CachePage answers GET requests from store when it holds an entry for the
// key, otherwise runs the handler chain and stores a successful response.
// Store failures are logged and the page is rendered uncached.
func CachePage(store Store, key KeyFunc) gin.HandlerFunc {
	if key == nil {
		key = URIKey
	}
	return func(c *gin.Context) {
		if c.Request.Method != http.MethodGet {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		k := key(c)
		entry, ok, err := store.Get(ctx, k)
		if err != nil {
			logging.Log.WithError(err).WithField("key", k).Warn("page cache read failed")
		}
		if ok {
			c.Header(HeaderName, "HIT")
			c.Data(entry.Status, entry.ContentType, entry.Body)
			c.Abort()
			return
		}

		c.Header(HeaderName, "MISS")
		rec := &recorder{ResponseWriter: c.Writer}
		c.Writer = rec
		c.Next()

		if rec.Status() != http.StatusOK {
			return
		}
		entry = Entry{
			Status:      rec.Status(),
			ContentType: rec.Header().Get("Content-Type"),
			Body:        rec.body.Bytes(),
		}
		if err := store.Set(ctx, k, entry); err != nil {
			logging.Log.WithError(err).WithField("key", k).Warn("page cache write failed")
		}
	}
}
