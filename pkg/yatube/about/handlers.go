// Package about serves the static informational pages.
package about

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mikepea/yatube/pkg/yatube/auth"
)

// page renders a template that needs nothing but the layout.
func page(name, title string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.HTML(http.StatusOK, name, auth.Layout(c, title))
	}
}

// RegisterRoutes registers the about pages on the given router group
func RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/author/", page("about/author.html", "About the author"))
	rg.GET("/tech/", page("about/tech.html", "Technologies"))
}
