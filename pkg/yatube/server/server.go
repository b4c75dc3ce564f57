// Package server assembles the gin engine: pages, the JSON API, static
// assets and uploaded media.
package server

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/mikepea/yatube/pkg/yatube/about"
	"github.com/mikepea/yatube/pkg/yatube/admin"
	"github.com/mikepea/yatube/pkg/yatube/auth"
	"github.com/mikepea/yatube/pkg/yatube/config"
	"github.com/mikepea/yatube/pkg/yatube/importexport"
	"github.com/mikepea/yatube/pkg/yatube/logging"
	"github.com/mikepea/yatube/pkg/yatube/media"
	"github.com/mikepea/yatube/pkg/yatube/pagecache"
	"github.com/mikepea/yatube/pkg/yatube/posts"
	"github.com/mikepea/yatube/pkg/yatube/web"
	"gorm.io/gorm"
)

// Deps are the collaborators the server is built from.
type Deps struct {
	DB     *gorm.DB
	Config *config.Config
	Media  media.Store
	// PageCache backs the home page cache; nil serves the home page uncached.
	PageCache pagecache.Store
}

// New builds the engine with every route registered.
func New(deps Deps) (*gin.Engine, error) {
	cfg := deps.Config
	if cfg == nil {
		cfg = config.Default()
	}

	renderer, err := web.NewRenderer(deps.Media.URL)
	if err != nil {
		return nil, err
	}

	r := gin.New()
	r.HTMLRender = renderer
	r.MaxMultipartMemory = cfg.MaxUploadBytes()
	r.Use(logging.GinLogger(), gin.Recovery())

	// Assets are served before the auth middleware is installed.
	r.StaticFS("/static", web.StaticFS())
	if local, ok := deps.Media.(*media.LocalStore); ok {
		r.Static(mediaPrefix(cfg.MediaURL), local.Root())
	}
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.Use(auth.Authenticate(deps.DB))

	authHandler := auth.NewHandler(deps.DB)
	authHandler.SecureCookie = cfg.CookieSecure
	authHandler.RegisterRoutes(r.Group("/auth"))

	about.RegisterRoutes(r.Group("/about"))

	var indexMiddleware []gin.HandlerFunc
	if deps.PageCache != nil {
		indexMiddleware = append(indexMiddleware, pagecache.CachePage(deps.PageCache, viewerKey))
	}
	postsHandler := posts.NewHandler(deps.DB, deps.Media)
	postsHandler.PerPage = cfg.PostsPerPage
	postsHandler.MaxUploadBytes = cfg.MaxUploadBytes()
	postsHandler.RegisterRoutes(&r.RouterGroup, indexMiddleware...)

	api := r.Group("/api", apiCORS(cfg.CORSOrigins))
	{
		api.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{
				"status":  "ok",
				"service": "yatube",
			})
		})

		authHandler.RegisterAPIRoutes(api.Group("/auth"))

		importExportHandler := importexport.NewHandler(deps.DB, deps.Media.URL)
		importExportHandler.RegisterRoutes(api.Group("", auth.RequireAuth()))

		adminHandler := admin.NewHandler(deps.DB)
		adminHandler.RegisterRoutes(api.Group("/admin", auth.RequireAdmin()))
	}

	r.NoRoute(func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/api/") {
			c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
			return
		}
		c.HTML(http.StatusNotFound, "core/404.html", web.NotFoundPage{
			Layout: auth.Layout(c, "Page not found"),
			Path:   c.Request.URL.Path,
		})
	})

	return r, nil
}

// viewerKey caches one copy of a page per viewer, since the layout shows
// who is logged in.
func viewerKey(c *gin.Context) string {
	viewer := "anon"
	if id, ok := auth.GetUserID(c); ok {
		viewer = fmt.Sprintf("user:%d", id)
	}
	return viewer + ":" + c.Request.URL.RequestURI()
}

func apiCORS(origins []string) gin.HandlerFunc {
	if len(origins) == 0 {
		return cors.Default()
	}
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = origins
	corsConfig.AllowCredentials = true
	corsConfig.AddAllowHeaders("Authorization")
	return cors.New(corsConfig)
}

func mediaPrefix(mediaURL string) string {
	prefix := "/" + strings.Trim(mediaURL, "/")
	if prefix == "/" {
		return "/media"
	}
	return prefix
}
