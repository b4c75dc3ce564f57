package auth

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/mikepea/yatube/pkg/yatube/models"
	"github.com/mikepea/yatube/pkg/yatube/web"
	"gorm.io/gorm"
)

const (
	// ContextKeyUserID is the key for user ID in gin context
	ContextKeyUserID = "user_id"
	// ContextKeyUser is the key for the loaded *models.User in gin context
	ContextKeyUser = "user"
	// ContextKeySystemRole is the key for system role in gin context
	ContextKeySystemRole = "system_role"

	// SessionCookie holds the login token of browser sessions.
	SessionCookie = "yatube_session"
	// LoginURL is where anonymous visitors of protected pages are sent.
	LoginURL = "/auth/login/"
)

// Authenticate resolves the viewer from the session cookie or a Bearer
// token. Requests without a valid token continue anonymously.
func Authenticate(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := bearerToken(c)
		if tokenString == "" {
			tokenString, _ = c.Cookie(SessionCookie)
		}
		if tokenString == "" {
			c.Next()
			return
		}

		claims, err := ValidateToken(tokenString)
		if err != nil {
			c.Next()
			return
		}

		var user models.User
		if err := db.First(&user, claims.UserID).Error; err != nil {
			// deleted since the token was issued
			c.Next()
			return
		}

		c.Set(ContextKeyUserID, user.ID)
		c.Set(ContextKeyUser, &user)
		c.Set(ContextKeySystemRole, string(user.SystemRole))

		c.Next()
	}
}

func bearerToken(c *gin.Context) string {
	parts := strings.SplitN(c.GetHeader("Authorization"), " ", 2)
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// LoginRequired redirects anonymous visitors to the login page, remembering
// where they were going.
func LoginRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := GetUserID(c); !ok {
			c.Redirect(http.StatusFound, LoginRedirectURL(c.Request.URL.RequestURI()))
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireAuth rejects anonymous API requests.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := GetUserID(c); !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireAdmin middleware checks if the user has admin system role
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		role, exists := GetSystemRole(c)
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
			c.Abort()
			return
		}

		if role != string(models.SystemRoleAdmin) {
			c.JSON(http.StatusForbidden, gin.H{"error": "Admin access required"})
			c.Abort()
			return
		}

		c.Next()
	}
}

// GetUserID returns the user ID from the gin context
func GetUserID(c *gin.Context) (uint, bool) {
	userID, exists := c.Get(ContextKeyUserID)
	if !exists {
		return 0, false
	}
	return userID.(uint), true
}

// GetSystemRole returns the system role from the gin context
func GetSystemRole(c *gin.Context) (string, bool) {
	role, exists := c.Get(ContextKeySystemRole)
	if !exists {
		return "", false
	}
	return role.(string), true
}

// CurrentUser returns the viewer, or nil when anonymous.
func CurrentUser(c *gin.Context) *models.User {
	user, exists := c.Get(ContextKeyUser)
	if !exists {
		return nil
	}
	return user.(*models.User)
}

// Layout is the shared page data for the current viewer.
func Layout(c *gin.Context, title string) web.Layout {
	return web.Layout{Title: title, Viewer: CurrentUser(c)}
}

// LoginRedirectURL is the login page with next set to the given local path.
func LoginRedirectURL(next string) string {
	return LoginURL + "?next=" + strings.ReplaceAll(url.QueryEscape(next), "%2F", "/")
}

// SafeNext returns next when it is a path on this site, otherwise "/".
func SafeNext(next string) string {
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return "/"
	}
	u, err := url.Parse(next)
	if err != nil || u.Scheme != "" || u.Host != "" {
		return "/"
	}
	return next
}

func setSessionCookie(c *gin.Context, token string, secure bool) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookie, token, int(TokenDuration().Seconds()), "/", "", secure, true)
}

func clearSessionCookie(c *gin.Context, secure bool) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookie, "", -1, "/", "", secure, true)
}
