package auth

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/mikepea/yatube/pkg/yatube/logging"
	"github.com/mikepea/yatube/pkg/yatube/models"
	"github.com/mikepea/yatube/pkg/yatube/validation"
	"github.com/mikepea/yatube/pkg/yatube/web"
	"gorm.io/gorm"
)

const invalidCredentials = "Please enter a correct username and password. Note that both fields may be case-sensitive."

// Handler handles authentication requests
type Handler struct {
	db *gorm.DB
	// SecureCookie marks the session cookie Secure (HTTPS only).
	SecureCookie bool
}

// NewHandler creates a new auth handler
func NewHandler(db *gorm.DB) *Handler {
	validation.MustRegister()
	return &Handler{db: db}
}

// SignupForm is the registration form
type SignupForm struct {
	FirstName       string `form:"first_name" binding:"max=150"`
	LastName        string `form:"last_name" binding:"max=150"`
	Username        string `form:"username" binding:"required,max=150,username"`
	Email           string `form:"email" binding:"omitempty,email"`
	Password        string `form:"password" binding:"required,min=8"`
	PasswordConfirm string `form:"password_confirm" binding:"required,eqfield=Password"`
}

// LoginForm is the login form
type LoginForm struct {
	Username string `form:"username" json:"username" binding:"required"`
	Password string `form:"password" json:"password" binding:"required"`
}

// TokenRequest represents the token request body
type TokenRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// AuthResponse represents the authentication response
type AuthResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

// UserResponse represents user data in responses
type UserResponse struct {
	ID         uint   `json:"id"`
	Username   string `json:"username"`
	Email      string `json:"email"`
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	SystemRole string `json:"system_role"`
}

// NewUserResponse converts a user for JSON responses.
func NewUserResponse(u models.User) UserResponse {
	return UserResponse{
		ID:         u.ID,
		Username:   u.Username,
		Email:      u.Email,
		FirstName:  u.FirstName,
		LastName:   u.LastName,
		SystemRole: string(u.SystemRole),
	}
}

type signupPage struct {
	web.Layout
	Form   SignupForm
	Errors map[string]string
}

type loginPage struct {
	web.Layout
	Form   LoginForm
	Next   string
	Errors map[string]string
}

// SignupPage renders the empty registration form
func (h *Handler) SignupPage(c *gin.Context) {
	c.HTML(http.StatusOK, "auth/signup.html", signupPage{Layout: Layout(c, "Sign up")})
}

// Signup creates an account and logs the new user in
func (h *Handler) Signup(c *gin.Context) {
	var form SignupForm
	if err := c.ShouldBindWith(&form, binding.Form); err != nil {
		form.Password, form.PasswordConfirm = "", ""
		c.HTML(http.StatusOK, "auth/signup.html", signupPage{
			Layout: Layout(c, "Sign up"),
			Form:   form,
			Errors: validation.FieldErrors(err),
		})
		return
	}

	var existing int64
	if err := h.db.Model(&models.User{}).Where("username = ?", form.Username).Count(&existing).Error; err != nil {
		logging.Log.WithError(err).Error("signup: username lookup failed")
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}
	if existing > 0 {
		form.Password, form.PasswordConfirm = "", ""
		c.HTML(http.StatusOK, "auth/signup.html", signupPage{
			Layout: Layout(c, "Sign up"),
			Form:   form,
			Errors: map[string]string{"username": "A user with that username already exists."},
		})
		return
	}

	hashedPassword, err := HashPassword(form.Password)
	if err != nil {
		logging.Log.WithError(err).Error("signup: hashing password failed")
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}

	user := models.User{
		Username:     form.Username,
		Email:        strings.TrimSpace(form.Email),
		FirstName:    strings.TrimSpace(form.FirstName),
		LastName:     strings.TrimSpace(form.LastName),
		PasswordHash: hashedPassword,
		SystemRole:   models.SystemRoleUser,
	}
	if err := h.db.Create(&user).Error; err != nil {
		logging.Log.WithError(err).WithField("username", user.Username).Error("signup: create user failed")
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}
	logging.Log.WithField("user_id", user.ID).Info("user signed up")

	if !h.startSession(c, user) {
		return
	}
	c.Redirect(http.StatusFound, "/")
}

// LoginPage renders the login form
func (h *Handler) LoginPage(c *gin.Context) {
	c.HTML(http.StatusOK, "auth/login.html", loginPage{
		Layout: Layout(c, "Log in"),
		Next:   c.Query("next"),
	})
}

// Login checks the credentials and starts a browser session
func (h *Handler) Login(c *gin.Context) {
	var form LoginForm
	next := c.PostForm("next")
	if err := c.ShouldBindWith(&form, binding.Form); err != nil {
		form.Password = ""
		c.HTML(http.StatusOK, "auth/login.html", loginPage{
			Layout: Layout(c, "Log in"),
			Form:   form,
			Next:   next,
			Errors: validation.FieldErrors(err),
		})
		return
	}

	user, err := h.authenticate(form.Username, form.Password)
	if err != nil {
		if !errors.Is(err, errBadCredentials) {
			logging.Log.WithError(err).Error("login: user lookup failed")
			c.AbortWithStatus(http.StatusInternalServerError)
			return
		}
		form.Password = ""
		c.HTML(http.StatusOK, "auth/login.html", loginPage{
			Layout: Layout(c, "Log in"),
			Form:   form,
			Next:   next,
			Errors: map[string]string{validation.NonFieldErrors: invalidCredentials},
		})
		return
	}

	if !h.startSession(c, user) {
		return
	}
	c.Redirect(http.StatusFound, SafeNext(next))
}

// Logout ends the browser session; it is routed for POST only.
func (h *Handler) Logout(c *gin.Context) {
	clearSessionCookie(c, h.SecureCookie)
	c.HTML(http.StatusOK, "auth/logged_out.html", web.Layout{Title: "Logged out"})
}

// Token exchanges a username and password for an API token
func (h *Handler) Token(c *gin.Context) {
	var req TokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.authenticate(req.Username, req.Password)
	if err != nil {
		if errors.Is(err, errBadCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid username or password"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to look up user"})
		return
	}

	token, err := GenerateToken(user.ID, user.Username, string(user.SystemRole))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	c.JSON(http.StatusOK, AuthResponse{
		Token: token,
		User:  NewUserResponse(user),
	})
}

// Me returns the current authenticated user
func (h *Handler) Me(c *gin.Context) {
	user := CurrentUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}
	c.JSON(http.StatusOK, NewUserResponse(*user))
}

var errBadCredentials = errors.New("bad credentials")

func (h *Handler) authenticate(username, password string) (models.User, error) {
	var user models.User
	if err := h.db.Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return user, errBadCredentials
		}
		return user, err
	}
	if !CheckPassword(password, user.PasswordHash) {
		return user, errBadCredentials
	}
	return user, nil
}

func (h *Handler) startSession(c *gin.Context, user models.User) bool {
	token, err := GenerateToken(user.ID, user.Username, string(user.SystemRole))
	if err != nil {
		logging.Log.WithError(err).Error("generate session token failed")
		c.AbortWithStatus(http.StatusInternalServerError)
		return false
	}
	setSessionCookie(c, token, h.SecureCookie)
	return true
}

// RegisterRoutes registers the browser auth pages on the given router group
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/signup/", h.SignupPage)
	rg.POST("/signup/", h.Signup)
	rg.GET("/login/", h.LoginPage)
	rg.POST("/login/", h.Login)
	rg.POST("/logout/", h.Logout)
}

// RegisterAPIRoutes registers the JSON auth endpoints on the given router group
func (h *Handler) RegisterAPIRoutes(rg *gin.RouterGroup) {
	rg.POST("/token", h.Token)
	rg.GET("/me", RequireAuth(), h.Me)
}
