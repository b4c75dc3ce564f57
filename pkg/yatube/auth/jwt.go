package auth

import (
	"errors"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
)

const defaultSecret = "yatube-dev-secret-change-in-production"

var (
	settingsMu    sync.RWMutex
	jwtSecret     = []byte(defaultSecret)
	tokenDuration = 14 * 24 * time.Hour
)

// Claims represents the JWT claims
type Claims struct {
	UserID     uint   `json:"user_id"`
	Username   string `json:"username"`
	SystemRole string `json:"system_role"`
	jwt.RegisteredClaims
}

// Configure sets the signing secret and token lifetime. Empty or zero values
// keep the current setting.
func Configure(secret string, ttl time.Duration) {
	settingsMu.Lock()
	defer settingsMu.Unlock()
	if secret != "" {
		jwtSecret = []byte(secret)
	}
	if ttl > 0 {
		tokenDuration = ttl
	}
}

func getJWTSecret() []byte {
	settingsMu.RLock()
	defer settingsMu.RUnlock()
	return jwtSecret
}

// TokenDuration returns the token validity duration
func TokenDuration() time.Duration {
	settingsMu.RLock()
	defer settingsMu.RUnlock()
	return tokenDuration
}

// GenerateToken creates a new JWT token for a user
func GenerateToken(userID uint, username string, systemRole string) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID:     userID,
		Username:   username,
		SystemRole: systemRole,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(TokenDuration())),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    "yatube",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(getJWTSecret())
}

// ValidateToken validates a JWT token and returns the claims
func ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return getJWTSecret(), nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
