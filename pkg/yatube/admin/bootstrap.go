package admin

import (
	"github.com/mikepea/yatube/pkg/yatube/auth"
	"github.com/mikepea/yatube/pkg/yatube/logging"
	"github.com/mikepea/yatube/pkg/yatube/models"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// EnsureAdmin creates the default admin account when no admin exists yet.
// It does nothing without a password, so a fresh install never gets a
// guessable admin.
func EnsureAdmin(db *gorm.DB, username, email, password string) (bool, error) {
	if password == "" {
		return false, nil
	}

	var count int64
	if err := db.Model(&models.User{}).Where("system_role = ?", models.SystemRoleAdmin).Count(&count).Error; err != nil {
		return false, errors.Wrap(err, "count admins")
	}
	if count > 0 {
		return false, nil
	}

	hashedPassword, err := auth.HashPassword(password)
	if err != nil {
		return false, errors.Wrap(err, "hash admin password")
	}

	adminUser := models.User{
		Username:     username,
		Email:        email,
		PasswordHash: hashedPassword,
		SystemRole:   models.SystemRoleAdmin,
	}
	if err := db.Create(&adminUser).Error; err != nil {
		return false, errors.Wrapf(err, "create admin %s", username)
	}

	logging.Log.WithField("username", username).Info("created default admin user")
	return true, nil
}
