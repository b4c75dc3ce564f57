package database

import (
	"strings"

	"github.com/pkg/errors"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

var DB *gorm.DB

// Connect initializes the package-level database connection.
func Connect(driver, dsn string) error {
	db, err := Open(driver, dsn)
	if err != nil {
		return err
	}
	DB = db
	return nil
}

// GetDB returns the database instance.
func GetDB() *gorm.DB {
	return DB
}

// Open opens a gorm connection for the given driver.
// SQLite connections always enforce foreign keys, which the cascade and
// set-null rules on posts, comments and follows depend on.
func Open(driver, dsn string) (*gorm.DB, error) {
	cfg := &gorm.Config{Logger: logger.Default.LogMode(logger.Warn)}

	switch driver {
	case DriverSQLite, "":
		db, err := gorm.Open(sqlite.Open(withForeignKeys(dsn)), cfg)
		if err != nil {
			return nil, errors.Wrapf(err, "open sqlite %q", dsn)
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, errors.Wrap(err, "sqlite handle")
		}
		// One connection keeps in-memory databases coherent and serializes writers.
		sqlDB.SetMaxOpenConns(1)
		return db, nil
	case DriverPostgres:
		db, err := gorm.Open(postgres.Open(dsn), cfg)
		if err != nil {
			return nil, errors.Wrap(err, "open postgres")
		}
		return db, nil
	}
	return nil, errors.Errorf("unsupported database driver %q", driver)
}

// Close closes the underlying sql.DB.
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func withForeignKeys(dsn string) string {
	if strings.Contains(dsn, "_foreign_keys") || strings.Contains(dsn, "_fk=") {
		return dsn
	}
	if dsn == ":memory:" {
		dsn = "file::memory:"
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + "_foreign_keys=1"
}
