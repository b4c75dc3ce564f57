package main

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mikepea/yatube/pkg/yatube/admin"
	"github.com/mikepea/yatube/pkg/yatube/auth"
	"github.com/mikepea/yatube/pkg/yatube/config"
	"github.com/mikepea/yatube/pkg/yatube/database"
	"github.com/mikepea/yatube/pkg/yatube/logging"
	"github.com/mikepea/yatube/pkg/yatube/media"
	"github.com/mikepea/yatube/pkg/yatube/models"
	"github.com/mikepea/yatube/pkg/yatube/pagecache"
	"github.com/mikepea/yatube/pkg/yatube/server"
	"github.com/pkg/errors"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Log.WithError(err).Fatal("Failed to load configuration")
	}
	logging.InitLogger(cfg.LogLevel, cfg.Env)
	auth.Configure(cfg.JWTSecret, cfg.SessionTTL())

	// Connect to database
	if err := database.Connect(cfg.DBDriver, cfg.DBDSN); err != nil {
		logging.Log.WithError(err).Fatal("Failed to connect to database")
	}
	db := database.GetDB()

	// Run auto-migrations
	if err := models.AutoMigrate(db); err != nil {
		logging.Log.WithError(err).Fatal("Failed to run migrations")
	}
	logging.Log.Info("Database migrations completed")

	created, err := admin.EnsureAdmin(db, cfg.AdminUsername, cfg.AdminEmail, cfg.AdminPassword)
	if err != nil {
		logging.Log.WithError(err).Fatal("Failed to ensure admin user exists")
	}
	if created {
		logging.Log.WithField("username", cfg.AdminUsername).Info("Created admin user")
	}

	store, err := newMediaStore(cfg)
	if err != nil {
		logging.Log.WithError(err).Fatal("Failed to set up media storage")
	}

	cache, err := newPageCache(cfg)
	if err != nil {
		logging.Log.WithError(err).Fatal("Failed to set up page cache")
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r, err := server.New(server.Deps{DB: db, Config: cfg, Media: store, PageCache: cache})
	if err != nil {
		logging.Log.WithError(err).Fatal("Failed to build server")
	}

	logging.Log.WithField("port", cfg.Port).Info("Starting Yatube server")
	if err := r.Run(":" + cfg.Port); err != nil {
		logging.Log.WithError(err).Fatal("Failed to start server")
	}
}

func newMediaStore(cfg *config.Config) (media.Store, error) {
	if cfg.MediaBackend == "s3" {
		logging.Log.WithField("bucket", cfg.S3Bucket).Info("Storing media in S3")
		return media.NewS3Store(cfg.S3Region, cfg.S3Bucket, cfg.S3PublicURL)
	}
	logging.Log.WithField("root", cfg.MediaRoot).Info("Storing media on local disk")
	return media.NewLocalStore(cfg.MediaRoot, cfg.MediaURL)
}

// newPageCache returns nil when caching is switched off.
func newPageCache(cfg *config.Config) (pagecache.Store, error) {
	ttl := cfg.IndexCacheTTL()
	if ttl <= 0 {
		return nil, nil
	}
	if cfg.CacheBackend == "redis" {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		client, err := pagecache.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			return nil, errors.Wrap(err, "connect to redis")
		}
		return pagecache.NewRedisStore(client, ttl), nil
	}
	return pagecache.NewMemoryStore(cfg.CacheSize, ttl), nil
}
