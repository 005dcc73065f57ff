package storage

import (
	"os"
	"path/filepath"

	"storyframe-ai/config"
	"storyframe-ai/internal/types"
	"storyframe-ai/log"

	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

// dbPathResolver is swappable in tests.
var dbPathResolver = resolveDBPath

func InitDB() {
	dbPath, err := dbPathResolver()
	if err != nil {
		log.GetLogger().Fatal("failed to resolve database path", zap.Error(err))
	}

	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		log.GetLogger().Fatal("failed to create database directory", zap.String("dir", dir), zap.Error(err))
	}

	DB, err = gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		log.GetLogger().Fatal("failed to connect database", zap.Error(err))
	}

	// Auto Migrate the schema
	err = DB.AutoMigrate(
		&types.User{},
		&types.Project{},
		&types.Script{},
		&types.Keyframe{},
		&types.VideoSegment{},
		&types.File{},
	)
	if err != nil {
		log.GetLogger().Fatal("failed to migrate database", zap.Error(err))
	}

	log.GetLogger().Info("Database initialized successfully", zap.String("path", dbPath))
}

func resolveDBPath() (string, error) {
	if config.Conf.Database.Path != "" {
		return config.Conf.Database.Path, nil
	}
	return filepath.Join("data", "storyframe.db"), nil
}
