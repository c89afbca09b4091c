package main

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/uiverify/uiverify/database"
	"github.com/uiverify/uiverify/logger"
	"github.com/uiverify/uiverify/storage"
	"github.com/uiverify/uiverify/target"
)

// newLogger builds the process logger from config.
func newLogger(cfg *Config) logger.Logger {
	return logger.NewLogrusLogger(cfg.Log.Level, cfg.Log.Format)
}

// openDatabase connects to the configured database. The sqlite driver
// auto-migrates its schema so one-shot runs work without a separate
// migration step.
func openDatabase(cfg *Config) (*gorm.DB, error) {
	dbCfg := database.Config{
		Driver:       cfg.Database.Driver,
		Host:         cfg.Database.Host,
		Port:         cfg.Database.Port,
		User:         cfg.Database.User,
		Password:     cfg.Database.Password,
		Database:     cfg.Database.Database,
		SQLitePath:   cfg.Database.SQLitePath,
		MaxOpenConns: cfg.Database.MaxOpenConns,
		MaxIdleConns: cfg.Database.MaxIdleConns,
	}

	db, err := database.Connect(dbCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if cfg.Database.Driver == "sqlite" {
		if err := database.AutoMigrate(db); err != nil {
			return nil, fmt.Errorf("failed to migrate database: %w", err)
		}
	}

	return db, nil
}

// buildStorage creates the configured blob storage backend.
func buildStorage(cfg *Config) (storage.BlobStorage, error) {
	blobs, err := storage.New(storage.Config{
		Type:            cfg.Storage.Type,
		BaseDir:         cfg.Storage.BaseDir,
		S3Bucket:        cfg.Storage.S3Bucket,
		S3Region:        cfg.Storage.S3Region,
		S3PresignExpiry: cfg.Storage.S3PresignExpiry,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}
	return blobs, nil
}

// credentialKey derives the target password encryption key.
func credentialKey(cfg *Config) []byte {
	return target.DeriveKey(cfg.Credential.Passphrase)
}
