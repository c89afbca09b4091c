package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Storage    StorageConfig
	Browser    BrowserConfig
	Queue      QueueConfig
	Artifact   ArtifactConfig
	Credential CredentialConfig
	Log        LogConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// DatabaseConfig holds database connection configuration.
type DatabaseConfig struct {
	Driver       string
	Host         string
	Port         int
	User         string
	Password     string
	Database     string
	SQLitePath   string
	MaxOpenConns int
	MaxIdleConns int
}

// StorageConfig holds blob storage configuration.
type StorageConfig struct {
	Type            string
	BaseDir         string
	S3Bucket        string
	S3Region        string
	S3PresignExpiry time.Duration
}

// BrowserConfig holds browser session configuration.
type BrowserConfig struct {
	Headless       bool
	SlowMo         time.Duration
	DefaultTimeout time.Duration
	Install        bool
	ViewportWidth  int
	ViewportHeight int
}

// QueueConfig holds worker pool configuration.
type QueueConfig struct {
	MaxWorkers int
}

// ArtifactConfig holds artifact download token configuration.
type ArtifactConfig struct {
	TokenSecret string
	TokenTTL    time.Duration
}

// CredentialConfig holds target credential encryption configuration.
type CredentialConfig struct {
	Passphrase string
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level  string
	Format string
}

// LoadConfig loads configuration from file and environment variables.
func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	v.SetEnvPrefix("UIVERIFY")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "60s")

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 3306)
	v.SetDefault("database.user", "root")
	v.SetDefault("database.password", "password")
	v.SetDefault("database.database", "uiverify")
	v.SetDefault("database.sqlite_path", "uiverify.db")
	v.SetDefault("database.max_open_conns", 25)
	v.SetDefault("database.max_idle_conns", 5)

	v.SetDefault("storage.type", "local")
	v.SetDefault("storage.base_dir", "./artifacts")
	v.SetDefault("storage.s3_bucket", "")
	v.SetDefault("storage.s3_region", "us-east-1")
	v.SetDefault("storage.s3_presign_expiry", "15m")

	v.SetDefault("browser.headless", true)
	v.SetDefault("browser.slow_mo", "0s")
	v.SetDefault("browser.default_timeout", "30s")
	v.SetDefault("browser.install", false)
	v.SetDefault("browser.viewport_width", 1280)
	v.SetDefault("browser.viewport_height", 720)

	v.SetDefault("queue.max_workers", 1)

	v.SetDefault("artifact.token_secret", "change-this-secret-in-production-min-32-chars")
	v.SetDefault("artifact.token_ttl", "15m")

	v.SetDefault("credential.passphrase", "")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found; using defaults
	}

	var config Config

	config.Server.Host = v.GetString("server.host")
	config.Server.Port = v.GetInt("server.port")
	config.Server.ReadTimeout = v.GetDuration("server.read_timeout")
	config.Server.WriteTimeout = v.GetDuration("server.write_timeout")

	config.Database.Driver = v.GetString("database.driver")
	config.Database.Host = v.GetString("database.host")
	config.Database.Port = v.GetInt("database.port")
	config.Database.User = v.GetString("database.user")
	config.Database.Password = v.GetString("database.password")
	config.Database.Database = v.GetString("database.database")
	config.Database.SQLitePath = v.GetString("database.sqlite_path")
	config.Database.MaxOpenConns = v.GetInt("database.max_open_conns")
	config.Database.MaxIdleConns = v.GetInt("database.max_idle_conns")

	config.Storage.Type = v.GetString("storage.type")
	config.Storage.BaseDir = v.GetString("storage.base_dir")
	config.Storage.S3Bucket = v.GetString("storage.s3_bucket")
	config.Storage.S3Region = v.GetString("storage.s3_region")
	config.Storage.S3PresignExpiry = v.GetDuration("storage.s3_presign_expiry")

	config.Browser.Headless = v.GetBool("browser.headless")
	config.Browser.SlowMo = v.GetDuration("browser.slow_mo")
	config.Browser.DefaultTimeout = v.GetDuration("browser.default_timeout")
	config.Browser.Install = v.GetBool("browser.install")
	config.Browser.ViewportWidth = v.GetInt("browser.viewport_width")
	config.Browser.ViewportHeight = v.GetInt("browser.viewport_height")

	config.Queue.MaxWorkers = v.GetInt("queue.max_workers")

	config.Artifact.TokenSecret = v.GetString("artifact.token_secret")
	config.Artifact.TokenTTL = v.GetDuration("artifact.token_ttl")

	config.Credential.Passphrase = v.GetString("credential.passphrase")

	config.Log.Level = v.GetString("log.level")
	config.Log.Format = v.GetString("log.format")

	return &config, nil
}
