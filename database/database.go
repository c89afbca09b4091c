package database

import (
	"fmt"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/uiverify/uiverify/queue"
	"github.com/uiverify/uiverify/run"
	"github.com/uiverify/uiverify/scenario"
	"github.com/uiverify/uiverify/target"
)

// Config holds database connection configuration. Driver selects
// between "mysql" for the server deployment and "sqlite" for local
// one-shot runs.
type Config struct {
	Driver string

	// MySQL settings.
	Host     string
	Port     int
	User     string
	Password string
	Database string

	// SQLitePath is the database file for the sqlite driver.
	SQLitePath string

	MaxOpenConns int
	MaxIdleConns int
}

// DSN builds the MySQL connection string.
func (c Config) DSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local&multiStatements=true",
		c.User, c.Password, c.Host, c.Port, c.Database)
}

// Connect opens a database connection and configures the pool.
func Connect(cfg Config) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case "", "mysql":
		dialector = mysql.Open(cfg.DSN())
	case "sqlite":
		path := cfg.SQLitePath
		if path == "" {
			path = "uiverify.db"
		}
		dialector = sqlite.Open(path)
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", cfg.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to access database pool: %w", err)
	}

	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	sqlDB.SetConnMaxLifetime(time.Hour)

	return db, nil
}

// AutoMigrate creates or updates the schema from the models. It backs
// the sqlite driver, where SQL migration files do not apply.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&target.Target{},
		&scenario.Scenario{},
		&run.Run{},
		&run.Asset{},
		&queue.Job{},
	)
}
