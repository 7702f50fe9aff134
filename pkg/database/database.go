package database

import (
	"dating_scan_backend/internal/config"
	"dating_scan_backend/internal/model"
	"dating_scan_backend/internal/seed"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var logLevels = map[string]logger.LogLevel{
	"silent": logger.Silent,
	"error":  logger.Error,
	"warn":   logger.Warn,
	"info":   logger.Info,
}

func open(cfg *config.DatabaseConfig) (gorm.Dialector, error) {
	switch cfg.Driver {
	case "sqlite":
		// single-node and local runs
		if err := os.MkdirAll(filepath.Dir(cfg.Path), 0755); err != nil {
			return nil, err
		}
		return sqlite.Open(cfg.Path + "?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"), nil
	case "mysql", "":
		dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=%t&loc=UTC",
			cfg.User,
			cfg.Password,
			cfg.Host,
			cfg.Port,
			cfg.DBName,
			cfg.Charset,
			cfg.ParseTime,
		)
		return mysql.Open(dsn), nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

func InitDB(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	dialector, err := open(cfg)
	if err != nil {
		return nil, err
	}

	level, ok := logLevels[cfg.LogLevel]
	if !ok {
		level = logger.Warn
	}
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(level),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if cfg.Driver == "sqlite" {
		// sqlite allows a single writer
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxOpenConns(50)
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetConnMaxLifetime(time.Hour)
	}

	log.Println("Database connection established")

	if err := db.AutoMigrate(model.All()...); err != nil {
		return nil, err
	}
	log.Println("Database migration completed")

	// built-in definitions
	if err := seed.Install(db); err != nil {
		return nil, err
	}

	return db, nil
}
