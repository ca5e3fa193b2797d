package database

import (
	"Huddle/internal/api/config"
	"Huddle/internal/model"
	"Huddle/internal/pkg/logger"
	"fmt"
	log "log/slog"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Dialector 按配置选择驱动，默认 postgres
func Dialector(cfg *config.DBConfig) (gorm.Dialector, string, error) {
	switch cfg.Driver {
	case "", "postgres", "postgresql":
		return postgres.Open(cfg.DSN), "Postgres", nil
	case "mysql":
		return mysql.Open(cfg.DSN), "MySQL", nil
	default:
		return nil, "", fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

// NewGormDB 初始化并返回 *gorm.DB 实例，处理连接池配置
func NewGormDB(cfg *config.DBConfig) (*gorm.DB, error) {
	dialector, name, err := Dialector(cfg)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:      logger.NewGormLogger(name),
		PrepareStmt: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying DB: %w", err)
	}

	sqlDB.SetMaxIdleConns(cfg.MaxIdle)
	sqlDB.SetMaxOpenConns(cfg.MaxOpen)
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.MaxLifetime) * time.Minute)

	if err = sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("database connection check failed: %w", err)
	}

	if cfg.AutoMigrate {
		if err = Migrate(db); err != nil {
			return nil, err
		}
	}

	log.Info("Database connection established successfully.", "driver", name)
	return db, nil
}

// Migrate 建表与索引
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.Profile{},
		&model.Channel{},
		&model.Message{},
		&model.MessageFile{},
		&model.Reaction{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}
