// Package database opens the gorm connection and migrates the schema.
package database

import (
	"fmt"
	"strings"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/d60-Lab/socialfeed/config"
	"github.com/d60-Lab/socialfeed/internal/model"
)

// Models 需要迁移的全部模型
func Models() []interface{} {
	return []interface{}{
		&model.User{},
		&model.Follow{},
		&model.Fan{},
		&model.Post{},
		&model.Media{},
		&model.PostTag{},
		&model.Like{},
		&model.Comment{},
	}
}

// GormConfig is shared by the server and tests so both get the same
// error translation and migration behaviour.
func GormConfig(level string) *gorm.Config {
	return &gorm.Config{
		Logger:         gormlogger.Default.LogMode(logLevel(level)),
		TranslateError: true,
		// 关联数据在事务中显式删除，不依赖外键级联
		DisableForeignKeyConstraintWhenMigrating: true,
	}
}

// InitDB 根据配置打开数据库连接
func InitDB(cfg *config.Config) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.Database.Driver {
	case "postgres":
		dialector = postgres.Open(cfg.Database.DSN)
	case "sqlite":
		dialector = sqlite.Open(cfg.Database.DSN)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Database.Driver)
	}

	db, err := gorm.Open(dialector, GormConfig(cfg.Database.LogLevel))
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", cfg.Database.Driver, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if cfg.Database.Driver == "sqlite" {
		// SQLite 单写者
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxOpenConns(cfg.Database.MaxOpenConns)
		sqlDB.SetMaxIdleConns(cfg.Database.MaxIdleConns)
		sqlDB.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)
	}

	if cfg.Database.AutoMigrate {
		if err := Migrate(db); err != nil {
			return nil, err
		}
	}
	return db, nil
}

// Migrate 执行 AutoMigrate
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	if err := backfillFolded(db, "posts", "text", "text_folded"); err != nil {
		return fmt.Errorf("backfill posts.text_folded: %w", err)
	}
	if err := backfillFolded(db, "users", "name", "name_folded"); err != nil {
		return fmt.Errorf("backfill users.name_folded: %w", err)
	}
	return nil
}

type foldRow struct {
	ID  string
	Src string
}

// backfillFolded 为新增折叠列之前写入的行补齐数据
func backfillFolded(db *gorm.DB, table, src, dst string) error {
	var rows []foldRow
	return db.Table(table).
		Select("id", src+" AS src").
		Where(dst + " IS NULL").
		FindInBatches(&rows, 500, func(tx *gorm.DB, _ int) error {
			for _, r := range rows {
				err := db.Table(table).Where("id = ?", r.ID).UpdateColumn(dst, model.Fold(r.Src)).Error
				if err != nil {
					return err
				}
			}
			return nil
		}).Error
}

// Close 关闭底层连接池
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func logLevel(level string) gormlogger.LogLevel {
	switch strings.ToLower(level) {
	case "silent":
		return gormlogger.Silent
	case "error":
		return gormlogger.Error
	case "info":
		return gormlogger.Info
	default:
		return gormlogger.Warn
	}
}
