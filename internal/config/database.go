package config

import (
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DB is the shared database handle.
var DB *gorm.DB

// InitDB opens the database selected by DB_DRIVER.
func InitDB(cfg *Config) error {
	db, err := OpenDB(cfg.DBDriver, cfg.DBDSN)
	if err != nil {
		return err
	}
	DB = db
	Logger.Info("Database connected", zap.String("driver", cfg.DBDriver))
	return nil
}

// gormWriter hands gorm's log lines to Logger, looked up per call so a
// logger installed later is still used.
type gormWriter struct{}

func (gormWriter) Printf(format string, args ...interface{}) {
	Logger.Sugar().Warnf(format, args...)
}

// OpenDB opens a gorm handle for driver. SQLite handles are limited to a single
// connection with foreign keys enforced, so cascades behave as on the server databases.
func OpenDB(driver, dsn string) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch driver {
	case "mysql":
		dialector = mysql.Open(dsn)
	case "postgres":
		connCfg, err := pgx.ParseConfig(dsn)
		if err != nil {
			return nil, fmt.Errorf("parse postgres dsn: %w", err)
		}
		connCfg.DefaultQueryExecMode = pgx.QueryExecModeCacheStatement
		connCfg.StatementCacheCapacity = 256
		dialector = postgres.New(postgres.Config{Conn: stdlib.OpenDB(*connCfg)})
	case "sqlite":
		dialector = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.New(gormWriter{}, logger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
		}),
	})
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", driver, err)
	}

	if driver == "sqlite" {
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
		if err := db.Exec("PRAGMA foreign_keys = ON").Error; err != nil {
			return nil, fmt.Errorf("enable sqlite foreign keys: %w", err)
		}
	}
	return db, nil
}

// Close releases the Redis and database connections.
func Close() {
	if RedisClient != nil {
		if err := RedisClient.Close(); err != nil {
			Logger.Error("Error closing Redis connection", zap.Error(err))
		}
	}
	if DB == nil {
		return
	}
	sqlDB, err := DB.DB()
	if err != nil {
		Logger.Error("Error getting raw DB", zap.Error(err))
		return
	}
	if err := sqlDB.Close(); err != nil {
		Logger.Error("Error closing database connection", zap.Error(err))
	}
}
