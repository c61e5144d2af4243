package cmd

import (
	"context"
	"fmt"
	stdlog "log"
	"os"
	"time"

	"github.com/rpupo63/company-rating-backend/config"
	"github.com/rpupo63/company-rating-backend/database"
	"github.com/rs/zerolog/log"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const connectTimeout = 15 * time.Second

// openDatabase connects to the company store selected by DB_TYPE
func openDatabase(ctx context.Context, cfg config.Config) (database.Database, error) {
	log.Info().Str("dbType", cfg.DBType).Msg("connecting to company store")

	switch cfg.DBType {
	case "mongo":
		ctx, cancel := context.WithTimeout(ctx, connectTimeout)
		defer cancel()
		return database.NewMongo(ctx, cfg.MongoURI, cfg.MongoDatabase)
	case "postgres", "supa":
		return openPostgres(cfg.PostgresDSN)
	case "memory":
		log.Warn().Msg("using the in-memory company store, data is lost on exit")
		return database.NewMemory(), nil
	default:
		return database.Database{}, fmt.Errorf("unsupported DB_TYPE %q", cfg.DBType)
	}
}

func openPostgres(dsn string) (database.Database, error) {
	newLogger := logger.New(
		stdlog.New(os.Stdout, "\r\n", stdlog.LstdFlags),
		logger.Config{
			SlowThreshold:             10 * time.Second,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  true,
		},
	)

	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  dsn,
		PreferSimpleProtocol: true,
	}), &gorm.Config{
		PrepareStmt: false,
		Logger:      newLogger,
	})
	if err != nil {
		return database.Database{}, fmt.Errorf("connecting to postgres: %w", err)
	}

	// Test database connection
	var result int
	if err := db.Raw("SELECT 1").Scan(&result).Error; err != nil {
		return database.Database{}, fmt.Errorf("testing postgres connection: %w", err)
	}

	return database.NewPostgres(db)
}
