package db

import (
	"fmt"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/grokmeetu/meetu-backend/internal/logger"
	"github.com/grokmeetu/meetu-backend/internal/types"
)

// SqliteService is the local-development and test database. The serving path
// runs on Postgres; everything above the *gorm.DB is driver-agnostic.
type SqliteService struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSqliteService(dsn string, log *logger.Logger) (*SqliteService, error) {
	serviceLog := log.With("service", "SqliteService")

	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		log.Error("Failed to open sqlite database", "dsn", dsn, "error", err)
		return nil, fmt.Errorf("Failed to open sqlite database: %w", err)
	}

	return &SqliteService{db: gdb, log: serviceLog}, nil
}

func (s *SqliteService) AutoMigrateAll() error {
	s.log.Info("Auto migrating sqlite tables...")
	err := s.db.AutoMigrate(
		&types.User{},
		&types.Chatroom{},
		&types.Interaction{},
	)
	if err != nil {
		s.log.Error("Auto migration failed for sqlite tables", "error", err)
		return err
	}
	return nil
}

func (s *SqliteService) DB() *gorm.DB {
	return s.db
}
