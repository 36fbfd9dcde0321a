package database

import (
	"fmt"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/applytrack/applytrackd/internal/config"
)

// Slot is one durable key→value row. The whole record list and the pending
// capture checkpoint each live in a single slot, read-modify-written whole.
type Slot struct {
	Key   string `gorm:"primaryKey"`
	Value []byte
}

// Connect opens the configured backend and migrates the slot table. A local
// single-user run defaults to a sqlite file; postgres is opt-in via config.
func Connect(cfg *config.Config, logger *zap.Logger) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.DBDriver {
	case config.DriverSQLite:
		dialector = sqlite.Open(cfg.DBDSN)
	case config.DriverPostgres:
		dialector = postgres.Open(cfg.DBDSN)
	default:
		return nil, fmt.Errorf("unknown db driver %q", cfg.DBDriver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	logger.Info("database connection established", zap.String("driver", cfg.DBDriver))

	if err := db.AutoMigrate(&Slot{}); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return db, nil
}
