package index

import (
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	fperrors "github.com/zfogg/echoprint/internal/errors"
)

// Connect opens a pooled connection to Postgres, following the same
// connection-pool-tuning shape the reference backend's database.Initialize
// uses, scoped down to the two tables this store needs.
func Connect(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fperrors.Wrap(fperrors.StorageError, "failed to open database connection", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fperrors.Wrap(fperrors.StorageError, "failed to access underlying sql.DB", err)
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)

	return db, nil
}
