package db

import (
	"fmt"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/Rogue-Bear-Innovations/bookmarks-api/internal/config"
)

const TableBookmarks = "bookmarks"

type Bookmark struct {
	ID          uint64  `gorm:"primarykey"`
	Title       string  `gorm:"not null"`
	URL         string  `gorm:"column:url;not null"`
	Description *string
	Rating      *int
}

func (Bookmark) TableName() string {
	return TableBookmarks
}

// zapWriter lets gorm's logger print through zap. gorm only emits at Warn and above.
type zapWriter struct {
	l *zap.SugaredLogger
}

func (w zapWriter) Printf(format string, args ...interface{}) {
	w.l.Warnf(format, args...)
}

func NewGormClient(cfg *config.Config, l *zap.SugaredLogger) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.DBDriver {
	case config.DriverPostgres:
		dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
			cfg.DBHost, cfg.DBUser, cfg.DBPassword, cfg.DBName, cfg.DBPort, cfg.DBSSLMode)
		dialector = postgres.Open(dsn)
	case config.DriverSQLite:
		dialector = sqlite.Open(cfg.SQLitePath)
	default:
		return nil, errors.New(fmt.Sprintf("no sql dialect for driver %s", cfg.DBDriver))
	}

	return Open(dialector, l)
}

// Open connects through the given dialector and makes sure the bookmarks table exists.
func Open(dialector gorm.Dialector, l *zap.SugaredLogger) (*gorm.DB, error) {
	newLogger := logger.New(zapWriter{l: l}, logger.Config{
		SlowThreshold:             200 * time.Millisecond,
		LogLevel:                  logger.Warn,
		Colorful:                  false,
		IgnoreRecordNotFoundError: true,
	})

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: newLogger,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect database")
	}

	if err := db.AutoMigrate(&Bookmark{}); err != nil {
		return nil, errors.Wrap(err, "migrate bookmark")
	}

	return db, nil
}
