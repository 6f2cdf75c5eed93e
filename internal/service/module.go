package service

import (
	"context"

	"github.com/pkg/errors"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/Rogue-Bear-Innovations/bookmarks-api/internal/config"
	"github.com/Rogue-Bear-Innovations/bookmarks-api/internal/db"
)

var Module = fx.Provide(NewGateway)

// NewGateway picks the storage backend named by the DB_DRIVER setting.
func NewGateway(lc fx.Lifecycle, cfg *config.Config, l *zap.SugaredLogger) (Gateway, error) {
	if cfg.DBDriver == config.DriverMemory {
		l.Warn("using in-memory bookmark storage, data will not survive a restart")
		return NewMemory(), nil
	}

	gormDB, err := db.NewGormClient(cfg, l)
	if err != nil {
		return nil, errors.Wrap(err, "open database")
	}

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			l.Info("Closing database connection.")
			sqlDB, err := gormDB.DB()
			if err != nil {
				return errors.Wrap(err, "get sql db")
			}
			return sqlDB.Close()
		},
	})

	l.Infow("connected to database", "driver", cfg.DBDriver)
	return NewBookmarks(gormDB, l), nil
}
