package store

import (
	"context"
	"fmt"
	"io"

	"reports_srv/internal/config"
	"reports_srv/internal/database"
	"reports_srv/internal/models"

	"github.com/sirupsen/logrus"
	"go.uber.org/fx"
)

// StoreBuilder строитель хранилища отчетов по конфигурации
type StoreBuilder struct {
	config config.Config
	logger *logrus.Logger
	opts   []Option
}

// NewStoreBuilder создает новый строитель хранилища
func NewStoreBuilder(cfg config.Config, logger *logrus.Logger, opts ...Option) *StoreBuilder {
	return &StoreBuilder{
		config: cfg,
		logger: logger,
		opts:   opts,
	}
}

// Build создает хранилище выбранного режима. Для режима sql возвращает пул, который нужно закрыть.
func (b *StoreBuilder) Build() (ReportStore, io.Closer, error) {
	switch b.config.Storage.Mode {
	case config.StorageModeMemory:
		var seed []models.Report
		if b.config.Storage.Seed {
			seed = models.SampleReports(applyOptions(b.opts).now())
		}
		b.logger.WithField("seeded", len(seed)).Info("Используется хранилище отчетов в памяти")
		return b.wrapWithMiddleware(NewMemoryStore(seed, b.opts...)), nil, nil

	case config.StorageModeSQL:
		dbConfig, err := database.ConfigFromApp(b.config)
		if err != nil {
			return nil, nil, fmt.Errorf("ошибка конфигурации БД: %w", err)
		}
		db, err := database.NewDatabase(dbConfig)
		if err != nil {
			return nil, nil, err
		}
		provider, err := database.NewConnProvider(db, dbConfig.Driver)
		if err != nil {
			return nil, nil, err
		}
		b.logger.WithFields(logrus.Fields{
			"driver": dbConfig.Driver,
			"table":  dbConfig.Table,
		}).Info("Используется реляционное хранилище отчетов")
		store := NewSQLStore(provider, dbConfig.Table, b.logger, b.opts...)
		return b.wrapWithMiddleware(store), provider, nil

	default:
		return nil, nil, fmt.Errorf("неподдерживаемый режим хранилища: %s", b.config.Storage.Mode)
	}
}

// wrapWithMiddleware оборачивает хранилище в middleware
func (b *StoreBuilder) wrapWithMiddleware(store ReportStore) ReportStore {
	if b.logger != nil {
		store = NewLoggingMiddleware(store, b.logger)
	}
	return store
}

// NewStoreFromConfig создает хранилище и регистрирует закрытие пула в жизненном цикле fx
func NewStoreFromConfig(lc fx.Lifecycle, cfg config.Config, logger *logrus.Logger) (ReportStore, error) {
	store, closer, err := NewStoreBuilder(cfg, logger).Build()
	if err != nil {
		return nil, err
	}

	if closer != nil {
		lc.Append(fx.Hook{
			OnStop: func(ctx context.Context) error {
				logger.Info("Закрытие пула соединений с БД")
				return closer.Close()
			},
		})
	}
	return store, nil
}
