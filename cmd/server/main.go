package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"reports_srv/internal/config"
	"reports_srv/internal/server"
	"reports_srv/internal/service"
	"reports_srv/internal/store"

	"github.com/sirupsen/logrus"
	"go.uber.org/fx"
)

const (
	startTimeout = 15 * time.Second
	stopTimeout  = 30 * time.Second
)

func main() {
	app := fx.New(
		fx.StartTimeout(startTimeout),
		fx.StopTimeout(stopTimeout),
		fx.Provide(
			config.Load,
			newLogger,
			store.NewStoreFromConfig,
			service.NewReportService,
			server.NewServer,
		),
		fx.Invoke(serveHTTP),
	)

	os.Exit(run(app))
}

// newLogger настраивает logrus по секции logging
func newLogger(cfg config.Config) *logrus.Logger {
	logger := logrus.New()

	level, err := logrus.ParseLevel(cfg.Logging.Level)
	if err != nil {
		level = logrus.InfoLevel
		logger.WithError(err).Warn("Неверный уровень логирования, используется info")
	}
	logger.SetLevel(level)

	if cfg.Logging.Format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{TimestampFormat: time.RFC3339})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true, TimestampFormat: time.RFC3339})
	}

	logger.WithField("config", cfg.String()).Info("Запуск сервиса отчетов")
	return logger
}

// serveHTTP привязывает echo к жизненному циклу приложения
func serveHTTP(lc fx.Lifecycle, srv *server.Server, cfg config.Config, logger *logrus.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go func() {
				err := srv.Start(cfg.Server.Address)
				if err != nil && !errors.Is(err, http.ErrServerClosed) {
					logger.WithError(err).Error("HTTP сервер остановился с ошибкой")
				}
			}()
			return nil
		},
		OnStop: srv.Shutdown,
	})
}

// run блокируется до SIGINT/SIGTERM и возвращает код выхода
func run(app *fx.App) int {
	startCtx, cancel := context.WithTimeout(context.Background(), app.StartTimeout())
	defer cancel()
	if err := app.Start(startCtx); err != nil {
		logrus.WithError(err).Error("Не удалось запустить приложение")
		return 1
	}

	sig := <-app.Wait()
	logrus.WithField("signal", sig.Signal).Info("Остановка сервиса отчетов")

	stopCtx, cancel := context.WithTimeout(context.Background(), app.StopTimeout())
	defer cancel()
	if err := app.Stop(stopCtx); err != nil {
		logrus.WithError(err).Error("Ошибка при завершении работы")
		return 1
	}
	return sig.ExitCode
}
