package store

import (
	"context"
	"errors"
	"time"

	"reports_srv/internal/apperr"
	"reports_srv/internal/models"

	"github.com/sirupsen/logrus"
)

// LoggingMiddleware добавляет логирование к операциям хранилища
type LoggingMiddleware struct {
	store  ReportStore
	logger *logrus.Logger
}

// NewLoggingMiddleware создает новый logging middleware
func NewLoggingMiddleware(store ReportStore, logger *logrus.Logger) ReportStore {
	return &LoggingMiddleware{
		store:  store,
		logger: logger,
	}
}

// List логирует получение списка
func (m *LoggingMiddleware) List(ctx context.Context, filter models.ReportFilter) ([]models.Report, error) {
	start := time.Now()
	reports, err := m.store.List(ctx, filter)
	m.log(logrus.Fields{
		"operation":   "list",
		"filtered":    !filter.IsEmpty(),
		"title":       filter.Title,
		"description": filter.DescriptionContains,
		"count":       len(reports),
	}, start, err)
	return reports, err
}

// GetByID логирует получение отчета
func (m *LoggingMiddleware) GetByID(ctx context.Context, id int64) (*models.Report, error) {
	start := time.Now()
	report, err := m.store.GetByID(ctx, id)
	m.log(logrus.Fields{"operation": "get", "report_id": id}, start, err)
	return report, err
}

// Create логирует создание отчета
func (m *LoggingMiddleware) Create(ctx context.Context, params models.CreateParams) (*models.Report, error) {
	start := time.Now()
	report, err := m.store.Create(ctx, params)
	fields := logrus.Fields{"operation": "create", "created_by": params.CreatedBy}
	if report != nil {
		fields["report_id"] = report.ID
	}
	m.log(fields, start, err)
	return report, err
}

// Update логирует изменение отчета
func (m *LoggingMiddleware) Update(ctx context.Context, id int64, params models.UpdateParams) (*models.Report, error) {
	start := time.Now()
	report, err := m.store.Update(ctx, id, params)
	m.log(logrus.Fields{"operation": "update", "report_id": id, "last_modified_by": params.LastModifiedBy}, start, err)
	return report, err
}

// Delete логирует удаление отчета
func (m *LoggingMiddleware) Delete(ctx context.Context, id int64) (*models.Report, error) {
	start := time.Now()
	report, err := m.store.Delete(ctx, id)
	m.log(logrus.Fields{"operation": "delete", "report_id": id}, start, err)
	return report, err
}

func (m *LoggingMiddleware) log(fields logrus.Fields, start time.Time, err error) {
	logger := m.logger.WithFields(fields).WithField("duration", time.Since(start))

	switch {
	case err == nil:
		logger.Debug("Операция хранилища выполнена")
	case apperr.Is(err, apperr.KindNotFound):
		logger.WithError(err).Info("Отчет не найден")
	default:
		var appErr *apperr.Error
		if errors.As(err, &appErr) && appErr.DBCode != "" {
			logger = logger.WithFields(logrus.Fields{"db_code": appErr.DBCode, "db_message": appErr.DBMessage})
		}
		logger.WithError(err).Error("Ошибка операции хранилища")
	}
}
