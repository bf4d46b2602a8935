package service

import (
	"context"
	"strings"

	"reports_srv/internal/apperr"
	"reports_srv/internal/models"
	"reports_srv/internal/store"

	"github.com/sirupsen/logrus"
)

// ReportService интерфейс для работы с отчетами
type ReportService interface {
	CreateReport(ctx context.Context, payload map[string]any) (*models.Report, error)
	GetReport(ctx context.Context, id int64) (*models.Report, error)
	ListReports(ctx context.Context, filter models.ReportFilter) ([]models.Report, error)
	ModifyReport(ctx context.Context, id int64, payload map[string]any) (*models.Report, error)
	DeleteReport(ctx context.Context, id int64) (*models.Report, error)
	ExportReports(ctx context.Context, filter models.ReportFilter) ([]byte, error)
}

// ReportServiceImpl реализация сервиса отчетов
type ReportServiceImpl struct {
	store    store.ReportStore
	exporter *ExcelExporter
	logger   *logrus.Logger
}

// NewReportService создает новый сервис отчетов
func NewReportService(store store.ReportStore, logger *logrus.Logger) ReportService {
	return &ReportServiceImpl{
		store:    store,
		exporter: NewExcelExporter(logger),
		logger:   logger,
	}
}

// Validate проверяет наличие обязательных для режима полей в порядке схемы.
// Пустой результат означает валидный payload.
func Validate(payload map[string]any, mode models.ValidationMode) []string {
	violations := []string{}
	for _, field := range models.ReportSchema {
		if !field.RequiredFor(mode) {
			continue
		}

		value, ok := payload[field.Name]
		if isMissing(value, ok) {
			violations = append(violations, "Required parameter missing: "+field.Name)
			continue
		}
		if field.Type == models.FieldString {
			if _, isString := value.(string); !isString {
				violations = append(violations, "Invalid parameter type: "+field.Name)
			}
		}
	}
	return violations
}

// isMissing: ключ отсутствует, null или пустая строка. Ноль и false считаются присутствующими.
func isMissing(value any, ok bool) bool {
	if !ok || value == nil {
		return true
	}
	if s, isString := value.(string); isString {
		return strings.TrimSpace(s) == ""
	}
	return false
}

func stringField(payload map[string]any, name string) string {
	s, _ := payload[name].(string)
	return s
}

// CreateReport создает новый отчет
func (s *ReportServiceImpl) CreateReport(ctx context.Context, payload map[string]any) (*models.Report, error) {
	logger := s.logger.WithField("created_by", payload["createdBy"])

	if violations := Validate(payload, models.ModeCreate); len(violations) > 0 {
		logger.WithField("violations", violations).Warn("Ошибка валидации отчета")
		return nil, apperr.Validation(violations)
	}

	report, err := s.store.Create(ctx, models.CreateParams{
		Title:       stringField(payload, "title"),
		Description: stringField(payload, "description"),
		CreatedBy:   stringField(payload, "createdBy"),
	})
	if err != nil {
		return nil, err
	}

	logger.WithField("report_id", report.ID).Info("Отчет создан")
	return report, nil
}

// GetReport получает отчет по ID
func (s *ReportServiceImpl) GetReport(ctx context.Context, id int64) (*models.Report, error) {
	return s.store.GetByID(ctx, id)
}

// ListReports получает список отчетов по фильтру
func (s *ReportServiceImpl) ListReports(ctx context.Context, filter models.ReportFilter) ([]models.Report, error) {
	return s.store.List(ctx, filter)
}

// ModifyReport обновляет отчет
func (s *ReportServiceImpl) ModifyReport(ctx context.Context, id int64, payload map[string]any) (*models.Report, error) {
	logger := s.logger.WithFields(logrus.Fields{
		"report_id":        id,
		"last_modified_by": payload["lastModifiedBy"],
	})

	if violations := Validate(payload, models.ModeModify); len(violations) > 0 {
		logger.WithField("violations", violations).Warn("Ошибка валидации отчета")
		return nil, apperr.Validation(violations)
	}

	report, err := s.store.Update(ctx, id, models.UpdateParams{
		Title:          stringField(payload, "title"),
		Description:    stringField(payload, "description"),
		LastModifiedBy: stringField(payload, "lastModifiedBy"),
	})
	if err != nil {
		return nil, err
	}

	logger.Info("Отчет обновлен")
	return report, nil
}

// DeleteReport удаляет отчет и возвращает его последнее состояние
func (s *ReportServiceImpl) DeleteReport(ctx context.Context, id int64) (*models.Report, error) {
	report, err := s.store.Delete(ctx, id)
	if err != nil {
		return nil, err
	}

	s.logger.WithField("report_id", id).Info("Отчет удален")
	return report, nil
}

// ExportReports выгружает отфильтрованные отчеты в xlsx
func (s *ReportServiceImpl) ExportReports(ctx context.Context, filter models.ReportFilter) ([]byte, error) {
	reports, err := s.store.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	data, err := s.exporter.Generate(ctx, reports)
	if err != nil {
		return nil, apperr.Internal("ошибка выгрузки отчетов: %v", err)
	}
	return data, nil
}
