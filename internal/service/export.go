package service

import (
	"bytes"
	"context"
	"fmt"

	"reports_srv/internal/models"

	"github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"
)

const (
	ExportSheet     = "Reports"
	ExportMimeType  = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	ExportExtension = "xlsx"

	exportTimeLayout = "2006-01-02 15:04:05"
)

var exportHeaders = []string{"ID", "Название", "Описание", "Создал", "Дата создания", "Изменил", "Дата изменения"}

// ExcelExporter генератор Excel выгрузки отчетов
type ExcelExporter struct {
	logger *logrus.Logger
}

// NewExcelExporter создает новый генератор Excel выгрузки
func NewExcelExporter(logger *logrus.Logger) *ExcelExporter {
	return &ExcelExporter{logger: logger}
}

// Generate строит книгу с одной строкой на отчет
func (g *ExcelExporter) Generate(ctx context.Context, reports []models.Report) ([]byte, error) {
	logger := g.logger.WithField("count", len(reports))
	logger.Debug("Генерация Excel выгрузки")

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", ExportSheet); err != nil {
		return nil, fmt.Errorf("ошибка переименования листа: %w", err)
	}

	// Стиль для заголовков
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{
			Bold: true,
			Size: 12,
		},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#E6E6FA"},
			Pattern: 1,
		},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
		},
	})
	if err != nil {
		logger.WithError(err).Warn("Ошибка создания стиля заголовка")
	}

	for i, header := range exportHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(ExportSheet, cell, header)
		if headerStyle != 0 {
			f.SetCellStyle(ExportSheet, cell, cell, headerStyle)
		}
	}

	for rowIndex, report := range reports {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		row := []any{
			report.ID,
			report.Title,
			report.Description,
			report.CreatedBy,
			report.CreatedAt.UTC().Format(exportTimeLayout),
			report.LastModifiedBy,
			report.LastModifiedAt.UTC().Format(exportTimeLayout),
		}
		cell, _ := excelize.CoordinatesToCellName(1, rowIndex+2)
		if err := f.SetSheetRow(ExportSheet, cell, &row); err != nil {
			return nil, fmt.Errorf("ошибка записи строки %d: %w", rowIndex+2, err)
		}
	}

	f.SetColWidth(ExportSheet, "A", "A", 8)
	f.SetColWidth(ExportSheet, "B", "G", 30)

	var buffer bytes.Buffer
	if err := f.Write(&buffer); err != nil {
		logger.WithError(err).Error("Ошибка записи Excel файла")
		return nil, fmt.Errorf("ошибка генерации Excel файла: %w", err)
	}

	return buffer.Bytes(), nil
}
