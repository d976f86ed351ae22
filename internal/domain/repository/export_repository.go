package repository

import (
	"github.com/bvanbeek/sbu-dashboard-go/internal/domain/entity"
)

type ExportRepository interface {
	ExportToCSV(data []entity.ProjectSummary, filename string, outputDir string, periodDates string) (string, error)
	ExportToJSON(data []entity.ProjectSummary, filename string, outputDir string) (string, error)
	ExportToPDF(data []entity.ProjectSummary, filename string, outputDir string, periodDates string) (string, error)

	ExportValidationReportToCSV(report entity.ValidationReport, filename string, outputDir string) (string, error)
	ExportValidationReportToJSON(report entity.ValidationReport, filename string, outputDir string) (string, error)
}
