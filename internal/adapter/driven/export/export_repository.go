package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/bvanbeek/sbu-dashboard-go/internal/domain/entity"
	"github.com/bvanbeek/sbu-dashboard-go/internal/domain/repository"
	"github.com/jung-kurt/gofpdf"
)

// ExportRepositoryImpl implements the ExportRepository.
type ExportRepositoryImpl struct{}

// NewExportRepository creates a new implementation of the ExportRepository.
func NewExportRepository() repository.ExportRepository {
	return &ExportRepositoryImpl{}
}

// --- Usage report exporters ---

func (r *ExportRepositoryImpl) ExportToCSV(data []entity.ProjectSummary, filename, outputDir, periodDates string) (string, error) {
	outputFilename, err := generateFilename(filename, outputDir, "csv")
	if err != nil {
		return "", err
	}

	file, err := os.Create(outputFilename)
	if err != nil {
		return "", fmt.Errorf("error creating CSV file: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	headers := []string{
		"Project", "Users",
		fmt.Sprintf("SBU Requested (%s)", periodDates),
		fmt.Sprintf("SBU Used (%s)", periodDates),
		"SBU Allocated", "Usage %", "Monthly Usage",
	}
	if err := writer.Write(headers); err != nil {
		return "", fmt.Errorf("error writing CSV header: %w", err)
	}

	for _, row := range data {
		percent := "N/A"
		if row.PercentUsed != nil {
			percent = fmt.Sprintf("%.2f%%", *row.PercentUsed)
		}

		var monthly []string
		for _, mu := range row.MonthlyUsage {
			monthly = append(monthly, fmt.Sprintf("%s: %.2f", mu.Month, mu.SBU))
		}

		record := []string{
			row.Project,
			strings.Join(row.Users, "\n"),
			fmt.Sprintf("%.2f", row.SBURequested),
			fmt.Sprintf("%.2f", row.SBUUsed),
			fmt.Sprintf("%.2f", row.SBUAllocated),
			percent,
			cleanRichTags(strings.Join(monthly, "\n")),
		}
		if err := writer.Write(record); err != nil {
			return "", fmt.Errorf("error writing CSV record: %w", err)
		}
	}

	return filepath.Abs(outputFilename)
}

func (r *ExportRepositoryImpl) ExportToJSON(data []entity.ProjectSummary, filename, outputDir string) (string, error) {
	outputFilename, err := generateFilename(filename, outputDir, "json")
	if err != nil {
		return "", err
	}

	file, err := os.Create(outputFilename)
	if err != nil {
		return "", fmt.Errorf("error creating JSON file: %w", err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(data); err != nil {
		return "", fmt.Errorf("error encoding JSON data: %w", err)
	}

	return filepath.Abs(outputFilename)
}

func (r *ExportRepositoryImpl) ExportToPDF(data []entity.ProjectSummary, filename, outputDir, periodDates string) (string, error) {
	outputFilename, err := generateFilename(filename, outputDir, "pdf")
	if err != nil {
		return "", err
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	headerColor := [3]int{40, 40, 40}
	headerTextColor := [3]int{255, 255, 255}
	sectionTitleColor := [3]int{0, 0, 0}
	bodyTextColor := [3]int{50, 50, 50}
	lineColor := [3]int{200, 200, 200}

	drawSection := func(title string, content string) {
		content = cleanRichTags(content)
		if strings.TrimSpace(content) == "" {
			return
		}
		pdf.SetFont("Arial", "B", 12)
		pdf.SetTextColor(sectionTitleColor[0], sectionTitleColor[1], sectionTitleColor[2])
		pdf.Cell(0, 8, tr(title))
		pdf.Ln(7)

		pdf.SetDrawColor(lineColor[0], lineColor[1], lineColor[2])
		pdf.Line(pdf.GetX(), pdf.GetY(), pdf.GetX()+190, pdf.GetY())
		pdf.Ln(4)

		pdf.SetFont("Arial", "", 10)
		pdf.SetTextColor(bodyTextColor[0], bodyTextColor[1], bodyTextColor[2])
		pdf.MultiCell(190, 5, tr(content), "", "L", false)
		pdf.Ln(8)
	}

	for i, row := range data {
		pdf.AddPage()

		// Header
		pdf.SetFillColor(headerColor[0], headerColor[1], headerColor[2])
		pdf.SetTextColor(headerTextColor[0], headerTextColor[1], headerTextColor[2])
		pdf.SetFont("Arial", "B", 14)
		projectName := row.Project
		if len(projectName) > 80 {
			projectName = projectName[:77] + "..."
		}
		pdf.CellFormat(0, 12, tr(fmt.Sprintf("  Project: %s", projectName)), "", 1, "L", true, 0, "")

		pdf.SetFont("Arial", "", 10)
		pdf.SetFillColor(240, 240, 240)
		pdf.SetTextColor(bodyTextColor[0], bodyTextColor[1], bodyTextColor[2])
		pdf.CellFormat(0, 8, tr(fmt.Sprintf("  Period: %s", periodDates)), "", 1, "L", true, 0, "")
		pdf.Ln(10)

		// SBU summary
		pdf.SetFont("Arial", "B", 12)
		pdf.SetTextColor(sectionTitleColor[0], sectionTitleColor[1], sectionTitleColor[2])
		pdf.Cell(0, 8, "SBU Summary")
		pdf.Ln(7)
		pdf.SetDrawColor(lineColor[0], lineColor[1], lineColor[2])
		pdf.Line(pdf.GetX(), pdf.GetY(), pdf.GetX()+190, pdf.GetY())
		pdf.Ln(4)

		colWidth := 63.0
		pdf.SetFont("Arial", "B", 10)
		pdf.SetTextColor(bodyTextColor[0], bodyTextColor[1], bodyTextColor[2])
		pdf.CellFormat(colWidth, 7, "SBU Requested", "B", 0, "L", false, 0, "")
		pdf.CellFormat(colWidth, 7, "SBU Used", "B", 0, "L", false, 0, "")
		pdf.CellFormat(colWidth, 7, "Usage", "B", 1, "L", false, 0, "")

		pdf.SetFont("Arial", "B", 16)
		pdf.CellFormat(colWidth, 12, tr(fmt.Sprintf("%.2f", row.SBURequested)), "", 0, "L", false, 0, "")
		pdf.CellFormat(colWidth, 12, tr(fmt.Sprintf("%.2f", row.SBUUsed)), "", 0, "L", false, 0, "")

		originalR, originalG, originalB := pdf.GetTextColor()
		percentText := "N/A"
		if row.PercentUsed != nil {
			val := *row.PercentUsed
			percentText = fmt.Sprintf("%.2f%%", val)
			if val > 100.0 {
				pdf.SetTextColor(192, 0, 0)
			} else {
				pdf.SetTextColor(0, 128, 0)
			}
		}
		pdf.CellFormat(colWidth, 12, tr(percentText), "", 1, "L", false, 0, "")
		pdf.SetTextColor(originalR, originalG, originalB)
		pdf.Ln(8)

		drawSection("Users", strings.Join(row.Users, "\n"))

		var monthly strings.Builder
		for _, mu := range row.MonthlyUsage {
			monthly.WriteString(fmt.Sprintf("%s: %.2f SBU\n", mu.Month, mu.SBU))
		}
		drawSection("Monthly Usage", monthly.String())

		if len(row.UnknownUsers) > 0 {
			drawSection("Unknown Users", strings.Join(row.UnknownUsers, "\n"))
		}

		// Footer
		pdf.SetY(-15)
		pdf.SetFont("Arial", "I", 8)
		pdf.SetTextColor(128, 128, 128)
		footerText := fmt.Sprintf("Generated by SBU Dashboard | %s", time.Now().Format("2006-01-02"))
		pdf.CellFormat(0, 10, tr(footerText), "", 0, "L", false, 0, "")
		pdf.CellFormat(0, 10, tr(fmt.Sprintf("Page %d", i+1)), "", 0, "R", false, 0, "")
	}

	if err := pdf.OutputFileAndClose(outputFilename); err != nil {
		return "", fmt.Errorf("error writing PDF file: %w", err)
	}

	return filepath.Abs(outputFilename)
}

// --- Validation report exporters ---

func (r *ExportRepositoryImpl) ExportValidationReportToCSV(report entity.ValidationReport, filename, outputDir string) (string, error) {
	outputFilename, err := generateFilename(filename, outputDir, "csv")
	if err != nil {
		return "", err
	}

	file, err := os.Create(outputFilename)
	if err != nil {
		return "", fmt.Errorf("error creating validation CSV file: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	headers := []string{"Username", "Status", "Projects"}
	if err := writer.Write(headers); err != nil {
		return "", fmt.Errorf("error writing CSV header: %w", err)
	}

	projectsOf := invertByProject(report.ByProject)

	for _, user := range report.KnownUsers {
		record := []string{user, "known", strings.Join(projectsOf[user], "\n")}
		if err := writer.Write(record); err != nil {
			return "", fmt.Errorf("error writing CSV record: %w", err)
		}
	}
	for _, user := range report.UnknownUsers {
		record := []string{user, "unknown", strings.Join(projectsOf[user], "\n")}
		if err := writer.Write(record); err != nil {
			return "", fmt.Errorf("error writing CSV record: %w", err)
		}
	}

	return filepath.Abs(outputFilename)
}

func (r *ExportRepositoryImpl) ExportValidationReportToJSON(report entity.ValidationReport, filename, outputDir string) (string, error) {
	outputFilename, err := generateFilename(filename, outputDir, "json")
	if err != nil {
		return "", err
	}

	file, err := os.Create(outputFilename)
	if err != nil {
		return "", fmt.Errorf("error creating validation JSON file: %w", err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(report); err != nil {
		return "", fmt.Errorf("error encoding validation JSON data: %w", err)
	}

	return filepath.Abs(outputFilename)
}

// --- Helpers ---

// invertByProject turns the project->users map into user->projects, sorted.
func invertByProject(byProject map[string][]string) map[string][]string {
	projectsOf := map[string][]string{}
	for project, users := range byProject {
		for _, user := range users {
			projectsOf[user] = append(projectsOf[user], project)
		}
	}
	for user := range projectsOf {
		sort.Strings(projectsOf[user])
	}
	return projectsOf
}

// generateFilename creates a unique timestamped filename and ensures the
// output directory exists.
func generateFilename(base, dir, ext string) (string, error) {
	if dir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("could not get current working directory: %w", err)
		}
		dir = cwd
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("error creating output directory '%s': %w", dir, err)
	}
	timestamp := time.Now().Format("20060102_150405")
	filename := fmt.Sprintf("%s_%s.%s", base, timestamp, ext)
	return filepath.Join(dir, filename), nil
}

// Regexes that strip pterm rich tags and ANSI color/style sequences that may
// have leaked into strings meant for file output.
var richTagRegex = regexp.MustCompile(`\[/?([a-zA-Z]+|#[0-9a-fA-F]{6})\]`)
var ansiRegex = regexp.MustCompile(`\x1B\[[0-9;]*[A-Za-z]`)

// cleanRichTags removes pterm formatting tags and ANSI sequences.
func cleanRichTags(text string) string {
	text = richTagRegex.ReplaceAllString(text, "")
	text = ansiRegex.ReplaceAllString(text, "")
	return text
}
