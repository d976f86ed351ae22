package usecase

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/pterm/pterm"

	"github.com/bvanbeek/sbu-dashboard-go/internal/domain/entity"
	"github.com/bvanbeek/sbu-dashboard-go/internal/domain/repository"
	"github.com/bvanbeek/sbu-dashboard-go/internal/shared/types"
)

// ReportUseCase handles the main reporting functionality.
type ReportUseCase struct {
	usageRepo  repository.UsageRepository
	exportRepo repository.ExportRepository
	configRepo repository.ConfigRepository
	console    types.ConsoleInterface
}

// NewReportUseCase creates a new report use case.
func NewReportUseCase(
	usageRepo repository.UsageRepository,
	exportRepo repository.ExportRepository,
	configRepo repository.ConfigRepository,
	console types.ConsoleInterface,
) *ReportUseCase {
	return &ReportUseCase{
		usageRepo:  usageRepo,
		exportRepo: exportRepo,
		configRepo: configRepo,
		console:    console,
	}
}

// ResolveConfig merges the configuration file (when given) with the CLI
// arguments. Flags the user set win over file values; the output directory
// and report formats fall back to the working directory and CSV only after
// the merge. The result is the single configuration object threaded through
// every pipeline stage; there is no process-wide state to repopulate.
func (uc *ReportUseCase) ResolveConfig(args *types.CLIArgs) (*types.Config, error) {
	cfg := &types.Config{}

	if args.ConfigFile != "" {
		loaded, err := uc.configRepo.LoadConfigFile(args.ConfigFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if args.UsageFile != "" {
		cfg.UsageFile = args.UsageFile
	}
	if args.AccuseFile != "" {
		cfg.AccuseFile = args.AccuseFile
	}
	if args.UsersFile != "" {
		cfg.UsersFile = args.UsersFile
	}
	if len(args.Projects) > 0 {
		cfg.Projects = args.Projects
	}
	if args.ReportName != "" {
		cfg.ReportName = args.ReportName
	}
	if len(args.ReportType) > 0 {
		cfg.ReportType = args.ReportType
	}
	if args.Dir != "" {
		cfg.Dir = args.Dir
	}
	if args.TimeRange != nil {
		cfg.TimeRange = *args.TimeRange
	}
	if args.Monthly {
		cfg.Monthly = true
	}
	if args.Trend {
		cfg.Trend = true
	}
	if args.Validate {
		cfg.Validate = true
	}

	if cfg.UsageFile == "" && cfg.AccuseFile == "" {
		return nil, types.ErrNoUsageSource
	}

	if cfg.Dir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("could not get current working directory: %w", err)
		}
		cfg.Dir = cwd
	}
	if len(cfg.ReportType) == 0 {
		cfg.ReportType = []string{"csv"}
	}

	return cfg, nil
}

// LoadTable loads and merges the configured usage sources into one table,
// filtered to the requested date range.
func (uc *ReportUseCase) LoadTable(cfg *types.Config) (entity.UsageTable, time.Time, time.Time, error) {
	table := entity.UsageTable{}

	if cfg.UsageFile != "" {
		loaded, err := uc.usageRepo.LoadUsageFile(cfg.UsageFile)
		if err != nil {
			return nil, time.Time{}, time.Time{}, err
		}
		table = append(table, loaded...)
	}
	if cfg.AccuseFile != "" {
		loaded, err := uc.usageRepo.LoadAccuseReport(cfg.AccuseFile)
		if err != nil {
			return nil, time.Time{}, time.Time{}, err
		}
		table = append(table, loaded...)
	}

	if len(cfg.Projects) > 0 {
		table = filterProjects(table, cfg.Projects)
	}

	start, end, ok := table.DateRange()
	if !ok {
		return nil, time.Time{}, time.Time{}, types.ErrNoUsageRecords
	}

	if cfg.TimeRange > 0 {
		start = end.AddDate(0, 0, -cfg.TimeRange)
		table = table.FilterRange(start, end)
		if len(table) == 0 {
			return nil, time.Time{}, time.Time{}, types.ErrNoUsageRecords
		}
	}

	table.SortByDate()
	return table, start, end, nil
}

// filterProjects keeps only the records belonging to the named projects.
func filterProjects(table entity.UsageTable, projects []string) entity.UsageTable {
	keep := map[string]bool{}
	for _, p := range projects {
		keep[p] = true
	}
	filtered := entity.UsageTable{}
	for _, rec := range table {
		if keep[rec.Project] {
			filtered = append(filtered, rec)
		}
	}
	return filtered
}

// Aggregate sums requested and used SBU per project. Duplicate
// (project, user, date) rows are summed: accuse reports emit one row per
// batch job, so several rows for the same user-day are expected. Output is
// ordered lexicographically by project name.
func (uc *ReportUseCase) Aggregate(table entity.UsageTable) []entity.ProjectSummary {
	byProject := map[string]*entity.ProjectSummary{}

	for _, rec := range table {
		summary, ok := byProject[rec.Project]
		if !ok {
			summary = &entity.ProjectSummary{
				Project:     rec.Project,
				PeriodStart: rec.Date,
				PeriodEnd:   rec.Date,
			}
			byProject[rec.Project] = summary
		}
		summary.SBURequested += rec.SBURequested
		summary.SBUUsed += rec.SBUUsed
		summary.RecordCount++
		if rec.Date.Before(summary.PeriodStart) {
			summary.PeriodStart = rec.Date
		}
		if rec.Date.After(summary.PeriodEnd) {
			summary.PeriodEnd = rec.Date
		}
	}

	summaries := make([]entity.ProjectSummary, 0, len(byProject))
	for project, summary := range byProject {
		summary.Users = projectUsers(table, project)
		summaries = append(summaries, *summary)
	}
	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].Project < summaries[j].Project
	})
	return summaries
}

// projectUsers returns the sorted distinct usernames of one project.
func projectUsers(table entity.UsageTable, project string) []string {
	seen := map[string]bool{}
	users := []string{}
	for _, rec := range table {
		if rec.Project == project && !seen[rec.User] {
			seen[rec.User] = true
			users = append(users, rec.User)
		}
	}
	sort.Strings(users)
	return users
}

// AggregateMonthly buckets the used SBU of one project per calendar month,
// in chronological order.
func (uc *ReportUseCase) AggregateMonthly(table entity.UsageTable, project string) []entity.MonthlyUsage {
	byMonth := map[string]float64{}
	for _, rec := range table {
		if rec.Project != project {
			continue
		}
		byMonth[rec.Date.Format("2006-01")] += rec.SBUUsed
	}

	months := make([]string, 0, len(byMonth))
	for month := range byMonth {
		months = append(months, month)
	}
	sort.Strings(months)

	monthly := make([]entity.MonthlyUsage, len(months))
	for i, month := range months {
		monthly[i] = entity.MonthlyUsage{Month: month, SBU: byMonth[month]}
	}
	return monthly
}

// ValidateUsernames checks every username in the table against the
// allow-list and reports the unknown ones. The table is not modified.
func (uc *ReportUseCase) ValidateUsernames(table entity.UsageTable, set entity.ValidationSet) entity.ValidationReport {
	report := entity.ValidationReport{
		UnknownUsers: []string{},
		KnownUsers:   []string{},
		ByProject:    map[string][]string{},
	}

	for _, user := range table.Users() {
		if set.Contains(user) {
			report.KnownUsers = append(report.KnownUsers, user)
		} else {
			report.UnknownUsers = append(report.UnknownUsers, user)
		}
	}

	for _, project := range table.Projects() {
		for _, user := range projectUsers(table, project) {
			report.ByProject[project] = append(report.ByProject[project], user)
		}
	}

	return report
}

// PercentOfAllocation computes used/allocated * 100. A zero denominator is
// an error, not a silent zero.
func (uc *ReportUseCase) PercentOfAllocation(used, allocated float64) (float64, error) {
	if allocated == 0 {
		return 0, types.ErrZeroAllocation
	}
	return used / allocated * 100.0, nil
}

// FormatPeriod renders a date range for table headers and export columns.
func (uc *ReportUseCase) FormatPeriod(start, end time.Time) string {
	return fmt.Sprintf("%s to %s", start.Format("2006-01-02"), end.Format("2006-01-02"))
}

// RunReport executes the main reporting flow.
func (uc *ReportUseCase) RunReport(args *types.CLIArgs) error {
	cfg, err := uc.ResolveConfig(args)
	if err != nil {
		return err
	}

	if cfg.Validate {
		return uc.RunValidationReport(cfg)
	}
	if cfg.Trend {
		return uc.RunTrendAnalysis(cfg)
	}

	status := uc.console.Status("Loading usage data...")

	table, start, end, err := uc.LoadTable(cfg)
	if err != nil {
		status.Stop()
		return err
	}

	periodDates := uc.FormatPeriod(start, end)
	displayTable := uc.createDisplayTable(periodDates)

	status.Update("Aggregating SBU usage...")
	summaries := uc.generateReportData(table, cfg)
	status.Stop()

	uc.console.Print(displayTableRows(displayTable, summaries))

	if cfg.ReportName != "" && len(cfg.ReportType) > 0 {
		uc.exportReport(summaries, cfg, periodDates)
	}

	return nil
}

// generateReportData aggregates the table and attaches allocations,
// percentages and monthly breakdowns to each project summary.
func (uc *ReportUseCase) generateReportData(table entity.UsageTable, cfg *types.Config) []entity.ProjectSummary {
	summaries := uc.Aggregate(table)

	progress := uc.console.ProgressWithTotal(len(summaries))
	for i := range summaries {
		summary := &summaries[i]

		summary.SBUAllocated = summary.SBURequested
		summary.AllocationSource = "requested"
		if alloc, ok := cfg.Allocations[summary.Project]; ok {
			summary.SBUAllocated = alloc
			summary.AllocationSource = "config"
		}

		percent, err := uc.PercentOfAllocation(summary.SBUUsed, summary.SBUAllocated)
		if err != nil {
			uc.console.LogWarning("Project %s: %s", summary.Project, err)
		} else {
			summary.PercentUsed = &percent
		}

		if cfg.Monthly {
			summary.MonthlyUsage = uc.AggregateMonthly(table, summary.Project)
		}

		summary.UsageFormatted = uc.formatUsage(*summary)
		progress.Increment()
	}
	progress.Stop()

	return summaries
}

// formatUsage renders the per-project usage lines shown in the console table.
func (uc *ReportUseCase) formatUsage(summary entity.ProjectSummary) []string {
	lines := []string{
		fmt.Sprintf("requested: %.2f", summary.SBURequested),
		fmt.Sprintf("used: %.2f", summary.SBUUsed),
	}
	if summary.PercentUsed != nil {
		val := *summary.PercentUsed
		if val > 100.0 {
			lines = append(lines, fmt.Sprintf("usage: %s", pterm.FgRed.Sprintf("%.2f%%", val)))
		} else {
			lines = append(lines, fmt.Sprintf("usage: %s", pterm.FgGreen.Sprintf("%.2f%%", val)))
		}
	} else {
		lines = append(lines, fmt.Sprintf("usage: %s", pterm.FgYellow.Sprint("N/A")))
	}
	return lines
}

// createDisplayTable creates and configures the console table.
func (uc *ReportUseCase) createDisplayTable(periodDates string) types.TableInterface {
	table := uc.console.CreateTable()

	table.AddColumn("Project")
	table.AddColumn("Users")
	table.AddColumn(fmt.Sprintf("SBU Usage\n(%s)", periodDates))
	table.AddColumn("SBU Allocated")
	table.AddColumn("Records")

	return table
}

// displayTableRows fills the console table and renders it.
func displayTableRows(table types.TableInterface, summaries []entity.ProjectSummary) string {
	for _, summary := range summaries {
		table.AddRow(
			pterm.FgMagenta.Sprint(summary.Project),
			strings.Join(summary.Users, "\n"),
			strings.Join(summary.UsageFormatted, "\n"),
			fmt.Sprintf("%.2f (%s)", summary.SBUAllocated, summary.AllocationSource),
			fmt.Sprintf("%d", summary.RecordCount),
		)
	}
	return table.Render()
}

// exportReport writes the aggregated report in every requested format.
func (uc *ReportUseCase) exportReport(summaries []entity.ProjectSummary, cfg *types.Config, periodDates string) {
	for _, reportType := range cfg.ReportType {
		switch reportType {
		case "csv":
			csvPath, err := uc.exportRepo.ExportToCSV(summaries, cfg.ReportName, cfg.Dir, periodDates)
			if err != nil {
				uc.console.LogError("Failed to export to CSV: %s", err)
			} else {
				uc.console.LogSuccess("Successfully exported to CSV: %s", csvPath)
			}
		case "json":
			jsonPath, err := uc.exportRepo.ExportToJSON(summaries, cfg.ReportName, cfg.Dir)
			if err != nil {
				uc.console.LogError("Failed to export to JSON: %s", err)
			} else {
				uc.console.LogSuccess("Successfully exported to JSON: %s", jsonPath)
			}
		case "pdf":
			pdfPath, err := uc.exportRepo.ExportToPDF(summaries, cfg.ReportName, cfg.Dir, periodDates)
			if err != nil {
				uc.console.LogError("Failed to export to PDF: %s", err)
			} else {
				uc.console.LogSuccess("Successfully exported to PDF: %s", pdfPath)
			}
		default:
			uc.console.LogWarning("Unknown report type: %s", reportType)
		}
	}
}

// RunValidationReport checks every username in the usage data against the
// configured allow-list and renders the findings.
func (uc *ReportUseCase) RunValidationReport(cfg *types.Config) error {
	if cfg.UsersFile == "" {
		return errors.New("username validation requires --users-file or users_file in the config")
	}

	uc.console.LogInfo("Preparing your validation report...")

	table, _, _, err := uc.LoadTable(cfg)
	if err != nil {
		return err
	}

	set, err := uc.usageRepo.LoadValidationSet(cfg.UsersFile)
	if err != nil {
		return err
	}

	report := uc.ValidateUsernames(table, set)

	displayTable := uc.console.CreateTable()
	displayTable.AddColumn("Project")
	displayTable.AddColumn("Users")
	displayTable.AddColumn("Unknown Users")

	for _, project := range table.Projects() {
		unknown := []string{}
		for _, user := range report.ByProject[project] {
			if !set.Contains(user) {
				unknown = append(unknown, pterm.FgRed.Sprint(user))
			}
		}
		if len(unknown) == 0 {
			unknown = []string{"None"}
		}
		displayTable.AddRow(
			pterm.FgMagenta.Sprint(project),
			strings.Join(report.ByProject[project], "\n"),
			strings.Join(unknown, "\n"),
		)
	}

	uc.console.Print(displayTable.Render())

	if report.Clean() {
		uc.console.LogSuccess("All %d usernames are present in the validation set.", len(report.KnownUsers))
	} else {
		uc.console.LogWarning("%d unknown username(s) found: %s",
			len(report.UnknownUsers), strings.Join(report.UnknownUsers, ", "))
	}

	if cfg.ReportName != "" && len(cfg.ReportType) > 0 {
		for _, reportType := range cfg.ReportType {
			switch reportType {
			case "csv":
				csvPath, err := uc.exportRepo.ExportValidationReportToCSV(report, cfg.ReportName, cfg.Dir)
				if err != nil {
					uc.console.LogError("Failed to export validation report to CSV: %s", err)
				} else {
					uc.console.LogSuccess("Successfully exported validation report to CSV: %s", csvPath)
				}
			case "json":
				jsonPath, err := uc.exportRepo.ExportValidationReportToJSON(report, cfg.ReportName, cfg.Dir)
				if err != nil {
					uc.console.LogError("Failed to export validation report to JSON: %s", err)
				} else {
					uc.console.LogSuccess("Successfully exported validation report to JSON: %s", jsonPath)
				}
			default:
				uc.console.LogWarning("Validation reports support csv and json, skipping %s", reportType)
			}
		}
	}

	return nil
}

// RunTrendAnalysis renders month-over-month SBU consumption bars for each
// project in the usage data.
func (uc *ReportUseCase) RunTrendAnalysis(cfg *types.Config) error {
	uc.console.LogInfo("Analysing SBU usage trends...")

	table, _, _, err := uc.LoadTable(cfg)
	if err != nil {
		return err
	}

	for _, project := range table.Projects() {
		monthly := uc.AggregateMonthly(table, project)
		if len(monthly) == 0 {
			uc.console.LogWarning("No trend data available for project %s", project)
			continue
		}

		uiMonthly := make([]types.MonthlyUsage, len(monthly))
		for i, mu := range monthly {
			uiMonthly[i] = types.MonthlyUsage{
				Month: mu.Month,
				SBU:   mu.SBU,
			}
		}

		uc.console.Printf("\n%s\n", pterm.FgYellow.Sprintf("Project: %s", project))
		uc.console.DisplayTrendBars(uiMonthly)
	}

	return nil
}
