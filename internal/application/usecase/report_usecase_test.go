package usecase

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bvanbeek/sbu-dashboard-go/internal/adapter/driven/config"
	"github.com/bvanbeek/sbu-dashboard-go/internal/adapter/driven/export"
	"github.com/bvanbeek/sbu-dashboard-go/internal/adapter/driven/usage"
	"github.com/bvanbeek/sbu-dashboard-go/internal/domain/entity"
	"github.com/bvanbeek/sbu-dashboard-go/internal/shared/types"
)

// stubConsole satisfies types.ConsoleInterface without touching the terminal.
type stubConsole struct{}

func (stubConsole) Print(a ...interface{})                  {}
func (stubConsole) Printf(format string, a ...interface{})  {}
func (stubConsole) Println(a ...interface{})                {}
func (stubConsole) LogInfo(format string, a ...interface{}) {}
func (stubConsole) LogWarning(format string, a ...interface{}) {
}
func (stubConsole) LogError(format string, a ...interface{})   {}
func (stubConsole) LogSuccess(format string, a ...interface{}) {}

func (stubConsole) Status(message string) types.StatusHandle       { return stubHandle{} }
func (stubConsole) Progress(items []string) types.ProgressHandle   { return stubHandle{} }
func (stubConsole) ProgressWithTotal(total int) types.ProgressHandle {
	return stubHandle{}
}
func (stubConsole) CreateTable() types.TableInterface            { return &stubTable{} }
func (stubConsole) DisplayTrendBars(monthly []types.MonthlyUsage) {}

type stubHandle struct{}

func (stubHandle) Update(message string) {}
func (stubHandle) Increment()            {}
func (stubHandle) Stop()                 {}

type stubTable struct{}

func (*stubTable) AddColumn(name string, options ...interface{}) {}
func (*stubTable) AddRow(cells ...interface{})                   {}
func (*stubTable) Render() string                                { return "" }

func newTestUseCase() *ReportUseCase {
	return NewReportUseCase(
		usage.NewUsageRepository(),
		export.NewExportRepository(),
		config.NewConfigRepository(),
		stubConsole{},
	)
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func sampleTable() entity.UsageTable {
	return entity.UsageTable{
		{Project: "nano01", User: "alice", Date: date(2022, 1, 15), SBURequested: 500, SBUUsed: 432.5},
		{Project: "nano01", User: "bob", Date: date(2022, 1, 15), SBURequested: 250, SBUUsed: 100},
		{Project: "nano01", User: "alice", Date: date(2022, 2, 10), SBURequested: 0, SBUUsed: 50},
		{Project: "bio02", User: "carol", Date: date(2022, 2, 1), SBURequested: 1000, SBUUsed: 999.9},
	}
}

func TestAggregate(t *testing.T) {
	uc := newTestUseCase()
	summaries := uc.Aggregate(sampleTable())
	require.Len(t, summaries, 2)

	// Output is ordered by project name.
	bio := summaries[0]
	assert.Equal(t, "bio02", bio.Project)
	assert.Equal(t, []string{"carol"}, bio.Users)
	assert.Equal(t, 1000.0, bio.SBURequested)
	assert.Equal(t, 999.9, bio.SBUUsed)
	assert.Equal(t, 1, bio.RecordCount)

	nano := summaries[1]
	assert.Equal(t, "nano01", nano.Project)
	assert.Equal(t, []string{"alice", "bob"}, nano.Users)
	assert.Equal(t, 750.0, nano.SBURequested)
	assert.InDelta(t, 582.5, nano.SBUUsed, 1e-9)
	assert.Equal(t, 3, nano.RecordCount)
	assert.Equal(t, date(2022, 1, 15), nano.PeriodStart)
	assert.Equal(t, date(2022, 2, 10), nano.PeriodEnd)
}

func TestAggregateSumsDuplicates(t *testing.T) {
	uc := newTestUseCase()
	table := entity.UsageTable{
		{Project: "nano01", User: "alice", Date: date(2022, 1, 15), SBURequested: 100, SBUUsed: 10},
		{Project: "nano01", User: "alice", Date: date(2022, 1, 15), SBURequested: 100, SBUUsed: 15},
	}

	summaries := uc.Aggregate(table)
	require.Len(t, summaries, 1)
	assert.Equal(t, 200.0, summaries[0].SBURequested)
	assert.Equal(t, 25.0, summaries[0].SBUUsed)
}

func TestAggregateMonthly(t *testing.T) {
	uc := newTestUseCase()
	monthly := uc.AggregateMonthly(sampleTable(), "nano01")

	require.Len(t, monthly, 2)
	assert.Equal(t, "2022-01", monthly[0].Month)
	assert.InDelta(t, 532.5, monthly[0].SBU, 1e-9)
	assert.Equal(t, "2022-02", monthly[1].Month)
	assert.Equal(t, 50.0, monthly[1].SBU)
}

func TestValidateUsernames(t *testing.T) {
	uc := newTestUseCase()
	table := sampleTable()

	set := entity.NewValidationSet([]string{"alice", "bob", "carol"})
	report := uc.ValidateUsernames(table, set)
	assert.True(t, report.Clean())
	assert.Empty(t, report.UnknownUsers)
	assert.Equal(t, []string{"alice", "bob", "carol"}, report.KnownUsers)

	set = entity.NewValidationSet([]string{"alice"})
	report = uc.ValidateUsernames(table, set)
	assert.False(t, report.Clean())
	assert.Equal(t, []string{"bob", "carol"}, report.UnknownUsers)
	assert.Equal(t, []string{"alice", "bob"}, report.ByProject["nano01"])

	// The input table is untouched.
	assert.Equal(t, sampleTable(), table)
}

func TestPercentOfAllocation(t *testing.T) {
	uc := newTestUseCase()

	percent, err := uc.PercentOfAllocation(250, 1000)
	require.NoError(t, err)
	assert.Equal(t, 25.0, percent)

	percent, err = uc.PercentOfAllocation(1100, 1000)
	require.NoError(t, err)
	assert.InDelta(t, 110.0, percent, 1e-9)

	_, err = uc.PercentOfAllocation(100, 0)
	assert.ErrorIs(t, err, types.ErrZeroAllocation)
}

func TestResolveConfig(t *testing.T) {
	uc := newTestUseCase()

	_, err := uc.ResolveConfig(&types.CLIArgs{})
	assert.ErrorIs(t, err, types.ErrNoUsageSource)

	cfgPath := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(`
usage_file = "usage.yaml"
report_name = "monthly"
time_range = 30

[allocations]
nano01 = 100000.0
`), 0644))

	timeRange := 7
	cfg, err := uc.ResolveConfig(&types.CLIArgs{
		ConfigFile: cfgPath,
		UsageFile:  "other.yaml", // flag wins over the file
		TimeRange:  &timeRange,
	})
	require.NoError(t, err)
	assert.Equal(t, "other.yaml", cfg.UsageFile)
	assert.Equal(t, "monthly", cfg.ReportName)
	assert.Equal(t, 7, cfg.TimeRange)
	assert.Equal(t, 100000.0, cfg.Allocations["nano01"])
}

func TestResolveConfigOutputDefaults(t *testing.T) {
	uc := newTestUseCase()

	cfgPath := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(`
usage_file = "usage.yaml"
report_type = ["pdf"]
dir = "/data/reports"
`), 0644))

	// File values survive when the matching flags were never set.
	cfg, err := uc.ResolveConfig(&types.CLIArgs{ConfigFile: cfgPath})
	require.NoError(t, err)
	assert.Equal(t, "/data/reports", cfg.Dir)
	assert.Equal(t, []string{"pdf"}, cfg.ReportType)

	// Defaults apply only after the merge.
	cfg, err = uc.ResolveConfig(&types.CLIArgs{UsageFile: "usage.yaml"})
	require.NoError(t, err)
	cwd, err := os.Getwd()
	require.NoError(t, err)
	assert.Equal(t, cwd, cfg.Dir)
	assert.Equal(t, []string{"csv"}, cfg.ReportType)
}

func writeUsageFile(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "usage.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
- project: nano01
  user: alice
  date: 2022-01-15
  sbu_requested: 500
  sbu_used: 432.5
- project: nano01
  user: alice
  date: 2022-03-20
  sbu_requested: 500
  sbu_used: 100
`), 0644))
	return path
}

func TestLoadTableTimeRange(t *testing.T) {
	uc := newTestUseCase()

	cfg := &types.Config{UsageFile: writeUsageFile(t)}
	table, start, end, err := uc.LoadTable(cfg)
	require.NoError(t, err)
	assert.Len(t, table, 2)
	assert.Equal(t, date(2022, 1, 15), start)
	assert.Equal(t, date(2022, 3, 20), end)

	// A 30-day window from the newest record drops the January row.
	cfg = &types.Config{UsageFile: writeUsageFile(t), TimeRange: 30}
	table, start, end, err = uc.LoadTable(cfg)
	require.NoError(t, err)
	require.Len(t, table, 1)
	assert.Equal(t, date(2022, 3, 20), table[0].Date)
	assert.True(t, start.Before(table[0].Date))
	assert.Equal(t, end, table[0].Date)

	// Every record in the filtered table falls inside the range.
	for _, rec := range table {
		assert.False(t, rec.Date.Before(start))
		assert.False(t, rec.Date.After(end))
	}
}

func TestLoadTableProjectFilter(t *testing.T) {
	uc := newTestUseCase()

	path := filepath.Join(t.TempDir(), "usage.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
- project: nano01
  user: alice
  date: 2022-01-15
  sbu_requested: 500
  sbu_used: 432.5
- project: bio02
  user: carol
  date: 2022-02-01
  sbu_requested: 1000
  sbu_used: 999.9
`), 0644))

	cfg := &types.Config{UsageFile: path, Projects: []string{"bio02"}}
	table, _, _, err := uc.LoadTable(cfg)
	require.NoError(t, err)
	require.Len(t, table, 1)
	assert.Equal(t, "bio02", table[0].Project)

	cfg = &types.Config{UsageFile: path, Projects: []string{"unknown99"}}
	_, _, _, err = uc.LoadTable(cfg)
	assert.ErrorIs(t, err, types.ErrNoUsageRecords)
}

func TestRunReport(t *testing.T) {
	uc := newTestUseCase()

	dir := t.TempDir()
	args := &types.CLIArgs{
		UsageFile:  writeUsageFile(t),
		ReportName: "report",
		ReportType: []string{"csv", "json"},
		Dir:        dir,
		Monthly:    true,
	}
	require.NoError(t, uc.RunReport(args))

	files, err := filepath.Glob(filepath.Join(dir, "report_*"))
	require.NoError(t, err)
	assert.Len(t, files, 2)
}

func TestRunValidationReportRequiresUsersFile(t *testing.T) {
	uc := newTestUseCase()

	args := &types.CLIArgs{UsageFile: writeUsageFile(t), Validate: true}
	err := uc.RunReport(args)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "users-file")
}
