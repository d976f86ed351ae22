package usage

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/bvanbeek/sbu-dashboard-go/internal/domain/entity"
	"github.com/bvanbeek/sbu-dashboard-go/internal/domain/repository"
	"github.com/bvanbeek/sbu-dashboard-go/internal/shared/types"
	"gopkg.in/yaml.v3"
)

// UsageRepositoryImpl implements the UsageRepository.
type UsageRepositoryImpl struct{}

// NewUsageRepository creates a new implementation of the UsageRepository.
func NewUsageRepository() repository.UsageRepository {
	return &UsageRepositoryImpl{}
}

// rawRecord mirrors one YAML usage entry before dates and SBU figures are
// checked. Pointers distinguish "absent" from zero.
type rawRecord struct {
	Project      string   `yaml:"project"`
	User         string   `yaml:"user"`
	Date         string   `yaml:"date"`
	SBURequested *float64 `yaml:"sbu_requested"`
	SBUUsed      *float64 `yaml:"sbu_used"`
}

// LoadUsageFile reads a YAML usage file: a list of records with project,
// user, date, sbu_requested and sbu_used keys.
func (r *UsageRepositoryImpl) LoadUsageFile(path string) (entity.UsageTable, error) {
	fileData, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading usage file: %w", err)
	}

	var nodes []yaml.Node
	if err := yaml.Unmarshal(fileData, &nodes); err != nil {
		return nil, &types.ParseError{File: path, Msg: fmt.Sprintf("invalid YAML: %v", err)}
	}

	table := entity.UsageTable{}
	for i := range nodes {
		node := &nodes[i]

		var raw rawRecord
		if err := node.Decode(&raw); err != nil {
			return nil, &types.ParseError{File: path, Line: node.Line, Msg: fmt.Sprintf("invalid record: %v", err)}
		}

		rec, perr := raw.toRecord()
		if perr != "" {
			return nil, &types.ParseError{File: path, Line: node.Line, Msg: perr}
		}
		table = append(table, rec)
	}

	table.SortByDate()
	return table, nil
}

// toRecord validates the raw entry. The returned string is empty on success
// and a ParseError message otherwise.
func (raw rawRecord) toRecord() (entity.UsageRecord, string) {
	switch {
	case raw.Project == "":
		return entity.UsageRecord{}, "missing required field 'project'"
	case raw.User == "":
		return entity.UsageRecord{}, "missing required field 'user'"
	case raw.Date == "":
		return entity.UsageRecord{}, "missing required field 'date'"
	case raw.SBURequested == nil:
		return entity.UsageRecord{}, "missing required field 'sbu_requested'"
	case raw.SBUUsed == nil:
		return entity.UsageRecord{}, "missing required field 'sbu_used'"
	}

	date, err := ParseDate(raw.Date)
	if err != nil {
		return entity.UsageRecord{}, fmt.Sprintf("unparseable date %q", raw.Date)
	}

	return entity.UsageRecord{
		Project:      raw.Project,
		User:         raw.User,
		Date:         date,
		SBURequested: *raw.SBURequested,
		SBUUsed:      *raw.SBUUsed,
	}, ""
}

// dateLayouts are the formats accepted in usage files, most specific first.
// "2006-01" resolves to the first day of the month.
var dateLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02",
	"02-01-2006",
	"2006-01",
}

// ParseDate parses a usage date in one of the supported layouts.
func ParseDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unsupported date format: %q", value)
}

// LoadAccuseReport reads the pipe-delimited table emitted by the accounting
// system's accuse command:
//
//	| Account | User  | Month   | Requested | Used   |
//	| nano01  | alice | 2022-01 | 500.0     | 432.5  |
//
// Header and separator rows are skipped; monthly rows are dated to the first
// day of the month.
func (r *UsageRepositoryImpl) LoadAccuseReport(path string) (entity.UsageTable, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("error opening accuse report: %w", err)
	}
	defer file.Close()

	table := entity.UsageTable{}
	scanner := bufio.NewScanner(file)
	lineNo := 0

	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || !strings.Contains(line, "|") {
			continue
		}
		if isSeparatorRow(line) {
			continue
		}

		fields := splitAccuseRow(line)
		if len(fields) != 5 {
			return nil, &types.ParseError{File: path, Line: lineNo, Msg: fmt.Sprintf("expected 5 columns, got %d", len(fields))}
		}
		if strings.EqualFold(fields[2], "month") {
			continue // header row
		}

		date, err := ParseDate(fields[2])
		if err != nil {
			return nil, &types.ParseError{File: path, Line: lineNo, Msg: fmt.Sprintf("unparseable month %q", fields[2])}
		}
		requested, err := strconv.ParseFloat(fields[3], 64)
		if err != nil {
			return nil, &types.ParseError{File: path, Line: lineNo, Msg: fmt.Sprintf("invalid requested SBU %q", fields[3])}
		}
		used, err := strconv.ParseFloat(fields[4], 64)
		if err != nil {
			return nil, &types.ParseError{File: path, Line: lineNo, Msg: fmt.Sprintf("invalid used SBU %q", fields[4])}
		}

		table = append(table, entity.UsageRecord{
			Project:      fields[0],
			User:         fields[1],
			Date:         date,
			SBURequested: requested,
			SBUUsed:      used,
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading accuse report: %w", err)
	}

	table.SortByDate()
	return table, nil
}

// splitAccuseRow splits a `| a | b | c |` row into its trimmed cells.
func splitAccuseRow(line string) []string {
	line = strings.Trim(line, "|")
	parts := strings.Split(line, "|")
	fields := make([]string, len(parts))
	for i, p := range parts {
		fields[i] = strings.TrimSpace(p)
	}
	return fields
}

// isSeparatorRow reports whether the row is purely table decoration.
func isSeparatorRow(line string) bool {
	for _, r := range line {
		switch r {
		case '|', '+', '-', '=', ' ':
		default:
			return false
		}
	}
	return true
}

// SaveUsageTable writes the table as indented JSON.
func (r *UsageRepositoryImpl) SaveUsageTable(table entity.UsageTable, path string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("error creating usage table file: %w", err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(table); err != nil {
		return fmt.Errorf("error encoding usage table: %w", err)
	}
	return nil
}

// LoadUsageTable reads a table previously written by SaveUsageTable.
// Saving and reloading yields an identical table.
func (r *UsageRepositoryImpl) LoadUsageTable(path string) (entity.UsageTable, error) {
	fileData, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading usage table file: %w", err)
	}

	var table entity.UsageTable
	if err := json.Unmarshal(fileData, &table); err != nil {
		return nil, &types.ParseError{File: path, Msg: fmt.Sprintf("invalid usage table JSON: %v", err)}
	}
	return table, nil
}

// LoadValidationSet reads the allow-list of known usernames. YAML files hold
// a list of strings; anything else is treated as one username per line, with
// blank lines and '#' comments ignored.
func (r *UsageRepositoryImpl) LoadValidationSet(path string) (entity.ValidationSet, error) {
	fileData, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading users file: %w", err)
	}

	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".yaml" || ext == ".yml" {
		var users []string
		if err := yaml.Unmarshal(fileData, &users); err != nil {
			return nil, &types.ParseError{File: path, Msg: fmt.Sprintf("invalid user list: %v", err)}
		}
		return entity.NewValidationSet(users), nil
	}

	users := []string{}
	for _, line := range strings.Split(string(fileData), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		users = append(users, line)
	}
	return entity.NewValidationSet(users), nil
}
