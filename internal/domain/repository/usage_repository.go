package repository

import (
	"github.com/bvanbeek/sbu-dashboard-go/internal/domain/entity"
)

// UsageRepository is the driven port for loading accounting data from disk.
type UsageRepository interface {
	// LoadUsageFile reads a YAML usage file into a table.
	LoadUsageFile(path string) (entity.UsageTable, error)

	// LoadAccuseReport reads the pipe-delimited text report produced by the
	// accounting system's accuse command.
	LoadAccuseReport(path string) (entity.UsageTable, error)

	// SaveUsageTable and LoadUsageTable round-trip a table through JSON.
	SaveUsageTable(table entity.UsageTable, path string) error
	LoadUsageTable(path string) (entity.UsageTable, error)

	// LoadValidationSet reads the allow-list of known usernames.
	LoadValidationSet(path string) (entity.ValidationSet, error)
}
