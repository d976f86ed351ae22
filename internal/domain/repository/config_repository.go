package repository

import (
	"github.com/bvanbeek/sbu-dashboard-go/internal/shared/types"
)

type ConfigRepository interface {
	LoadConfigFile(filePath string) (*types.Config, error)
}
