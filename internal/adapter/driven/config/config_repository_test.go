package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadConfigFileTOML(t *testing.T) {
	path := writeConfig(t, "config.toml", `
usage_file = "usage.yaml"
projects = ["nano01", "bio02"]
report_type = ["csv", "pdf"]
time_range = 90
monthly = true

[allocations]
nano01 = 100000.0
bio02 = 50000.0
`)

	repo := NewConfigRepository()
	cfg, err := repo.LoadConfigFile(path)
	require.NoError(t, err)

	assert.Equal(t, "usage.yaml", cfg.UsageFile)
	assert.Equal(t, []string{"nano01", "bio02"}, cfg.Projects)
	assert.Equal(t, []string{"csv", "pdf"}, cfg.ReportType)
	assert.Equal(t, 90, cfg.TimeRange)
	assert.True(t, cfg.Monthly)
	assert.Equal(t, 100000.0, cfg.Allocations["nano01"])
	assert.Equal(t, 50000.0, cfg.Allocations["bio02"])
}

func TestLoadConfigFileYAML(t *testing.T) {
	path := writeConfig(t, "config.yaml", `
accuse_file: accuse.txt
users_file: users.txt
report_name: quarterly
allocations:
  nano01: 100000
`)

	repo := NewConfigRepository()
	cfg, err := repo.LoadConfigFile(path)
	require.NoError(t, err)

	assert.Equal(t, "accuse.txt", cfg.AccuseFile)
	assert.Equal(t, "users.txt", cfg.UsersFile)
	assert.Equal(t, "quarterly", cfg.ReportName)
	assert.Equal(t, 100000.0, cfg.Allocations["nano01"])
}

func TestLoadConfigFileJSON(t *testing.T) {
	path := writeConfig(t, "config.json", `{
  "usage_file": "usage.yaml",
  "trend": true,
  "validate": false
}`)

	repo := NewConfigRepository()
	cfg, err := repo.LoadConfigFile(path)
	require.NoError(t, err)

	assert.Equal(t, "usage.yaml", cfg.UsageFile)
	assert.True(t, cfg.Trend)
	assert.False(t, cfg.Validate)
}

func TestLoadConfigFileUnsupportedFormat(t *testing.T) {
	path := writeConfig(t, "config.ini", "usage_file = usage.yaml\n")

	repo := NewConfigRepository()
	_, err := repo.LoadConfigFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported config file format")
}

func TestLoadConfigFileMissing(t *testing.T) {
	repo := NewConfigRepository()
	_, err := repo.LoadConfigFile(filepath.Join(t.TempDir(), "nope.toml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error accessing config file")
}

func TestLoadConfigFileDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.Mkdir(dir, 0755))

	repo := NewConfigRepository()
	_, err := repo.LoadConfigFile(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "is a directory")
}
