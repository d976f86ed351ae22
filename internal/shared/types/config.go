package types

// Config represents the application configuration that can be loaded from a file.
type Config struct {
	UsageFile   string             `json:"usage_file" yaml:"usage_file" toml:"usage_file"`
	AccuseFile  string             `json:"accuse_file" yaml:"accuse_file" toml:"accuse_file"`
	UsersFile   string             `json:"users_file" yaml:"users_file" toml:"users_file"`
	Projects    []string           `json:"projects" yaml:"projects" toml:"projects"`
	Allocations map[string]float64 `json:"allocations" yaml:"allocations" toml:"allocations"`
	ReportName  string             `json:"report_name" yaml:"report_name" toml:"report_name"`
	ReportType  []string           `json:"report_type" yaml:"report_type" toml:"report_type"`
	Dir         string             `json:"dir" yaml:"dir" toml:"dir"`
	TimeRange   int                `json:"time_range" yaml:"time_range" toml:"time_range"`
	Monthly     bool               `json:"monthly" yaml:"monthly" toml:"monthly"`
	Trend       bool               `json:"trend" yaml:"trend" toml:"trend"`
	Validate    bool               `json:"validate" yaml:"validate" toml:"validate"`
}
