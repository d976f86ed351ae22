package types

// CLIArgs represents the command-line arguments.
type CLIArgs struct {
	ConfigFile string
	UsageFile  string
	AccuseFile string
	UsersFile  string
	Projects   []string
	ReportName string
	ReportType []string
	Dir        string
	TimeRange  *int
	Monthly    bool
	Trend      bool
	Validate   bool
}
