package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/bvanbeek/sbu-dashboard-go/pkg/version"
	"gopkg.in/yaml.v3"

	"github.com/bvanbeek/sbu-dashboard-go/internal/adapter/driven/inputdeck"
	"github.com/bvanbeek/sbu-dashboard-go/internal/application/usecase"
	"github.com/bvanbeek/sbu-dashboard-go/internal/shared/types"
	"github.com/spf13/cobra"
)

// CLIApp represents the command-line interface application.
type CLIApp struct {
	rootCmd       *cobra.Command
	reportUseCase *usecase.ReportUseCase
	version       string
}

// NewCLIApp creates a new CLI application.
func NewCLIApp(versionStr string) *CLIApp {
	app := &CLIApp{
		version: versionStr,
	}

	formattedVersion := version.FormatVersion()

	rootCmd := &cobra.Command{
		Use:     "sbu-dashboard",
		Short:   "SBU usage dashboard CLI",
		Version: formattedVersion,
		RunE:    app.runCommand,
	}

	rootCmd.SetVersionTemplate(`{{printf "SBU Dashboard version: %s\n" .Version}}`)

	rootCmd.PersistentFlags().StringP("config-file", "C", "", "Path to a TOML, YAML, or JSON configuration file")
	rootCmd.PersistentFlags().StringP("usage-file", "u", "", "Path to a YAML usage file with SBU records")
	rootCmd.PersistentFlags().StringP("accuse-file", "a", "", "Path to an accuse text report with monthly SBU usage")
	rootCmd.PersistentFlags().StringP("users-file", "k", "", "Path to the list of known usernames used for validation")
	rootCmd.PersistentFlags().StringSliceP("projects", "p", nil, "Specific projects to report on (comma-separated)")
	rootCmd.PersistentFlags().StringP("report-name", "n", "", "Specify the base name for the report file (without extension)")
	rootCmd.PersistentFlags().StringSliceP("report-type", "y", []string{"csv"}, "Specify report types: csv, json, pdf")
	rootCmd.PersistentFlags().StringP("dir", "d", "", "Directory to save the report files (default: current directory)")
	rootCmd.PersistentFlags().IntP("time-range", "t", 0, "Time range for usage data in days (default: the whole table)")
	rootCmd.PersistentFlags().BoolP("monthly", "m", false, "Include a per-month SBU breakdown in the report")
	rootCmd.PersistentFlags().Bool("trend", false, "Display a trend report as bars of monthly SBU consumption per project")
	rootCmd.PersistentFlags().Bool("validate", false, "Display a validation report flagging usernames missing from the known-users list")

	rootCmd.AddCommand(newParseDeckCommand())

	app.rootCmd = rootCmd
	return app
}

// Execute runs the CLI application.
func (app *CLIApp) Execute() error {
	return app.rootCmd.Execute()
}

// parseArgs parses command-line arguments into a CLIArgs struct.
func (app *CLIApp) parseArgs() (*types.CLIArgs, error) {
	configFile, _ := app.rootCmd.Flags().GetString("config-file")
	usageFile, _ := app.rootCmd.Flags().GetString("usage-file")
	accuseFile, _ := app.rootCmd.Flags().GetString("accuse-file")
	usersFile, _ := app.rootCmd.Flags().GetString("users-file")
	projects, _ := app.rootCmd.Flags().GetStringSlice("projects")
	reportName, _ := app.rootCmd.Flags().GetString("report-name")
	reportType, _ := app.rootCmd.Flags().GetStringSlice("report-type")
	dir, _ := app.rootCmd.Flags().GetString("dir")
	timeRange, _ := app.rootCmd.Flags().GetInt("time-range")
	monthly, _ := app.rootCmd.Flags().GetBool("monthly")
	trend, _ := app.rootCmd.Flags().GetBool("trend")
	validate, _ := app.rootCmd.Flags().GetBool("validate")

	// A flag the user never set must stay empty, otherwise its default
	// would clobber the config file value during the merge.
	if !app.rootCmd.Flags().Changed("report-type") {
		reportType = nil
	}
	if app.rootCmd.Flags().Changed("dir") {
		absDir, err := filepath.Abs(dir)
		if err != nil {
			return nil, err
		}
		dir = absDir
	} else {
		dir = ""
	}

	timeRangePtr := &timeRange
	if timeRange == 0 {
		timeRangePtr = nil
	}

	args := &types.CLIArgs{
		ConfigFile: configFile,
		UsageFile:  usageFile,
		AccuseFile: accuseFile,
		UsersFile:  usersFile,
		Projects:   projects,
		ReportName: reportName,
		ReportType: reportType,
		Dir:        dir,
		TimeRange:  timeRangePtr,
		Monthly:    monthly,
		Trend:      trend,
		Validate:   validate,
	}

	return args, nil
}

// runCommand is the main entry point for the CLI command.
func (app *CLIApp) runCommand(cmd *cobra.Command, args []string) error {
	displayWelcomeBanner(app.version)

	go version.CheckLatestVersion(app.version)

	cliArgs, err := app.parseArgs()
	if err != nil {
		return err
	}

	return app.reportUseCase.RunReport(cliArgs)
}

// SetReportUseCase sets the report use case for the CLI app.
func (app *CLIApp) SetReportUseCase(useCase *usecase.ReportUseCase) {
	app.reportUseCase = useCase
}

// newParseDeckCommand builds the parse-deck subcommand, which converts a
// block-structured input deck into JSON or YAML.
func newParseDeckCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "parse-deck <file>",
		Short: "Convert a block-structured input deck into JSON or YAML",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, _ := cmd.Flags().GetString("format")
			output, _ := cmd.Flags().GetString("output")

			deck, err := inputdeck.ParseFile(args[0])
			if err != nil {
				return err
			}

			var rendered []byte
			switch format {
			case "json":
				rendered, err = json.MarshalIndent(deck, "", "  ")
				if err != nil {
					return fmt.Errorf("error encoding deck as JSON: %w", err)
				}
				rendered = append(rendered, '\n')
			case "yaml", "yml":
				rendered, err = yaml.Marshal(deck)
				if err != nil {
					return fmt.Errorf("error encoding deck as YAML: %w", err)
				}
			default:
				return fmt.Errorf("unsupported output format: %s", format)
			}

			if output == "" {
				cmd.OutOrStdout().Write(rendered)
				return nil
			}
			if err := os.WriteFile(output, rendered, 0644); err != nil {
				return fmt.Errorf("error writing deck output: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().StringP("format", "f", "json", "Output format: json or yaml")
	cmd.Flags().StringP("output", "o", "", "Write the converted deck to a file instead of stdout")

	return cmd
}
