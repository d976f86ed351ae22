package main

import (
	"fmt"
	"os"

	"github.com/bvanbeek/sbu-dashboard-go/internal/adapter/driven/config"
	"github.com/bvanbeek/sbu-dashboard-go/internal/adapter/driven/export"
	"github.com/bvanbeek/sbu-dashboard-go/internal/adapter/driven/usage"
	"github.com/bvanbeek/sbu-dashboard-go/internal/adapter/driving/cli"
	"github.com/bvanbeek/sbu-dashboard-go/internal/application/usecase"
	"github.com/bvanbeek/sbu-dashboard-go/pkg/console"
	"github.com/bvanbeek/sbu-dashboard-go/pkg/version"
)

func main() {
	app := cli.NewCLIApp(version.Version)

	usageRepo := usage.NewUsageRepository()
	exportRepo := export.NewExportRepository()
	configRepo := config.NewConfigRepository()
	consoleImpl := console.NewConsole()

	reportUseCase := usecase.NewReportUseCase(
		usageRepo,
		exportRepo,
		configRepo,
		consoleImpl,
	)

	app.SetReportUseCase(reportUseCase)

	if err := app.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
