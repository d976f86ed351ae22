package cli

import (
	"fmt"

	"github.com/bvanbeek/sbu-dashboard-go/pkg/version"
	"github.com/fatih/color"
)

// displayWelcomeBanner shows the welcome banner with version information.
func displayWelcomeBanner(versionStr string) {
	banner := `
          /$$$$$$  /$$$$$$$  /$$   /$$       /$$$$$$$                      /$$
         /$$__  $$| $$__  $$| $$  | $$      | $$__  $$                    | $$
        | $$  \__/| $$  \ $$| $$  | $$      | $$  \ $$  /$$$$$$   /$$$$$$$| $$$$$$$
        |  $$$$$$ | $$$$$$$ | $$  | $$      | $$  | $$ |____  $$ /$$_____/| $$__  $$
         \____  $$| $$__  $$| $$  | $$      | $$  | $$  /$$$$$$$|  $$$$$$ | $$  \ $$
         /$$  \ $$| $$  \ $$| $$  | $$      | $$  | $$ /$$__  $$ \____  $$| $$  | $$
        |  $$$$$$/| $$$$$$$/|  $$$$$$/      | $$$$$$$/|  $$$$$$$ /$$$$$$$/| $$  | $$
         \______/ |_______/  \______/       |_______/  \_______/|_______/ |__/  |__/
        `
	red := color.New(color.FgRed, color.Bold).SprintFunc()
	blue := color.New(color.FgBlue, color.Bold).SprintFunc()

	fmt.Println(red(banner))

	formattedVersion := version.FormatVersion()
	fmt.Println(blue(fmt.Sprintf("SBU Dashboard CLI (v%s)", formattedVersion)))
}
