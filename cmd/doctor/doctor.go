// Package doctor provides the "hlockit doctor" command for checking the
// external toolchain and local setup.
package doctor

import (
	"encoding/json"
	"fmt"
	"os"
	"runtime"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/mapforge/hlockit/internal/config"
	"github.com/mapforge/hlockit/internal/hloc"
)

// Check represents a single health check result.
type Check struct {
	Name    string `json:"name"`
	Status  string `json:"status"` // "ok", "warning", "error"
	Message string `json:"message"`
}

// NewCommand creates the "doctor" command.
func NewCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check the hloc toolchain and configuration",
		Long:  "Run diagnostic checks to verify hlockit can reach a working hloc/pycolmap installation.",
		RunE: func(cmd *cobra.Command, args []string) error {
			checks := runChecks()

			jsonOut, _ := cmd.Flags().GetBool("json")
			if jsonOut {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(checks)
			}

			green := color.New(color.FgGreen).SprintFunc()
			yellow := color.New(color.FgYellow).SprintFunc()
			red := color.New(color.FgRed).SprintFunc()

			fmt.Fprintln(cmd.OutOrStdout(), "hlockit Doctor")
			fmt.Fprintln(cmd.OutOrStdout(), "==============")
			fmt.Fprintln(cmd.OutOrStdout())

			okCount, warnCount, errCount := 0, 0, 0
			for _, c := range checks {
				var icon string
				switch c.Status {
				case "ok":
					icon = green("✓")
					okCount++
				case "warning":
					icon = yellow("!")
					warnCount++
				case "error":
					icon = red("✗")
					errCount++
				}
				fmt.Fprintf(cmd.OutOrStdout(), "  %s %s: %s\n", icon, c.Name, c.Message)
			}

			fmt.Fprintln(cmd.OutOrStdout())
			fmt.Fprintf(cmd.OutOrStdout(), "  %d passed, %d warnings, %d errors\n", okCount, warnCount, errCount)

			if errCount > 0 {
				return fmt.Errorf("%d check(s) failed", errCount)
			}
			return nil
		},
	}
}

func runChecks() []Check {
	var checks []Check

	checks = append(checks, Check{
		Name:    "Go Runtime",
		Status:  "ok",
		Message: fmt.Sprintf("%s %s/%s", runtime.Version(), runtime.GOOS, runtime.GOARCH),
	})

	// Config directory and file
	configDir := config.Dir()
	if info, err := os.Stat(configDir); err == nil && info.IsDir() {
		checks = append(checks, Check{Name: "Config Directory", Status: "ok", Message: configDir})
	} else {
		checks = append(checks, Check{
			Name:    "Config Directory",
			Status:  "warning",
			Message: fmt.Sprintf("%s not found — run 'hlockit config init'", configDir),
		})
	}
	if _, err := os.Stat(config.Path()); err == nil {
		checks = append(checks, Check{Name: "Config File", Status: "ok", Message: config.Path()})
	} else {
		checks = append(checks, Check{
			Name:    "Config File",
			Status:  "warning",
			Message: "Not found — run 'hlockit config init'",
		})
	}

	cfg, err := config.Load()
	if err != nil {
		checks = append(checks, Check{Name: "Config", Status: "error", Message: err.Error()})
		return checks
	}
	for _, issue := range config.Validate(cfg) {
		checks = append(checks, Check{Name: "Config: " + issue.Key, Status: issue.Severity, Message: issue.Message})
	}

	// External toolchain
	for _, probe := range hloc.ProbeToolchain(cfg.Python) {
		status := "ok"
		if !probe.OK {
			status = "error"
			if probe.Name == "COLMAP" {
				status = "warning"
			}
		}
		checks = append(checks, Check{Name: probe.Name, Status: status, Message: probe.Message})
	}

	return checks
}
