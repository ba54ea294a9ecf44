package commands

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/psun/rvuaudit/internal/util"
)

var (
	// Logging related
	debug bool

	rootCmd = &cobra.Command{
		Use:   "rvuaudit",
		Short: "CMS RVU data build and lookup tool",
		Long: `rvuaudit builds and inspects multi-year CMS RVU data.

It converts raw CMS CSV exports into per-year JSON snapshots, merges those
snapshots into one consolidated year-aligned timeline with per-year change
classification, and computes geographically adjusted payments from RVU and
GPCI tables.

Examples:
  rvuaudit parse PPRRVU22_OCT.csv data/rvu_data_2022.json
  rvuaudit parse GPCI2022.csv data/gpci_data_2022.json
  rvuaudit timeline --year 2021=data/rvu_data_2021.json --year 2022=data/rvu_data_2022.json \
      --years 2019-2025 --out data/rvu_timeline_2019_2025.json
  rvuaudit calc --code 99213 --year 2022 --rvu data/rvu_data_2022.json \
      --gpci data/gpci_data_2022.json --locality UT-9`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
)

const defaultLogFile = "~/.rvuaudit/logs/app.log"

func init() {
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false,
		"Enable debug mode")
}

func Execute() error {
	return rootCmd.Execute()
}

// initLogging sets up the global logger; every subcommand calls it first.
func initLogging() {
	logLevel := "info"
	if debug {
		logLevel = "debug"
	}

	logFile := expandPath(defaultLogFile)
	ensureDir(filepath.Dir(logFile))
	util.InitLogger(logLevel, logFile, debug)
}

// Helper functions

func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, _ := os.UserHomeDir()
		path = filepath.Join(home, path[2:])
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	return absPath
}

func ensureDir(dir string) error {
	return os.MkdirAll(dir, 0755)
}
