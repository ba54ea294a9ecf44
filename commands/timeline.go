package commands

import (
	"fmt"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/psun/rvuaudit/internal/core/timeline"
	"github.com/psun/rvuaudit/internal/data/snapshot"
	"github.com/psun/rvuaudit/internal/data/writer"
	"github.com/psun/rvuaudit/internal/util"
)

var (
	// Input flags
	timelineYearInputs []string
	timelineYears      string

	// Output flags
	timelineOut    string
	timelineIndent int
)

var timelineCmd = &cobra.Command{
	Use:   "timeline",
	Short: "Build a consolidated multi-year RVU timeline",
	Long: `Merges per-year RVU snapshot JSON files into one year-aligned timeline
document and classifies every code's year-over-year evolution as
new, existing, or modified.

Years requested but not supplied become null columns for every code and are
listed in the document's meta.missing_years. Any malformed snapshot aborts
the build; no partial output is written.

Examples:
  rvuaudit timeline --year 2022=data/rvu_data_2022.json --out data/rvu_timeline.json
  rvuaudit timeline --year 2021=a.json --year 2022=b.json --years 2019-2025 \
      --out data/rvu_timeline_2019_2025.json --indent 0`,
	RunE: runTimeline,
}

func init() {
	rootCmd.AddCommand(timelineCmd)

	timelineCmd.Flags().StringArrayVar(&timelineYearInputs, "year", nil,
		"Add an input snapshot as YEAR=PATH (repeatable)")
	timelineCmd.Flags().StringVar(&timelineYears, "years", "",
		"Year range to emit as columns, e.g. 2019-2025 (default: span of supplied years)")
	timelineCmd.Flags().StringVar(&timelineOut, "out", "",
		"Output timeline JSON path")
	timelineCmd.Flags().IntVar(&timelineIndent, "indent", 2,
		"JSON indent (0 for compact output)")

	timelineCmd.MarkFlagRequired("year")
	timelineCmd.MarkFlagRequired("out")
}

type yearInput struct {
	year int
	path string
}

// parseYearInputs parses repeated YEAR=PATH flags and orders them by year,
// so output never depends on command-line argument order.
func parseYearInputs(values []string) ([]yearInput, error) {
	inputs := make([]yearInput, 0, len(values))
	for _, value := range values {
		yearStr, path, ok := strings.Cut(value, "=")
		if !ok {
			return nil, fmt.Errorf("invalid --year value %q: want YEAR=PATH", value)
		}
		year, err := strconv.Atoi(strings.TrimSpace(yearStr))
		if err != nil {
			return nil, fmt.Errorf("invalid year in --year value %q", value)
		}
		if strings.TrimSpace(path) == "" {
			return nil, fmt.Errorf("missing path in --year value %q", value)
		}
		inputs = append(inputs, yearInput{year: year, path: path})
	}

	sort.Slice(inputs, func(i, j int) bool {
		return inputs[i].year < inputs[j].year
	})
	return inputs, nil
}

// parseYearRange parses "2019-2025" or a single "2022" into an ascending
// year list.
func parseYearRange(value string) ([]int, error) {
	startStr, endStr, isRange := strings.Cut(value, "-")
	start, err := strconv.Atoi(strings.TrimSpace(startStr))
	if err != nil {
		return nil, fmt.Errorf("invalid --years value %q", value)
	}
	if !isRange {
		return []int{start}, nil
	}

	end, err := strconv.Atoi(strings.TrimSpace(endStr))
	if err != nil {
		return nil, fmt.Errorf("invalid --years value %q", value)
	}
	if end < start {
		return nil, fmt.Errorf("invalid --years range %q: end before start", value)
	}

	years := make([]int, 0, end-start+1)
	for y := start; y <= end; y++ {
		years = append(years, y)
	}
	return years, nil
}

func runTimeline(cmd *cobra.Command, args []string) error {
	initLogging()

	inputs, err := parseYearInputs(timelineYearInputs)
	if err != nil {
		return err
	}
	if len(inputs) == 0 {
		return fmt.Errorf("no input snapshots supplied")
	}

	var years []int
	if timelineYears != "" {
		years, err = parseYearRange(timelineYears)
		if err != nil {
			return err
		}
	} else {
		years, err = parseYearRange(fmt.Sprintf("%d-%d", inputs[0].year, inputs[len(inputs)-1].year))
		if err != nil {
			return err
		}
	}

	builder, err := timeline.NewBuilder(years)
	if err != nil {
		return err
	}

	for _, in := range inputs {
		snap, err := snapshot.Load(in.year, in.path)
		if err != nil {
			return err
		}
		if err := builder.AddSnapshot(in.year, snap, filepath.Base(in.path)); err != nil {
			return err
		}
	}

	if missing := builder.MissingYears(); len(missing) > 0 {
		util.LogWarnf("Missing inputs for years %v; those columns will be null for all codes", missing)
	}

	doc := builder.Build()
	if err := writer.WriteJSON(doc, timelineOut, timelineIndent); err != nil {
		return err
	}

	fmt.Printf("Wrote timeline: %s (%d codes)\n", timelineOut, doc.Meta.TotalCodes)
	return nil
}
