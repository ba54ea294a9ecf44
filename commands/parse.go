package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/psun/rvuaudit/internal/data/convert"
	"github.com/psun/rvuaudit/internal/data/writer"
)

var (
	parseKind   string
	parseIndent int
)

var parseCmd = &cobra.Command{
	Use:   "parse INPUT_CSV OUTPUT_JSON",
	Short: "Convert a CMS CSV export into snapshot JSON",
	Long: `Converts a raw CMS CSV export into the flat JSON consumed by the
timeline and calc commands. Column names are matched flexibly since CMS
renames them between years, and non-UTF-8 exports are decoded as
Windows-1252.

RVU exports produce a code-to-record snapshot; GPCI exports produce a
locality table keyed by STATE-LOCALITY.

Examples:
  rvuaudit parse PPRRVU22_OCT.csv data/rvu_data_2022.json
  rvuaudit parse GPCI2022.csv data/gpci_data_2022.json
  rvuaudit parse --kind gpci localities.csv data/localities.json`,
	Args: cobra.ExactArgs(2),
	RunE: runParse,
}

func init() {
	rootCmd.AddCommand(parseCmd)

	parseCmd.Flags().StringVar(&parseKind, "kind", "auto",
		`Input kind (rvu, gpci, or auto: gpci when the output name contains "gpci")`)
	parseCmd.Flags().IntVar(&parseIndent, "indent", 2,
		"JSON indent (0 for compact output)")
}

func runParse(cmd *cobra.Command, args []string) error {
	initLogging()

	input, output := args[0], args[1]

	kind := parseKind
	if kind == "auto" {
		if strings.Contains(strings.ToLower(output), "gpci") {
			kind = "gpci"
		} else {
			kind = "rvu"
		}
	}

	switch kind {
	case "rvu":
		snap, err := convert.RVU(input)
		if err != nil {
			return err
		}
		if err := writer.WriteJSON(snap, output, parseIndent); err != nil {
			return err
		}
		fmt.Printf("Wrote %s (%d codes)\n", output, len(snap))
	case "gpci":
		table, err := convert.GPCI(input)
		if err != nil {
			return err
		}
		if err := writer.WriteJSON(table, output, parseIndent); err != nil {
			return err
		}
		fmt.Printf("Wrote %s (%d localities)\n", output, len(table))
	default:
		return fmt.Errorf("unknown kind %q (want rvu or gpci)", kind)
	}

	return nil
}
