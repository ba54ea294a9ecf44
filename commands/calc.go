package commands

import (
	"github.com/spf13/cobra"

	"github.com/psun/rvuaudit/internal/calc"
	"github.com/psun/rvuaudit/internal/data/snapshot"
	"github.com/psun/rvuaudit/internal/presentation/formatter"
)

// defaultConversionFactor is the CY2022 physician fee schedule conversion
// factor, in dollars per RVU.
const defaultConversionFactor = 34.6062

var (
	calcCode     string
	calcYear     int
	calcRVUPath  string
	calcGPCIPath string
	calcLocality string
	calcFacility bool
	calcCF       float64
	calcOutput   string
)

var calcCmd = &cobra.Command{
	Use:   "calc",
	Short: "Compute a geographically adjusted payment for one code",
	Long: `Looks up one code's RVU components and one locality's GPCI values, then
computes the fee-schedule payment:

  payment = (work x gpciWork + pe x gpciPE + mp x gpciMP) x CF

The PE component is the non-facility value unless --facility is set.

Examples:
  rvuaudit calc --code 99213 --year 2022 --rvu data/rvu_data_2022.json \
      --gpci data/gpci_data_2022.json --locality UT-9
  rvuaudit calc --code 99213 --year 2022 --rvu data/rvu_data_2022.json \
      --gpci data/gpci_data_2022.json --locality NY-1 --facility --output json`,
	RunE: runCalc,
}

func init() {
	rootCmd.AddCommand(calcCmd)

	calcCmd.Flags().StringVar(&calcCode, "code", "",
		"CPT/HCPCS code to look up")
	calcCmd.Flags().IntVar(&calcYear, "year", 0,
		"Year of the RVU snapshot (used in error reporting and output)")
	calcCmd.Flags().StringVar(&calcRVUPath, "rvu", "",
		"Per-year RVU snapshot JSON path")
	calcCmd.Flags().StringVar(&calcGPCIPath, "gpci", "",
		"Per-year GPCI table JSON path")
	calcCmd.Flags().StringVar(&calcLocality, "locality", "",
		"Locality key, e.g. UT-9")
	calcCmd.Flags().BoolVar(&calcFacility, "facility", false,
		"Use the facility PE component")
	calcCmd.Flags().Float64Var(&calcCF, "cf", defaultConversionFactor,
		"Conversion factor in dollars per RVU")
	calcCmd.Flags().StringVarP(&calcOutput, "output", "o", "table",
		"Output format (table, json)")

	calcCmd.MarkFlagRequired("code")
	calcCmd.MarkFlagRequired("year")
	calcCmd.MarkFlagRequired("rvu")
	calcCmd.MarkFlagRequired("gpci")
	calcCmd.MarkFlagRequired("locality")
}

func runCalc(cmd *cobra.Command, args []string) error {
	initLogging()

	rvus, err := snapshot.Load(calcYear, calcRVUPath)
	if err != nil {
		return err
	}

	gpci, err := snapshot.LoadGPCI(calcGPCIPath)
	if err != nil {
		return err
	}

	result, err := calc.Payment(calcYear, rvus, gpci, calc.Input{
		Code:             calcCode,
		LocalityKey:      calcLocality,
		Facility:         calcFacility,
		ConversionFactor: calcCF,
	})
	if err != nil {
		return err
	}

	return formatter.New(calcOutput).Format(result)
}
