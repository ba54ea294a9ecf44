package formatter

import (
	"fmt"
	"os"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/psun/rvuaudit/internal/calc"
	"github.com/psun/rvuaudit/internal/util"
)

type TableFormatter struct{}

func NewTableFormatter() *TableFormatter {
	return &TableFormatter{}
}

func (f *TableFormatter) Format(res *calc.Result) error {
	setting := "Non-Facility"
	if res.Facility {
		setting = "Facility"
	}

	rows := [][2]string{
		{"Code", res.Code},
		{"Description", res.Desc},
		{"Year", fmt.Sprintf("%d", res.Year)},
		{"Locality", fmt.Sprintf("%s (%s)", res.LocalityName, res.LocalityKey)},
		{"Setting", setting},
		{"Work RVU x GPCI", fmt.Sprintf("%s x %s", util.FormatRVU(res.WorkRVU), util.FormatRVU(res.WorkGPCI))},
		{"PE RVU x GPCI", fmt.Sprintf("%s x %s", util.FormatRVU(res.PERVU), util.FormatRVU(res.PEGPCI))},
		{"MP RVU x GPCI", fmt.Sprintf("%s x %s", util.FormatRVU(res.MPRVU), util.FormatRVU(res.MPGPCI))},
		{"Adjusted RVU", fmt.Sprintf("%.4f", res.AdjustedRVU)},
		{"Conversion Factor", util.FormatCurrency(res.ConversionFactor)},
		{"Payment", util.FormatCurrency(res.Payment)},
	}

	labelWidth, valueWidth := 0, 0
	for _, row := range rows {
		if w := runewidth.StringWidth(row[0]); w > labelWidth {
			labelWidth = w
		}
		if w := runewidth.StringWidth(row[1]); w > valueWidth {
			valueWidth = w
		}
	}

	border := "+" + strings.Repeat("-", labelWidth+2) + "+" + strings.Repeat("-", valueWidth+2) + "+"

	fmt.Fprintln(os.Stdout, border)
	for _, row := range rows {
		fmt.Fprintf(os.Stdout, "| %s | %s |\n",
			padRight(row[0], labelWidth), padRight(row[1], valueWidth))
	}
	_, err := fmt.Fprintln(os.Stdout, border)
	return err
}

func padRight(s string, width int) string {
	return s + strings.Repeat(" ", width-runewidth.StringWidth(s))
}
