package formatter

import (
	"github.com/psun/rvuaudit/internal/calc"
)

// Formatter renders one payment calculation result to stdout.
type Formatter interface {
	Format(res *calc.Result) error
}

// New returns the formatter for the given output format name.
func New(format string) Formatter {
	switch format {
	case "json":
		return NewJSONFormatter()
	default:
		return NewTableFormatter()
	}
}
