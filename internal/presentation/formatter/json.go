package formatter

import (
	"fmt"
	"os"

	"github.com/bytedance/sonic"

	"github.com/psun/rvuaudit/internal/calc"
)

type JSONFormatter struct{}

func NewJSONFormatter() *JSONFormatter {
	return &JSONFormatter{}
}

func (f *JSONFormatter) Format(res *calc.Result) error {
	data, err := sonic.ConfigStd.MarshalIndent(res, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(os.Stdout, string(data))
	return err
}
