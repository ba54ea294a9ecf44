package snapshot

import (
	"fmt"
	"os"

	"github.com/bytedance/sonic"

	"github.com/psun/rvuaudit/internal/core/model"
	"github.com/psun/rvuaudit/internal/util"
)

// LoadGPCI reads one year's GPCI table JSON keyed by "STATE-LOCALITY".
func LoadGPCI(path string) (model.GPCITable, error) {
	util.LogDebugf("Start loading GPCI table: %s", path)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	var table model.GPCITable
	if err := sonic.Unmarshal(data, &table); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	for key, loc := range table {
		if loc.WorkGPCI < 0 || loc.PEGPCI < 0 || loc.MPGPCI < 0 {
			return nil, fmt.Errorf("locality %s: negative GPCI value", key)
		}
	}

	util.LogDebugf("Loaded GPCI table: %d localities", len(table))
	return table, nil
}
