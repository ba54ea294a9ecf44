package snapshot

import (
	"fmt"
	"math"
	"os"
	"strings"

	"github.com/bytedance/sonic"

	"github.com/psun/rvuaudit/internal/core/model"
	"github.com/psun/rvuaudit/internal/util"
)

// requiredFields are the numeric components every snapshot record must carry.
var requiredFields = model.RVUFields

// Load reads and validates one year's RVU snapshot JSON.
//
// Validation is strict: any malformed record fails the whole load with an
// error naming the year and code. Shipping a partially loaded year would
// silently corrupt the audit history downstream.
func Load(year int, path string) (model.YearSnapshot, error) {
	util.LogDebugf("Start loading snapshot for year %d: %s", year, path)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("year %d: read %s: %w", year, path, err)
	}

	var raw map[string]map[string]interface{}
	if err := sonic.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("year %d: parse %s: %w", year, path, err)
	}

	snap := make(model.YearSnapshot, len(raw))
	for code, row := range raw {
		if strings.TrimSpace(code) == "" {
			return nil, fmt.Errorf("year %d: blank code key", year)
		}
		if row == nil {
			return nil, fmt.Errorf("year %d: code %s: record is not an object", year, code)
		}

		rec, err := validateRecord(row)
		if err != nil {
			return nil, fmt.Errorf("year %d: code %s: %w", year, code, err)
		}
		snap[code] = rec
	}

	util.LogDebugf("Loaded snapshot for year %d: %d codes", year, len(snap))
	return snap, nil
}

func validateRecord(row map[string]interface{}) (model.CodeRecord, error) {
	var rec model.CodeRecord

	descRaw, ok := row["desc"]
	if !ok {
		return rec, fmt.Errorf("missing field desc")
	}
	switch d := descRaw.(type) {
	case string:
		rec.Desc = strings.TrimSpace(d)
	case nil:
		rec.Desc = ""
	default:
		return rec, fmt.Errorf("field desc: expected string, got %T", descRaw)
	}

	values := make([]float64, len(requiredFields))
	for i, field := range requiredFields {
		v, err := numericField(row, field)
		if err != nil {
			return rec, err
		}
		values[i] = v
	}

	rec.WorkRVU = values[0]
	rec.PERVUFac = values[1]
	rec.PERVUNonFac = values[2]
	rec.MPRVU = values[3]
	return rec, nil
}

// numericField extracts one required RVU component. JSON null reads as zero
// (upstream converters emit null for unpublished components); anything
// non-numeric or negative is a validation error.
func numericField(row map[string]interface{}, field string) (float64, error) {
	raw, ok := row[field]
	if !ok {
		return 0, fmt.Errorf("missing field %s", field)
	}

	switch v := raw.(type) {
	case nil:
		return 0, nil
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, fmt.Errorf("field %s: non-finite value %v", field, v)
		}
		if v < 0 {
			return 0, fmt.Errorf("field %s: negative value %v", field, v)
		}
		return v, nil
	default:
		return 0, fmt.Errorf("field %s: non-numeric value %v", field, raw)
	}
}
