package convert

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/psun/rvuaudit/internal/core/model"
	"github.com/psun/rvuaudit/internal/util"
)

// headerScanLimit bounds how far into a GPCI export we look for the header
// row; CMS files open with a variable number of title/preamble lines.
const headerScanLimit = 80

// gpciColumns holds the detected column layout of a GPCI export.
type gpciColumns struct {
	mac, state, localityNum, localityName int
	work, pe, mp                          int
}

// hasGPCIColumns reports whether a normalized row carries all three index
// columns.
func hasGPCIColumns(cells []string) bool {
	var hasWork, hasPE, hasMP bool
	for _, c := range cells {
		if !strings.Contains(c, "gpci") {
			continue
		}
		if strings.Contains(c, "pw") || strings.Contains(c, "work") {
			hasWork = true
		}
		if strings.Contains(c, "pe") {
			hasPE = true
		}
		if strings.Contains(c, "mp") || strings.Contains(c, "pl") || strings.Contains(c, "malpractice") {
			hasMP = true
		}
	}
	return hasWork && hasPE && hasMP
}

// scanGPCIHeader finds the effective header row of a GPCI export. Older
// exports split the header across two lines; those are merged cell-wise.
// Returns the headers and the index of the first data row.
func scanGPCIHeader(rows [][]string) ([]string, int, bool) {
	limit := len(rows)
	if limit > headerScanLimit {
		limit = headerScanLimit
	}

	for i := 0; i < limit; i++ {
		row := rows[i]
		if len(row) < 3 {
			continue
		}

		cells := make([]string, len(row))
		for j, c := range row {
			cells[j] = normalizeHeader(c)
		}

		var hasNumber, hasName bool
		for _, c := range cells {
			if strings.HasPrefix(c, "localitynumber") || c == "localityno" {
				hasNumber = true
			}
			if strings.HasPrefix(c, "localityname") {
				hasName = true
			}
		}
		if !hasNumber || !hasName {
			continue
		}

		if hasGPCIColumns(cells) {
			return row, i + 1, true
		}

		// Index columns may sit on the following line.
		if i+1 < limit && len(rows[i+1]) >= 3 {
			next := make([]string, len(rows[i+1]))
			for j, c := range rows[i+1] {
				next[j] = normalizeHeader(c)
			}
			if hasGPCIColumns(next) {
				return mergeHeaderRows(row, rows[i+1]), i + 2, true
			}
		}
	}

	return nil, 0, false
}

func mergeHeaderRows(first, second []string) []string {
	width := len(first)
	if len(second) > width {
		width = len(second)
	}

	merged := make([]string, width)
	for j := 0; j < width; j++ {
		a := strings.TrimSpace(cell(first, j))
		b := strings.TrimSpace(cell(second, j))
		if a == "" || isDigits(a) {
			if b != "" {
				merged[j] = b
			} else {
				merged[j] = a
			}
		} else {
			merged[j] = a
		}
	}
	return merged
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

var stateByName = map[string]string{
	"ALABAMA": "AL", "ALASKA": "AK", "ARIZONA": "AZ", "ARKANSAS": "AR",
	"CALIFORNIA": "CA", "COLORADO": "CO", "CONNECTICUT": "CT", "DELAWARE": "DE",
	"DISTRICT OF COLUMBIA": "DC", "FLORIDA": "FL", "GEORGIA": "GA", "HAWAII": "HI",
	"IDAHO": "ID", "ILLINOIS": "IL", "INDIANA": "IN", "IOWA": "IA",
	"KANSAS": "KS", "KENTUCKY": "KY", "LOUISIANA": "LA", "MAINE": "ME",
	"MARYLAND": "MD", "MASSACHUSETTS": "MA", "MICHIGAN": "MI", "MINNESOTA": "MN",
	"MISSISSIPPI": "MS", "MISSOURI": "MO", "MONTANA": "MT", "NEBRASKA": "NE",
	"NEVADA": "NV", "NEW HAMPSHIRE": "NH", "NEW JERSEY": "NJ", "NEW MEXICO": "NM",
	"NEW YORK": "NY", "NORTH CAROLINA": "NC", "NORTH DAKOTA": "ND", "OHIO": "OH",
	"OKLAHOMA": "OK", "OREGON": "OR", "PENNSYLVANIA": "PA", "RHODE ISLAND": "RI",
	"SOUTH CAROLINA": "SC", "SOUTH DAKOTA": "SD", "TENNESSEE": "TN", "TEXAS": "TX",
	"UTAH": "UT", "VERMONT": "VT", "VIRGINIA": "VA", "WASHINGTON": "WA",
	"WEST VIRGINIA": "WV", "WISCONSIN": "WI", "WYOMING": "WY",
}

var nonStateChars = strings.NewReplacer("*", "")

// stateFromLocalityName infers a 2-letter state code from the locality name
// field; older GPCI exports omit the state column.
func stateFromLocalityName(name string) string {
	cleaned := strings.TrimSpace(nonStateChars.Replace(name))
	if cleaned == "" {
		return ""
	}

	if idx := strings.LastIndex(cleaned, ","); idx >= 0 {
		tail := strings.ToUpper(strings.TrimSpace(cleaned[idx+1:]))
		if len(tail) == 2 && isAlpha(tail) {
			return tail
		}
	}

	upper := strings.ToUpper(cleaned)
	var b strings.Builder
	for _, r := range upper {
		if (r >= 'A' && r <= 'Z') || r == ' ' {
			b.WriteRune(r)
		}
	}
	return stateByName[strings.TrimSpace(b.String())]
}

func isAlpha(s string) bool {
	for _, r := range s {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return true
}

// localityKey normalizes a locality number for use in the table key;
// "01" and "1.0" both key as "1".
func localityKey(num string) string {
	if f, err := strconv.ParseFloat(num, 64); err == nil {
		return strconv.Itoa(int(f))
	}
	return num
}

// GPCI converts a CMS GPCI CSV export into a locality table keyed by
// "STATE-LOCALITY".
func GPCI(path string) (model.GPCITable, error) {
	rows, err := readRows(path)
	if err != nil {
		return nil, err
	}

	headers, dataStart, ok := scanGPCIHeader(rows)
	if !ok {
		return nil, fmt.Errorf("%s: could not detect GPCI header row", path)
	}

	cols := gpciColumns{
		mac:          findColumn(headers, "medicare administrative contractor", "mac"),
		state:        findColumn(headers, "state"),
		localityNum:  findColumn(headers, "locality number", "locality no", "locality"),
		localityName: findColumn(headers, "locality name", "name"),
		work:         findColumn(headers, "pw gpci", "work gpci", "pwgpci", "workgpci"),
		pe:           findColumn(headers, "pe gpci", "pegpci", "practice expense gpci", "practiceexpensegpci"),
		mp:           findColumn(headers, "mp gpci", "mpgpci", "pl gpci", "malpractice gpci", "malpracticegpci"),
	}

	var missing []string
	for _, req := range []struct {
		name string
		idx  int
	}{
		{"locality number", cols.localityNum},
		{"locality name", cols.localityName},
		{"pw/work gpci", cols.work},
		{"pe gpci", cols.pe},
		{"mp gpci", cols.mp},
	} {
		if req.idx < 0 {
			missing = append(missing, req.name)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%s: missing required GPCI columns: %s", path, strings.Join(missing, ", "))
	}

	table := make(model.GPCITable)
	skipped := 0
	for _, row := range rows[dataStart:] {
		num := cell(row, cols.localityNum)
		name := cell(row, cols.localityName)
		if num == "" || name == "" {
			continue
		}

		state := ""
		if cols.state >= 0 {
			state = cell(row, cols.state)
			// Repeated header rows inside the data block.
			if normalizeHeader(state) == "state" {
				continue
			}
			if state == "" {
				continue
			}
		}
		if state == "" {
			state = stateFromLocalityName(name)
		}

		work := safeFloat(row, cols.work)
		pe := safeFloat(row, cols.pe)
		mp := safeFloat(row, cols.mp)
		if work == 0 && pe == 0 && mp == 0 {
			skipped++
			continue
		}

		key := state + "-" + localityKey(num)
		if state == "" {
			key = name + "-" + localityKey(num)
		}

		loc := model.Locality{
			Name:     name,
			State:    state,
			Locality: num,
			WorkGPCI: work,
			PEGPCI:   pe,
			MPGPCI:   mp,
		}
		if cols.mac >= 0 {
			loc.MAC = cell(row, cols.mac)
		}
		table[key] = loc
	}

	util.LogInfof("Converted %s: %d localities (%d rows skipped)", path, len(table), skipped)
	return table, nil
}
