package convert

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"

	"github.com/psun/rvuaudit/internal/core/model"
	"github.com/psun/rvuaudit/internal/util"
)

var numericClean = regexp.MustCompile(`[^\d.\-]`)

// readRows reads a CMS CSV export into rows. CMS files come in a mix of
// encodings (UTF-8 with or without BOM, latin-1, cp1252); anything that is
// not valid UTF-8 is decoded as Windows-1252, which maps every byte.
func readRows(path string) ([][]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	data = bytes.TrimPrefix(data, []byte{0xEF, 0xBB, 0xBF})
	if !utf8.Valid(data) {
		decoded, err := charmap.Windows1252.NewDecoder().Bytes(data)
		if err != nil {
			return nil, fmt.Errorf("decode %s: %w", path, err)
		}
		util.LogDebugf("Decoded %s as Windows-1252", path)
		data = decoded
	}

	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse CSV %s: %w", path, err)
	}
	return rows, nil
}

// safeFloat extracts a numeric cell, stripping footnote markers and other
// stray characters CMS leaves in value columns. Blank or unparseable cells
// read as zero; the strictness boundary is the snapshot loader, not here.
func safeFloat(row []string, idx int) float64 {
	val := numericClean.ReplaceAllString(cell(row, idx), "")
	if val == "" {
		return 0
	}
	f, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return 0
	}
	return f
}

// rvuColumns holds the detected column layout of an RVU export.
type rvuColumns struct {
	code, desc, work, peFac, peNonFac, mp int
}

func detectRVUColumns(headers []string) (rvuColumns, error) {
	cols := rvuColumns{
		code:     findColumn(headers, "cpt", "hcpcs", "code", "cpt/hcpcs", "cpthcpcs"),
		desc:     findColumn(headers, "description", "desc", "descriptor"),
		work:     findColumn(headers, "work rvu", "workrvu", "work"),
		peNonFac: findColumn(headers, "pe rvu non-facility", "pe rvu nonfacility", "penonfacility", "non-facility pe", "nonfacility pe"),
		mp:       findColumn(headers, "mp rvu", "mprvu", "malpractice rvu", "malpractice", "mp"),
	}

	// The facility PE header is a substring of the non-facility one, so that
	// column is masked before matching.
	facHeaders := headers
	if cols.peNonFac >= 0 {
		facHeaders = append([]string(nil), headers...)
		facHeaders[cols.peNonFac] = ""
	}
	cols.peFac = findColumn(facHeaders, "pe rvu facility", "perfacility", "pe fac", "facility pe")

	if cols.code < 0 {
		return cols, fmt.Errorf("could not find CPT/HCPCS column in headers %v", headers)
	}
	return cols, nil
}

// headerLikeCodes are cell values that mark a repeated header row rather
// than a real code.
var headerLikeCodes = map[string]struct{}{
	"cpt":   {},
	"code":  {},
	"hcpcs": {},
}

// RVU converts a CMS RVU CSV export into a per-year snapshot. The first row
// is the header; columns are matched flexibly since CMS renames them
// between years.
func RVU(path string) (model.YearSnapshot, error) {
	rows, err := readRows(path)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%s: empty CSV", path)
	}

	cols, err := detectRVUColumns(rows[0])
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	snap := make(model.YearSnapshot)
	for _, row := range rows[1:] {
		code := cell(row, cols.code)
		if code == "" {
			continue
		}
		if _, ok := headerLikeCodes[strings.ToLower(code)]; ok {
			continue
		}

		snap[code] = model.CodeRecord{
			Desc:        cell(row, cols.desc),
			WorkRVU:     safeFloat(row, cols.work),
			PERVUFac:    safeFloat(row, cols.peFac),
			PERVUNonFac: safeFloat(row, cols.peNonFac),
			MPRVU:       safeFloat(row, cols.mp),
		}
	}

	util.LogInfof("Converted %s: %d codes", path, len(snap))
	return snap, nil
}
