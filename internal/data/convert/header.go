package convert

import (
	"regexp"
	"strings"
)

var headerClean = regexp.MustCompile(`[^a-z0-9]`)

// normalizeHeader lowercases a column header and strips everything but
// letters and digits, so "PE RVU (Non-Facility)" matches "penonfacility".
func normalizeHeader(header string) string {
	return headerClean.ReplaceAllString(strings.ToLower(header), "")
}

// findColumn locates a column by trying each pattern in order against the
// normalized headers. Headers that contain a pattern are preferred over the
// looser reverse direction: "nonfacilitype" contains "facilitype", so a
// pattern-contains-header match alone would grab the wrong PE column.
// Returns -1 when no pattern matches.
func findColumn(headers []string, patterns ...string) int {
	normalized := make([]string, len(headers))
	for i, h := range headers {
		normalized[i] = normalizeHeader(h)
	}

	for _, pattern := range patterns {
		p := normalizeHeader(pattern)
		for idx, header := range normalized {
			if header != "" && strings.Contains(header, p) {
				return idx
			}
		}
	}
	for _, pattern := range patterns {
		p := normalizeHeader(pattern)
		for idx, header := range normalized {
			if header != "" && strings.Contains(p, header) {
				return idx
			}
		}
	}
	return -1
}

// cell returns the trimmed cell at idx, or "" when the row is short.
func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}
