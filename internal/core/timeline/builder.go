package timeline

import (
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/psun/rvuaudit/internal/core/model"
	"github.com/psun/rvuaudit/internal/util"
)

// Builder merges per-year RVU snapshots into a year-aligned Document.
//
// The requested year list is fixed at construction; snapshots are attached
// per year and the whole document is assembled by one Build call. Years
// requested but never supplied become absent columns for every code.
type Builder struct {
	years     []int
	index     map[int]int
	snapshots map[int]model.YearSnapshot
	sources   map[int]string
}

// NewBuilder creates a builder for the given year columns. The list must be
// non-empty and strictly ascending; duplicates are a configuration error.
func NewBuilder(years []int) (*Builder, error) {
	if len(years) == 0 {
		return nil, fmt.Errorf("no years requested")
	}
	for i := 1; i < len(years); i++ {
		if years[i] <= years[i-1] {
			return nil, fmt.Errorf("years must be strictly ascending: %d followed by %d", years[i-1], years[i])
		}
	}

	index := make(map[int]int, len(years))
	for i, y := range years {
		index[y] = i
	}

	return &Builder{
		years:     append([]int(nil), years...),
		index:     index,
		snapshots: make(map[int]model.YearSnapshot),
		sources:   make(map[int]string),
	}, nil
}

// AddSnapshot attaches one year's validated snapshot and its source label.
// The year must be one of the requested columns and may be supplied once.
func (b *Builder) AddSnapshot(year int, snap model.YearSnapshot, source string) error {
	if _, ok := b.index[year]; !ok {
		return fmt.Errorf("year %d is not in the requested year list %v", year, b.years)
	}
	if _, ok := b.snapshots[year]; ok {
		return fmt.Errorf("duplicate snapshot for year %d", year)
	}
	b.snapshots[year] = snap
	b.sources[year] = source
	return nil
}

// MissingYears returns the requested years with no snapshot attached,
// ascending.
func (b *Builder) MissingYears() []int {
	missing := make([]int, 0)
	for _, y := range b.years {
		if _, ok := b.snapshots[y]; !ok {
			missing = append(missing, y)
		}
	}
	return missing
}

// Build assembles the timeline document from the attached snapshots.
func (b *Builder) Build() *Document {
	start := time.Now()

	codes := b.allCodes()
	out := make(map[string]*CodeTimeline, len(codes))
	for _, code := range codes {
		out[code] = b.buildCode(code)
	}

	doc := &Document{
		Meta: Meta{
			Years:        append([]int(nil), b.years...),
			GeneratedAt:  time.Now().UTC().Truncate(time.Second).Format(time.RFC3339),
			Sources:      b.sourceLabels(),
			TotalCodes:   len(out),
			MissingYears: b.MissingYears(),
		},
		Codes: out,
	}

	util.LogDebugf("Timeline build completed: %d codes, %d years, duration %v",
		len(out), len(b.years), time.Since(start))
	return doc
}

// allCodes returns the union of codes across all attached snapshots,
// sorted ascending so output is independent of input iteration order.
func (b *Builder) allCodes() []string {
	seen := make(map[string]struct{})
	for _, snap := range b.snapshots {
		for code := range snap {
			seen[code] = struct{}{}
		}
	}

	codes := make([]string, 0, len(seen))
	for code := range seen {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

func (b *Builder) buildCode(code string) *CodeTimeline {
	n := len(b.years)
	ct := &CodeTimeline{
		DescOverrides: make(map[string]string),
		WorkRVU:       make([]*float64, n),
		PERVUFac:      make([]*float64, n),
		PERVUNonFac:   make([]*float64, n),
		MPRVU:         make([]*float64, n),
		Status:        make([]*string, n),
	}

	// Canonical description comes from the latest year the code is present.
	for i := n - 1; i >= 0; i-- {
		if rec, ok := b.record(b.years[i], code); ok {
			ct.Desc = rec.Desc
			break
		}
	}

	var prev *model.CodeRecord
	for i, year := range b.years {
		rec, ok := b.record(year, code)
		if !ok {
			// Absent years carry no values and do not advance the
			// comparison baseline.
			continue
		}

		ct.WorkRVU[i] = ptr(rec.WorkRVU)
		ct.PERVUFac[i] = ptr(rec.PERVUFac)
		ct.PERVUNonFac[i] = ptr(rec.PERVUNonFac)
		ct.MPRVU[i] = ptr(rec.MPRVU)

		if rec.Desc != ct.Desc {
			ct.DescOverrides[strconv.Itoa(year)] = rec.Desc
		}

		switch {
		case prev == nil:
			ct.Status[i] = ptr(StatusNew)
		case componentsChanged(*prev, rec) || prev.Desc != rec.Desc:
			ct.Status[i] = ptr(StatusModified)
		default:
			ct.Status[i] = ptr(StatusExisting)
		}

		r := rec
		prev = &r
	}

	return ct
}

func (b *Builder) record(year int, code string) (model.CodeRecord, bool) {
	snap, ok := b.snapshots[year]
	if !ok {
		return model.CodeRecord{}, false
	}
	rec, ok := snap[code]
	return rec, ok
}

func (b *Builder) sourceLabels() map[string]string {
	sources := make(map[string]string, len(b.sources))
	for year, source := range b.sources {
		sources[strconv.Itoa(year)] = source
	}
	return sources
}

// componentsChanged compares the four RVU components exactly. Values come
// from a stable upstream source; any difference, including rounding noise,
// counts as a change.
func componentsChanged(prev, cur model.CodeRecord) bool {
	return prev.WorkRVU != cur.WorkRVU ||
		prev.PERVUFac != cur.PERVUFac ||
		prev.PERVUNonFac != cur.PERVUNonFac ||
		prev.MPRVU != cur.MPRVU
}

func ptr[T any](v T) *T {
	return &v
}
