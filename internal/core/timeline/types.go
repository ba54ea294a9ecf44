package timeline

// Status classifications for a code's year-over-year evolution. A year in
// which the code is absent carries no status at all (JSON null), which is
// distinct from every one of these values.
const (
	StatusNew      = "new"
	StatusExisting = "existing"
	StatusModified = "modified"
)

// Meta describes one timeline build: the year columns, when the document
// was generated, which source file supplied each year, and which requested
// years had no input at all.
type Meta struct {
	Years        []int             `json:"years"`
	GeneratedAt  string            `json:"generated_at"`
	Sources      map[string]string `json:"sources"`
	TotalCodes   int               `json:"total_codes"`
	MissingYears []int             `json:"missing_years"`
}

// CodeTimeline is one code's year-aligned history. Every slice has exactly
// one entry per year in Meta.Years; a nil entry means the code (or its
// year's input) did not exist that year. Values are never backfilled.
type CodeTimeline struct {
	Desc          string            `json:"desc"`
	DescOverrides map[string]string `json:"desc_overrides"`
	WorkRVU       []*float64        `json:"work_rvu"`
	PERVUFac      []*float64        `json:"pe_rvu_fac"`
	PERVUNonFac   []*float64        `json:"pe_rvu_nonfac"`
	MPRVU         []*float64        `json:"mp_rvu"`
	Status        []*string         `json:"status"`
}

// Document is the consolidated multi-year timeline, produced in full by one
// build and immutable once written.
type Document struct {
	Meta  Meta                     `json:"meta"`
	Codes map[string]*CodeTimeline `json:"codes"`
}
