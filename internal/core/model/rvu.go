package model

// CodeRecord holds one CPT/HCPCS code's RVU components for a single year.
// All components are non-negative; an unpublished component is stored as zero.
type CodeRecord struct {
	Desc        string  `json:"desc"`
	WorkRVU     float64 `json:"work_rvu"`
	PERVUFac    float64 `json:"pe_rvu_fac"`
	PERVUNonFac float64 `json:"pe_rvu_nonfac"`
	MPRVU       float64 `json:"mp_rvu"`
}

// YearSnapshot is one year's flat code-to-record mapping, the unit of
// input for the timeline build. Code keys are case-sensitive and appear
// at most once per snapshot.
type YearSnapshot map[string]CodeRecord

// RVUFields lists the numeric component names in their published order.
var RVUFields = []string{"work_rvu", "pe_rvu_fac", "pe_rvu_nonfac", "mp_rvu"}
