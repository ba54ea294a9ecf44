// Package calc computes geographically adjusted Medicare payments from
// immutable RVU and GPCI tables passed in explicitly by the caller.
package calc

import (
	"fmt"

	"github.com/psun/rvuaudit/internal/core/model"
)

// Input identifies one payment lookup.
type Input struct {
	Code             string
	LocalityKey      string
	Facility         bool
	ConversionFactor float64
}

// Result is the component breakdown of one payment calculation.
type Result struct {
	Code             string  `json:"code"`
	Desc             string  `json:"desc"`
	Year             int     `json:"year"`
	LocalityKey      string  `json:"locality_key"`
	LocalityName     string  `json:"locality_name"`
	Facility         bool    `json:"facility"`
	WorkRVU          float64 `json:"work_rvu"`
	PERVU            float64 `json:"pe_rvu"`
	MPRVU            float64 `json:"mp_rvu"`
	WorkGPCI         float64 `json:"work_gpci"`
	PEGPCI           float64 `json:"pe_gpci"`
	MPGPCI           float64 `json:"mp_gpci"`
	AdjustedRVU      float64 `json:"adjusted_rvu"`
	ConversionFactor float64 `json:"conversion_factor"`
	Payment          float64 `json:"payment"`
}

// Payment runs the standard fee-schedule formula for one code and locality:
//
//	payment = (work·gpciWork + pe·gpciPE + mp·gpciMP) × CF
//
// using the facility or non-facility PE component per Input.Facility.
func Payment(year int, rvus model.YearSnapshot, gpci model.GPCITable, in Input) (*Result, error) {
	rec, ok := rvus[in.Code]
	if !ok {
		return nil, fmt.Errorf("code %s not found in year %d RVU data", in.Code, year)
	}

	loc, ok := gpci[in.LocalityKey]
	if !ok {
		return nil, fmt.Errorf("locality %s not found in GPCI data", in.LocalityKey)
	}

	if in.ConversionFactor <= 0 {
		return nil, fmt.Errorf("conversion factor must be positive, got %v", in.ConversionFactor)
	}

	pe := rec.PERVUNonFac
	if in.Facility {
		pe = rec.PERVUFac
	}

	adjusted := rec.WorkRVU*loc.WorkGPCI + pe*loc.PEGPCI + rec.MPRVU*loc.MPGPCI

	return &Result{
		Code:             in.Code,
		Desc:             rec.Desc,
		Year:             year,
		LocalityKey:      in.LocalityKey,
		LocalityName:     loc.Name,
		Facility:         in.Facility,
		WorkRVU:          rec.WorkRVU,
		PERVU:            pe,
		MPRVU:            rec.MPRVU,
		WorkGPCI:         loc.WorkGPCI,
		PEGPCI:           loc.PEGPCI,
		MPGPCI:           loc.MPGPCI,
		AdjustedRVU:      adjusted,
		ConversionFactor: in.ConversionFactor,
		Payment:          adjusted * in.ConversionFactor,
	}, nil
}
