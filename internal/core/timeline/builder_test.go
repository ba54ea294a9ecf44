package timeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/psun/rvuaudit/internal/core/model"
)

func rec(desc string, work, peFac, peNonFac, mp float64) model.CodeRecord {
	return model.CodeRecord{
		Desc:        desc,
		WorkRVU:     work,
		PERVUFac:    peFac,
		PERVUNonFac: peNonFac,
		MPRVU:       mp,
	}
}

// statusStrings renders a status slice with "-" for absent years.
func statusStrings(ct *CodeTimeline) []string {
	out := make([]string, len(ct.Status))
	for i, s := range ct.Status {
		if s == nil {
			out[i] = "-"
		} else {
			out[i] = *s
		}
	}
	return out
}

func TestNewBuilderValidation(t *testing.T) {
	tests := []struct {
		name        string
		years       []int
		expectError bool
	}{
		{name: "empty year list", years: nil, expectError: true},
		{name: "single year", years: []int{2022}, expectError: false},
		{name: "ascending range", years: []int{2019, 2020, 2021}, expectError: false},
		{name: "ascending with gaps", years: []int{2019, 2021, 2025}, expectError: false},
		{name: "duplicate year", years: []int{2019, 2019, 2020}, expectError: true},
		{name: "descending", years: []int{2021, 2020}, expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			builder, err := NewBuilder(tt.years)
			if tt.expectError {
				assert.Error(t, err)
				assert.Nil(t, builder)
			} else {
				assert.NoError(t, err)
				assert.NotNil(t, builder)
			}
		})
	}
}

func TestAddSnapshotErrors(t *testing.T) {
	builder, err := NewBuilder([]int{2021, 2022})
	require.NoError(t, err)

	snap := model.YearSnapshot{"99213": rec("Office visit", 1.3, 0.55, 1.26, 0.1)}

	require.NoError(t, builder.AddSnapshot(2021, snap, "rvu_2021.json"))

	err = builder.AddSnapshot(2021, snap, "rvu_2021_again.json")
	assert.ErrorContains(t, err, "duplicate snapshot for year 2021")

	err = builder.AddSnapshot(2030, snap, "rvu_2030.json")
	assert.ErrorContains(t, err, "not in the requested year list")
}

func TestStatusNewModifiedExisting(t *testing.T) {
	// Code present all three years: a work change and a description change in
	// 2022, then an identical 2023.
	builder, err := NewBuilder([]int{2021, 2022, 2023})
	require.NoError(t, err)

	require.NoError(t, builder.AddSnapshot(2021, model.YearSnapshot{
		"99213": rec("Office visit established", 1.2, 0.5, 1.2, 0.1),
	}, "rvu_2021.json"))
	require.NoError(t, builder.AddSnapshot(2022, model.YearSnapshot{
		"99213": rec("Office/outpatient visit est", 1.3, 0.5, 1.2, 0.1),
	}, "rvu_2022.json"))
	require.NoError(t, builder.AddSnapshot(2023, model.YearSnapshot{
		"99213": rec("Office/outpatient visit est", 1.3, 0.5, 1.2, 0.1),
	}, "rvu_2023.json"))

	doc := builder.Build()
	ct := doc.Codes["99213"]
	require.NotNil(t, ct)

	assert.Equal(t, []string{"new", "modified", "existing"}, statusStrings(ct))
	assert.Equal(t, "Office/outpatient visit est", ct.Desc)
	assert.Equal(t, map[string]string{"2021": "Office visit established"}, ct.DescOverrides)

	require.NotNil(t, ct.WorkRVU[0])
	assert.Equal(t, 1.2, *ct.WorkRVU[0])
	require.NotNil(t, ct.WorkRVU[1])
	assert.Equal(t, 1.3, *ct.WorkRVU[1])
}

func TestStatusNumericChangeOnly(t *testing.T) {
	// Identical 2021/2022, then a single component change in 2023.
	builder, err := NewBuilder([]int{2021, 2022, 2023})
	require.NoError(t, err)

	base := rec("Repair procedure", 2.5, 1.1, 2.2, 0.4)
	changed := base
	changed.MPRVU = 0.41

	require.NoError(t, builder.AddSnapshot(2021, model.YearSnapshot{"12345": base}, "a.json"))
	require.NoError(t, builder.AddSnapshot(2022, model.YearSnapshot{"12345": base}, "b.json"))
	require.NoError(t, builder.AddSnapshot(2023, model.YearSnapshot{"12345": changed}, "c.json"))

	doc := builder.Build()
	assert.Equal(t, []string{"new", "existing", "modified"}, statusStrings(doc.Codes["12345"]))
	assert.Empty(t, doc.Codes["12345"].DescOverrides)
}

func TestLateIntroduction(t *testing.T) {
	// Code absent in 2021, present in 2022 and 2023 with identical values.
	builder, err := NewBuilder([]int{2021, 2022, 2023})
	require.NoError(t, err)

	r := rec("New service", 0.8, 0.3, 0.9, 0.05)
	require.NoError(t, builder.AddSnapshot(2021, model.YearSnapshot{}, "a.json"))
	require.NoError(t, builder.AddSnapshot(2022, model.YearSnapshot{"99745": r}, "b.json"))
	require.NoError(t, builder.AddSnapshot(2023, model.YearSnapshot{"99745": r}, "c.json"))

	doc := builder.Build()
	ct := doc.Codes["99745"]
	require.NotNil(t, ct)

	assert.Equal(t, []string{"-", "new", "existing"}, statusStrings(ct))
	assert.Nil(t, ct.WorkRVU[0])
	assert.Nil(t, ct.PERVUFac[0])
	assert.Nil(t, ct.PERVUNonFac[0])
	assert.Nil(t, ct.MPRVU[0])
}

func TestMissingYearColumns(t *testing.T) {
	// Three years requested, only 2021 supplied.
	builder, err := NewBuilder([]int{2019, 2020, 2021})
	require.NoError(t, err)

	require.NoError(t, builder.AddSnapshot(2021, model.YearSnapshot{
		"99213": rec("Office visit", 1.3, 0.55, 1.26, 0.1),
	}, "rvu_2021.json"))

	doc := builder.Build()

	assert.Equal(t, []int{2019, 2020}, doc.Meta.MissingYears)
	assert.Equal(t, map[string]string{"2021": "rvu_2021.json"}, doc.Meta.Sources)

	ct := doc.Codes["99213"]
	require.NotNil(t, ct)
	assert.Equal(t, []string{"-", "-", "new"}, statusStrings(ct))
	assert.Nil(t, ct.WorkRVU[0])
	assert.Nil(t, ct.WorkRVU[1])
	require.NotNil(t, ct.WorkRVU[2])
}

func TestGapYearDoesNotResetComparison(t *testing.T) {
	// Present in 2021 and 2023 with identical values, no 2022 input: the
	// 2023 status compares against 2021, and the gap year stays absent.
	builder, err := NewBuilder([]int{2021, 2022, 2023})
	require.NoError(t, err)

	r := rec("Stable code", 1.0, 0.4, 0.9, 0.2)
	require.NoError(t, builder.AddSnapshot(2021, model.YearSnapshot{"11111": r}, "a.json"))
	require.NoError(t, builder.AddSnapshot(2023, model.YearSnapshot{"11111": r}, "c.json"))

	doc := builder.Build()
	assert.Equal(t, []string{"new", "-", "existing"}, statusStrings(doc.Codes["11111"]))
	assert.Equal(t, []int{2022}, doc.Meta.MissingYears)
}

func TestExactComparisonNoTolerance(t *testing.T) {
	// A difference of any magnitude counts as a change.
	builder, err := NewBuilder([]int{2021, 2022})
	require.NoError(t, err)

	require.NoError(t, builder.AddSnapshot(2021, model.YearSnapshot{
		"22222": rec("x", 1.0, 0.4, 0.9, 0.2),
	}, "a.json"))
	require.NoError(t, builder.AddSnapshot(2022, model.YearSnapshot{
		"22222": rec("x", 1.0000001, 0.4, 0.9, 0.2),
	}, "b.json"))

	doc := builder.Build()
	assert.Equal(t, []string{"new", "modified"}, statusStrings(doc.Codes["22222"]))
}

func TestZeroValueIsNotAbsent(t *testing.T) {
	builder, err := NewBuilder([]int{2022})
	require.NoError(t, err)

	require.NoError(t, builder.AddSnapshot(2022, model.YearSnapshot{
		"33333": rec("zero work", 0, 0, 0, 0),
	}, "a.json"))

	doc := builder.Build()
	ct := doc.Codes["33333"]
	require.NotNil(t, ct.WorkRVU[0])
	assert.Equal(t, 0.0, *ct.WorkRVU[0])
}

func TestAlignmentInvariant(t *testing.T) {
	years := []int{2019, 2020, 2021, 2022, 2023}
	builder, err := NewBuilder(years)
	require.NoError(t, err)

	require.NoError(t, builder.AddSnapshot(2020, model.YearSnapshot{
		"A": rec("a", 1, 1, 1, 1),
		"B": rec("b", 2, 2, 2, 2),
	}, "a.json"))
	require.NoError(t, builder.AddSnapshot(2022, model.YearSnapshot{
		"B": rec("b", 2, 2, 2, 2),
		"C": rec("c", 3, 3, 3, 3),
	}, "b.json"))

	doc := builder.Build()
	assert.Equal(t, 3, doc.Meta.TotalCodes)
	assert.Len(t, doc.Codes, 3)

	for code, ct := range doc.Codes {
		assert.Len(t, ct.WorkRVU, len(years), "work_rvu length for %s", code)
		assert.Len(t, ct.PERVUFac, len(years), "pe_rvu_fac length for %s", code)
		assert.Len(t, ct.PERVUNonFac, len(years), "pe_rvu_nonfac length for %s", code)
		assert.Len(t, ct.MPRVU, len(years), "mp_rvu length for %s", code)
		assert.Len(t, ct.Status, len(years), "status length for %s", code)
	}
}

func TestFirstAppearanceInvariant(t *testing.T) {
	builder, err := NewBuilder([]int{2019, 2020, 2021, 2022})
	require.NoError(t, err)

	require.NoError(t, builder.AddSnapshot(2020, model.YearSnapshot{
		"A": rec("a", 1, 1, 1, 1),
	}, "a.json"))
	require.NoError(t, builder.AddSnapshot(2021, model.YearSnapshot{
		"A": rec("a", 1, 1, 1, 1),
		"B": rec("b", 2, 2, 2, 2),
	}, "b.json"))

	doc := builder.Build()
	for code, ct := range doc.Codes {
		firstPresent := -1
		for i, s := range ct.Status {
			if s != nil {
				firstPresent = i
				break
			}
		}
		require.GreaterOrEqual(t, firstPresent, 0, "code %s never present", code)
		assert.Equal(t, StatusNew, *ct.Status[firstPresent], "first status for %s", code)
		for i := 0; i < firstPresent; i++ {
			assert.Nil(t, ct.Status[i], "status before introduction for %s", code)
			assert.Nil(t, ct.WorkRVU[i], "value before introduction for %s", code)
		}
	}
}

func TestCanonicalDescriptionFromLatestPresentYear(t *testing.T) {
	// Canonical comes from 2022 (the latest present year), not the last
	// requested year.
	builder, err := NewBuilder([]int{2021, 2022, 2023})
	require.NoError(t, err)

	require.NoError(t, builder.AddSnapshot(2021, model.YearSnapshot{
		"44444": rec("old wording", 1, 1, 1, 1),
	}, "a.json"))
	require.NoError(t, builder.AddSnapshot(2022, model.YearSnapshot{
		"44444": rec("new wording", 1, 1, 1, 1),
	}, "b.json"))
	require.NoError(t, builder.AddSnapshot(2023, model.YearSnapshot{}, "c.json"))

	doc := builder.Build()
	ct := doc.Codes["44444"]
	assert.Equal(t, "new wording", ct.Desc)
	assert.Equal(t, map[string]string{"2021": "old wording"}, ct.DescOverrides)
}

func TestBuildIsDeterministic(t *testing.T) {
	snapA := model.YearSnapshot{
		"99213": rec("visit", 1.2, 0.5, 1.2, 0.1),
		"10021": rec("fna", 1.0, 0.4, 1.1, 0.1),
	}
	snapB := model.YearSnapshot{
		"99213": rec("visit", 1.3, 0.5, 1.2, 0.1),
	}

	build := func(reversed bool) *Document {
		builder, err := NewBuilder([]int{2021, 2022})
		require.NoError(t, err)
		if reversed {
			require.NoError(t, builder.AddSnapshot(2022, snapB, "b.json"))
			require.NoError(t, builder.AddSnapshot(2021, snapA, "a.json"))
		} else {
			require.NoError(t, builder.AddSnapshot(2021, snapA, "a.json"))
			require.NoError(t, builder.AddSnapshot(2022, snapB, "b.json"))
		}
		return builder.Build()
	}

	first := build(false)
	second := build(true)

	assert.Equal(t, first.Codes, second.Codes)
	assert.Equal(t, first.Meta.Sources, second.Meta.Sources)
	assert.Equal(t, first.Meta.Years, second.Meta.Years)
}

func TestEmptyBuild(t *testing.T) {
	builder, err := NewBuilder([]int{2021, 2022})
	require.NoError(t, err)

	doc := builder.Build()
	assert.Equal(t, 0, doc.Meta.TotalCodes)
	assert.Empty(t, doc.Codes)
	assert.Equal(t, []int{2021, 2022}, doc.Meta.MissingYears)
	assert.NotEmpty(t, doc.Meta.GeneratedAt)
}
