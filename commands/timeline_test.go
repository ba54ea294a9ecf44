package commands

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/bytedance/sonic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/psun/rvuaudit/internal/core/timeline"
)

func TestParseYearInputs(t *testing.T) {
	t.Run("sorted by year", func(t *testing.T) {
		inputs, err := parseYearInputs([]string{"2023=c.json", "2021=a.json", "2022=b.json"})
		require.NoError(t, err)
		require.Len(t, inputs, 3)
		assert.Equal(t, 2021, inputs[0].year)
		assert.Equal(t, "a.json", inputs[0].path)
		assert.Equal(t, 2023, inputs[2].year)
	})

	tests := []struct {
		name  string
		value string
	}{
		{name: "no separator", value: "2022"},
		{name: "bad year", value: "twentytwo=a.json"},
		{name: "missing path", value: "2022="},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseYearInputs([]string{tt.value})
			assert.Error(t, err)
		})
	}
}

func TestParseYearRange(t *testing.T) {
	years, err := parseYearRange("2019-2022")
	require.NoError(t, err)
	assert.Equal(t, []int{2019, 2020, 2021, 2022}, years)

	years, err = parseYearRange("2022")
	require.NoError(t, err)
	assert.Equal(t, []int{2022}, years)

	_, err = parseYearRange("2025-2019")
	assert.ErrorContains(t, err, "end before start")

	_, err = parseYearRange("abc")
	assert.Error(t, err)
}

func writeTimelineFixtures(t *testing.T, dir string) (string, string) {
	t.Helper()
	p2021 := filepath.Join(dir, "rvu_data_2021.json")
	p2022 := filepath.Join(dir, "rvu_data_2022.json")

	require.NoError(t, os.WriteFile(p2021, []byte(`{
		"99213": {"desc": "Office visit established", "work_rvu": 1.2, "pe_rvu_fac": 0.5, "pe_rvu_nonfac": 1.2, "mp_rvu": 0.1}
	}`), 0644))
	require.NoError(t, os.WriteFile(p2022, []byte(`{
		"99213": {"desc": "Office/outpatient visit est", "work_rvu": 1.3, "pe_rvu_fac": 0.5, "pe_rvu_nonfac": 1.2, "mp_rvu": 0.1},
		"99745": {"desc": "New service", "work_rvu": 0.8, "pe_rvu_fac": 0.3, "pe_rvu_nonfac": 0.9, "mp_rvu": 0.05}
	}`), 0644))

	return p2021, p2022
}

func buildTimelineFile(t *testing.T, inputs []string, years, out string) {
	t.Helper()
	timelineYearInputs = inputs
	timelineYears = years
	timelineOut = out
	timelineIndent = 2
	require.NoError(t, runTimeline(timelineCmd, nil))
}

// normalizeTimeline strips the generation timestamp so two builds of the
// same input can be compared byte for byte.
func normalizeTimeline(t *testing.T, path string) []byte {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var m map[string]interface{}
	require.NoError(t, sonic.Unmarshal(data, &m))
	meta, ok := m["meta"].(map[string]interface{})
	require.True(t, ok)
	delete(meta, "generated_at")

	normalized, err := sonic.ConfigStd.Marshal(m)
	require.NoError(t, err)
	return normalized
}

func TestRunTimelineEndToEnd(t *testing.T) {
	dir := t.TempDir()
	p2021, p2022 := writeTimelineFixtures(t, dir)

	out := filepath.Join(dir, "rvu_timeline.json")
	buildTimelineFile(t, []string{"2022=" + p2022, "2021=" + p2021}, "2021-2023", out)

	data, err := os.ReadFile(out)
	require.NoError(t, err)

	var doc timeline.Document
	require.NoError(t, sonic.Unmarshal(data, &doc))

	assert.Equal(t, []int{2021, 2022, 2023}, doc.Meta.Years)
	assert.Equal(t, []int{2023}, doc.Meta.MissingYears)
	assert.Equal(t, 2, doc.Meta.TotalCodes)
	assert.Equal(t, map[string]string{
		"2021": "rvu_data_2021.json",
		"2022": "rvu_data_2022.json",
	}, doc.Meta.Sources)

	visit := doc.Codes["99213"]
	require.NotNil(t, visit)
	require.Len(t, visit.Status, 3)
	assert.Equal(t, "new", *visit.Status[0])
	assert.Equal(t, "modified", *visit.Status[1])
	assert.Nil(t, visit.Status[2])
	assert.Equal(t, "Office/outpatient visit est", visit.Desc)
	assert.Equal(t, map[string]string{"2021": "Office visit established"}, visit.DescOverrides)

	late := doc.Codes["99745"]
	require.NotNil(t, late)
	assert.Nil(t, late.Status[0])
	assert.Equal(t, "new", *late.Status[1])
	assert.Nil(t, late.WorkRVU[0])
}

func TestRunTimelineIdempotentAndOrderIndependent(t *testing.T) {
	dir := t.TempDir()
	p2021, p2022 := writeTimelineFixtures(t, dir)

	first := filepath.Join(dir, "first.json")
	second := filepath.Join(dir, "second.json")
	reversed := filepath.Join(dir, "reversed.json")

	buildTimelineFile(t, []string{"2021=" + p2021, "2022=" + p2022}, "2021-2022", first)
	buildTimelineFile(t, []string{"2021=" + p2021, "2022=" + p2022}, "2021-2022", second)
	buildTimelineFile(t, []string{"2022=" + p2022, "2021=" + p2021}, "2021-2022", reversed)

	a := normalizeTimeline(t, first)
	assert.Equal(t, a, normalizeTimeline(t, second))
	assert.Equal(t, a, normalizeTimeline(t, reversed))
}

func TestRunTimelineDuplicateYear(t *testing.T) {
	dir := t.TempDir()
	p2021, _ := writeTimelineFixtures(t, dir)

	timelineYearInputs = []string{"2021=" + p2021, "2021=" + p2021}
	timelineYears = "2021-2022"
	timelineOut = filepath.Join(dir, "out.json")
	timelineIndent = 2

	err := runTimeline(timelineCmd, nil)
	require.Error(t, err)
	assert.ErrorContains(t, err, "duplicate snapshot for year 2021")

	_, statErr := os.Stat(timelineOut)
	assert.True(t, os.IsNotExist(statErr), "no partial output on failure")
}

func TestRunTimelineMalformedSnapshotAborts(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "rvu_data_2021.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{"99213": {"desc": "x", "work_rvu": -1, "pe_rvu_fac": 0, "pe_rvu_nonfac": 0, "mp_rvu": 0}}`), 0644))

	timelineYearInputs = []string{"2021=" + bad}
	timelineYears = "2021"
	timelineOut = filepath.Join(dir, "out.json")
	timelineIndent = 2

	err := runTimeline(timelineCmd, nil)
	require.Error(t, err)
	assert.ErrorContains(t, err, "year 2021")
	assert.ErrorContains(t, err, "99213")

	_, statErr := os.Stat(timelineOut)
	assert.True(t, os.IsNotExist(statErr), "no partial output on failure")
}
