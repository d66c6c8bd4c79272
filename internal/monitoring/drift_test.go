package monitoring

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKolmogorovSmirnov_IdenticalSamples(t *testing.T) {
	sample := []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}
	stat := KolmogorovSmirnov(sample, sample)
	assert.InDelta(t, 0, stat, 1e-9)
}

func TestKolmogorovSmirnov_DisjointSamples(t *testing.T) {
	reference := []float64{1, 2, 3, 4, 5}
	current := []float64{100, 101, 102, 103, 104}
	stat := KolmogorovSmirnov(reference, current)
	assert.InDelta(t, 1.0, stat, 1e-9)
}

func TestKolmogorovSmirnov_TiedBinarySamples(t *testing.T) {
	binary := func(zeros, ones int) []float64 {
		vals := make([]float64, 0, zeros+ones)
		for i := 0; i < zeros; i++ {
			vals = append(vals, 0)
		}
		for i := 0; i < ones; i++ {
			vals = append(vals, 1)
		}
		return vals
	}

	// Identically distributed 0/1 columns must not register any distance.
	stat := KolmogorovSmirnov(binary(25, 25), binary(25, 25))
	assert.InDelta(t, 0, stat, 1e-9)

	// The distance of two binary samples is the gap in their zero frequency.
	stat = KolmogorovSmirnov(binary(25, 25), binary(45, 5))
	assert.InDelta(t, 0.4, stat, 1e-9)
}

func TestKolmogorovSmirnov_ShiftedDistribution(t *testing.T) {
	reference := make([]float64, 100)
	shifted := make([]float64, 100)
	for i := range reference {
		reference[i] = float64(i)
		shifted[i] = float64(i) + 50
	}
	stat := KolmogorovSmirnov(reference, shifted)
	assert.Greater(t, stat, ColumnDriftThreshold)
}

func TestKolmogorovSmirnov_EmptySample(t *testing.T) {
	assert.Equal(t, 0.0, KolmogorovSmirnov(nil, []float64{1}))
	assert.Equal(t, 0.0, KolmogorovSmirnov([]float64{1}, nil))
}

func TestCategoryDistance(t *testing.T) {
	same := []string{"a", "a", "b", "b"}
	assert.InDelta(t, 0, CategoryDistance(same, same), 1e-9)

	disjoint := CategoryDistance([]string{"a", "a"}, []string{"b", "b"})
	assert.InDelta(t, 1.0, disjoint, 1e-9)

	partial := CategoryDistance([]string{"a", "a", "b", "b"}, []string{"a", "b", "b", "b"})
	assert.InDelta(t, 0.25, partial, 1e-9)
}

func TestDetect_NoDrift(t *testing.T) {
	values := []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}
	reference := &Dataset{
		Numeric:     map[string][]float64{"tenure": values},
		Categorical: map[string][]string{},
	}
	current := &Dataset{
		Numeric:     map[string][]float64{"tenure": values},
		Categorical: map[string][]string{},
	}

	report, err := Detect(reference, current, len(values))
	require.NoError(t, err)
	assert.False(t, report.DatasetDrift)
	assert.Equal(t, 0, report.DriftedColumns)
	assert.Equal(t, 1, report.TotalColumns)
}

func TestDetect_DatasetDrift(t *testing.T) {
	ref := make([]float64, 50)
	cur := make([]float64, 50)
	for i := range ref {
		ref[i] = float64(i)
		cur[i] = float64(i) + 1000
	}
	reference := &Dataset{
		Numeric: map[string][]float64{"tenure": ref, "charges": ref},
		Categorical: map[string][]string{
			"contract": {"monthly", "monthly", "yearly"},
		},
	}
	current := &Dataset{
		Numeric: map[string][]float64{"tenure": cur, "charges": cur},
		Categorical: map[string][]string{
			"contract": {"monthly", "monthly", "yearly"},
		},
	}

	report, err := Detect(reference, current, 50)
	require.NoError(t, err)
	assert.Equal(t, 2, report.DriftedColumns)
	assert.Equal(t, 3, report.TotalColumns)
	assert.InDelta(t, 2.0/3.0, report.DriftShare, 1e-9)
	assert.True(t, report.DatasetDrift)
}

func TestDetect_SampleBelowMinimum(t *testing.T) {
	_, err := Detect(&Dataset{}, &Dataset{}, MinSampleSize-1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "below the minimum")
}

func TestDatasetFromPredictions(t *testing.T) {
	reference := &Dataset{
		Numeric:     map[string][]float64{"tenure": {1, 2, 3}},
		Categorical: map[string][]string{"contract": {"monthly"}},
	}
	predictions := []Prediction{
		{Features: map[string]any{"tenure": 12.0, "contract": "monthly", "unknown": 1.0}},
		{Features: map[string]any{"tenure": 48.0, "contract": "yearly"}},
	}

	current := DatasetFromPredictions(reference, predictions)
	assert.Equal(t, []float64{12, 48}, current.Numeric["tenure"])
	assert.Equal(t, []string{"monthly", "yearly"}, current.Categorical["contract"])
	assert.NotContains(t, current.Numeric, "unknown")
}

func TestLoadReferenceCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reference.csv")
	csvData := "tenure,monthly_charges,contract\n12,29.85,monthly\n48,99.10,yearly\n3,55.00,monthly\n"
	require.NoError(t, os.WriteFile(path, []byte(csvData), 0o644))

	ds, err := LoadReferenceCSV(path)
	require.NoError(t, err)

	assert.Equal(t, []float64{12, 48, 3}, ds.Numeric["tenure"])
	assert.Equal(t, []float64{29.85, 99.10, 55.00}, ds.Numeric["monthly_charges"])
	assert.Equal(t, []string{"monthly", "yearly", "monthly"}, ds.Categorical["contract"])
	assert.NotContains(t, ds.Numeric, "contract")
}

func TestLoadReferenceCSV_NoRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.csv")
	require.NoError(t, os.WriteFile(path, []byte("a,b\n"), 0o644))

	_, err := LoadReferenceCSV(path)
	require.Error(t, err)
}
