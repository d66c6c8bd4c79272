package monitoring

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"sort"
	"strconv"
)

const (
	// ColumnDriftThreshold is the per-column statistic above which a column
	// counts as drifted.
	ColumnDriftThreshold = 0.1
	// DatasetDriftShare is the share of drifted columns above which the whole
	// dataset counts as drifted.
	DatasetDriftShare = 0.5
	// MinSampleSize is the smallest current sample a drift run accepts.
	MinSampleSize = 10
)

// ColumnResult is the drift statistic for one feature column.
type ColumnResult struct {
	Column    string  `json:"column"`
	Statistic float64 `json:"statistic"`
	Drifted   bool    `json:"drifted"`
}

// Report summarizes one drift detection run.
type Report struct {
	DatasetDrift   bool           `json:"dataset_drift"`
	DriftShare     float64        `json:"drift_share"`
	DriftedColumns int            `json:"drifted_columns"`
	TotalColumns   int            `json:"total_columns"`
	SampleSize     int            `json:"sample_size"`
	Columns        []ColumnResult `json:"columns"`
}

// KolmogorovSmirnov computes the two-sample KS statistic, the maximum
// distance between the empirical CDFs of the two samples. The CDF gap is
// evaluated only after both samples have been advanced past every value equal
// to the current minimum, so tied values (binary or low-cardinality columns)
// do not inflate the distance.
func KolmogorovSmirnov(reference, current []float64) float64 {
	if len(reference) == 0 || len(current) == 0 {
		return 0
	}
	ref := append([]float64(nil), reference...)
	cur := append([]float64(nil), current...)
	sort.Float64s(ref)
	sort.Float64s(cur)

	var maxDist float64
	i, j := 0, 0
	for i < len(ref) && j < len(cur) {
		v := ref[i]
		if cur[j] < v {
			v = cur[j]
		}
		for i < len(ref) && ref[i] == v {
			i++
		}
		for j < len(cur) && cur[j] == v {
			j++
		}
		refCDF := float64(i) / float64(len(ref))
		curCDF := float64(j) / float64(len(cur))
		if d := math.Abs(refCDF - curCDF); d > maxDist {
			maxDist = d
		}
	}
	return maxDist
}

// CategoryDistance computes the total variation distance between the category
// frequency distributions of two samples.
func CategoryDistance(reference, current []string) float64 {
	if len(reference) == 0 || len(current) == 0 {
		return 0
	}
	refFreq := make(map[string]float64)
	for _, v := range reference {
		refFreq[v] += 1.0 / float64(len(reference))
	}
	curFreq := make(map[string]float64)
	for _, v := range current {
		curFreq[v] += 1.0 / float64(len(current))
	}

	seen := make(map[string]struct{})
	var dist float64
	for k := range refFreq {
		seen[k] = struct{}{}
	}
	for k := range curFreq {
		seen[k] = struct{}{}
	}
	for k := range seen {
		dist += math.Abs(refFreq[k] - curFreq[k])
	}
	return dist / 2
}

// Dataset holds feature columns split by kind.
type Dataset struct {
	Numeric     map[string][]float64
	Categorical map[string][]string
}

// Detect compares current feature values against the reference dataset and
// builds a drift report. The current sample must have at least MinSampleSize
// rows.
func Detect(reference *Dataset, current *Dataset, sampleSize int) (*Report, error) {
	if sampleSize < MinSampleSize {
		return nil, fmt.Errorf("sample of %d rows is below the minimum of %d", sampleSize, MinSampleSize)
	}

	report := &Report{SampleSize: sampleSize}

	names := make([]string, 0, len(reference.Numeric)+len(reference.Categorical))
	for name := range reference.Numeric {
		names = append(names, name)
	}
	for name := range reference.Categorical {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		var stat float64
		if refVals, ok := reference.Numeric[name]; ok {
			stat = KolmogorovSmirnov(refVals, current.Numeric[name])
		} else {
			stat = CategoryDistance(reference.Categorical[name], current.Categorical[name])
		}
		drifted := stat > ColumnDriftThreshold
		if drifted {
			report.DriftedColumns++
		}
		report.Columns = append(report.Columns, ColumnResult{
			Column:    name,
			Statistic: stat,
			Drifted:   drifted,
		})
	}

	report.TotalColumns = len(report.Columns)
	if report.TotalColumns > 0 {
		report.DriftShare = float64(report.DriftedColumns) / float64(report.TotalColumns)
	}
	report.DatasetDrift = report.DriftShare > DatasetDriftShare
	return report, nil
}

// DatasetFromPredictions builds the current dataset out of logged prediction
// features, using the reference dataset to decide each column's kind.
func DatasetFromPredictions(reference *Dataset, predictions []Prediction) *Dataset {
	current := &Dataset{
		Numeric:     make(map[string][]float64),
		Categorical: make(map[string][]string),
	}
	for _, p := range predictions {
		for name, raw := range p.Features {
			if _, ok := reference.Numeric[name]; ok {
				if f, ok := toFloat(raw); ok {
					current.Numeric[name] = append(current.Numeric[name], f)
				}
				continue
			}
			if _, ok := reference.Categorical[name]; ok {
				current.Categorical[name] = append(current.Categorical[name], fmt.Sprint(raw))
			}
		}
	}
	return current
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(n, 64)
		return f, err == nil
	default:
		return 0, false
	}
}

// LoadReferenceCSV reads the reference dataset from a CSV file with a header
// row. Columns where every value parses as a number are numeric, the rest are
// categorical.
func LoadReferenceCSV(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open reference data %s: %w", path, err)
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse reference data %s: %w", path, err)
	}
	if len(records) < 2 {
		return nil, fmt.Errorf("reference data %s has no rows", path)
	}

	header := records[0]
	raw := make(map[string][]string, len(header))
	for _, row := range records[1:] {
		for i, col := range header {
			if i < len(row) {
				raw[col] = append(raw[col], row[i])
			}
		}
	}

	ds := &Dataset{
		Numeric:     make(map[string][]float64),
		Categorical: make(map[string][]string),
	}
	for _, col := range header {
		values := raw[col]
		numeric := make([]float64, 0, len(values))
		allNumeric := true
		for _, v := range values {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				allNumeric = false
				break
			}
			numeric = append(numeric, f)
		}
		if allNumeric && len(values) > 0 {
			ds.Numeric[col] = numeric
		} else {
			ds.Categorical[col] = values
		}
	}
	return ds, nil
}
