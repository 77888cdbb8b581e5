package quality

import (
	"fmt"
	"math"
	"sort"

	"github.com/hoopstat-haus/pipeline/pkg/errors"
)

// OutlierMethod selects the detection formula.
type OutlierMethod string

const (
	// MethodIQR flags values beyond threshold*IQR outside the quartiles.
	MethodIQR OutlierMethod = "iqr"
	// MethodZScore flags values whose |x-mean|/stddev exceeds threshold.
	MethodZScore OutlierMethod = "zscore"
)

// Default thresholds per method.
const (
	DefaultIQRThreshold    = 1.5
	DefaultZScoreThreshold = 3.0
)

// DetectOutliers returns the indices of values whose deviation exceeds
// threshold under the chosen method. A threshold of 0 selects the method's
// default. Unknown methods and negative thresholds are configuration
// errors and are raised, not recorded.
func DetectOutliers(values []float64, method OutlierMethod, threshold float64) ([]int, error) {
	if threshold < 0 {
		return nil, errors.NewQualityError(errors.CodeInvalidThreshold,
			fmt.Sprintf("threshold must be non-negative, got %v", threshold))
	}

	switch method {
	case MethodIQR, "":
		if threshold == 0 {
			threshold = DefaultIQRThreshold
		}
		return detectIQR(values, threshold), nil
	case MethodZScore:
		if threshold == 0 {
			threshold = DefaultZScoreThreshold
		}
		return detectZScore(values, threshold), nil
	default:
		return nil, errors.NewQualityError(errors.CodeInvalidMethod,
			fmt.Sprintf("unknown outlier method %q", method))
	}
}

// detectIQR computes Q1 and Q3 with linear interpolation and flags values
// outside [Q1 - threshold*IQR, Q3 + threshold*IQR].
func detectIQR(values []float64, threshold float64) []int {
	if len(values) < 4 {
		return nil
	}

	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	q1 := quantile(sorted, 0.25)
	q3 := quantile(sorted, 0.75)
	iqr := q3 - q1
	lower := q1 - threshold*iqr
	upper := q3 + threshold*iqr

	var outliers []int
	for i, v := range values {
		if v < lower || v > upper {
			outliers = append(outliers, i)
		}
	}
	return outliers
}

// detectZScore flags values whose absolute z-score exceeds threshold,
// using the population standard deviation.
func detectZScore(values []float64, threshold float64) []int {
	if len(values) < 2 {
		return nil
	}

	var sum float64
	for _, v := range values {
		sum += v
	}
	mean := sum / float64(len(values))

	var sumSq float64
	for _, v := range values {
		d := v - mean
		sumSq += d * d
	}
	std := math.Sqrt(sumSq / float64(len(values)))
	if std == 0 {
		return nil
	}

	var outliers []int
	for i, v := range values {
		if math.Abs(v-mean)/std > threshold {
			outliers = append(outliers, i)
		}
	}
	return outliers
}

// quantile interpolates linearly between adjacent sorted values.
func quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo] + frac*(sorted[hi]-sorted[lo])
}
