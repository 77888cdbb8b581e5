package cleaning

import (
	"github.com/hoopstat-haus/pipeline/pkg/models"
)

// TransformationLog collects the field-level transformation audit trail for
// one batch run. The log is owned by the caller, created per run and
// cleared explicitly, never retained by a shared engine instance — this
// keeps concurrent batches from contaminating each other's audit trails.
type TransformationLog struct {
	results []models.TransformationResult
}

// NewTransformationLog creates an empty log for one batch invocation.
func NewTransformationLog() *TransformationLog {
	return &TransformationLog{results: []models.TransformationResult{}}
}

// Append records one transformation result.
func (l *TransformationLog) Append(result models.TransformationResult) {
	l.results = append(l.results, result)
}

// Results returns every recorded transformation in order.
func (l *TransformationLog) Results() []models.TransformationResult {
	return l.results
}

// Summary returns aggregate counts of applied (changed) transformations per
// rule since the log was last cleared.
func (l *TransformationLog) Summary() map[string]int {
	summary := make(map[string]int)
	for _, r := range l.results {
		if r.Changed {
			summary[r.Rule]++
		}
	}
	return summary
}

// Clear resets the log.
func (l *TransformationLog) Clear() {
	l.results = l.results[:0]
}
