package models

import (
	"time"
)

// CurrentSchemaVersion is the schema version stamped onto every record
// ingested by this build of the pipeline.
const CurrentSchemaVersion = "1.0.0"

// EntityType identifies the logical kind of record moving through the
// pipeline. Every schema, cleaning rule set, and partition layout is keyed
// by one of these.
type EntityType string

const (
	EntityPlayerStats EntityType = "player_stats"
	EntityTeamStats   EntityType = "team_stats"
	EntitySchedule    EntityType = "schedule"
	EntityBoxScore    EntityType = "box_score"
)

// ValidEntityTypes lists every entity type the pipeline recognizes.
func ValidEntityTypes() []EntityType {
	return []EntityType{EntityPlayerStats, EntityTeamStats, EntitySchedule, EntityBoxScore}
}

// Record is an open mapping of field name to value representing one entity
// instance (a player-game, a team-game, a scheduled game). Pipeline stages
// return new Records; they never mutate a Record shared with another stage.
type Record map[string]interface{}

// Clone returns a shallow copy of the record. Field values are shared, but
// adding or removing fields on the copy never affects the original.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// ValidationMode controls how business-rule violations are treated.
type ValidationMode string

const (
	// ModeStrict rejects out-of-range and inconsistent values.
	ModeStrict ValidationMode = "strict"
	// ModeLenient records the same violations as issues but keeps the
	// record valid unless an identity field is missing, supporting
	// ingestion of known-dirty data without pipeline failure.
	ModeLenient ValidationMode = "lenient"
)

// IssueSeverity classifies a validation issue.
type IssueSeverity string

const (
	SeverityWarning IssueSeverity = "warning"
	SeverityError   IssueSeverity = "error"
)

// ValidationIssue is one structural or domain problem found in a record.
type ValidationIssue struct {
	Severity IssueSeverity `json:"severity"`
	Field    string        `json:"field,omitempty"`
	Code     string        `json:"code"`
	Message  string        `json:"message"`
}

// ValidationResult is the structured outcome of validating one raw payload.
// Data-quality problems are always represented here as data, never as
// errors, so a batch of N records can run to completion with a mixture of
// valid, invalid, and quarantined outcomes.
//
// Invariant: Valid == (no strict-fatal issue present).
type ValidationResult struct {
	Valid   bool               `json:"valid"`
	Mode    ValidationMode     `json:"mode"`
	Issues  []ValidationIssue  `json:"issues"`
	Metrics map[string]float64 `json:"metrics,omitempty"`
}

// AddIssue appends an issue, preserving discovery order.
func (vr *ValidationResult) AddIssue(severity IssueSeverity, field, code, message string) {
	vr.Issues = append(vr.Issues, ValidationIssue{
		Severity: severity,
		Field:    field,
		Code:     code,
		Message:  message,
	})
}

// ErrorCount returns the number of error-severity issues.
func (vr *ValidationResult) ErrorCount() int {
	n := 0
	for _, issue := range vr.Issues {
		if issue.Severity == SeverityError {
			n++
		}
	}
	return n
}

// CompletenessResult compares observed vs. expected entity counts for a
// batch (e.g. games scheduled on a date). Advisory only.
type CompletenessResult struct {
	ActualCount   int     `json:"actual_count"`
	ExpectedCount int     `json:"expected_count"`
	Ratio         float64 `json:"ratio"`
}

// TransformationResult records one field-level cleaning operation.
//
// Invariant: Changed == (Original != Cleaned).
type TransformationResult struct {
	Field    string      `json:"field,omitempty"`
	Rule     string      `json:"rule"`
	Original interface{} `json:"original"`
	Cleaned  interface{} `json:"cleaned"`
	Changed  bool        `json:"changed"`
	Note     string      `json:"note,omitempty"`
}

// QualityScore holds the per-dimension sub-scores and the weighted overall
// score for one record. Every component is in [0, 1].
type QualityScore struct {
	Completeness float64 `json:"completeness"`
	Validity     float64 `json:"validity"`
	Consistency  float64 `json:"consistency"`
	Overall      float64 `json:"overall"`
}

// QualityWeights controls the weighted combination used for the overall
// score. Weights are normalized by their sum, so any positive values work.
type QualityWeights struct {
	Completeness float64 `json:"completeness" mapstructure:"completeness"`
	Validity     float64 `json:"validity" mapstructure:"validity"`
	Consistency  float64 `json:"consistency" mapstructure:"consistency"`
}

// DefaultQualityWeights returns equal weights for all three dimensions.
func DefaultQualityWeights() QualityWeights {
	return QualityWeights{Completeness: 1.0, Validity: 1.0, Consistency: 1.0}
}

// QuarantineRecord is the durable envelope written for a record that failed
// validation. Immutable once written; QuarantineKey is unique per write.
type QuarantineRecord struct {
	Data             Record            `json:"data"`
	ValidationResult *ValidationResult `json:"validation_result"`
	DataType         EntityType        `json:"data_type"`
	TargetDate       string            `json:"target_date"`
	QuarantineKey    string            `json:"quarantine_key"`
	QuarantinedAt    time.Time         `json:"quarantined_at"`
}

// Lineage is the audit metadata carried alongside a record as it moves
// through the pipeline. Originals of every changed field are retained in
// the transformation trail.
type Lineage struct {
	SchemaVersion   string                 `json:"schema_version"`
	SourceEntity    EntityType             `json:"source_entity"`
	IngestedAt      time.Time              `json:"ingested_at"`
	Transformations []TransformationResult `json:"transformations,omitempty"`
	Quality         *QualityScore          `json:"quality,omitempty"`
}

// ProcessedRecord pairs a cleaned record with its lineage annotation.
type ProcessedRecord struct {
	Record  Record  `json:"record"`
	Lineage Lineage `json:"lineage"`
}

// BatchReport summarizes one pipeline run. A run must not abort solely
// because some records were invalid; the report carries the mixture of
// outcomes instead.
type BatchReport struct {
	RunID           string         `json:"run_id"`
	Entity          EntityType     `json:"entity"`
	TargetDate      string         `json:"target_date"`
	Mode            ValidationMode `json:"mode"`
	TotalRecords    int            `json:"total_records"`
	ValidRecords    int            `json:"valid_records"`
	InvalidRecords  int            `json:"invalid_records"`
	QuarantinedOK   int            `json:"quarantined_ok"`
	QuarantineFails int            `json:"quarantine_failures"`
	CleanedRecords  int            `json:"cleaned_records"`
	ScoredRecords   int            `json:"scored_records"`
	StoredRecords   int            `json:"stored_records"`
	AverageQuality  float64        `json:"average_quality"`
	Transformations map[string]int `json:"transformations,omitempty"`
	StartedAt       time.Time      `json:"started_at"`
	CompletedAt     time.Time      `json:"completed_at"`
	Duration        time.Duration  `json:"duration"`
}
