package validator

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/hoopstat-haus/pipeline/internal/schema"
	"github.com/hoopstat-haus/pipeline/pkg/errors"
	"github.com/hoopstat-haus/pipeline/pkg/models"
)

// Context carries per-call validation parameters. Strictness is threaded
// through every call explicitly so concurrent batches running in different
// modes cannot interfere with each other.
type Context struct {
	// Mode selects strict or lenient treatment of rule violations.
	Mode models.ValidationMode
	// TargetDate, when set (YYYY-MM-DD), is checked against each record's
	// game_date.
	TargetDate string
	// ExpectedCount, when positive, is used by ValidateCompleteness.
	ExpectedCount int
}

// Validator checks raw API payloads against the registered schemas and the
// basketball domain rules. Data-quality problems are returned as structured
// results; the validator never raises for bad input data.
type Validator struct {
	registry *schema.Registry
	logger   *logrus.Logger
}

// NewValidator creates a validator backed by the given schema registry.
func NewValidator(registry *schema.Registry, logger *logrus.Logger) *Validator {
	if logger == nil {
		logger = logrus.New()
	}
	if registry == nil {
		registry = schema.NewRegistry(logger)
	}
	return &Validator{registry: registry, logger: logger}
}

// ValidateAPIResponse validates a raw upstream payload. The payload is
// first normalized from whichever recognized wire shape it arrived in, then
// every contained record is checked structurally and against the domain
// rules. The result aggregates issues across all records in the payload.
func (v *Validator) ValidateAPIResponse(raw map[string]interface{}, responseType models.EntityType, vctx Context) *models.ValidationResult {
	result := newResult(vctx.Mode)

	records, ok := NormalizeResponse(raw, responseType)
	if !ok {
		result.AddIssue(models.SeverityError, "", errors.CodeUnknownWireShape,
			fmt.Sprintf("payload does not match any recognized wire shape for %s", responseType))
		result.Valid = false
		return result
	}

	sch, err := v.registry.GetSchema(responseType)
	if err != nil {
		// Unknown entity type is a configuration problem, but the caller
		// asked for a result, so it is reported as a fatal issue here.
		result.AddIssue(models.SeverityError, "", errors.CodeUnknownEntity, err.Error())
		result.Valid = false
		return result
	}

	identityMissing := false
	for i, rec := range records {
		recResult := v.validateRecord(rec, sch, vctx)
		for _, issue := range recResult.Issues {
			if len(records) > 1 {
				issue.Message = fmt.Sprintf("record %d: %s", i, issue.Message)
			}
			result.Issues = append(result.Issues, issue)
		}
		for k, val := range recResult.Metrics {
			result.Metrics[k] += val
		}
		if recResult.Metrics[metricIdentityMissing] > 0 {
			identityMissing = true
		}
	}
	result.Metrics["records_checked"] = float64(len(records))

	result.Valid = v.computeValid(result, vctx.Mode, identityMissing)

	v.logger.WithFields(logrus.Fields{
		"entity":  responseType,
		"records": len(records),
		"issues":  len(result.Issues),
		"valid":   result.Valid,
		"mode":    vctx.Mode,
	}).Debug("Validated API response")

	return result
}

// ValidateRecord validates a single already-normalized record.
func (v *Validator) ValidateRecord(rec models.Record, entity models.EntityType, vctx Context) *models.ValidationResult {
	result := newResult(vctx.Mode)

	sch, err := v.registry.GetSchema(entity)
	if err != nil {
		result.AddIssue(models.SeverityError, "", errors.CodeUnknownEntity, err.Error())
		result.Valid = false
		return result
	}

	recResult := v.validateRecord(rec, sch, vctx)
	result.Issues = recResult.Issues
	result.Metrics = recResult.Metrics
	result.Valid = v.computeValid(result, vctx.Mode, recResult.Metrics[metricIdentityMissing] > 0)
	return result
}

// ValidatePlayerStats validates one player stat line. Any record where
// field goals made exceed field goals attempted is rejected in strict mode.
func (v *Validator) ValidatePlayerStats(rec models.Record, vctx Context) *models.ValidationResult {
	return v.ValidateRecord(rec, models.EntityPlayerStats, vctx)
}

// ValidateCompleteness compares the observed entity count against the
// expected count (e.g. games scheduled for a date). Advisory: the ratio is
// reported, never treated as a hard failure by itself.
func (v *Validator) ValidateCompleteness(records []models.Record, expectedCount int) models.CompletenessResult {
	actual := len(records)
	ratio := 1.0
	if expectedCount > 0 {
		ratio = float64(actual) / float64(expectedCount)
	}
	return models.CompletenessResult{
		ActualCount:   actual,
		ExpectedCount: expectedCount,
		Ratio:         ratio,
	}
}

const (
	metricFieldsChecked         = "fields_checked"
	metricRequiredMissing       = "required_missing"
	metricIdentityMissing       = "identity_missing"
	metricRangeViolations       = "range_violations"
	metricConsistencyViolations = "consistency_violations"
	metricDateMismatches        = "date_mismatches"
)

func newResult(mode models.ValidationMode) *models.ValidationResult {
	if mode == "" {
		mode = models.ModeStrict
	}
	return &models.ValidationResult{
		Valid:   true,
		Mode:    mode,
		Issues:  []models.ValidationIssue{},
		Metrics: make(map[string]float64),
	}
}

// computeValid enforces the mode semantics: strict mode fails on any
// error-severity issue, lenient mode fails only when an identity field is
// missing.
func (v *Validator) computeValid(result *models.ValidationResult, mode models.ValidationMode, identityMissing bool) bool {
	if mode == models.ModeLenient {
		return !identityMissing
	}
	return result.ErrorCount() == 0
}

func (v *Validator) validateRecord(rec models.Record, sch *schema.Schema, vctx Context) *models.ValidationResult {
	result := newResult(vctx.Mode)

	v.checkStructure(rec, sch, result)
	v.checkRanges(rec, sch, result)
	v.checkConsistency(rec, result)
	v.checkDate(rec, vctx, result)

	return result
}

// checkStructure verifies required-field presence and basic typing.
func (v *Validator) checkStructure(rec models.Record, sch *schema.Schema, result *models.ValidationResult) {
	for name, spec := range sch.Fields {
		val, present := rec[name]
		result.Metrics[metricFieldsChecked]++

		if !present || val == nil {
			if spec.Required {
				result.AddIssue(models.SeverityError, name, errors.CodeMissingField,
					fmt.Sprintf("required field %q is missing", name))
				result.Metrics[metricRequiredMissing]++
				if spec.Identity {
					result.Metrics[metricIdentityMissing]++
				}
			}
			continue
		}

		switch spec.Type {
		case schema.FieldNumber:
			if _, ok := asFloat(val); !ok {
				result.AddIssue(models.SeverityError, name, errors.CodeInvalidFormat,
					fmt.Sprintf("field %q is not numeric: %v", name, val))
			}
		case schema.FieldString, schema.FieldDate, schema.FieldDatetime:
			if _, ok := val.(string); !ok {
				result.AddIssue(models.SeverityError, name, errors.CodeInvalidFormat,
					fmt.Sprintf("field %q is not a string: %v", name, val))
			}
		}
	}
}

// checkRanges verifies numeric fields against their declared plausibility
// bounds.
func (v *Validator) checkRanges(rec models.Record, sch *schema.Schema, result *models.ValidationResult) {
	for name, spec := range sch.Fields {
		if spec.Min == nil && spec.Max == nil {
			continue
		}
		val, present := rec[name]
		if !present || val == nil {
			continue
		}
		num, ok := asFloat(val)
		if !ok {
			continue
		}
		if (spec.Min != nil && num < *spec.Min) || (spec.Max != nil && num > *spec.Max) {
			result.AddIssue(models.SeverityError, name, errors.CodeOutOfRange,
				fmt.Sprintf("field %q value %v outside plausible range", name, val))
			result.Metrics[metricRangeViolations]++
		}
	}
}

// shot pairs checked for made <= attempted
var shotPairs = [][2]string{
	{"field_goals_made", "field_goals_attempted"},
	{"three_pointers_made", "three_pointers_attempted"},
	{"free_throws_made", "free_throws_attempted"},
}

// checkConsistency applies the cross-field basketball rules.
func (v *Validator) checkConsistency(rec models.Record, result *models.ValidationResult) {
	for _, pair := range shotPairs {
		made, okMade := numField(rec, pair[0])
		attempted, okAtt := numField(rec, pair[1])
		if okMade && okAtt && made > attempted {
			result.AddIssue(models.SeverityError, pair[0], errors.CodeInconsistentStats,
				fmt.Sprintf("%s (%v) exceeds %s (%v)", pair[0], made, pair[1], attempted))
			result.Metrics[metricConsistencyViolations]++
		}
	}

	// Three pointers are a subset of field goals.
	if fg3m, ok3 := numField(rec, "three_pointers_made"); ok3 {
		if fgm, okFG := numField(rec, "field_goals_made"); okFG && fg3m > fgm {
			result.AddIssue(models.SeverityError, "three_pointers_made", errors.CodeInconsistentStats,
				fmt.Sprintf("three_pointers_made (%v) exceeds field_goals_made (%v)", fg3m, fgm))
			result.Metrics[metricConsistencyViolations]++
		}
	}

	// Points must match the made-shot composition when every component is
	// present.
	points, okPts := numField(rec, "points")
	fgm, okFGM := numField(rec, "field_goals_made")
	fg3m, okFG3 := numField(rec, "three_pointers_made")
	ftm, okFTM := numField(rec, "free_throws_made")
	if okPts && okFGM && okFG3 && okFTM {
		expected := 2*(fgm-fg3m) + 3*fg3m + ftm
		if points != expected {
			result.AddIssue(models.SeverityError, "points", errors.CodeInconsistentStats,
				fmt.Sprintf("points (%v) does not match shot composition (%v)", points, expected))
			result.Metrics[metricConsistencyViolations]++
		}
	}
}

// checkDate verifies the record's game_date against the expected target
// date supplied in the context.
func (v *Validator) checkDate(rec models.Record, vctx Context, result *models.ValidationResult) {
	if vctx.TargetDate == "" {
		return
	}
	raw, present := rec["game_date"]
	if !present || raw == nil {
		return
	}
	date, ok := raw.(string)
	if !ok {
		return
	}
	if date != vctx.TargetDate {
		result.AddIssue(models.SeverityError, "game_date", errors.CodeDateMismatch,
			fmt.Sprintf("game_date %q does not match target date %q", date, vctx.TargetDate))
		result.Metrics[metricDateMismatches]++
	}
}

func numField(rec models.Record, name string) (float64, bool) {
	val, present := rec[name]
	if !present || val == nil {
		return 0, false
	}
	return asFloat(val)
}

// asFloat accepts the numeric types JSON decoding and upstream payloads
// actually produce.
func asFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}
