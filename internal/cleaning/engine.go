package cleaning

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/hoopstat-haus/pipeline/pkg/errors"
	"github.com/hoopstat-haus/pipeline/pkg/models"
)

// Rule names recorded on transformation results.
const (
	RuleTeamName    = "team_name"
	RulePosition    = "position"
	RuleNumeric     = "numeric"
	RuleDatetime    = "datetime"
	RuleNullDefault = "null_default"
)

// Engine is the table-driven cleaning and normalization engine. All
// behavior comes from the RuleSet loaded at startup; the engine itself
// holds no mutable state, so one instance is safe for concurrent batches as
// long as each batch brings its own TransformationLog.
type Engine struct {
	rules  *RuleSet
	logger *logrus.Logger
}

// NewEngine creates a cleaning engine over an immutable rule set.
func NewEngine(rules *RuleSet, logger *logrus.Logger) *Engine {
	if rules == nil {
		rules = DefaultRuleSet()
	}
	if logger == nil {
		logger = logrus.New()
	}
	return &Engine{rules: rules, logger: logger}
}

// StandardizeTeamName maps a team name to its canonical form. Exact lookup
// in the alias table wins; otherwise, when useFuzzy is set, the closest
// canonical name is accepted only if its similarity clears the configured
// threshold. Unrecognized input passes through unchanged.
func (e *Engine) StandardizeTeamName(name string, useFuzzy bool) models.TransformationResult {
	trimmed := strings.TrimSpace(name)

	if canonical, ok := e.rules.TeamAliases[strings.ToLower(trimmed)]; ok {
		return models.TransformationResult{
			Rule:     RuleTeamName,
			Original: name,
			Cleaned:  canonical,
			Changed:  canonical != name,
			Note:     "exact match",
		}
	}

	if useFuzzy {
		best, score := bestFuzzyMatch(trimmed, e.rules.TeamCanonical)
		if score >= e.rules.FuzzyThreshold {
			return models.TransformationResult{
				Rule:     RuleTeamName,
				Original: name,
				Cleaned:  best,
				Changed:  best != name,
				Note:     fmt.Sprintf("fuzzy match (similarity %.2f)", score),
			}
		}
	}

	return models.TransformationResult{
		Rule:     RuleTeamName,
		Original: name,
		Cleaned:  name,
		Changed:  false,
		Note:     "no match above threshold",
	}
}

// StandardizePosition maps long-form or alternate position spellings to the
// standard abbreviation. Unmapped input passes through unchanged.
func (e *Engine) StandardizePosition(position string) models.TransformationResult {
	trimmed := strings.TrimSpace(position)

	if abbr, ok := e.rules.Positions[strings.ToLower(trimmed)]; ok {
		return models.TransformationResult{
			Rule:     RulePosition,
			Original: position,
			Cleaned:  abbr,
			Changed:  abbr != position,
		}
	}

	return models.TransformationResult{
		Rule:     RulePosition,
		Original: position,
		Cleaned:  position,
		Changed:  false,
		Note:     "unmapped position",
	}
}

// HandleNullValues applies the per-entity null policy: counting stats
// default to zero when absent, rate stats stay null so an absent percentage
// never reads as a true zero rate. Returns a new record.
func (e *Engine) HandleNullValues(rec models.Record, entity models.EntityType) models.Record {
	out := rec.Clone()

	switch entity {
	case models.EntityPlayerStats, models.EntityTeamStats, models.EntityBoxScore:
		for _, field := range e.rules.CountingStats {
			if v, present := out[field]; !present || v == nil {
				out[field] = 0.0
			}
		}
	}

	return out
}

// CleanNumericField coerces string-encoded numbers and applies the
// field-specific bounds rule: out-of-bound values are clamped or rejected
// (cleaned to null) per the rule table.
func (e *Engine) CleanNumericField(value interface{}, fieldName string) models.TransformationResult {
	num, ok := coerceNumeric(value)
	if !ok {
		return models.TransformationResult{
			Field:    fieldName,
			Rule:     RuleNumeric,
			Original: value,
			Cleaned:  value,
			Changed:  false,
			Note:     "not coercible to a number",
		}
	}

	result := models.TransformationResult{
		Field:    fieldName,
		Rule:     RuleNumeric,
		Original: value,
		Cleaned:  num,
	}

	if rule, hasRule := e.rules.NumericFields[fieldName]; hasRule {
		outOfBounds := (rule.Min != nil && num < *rule.Min) || (rule.Max != nil && num > *rule.Max)
		if outOfBounds {
			switch rule.OnOutOfBounds {
			case PolicyReject:
				result.Cleaned = nil
				result.Note = fmt.Sprintf("rejected: %v outside bounds", num)
			default:
				clamped := num
				if rule.Min != nil && clamped < *rule.Min {
					clamped = *rule.Min
				}
				if rule.Max != nil && clamped > *rule.Max {
					clamped = *rule.Max
				}
				result.Cleaned = clamped
				result.Note = fmt.Sprintf("clamped %v into bounds", num)
			}
		}
	}

	result.Changed = result.Original != result.Cleaned
	return result
}

// StandardizeDatetime parses the known input layouts into one canonical
// form: date fields become YYYY-MM-DD, datetime fields become RFC 3339 UTC.
// Unparsable input passes through unchanged with a flagged note.
func (e *Engine) StandardizeDatetime(value interface{}, fieldName string) models.TransformationResult {
	result := models.TransformationResult{
		Field:    fieldName,
		Rule:     RuleDatetime,
		Original: value,
		Cleaned:  value,
		Changed:  false,
	}

	var parsed time.Time
	switch v := value.(type) {
	case time.Time:
		parsed = v
	case string:
		trimmed := strings.TrimSpace(v)
		ok := false
		for _, layout := range e.rules.DatetimeFormats {
			if t, err := time.Parse(layout, trimmed); err == nil {
				parsed = t
				ok = true
				break
			}
		}
		if !ok {
			result.Note = "unparsable datetime"
			return result
		}
	default:
		result.Note = "unparsable datetime"
		return result
	}

	var canonical string
	if e.rules.dateFieldSet[fieldName] {
		canonical = parsed.UTC().Format("2006-01-02")
	} else {
		canonical = parsed.UTC().Format(time.RFC3339)
	}

	result.Cleaned = canonical
	result.Changed = result.Original != result.Cleaned
	return result
}

// team name fields cleaned per entity
var teamNameFields = []string{"team", "home_team", "away_team"}

// ProcessBatch cleans every record, appending the per-field audit trail to
// the caller-owned log. Each cleaned record is a new value; inputs are
// never mutated.
func (e *Engine) ProcessBatch(records []models.Record, entity models.EntityType, log *TransformationLog) ([]models.Record, error) {
	if log == nil {
		return nil, errors.NewCleaningError(errors.CodeInvalidInput,
			"transformation log is required: create one per batch run")
	}

	cleaned := make([]models.Record, 0, len(records))
	for _, rec := range records {
		cleaned = append(cleaned, e.cleanRecord(rec, entity, log))
	}

	e.logger.WithFields(logrus.Fields{
		"entity":  entity,
		"records": len(records),
	}).Debug("Cleaned batch")

	return cleaned, nil
}

func (e *Engine) cleanRecord(rec models.Record, entity models.EntityType, log *TransformationLog) models.Record {
	out := rec.Clone()

	// Null policy first so numeric rules see the defaults.
	for _, field := range e.rules.CountingStats {
		if entity == models.EntitySchedule {
			break
		}
		if v, present := out[field]; !present || v == nil {
			out[field] = 0.0
			log.Append(models.TransformationResult{
				Field:    field,
				Rule:     RuleNullDefault,
				Original: nil,
				Cleaned:  0.0,
				Changed:  true,
				Note:     "counting stat defaulted to zero",
			})
		}
	}

	for field, value := range out {
		if value == nil {
			continue
		}

		if _, hasRule := e.rules.NumericFields[field]; hasRule {
			result := e.CleanNumericField(value, field)
			out[field] = result.Cleaned
			log.Append(result)
			continue
		}

		if e.rules.dateFieldSet[field] || e.rules.datetimeFieldSet[field] {
			result := e.StandardizeDatetime(value, field)
			out[field] = result.Cleaned
			log.Append(result)
			continue
		}

		if field == "position" {
			if s, ok := value.(string); ok {
				result := e.StandardizePosition(s)
				result.Field = field
				out[field] = result.Cleaned
				log.Append(result)
			}
			continue
		}

		for _, teamField := range teamNameFields {
			if field == teamField {
				if s, ok := value.(string); ok {
					result := e.StandardizeTeamName(s, true)
					result.Field = field
					out[field] = result.Cleaned
					log.Append(result)
				}
				break
			}
		}
	}

	return out
}

// coerceNumeric accepts native numbers and string-encoded numbers.
func coerceNumeric(value interface{}) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case string:
		n, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}
}
