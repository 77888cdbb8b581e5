package quality

import (
	"fmt"
	"math"
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/hoopstat-haus/pipeline/internal/schema"
	"github.com/hoopstat-haus/pipeline/pkg/models"
)

// Config configures the quality scorer.
type Config struct {
	Weights models.QualityWeights `json:"weights" mapstructure:"weights"`
	// SeasonTotalTolerance is the tolerance used when comparing computed
	// season totals against previously stored totals. Interpreted as a
	// relative fraction when ToleranceRelative is set, absolute otherwise.
	SeasonTotalTolerance float64 `json:"season_total_tolerance" mapstructure:"season_total_tolerance"`
	ToleranceRelative    bool    `json:"tolerance_relative" mapstructure:"tolerance_relative"`
}

// DefaultConfig returns equal dimension weights and a 1% relative season
// total tolerance.
func DefaultConfig() *Config {
	return &Config{
		Weights:              models.DefaultQualityWeights(),
		SeasonTotalTolerance: 0.01,
		ToleranceRelative:    true,
	}
}

// Scorer computes completeness, validity, and consistency sub-scores and
// the weighted overall quality score for cleaned records.
type Scorer struct {
	registry *schema.Registry
	config   *Config
	logger   *logrus.Logger
}

// NewScorer creates a quality scorer over the registered schemas.
func NewScorer(registry *schema.Registry, config *Config, logger *logrus.Logger) *Scorer {
	if config == nil {
		config = DefaultConfig()
	}
	if logger == nil {
		logger = logrus.New()
	}
	if registry == nil {
		registry = schema.NewRegistry(logger)
	}
	return &Scorer{registry: registry, config: config, logger: logger}
}

// CalculateDataQualityScore computes the per-dimension sub-scores and their
// weighted combination for one record. Every component is in [0,1].
func (s *Scorer) CalculateDataQualityScore(rec models.Record, entity models.EntityType) (*models.QualityScore, error) {
	sch, err := s.registry.GetSchema(entity)
	if err != nil {
		return nil, err
	}

	score := &models.QualityScore{
		Completeness: s.completeness(rec, sch),
		Validity:     s.validity(rec, sch),
		Consistency:  s.consistency(rec),
	}

	w := s.config.Weights
	totalWeight := w.Completeness + w.Validity + w.Consistency
	if totalWeight <= 0 {
		w = models.DefaultQualityWeights()
		totalWeight = w.Completeness + w.Validity + w.Consistency
	}
	score.Overall = (score.Completeness*w.Completeness +
		score.Validity*w.Validity +
		score.Consistency*w.Consistency) / totalWeight

	return score, nil
}

// completeness is the fraction of schema fields present and non-null.
func (s *Scorer) completeness(rec models.Record, sch *schema.Schema) float64 {
	if len(sch.Fields) == 0 {
		return 1.0
	}
	present := 0
	for name := range sch.Fields {
		if v, ok := rec[name]; ok && v != nil {
			present++
		}
	}
	return float64(present) / float64(len(sch.Fields))
}

// validity is the fraction of present fields that match their declared type
// and sit within their declared range.
func (s *Scorer) validity(rec models.Record, sch *schema.Schema) float64 {
	checked := 0
	valid := 0
	for name, spec := range sch.Fields {
		v, ok := rec[name]
		if !ok || v == nil {
			continue
		}
		checked++
		if fieldValid(v, spec) {
			valid++
		}
	}
	if checked == 0 {
		return 0.0
	}
	return float64(valid) / float64(checked)
}

func fieldValid(v interface{}, spec schema.FieldSpec) bool {
	switch spec.Type {
	case schema.FieldNumber:
		num, ok := toFloat(v)
		if !ok {
			return false
		}
		if spec.Min != nil && num < *spec.Min {
			return false
		}
		if spec.Max != nil && num > *spec.Max {
			return false
		}
		return true
	case schema.FieldString, schema.FieldDate, schema.FieldDatetime:
		_, ok := v.(string)
		return ok
	case schema.FieldBool:
		_, ok := v.(bool)
		return ok
	default:
		return true
	}
}

// consistency is the fraction of applicable cross-field rules the record
// satisfies. A record where no rule applies scores 1.0.
func (s *Scorer) consistency(rec models.Record) float64 {
	applicable := 0
	satisfied := 0

	pair := func(madeField, attemptedField string) {
		made, okMade := toFloatField(rec, madeField)
		attempted, okAtt := toFloatField(rec, attemptedField)
		if !okMade || !okAtt {
			return
		}
		applicable++
		if made <= attempted {
			satisfied++
		}
	}

	pair("field_goals_made", "field_goals_attempted")
	pair("three_pointers_made", "three_pointers_attempted")
	pair("free_throws_made", "free_throws_attempted")
	pair("three_pointers_made", "field_goals_made")

	if issue := pointsCompositionIssue(rec); issue != nil {
		applicable++
		if !*issue {
			satisfied++
		}
	}

	if applicable == 0 {
		return 1.0
	}
	return float64(satisfied) / float64(applicable)
}

// pointsCompositionIssue returns nil when the composition rule does not
// apply, otherwise a pointer to whether the rule is violated.
func pointsCompositionIssue(rec models.Record) *bool {
	points, okPts := toFloatField(rec, "points")
	fgm, okFGM := toFloatField(rec, "field_goals_made")
	fg3m, okFG3 := toFloatField(rec, "three_pointers_made")
	ftm, okFTM := toFloatField(rec, "free_throws_made")
	if !okPts || !okFGM || !okFG3 || !okFTM {
		return nil
	}
	violated := points != 2*(fgm-fg3m)+3*fg3m+ftm
	return &violated
}

// IdentifyMissingCriticalStats flags the absence of fields deemed
// analytically essential even when the record is otherwise schema-valid.
func (s *Scorer) IdentifyMissingCriticalStats(rec models.Record, entity models.EntityType) []string {
	sch, err := s.registry.GetSchema(entity)
	if err != nil {
		return nil
	}

	var missing []string
	for name, spec := range sch.Fields {
		if !spec.Critical {
			continue
		}
		if v, ok := rec[name]; !ok || v == nil {
			missing = append(missing, name)
		}
	}
	sort.Strings(missing)
	return missing
}

// ValidateStatConsistency cross-checks a set of records: per-record shot
// composition plus duplicate identity detection across the set.
func (s *Scorer) ValidateStatConsistency(records []models.Record) []string {
	var issues []string
	seen := make(map[string]bool)

	for i, rec := range records {
		if violated := pointsCompositionIssue(rec); violated != nil && *violated {
			issues = append(issues, fmt.Sprintf(
				"record %d: points do not match made-shot composition", i))
		}

		for _, pairFields := range [][2]string{
			{"field_goals_made", "field_goals_attempted"},
			{"three_pointers_made", "three_pointers_attempted"},
			{"free_throws_made", "free_throws_attempted"},
		} {
			made, okMade := toFloatField(rec, pairFields[0])
			attempted, okAtt := toFloatField(rec, pairFields[1])
			if okMade && okAtt && made > attempted {
				issues = append(issues, fmt.Sprintf(
					"record %d: %s exceeds %s", i, pairFields[0], pairFields[1]))
			}
		}

		playerID, okPlayer := rec["player_id"].(string)
		gameID, okGame := rec["game_id"].(string)
		if okPlayer && okGame {
			identity := playerID + "/" + gameID
			if seen[identity] {
				issues = append(issues, fmt.Sprintf(
					"record %d: duplicate entry for player %s in game %s", i, playerID, gameID))
			}
			seen[identity] = true
		}
	}

	return issues
}

// CompareSeasonTotals checks computed season totals against previously
// stored totals, reporting every stat outside the configured tolerance.
// Tolerance interpretation (relative vs. absolute) comes from config.
func (s *Scorer) CompareSeasonTotals(computed, stored map[string]float64) []string {
	var issues []string
	for stat, want := range stored {
		got, ok := computed[stat]
		if !ok {
			issues = append(issues, fmt.Sprintf("stat %q missing from computed totals", stat))
			continue
		}
		diff := math.Abs(got - want)
		limit := s.config.SeasonTotalTolerance
		if s.config.ToleranceRelative {
			limit = s.config.SeasonTotalTolerance * math.Abs(want)
		}
		if diff > limit {
			issues = append(issues, fmt.Sprintf(
				"stat %q differs from stored total: computed %v, stored %v", stat, got, want))
		}
	}
	sort.Strings(issues)
	return issues
}

// CalculateShootingPercentage returns made/attempted in [0,1] when
// attempted is positive, and nil (not an error) when attempted is zero.
func CalculateShootingPercentage(made, attempted float64) *float64 {
	if attempted <= 0 {
		return nil
	}
	pct := made / attempted
	return &pct
}

func toFloatField(rec models.Record, name string) (float64, bool) {
	v, ok := rec[name]
	if !ok || v == nil {
		return 0, false
	}
	return toFloat(v)
}

func toFloat(v interface{}) (float64, bool) {
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
