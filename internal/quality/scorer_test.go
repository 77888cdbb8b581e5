package quality

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hoopstat-haus/pipeline/pkg/models"
)

func fullStatLine() models.Record {
	return models.Record{
		"player_id":                "2544",
		"player_name":              "LeBron James",
		"team":                     "Los Angeles Lakers",
		"position":                 "SF",
		"game_id":                  "0022300500",
		"game_date":                "2024-01-15",
		"season":                   "2023-24",
		"minutes":                  36.0,
		"points":                   25.0,
		"rebounds":                 8.0,
		"assists":                  9.0,
		"steals":                   1.0,
		"blocks":                   1.0,
		"turnovers":                3.0,
		"personal_fouls":           2.0,
		"field_goals_made":         9.0,
		"field_goals_attempted":    18.0,
		"three_pointers_made":      2.0,
		"three_pointers_attempted": 6.0,
		"free_throws_made":         5.0,
		"free_throws_attempted":    6.0,
		"field_goal_pct":           0.5,
		"three_point_pct":          0.333,
		"free_throw_pct":           0.833,
	}
}

func TestCalculateDataQualityScorePerfectRecord(t *testing.T) {
	s := NewScorer(nil, nil, nil)

	score, err := s.CalculateDataQualityScore(fullStatLine(), models.EntityPlayerStats)
	require.NoError(t, err)

	assert.Equal(t, 1.0, score.Completeness)
	assert.Equal(t, 1.0, score.Validity)
	assert.Equal(t, 1.0, score.Consistency)
	assert.Equal(t, 1.0, score.Overall)
}

func TestCalculateDataQualityScoreMissingFields(t *testing.T) {
	s := NewScorer(nil, nil, nil)

	rec := fullStatLine()
	delete(rec, "rebounds")
	delete(rec, "assists")

	score, err := s.CalculateDataQualityScore(rec, models.EntityPlayerStats)
	require.NoError(t, err)

	assert.Less(t, score.Completeness, 1.0)
	assert.Equal(t, 1.0, score.Validity)
	assert.Less(t, score.Overall, 1.0)
}

func TestCalculateDataQualityScoreInvalidValues(t *testing.T) {
	s := NewScorer(nil, nil, nil)

	rec := fullStatLine()
	rec["points"] = 500.0 // out of plausible range

	score, err := s.CalculateDataQualityScore(rec, models.EntityPlayerStats)
	require.NoError(t, err)
	assert.Less(t, score.Validity, 1.0)
}

func TestCalculateDataQualityScoreInconsistent(t *testing.T) {
	s := NewScorer(nil, nil, nil)

	rec := fullStatLine()
	rec["field_goals_made"] = 20.0 // exceeds attempted, breaks composition

	score, err := s.CalculateDataQualityScore(rec, models.EntityPlayerStats)
	require.NoError(t, err)
	assert.Less(t, score.Consistency, 1.0)
}

func TestCalculateDataQualityScoreEmptyRecord(t *testing.T) {
	s := NewScorer(nil, nil, nil)

	score, err := s.CalculateDataQualityScore(models.Record{}, models.EntityPlayerStats)
	require.NoError(t, err)

	assert.Equal(t, 0.0, score.Completeness)
	// No field present means nothing checkable: validity floors at zero.
	assert.Equal(t, 0.0, score.Validity)
	// No cross-field rule applies to an empty record.
	assert.Equal(t, 1.0, score.Consistency)
}

func TestCalculateDataQualityScoreCustomWeights(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Weights = models.QualityWeights{Completeness: 1.0, Validity: 0.0, Consistency: 0.0}
	s := NewScorer(nil, cfg, nil)

	score, err := s.CalculateDataQualityScore(fullStatLine(), models.EntityPlayerStats)
	require.NoError(t, err)
	assert.Equal(t, score.Completeness, score.Overall)
}

func TestCalculateDataQualityScoreUnknownEntity(t *testing.T) {
	s := NewScorer(nil, nil, nil)
	_, err := s.CalculateDataQualityScore(models.Record{}, models.EntityType("mascots"))
	assert.Error(t, err)
}

func TestIdentifyMissingCriticalStats(t *testing.T) {
	s := NewScorer(nil, nil, nil)

	rec := fullStatLine()
	delete(rec, "points")
	delete(rec, "assists")

	missing := s.IdentifyMissingCriticalStats(rec, models.EntityPlayerStats)
	assert.Equal(t, []string{"assists", "points"}, missing)

	assert.Empty(t, s.IdentifyMissingCriticalStats(fullStatLine(), models.EntityPlayerStats))
}

func TestValidateStatConsistency(t *testing.T) {
	s := NewScorer(nil, nil, nil)

	good := fullStatLine()
	badComposition := fullStatLine()
	badComposition["game_id"] = "0022300501"
	badComposition["points"] = 40.0
	overShot := fullStatLine()
	overShot["game_id"] = "0022300502"
	overShot["field_goals_made"] = 20.0

	issues := s.ValidateStatConsistency([]models.Record{good, badComposition, overShot})
	require.Len(t, issues, 3) // composition break, then composition break + made>attempted
	assert.Contains(t, issues[0], "record 1")
}

func TestValidateStatConsistencyDuplicates(t *testing.T) {
	s := NewScorer(nil, nil, nil)

	a := fullStatLine()
	b := fullStatLine() // same player_id and game_id

	issues := s.ValidateStatConsistency([]models.Record{a, b})
	require.Len(t, issues, 1)
	assert.Contains(t, issues[0], "duplicate")
}

func TestCompareSeasonTotals(t *testing.T) {
	s := NewScorer(nil, nil, nil)

	stored := map[string]float64{"points": 2000, "rebounds": 600}
	computed := map[string]float64{"points": 2010, "rebounds": 650}

	// 1% relative tolerance: points within (|diff|=10 <= 20), rebounds not.
	issues := s.CompareSeasonTotals(computed, stored)
	require.Len(t, issues, 1)
	assert.Contains(t, issues[0], "rebounds")
}

func TestCompareSeasonTotalsMissingStat(t *testing.T) {
	s := NewScorer(nil, nil, nil)

	issues := s.CompareSeasonTotals(map[string]float64{}, map[string]float64{"points": 2000})
	require.Len(t, issues, 1)
	assert.Contains(t, issues[0], "missing")
}

func TestCalculateShootingPercentage(t *testing.T) {
	pct := CalculateShootingPercentage(8, 15)
	require.NotNil(t, pct)
	assert.InDelta(t, 0.533, *pct, 0.001)

	// Zero attempts is not an error and not a zero rate: it is undefined.
	assert.Nil(t, CalculateShootingPercentage(0, 0))
	assert.Nil(t, CalculateShootingPercentage(5, 0))
}
