package cleaning

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hoopstat-haus/pipeline/pkg/models"
)

func TestStandardizeTeamNameExactAlias(t *testing.T) {
	e := NewEngine(nil, nil)

	result := e.StandardizeTeamName("lakers", false)
	assert.Equal(t, "Los Angeles Lakers", result.Cleaned)
	assert.True(t, result.Changed)
	assert.Equal(t, RuleTeamName, result.Rule)
}

func TestStandardizeTeamNameIdempotent(t *testing.T) {
	e := NewEngine(nil, nil)

	// Canonical names map to themselves, so a second pass is a no-op.
	first := e.StandardizeTeamName("Lakers", true)
	require.Equal(t, "Los Angeles Lakers", first.Cleaned)

	second := e.StandardizeTeamName(first.Cleaned.(string), true)
	assert.Equal(t, "Los Angeles Lakers", second.Cleaned)
	assert.False(t, second.Changed)
}

func TestStandardizeTeamNameFuzzy(t *testing.T) {
	e := NewEngine(nil, nil)

	result := e.StandardizeTeamName("Los Angeles Lakerz", true)
	assert.Equal(t, "Los Angeles Lakers", result.Cleaned)
	assert.True(t, result.Changed)
	assert.Contains(t, result.Note, "fuzzy")
}

func TestStandardizeTeamNameFuzzyDisabled(t *testing.T) {
	e := NewEngine(nil, nil)

	result := e.StandardizeTeamName("Los Angeles Lakerz", false)
	assert.Equal(t, "Los Angeles Lakerz", result.Cleaned)
	assert.False(t, result.Changed)
}

func TestStandardizeTeamNameBelowThresholdPassesThrough(t *testing.T) {
	e := NewEngine(nil, nil)

	result := e.StandardizeTeamName("Seattle SuperSonics", true)
	assert.Equal(t, "Seattle SuperSonics", result.Cleaned)
	assert.False(t, result.Changed)
	assert.Equal(t, "no match above threshold", result.Note)
}

func TestStandardizePosition(t *testing.T) {
	e := NewEngine(nil, nil)

	tests := []struct {
		in      string
		want    string
		changed bool
	}{
		{"Point Guard", "PG", true},
		{"center", "C", true},
		{"PG", "PG", false},
		{"Guard-Forward", "G-F", true},
		{"libero", "libero", false},
	}

	for _, tt := range tests {
		result := e.StandardizePosition(tt.in)
		assert.Equal(t, tt.want, result.Cleaned, "position %q", tt.in)
		assert.Equal(t, tt.changed, result.Changed, "position %q", tt.in)
	}
}

func TestHandleNullValuesCountingStatsDefault(t *testing.T) {
	e := NewEngine(nil, nil)

	rec := models.Record{
		"player_id": "2544",
		"points":    25.0,
	}

	out := e.HandleNullValues(rec, models.EntityPlayerStats)

	assert.Equal(t, 25.0, out["points"])
	assert.Equal(t, 0.0, out["rebounds"])
	assert.Equal(t, 0.0, out["assists"])
	assert.Equal(t, 0.0, out["turnovers"])

	// Rate stats are never zero-filled: absent stays absent.
	_, present := out["field_goal_pct"]
	assert.False(t, present)

	// Input is not mutated.
	_, present = rec["rebounds"]
	assert.False(t, present)
}

func TestHandleNullValuesScheduleUntouched(t *testing.T) {
	e := NewEngine(nil, nil)

	rec := models.Record{"game_id": "001"}
	out := e.HandleNullValues(rec, models.EntitySchedule)

	_, present := out["points"]
	assert.False(t, present)
}

func TestCleanNumericFieldCoercesStrings(t *testing.T) {
	e := NewEngine(nil, nil)

	result := e.CleanNumericField("25", "points")
	assert.Equal(t, 25.0, result.Cleaned)
	assert.True(t, result.Changed)
}

func TestCleanNumericFieldClamp(t *testing.T) {
	e := NewEngine(nil, nil)

	result := e.CleanNumericField(120.0, "minutes")
	assert.Equal(t, 96.0, result.Cleaned)
	assert.True(t, result.Changed)
	assert.Contains(t, result.Note, "clamped")
}

func TestCleanNumericFieldReject(t *testing.T) {
	e := NewEngine(nil, nil)

	result := e.CleanNumericField(500.0, "points")
	assert.Nil(t, result.Cleaned)
	assert.True(t, result.Changed)
	assert.Contains(t, result.Note, "rejected")
}

func TestCleanNumericFieldUncoercible(t *testing.T) {
	e := NewEngine(nil, nil)

	result := e.CleanNumericField("a lot", "points")
	assert.Equal(t, "a lot", result.Cleaned)
	assert.False(t, result.Changed)
}

func TestStandardizeDatetimeDateField(t *testing.T) {
	e := NewEngine(nil, nil)

	tests := []struct {
		in   string
		want string
	}{
		{"01/15/2024", "2024-01-15"},
		{"2024-01-15", "2024-01-15"},
		{"Jan 15, 2024", "2024-01-15"},
		{"20240115", "2024-01-15"},
	}

	for _, tt := range tests {
		result := e.StandardizeDatetime(tt.in, "game_date")
		assert.Equal(t, tt.want, result.Cleaned, "input %q", tt.in)
	}
}

func TestStandardizeDatetimeDatetimeField(t *testing.T) {
	e := NewEngine(nil, nil)

	result := e.StandardizeDatetime("2024-01-15 19:30:00", "tipoff")
	assert.Equal(t, "2024-01-15T19:30:00Z", result.Cleaned)
	assert.True(t, result.Changed)
}

func TestStandardizeDatetimeUnparsable(t *testing.T) {
	e := NewEngine(nil, nil)

	result := e.StandardizeDatetime("next tuesday", "game_date")
	assert.Equal(t, "next tuesday", result.Cleaned)
	assert.False(t, result.Changed)
	assert.Equal(t, "unparsable datetime", result.Note)
}

func TestProcessBatchRequiresLog(t *testing.T) {
	e := NewEngine(nil, nil)

	_, err := e.ProcessBatch([]models.Record{{}}, models.EntityPlayerStats, nil)
	assert.Error(t, err)
}

func TestProcessBatchCleansRecords(t *testing.T) {
	e := NewEngine(nil, nil)
	log := NewTransformationLog()

	records := []models.Record{
		{
			"player_id": "2544",
			"team":      "lakers",
			"position":  "Small Forward",
			"game_date": "01/15/2024",
			"points":    "25",
		},
	}

	cleaned, err := e.ProcessBatch(records, models.EntityPlayerStats, log)
	require.NoError(t, err)
	require.Len(t, cleaned, 1)

	out := cleaned[0]
	assert.Equal(t, "Los Angeles Lakers", out["team"])
	assert.Equal(t, "SF", out["position"])
	assert.Equal(t, "2024-01-15", out["game_date"])
	assert.Equal(t, 25.0, out["points"])
	assert.Equal(t, 0.0, out["rebounds"]) // null policy default

	// Input untouched.
	assert.Equal(t, "lakers", records[0]["team"])

	summary := log.Summary()
	assert.Greater(t, summary[RuleTeamName], 0)
	assert.Greater(t, summary[RuleNullDefault], 0)
}

func TestTransformationLogOwnership(t *testing.T) {
	e := NewEngine(nil, nil)

	// Two runs with separate logs never share state.
	logA := NewTransformationLog()
	logB := NewTransformationLog()

	_, err := e.ProcessBatch([]models.Record{{"team": "lakers"}}, models.EntitySchedule, logA)
	require.NoError(t, err)
	_, err = e.ProcessBatch([]models.Record{{}}, models.EntitySchedule, logB)
	require.NoError(t, err)

	assert.NotEmpty(t, logA.Results())
	assert.Empty(t, logB.Results())

	logA.Clear()
	assert.Empty(t, logA.Results())
	assert.Empty(t, logA.Summary())
}

func TestSimilarity(t *testing.T) {
	assert.Equal(t, 1.0, similarity("Lakers", "lakers"))
	assert.InDelta(t, 1.0-1.0/18.0, similarity("Los Angeles Lakerz", "Los Angeles Lakers"), 1e-9)
	assert.Less(t, similarity("Heat", "Milwaukee Bucks"), 0.5)
}

func TestLoadRuleSetMissingFile(t *testing.T) {
	_, err := LoadRuleSet("/nonexistent/rules.yaml")
	assert.Error(t, err)
}

func TestDefaultRuleSetCompiled(t *testing.T) {
	rs := DefaultRuleSet()

	assert.Len(t, rs.TeamCanonical, 30)
	assert.Equal(t, defaultFuzzyThreshold, rs.FuzzyThreshold)

	// Canonical self-mapping present after compilation.
	assert.Equal(t, "Los Angeles Lakers", rs.TeamAliases["los angeles lakers"])
	assert.Equal(t, "PG", rs.Positions["pg"])
}
