package partition

import (
	stderrors "errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hoopstat-haus/pipeline/pkg/errors"
)

func TestNewKeyPlayerDailyPath(t *testing.T) {
	key, err := NewKey("hoopstat-haus-gold", TypePlayerDaily, "2023-24", "2544", "2024-01-15", "stats.parquet")
	require.NoError(t, err)

	assert.Equal(t,
		"s3://hoopstat-haus-gold/player_daily_stats/season=2023-24/player_id=2544/date=2024-01-15/stats.parquet",
		key.S3Path())
	assert.Equal(t,
		"player_daily_stats/season=2023-24/player_id=2544/date=2024-01-15/stats.parquet",
		key.StorageKey())
	assert.Equal(t,
		"player_daily_stats/season=2023-24/player_id=2544/date=2024-01-15",
		key.S3Prefix())
}

func TestNewKeyDefaultFilename(t *testing.T) {
	key, err := NewKey("bucket", TypePlayerDaily, "2023-24", "2544", "2024-01-15", "")
	require.NoError(t, err)
	assert.Equal(t, DefaultFilename, key.Filename)
}

func TestNewKeySeasonLevelOmitsDate(t *testing.T) {
	key, err := NewKey("bucket", TypePlayerSeason, "2023-24", "2544", "", "summary.parquet")
	require.NoError(t, err)
	assert.Equal(t,
		"s3://bucket/player_season_stats/season=2023-24/player_id=2544/summary.parquet",
		key.S3Path())
}

func TestNewKeyLeagueDailyOmitsEntity(t *testing.T) {
	key, err := NewKey("bucket", TypeLeagueDaily, "2023-24", "", "2024-01-15", "")
	require.NoError(t, err)
	assert.Equal(t,
		"s3://bucket/league_daily_stats/season=2023-24/date=2024-01-15/stats.parquet",
		key.S3Path())
}

func TestNewKeyValidationFailures(t *testing.T) {
	tests := []struct {
		name     string
		bucket   string
		ptype    Type
		season   string
		entityID string
		date     string
	}{
		{"unknown type", "b", Type("hourly"), "2023-24", "1", "2024-01-15"},
		{"empty bucket", "", TypePlayerDaily, "2023-24", "1", "2024-01-15"},
		{"season wrong shape", "b", TypePlayerDaily, "2023-2024", "1", "2024-01-15"},
		{"season years not consecutive", "b", TypePlayerDaily, "2023-25", "1", "2024-01-15"},
		{"missing entity", "b", TypePlayerDaily, "2023-24", "", "2024-01-15"},
		{"missing date", "b", TypePlayerDaily, "2023-24", "1", ""},
		{"bad date", "b", TypePlayerDaily, "2023-24", "1", "01/15/2024"},
		{"date on season-level type", "b", TypePlayerSeason, "2023-24", "1", "2024-01-15"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewKey(tt.bucket, tt.ptype, tt.season, tt.entityID, tt.date, "")
			require.Error(t, err)
			assert.True(t, stderrors.Is(err, errors.ErrMalformedPartitionKey))
		})
	}
}

func TestValidateSeason(t *testing.T) {
	assert.NoError(t, ValidateSeason("2023-24"))
	assert.NoError(t, ValidateSeason("1999-00")) // century rollover
	assert.Error(t, ValidateSeason("2023-2024"))
	assert.Error(t, ValidateSeason("2023-23"))
	assert.Error(t, ValidateSeason("23-24"))
}

func TestLocalPath(t *testing.T) {
	key, err := NewKey("gold", TypeTeamDaily, "2023-24", "1610612747", "2024-01-15", "stats.parquet")
	require.NoError(t, err)

	want := filepath.Join("gold", "team_daily_stats", "season=2023-24",
		"team_id=1610612747", "date=2024-01-15", "stats.parquet")
	assert.Equal(t, want, key.LocalPath())
}

func TestKeyDeterministic(t *testing.T) {
	a, err := NewKey("b", TypeTeamDaily, "2023-24", "42", "2024-01-15", "")
	require.NoError(t, err)
	b, err := NewKey("b", TypeTeamDaily, "2023-24", "42", "2024-01-15", "")
	require.NoError(t, err)
	assert.Equal(t, a.S3Path(), b.S3Path())
}
