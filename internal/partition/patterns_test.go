package partition

import (
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hoopstat-haus/pipeline/pkg/errors"
)

func TestGetOptimalPartitionKeyPlayerRecent(t *testing.T) {
	o := NewQueryPatternOptimizer("hoopstat-haus-gold")

	key, err := o.GetOptimalPartitionKey("player_recent_stats", PatternParams{
		Season:   "2023-24",
		EntityID: "2544",
		Date:     "2024-01-15",
	})
	require.NoError(t, err)
	assert.Equal(t,
		"s3://hoopstat-haus-gold/player_daily_stats/season=2023-24/player_id=2544/date=2024-01-15/stats.parquet",
		key.S3Path())
}

func TestGetOptimalPartitionKeyDropsUnusedParams(t *testing.T) {
	o := NewQueryPatternOptimizer("gold")

	// Season summaries never carry a date, league-wide never an entity;
	// supplied params for unused dimensions are ignored, not rejected.
	key, err := o.GetOptimalPartitionKey("team_season_summary", PatternParams{
		Season:   "2023-24",
		EntityID: "1610612747",
		Date:     "2024-01-15",
	})
	require.NoError(t, err)
	assert.Equal(t, "", key.Date)
	assert.Equal(t, TypeTeamSeason, key.PartitionType)

	key, err = o.GetOptimalPartitionKey("league_wide_comparison", PatternParams{
		Season:   "2023-24",
		EntityID: "2544",
		Date:     "2024-01-15",
	})
	require.NoError(t, err)
	assert.Equal(t, "", key.EntityID)
}

func TestGetOptimalPartitionKeyBucketOverride(t *testing.T) {
	o := NewQueryPatternOptimizer("default-bucket")

	key, err := o.GetOptimalPartitionKey("team_recent_stats", PatternParams{
		Bucket:   "override-bucket",
		Season:   "2023-24",
		EntityID: "1610612747",
		Date:     "2024-01-15",
	})
	require.NoError(t, err)
	assert.Equal(t, "override-bucket", key.Bucket)
}

func TestGetOptimalPartitionKeyUnknownPattern(t *testing.T) {
	o := NewQueryPatternOptimizer("gold")

	_, err := o.GetOptimalPartitionKey("player_career_highlights", PatternParams{Season: "2023-24"})
	require.Error(t, err)
	assert.True(t, stderrors.Is(err, errors.ErrUnknownQueryPattern))
}

func TestListQueryPatterns(t *testing.T) {
	o := NewQueryPatternOptimizer("gold")

	infos := o.ListQueryPatterns()
	require.Len(t, infos, 5)

	names := make([]string, 0, len(infos))
	for _, info := range infos {
		names = append(names, info.Name)
	}
	assert.IsIncreasing(t, names)
	assert.Contains(t, names, "player_recent_stats")
	assert.Contains(t, names, "league_wide_comparison")
}
