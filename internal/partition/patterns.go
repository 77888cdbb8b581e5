package partition

import (
	"fmt"
	"sort"

	"github.com/hoopstat-haus/pipeline/pkg/errors"
)

// PatternParams are the semantic attributes a query pattern may require.
type PatternParams struct {
	Bucket   string
	Season   string
	EntityID string
	Date     string
	Filename string
}

// patternSpec fixes the canonical key shape for one named access pattern.
type patternSpec struct {
	description   string
	partitionType Type
	needsEntity   bool
	needsDate     bool
}

// The fixed table of named access patterns. Requesting a pattern outside
// this table is a configuration error and raises.
var queryPatterns = map[string]patternSpec{
	"player_recent_stats": {
		description:   "single player's stats for one game date",
		partitionType: TypePlayerDaily,
		needsEntity:   true,
		needsDate:     true,
	},
	"player_season_summary": {
		description:   "single player's season-level summary",
		partitionType: TypePlayerSeason,
		needsEntity:   true,
	},
	"team_recent_stats": {
		description:   "single team's stats for one game date",
		partitionType: TypeTeamDaily,
		needsEntity:   true,
		needsDate:     true,
	},
	"team_season_summary": {
		description:   "single team's season-level summary",
		partitionType: TypeTeamSeason,
		needsEntity:   true,
	},
	"league_wide_comparison": {
		description:   "league-wide stats for one game date, across all entities",
		partitionType: TypeLeagueDaily,
		needsDate:     true,
	},
}

// QueryPatternOptimizer maps named access patterns to canonical partition
// key shapes so callers never hand-build hot-path keys.
type QueryPatternOptimizer struct {
	defaultBucket string
}

// NewQueryPatternOptimizer creates an optimizer that fills in the given
// bucket when the caller does not override it.
func NewQueryPatternOptimizer(defaultBucket string) *QueryPatternOptimizer {
	return &QueryPatternOptimizer{defaultBucket: defaultBucket}
}

// GetOptimalPartitionKey builds the canonical key for a named pattern.
// Unknown patterns raise ErrUnknownQueryPattern: that is a misconfigured
// pipeline, not bad input data.
func (o *QueryPatternOptimizer) GetOptimalPartitionKey(patternName string, params PatternParams) (*Key, error) {
	spec, ok := queryPatterns[patternName]
	if !ok {
		return nil, errors.WrapError(errors.ErrUnknownQueryPattern, errors.ErrorTypePartition,
			errors.CodeUnknownQueryPattern, fmt.Sprintf("query pattern %q is not registered", patternName))
	}

	bucket := params.Bucket
	if bucket == "" {
		bucket = o.defaultBucket
	}

	entityID := params.EntityID
	if !spec.needsEntity {
		entityID = ""
	}
	date := params.Date
	if !spec.needsDate {
		date = ""
	}

	return NewKey(bucket, spec.partitionType, params.Season, entityID, date, params.Filename)
}

// PatternInfo describes one registered query pattern.
type PatternInfo struct {
	Name          string `json:"name"`
	Description   string `json:"description"`
	PartitionType Type   `json:"partition_type"`
	NeedsEntityID bool   `json:"needs_entity_id"`
	NeedsDate     bool   `json:"needs_date"`
}

// ListQueryPatterns enumerates the pattern table for discoverability.
func (o *QueryPatternOptimizer) ListQueryPatterns() []PatternInfo {
	infos := make([]PatternInfo, 0, len(queryPatterns))
	for name, spec := range queryPatterns {
		infos = append(infos, PatternInfo{
			Name:          name,
			Description:   spec.description,
			PartitionType: spec.partitionType,
			NeedsEntityID: spec.needsEntity,
			NeedsDate:     spec.needsDate,
		})
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })
	return infos
}
