package schema

import (
	"github.com/hoopstat-haus/pipeline/pkg/models"
)

func f(v float64) *float64 { return &v }

// Shared stat field specs. Counting stats carry plausibility ranges; rate
// stats are bounded to [0, 1] and flagged so the cleaning engine never
// zero-fills them.
func statFields() map[string]FieldSpec {
	return map[string]FieldSpec{
		"minutes":                 {Type: FieldNumber, Min: f(0), Max: f(96)},
		"points":                  {Type: FieldNumber, Min: f(0), Max: f(200), Critical: true},
		"rebounds":                {Type: FieldNumber, Min: f(0), Max: f(100), Critical: true},
		"assists":                 {Type: FieldNumber, Min: f(0), Max: f(100), Critical: true},
		"steals":                  {Type: FieldNumber, Min: f(0), Max: f(50)},
		"blocks":                  {Type: FieldNumber, Min: f(0), Max: f(50)},
		"turnovers":               {Type: FieldNumber, Min: f(0), Max: f(50)},
		"personal_fouls":          {Type: FieldNumber, Min: f(0), Max: f(10)},
		"field_goals_made":        {Type: FieldNumber, Min: f(0), Max: f(100)},
		"field_goals_attempted":   {Type: FieldNumber, Min: f(0), Max: f(150)},
		"three_pointers_made":     {Type: FieldNumber, Min: f(0), Max: f(50)},
		"three_pointers_attempted": {Type: FieldNumber, Min: f(0), Max: f(100)},
		"free_throws_made":        {Type: FieldNumber, Min: f(0), Max: f(100)},
		"free_throws_attempted":   {Type: FieldNumber, Min: f(0), Max: f(100)},
		"field_goal_pct":          {Type: FieldNumber, Min: f(0), Max: f(1), Rate: true},
		"three_point_pct":         {Type: FieldNumber, Min: f(0), Max: f(1), Rate: true},
		"free_throw_pct":          {Type: FieldNumber, Min: f(0), Max: f(1), Rate: true},
	}
}

func merge(dst, src map[string]FieldSpec) map[string]FieldSpec {
	for k, v := range src {
		dst[k] = v
	}
	return dst
}

func builtinSchemas() []*Schema {
	return []*Schema{
		{
			Entity:  models.EntityPlayerStats,
			Version: models.CurrentSchemaVersion,
			Fields: merge(map[string]FieldSpec{
				"player_id":   {Type: FieldString, Required: true, Identity: true},
				"player_name": {Type: FieldString, Required: true},
				"team":        {Type: FieldString, Required: true},
				"position":    {Type: FieldString},
				"game_id":     {Type: FieldString, Required: true, Identity: true},
				"game_date":   {Type: FieldDate, Required: true},
				"season":      {Type: FieldString},
			}, statFields()),
		},
		{
			Entity:  models.EntityTeamStats,
			Version: models.CurrentSchemaVersion,
			Fields: merge(map[string]FieldSpec{
				"team_id":   {Type: FieldString, Required: true, Identity: true},
				"team":      {Type: FieldString, Required: true},
				"game_id":   {Type: FieldString, Required: true, Identity: true},
				"game_date": {Type: FieldDate, Required: true},
				"season":    {Type: FieldString},
			}, statFields()),
		},
		{
			Entity:  models.EntitySchedule,
			Version: models.CurrentSchemaVersion,
			Fields: map[string]FieldSpec{
				"game_id":    {Type: FieldString, Required: true, Identity: true},
				"game_date":  {Type: FieldDate, Required: true},
				"season":     {Type: FieldString},
				"home_team":  {Type: FieldString, Required: true},
				"away_team":  {Type: FieldString, Required: true},
				"home_score": {Type: FieldNumber, Min: f(0), Max: f(300)},
				"away_score": {Type: FieldNumber, Min: f(0), Max: f(300)},
				"status":     {Type: FieldString},
				"arena":      {Type: FieldString},
			},
		},
		{
			Entity:  models.EntityBoxScore,
			Version: models.CurrentSchemaVersion,
			Fields: merge(map[string]FieldSpec{
				"game_id":   {Type: FieldString, Required: true, Identity: true},
				"team_id":   {Type: FieldString, Required: true, Identity: true},
				"team":      {Type: FieldString},
				"game_date": {Type: FieldDate, Required: true},
				"season":    {Type: FieldString},
			}, statFields()),
		},
	}
}

// registerBuiltinMigrations wires the known version steps. The 0.9.0
// payloads used abbreviated stat keys; 1.0.0 spells them out.
func (r *Registry) registerBuiltinMigrations() {
	renames := map[string]string{
		"pts":    "points",
		"reb":    "rebounds",
		"ast":    "assists",
		"stl":    "steals",
		"blk":    "blocks",
		"tov":    "turnovers",
		"pf":     "personal_fouls",
		"fgm":    "field_goals_made",
		"fga":    "field_goals_attempted",
		"fg3m":   "three_pointers_made",
		"fg3a":   "three_pointers_attempted",
		"ftm":    "free_throws_made",
		"fta":    "free_throws_attempted",
		"fg_pct": "field_goal_pct",
	}

	renameFields := func(data models.Record) (models.Record, error) {
		out := data.Clone()
		for from, to := range renames {
			if v, ok := out[from]; ok {
				out[to] = v
				delete(out, from)
			}
		}
		return out, nil
	}

	for _, entity := range []models.EntityType{models.EntityPlayerStats, models.EntityTeamStats, models.EntityBoxScore} {
		r.RegisterMigration(entity, "0.9.0", "1.0.0", renameFields)
	}
}
