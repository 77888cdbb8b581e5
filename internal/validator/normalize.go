package validator

import (
	"strings"

	"github.com/hoopstat-haus/pipeline/pkg/models"
)

// The upstream statistics provider delivers the same logical entity in more
// than one wire shape: a flat JSON object (or list of objects) with
// lower-case keys, and a tabular variant carrying "resultSets" with header
// and row arrays plus upper-case stat abbreviations. Both are normalized to
// the internal schema field names before any field checks run.

// wireFieldAliases maps upstream field spellings to internal schema names.
// Keys are compared case-insensitively.
var wireFieldAliases = map[string]string{
	"pts":           "points",
	"reb":           "rebounds",
	"ast":           "assists",
	"stl":           "steals",
	"blk":           "blocks",
	"tov":           "turnovers",
	"to":            "turnovers",
	"pf":            "personal_fouls",
	"min":           "minutes",
	"fgm":           "field_goals_made",
	"fga":           "field_goals_attempted",
	"fg3m":          "three_pointers_made",
	"fg3a":          "three_pointers_attempted",
	"ftm":           "free_throws_made",
	"fta":           "free_throws_attempted",
	"fg_pct":        "field_goal_pct",
	"fg3_pct":       "three_point_pct",
	"ft_pct":        "free_throw_pct",
	"game_date_est": "game_date",
	"team_name":     "team",
	"team_abbreviation": "team",
	"player":        "player_name",
}

// collection keys recognized per entity type for the flat list shape
var collectionKeys = map[models.EntityType][]string{
	models.EntitySchedule:    {"games", "schedule"},
	models.EntityBoxScore:    {"teams", "team_stats"},
	models.EntityPlayerStats: {"players", "player_stats"},
	models.EntityTeamStats:   {"teams", "team_stats"},
}

// NormalizeResponse converts a raw payload in any recognized wire shape
// into a slice of records keyed by internal field names. The second return
// is false when the payload matches no recognized shape; the caller records
// that as a structural validation issue rather than an error.
func NormalizeResponse(raw map[string]interface{}, entity models.EntityType) ([]models.Record, bool) {
	if raw == nil {
		return nil, false
	}

	// Tabular variant: resultSets with headers + rowSet.
	if sets, ok := raw["resultSets"]; ok {
		return normalizeResultSets(sets)
	}

	// Flat list variant: a collection key holding record objects.
	for _, key := range collectionKeys[entity] {
		if items, ok := raw[key]; ok {
			return normalizeList(items)
		}
	}

	// Single flat record.
	if len(raw) > 0 {
		return []models.Record{normalizeFields(raw)}, true
	}

	return nil, false
}

func normalizeList(items interface{}) ([]models.Record, bool) {
	list, ok := items.([]interface{})
	if !ok {
		// Already-typed slices show up when records were built in-process.
		if typed, okTyped := items.([]map[string]interface{}); okTyped {
			records := make([]models.Record, 0, len(typed))
			for _, item := range typed {
				records = append(records, normalizeFields(item))
			}
			return records, true
		}
		return nil, false
	}

	records := make([]models.Record, 0, len(list))
	for _, item := range list {
		obj, okObj := item.(map[string]interface{})
		if !okObj {
			return nil, false
		}
		records = append(records, normalizeFields(obj))
	}
	return records, true
}

func normalizeResultSets(sets interface{}) ([]models.Record, bool) {
	setList, ok := sets.([]interface{})
	if !ok || len(setList) == 0 {
		return nil, false
	}

	var records []models.Record
	for _, rawSet := range setList {
		set, okSet := rawSet.(map[string]interface{})
		if !okSet {
			return nil, false
		}

		headers, okHeaders := toStringSlice(set["headers"])
		rows, okRows := set["rowSet"].([]interface{})
		if !okHeaders || !okRows {
			return nil, false
		}

		for _, rawRow := range rows {
			row, okRow := rawRow.([]interface{})
			if !okRow || len(row) != len(headers) {
				return nil, false
			}
			rec := make(models.Record, len(headers))
			for i, header := range headers {
				rec[canonicalFieldName(header)] = row[i]
			}
			records = append(records, rec)
		}
	}

	if records == nil {
		return nil, false
	}
	return records, true
}

func normalizeFields(obj map[string]interface{}) models.Record {
	rec := make(models.Record, len(obj))
	for k, v := range obj {
		rec[canonicalFieldName(k)] = v
	}
	return rec
}

func canonicalFieldName(name string) string {
	lower := strings.ToLower(strings.TrimSpace(name))
	if alias, ok := wireFieldAliases[lower]; ok {
		return alias
	}
	return lower
}

func toStringSlice(v interface{}) ([]string, bool) {
	if typed, ok := v.([]string); ok {
		return typed, true
	}
	list, ok := v.([]interface{})
	if !ok {
		return nil, false
	}
	out := make([]string, 0, len(list))
	for _, item := range list {
		s, okStr := item.(string)
		if !okStr {
			return nil, false
		}
		out = append(out, s)
	}
	return out, true
}
