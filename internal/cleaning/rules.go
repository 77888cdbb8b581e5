package cleaning

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/hoopstat-haus/pipeline/pkg/errors"
)

// OutOfBoundsPolicy selects what CleanNumericField does with a value
// outside its declared bounds.
type OutOfBoundsPolicy string

const (
	PolicyClamp  OutOfBoundsPolicy = "clamp"
	PolicyReject OutOfBoundsPolicy = "reject"
)

// NumericRule bounds one numeric field and names the out-of-bounds policy.
type NumericRule struct {
	Min           *float64          `yaml:"min"`
	Max           *float64          `yaml:"max"`
	OnOutOfBounds OutOfBoundsPolicy `yaml:"on_out_of_bounds"`
}

// RuleSet is the declarative cleaning rule table. It is loaded once at
// process start into an immutable in-memory structure; rule updates ship as
// data, not code changes.
type RuleSet struct {
	// FuzzyThreshold is the minimum similarity ([0,1]) a fuzzy team-name
	// match must reach to be accepted.
	FuzzyThreshold float64 `yaml:"fuzzy_threshold"`

	// TeamCanonical lists every canonical team name, used as the fuzzy
	// matching universe.
	TeamCanonical []string `yaml:"team_canonical"`

	// TeamAliases maps known alternate spellings (lower-cased) to the
	// canonical name.
	TeamAliases map[string]string `yaml:"team_aliases"`

	// Positions maps long-form or alternate position spellings
	// (lower-cased) to standard abbreviations.
	Positions map[string]string `yaml:"positions"`

	// NumericFields bounds string-coercible numeric fields.
	NumericFields map[string]NumericRule `yaml:"numeric_fields"`

	// DateFields are normalized to YYYY-MM-DD; DatetimeFields to RFC 3339
	// UTC.
	DateFields     []string `yaml:"date_fields"`
	DatetimeFields []string `yaml:"datetime_fields"`

	// DatetimeFormats are the known input layouts tried in order.
	DatetimeFormats []string `yaml:"datetime_formats"`

	// CountingStats default to zero when absent. RateStats are never
	// zero-filled: an absent percentage stays null rather than implying a
	// false zero rate.
	CountingStats []string `yaml:"counting_stats"`
	RateStats     []string `yaml:"rate_stats"`

	dateFieldSet     map[string]bool
	datetimeFieldSet map[string]bool
	countingSet      map[string]bool
	rateSet          map[string]bool
}

// LoadRuleSet reads a YAML rule table from disk and compiles it.
func LoadRuleSet(path string) (*RuleSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WrapError(err, errors.ErrorTypeCleaning, errors.CodeRuleSetLoadFailed,
			fmt.Sprintf("cannot read rule set %q", path))
	}

	rs := &RuleSet{}
	if err := yaml.Unmarshal(data, rs); err != nil {
		return nil, errors.WrapError(err, errors.ErrorTypeCleaning, errors.CodeRuleSetLoadFailed,
			fmt.Sprintf("cannot parse rule set %q", path))
	}

	if err := rs.compile(); err != nil {
		return nil, err
	}
	return rs, nil
}

// compile normalizes lookup keys and validates the table.
func (rs *RuleSet) compile() error {
	if rs.FuzzyThreshold < 0 || rs.FuzzyThreshold > 1 {
		return errors.NewCleaningError(errors.CodeInvalidRuleSet,
			fmt.Sprintf("fuzzy_threshold %v outside [0,1]", rs.FuzzyThreshold))
	}
	if rs.FuzzyThreshold == 0 {
		rs.FuzzyThreshold = defaultFuzzyThreshold
	}

	aliases := make(map[string]string, len(rs.TeamAliases)+len(rs.TeamCanonical))
	for k, v := range rs.TeamAliases {
		aliases[strings.ToLower(strings.TrimSpace(k))] = v
	}
	// Canonical names map to themselves so standardization is idempotent.
	for _, name := range rs.TeamCanonical {
		aliases[strings.ToLower(name)] = name
	}
	rs.TeamAliases = aliases

	positions := make(map[string]string, len(rs.Positions))
	for k, v := range rs.Positions {
		positions[strings.ToLower(strings.TrimSpace(k))] = v
	}
	// Standard abbreviations map to themselves.
	for _, abbr := range positions {
		if _, ok := positions[strings.ToLower(abbr)]; !ok {
			positions[strings.ToLower(abbr)] = abbr
		}
	}
	rs.Positions = positions

	for field, rule := range rs.NumericFields {
		switch rule.OnOutOfBounds {
		case PolicyClamp, PolicyReject:
		case "":
			rule.OnOutOfBounds = PolicyClamp
			rs.NumericFields[field] = rule
		default:
			return errors.NewCleaningError(errors.CodeInvalidRuleSet,
				fmt.Sprintf("field %q has unknown out-of-bounds policy %q", field, rule.OnOutOfBounds))
		}
	}

	rs.dateFieldSet = toSet(rs.DateFields)
	rs.datetimeFieldSet = toSet(rs.DatetimeFields)
	rs.countingSet = toSet(rs.CountingStats)
	rs.rateSet = toSet(rs.RateStats)

	return nil
}

func toSet(items []string) map[string]bool {
	set := make(map[string]bool, len(items))
	for _, item := range items {
		set[item] = true
	}
	return set
}

const defaultFuzzyThreshold = 0.85

// DefaultRuleSet returns the built-in rule table, mirroring
// configs/cleaning_rules.yaml. It is compiled and ready to use.
func DefaultRuleSet() *RuleSet {
	f := func(v float64) *float64 { return &v }

	rs := &RuleSet{
		FuzzyThreshold: defaultFuzzyThreshold,
		TeamCanonical: []string{
			"Atlanta Hawks", "Boston Celtics", "Brooklyn Nets", "Charlotte Hornets",
			"Chicago Bulls", "Cleveland Cavaliers", "Dallas Mavericks", "Denver Nuggets",
			"Detroit Pistons", "Golden State Warriors", "Houston Rockets", "Indiana Pacers",
			"Los Angeles Clippers", "Los Angeles Lakers", "Memphis Grizzlies", "Miami Heat",
			"Milwaukee Bucks", "Minnesota Timberwolves", "New Orleans Pelicans", "New York Knicks",
			"Oklahoma City Thunder", "Orlando Magic", "Philadelphia 76ers", "Phoenix Suns",
			"Portland Trail Blazers", "Sacramento Kings", "San Antonio Spurs", "Toronto Raptors",
			"Utah Jazz", "Washington Wizards",
		},
		TeamAliases: map[string]string{
			"hawks":         "Atlanta Hawks",
			"celtics":       "Boston Celtics",
			"nets":          "Brooklyn Nets",
			"hornets":       "Charlotte Hornets",
			"bulls":         "Chicago Bulls",
			"cavaliers":     "Cleveland Cavaliers",
			"cavs":          "Cleveland Cavaliers",
			"mavericks":     "Dallas Mavericks",
			"mavs":          "Dallas Mavericks",
			"nuggets":       "Denver Nuggets",
			"pistons":       "Detroit Pistons",
			"warriors":      "Golden State Warriors",
			"rockets":       "Houston Rockets",
			"pacers":        "Indiana Pacers",
			"clippers":      "Los Angeles Clippers",
			"la clippers":   "Los Angeles Clippers",
			"lakers":        "Los Angeles Lakers",
			"la lakers":     "Los Angeles Lakers",
			"grizzlies":     "Memphis Grizzlies",
			"heat":          "Miami Heat",
			"bucks":         "Milwaukee Bucks",
			"timberwolves":  "Minnesota Timberwolves",
			"wolves":        "Minnesota Timberwolves",
			"pelicans":      "New Orleans Pelicans",
			"knicks":        "New York Knicks",
			"thunder":       "Oklahoma City Thunder",
			"magic":         "Orlando Magic",
			"76ers":         "Philadelphia 76ers",
			"sixers":        "Philadelphia 76ers",
			"suns":          "Phoenix Suns",
			"trail blazers": "Portland Trail Blazers",
			"blazers":       "Portland Trail Blazers",
			"kings":         "Sacramento Kings",
			"spurs":         "San Antonio Spurs",
			"raptors":       "Toronto Raptors",
			"jazz":          "Utah Jazz",
			"wizards":       "Washington Wizards",
		},
		Positions: map[string]string{
			"point guard":    "PG",
			"shooting guard": "SG",
			"small forward":  "SF",
			"power forward":  "PF",
			"center":         "C",
			"guard":          "G",
			"forward":        "F",
			"guard-forward":  "G-F",
			"forward-guard":  "G-F",
			"forward-center": "F-C",
			"center-forward": "F-C",
		},
		NumericFields: map[string]NumericRule{
			"minutes":                  {Min: f(0), Max: f(96), OnOutOfBounds: PolicyClamp},
			"points":                   {Min: f(0), Max: f(200), OnOutOfBounds: PolicyReject},
			"rebounds":                 {Min: f(0), Max: f(100), OnOutOfBounds: PolicyReject},
			"assists":                  {Min: f(0), Max: f(100), OnOutOfBounds: PolicyReject},
			"steals":                   {Min: f(0), Max: f(50), OnOutOfBounds: PolicyReject},
			"blocks":                   {Min: f(0), Max: f(50), OnOutOfBounds: PolicyReject},
			"turnovers":                {Min: f(0), Max: f(50), OnOutOfBounds: PolicyReject},
			"personal_fouls":           {Min: f(0), Max: f(10), OnOutOfBounds: PolicyClamp},
			"field_goals_made":         {Min: f(0), Max: f(100), OnOutOfBounds: PolicyReject},
			"field_goals_attempted":    {Min: f(0), Max: f(150), OnOutOfBounds: PolicyReject},
			"three_pointers_made":      {Min: f(0), Max: f(50), OnOutOfBounds: PolicyReject},
			"three_pointers_attempted": {Min: f(0), Max: f(100), OnOutOfBounds: PolicyReject},
			"free_throws_made":         {Min: f(0), Max: f(100), OnOutOfBounds: PolicyReject},
			"free_throws_attempted":    {Min: f(0), Max: f(100), OnOutOfBounds: PolicyReject},
			"field_goal_pct":           {Min: f(0), Max: f(1), OnOutOfBounds: PolicyClamp},
			"three_point_pct":          {Min: f(0), Max: f(1), OnOutOfBounds: PolicyClamp},
			"free_throw_pct":           {Min: f(0), Max: f(1), OnOutOfBounds: PolicyClamp},
			"home_score":               {Min: f(0), Max: f(300), OnOutOfBounds: PolicyReject},
			"away_score":               {Min: f(0), Max: f(300), OnOutOfBounds: PolicyReject},
		},
		DateFields:     []string{"game_date"},
		DatetimeFields: []string{"game_time", "tipoff", "updated_at"},
		DatetimeFormats: []string{
			"2006-01-02T15:04:05Z07:00",
			"2006-01-02 15:04:05",
			"2006-01-02",
			"01/02/2006",
			"01/02/2006 15:04",
			"Jan 2, 2006",
			"January 2, 2006",
			"20060102",
		},
		CountingStats: []string{
			"points", "rebounds", "assists", "steals", "blocks", "turnovers",
			"personal_fouls", "field_goals_made", "field_goals_attempted",
			"three_pointers_made", "three_pointers_attempted",
			"free_throws_made", "free_throws_attempted",
		},
		RateStats: []string{"field_goal_pct", "three_point_pct", "free_throw_pct"},
	}

	if err := rs.compile(); err != nil {
		// The built-in table is fixed at compile time; failing to compile
		// it is a programming error.
		panic(err)
	}
	return rs
}
