package partition

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/hoopstat-haus/pipeline/pkg/errors"
)

// Type names a partition layout in the Gold storage layer.
type Type string

const (
	TypePlayerDaily  Type = "player_daily"
	TypePlayerSeason Type = "player_season"
	TypeTeamDaily    Type = "team_daily"
	TypeTeamSeason   Type = "team_season"
	TypeLeagueDaily  Type = "league_daily"
)

// typeSpec fixes the path segment, entity label, and field requirements for
// one partition type. Season-level summaries omit the date; league-wide
// layouts omit the entity.
type typeSpec struct {
	segment       string
	entityLabel   string
	requiresDate  bool
	requiresEntity bool
}

var typeSpecs = map[Type]typeSpec{
	TypePlayerDaily:  {segment: "player_daily_stats", entityLabel: "player_id", requiresDate: true, requiresEntity: true},
	TypePlayerSeason: {segment: "player_season_stats", entityLabel: "player_id", requiresEntity: true},
	TypeTeamDaily:    {segment: "team_daily_stats", entityLabel: "team_id", requiresDate: true, requiresEntity: true},
	TypeTeamSeason:   {segment: "team_season_stats", entityLabel: "team_id", requiresEntity: true},
	TypeLeagueDaily:  {segment: "league_daily_stats", requiresDate: true},
}

// DefaultFilename is used when the caller does not name the output file.
const DefaultFilename = "stats.parquet"

var seasonPattern = regexp.MustCompile(`^\d{4}-\d{2}$`)

// Key is a deterministic storage location derived from semantic attributes.
// Construction validates season and date formats immediately: a malformed
// key fails fast at creation, never at write time.
type Key struct {
	Bucket        string `json:"bucket"`
	PartitionType Type   `json:"partition_type"`
	Season        string `json:"season"`
	EntityID      string `json:"entity_id,omitempty"`
	Date          string `json:"date,omitempty"`
	Filename      string `json:"filename"`
}

// NewKey builds and validates a partition key. entityID and date may be
// empty only when the partition type omits them.
func NewKey(bucket string, partitionType Type, season, entityID, date, filename string) (*Key, error) {
	spec, ok := typeSpecs[partitionType]
	if !ok {
		return nil, errors.WrapError(errors.ErrMalformedPartitionKey, errors.ErrorTypePartition,
			errors.CodeUnknownPartitionType, fmt.Sprintf("unknown partition type %q", partitionType))
	}

	if bucket == "" {
		return nil, errors.WrapError(errors.ErrMalformedPartitionKey, errors.ErrorTypePartition,
			errors.CodeInvalidInput, "bucket is required")
	}

	if err := ValidateSeason(season); err != nil {
		return nil, err
	}

	if spec.requiresEntity && entityID == "" {
		return nil, errors.WrapError(errors.ErrMalformedPartitionKey, errors.ErrorTypePartition,
			errors.CodeMissingEntityID, fmt.Sprintf("partition type %q requires an entity id", partitionType))
	}

	if spec.requiresDate {
		if err := ValidateDate(date); err != nil {
			return nil, err
		}
	} else if date != "" {
		return nil, errors.WrapError(errors.ErrMalformedPartitionKey, errors.ErrorTypePartition,
			errors.CodeInvalidDate, fmt.Sprintf("partition type %q does not take a date", partitionType))
	}

	if filename == "" {
		filename = DefaultFilename
	}

	return &Key{
		Bucket:        bucket,
		PartitionType: partitionType,
		Season:        season,
		EntityID:      entityID,
		Date:          date,
		Filename:      filename,
	}, nil
}

// ValidateSeason checks the YYYY-YY season form, including that the
// two-digit trailing year follows the leading year.
func ValidateSeason(season string) error {
	if !seasonPattern.MatchString(season) {
		return errors.WrapError(errors.ErrMalformedPartitionKey, errors.ErrorTypePartition,
			errors.CodeInvalidSeason, fmt.Sprintf("season %q does not match YYYY-YY", season))
	}
	start, _ := strconv.Atoi(season[:4])
	end, _ := strconv.Atoi(season[5:])
	if (start+1)%100 != end {
		return errors.WrapError(errors.ErrMalformedPartitionKey, errors.ErrorTypePartition,
			errors.CodeInvalidSeason, fmt.Sprintf("season %q years are not consecutive", season))
	}
	return nil
}

// ValidateDate checks the ISO YYYY-MM-DD date form.
func ValidateDate(date string) error {
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return errors.WrapError(errors.ErrMalformedPartitionKey, errors.ErrorTypePartition,
			errors.CodeInvalidDate, fmt.Sprintf("date %q is not YYYY-MM-DD", date))
	}
	return nil
}

// segments returns the ordered path segments under the bucket, excluding
// the filename.
func (k *Key) segments() []string {
	spec := typeSpecs[k.PartitionType]
	parts := []string{spec.segment, "season=" + k.Season}
	if k.EntityID != "" {
		parts = append(parts, spec.entityLabel+"="+k.EntityID)
	}
	if k.Date != "" {
		parts = append(parts, "date="+k.Date)
	}
	return parts
}

// S3Prefix returns the partition prefix under the bucket, without the
// filename. Pure and deterministic: same key, same prefix.
func (k *Key) S3Prefix() string {
	return strings.Join(k.segments(), "/")
}

// StorageKey returns the object key within the bucket, including the
// filename.
func (k *Key) StorageKey() string {
	return k.S3Prefix() + "/" + k.Filename
}

// S3Path returns the full s3:// URI for the key.
func (k *Key) S3Path() string {
	return fmt.Sprintf("s3://%s/%s", k.Bucket, k.StorageKey())
}

// LocalPath returns the filesystem equivalent of the key, rooted at the
// bucket directory.
func (k *Key) LocalPath() string {
	parts := append([]string{k.Bucket}, k.segments()...)
	parts = append(parts, k.Filename)
	return filepath.Join(parts...)
}
