package schema

import (
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hoopstat-haus/pipeline/pkg/errors"
	"github.com/hoopstat-haus/pipeline/pkg/models"
)

func TestGetSchema(t *testing.T) {
	r := NewRegistry(nil)

	for _, entity := range models.ValidEntityTypes() {
		s, err := r.GetSchema(entity)
		require.NoError(t, err)
		assert.Equal(t, entity, s.Entity)
		assert.Equal(t, models.CurrentSchemaVersion, s.Version)
		assert.NotEmpty(t, s.Fields)
	}
}

func TestGetSchemaUnknownEntity(t *testing.T) {
	r := NewRegistry(nil)

	_, err := r.GetSchema(models.EntityType("coaching_staff"))
	require.Error(t, err)

	var appErr *errors.AppError
	require.True(t, stderrors.As(err, &appErr))
	assert.Equal(t, errors.CodeUnknownEntity, appErr.Code)
}

func TestMigrateFromVersionRenamesAbbreviatedFields(t *testing.T) {
	r := NewRegistry(nil)

	old := models.Record{
		"player_id": "2544",
		"game_id":   "0022300500",
		"pts":       30.0,
		"reb":       8.0,
		"ast":       9.0,
		"fgm":       11.0,
		"fga":       20.0,
	}

	migrated, err := r.MigrateFromVersion(old, models.EntityPlayerStats, "0.9.0", "1.0.0")
	require.NoError(t, err)

	assert.Equal(t, 30.0, migrated["points"])
	assert.Equal(t, 8.0, migrated["rebounds"])
	assert.Equal(t, 9.0, migrated["assists"])
	assert.Equal(t, 11.0, migrated["field_goals_made"])
	assert.Equal(t, 20.0, migrated["field_goals_attempted"])
	assert.NotContains(t, migrated, "pts")
	assert.NotContains(t, migrated, "fgm")

	// Identity fields pass through untouched.
	assert.Equal(t, "2544", migrated["player_id"])

	// The input is never mutated.
	assert.Equal(t, 30.0, old["pts"])
	assert.NotContains(t, old, "points")
}

func TestMigrateFromVersionSameVersion(t *testing.T) {
	r := NewRegistry(nil)

	rec := models.Record{"player_id": "2544", "points": 30.0}
	out, err := r.MigrateFromVersion(rec, models.EntityPlayerStats, "1.0.0", "1.0.0")
	require.NoError(t, err)
	assert.Equal(t, rec, out)

	// Same-version migration still returns a copy.
	out["points"] = 99.0
	assert.Equal(t, 30.0, rec["points"])
}

func TestMigrateFromVersionNoPath(t *testing.T) {
	r := NewRegistry(nil)

	_, err := r.MigrateFromVersion(models.Record{}, models.EntityPlayerStats, "0.5.0", "1.0.0")
	require.Error(t, err)
	assert.True(t, stderrors.Is(err, errors.ErrUnsupportedMigration))
}

func TestMigrateFromVersionChainsSteps(t *testing.T) {
	r := NewRegistry(nil)

	require.NoError(t, r.RegisterMigration(models.EntityPlayerStats, "0.8.0", "0.9.0",
		func(data models.Record) (models.Record, error) {
			out := data.Clone()
			if v, ok := out["p"]; ok {
				out["pts"] = v
				delete(out, "p")
			}
			return out, nil
		}))

	migrated, err := r.MigrateFromVersion(models.Record{"p": 12.0}, models.EntityPlayerStats, "0.8.0", "1.0.0")
	require.NoError(t, err)
	assert.Equal(t, 12.0, migrated["points"])
	assert.NotContains(t, migrated, "p")
	assert.NotContains(t, migrated, "pts")
}

func TestRegisterMigrationNilFunc(t *testing.T) {
	r := NewRegistry(nil)
	err := r.RegisterMigration(models.EntityPlayerStats, "0.9.0", "1.0.0", nil)
	assert.Error(t, err)
}

func TestGenerateSchema(t *testing.T) {
	r := NewRegistry(nil)

	doc, err := r.GenerateSchema(models.EntityPlayerStats)
	require.NoError(t, err)

	assert.Equal(t, models.EntityPlayerStats, doc.Entity)
	assert.Equal(t, models.CurrentSchemaVersion, doc.Version)
	assert.Contains(t, doc.RequiredFields, "player_id")
	assert.Contains(t, doc.RequiredFields, "game_id")
	assert.Contains(t, doc.RequiredFields, "game_date")
	assert.Contains(t, doc.OptionalFields, "points")
	assert.Equal(t, []string{"game_id", "player_id"}, doc.IdentityFields)
	assert.Equal(t, []string{"assists", "points", "rebounds"}, doc.CriticalFields)

	assert.IsIncreasing(t, doc.RequiredFields)
	assert.IsIncreasing(t, doc.OptionalFields)

	pts, ok := doc.Constraints["points"]
	require.True(t, ok)
	assert.Equal(t, FieldNumber, pts.Type)
	require.NotNil(t, pts.Max)
	assert.Equal(t, 200.0, *pts.Max)

	pct, ok := doc.Constraints["field_goal_pct"]
	require.True(t, ok)
	assert.True(t, pct.Rate)
}

func TestGenerateSchemaUnknownEntity(t *testing.T) {
	r := NewRegistry(nil)
	_, err := r.GenerateSchema(models.EntityType("mascots"))
	assert.Error(t, err)
}
