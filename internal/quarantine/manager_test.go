package quarantine

import (
	"context"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hoopstat-haus/pipeline/pkg/errors"
	"github.com/hoopstat-haus/pipeline/pkg/models"
)

// memStore is a minimal in-memory ObjectStore for tests.
type memStore struct {
	objects map[string][]byte
	failPut bool
}

func newMemStore() *memStore {
	return &memStore{objects: make(map[string][]byte)}
}

func (s *memStore) Put(ctx context.Context, key string, data []byte) error {
	if s.failPut {
		return errors.NewStorageError(errors.CodeWriteFailed, "simulated write failure")
	}
	s.objects[key] = append([]byte(nil), data...)
	return nil
}

func (s *memStore) Get(ctx context.Context, key string) ([]byte, error) {
	data, ok := s.objects[key]
	if !ok {
		return nil, errors.WrapError(errors.ErrObjectNotFound, errors.ErrorTypeStorage,
			errors.CodeObjectNotFound, "not found")
	}
	return data, nil
}

func (s *memStore) List(ctx context.Context, prefix string) ([]string, error) {
	var keys []string
	for key := range s.objects {
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	return keys, nil
}

func (s *memStore) Delete(ctx context.Context, key string) error {
	delete(s.objects, key)
	return nil
}

func (s *memStore) Ping(ctx context.Context) error { return nil }
func (s *memStore) Close() error                   { return nil }

func failedResult() *models.ValidationResult {
	result := &models.ValidationResult{Valid: false, Mode: models.ModeStrict}
	result.AddIssue(models.SeverityError, "field_goals_made", "INCONSISTENT_STATS",
		"field_goals_made exceeds field_goals_attempted")
	return result
}

func TestNewManagerRequiresStore(t *testing.T) {
	_, err := NewManager(nil, nil)
	assert.Error(t, err)
}

func TestQuarantineDataKeyFormat(t *testing.T) {
	store := newMemStore()
	m, err := NewManager(store, nil)
	require.NoError(t, err)

	key, err := m.QuarantineData(context.Background(), models.Record{"game_id": "001"},
		failedResult(), models.EntityBoxScore, "2024-01-15")
	require.NoError(t, err)

	pattern := regexp.MustCompile(
		`^quarantine/year=2024/month=01/day=15/box_score/quarantine_\d{8}T\d{6}_[0-9a-f]{8}\.json$`)
	assert.Regexp(t, pattern, key)
	assert.Contains(t, store.objects, key)
}

func TestQuarantineDataKeysAreUnique(t *testing.T) {
	store := newMemStore()
	m, err := NewManager(store, nil)
	require.NoError(t, err)

	// Freeze the clock: uniqueness must hold even within one second.
	fixed := time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return fixed }

	rec := models.Record{"game_id": "001"}
	keyA, err := m.QuarantineData(context.Background(), rec, failedResult(), models.EntityBoxScore, "2024-01-15")
	require.NoError(t, err)
	keyB, err := m.QuarantineData(context.Background(), rec, failedResult(), models.EntityBoxScore, "2024-01-15")
	require.NoError(t, err)

	assert.NotEqual(t, keyA, keyB)
	assert.Len(t, store.objects, 2)
}

func TestQuarantineDataBadDateFallsBackToNow(t *testing.T) {
	store := newMemStore()
	m, err := NewManager(store, nil)
	require.NoError(t, err)

	fixed := time.Date(2024, 3, 2, 8, 30, 0, 0, time.UTC)
	m.now = func() time.Time { return fixed }

	key, err := m.QuarantineData(context.Background(), models.Record{},
		failedResult(), models.EntityPlayerStats, "not-a-date")
	require.NoError(t, err)
	assert.Contains(t, key, "quarantine/year=2024/month=03/day=02/player_stats/")
}

func TestQuarantineDataStoreFailure(t *testing.T) {
	store := newMemStore()
	store.failPut = true
	m, err := NewManager(store, nil)
	require.NoError(t, err)

	_, err = m.QuarantineData(context.Background(), models.Record{},
		failedResult(), models.EntityBoxScore, "2024-01-15")
	require.Error(t, err)

	var appErr *errors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, errors.CodeQuarantineWriteFailed, appErr.Code)
}

func TestListQuarantinedData(t *testing.T) {
	store := newMemStore()
	m, err := NewManager(store, nil)
	require.NoError(t, err)

	ctx := context.Background()
	rec := models.Record{"game_id": "001", "team_id": "1610612747"}
	_, err = m.QuarantineData(ctx, rec, failedResult(), models.EntityBoxScore, "2024-01-15")
	require.NoError(t, err)
	_, err = m.QuarantineData(ctx, rec, failedResult(), models.EntityBoxScore, "2024-01-15")
	require.NoError(t, err)

	// Other dates and types stay out of the listing.
	_, err = m.QuarantineData(ctx, rec, failedResult(), models.EntityBoxScore, "2024-01-16")
	require.NoError(t, err)
	_, err = m.QuarantineData(ctx, rec, failedResult(), models.EntityPlayerStats, "2024-01-15")
	require.NoError(t, err)

	entries, err := m.ListQuarantinedData(ctx, "2024-01-15", models.EntityBoxScore)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	for _, entry := range entries {
		assert.Equal(t, models.EntityBoxScore, entry.DataType)
		assert.Equal(t, "2024-01-15", entry.TargetDate)
		assert.Equal(t, "001", entry.Data["game_id"])
		assert.False(t, entry.ValidationResult.Valid)
	}
}

func TestListQuarantinedDataSkipsCorruptEntries(t *testing.T) {
	store := newMemStore()
	m, err := NewManager(store, nil)
	require.NoError(t, err)

	ctx := context.Background()
	_, err = m.QuarantineData(ctx, models.Record{"game_id": "001"},
		failedResult(), models.EntityBoxScore, "2024-01-15")
	require.NoError(t, err)

	store.objects["quarantine/year=2024/month=01/day=15/box_score/quarantine_garbage.json"] = []byte("{not json")

	entries, err := m.ListQuarantinedData(ctx, "2024-01-15", models.EntityBoxScore)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestListQuarantinedDataBadDate(t *testing.T) {
	m, err := NewManager(newMemStore(), nil)
	require.NoError(t, err)

	_, err = m.ListQuarantinedData(context.Background(), "yesterday", models.EntityBoxScore)
	assert.Error(t, err)
}
