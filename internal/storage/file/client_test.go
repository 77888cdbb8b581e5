package file

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hoopstat-haus/pipeline/pkg/errors"
)

func TestNewStoreRequiresRoot(t *testing.T) {
	_, err := NewStore("", nil)
	assert.Error(t, err)
}

func TestPutGetRoundtrip(t *testing.T) {
	store, err := NewStore(t.TempDir(), nil)
	require.NoError(t, err)
	ctx := context.Background()

	key := "player_daily_stats/season=2023-24/player_id=2544/date=2024-01-15/stats.json"
	payload := []byte(`{"points":25}`)

	require.NoError(t, store.Put(ctx, key, payload))

	got, err := store.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, payload, got)
}

func TestGetMissingObject(t *testing.T) {
	store, err := NewStore(t.TempDir(), nil)
	require.NoError(t, err)

	_, err = store.Get(context.Background(), "missing/key.json")
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrObjectNotFound)
}

func TestListFiltersByPrefix(t *testing.T) {
	store, err := NewStore(t.TempDir(), nil)
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "quarantine/year=2024/month=01/day=15/box_score/a.json", []byte("{}")))
	require.NoError(t, store.Put(ctx, "quarantine/year=2024/month=01/day=15/box_score/b.json", []byte("{}")))
	require.NoError(t, store.Put(ctx, "quarantine/year=2024/month=01/day=16/box_score/c.json", []byte("{}")))
	require.NoError(t, store.Put(ctx, "manifests/run.json", []byte("{}")))

	keys, err := store.List(ctx, "quarantine/year=2024/month=01/day=15/")
	require.NoError(t, err)
	assert.Len(t, keys, 2)

	all, err := store.List(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 4)
}

func TestDelete(t *testing.T) {
	store, err := NewStore(t.TempDir(), nil)
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "a/b.json", []byte("{}")))
	require.NoError(t, store.Delete(ctx, "a/b.json"))

	_, err = store.Get(ctx, "a/b.json")
	assert.ErrorIs(t, err, errors.ErrObjectNotFound)

	err = store.Delete(ctx, "a/b.json")
	assert.ErrorIs(t, err, errors.ErrObjectNotFound)
}

func TestPing(t *testing.T) {
	store, err := NewStore(t.TempDir(), nil)
	require.NoError(t, err)
	assert.NoError(t, store.Ping(context.Background()))
	assert.NoError(t, store.Close())
}
