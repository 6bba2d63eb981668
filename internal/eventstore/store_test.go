package eventstore

import (
	stderrors "errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func newMemoryStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(MemoryPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestSQLiteStore_AppendAndGetByBuildID(t *testing.T) {
	store := newMemoryStore(t)
	ctx := t.Context()

	require.NoError(t, store.Append(ctx, "b1", TypeBuildStarted, []byte(`{"trigger":"cli"}`), map[string]string{"host": "h1"}))
	require.NoError(t, store.Append(ctx, "b2", TypeBuildStarted, []byte(`{}`), nil))
	require.NoError(t, store.Append(ctx, "b1", TypeBuildCompleted, []byte(`{"outcome":"success"}`), nil))

	events, err := store.GetByBuildID(ctx, "b1")
	require.NoError(t, err)
	require.Len(t, events, 2)
	require.Equal(t, TypeBuildStarted, events[0].Type())
	require.Equal(t, TypeBuildCompleted, events[1].Type())
	require.Equal(t, "h1", events[0].Metadata()["host"])
	require.Nil(t, events[1].Metadata())
	require.JSONEq(t, `{"trigger":"cli"}`, string(events[0].Payload()))
	require.Less(t, events[0].ID(), events[1].ID())
}

func TestSQLiteStore_GetRange(t *testing.T) {
	store := newMemoryStore(t)
	ctx := t.Context()

	before := time.Now().Add(-time.Second)
	require.NoError(t, store.Append(ctx, "b1", TypeBuildStarted, []byte(`{}`), nil))

	events, err := store.GetRange(ctx, before, time.Now().Add(time.Second))
	require.NoError(t, err)
	require.Len(t, events, 1)

	events, err = store.GetRange(ctx, time.Now().Add(time.Hour), time.Now().Add(2*time.Hour))
	require.NoError(t, err)
	require.Empty(t, events)
}

func TestSQLiteStore_FileBackedSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state", "history.db")
	ctx := t.Context()

	store, err := NewSQLiteStore(path)
	require.NoError(t, err)
	ev, err := NewBuildStarted("b1", BuildStartedMeta{Trigger: "cli"})
	require.NoError(t, err)
	require.NoError(t, Record(ctx, store, ev))
	require.NoError(t, store.Close())

	reopened, err := NewSQLiteStore(path)
	require.NoError(t, err)
	defer func() { _ = reopened.Close() }()
	events, err := reopened.GetByBuildID(ctx, "b1")
	require.NoError(t, err)
	require.Len(t, events, 1)
}

func TestSQLiteStore_AppendAfterCloseIsClassified(t *testing.T) {
	store, err := NewSQLiteStore(MemoryPath)
	require.NoError(t, err)
	require.NoError(t, store.Close())

	err = store.Append(t.Context(), "b1", TypeBuildStarted, []byte(`{}`), nil)
	require.Error(t, err)
	require.True(t, stderrors.Is(err, ErrEventAppendFailed))
}
