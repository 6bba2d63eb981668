package eventstore

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func recordAll(t *testing.T, store Store, events ...Event) {
	t.Helper()
	for _, e := range events {
		require.NoError(t, Record(t.Context(), store, e))
	}
}

func eventMaker(t *testing.T) func(Event, error) Event {
	return func(e Event, err error) Event {
		t.Helper()
		require.NoError(t, err)
		return e
	}
}

func TestBuildHistoryProjection_Apply(t *testing.T) {
	must := eventMaker(t)
	p := NewBuildHistoryProjection(newMemoryStore(t), 10)

	p.Apply(must(NewBuildStarted("b1", BuildStartedMeta{Trigger: "watch"})))
	s, ok := p.GetBuild("b1")
	require.True(t, ok)
	require.Equal(t, "running", s.Status)
	require.Equal(t, "watch", s.Trigger)
	require.False(t, s.Finished())

	p.Apply(must(NewSiteGenerated("b1", SiteCounts{Files: 4, Written: 3, Collection: 2})))
	p.Apply(must(NewBuildCompleted("b1", "warning", 2*time.Second, 1, []byte(`{"build_id":"b1"}`))))

	s, ok = p.GetBuild("b1")
	require.True(t, ok)
	require.Equal(t, "warning", s.Status)
	require.Equal(t, 3, s.Counts.Written)
	require.Equal(t, 1, s.Warnings)
	require.True(t, s.Finished())

	last, ok := p.LastCompleted()
	require.True(t, ok)
	require.Equal(t, "b1", last.BuildID)
}

func TestBuildHistoryProjection_FailedBuild(t *testing.T) {
	must := eventMaker(t)
	p := NewBuildHistoryProjection(newMemoryStore(t), 10)
	p.Apply(must(NewBuildStarted("b1", BuildStartedMeta{})))
	p.Apply(must(NewBuildFailed("b1", "failed", "load_templates", "fragment missing")))

	s, ok := p.GetBuild("b1")
	require.True(t, ok)
	require.Equal(t, "failed", s.Status)
	require.Equal(t, "load_templates", s.ErrorStage)
	require.Equal(t, "fragment missing", s.ErrorMessage)
}

func TestBuildHistoryProjection_RebuildNewestFirstAndBounded(t *testing.T) {
	must := eventMaker(t)
	store := newMemoryStore(t)
	for _, id := range []string{"b1", "b2", "b3"} {
		recordAll(t, store,
			must(NewBuildStarted(id, BuildStartedMeta{Trigger: "cli"})),
			must(NewBuildCompleted(id, "success", time.Millisecond, 0, nil)),
		)
		time.Sleep(2 * time.Millisecond)
	}

	p := NewBuildHistoryProjection(store, 2)
	require.NoError(t, p.Rebuild(t.Context()))

	history := p.History(0)
	require.Len(t, history, 2)
	require.Equal(t, "b3", history[0].BuildID)
	require.Equal(t, "b2", history[1].BuildID)
	require.Equal(t, "success", history[0].Status)

	_, ok := p.GetBuild("b1")
	require.False(t, ok)

	require.Len(t, p.History(1), 1)
}
