package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harrison/namecheck/internal/rules"
	"github.com/harrison/namecheck/internal/walker"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestRecordRun(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	findings := []walker.Finding{
		{Path: "/tree", Warnings: []rules.Warning{
			{Rule: rules.RuleCaseCollision, Message: `"A" and "a" differ only by case`},
		}},
		{Path: "/tree/x?", Warnings: []rules.Warning{
			{Rule: rules.RuleCharacter, Message: "character '?' not permitted by all file systems."},
		}},
	}
	run := &Run{
		Root:      "/tree",
		StartedAt: time.Now(),
		Duration:  1200 * time.Millisecond,
		Entries:   5,
	}

	require.NoError(t, store.RecordRun(ctx, run, findings))
	assert.NotEmpty(t, run.ID)
	assert.Equal(t, 2, run.WarningCount)

	runs, err := store.RecentRuns(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, run.ID, runs[0].ID)
	assert.Equal(t, "/tree", runs[0].Root)
	assert.Equal(t, 5, runs[0].Entries)
	assert.Equal(t, 2, runs[0].WarningCount)
	assert.Equal(t, 1200*time.Millisecond, runs[0].Duration)
	assert.WithinDuration(t, run.StartedAt, runs[0].StartedAt, time.Second)

	warnings, err := store.RunWarnings(ctx, run.ID)
	require.NoError(t, err)
	require.Len(t, warnings, 2)
	assert.Equal(t, rules.RuleCaseCollision, warnings[0].Rule)
	assert.Equal(t, "/tree/x?", warnings[1].Path)
}

func TestRecentRuns_NewestFirstWithLimit(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	for i := 0; i < 3; i++ {
		run := &Run{ID: NewRunID(), Root: "/r", StartedAt: base.Add(time.Duration(i) * time.Hour)}
		require.NoError(t, store.RecordRun(ctx, run, nil))
	}

	runs, err := store.RecentRuns(ctx, 2)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.True(t, runs[0].StartedAt.After(runs[1].StartedAt))

	all, err := store.RecentRuns(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestRecordRun_DuplicateID(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	run := &Run{ID: "fixed", Root: "/r", StartedAt: time.Now()}
	require.NoError(t, store.RecordRun(ctx, run, nil))

	again := &Run{ID: "fixed", Root: "/r", StartedAt: time.Now()}
	err := store.RecordRun(ctx, again, []walker.Finding{{Path: "/r", Warnings: []rules.Warning{{Rule: rules.RuleTrailingSpace}}}})
	assert.Error(t, err)

	// the failed transaction must not leave warnings behind
	warnings, err := store.RunWarnings(ctx, "fixed")
	require.NoError(t, err)
	assert.Empty(t, warnings)
}

func TestNewStore_File(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "nested", "history.db")

	store, err := NewStore(dbPath)
	require.NoError(t, err)
	require.NoError(t, store.RecordRun(context.Background(), &Run{Root: "/r", StartedAt: time.Now()}, nil))
	require.NoError(t, store.Close())

	reopened, err := NewStore(dbPath)
	require.NoError(t, err)
	defer reopened.Close()

	runs, err := reopened.RecentRuns(context.Background(), 0)
	require.NoError(t, err)
	assert.Len(t, runs, 1)
}

func TestNewRunID_Unique(t *testing.T) {
	assert.NotEqual(t, NewRunID(), NewRunID())
}
