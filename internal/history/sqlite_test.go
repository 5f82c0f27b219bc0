package history

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/devscast/siteconf/internal/config"
	ferrors "github.com/devscast/siteconf/internal/foundation/errors"
	"github.com/devscast/siteconf/internal/linkcheck"
)

func newStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestRecordAndGet(t *testing.T) {
	store := newStore(t)
	ctx := t.Context()
	started := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	run := &Run{
		ID:           "run-1",
		StartedAt:    started,
		Duration:     1500 * time.Millisecond,
		ConfigPath:   "siteconf.yaml",
		SiteDir:      ".",
		Outcome:      "warning",
		LinksChecked: 12,
		Issues: []linkcheck.Issue{{
			Kind:     linkcheck.KindBrokenMarkdownLink,
			Severity: config.SeverityWarn,
			Locale:   "en",
			Source:   "docs/intro.md",
			Line:     4,
			Target:   "./missing.md",
			Message:  "markdown link does not resolve to a file",
		}},
	}
	require.NoError(t, store.Record(ctx, run))

	got, err := store.Get(ctx, "run-1")
	require.NoError(t, err)
	require.Equal(t, "warning", got.Outcome)
	require.Equal(t, 12, got.LinksChecked)
	require.Equal(t, 1500*time.Millisecond, got.Duration)
	require.True(t, got.StartedAt.Equal(started))
	require.Equal(t, 1, got.IssueCount())
	require.Equal(t, run.Issues[0], got.Issues[0])
}

func TestRecordReplacesExistingID(t *testing.T) {
	store := newStore(t)
	ctx := t.Context()
	now := time.Now()

	require.NoError(t, store.Record(ctx, &Run{ID: "a", StartedAt: now, Outcome: "success"}))
	require.NoError(t, store.Record(ctx, &Run{ID: "a", StartedAt: now, Outcome: "fatal", Error: "broken links"}))

	got, err := store.Get(ctx, "a")
	require.NoError(t, err)
	require.Equal(t, "fatal", got.Outcome)
	require.Equal(t, "broken links", got.Error)
	require.Empty(t, got.Issues)
}

func TestRecordRequiresID(t *testing.T) {
	err := newStore(t).Record(t.Context(), &Run{})
	require.Error(t, err)
	require.True(t, ferrors.HasCategory(err, ferrors.CategoryStorage))
}

func TestRecentNewestFirst(t *testing.T) {
	store := newStore(t)
	ctx := t.Context()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, id := range []string{"first", "second", "third"} {
		require.NoError(t, store.Record(ctx, &Run{ID: id, StartedAt: base.Add(time.Duration(i) * time.Hour), Outcome: "success"}))
	}

	runs, err := store.Recent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	require.Equal(t, "third", runs[0].ID)
	require.Equal(t, "second", runs[1].ID)

	all, err := store.Recent(ctx, 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
}

func TestGetMissingRun(t *testing.T) {
	_, err := newStore(t).Get(t.Context(), "nope")
	require.Error(t, err)
	require.True(t, ferrors.HasCategory(err, ferrors.CategoryNotFound))
}

func TestFileBackedStorePersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	store, err := NewSQLiteStore(path)
	require.NoError(t, err)
	require.NoError(t, store.Record(t.Context(), &Run{ID: "persisted", StartedAt: time.Now(), Outcome: "success"}))
	require.NoError(t, store.Close())

	reopened, err := NewSQLiteStore(path)
	require.NoError(t, err)
	defer func() { _ = reopened.Close() }()

	got, err := reopened.Get(t.Context(), "persisted")
	require.NoError(t, err)
	require.Equal(t, "success", got.Outcome)
}
