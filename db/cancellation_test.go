package db

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestTokenCancelCascadesToChildren(t *testing.T) {
	parent := newToken(nil)
	child := parent.Child()
	grandchild := child.Child()

	require.False(t, grandchild.IsCancelled())
	parent.Cancel()
	require.True(t, child.IsCancelled())
	require.True(t, grandchild.IsCancelled())
}

func TestChildCancelDoesNotAffectParent(t *testing.T) {
	parent := newToken(nil)
	child := parent.Child()

	child.Cancel()
	require.True(t, child.IsCancelled())
	require.False(t, parent.IsCancelled())
}

func TestRevisionBumpCancelsOutgoingToken(t *testing.T) {
	d, project := newTestDatabase(t)
	oldToken := d.Token()

	addFile(t, d, project, "class C {}")

	require.True(t, oldToken.IsCancelled())
	require.False(t, d.Token().IsCancelled(), "a fresh revision must start with a clean, uncancelled token")
}

func TestCancelledQueryNeverUpdatesMemoizedCache(t *testing.T) {
	d, project := newTestDatabase(t)
	id := addFile(t, d, project, "class C {}")

	d.Cancel()
	_, err := d.ParseTree(context.Background(), id)
	require.ErrorIs(t, err, ErrCancelled)
	require.Equal(t, int64(0), d.Stats(QueryParseTree).Executions, "a cancelled query must never populate the memoization table")

	// A second request arriving after cancellation sees a clean database
	// state (spec §5): a fresh revision replaces the cancelled token, so the
	// very next query succeeds instead of observing the stale cancellation.
	d.SetFileText(id, "class C { /* reloaded */ }")
	result, err := d.ParseTree(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, result.Root)
}

func TestContextDeadlineAlsoCancelsQueries(t *testing.T) {
	d, project := newTestDatabase(t)
	id := addFile(t, d, project, "class C {}")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := d.ParseTree(ctx, id)
	require.ErrorIs(t, err, ErrCancelled)
}

func TestNoGoroutineLeakAfterCancellation(t *testing.T) {
	defer goleak.VerifyNone(t)

	d, project := newTestDatabase(t)
	id := addFile(t, d, project, "class C { void m() { int x = 1; } }")

	d.Cancel()
	_, _ = d.TypeDiagnostics(context.Background(), id)

	d.SetFileText(id, "class C { void m() { int x = 2; } }")
	_, err := d.TypeDiagnostics(context.Background(), id)
	require.NoError(t, err)
}
