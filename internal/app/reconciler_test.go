package app

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/quotesync/internal/adapters/storage"
	"github.com/jsamuelsen/quotesync/internal/domain"
	"github.com/jsamuelsen/quotesync/internal/mocks"
)

type reconcilerFixture struct {
	store     *QuoteStore
	remote    *mocks.MockQuoteRemote
	notifier  *mocks.MockNotifier
	refresher *mocks.MockRefresher
	observer  *recordingObserver
}

type recordingObserver struct {
	mu       sync.Mutex
	outcomes []string
}

func (o *recordingObserver) ObserveCycle(outcome string, _ bool, _ time.Duration, _ int) {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.outcomes = append(o.outcomes, outcome)
}

func newReconcilerFixture(t *testing.T, local ...domain.Quote) *reconcilerFixture {
	t.Helper()

	blobs := storage.NewMemoryStore()
	if local != nil {
		seedBlob(t, blobs, local...)
	}

	return &reconcilerFixture{
		store:     newMemoryStore(t, blobs),
		remote:    mocks.NewMockQuoteRemote(t),
		notifier:  mocks.NewMockNotifier(t),
		refresher: mocks.NewMockRefresher(t),
		observer:  &recordingObserver{},
	}
}

func (f *reconcilerFixture) reconciler(push bool) *Reconciler {
	return NewReconciler(ReconcilerConfig{
		Store:       f.store,
		Remote:      f.remote,
		Notifier:    f.notifier,
		Refresher:   f.refresher,
		Observer:    f.observer,
		PushEnabled: push,
		Logger:      discardLogger(),
	})
}

func TestNewReconciler_PanicsWithoutDependencies(t *testing.T) {
	f := newReconcilerFixture(t)

	assert.Panics(t, func() { NewReconciler(ReconcilerConfig{Remote: f.remote}) })
	assert.Panics(t, func() { NewReconciler(ReconcilerConfig{Store: f.store}) })
}

func TestReconciler_RunCycle_SyncedWithoutConflicts(t *testing.T) {
	f := newReconcilerFixture(t, domain.NewQuote("X", "A", domain.OriginLocal))

	f.remote.EXPECT().FetchQuotes(mock.Anything).Return([]domain.Quote{{Text: "Y", Category: "B"}}, nil)
	f.notifier.EXPECT().Notify(mock.Anything, MessageSynced).Once()
	f.refresher.EXPECT().Refresh(mock.Anything, mock.MatchedBy(func(q []domain.Quote) bool {
		return len(q) == 2
	})).Once()

	result, err := f.reconciler(false).RunCycle(context.Background())

	require.NoError(t, err)
	assert.Equal(t, OutcomeSynced, result.Outcome)
	assert.Equal(t, 1, result.Fetched)
	assert.Equal(t, 1, result.Merge.Added)
	assert.NotEmpty(t, result.ID)

	quotes := f.store.List()
	require.Len(t, quotes, 2)
	assert.Equal(t, "X", quotes[0].Text)
	assert.Equal(t, "Y", quotes[1].Text)
	assert.Equal(t, domain.OriginRemote, quotes[1].Origin)
	assert.Equal(t, []string{"synced"}, f.observer.outcomes)
}

func TestReconciler_RunCycle_LogsCarryCycleID(t *testing.T) {
	f := newReconcilerFixture(t, domain.NewQuote("X", "A", domain.OriginLocal))

	f.remote.EXPECT().FetchQuotes(mock.Anything).Return([]domain.Quote{{Text: "Y", Category: "B"}}, nil)
	f.notifier.EXPECT().Notify(mock.Anything, MessageSynced).Once()
	f.refresher.EXPECT().Refresh(mock.Anything, mock.Anything).Once()

	var buf bytes.Buffer
	r := NewReconciler(ReconcilerConfig{
		Store:     f.store,
		Remote:    f.remote,
		Notifier:  f.notifier,
		Refresher: f.refresher,
		Logger:    slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})),
	})

	result, err := r.RunCycle(context.Background())
	require.NoError(t, err)

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.NotEmpty(t, lines)

	for _, line := range lines {
		var entry map[string]any
		require.NoError(t, json.Unmarshal(line, &entry))
		assert.Equal(t, result.ID, entry["cycle_id"], "line: %s", line)
	}
}

func TestReconciler_RunCycle_ConflictKeepsServerVersion(t *testing.T) {
	f := newReconcilerFixture(t, domain.NewQuote("Hi", "A", domain.OriginLocal))

	f.remote.EXPECT().FetchQuotes(mock.Anything).Return([]domain.Quote{{Text: "Hi", Category: "B"}}, nil)
	f.notifier.EXPECT().Notify(mock.Anything, MessageSyncedConflicted).Once()
	f.refresher.EXPECT().Refresh(mock.Anything, mock.Anything).Once()

	r := f.reconciler(false)
	result, err := r.RunCycle(context.Background())

	require.NoError(t, err)
	assert.Equal(t, OutcomeSyncedConflicted, result.Outcome)
	assert.True(t, result.Merge.Conflicted)
	assert.Equal(t, "B", f.store.List()[0].Category)
	assert.True(t, r.Status().LastConflicted)
}

func TestReconciler_RunCycle_SecondRunIsNoOp(t *testing.T) {
	f := newReconcilerFixture(t, domain.NewQuote("Hi", "A", domain.OriginLocal))
	remote := []domain.Quote{{Text: "Hi", Category: "B"}, {Text: "New", Category: "C"}}

	f.remote.EXPECT().FetchQuotes(mock.Anything).Return(remote, nil).Twice()
	f.notifier.EXPECT().Notify(mock.Anything, MessageSyncedConflicted).Once()
	f.notifier.EXPECT().Notify(mock.Anything, MessageSynced).Once()
	f.refresher.EXPECT().Refresh(mock.Anything, mock.Anything).Twice()

	r := f.reconciler(false)

	first, err := r.RunCycle(context.Background())
	require.NoError(t, err)
	afterFirst := f.store.List()

	second, err := r.RunCycle(context.Background())
	require.NoError(t, err)

	assert.True(t, first.Merge.Conflicted)
	assert.False(t, second.Merge.Conflicted)
	assert.False(t, second.Merge.Changed())
	assert.Equal(t, afterFirst, f.store.List())
	assert.Equal(t, 2, r.Status().Cycles)
}

func TestReconciler_RunCycle_FetchFailureLeavesStoreUntouched(t *testing.T) {
	f := newReconcilerFixture(t, domain.NewQuote("X", "A", domain.OriginLocal))
	before := f.store.List()
	transportErr := domain.NewUnavailableError("quote-server", "connection refused")

	f.remote.EXPECT().FetchQuotes(mock.Anything).Return(nil, transportErr)

	r := f.reconciler(true)
	result, err := r.RunCycle(context.Background())

	require.Error(t, err)
	require.ErrorIs(t, err, domain.ErrUnavailable)

	stage, ok := GetStage(err)
	require.True(t, ok)
	assert.Equal(t, StageFetch, stage)

	assert.Equal(t, OutcomeFetchFailed, result.Outcome)
	assert.Equal(t, before, f.store.List())

	status := r.Status()
	assert.Equal(t, StateIdle, status.State)
	assert.Equal(t, 1, status.ConsecutiveFailures)
	assert.Equal(t, OutcomeFetchFailed, status.LastOutcome)
	assert.True(t, status.LastSuccess.IsZero())
	assert.Equal(t, []string{"fetch_failed"}, f.observer.outcomes)
}

func TestReconciler_RunCycle_CommitFailureLeavesStoreUntouched(t *testing.T) {
	writeErr := errors.New("read-only file system")

	blobs := mocks.NewMockBlobStore(t)
	blobs.EXPECT().ReadBlob(mock.Anything, DefaultStoreKey).Return(nil, false, nil)
	blobs.EXPECT().WriteBlob(mock.Anything, DefaultStoreKey, mock.Anything).Return(writeErr)

	store, err := LoadQuoteStore(context.Background(), QuoteStoreConfig{Blobs: blobs, Logger: discardLogger()})
	require.NoError(t, err)

	remote := mocks.NewMockQuoteRemote(t)
	remote.EXPECT().FetchQuotes(mock.Anything).Return([]domain.Quote{{Text: "Y", Category: "B"}}, nil)

	r := NewReconciler(ReconcilerConfig{
		Store:     store,
		Remote:    remote,
		Notifier:  mocks.NewMockNotifier(t),
		Refresher: mocks.NewMockRefresher(t),
		Logger:    discardLogger(),
	})

	result, err := r.RunCycle(context.Background())

	require.ErrorIs(t, err, writeErr)
	stage, _ := GetStage(err)
	assert.Equal(t, StageCommit, stage)
	assert.Equal(t, OutcomeCommitFailed, result.Outcome)
	assert.Equal(t, domain.SeedQuotes(), store.List())
}

func TestReconciler_RunCycle_PushFailureDoesNotRollBack(t *testing.T) {
	f := newReconcilerFixture(t, domain.NewQuote("X", "A", domain.OriginLocal))
	pushErr := domain.NewUnavailableError("quote-server", "status 500")

	f.remote.EXPECT().FetchQuotes(mock.Anything).Return([]domain.Quote{{Text: "Y", Category: "B"}}, nil)
	f.remote.EXPECT().PushQuotes(mock.Anything, mock.MatchedBy(func(q []domain.Quote) bool {
		return len(q) == 2
	})).Return(pushErr)
	f.notifier.EXPECT().Notify(mock.Anything, MessageSynced)
	f.refresher.EXPECT().Refresh(mock.Anything, mock.Anything)

	r := f.reconciler(true)
	result, err := r.RunCycle(context.Background())

	require.NoError(t, err)
	assert.Equal(t, OutcomeSynced, result.Outcome)
	assert.False(t, result.Pushed)
	require.ErrorIs(t, result.PushErr, domain.ErrUnavailable)

	stage, _ := GetStage(result.PushErr)
	assert.Equal(t, StagePush, stage)
	assert.Len(t, f.store.List(), 2)
	assert.Equal(t, 0, r.Status().ConsecutiveFailures)
}

func TestReconciler_RunCycle_PushSucceeds(t *testing.T) {
	f := newReconcilerFixture(t, domain.NewQuote("X", "A", domain.OriginLocal))

	f.remote.EXPECT().FetchQuotes(mock.Anything).Return(nil, nil)
	f.remote.EXPECT().PushQuotes(mock.Anything, mock.Anything).Return(nil)
	f.notifier.EXPECT().Notify(mock.Anything, MessageSynced)
	f.refresher.EXPECT().Refresh(mock.Anything, mock.Anything)

	result, err := f.reconciler(true).RunCycle(context.Background())

	require.NoError(t, err)
	assert.True(t, result.Pushed)
	assert.NoError(t, result.PushErr)
}

func TestReconciler_RunCycle_OverlappingCallIsSkipped(t *testing.T) {
	f := newReconcilerFixture(t)

	started := make(chan struct{})
	release := make(chan struct{})

	f.remote.EXPECT().FetchQuotes(mock.Anything).RunAndReturn(func(context.Context) ([]domain.Quote, error) {
		close(started)
		<-release

		return nil, nil
	}).Once()
	f.notifier.EXPECT().Notify(mock.Anything, MessageSynced).Once()
	f.refresher.EXPECT().Refresh(mock.Anything, mock.Anything).Once()

	r := f.reconciler(false)

	done := make(chan error, 1)
	go func() {
		_, err := r.RunCycle(context.Background())
		done <- err
	}()

	<-started
	assert.Equal(t, StateFetching, r.Status().State)

	result, err := r.RunCycle(context.Background())
	require.ErrorIs(t, err, ErrCycleInProgress)
	assert.Equal(t, OutcomeSkipped, result.Outcome)

	close(release)
	require.NoError(t, <-done)
	assert.Equal(t, StateIdle, r.Status().State)
	assert.Equal(t, 1, r.Status().Cycles)
}

func TestReconciler_RunCycle_IgnoresCallerCancellation(t *testing.T) {
	f := newReconcilerFixture(t)

	f.remote.EXPECT().FetchQuotes(mock.Anything).RunAndReturn(func(ctx context.Context) ([]domain.Quote, error) {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		return []domain.Quote{{Text: "Y", Category: "B"}}, nil
	})
	f.notifier.EXPECT().Notify(mock.Anything, MessageSynced)
	f.refresher.EXPECT().Refresh(mock.Anything, mock.Anything)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := f.reconciler(false).RunCycle(ctx)

	require.NoError(t, err)
	assert.Equal(t, OutcomeSynced, result.Outcome)
}

func TestReconciler_NilCollaboratorsAreOptional(t *testing.T) {
	f := newReconcilerFixture(t)
	f.remote.EXPECT().FetchQuotes(mock.Anything).Return([]domain.Quote{{Text: "Y", Category: "B"}}, nil)

	r := NewReconciler(ReconcilerConfig{Store: f.store, Remote: f.remote, Logger: discardLogger()})

	_, err := r.RunCycle(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 4, f.store.Len())
}

func TestStageError(t *testing.T) {
	cause := errors.New("boom")
	err := NewStageError(StageFetch, "fetching remote quotes", cause)

	assert.Equal(t, "fetch failed: fetching remote quotes: boom", err.Error())
	assert.True(t, IsStageError(err))
	require.ErrorIs(t, err, cause)

	bare := NewStageError(StageNotify, "no notifier", nil)
	assert.Equal(t, "notify failed: no notifier", bare.Error())

	_, ok := GetStage(cause)
	assert.False(t, ok)
	assert.False(t, IsStageError(cause))
}
