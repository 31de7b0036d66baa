package app

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/jsamuelsen/quotesync/internal/domain"
	"github.com/jsamuelsen/quotesync/internal/platform/logging"
	"github.com/jsamuelsen/quotesync/internal/ports"
)

// ErrCycleInProgress is returned when a cycle is requested while another one
// is still running. The request is skipped, not queued.
var ErrCycleInProgress = errors.New("reconciliation cycle already in progress")

// Notification messages emitted after a successful cycle.
const (
	MessageSynced           = "Quotes synced with server."
	MessageSyncedConflicted = "Quotes synced with server. Conflicts resolved (server version kept)."
)

// State is the reconciler's position in its cycle.
type State string

const (
	StateIdle       State = "idle"
	StateFetching   State = "fetching"
	StateMerging    State = "merging"
	StateCommitting State = "committing"
	StateNotifying  State = "notifying"
)

// Outcome classifies how a cycle ended.
type Outcome string

const (
	OutcomeSynced           Outcome = "synced"
	OutcomeSyncedConflicted Outcome = "synced_conflicted"
	OutcomeFetchFailed      Outcome = "fetch_failed"
	OutcomeCommitFailed     Outcome = "commit_failed"
	OutcomeSkipped          Outcome = "skipped"
)

// Succeeded reports whether the cycle committed a merged result.
func (o Outcome) Succeeded() bool {
	return o == OutcomeSynced || o == OutcomeSyncedConflicted
}

// CycleResult describes one reconciliation cycle.
type CycleResult struct {
	ID        string
	Outcome   Outcome
	Merge     domain.MergeResult
	Fetched   int
	Pushed    bool
	PushErr   error
	StartedAt time.Time
	Duration  time.Duration
}

// SyncStatus is the sync cursor: diagnostics about past cycles.
// It is never used for correctness since every cycle is a full snapshot.
type SyncStatus struct {
	State               State
	LastAttempt         time.Time
	LastSuccess         time.Time
	LastOutcome         Outcome
	LastError           string
	LastConflicted      bool
	Cycles              int
	ConsecutiveFailures int
}

// CycleObserver receives the result of every completed cycle.
type CycleObserver interface {
	ObserveCycle(outcome string, conflicted bool, duration time.Duration, quotes int)
}

// ReconcilerConfig contains the dependencies of a Reconciler.
type ReconcilerConfig struct {
	Store     *QuoteStore
	Remote    ports.QuoteRemote
	Notifier  ports.Notifier
	Refresher ports.Refresher
	Observer  CycleObserver

	// PushEnabled sends the merged snapshot back to the remote after commit.
	PushEnabled bool

	Logger *slog.Logger
}

// Reconciler keeps the QuoteStore eventually consistent with the remote
// quote server. At most one cycle runs at a time per Reconciler.
type Reconciler struct {
	store     *QuoteStore
	remote    ports.QuoteRemote
	notifier  ports.Notifier
	refresher ports.Refresher
	observer  CycleObserver
	push      bool
	logger    *slog.Logger

	busy atomic.Bool

	mu     sync.Mutex
	status SyncStatus

	now func() time.Time
}

// NewReconciler creates a reconciler. Store and Remote are required.
func NewReconciler(cfg ReconcilerConfig) *Reconciler {
	if cfg.Store == nil {
		panic("app: ReconcilerConfig.Store is required")
	}

	if cfg.Remote == nil {
		panic("app: ReconcilerConfig.Remote is required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r := &Reconciler{
		store:     cfg.Store,
		remote:    cfg.Remote,
		notifier:  cfg.Notifier,
		refresher: cfg.Refresher,
		observer:  cfg.Observer,
		push:      cfg.PushEnabled,
		logger:    logger.With(slog.String("component", "app.Reconciler")),
		now:       time.Now,
	}
	r.status.State = StateIdle

	return r
}

// Status returns a snapshot of the sync cursor.
func (r *Reconciler) Status() SyncStatus {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.status
}

// RunCycle performs one fetch → merge → commit → notify pass.
//
// An overlapping call returns ErrCycleInProgress immediately. A started cycle
// always runs to completion; cancellation of ctx does not interrupt it.
// Fetch and commit failures are returned as *StageError and leave the store
// unchanged. A push failure is recorded in the result but is not an error.
func (r *Reconciler) RunCycle(ctx context.Context) (CycleResult, error) {
	if !r.busy.CompareAndSwap(false, true) {
		return CycleResult{Outcome: OutcomeSkipped}, ErrCycleInProgress
	}
	defer r.busy.Store(false)

	ctx = context.WithoutCancel(ctx)

	result := CycleResult{
		ID:        uuid.NewString(),
		StartedAt: r.now(),
	}

	ctx = logging.WithContext(ctx, logging.FromContextOr(ctx, r.logger))
	ctx = logging.WithCycleID(ctx, result.ID)
	logger := logging.FromContext(ctx)

	logger.DebugContext(ctx, "reconciliation cycle started")

	err := r.cycle(ctx, logger, &result)

	result.Duration = r.now().Sub(result.StartedAt)
	r.finish(result, err)

	if err != nil {
		logger.WarnContext(ctx, "reconciliation cycle aborted",
			slog.String("outcome", string(result.Outcome)),
			slog.Any("error", err),
		)

		return result, err
	}

	logger.InfoContext(ctx, "reconciliation cycle completed",
		slog.String("outcome", string(result.Outcome)),
		slog.Int("fetched", result.Fetched),
		slog.Int("added", result.Merge.Added),
		slog.Int("updated", result.Merge.Updated),
		slog.Bool("conflicted", result.Merge.Conflicted),
		slog.Duration("duration", result.Duration),
	)

	return result, nil
}

func (r *Reconciler) cycle(ctx context.Context, logger *slog.Logger, result *CycleResult) error {
	var remote []domain.Quote

	r.enter(StateFetching)

	err := runStage(ctx, logger, StageFetch, "fetching remote quotes", func(ctx context.Context) error {
		var err error
		remote, err = r.remote.FetchQuotes(ctx)

		return err
	})
	if err != nil {
		result.Outcome = OutcomeFetchFailed
		return err
	}

	result.Fetched = len(remote)

	r.enter(StateMerging)

	err = runStage(ctx, logger, StageCommit, "committing merged quotes", func(ctx context.Context) error {
		merged, err := r.store.MergeAndCommit(ctx, remote, func(current []domain.Quote, merged domain.MergeResult) {
			logger.DebugContext(ctx, "merged remote snapshot",
				slog.String("stage", string(StageMerge)),
				slog.Int("local", len(current)),
				slog.Int("merged", len(merged.Quotes)),
			)

			r.enter(StateCommitting)
		})
		result.Merge = merged

		return err
	})
	if err != nil {
		result.Outcome = OutcomeCommitFailed
		return err
	}

	result.Outcome = OutcomeSynced
	if result.Merge.Conflicted {
		result.Outcome = OutcomeSyncedConflicted
	}

	r.enter(StateNotifying)
	r.notify(ctx, result.Merge.Conflicted)

	if r.push {
		result.PushErr = r.pushSnapshot(ctx, logger, result.Merge.Quotes)
		result.Pushed = result.PushErr == nil
	}

	return nil
}

func (r *Reconciler) notify(ctx context.Context, conflicted bool) {
	message := MessageSynced
	if conflicted {
		message = MessageSyncedConflicted
	}

	if r.notifier != nil {
		r.notifier.Notify(ctx, message)
	}

	if r.refresher != nil {
		r.refresher.Refresh(ctx, r.store.List())
	}
}

func (r *Reconciler) pushSnapshot(ctx context.Context, logger *slog.Logger, quotes []domain.Quote) error {
	err := r.remote.PushQuotes(ctx, quotes)
	if err != nil {
		logger.WarnContext(ctx, "pushing merged quotes failed, local commit kept",
			slog.String("stage", string(StagePush)),
			slog.Any("error", err),
		)

		return NewStageError(StagePush, "pushing merged quotes", err)
	}

	logger.DebugContext(ctx, "pushed merged quotes", slog.Int("count", len(quotes)))

	return nil
}

func (r *Reconciler) enter(state State) {
	r.mu.Lock()
	r.status.State = state
	r.mu.Unlock()
}

func (r *Reconciler) finish(result CycleResult, err error) {
	r.mu.Lock()

	r.status.State = StateIdle
	r.status.Cycles++
	r.status.LastAttempt = result.StartedAt
	r.status.LastOutcome = result.Outcome

	if err != nil {
		r.status.ConsecutiveFailures++
		r.status.LastError = err.Error()
	} else {
		r.status.ConsecutiveFailures = 0
		r.status.LastError = ""
		r.status.LastSuccess = result.StartedAt
		r.status.LastConflicted = result.Merge.Conflicted
	}

	r.mu.Unlock()

	if r.observer != nil {
		r.observer.ObserveCycle(string(result.Outcome), result.Merge.Conflicted, result.Duration, r.store.Len())
	}
}
