package dto

import (
	"time"

	"github.com/jsamuelsen/quotesync/internal/app"
)

// SyncResultResponse describes one reconciliation cycle.
type SyncResultResponse struct {
	CycleID    string    `json:"cycleId"`
	Outcome    string    `json:"outcome"`
	Fetched    int       `json:"fetched"`
	Added      int       `json:"added"`
	Updated    int       `json:"updated"`
	Conflicted bool      `json:"conflicted"`
	Total      int       `json:"total"`
	Pushed     bool      `json:"pushed"`
	PushError  string    `json:"pushError,omitempty"`
	StartedAt  time.Time `json:"startedAt"`
	DurationMS int64     `json:"durationMs"`
}

// SyncResultFromApp converts an app.CycleResult.
func SyncResultFromApp(r app.CycleResult) SyncResultResponse {
	resp := SyncResultResponse{
		CycleID:    r.ID,
		Outcome:    string(r.Outcome),
		Fetched:    r.Fetched,
		Added:      r.Merge.Added,
		Updated:    r.Merge.Updated,
		Conflicted: r.Merge.Conflicted,
		Total:      len(r.Merge.Quotes),
		Pushed:     r.Pushed,
		StartedAt:  r.StartedAt,
		DurationMS: r.Duration.Milliseconds(),
	}

	if r.PushErr != nil {
		resp.PushError = r.PushErr.Error()
	}

	return resp
}

// SyncStatusResponse is the sync cursor as exposed over HTTP.
type SyncStatusResponse struct {
	State               string     `json:"state"`
	LastAttempt         *time.Time `json:"lastAttempt,omitempty"`
	LastSuccess         *time.Time `json:"lastSuccess,omitempty"`
	LastOutcome         string     `json:"lastOutcome,omitempty"`
	LastError           string     `json:"lastError,omitempty"`
	LastConflicted      bool       `json:"lastConflicted"`
	Cycles              int        `json:"cycles"`
	ConsecutiveFailures int        `json:"consecutiveFailures"`
}

// SyncStatusFromApp converts an app.SyncStatus. Zero times are omitted.
func SyncStatusFromApp(s app.SyncStatus) SyncStatusResponse {
	return SyncStatusResponse{
		State:               string(s.State),
		LastAttempt:         timePtr(s.LastAttempt),
		LastSuccess:         timePtr(s.LastSuccess),
		LastOutcome:         string(s.LastOutcome),
		LastError:           s.LastError,
		LastConflicted:      s.LastConflicted,
		Cycles:              s.Cycles,
		ConsecutiveFailures: s.ConsecutiveFailures,
	}
}

// NotificationResponse is one user-visible notification.
type NotificationResponse struct {
	Seq     uint64    `json:"seq"`
	Message string    `json:"message"`
	At      time.Time `json:"at"`
}

// NotificationsResponse lists recent notifications, oldest first.
type NotificationsResponse struct {
	Notifications []NotificationResponse `json:"notifications"`
}

// DisplayResponse is the state of the display board.
type DisplayResponse struct {
	Current     *QuoteResponse  `json:"current,omitempty"`
	Quotes      []QuoteResponse `json:"quotes"`
	Version     uint64          `json:"version"`
	RefreshedAt *time.Time      `json:"refreshedAt,omitempty"`
}

func timePtr(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}

	return &t
}
