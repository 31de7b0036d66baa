// Package ports defines interfaces for external dependencies.
// Ports are contracts that adapters implement, allowing the application layer
// to depend on abstractions rather than concrete implementations.
//
// Port Design Principles:
//   - Context as first parameter (always) for cancellation and deadlines
//   - Return domain types, never external DTOs or infrastructure types
//   - Error returns use domain error types (ErrUnavailable, ErrParse, etc.)
//   - Keep interfaces small and focused (Interface Segregation Principle)
package ports

import (
	"context"

	"github.com/jsamuelsen/quotesync/internal/domain"
)

// QuoteRemote is the transport collaborator for the remote quote server.
// Adapters translate the server's wire format into domain quotes.
//
// Key considerations:
//   - Handle timeouts via context deadline
//   - Map transport failures to *domain.UnavailableError
//   - A payload that cannot be decoded is "no data", reported as unavailable
type QuoteRemote interface {
	// FetchQuotes retrieves the full remote snapshot.
	FetchQuotes(ctx context.Context) ([]domain.Quote, error)

	// PushQuotes sends the given snapshot back to the remote server.
	PushQuotes(ctx context.Context, quotes []domain.Quote) error
}

// BlobStore persists opaque serialized blobs under a key.
// Writes replace the whole blob; a reader never observes a partial write.
type BlobStore interface {
	// ReadBlob returns the blob stored under key.
	// The boolean is false when nothing has been stored yet.
	ReadBlob(ctx context.Context, key string) ([]byte, bool, error)

	// WriteBlob atomically replaces the blob stored under key.
	WriteBlob(ctx context.Context, key string, data []byte) error
}

// Notifier delivers user-visible messages. Fire-and-forget.
type Notifier interface {
	Notify(ctx context.Context, message string)
}

// Refresher receives the current quote sequence after every committed mutation.
type Refresher interface {
	Refresh(ctx context.Context, quotes []domain.Quote)
}
