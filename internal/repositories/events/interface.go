package events

//go:generate mockgen -package=mocks -destination=mocks/mock_repository.go github.com/KirkDiggler/raffled/internal/repositories/events Repository

import (
	"context"
)

// Repository is the event sink raffle notifications are delivered to
type Repository interface {
	// AppendEvents appends events to a raffle's log, in order
	AppendEvents(ctx context.Context, input *AppendEventsInput) (*AppendEventsOutput, error)

	// ListEvents retrieves a raffle's events, oldest first
	ListEvents(ctx context.Context, input *ListEventsInput) (*ListEventsOutput, error)

	// DeleteEvents removes a raffle's whole log. Deleting an empty log is not an error.
	DeleteEvents(ctx context.Context, input *DeleteEventsInput) error
}
