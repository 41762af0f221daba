package events

import (
	"errors"

	"github.com/KirkDiggler/raffled/internal/models"
)

var (
	// ErrInvalidEventID is returned when an event ID is not a stream ID (<ms>-<seq>)
	ErrInvalidEventID = errors.New("invalid event ID")
)

// AppendEventsInput contains the events to append
type AppendEventsInput struct {
	RaffleID string
	Events   []models.Event
}

// AppendEventsOutput contains the IDs assigned to the appended events
type AppendEventsOutput struct {
	EventIDs []string
}

// ListEventsInput contains parameters for reading a raffle's events
type ListEventsInput struct {
	RaffleID string

	// AfterID skips events up to and including this ID, for polling observers
	AfterID string

	// Limit caps the number of events returned. Zero means no limit.
	Limit int64
}

// ListEventsOutput contains the events found
type ListEventsOutput struct {
	Events []models.Event
}

// DeleteEventsInput contains parameters for deleting a raffle's events
type DeleteEventsInput struct {
	RaffleID string
}
