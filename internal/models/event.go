package models

import (
	"time"
)

// EventType identifies a raffle notification
type EventType string

const (
	// EventTypeEntry is emitted when a user registers
	EventTypeEntry EventType = "entry"

	// EventTypeCountdownStarted is emitted when the roster first reaches quorum
	EventTypeCountdownStarted EventType = "countdown_started"

	// EventTypeWinnerChosen is emitted when a draw picks a winner
	EventTypeWinnerChosen EventType = "winner_chosen"
)

// Event is a notification delivered to observers outside the raffle engine
type Event struct {
	// ID is assigned by the event store when the event is appended
	ID string

	// RaffleID is the raffle the event belongs to
	RaffleID string

	// Type is the kind of notification
	Type EventType

	// User is the participant the event is about
	User User

	// Timestamp is the host time of the call that produced the event
	Timestamp time.Time
}
