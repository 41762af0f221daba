package models

import (
	"time"
)

// RaffleState is the rule-bearing state of a raffle, owned by the raffle engine
type RaffleState struct {
	// Collector is the identity recorded at construction to receive the pot
	Collector User

	// Stakes maps every user that ever registered to the amount they staked.
	// Winners keep their entry so they can never register again.
	Stakes map[User]Stake

	// Roster is the ordered list of users still eligible to be drawn
	Roster []User

	// TotalCollected is the running sum of every registered stake
	TotalCollected Stake

	// CountdownStartedAt is set once, when the roster first reaches quorum
	CountdownStartedAt *time.Time

	// Winners is the append-only list of drawn users, in draw order
	Winners []User
}

// Raffle is a persisted raffle
type Raffle struct {
	// ID is the unique identifier for the raffle
	ID string

	// Version increases by one on every save and guards concurrent writers
	Version int64

	// CreatedAt is when the raffle was created
	CreatedAt time.Time

	// UpdatedAt is when the raffle was last updated
	UpdatedAt time.Time

	RaffleState
}
