package raffle

import (
	"time"

	"github.com/KirkDiggler/raffled/internal/common/clock"
	"github.com/KirkDiggler/raffled/internal/common/uuid"
	"github.com/KirkDiggler/raffled/internal/models"
	engine "github.com/KirkDiggler/raffled/internal/raffle"
	"github.com/KirkDiggler/raffled/internal/random"
	eventRepo "github.com/KirkDiggler/raffled/internal/repositories/events"
	raffleRepo "github.com/KirkDiggler/raffled/internal/repositories/raffle"
)

// Config holds configuration for the raffle service
type Config struct {
	// Rules every raffle runs under. The zero value means engine.DefaultRules.
	Rules engine.Rules

	// Repository dependencies
	RaffleRepo raffleRepo.Repository
	EventRepo  eventRepo.Repository

	// Service dependencies
	Clock         clock.Clock
	Random        random.Source
	UUIDGenerator uuid.UUID
}

// Status is a read-only view of a raffle
type Status struct {
	RaffleID  string
	Collector models.User

	// Count is the number of users still eligible to win
	Count int

	// Entrants is the number of users that ever registered
	Entrants int

	TotalCollected models.Stake
	WinnersCount   int
	Completed      bool
	Winners        []models.User
	FirstWinner    *models.User
	LastWinner     *models.User

	// Both nil until the countdown is armed
	CountdownStartedAt *time.Time
	DrawEligibleAt     *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

type CreateRaffleInput struct {
	Collector models.User
}

type CreateRaffleOutput struct {
	RaffleID string
}

type RegisterInput struct {
	RaffleID string
	User     models.User
	Stake    models.Stake
}

type RegisterOutput struct {
	Count          int
	TotalCollected models.Stake

	// CountdownStarted is true only for the registration that armed the countdown
	CountdownStarted   bool
	CountdownStartedAt *time.Time
}

type DrawInput struct {
	RaffleID string
}

type DrawOutput struct {
	Winner       models.User
	WinnersCount int

	// Remaining is the roster size after the draw
	Remaining int
	Completed bool
}

type GetRaffleInput struct {
	RaffleID string
}

type GetRaffleOutput struct {
	Status *Status
}

type ListRafflesInput struct {
}

type ListRafflesOutput struct {
	Raffles []*Status
}

type DeleteRaffleInput struct {
	RaffleID string
}

type DeleteRaffleOutput struct {
}

type ListEventsInput struct {
	RaffleID string

	// AfterID returns only events newer than this ID
	AfterID string

	// Limit caps the number of events. Zero means all.
	Limit int64
}

type ListEventsOutput struct {
	Events []models.Event
}
