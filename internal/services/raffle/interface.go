package raffle

//go:generate mockgen -package=mocks -destination=mocks/mock_service.go github.com/KirkDiggler/raffled/internal/services/raffle Service

import "context"

// Service defines the interface for hosting raffles
type Service interface {
	// CreateRaffle opens a new, empty raffle
	CreateRaffle(ctx context.Context, input *CreateRaffleInput) (*CreateRaffleOutput, error)

	// Register enters a user into a raffle with a stake
	Register(ctx context.Context, input *RegisterInput) (*RegisterOutput, error)

	// Draw picks the next winner of a raffle
	Draw(ctx context.Context, input *DrawInput) (*DrawOutput, error)

	// GetRaffle returns the current status of a raffle
	GetRaffle(ctx context.Context, input *GetRaffleInput) (*GetRaffleOutput, error)

	// ListRaffles returns the status of every raffle, oldest first
	ListRaffles(ctx context.Context, input *ListRafflesInput) (*ListRafflesOutput, error)

	// DeleteRaffle removes a raffle and its events
	DeleteRaffle(ctx context.Context, input *DeleteRaffleInput) (*DeleteRaffleOutput, error)

	// ListEvents returns the events a raffle has emitted
	ListEvents(ctx context.Context, input *ListEventsInput) (*ListEventsOutput, error)
}
