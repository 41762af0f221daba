package raffle

//go:generate mockgen -package=mocks -destination=mocks/mock_repository.go github.com/KirkDiggler/raffled/internal/repositories/raffle Repository

import (
	"context"

	"github.com/KirkDiggler/raffled/internal/models"
)

// Repository defines the interface for raffle persistence
type Repository interface {
	// SaveRaffle persists a raffle if its Version matches the stored one.
	// A raffle with Version 0 must not exist yet. On success Version is incremented.
	SaveRaffle(ctx context.Context, input *SaveRaffleInput) error

	// GetRaffle retrieves a raffle by ID
	GetRaffle(ctx context.Context, input *GetRaffleInput) (*models.Raffle, error)

	// ListRaffles retrieves all raffles, oldest first
	ListRaffles(ctx context.Context, input *ListRafflesInput) (*ListRafflesOutput, error)

	// DeleteRaffle removes a raffle
	DeleteRaffle(ctx context.Context, input *DeleteRaffleInput) error
}
