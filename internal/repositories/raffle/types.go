package raffle

import (
	"errors"

	"github.com/KirkDiggler/raffled/internal/models"
)

var (
	// ErrRaffleNotFound is returned when a raffle is not found
	ErrRaffleNotFound = errors.New("raffle not found")

	// ErrConcurrentModification is returned when the stored raffle changed since it was read
	ErrConcurrentModification = errors.New("raffle was modified concurrently")
)

// SaveRaffleInput contains parameters for saving a raffle
type SaveRaffleInput struct {
	Raffle *models.Raffle
}

// GetRaffleInput contains parameters for retrieving a raffle
type GetRaffleInput struct {
	RaffleID string
}

// ListRafflesInput contains parameters for listing raffles
type ListRafflesInput struct {
}

// ListRafflesOutput contains the raffles found
type ListRafflesOutput struct {
	Raffles []*models.Raffle
}

// DeleteRaffleInput contains parameters for deleting a raffle
type DeleteRaffleInput struct {
	RaffleID string
}

func validateSave(input *SaveRaffleInput) error {
	if input == nil || input.Raffle == nil {
		return errors.New("input and raffle cannot be nil")
	}
	if input.Raffle.ID == "" {
		return errors.New("raffle ID cannot be empty")
	}
	return nil
}
