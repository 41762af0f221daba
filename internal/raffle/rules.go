package raffle

import (
	"fmt"
	"time"

	"github.com/KirkDiggler/raffled/internal/models"
)

const (
	// MinStake is the smallest accepted entry amount
	MinStake models.Stake = 10_000_000_000_000

	// MaxStake is the largest accepted entry amount
	MaxStake models.Stake = 100_000_000_000_000

	// WinnersCount is the number of draws that completes a raffle
	WinnersCount = 2

	// PlayersRequiredToStart is the quorum that arms the countdown and permits a draw
	PlayersRequiredToStart = 5

	// CountdownMinimum is the wait between arming the countdown and the first draw
	CountdownMinimum = 15 * time.Minute
)

// Rules holds the tunable constants of a raffle
type Rules struct {
	// Inclusive bounds on a single stake
	MinStake models.Stake
	MaxStake models.Stake

	// Number of winners drawn before the raffle is completed
	WinnersCount int

	// Roster size that arms the countdown and is required to draw
	Quorum int

	// Minimum time between arming the countdown and drawing
	CountdownMinimum time.Duration

	// RequireCountdown makes an unarmed countdown block draws.
	// When false an unarmed countdown enforces no wait and only the quorum check applies.
	RequireCountdown bool
}

// DefaultRules returns the standard raffle constants
func DefaultRules() Rules {
	return Rules{
		MinStake:         MinStake,
		MaxStake:         MaxStake,
		WinnersCount:     WinnersCount,
		Quorum:           PlayersRequiredToStart,
		CountdownMinimum: CountdownMinimum,
	}
}

// Validate checks the rules are internally consistent
func (r Rules) Validate() error {
	if r.MinStake == 0 {
		return fmt.Errorf("%w: minimum stake must be positive", ErrInvalidRules)
	}
	if r.MaxStake < r.MinStake {
		return fmt.Errorf("%w: maximum stake %d below minimum %d", ErrInvalidRules, r.MaxStake, r.MinStake)
	}
	if r.WinnersCount < 1 {
		return fmt.Errorf("%w: winners count must be at least 1", ErrInvalidRules)
	}
	if r.Quorum < 1 {
		return fmt.Errorf("%w: quorum must be at least 1", ErrInvalidRules)
	}
	if r.CountdownMinimum < 0 {
		return fmt.Errorf("%w: countdown minimum cannot be negative", ErrInvalidRules)
	}
	return nil
}
