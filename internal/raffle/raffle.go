// Package raffle implements the raffle state machine: participant
// registration, the quorum-armed countdown, and the winner draw.
//
// A Raffle is a single owned aggregate with no I/O and no locking. Callers
// serialize access and supply time and randomness on every call. Every
// operation either succeeds completely or returns an Error and leaves the
// raffle untouched.
//
// Draw fairness is only as good as the Randomness the host provides; the
// engine makes no assumption that the source is adversary resistant.
package raffle

import (
	"fmt"
	"time"

	"github.com/KirkDiggler/raffled/internal/models"
)

// Randomness supplies one uniformly distributed value per draw
type Randomness interface {
	Uint32() uint32
}

// Raffle is the raffle aggregate
type Raffle struct {
	rules     Rules
	collector models.User
	pool      *pool
	countdown countdown
	winners   []models.User
}

// New creates an empty raffle
func New(collector models.User, rules Rules) (*Raffle, error) {
	if err := rules.Validate(); err != nil {
		return nil, err
	}

	return &Raffle{
		rules:     rules,
		collector: collector,
		pool:      newPool(),
		winners:   make([]models.User, 0, rules.WinnersCount),
	}, nil
}

// Restore rebuilds a raffle from a snapshot, checking it is consistent
func Restore(state models.RaffleState, rules Rules) (*Raffle, error) {
	r, err := New(state.Collector, rules)
	if err != nil {
		return nil, err
	}

	if len(state.Winners) > rules.WinnersCount {
		return nil, fmt.Errorf("%w: %d winners exceeds quota of %d", ErrCorruptState, len(state.Winners), rules.WinnersCount)
	}
	if len(state.Stakes) != len(state.Roster)+len(state.Winners) {
		return nil, fmt.Errorf("%w: %d stakes for %d roster entries and %d winners",
			ErrCorruptState, len(state.Stakes), len(state.Roster), len(state.Winners))
	}

	for _, u := range state.Roster {
		stake, ok := state.Stakes[u]
		if !ok {
			return nil, fmt.Errorf("%w: roster user %s has no stake", ErrCorruptState, u)
		}
		if r.pool.contains(u) {
			return nil, fmt.Errorf("%w: roster user %s listed twice", ErrCorruptState, u)
		}
		r.pool.slots[u] = slot{stake: stake, index: len(r.pool.roster)}
		r.pool.roster = append(r.pool.roster, u)
	}

	for _, u := range state.Winners {
		stake, ok := state.Stakes[u]
		if !ok {
			return nil, fmt.Errorf("%w: winner %s has no stake", ErrCorruptState, u)
		}
		if r.pool.contains(u) {
			return nil, fmt.Errorf("%w: winner %s is also on the roster or won twice", ErrCorruptState, u)
		}
		r.pool.slots[u] = slot{stake: stake, index: drawn}
		r.winners = append(r.winners, u)
	}

	for _, s := range r.pool.slots {
		if !r.pool.canAdd(s.stake) {
			return nil, fmt.Errorf("%w: stakes overflow the total", ErrCorruptState)
		}
		r.pool.total += s.stake
	}
	if r.pool.total != state.TotalCollected {
		return nil, fmt.Errorf("%w: total collected %d does not match stakes sum %d",
			ErrCorruptState, state.TotalCollected, r.pool.total)
	}

	if state.CountdownStartedAt != nil {
		r.countdown.arm(*state.CountdownStartedAt)
	}

	return r, nil
}

// Snapshot returns a copy of the raffle state suitable for persisting
func (r *Raffle) Snapshot() models.RaffleState {
	state := models.RaffleState{
		Collector:      r.collector,
		Stakes:         make(map[models.User]models.Stake, len(r.pool.slots)),
		Roster:         append([]models.User{}, r.pool.roster...),
		TotalCollected: r.pool.total,
		Winners:        append([]models.User{}, r.winners...),
	}

	for u, s := range r.pool.slots {
		state.Stakes[u] = s.stake
	}

	if r.countdown.armed {
		startedAt := r.countdown.startedAt
		state.CountdownStartedAt = &startedAt
	}

	return state
}

// Register enters user into the raffle with stake.
// The registration that brings the roster to quorum also arms the countdown.
func (r *Raffle) Register(user models.User, stake models.Stake, now time.Time) ([]models.Event, error) {
	if r.IsCompleted() {
		return nil, ErrCompleted
	}

	if stake < r.rules.MinStake || stake > r.rules.MaxStake || !r.pool.canAdd(stake) {
		return nil, ErrInvalidEntryAmount
	}

	if r.pool.contains(user) {
		return nil, ErrAlreadyRegistered
	}

	r.pool.add(user, stake)

	events := []models.Event{{
		Type:      models.EventTypeEntry,
		User:      user,
		Timestamp: now,
	}}

	if !r.countdown.armed && r.pool.len() >= r.rules.Quorum {
		r.countdown.arm(now)
		events = append(events, models.Event{
			Type:      models.EventTypeCountdownStarted,
			User:      user,
			Timestamp: now,
		})
	}

	return events, nil
}

// Draw picks one winner from the roster using a single value from rng
func (r *Raffle) Draw(now time.Time, rng Randomness) ([]models.Event, error) {
	if !r.countdown.isElapsed(now, r.rules.CountdownMinimum) {
		return nil, ErrCountdownNotElapsed
	}
	if r.rules.RequireCountdown && !r.countdown.armed {
		return nil, ErrCountdownNotElapsed
	}

	if r.IsCompleted() {
		return nil, ErrCompleted
	}

	// Quorum counts everyone who entered, so drawn winners still count
	// toward it; the roster itself shrinks by one on every draw.
	count := r.pool.len()
	if count == 0 || r.Entrants() < r.rules.Quorum {
		return nil, ErrTooFewParticipants
	}

	index := int(rng.Uint32() % uint32(count))
	winner := r.pool.removeAt(index)
	r.winners = append(r.winners, winner)

	return []models.Event{{
		Type:      models.EventTypeWinnerChosen,
		User:      winner,
		Timestamp: now,
	}}, nil
}

// Rules returns the rules the raffle runs under
func (r *Raffle) Rules() Rules {
	return r.rules
}

// Collector returns the identity recorded at construction
func (r *Raffle) Collector() models.User {
	return r.collector
}

// Count returns the number of users still on the roster
func (r *Raffle) Count() int {
	return r.pool.len()
}

// Entrants returns the number of users that ever registered, winners included
func (r *Raffle) Entrants() int {
	return len(r.pool.slots)
}

// TotalCollected returns the sum of every stake ever registered.
// Drawing winners does not reduce it.
func (r *Raffle) TotalCollected() models.Stake {
	return r.pool.total
}

// IsRegistered reports whether user has ever registered, including past winners
func (r *Raffle) IsRegistered(user models.User) bool {
	return r.pool.contains(user)
}

// StakeOf returns the amount user registered with
func (r *Raffle) StakeOf(user models.User) (models.Stake, bool) {
	s, ok := r.pool.slots[user]
	return s.stake, ok
}

// WinnersCount returns the number of winners drawn so far
func (r *Raffle) WinnersCount() int {
	return len(r.winners)
}

// IsCompleted reports whether every winner has been drawn
func (r *Raffle) IsCompleted() bool {
	return len(r.winners) == r.rules.WinnersCount
}

// Winners returns the drawn winners in draw order
func (r *Raffle) Winners() []models.User {
	return append([]models.User{}, r.winners...)
}

// FirstWinner returns the first user drawn
func (r *Raffle) FirstWinner() (models.User, bool) {
	if len(r.winners) == 0 {
		return models.User{}, false
	}
	return r.winners[0], true
}

// LastWinner returns the most recent user drawn
func (r *Raffle) LastWinner() (models.User, bool) {
	if len(r.winners) == 0 {
		return models.User{}, false
	}
	return r.winners[len(r.winners)-1], true
}

// CountdownStartedAt returns when the countdown was armed
func (r *Raffle) CountdownStartedAt() (time.Time, bool) {
	return r.countdown.startedAt, r.countdown.armed
}

// DrawEligibleAt returns the earliest time the countdown stops blocking a draw
func (r *Raffle) DrawEligibleAt() (time.Time, bool) {
	if !r.countdown.armed {
		return time.Time{}, false
	}
	return r.countdown.startedAt.Add(r.rules.CountdownMinimum), true
}
