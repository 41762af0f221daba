package raffle

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/logger"

	"github.com/KirkDiggler/raffled/internal/common/clock"
	"github.com/KirkDiggler/raffled/internal/common/uuid"
	"github.com/KirkDiggler/raffled/internal/models"
	engine "github.com/KirkDiggler/raffled/internal/raffle"
	"github.com/KirkDiggler/raffled/internal/random"
	eventRepo "github.com/KirkDiggler/raffled/internal/repositories/events"
	raffleRepo "github.com/KirkDiggler/raffled/internal/repositories/raffle"
)

// service implements the Service interface
type service struct {
	rules         engine.Rules
	raffleRepo    raffleRepo.Repository
	eventRepo     eventRepo.Repository
	clock         clock.Clock
	random        random.Source
	uuidGenerator uuid.UUID

	// Mutations of one raffle are serialized; different raffles proceed in parallel.
	// An entry lives only while some call holds or waits for it.
	mu    sync.Mutex
	locks map[string]*raffleLock
}

type raffleLock struct {
	mu   sync.Mutex
	refs int
}

// New creates a new raffle service
func New(cfg *Config) (*service, error) {
	if cfg == nil {
		return nil, ErrNilConfig
	}
	if cfg.RaffleRepo == nil {
		return nil, ErrNilRaffleRepo
	}
	if cfg.EventRepo == nil {
		return nil, ErrNilEventRepo
	}
	if cfg.Clock == nil {
		return nil, ErrNilClock
	}
	if cfg.Random == nil {
		return nil, ErrNilRandom
	}
	if cfg.UUIDGenerator == nil {
		return nil, ErrNilUUIDGenerator
	}

	rules := cfg.Rules
	if rules == (engine.Rules{}) {
		rules = engine.DefaultRules()
	}
	if err := rules.Validate(); err != nil {
		return nil, err
	}

	return &service{
		rules:         rules,
		raffleRepo:    cfg.RaffleRepo,
		eventRepo:     cfg.EventRepo,
		clock:         cfg.Clock,
		random:        cfg.Random,
		uuidGenerator: cfg.UUIDGenerator,
		locks:         make(map[string]*raffleLock),
	}, nil
}

// CreateRaffle opens a new, empty raffle
func (s *service) CreateRaffle(ctx context.Context, input *CreateRaffleInput) (*CreateRaffleOutput, error) {
	if input == nil {
		return nil, ErrNilInput
	}
	if input.Collector.IsZero() {
		return nil, ErrInvalidCollector
	}

	r, err := engine.New(input.Collector, s.rules)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	stored := &models.Raffle{
		ID:          s.uuidGenerator.NewUUID(),
		CreatedAt:   now,
		UpdatedAt:   now,
		RaffleState: r.Snapshot(),
	}

	if err := s.raffleRepo.SaveRaffle(ctx, &raffleRepo.SaveRaffleInput{Raffle: stored}); err != nil {
		return nil, fmt.Errorf("failed to save raffle: %w", err)
	}

	return &CreateRaffleOutput{
		RaffleID: stored.ID,
	}, nil
}

// Register enters a user into a raffle with a stake
func (s *service) Register(ctx context.Context, input *RegisterInput) (*RegisterOutput, error) {
	if input == nil {
		return nil, ErrNilInput
	}
	if input.RaffleID == "" {
		return nil, ErrMissingRaffleID
	}
	if input.User.IsZero() {
		return nil, ErrInvalidUser
	}

	var countdownStarted bool
	r, err := s.mutate(ctx, input.RaffleID, func(r *engine.Raffle, now time.Time) ([]models.Event, error) {
		events, err := r.Register(input.User, input.Stake, now)
		if err != nil {
			return nil, err
		}
		for _, e := range events {
			if e.Type == models.EventTypeCountdownStarted {
				countdownStarted = true
			}
		}
		return events, nil
	})
	if err != nil {
		return nil, err
	}

	output := &RegisterOutput{
		Count:            r.Count(),
		TotalCollected:   r.TotalCollected(),
		CountdownStarted: countdownStarted,
	}
	if startedAt, ok := r.CountdownStartedAt(); ok {
		output.CountdownStartedAt = &startedAt
	}

	return output, nil
}

// Draw picks the next winner of a raffle
func (s *service) Draw(ctx context.Context, input *DrawInput) (*DrawOutput, error) {
	if input == nil {
		return nil, ErrNilInput
	}
	if input.RaffleID == "" {
		return nil, ErrMissingRaffleID
	}

	r, err := s.mutate(ctx, input.RaffleID, func(r *engine.Raffle, now time.Time) ([]models.Event, error) {
		return r.Draw(now, s.random)
	})
	if err != nil {
		return nil, err
	}

	winner, _ := r.LastWinner()

	return &DrawOutput{
		Winner:       winner,
		WinnersCount: r.WinnersCount(),
		Remaining:    r.Count(),
		Completed:    r.IsCompleted(),
	}, nil
}

// GetRaffle returns the current status of a raffle
func (s *service) GetRaffle(ctx context.Context, input *GetRaffleInput) (*GetRaffleOutput, error) {
	if input == nil {
		return nil, ErrNilInput
	}
	if input.RaffleID == "" {
		return nil, ErrMissingRaffleID
	}

	stored, r, err := s.load(ctx, input.RaffleID)
	if err != nil {
		return nil, err
	}

	return &GetRaffleOutput{
		Status: buildStatus(stored, r),
	}, nil
}

// ListRaffles returns the status of every raffle, oldest first
func (s *service) ListRaffles(ctx context.Context, input *ListRafflesInput) (*ListRafflesOutput, error) {
	if input == nil {
		return nil, ErrNilInput
	}

	listOutput, err := s.raffleRepo.ListRaffles(ctx, &raffleRepo.ListRafflesInput{})
	if err != nil {
		return nil, fmt.Errorf("failed to list raffles: %w", err)
	}

	statuses := make([]*Status, 0, len(listOutput.Raffles))
	for _, stored := range listOutput.Raffles {
		r, err := engine.Restore(stored.RaffleState, s.rules)
		if err != nil {
			return nil, fmt.Errorf("failed to restore raffle %s: %w", stored.ID, err)
		}
		statuses = append(statuses, buildStatus(stored, r))
	}

	return &ListRafflesOutput{
		Raffles: statuses,
	}, nil
}

// DeleteRaffle removes a raffle and its events. The raffle is gone once this
// returns; a failure to drop its event log is only logged.
func (s *service) DeleteRaffle(ctx context.Context, input *DeleteRaffleInput) (*DeleteRaffleOutput, error) {
	if input == nil {
		return nil, ErrNilInput
	}
	if input.RaffleID == "" {
		return nil, ErrMissingRaffleID
	}

	unlock := s.lock(input.RaffleID)
	defer unlock()

	err := s.raffleRepo.DeleteRaffle(ctx, &raffleRepo.DeleteRaffleInput{RaffleID: input.RaffleID})
	if err != nil {
		if errors.Is(err, raffleRepo.ErrRaffleNotFound) {
			return nil, ErrRaffleNotFound
		}
		return nil, fmt.Errorf("failed to delete raffle: %w", err)
	}

	if err := s.eventRepo.DeleteEvents(ctx, &eventRepo.DeleteEventsInput{RaffleID: input.RaffleID}); err != nil {
		logger.Errorf("failed to delete events for raffle %s: %v", input.RaffleID, err)
	}

	return &DeleteRaffleOutput{}, nil
}

// ListEvents returns the events a raffle has emitted
func (s *service) ListEvents(ctx context.Context, input *ListEventsInput) (*ListEventsOutput, error) {
	if input == nil {
		return nil, ErrNilInput
	}
	if input.RaffleID == "" {
		return nil, ErrMissingRaffleID
	}

	if _, _, err := s.load(ctx, input.RaffleID); err != nil {
		return nil, err
	}

	eventsOutput, err := s.eventRepo.ListEvents(ctx, &eventRepo.ListEventsInput{
		RaffleID: input.RaffleID,
		AfterID:  input.AfterID,
		Limit:    input.Limit,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}

	return &ListEventsOutput{
		Events: eventsOutput.Events,
	}, nil
}

// mutate runs op against the stored raffle under the raffle's lock, saves the
// result and delivers the events op produced. A rejected op saves nothing.
func (s *service) mutate(ctx context.Context, raffleID string, op func(*engine.Raffle, time.Time) ([]models.Event, error)) (*engine.Raffle, error) {
	unlock := s.lock(raffleID)
	defer unlock()

	stored, r, err := s.load(ctx, raffleID)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	events, err := op(r, now)
	if err != nil {
		return nil, err
	}

	stored.RaffleState = r.Snapshot()
	stored.UpdatedAt = now

	if err := s.raffleRepo.SaveRaffle(ctx, &raffleRepo.SaveRaffleInput{Raffle: stored}); err != nil {
		return nil, fmt.Errorf("failed to save raffle: %w", err)
	}

	s.publish(ctx, raffleID, events)

	return r, nil
}

// publish delivers events after the state change is committed. A delivery
// failure is logged; the registration or draw it reports still stands.
func (s *service) publish(ctx context.Context, raffleID string, events []models.Event) {
	if len(events) == 0 {
		return
	}

	for i := range events {
		events[i].RaffleID = raffleID
	}

	_, err := s.eventRepo.AppendEvents(ctx, &eventRepo.AppendEventsInput{
		RaffleID: raffleID,
		Events:   events,
	})
	if err != nil {
		logger.Errorf("failed to deliver %d events for raffle %s: %v", len(events), raffleID, err)
	}
}

func (s *service) load(ctx context.Context, raffleID string) (*models.Raffle, *engine.Raffle, error) {
	stored, err := s.raffleRepo.GetRaffle(ctx, &raffleRepo.GetRaffleInput{RaffleID: raffleID})
	if err != nil {
		if errors.Is(err, raffleRepo.ErrRaffleNotFound) {
			return nil, nil, ErrRaffleNotFound
		}
		return nil, nil, fmt.Errorf("failed to get raffle: %w", err)
	}

	r, err := engine.Restore(stored.RaffleState, s.rules)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to restore raffle %s: %w", raffleID, err)
	}

	return stored, r, nil
}

// lock acquires the raffle's mutex and returns its release func
func (s *service) lock(raffleID string) func() {
	s.mu.Lock()
	l, ok := s.locks[raffleID]
	if !ok {
		l = &raffleLock{}
		s.locks[raffleID] = l
	}
	l.refs++
	s.mu.Unlock()

	l.mu.Lock()

	return func() {
		l.mu.Unlock()

		s.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(s.locks, raffleID)
		}
		s.mu.Unlock()
	}
}

func buildStatus(stored *models.Raffle, r *engine.Raffle) *Status {
	status := &Status{
		RaffleID:       stored.ID,
		Collector:      r.Collector(),
		Count:          r.Count(),
		Entrants:       r.Entrants(),
		TotalCollected: r.TotalCollected(),
		WinnersCount:   r.WinnersCount(),
		Completed:      r.IsCompleted(),
		Winners:        r.Winners(),
		CreatedAt:      stored.CreatedAt,
		UpdatedAt:      stored.UpdatedAt,
	}

	if first, ok := r.FirstWinner(); ok {
		status.FirstWinner = &first
	}
	if last, ok := r.LastWinner(); ok {
		status.LastWinner = &last
	}
	if startedAt, ok := r.CountdownStartedAt(); ok {
		status.CountdownStartedAt = &startedAt
	}
	if eligibleAt, ok := r.DrawEligibleAt(); ok {
		status.DrawEligibleAt = &eligibleAt
	}

	return status
}
