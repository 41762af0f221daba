package raffle

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/KirkDiggler/raffled/internal/common/clock"
	"github.com/KirkDiggler/raffled/internal/common/uuid"
	"github.com/KirkDiggler/raffled/internal/models"
	engine "github.com/KirkDiggler/raffled/internal/raffle"
	randomMocks "github.com/KirkDiggler/raffled/internal/random/mocks"
	eventRepo "github.com/KirkDiggler/raffled/internal/repositories/events"
	raffleRepo "github.com/KirkDiggler/raffled/internal/repositories/raffle"
)

// TestEndToEndTrace runs a full raffle against Redis backed repositories and
// compares the delivered event stream with a golden file.
func TestEndToEndTrace(t *testing.T) {
	ctx := context.Background()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	raffles, err := raffleRepo.NewRedis(&raffleRepo.Config{RedisClient: client})
	require.NoError(t, err)
	events, err := eventRepo.NewRedis(&eventRepo.Config{RedisClient: client})
	require.NoError(t, err)

	ctrl := gomock.NewController(t)
	rng := randomMocks.NewMockSource(ctrl)
	gomock.InOrder(
		rng.EXPECT().Uint32().Return(uint32(1)),
		rng.EXPECT().Uint32().Return(uint32(7)),
	)

	clk := clock.NewManual(time.Date(2025, 4, 19, 12, 0, 0, 0, time.UTC))

	svc, err := New(&Config{
		RaffleRepo:    raffles,
		EventRepo:     events,
		Clock:         clk,
		Random:        rng,
		UUIDGenerator: uuid.New(),
	})
	require.NoError(t, err)

	created, err := svc.CreateRaffle(ctx, &CreateRaffleInput{Collector: testUser(0xc0)})
	require.NoError(t, err)
	raffleID := created.RaffleID

	for i := 1; i <= 6; i++ {
		_, err := svc.Register(ctx, &RegisterInput{
			RaffleID: raffleID,
			User:     testUser(byte(i)),
			Stake:    engine.MinStake * models.Stake(i),
		})
		require.NoError(t, err)
		clk.Advance(time.Minute)
	}

	_, err = svc.Draw(ctx, &DrawInput{RaffleID: raffleID})
	require.ErrorIs(t, err, engine.ErrCountdownNotElapsed)

	// Countdown armed by the fifth entry at 12:04
	clk.Advance(13 * time.Minute)

	first, err := svc.Draw(ctx, &DrawInput{RaffleID: raffleID})
	require.NoError(t, err)
	require.Equal(t, testUser(2), first.Winner)
	require.Equal(t, 5, first.Remaining)

	clk.Advance(time.Minute)

	second, err := svc.Draw(ctx, &DrawInput{RaffleID: raffleID})
	require.NoError(t, err)
	require.Equal(t, testUser(3), second.Winner)
	require.True(t, second.Completed)

	_, err = svc.Draw(ctx, &DrawInput{RaffleID: raffleID})
	require.ErrorIs(t, err, engine.ErrCompleted)

	_, err = svc.Register(ctx, &RegisterInput{RaffleID: raffleID, User: testUser(7), Stake: engine.MinStake})
	require.ErrorIs(t, err, engine.ErrCompleted)

	status, err := svc.GetRaffle(ctx, &GetRaffleInput{RaffleID: raffleID})
	require.NoError(t, err)
	require.Equal(t, 4, status.Status.Count)
	require.Equal(t, 6, status.Status.Entrants)
	require.Equal(t, 21*engine.MinStake, status.Status.TotalCollected)

	listed, err := svc.ListEvents(ctx, &ListEventsInput{RaffleID: raffleID})
	require.NoError(t, err)

	var trace strings.Builder
	for _, e := range listed.Events {
		fmt.Fprintf(&trace, "%s %s %s\n", e.Timestamp.Format(time.RFC3339), e.Type, e.User)
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "end_to_end_trace", []byte(trace.String()))
}

func TestListEvents_MalformedAfterID(t *testing.T) {
	ctx := context.Background()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	raffles, err := raffleRepo.NewRedis(&raffleRepo.Config{RedisClient: client})
	require.NoError(t, err)
	events, err := eventRepo.NewRedis(&eventRepo.Config{RedisClient: client})
	require.NoError(t, err)

	svc, err := New(&Config{
		RaffleRepo:    raffles,
		EventRepo:     events,
		Clock:         clock.NewManual(time.Date(2025, 4, 19, 12, 0, 0, 0, time.UTC)),
		Random:        randomMocks.NewMockSource(gomock.NewController(t)),
		UUIDGenerator: uuid.New(),
	})
	require.NoError(t, err)

	created, err := svc.CreateRaffle(ctx, &CreateRaffleInput{Collector: testUser(0xc0)})
	require.NoError(t, err)

	_, err = svc.ListEvents(ctx, &ListEventsInput{RaffleID: created.RaffleID, AfterID: "not-an-id"})
	require.ErrorIs(t, err, eventRepo.ErrInvalidEventID)
}
