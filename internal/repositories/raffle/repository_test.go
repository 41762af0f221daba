package raffle

import (
	"context"
	"errors"
	"time"

	"github.com/KirkDiggler/raffled/internal/models"
	"github.com/stretchr/testify/suite"
)

// repositoryTestSuite holds the behaviour every Repository implementation shares.
// Backend suites embed it and assign repo in SetupTest.
type repositoryTestSuite struct {
	suite.Suite
	repo    Repository
	ctx     context.Context
	testNow time.Time
}

func (s *repositoryTestSuite) setupShared() {
	s.ctx = context.Background()
	s.testNow = time.Date(2025, 4, 5, 10, 0, 0, 0, time.UTC)
}

func testUser(b byte) models.User {
	var u models.User
	for i := range u {
		u[i] = b
	}
	return u
}

func (s *repositoryTestSuite) newRaffle(id string, createdAt time.Time) *models.Raffle {
	countdown := createdAt.Add(time.Minute)
	return &models.Raffle{
		ID:        id,
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
		RaffleState: models.RaffleState{
			Collector: testUser(0xC0),
			Stakes: map[models.User]models.Stake{
				testUser(1): 10_000_000_000_100,
				testUser(2): 20_000_000_000_000,
			},
			Roster:             []models.User{testUser(1)},
			Winners:            []models.User{testUser(2)},
			TotalCollected:     30_000_000_000_100,
			CountdownStartedAt: &countdown,
		},
	}
}

func (s *repositoryTestSuite) TestSaveAndGetRaffle() {
	raffle := s.newRaffle("test-raffle-id", s.testNow)

	err := s.repo.SaveRaffle(s.ctx, &SaveRaffleInput{Raffle: raffle})
	s.Require().NoError(err)
	s.Equal(int64(1), raffle.Version)

	retrieved, err := s.repo.GetRaffle(s.ctx, &GetRaffleInput{RaffleID: "test-raffle-id"})
	s.Require().NoError(err)
	s.Require().NotNil(retrieved)

	s.Equal(raffle, retrieved)
	s.Equal(testUser(0xC0), retrieved.Collector)
	s.Equal(models.Stake(10_000_000_000_100), retrieved.Stakes[testUser(1)])
	s.Require().NotNil(retrieved.CountdownStartedAt)
	s.Equal(s.testNow.Add(time.Minute).Unix(), retrieved.CountdownStartedAt.Unix())
}

func (s *repositoryTestSuite) TestGetRaffle_NotFound() {
	retrieved, err := s.repo.GetRaffle(s.ctx, &GetRaffleInput{RaffleID: "missing"})
	s.Require().Error(err)
	s.True(errors.Is(err, ErrRaffleNotFound))
	s.Nil(retrieved)
}

func (s *repositoryTestSuite) TestGetRaffle_EmptyID() {
	_, err := s.repo.GetRaffle(s.ctx, &GetRaffleInput{})
	s.Error(err)
}

func (s *repositoryTestSuite) TestSaveRaffle_NilInput() {
	s.Error(s.repo.SaveRaffle(s.ctx, nil))
	s.Error(s.repo.SaveRaffle(s.ctx, &SaveRaffleInput{}))
	s.Error(s.repo.SaveRaffle(s.ctx, &SaveRaffleInput{Raffle: &models.Raffle{}}))
}

func (s *repositoryTestSuite) TestSaveRaffle_UpdateIncrementsVersion() {
	raffle := s.newRaffle("test-raffle-id", s.testNow)
	s.Require().NoError(s.repo.SaveRaffle(s.ctx, &SaveRaffleInput{Raffle: raffle}))

	raffle.Roster = nil
	raffle.Winners = append(raffle.Winners, testUser(1))
	raffle.UpdatedAt = s.testNow.Add(time.Hour)
	s.Require().NoError(s.repo.SaveRaffle(s.ctx, &SaveRaffleInput{Raffle: raffle}))
	s.Equal(int64(2), raffle.Version)

	retrieved, err := s.repo.GetRaffle(s.ctx, &GetRaffleInput{RaffleID: "test-raffle-id"})
	s.Require().NoError(err)
	s.Equal(int64(2), retrieved.Version)
	s.Empty(retrieved.Roster)
	s.Equal([]models.User{testUser(2), testUser(1)}, retrieved.Winners)
	s.Equal(s.testNow.Add(time.Hour).Unix(), retrieved.UpdatedAt.Unix())
}

func (s *repositoryTestSuite) TestSaveRaffle_StaleVersion() {
	raffle := s.newRaffle("test-raffle-id", s.testNow)
	s.Require().NoError(s.repo.SaveRaffle(s.ctx, &SaveRaffleInput{Raffle: raffle}))

	// Two writers read version 1
	first, err := s.repo.GetRaffle(s.ctx, &GetRaffleInput{RaffleID: "test-raffle-id"})
	s.Require().NoError(err)
	second, err := s.repo.GetRaffle(s.ctx, &GetRaffleInput{RaffleID: "test-raffle-id"})
	s.Require().NoError(err)

	s.Require().NoError(s.repo.SaveRaffle(s.ctx, &SaveRaffleInput{Raffle: first}))

	err = s.repo.SaveRaffle(s.ctx, &SaveRaffleInput{Raffle: second})
	s.Require().Error(err)
	s.True(errors.Is(err, ErrConcurrentModification))
	s.Equal(int64(1), second.Version)
}

func (s *repositoryTestSuite) TestSaveRaffle_CreateExisting() {
	s.Require().NoError(s.repo.SaveRaffle(s.ctx, &SaveRaffleInput{Raffle: s.newRaffle("test-raffle-id", s.testNow)}))

	duplicate := s.newRaffle("test-raffle-id", s.testNow)
	err := s.repo.SaveRaffle(s.ctx, &SaveRaffleInput{Raffle: duplicate})
	s.Require().Error(err)
	s.True(errors.Is(err, ErrConcurrentModification))
	s.Equal(int64(0), duplicate.Version)
}

func (s *repositoryTestSuite) TestListRaffles_CreationOrder() {
	s.Require().NoError(s.repo.SaveRaffle(s.ctx, &SaveRaffleInput{Raffle: s.newRaffle("raffle-b", s.testNow.Add(time.Minute))}))
	s.Require().NoError(s.repo.SaveRaffle(s.ctx, &SaveRaffleInput{Raffle: s.newRaffle("raffle-a", s.testNow)}))
	s.Require().NoError(s.repo.SaveRaffle(s.ctx, &SaveRaffleInput{Raffle: s.newRaffle("raffle-c", s.testNow.Add(time.Hour))}))

	output, err := s.repo.ListRaffles(s.ctx, &ListRafflesInput{})
	s.Require().NoError(err)
	s.Require().Len(output.Raffles, 3)
	s.Equal("raffle-a", output.Raffles[0].ID)
	s.Equal("raffle-b", output.Raffles[1].ID)
	s.Equal("raffle-c", output.Raffles[2].ID)
}

func (s *repositoryTestSuite) TestListRaffles_Empty() {
	output, err := s.repo.ListRaffles(s.ctx, &ListRafflesInput{})
	s.Require().NoError(err)
	s.NotNil(output.Raffles)
	s.Empty(output.Raffles)
}

func (s *repositoryTestSuite) TestDeleteRaffle() {
	s.Require().NoError(s.repo.SaveRaffle(s.ctx, &SaveRaffleInput{Raffle: s.newRaffle("test-raffle-id", s.testNow)}))

	s.Require().NoError(s.repo.DeleteRaffle(s.ctx, &DeleteRaffleInput{RaffleID: "test-raffle-id"}))

	_, err := s.repo.GetRaffle(s.ctx, &GetRaffleInput{RaffleID: "test-raffle-id"})
	s.True(errors.Is(err, ErrRaffleNotFound))

	output, err := s.repo.ListRaffles(s.ctx, &ListRafflesInput{})
	s.Require().NoError(err)
	s.Empty(output.Raffles)

	err = s.repo.DeleteRaffle(s.ctx, &DeleteRaffleInput{RaffleID: "test-raffle-id"})
	s.True(errors.Is(err, ErrRaffleNotFound))
}
