package rest

import (
	"time"

	"github.com/KirkDiggler/raffled/internal/models"
	"github.com/KirkDiggler/raffled/internal/services/raffle"
)

// Stakes travel as decimal strings; they exceed the integers a JSON client
// can represent exactly.

type createRaffleRequest struct {
	Collector models.User `json:"collector"`
}

type createRaffleResponse struct {
	ID string `json:"id"`
}

type registerRequest struct {
	Stake models.Stake `json:"stake,string"`
}

type registerResponse struct {
	Count              int          `json:"count"`
	TotalCollected     models.Stake `json:"total_collected,string"`
	CountdownStarted   bool         `json:"countdown_started"`
	CountdownStartedAt *time.Time   `json:"countdown_started_at,omitempty"`
}

type drawResponse struct {
	Winner       models.User `json:"winner"`
	WinnersCount int         `json:"winners_count"`
	Remaining    int         `json:"remaining"`
	Completed    bool        `json:"completed"`
}

type statusResponse struct {
	ID                 string        `json:"id"`
	Collector          models.User   `json:"collector"`
	Count              int           `json:"count"`
	Entrants           int           `json:"entrants"`
	TotalCollected     models.Stake  `json:"total_collected,string"`
	WinnersCount       int           `json:"winners_count"`
	Completed          bool          `json:"completed"`
	Winners            []models.User `json:"winners"`
	FirstWinner        *models.User  `json:"first_winner,omitempty"`
	LastWinner         *models.User  `json:"last_winner,omitempty"`
	CountdownStartedAt *time.Time    `json:"countdown_started_at,omitempty"`
	DrawEligibleAt     *time.Time    `json:"draw_eligible_at,omitempty"`
	CreatedAt          time.Time     `json:"created_at"`
	UpdatedAt          time.Time     `json:"updated_at"`
}

type listEventsQuery struct {
	After string `form:"after"`
	Limit int64  `form:"limit" binding:"omitempty,min=0"`
}

type eventResponse struct {
	ID        string           `json:"id"`
	Type      models.EventType `json:"type"`
	User      models.User      `json:"user"`
	Timestamp time.Time        `json:"timestamp"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func toStatusResponse(status *raffle.Status) statusResponse {
	winners := status.Winners
	if winners == nil {
		winners = []models.User{}
	}

	return statusResponse{
		ID:                 status.RaffleID,
		Collector:          status.Collector,
		Count:              status.Count,
		Entrants:           status.Entrants,
		TotalCollected:     status.TotalCollected,
		WinnersCount:       status.WinnersCount,
		Completed:          status.Completed,
		Winners:            winners,
		FirstWinner:        status.FirstWinner,
		LastWinner:         status.LastWinner,
		CountdownStartedAt: status.CountdownStartedAt,
		DrawEligibleAt:     status.DrawEligibleAt,
		CreatedAt:          status.CreatedAt,
		UpdatedAt:          status.UpdatedAt,
	}
}

func toEventResponses(events []models.Event) []eventResponse {
	out := make([]eventResponse, 0, len(events))
	for _, e := range events {
		out = append(out, eventResponse{
			ID:        e.ID,
			Type:      e.Type,
			User:      e.User,
			Timestamp: e.Timestamp,
		})
	}
	return out
}
