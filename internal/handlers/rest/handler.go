// Package rest exposes the raffle service over HTTP
package rest

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/KirkDiggler/raffled/internal/models"
	"github.com/KirkDiggler/raffled/internal/services/raffle"
)

// UserHeader carries the identity of the caller registering an entry
const UserHeader = "X-Raffle-User"

const userContextKey = "raffle_user"

// Handler serves the raffle HTTP routes
type Handler struct {
	raffleService raffle.Service
}

// Config holds the dependencies of the handler
type Config struct {
	RaffleService raffle.Service
}

// New creates a new HTTP handler
func New(cfg *Config) (*Handler, error) {
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}

	if cfg.RaffleService == nil {
		return nil, errors.New("raffle service cannot be nil")
	}

	return &Handler{
		raffleService: cfg.RaffleService,
	}, nil
}

// RegisterRoutes registers all raffle routes on router
func (h *Handler) RegisterRoutes(router gin.IRouter) {
	router.GET("/healthz", h.Health)

	raffles := router.Group("/raffles")
	raffles.POST("", h.CreateRaffle)
	raffles.GET("", h.ListRaffles)
	raffles.GET("/:id", h.GetRaffle)
	raffles.POST("/:id/entries", requireUser(), h.Register)
	raffles.DELETE("/:id", h.DeleteRaffle)
	raffles.POST("/:id/draw", h.Draw)
	raffles.GET("/:id/events", h.ListEvents)
}

// Health reports that the process is serving
func (h *Handler) Health(c *gin.Context) {
	c.String(http.StatusOK, "ok")
}

// CreateRaffle opens a new raffle
func (h *Handler) CreateRaffle(c *gin.Context) {
	var req createRaffleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortBadRequest(c, err)
		return
	}

	output, err := h.raffleService.CreateRaffle(c.Request.Context(), &raffle.CreateRaffleInput{
		Collector: req.Collector,
	})
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, createRaffleResponse{ID: output.RaffleID})
}

// ListRaffles returns every raffle's status
func (h *Handler) ListRaffles(c *gin.Context) {
	output, err := h.raffleService.ListRaffles(c.Request.Context(), &raffle.ListRafflesInput{})
	if err != nil {
		abortWithError(c, err)
		return
	}

	statuses := make([]statusResponse, 0, len(output.Raffles))
	for _, status := range output.Raffles {
		statuses = append(statuses, toStatusResponse(status))
	}

	c.JSON(http.StatusOK, statuses)
}

// GetRaffle returns one raffle's status
func (h *Handler) GetRaffle(c *gin.Context) {
	output, err := h.raffleService.GetRaffle(c.Request.Context(), &raffle.GetRaffleInput{
		RaffleID: c.Param("id"),
	})
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, toStatusResponse(output.Status))
}

// DeleteRaffle removes a raffle and its events
func (h *Handler) DeleteRaffle(c *gin.Context) {
	_, err := h.raffleService.DeleteRaffle(c.Request.Context(), &raffle.DeleteRaffleInput{
		RaffleID: c.Param("id"),
	})
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// Register enters the calling user into a raffle
func (h *Handler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortBadRequest(c, err)
		return
	}

	output, err := h.raffleService.Register(c.Request.Context(), &raffle.RegisterInput{
		RaffleID: c.Param("id"),
		User:     c.MustGet(userContextKey).(models.User),
		Stake:    req.Stake,
	})
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, registerResponse{
		Count:              output.Count,
		TotalCollected:     output.TotalCollected,
		CountdownStarted:   output.CountdownStarted,
		CountdownStartedAt: output.CountdownStartedAt,
	})
}

// Draw picks the next winner of a raffle
func (h *Handler) Draw(c *gin.Context) {
	output, err := h.raffleService.Draw(c.Request.Context(), &raffle.DrawInput{
		RaffleID: c.Param("id"),
	})
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, drawResponse{
		Winner:       output.Winner,
		WinnersCount: output.WinnersCount,
		Remaining:    output.Remaining,
		Completed:    output.Completed,
	})
}

// ListEvents returns a raffle's events, optionally after a known event ID
func (h *Handler) ListEvents(c *gin.Context) {
	var query listEventsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		abortBadRequest(c, err)
		return
	}

	output, err := h.raffleService.ListEvents(c.Request.Context(), &raffle.ListEventsInput{
		RaffleID: c.Param("id"),
		AfterID:  query.After,
		Limit:    query.Limit,
	})
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, toEventResponses(output.Events))
}

// requireUser parses the caller identity from UserHeader
func requireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := models.ParseUser(c.GetHeader(UserHeader))
		if err != nil {
			abortBadRequest(c, err)
			return
		}

		c.Set(userContextKey, user)
		c.Next()
	}
}
