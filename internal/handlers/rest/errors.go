package rest

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/logger"

	engine "github.com/KirkDiggler/raffled/internal/raffle"
	eventRepo "github.com/KirkDiggler/raffled/internal/repositories/events"
	raffleRepo "github.com/KirkDiggler/raffled/internal/repositories/raffle"
	"github.com/KirkDiggler/raffled/internal/services/raffle"
)

// statusFor maps a service error to the HTTP status reported to the caller
func statusFor(err error) int {
	switch {
	case errors.Is(err, engine.ErrInvalidEntryAmount):
		return http.StatusUnprocessableEntity
	case errors.Is(err, engine.ErrCompleted),
		errors.Is(err, engine.ErrAlreadyRegistered),
		errors.Is(err, engine.ErrCountdownNotElapsed),
		errors.Is(err, engine.ErrTooFewParticipants),
		errors.Is(err, raffleRepo.ErrConcurrentModification):
		return http.StatusConflict
	case errors.Is(err, raffle.ErrRaffleNotFound):
		return http.StatusNotFound
	case errors.Is(err, raffle.ErrNilInput),
		errors.Is(err, raffle.ErrMissingRaffleID),
		errors.Is(err, raffle.ErrInvalidUser),
		errors.Is(err, raffle.ErrInvalidCollector),
		errors.Is(err, eventRepo.ErrInvalidEventID):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// abortWithError writes err as a JSON error body. Internal errors are logged
// and hidden from the caller.
func abortWithError(c *gin.Context, err error) {
	status := statusFor(err)
	message := err.Error()

	if status == http.StatusInternalServerError {
		logger.Errorf("%s %s failed: %v", c.Request.Method, c.FullPath(), err)
		message = "internal error"
	}

	c.AbortWithStatusJSON(status, errorResponse{Error: message})
}

func abortBadRequest(c *gin.Context, err error) {
	c.AbortWithStatusJSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
}
