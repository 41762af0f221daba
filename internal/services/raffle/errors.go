package raffle

// ServiceError is a custom error type for raffle service errors
type ServiceError string

// Error implements the error interface
func (e ServiceError) Error() string {
	return string(e)
}

// Define errors
const (
	ErrRaffleNotFound   ServiceError = "raffle not found"
	ErrNilInput         ServiceError = "input cannot be nil"
	ErrMissingRaffleID  ServiceError = "raffle ID is required"
	ErrInvalidUser      ServiceError = "user cannot be empty"
	ErrInvalidCollector ServiceError = "collector cannot be empty"
	ErrNilConfig        ServiceError = "config cannot be nil"
	ErrNilRaffleRepo    ServiceError = "raffle repository cannot be nil"
	ErrNilEventRepo     ServiceError = "event repository cannot be nil"
	ErrNilClock         ServiceError = "clock cannot be nil"
	ErrNilRandom        ServiceError = "random source cannot be nil"
	ErrNilUUIDGenerator ServiceError = "UUID generator cannot be nil"
)
