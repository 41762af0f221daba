package raffle

// Error is the closed set of reasons a raffle operation can be rejected
type Error string

// Error implements the error interface
func (e Error) Error() string {
	return string(e)
}

// Operation errors. A call that returns one of these left the raffle unchanged.
const (
	ErrCompleted           Error = "raffle already completed"
	ErrInvalidEntryAmount  Error = "invalid entry amount"
	ErrAlreadyRegistered   Error = "user already registered"
	ErrCountdownNotElapsed Error = "countdown not elapsed"
	ErrTooFewParticipants  Error = "too few participants to draw"
)

// Construction errors, returned only by New and Restore.
const (
	ErrInvalidRules Error = "invalid raffle rules"
	ErrCorruptState Error = "corrupt raffle state"
)
