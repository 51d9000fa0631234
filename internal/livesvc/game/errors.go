package game

import "errors"

var (
	// ErrEventNotFound means the event id does not resolve to a session.
	ErrEventNotFound = errors.New("event not found")

	// ErrEventNotActive means a join was attempted while the event is not
	// in ACTIVE status.
	ErrEventNotActive = errors.New("event not active")

	// ErrCardNotFound means the card id does not exist in the session.
	ErrCardNotFound = errors.New("card not found")

	// ErrInvalidMark means the number is not on the card or has not been
	// called yet. Callers treat this as a rejected action, not a failure.
	ErrInvalidMark = errors.New("number not on card or not yet called")

	// ErrSequencerFault means a scheduled call could not be persisted or
	// emitted. The sequencer halts rather than skip a call order.
	ErrSequencerFault = errors.New("sequencer fault")
)
