package models

import "fmt"

// transitions is the closed transition table for a tee time. Anything not
// listed fails with InvalidTransitionError.
var transitions = map[TeeTimeStatus][]TeeTimeStatus{
	StatusAvailable: {StatusBooked, StatusBlocked},
	StatusBooked:    {StatusCheckedIn, StatusCancelled},
	StatusCheckedIn: {StatusStarted, StatusCancelled, StatusNoShow},
	StatusStarted:   {StatusCompleted, StatusNoShow, StatusCancelled},
	StatusBlocked:   {StatusAvailable, StatusCancelled},
	// COMPLETED, CANCELLED, NO_SHOW: terminal, no entries.
}

func CanTransition(from, to TeeTimeStatus) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Transition moves the tee time to the target status after checking the
// table and the player-count guards. State is untouched on failure.
func (t *TeeTime) Transition(to TeeTimeStatus) error {
	if !CanTransition(t.Status, to) {
		return &InvalidTransitionError{From: t.Status, To: to}
	}
	switch to {
	case StatusBooked, StatusCheckedIn, StatusCompleted:
		if len(t.Players) == 0 {
			return &InvalidTransitionError{From: t.Status, To: to}
		}
	}
	t.Status = to
	return nil
}

// InvalidTransitionError reports an illegal lifecycle transition. It is an
// invariant-class failure: the aggregate is left unchanged.
type InvalidTransitionError struct {
	From TeeTimeStatus
	To   TeeTimeStatus
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid tee time transition %s -> %s", e.From, e.To)
}

// BrokenPairingError reports an asymmetric shared-cart pairing found on read.
type BrokenPairingError struct {
	TeeTimeID uint
	Position  int
}

func (e *BrokenPairingError) Error() string {
	return fmt.Sprintf("broken shared-cart pairing on tee time %d position %d", e.TeeTimeID, e.Position)
}
