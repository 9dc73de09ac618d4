package game

import "errors"

var (
	// ErrIllegalAction is the base class for rejected player actions.
	// The hand state is unchanged when it is returned.
	ErrIllegalAction = errors.New("illegal action")

	// ErrNotYourTurn is returned when a seat acts out of turn
	ErrNotYourTurn = errors.New("not your turn")

	// ErrWrongPhase is returned when an action arrives outside a
	// betting phase
	ErrWrongPhase = errors.New("no betting in progress")

	// ErrChipConservation indicates the pot distribution did not sum to
	// the contributions. It is a logic defect, never corrected silently;
	// the affected hand is halted.
	ErrChipConservation = errors.New("chip conservation violated")

	// ErrHandAborted is returned when a fatal internal error forced the
	// hand to unwind with stacks restored to their pre-hand values
	ErrHandAborted = errors.New("hand aborted")

	// ErrNotEnoughPlayers is returned when a hand cannot start
	ErrNotEnoughPlayers = errors.New("at least 2 players required")

	// ErrTableFull is returned when every seat is taken. Retryable once
	// a seat opens.
	ErrTableFull = errors.New("table full")

	// ErrAlreadySeated is returned when a player joins a table twice
	ErrAlreadySeated = errors.New("already seated")

	// ErrUnknownPlayer is returned when an intent names a player the
	// session has no seat for
	ErrUnknownPlayer = errors.New("unknown player")
)
