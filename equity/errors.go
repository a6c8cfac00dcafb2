package equity

import (
	"context"
	"errors"
	"fmt"

	"github.com/lox/pokerequity/poker"
)

var (
	// ErrInvalidRequest is wrapped by every validation failure. The more
	// specific kind is wrapped alongside it.
	ErrInvalidRequest = errors.New("invalid request")

	ErrTooManyHoleCards  = errors.New("a player holds more than two hole cards")
	ErrTooManyBoardCards = errors.New("the board holds more than five cards")
	ErrTooFewPlayers     = errors.New("at least two players are required")
	ErrTooManyCards      = errors.New("more cards are needed than the deck holds")

	// ErrNoCompletions is returned when a computation saw zero outcomes.
	// Validation makes it unreachable for well-formed requests.
	ErrNoCompletions = errors.New("no legal completions")

	// ErrCanceled is returned when the caller's context ends mid-computation.
	// No partial result accompanies it.
	ErrCanceled = errors.New("computation canceled")
)

// Card-level failures surface under the same names as the poker package.
var (
	ErrInvalidCard   = poker.ErrInvalidCard
	ErrDuplicateCard = poker.ErrDuplicateCard
)

func invalid(kind error, format string, args ...any) error {
	return fmt.Errorf("%w: %w: %s", ErrInvalidRequest, kind, fmt.Sprintf(format, args...))
}

func invalidCards(err error) error {
	return fmt.Errorf("%w: %w", ErrInvalidRequest, err)
}

// canceled maps context errors onto ErrCanceled and passes others through.
func canceled(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %w", ErrCanceled, err)
	}
	return err
}
