package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Domain errors: the outcome data cannot support the computation
	ErrDomain           = errors.New("domain error")
	ErrEmptySequence    = fmt.Errorf("%w: empty outcome sequence", ErrDomain)
	ErrNoGames          = fmt.Errorf("%w: unit has no games", ErrDomain)
	ErrMalformedGame    = fmt.Errorf("%w: malformed game", ErrDomain)
	ErrInvalidParameter = fmt.Errorf("%w: invalid parameter", ErrDomain)

	// Configuration errors: the caller asked for something that does not exist
	ErrConfiguration  = errors.New("configuration error")
	ErrUnknownMeasure = fmt.Errorf("%w: unknown measure", ErrConfiguration)
	ErrUnknownMethod  = fmt.Errorf("%w: unknown method", ErrConfiguration)
	ErrInvalidTrials  = fmt.Errorf("%w: trial count must be positive", ErrConfiguration)

	// Numeric errors: the statistic is undefined for the given data
	ErrNumeric              = errors.New("numeric error")
	ErrDegenerateVariance   = fmt.Errorf("%w: degenerate runs-test variance", ErrNumeric)
	ErrUndefinedExpectation = fmt.Errorf("%w: no streak completions carry probability mass", ErrNumeric)
)

// Error constructors with context
func NewNoGamesError(unit string) error {
	return fmt.Errorf("%w: %s", ErrNoGames, unit)
}

func NewMalformedGameError(gameID string, reason string) error {
	return fmt.Errorf("%w %q: %s", ErrMalformedGame, gameID, reason)
}

func NewParameterError(name string, reason string) error {
	return fmt.Errorf("%w %s: %s", ErrInvalidParameter, name, reason)
}

func NewUnknownMeasureError(name string) error {
	return fmt.Errorf("%w %q", ErrUnknownMeasure, name)
}

// NewUnknownMethodError reports a selector value outside its fixed choices
func NewUnknownMethodError(selector string, name string) error {
	return fmt.Errorf("%w: %s %q", ErrUnknownMethod, selector, name)
}

func NewDegenerateVarianceError(wins, losses int) error {
	return fmt.Errorf("%w (W=%d, L=%d)", ErrDegenerateVariance, wins, losses)
}

// Error checking helpers
func IsDomainError(err error) bool {
	return errors.Is(err, ErrDomain)
}

func IsConfigurationError(err error) bool {
	return errors.Is(err, ErrConfiguration)
}

func IsNumericError(err error) bool {
	return errors.Is(err, ErrNumeric)
}
