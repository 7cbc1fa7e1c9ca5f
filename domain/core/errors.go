package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Fatal input errors
	ErrDataLoad = errors.New("dataset load failed")

	// Collaborator output errors
	ErrGenerationParse   = errors.New("generation output could not be parsed")
	ErrNoRecommendations = errors.New("no recommendations returned for validated insights")

	// Orchestration errors
	ErrReplanExhausted = errors.New("replan budget exhausted before recommendations")

	// Analysis errors (recovered per-hypothesis, never surfaced from a batch)
	ErrUnknownMetric    = errors.New("unknown metric column")
	ErrUnknownDimension = errors.New("unknown segment dimension")
	ErrInsufficientData = errors.New("insufficient data for analysis")
)

// Error constructors with context
func NewDataLoadError(path string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrDataLoad, path, err)
}

func NewParseError(agent string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrGenerationParse, agent, err)
}

func NewMissingKeysError(agent string, keys []string) error {
	return fmt.Errorf("%w: %s: missing required keys %v", ErrGenerationParse, agent, keys)
}

func NewReplanExhaustedError(iterations int, reason string) error {
	if reason == "" {
		reason = "no validated insights"
	}
	return fmt.Errorf("%w after %d iterations: %s", ErrReplanExhausted, iterations, reason)
}

// Error checking helpers
func IsDataLoadError(err error) bool {
	return errors.Is(err, ErrDataLoad)
}

func IsParseError(err error) bool {
	return errors.Is(err, ErrGenerationParse)
}

func IsFatal(err error) bool {
	return errors.Is(err, ErrDataLoad) ||
		errors.Is(err, ErrGenerationParse) ||
		errors.Is(err, ErrNoRecommendations) ||
		errors.Is(err, ErrReplanExhausted)
}
