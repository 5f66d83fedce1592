package domain

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidInput         = errors.New("invalid input")
	ErrRecordNotFound       = errors.New("record not found")
	ErrNoStrategyMatch      = errors.New("no strategy match")
	ErrAmbiguousReference   = errors.New("ambiguous reference")
	ErrBelowThreshold       = errors.New("below confidence threshold")
	ErrUpstreamTimeout      = errors.New("upstream timeout")
	ErrUpstreamUnavailable  = errors.New("upstream unavailable")
	ErrInconsistentEvidence = errors.New("inconsistent evidence")
	ErrTemporary            = errors.New("temporary failure")
)

// WrapError preserves typed semantic errors with operation context.
func WrapError(kind error, operation string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", operation, kind, err)
}

func IsKind(err error, kind error) bool {
	return errors.Is(err, kind)
}
