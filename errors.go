package main

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidCatalog      = errors.New("invalid catalog")
	ErrInvalidConfig       = errors.New("invalid configuration")
	ErrUnknownIngredient   = errors.New("unknown ingredient")
	ErrUnknownCategory     = errors.New("unknown category")
	ErrNoFeasibleSelection = errors.New("no feasible selection")
	ErrProblemTooLarge     = errors.New("optimization problem too large")
)

// CatalogIntegrityError reports a valid primary/secondary tag pair with no
// matching category. It means the catalog is incomplete and is never skipped.
type CatalogIntegrityError struct {
	Primary   Tag
	Secondary Tag
}

func (e *CatalogIntegrityError) Error() string {
	return fmt.Sprintf("catalog integrity: no category for tags [%s %s]", e.Primary, e.Secondary)
}

func (e *CatalogIntegrityError) Unwrap() error { return ErrInvalidCatalog }

// InfeasibleError is returned when an optimizer phase does not finish with an
// optimal solution. Cause is set when the solver itself failed or timed out.
type InfeasibleError struct {
	Phase  string
	Status Status
	Cause  error
}

func (e *InfeasibleError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: phase %s: %v", ErrNoFeasibleSelection, e.Phase, e.Cause)
	}
	return fmt.Sprintf("%s: phase %s ended %s", ErrNoFeasibleSelection, e.Phase, e.Status)
}

func (e *InfeasibleError) Unwrap() []error {
	if e.Cause != nil {
		return []error{ErrNoFeasibleSelection, e.Cause}
	}
	return []error{ErrNoFeasibleSelection}
}

// unknownKeyError wraps sentinel with a "did you mean" hint when one is close.
func unknownKeyError(sentinel error, key string, known []string) error {
	if s := suggestKey(key, known); s != "" {
		return fmt.Errorf("%w %q (did you mean %q?)", sentinel, key, s)
	}
	return fmt.Errorf("%w %q", sentinel, key)
}
