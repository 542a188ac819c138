package game

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownItem           = errors.New("unknown item")
	ErrInsufficientResources = errors.New("insufficient resources")
	ErrPreconditionFailed    = errors.New("precondition failed")
	ErrInvalidGameData       = errors.New("invalid game data")
)

type InsufficientResourceError struct {
	Resource string
	Need     float64
	Have     float64
}

func (e *InsufficientResourceError) Error() string {
	return fmt.Sprintf("not enough %s: need %g, have %g", e.Resource, e.Need, e.Have)
}

func (e *InsufficientResourceError) Unwrap() error {
	return ErrInsufficientResources
}
