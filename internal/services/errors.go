package services

import (
	"errors"
	"fmt"

	"github.com/campusnet/backend/internal/repositories"
)

// Error kinds returned by every service. Handlers map them to HTTP statuses.
var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidState = errors.New("invalid state")
	ErrConflict     = errors.New("conflict")
	ErrUnauthorized = errors.New("unauthorized")
	ErrUpstream     = errors.New("store unavailable")
)

// storeErr classifies a repository error for op
func storeErr(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, repositories.ErrNotFound) {
		return fmt.Errorf("%w: %s", ErrNotFound, op)
	}
	return fmt.Errorf("%w: %s: %v", ErrUpstream, op, err)
}
