package models

import "math"

const (
	DefaultPageLimit = 20
	MaxPageLimit     = 100

	// MaxPageNumber keeps Offset from overflowing at the largest limit
	MaxPageNumber = math.MaxInt32 / MaxPageLimit
)

// Page is a 1-based page request
type Page struct {
	Number int
	Limit  int
}

// NewPage clamps raw query values into a usable page
func NewPage(number, limit int) Page {
	if number < 1 {
		number = 1
	}
	if number > MaxPageNumber {
		number = MaxPageNumber
	}
	if limit < 1 {
		limit = DefaultPageLimit
	}
	if limit > MaxPageLimit {
		limit = MaxPageLimit
	}
	return Page{Number: number, Limit: limit}
}

func (p Page) Offset() int {
	return (p.Number - 1) * p.Limit
}
