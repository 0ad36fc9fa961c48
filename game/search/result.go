package search

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrUnsolvable       = errors.New("no solution: remaining food is unreachable")
	ErrExpansionLimit   = errors.New("search stopped: expansion limit exceeded")
	ErrUnknownHeuristic = errors.New("unknown heuristic")
	ErrUnknownAction    = errors.New("unknown action")
	ErrIllegalAction    = errors.New("illegal action")
)

// Status is the outcome of a search
type Status int

const (
	StatusSolved Status = iota
	StatusUnsolvable
	StatusLimitExceeded
)

func (s Status) String() string {
	switch s {
	case StatusSolved:
		return "solved"
	case StatusUnsolvable:
		return "unsolvable"
	case StatusLimitExceeded:
		return "expansion_limit_exceeded"
	}
	return fmt.Sprintf("status(%d)", int(s))
}

func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Status) UnmarshalText(text []byte) error {
	switch string(text) {
	case "solved":
		*s = StatusSolved
	case "unsolvable":
		*s = StatusUnsolvable
	case "expansion_limit_exceeded":
		*s = StatusLimitExceeded
	default:
		return fmt.Errorf("unknown search status %q", text)
	}
	return nil
}

// Result is what a search produces. Actions is only set when Status is
// StatusSolved; the counters are filled for every outcome.
type Result struct {
	Status      Status        `json:"status" yaml:"status"`
	Actions     []Action      `json:"actions" yaml:"actions"`
	Cost        int           `json:"cost" yaml:"cost"`
	Heuristic   string        `json:"heuristic" yaml:"heuristic"`
	Expanded    int           `json:"expanded" yaml:"expanded"`
	Generated   int           `json:"generated" yaml:"generated"`
	MaxFrontier int           `json:"max_frontier" yaml:"max_frontier"`
	Elapsed     time.Duration `json:"elapsed" yaml:"elapsed"`
}

// Solved reports whether the search found a plan
func (r *Result) Solved() bool {
	return r != nil && r.Status == StatusSolved
}

// Err maps unsuccessful outcomes to ErrUnsolvable or ErrExpansionLimit
func (r *Result) Err() error {
	switch r.Status {
	case StatusUnsolvable:
		return ErrUnsolvable
	case StatusLimitExceeded:
		return ErrExpansionLimit
	}
	return nil
}
