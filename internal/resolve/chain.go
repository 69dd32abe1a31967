package resolve

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/fediscope/fediscope/internal/httpx"
)

// Source names the step of a resolution chain that produced the result.
type Source string

const (
	SourceDirect     Source = "direct"
	SourceHomeID     Source = "home-id"
	SourceHomeLookup Source = "home-lookup"
	SourceHomeSearch Source = "home-search"
)

var (
	// ErrNotFound is returned when every step of a chain failed. It is the
	// same sentinel a plain 404 from an instance matches.
	ErrNotFound = httpx.ErrNotFound
	// ErrNoCredentials is returned when an operation needs a home instance
	// token that is not configured.
	ErrNoCredentials = errors.New("no credentials for home instance")
	// ErrNoHome is returned when an operation needs a home instance and none
	// is configured.
	ErrNoHome = errors.New("no home instance configured")

	// errSkipped marks a step that did not apply, e.g. no home instance.
	errSkipped = errors.New("skipped")
	// errMismatch marks a home-id hit that belongs to another post.
	errMismatch = errors.New("id matched a different object")
)

// NotFoundError reports a failed chain together with the outcome of each
// step. It matches ErrNotFound with errors.Is and unwraps to the step errors.
type NotFoundError struct {
	What     string
	Attempts []Attempt
}

// Attempt is one failed step.
type Attempt struct {
	Source Source
	Err    error
}

func (e *NotFoundError) Error() string {
	parts := make([]string, 0, len(e.Attempts))
	for _, a := range e.Attempts {
		parts = append(parts, fmt.Sprintf("%s: %v", a.Source, a.Err))
	}
	if len(parts) == 0 {
		return e.What + ": not found"
	}
	return fmt.Sprintf("%s: not found (%s)", e.What, strings.Join(parts, "; "))
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

func (e *NotFoundError) Unwrap() []error {
	out := make([]error, 0, len(e.Attempts))
	for _, a := range e.Attempts {
		out = append(out, a.Err)
	}
	return out
}

type step[T any] struct {
	source Source
	run    func(ctx context.Context) (T, error)
}

// runChain tries each step in order and returns the first success. There are
// no retries: a failed step is recorded and the next one runs. A cancelled
// context stops the chain.
func runChain[T any](ctx context.Context, what string, steps []step[T]) (T, Source, error) {
	var zero T
	nf := &NotFoundError{What: what}
	for _, s := range steps {
		if err := ctx.Err(); err != nil {
			return zero, "", fmt.Errorf("%s: %w", what, err)
		}
		v, err := s.run(ctx)
		if err == nil {
			return v, s.source, nil
		}
		nf.Attempts = append(nf.Attempts, Attempt{Source: s.source, Err: err})
	}
	return zero, "", nf
}

func skipped(reason string) error {
	return fmt.Errorf("%w: %s", errSkipped, reason)
}
