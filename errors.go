package providertree

import (
	"errors"
	"fmt"

	"github.com/hashicorp/go-multierror"
)

// Sentinel values for use with errors.Is. Every exported error type below
// wraps one of these, mirroring dig's error.go, which kept a root-cause
// sentinel reachable through any number of wraps.
var (
	// ErrNotFound is the sentinel behind every NotFoundError.
	ErrNotFound = errors.New("provider tree: not found")
	// ErrAlreadyExists is the sentinel behind every AlreadyExistsError.
	ErrAlreadyExists = errors.New("provider tree: already exists")
	// ErrOrphanInput is the sentinel behind every OrphanInputError.
	ErrOrphanInput = errors.New("provider tree: orphan input")
	// ErrInternalInvariant is the sentinel behind every InternalInvariantError.
	ErrInternalInvariant = errors.New("provider tree: internal invariant violated")
)

// NotFoundError reports that a name-or-identifier key did not resolve to any
// provider in the tree.
type NotFoundError struct {
	Key string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("provider tree: no provider found for key %q", e.Key)
}

// Unwrap lets errors.Is(err, ErrNotFound) succeed.
func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// AlreadyExistsError reports that a root was proposed with an identifier
// already present somewhere in the forest.
type AlreadyExistsError struct {
	Identifier string
}

func (e *AlreadyExistsError) Error() string {
	return fmt.Sprintf("provider tree: provider with identifier %q already exists", e.Identifier)
}

// Unwrap lets errors.Is(err, ErrAlreadyExists) succeed.
func (e *AlreadyExistsError) Unwrap() error { return ErrAlreadyExists }

// OrphanInputError reports that one or more descriptors passed to Populate
// declared a parent identifier that is neither already in the tree nor
// present as another descriptor in the same batch.
type OrphanInputError struct {
	// MissingParents is the set of declared parent identifiers that could
	// not be resolved, in no particular order.
	MissingParents []string
	detail         error
}

func newOrphanInputError(missing []string) *OrphanInputError {
	var merr *multierror.Error
	for _, parent := range missing {
		merr = multierror.Append(merr, fmt.Errorf("parent provider %q not found in tree or input batch", parent))
	}
	return &OrphanInputError{
		MissingParents: missing,
		detail:         merr.ErrorOrNil(),
	}
}

func (e *OrphanInputError) Error() string {
	if e.detail == nil {
		return "provider tree: orphan input"
	}
	return fmt.Sprintf("provider tree: orphan input: %s", e.detail.Error())
}

// Unwrap lets errors.Is(err, ErrOrphanInput) succeed.
func (e *OrphanInputError) Unwrap() error { return ErrOrphanInput }

// InternalInvariantError reports that bulk population could not make
// progress despite every declared parent having passed orphan validation.
// Spec calls this path unreachable; it exists purely as a paranoia guard
// against a latent cycle in the input batch.
type InternalInvariantError struct {
	Remaining []string
}

func (e *InternalInvariantError) Error() string {
	return fmt.Sprintf("provider tree: internal invariant violated: could not place remaining providers %v", e.Remaining)
}

// Unwrap lets errors.Is(err, ErrInternalInvariant) succeed.
func (e *InternalInvariantError) Unwrap() error { return ErrInternalInvariant }
