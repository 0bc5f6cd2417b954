package providertree

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNotFoundErrorMessage(t *testing.T) {
	t.Parallel()

	err := &NotFoundError{Key: "u1"}
	assert.Contains(t, err.Error(), "u1")
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.False(t, errors.Is(err, ErrAlreadyExists))
}

func TestOrphanInputErrorListsMissingParents(t *testing.T) {
	t.Parallel()

	err := newOrphanInputError([]string{"p1", "p2"})
	assert.Contains(t, err.Error(), "p1")
	assert.Contains(t, err.Error(), "p2")
	assert.True(t, errors.Is(err, ErrOrphanInput))
}

func TestInternalInvariantErrorMessage(t *testing.T) {
	t.Parallel()

	err := &InternalInvariantError{Remaining: []string{"a", "b"}}
	assert.Contains(t, err.Error(), "internal invariant")
	assert.True(t, errors.Is(err, ErrInternalInvariant))
}
