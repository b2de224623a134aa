package uow

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// counter is a minimal stateful collaborator.
type counter struct {
	value     int
	committed int
}

func (c *counter) Snapshot() any {
	return c.value
}

func (c *counter) Restore(snapshot any) {
	c.value = snapshot.(int)
}

func (c *counter) Commit() {
	c.committed++
}

func TestRunCommits(t *testing.T) {
	c := &counter{}
	scope := NewScope(c)

	err := scope.Run(func() error {
		c.value = 42
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 42, c.value)
	assert.Equal(t, 1, c.committed)
}

func TestRunRollsBackAllParts(t *testing.T) {
	a := &counter{value: 1}
	b := &counter{value: 2}
	scope := NewScope(a)
	scope.Add(b)

	failure := errors.New("step failed")
	err := scope.Run(func() error {
		a.value = 10
		b.value = 20
		return failure
	})
	require.ErrorIs(t, err, failure)

	assert.Equal(t, 1, a.value)
	assert.Equal(t, 2, b.value)
	assert.Zero(t, a.committed)
	assert.Zero(t, b.committed)
}

func TestNestedRun(t *testing.T) {
	c := &counter{}
	scope := NewScope(c)

	// An inner failure rolled back by its own scope leaves the outer run
	// free to continue and commit.
	err := scope.Run(func() error {
		c.value = 1
		inner := NewScope(c)
		_ = inner.Run(func() error {
			c.value = 99
			return errors.New("inner failure")
		})
		assert.Equal(t, 1, c.value)
		c.value = 2
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 2, c.value)
}
