//go:build unit

package errs_test

import (
	"errors"
	"testing"

	"class-sync/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type kindError struct{ kind string }

func (e kindError) Error() string { return e.kind }

func TestMark(t *testing.T) {
	sentinel := errs.New("lookup failed")

	t.Run("sentinel is visible to the stdlib errors.Is", func(t *testing.T) {
		cause := errors.New("connection refused")

		marked := errs.Mark(cause, sentinel)

		assert.ErrorIs(t, marked, sentinel)
	})

	t.Run("cause stays in the chain for errors.As", func(t *testing.T) {
		cause := kindError{kind: "DB_FAILURE"}

		marked := errs.Mark(cause, sentinel)

		var target kindError
		require.ErrorAs(t, marked, &target)
		assert.Equal(t, "DB_FAILURE", target.kind)
	})

	t.Run("wrapped marks keep both sentinel and cause", func(t *testing.T) {
		cause := errors.New("no rows")

		marked := errs.Wrap(errs.Mark(cause, sentinel), "resolving identity")

		assert.ErrorIs(t, marked, sentinel)
		assert.ErrorIs(t, marked, cause)
	})

	t.Run("nil cause returns the sentinel itself", func(t *testing.T) {
		assert.ErrorIs(t, errs.Mark(nil, sentinel), sentinel)
	})
}
