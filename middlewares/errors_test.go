package middlewares_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/globomantics/cms/middlewares"
)

func TestPanicError(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "panic: something went wrong", (&middlewares.PanicError{Value: "something went wrong"}).Error())
	assert.Equal(t, "panic: 42", (&middlewares.PanicError{Value: 42}).Error())

	wrapped := fmt.Errorf("handler: %w", &middlewares.PanicError{Value: "x"})
	assert.True(t, middlewares.IsPanicError(wrapped))
	pe, ok := middlewares.AsPanicError(wrapped)
	require.True(t, ok)
	assert.Equal(t, "x", pe.Value)

	_, ok = middlewares.AsPanicError(errors.New("plain"))
	assert.False(t, ok)
}

func TestTimeoutError(t *testing.T) {
	t.Parallel()

	err := &middlewares.TimeoutError{Duration: 2 * time.Second}
	assert.Equal(t, "request timeout after 2s", err.Error())
	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.True(t, middlewares.IsTimeoutError(fmt.Errorf("wrap: %w", err)))
	assert.False(t, middlewares.IsTimeoutError(errors.New("plain")))

	te, ok := middlewares.AsTimeoutError(err)
	require.True(t, ok)
	assert.Equal(t, 2*time.Second, te.Duration)
}
