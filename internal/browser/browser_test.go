package browser

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMapTimeout(t *testing.T) {
	require.NoError(t, mapTimeout(nil))

	wrapped := fmt.Errorf("element: %w", context.DeadlineExceeded)
	require.ErrorIs(t, mapTimeout(wrapped), ErrTimeout)

	other := errors.New("target closed")
	got := mapTimeout(other)
	require.Same(t, other, got)
	require.NotErrorIs(t, got, ErrTimeout)
}
