package circuitbreaker

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errUpstream = errors.New("upstream failed")

func failing() error { return errUpstream }
func ok() error      { return nil }

func TestOpensAfterConsecutiveFailures(t *testing.T) {
	cb := New(Settings{MaxFailures: 3, Cooldown: time.Minute})

	for i := 0; i < 3; i++ {
		require.ErrorIs(t, cb.Execute(failing), errUpstream)
	}

	assert.ErrorIs(t, cb.Execute(ok), ErrOpen)
}

func TestSuccessResetsFailureCount(t *testing.T) {
	cb := New(Settings{MaxFailures: 3, Cooldown: time.Minute})

	require.Error(t, cb.Execute(failing))
	require.Error(t, cb.Execute(failing))
	require.NoError(t, cb.Execute(ok))
	require.Error(t, cb.Execute(failing))
	require.Error(t, cb.Execute(failing))

	// still below the threshold, calls pass through
	assert.NoError(t, cb.Execute(ok))
}

func TestHalfOpenProbeClosesOnSuccess(t *testing.T) {
	cb := New(Settings{MaxFailures: 1, Cooldown: 10 * time.Millisecond})

	require.Error(t, cb.Execute(failing))
	require.ErrorIs(t, cb.Execute(ok), ErrOpen)

	time.Sleep(20 * time.Millisecond)

	assert.NoError(t, cb.Execute(ok))
	assert.NoError(t, cb.Execute(ok))
}

func TestHalfOpenProbeReopensOnFailure(t *testing.T) {
	cb := New(Settings{MaxFailures: 1, Cooldown: 10 * time.Millisecond})

	require.Error(t, cb.Execute(failing))
	time.Sleep(20 * time.Millisecond)

	require.ErrorIs(t, cb.Execute(failing), errUpstream)
	assert.ErrorIs(t, cb.Execute(ok), ErrOpen)
}

func TestDefaultsApplied(t *testing.T) {
	cb := New(Settings{Name: "gemini"})
	assert.Equal(t, "gemini", cb.Name())
	assert.Equal(t, 5, cb.maxFailures)
	assert.Equal(t, 30*time.Second, cb.cooldown)
}
