package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDefaultPolicy(t *testing.T) {
	p := DefaultPolicy()
	require.Equal(t, ModeLinear, p.Mode)
	require.Equal(t, 250*time.Millisecond, p.Initial)
	require.Equal(t, 5*time.Second, p.Max)
	require.Equal(t, 2, p.MaxRetries)
	require.NoError(t, p.Validate())
}

func TestNewPolicyOverrides(t *testing.T) {
	p := NewPolicy(ModeFixed, 5*time.Second, 2*time.Second, 5)
	require.Equal(t, 2*time.Second, p.Initial, "initial is clamped to max")
	require.Equal(t, 2*time.Second, p.Max)
	require.Equal(t, ModeFixed, p.Mode)
	require.Equal(t, 5, p.MaxRetries)

	require.Equal(t, ModeLinear, NewPolicy("bogus", 0, 0, -1).Mode)
	require.Equal(t, 2, NewPolicy("", 0, 0, -1).MaxRetries)
	require.Equal(t, 0, NewPolicy("", 0, 0, 0).MaxRetries)
}

func TestDelayModes(t *testing.T) {
	ms := time.Millisecond
	cases := []struct {
		policy  Policy
		attempt int
		want    time.Duration
	}{
		{NewPolicy(ModeFixed, 100*ms, 500*ms, 3), 1, 100 * ms},
		{NewPolicy(ModeFixed, 100*ms, 500*ms, 3), 3, 100 * ms},
		{NewPolicy(ModeLinear, 100*ms, 250*ms, 5), 2, 200 * ms},
		{NewPolicy(ModeLinear, 100*ms, 250*ms, 5), 3, 250 * ms},
		{NewPolicy(ModeExponential, 50*ms, 160*ms, 5), 2, 100 * ms},
		{NewPolicy(ModeExponential, 50*ms, 160*ms, 5), 3, 160 * ms},
		{NewPolicy(ModeLinear, 10*ms, 20*ms, 1), 0, 0},
		{NewPolicy(ModeLinear, 10*ms, 20*ms, 1), -1, 0},
	}
	for _, c := range cases {
		require.Equal(t, c.want, c.policy.Delay(c.attempt), "%s attempt %d", c.policy.Mode, c.attempt)
	}
}

func TestValidate(t *testing.T) {
	require.Error(t, Policy{Mode: ModeLinear, Initial: 0, Max: time.Second}.Validate())
	require.Error(t, Policy{Mode: ModeLinear, Initial: time.Second}.Validate())
	require.Error(t, Policy{Mode: ModeLinear, Initial: time.Second, Max: time.Second, MaxRetries: -1}.Validate())
}

func TestDo(t *testing.T) {
	p := NewPolicy(ModeFixed, time.Millisecond, time.Millisecond, 3)
	boom := errors.New("boom")

	calls := 0
	require.NoError(t, p.Do(t.Context(), func() error {
		calls++
		if calls < 3 {
			return boom
		}
		return nil
	}))
	require.Equal(t, 3, calls)

	calls = 0
	require.ErrorIs(t, p.Do(t.Context(), func() error { calls++; return boom }), boom)
	require.Equal(t, 4, calls)

	ctx, cancel := context.WithCancel(t.Context())
	cancel()
	calls = 0
	require.ErrorIs(t, p.Do(ctx, func() error { calls++; return boom }), boom)
	require.Equal(t, 1, calls)
}
