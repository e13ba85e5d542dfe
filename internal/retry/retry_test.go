package retry

import (
	"context"
	"errors"
	"fmt"
	"net"
	"syscall"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExponentialBackoff_Defaults(t *testing.T) {
	b := NewExponentialBackoff(3, WithJitter(0))
	assert.Equal(t, 3, b.MaxAttempts())
	assert.Equal(t, 100*time.Millisecond, b.NextDelay(0))
	assert.Equal(t, 200*time.Millisecond, b.NextDelay(1))
	assert.Equal(t, 400*time.Millisecond, b.NextDelay(2))
	assert.Equal(t, 10*time.Second, b.NextDelay(20))
}

func TestExponentialBackoff_Jitter(t *testing.T) {
	high := NewExponentialBackoff(1, WithJitter(0.1), WithRandom(func() float64 { return 0.75 }))
	low := NewExponentialBackoff(1, WithJitter(0.1), WithRandom(func() float64 { return 0.25 }))

	assert.Equal(t, 105*time.Millisecond, high.NextDelay(0))
	assert.Equal(t, 95*time.Millisecond, low.NextDelay(0))
}

func TestExponentialBackoff_Options(t *testing.T) {
	b := NewExponentialBackoff(-1,
		WithInitialDelay(time.Second),
		WithMaxDelay(5*time.Second),
		WithMultiplier(3),
		WithJitter(0),
	)
	assert.Equal(t, -1, b.MaxAttempts())
	assert.Equal(t, time.Second, b.NextDelay(0))
	assert.Equal(t, 3*time.Second, b.NextDelay(1))
	assert.Equal(t, 5*time.Second, b.NextDelay(2))
}

type flakyOp struct {
	calls    int
	failures int
	err      error
}

func (f *flakyOp) run(context.Context) error {
	f.calls++
	if f.calls <= f.failures {
		return f.err
	}
	return nil
}

func fastExecutor(attempts int) *Executor {
	return NewExecutor(NewHTTPClassifier(), NewExponentialBackoff(attempts, WithInitialDelay(time.Millisecond), WithJitter(0)))
}

func TestExecutor_SucceedsAfterTransientFailures(t *testing.T) {
	op := &flakyOp{failures: 2, err: &StatusError{Code: 503}}
	require.NoError(t, fastExecutor(3).Execute(context.Background(), op.run))
	assert.Equal(t, 3, op.calls)
}

func TestExecutor_StopsOnFatalError(t *testing.T) {
	op := &flakyOp{failures: 5, err: &StatusError{Code: 400}}
	err := fastExecutor(3).Execute(context.Background(), op.run)

	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, 400, statusErr.Code)
	assert.Equal(t, 1, op.calls)
}

func TestExecutor_ExhaustsBudget(t *testing.T) {
	op := &flakyOp{failures: 10, err: &StatusError{Code: 502}}
	err := fastExecutor(2).Execute(context.Background(), op.run)
	require.Error(t, err)
	assert.Equal(t, 3, op.calls)
}

func TestExecutor_NoRetries(t *testing.T) {
	op := &flakyOp{failures: 10, err: &StatusError{Code: 502}}
	require.Error(t, fastExecutor(0).Execute(context.Background(), op.run))
	assert.Equal(t, 1, op.calls)
}

func TestExecutor_ContextCancelledWhileWaiting(t *testing.T) {
	exec := NewExecutor(NewHTTPClassifier(), NewExponentialBackoff(5, WithInitialDelay(time.Hour), WithJitter(0)))
	ctx, cancel := context.WithCancel(context.Background())

	op := &flakyOp{failures: 10, err: &StatusError{Code: 503}}
	exec = exec.WithOnRetry(func(int, error, time.Duration) { cancel() })

	err := exec.Execute(ctx, op.run)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, op.calls)
}

func TestExecutor_OnRetryIsCopied(t *testing.T) {
	base := fastExecutor(2)
	var seen []int
	withHook := base.WithOnRetry(func(attempt int, _ error, _ time.Duration) {
		seen = append(seen, attempt)
	})

	op := &flakyOp{failures: 2, err: &StatusError{Code: 500}}
	require.NoError(t, withHook.Execute(context.Background(), op.run))
	assert.Equal(t, []int{0, 1}, seen)
	assert.Nil(t, base.onRetry)
}

func TestNewExecutor_PanicsOnNil(t *testing.T) {
	assert.PanicsWithValue(t, "classifier cannot be nil", func() { NewExecutor(nil, NewExponentialBackoff(1)) })
	assert.PanicsWithValue(t, "strategy cannot be nil", func() { NewExecutor(NewHTTPClassifier(), nil) })
}

func TestDo(t *testing.T) {
	calls := 0
	v, err := Do(context.Background(), fastExecutor(3), func(context.Context) (string, error) {
		calls++
		if calls == 1 {
			return "", &StatusError{Code: 429}
		}
		return "ok", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "ok", v)
	assert.Equal(t, 2, calls)
}

func TestHTTPClassifier(t *testing.T) {
	c := NewHTTPClassifier()
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"500", &StatusError{Code: 500}, true},
		{"503 wrapped", fmt.Errorf("ai: %w", &StatusError{Code: 503}), true},
		{"429", &StatusError{Code: 429}, true},
		{"408", &StatusError{Code: 408}, true},
		{"404", &StatusError{Code: 404}, false},
		{"400", &StatusError{Code: 400}, false},
		{"cancelled", context.Canceled, false},
		{"refused", &net.OpError{Op: "dial", Err: syscall.ECONNREFUSED}, true},
		{"dns temporary", &net.DNSError{Err: "lookup", IsTemporary: true}, true},
		{"dns permanent", &net.DNSError{Err: "lookup", IsNotFound: true}, false},
		{"plain", errors.New("bad payload"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.IsTransient(tt.err))
		})
	}
}

func TestPostgresClassifier(t *testing.T) {
	c := NewPostgresClassifier()
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"connection failure", &pgconn.PgError{Code: "08006"}, true},
		{"too many connections", &pgconn.PgError{Code: "53300"}, true},
		{"admin shutdown", &pgconn.PgError{Code: "57P01"}, true},
		{"serialization", &pgconn.PgError{Code: "40001"}, true},
		{"deadlock", &pgconn.PgError{Code: "40P01"}, true},
		{"unique violation", &pgconn.PgError{Code: "23505"}, false},
		{"syntax", &pgconn.PgError{Code: "42601"}, false},
		{"wrapped", fmt.Errorf("save: %w", &pgconn.PgError{Code: "08001"}), true},
		{"message", errors.New("dial tcp: connection refused"), true},
		{"other", errors.New("permission denied"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.IsTransient(tt.err))
		})
	}
}

func TestStatusError_Message(t *testing.T) {
	assert.Equal(t, "unexpected status 502", (&StatusError{Code: 502}).Error())
	assert.Equal(t, "unexpected status 400: bad", (&StatusError{Code: 400, Body: "bad"}).Error())
}
