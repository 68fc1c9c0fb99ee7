package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cuisports/sportsreg/internal/metrics"
	"github.com/cuisports/sportsreg/internal/model"
	"github.com/cuisports/sportsreg/internal/repository/memory"
	logutil "github.com/cuisports/sportsreg/internal/testutil"
)

type failingPurger struct{}

func (failingPurger) PurgeExpired(context.Context) (int64, error) {
	return 0, errors.New("db down")
}

func TestPurger_PurgeOnce(t *testing.T) {
	ctx := context.Background()
	clock := newFakeClock()
	store := memory.NewPendingRepositoryWithClock(clock.Now)
	m := metrics.New()

	for _, key := range []string{"FA23-BSE-007", "SP24-BCS-001"} {
		require.NoError(t, store.Put(ctx, model.PendingRegistration{
			RegistrationNumber: key,
			Verification:       model.OTPVerification{},
			ExpiresAt:          clock.Now().Add(time.Hour),
		}))
	}
	require.NoError(t, store.Put(ctx, model.PendingRegistration{
		RegistrationNumber: "FA22-CVE-100",
		Verification:       model.UniversityIDVerification{},
		ExpiresAt:          clock.Now().Add(3 * time.Hour),
	}))

	p := NewPurger(store, time.Minute, logutil.MakeNoopLogger(), m)
	assert.Equal(t, int64(0), p.PurgeOnce(ctx))

	clock.Advance(2 * time.Hour)
	assert.Equal(t, int64(2), p.PurgeOnce(ctx))
	assert.Equal(t, 1, store.Len())
	assert.Equal(t, 2.0, testutil.ToFloat64(m.PendingPurged))
}

func TestPurger_PurgeOnce_Error(t *testing.T) {
	p := NewPurger(failingPurger{}, time.Minute, logutil.MakeNoopLogger(), nil)
	assert.Equal(t, int64(0), p.PurgeOnce(context.Background()))
}

func TestPurger_RunStopsOnCancel(t *testing.T) {
	p := NewPurger(memory.NewPendingRepository(), time.Millisecond, logutil.MakeNoopLogger(), nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- p.Run(ctx) }()

	time.Sleep(5 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("purger did not stop")
	}
}
