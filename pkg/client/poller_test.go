package client

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestPollerRunsBothLoops(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	var schedule, stats int32
	logger, _ := test.NewNullLogger()
	poller := NewPoller(
		func(context.Context) error { atomic.AddInt32(&schedule, 1); return nil },
		func(context.Context) error { atomic.AddInt32(&stats, 1); return nil },
		logger,
	).WithIntervals(5*time.Millisecond, 10*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- poller.Run(ctx) }()

	require.Eventually(t, func() bool {
		return atomic.LoadInt32(&schedule) >= 3 && atomic.LoadInt32(&stats) >= 2
	}, time.Second, 5*time.Millisecond)

	cancel()
	assert.NoError(t, <-done)
}

func TestPollerKeepsGoingAfterFailure(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	var calls int32
	logger, hook := test.NewNullLogger()
	poller := NewPoller(
		func(context.Context) error {
			atomic.AddInt32(&calls, 1)
			return errors.New("connection refused")
		},
		nil,
		logger,
	).WithIntervals(5*time.Millisecond, time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- poller.Run(ctx) }()

	require.Eventually(t, func() bool { return atomic.LoadInt32(&calls) >= 3 }, time.Second, 5*time.Millisecond)
	cancel()
	require.NoError(t, <-done)

	require.NotEmpty(t, hook.AllEntries())
	assert.Equal(t, "schedule", hook.AllEntries()[0].Data["loop"])
}

func TestPollerStopsOnCancelledContext(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	logger, _ := test.NewNullLogger()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var calls int32
	err := NewPoller(func(context.Context) error { atomic.AddInt32(&calls, 1); return nil }, nil, logger).Run(ctx)
	assert.NoError(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}
