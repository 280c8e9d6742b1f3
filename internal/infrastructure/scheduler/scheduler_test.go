package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestScheduler_AddValidation(t *testing.T) {
	s := New(nil)

	require.NoError(t, s.Add(Job{Name: "expire", Spec: "@every 5m", Run: func(context.Context) error { return nil }}))
	assert.Error(t, s.Add(Job{Name: "expire", Spec: "@every 1m", Run: func(context.Context) error { return nil }}))
	assert.Error(t, s.Add(Job{Name: "bad", Spec: "every five minutes", Run: func(context.Context) error { return nil }}))
	assert.Error(t, s.Add(Job{Name: "sixfields", Spec: "0 0 8 * * *", Run: func(context.Context) error { return nil }}))
}

func TestScheduler_WrapAppliesTimeoutAndLogsErrors(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	s := New(zap.New(core))

	var deadline bool
	s.wrap(Job{
		Name:    "overdue",
		Timeout: time.Second,
		Run: func(ctx context.Context) error {
			_, deadline = ctx.Deadline()
			return errors.New("db down")
		},
	})()

	assert.True(t, deadline)
	failed := logs.FilterMessage("定时任务失败")
	require.Equal(t, 1, failed.Len())
	assert.Equal(t, "overdue", failed.All()[0].ContextMap()["job"])
}

func TestScheduler_RunsAndStops(t *testing.T) {
	s := New(zap.NewNop())
	var runs atomic.Int32
	require.NoError(t, s.Add(Job{Name: "tick", Spec: "@every 1s", Run: func(context.Context) error {
		runs.Add(1)
		return nil
	}}))

	s.Start()
	assert.False(t, s.Next("tick").IsZero())
	assert.Eventually(t, func() bool { return runs.Load() >= 1 }, 3*time.Second, 50*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, s.Stop(ctx))
}

func TestScheduler_StopCancelsLongJob(t *testing.T) {
	s := New(zap.NewNop())
	started := make(chan struct{})
	var cancelled atomic.Bool
	require.NoError(t, s.Add(Job{Name: "slow", Spec: "@every 1s", Run: func(ctx context.Context) error {
		close(started)
		<-ctx.Done()
		cancelled.Store(true)
		return ctx.Err()
	}}))

	s.Start()
	select {
	case <-started:
	case <-time.After(3 * time.Second):
		t.Fatal("任务未被触发")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, s.Stop(ctx), context.DeadlineExceeded)
	assert.True(t, cancelled.Load())
}
