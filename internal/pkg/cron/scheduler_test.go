package cron

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScheduler_RunsJobImmediatelyOnStart(t *testing.T) {
	s := NewScheduler()

	var runs atomic.Int32
	s.AddJob("feed-trim", time.Hour, func(ctx context.Context) error {
		runs.Add(1)
		return nil
	})

	s.Start()
	defer s.Stop()

	require.Eventually(t, func() bool {
		return runs.Load() >= 1
	}, time.Second, 10*time.Millisecond)
}

func TestScheduler_StopWaitsForLoops(t *testing.T) {
	s := NewScheduler()

	started := make(chan struct{})
	s.AddJob("token-purge", time.Hour, func(ctx context.Context) error {
		select {
		case started <- struct{}{}:
		default:
		}
		return nil
	})

	s.Start()
	<-started
	s.Stop()

	// After Stop returns no further ticks may fire
	select {
	case <-started:
		t.Fatal("job ran after Stop returned")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestScheduler_RunOnceExecutesAllJobs(t *testing.T) {
	s := NewScheduler()

	var first, second atomic.Int32
	s.AddJob("first", time.Hour, func(ctx context.Context) error {
		first.Add(1)
		return nil
	})
	s.AddJob("second", time.Hour, func(ctx context.Context) error {
		second.Add(1)
		return errors.New("boom")
	})

	s.RunOnce(context.Background())

	assert.Equal(t, int32(1), first.Load())
	// A failing job does not stop the others
	assert.Equal(t, int32(1), second.Load())
}
