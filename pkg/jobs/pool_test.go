package jobs

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestPoolRunsTasks(t *testing.T) {
	done := make(chan int, 3)
	p := NewPool("test", func(_ context.Context, task Task[int]) error {
		done <- task.Payload
		return nil
	}, Options[int]{Workers: 2})

	require.ErrorIs(t, p.Submit(Task[int]{ID: "early"}), ErrNotRunning)

	p.Start(context.Background())
	defer p.Stop()

	for i := 1; i <= 3; i++ {
		require.NoError(t, p.Submit(Task[int]{ID: "t", Payload: i}))
	}

	sum := 0
	for i := 0; i < 3; i++ {
		select {
		case v := <-done:
			sum += v
		case <-time.After(2 * time.Second):
			t.Fatal("task not processed")
		}
	}
	assert.Equal(t, 6, sum)
}

func TestPoolRetriesThenGivesUp(t *testing.T) {
	var calls int32
	core, logs := observer.New(zapcore.InfoLevel)
	gaveUp := make(chan Task[string], 1)
	p := NewPool("retry", func(_ context.Context, task Task[string]) error {
		atomic.AddInt32(&calls, 1)
		return errors.New("fail")
	}, Options[string]{
		MaxRetries: 2,
		Backoff:    2 * time.Millisecond,
		OnGiveUp:   func(task Task[string], _ error) { gaveUp <- task },
		Logger:     zap.New(core),
	})
	p.Start(context.Background())
	defer p.Stop()

	require.NoError(t, p.Submit(Task[string]{ID: "x", Payload: "seeds"}))

	select {
	case task := <-gaveUp:
		assert.Equal(t, "x", task.ID)
		assert.Equal(t, "seeds", task.Payload)
		assert.Equal(t, 3, task.Attempt)
	case <-time.After(2 * time.Second):
		t.Fatal("task never given up")
	}
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
	assert.Equal(t, 2, logs.FilterMessage("task failed, retrying").Len())
	givenUp := logs.FilterMessage("task gave up").All()
	require.Len(t, givenUp, 1)
	assert.Equal(t, "retry", givenUp[0].ContextMap()["pool"])
	assert.Equal(t, "x", givenUp[0].ContextMap()["task_id"])
}

func TestPoolRecoversPanics(t *testing.T) {
	gaveUp := make(chan error, 1)
	p := NewPool("panicky", func(_ context.Context, task Task[int]) error {
		panic("boom")
	}, Options[int]{OnGiveUp: func(_ Task[int], err error) { gaveUp <- err }})
	p.Start(context.Background())
	defer p.Stop()

	require.NoError(t, p.Submit(Task[int]{ID: "p"}))

	select {
	case err := <-gaveUp:
		assert.Contains(t, err.Error(), "panicked: boom")
	case <-time.After(2 * time.Second):
		t.Fatal("panic not converted")
	}
}

func TestPoolRetrySucceeds(t *testing.T) {
	var calls int32
	done := make(chan struct{})
	p := NewPool("flaky", func(_ context.Context, task Task[int]) error {
		if atomic.AddInt32(&calls, 1) == 1 {
			return errors.New("transient")
		}
		close(done)
		return nil
	}, Options[int]{MaxRetries: 1, Backoff: time.Millisecond})
	p.Start(context.Background())
	defer p.Stop()

	require.NoError(t, p.Submit(Task[int]{ID: "y"}))
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("retry not delivered")
	}
}

func TestPoolStopIsIdempotent(t *testing.T) {
	p := NewPool("idle", func(context.Context, Task[int]) error { return nil }, Options[int]{})
	p.Stop()
	p.Start(context.Background())
	p.Stop()
	p.Stop()
	assert.ErrorIs(t, p.Submit(Task[int]{ID: "late"}), ErrNotRunning)
}
