package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type countingReassigner struct {
	calls atomic.Int32
	err   error
}

func (c *countingReassigner) ReassignStaleLeads(context.Context) (int, error) {
	c.calls.Add(1)
	return 1, c.err
}

func TestReassignmentWorker_RunsOnStartAndOnTick(t *testing.T) {
	r := &countingReassigner{}
	w := NewReassignmentWorker(r, 10*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Start(ctx)
		close(done)
	}()

	assert.Eventually(t, func() bool { return r.calls.Load() >= 3 }, time.Second, 5*time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker não encerrou após cancelamento")
	}
}

func TestReassignmentWorker_KeepsRunningAfterError(t *testing.T) {
	r := &countingReassigner{err: errors.New("falhou")}
	w := NewReassignmentWorker(r, 10*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Start(ctx)

	assert.Eventually(t, func() bool { return r.calls.Load() >= 2 }, time.Second, 5*time.Millisecond)
}

func TestNewReassignmentWorker_DefaultInterval(t *testing.T) {
	w := NewReassignmentWorker(&countingReassigner{}, 0)
	assert.Equal(t, time.Hour, w.tickInterval)
}
