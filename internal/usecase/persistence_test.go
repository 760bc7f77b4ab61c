package usecase

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failedWrites struct {
	noopMetrics
	mu    sync.Mutex
	names []string
}

func (f *failedWrites) RemoteWriteFailed(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.names = append(f.names, name)
}

type opLog struct {
	mu  sync.Mutex
	ran []string
}

func (l *opLog) op(name string, gate <-chan struct{}, started chan<- struct{}) Operation {
	return Operation{Name: name, Fn: func(context.Context) error {
		if started != nil {
			close(started)
		}
		if gate != nil {
			<-gate
		}
		l.mu.Lock()
		defer l.mu.Unlock()
		l.ran = append(l.ran, name)
		return nil
	}}
}

func TestRemoteWriter_FullQueueKeepsOrder(t *testing.T) {
	metrics := &failedWrites{}
	w := newBufferedWriter(1, 5*time.Second, false, metrics)
	var ops opLog

	gate := make(chan struct{})
	started := make(chan struct{})
	w.Enqueue(ops.op("lead.insert", gate, started))
	<-started
	w.Enqueue(ops.op("lead.update", nil, nil))

	done := make(chan struct{})
	go func() {
		w.Enqueue(ops.op("history.insert", nil, nil))
		close(done)
	}()

	select {
	case <-done:
		t.Fatal("enqueue on a full queue should wait for room")
	case <-time.After(50 * time.Millisecond):
	}

	close(gate)
	<-done
	require.NoError(t, w.Close(context.Background()))

	assert.Equal(t, []string{"lead.insert", "lead.update", "history.insert"}, ops.ran)
	assert.Empty(t, metrics.names)
}

func TestRemoteWriter_DropsAfterWait(t *testing.T) {
	metrics := &failedWrites{}
	w := newBufferedWriter(1, 20*time.Millisecond, false, metrics)
	var ops opLog

	gate := make(chan struct{})
	started := make(chan struct{})
	w.Enqueue(ops.op("lead.insert", gate, started))
	<-started
	w.Enqueue(ops.op("lead.update", nil, nil))
	w.Enqueue(ops.op("history.insert", nil, nil))

	close(gate)
	require.NoError(t, w.Close(context.Background()))

	assert.Equal(t, []string{"lead.insert", "lead.update"}, ops.ran)
	assert.Equal(t, []string{"history.insert"}, metrics.names)
}

func TestRemoteWriter_InlineRunsImmediately(t *testing.T) {
	w := newBufferedWriter(1, time.Millisecond, true, noopMetrics{})
	var ops opLog

	w.Enqueue(ops.op("a", nil, nil), Operation{Name: "nil"}, ops.op("b", nil, nil))
	assert.Equal(t, []string{"a", "b"}, ops.ran)
	require.NoError(t, w.Close(context.Background()))
}
