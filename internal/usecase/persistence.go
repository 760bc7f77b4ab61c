package usecase

import (
	"context"
	"log"
	"sync"
	"time"
)

const (
	writerBuffer    = 512
	enqueueWait     = 30 * time.Second
	remoteOpTimeout = 15 * time.Second
)

type Operation struct {
	Name string
	Fn   func(context.Context) error
}

// remoteWriter mirrors mutations to the hosted store in the order they were made.
// Callers never wait for the store and nothing is rolled back when an operation fails.
// A full queue blocks the caller for up to wait; past that the operation is dropped
// and counted as a failed write, so the order of what does run is kept.
type remoteWriter struct {
	mu      sync.Mutex
	ops     chan Operation
	closed  bool
	inline  bool
	wait    time.Duration
	wg      sync.WaitGroup
	metrics MetricsRecorder
}

func newRemoteWriter(inline bool, metrics MetricsRecorder) *remoteWriter {
	return newBufferedWriter(writerBuffer, enqueueWait, inline, metrics)
}

func newBufferedWriter(size int, wait time.Duration, inline bool, metrics MetricsRecorder) *remoteWriter {
	w := &remoteWriter{
		ops:     make(chan Operation, size),
		inline:  inline,
		wait:    wait,
		metrics: metrics,
	}
	if !inline {
		go w.loop()
	}
	return w
}

func (w *remoteWriter) loop() {
	for op := range w.ops {
		w.run(op)
		w.wg.Done()
	}
}

func (w *remoteWriter) Enqueue(ops ...Operation) {
	for _, op := range ops {
		if op.Fn == nil {
			continue
		}
		w.enqueue(op)
	}
}

func (w *remoteWriter) enqueue(op Operation) {
	w.mu.Lock()
	if w.inline || w.closed {
		w.mu.Unlock()
		w.run(op)
		return
	}

	// w.mu fica preso durante a espera: Close não pode fechar o canal no meio do envio
	defer w.mu.Unlock()
	w.wg.Add(1)
	select {
	case w.ops <- op:
		return
	default:
	}

	log.Printf("⚠️ Fila de escrita remota cheia, aguardando para enfileirar '%s'", op.Name)
	timer := time.NewTimer(w.wait)
	defer timer.Stop()
	select {
	case w.ops <- op:
	case <-timer.C:
		w.wg.Done()
		log.Printf("❌ Escrita remota '%s' descartada: fila cheia há %s (estado local mantido)", op.Name, w.wait)
		w.metrics.RemoteWriteFailed(op.Name)
	}
}

func (w *remoteWriter) run(op Operation) {
	ctx, cancel := context.WithTimeout(context.Background(), remoteOpTimeout)
	defer cancel()

	if err := op.Fn(ctx); err != nil {
		log.Printf("❌ Escrita remota '%s' falhou: %v (estado local mantido)", op.Name, err)
		w.metrics.RemoteWriteFailed(op.Name)
	}
}

// Close stops accepting queued work and waits for pending operations or ctx.
func (w *remoteWriter) Close(ctx context.Context) error {
	w.mu.Lock()
	if !w.closed {
		w.closed = true
		if !w.inline {
			close(w.ops)
		}
	}
	w.mu.Unlock()

	done := make(chan struct{})
	go func() {
		w.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
