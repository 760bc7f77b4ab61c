package worker

import (
	"context"
	"log"
	"time"
)

type StaleLeadReassigner interface {
	ReassignStaleLeads(ctx context.Context) (int, error)
}

// ReassignmentWorker roda a varredura de leads parados: uma vez ao subir e depois a cada tick.
type ReassignmentWorker struct {
	reassigner   StaleLeadReassigner
	tickInterval time.Duration
}

func NewReassignmentWorker(reassigner StaleLeadReassigner, tickInterval time.Duration) *ReassignmentWorker {
	if tickInterval <= 0 {
		tickInterval = time.Hour
	}
	return &ReassignmentWorker{
		reassigner:   reassigner,
		tickInterval: tickInterval,
	}
}

func (w *ReassignmentWorker) Start(ctx context.Context) {
	log.Printf("🕒 Reassignment Worker iniciado (a cada %s)", w.tickInterval)

	ticker := time.NewTicker(w.tickInterval)
	defer ticker.Stop()

	w.sweep(ctx)

	for {
		select {
		case <-ctx.Done():
			log.Println("⚠️ Reassignment Worker encerrado")
			return
		case <-ticker.C:
			w.sweep(ctx)
		}
	}
}

func (w *ReassignmentWorker) sweep(ctx context.Context) {
	started := time.Now()
	n, err := w.reassigner.ReassignStaleLeads(ctx)
	if err != nil {
		log.Printf("❌ Erro na realocação de leads: %v", err)
		return
	}
	if n > 0 {
		log.Printf("✅ %d lead(s) realocado(s) em %s", n, time.Since(started).Round(time.Millisecond))
	}
}
