package queue

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xavierca1/imersao-crm/internal/entity"
	"github.com/xavierca1/imersao-crm/internal/usecase"
)

type fakeAcknowledger struct {
	acked, nacked, requeued int
}

func (a *fakeAcknowledger) Ack(uint64, bool) error {
	a.acked++
	return nil
}

func (a *fakeAcknowledger) Nack(_ uint64, _ bool, requeue bool) error {
	a.nacked++
	if requeue {
		a.requeued++
	}
	return nil
}

func (a *fakeAcknowledger) Reject(tag uint64, requeue bool) error {
	return a.Nack(tag, false, requeue)
}

type recordingApplier struct {
	origin  string
	applied []usecase.LeadChange
}

func (r *recordingApplier) ApplyRemoteChange(_ context.Context, change usecase.LeadChange) bool {
	r.applied = append(r.applied, change)
	return true
}

func (r *recordingApplier) Origin() string { return r.origin }

func delivery(ack amqp.Acknowledger, body []byte) amqp.Delivery {
	return amqp.Delivery{Acknowledger: ack, DeliveryTag: 1, Body: body}
}

func marshal(t *testing.T, change usecase.LeadChange) []byte {
	t.Helper()
	body, err := json.Marshal(change)
	require.NoError(t, err)
	return body
}

func TestWorkerHandle_AppliesForeignChanges(t *testing.T) {
	applier := &recordingApplier{origin: "api-1"}
	w := &Worker{Applier: applier}
	ack := &fakeAcknowledger{}

	lead := entity.NewLead("Maria", "11900000001", "", "", time.Now())
	w.handle(context.Background(), delivery(ack, marshal(t, usecase.LeadChange{
		Type: usecase.ChangeUpdate, Origin: "api-2", LeadID: lead.ID, Lead: lead,
	})))

	require.Len(t, applier.applied, 1)
	assert.Equal(t, lead.ID, applier.applied[0].Lead.ID)
	assert.Equal(t, "Maria", applier.applied[0].Lead.Name)
	assert.Equal(t, 1, ack.acked)
	assert.Zero(t, ack.nacked)
}

func TestWorkerHandle_SkipsOwnChanges(t *testing.T) {
	applier := &recordingApplier{origin: "api-1"}
	w := &Worker{Applier: applier}
	ack := &fakeAcknowledger{}

	w.handle(context.Background(), delivery(ack, marshal(t, usecase.LeadChange{
		Type: usecase.ChangeDelete, Origin: "api-1", LeadID: "lead-1",
	})))

	assert.Empty(t, applier.applied)
	assert.Equal(t, 1, ack.acked)
}

func TestWorkerHandle_RejectsPoisonMessages(t *testing.T) {
	applier := &recordingApplier{origin: "api-1"}
	w := &Worker{Applier: applier}

	for _, body := range [][]byte{[]byte("{not json"), []byte(`{"origin":"api-2"}`)} {
		ack := &fakeAcknowledger{}
		w.handle(context.Background(), delivery(ack, body))

		assert.Equal(t, 1, ack.nacked, string(body))
		assert.Zero(t, ack.requeued, "poison messages go to the DLX, never back to the queue")
		assert.Zero(t, ack.acked)
	}
	assert.Empty(t, applier.applied)
}
