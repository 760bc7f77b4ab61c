package kafka

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xavierca1/imersao-crm/internal/usecase"
)

type recordingApplier struct {
	origin  string
	applied []usecase.LeadChange
}

func (r *recordingApplier) ApplyRemoteChange(_ context.Context, change usecase.LeadChange) bool {
	r.applied = append(r.applied, change)
	return true
}

func (r *recordingApplier) Origin() string { return r.origin }

func message(t *testing.T, origin string, change usecase.LeadChange) kafka.Message {
	t.Helper()
	body, err := json.Marshal(change)
	require.NoError(t, err)
	return kafka.Message{
		Key:     []byte(change.LeadID),
		Value:   body,
		Headers: []kafka.Header{{Key: "origin", Value: []byte(origin)}},
	}
}

func TestSubscriberHandle(t *testing.T) {
	applier := &recordingApplier{origin: "api-1"}
	s := &Subscriber{applier: applier}
	ctx := context.Background()

	s.handle(ctx, message(t, "api-1", usecase.LeadChange{Type: usecase.ChangeDelete, Origin: "api-1", LeadID: "a"}))
	assert.Empty(t, applier.applied, "own messages are skipped by header")

	s.handle(ctx, message(t, "api-2", usecase.LeadChange{Type: usecase.ChangeDelete, Origin: "api-2", LeadID: "b"}))
	require.Len(t, applier.applied, 1)
	assert.Equal(t, "b", applier.applied[0].LeadID)

	s.handle(ctx, kafka.Message{Value: []byte("{broken")})
	assert.Len(t, applier.applied, 1)
}

func TestOriginHeader(t *testing.T) {
	assert.Equal(t, "", origin(kafka.Message{}))
	assert.Equal(t, "x", origin(kafka.Message{Headers: []kafka.Header{{Key: "trace", Value: []byte("t")}, {Key: "origin", Value: []byte("x")}}}))
}

func TestGroupID(t *testing.T) {
	assert.Equal(t, "crm-prod", GroupID("crm-prod", "web-1"))
	assert.Equal(t, "imersao-crm-web-1", GroupID("", "web-1"))
}
