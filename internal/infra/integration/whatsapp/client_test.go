package whatsapp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_SendMessage(t *testing.T) {
	var got messagePayload
	var auth, path string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		path = r.URL.Path
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"messages":[{"id":"wamid.1"}]}`))
	}))
	defer srv.Close()

	c := NewClient("token", "123", srv.URL)
	err := c.SendMessage(context.Background(), SendMessageInput{
		PhoneNumber:  "5511999999999",
		TemplateName: "lead_realocado",
		Parameters:   []string{"Maria", "João"},
	})
	require.NoError(t, err)

	assert.Equal(t, "Bearer token", auth)
	assert.Equal(t, "/123/messages", path)
	assert.Equal(t, "5511999999999", got.To)
	assert.Equal(t, "lead_realocado", got.Template.Name)
	require.Len(t, got.Template.Components, 1)
	assert.Equal(t, "João", got.Template.Components[0].Parameters[1].Text)
}

func TestClient_SendMessage_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"message":"template inexistente","code":132001}}`))
	}))
	defer srv.Close()

	err := NewClient("token", "123", srv.URL).SendMessage(context.Background(), SendMessageInput{PhoneNumber: "1"})
	assert.ErrorContains(t, err, "template inexistente")
}

func TestClient_NotConfigured(t *testing.T) {
	err := NewClient("", "", "").SendMessage(context.Background(), SendMessageInput{})
	assert.ErrorIs(t, err, ErrNotConfigured)
}
