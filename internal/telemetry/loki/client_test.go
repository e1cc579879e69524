package loki

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_PushEventJSON(t *testing.T) {
	var got PushRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/loki/api/v1/push", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c := NewClient(srv.URL+"/", "servease")
	raw := []byte(`{"tenantId":"t 1","eventType":"booking_created","source":"booking","createdAt":"2025-03-01T12:00:00Z"}`)
	require.NoError(t, c.PushEventJSON(context.Background(), raw))

	require.Len(t, got.Streams, 1)
	s := got.Streams[0]
	assert.Equal(t, map[string]string{
		"job": "servease", "tenant_id": "t_1", "event_type": "booking_created", "source": "booking",
	}, s.Stream)
	want := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC).UnixNano()
	assert.Equal(t, [][]string{{jsonInt(want), string(raw)}}, s.Values)
}

func TestClient_PushEventJSON_Unparseable(t *testing.T) {
	var got PushRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&got)
	}))
	defer srv.Close()

	require.NoError(t, NewClient(srv.URL, "servease").PushEventJSON(context.Background(), []byte("not json")))
	assert.Equal(t, map[string]string{"job": "servease"}, got.Streams[0].Stream)
}

func TestClient_PushErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	err := NewClient(srv.URL, "servease").Push(context.Background(), time.Now(), "line", nil)
	assert.ErrorContains(t, err, "400")

	err = NewClient("", "servease").Push(context.Background(), time.Now(), "line", nil)
	assert.ErrorContains(t, err, "base URL is empty")
}

func jsonInt(n int64) string {
	b, _ := json.Marshal(n)
	return string(b)
}
