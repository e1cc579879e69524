package otel

import (
	"context"
	"testing"
	"time"

	otellog "go.opentelemetry.io/otel/log"
	sdklog "go.opentelemetry.io/otel/sdk/log"

	"servease/backend/internal/telemetry"
)

// recordCapture stores the last Record passed to Emit for assertion.
type recordCapture struct {
	rec otellog.Record
	n   int
}

func (r *recordCapture) Emit(ctx context.Context, rec otellog.Record) {
	r.rec = rec
	r.n++
}

func attrsOf(rec otellog.Record) map[string]string {
	attrs := make(map[string]string)
	rec.WalkAttributes(func(kv otellog.KeyValue) bool {
		attrs[kv.Key] = kv.Value.AsString()
		return true
	})
	return attrs
}

func TestNewEventEmitter_NilProvider_ReturnsNoop(t *testing.T) {
	em := NewEventEmitter(nil)
	if em == nil {
		t.Fatal("NewEventEmitter(nil) returned nil")
	}
	if err := em.Emit(context.Background(), &telemetry.Event{EventType: "x"}); err != nil {
		t.Errorf("noop Emit: %v", err)
	}
}

func TestNewEventEmitter_WithProvider(t *testing.T) {
	provider := sdklog.NewLoggerProvider()
	defer func() { _ = provider.Shutdown(context.Background()) }()
	em := NewEventEmitter(provider)
	if err := em.Emit(context.Background(), nil); err != nil {
		t.Errorf("Emit(ctx, nil): %v", err)
	}
	if err := em.Emit(context.Background(), telemetry.NewEvent("signup", "auth", "", "u1", nil)); err != nil {
		t.Errorf("Emit: %v", err)
	}
}

func TestEmit_AttributeAndBodyMapping(t *testing.T) {
	cap := &recordCapture{}
	em := NewEventEmitterWithLogger(cap)
	created := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	event := &telemetry.Event{
		TenantID:  "tenant1",
		UserID:    "user1",
		EventType: "booking_created",
		Source:    "booking",
		Metadata:  []byte(`{"key":"value"}`),
		CreatedAt: created,
	}
	if err := em.Emit(context.Background(), event); err != nil {
		t.Fatalf("Emit: %v", err)
	}
	if got := string(cap.rec.Body().AsBytes()); got != `{"key":"value"}` {
		t.Errorf("body = %q", got)
	}
	if !cap.rec.Timestamp().Equal(created) {
		t.Errorf("timestamp = %v, want %v", cap.rec.Timestamp(), created)
	}
	want := map[string]string{
		"tenant_id": "tenant1", "user_id": "user1", "event_type": "booking_created", "source": "booking",
	}
	attrs := attrsOf(cap.rec)
	for k, v := range want {
		if attrs[k] != v {
			t.Errorf("attr %q = %q, want %q", k, attrs[k], v)
		}
	}
}

func TestEmit_PartialEvent(t *testing.T) {
	cap := &recordCapture{}
	em := NewEventEmitterWithLogger(cap)
	before := time.Now().Add(-time.Second)
	if err := em.Emit(context.Background(), &telemetry.Event{EventType: "ping"}); err != nil {
		t.Fatalf("Emit: %v", err)
	}
	if !cap.rec.Body().Empty() {
		t.Error("body should be empty without metadata")
	}
	if cap.rec.Timestamp().Before(before) {
		t.Error("zero CreatedAt should be replaced by now")
	}
	attrs := attrsOf(cap.rec)
	if _, ok := attrs["tenant_id"]; ok {
		t.Error("empty tenant should not be set")
	}
	if attrs["event_type"] != "ping" {
		t.Errorf("attributes = %v", attrs)
	}
}

func TestEmit_NilEventSkipsLogger(t *testing.T) {
	cap := &recordCapture{}
	if err := NewEventEmitterWithLogger(cap).Emit(context.Background(), nil); err != nil {
		t.Fatal(err)
	}
	if cap.n != 0 {
		t.Error("nil event should not be emitted")
	}
}
