package telemetry

import (
	"encoding/json"
	"time"
)

// Event is a domain or request event. It is the JSON value written to Kafka and the
// body of the OTel log record.
type Event struct {
	TenantID  string          `json:"tenantId,omitempty"`
	UserID    string          `json:"userId,omitempty"`
	EventType string          `json:"eventType"`
	Source    string          `json:"source"`
	Metadata  json.RawMessage `json:"metadata,omitempty"`
	CreatedAt time.Time       `json:"createdAt"`
}

// NewEvent builds an event stamped with the current time. metadata is marshaled to JSON;
// a nil metadata or a marshal failure leaves Metadata empty.
func NewEvent(eventType, source, tenantID, userID string, metadata any) *Event {
	e := &Event{
		TenantID:  tenantID,
		UserID:    userID,
		EventType: eventType,
		Source:    source,
		CreatedAt: time.Now().UTC(),
	}
	if metadata != nil {
		if b, err := json.Marshal(metadata); err == nil {
			e.Metadata = b
		}
	}
	return e
}
