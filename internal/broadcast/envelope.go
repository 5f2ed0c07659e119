package broadcast

import (
	"encoding/json"
	"fmt"
)

// Envelope is the wire frame: {"type": ..., "payload": {...}}.
type Envelope struct {
	Type    EventType       `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Encode builds the wire frame for an event.
func Encode(eventType EventType, payload any) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode %s payload: %w", eventType, err)
	}
	return json.Marshal(Envelope{Type: eventType, Payload: raw})
}

// Parse decodes a wire frame. The payload stays raw until Unmarshal.
func Parse(data []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return Envelope{}, fmt.Errorf("parse envelope: %w", err)
	}
	if env.Type == "" {
		return Envelope{}, fmt.Errorf("parse envelope: missing type")
	}
	return env, nil
}

// Unmarshal decodes the payload into v.
func (e Envelope) Unmarshal(v any) error {
	if err := json.Unmarshal(e.Payload, v); err != nil {
		return fmt.Errorf("decode %s payload: %w", e.Type, err)
	}
	return nil
}
