package bus

import "time"

// Event is one item travelling through the bus. Payload is opaque to the
// bus; broadcast frames carry their encoded envelope as []byte.
type Event struct {
	Kind      string
	Timestamp time.Time
	Payload   any
}
