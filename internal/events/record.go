// Package events carries device events and appliance commands out of the
// store engine. Producers enqueue without blocking; a Worker drains the queue
// into a Sink (structured log or Kafka).
package events

import "time"

// Category separates events raised by any device from commands sent to appliances.
type Category string

const (
	CategoryEvent   Category = "event"
	CategoryCommand Category = "command"
)

// Record is one device interaction. Keep it transport-agnostic so sinks can fan out.
type Record struct {
	Category    Category  `json:"category"`
	DeviceID    string    `json:"device_id"`
	DeviceType  string    `json:"device_type"`
	DeviceKind  string    `json:"device_kind"`
	StoreID     string    `json:"store_id"`
	AisleNumber string    `json:"aisle_number"`
	Name        string    `json:"name"`
	RequestID   string    `json:"request_id,omitempty"`
	OccurredAt  time.Time `json:"occurred_at"`
}
