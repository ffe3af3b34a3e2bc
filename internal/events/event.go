// Package events delivers order lifecycle notifications. Mutations hand
// events to an in-memory backlog; a worker pool drains it and publishes
// through the configured Publisher, so the broker never sits on the
// request path.
package events

import (
	"time"

	"github.com/salescrm/order-service/internal/model"
)

// Action names what happened to the order.
type Action string

const (
	ActionCreated Action = "created"
	ActionUpdated Action = "updated"
	ActionDeleted Action = "deleted"
)

// Event is one order lifecycle notification. Sequence is assigned at
// enqueue time and is monotonically increasing within the process.
type Event struct {
	Sequence   uint64      `json:"sequence"`
	Action     Action      `json:"action"`
	Order      model.Order `json:"order"`
	OccurredAt time.Time   `json:"occurred_at"`
}
