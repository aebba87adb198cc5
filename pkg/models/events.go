package models

import "encoding/json"

// EventType represents the type of audit event.
type EventType string

const (
	EventProductCreated EventType = "PRODUCT_CREATED"
	EventProductUpdated EventType = "PRODUCT_UPDATED"
	EventProductDeleted EventType = "PRODUCT_DELETED"
	EventOrderCreated   EventType = "ORDER_CREATED"
	EventOrderDeleted   EventType = "ORDER_DELETED"
)

// EntityType names the kind of entity an audit event belongs to. It is the
// first component of the event partition key.
type EntityType string

const (
	EntityProduct EntityType = "product"
	EntityOrder   EntityType = "order"
)

// Event is an immutable audit record of a business mutation.
//
// PK groups events by entity ("#<entityType>_<entityCode>") and SK orders them
// within the partition by occurrence time ("<eventType>#<timestampMillis>").
// TTL is the absolute Unix-seconds expiry honoured by the event store's
// reaper; application code never deletes events.
type Event struct {
	PK        string          `json:"pk"`
	SK        string          `json:"sk"`
	Email     string          `json:"email"`
	CreatedAt int64           `json:"createdAt"`
	RequestID string          `json:"requestId"`
	EventType EventType       `json:"eventType"`
	Info      json.RawMessage `json:"info"`
	TTL       int64           `json:"ttl"`
}

// ProductEventInfo is the payload of PRODUCT_* events: a snapshot of the
// product id and price at event time.
type ProductEventInfo struct {
	ProductID string  `json:"productId"`
	Price     float64 `json:"price"`
}

// OrderEventInfo is the payload of ORDER_* events.
type OrderEventInfo struct {
	OrderID    string   `json:"orderId"`
	ProductIDs []string `json:"productIds"`
	Total      float64  `json:"total"`
}
