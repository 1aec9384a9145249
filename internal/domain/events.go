package domain

import (
	"strconv"
	"time"
)

// Aggregate types
const (
	AggregateTypeAccount        = "account"
	AggregateTypeMovement       = "movement"
	AggregateTypeTransfer       = "transfer"
	AggregateTypeCard           = "card"
	AggregateTypeReconciliation = "rendicion"
)

// OutboxEvent is an audit fact written in the same unit of work as the change
// it describes and published later.
type OutboxEvent struct {
	ID            string
	AggregateID   string
	AggregateType string
	EventType     string
	Payload       map[string]any
	CreatedAt     time.Time
	PublishedAt   *time.Time
	Published     bool
}

// NewAuditEvent builds an unpublished event carrying the actor, the action and
// the affected entity.
func NewAuditEvent(id string, action AuditAction, aggregateType, aggregateID string, actorID int64, payload map[string]any, at time.Time) *OutboxEvent {
	body := make(map[string]any, len(payload)+4)
	for k, v := range payload {
		body[k] = v
	}
	body["actor_id"] = actorID
	body["action"] = string(action)
	body["entity_type"] = aggregateType
	body["entity_id"] = aggregateID

	return &OutboxEvent{
		ID:            id,
		AggregateID:   aggregateID,
		AggregateType: aggregateType,
		EventType:     string(action),
		Payload:       body,
		CreatedAt:     at,
	}
}

// FormatID renders a numeric entity id as an aggregate id.
func FormatID(id int64) string {
	return strconv.FormatInt(id, 10)
}
