package publishers

import (
	"time"

	"github.com/cicd-lab/vercel-render/internal/domain"
	"github.com/google/uuid"
)

// Item change actions.
const (
	ActionCreated = "created"
	ActionUpdated = "updated"
	ActionDeleted = "deleted"
)

// Event represents the payload published downstream when an item changes.
type Event struct {
	ID         string       `json:"id"`
	Action     string       `json:"action"`
	ItemID     int64        `json:"item_id"`
	Item       *domain.Item `json:"item,omitempty"`
	OccurredAt time.Time    `json:"occurred_at"`
}

// NewEvent constructs an Event for the given action + item. Deletions carry
// only the id.
func NewEvent(action string, item domain.Item) Event {
	evt := Event{
		ID:         uuid.NewString(),
		Action:     action,
		ItemID:     item.ID,
		OccurredAt: time.Now().UTC(),
	}
	if action != ActionDeleted {
		it := item
		evt.Item = &it
	}
	return evt
}

// attributes are the message attributes attached by queue/topic publishers.
func (e Event) attributes() map[string]string {
	return map[string]string{
		"event_id": e.ID,
		"action":   e.Action,
	}
}
