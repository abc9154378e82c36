package items

import (
	"context"

	"github.com/cicd-lab/vercel-render/pkg/publishers"
)

// EventPublisher publishes item change events downstream. *publishers.Fanout
// satisfies it.
type EventPublisher interface {
	Publish(ctx context.Context, evt publishers.Event) (int, error)
}

// EventMetrics counts publish outcomes per action.
type EventMetrics interface {
	EventPublished(action string)
	EventPublishFailed(action string)
}
