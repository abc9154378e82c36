package publishers

import (
	"context"
	"encoding/json"
	"testing"

	"cloud.google.com/go/pubsub"
	"cloud.google.com/go/pubsub/pstest"
)

func TestPubSubPublisherPublishes(t *testing.T) {
	// Use the in-memory Pub/Sub emulator.
	server := pstest.NewServer()
	defer server.Close()
	t.Setenv("PUBSUB_EMULATOR_HOST", server.Addr)

	ctx := context.Background()
	admin, err := pubsub.NewClient(ctx, "test-project")
	if err != nil {
		t.Fatalf("create client: %v", err)
	}
	defer admin.Close()
	if _, err := admin.CreateTopic(ctx, "items"); err != nil {
		t.Fatalf("create topic: %v", err)
	}

	pub, err := newPubSubPublisher(ctx, PublisherConfig{
		ID:     "gcp",
		Type:   TypeGCPPubSub,
		PubSub: &GCPPubSubPublisherConfig{ProjectID: "test-project", Topic: "items"},
	}, nil)
	if err != nil {
		t.Fatalf("newPubSubPublisher: %v", err)
	}

	evt := testEvent()
	if err := pub.Publish(ctx, evt); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if err := pub.(*pubsubPublisher).Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	msgs := server.Messages()
	if len(msgs) != 1 {
		t.Fatalf("expected 1 message on emulator, got %d", len(msgs))
	}
	if msgs[0].Attributes["action"] != ActionUpdated {
		t.Fatalf("unexpected attributes %#v", msgs[0].Attributes)
	}
	var got Event
	if err := json.Unmarshal(msgs[0].Data, &got); err != nil || got.ID != evt.ID {
		t.Fatalf("unexpected payload %s err=%v", msgs[0].Data, err)
	}
}
