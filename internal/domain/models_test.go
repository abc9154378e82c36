package domain

import (
	"encoding/json"
	"testing"
)

func TestItemUpdateRequestOmitsUnsetFields(t *testing.T) {
	status := "done"
	raw, err := json.Marshal(ItemUpdateRequest{Status: &status})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(raw) != `{"status":"done"}` {
		t.Fatalf("unexpected body %s", raw)
	}
}

func TestItemUpdateRequestApply(t *testing.T) {
	name := "renamed"
	item := ItemUpdateRequest{Name: &name}.Apply(Item{ID: 3, Name: "old", Status: StatusPending})
	if item.ID != 3 || item.Name != "renamed" || item.Status != StatusPending {
		t.Fatalf("unexpected item %+v", item)
	}
}

func TestValidStatus(t *testing.T) {
	for _, s := range Statuses() {
		if !ValidStatus(s) {
			t.Fatalf("expected %q to be valid", s)
		}
	}
	if ValidStatus("done") {
		t.Fatalf("expected lowercase english status to be rejected")
	}
}
