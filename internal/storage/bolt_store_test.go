package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/cicd-lab/vercel-render/internal/domain"
)

func TestBoltStoreCRUD(t *testing.T) {
	dir := t.TempDir()
	store, err := openBolt(filepath.Join(dir, "nested", "items.db"))
	if err != nil {
		t.Fatalf("openBolt: %v", err)
	}
	defer store.Close()

	items, err := store.List()
	if err != nil || len(items) != 0 {
		t.Fatalf("expected empty list, got %v err=%v", items, err)
	}

	first, err := store.Create(domain.ItemCreateRequest{Name: "one", Status: domain.StatusPending})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	second, err := store.Create(domain.ItemCreateRequest{Name: "two", Status: domain.StatusPending})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if first.ID != 1 || second.ID != 2 {
		t.Fatalf("expected sequential ids, got %d and %d", first.ID, second.ID)
	}

	status := domain.StatusDone
	updated, err := store.Update(first.ID, domain.ItemUpdateRequest{Status: &status})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Name != "one" || updated.Status != domain.StatusDone {
		t.Fatalf("unexpected update result %+v", updated)
	}

	got, err := store.Get(first.ID)
	if err != nil || got != updated {
		t.Fatalf("Get returned %+v err=%v", got, err)
	}

	if err := store.Delete(second.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := store.Delete(second.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
	if _, err := store.Update(99, domain.ItemUpdateRequest{}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on missing update, got %v", err)
	}

	n, err := store.Count()
	if err != nil || n != 1 {
		t.Fatalf("expected 1 item, got %d err=%v", n, err)
	}
}

func TestBoltStorePersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "items.db")
	store, err := openBolt(path)
	if err != nil {
		t.Fatalf("openBolt: %v", err)
	}
	if _, err := store.Create(domain.ItemCreateRequest{Name: "kept", Status: domain.StatusPending}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reopened, err := openBolt(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()

	items, err := reopened.List()
	if err != nil || len(items) != 1 || items[0].Name != "kept" {
		t.Fatalf("unexpected items after reopen %v err=%v", items, err)
	}
	next, err := reopened.Create(domain.ItemCreateRequest{Name: "next", Status: domain.StatusPending})
	if err != nil || next.ID != 2 {
		t.Fatalf("expected sequence to continue at 2, got %+v err=%v", next, err)
	}
}

func TestSeedOnlyFillsEmptyStore(t *testing.T) {
	store, err := NewStore("memory", "")
	if err != nil {
		t.Fatalf("NewStore memory: %v", err)
	}

	n, err := Seed(store)
	if err != nil || n != len(SeedItems) {
		t.Fatalf("first Seed added %d err=%v", n, err)
	}
	n, err = Seed(store)
	if err != nil || n != 0 {
		t.Fatalf("second Seed added %d err=%v", n, err)
	}
	items, _ := store.List()
	if len(items) != 3 || items[0].Name != "Módulo CI/CD" || items[2].Status != domain.StatusPending {
		t.Fatalf("unexpected seeded items %+v", items)
	}
}

func TestNewStoreRejectsUnknownType(t *testing.T) {
	if _, err := NewStore("mysql", ""); !errors.Is(err, ErrUnsupportedType) {
		t.Fatalf("expected ErrUnsupportedType, got %v", err)
	}
	if _, err := NewStore("bbolt", " "); err == nil {
		t.Fatalf("expected error for empty bbolt path")
	}
}

func TestOpenRetriesThenGivesUp(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "blocker")
	if err := os.WriteFile(blocker, []byte("x"), 0o644); err != nil {
		t.Fatalf("write blocker: %v", err)
	}

	var retries int
	_, err := Open(context.Background(), "bbolt", filepath.Join(blocker, "items.db"), Options{
		Retries:       2,
		RetryInterval: time.Millisecond,
		OnRetry:       func(int, error) { retries++ },
	})
	if err == nil {
		t.Fatalf("expected open to fail")
	}
	if retries != 2 {
		t.Fatalf("expected 2 retries, got %d", retries)
	}
}

func TestOpenDoesNotRetryUnsupportedType(t *testing.T) {
	var retries int
	_, err := Open(context.Background(), "mysql", "", Options{
		Retries:       5,
		RetryInterval: time.Millisecond,
		OnRetry:       func(int, error) { retries++ },
	})
	if !errors.Is(err, ErrUnsupportedType) || retries != 0 {
		t.Fatalf("expected immediate ErrUnsupportedType, got err=%v retries=%d", err, retries)
	}
}

func TestOpenSucceeds(t *testing.T) {
	store, err := Open(context.Background(), "bbolt", filepath.Join(t.TempDir(), "items.db"), Options{})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer store.Close()
}
