package worker

import (
	"context"
	"errors"
	"testing"

	"giro/internal/amqp"
	"giro/internal/core"
	"giro/internal/sheets/memory"
	"giro/internal/storage"
)

type fakeStore struct {
	rows      map[string]storage.PendingEntry
	synced    map[string]int64
	errored   map[string]bool
	listErr   error
	pendingID []string
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		rows:    make(map[string]storage.PendingEntry),
		synced:  make(map[string]int64),
		errored: make(map[string]bool),
	}
}

func (f *fakeStore) add(p storage.PendingEntry) {
	f.rows[p.Entry.ID] = p
	f.pendingID = append(f.pendingID, p.Entry.ID)
}

func (f *fakeStore) GetEntryForSync(_ context.Context, id string) (storage.PendingEntry, error) {
	p, ok := f.rows[id]
	if !ok {
		return storage.PendingEntry{}, storage.ErrNotFound
	}
	return p, nil
}

func (f *fakeStore) ListPendingEntries(_ context.Context, limit int) ([]storage.PendingEntry, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []storage.PendingEntry
	for _, id := range f.pendingID {
		if len(out) == limit {
			break
		}
		out = append(out, f.rows[id])
	}
	return out, nil
}

func (f *fakeStore) MarkEntrySynced(_ context.Context, id string, version int64) error {
	f.synced[id] = version
	return nil
}

func (f *fakeStore) MarkEntrySyncError(_ context.Context, id string) error {
	f.errored[id] = true
	return nil
}

type failingWriter struct{}

func (failingWriter) Upsert(context.Context, core.Entry) error {
	return errors.New("sheet unavailable")
}

func testEntry(id string) core.Entry {
	return core.Entry{
		ID:    id,
		Kind:  core.KindIncome,
		Date:  core.NewDate(2024, 3, 15),
		Label: "General",
		Gross: 100,
		Net:   70,
	}
}

func TestSyncWorker_HandleSyncMessage(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	store.add(storage.PendingEntry{Entry: testEntry("e1"), Version: 3})

	mirror := memory.New()
	w := NewSyncWorker(store, mirror, mirror, 10)

	if err := w.HandleSyncMessage(ctx, amqp.NewEntrySyncMessage("e1", 3)); err != nil {
		t.Fatalf("HandleSyncMessage: %v", err)
	}

	got := mirror.Entries()
	if len(got) != 1 || got[0].ID != "e1" {
		t.Fatalf("mirror entries = %v, want e1", got)
	}
	if store.synced["e1"] != 3 {
		t.Errorf("synced version = %d, want 3", store.synced["e1"])
	}
}

func TestSyncWorker_HandleSyncMessage_UnknownEntry(t *testing.T) {
	store := newFakeStore()
	mirror := memory.New()
	w := NewSyncWorker(store, mirror, mirror, 10)

	err := w.HandleSyncMessage(context.Background(), amqp.NewEntrySyncMessage("ghost", 1))
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("HandleSyncMessage = %v, want ErrNotFound", err)
	}
}

func TestSyncWorker_HandleSyncMessage_DeletedEntry(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	store.add(storage.PendingEntry{Entry: testEntry("e1"), Version: 1})

	mirror := memory.New()
	w := NewSyncWorker(store, mirror, mirror, 10)

	if err := w.HandleSyncMessage(ctx, amqp.NewEntrySyncMessage("e1", 1)); err != nil {
		t.Fatalf("HandleSyncMessage: %v", err)
	}

	store.rows["e1"] = storage.PendingEntry{Entry: testEntry("e1"), Version: 2, Deleted: true}
	if err := w.HandleSyncMessage(ctx, amqp.NewEntrySyncMessage("e1", 2)); err != nil {
		t.Fatalf("HandleSyncMessage delete: %v", err)
	}

	if len(mirror.Entries()) != 0 {
		t.Errorf("mirror should be empty after delete, got %v", mirror.Entries())
	}
}

func TestSyncWorker_CatchUp(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	store.add(storage.PendingEntry{Entry: testEntry("e1"), Version: 1})
	store.add(storage.PendingEntry{Entry: testEntry("e2"), Version: 1})
	store.add(storage.PendingEntry{Entry: testEntry("e3"), Version: 1})

	mirror := memory.New()
	w := NewSyncWorker(store, mirror, mirror, 2)

	n, err := w.CatchUp(ctx)
	if err != nil {
		t.Fatalf("CatchUp: %v", err)
	}
	if n != 2 {
		t.Errorf("processed = %d, want batch size 2", n)
	}
	if len(mirror.Entries()) != 2 {
		t.Errorf("mirror has %d entries, want 2", len(mirror.Entries()))
	}
}

func TestSyncWorker_CatchUp_MarksFailures(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	store.add(storage.PendingEntry{Entry: testEntry("e1"), Version: 1})

	mirror := memory.New()
	w := NewSyncWorker(store, failingWriter{}, mirror, 10)

	n, err := w.CatchUp(ctx)
	if err != nil {
		t.Fatalf("CatchUp: %v", err)
	}
	if n != 0 {
		t.Errorf("processed = %d, want 0", n)
	}
	if !store.errored["e1"] {
		t.Error("failed entry should be marked with sync error")
	}
}
