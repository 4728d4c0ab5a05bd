package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"giro/internal/core"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "giro.db"))
	if err != nil {
		t.Fatalf("NewSQLiteRepository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func mustIncome(t *testing.T, gross float64) core.Entry {
	t.Helper()
	e, err := core.NewIncomeEntry(core.IncomeInput{
		Date:    core.NewDate(2024, 3, 15),
		Gross:   gross,
		Payment: core.PayCash,
	}, core.DefaultSettings())
	if err != nil {
		t.Fatalf("NewIncomeEntry: %v", err)
	}
	return e
}

func TestEntryRoundTrip(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	e := mustIncome(t, 100)
	if err := repo.CreateEntry(ctx, e); err != nil {
		t.Fatalf("CreateEntry: %v", err)
	}

	got, err := repo.GetEntry(ctx, e.ID)
	if err != nil {
		t.Fatalf("GetEntry: %v", err)
	}
	if got.Gross != 100 || got.Net != 70 {
		t.Errorf("got gross=%v net=%v, want 100/70", got.Gross, got.Net)
	}
	if got.Kind != core.KindIncome || !got.Settled {
		t.Errorf("kind=%v settled=%v after round trip", got.Kind, got.Settled)
	}
	if got.Date.ISO() != "2024-03-15" {
		t.Errorf("date = %s", got.Date.ISO())
	}
}

func TestGetEntry_NotFound(t *testing.T) {
	repo := newTestRepo(t)

	_, err := repo.GetEntry(context.Background(), "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestListEntries_InsertionOrder(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	first := mustIncome(t, 10)
	second := mustIncome(t, 20)
	for _, e := range []core.Entry{first, second} {
		if err := repo.CreateEntry(ctx, e); err != nil {
			t.Fatalf("CreateEntry: %v", err)
		}
	}

	entries, err := repo.ListEntries(ctx)
	if err != nil {
		t.Fatalf("ListEntries: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("len = %d, want 2", len(entries))
	}
	if entries[0].ID != first.ID || entries[1].ID != second.ID {
		t.Error("entries not in insertion order")
	}
}

func TestReplaceEntry_BumpsVersion(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	e := mustIncome(t, 100)
	if err := repo.CreateEntry(ctx, e); err != nil {
		t.Fatalf("CreateEntry: %v", err)
	}

	replacement := mustIncome(t, 150).WithID(e.ID)
	version, err := repo.ReplaceEntry(ctx, replacement)
	if err != nil {
		t.Fatalf("ReplaceEntry: %v", err)
	}
	if version != 2 {
		t.Errorf("version = %d, want 2", version)
	}

	got, err := repo.GetEntry(ctx, e.ID)
	if err != nil {
		t.Fatalf("GetEntry: %v", err)
	}
	if got.Gross != 150 {
		t.Errorf("gross = %v after replace, want 150", got.Gross)
	}

	_, err = repo.ReplaceEntry(ctx, mustIncome(t, 1).WithID("missing"))
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("replace missing err = %v, want ErrNotFound", err)
	}
}

func TestDeleteEntry_SoftDelete(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	e := mustIncome(t, 100)
	if err := repo.CreateEntry(ctx, e); err != nil {
		t.Fatalf("CreateEntry: %v", err)
	}
	if err := repo.DeleteEntry(ctx, e.ID); err != nil {
		t.Fatalf("DeleteEntry: %v", err)
	}

	if _, err := repo.GetEntry(ctx, e.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetEntry after delete err = %v, want ErrNotFound", err)
	}

	// The row must stay visible to the sync worker so the deletion
	// reaches the backup sheet.
	pending, err := repo.GetEntryForSync(ctx, e.ID)
	if err != nil {
		t.Fatalf("GetEntryForSync: %v", err)
	}
	if !pending.Deleted {
		t.Error("sync view should flag the entry as deleted")
	}

	if err := repo.DeleteEntry(ctx, e.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("second delete err = %v, want ErrNotFound", err)
	}
}

func TestPendingSyncFlow(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	e := mustIncome(t, 100)
	if err := repo.CreateEntry(ctx, e); err != nil {
		t.Fatalf("CreateEntry: %v", err)
	}

	pending, err := repo.ListPendingEntries(ctx, 10)
	if err != nil {
		t.Fatalf("ListPendingEntries: %v", err)
	}
	if len(pending) != 1 || pending[0].Entry.ID != e.ID {
		t.Fatalf("pending = %+v, want the new entry", pending)
	}
	if pending[0].Version != 1 {
		t.Errorf("version = %d, want 1", pending[0].Version)
	}

	if err := repo.MarkEntrySynced(ctx, e.ID, pending[0].Version); err != nil {
		t.Fatalf("MarkEntrySynced: %v", err)
	}
	pending, err = repo.ListPendingEntries(ctx, 10)
	if err != nil {
		t.Fatalf("ListPendingEntries: %v", err)
	}
	if len(pending) != 0 {
		t.Errorf("pending after sync = %d, want 0", len(pending))
	}
}

func TestMarkEntrySynced_StaleVersion(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	e := mustIncome(t, 100)
	if err := repo.CreateEntry(ctx, e); err != nil {
		t.Fatalf("CreateEntry: %v", err)
	}
	if _, err := repo.ReplaceEntry(ctx, mustIncome(t, 120).WithID(e.ID)); err != nil {
		t.Fatalf("ReplaceEntry: %v", err)
	}

	// A worker that read version 1 before the replace must not clear
	// the pending flag for version 2.
	if err := repo.MarkEntrySynced(ctx, e.ID, 1); err != nil {
		t.Fatalf("MarkEntrySynced: %v", err)
	}
	pending, err := repo.ListPendingEntries(ctx, 10)
	if err != nil {
		t.Fatalf("ListPendingEntries: %v", err)
	}
	if len(pending) != 1 {
		t.Errorf("stale ack cleared the pending flag")
	}
}

func TestSessionLifecycle(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	date := core.NewDate(2024, 3, 15)

	s, err := core.NewSession(date, "08:00", "morning shift")
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	if err := repo.CreateSession(ctx, s); err != nil {
		t.Fatalf("CreateSession: %v", err)
	}

	open, err := repo.OpenSession(ctx, date)
	if err != nil {
		t.Fatalf("OpenSession: %v", err)
	}
	if open.ID != s.ID || !open.Open() {
		t.Errorf("open session = %+v", open)
	}

	if err := repo.CloseSession(ctx, s.ID, "16:30", 30); err != nil {
		t.Fatalf("CloseSession: %v", err)
	}
	if _, err := repo.OpenSession(ctx, date); !errors.Is(err, ErrNotFound) {
		t.Errorf("OpenSession after close err = %v, want ErrNotFound", err)
	}
	if err := repo.CloseSession(ctx, s.ID, "17:00", 0); !errors.Is(err, ErrNotFound) {
		t.Errorf("second close err = %v, want ErrNotFound", err)
	}

	sessions, err := repo.ListSessions(ctx)
	if err != nil {
		t.Fatalf("ListSessions: %v", err)
	}
	if len(sessions) != 1 {
		t.Fatalf("len = %d, want 1", len(sessions))
	}
	got := sessions[0]
	if got.EndTime != "16:30" || got.BreakMinutes != 30 || got.Notes != "morning shift" {
		t.Errorf("closed session = %+v", got)
	}
}

func TestSettingsRoundTrip(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	cfg, err := repo.GetSettings(ctx)
	if err != nil {
		t.Fatalf("GetSettings: %v", err)
	}
	if cfg.PercFuel != 0.14 || cfg.DailyGoal != 250 {
		t.Errorf("seeded settings = %+v", cfg)
	}
	if len(cfg.Alerts) != 3 {
		t.Fatalf("seeded alerts = %d, want 3", len(cfg.Alerts))
	}

	cfg.DailyGoal = 300
	cfg.Alerts = []core.MaintenanceAlert{
		{ID: "chain", Description: "Chain", KMInterval: 5000, LastKM: 1000},
	}
	if err := repo.PutSettings(ctx, cfg); err != nil {
		t.Fatalf("PutSettings: %v", err)
	}

	got, err := repo.GetSettings(ctx)
	if err != nil {
		t.Fatalf("GetSettings: %v", err)
	}
	if got.DailyGoal != 300 {
		t.Errorf("daily goal = %v, want 300", got.DailyGoal)
	}
	if len(got.Alerts) != 1 || got.Alerts[0].ID != "chain" {
		t.Errorf("alerts = %+v", got.Alerts)
	}

	if err := repo.UpdateLastTotalKM(ctx, 42000); err != nil {
		t.Fatalf("UpdateLastTotalKM: %v", err)
	}
	if err := repo.UpdateLastFuelPrice(ctx, 5.75); err != nil {
		t.Fatalf("UpdateLastFuelPrice: %v", err)
	}
	got, err = repo.GetSettings(ctx)
	if err != nil {
		t.Fatalf("GetSettings: %v", err)
	}
	if got.LastTotalKM != 42000 || got.LastFuelPrice != 5.75 {
		t.Errorf("last km/price = %v/%v", got.LastTotalKM, got.LastFuelPrice)
	}
}
