package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"giro/internal/amqp"
	"giro/internal/core"
	"giro/internal/storage"
)

// LedgerService orchestrates entry operations across SQLite and AMQP.
// Writes land in SQLite first; the sync message is best effort and a
// broker outage never fails the request.
type LedgerService struct {
	storage    *storage.SQLiteRepository
	amqpClient *amqp.Client
}

func NewLedgerService(storage *storage.SQLiteRepository, amqpClient *amqp.Client) *LedgerService {
	return &LedgerService{
		storage:    storage,
		amqpClient: amqpClient,
	}
}

// AddIncome records a delivery payout split by the configured reserves.
func (s *LedgerService) AddIncome(ctx context.Context, in core.IncomeInput) (core.Entry, error) {
	cfg, err := s.storage.GetSettings(ctx)
	if err != nil {
		return core.Entry{}, fmt.Errorf("load settings: %w", err)
	}

	entry, err := core.NewIncomeEntry(in, cfg)
	if err != nil {
		return core.Entry{}, err
	}

	if err := s.storage.CreateEntry(ctx, entry); err != nil {
		return core.Entry{}, fmt.Errorf("save income: %w", err)
	}

	s.publishSync(ctx, entry.ID, 1)
	return entry, nil
}

// AddExpense records a spend against one reserve bucket. Fuel fills also
// refresh the remembered pump price.
func (s *LedgerService) AddExpense(ctx context.Context, in core.ExpenseInput) (core.Entry, error) {
	entry, err := core.NewExpenseEntry(in)
	if err != nil {
		return core.Entry{}, err
	}

	if err := s.storage.CreateEntry(ctx, entry); err != nil {
		return core.Entry{}, fmt.Errorf("save expense: %w", err)
	}

	if entry.Kind == core.KindFuel && entry.Liters > 0 {
		price := entry.FuelReserve / entry.Liters
		if err := s.storage.UpdateLastFuelPrice(ctx, price); err != nil {
			slog.WarnContext(ctx, "Failed to update last fuel price", "error", err)
		}
	}

	s.publishSync(ctx, entry.ID, 1)
	return entry, nil
}

// CloseOdometer records a day-close odometer reading. The returned bool
// reports a reading below the previous total; the entry is still saved
// with its distance clamped to zero so the day stays recorded.
func (s *LedgerService) CloseOdometer(ctx context.Context, in core.OdometerInput) (core.Entry, bool, error) {
	cfg, err := s.storage.GetSettings(ctx)
	if err != nil {
		return core.Entry{}, false, fmt.Errorf("load settings: %w", err)
	}

	entry, err := core.NewOdometerClosing(in, cfg.LastTotalKM)
	regressed := errors.Is(err, core.ErrOdometerRegression)
	if err != nil && !regressed {
		return core.Entry{}, false, err
	}

	if err := s.storage.CreateEntry(ctx, entry); err != nil {
		return core.Entry{}, false, fmt.Errorf("save odometer closing: %w", err)
	}
	if err := s.storage.UpdateLastTotalKM(ctx, in.TotalKM); err != nil {
		slog.WarnContext(ctx, "Failed to update last total km", "error", err)
	}

	s.publishSync(ctx, entry.ID, 1)
	return entry, regressed, nil
}

// UpdateIncome rebuilds an income entry from fresh input, keeping its ID.
func (s *LedgerService) UpdateIncome(ctx context.Context, id string, in core.IncomeInput) (core.Entry, error) {
	cfg, err := s.storage.GetSettings(ctx)
	if err != nil {
		return core.Entry{}, fmt.Errorf("load settings: %w", err)
	}

	entry, err := core.NewIncomeEntry(in, cfg)
	if err != nil {
		return core.Entry{}, err
	}
	entry = entry.WithID(id)

	version, err := s.storage.ReplaceEntry(ctx, entry)
	if err != nil {
		return core.Entry{}, err
	}

	s.publishSync(ctx, id, version)
	return entry, nil
}

// UpdateExpense rebuilds an expense entry from fresh input, keeping its ID.
func (s *LedgerService) UpdateExpense(ctx context.Context, id string, in core.ExpenseInput) (core.Entry, error) {
	entry, err := core.NewExpenseEntry(in)
	if err != nil {
		return core.Entry{}, err
	}
	entry = entry.WithID(id)

	version, err := s.storage.ReplaceEntry(ctx, entry)
	if err != nil {
		return core.Entry{}, err
	}

	s.publishSync(ctx, id, version)
	return entry, nil
}

// DeleteEntry soft-deletes locally and notifies the worker so the backup
// row is removed too.
func (s *LedgerService) DeleteEntry(ctx context.Context, id string) error {
	if err := s.storage.DeleteEntry(ctx, id); err != nil {
		return err
	}

	pending, err := s.storage.GetEntryForSync(ctx, id)
	if err != nil {
		slog.WarnContext(ctx, "Failed to read deleted entry version", "id", id, "error", err)
		return nil
	}

	s.publishSync(ctx, id, pending.Version)
	return nil
}

// SettleEntry marks a pending payout as received (or back to pending).
func (s *LedgerService) SettleEntry(ctx context.Context, id string, settled bool) error {
	if err := s.storage.SetEntrySettled(ctx, id, settled); err != nil {
		return err
	}

	pending, err := s.storage.GetEntryForSync(ctx, id)
	if err != nil {
		slog.WarnContext(ctx, "Failed to read settled entry version", "id", id, "error", err)
		return nil
	}

	s.publishSync(ctx, id, pending.Version)
	return nil
}

func (s *LedgerService) GetEntry(ctx context.Context, id string) (core.Entry, error) {
	return s.storage.GetEntry(ctx, id)
}

func (s *LedgerService) ListEntries(ctx context.Context, f core.Filter) ([]core.Entry, error) {
	entries, err := s.storage.ListEntries(ctx)
	if err != nil {
		return nil, err
	}
	return f.Apply(entries), nil
}

// Summary totals the filtered entries.
func (s *LedgerService) Summary(ctx context.Context, f core.Filter) (core.Summary, error) {
	entries, err := s.storage.ListEntries(ctx)
	if err != nil {
		return core.Summary{}, err
	}
	return core.Summarize(f.Apply(entries)), nil
}

func (s *LedgerService) DailyStats(ctx context.Context) ([]core.DailyStat, error) {
	entries, err := s.storage.ListEntries(ctx)
	if err != nil {
		return nil, err
	}
	cfg, err := s.storage.GetSettings(ctx)
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}
	return core.GroupByDay(entries, cfg), nil
}

func (s *LedgerService) WeeklyStats(ctx context.Context) ([]core.WeekGroup, error) {
	entries, err := s.storage.ListEntries(ctx)
	if err != nil {
		return nil, err
	}
	return core.GroupByWeek(entries), nil
}

func (s *LedgerService) FuelMetrics(ctx context.Context) (core.FuelMetrics, error) {
	entries, err := s.storage.ListEntries(ctx)
	if err != nil {
		return core.FuelMetrics{}, err
	}
	return core.ComputeFuelMetrics(entries), nil
}

// MaintenanceStatus projects every configured alert against today.
func (s *LedgerService) MaintenanceStatus(ctx context.Context) ([]core.AlertStatus, error) {
	entries, err := s.storage.ListEntries(ctx)
	if err != nil {
		return nil, err
	}
	cfg, err := s.storage.GetSettings(ctx)
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}

	now := time.Now()
	today := core.NewDate(now.Year(), int(now.Month()), now.Day())
	return core.ProjectMaintenance(entries, cfg, today), nil
}

func (s *LedgerService) Settings(ctx context.Context) (core.Settings, error) {
	return s.storage.GetSettings(ctx)
}

func (s *LedgerService) UpdateSettings(ctx context.Context, cfg core.Settings) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	return s.storage.PutSettings(ctx, cfg)
}

func (s *LedgerService) publishSync(ctx context.Context, id string, version int64) {
	if s.amqpClient == nil {
		slog.WarnContext(ctx, "AMQP client not available, skipping sync message")
		return
	}
	if err := s.amqpClient.PublishEntrySync(ctx, id, version); err != nil {
		slog.ErrorContext(ctx, "Failed to publish sync message",
			"id", id, "error", err)
	}
}

// Close closes both storage and AMQP connections.
func (s *LedgerService) Close() error {
	var errs []error

	if s.storage != nil {
		if err := s.storage.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}
	if s.amqpClient != nil {
		if err := s.amqpClient.Close(); err != nil {
			errs = append(errs, fmt.Errorf("amqp: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close ledger service: %v", errs)
	}
	return nil
}
