package sheets

import (
	"context"

	"giro/internal/core"
)

// Ports for outbound backup adapters.
type (
	// EntryWriter mirrors a ledger entry to the backup sheet, replacing
	// any earlier row with the same ID.
	EntryWriter interface {
		Upsert(ctx context.Context, e core.Entry) error
	}

	// EntryDeleter removes an entry's row from the backup sheet. Deleting
	// an ID that was never mirrored is not an error.
	EntryDeleter interface {
		Delete(ctx context.Context, id string) error
	}
)
