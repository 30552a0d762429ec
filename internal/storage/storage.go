// Package storage persists position and transaction records. The store only
// ever receives already-computed, human-readable amounts; it has no say in
// any quote math.
package storage

import (
	"context"

	"swapdeck/internal/storage/models"
)

// Storage is the persistence boundary for position history.
type Storage interface {
	SavePosition(ctx context.Context, position *models.Position) error
	ListPositions(ctx context.Context, owner string, limit, offset int) ([]*models.Position, error)

	SaveTransaction(ctx context.Context, record *models.TransactionRecord) error
	UpdateTransactionStatus(ctx context.Context, txID, status, detail string) error
	ListTransactions(ctx context.Context, owner string, limit, offset int) ([]*models.TransactionRecord, error)

	RunMigrations() error
	Close() error
}
