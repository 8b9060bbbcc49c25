package storage

import (
	"context"
	"time"

	"github.com/tb0hdan/shodan-mcp/pkg/models"
)

type Storage interface {
	// Lookup audit operations
	SaveLookup(ctx context.Context, lookup *models.Lookup) error
	GetLookup(ctx context.Context, id uint) (*models.Lookup, error)
	ListLookups(ctx context.Context, filter models.LookupFilter) ([]models.Lookup, int64, error)
	DeleteLookup(ctx context.Context, id uint) error
	DeleteAllLookups(ctx context.Context) error
	PruneLookups(ctx context.Context, olderThan time.Time) (int64, error)

	// Lifecycle
	Close() error
}
