package catalog

import (
	"context"
	"time"

	"proforma/internal/config"
	"proforma/internal/storage"
)

const lastSyncKey = "catalog.last_sync"

// SyncService mirrors the remote SKU guide into the local store so invoices
// can be built offline from the "db:" guide source.
type SyncService struct {
	db     *storage.DB
	client *Client
}

func NewSyncService(db *storage.DB, cfg config.Config) *SyncService {
	return &SyncService{db: db, client: NewClient(cfg)}
}

func (s *SyncService) Sync(ctx context.Context) (int, error) {
	products, err := s.client.FetchGuide(ctx)
	if err != nil {
		return 0, err
	}
	if err := s.db.UpsertCatalogProducts(products); err != nil {
		return 0, err
	}
	if err := s.db.SetMetadata(lastSyncKey, time.Now().UTC().Format(time.RFC3339)); err != nil {
		return 0, err
	}
	return len(products), nil
}

// LastSync reports when the local copy was refreshed, nil if never.
func (s *SyncService) LastSync() (*time.Time, error) {
	v, err := s.db.GetMetadata(lastSyncKey)
	if err != nil || v == nil {
		return nil, err
	}
	t, err := time.Parse(time.RFC3339, *v)
	if err != nil {
		return nil, nil
	}
	return &t, nil
}
