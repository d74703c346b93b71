// workers/catalog_sync_worker.go
package workers

import (
	"context"
	"log"
	"time"

	"github.com/SkyeLoft/HTMLBattlepass/services"
)

// CatalogSyncWorker keeps the catalog consistent with the image store by
// running the sweep on an interval. Selection never waits on it: the
// eligibility resolver only ever sees committed catalog rows, so a sweep
// racing a draw is harmless.
type CatalogSyncWorker struct {
	catalog  *services.CatalogService
	interval time.Duration
}

func NewCatalogSyncWorker(catalog *services.CatalogService, interval time.Duration) *CatalogSyncWorker {
	if interval <= 0 {
		interval = 1 * time.Minute
	}
	return &CatalogSyncWorker{catalog: catalog, interval: interval}
}

func (w *CatalogSyncWorker) Start(ctx context.Context) {
	log.Println("🔁 Starting Catalog Sync Worker (R2 listing → content_items)…")
	go w.run(ctx)
}

func (w *CatalogSyncWorker) run(ctx context.Context) {
	// Initial sweep so the feed has a catalog right after boot.
	if err := w.catalog.Sync(ctx); err != nil {
		log.Printf("⚠️ Initial catalog sync failed: %v", err)
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := w.catalog.Sync(ctx); err != nil {
				log.Printf("❌ Catalog sync failed: %v", err)
			}
		case <-ctx.Done():
			log.Println("⏹️ Catalog Sync Worker stopped")
			return
		}
	}
}
