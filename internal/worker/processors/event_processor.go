package processors

import (
	"fmt"

	"gorm.io/gorm"

	"feedsync/internal/events"
	"feedsync/internal/logger"
	"feedsync/internal/worker/processors/reprocess"
	"feedsync/internal/worker/processors/settings"
	"feedsync/internal/worker/processors/sync"
)

// EventProcessor dispatches catalog events to the right pipeline.
type EventProcessor struct {
	logger      *logger.Logger
	syncer      *sync.Processor
	reprocessor *reprocess.Processor
	refresher   *settings.Refresher
}

func NewEventProcessor(db *gorm.DB, logger *logger.Logger, pageSize int) *EventProcessor {
	syncer := sync.New(db, logger, pageSize)
	return &EventProcessor{
		logger:      logger,
		syncer:      syncer,
		reprocessor: reprocess.New(db, logger, syncer),
		refresher:   settings.New(db, logger),
	}
}

func (ep *EventProcessor) Process(event events.Event) error {
	ep.logger.Debug("processing %s for shop %s", event.Type, event.ShopID)

	switch event.Type {
	case events.TypeSyncRequested:
		return ep.syncer.SyncShop(event.ShopID)
	case events.TypeProductUpdated:
		if event.ProductID != "" {
			return ep.syncer.RecomputeProduct(event.ProductID)
		}
		return ep.syncer.SyncShop(event.ShopID)
	case events.TypeMappingsChanged:
		return ep.reprocessor.OnMappingsChanged(event.ShopID)
	case events.TypeSettingsChanged:
		return ep.reprocessor.OnSettingsChanged(event.ShopID)
	default:
		return fmt.Errorf("unknown event type %q", event.Type)
	}
}

// RefreshSettings runs the periodic settings pull and reprocesses any shop
// whose settings moved.
func (ep *EventProcessor) RefreshSettings() {
	changed, err := ep.refresher.RefreshAll()
	if err != nil {
		ep.logger.Error("settings refresh failed: %v", err)
		return
	}
	for _, shopID := range changed {
		if err := ep.reprocessor.OnSettingsChanged(shopID); err != nil {
			ep.logger.Error("reprocess after settings change failed for shop %s: %v", shopID, err)
		}
	}
}
