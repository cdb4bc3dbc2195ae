package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/segmentio/kafka-go"

	"feedsync/internal/config"
	"feedsync/internal/database"
	"feedsync/internal/events"
	"feedsync/internal/logger"
	"feedsync/internal/worker/processors"
)

type Worker struct {
	config    *config.Config
	logger    *logger.Logger
	reader    *kafka.Reader
	processor *processors.EventProcessor
	cron      *cron.Cron
}

func New(cfg *config.Config, logger *logger.Logger, db *database.Database) *Worker {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        []string{cfg.KafkaBrokers},
		GroupID:        "feedsync-worker",
		Topic:          cfg.KafkaTopic,
		MinBytes:       10e3, // 10KB
		MaxBytes:       10e6, // 10MB
		CommitInterval: time.Second,
	})

	processor := processors.NewEventProcessor(db.DB, logger, cfg.SyncPageSize)

	w := &Worker{
		config:    cfg,
		logger:    logger,
		reader:    reader,
		processor: processor,
		cron:      cron.New(),
	}

	if _, err := w.cron.AddFunc(cfg.SettingsRefreshSchedule, processor.RefreshSettings); err != nil {
		logger.Error("invalid settings refresh schedule %q: %v", cfg.SettingsRefreshSchedule, err)
	}

	return w
}

func (w *Worker) Start() {
	w.logger.Info("Worker started, listening for events...")
	w.cron.Start()

	for {
		message, err := w.reader.ReadMessage(context.Background())
		if err != nil {
			w.logger.Error("Failed to read message: %v", err)
			return
		}

		w.logger.Debug("Received message: %s", string(message.Value))

		var event events.Event
		if err := json.Unmarshal(message.Value, &event); err != nil {
			w.logger.Error("Failed to parse event: %v", err)
			continue
		}

		if err := w.processor.Process(event); err != nil {
			w.logger.Error("Failed to process event %s for shop %s: %v", event.Type, event.ShopID, err)
			continue
		}

		w.logger.Debug("Event processed successfully")
	}
}

func (w *Worker) Stop() {
	w.logger.Info("Stopping worker...")
	w.cron.Stop()
	w.reader.Close()
}
