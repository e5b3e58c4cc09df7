package eventpublisher

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/fintrack/internal/domain"
	"github.com/iho/fintrack/internal/usecase"
)

const (
	defaultBatchSize = 100
	defaultInterval  = 5 * time.Second
)

// Publisher delivers one event to an external system.
type Publisher interface {
	Publish(ctx context.Context, event *domain.OutboxEvent) error
}

// Observer is notified of delivery outcomes.
type Observer interface {
	EventPublished()
	EventPublishFailed()
}

type nopObserver struct{}

func (nopObserver) EventPublished() {}
func (nopObserver) EventPublishFailed() {}

type Config struct {
	OutboxRepo usecase.OutboxRepository
	Publisher  Publisher
	Observer   Observer
	Logger     zerolog.Logger
	// BatchSize is the number of events read per poll; zero means 100.
	BatchSize int
	// Interval between polls while the outbox is empty; zero means 5s.
	Interval time.Duration
}

// EventPublisher relays transaction.committed events from the outbox in
// commit order, at least once. Events are notifications only; no ledger state
// is derived from them.
type EventPublisher struct {
	outbox    usecase.OutboxRepository
	publisher Publisher
	observer  Observer
	logger    zerolog.Logger
	batchSize int
	interval  time.Duration
	now       func() time.Time
}

func NewEventPublisher(cfg Config) *EventPublisher {
	ep := &EventPublisher{
		outbox:    cfg.OutboxRepo,
		publisher: cfg.Publisher,
		observer:  cfg.Observer,
		logger:    cfg.Logger.With().Str("component", "outbox").Logger(),
		batchSize: cfg.BatchSize,
		interval:  cfg.Interval,
		now:       func() time.Time { return time.Now().UTC() },
	}

	if ep.batchSize <= 0 {
		ep.batchSize = defaultBatchSize
	}
	if ep.interval <= 0 {
		ep.interval = defaultInterval
	}
	if ep.observer == nil {
		ep.observer = nopObserver{}
	}

	return ep
}

// Start polls the outbox until ctx is cancelled and returns ctx.Err().
func (ep *EventPublisher) Start(ctx context.Context) error {
	ep.logger.Info().
		Int("batch_size", ep.batchSize).
		Dur("interval", ep.interval).
		Msg("event publisher started")

	ticker := time.NewTicker(ep.interval)
	defer ticker.Stop()

	for {
		ep.drain(ctx)

		select {
		case <-ctx.Done():
			ep.logger.Info().Msg("event publisher stopped")
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// drain publishes batches back to back while they come back full.
func (ep *EventPublisher) drain(ctx context.Context) {
	for ctx.Err() == nil {
		sent, complete, err := ep.publishBatch(ctx)
		if err != nil {
			ep.logger.Error().Err(err).Msg("read outbox")
			return
		}

		if !complete || sent < ep.batchSize {
			return
		}
	}
}

// publishBatch sends one batch in order. It stops at the first event that
// could not be delivered or marked, so a later event never overtakes an
// earlier one. complete reports whether the whole batch went through.
func (ep *EventPublisher) publishBatch(ctx context.Context) (sent int, complete bool, err error) {
	events, err := ep.outbox.GetUnpublished(ctx, ep.batchSize)
	if err != nil {
		return 0, false, err
	}

	for _, event := range events {
		log := ep.logger.With().
			Str("event_id", event.ID).
			Str("event_type", event.EventType).
			Logger()

		if err := ep.publisher.Publish(ctx, event); err != nil {
			ep.observer.EventPublishFailed()
			log.Warn().Err(err).Int("pending", len(events)-sent).Msg("publish failed, retrying next poll")
			return sent, false, nil
		}

		ep.observer.EventPublished()
		sent++

		if err := ep.outbox.MarkPublished(ctx, event.ID, ep.now()); err != nil {
			// Delivered but still pending, so the next poll sends it again.
			log.Error().Err(err).Msg("mark event published")
			return sent, false, nil
		}
	}

	if len(events) > 0 {
		ep.logger.Debug().Int("count", sent).Msg("outbox batch published")
	}

	return sent, true, nil
}

// LogPublisher writes events to the log. It stands in for a broker when none
// is configured.
type LogPublisher struct {
	logger zerolog.Logger
}

func NewLogPublisher(logger zerolog.Logger) *LogPublisher {
	return &LogPublisher{logger: logger}
}

func (p *LogPublisher) Publish(_ context.Context, event *domain.OutboxEvent) error {
	payload, err := json.Marshal(event.Payload)
	if err != nil {
		return err
	}

	p.logger.Info().
		Str("event_id", event.ID).
		Str("event_type", event.EventType).
		Str("aggregate_type", event.AggregateType).
		Str("aggregate_id", event.AggregateID).
		RawJSON("payload", payload).
		Msg("event published")

	return nil
}
