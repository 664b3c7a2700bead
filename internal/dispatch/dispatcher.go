// Package dispatch delivers accepted notifications to the live channels.
// Delivery is settings-aware: the store keeps everything, but quiet hours and
// channel toggles decide what actually goes out.
package dispatch

import (
	"context"
	"time"

	"ranch-alerting-service/internal/logging"
	"ranch-alerting-service/internal/models"
	"ranch-alerting-service/internal/settings"
)

// Dispatcher fans out to the configured channels. Hub, publisher and telegram
// are all optional.
type Dispatcher struct {
	hub      *Hub
	kafka    *Publisher
	telegram *TelegramSender
	settings *settings.Manager
	logger   *logging.Logger
	now      func() time.Time
}

// New builds a Dispatcher; nil channels are skipped.
func New(hub *Hub, kafka *Publisher, telegram *TelegramSender, sm *settings.Manager, logger *logging.Logger) *Dispatcher {
	return &Dispatcher{
		hub:      hub,
		kafka:    kafka,
		telegram: telegram,
		settings: sm,
		logger:   logger,
		now:      time.Now,
	}
}

// SetClock overrides the dispatcher's clock, for tests.
func (d *Dispatcher) SetClock(now func() time.Time) {
	d.now = now
}

// Deliver pushes a batch of accepted notifications out. Quiet hours suppress
// delivery entirely; the notifications stay in the store regardless.
func (d *Dispatcher) Deliver(ctx context.Context, notifications []models.Notification) {
	cfg := d.settings.Get()
	if !cfg.Enabled {
		return
	}
	if cfg.InQuietHours(d.now()) {
		d.logger.Debugf("Quiet hours active, holding %d notifications", len(notifications))
		return
	}

	for _, n := range notifications {
		if d.hub != nil && cfg.PushEnabled {
			d.hub.Broadcast(n)
		}
		if d.kafka != nil {
			if err := d.kafka.Publish(ctx, n); err != nil {
				d.logger.Errorf("Kafka publish failed for %s: %v", n.ID, err)
			}
		}
		if d.telegram != nil && n.Priority == models.PriorityCritical {
			if err := d.telegram.Send(ctx, n); err != nil {
				d.logger.Errorf("Telegram push failed for %s: %v", n.ID, err)
			}
		}
	}
}
