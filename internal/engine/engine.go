// Package engine runs the heuristic checks over the domain snapshot and turns
// their findings into notifications, filtered through the dedup guard and the
// global settings gate.
package engine

import (
	"context"
	"fmt"
	"time"

	"ranch-alerting-service/internal/logging"
	"ranch-alerting-service/internal/models"
	"ranch-alerting-service/internal/settings"
	"ranch-alerting-service/internal/snapshot"
	"ranch-alerting-service/internal/store"
	"ranch-alerting-service/internal/trend"
)

// Engine evaluates the current snapshot on demand. It keeps no state between
// passes: given the same inputs and the same clock it produces the same
// candidates.
type Engine struct {
	provider  snapshot.Provider
	equipment snapshot.EquipmentSource // optional
	trends    *trend.Calculator
	store     *store.Store
	rules     *Registry
	guard     *Guard
	settings  *settings.Manager
	logger    *logging.Logger
	now       func() time.Time
}

// New constructs an Engine. equipment may be nil when the host does not track machinery.
func New(provider snapshot.Provider, equipment snapshot.EquipmentSource, trends *trend.Calculator,
	st *store.Store, rules *Registry, sm *settings.Manager, logger *logging.Logger) *Engine {
	return &Engine{
		provider:  provider,
		equipment: equipment,
		trends:    trends,
		store:     st,
		rules:     rules,
		guard:     NewGuard(st, rules),
		settings:  sm,
		logger:    logger,
		now:       time.Now,
	}
}

// SetClock overrides the engine's clock, for tests.
func (e *Engine) SetClock(now func() time.Time) {
	e.now = now
}

// RunPass evaluates every enabled check against the current snapshot and
// returns the notifications that were accepted into the store. A snapshot
// failure aborts the whole pass without touching stored notifications.
func (e *Engine) RunPass(ctx context.Context) ([]models.Notification, error) {
	if removed := e.store.CleanupExpired(); removed > 0 {
		e.logger.Infof("Removed %d expired notifications", removed)
	}

	ranchID, err := e.provider.ActiveRanchID(ctx)
	if err != nil {
		return nil, fmt.Errorf("evaluation pass failed: %w", err)
	}
	animals, err := e.provider.ListAnimals(ctx, ranchID)
	if err != nil {
		return nil, fmt.Errorf("evaluation pass failed: %w", err)
	}

	thresholds := e.settings.Get().ThresholdsFor(ranchID)

	var candidates []models.Notification
	if e.rules.CategoryEnabled(models.CategoryHealth) {
		candidates = append(candidates, e.checkHealth(ranchID, animals, thresholds)...)
	}
	if e.rules.CategoryEnabled(models.CategoryProduction) {
		candidates = append(candidates, e.checkProduction(ctx, ranchID, animals, thresholds)...)
	}
	if e.rules.CategoryEnabled(models.CategoryMaintenance) {
		candidates = append(candidates, e.checkMaintenance(ctx, ranchID, thresholds)...)
	}
	if e.rules.CategoryEnabled(models.CategoryReminder) {
		candidates = append(candidates, e.checkReminders(ranchID, animals)...)
	}

	var accepted []models.Notification
	for _, c := range candidates {
		if n, ok := e.accept(c); ok {
			accepted = append(accepted, n)
		}
	}
	e.logger.Infof("Evaluation pass for ranch %s: %d candidates, %d accepted",
		ranchID, len(candidates), len(accepted))
	return accepted, nil
}

// ReportSystemEvent lets collaborating code record a one-off system
// notification outside a pass.
func (e *Engine) ReportSystemEvent(kind, title, message string, p models.Priority,
	features []string, actionRequired bool) (models.Notification, bool) {
	n := models.Notification{
		Category: models.CategorySystem,
		Priority: p,
		Title:    title,
		Message:  message,
		System: &models.SystemMetadata{
			EventKind:      kind,
			Features:       features,
			ActionRequired: actionRequired,
		},
	}
	return e.accept(n)
}

// accept runs a candidate through the settings gate and the dedup guard, then
// inserts it. Quiet hours are deliberately not checked here: they suppress
// delivery, never creation.
func (e *Engine) accept(c models.Notification) (models.Notification, bool) {
	cfg := e.settings.Get()
	if !cfg.Enabled || !cfg.CategoryEnabled(c.Category) || !cfg.PriorityEnabled(c.Priority) {
		e.logger.Debugf("Candidate %s/%s suppressed by settings", c.Category, c.SubjectID)
		return models.Notification{}, false
	}
	if !e.guard.Allow(c) {
		e.logger.Debugf("Candidate %s/%s suppressed by cooldown", c.Category, c.SubjectID)
		return models.Notification{}, false
	}
	n, err := e.store.Add(c)
	if err != nil {
		e.logger.Errorf("Failed to store notification for subject %s: %v", c.SubjectID, err)
		return models.Notification{}, false
	}
	return n, true
}
