package engine

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"ranch-alerting-service/internal/models"
)

// defaultCooldown applies when a category has no enabled rule with its own cooldown.
const defaultCooldown = 24 * time.Hour

// Registry holds the named alert-rule descriptors. Rules decide whether a
// category of check runs and at what cooldown; the condition logic itself is
// hard-coded per check.
type Registry struct {
	mu    sync.RWMutex
	rules []models.AlertRule
}

// NewRegistry seeds the default rule set, one enabled rule per check category.
func NewRegistry() *Registry {
	now := time.Now()
	mk := func(name, desc string, c models.Category, p models.Priority, cd time.Duration) models.AlertRule {
		return models.AlertRule{
			ID:          uuid.New().String(),
			Name:        name,
			Description: desc,
			Enabled:     true,
			Category:    c,
			Priority:    p,
			Cooldown:    cd,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
	}
	return &Registry{rules: []models.AlertRule{
		mk("animal-health", "Health status tiers and weight deviation per animal",
			models.CategoryHealth, models.PriorityCritical, 24*time.Hour),
		mk("production-trend", "Short vs long window production drift per lactating animal",
			models.CategoryProduction, models.PriorityWarning, 24*time.Hour),
		mk("equipment-maintenance", "Service schedule overdue per tracked equipment",
			models.CategoryMaintenance, models.PriorityWarning, 24*time.Hour),
		mk("periodic-reminders", "Vaccination and deworming anniversaries per animal",
			models.CategoryReminder, models.PriorityInfo, 20*time.Hour),
	}}
}

// List returns a copy of all rule descriptors.
func (r *Registry) List() []models.AlertRule {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]models.AlertRule, len(r.rules))
	copy(out, r.rules)
	return out
}

// SetEnabled flips a rule by id and reports whether the id was known.
func (r *Registry) SetEnabled(id string, enabled bool) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.rules {
		if r.rules[i].ID == id {
			r.rules[i].Enabled = enabled
			r.rules[i].UpdatedAt = time.Now()
			return true
		}
	}
	return false
}

// CategoryEnabled reports whether any enabled rule covers the category.
// A category with no rule at all runs by default.
func (r *Registry) CategoryEnabled(c models.Category) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	found := false
	for _, rule := range r.rules {
		if rule.Category != c {
			continue
		}
		found = true
		if rule.Enabled {
			return true
		}
	}
	return !found
}

// CooldownFor returns the enabled rule's cooldown for a category, falling
// back to 24h when no enabled rule carries one.
func (r *Registry) CooldownFor(c models.Category) time.Duration {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, rule := range r.rules {
		if rule.Category == c && rule.Enabled && rule.Cooldown > 0 {
			return rule.Cooldown
		}
	}
	return defaultCooldown
}
