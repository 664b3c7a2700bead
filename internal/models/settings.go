package models

import (
	"fmt"
	"time"
)

// RanchThresholds overrides the engine's default heuristics for one ranch.
// Zero values mean "use the default".
type RanchThresholds struct {
	HealthRiskScore    int     `json:"health_risk_score,omitempty"`
	ProductionDropPct  float64 `json:"production_drop_pct,omitempty"`
	MaintenanceOverdue int     `json:"maintenance_overdue_days,omitempty"`
}

// NotificationSettings controls which notifications are created and which are
// delivered. The store itself is settings-agnostic: the engine skips creating
// globally disabled categories/priorities, while quiet hours suppress delivery
// only, never creation.
type NotificationSettings struct {
	Enabled bool `json:"enabled"`

	// Channel toggles. Channels themselves live in the dispatch layer.
	PushEnabled  bool `json:"push_enabled"`
	PanelEnabled bool `json:"panel_enabled"`
	BadgeEnabled bool `json:"badge_enabled"`

	Priorities map[Priority]bool `json:"priorities"`
	Categories map[Category]bool `json:"categories"`

	QuietHoursEnabled bool   `json:"quiet_hours_enabled"`
	QuietHoursStart   string `json:"quiet_hours_start,omitempty"` // "HH:MM"
	QuietHoursEnd     string `json:"quiet_hours_end,omitempty"`   // "HH:MM"

	Thresholds map[string]RanchThresholds `json:"thresholds,omitempty"` // keyed by ranch id
}

// DefaultSettings returns settings with everything enabled and no quiet hours.
func DefaultSettings() NotificationSettings {
	return NotificationSettings{
		Enabled:      true,
		PushEnabled:  true,
		PanelEnabled: true,
		BadgeEnabled: true,
		Priorities: map[Priority]bool{
			PriorityCritical: true,
			PriorityWarning:  true,
			PriorityInfo:     true,
			PrioritySuccess:  true,
		},
		Categories: map[Category]bool{
			CategoryHealth:      true,
			CategoryProduction:  true,
			CategoryMaintenance: true,
			CategoryReminder:    true,
			CategorySystem:      true,
		},
	}
}

// CategoryEnabled reports whether notifications of the category should be created.
// A category absent from the map counts as enabled.
func (s NotificationSettings) CategoryEnabled(c Category) bool {
	if s.Categories == nil {
		return true
	}
	enabled, ok := s.Categories[c]
	return !ok || enabled
}

// PriorityEnabled reports whether notifications of the priority should be created.
func (s NotificationSettings) PriorityEnabled(p Priority) bool {
	if s.Priorities == nil {
		return true
	}
	enabled, ok := s.Priorities[p]
	return !ok || enabled
}

// Validate rejects malformed quiet-hours windows at the update boundary rather
// than letting a silently-wrong window suppress the wrong deliveries.
func (s NotificationSettings) Validate() error {
	if !s.QuietHoursEnabled {
		return nil
	}
	start, err := parseClock(s.QuietHoursStart)
	if err != nil {
		return fmt.Errorf("quiet hours start: %w", err)
	}
	end, err := parseClock(s.QuietHoursEnd)
	if err != nil {
		return fmt.Errorf("quiet hours end: %w", err)
	}
	if !end.After(start) {
		return fmt.Errorf("quiet hours end %q must be after start %q", s.QuietHoursEnd, s.QuietHoursStart)
	}
	return nil
}

// InQuietHours reports whether the given instant falls inside the quiet-hours window.
func (s NotificationSettings) InQuietHours(at time.Time) bool {
	if !s.QuietHoursEnabled {
		return false
	}
	start, err := parseClock(s.QuietHoursStart)
	if err != nil {
		return false
	}
	end, err := parseClock(s.QuietHoursEnd)
	if err != nil {
		return false
	}
	clock := time.Date(0, 1, 1, at.Hour(), at.Minute(), 0, 0, time.UTC)
	return !clock.Before(start) && clock.Before(end)
}

// ThresholdsFor returns the per-ranch overrides, or the zero value when none are set.
func (s NotificationSettings) ThresholdsFor(ranchID string) RanchThresholds {
	if s.Thresholds == nil {
		return RanchThresholds{}
	}
	return s.Thresholds[ranchID]
}

func parseClock(v string) (time.Time, error) {
	t, err := time.Parse("15:04", v)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid time of day %q, want HH:MM", v)
	}
	return t, nil
}
