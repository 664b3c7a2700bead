package models

import "time"

// AlertRule is a descriptive registry entry: it documents a check, whether it
// is enabled, its priority and its cooldown. The condition logic itself lives
// in the engine, not in rule data.
type AlertRule struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	Description string        `json:"description,omitempty"`
	Enabled     bool          `json:"enabled"`
	Category    Category      `json:"category"`
	Priority    Priority      `json:"priority"`
	Cooldown    time.Duration `json:"cooldown"`
	RanchID     string        `json:"ranch_id,omitempty"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}
