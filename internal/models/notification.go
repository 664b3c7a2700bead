package models

import (
	"fmt"
	"time"
)

// Category classifies what a notification is about.
type Category string

const (
	CategoryHealth      Category = "health"
	CategoryProduction  Category = "production"
	CategoryMaintenance Category = "maintenance"
	CategoryReminder    Category = "reminder"
	CategorySystem      Category = "system"
)

// Priority is assigned once at creation from the triggering condition's severity.
type Priority string

const (
	PriorityCritical Priority = "critical"
	PriorityWarning  Priority = "warning"
	PriorityInfo     Priority = "info"
	PrioritySuccess  Priority = "success"
)

// Status is the lifecycle state of a notification. Resolved is terminal;
// a Snoozed notification whose expiry passes is removed on cleanup, never reopened.
type Status string

const (
	StatusUnread   Status = "unread"
	StatusRead     Status = "read"
	StatusResolved Status = "resolved"
	StatusSnoozed  Status = "snoozed"
)

// HealthMetadata carries the health-check context for a health notification.
type HealthMetadata struct {
	AnimalTag      string   `json:"animal_tag"`
	AnimalName     string   `json:"animal_name,omitempty"`
	HealthStatus   string   `json:"health_status"`
	PreviousStatus string   `json:"previous_status,omitempty"`
	RiskScore      int      `json:"risk_score"`
	Actions        []string `json:"actions,omitempty"`
}

// ProductionMetadata carries the trend context for a production notification.
type ProductionMetadata struct {
	CurrentProduction float64  `json:"current_production"`
	AverageProduction float64  `json:"average_production"`
	ChangePercentage  float64  `json:"change_percentage"`
	DaysBelow         int      `json:"days_below"`
	Actions           []string `json:"actions,omitempty"`
}

// MaintenanceMetadata carries the overdue context for a maintenance notification.
type MaintenanceMetadata struct {
	EquipmentType   string    `json:"equipment_type"`
	LastMaintenance time.Time `json:"last_maintenance"`
	OverdueDays     int       `json:"overdue_days"`
	Urgency         string    `json:"urgency"`
}

// ReminderKind enumerates the periodic reminder types.
type ReminderKind string

const (
	ReminderVaccination ReminderKind = "vaccination"
	ReminderDeworming   ReminderKind = "deworming"
	ReminderWeighing    ReminderKind = "weighing"
	ReminderBreeding    ReminderKind = "breeding"
	ReminderCustom      ReminderKind = "custom"
)

// ReminderMetadata carries the schedule context for a reminder notification.
type ReminderMetadata struct {
	Kind      ReminderKind `json:"kind"`
	DueDate   time.Time    `json:"due_date"`
	Frequency string       `json:"frequency,omitempty"`
	NextDue   *time.Time   `json:"next_due,omitempty"`
}

// SystemMetadata carries the context for a system event notification.
type SystemMetadata struct {
	EventKind      string   `json:"event_kind"`
	Features       []string `json:"features,omitempty"`
	ActionRequired bool     `json:"action_required"`
}

// Notification is a tagged union over a shared base: exactly one metadata
// variant is set, matching Category.
type Notification struct {
	ID        string     `json:"id"`
	Category  Category   `json:"category"`
	Priority  Priority   `json:"priority"`
	Status    Status     `json:"status"`
	Title     string     `json:"title"`
	Message   string     `json:"message"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
	RanchID   string     `json:"ranch_id,omitempty"`
	SubjectID string     `json:"subject_id,omitempty"`

	Health      *HealthMetadata      `json:"health,omitempty"`
	Production  *ProductionMetadata  `json:"production,omitempty"`
	Maintenance *MaintenanceMetadata `json:"maintenance,omitempty"`
	Reminder    *ReminderMetadata    `json:"reminder,omitempty"`
	System      *SystemMetadata      `json:"system,omitempty"`
}

// Validate checks that exactly one metadata variant is present and that it
// matches the declared category. System notifications may omit metadata.
func (n Notification) Validate() error {
	set := 0
	var match bool
	if n.Health != nil {
		set++
		match = n.Category == CategoryHealth
	}
	if n.Production != nil {
		set++
		match = n.Category == CategoryProduction
	}
	if n.Maintenance != nil {
		set++
		match = n.Category == CategoryMaintenance
	}
	if n.Reminder != nil {
		set++
		match = n.Category == CategoryReminder
	}
	if n.System != nil {
		set++
		match = n.Category == CategorySystem
	}
	if set == 0 {
		if n.Category == CategorySystem {
			return nil
		}
		return fmt.Errorf("notification %s: missing %s metadata", n.ID, n.Category)
	}
	if set > 1 {
		return fmt.Errorf("notification %s: %d metadata variants set, want 1", n.ID, set)
	}
	if !match {
		return fmt.Errorf("notification %s: metadata does not match category %s", n.ID, n.Category)
	}
	return nil
}

// Expired reports whether the notification's TTL has passed at the given time.
func (n Notification) Expired(at time.Time) bool {
	return n.ExpiresAt != nil && !n.ExpiresAt.After(at)
}
