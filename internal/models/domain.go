package models

import "time"

// Animal is the read-only view of a livestock record exposed to the alerting core.
type Animal struct {
	ID           string     `json:"id"`
	RanchID      string     `json:"ranch_id"`
	Tag          string     `json:"tag"`
	Name         string     `json:"name,omitempty"`
	Breed        string     `json:"breed,omitempty"`
	Sex          string     `json:"sex"` // "male" or "female"
	BirthDate    *time.Time `json:"birth_date,omitempty"`
	Weight       float64    `json:"weight,omitempty"` // kg
	HealthStatus string     `json:"health_status"`    // excellent, good, fair, poor
}

// Health status tiers, worst last.
const (
	HealthExcellent = "excellent"
	HealthGood      = "good"
	HealthFair      = "fair"
	HealthPoor      = "poor"
)

// MilkProduction is one recorded milking, liters on a given date.
type MilkProduction struct {
	ID       string    `json:"id"`
	AnimalID string    `json:"animal_id"`
	Date     time.Time `json:"date"`
	Liters   float64   `json:"liters"`
}

// Equipment is a tracked piece of ranch machinery with a service schedule.
type Equipment struct {
	ID              string    `json:"id"`
	RanchID         string    `json:"ranch_id"`
	Type            string    `json:"type"`
	LastMaintenance time.Time `json:"last_maintenance"`
	FrequencyDays   int       `json:"frequency_days"`
	Urgency         string    `json:"urgency,omitempty"`
}
