// Package snapshot defines the read-only view of domain data the alerting
// core consumes. The engine never mutates this state; strict consistency is
// not required because the next pass corrects any drift.
package snapshot

import (
	"context"
	"time"

	"ranch-alerting-service/internal/models"
)

// Provider exposes the four capabilities the core requires from its host.
type Provider interface {
	ActiveRanchID(ctx context.Context) (string, error)
	ListAnimals(ctx context.Context, ranchID string) ([]models.Animal, error)
	ListMilkProductions(ctx context.Context, animalID string, from, to time.Time) ([]models.MilkProduction, error)
	AverageProduction(ctx context.Context, animalID string, days int) (float64, error)
}

// EquipmentSource supplies the tracked equipment list for the maintenance check.
// Hosts without equipment tracking may omit it.
type EquipmentSource interface {
	ListEquipment(ctx context.Context, ranchID string) ([]models.Equipment, error)
}
