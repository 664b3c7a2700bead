package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"ranch-alerting-service/internal/models"
)

// ActiveRanchID returns the ranch currently marked active for the account.
func (d *DB) ActiveRanchID(ctx context.Context) (string, error) {
	var id string
	err := d.Pool.QueryRow(ctx,
		`SELECT id FROM ranches WHERE active = true ORDER BY updated_at DESC LIMIT 1`).Scan(&id)
	if err != nil {
		if err == pgx.ErrNoRows {
			return "", fmt.Errorf("no active ranch configured")
		}
		return "", fmt.Errorf("failed to get active ranch: %w", err)
	}
	return id, nil
}

// ListAnimals fetches the animals of a ranch; an empty ranchID returns all.
func (d *DB) ListAnimals(ctx context.Context, ranchID string) ([]models.Animal, error) {
	query := `
        SELECT id, ranch_id, tag, name, breed, sex, birth_date, weight, health_status
        FROM animals`
	args := []interface{}{}
	if ranchID != "" {
		query += ` WHERE ranch_id = $1`
		args = append(args, ranchID)
	}
	query += ` ORDER BY tag`

	rows, err := d.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list animals: %w", err)
	}
	defer rows.Close()

	var animals []models.Animal
	for rows.Next() {
		var a models.Animal
		err := rows.Scan(&a.ID, &a.RanchID, &a.Tag, &a.Name, &a.Breed, &a.Sex,
			&a.BirthDate, &a.Weight, &a.HealthStatus)
		if err != nil {
			return nil, fmt.Errorf("failed to scan animal: %w", err)
		}
		animals = append(animals, a)
	}
	return animals, nil
}

// ListMilkProductions fetches production records for an animal inside a date range.
func (d *DB) ListMilkProductions(ctx context.Context, animalID string, from, to time.Time) ([]models.MilkProduction, error) {
	rows, err := d.Pool.Query(ctx, `
        SELECT id, animal_id, date, liters
        FROM milk_productions
        WHERE animal_id = $1 AND date >= $2 AND date <= $3
        ORDER BY date DESC`, animalID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list milk productions for animal %s: %w", animalID, err)
	}
	defer rows.Close()

	var records []models.MilkProduction
	for rows.Next() {
		var p models.MilkProduction
		if err := rows.Scan(&p.ID, &p.AnimalID, &p.Date, &p.Liters); err != nil {
			return nil, fmt.Errorf("failed to scan milk production: %w", err)
		}
		records = append(records, p)
	}
	return records, nil
}

// AverageProduction computes the mean liters/day over the trailing window.
// Returns 0 when no records exist in the window.
func (d *DB) AverageProduction(ctx context.Context, animalID string, days int) (float64, error) {
	var avg float64
	err := d.Pool.QueryRow(ctx, `
        SELECT COALESCE(AVG(liters), 0)
        FROM milk_productions
        WHERE animal_id = $1 AND date >= NOW() - make_interval(days => $2)`,
		animalID, days).Scan(&avg)
	if err != nil {
		return 0, fmt.Errorf("failed to average production for animal %s: %w", animalID, err)
	}
	return avg, nil
}

// ListEquipment fetches the tracked equipment of a ranch.
func (d *DB) ListEquipment(ctx context.Context, ranchID string) ([]models.Equipment, error) {
	rows, err := d.Pool.Query(ctx, `
        SELECT id, ranch_id, type, last_maintenance, frequency_days, urgency
        FROM equipment
        WHERE ranch_id = $1`, ranchID)
	if err != nil {
		return nil, fmt.Errorf("failed to list equipment: %w", err)
	}
	defer rows.Close()

	var items []models.Equipment
	for rows.Next() {
		var e models.Equipment
		if err := rows.Scan(&e.ID, &e.RanchID, &e.Type, &e.LastMaintenance, &e.FrequencyDays, &e.Urgency); err != nil {
			return nil, fmt.Errorf("failed to scan equipment: %w", err)
		}
		items = append(items, e)
	}
	return items, nil
}
