// Package trend computes trailing-window production aggregates from the
// domain snapshot. Purely a read; no side effects.
package trend

import (
	"context"
	"fmt"
	"time"

	"ranch-alerting-service/internal/models"
	"ranch-alerting-service/internal/snapshot"
)

// Calculator derives window averages from milk-production records.
type Calculator struct {
	provider snapshot.Provider
	now      func() time.Time
}

// NewCalculator builds a Calculator over the given snapshot provider.
func NewCalculator(provider snapshot.Provider) *Calculator {
	return &Calculator{provider: provider, now: time.Now}
}

// SetClock overrides the calculator's clock, for tests.
func (c *Calculator) SetClock(now func() time.Time) {
	c.now = now
}

// WindowAverage returns the mean liters/day over [now-days, now].
// Returns 0 when no records fall inside the window; callers must treat 0 as
// "no data" and never divide by it unchecked.
func (c *Calculator) WindowAverage(ctx context.Context, animalID string, days int) (float64, error) {
	to := c.now()
	from := to.AddDate(0, 0, -days)
	records, err := c.provider.ListMilkProductions(ctx, animalID, from, to)
	if err != nil {
		return 0, fmt.Errorf("failed to read production window for animal %s: %w", animalID, err)
	}
	if len(records) == 0 {
		return 0, nil
	}
	var sum float64
	for _, r := range records {
		sum += r.Liters
	}
	return sum / float64(len(records)), nil
}

// ChangePercentage returns (short-long)/long*100. The caller guarantees long != 0.
func ChangePercentage(short, long float64) float64 {
	return (short - long) / long * 100
}

// DaysBelow counts consecutive most-recent records below the threshold,
// scanning newest to oldest and capped at the last 30 records.
func DaysBelow(records []models.MilkProduction, threshold float64) int {
	sorted := make([]models.MilkProduction, len(records))
	copy(sorted, records)
	for i := 1; i < len(sorted); i++ {
		for j := i; j > 0 && sorted[j].Date.After(sorted[j-1].Date); j-- {
			sorted[j], sorted[j-1] = sorted[j-1], sorted[j]
		}
	}
	if len(sorted) > 30 {
		sorted = sorted[:30]
	}
	count := 0
	for _, r := range sorted {
		if r.Liters >= threshold {
			break
		}
		count++
	}
	return count
}
