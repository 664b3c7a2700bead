package engine

import (
	"context"
	"fmt"
	"math"
	"time"

	"ranch-alerting-service/internal/models"
	"ranch-alerting-service/internal/trend"
)

const (
	shortWindowDays = 3
	longWindowDays  = 30

	defaultDropCriticalPct = 30.0
	dropWarningPct         = 15.0
	improvementPct         = 20.0

	weightDeviationPct = 30.0

	defaultMaintenanceCriticalDays = 14
	maintenanceWarningDays         = 7

	matureAgeYears = 2
)

var (
	criticalHealthActions = []string{
		"Contact the veterinarian immediately",
		"Isolate the animal from the herd",
		"Check feed and water intake",
	}
	warningHealthActions = []string{
		"Schedule a veterinary check",
		"Monitor the animal daily",
		"Review the nutrition plan",
	}
	productionDropActions = []string{
		"Review feed quality and quantity",
		"Check for signs of illness or stress",
		"Verify milking routine and equipment",
	}
)

// checkHealth flags animals in the worst health tiers and animals whose
// weight deviates sharply from the breed reference.
func (e *Engine) checkHealth(ranchID string, animals []models.Animal, th models.RanchThresholds) []models.Notification {
	minRisk := th.HealthRiskScore

	var out []models.Notification
	emit := func(a models.Animal, p models.Priority, risk int, title, msg string, actions []string) {
		if minRisk > 0 && risk < minRisk {
			return
		}
		out = append(out, models.Notification{
			Category:  models.CategoryHealth,
			Priority:  p,
			Title:     title,
			Message:   msg,
			RanchID:   ranchID,
			SubjectID: a.ID,
			Health: &models.HealthMetadata{
				AnimalTag:    a.Tag,
				AnimalName:   a.Name,
				HealthStatus: a.HealthStatus,
				RiskScore:    risk,
				Actions:      actions,
			},
		})
	}

	for _, a := range animals {
		switch a.HealthStatus {
		case models.HealthPoor:
			emit(a, models.PriorityCritical, 90,
				fmt.Sprintf("Critical health: %s", a.Tag),
				fmt.Sprintf("Animal %s is in poor health and needs immediate attention.", a.Tag),
				criticalHealthActions)
		case models.HealthFair:
			emit(a, models.PriorityWarning, 60,
				fmt.Sprintf("Health warning: %s", a.Tag),
				fmt.Sprintf("Animal %s is in fair health and should be checked.", a.Tag),
				warningHealthActions)
		}

		if a.Weight > 0 {
			ref := referenceWeightFor(a.Breed, a.Sex)
			deviation := math.Abs(a.Weight-ref) / ref * 100
			if deviation > weightDeviationPct {
				emit(a, models.PriorityWarning, 40,
					fmt.Sprintf("Weight deviation: %s", a.Tag),
					fmt.Sprintf("Animal %s weighs %.0f kg, %.0f%% off the %.0f kg reference for its breed.",
						a.Tag, a.Weight, deviation, ref),
					warningHealthActions)
			}
		}
	}
	return out
}

// checkProduction compares short-window vs long-window averages for every
// female animal and flags drops, improvements and missing records.
func (e *Engine) checkProduction(ctx context.Context, ranchID string, animals []models.Animal, th models.RanchThresholds) []models.Notification {
	criticalDrop := defaultDropCriticalPct
	if th.ProductionDropPct > 0 {
		criticalDrop = th.ProductionDropPct
	}
	now := e.now()

	var out []models.Notification
	for _, a := range animals {
		if a.Sex != "female" {
			continue
		}
		short, err := e.trends.WindowAverage(ctx, a.ID, shortWindowDays)
		if err != nil {
			e.logger.Warnf("Production check skipped for %s: %v", a.Tag, err)
			continue
		}
		long, err := e.trends.WindowAverage(ctx, a.ID, longWindowDays)
		if err != nil {
			e.logger.Warnf("Production check skipped for %s: %v", a.Tag, err)
			continue
		}

		if long == 0 {
			// No history at all: only worth flagging for a mature animal.
			if a.BirthDate == nil || now.Sub(*a.BirthDate) < time.Duration(matureAgeYears)*365*24*time.Hour {
				continue
			}
			out = append(out, models.Notification{
				Category:  models.CategoryProduction,
				Priority:  models.PriorityWarning,
				Title:     fmt.Sprintf("No production records: %s", a.Tag),
				Message:   fmt.Sprintf("Mature animal %s has no milk-production records in the last %d days.", a.Tag, longWindowDays),
				RanchID:   ranchID,
				SubjectID: a.ID,
				Production: &models.ProductionMetadata{
					Actions: []string{"Record milk production", "Confirm the animal is lactating"},
				},
			})
			continue
		}
		if short == 0 {
			continue
		}

		change := trend.ChangePercentage(short, long)
		var (
			priority  models.Priority
			title     string
			daysBelow int
		)
		switch {
		case change < -criticalDrop:
			priority = models.PriorityCritical
			title = fmt.Sprintf("Production drop: %s", a.Tag)
			daysBelow = e.daysBelow(ctx, a.ID, long*0.8)
		case change < -dropWarningPct:
			priority = models.PriorityWarning
			title = fmt.Sprintf("Production decline: %s", a.Tag)
			daysBelow = e.daysBelow(ctx, a.ID, long*0.9)
		case change > improvementPct:
			priority = models.PrioritySuccess
			title = fmt.Sprintf("Production improvement: %s", a.Tag)
		default:
			continue
		}

		n := models.Notification{
			Category:  models.CategoryProduction,
			Priority:  priority,
			Title:     title,
			Message: fmt.Sprintf("Animal %s: %.1f L/day over %d days vs %.1f L/day over %d days (%+.1f%%).",
				a.Tag, short, shortWindowDays, long, longWindowDays, change),
			RanchID:   ranchID,
			SubjectID: a.ID,
			Production: &models.ProductionMetadata{
				CurrentProduction: short,
				AverageProduction: long,
				ChangePercentage:  change,
				DaysBelow:         daysBelow,
			},
		}
		if priority != models.PrioritySuccess {
			n.Production.Actions = productionDropActions
		}
		out = append(out, n)
	}
	return out
}

func (e *Engine) daysBelow(ctx context.Context, animalID string, threshold float64) int {
	now := e.now()
	records, err := e.provider.ListMilkProductions(ctx, animalID, now.AddDate(0, 0, -longWindowDays), now)
	if err != nil {
		e.logger.Warnf("Failed to read records for daysBelow on %s: %v", animalID, err)
		return 0
	}
	return trend.DaysBelow(records, threshold)
}

// checkMaintenance flags equipment past its service schedule.
func (e *Engine) checkMaintenance(ctx context.Context, ranchID string, th models.RanchThresholds) []models.Notification {
	if e.equipment == nil {
		return nil
	}
	items, err := e.equipment.ListEquipment(ctx, ranchID)
	if err != nil {
		e.logger.Warnf("Maintenance check skipped: %v", err)
		return nil
	}
	criticalDays := defaultMaintenanceCriticalDays
	if th.MaintenanceOverdue > 0 {
		criticalDays = th.MaintenanceOverdue
	}
	now := e.now()

	var out []models.Notification
	for _, item := range items {
		if item.FrequencyDays <= 0 || item.LastMaintenance.IsZero() {
			continue
		}
		daysSince := int(now.Sub(item.LastMaintenance).Hours() / 24)
		if daysSince <= item.FrequencyDays {
			continue
		}
		overdueBy := daysSince - item.FrequencyDays

		priority := models.PriorityInfo
		urgency := "low"
		switch {
		case overdueBy > criticalDays:
			priority = models.PriorityCritical
			urgency = "high"
		case overdueBy > maintenanceWarningDays:
			priority = models.PriorityWarning
			urgency = "medium"
		}

		out = append(out, models.Notification{
			Category:  models.CategoryMaintenance,
			Priority:  priority,
			Title:     fmt.Sprintf("Maintenance overdue: %s", item.Type),
			Message: fmt.Sprintf("%s was last serviced %d days ago, %d days past its %d-day schedule.",
				item.Type, daysSince, overdueBy, item.FrequencyDays),
			RanchID:   ranchID,
			SubjectID: item.ID,
			Maintenance: &models.MaintenanceMetadata{
				EquipmentType:   item.Type,
				LastMaintenance: item.LastMaintenance,
				OverdueDays:     overdueBy,
				Urgency:         urgency,
			},
		})
	}
	return out
}

// checkReminders fires exact-date vaccination and deworming reminders on
// birth-day anniversaries. The day-of-month match keeps each reminder firing
// once per matching day instead of over a range.
func (e *Engine) checkReminders(ranchID string, animals []models.Animal) []models.Notification {
	now := e.now()

	var out []models.Notification
	for _, a := range animals {
		if a.BirthDate == nil {
			continue
		}
		birth := *a.BirthDate
		months := (now.Year()-birth.Year())*12 + int(now.Month()) - int(birth.Month())
		if months <= 0 || now.Day() != birth.Day() {
			continue
		}

		switch {
		case months%6 == 0:
			next := now.AddDate(1, 0, 0)
			out = append(out, models.Notification{
				Category:  models.CategoryReminder,
				Priority:  models.PriorityInfo,
				Title:     fmt.Sprintf("Vaccination due: %s", a.Tag),
				Message:   fmt.Sprintf("Animal %s is due for its semiannual vaccination today.", a.Tag),
				RanchID:   ranchID,
				SubjectID: a.ID,
				Reminder: &models.ReminderMetadata{
					Kind:      models.ReminderVaccination,
					DueDate:   now,
					Frequency: "every 6 months",
					NextDue:   &next,
				},
			})
		case months%3 == 0:
			next := now.AddDate(0, 3, 0)
			out = append(out, models.Notification{
				Category:  models.CategoryReminder,
				Priority:  models.PriorityInfo,
				Title:     fmt.Sprintf("Deworming due: %s", a.Tag),
				Message:   fmt.Sprintf("Animal %s is due for its quarterly deworming today.", a.Tag),
				RanchID:   ranchID,
				SubjectID: a.ID,
				Reminder: &models.ReminderMetadata{
					Kind:      models.ReminderDeworming,
					DueDate:   now,
					Frequency: "every 3 months",
					NextDue:   &next,
				},
			})
		}
	}
	return out
}
