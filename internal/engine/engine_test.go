package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ranch-alerting-service/internal/logging"
	"ranch-alerting-service/internal/models"
	"ranch-alerting-service/internal/settings"
	"ranch-alerting-service/internal/snapshot"
	"ranch-alerting-service/internal/store"
	"ranch-alerting-service/internal/trend"
)

var base = time.Date(2026, 8, 15, 12, 0, 0, 0, time.UTC)

type fixture struct {
	mem      *snapshot.Memory
	store    *store.Store
	rules    *Registry
	settings *settings.Manager
	engine   *Engine
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	mem := snapshot.NewMemory("r1")
	mem.SetClock(func() time.Time { return base })

	calc := trend.NewCalculator(mem)
	calc.SetClock(func() time.Time { return base })

	st := store.New()
	st.SetClock(func() time.Time { return base })

	rules := NewRegistry()
	sm := settings.NewManager()

	eng := New(mem, mem, calc, st, rules, sm, logging.Discard())
	eng.SetClock(func() time.Time { return base })

	return &fixture{mem: mem, store: st, rules: rules, settings: sm, engine: eng}
}

func birthday(yearsOld int, month time.Month, day int) *time.Time {
	t := time.Date(base.Year()-yearsOld, month, day, 0, 0, 0, 0, time.UTC)
	return &t
}

func femaleAnimal(id, health string) models.Animal {
	return models.Animal{
		ID:           id,
		RanchID:      "r1",
		Tag:          id,
		Sex:          "female",
		BirthDate:    birthday(3, time.March, 10), // mature, no reminder on the 15th
		HealthStatus: health,
	}
}

func (f *fixture) addProduction(animalID string, daysAgo int, liters float64) {
	f.mem.AddProduction(models.MilkProduction{
		AnimalID: animalID,
		Date:     base.AddDate(0, 0, -daysAgo),
		Liters:   liters,
	})
}

// seedSteadyProduction keeps the trend flat so the production check stays quiet.
func (f *fixture) seedSteadyProduction(animalID string) {
	for _, daysAgo := range []int{1, 2, 10, 20} {
		f.addProduction(animalID, daysAgo, 20)
	}
}

func TestHealthCheck(t *testing.T) {
	t.Run("poor health yields exactly one critical notification", func(t *testing.T) {
		f := newFixture(t)
		f.mem.AddAnimal(femaleAnimal("A1", models.HealthPoor))
		f.seedSteadyProduction("A1")

		accepted, err := f.engine.RunPass(context.Background())
		require.NoError(t, err)
		require.Len(t, accepted, 1)
		n := accepted[0]
		assert.Equal(t, models.CategoryHealth, n.Category)
		assert.Equal(t, models.PriorityCritical, n.Priority)
		assert.Equal(t, "A1", n.SubjectID)
		require.NotNil(t, n.Health)
		assert.Equal(t, 90, n.Health.RiskScore)
		assert.NotEmpty(t, n.Health.Actions)
	})

	t.Run("fair health yields a warning with risk 60", func(t *testing.T) {
		f := newFixture(t)
		f.mem.AddAnimal(femaleAnimal("A1", models.HealthFair))
		f.seedSteadyProduction("A1")

		accepted, err := f.engine.RunPass(context.Background())
		require.NoError(t, err)
		require.Len(t, accepted, 1)
		assert.Equal(t, models.PriorityWarning, accepted[0].Priority)
		assert.Equal(t, 60, accepted[0].Health.RiskScore)
	})

	t.Run("excellent and good yield nothing", func(t *testing.T) {
		f := newFixture(t)
		f.mem.AddAnimal(femaleAnimal("A1", models.HealthExcellent))
		f.mem.AddAnimal(femaleAnimal("A2", models.HealthGood))
		f.seedSteadyProduction("A1")
		f.seedSteadyProduction("A2")

		accepted, err := f.engine.RunPass(context.Background())
		require.NoError(t, err)
		assert.Empty(t, accepted)
	})

	t.Run("weight deviation beyond 30 percent warns with risk 40", func(t *testing.T) {
		f := newFixture(t)
		a := femaleAnimal("A1", models.HealthGood)
		a.Breed = "holstein"
		a.Weight = 400 // reference 680 kg, ~41% off
		f.mem.AddAnimal(a)
		f.seedSteadyProduction("A1")

		accepted, err := f.engine.RunPass(context.Background())
		require.NoError(t, err)
		require.Len(t, accepted, 1)
		assert.Equal(t, models.PriorityWarning, accepted[0].Priority)
		assert.Equal(t, 40, accepted[0].Health.RiskScore)
	})

	t.Run("unknown breed falls back to default reference weights", func(t *testing.T) {
		f := newFixture(t)
		a := femaleAnimal("A1", models.HealthGood)
		a.Breed = "criollo"
		a.Sex = "male"
		a.Weight = 500 // fallback male reference 750 kg, ~33% off
		f.mem.AddAnimal(a)

		accepted, err := f.engine.RunPass(context.Background())
		require.NoError(t, err)
		require.Len(t, accepted, 1)
		assert.Equal(t, 40, accepted[0].Health.RiskScore)
	})

	t.Run("ranch risk threshold suppresses low scores", func(t *testing.T) {
		f := newFixture(t)
		a := femaleAnimal("A1", models.HealthFair) // risk 60
		f.mem.AddAnimal(a)
		f.seedSteadyProduction("A1")

		cfg := f.settings.Get()
		cfg.Thresholds = map[string]models.RanchThresholds{
			"r1": {HealthRiskScore: 70},
		}
		require.NoError(t, f.settings.Update(cfg))

		accepted, err := f.engine.RunPass(context.Background())
		require.NoError(t, err)
		assert.Empty(t, accepted)
	})
}

func TestProductionCheck(t *testing.T) {
	t.Run("35 percent drop is critical", func(t *testing.T) {
		f := newFixture(t)
		f.mem.AddAnimal(femaleAnimal("A1", models.HealthGood))
		// short window mean 13, long window mean 20
		f.addProduction("A1", 1, 13)
		f.addProduction("A1", 10, 22.5)
		f.addProduction("A1", 15, 22.5)
		f.addProduction("A1", 20, 22)

		accepted, err := f.engine.RunPass(context.Background())
		require.NoError(t, err)
		require.Len(t, accepted, 1)
		n := accepted[0]
		assert.Equal(t, models.CategoryProduction, n.Category)
		assert.Equal(t, models.PriorityCritical, n.Priority)
		require.NotNil(t, n.Production)
		assert.InDelta(t, -35, n.Production.ChangePercentage, 0.001)
		assert.Equal(t, 1, n.Production.DaysBelow, "13 < 20*0.8, older records above")
	})

	t.Run("20 percent drop is a warning", func(t *testing.T) {
		f := newFixture(t)
		f.mem.AddAnimal(femaleAnimal("A1", models.HealthGood))
		// short 16, long 20
		f.addProduction("A1", 1, 16)
		f.addProduction("A1", 10, 21)
		f.addProduction("A1", 15, 21)
		f.addProduction("A1", 20, 22)

		accepted, err := f.engine.RunPass(context.Background())
		require.NoError(t, err)
		require.Len(t, accepted, 1)
		assert.Equal(t, models.PriorityWarning, accepted[0].Priority)
		assert.InDelta(t, -20, accepted[0].Production.ChangePercentage, 0.001)
	})

	t.Run("exactly plus 20 percent is not an improvement", func(t *testing.T) {
		f := newFixture(t)
		f.mem.AddAnimal(femaleAnimal("A1", models.HealthGood))
		// short 24, long 20: the boundary is exclusive
		f.addProduction("A1", 1, 24)
		f.addProduction("A1", 10, 18)
		f.addProduction("A1", 15, 19)
		f.addProduction("A1", 20, 19)

		accepted, err := f.engine.RunPass(context.Background())
		require.NoError(t, err)
		assert.Empty(t, accepted)
	})

	t.Run("plus 25 percent is an improvement", func(t *testing.T) {
		f := newFixture(t)
		f.mem.AddAnimal(femaleAnimal("A1", models.HealthGood))
		// short 25, long 20
		f.addProduction("A1", 1, 25)
		f.addProduction("A1", 10, 18)
		f.addProduction("A1", 15, 18)
		f.addProduction("A1", 20, 19)

		accepted, err := f.engine.RunPass(context.Background())
		require.NoError(t, err)
		require.Len(t, accepted, 1)
		assert.Equal(t, models.PrioritySuccess, accepted[0].Priority)
		assert.Equal(t, 0, accepted[0].Production.DaysBelow)
	})

	t.Run("mature female with no records gets a warning", func(t *testing.T) {
		f := newFixture(t)
		f.mem.AddAnimal(femaleAnimal("A1", models.HealthGood))

		accepted, err := f.engine.RunPass(context.Background())
		require.NoError(t, err)
		require.Len(t, accepted, 1)
		assert.Equal(t, models.CategoryProduction, accepted[0].Category)
		assert.Equal(t, models.PriorityWarning, accepted[0].Priority)
	})

	t.Run("immature female with no records is skipped", func(t *testing.T) {
		f := newFixture(t)
		a := femaleAnimal("A1", models.HealthGood)
		a.BirthDate = birthday(1, time.March, 10)
		f.mem.AddAnimal(a)

		accepted, err := f.engine.RunPass(context.Background())
		require.NoError(t, err)
		assert.Empty(t, accepted)
	})

	t.Run("missing birth date skips the no-records warning", func(t *testing.T) {
		f := newFixture(t)
		a := femaleAnimal("A1", models.HealthGood)
		a.BirthDate = nil
		f.mem.AddAnimal(a)

		accepted, err := f.engine.RunPass(context.Background())
		require.NoError(t, err)
		assert.Empty(t, accepted)
	})

	t.Run("males are not checked", func(t *testing.T) {
		f := newFixture(t)
		a := femaleAnimal("A1", models.HealthGood)
		a.Sex = "male"
		f.mem.AddAnimal(a)

		accepted, err := f.engine.RunPass(context.Background())
		require.NoError(t, err)
		assert.Empty(t, accepted)
	})
}

func TestMaintenanceCheck(t *testing.T) {
	addEquipment := func(f *fixture, id string, lastServicedDaysAgo int) {
		f.mem.AddEquipment(models.Equipment{
			ID:              id,
			RanchID:         "r1",
			Type:            "milking machine",
			LastMaintenance: base.AddDate(0, 0, -lastServicedDaysAgo),
			FrequencyDays:   30,
		})
	}

	t.Run("priority tiers by overdue days", func(t *testing.T) {
		f := newFixture(t)
		addEquipment(f, "E1", 50) // overdue 20 -> critical
		addEquipment(f, "E2", 40) // overdue 10 -> warning
		addEquipment(f, "E3", 35) // overdue 5  -> info
		addEquipment(f, "E4", 20) // on schedule

		accepted, err := f.engine.RunPass(context.Background())
		require.NoError(t, err)
		require.Len(t, accepted, 3)

		byID := map[string]models.Notification{}
		for _, n := range accepted {
			byID[n.SubjectID] = n
		}
		assert.Equal(t, models.PriorityCritical, byID["E1"].Priority)
		assert.Equal(t, 20, byID["E1"].Maintenance.OverdueDays)
		assert.Equal(t, "high", byID["E1"].Maintenance.Urgency)
		assert.Equal(t, models.PriorityWarning, byID["E2"].Priority)
		assert.Equal(t, models.PriorityInfo, byID["E3"].Priority)
	})

	t.Run("ranch override moves the critical tier", func(t *testing.T) {
		f := newFixture(t)
		addEquipment(f, "E1", 40) // overdue 10

		cfg := f.settings.Get()
		cfg.Thresholds = map[string]models.RanchThresholds{
			"r1": {MaintenanceOverdue: 5},
		}
		require.NoError(t, f.settings.Update(cfg))

		accepted, err := f.engine.RunPass(context.Background())
		require.NoError(t, err)
		require.Len(t, accepted, 1)
		assert.Equal(t, models.PriorityCritical, accepted[0].Priority)
	})
}

func TestReminderCheck(t *testing.T) {
	t.Run("vaccination fires on a matching six-month anniversary", func(t *testing.T) {
		f := newFixture(t)
		a := femaleAnimal("A1", models.HealthGood)
		a.BirthDate = birthday(2, time.February, 15) // 30 months ago on the 15th
		f.mem.AddAnimal(a)
		f.seedSteadyProduction("A1")

		accepted, err := f.engine.RunPass(context.Background())
		require.NoError(t, err)
		require.Len(t, accepted, 1)
		n := accepted[0]
		assert.Equal(t, models.CategoryReminder, n.Category)
		assert.Equal(t, models.PriorityInfo, n.Priority)
		require.NotNil(t, n.Reminder)
		assert.Equal(t, models.ReminderVaccination, n.Reminder.Kind)
		require.NotNil(t, n.Reminder.NextDue)
		assert.Equal(t, base.AddDate(1, 0, 0), *n.Reminder.NextDue)
	})

	t.Run("deworming fires on a three-month anniversary", func(t *testing.T) {
		f := newFixture(t)
		a := femaleAnimal("A1", models.HealthGood)
		a.BirthDate = birthday(2, time.May, 15) // 27 months ago on the 15th
		f.mem.AddAnimal(a)
		f.seedSteadyProduction("A1")

		accepted, err := f.engine.RunPass(context.Background())
		require.NoError(t, err)
		require.Len(t, accepted, 1)
		assert.Equal(t, models.ReminderDeworming, accepted[0].Reminder.Kind)
	})

	t.Run("no reminder on a non-matching day of month", func(t *testing.T) {
		f := newFixture(t)
		a := femaleAnimal("A1", models.HealthGood)
		a.BirthDate = birthday(2, time.February, 14)
		f.mem.AddAnimal(a)
		f.seedSteadyProduction("A1")

		accepted, err := f.engine.RunPass(context.Background())
		require.NoError(t, err)
		assert.Empty(t, accepted)
	})
}

func TestDeduplication(t *testing.T) {
	t.Run("second pass within cooldown produces nothing new", func(t *testing.T) {
		f := newFixture(t)
		f.mem.AddAnimal(femaleAnimal("A1", models.HealthPoor))
		f.seedSteadyProduction("A1")

		first, err := f.engine.RunPass(context.Background())
		require.NoError(t, err)
		require.Len(t, first, 1)

		second, err := f.engine.RunPass(context.Background())
		require.NoError(t, err)
		assert.Empty(t, second)
		assert.Len(t, f.store.All(), 1)
	})

	t.Run("pre-existing notification for the subject suppresses the candidate", func(t *testing.T) {
		f := newFixture(t)
		f.mem.AddAnimal(femaleAnimal("A1", models.HealthGood))
		// A drop that would trigger a production alert for A1.
		f.addProduction("A1", 1, 13)
		f.addProduction("A1", 10, 22.5)
		f.addProduction("A1", 15, 22.5)
		f.addProduction("A1", 20, 22)

		_, err := f.store.Add(models.Notification{
			Category:   models.CategoryProduction,
			Priority:   models.PriorityWarning,
			Title:      "Production decline: A1",
			SubjectID:  "A1",
			Production: &models.ProductionMetadata{ChangePercentage: -20},
		})
		require.NoError(t, err)

		accepted, err := f.engine.RunPass(context.Background())
		require.NoError(t, err)
		assert.Empty(t, accepted)
		assert.Len(t, f.store.All(), 1, "still exactly one notification for A1")
	})
}

func TestSettingsGate(t *testing.T) {
	t.Run("disabled category is not created", func(t *testing.T) {
		f := newFixture(t)
		f.mem.AddAnimal(femaleAnimal("A1", models.HealthPoor))
		f.seedSteadyProduction("A1")

		cfg := f.settings.Get()
		cfg.Categories[models.CategoryHealth] = false
		require.NoError(t, f.settings.Update(cfg))

		accepted, err := f.engine.RunPass(context.Background())
		require.NoError(t, err)
		assert.Empty(t, accepted)
		assert.Empty(t, f.store.All())
	})

	t.Run("global disable stops all creation", func(t *testing.T) {
		f := newFixture(t)
		f.mem.AddAnimal(femaleAnimal("A1", models.HealthPoor))
		f.seedSteadyProduction("A1")

		cfg := f.settings.Get()
		cfg.Enabled = false
		require.NoError(t, f.settings.Update(cfg))

		accepted, err := f.engine.RunPass(context.Background())
		require.NoError(t, err)
		assert.Empty(t, accepted)
	})

	t.Run("disabled rule skips the whole check", func(t *testing.T) {
		f := newFixture(t)
		f.mem.AddAnimal(femaleAnimal("A1", models.HealthPoor))
		f.seedSteadyProduction("A1")

		var healthRuleID string
		for _, r := range f.rules.List() {
			if r.Category == models.CategoryHealth {
				healthRuleID = r.ID
			}
		}
		require.True(t, f.rules.SetEnabled(healthRuleID, false))

		accepted, err := f.engine.RunPass(context.Background())
		require.NoError(t, err)
		assert.Empty(t, accepted)
	})
}

type failingProvider struct{}

func (failingProvider) ActiveRanchID(context.Context) (string, error) {
	return "", errors.New("snapshot unreachable")
}
func (failingProvider) ListAnimals(context.Context, string) ([]models.Animal, error) {
	return nil, errors.New("snapshot unreachable")
}
func (failingProvider) ListMilkProductions(context.Context, string, time.Time, time.Time) ([]models.MilkProduction, error) {
	return nil, errors.New("snapshot unreachable")
}
func (failingProvider) AverageProduction(context.Context, string, int) (float64, error) {
	return 0, errors.New("snapshot unreachable")
}

func TestRunPass_SnapshotFailure(t *testing.T) {
	st := store.New()
	_, err := st.Add(models.Notification{
		Category: models.CategoryHealth,
		Health:   &models.HealthMetadata{AnimalTag: "A1", HealthStatus: "poor", RiskScore: 90},
	})
	require.NoError(t, err)

	calc := trend.NewCalculator(failingProvider{})
	eng := New(failingProvider{}, nil, calc, st, NewRegistry(), settings.NewManager(), logging.Discard())

	_, err = eng.RunPass(context.Background())
	require.Error(t, err)
	assert.Len(t, st.All(), 1, "stored notifications untouched by a failed pass")
}

func TestReportSystemEvent(t *testing.T) {
	f := newFixture(t)
	n, ok := f.engine.ReportSystemEvent("backup_failed", "Backup failed",
		"Nightly export did not complete.", models.PriorityWarning, []string{"export"}, true)
	require.True(t, ok)
	assert.Equal(t, models.CategorySystem, n.Category)
	require.NotNil(t, n.System)
	assert.True(t, n.System.ActionRequired)
	assert.Len(t, f.store.All(), 1)
}
