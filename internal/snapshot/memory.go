package snapshot

import (
	"context"
	"sync"
	"time"

	"ranch-alerting-service/internal/models"
)

// Memory is an in-memory Provider for tests and embedded deployments.
type Memory struct {
	mu          sync.RWMutex
	ranchID     string
	animals     []models.Animal
	productions map[string][]models.MilkProduction // keyed by animal id
	equipment   []models.Equipment
	now         func() time.Time
}

// NewMemory creates an empty in-memory provider for the given active ranch.
func NewMemory(ranchID string) *Memory {
	return &Memory{
		ranchID:     ranchID,
		productions: make(map[string][]models.MilkProduction),
		now:         time.Now,
	}
}

// SetClock overrides the provider's clock, for tests.
func (m *Memory) SetClock(now func() time.Time) {
	m.now = now
}

// AddAnimal registers an animal.
func (m *Memory) AddAnimal(a models.Animal) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.animals = append(m.animals, a)
}

// AddProduction registers a milk-production record.
func (m *Memory) AddProduction(p models.MilkProduction) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.productions[p.AnimalID] = append(m.productions[p.AnimalID], p)
}

// AddEquipment registers a tracked equipment item.
func (m *Memory) AddEquipment(e models.Equipment) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.equipment = append(m.equipment, e)
}

func (m *Memory) ActiveRanchID(ctx context.Context) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.ranchID, nil
}

func (m *Memory) ListAnimals(ctx context.Context, ranchID string) ([]models.Animal, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []models.Animal
	for _, a := range m.animals {
		if ranchID == "" || a.RanchID == ranchID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *Memory) ListMilkProductions(ctx context.Context, animalID string, from, to time.Time) ([]models.MilkProduction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []models.MilkProduction
	for _, p := range m.productions[animalID] {
		if !p.Date.Before(from) && !p.Date.After(to) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *Memory) AverageProduction(ctx context.Context, animalID string, days int) (float64, error) {
	to := m.now()
	from := to.AddDate(0, 0, -days)
	records, err := m.ListMilkProductions(ctx, animalID, from, to)
	if err != nil || len(records) == 0 {
		return 0, err
	}
	var sum float64
	for _, r := range records {
		sum += r.Liters
	}
	return sum / float64(len(records)), nil
}

func (m *Memory) ListEquipment(ctx context.Context, ranchID string) ([]models.Equipment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []models.Equipment
	for _, e := range m.equipment {
		if ranchID == "" || e.RanchID == ranchID {
			out = append(out, e)
		}
	}
	return out, nil
}
