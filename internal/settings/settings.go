// Package settings owns the mutable NotificationSettings, validated at the
// update boundary and safe for concurrent readers.
package settings

import (
	"fmt"
	"sync"

	"ranch-alerting-service/internal/models"
)

// Manager guards the current NotificationSettings.
type Manager struct {
	mu      sync.RWMutex
	current models.NotificationSettings
}

// NewManager starts from the default settings.
func NewManager() *Manager {
	return &Manager{current: models.DefaultSettings()}
}

// Get returns a copy of the current settings.
func (m *Manager) Get() models.NotificationSettings {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// Update validates and replaces the settings atomically.
func (m *Manager) Update(s models.NotificationSettings) error {
	if err := s.Validate(); err != nil {
		return fmt.Errorf("invalid settings: %w", err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.current = s
	return nil
}
