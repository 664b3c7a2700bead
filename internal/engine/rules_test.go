package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ranch-alerting-service/internal/models"
)

func TestRegistry_Defaults(t *testing.T) {
	r := NewRegistry()
	rules := r.List()
	require.Len(t, rules, 4)

	seen := map[models.Category]bool{}
	for _, rule := range rules {
		assert.True(t, rule.Enabled)
		assert.NotEmpty(t, rule.ID)
		assert.NotEmpty(t, rule.Name)
		seen[rule.Category] = true
	}
	for _, c := range []models.Category{
		models.CategoryHealth, models.CategoryProduction,
		models.CategoryMaintenance, models.CategoryReminder,
	} {
		assert.True(t, seen[c], "missing default rule for %s", c)
	}
}

func TestRegistry_SetEnabled(t *testing.T) {
	r := NewRegistry()
	id := r.List()[0].ID

	require.True(t, r.SetEnabled(id, false))
	for _, rule := range r.List() {
		if rule.ID == id {
			assert.False(t, rule.Enabled)
		}
	}
	assert.False(t, r.SetEnabled("missing", true))
}

func TestRegistry_CategoryEnabled(t *testing.T) {
	r := NewRegistry()
	assert.True(t, r.CategoryEnabled(models.CategoryHealth))

	for _, rule := range r.List() {
		if rule.Category == models.CategoryHealth {
			r.SetEnabled(rule.ID, false)
		}
	}
	assert.False(t, r.CategoryEnabled(models.CategoryHealth))

	// A category with no rule at all runs by default.
	assert.True(t, r.CategoryEnabled(models.CategorySystem))
}

func TestRegistry_CooldownFor(t *testing.T) {
	r := NewRegistry()
	assert.Equal(t, 24*time.Hour, r.CooldownFor(models.CategoryHealth))
	assert.Equal(t, 20*time.Hour, r.CooldownFor(models.CategoryReminder), "rule cooldown wins over the 24h fallback")

	for _, rule := range r.List() {
		if rule.Category == models.CategoryReminder {
			r.SetEnabled(rule.ID, false)
		}
	}
	assert.Equal(t, defaultCooldown, r.CooldownFor(models.CategoryReminder), "disabled rule falls back")
	assert.Equal(t, defaultCooldown, r.CooldownFor(models.CategorySystem))
}
