package engine

import (
	"ranch-alerting-service/internal/models"
	"ranch-alerting-service/internal/store"
)

// Guard suppresses a candidate when an unresolved notification for the same
// category and subject already exists inside the cooldown window. This keeps
// a standing condition from re-alerting every scheduler tick.
type Guard struct {
	store *store.Store
	rules *Registry
}

// NewGuard builds a Guard over the store and rule registry.
func NewGuard(st *store.Store, rules *Registry) *Guard {
	return &Guard{store: st, rules: rules}
}

// Allow reports whether the candidate may be accepted. Candidates without a
// subject (system events) are never deduplicated.
func (g *Guard) Allow(n models.Notification) bool {
	if n.SubjectID == "" {
		return true
	}
	cooldown := g.rules.CooldownFor(n.Category)
	return !g.store.HasRecent(n.Category, n.SubjectID, cooldown)
}
