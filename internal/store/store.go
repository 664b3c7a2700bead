// Package store is the system of record for notification lifecycle: status
// transitions, queries, expiry cleanup, statistics and export. It holds the
// full set; settings-based filtering for display is a derived view owned by
// consumers.
package store

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"ranch-alerting-service/internal/models"
)

// ErrNotFound is returned for operations on an unknown notification id.
var ErrNotFound = errors.New("notification not found")

// Store keeps notifications in memory, most-recent-first. Mutations take the
// write lock; reads share the read lock so UI polling never blocks a pass.
type Store struct {
	mu            sync.RWMutex
	notifications []models.Notification
	unread        int
	responseTimes []time.Duration // first Unread->Read deltas
	now           func() time.Time
}

// New creates an empty Store.
func New() *Store {
	return &Store{now: time.Now}
}

// SetClock overrides the store's clock, for tests.
func (s *Store) SetClock(now func() time.Time) {
	s.now = now
}

// Add assigns id and timestamps, validates the metadata variant, and inserts
// the notification at the head. Initial status is always Unread.
func (s *Store) Add(n models.Notification) (models.Notification, error) {
	if n.ID == "" {
		n.ID = uuid.New().String()
	}
	ts := s.now()
	n.CreatedAt = ts
	n.UpdatedAt = ts
	n.Status = models.StatusUnread
	if err := n.Validate(); err != nil {
		return models.Notification{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.notifications = append([]models.Notification{n}, s.notifications...)
	s.unread++
	return n, nil
}

// Get returns the notification with the given id.
func (s *Store) Get(id string) (models.Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, n := range s.notifications {
		if n.ID == id {
			return n, nil
		}
	}
	return models.Notification{}, ErrNotFound
}

// MarkAsRead transitions Unread -> Read. Idempotent: already Read, Resolved
// or Snoozed notifications are left untouched.
func (s *Store) MarkAsRead(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.notifications {
		if s.notifications[i].ID != id {
			continue
		}
		if s.notifications[i].Status != models.StatusUnread {
			return nil
		}
		ts := s.now()
		s.responseTimes = append(s.responseTimes, ts.Sub(s.notifications[i].CreatedAt))
		s.notifications[i].Status = models.StatusRead
		s.notifications[i].UpdatedAt = ts
		s.unread--
		return nil
	}
	return ErrNotFound
}

// MarkAllAsRead transitions every Unread notification to Read and zeroes the
// unread counter.
func (s *Store) MarkAllAsRead() {
	s.mu.Lock()
	defer s.mu.Unlock()
	ts := s.now()
	for i := range s.notifications {
		if s.notifications[i].Status == models.StatusUnread {
			s.responseTimes = append(s.responseTimes, ts.Sub(s.notifications[i].CreatedAt))
			s.notifications[i].Status = models.StatusRead
			s.notifications[i].UpdatedAt = ts
		}
	}
	s.unread = 0
}

// Resolve transitions Unread or Read -> Resolved. Resolved is terminal.
func (s *Store) Resolve(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.notifications {
		if s.notifications[i].ID != id {
			continue
		}
		if s.notifications[i].Status == models.StatusResolved {
			return nil
		}
		if s.notifications[i].Status == models.StatusUnread {
			s.unread--
		}
		s.notifications[i].Status = models.StatusResolved
		s.notifications[i].UpdatedAt = s.now()
		return nil
	}
	return ErrNotFound
}

// Snooze transitions Unread or Read -> Snoozed with the given expiry. A
// Resolved notification cannot be snoozed.
func (s *Store) Snooze(id string, until time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.notifications {
		if s.notifications[i].ID != id {
			continue
		}
		if s.notifications[i].Status == models.StatusResolved {
			return nil
		}
		if s.notifications[i].Status == models.StatusUnread {
			s.unread--
		}
		s.notifications[i].Status = models.StatusSnoozed
		s.notifications[i].ExpiresAt = &until
		s.notifications[i].UpdatedAt = s.now()
		return nil
	}
	return ErrNotFound
}

// Remove hard-deletes a notification.
func (s *Store) Remove(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.notifications {
		if s.notifications[i].ID != id {
			continue
		}
		if s.notifications[i].Status == models.StatusUnread {
			s.unread--
		}
		s.notifications = append(s.notifications[:i], s.notifications[i+1:]...)
		return nil
	}
	return ErrNotFound
}

// CleanupExpired removes every notification whose expiry has passed and
// returns how many were removed. Safe to call repeatedly.
func (s *Store) CleanupExpired() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	ts := s.now()
	kept := s.notifications[:0]
	removed := 0
	for _, n := range s.notifications {
		if n.Expired(ts) {
			if n.Status == models.StatusUnread {
				s.unread--
			}
			removed++
			continue
		}
		kept = append(kept, n)
	}
	s.notifications = kept
	return removed
}

// All returns the full notification list, most-recent-first.
func (s *Store) All() []models.Notification {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Notification, len(s.notifications))
	copy(out, s.notifications)
	return out
}

// ByCategory returns notifications of one category.
func (s *Store) ByCategory(c models.Category) []models.Notification {
	return s.filter(func(n models.Notification) bool { return n.Category == c })
}

// ByPriority returns notifications of one priority.
func (s *Store) ByPriority(p models.Priority) []models.Notification {
	return s.filter(func(n models.Notification) bool { return n.Priority == p })
}

// ByStatus returns notifications in one lifecycle state.
func (s *Store) ByStatus(st models.Status) []models.Notification {
	return s.filter(func(n models.Notification) bool { return n.Status == st })
}

// ByRanch returns notifications scoped to one ranch.
func (s *Store) ByRanch(ranchID string) []models.Notification {
	return s.filter(func(n models.Notification) bool { return n.RanchID == ranchID })
}

// Unread returns notifications not yet read.
func (s *Store) Unread() []models.Notification {
	return s.ByStatus(models.StatusUnread)
}

// CriticalUnresolved returns critical notifications still awaiting resolution.
func (s *Store) CriticalUnresolved() []models.Notification {
	return s.filter(func(n models.Notification) bool {
		return n.Priority == models.PriorityCritical && n.Status != models.StatusResolved
	})
}

// UnreadCount returns the current unread counter.
func (s *Store) UnreadCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.unread
}

// HasRecent reports whether an unresolved notification for the same category
// and subject was created within the window. This backs the dedup guard.
func (s *Store) HasRecent(c models.Category, subjectID string, within time.Duration) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cutoff := s.now().Add(-within)
	for _, n := range s.notifications {
		if n.Category == c && n.SubjectID == subjectID &&
			n.Status != models.StatusResolved && n.CreatedAt.After(cutoff) {
			return true
		}
	}
	return false
}

func (s *Store) filter(keep func(models.Notification) bool) []models.Notification {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.Notification
	for _, n := range s.notifications {
		if keep(n) {
			out = append(out, n)
		}
	}
	return out
}
