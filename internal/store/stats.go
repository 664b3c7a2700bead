package store

import (
	"time"

	"ranch-alerting-service/internal/models"
)

// Stats summarizes the store contents.
type Stats struct {
	Total              int                     `json:"total"`
	Unread             int                     `json:"unread"`
	ByCategory         map[models.Category]int `json:"by_category"`
	ByPriority         map[models.Priority]int `json:"by_priority"`
	ByStatus           map[models.Status]int   `json:"by_status"`
	AvgResponseSeconds float64                 `json:"avg_response_seconds"`
}

// Stats returns totals and per-dimension breakdowns. Average response time is
// the mean interval between creation and the first Read transition, across
// notifications that have been read.
func (s *Store) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st := Stats{
		Total:      len(s.notifications),
		Unread:     s.unread,
		ByCategory: make(map[models.Category]int),
		ByPriority: make(map[models.Priority]int),
		ByStatus:   make(map[models.Status]int),
	}
	for _, n := range s.notifications {
		st.ByCategory[n.Category]++
		st.ByPriority[n.Priority]++
		st.ByStatus[n.Status]++
	}
	if len(s.responseTimes) > 0 {
		var sum time.Duration
		for _, d := range s.responseTimes {
			sum += d
		}
		st.AvgResponseSeconds = (sum / time.Duration(len(s.responseTimes))).Seconds()
	}
	return st
}
