package store

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"time"
)

// csvColumns is the fixed CSV column set.
var csvColumns = []string{"id", "category", "priority", "status", "title", "message", "created_at"}

// ExportJSON serializes the full notification list. The tagged-union shape
// round-trips losslessly through encoding/json.
func (s *Store) ExportJSON() ([]byte, error) {
	list := s.All()
	data, err := json.MarshalIndent(list, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to export notifications as JSON: %w", err)
	}
	return data, nil
}

// ExportCSV serializes the full notification list with the fixed column set.
func (s *Store) ExportCSV() ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(csvColumns); err != nil {
		return nil, fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, n := range s.All() {
		record := []string{
			n.ID,
			string(n.Category),
			string(n.Priority),
			string(n.Status),
			n.Title,
			n.Message,
			n.CreatedAt.Format(time.RFC3339),
		}
		if err := w.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV row for %s: %w", n.ID, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("failed to flush CSV: %w", err)
	}
	return buf.Bytes(), nil
}

// Export serializes the store in the requested format, "json" or "csv".
func (s *Store) Export(format string) ([]byte, error) {
	switch format {
	case "json":
		return s.ExportJSON()
	case "csv":
		return s.ExportCSV()
	default:
		return nil, fmt.Errorf("unsupported export format %q", format)
	}
}
