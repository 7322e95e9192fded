package history

import (
	"context"
	"fmt"

	"github.com/jackzampolin/tagsheet/internal/tags"
)

// Totals aggregates every recorded run.
type Totals struct {
	Runs          int          `json:"runs"`
	Pages         int          `json:"pages"`
	Tags          tags.Summary `json:"tags"`
	TotalDuration int64        `json:"total_duration_ms"`
	AvgDurationMs float64      `json:"avg_duration_ms"`
}

// Totals returns aggregate counts across all runs.
func (s *Store) Totals(ctx context.Context) (*Totals, error) {
	var t Totals
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*),
			COALESCE(SUM(page_count), 0),
			COALESCE(SUM(total_tags), 0),
			COALESCE(SUM(equipment_count), 0),
			COALESCE(SUM(instrument_count), 0),
			COALESCE(SUM(control_valve_count), 0),
			COALESCE(SUM(line_number_count), 0),
			COALESCE(SUM(duration_ms), 0)
		FROM extraction_runs`).Scan(
		&t.Runs, &t.Pages,
		&t.Tags.TotalTags, &t.Tags.EquipmentCount, &t.Tags.InstrumentCount,
		&t.Tags.ControlValveCount, &t.Tags.LineNumberCount,
		&t.TotalDuration,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate runs: %w", err)
	}
	if t.Runs > 0 {
		t.AvgDurationMs = float64(t.TotalDuration) / float64(t.Runs)
	}
	return &t, nil
}
