package pipeline

import (
	"context"
	"fmt"

	"github.com/rainyindia/holiday-signal/internal/domain"
)

// saveAll upserts updates one at a time so a failure saving one place never
// blocks the others. Returns the number saved.
func (r *Runner) saveAll(ctx context.Context, updates []domain.Update) int {
	saved := 0
	for _, u := range updates {
		if err := r.saveOne(ctx, u); err != nil {
			r.metrics.Upserts.WithLabelValues("error").Inc()
			r.logger.Error("save failed", "update_id", u.UpdateID, "error", err)
			continue
		}
		saved++
	}
	return saved
}

// saveOne merges into an existing row with the same update_id or inserts a
// new one. Same place, same day, any number of runs: exactly one row.
func (r *Runner) saveOne(ctx context.Context, u domain.Update) error {
	if u.Content == "" {
		u.Content = "Weather condition monitored."
	}

	rowID, found, err := r.store.FindByID(ctx, u.UpdateID)
	if err != nil {
		return fmt.Errorf("find update: %w", err)
	}

	if found {
		if err := r.store.Update(ctx, rowID, u); err != nil {
			return fmt.Errorf("merge update: %w", err)
		}
		r.metrics.Upserts.WithLabelValues("merged").Inc()
		r.logger.Info("update merged", "update_id", u.UpdateID, "confidence", u.Confidence, "holiday_type", u.HolidayType)
		return nil
	}

	if err := r.store.Insert(ctx, u); err != nil {
		return fmt.Errorf("insert update: %w", err)
	}
	r.metrics.Upserts.WithLabelValues("inserted").Inc()
	r.logger.Info("update created", "update_id", u.UpdateID, "confidence", u.Confidence, "holiday_type", u.HolidayType)
	return nil
}
