package projections

import (
	"context"
	"strings"
	"time"

	gymclassStore "gymdesk/internal/adapters/storage/gymclass"
)

// GetTodaysClassesDeps holds dependencies for the projection.
type GetTodaysClassesDeps struct {
	ClassStore   ClassStore
	BookingStore BookingStore // optional: nil skips occupancy counts
}

// TodaysClassResult represents a single class session resolved for today.
type TodaysClassResult struct {
	ClassID    string
	Name       string
	Instructor string
	StartTime  string
	EndTime    string
	Capacity   int // zero means unlimited
	Booked     int
	Full       bool
}

// QueryGetTodaysClasses resolves today's sessions from the weekly schedule
// grid and annotates each with its booking occupancy.
// PRE: now carries the gym's local date
// POST: Active classes for today's weekday ordered by start time
func QueryGetTodaysClasses(ctx context.Context, now time.Time, deps GetTodaysClassesDeps) ([]TodaysClassResult, error) {
	dayName := strings.ToLower(now.Weekday().String())

	classes, err := deps.ClassStore.List(ctx, gymclassStore.ListFilter{
		Weekday:    dayName,
		OnlyActive: true,
	})
	if err != nil {
		return nil, err
	}

	dateStr := now.Format("2006-01-02")
	var results []TodaysClassResult
	for _, c := range classes {
		r := TodaysClassResult{
			ClassID:    c.ID,
			Name:       c.Name,
			Instructor: c.Instructor,
			StartTime:  c.StartTime,
			EndTime:    c.EndTime,
			Capacity:   c.Capacity,
		}
		if deps.BookingStore != nil {
			if booked, err := deps.BookingStore.CountActiveByClassAndDate(ctx, c.ID, dateStr); err == nil {
				r.Booked = booked
				r.Full = c.HasCapacityLimit() && booked >= c.Capacity
			}
		}
		results = append(results, r)
	}

	return results, nil
}
