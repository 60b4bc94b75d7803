package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mfalmeida/ironplan/internal/models"
)

// trainingWeekdays maps weekly frequency to the weekdays trained.
var trainingWeekdays = map[int][]time.Weekday{
	1: {time.Monday},
	2: {time.Monday, time.Thursday},
	3: {time.Monday, time.Wednesday, time.Friday},
	4: {time.Monday, time.Tuesday, time.Thursday, time.Friday},
	5: {time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday},
	6: {time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday, time.Saturday},
}

// IsTrainingDay reports whether a weekday is trained at a given frequency.
func IsTrainingDay(frequency int, day time.Weekday) bool {
	days, ok := trainingWeekdays[frequency]
	if !ok {
		days = trainingWeekdays[3]
	}
	for _, d := range days {
		if d == day {
			return true
		}
	}
	return false
}

// HorizonResult summarizes one horizon refresh.
type HorizonResult struct {
	Start     time.Time               `json:"start"`
	Days      int                     `json:"days"`
	Kept      int                     `json:"kept"`
	Generated int                     `json:"generated"`
	Sessions  []models.WorkoutSession `json:"sessions"`
	Warnings  []string                `json:"warnings,omitempty"`
}

// GenerateHorizon maintains the user's schedule for a window of days from
// start. Existing sessions that still carry the expected split label are
// kept; a stale or empty one causes everything from that date on to be
// cleared and regenerated, so the cycle stays consistent. A failed day is a
// warning, not an abort, and does not advance the cycle. Running the horizon
// twice over unchanged inputs is a no-op.
func (g *Generator) GenerateHorizon(ctx context.Context, userID uuid.UUID, start time.Time, days int) (HorizonResult, error) {
	if days <= 0 {
		days = g.cfg.HorizonDays
	}
	start = startOfDay(start)
	result := HorizonResult{Start: start, Days: days}

	profile, err := g.repo.FetchUserProfile(ctx, userID)
	if err != nil {
		return result, fmt.Errorf("fetching profile: %w", err)
	}
	if !profile.Complete() {
		return result, ErrProfileIncomplete
	}

	cycle, err := g.repo.FetchPriorSessionCount(ctx, userID, start)
	if err != nil {
		return result, fmt.Errorf("counting prior sessions: %w", err)
	}

	end := start.AddDate(0, 0, days-1)
	existing, err := g.repo.FetchSessionsBetween(ctx, userID, start, end)
	if err != nil {
		return result, fmt.Errorf("fetching existing sessions: %w", err)
	}
	byDate := make(map[string]models.WorkoutSession, len(existing))
	for _, s := range existing {
		byDate[s.Date.Format("2006-01-02")] = s
	}

	cleared := false
	for i := 0; i < days; i++ {
		date := start.AddDate(0, 0, i)
		if !IsTrainingDay(profile.WeeklyFrequency, date.Weekday()) {
			continue
		}

		day, err := PlanDay(profile, cycle)
		if err != nil {
			return result, err
		}

		if !cleared {
			if current, ok := byDate[date.Format("2006-01-02")]; ok {
				if current.SplitLabel == day.Label && len(current.Exercises) > 0 {
					result.Kept++
					result.Sessions = append(result.Sessions, current)
					cycle++
					continue
				}
				// Stale label or an empty shell: clear this date and
				// everything after it, then rebuild forward.
				if err := g.repo.DeleteSessionsOnOrAfter(ctx, userID, date); err != nil {
					return result, fmt.Errorf("clearing stale sessions: %w", err)
				}
				g.log.Info("horizon cleared from stale session", "user", userID,
					"date", date.Format("2006-01-02"), "had", current.SplitLabel, "want", day.Label)
				cleared = true
			}
		}

		session, err := g.buildSession(ctx, profile, day, date)
		if err != nil {
			var noEx *NoExercisesError
			if errors.As(err, &noEx) || errors.Is(err, ErrProfileIncomplete) {
				result.Warnings = append(result.Warnings,
					fmt.Sprintf("%s: %v", date.Format("2006-01-02"), err))
				continue
			}
			return result, fmt.Errorf("building session for %s: %w", date.Format("2006-01-02"), err)
		}
		if err := g.repo.PersistSession(ctx, session); err != nil {
			return result, fmt.Errorf("persisting session for %s: %w", date.Format("2006-01-02"), err)
		}
		result.Generated++
		result.Sessions = append(result.Sessions, session)
		cycle++
	}
	return result, nil
}
