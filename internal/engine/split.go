package engine

import (
	"fmt"
	"strings"

	"github.com/mfalmeida/ironplan/internal/models"
)

// Split planning is a pure function of (experience, weekly frequency, cycle
// index). The cycle index is the count of prior valid sessions, so the
// rotation advances only when a session was actually generated; a user who
// skips a week resumes where they left off instead of jumping with the
// calendar.

var (
	upperBody = []models.MuscleGroup{models.Chest, models.Back, models.Shoulders, models.Biceps, models.Triceps}
	lowerBody = []models.MuscleGroup{models.Quadriceps, models.Hamstrings, models.Calves}

	legsDay = []models.MuscleGroup{models.Quadriceps, models.Hamstrings, models.Calves}
	pushDay = []models.MuscleGroup{models.Chest, models.Shoulders, models.Triceps}
	pullDay = []models.MuscleGroup{models.Back, models.Biceps, models.Core}
)

var splitLabels = []string{"A", "B", "C", "D", "E", "F"}

// Division returns the rotation label string for a weekly frequency,
// e.g. 3 -> "A-B-C".
func Division(weeklyFrequency int) string {
	n := weeklyFrequency
	if n < 1 || n > len(splitLabels) {
		n = 3
	}
	return strings.Join(splitLabels[:n], "-")
}

// PlanDay resolves the split day for a profile at a given cycle position.
func PlanDay(profile models.UserProfile, cycleIndex int) (models.SplitDay, error) {
	if !profile.Complete() {
		return models.SplitDay{}, fmt.Errorf("planning day: %w", ErrProfileIncomplete)
	}
	if cycleIndex < 0 {
		cycleIndex = 0
	}

	rotation := splitRotation(profile.Experience, profile.WeeklyFrequency)
	day := rotation[cycleIndex%len(rotation)]
	// Copy so callers can't mutate the shared tables.
	groups := make([]models.MuscleGroup, len(day.Groups))
	copy(groups, day.Groups)
	return models.SplitDay{Label: day.Label, Groups: groups}, nil
}

// splitRotation picks the rotation table. Unrecognized experience values fall
// back to the intermediate three-way split.
func splitRotation(exp models.Experience, frequency int) []models.SplitDay {
	switch exp {
	case models.Beginner:
		if frequency <= 1 {
			return []models.SplitDay{{Label: "A", Groups: models.MajorGroups}}
		}
		return []models.SplitDay{
			{Label: "A", Groups: upperBody},
			{Label: "B", Groups: lowerBody},
		}
	case models.Advanced:
		switch {
		case frequency >= 5:
			return []models.SplitDay{
				{Label: "A", Groups: []models.MuscleGroup{models.Chest}},
				{Label: "B", Groups: []models.MuscleGroup{models.Back}},
				{Label: "C", Groups: legsDay},
				{Label: "D", Groups: []models.MuscleGroup{models.Shoulders}},
				{Label: "E", Groups: []models.MuscleGroup{models.Biceps, models.Triceps, models.Core}},
			}
		case frequency == 4:
			return []models.SplitDay{
				{Label: "A", Groups: []models.MuscleGroup{models.Chest, models.Triceps}},
				{Label: "B", Groups: []models.MuscleGroup{models.Back, models.Biceps}},
				{Label: "C", Groups: legsDay},
				{Label: "D", Groups: []models.MuscleGroup{models.Shoulders, models.Core}},
			}
		default:
			// Push / pull / legs.
			return []models.SplitDay{
				{Label: "A", Groups: pushDay},
				{Label: "B", Groups: []models.MuscleGroup{models.Back, models.Biceps}},
				{Label: "C", Groups: []models.MuscleGroup{models.Quadriceps, models.Hamstrings, models.Calves, models.Core}},
			}
		}
	default: // Intermediate and anything unrecognized.
		return []models.SplitDay{
			{Label: "A", Groups: legsDay},
			{Label: "B", Groups: pushDay},
			{Label: "C", Groups: pullDay},
		}
	}
}
