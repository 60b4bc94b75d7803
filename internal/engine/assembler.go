package engine

import (
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/mfalmeida/ironplan/internal/models"
)

// Fixed prescriptions for the warm-up and cool-down slots.
const (
	cardioRepRange   = "20-30 min"
	cardioRPE        = 5
	cardioMinutes    = 25
	stretchRepRange  = "5-10 min"
	stretchRPE       = 3
	stretchMinutes   = 7
	secondsPerSet    = 30 // working time per set, on top of rest
	minSetsPerGroup  = 6  // below this a volume warning fires
	maxTimeBudgetMin = 120
)

// StrengthSlot is one resolved strength exercise ready for assembly: the
// generator has already chosen it and settled its load.
type StrengthSlot struct {
	Exercise    models.Exercise
	Role        models.SlotRole
	Sets        int
	RepRange    string
	TargetRPE   int
	RestSeconds int
	LoadKg      *float64
}

// MaxStrengthExercises converts a session time budget into an exercise
// count: three minutes of overhead, roughly four minutes per exercise,
// clamped to a sane range.
func MaxStrengthExercises(availableMinutes int) int {
	m := availableMinutes
	if m > maxTimeBudgetMin {
		m = maxTimeBudgetMin
	}
	n := (m - 3) / 4
	if n < 2 {
		n = 2
	}
	if n > 10 {
		n = 10
	}
	return n
}

// Assemble builds the final session: cardio warm-up at slot zero, the
// strength block in the given order, the stretch entry last, with contiguous
// order indexes. Ordering, volume, and redundancy findings are warnings on
// the session; the session is still produced.
func Assemble(profile models.UserProfile, day models.SplitDay, date time.Time, slots []StrengthSlot, cardioPool []models.Exercise, stretch models.Exercise, warnLimit float64) (models.WorkoutSession, error) {
	if len(cardioPool) == 0 {
		return models.WorkoutSession{}, fmt.Errorf("assembling session: empty cardio pool")
	}

	session := models.WorkoutSession{
		ID:         uuid.New(),
		UserID:     profile.UserID,
		Date:       date,
		SplitLabel: day.Label,
		Division:   Division(profile.WeeklyFrequency),
		CreatedAt:  time.Now().UTC(),
	}

	cardio := cardioPool[date.YearDay()%len(cardioPool)]
	session.Exercises = append(session.Exercises, models.Prescription{
		ID:           uuid.New(),
		SessionID:    session.ID,
		ExerciseID:   cardio.ID,
		ExerciseName: cardio.Name,
		MuscleGroup:  models.Cardio,
		Role:         models.RoleCardio,
		OrderIndex:   0,
		Sets:         1,
		RepRange:     cardioRepRange,
		TargetRPE:    cardioRPE,
	})

	for i, slot := range slots {
		session.Exercises = append(session.Exercises, models.Prescription{
			ID:           uuid.New(),
			SessionID:    session.ID,
			ExerciseID:   slot.Exercise.ID,
			ExerciseName: slot.Exercise.Name,
			MuscleGroup:  slot.Exercise.MuscleGroup,
			Role:         slot.Role,
			OrderIndex:   i + 1,
			Sets:         slot.Sets,
			RepRange:     slot.RepRange,
			TargetRPE:    slot.TargetRPE,
			RestSeconds:  slot.RestSeconds,
			LoadKg:       slot.LoadKg,
		})
	}

	session.Exercises = append(session.Exercises, models.Prescription{
		ID:           uuid.New(),
		SessionID:    session.ID,
		ExerciseID:   stretch.ID,
		ExerciseName: stretch.Name,
		MuscleGroup:  models.Flexibility,
		Role:         models.RoleStretch,
		OrderIndex:   len(slots) + 1,
		Sets:         1,
		RepRange:     stretchRepRange,
		TargetRPE:    stretchRPE,
	})

	session.Warnings = append(session.Warnings, orderingWarnings(slots)...)
	session.Warnings = append(session.Warnings, volumeWarnings(day, slots)...)
	session.Warnings = append(session.Warnings, redundancyWarnings(slots, warnLimit)...)
	session.EstimatedMinutes = estimateMinutes(slots)
	return session, nil
}

// orderingWarnings checks the two structural expectations on the strength
// block: each group's exercises are contiguous, and within a group no
// compound follows an isolation move.
func orderingWarnings(slots []StrengthSlot) []string {
	var warnings []string
	seen := map[models.MuscleGroup]bool{}
	var current models.MuscleGroup
	isolationSeen := map[models.MuscleGroup]bool{}

	for _, slot := range slots {
		g := slot.Exercise.MuscleGroup
		if g != current {
			if seen[g] {
				warnings = append(warnings, fmt.Sprintf("group %s split across non-adjacent slots", g))
			}
			seen[g] = true
			current = g
		}
		if IsCompound(slot.Exercise) {
			if isolationSeen[g] {
				warnings = append(warnings, fmt.Sprintf("compound %q after isolation within group %s", slot.Exercise.Name, g))
			}
		} else {
			isolationSeen[g] = true
		}
	}
	return warnings
}

// volumeWarnings flags targeted groups that ended up with fewer than six
// total working sets.
func volumeWarnings(day models.SplitDay, slots []StrengthSlot) []string {
	setsByGroup := map[models.MuscleGroup]int{}
	for _, slot := range slots {
		setsByGroup[slot.Exercise.MuscleGroup] += slot.Sets
	}
	var warnings []string
	for _, g := range day.Groups {
		if g.IsAuxiliary() {
			continue
		}
		sets, present := setsByGroup[g]
		if present && sets < minSetsPerGroup {
			warnings = append(warnings, fmt.Sprintf("low volume: %d sets for %s", sets, g))
		}
	}
	return warnings
}

// redundancyWarnings flags same-group exercise pairs whose names are nearly
// interchangeable. These survive selection (which uses a stricter cutoff for
// accessories) when relaxation left few choices.
func redundancyWarnings(slots []StrengthSlot, limit float64) []string {
	var warnings []string
	for i := 0; i < len(slots); i++ {
		for j := i + 1; j < len(slots); j++ {
			if slots[i].Exercise.MuscleGroup != slots[j].Exercise.MuscleGroup {
				continue
			}
			if sim := NameSimilarity(slots[i].Exercise.Name, slots[j].Exercise.Name); sim >= limit {
				warnings = append(warnings, fmt.Sprintf("redundant pair: %q and %q", slots[i].Exercise.Name, slots[j].Exercise.Name))
			}
		}
	}
	return warnings
}

// estimateMinutes is working time plus rest for the strength block, plus the
// fixed cardio and stretch durations.
func estimateMinutes(slots []StrengthSlot) int {
	seconds := 0
	for _, slot := range slots {
		seconds += slot.Sets * (secondsPerSet + slot.RestSeconds)
	}
	return int(math.Ceil(float64(seconds)/60)) + cardioMinutes + stretchMinutes
}
