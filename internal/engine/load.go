package engine

import (
	"fmt"
	"math"

	"github.com/mfalmeida/ironplan/internal/models"
)

// equipmentSteps is the increment table, in kg. It is meant to be exhaustive
// over the catalog's equipment vocabulary; resolving a tag outside it is a
// configuration error, never a silent default.
var equipmentSteps = map[string]float64{
	"barbell":       5.0,
	"ez bar":        5.0,
	"trap bar":      5.0,
	"smith machine": 5.0,
	"machine":       5.0,
	"cable":         5.0,
	"dumbbell":      2.0,
	"kettlebell":    2.0,
	"plate":         1.0,
	"micro":         1.0,
}

// supportTags carry no load of their own. An exercise listing only support
// tags is loaded by body weight.
var supportTags = map[string]bool{
	"bench":       true,
	"rack":        true,
	"box":         true,
	"mat":         true,
	"band":        true,
	"pull-up bar": true,
	"bodyweight":  true,
	"body weight": true,
}

// Increment resolves the weight step for an exercise's equipment list.
// loadless means the exercise is body-weight loaded and carries no number.
func Increment(equipment []string) (stepKg float64, loadless bool, err error) {
	if len(equipment) == 0 {
		return 0, true, nil
	}
	var unknown string
	for _, tag := range equipment {
		norm := normalizeName(tag)
		if step, ok := equipmentSteps[norm]; ok {
			return step, false, nil
		}
		if !supportTags[norm] && unknown == "" {
			unknown = tag
		}
	}
	if unknown != "" {
		return 0, false, fmt.Errorf("%w: %q", ErrUnknownEquipment, unknown)
	}
	return 0, true, nil
}

// NearestAllowed rounds a target weight to the closest multiple of the
// equipment step, ties rounding down. Positive targets never round below one
// step, so a prescription can't vanish to zero.
func NearestAllowed(targetKg, stepKg float64) float64 {
	if stepKg <= 0 {
		return targetKg
	}
	if targetKg <= 0 {
		return 0
	}
	lower := math.Floor(targetKg/stepKg) * stepKg
	upper := lower + stepKg
	rounded := lower
	if upper-targetKg < targetKg-lower {
		rounded = upper
	}
	if rounded < stepKg {
		rounded = stepKg
	}
	// Multiples of 2 and 5 accumulate float noise through the
	// divide-multiply round trip; snap to 3 decimals.
	return math.Round(rounded*1000) / 1000
}

// bodyWeightPct maps experience and muscle group to the fraction of body
// weight used as a starting load when the catalog has no suggestion.
var bodyWeightPct = map[models.Experience]map[models.MuscleGroup]float64{
	models.Beginner: {
		models.Chest: 0.35, models.Back: 0.30, models.Shoulders: 0.25,
		models.Biceps: 0.20, models.Triceps: 0.20, models.Quadriceps: 0.50,
		models.Hamstrings: 0.40, models.Calves: 0.60, models.Core: 0.10,
	},
	models.Intermediate: {
		models.Chest: 0.50, models.Back: 0.45, models.Shoulders: 0.35,
		models.Biceps: 0.30, models.Triceps: 0.30, models.Quadriceps: 0.70,
		models.Hamstrings: 0.55, models.Calves: 0.80, models.Core: 0.15,
	},
	models.Advanced: {
		models.Chest: 0.65, models.Back: 0.60, models.Shoulders: 0.45,
		models.Biceps: 0.40, models.Triceps: 0.40, models.Quadriceps: 0.90,
		models.Hamstrings: 0.75, models.Calves: 1.00, models.Core: 0.20,
	},
}

const fallbackBodyWeightPct = 0.30

// suggestedLoadFactor scales a catalog-suggested load to the user's tier.
var suggestedLoadFactor = map[models.Experience]float64{
	models.Beginner:     0.3,
	models.Intermediate: 0.6,
	models.Advanced:     1.0,
}

// InitialLoad estimates the starting load for an exercise the user has no
// history on. Body-weight exercises return nil. A catalog-suggested load,
// scaled to the user's tier, wins over the body-weight table. With neither a
// suggestion nor a usable body weight there is no estimate.
func InitialLoad(profile models.UserProfile, ex models.Exercise) (*float64, error) {
	step, loadless, err := Increment(ex.Equipment)
	if err != nil {
		return nil, fmt.Errorf("initial load for %q: %w", ex.Name, err)
	}
	if loadless {
		return nil, nil
	}

	if ex.SuggestedLoad != nil && *ex.SuggestedLoad > 0 {
		factor, ok := suggestedLoadFactor[profile.Experience]
		if !ok {
			factor = suggestedLoadFactor[models.Intermediate]
		}
		load := NearestAllowed(*ex.SuggestedLoad*factor, step)
		return &load, nil
	}

	if profile.BodyWeightKg <= 0 {
		return nil, nil
	}
	pct := fallbackBodyWeightPct
	if tier, ok := bodyWeightPct[profile.Experience]; ok {
		if p, ok := tier[ex.MuscleGroup]; ok {
			pct = p
		}
	}
	load := NearestAllowed(profile.BodyWeightKg*pct, step)
	return &load, nil
}

// EstimateOneRM applies the Epley formula to a working set.
func EstimateOneRM(weightKg float64, reps int) float64 {
	if reps <= 1 {
		return weightKg
	}
	return weightKg * (1 + float64(reps)/30)
}

// oneRMBand returns the low/high fraction of estimated 1RM for a goal,
// shifted by rep count: very low reps pull the band up to the strength
// range, very high reps push it down to the endurance range.
func oneRMBand(goal models.Goal, reps int) (lo, hi float64) {
	switch goal {
	case models.GoalStrength:
		lo, hi = 0.80, 0.90
	case models.GoalHypertrophy:
		lo, hi = 0.60, 0.70
	default:
		lo, hi = 0.50, 0.60
	}
	if reps > 0 && reps <= 5 {
		lo, hi = 0.80, 0.90
	} else if reps >= 15 {
		lo, hi = 0.50, 0.60
	}
	return lo, hi
}

// LoadFromOneRM prescribes a working load at the midpoint of the goal's
// percent-of-1RM band, rounded to the equipment step.
func LoadFromOneRM(oneRM float64, goal models.Goal, reps int, stepKg float64) float64 {
	lo, hi := oneRMBand(goal, reps)
	return NearestAllowed(oneRM*(lo+hi)/2, stepKg)
}

// FirstWeekEase scales a load down during the user's first training week.
// The eased value rounds to the same equipment step as the load it came
// from, so it stays loadable on the machine that produced it.
func FirstWeekEase(loadKg, factor, stepKg float64) float64 {
	if loadKg <= 0 {
		return loadKg
	}
	eased := NearestAllowed(loadKg*factor, stepKg)
	if eased < stepKg {
		eased = stepKg
	}
	return eased
}
