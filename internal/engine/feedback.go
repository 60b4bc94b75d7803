package engine

import (
	"math"

	"github.com/mfalmeida/ironplan/internal/models"
)

// Feedback interpretation is pure: the same prior record and goal always
// produce the same adjustment, so re-running it after a retry or a replayed
// completion changes nothing.

const (
	tooEasyStrengthPct = 0.10
	tooEasyDefaultPct  = 0.05
	tooHardPct         = 0.05
	tooHardFloorPct    = 0.80 // never drop below this fraction of the prior load
	legacyEasyPct      = 0.075
	maxSetsBeforeReps  = 4
)

// NextLoad computes the next working load from a prior load and qualitative
// feedback, rounded to the equipment step and floored at 80% of the prior
// load on a reduction.
func NextLoad(priorKg float64, fb models.Feedback, goal models.Goal, stepKg float64) float64 {
	switch fb {
	case models.FeedbackTooEasy:
		pct := tooEasyDefaultPct
		if goal == models.GoalStrength {
			pct = tooEasyStrengthPct
		}
		return NearestAllowed(priorKg*(1+pct), stepKg)
	case models.FeedbackTooHard:
		return reducedLoad(priorKg, stepKg)
	default:
		return NearestAllowed(priorKg, stepKg)
	}
}

// reducedLoad drops 5%, rounds to the step, and refuses to land below 80% of
// the prior load even when rounding would take it there.
func reducedLoad(priorKg, stepKg float64) float64 {
	reduced := NearestAllowed(priorKg*(1-tooHardPct), stepKg)
	floor := priorKg * tooHardFloorPct
	if reduced < floor && stepKg > 0 {
		reduced = math.Ceil(floor/stepKg) * stepKg
	}
	return reduced
}

// InterpretFeedback turns the latest progression record into the adjustment
// for the next prescription of that exercise. Qualitative feedback wins; a
// legacy RPE value is interpreted when no feedback is present; with neither,
// the prescription is kept as-is.
func InterpretFeedback(prior models.ProgressionRecord, goal models.Goal, stepKg float64) models.Adjustment {
	hasLoad := prior.LoadKg != nil && *prior.LoadKg > 0

	if prior.Feedback != nil {
		switch *prior.Feedback {
		case models.FeedbackTooEasy:
			if hasLoad {
				next := NextLoad(*prior.LoadKg, models.FeedbackTooEasy, goal, stepKg)
				return models.Adjustment{Kind: models.AdjustLoad, LoadKg: &next, Reason: "too easy: load up"}
			}
			if prior.Sets < maxSetsBeforeReps {
				return models.Adjustment{Kind: models.AdjustSets, Sets: prior.Sets + 1, Reason: "too easy: extra set"}
			}
			return models.Adjustment{Kind: models.AdjustReps, Reps: prior.Reps + 2, Reason: "too easy: extra reps"}
		case models.FeedbackTooHard:
			if hasLoad {
				next := reducedLoad(*prior.LoadKg, stepKg)
				return models.Adjustment{Kind: models.AdjustLoad, LoadKg: &next, Reason: "too hard: load down"}
			}
			reps := prior.Reps - 2
			if reps < 1 {
				reps = 1
			}
			return models.Adjustment{Kind: models.AdjustReps, Reps: reps, Reason: "too hard: fewer reps"}
		default: // on point
			return maintain(prior, stepKg)
		}
	}

	if prior.RPE != nil {
		rpe := *prior.RPE
		switch {
		case rpe >= 9:
			if hasLoad {
				next := reducedLoad(*prior.LoadKg, stepKg)
				return models.Adjustment{Kind: models.AdjustLoad, LoadKg: &next, Reason: "rpe high: load down"}
			}
			reps := prior.Reps - 2
			if reps < 1 {
				reps = 1
			}
			return models.Adjustment{Kind: models.AdjustReps, Reps: reps, Reason: "rpe high: fewer reps"}
		case rpe < 7:
			if hasLoad {
				next := NearestAllowed(*prior.LoadKg*(1+legacyEasyPct), stepKg)
				return models.Adjustment{Kind: models.AdjustLoad, LoadKg: &next, Reason: "rpe low: load up"}
			}
			if prior.Sets < maxSetsBeforeReps {
				return models.Adjustment{Kind: models.AdjustSets, Sets: prior.Sets + 1, Reason: "rpe low: extra set"}
			}
			return models.Adjustment{Kind: models.AdjustReps, Reps: prior.Reps + 2, Reason: "rpe low: extra reps"}
		default:
			return maintain(prior, stepKg)
		}
	}

	return maintain(prior, stepKg)
}

// maintain keeps the prescription but normalizes a stored load onto the
// equipment step, cleaning up records written before an increment change.
func maintain(prior models.ProgressionRecord, stepKg float64) models.Adjustment {
	adj := models.Adjustment{Kind: models.AdjustLoad, Reason: "maintain"}
	if prior.LoadKg != nil && *prior.LoadKg > 0 {
		normalized := NearestAllowed(*prior.LoadKg, stepKg)
		adj.LoadKg = &normalized
	}
	return adj
}
