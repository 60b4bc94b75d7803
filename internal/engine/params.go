package engine

import (
	"github.com/mfalmeida/ironplan/internal/models"
)

// Params is the set/rep/RPE/rest prescription shared by every strength slot
// in a session.
type Params struct {
	Sets        int
	RepRange    string
	TargetRPE   int
	RestSeconds int
}

// TrainingParams resolves the prescription table for a goal and experience
// tier. A preferred RPE on the profile overrides the table's target.
func TrainingParams(p models.UserProfile) Params {
	out := paramsFor(p.Goal, p.Experience)
	if p.PreferredRPE != nil && *p.PreferredRPE >= 1 && *p.PreferredRPE <= 10 {
		out.TargetRPE = *p.PreferredRPE
	}
	return out
}

func paramsFor(goal models.Goal, exp models.Experience) Params {
	switch goal {
	case models.GoalStrength:
		sets := 4
		if exp == models.Advanced {
			sets = 5
		}
		return Params{Sets: sets, RepRange: "3-5", TargetRPE: 8, RestSeconds: 180}
	case models.GoalWeightLoss:
		return Params{Sets: 3, RepRange: "12-15", TargetRPE: 6, RestSeconds: 60}
	case models.GoalConditioning:
		sets := 3
		if exp == models.Beginner {
			sets = 2
		}
		return Params{Sets: sets, RepRange: "15-20", TargetRPE: 6, RestSeconds: 60}
	default: // hypertrophy
		if exp == models.Beginner {
			return Params{Sets: 3, RepRange: "10-12", TargetRPE: 7, RestSeconds: 90}
		}
		return Params{Sets: 4, RepRange: "8-12", TargetRPE: 7, RestSeconds: 90}
	}
}
