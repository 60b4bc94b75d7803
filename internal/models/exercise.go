package models

import (
	"github.com/google/uuid"
)

// Exercise is a catalog entry.
type Exercise struct {
	ID            uuid.UUID     `json:"id"`
	Name          string        `json:"name"`
	MuscleGroup   MuscleGroup   `json:"muscleGroup"`
	Synergists    []MuscleGroup `json:"synergists,omitempty"`
	Equipment     []string      `json:"equipment,omitempty"`
	Difficulty    Experience    `json:"difficulty"`
	SuggestedLoad *float64      `json:"suggestedLoadKg,omitempty"`
	Active        bool          `json:"active"`
}

// UserProfile is everything the planner needs to know about a user.
type UserProfile struct {
	UserID           uuid.UUID  `json:"userId"`
	Experience       Experience `json:"experience"`
	Goal             Goal       `json:"goal"`
	WeeklyFrequency  int        `json:"weeklyFrequency"`
	Location         Location   `json:"location"`
	BodyWeightKg     float64    `json:"bodyWeightKg"`
	PreferredRPE     *int       `json:"preferredRpe,omitempty"`
	Injuries         []string   `json:"injuries,omitempty"`
	AvailableMinutes int        `json:"availableMinutes,omitempty"` // 0 means use the configured default
}

// Complete reports whether the profile carries enough to plan a session.
// Body weight is only needed for load estimation and is checked separately.
func (p UserProfile) Complete() bool {
	return p.Experience.IsValid() &&
		p.Goal.IsValid() &&
		p.WeeklyFrequency >= 1 && p.WeeklyFrequency <= 6
}
