package models

import (
	"time"

	"github.com/google/uuid"
)

// SplitDay is the planner's answer for one cycle position: which label the
// day carries and which muscle groups it trains.
type SplitDay struct {
	Label  string        `json:"label"`
	Groups []MuscleGroup `json:"groups"`
}

// WorkoutSession is one generated training day.
type WorkoutSession struct {
	ID               uuid.UUID      `json:"id"`
	UserID           uuid.UUID      `json:"userId"`
	Date             time.Time      `json:"date"`
	SplitLabel       string         `json:"splitLabel"`
	Division         string         `json:"division"` // e.g. "A-B-C"
	Completed        bool           `json:"completed"`
	EstimatedMinutes int            `json:"estimatedMinutes"`
	Warnings         []string       `json:"warnings,omitempty"`
	Exercises        []Prescription `json:"exercises"`
	CreatedAt        time.Time      `json:"createdAt"`
}

// Prescription is one exercise slot within a session.
type Prescription struct {
	ID           uuid.UUID   `json:"id"`
	SessionID    uuid.UUID   `json:"sessionId"`
	ExerciseID   uuid.UUID   `json:"exerciseId"`
	ExerciseName string      `json:"exerciseName"`
	MuscleGroup  MuscleGroup `json:"muscleGroup"`
	Role         SlotRole    `json:"role"`
	OrderIndex   int         `json:"orderIndex"`
	Sets         int         `json:"sets"`
	RepRange     string      `json:"repRange"`
	TargetRPE    int         `json:"targetRpe"`
	RestSeconds  int         `json:"restSeconds"`
	LoadKg       *float64    `json:"loadKg,omitempty"`

	Completed       bool      `json:"completed"`
	Feedback        *Feedback `json:"feedback,omitempty"`
	ReportedRPE     *int      `json:"reportedRpe,omitempty"`
	AdjustmentTaken bool      `json:"adjustmentTaken"`
}

// ProgressionRecord is one completed outcome for a (user, exercise, split
// label) tuple. Completion appends records; feedback interpretation reads
// the latest one for the split day being planned.
type ProgressionRecord struct {
	UserID     uuid.UUID `json:"userId"`
	ExerciseID uuid.UUID `json:"exerciseId"`
	SplitLabel string    `json:"splitLabel"`
	LoadKg     *float64  `json:"loadKg,omitempty"`
	Sets       int       `json:"sets"`
	Reps       int       `json:"reps"`
	Feedback   *Feedback `json:"feedback,omitempty"`
	RPE        *int      `json:"rpe,omitempty"`
	RecordedAt time.Time `json:"recordedAt"`
}

// Adjustment is the interpreter's verdict on what the next prescription for
// an exercise should move, relative to the prior record.
type Adjustment struct {
	Kind   AdjustmentKind `json:"kind"`
	LoadKg *float64       `json:"loadKg,omitempty"`
	Sets   int            `json:"sets,omitempty"`
	Reps   int            `json:"reps,omitempty"`
	Reason string         `json:"reason"`
}
