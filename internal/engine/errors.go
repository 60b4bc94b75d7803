package engine

import (
	"errors"
	"fmt"

	"github.com/mfalmeida/ironplan/internal/models"
)

// ErrProfileIncomplete means the user profile lacks a field the planner needs.
var ErrProfileIncomplete = errors.New("user profile incomplete")

// ErrUnknownEquipment means an exercise carries an equipment tag outside the
// increment table. The table is meant to be exhaustive over the catalog, so
// this is a configuration problem, not a user error.
var ErrUnknownEquipment = errors.New("unknown equipment tag")

// NoExercisesError is returned when, even after every relaxation step, no
// candidate exercise exists for one or more requested muscle groups.
type NoExercisesError struct {
	Groups []models.MuscleGroup
}

func (e *NoExercisesError) Error() string {
	return fmt.Sprintf("no exercises available for groups %v", e.Groups)
}
