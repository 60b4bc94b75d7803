package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/mfalmeida/ironplan/internal/models"
)

// FetchExercises retrieves catalog entries for the given muscle groups. An
// empty group list returns the whole catalog.
func (db *DB) FetchExercises(ctx context.Context, groups []models.MuscleGroup, activeOnly bool) ([]models.Exercise, error) {
	query := `SELECT id, name, muscle_group, synergists, equipment, difficulty, suggested_load_kg, active
		 FROM exercises`
	var args []any
	where := ""
	if len(groups) > 0 {
		names := make([]string, len(groups))
		for i, g := range groups {
			names[i] = string(g)
		}
		args = append(args, names)
		where = fmt.Sprintf(" WHERE muscle_group = ANY($%d)", len(args))
	}
	if activeOnly {
		if where == "" {
			where = " WHERE active"
		} else {
			where += " AND active"
		}
	}
	rows, err := db.Pool.Query(ctx, query+where+" ORDER BY name", args...)
	if err != nil {
		return nil, fmt.Errorf("querying exercises: %w", err)
	}
	defer rows.Close()

	var out []models.Exercise
	for rows.Next() {
		var ex models.Exercise
		var synergists, equipment []string
		if err := rows.Scan(&ex.ID, &ex.Name, &ex.MuscleGroup, &synergists, &equipment,
			&ex.Difficulty, &ex.SuggestedLoad, &ex.Active); err != nil {
			return nil, fmt.Errorf("scanning exercise: %w", err)
		}
		for _, s := range synergists {
			ex.Synergists = append(ex.Synergists, models.MuscleGroup(s))
		}
		ex.Equipment = equipment
		out = append(out, ex)
	}
	return out, rows.Err()
}

// FetchExerciseByName looks up a single catalog entry by exact name.
func (db *DB) FetchExerciseByName(ctx context.Context, name string) (models.Exercise, error) {
	var ex models.Exercise
	var synergists, equipment []string
	err := db.Pool.QueryRow(ctx,
		`SELECT id, name, muscle_group, synergists, equipment, difficulty, suggested_load_kg, active
		 FROM exercises WHERE name = $1`, name).
		Scan(&ex.ID, &ex.Name, &ex.MuscleGroup, &synergists, &equipment,
			&ex.Difficulty, &ex.SuggestedLoad, &ex.Active)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Exercise{}, fmt.Errorf("exercise %q: %w", name, ErrNotFound)
	}
	if err != nil {
		return models.Exercise{}, fmt.Errorf("querying exercise %q: %w", name, err)
	}
	for _, s := range synergists {
		ex.Synergists = append(ex.Synergists, models.MuscleGroup(s))
	}
	ex.Equipment = equipment
	return ex, nil
}

// UpsertExercise inserts a catalog entry or updates it by name. Returns the
// stored ID.
func (db *DB) UpsertExercise(ctx context.Context, ex models.Exercise) (uuid.UUID, error) {
	if ex.ID == uuid.Nil {
		ex.ID = uuid.New()
	}
	synergists := make([]string, len(ex.Synergists))
	for i, s := range ex.Synergists {
		synergists[i] = string(s)
	}
	var id uuid.UUID
	err := db.Pool.QueryRow(ctx,
		`INSERT INTO exercises (id, name, muscle_group, synergists, equipment, difficulty, suggested_load_kg, active)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		 ON CONFLICT (name) DO UPDATE SET
		   muscle_group = EXCLUDED.muscle_group,
		   synergists = EXCLUDED.synergists,
		   equipment = EXCLUDED.equipment,
		   difficulty = EXCLUDED.difficulty,
		   suggested_load_kg = EXCLUDED.suggested_load_kg,
		   active = EXCLUDED.active
		 RETURNING id`,
		ex.ID, ex.Name, ex.MuscleGroup, synergists, ex.Equipment,
		ex.Difficulty, ex.SuggestedLoad, ex.Active).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("upserting exercise %q: %w", ex.Name, err)
	}
	return id, nil
}

// auxiliaryCatalog is the fixed set of warm-up and cool-down entries every
// deployment needs: the cardio rotation pool and the canonical stretch.
var auxiliaryCatalog = []models.Exercise{
	{Name: "Treadmill", MuscleGroup: models.Cardio, Difficulty: models.Beginner, Active: true},
	{Name: "Stationary Bike", MuscleGroup: models.Cardio, Difficulty: models.Beginner, Active: true},
	{Name: "Elliptical", MuscleGroup: models.Cardio, Difficulty: models.Beginner, Active: true},
	{Name: "Stair Climber", MuscleGroup: models.Cardio, Difficulty: models.Beginner, Active: true},
	{Name: "General Stretching", MuscleGroup: models.Flexibility, Difficulty: models.Beginner, Active: true},
}

// EnsureAuxiliaryExercises creates the cardio pool and stretch entry if they
// are missing. Safe to run at every startup.
func (db *DB) EnsureAuxiliaryExercises(ctx context.Context) error {
	for _, ex := range auxiliaryCatalog {
		if _, err := db.Pool.Exec(ctx,
			`INSERT INTO exercises (id, name, muscle_group, difficulty, active)
			 VALUES ($1,$2,$3,$4,TRUE)
			 ON CONFLICT (name) DO NOTHING`,
			uuid.New(), ex.Name, ex.MuscleGroup, ex.Difficulty); err != nil {
			return fmt.Errorf("ensuring %q: %w", ex.Name, err)
		}
	}
	return nil
}
