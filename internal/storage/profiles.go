package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/mfalmeida/ironplan/internal/models"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("not found")

// FetchUserProfile retrieves a user's planning profile.
func (db *DB) FetchUserProfile(ctx context.Context, userID uuid.UUID) (models.UserProfile, error) {
	var p models.UserProfile
	err := db.Pool.QueryRow(ctx,
		`SELECT user_id, experience, goal, weekly_frequency, location, body_weight_kg,
		   preferred_rpe, injuries, available_minutes
		 FROM user_profiles WHERE user_id = $1`, userID).
		Scan(&p.UserID, &p.Experience, &p.Goal, &p.WeeklyFrequency, &p.Location,
			&p.BodyWeightKg, &p.PreferredRPE, &p.Injuries, &p.AvailableMinutes)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.UserProfile{}, fmt.Errorf("profile %s: %w", userID, ErrNotFound)
	}
	if err != nil {
		return models.UserProfile{}, fmt.Errorf("querying profile: %w", err)
	}
	return p, nil
}

// UpsertUserProfile stores a user's planning profile.
func (db *DB) UpsertUserProfile(ctx context.Context, p models.UserProfile) error {
	_, err := db.Pool.Exec(ctx,
		`INSERT INTO user_profiles
		   (user_id, experience, goal, weekly_frequency, location, body_weight_kg,
		    preferred_rpe, injuries, available_minutes, updated_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,now())
		 ON CONFLICT (user_id) DO UPDATE SET
		   experience = EXCLUDED.experience,
		   goal = EXCLUDED.goal,
		   weekly_frequency = EXCLUDED.weekly_frequency,
		   location = EXCLUDED.location,
		   body_weight_kg = EXCLUDED.body_weight_kg,
		   preferred_rpe = EXCLUDED.preferred_rpe,
		   injuries = EXCLUDED.injuries,
		   available_minutes = EXCLUDED.available_minutes,
		   updated_at = now()`,
		p.UserID, p.Experience, p.Goal, p.WeeklyFrequency, p.Location,
		p.BodyWeightKg, p.PreferredRPE, p.Injuries, p.AvailableMinutes)
	if err != nil {
		return fmt.Errorf("upserting profile: %w", err)
	}
	return nil
}

// ListUserIDs returns every user with a stored profile, for the background
// horizon refresh.
func (db *DB) ListUserIDs(ctx context.Context) ([]uuid.UUID, error) {
	rows, err := db.Pool.Query(ctx, `SELECT user_id FROM user_profiles ORDER BY user_id`)
	if err != nil {
		return nil, fmt.Errorf("querying user ids: %w", err)
	}
	defer rows.Close()

	var out []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning user id: %w", err)
		}
		out = append(out, id)
	}
	return out, rows.Err()
}
