package storage

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/mfalmeida/ironplan/internal/models"
)

// FetchProgressionRecord returns the latest recorded outcome for a (user,
// exercise, split label) tuple, or nil with no history. The label scope
// keeps feedback given on one split day from steering another day that
// happens to prescribe the same exercise.
func (db *DB) FetchProgressionRecord(ctx context.Context, userID, exerciseID uuid.UUID, splitLabel string) (*models.ProgressionRecord, error) {
	var rec models.ProgressionRecord
	err := db.Pool.QueryRow(ctx,
		`SELECT user_id, exercise_id, split_label, load_kg, sets, reps, feedback, rpe, recorded_at
		 FROM progression_records
		 WHERE user_id = $1 AND exercise_id = $2 AND split_label = $3
		 ORDER BY recorded_at DESC, prescription_id DESC
		 LIMIT 1`,
		userID, exerciseID, splitLabel).
		Scan(&rec.UserID, &rec.ExerciseID, &rec.SplitLabel, &rec.LoadKg, &rec.Sets, &rec.Reps,
			&rec.Feedback, &rec.RPE, &rec.RecordedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying progression record: %w", err)
	}
	return &rec, nil
}

// FetchLatestProgression returns the newest recorded outcome for an exercise
// across all split labels, or nil with no history.
func (db *DB) FetchLatestProgression(ctx context.Context, userID, exerciseID uuid.UUID) (*models.ProgressionRecord, error) {
	var rec models.ProgressionRecord
	err := db.Pool.QueryRow(ctx,
		`SELECT user_id, exercise_id, split_label, load_kg, sets, reps, feedback, rpe, recorded_at
		 FROM progression_records
		 WHERE user_id = $1 AND exercise_id = $2
		 ORDER BY recorded_at DESC, prescription_id DESC
		 LIMIT 1`,
		userID, exerciseID).
		Scan(&rec.UserID, &rec.ExerciseID, &rec.SplitLabel, &rec.LoadKg, &rec.Sets, &rec.Reps,
			&rec.Feedback, &rec.RPE, &rec.RecordedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying latest progression: %w", err)
	}
	return &rec, nil
}

// RecordCompletion marks a prescription complete with either qualitative
// feedback or a legacy RPE (setting one clears the other), appends the
// progression record in the same transaction, and flags the session complete
// once every strength prescription is done. The record row is keyed by the
// prescription, so re-running with the same inputs converges to the same
// stored state and ClearCompletion can take back exactly this write.
func (db *DB) RecordCompletion(ctx context.Context, prescriptionID uuid.UUID, feedback *models.Feedback, rpe *int) (models.Prescription, error) {
	if feedback != nil && rpe != nil {
		return models.Prescription{}, errors.New("feedback and rpe are mutually exclusive")
	}

	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return models.Prescription{}, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var p models.Prescription
	var userID uuid.UUID
	var splitLabel string
	err = tx.QueryRow(ctx,
		`SELECT e.id, e.session_id, e.exercise_id, e.exercise_name, e.muscle_group, e.role, e.order_index,
		   e.sets, e.rep_range, e.target_rpe, e.rest_seconds, e.load_kg, s.user_id, s.split_label
		 FROM session_exercises e
		 JOIN workout_sessions s ON s.id = e.session_id
		 WHERE e.id = $1
		 FOR UPDATE`, prescriptionID).
		Scan(&p.ID, &p.SessionID, &p.ExerciseID, &p.ExerciseName, &p.MuscleGroup, &p.Role,
			&p.OrderIndex, &p.Sets, &p.RepRange, &p.TargetRPE, &p.RestSeconds, &p.LoadKg, &userID, &splitLabel)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Prescription{}, fmt.Errorf("prescription %s: %w", prescriptionID, ErrNotFound)
	}
	if err != nil {
		return models.Prescription{}, fmt.Errorf("loading prescription: %w", err)
	}

	if _, err := tx.Exec(ctx,
		`UPDATE session_exercises
		 SET completed = TRUE, feedback = $2, reported_rpe = $3, adjustment_taken = FALSE
		 WHERE id = $1`,
		prescriptionID, feedback, rpe); err != nil {
		return models.Prescription{}, fmt.Errorf("marking complete: %w", err)
	}

	if p.Role == models.RolePrincipal || p.Role == models.RoleAccessory {
		if _, err := tx.Exec(ctx,
			`INSERT INTO progression_records (prescription_id, user_id, exercise_id, split_label, load_kg, sets, reps, feedback, rpe, recorded_at)
			 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,now())
			 ON CONFLICT (prescription_id) DO UPDATE SET
			   load_kg = EXCLUDED.load_kg,
			   sets = EXCLUDED.sets,
			   reps = EXCLUDED.reps,
			   feedback = EXCLUDED.feedback,
			   rpe = EXCLUDED.rpe,
			   recorded_at = now()`,
			prescriptionID, userID, p.ExerciseID, splitLabel, p.LoadKg, p.Sets, upperReps(p.RepRange), feedback, rpe); err != nil {
			return models.Prescription{}, fmt.Errorf("recording progression: %w", err)
		}
	}

	// A session is complete when no strength prescription remains open.
	if _, err := tx.Exec(ctx,
		`UPDATE workout_sessions SET completed = NOT EXISTS (
		   SELECT 1 FROM session_exercises
		   WHERE session_id = $1 AND role IN ('principal','accessory') AND NOT completed
		 ) WHERE id = $1`, p.SessionID); err != nil {
		return models.Prescription{}, fmt.Errorf("updating session completion: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return models.Prescription{}, fmt.Errorf("committing completion: %w", err)
	}

	p.Completed = true
	p.Feedback = feedback
	p.ReportedRPE = rpe
	return p, nil
}

// ClearCompletion unmarks a prescription, wiping its feedback, RPE, and
// applied-adjustment flag, deletes the progression record that completion
// wrote so the withdrawn feedback no longer drives the next prescription,
// and reopens the session.
func (db *DB) ClearCompletion(ctx context.Context, prescriptionID uuid.UUID) error {
	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var sessionID uuid.UUID
	err = tx.QueryRow(ctx,
		`UPDATE session_exercises
		 SET completed = FALSE, feedback = NULL, reported_rpe = NULL, adjustment_taken = FALSE
		 WHERE id = $1
		 RETURNING session_id`, prescriptionID).Scan(&sessionID)
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("prescription %s: %w", prescriptionID, ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("unmarking prescription: %w", err)
	}

	if _, err := tx.Exec(ctx,
		`DELETE FROM progression_records WHERE prescription_id = $1`, prescriptionID); err != nil {
		return fmt.Errorf("withdrawing progression record: %w", err)
	}

	if _, err := tx.Exec(ctx,
		`UPDATE workout_sessions SET completed = FALSE WHERE id = $1`, sessionID); err != nil {
		return fmt.Errorf("reopening session: %w", err)
	}
	return tx.Commit(ctx)
}

// upperReps parses the top of a rep range ("8-12" -> 12, "10" -> 10) for the
// progression record. Timed ranges fall back to zero.
func upperReps(repRange string) int {
	s := strings.TrimSpace(repRange)
	if i := strings.LastIndex(s, "-"); i >= 0 {
		s = s[i+1:]
	}
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0
	}
	return n
}
