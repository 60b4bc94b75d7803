package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/mfalmeida/ironplan/internal/models"
)

// PersistSession stores a session and its prescriptions in one transaction.
func (db *DB) PersistSession(ctx context.Context, session models.WorkoutSession) error {
	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	warnings := session.Warnings
	if warnings == nil {
		warnings = []string{}
	}
	_, err = tx.Exec(ctx,
		`INSERT INTO workout_sessions
		   (id, user_id, session_date, split_label, division, completed, estimated_minutes, warnings, created_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		session.ID, session.UserID, session.Date, session.SplitLabel, session.Division,
		session.Completed, session.EstimatedMinutes, warnings, session.CreatedAt)
	if err != nil {
		return fmt.Errorf("inserting session: %w", err)
	}

	if len(session.Exercises) > 0 {
		query := `INSERT INTO session_exercises
			(id, session_id, exercise_id, exercise_name, muscle_group, role, order_index,
			 sets, rep_range, target_rpe, rest_seconds, load_kg, completed, feedback, reported_rpe, adjustment_taken) VALUES `
		args := make([]any, 0, len(session.Exercises)*16)
		valueStrings := make([]string, 0, len(session.Exercises))
		for i, p := range session.Exercises {
			base := i * 16
			placeholders := make([]string, 16)
			for j := range placeholders {
				placeholders[j] = fmt.Sprintf("$%d", base+j+1)
			}
			valueStrings = append(valueStrings, "("+strings.Join(placeholders, ",")+")")
			args = append(args, p.ID, session.ID, p.ExerciseID, p.ExerciseName, p.MuscleGroup,
				p.Role, p.OrderIndex, p.Sets, p.RepRange, p.TargetRPE, p.RestSeconds,
				p.LoadKg, p.Completed, p.Feedback, p.ReportedRPE, p.AdjustmentTaken)
		}
		if _, err := tx.Exec(ctx, query+strings.Join(valueStrings, ","), args...); err != nil {
			return fmt.Errorf("inserting session exercises: %w", err)
		}
	}

	return tx.Commit(ctx)
}

// FetchSessionsBetween retrieves sessions (with prescriptions) in a closed
// date range, oldest first.
func (db *DB) FetchSessionsBetween(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]models.WorkoutSession, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT id, user_id, session_date, split_label, division, completed, estimated_minutes, warnings, created_at
		 FROM workout_sessions
		 WHERE user_id = $1 AND session_date >= $2 AND session_date <= $3
		 ORDER BY session_date`,
		userID, from, to)
	if err != nil {
		return nil, fmt.Errorf("querying sessions: %w", err)
	}
	defer rows.Close()

	sessions, err := scanSessions(rows)
	if err != nil {
		return nil, err
	}
	return db.attachExercises(ctx, sessions)
}

// GetSession retrieves one session with its prescriptions.
func (db *DB) GetSession(ctx context.Context, sessionID uuid.UUID) (models.WorkoutSession, error) {
	row := db.Pool.QueryRow(ctx,
		`SELECT id, user_id, session_date, split_label, division, completed, estimated_minutes, warnings, created_at
		 FROM workout_sessions WHERE id = $1`, sessionID)
	s, err := scanSession(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.WorkoutSession{}, fmt.Errorf("session %s: %w", sessionID, ErrNotFound)
	}
	if err != nil {
		return models.WorkoutSession{}, err
	}
	attached, err := db.attachExercises(ctx, []models.WorkoutSession{s})
	if err != nil {
		return models.WorkoutSession{}, err
	}
	return attached[0], nil
}

// FetchPriorSessionCount counts valid sessions strictly before a date. A
// session is valid when it contains at least one strength prescription; the
// count drives the split rotation, so warm-up-only shells must not advance
// the cycle.
func (db *DB) FetchPriorSessionCount(ctx context.Context, userID uuid.UUID, before time.Time) (int, error) {
	var n int
	err := db.Pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM workout_sessions s
		 WHERE s.user_id = $1 AND s.session_date < $2
		   AND EXISTS (
		     SELECT 1 FROM session_exercises e
		     WHERE e.session_id = s.id AND e.role IN ('principal','accessory')
		   )`,
		userID, before).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting prior sessions: %w", err)
	}
	return n, nil
}

// FetchFirstSessionDate returns the user's earliest session date, or nil
// with no history.
func (db *DB) FetchFirstSessionDate(ctx context.Context, userID uuid.UUID) (*time.Time, error) {
	var first *time.Time
	err := db.Pool.QueryRow(ctx,
		`SELECT MIN(session_date) FROM workout_sessions WHERE user_id = $1`, userID).Scan(&first)
	if err != nil {
		return nil, fmt.Errorf("querying first session date: %w", err)
	}
	return first, nil
}

// DeleteSessionsOnOrAfter removes a user's sessions from a date forward.
// Prescriptions go with them via the cascade.
func (db *DB) DeleteSessionsOnOrAfter(ctx context.Context, userID uuid.UUID, date time.Time) error {
	_, err := db.Pool.Exec(ctx,
		`DELETE FROM workout_sessions WHERE user_id = $1 AND session_date >= $2`,
		userID, date)
	if err != nil {
		return fmt.Errorf("deleting sessions: %w", err)
	}
	return nil
}

// SessionStats summarizes a user's sessions over a date range.
type SessionStats struct {
	Planned   int `json:"planned"`
	Completed int `json:"completed"`
}

// GetSessionStats counts planned and completed sessions in a closed range.
func (db *DB) GetSessionStats(ctx context.Context, userID uuid.UUID, from, to time.Time) (SessionStats, error) {
	var stats SessionStats
	err := db.Pool.QueryRow(ctx,
		`SELECT COUNT(*), COUNT(*) FILTER (WHERE completed)
		 FROM workout_sessions
		 WHERE user_id = $1 AND session_date >= $2 AND session_date <= $3`,
		userID, from, to).Scan(&stats.Planned, &stats.Completed)
	if err != nil {
		return SessionStats{}, fmt.Errorf("querying session stats: %w", err)
	}
	return stats, nil
}

func scanSession(row pgx.Row) (models.WorkoutSession, error) {
	var s models.WorkoutSession
	if err := row.Scan(&s.ID, &s.UserID, &s.Date, &s.SplitLabel, &s.Division,
		&s.Completed, &s.EstimatedMinutes, &s.Warnings, &s.CreatedAt); err != nil {
		return models.WorkoutSession{}, err
	}
	return s, nil
}

func scanSessions(rows pgx.Rows) ([]models.WorkoutSession, error) {
	var out []models.WorkoutSession
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning session: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// attachExercises loads prescriptions for a batch of sessions in one query.
func (db *DB) attachExercises(ctx context.Context, sessions []models.WorkoutSession) ([]models.WorkoutSession, error) {
	if len(sessions) == 0 {
		return sessions, nil
	}
	ids := make([]uuid.UUID, len(sessions))
	index := make(map[uuid.UUID]int, len(sessions))
	for i, s := range sessions {
		ids[i] = s.ID
		index[s.ID] = i
	}

	rows, err := db.Pool.Query(ctx,
		`SELECT id, session_id, exercise_id, exercise_name, muscle_group, role, order_index,
		   sets, rep_range, target_rpe, rest_seconds, load_kg, completed, feedback, reported_rpe, adjustment_taken
		 FROM session_exercises
		 WHERE session_id = ANY($1)
		 ORDER BY session_id, order_index`, ids)
	if err != nil {
		return nil, fmt.Errorf("querying session exercises: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var p models.Prescription
		if err := rows.Scan(&p.ID, &p.SessionID, &p.ExerciseID, &p.ExerciseName, &p.MuscleGroup,
			&p.Role, &p.OrderIndex, &p.Sets, &p.RepRange, &p.TargetRPE, &p.RestSeconds,
			&p.LoadKg, &p.Completed, &p.Feedback, &p.ReportedRPE, &p.AdjustmentTaken); err != nil {
			return nil, fmt.Errorf("scanning prescription: %w", err)
		}
		i, ok := index[p.SessionID]
		if !ok {
			continue
		}
		sessions[i].Exercises = append(sessions[i].Exercises, p)
	}
	return sessions, rows.Err()
}
