package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/mfalmeida/ironplan/internal/models"
	"github.com/mfalmeida/ironplan/internal/storage"
)

// Stats tracks seed import progress.
type Stats struct {
	RowsRead int
	Imported int
	Skipped  int

	UnknownGroups []string
}

// Importer reads an exercise catalog export (SQLite) and upserts it into the
// main database.
type Importer struct {
	db     *storage.DB
	log    *slog.Logger
	dryRun bool
	stats  Stats
}

// New creates a new Importer.
func New(db *storage.DB, log *slog.Logger, dryRun bool) *Importer {
	return &Importer{db: db, log: log, dryRun: dryRun}
}

// Import processes every row of the export's exercises table. Rows with an
// unknown muscle group are skipped and reported rather than failing the run,
// so a partially dirty export still seeds everything usable.
func (imp *Importer) Import(ctx context.Context, seedPath string) (*Stats, error) {
	src, err := sql.Open("sqlite", seedPath+"?mode=ro")
	if err != nil {
		return &imp.stats, fmt.Errorf("opening seed db: %w", err)
	}
	defer src.Close()

	rows, err := src.QueryContext(ctx,
		`SELECT name, muscle_group, synergists, equipment, difficulty, suggested_load, active
		 FROM exercises ORDER BY name`)
	if err != nil {
		return &imp.stats, fmt.Errorf("querying seed exercises: %w", err)
	}
	defer rows.Close()

	unknownSet := map[string]bool{}

	for rows.Next() {
		var (
			name, group, difficulty string
			synergists, equipment   sql.NullString
			suggestedLoad           sql.NullFloat64
			active                  sql.NullBool
		)
		if err := rows.Scan(&name, &group, &synergists, &equipment, &difficulty, &suggestedLoad, &active); err != nil {
			return &imp.stats, fmt.Errorf("scanning seed row: %w", err)
		}
		imp.stats.RowsRead++

		ex, err := buildEntry(name, group, synergists.String, equipment.String, difficulty)
		if err != nil {
			imp.stats.Skipped++
			if !unknownSet[group] {
				imp.stats.UnknownGroups = append(imp.stats.UnknownGroups, group)
				unknownSet[group] = true
			}
			imp.log.Warn("skipping seed row", "exercise", name, "error", err)
			continue
		}
		if suggestedLoad.Valid && suggestedLoad.Float64 > 0 {
			ex.SuggestedLoad = &suggestedLoad.Float64
		}
		ex.Active = !active.Valid || active.Bool

		if imp.dryRun {
			imp.stats.Imported++
			continue
		}
		if _, err := imp.db.UpsertExercise(ctx, ex); err != nil {
			return &imp.stats, fmt.Errorf("upserting %q: %w", ex.Name, err)
		}
		imp.stats.Imported++
	}
	if err := rows.Err(); err != nil {
		return &imp.stats, fmt.Errorf("reading seed rows: %w", err)
	}

	return &imp.stats, nil
}

// buildEntry validates and converts one seed row into a catalog entry.
func buildEntry(name, group, synergists, equipment, difficulty string) (models.Exercise, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.Exercise{}, fmt.Errorf("empty exercise name")
	}

	mg := models.MuscleGroup(strings.ToLower(strings.TrimSpace(group)))
	if !mg.IsValid() {
		return models.Exercise{}, fmt.Errorf("unknown muscle group %q", group)
	}

	ex := models.Exercise{
		Name:        name,
		MuscleGroup: mg,
		Equipment:   splitList(equipment),
		Difficulty:  normalizeDifficulty(difficulty),
	}
	for _, s := range splitList(synergists) {
		sg := models.MuscleGroup(s)
		if sg.IsValid() {
			ex.Synergists = append(ex.Synergists, sg)
		}
	}
	return ex, nil
}

// splitList parses the export's delimited text columns. Both comma and
// semicolon separators appear in the wild.
func splitList(raw string) []string {
	raw = strings.ReplaceAll(raw, ";", ",")
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.ToLower(strings.TrimSpace(part)); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// normalizeDifficulty maps free-form difficulty text onto the three tiers,
// defaulting unknown values to beginner so the entry stays visible to everyone.
func normalizeDifficulty(raw string) models.Experience {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case string(models.Advanced), "expert", "hard":
		return models.Advanced
	case string(models.Intermediate), "medium", "moderate":
		return models.Intermediate
	default:
		return models.Beginner
	}
}
