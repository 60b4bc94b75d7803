package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mfalmeida/ironplan/internal/models"
)

// Repository is the storage surface the engine plans against.
type Repository interface {
	FetchExercises(ctx context.Context, groups []models.MuscleGroup, activeOnly bool) ([]models.Exercise, error)
	FetchUserProfile(ctx context.Context, userID uuid.UUID) (models.UserProfile, error)
	FetchProgressionRecord(ctx context.Context, userID, exerciseID uuid.UUID, splitLabel string) (*models.ProgressionRecord, error)
	FetchPriorSessionCount(ctx context.Context, userID uuid.UUID, before time.Time) (int, error)
	FetchFirstSessionDate(ctx context.Context, userID uuid.UUID) (*time.Time, error)
	FetchSessionsBetween(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]models.WorkoutSession, error)
	PersistSession(ctx context.Context, session models.WorkoutSession) error
	DeleteSessionsOnOrAfter(ctx context.Context, userID uuid.UUID, date time.Time) error
}

// Config carries the planning policy knobs. Defaults match DefaultConfig.
type Config struct {
	HorizonDays         int
	AvailableMinutes    int
	DefaultIncrementKg  float64
	FirstWeekWindowDays int
	FirstWeekLoadFactor float64
	RedundancyLimit     float64
	RedundancyWarn      float64
}

func DefaultConfig() Config {
	return Config{
		HorizonDays:         30,
		AvailableMinutes:    60,
		DefaultIncrementKg:  2.5,
		FirstWeekWindowDays: 7,
		FirstWeekLoadFactor: 0.75,
		RedundancyLimit:     0.7,
		RedundancyWarn:      0.8,
	}
}

// Generator plans and persists workout sessions.
type Generator struct {
	repo Repository
	cfg  Config
	sel  Selector
	log  *slog.Logger
}

func NewGenerator(repo Repository, cfg Config, log *slog.Logger) *Generator {
	return &Generator{
		repo: repo,
		cfg:  cfg,
		sel:  Selector{RedundancyLimit: cfg.RedundancyLimit},
		log:  log.With("component", "engine"),
	}
}

// GenerateSession plans, builds, and persists the session for a single date.
// The cycle position comes from the user's prior valid session count, so the
// call is idempotent: an existing session with the expected label is
// returned untouched, a stale one is cleared and rebuilt.
func (g *Generator) GenerateSession(ctx context.Context, userID uuid.UUID, date time.Time) (models.WorkoutSession, error) {
	profile, err := g.repo.FetchUserProfile(ctx, userID)
	if err != nil {
		return models.WorkoutSession{}, fmt.Errorf("fetching profile: %w", err)
	}
	cycle, err := g.repo.FetchPriorSessionCount(ctx, userID, startOfDay(date))
	if err != nil {
		return models.WorkoutSession{}, fmt.Errorf("counting prior sessions: %w", err)
	}

	day, err := PlanDay(profile, cycle)
	if err != nil {
		return models.WorkoutSession{}, err
	}

	existing, err := g.repo.FetchSessionsBetween(ctx, userID, startOfDay(date), startOfDay(date))
	if err != nil {
		return models.WorkoutSession{}, fmt.Errorf("checking existing session: %w", err)
	}
	if len(existing) > 0 {
		if existing[0].SplitLabel == day.Label && len(existing[0].Exercises) > 0 {
			return existing[0], nil
		}
		if err := g.repo.DeleteSessionsOnOrAfter(ctx, userID, startOfDay(date)); err != nil {
			return models.WorkoutSession{}, fmt.Errorf("clearing stale sessions: %w", err)
		}
		g.log.Info("stale session replaced", "user", userID, "date", date.Format("2006-01-02"),
			"had", existing[0].SplitLabel, "want", day.Label)
	}

	session, err := g.buildSession(ctx, profile, day, date)
	if err != nil {
		return models.WorkoutSession{}, err
	}
	if err := g.repo.PersistSession(ctx, session); err != nil {
		return models.WorkoutSession{}, fmt.Errorf("persisting session: %w", err)
	}
	return session, nil
}

// buildSession runs selection, load resolution, and assembly without
// touching stored sessions.
func (g *Generator) buildSession(ctx context.Context, profile models.UserProfile, day models.SplitDay, date time.Time) (models.WorkoutSession, error) {
	if !profile.Complete() {
		return models.WorkoutSession{}, ErrProfileIncomplete
	}

	catalog, err := g.repo.FetchExercises(ctx, day.Groups, true)
	if err != nil {
		return models.WorkoutSession{}, fmt.Errorf("fetching catalog: %w", err)
	}
	picks, err := g.sel.ForGroups(catalog, profile, day.Groups)
	if err != nil {
		return models.WorkoutSession{}, err
	}

	var gapWarnings []string
	for _, pick := range picks {
		if pick.Principal == nil {
			gapWarnings = append(gapWarnings, fmt.Sprintf("no exercise available for %s", pick.Group))
		}
		for _, relaxed := range pick.Relaxations {
			gapWarnings = append(gapWarnings, fmt.Sprintf("relaxed %s filter for %s", relaxed, pick.Group))
		}
	}

	firstWeek, err := g.inFirstWeek(ctx, profile.UserID, date)
	if err != nil {
		return models.WorkoutSession{}, err
	}

	slots, loadWarnings, err := g.resolveSlots(ctx, profile, day.Label, picks, firstWeek)
	if err != nil {
		return models.WorkoutSession{}, err
	}

	cardioPool, stretch, err := g.auxiliaryEntries(ctx)
	if err != nil {
		return models.WorkoutSession{}, err
	}

	session, err := Assemble(profile, day, date, slots, cardioPool, stretch, g.cfg.RedundancyWarn)
	if err != nil {
		return models.WorkoutSession{}, err
	}
	session.Warnings = append(session.Warnings, gapWarnings...)
	session.Warnings = append(session.Warnings, loadWarnings...)
	return session, nil
}

// resolveSlots turns group picks into ordered strength slots within the time
// budget: every group's principal first claims a slot, then accessories fill
// what remains, emitted group-contiguous.
func (g *Generator) resolveSlots(ctx context.Context, profile models.UserProfile, label string, picks []GroupPick, firstWeek bool) ([]StrengthSlot, []string, error) {
	minutes := profile.AvailableMinutes
	if minutes <= 0 {
		minutes = g.cfg.AvailableMinutes
	}
	budget := MaxStrengthExercises(minutes)

	principals := 0
	for _, pick := range picks {
		if pick.Principal != nil {
			principals++
		}
	}
	accessoryBudget := budget - principals
	params := TrainingParams(profile)

	var slots []StrengthSlot
	var warnings []string
	emitted := 0
	for _, pick := range picks {
		if pick.Principal == nil {
			continue
		}
		if emitted >= budget {
			warnings = append(warnings, fmt.Sprintf("time budget dropped %s", pick.Group))
			continue
		}
		slot, warn, err := g.resolveSlot(ctx, profile, label, *pick.Principal, models.RolePrincipal, params, firstWeek)
		if err != nil {
			return nil, nil, err
		}
		warnings = append(warnings, warn...)
		slots = append(slots, slot)
		emitted++

		if pick.Accessory != nil && accessoryBudget > 0 && emitted < budget {
			slot, warn, err := g.resolveSlot(ctx, profile, label, *pick.Accessory, models.RoleAccessory, params, firstWeek)
			if err != nil {
				return nil, nil, err
			}
			warnings = append(warnings, warn...)
			slots = append(slots, slot)
			emitted++
			accessoryBudget--
		}
	}
	return slots, warnings, nil
}

// resolveSlot settles one exercise's prescription: the prior progression
// record for this split day wins, otherwise an initial estimate; first-week
// easing applies last.
func (g *Generator) resolveSlot(ctx context.Context, profile models.UserProfile, label string, ex models.Exercise, role models.SlotRole, params Params, firstWeek bool) (StrengthSlot, []string, error) {
	slot := StrengthSlot{
		Exercise:    ex,
		Role:        role,
		Sets:        params.Sets,
		RepRange:    params.RepRange,
		TargetRPE:   params.TargetRPE,
		RestSeconds: params.RestSeconds,
	}
	var warnings []string

	step, loadless, err := Increment(ex.Equipment)
	if err != nil {
		// Equipment outside the increment table is a catalog configuration
		// problem; the slot goes out loadless rather than failing the session.
		warnings = append(warnings, fmt.Sprintf("no increment for %q: %v", ex.Name, err))
		return slot, warnings, nil
	}

	record, err := g.repo.FetchProgressionRecord(ctx, profile.UserID, ex.ID, label)
	if err != nil {
		return slot, nil, fmt.Errorf("fetching progression for %q: %w", ex.Name, err)
	}

	if record != nil {
		if step <= 0 {
			// A record can carry a load the exercise's current equipment
			// tags no longer explain; round it on the configured default.
			step = g.cfg.DefaultIncrementKg
		}
		adj := InterpretFeedback(*record, profile.Goal, step)
		switch adj.Kind {
		case models.AdjustLoad:
			slot.LoadKg = adj.LoadKg
		case models.AdjustSets:
			slot.Sets = adj.Sets
			slot.LoadKg = record.LoadKg
		case models.AdjustReps:
			slot.RepRange = shiftRepRange(params.RepRange, adj.Reps-record.Reps)
			slot.LoadKg = record.LoadKg
		}
	} else if !loadless {
		load, err := InitialLoad(profile, ex)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("no load estimate for %q: %v", ex.Name, err))
		} else {
			slot.LoadKg = load
		}
	}

	if firstWeek && slot.LoadKg != nil && *slot.LoadKg > 0 {
		eased := FirstWeekEase(*slot.LoadKg, g.cfg.FirstWeekLoadFactor, step)
		slot.LoadKg = &eased
	}
	return slot, warnings, nil
}

// shiftRepRange moves both ends of a rep range by delta, flooring at one
// rep. A malformed range comes back unchanged.
func shiftRepRange(repRange string, delta int) string {
	parts := strings.SplitN(strings.TrimSpace(repRange), "-", 2)
	lo, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return repRange
	}
	if lo += delta; lo < 1 {
		lo = 1
	}
	if len(parts) == 1 {
		return strconv.Itoa(lo)
	}
	hi, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return repRange
	}
	if hi += delta; hi < lo {
		hi = lo
	}
	return strconv.Itoa(lo) + "-" + strconv.Itoa(hi)
}

// inFirstWeek reports whether the date falls inside the configured easing
// window from the user's first session. No history at all counts as the
// first week.
func (g *Generator) inFirstWeek(ctx context.Context, userID uuid.UUID, date time.Time) (bool, error) {
	first, err := g.repo.FetchFirstSessionDate(ctx, userID)
	if err != nil {
		return false, fmt.Errorf("fetching first session date: %w", err)
	}
	if first == nil {
		return true, nil
	}
	window := time.Duration(g.cfg.FirstWeekWindowDays) * 24 * time.Hour
	return startOfDay(date).Sub(startOfDay(*first)) < window, nil
}

// auxiliaryEntries loads the cardio rotation pool and the canonical stretch
// entry from the catalog. Both are ensured at startup, so an empty result is
// a deployment error.
func (g *Generator) auxiliaryEntries(ctx context.Context) ([]models.Exercise, models.Exercise, error) {
	cardio, err := g.repo.FetchExercises(ctx, []models.MuscleGroup{models.Cardio}, true)
	if err != nil {
		return nil, models.Exercise{}, fmt.Errorf("fetching cardio pool: %w", err)
	}
	if len(cardio) == 0 {
		return nil, models.Exercise{}, errors.New("catalog has no cardio entries")
	}
	sort.Slice(cardio, func(i, j int) bool { return cardio[i].Name < cardio[j].Name })

	stretches, err := g.repo.FetchExercises(ctx, []models.MuscleGroup{models.Flexibility}, true)
	if err != nil {
		return nil, models.Exercise{}, fmt.Errorf("fetching stretch entry: %w", err)
	}
	if len(stretches) == 0 {
		return nil, models.Exercise{}, errors.New("catalog has no stretch entry")
	}
	sort.Slice(stretches, func(i, j int) bool { return stretches[i].Name < stretches[j].Name })
	return cardio, stretches[0], nil
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
