package engine

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/mfalmeida/ironplan/internal/models"
)

// fakeRepo is an in-memory Repository for engine tests.
type fakeRepo struct {
	catalog     []models.Exercise
	profiles    map[uuid.UUID]models.UserProfile
	progression map[string]models.ProgressionRecord
	sessions    []models.WorkoutSession
}

func newFakeRepo(profile models.UserProfile) *fakeRepo {
	pool, stretch := auxEntries()
	catalog := append(testCatalog(), pool...)
	catalog = append(catalog, stretch)
	return &fakeRepo{
		catalog:     catalog,
		profiles:    map[uuid.UUID]models.UserProfile{profile.UserID: profile},
		progression: map[string]models.ProgressionRecord{},
	}
}

func progressionKey(userID, exerciseID uuid.UUID, splitLabel string) string {
	return userID.String() + "|" + exerciseID.String() + "|" + splitLabel
}

func (f *fakeRepo) FetchExercises(_ context.Context, groups []models.MuscleGroup, activeOnly bool) ([]models.Exercise, error) {
	want := map[models.MuscleGroup]bool{}
	for _, g := range groups {
		want[g] = true
	}
	var out []models.Exercise
	for _, ex := range f.catalog {
		if !want[ex.MuscleGroup] {
			continue
		}
		if activeOnly && !ex.Active {
			continue
		}
		out = append(out, ex)
	}
	return out, nil
}

func (f *fakeRepo) FetchUserProfile(_ context.Context, userID uuid.UUID) (models.UserProfile, error) {
	p, ok := f.profiles[userID]
	if !ok {
		return models.UserProfile{}, fmt.Errorf("profile %s not found", userID)
	}
	return p, nil
}

func (f *fakeRepo) FetchProgressionRecord(_ context.Context, userID, exerciseID uuid.UUID, splitLabel string) (*models.ProgressionRecord, error) {
	rec, ok := f.progression[progressionKey(userID, exerciseID, splitLabel)]
	if !ok {
		return nil, nil
	}
	return &rec, nil
}

func hasStrength(s models.WorkoutSession) bool {
	for _, p := range s.Exercises {
		if p.Role == models.RolePrincipal || p.Role == models.RoleAccessory {
			return true
		}
	}
	return false
}

func (f *fakeRepo) FetchPriorSessionCount(_ context.Context, userID uuid.UUID, before time.Time) (int, error) {
	n := 0
	for _, s := range f.sessions {
		if s.UserID == userID && s.Date.Before(before) && hasStrength(s) {
			n++
		}
	}
	return n, nil
}

func (f *fakeRepo) FetchFirstSessionDate(_ context.Context, userID uuid.UUID) (*time.Time, error) {
	var first *time.Time
	for _, s := range f.sessions {
		if s.UserID != userID {
			continue
		}
		d := s.Date
		if first == nil || d.Before(*first) {
			first = &d
		}
	}
	return first, nil
}

func (f *fakeRepo) FetchSessionsBetween(_ context.Context, userID uuid.UUID, from, to time.Time) ([]models.WorkoutSession, error) {
	var out []models.WorkoutSession
	for _, s := range f.sessions {
		if s.UserID == userID && !s.Date.Before(from) && !s.Date.After(to) {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeRepo) PersistSession(_ context.Context, session models.WorkoutSession) error {
	f.sessions = append(f.sessions, session)
	return nil
}

func (f *fakeRepo) DeleteSessionsOnOrAfter(_ context.Context, userID uuid.UUID, date time.Time) error {
	var kept []models.WorkoutSession
	for _, s := range f.sessions {
		if s.UserID == userID && !s.Date.Before(date) {
			continue
		}
		kept = append(kept, s)
	}
	f.sessions = kept
	return nil
}

func testGenerator(repo Repository) *Generator {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewGenerator(repo, DefaultConfig(), log)
}

var monday = time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC) // a Monday

// TestGenerateSessionEndToEnd generates a first session for a beginner and
// checks structure, prescriptions, and first-week load easing.
func TestGenerateSessionEndToEnd(t *testing.T) {
	p := gymProfile(models.Beginner, 80)
	p.UserID = uuid.New()
	p.WeeklyFrequency = 2
	repo := newFakeRepo(p)
	gen := testGenerator(repo)

	session, err := gen.GenerateSession(context.Background(), p.UserID, monday)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if session.SplitLabel != "A" {
		t.Errorf("split label = %q, want A (upper body)", session.SplitLabel)
	}
	if session.Division != "A-B" {
		t.Errorf("division = %q, want A-B", session.Division)
	}
	if len(session.Exercises) < 3 {
		t.Fatalf("exercise count = %d, want at least cardio + strength + stretch", len(session.Exercises))
	}
	if session.Exercises[0].Role != models.RoleCardio {
		t.Error("first slot is not cardio")
	}
	if session.Exercises[len(session.Exercises)-1].Role != models.RoleStretch {
		t.Error("last slot is not the stretch")
	}

	for _, pr := range session.Exercises {
		if pr.Role != models.RolePrincipal && pr.Role != models.RoleAccessory {
			continue
		}
		if pr.Sets != 3 || pr.RepRange != "10-12" || pr.RestSeconds != 90 || pr.TargetRPE != 7 {
			t.Errorf("%s prescription = %+v, want beginner hypertrophy parameters", pr.ExerciseName, pr)
		}
		if pr.ExerciseName == "Bench Press" {
			// 80kg * 0.35 = 28 -> barbell step 30 -> eased 22.5 -> 20 on the 5kg step
			if pr.LoadKg == nil || math.Abs(*pr.LoadKg-20) > 1e-9 {
				t.Errorf("bench load = %v, want 20 after first-week easing", fmtPtr(pr.LoadKg))
			}
		}
	}
	if session.EstimatedMinutes <= 32 {
		t.Errorf("estimated minutes = %d, want more than the fixed slots alone", session.EstimatedMinutes)
	}
	if len(repo.sessions) != 1 {
		t.Fatalf("persisted sessions = %d, want 1", len(repo.sessions))
	}
}

// TestFirstWeekLoadsMatchEquipmentStep verifies every eased load in a
// first-week session still lands on its exercise's equipment increment, not
// on the configured default.
func TestFirstWeekLoadsMatchEquipmentStep(t *testing.T) {
	p := gymProfile(models.Beginner, 80)
	p.UserID = uuid.New()
	p.WeeklyFrequency = 2
	repo := newFakeRepo(p)
	gen := testGenerator(repo)

	session, err := gen.GenerateSession(context.Background(), p.UserID, monday)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	steps := map[string]float64{}
	for _, ex := range repo.catalog {
		if step, loadless, err := Increment(ex.Equipment); err == nil && !loadless {
			steps[ex.Name] = step
		}
	}
	checked := 0
	for _, pr := range session.Exercises {
		if pr.LoadKg == nil {
			continue
		}
		step := steps[pr.ExerciseName]
		if step <= 0 {
			t.Fatalf("%s has a load but no equipment step", pr.ExerciseName)
		}
		rem := math.Mod(*pr.LoadKg, step)
		if math.Abs(rem) > 1e-9 && math.Abs(rem-step) > 1e-9 {
			t.Errorf("%s load %.2f is not a multiple of its %.1fkg step", pr.ExerciseName, *pr.LoadKg, step)
		}
		checked++
	}
	if checked == 0 {
		t.Fatal("session carried no loaded prescriptions to check")
	}
}

// TestGenerateSessionIdempotent verifies a second call for the same date
// returns the stored session without writing again.
func TestGenerateSessionIdempotent(t *testing.T) {
	p := gymProfile(models.Intermediate, 80)
	p.UserID = uuid.New()
	repo := newFakeRepo(p)
	gen := testGenerator(repo)

	first, err := gen.GenerateSession(context.Background(), p.UserID, monday)
	if err != nil {
		t.Fatal(err)
	}
	second, err := gen.GenerateSession(context.Background(), p.UserID, monday)
	if err != nil {
		t.Fatal(err)
	}
	if first.ID != second.ID {
		t.Error("second generation replaced an up-to-date session")
	}
	if len(repo.sessions) != 1 {
		t.Errorf("persisted sessions = %d, want 1", len(repo.sessions))
	}
}

// TestGenerateSessionReplacesStale verifies a stored session with an
// outdated split label is deleted and rebuilt.
func TestGenerateSessionReplacesStale(t *testing.T) {
	p := gymProfile(models.Intermediate, 80)
	p.UserID = uuid.New()
	repo := newFakeRepo(p)
	gen := testGenerator(repo)

	first, err := gen.GenerateSession(context.Background(), p.UserID, monday)
	if err != nil {
		t.Fatal(err)
	}
	repo.sessions[0].SplitLabel = "Z"

	rebuilt, err := gen.GenerateSession(context.Background(), p.UserID, monday)
	if err != nil {
		t.Fatal(err)
	}
	if rebuilt.ID == first.ID {
		t.Error("stale session was not replaced")
	}
	if rebuilt.SplitLabel != first.SplitLabel {
		t.Errorf("rebuilt label = %q, want %q", rebuilt.SplitLabel, first.SplitLabel)
	}
	if len(repo.sessions) != 1 {
		t.Errorf("persisted sessions = %d, want 1", len(repo.sessions))
	}
}

// TestGenerateSessionUsesProgression verifies a prior record drives the next
// load through feedback interpretation.
func TestGenerateSessionUsesProgression(t *testing.T) {
	p := gymProfile(models.Intermediate, 80)
	p.Goal = models.GoalStrength
	p.UserID = uuid.New()
	p.WeeklyFrequency = 3
	repo := newFakeRepo(p)
	gen := testGenerator(repo)

	// An old session well outside the first-week window.
	old := monday.AddDate(0, 0, -30)
	repo.sessions = append(repo.sessions, models.WorkoutSession{
		ID: uuid.New(), UserID: p.UserID, Date: old, SplitLabel: "A",
		Exercises: []models.Prescription{{Role: models.RolePrincipal, MuscleGroup: models.Quadriceps}},
	})

	var bench models.Exercise
	for _, ex := range repo.catalog {
		if ex.Name == "Bench Press" {
			bench = ex
		}
	}
	repo.progression[progressionKey(p.UserID, bench.ID, "B")] = models.ProgressionRecord{
		UserID: p.UserID, ExerciseID: bench.ID, SplitLabel: "B",
		LoadKg: ptr(100.0), Sets: 4, Reps: 5,
		Feedback: fb(models.FeedbackTooEasy), RecordedAt: old,
	}

	// Cycle 1 of the intermediate split is push day B, which includes chest.
	session, err := gen.GenerateSession(context.Background(), p.UserID, monday)
	if err != nil {
		t.Fatal(err)
	}
	var got *float64
	for _, pr := range session.Exercises {
		if pr.ExerciseName == "Bench Press" {
			got = pr.LoadKg
		}
	}
	if got == nil || math.Abs(*got-110) > 1e-9 {
		t.Errorf("bench load = %v, want 110 from too-easy strength feedback", fmtPtr(got))
	}
}

// TestProgressionScopedToSplitDay verifies history recorded under one split
// label does not steer the same exercise when another day prescribes it: the
// planner falls back to the initial estimate.
func TestProgressionScopedToSplitDay(t *testing.T) {
	p := gymProfile(models.Intermediate, 80)
	p.Goal = models.GoalStrength
	p.UserID = uuid.New()
	p.WeeklyFrequency = 3
	repo := newFakeRepo(p)
	gen := testGenerator(repo)

	old := monday.AddDate(0, 0, -30)
	repo.sessions = append(repo.sessions, models.WorkoutSession{
		ID: uuid.New(), UserID: p.UserID, Date: old, SplitLabel: "A",
		Exercises: []models.Prescription{{Role: models.RolePrincipal, MuscleGroup: models.Quadriceps}},
	})

	var bench models.Exercise
	for _, ex := range repo.catalog {
		if ex.Name == "Bench Press" {
			bench = ex
		}
	}
	// History filed under day A; the generated session is push day B.
	repo.progression[progressionKey(p.UserID, bench.ID, "A")] = models.ProgressionRecord{
		UserID: p.UserID, ExerciseID: bench.ID, SplitLabel: "A",
		LoadKg: ptr(100.0), Sets: 4, Reps: 5,
		Feedback: fb(models.FeedbackTooEasy), RecordedAt: old,
	}

	session, err := gen.GenerateSession(context.Background(), p.UserID, monday)
	if err != nil {
		t.Fatal(err)
	}
	var got *float64
	for _, pr := range session.Exercises {
		if pr.ExerciseName == "Bench Press" {
			got = pr.LoadKg
		}
	}
	// Intermediate estimate: 80kg * 0.50 = 40 on the barbell step.
	if got == nil || math.Abs(*got-40) > 1e-9 {
		t.Errorf("bench load = %v, want the 40kg initial estimate, not day-A history", fmtPtr(got))
	}
}

// TestGenerateHorizon builds two weeks for an intermediate three-day split
// and checks the training-day placement and label rotation.
func TestGenerateHorizon(t *testing.T) {
	p := gymProfile(models.Intermediate, 80)
	p.UserID = uuid.New()
	repo := newFakeRepo(p)
	gen := testGenerator(repo)

	result, err := gen.GenerateHorizon(context.Background(), p.UserID, monday, 14)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Generated != 6 || result.Kept != 0 {
		t.Fatalf("generated/kept = %d/%d, want 6/0", result.Generated, result.Kept)
	}

	wantLabels := []string{"A", "B", "C", "A", "B", "C"}
	wantDays := []time.Weekday{time.Monday, time.Wednesday, time.Friday, time.Monday, time.Wednesday, time.Friday}
	for i, s := range result.Sessions {
		if s.SplitLabel != wantLabels[i] {
			t.Errorf("session %d label = %q, want %q", i, s.SplitLabel, wantLabels[i])
		}
		if s.Date.Weekday() != wantDays[i] {
			t.Errorf("session %d on %v, want %v", i, s.Date.Weekday(), wantDays[i])
		}
	}
}

// TestGenerateHorizonIdempotent verifies a second run keeps everything and
// writes nothing.
func TestGenerateHorizonIdempotent(t *testing.T) {
	p := gymProfile(models.Intermediate, 80)
	p.UserID = uuid.New()
	repo := newFakeRepo(p)
	gen := testGenerator(repo)

	first, err := gen.GenerateHorizon(context.Background(), p.UserID, monday, 14)
	if err != nil {
		t.Fatal(err)
	}
	second, err := gen.GenerateHorizon(context.Background(), p.UserID, monday, 14)
	if err != nil {
		t.Fatal(err)
	}
	if second.Generated != 0 || second.Kept != first.Generated {
		t.Fatalf("second run generated/kept = %d/%d, want 0/%d", second.Generated, second.Kept, first.Generated)
	}
	for i := range first.Sessions {
		if first.Sessions[i].ID != second.Sessions[i].ID {
			t.Errorf("session %d was rebuilt on an idempotent rerun", i)
		}
	}
}

// TestGenerateHorizonHealsStaleTail verifies that a stale label mid-horizon
// clears that date and everything after it, then rebuilds forward.
func TestGenerateHorizonHealsStaleTail(t *testing.T) {
	p := gymProfile(models.Intermediate, 80)
	p.UserID = uuid.New()
	repo := newFakeRepo(p)
	gen := testGenerator(repo)

	if _, err := gen.GenerateHorizon(context.Background(), p.UserID, monday, 14); err != nil {
		t.Fatal(err)
	}
	// Corrupt the third stored session's label.
	repo.sessions[2].SplitLabel = "Z"

	result, err := gen.GenerateHorizon(context.Background(), p.UserID, monday, 14)
	if err != nil {
		t.Fatal(err)
	}
	if result.Kept != 2 {
		t.Errorf("kept = %d, want the 2 sessions before the stale one", result.Kept)
	}
	if result.Generated != 4 {
		t.Errorf("generated = %d, want the stale session and the 3 after it", result.Generated)
	}
	wantLabels := []string{"A", "B", "C", "A", "B", "C"}
	for i, s := range result.Sessions {
		if s.SplitLabel != wantLabels[i] {
			t.Errorf("session %d label = %q, want %q", i, s.SplitLabel, wantLabels[i])
		}
	}
}

// TestShiftRepRange checks range arithmetic for rep-based progressions.
func TestShiftRepRange(t *testing.T) {
	tests := []struct {
		name  string
		rng   string
		delta int
		want  string
	}{
		{"range up", "10-12", 2, "12-14"},
		{"range down", "10-12", -2, "8-10"},
		{"floors at one rep", "1-3", -2, "1-1"},
		{"single value", "10", 2, "12"},
		{"no change", "8-12", 0, "8-12"},
		{"timed range unchanged", "20-30 min", 2, "20-30 min"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := shiftRepRange(tt.rng, tt.delta); got != tt.want {
				t.Errorf("shiftRepRange(%q, %d) = %q, want %q", tt.rng, tt.delta, got, tt.want)
			}
		})
	}
}

// TestIsTrainingDay checks the frequency-to-weekday table.
func TestIsTrainingDay(t *testing.T) {
	tests := []struct {
		freq int
		day  time.Weekday
		want bool
	}{
		{1, time.Monday, true},
		{1, time.Thursday, false},
		{2, time.Thursday, true},
		{3, time.Wednesday, true},
		{3, time.Tuesday, false},
		{4, time.Tuesday, true},
		{4, time.Wednesday, false},
		{5, time.Friday, true},
		{5, time.Saturday, false},
		{6, time.Saturday, true},
		{6, time.Sunday, false},
		{9, time.Wednesday, true}, // unknown frequency falls back to three days
	}
	for _, tt := range tests {
		if got := IsTrainingDay(tt.freq, tt.day); got != tt.want {
			t.Errorf("IsTrainingDay(%d, %v) = %v, want %v", tt.freq, tt.day, got, tt.want)
		}
	}
}
