package engine

import (
	"reflect"
	"testing"

	"github.com/mfalmeida/ironplan/internal/models"
)

func profile(exp models.Experience, freq int) models.UserProfile {
	return models.UserProfile{
		Experience:      exp,
		Goal:            models.GoalHypertrophy,
		WeeklyFrequency: freq,
		Location:        models.LocationGym,
		BodyWeightKg:    80,
	}
}

// TestPlanDayRotations checks the label and group tables across tiers and
// frequencies, including the cycle-index wraparound.
func TestPlanDayRotations(t *testing.T) {
	tests := []struct {
		name       string
		exp        models.Experience
		freq       int
		cycle      int
		wantLabel  string
		wantGroups []models.MuscleGroup
	}{
		{
			name: "beginner single day is full body", exp: models.Beginner, freq: 1, cycle: 0,
			wantLabel: "A", wantGroups: models.MajorGroups,
		},
		{
			name: "beginner twice a week starts upper", exp: models.Beginner, freq: 2, cycle: 0,
			wantLabel:  "A",
			wantGroups: []models.MuscleGroup{models.Chest, models.Back, models.Shoulders, models.Biceps, models.Triceps},
		},
		{
			name: "beginner second day is lower", exp: models.Beginner, freq: 2, cycle: 1,
			wantLabel:  "B",
			wantGroups: []models.MuscleGroup{models.Quadriceps, models.Hamstrings, models.Calves},
		},
		{
			name: "beginner wraps back to upper", exp: models.Beginner, freq: 3, cycle: 4,
			wantLabel:  "A",
			wantGroups: []models.MuscleGroup{models.Chest, models.Back, models.Shoulders, models.Biceps, models.Triceps},
		},
		{
			name: "intermediate day A is legs", exp: models.Intermediate, freq: 3, cycle: 0,
			wantLabel:  "A",
			wantGroups: []models.MuscleGroup{models.Quadriceps, models.Hamstrings, models.Calves},
		},
		{
			name: "intermediate day B is push", exp: models.Intermediate, freq: 3, cycle: 1,
			wantLabel:  "B",
			wantGroups: []models.MuscleGroup{models.Chest, models.Shoulders, models.Triceps},
		},
		{
			name: "intermediate day C is pull plus core", exp: models.Intermediate, freq: 3, cycle: 5,
			wantLabel:  "C",
			wantGroups: []models.MuscleGroup{models.Back, models.Biceps, models.Core},
		},
		{
			name: "advanced five-way third day is legs", exp: models.Advanced, freq: 5, cycle: 2,
			wantLabel:  "C",
			wantGroups: []models.MuscleGroup{models.Quadriceps, models.Hamstrings, models.Calves},
		},
		{
			name: "advanced five-way arms day", exp: models.Advanced, freq: 5, cycle: 4,
			wantLabel:  "E",
			wantGroups: []models.MuscleGroup{models.Biceps, models.Triceps, models.Core},
		},
		{
			name: "advanced four-way shoulders day", exp: models.Advanced, freq: 4, cycle: 3,
			wantLabel:  "D",
			wantGroups: []models.MuscleGroup{models.Shoulders, models.Core},
		},
		{
			name: "advanced three-way is push pull legs", exp: models.Advanced, freq: 3, cycle: 0,
			wantLabel:  "A",
			wantGroups: []models.MuscleGroup{models.Chest, models.Shoulders, models.Triceps},
		},
		{
			name: "unrecognized experience falls back to three-way", exp: "elite", freq: 4, cycle: 1,
			wantLabel:  "B",
			wantGroups: []models.MuscleGroup{models.Chest, models.Shoulders, models.Triceps},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := PlanDay(profile(tt.exp, tt.freq), tt.cycle)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.Label != tt.wantLabel {
				t.Errorf("label = %q, want %q", got.Label, tt.wantLabel)
			}
			if !reflect.DeepEqual(got.Groups, tt.wantGroups) {
				t.Errorf("groups = %v, want %v", got.Groups, tt.wantGroups)
			}
		})
	}
}

// TestPlanDayDeterministic verifies the same inputs always give the same plan.
func TestPlanDayDeterministic(t *testing.T) {
	p := profile(models.Advanced, 5)
	first, err := PlanDay(p, 7)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 10; i++ {
		again, err := PlanDay(p, 7)
		if err != nil {
			t.Fatal(err)
		}
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("run %d: plan %v differs from %v", i, again, first)
		}
	}
}

// TestPlanDayIncompleteProfile verifies that a profile missing a goal is rejected.
func TestPlanDayIncompleteProfile(t *testing.T) {
	p := profile(models.Beginner, 3)
	p.Goal = ""
	if _, err := PlanDay(p, 0); err == nil {
		t.Fatal("expected error for incomplete profile")
	}
}

// TestPlanDayNegativeCycle verifies a negative cycle index is treated as zero
// rather than panicking on a negative modulus.
func TestPlanDayNegativeCycle(t *testing.T) {
	got, err := PlanDay(profile(models.Intermediate, 3), -2)
	if err != nil {
		t.Fatal(err)
	}
	if got.Label != "A" {
		t.Errorf("label = %q, want %q", got.Label, "A")
	}
}

// TestDivision checks the frequency-to-division label string.
func TestDivision(t *testing.T) {
	tests := []struct {
		freq int
		want string
	}{
		{1, "A"},
		{2, "A-B"},
		{3, "A-B-C"},
		{4, "A-B-C-D"},
		{5, "A-B-C-D-E"},
		{6, "A-B-C-D-E-F"},
		{0, "A-B-C"},
		{9, "A-B-C"},
	}
	for _, tt := range tests {
		if got := Division(tt.freq); got != tt.want {
			t.Errorf("Division(%d) = %q, want %q", tt.freq, got, tt.want)
		}
	}
}
