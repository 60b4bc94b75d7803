package engine

import (
	"math"
	"testing"

	"github.com/mfalmeida/ironplan/internal/models"
)

// TestNameSimilarity covers equality, containment, word overlap, and the
// accent-insensitive comparison.
func TestNameSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want float64
	}{
		{"identical", "Bench Press", "Bench Press", 1.0},
		{"case and accent insensitive", "Elevação Lateral", "elevacao lateral", 1.0},
		{"containment scores by length ratio", "Bench Press", "Incline Bench Press", 11.0 / 19.0},
		{"shared words", "Dumbbell Bench Press", "Dumbbell Shoulder Press", 2.0 / 3.0},
		{"no overlap", "Squat", "Curl", 0.0},
		{"short words ignored", "DB Fly", "DB Curl", 0.0},
		{"empty name", "", "Squat", 0.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NameSimilarity(tt.a, tt.b)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("NameSimilarity(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

// TestNameSimilaritySymmetric verifies the score does not depend on argument order.
func TestNameSimilaritySymmetric(t *testing.T) {
	pairs := [][2]string{
		{"Bench Press", "Incline Bench Press"},
		{"Leg Curl", "Leg Extension"},
		{"Squat", "Front Squat"},
	}
	for _, p := range pairs {
		ab := NameSimilarity(p[0], p[1])
		ba := NameSimilarity(p[1], p[0])
		if math.Abs(ab-ba) > 1e-9 {
			t.Errorf("similarity(%q,%q)=%v but reversed=%v", p[0], p[1], ab, ba)
		}
	}
}

// TestIsCompound covers keyword matches, isolation exceptions, synergist
// counting, and body-weight staples.
func TestIsCompound(t *testing.T) {
	tests := []struct {
		name string
		ex   models.Exercise
		want bool
	}{
		{
			"barbell squat by keyword",
			models.Exercise{Name: "Barbell Back Squat", Equipment: []string{"barbell"}},
			true,
		},
		{
			"bench press by keyword",
			models.Exercise{Name: "Bench Press", Equipment: []string{"barbell"}},
			true,
		},
		{
			"fly is isolation despite press-like name",
			models.Exercise{Name: "Chest Fly Press Machine", Equipment: []string{"machine"}},
			false,
		},
		{
			"lateral raise is isolation",
			models.Exercise{Name: "Lateral Raise", Equipment: []string{"dumbbell"}},
			false,
		},
		{
			"two synergists make it compound",
			models.Exercise{
				Name:       "Cable Crossover Complex",
				Equipment:  []string{"cable"},
				Synergists: []models.MuscleGroup{models.Shoulders, models.Triceps},
			},
			true,
		},
		{
			"bodyweight pull up",
			models.Exercise{Name: "Pull Up"},
			true,
		},
		{
			"bicep curl is isolation",
			models.Exercise{Name: "Dumbbell Bicep Curl", Equipment: []string{"dumbbell"}},
			false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsCompound(tt.ex); got != tt.want {
				t.Errorf("IsCompound(%q) = %v, want %v", tt.ex.Name, got, tt.want)
			}
		})
	}
}
