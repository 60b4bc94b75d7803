package engine

import (
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/mfalmeida/ironplan/internal/models"
)

func ex(name string, group models.MuscleGroup, difficulty models.Experience, equipment ...string) models.Exercise {
	return models.Exercise{
		ID:          uuid.NewSHA1(uuid.NameSpaceOID, []byte(name)),
		Name:        name,
		MuscleGroup: group,
		Difficulty:  difficulty,
		Equipment:   equipment,
		Active:      true,
	}
}

func testCatalog() []models.Exercise {
	return []models.Exercise{
		ex("Bench Press", models.Chest, models.Beginner, "barbell", "bench"),
		ex("Incline Dumbbell Press", models.Chest, models.Intermediate, "dumbbell", "bench"),
		ex("Chest Fly", models.Chest, models.Beginner, "machine"),
		ex("Push Up", models.Chest, models.Beginner),
		ex("Barbell Row", models.Back, models.Beginner, "barbell"),
		ex("Lat Pulldown", models.Back, models.Beginner, "machine"),
		ex("Pull Up", models.Back, models.Intermediate),
		ex("Overhead Press", models.Shoulders, models.Intermediate, "barbell"),
		ex("Lateral Raise", models.Shoulders, models.Beginner, "dumbbell"),
		ex("Barbell Back Squat", models.Quadriceps, models.Intermediate, "barbell", "rack"),
		ex("Leg Extension", models.Quadriceps, models.Beginner, "machine"),
		ex("Romanian Deadlift", models.Hamstrings, models.Intermediate, "barbell"),
		ex("Leg Curl", models.Hamstrings, models.Beginner, "machine"),
		ex("Standing Calf Raise", models.Calves, models.Beginner, "machine"),
		ex("Dumbbell Curl", models.Biceps, models.Beginner, "dumbbell"),
		ex("Cable Pushdown", models.Triceps, models.Beginner, "cable"),
		ex("Plank", models.Core, models.Beginner, "mat"),
	}
}

func selector() Selector { return Selector{RedundancyLimit: 0.7} }

// TestSelectorPicksCompoundPrincipal verifies the principal slot prefers a
// multi-joint movement and the accessory is a distinct isolation move.
func TestSelectorPicksCompoundPrincipal(t *testing.T) {
	p := gymProfile(models.Intermediate, 80)
	picks, err := selector().ForGroups(testCatalog(), p, []models.MuscleGroup{models.Chest})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(picks) != 1 {
		t.Fatalf("picks = %d, want 1", len(picks))
	}
	pick := picks[0]
	if pick.Principal == nil || !IsCompound(*pick.Principal) {
		t.Fatalf("principal = %+v, want a compound movement", pick.Principal)
	}
	if pick.Accessory == nil {
		t.Fatal("expected an accessory")
	}
	if pick.Accessory.ID == pick.Principal.ID {
		t.Fatal("accessory must differ from principal")
	}
	if sim := NameSimilarity(pick.Principal.Name, pick.Accessory.Name); sim >= 0.7 {
		t.Errorf("accessory %q too similar to principal %q (%v)", pick.Accessory.Name, pick.Principal.Name, sim)
	}
}

// TestSelectorDeterministic verifies catalog order does not change the picks.
func TestSelectorDeterministic(t *testing.T) {
	p := gymProfile(models.Intermediate, 80)
	cat := testCatalog()
	first, err := selector().ForGroups(cat, p, []models.MuscleGroup{models.Back, models.Chest})
	if err != nil {
		t.Fatal(err)
	}
	// Reverse the catalog and run again.
	rev := make([]models.Exercise, len(cat))
	for i := range cat {
		rev[len(cat)-1-i] = cat[i]
	}
	second, err := selector().ForGroups(rev, p, []models.MuscleGroup{models.Back, models.Chest})
	if err != nil {
		t.Fatal(err)
	}
	for i := range first {
		if first[i].Principal.ID != second[i].Principal.ID {
			t.Errorf("group %s principal changed with catalog order", first[i].Group)
		}
	}
}

// TestSelectorInjuryExclusion verifies that injured groups are skipped and
// never relaxed back in.
func TestSelectorInjuryExclusion(t *testing.T) {
	p := gymProfile(models.Intermediate, 80)
	p.Injuries = []string{"knee tendinitis"}
	picks, err := selector().ForGroups(testCatalog(), p,
		[]models.MuscleGroup{models.Quadriceps, models.Hamstrings, models.Chest})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, pick := range picks {
		if pick.Group == models.Quadriceps || pick.Group == models.Hamstrings {
			t.Errorf("group %s should have been excluded for a knee injury", pick.Group)
		}
	}
	if len(picks) != 1 || picks[0].Group != models.Chest {
		t.Fatalf("picks = %+v, want chest only", picks)
	}
}

// TestSelectorHomeLocation verifies gym-only equipment is filtered at home,
// and that the location constraint is relaxed when it starves a group.
func TestSelectorHomeLocation(t *testing.T) {
	p := gymProfile(models.Intermediate, 80)
	p.Location = models.LocationHome

	picks, err := selector().ForGroups(testCatalog(), p, []models.MuscleGroup{models.Triceps})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// The only triceps entry is on a cable stack, so the location filter had
	// to be relaxed to serve the group.
	pick := picks[0]
	if pick.Principal == nil || pick.Principal.Name != "Cable Pushdown" {
		t.Fatalf("principal = %+v, want Cable Pushdown via relaxation", pick.Principal)
	}
	if len(pick.Relaxations) == 0 || pick.Relaxations[0] != "location" {
		t.Errorf("relaxations = %v, want location first", pick.Relaxations)
	}

	// Calves at home: same situation, machine only.
	picks, err = selector().ForGroups(testCatalog(), p, []models.MuscleGroup{models.Calves})
	if err != nil {
		t.Fatal(err)
	}
	if picks[0].Principal == nil {
		t.Fatal("expected a principal after relaxation")
	}

	// Chest at home: enough home-friendly entries, no relaxation.
	picks, err = selector().ForGroups(testCatalog(), p, []models.MuscleGroup{models.Chest})
	if err != nil {
		t.Fatal(err)
	}
	if len(picks[0].Relaxations) != 0 {
		t.Errorf("relaxations = %v, want none", picks[0].Relaxations)
	}
	for _, got := range []*models.Exercise{picks[0].Principal, picks[0].Accessory} {
		if got != nil && !availableAtHome(got.Equipment) {
			t.Errorf("%q uses gym-only equipment despite home candidates", got.Name)
		}
	}
}

// TestSelectorDifficultyRelaxation verifies a beginner starved of
// beginner-rated entries is served after dropping the difficulty filter.
func TestSelectorDifficultyRelaxation(t *testing.T) {
	p := gymProfile(models.Beginner, 80)
	picks, err := selector().ForGroups(testCatalog(), p, []models.MuscleGroup{models.Hamstrings})
	if err != nil {
		t.Fatal(err)
	}
	// Leg Curl is beginner-rated, so no relaxation needed.
	if got := picks[0].Principal; got == nil {
		t.Fatal("expected a principal")
	}
	if len(picks[0].Relaxations) != 0 {
		t.Errorf("relaxations = %v, want none", picks[0].Relaxations)
	}

	// Overhead Press is the only shoulders compound and is
	// intermediate-rated; a beginner still gets the beginner isolation.
	picks, err = selector().ForGroups(testCatalog(), p, []models.MuscleGroup{models.Shoulders})
	if err != nil {
		t.Fatal(err)
	}
	if got := picks[0].Principal.Name; got != "Lateral Raise" {
		t.Errorf("principal = %q, want the beginner-visible entry", got)
	}
}

// TestSelectorNoCandidates verifies the starved-group error carries the
// group names when nothing can be served.
func TestSelectorNoCandidates(t *testing.T) {
	p := gymProfile(models.Intermediate, 80)
	_, err := selector().ForGroups(testCatalog(), p, []models.MuscleGroup{"forearms"})
	var noEx *NoExercisesError
	if !errors.As(err, &noEx) {
		t.Fatalf("error = %v, want NoExercisesError", err)
	}
	if len(noEx.Groups) != 1 || noEx.Groups[0] != "forearms" {
		t.Errorf("starved groups = %v, want [forearms]", noEx.Groups)
	}
}

// TestSelectorPartialGap verifies that one starved group among served ones
// comes back as a nil principal, not an error.
func TestSelectorPartialGap(t *testing.T) {
	p := gymProfile(models.Intermediate, 80)
	picks, err := selector().ForGroups(testCatalog(), p, []models.MuscleGroup{models.Chest, "forearms"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(picks) != 2 {
		t.Fatalf("picks = %d, want 2", len(picks))
	}
	if picks[0].Principal == nil {
		t.Error("chest should be served")
	}
	if picks[1].Principal != nil {
		t.Error("forearms should be a gap")
	}
}

// TestSelectorInactiveExcluded verifies inactive catalog entries never appear.
func TestSelectorInactiveExcluded(t *testing.T) {
	inactive := ex("Decline Press", models.Chest, models.Beginner, "barbell")
	inactive.Active = false
	cat := append(testCatalog(), inactive)
	p := gymProfile(models.Intermediate, 80)
	picks, err := selector().ForGroups(cat, p, []models.MuscleGroup{models.Chest})
	if err != nil {
		t.Fatal(err)
	}
	for _, got := range []*models.Exercise{picks[0].Principal, picks[0].Accessory} {
		if got != nil && got.Name == "Decline Press" {
			t.Error("inactive exercise was selected")
		}
	}
}
