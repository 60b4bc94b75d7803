package engine

import (
	"sort"
	"strings"

	"github.com/mfalmeida/ironplan/internal/models"
)

// injuryGroupExclusions maps an injury keyword found in the profile's
// free-text injury list to the muscle groups that must not be loaded. These
// exclusions are structural and are never relaxed.
var injuryGroupExclusions = map[string][]models.MuscleGroup{
	"knee":       {models.Quadriceps, models.Hamstrings, models.Calves},
	"shoulder":   {models.Shoulders, models.Chest, models.Triceps},
	"spine":      {models.Back, models.Hamstrings, models.Core},
	"lower back": {models.Back, models.Hamstrings, models.Core},
	"wrist":      {models.Biceps, models.Triceps, models.Shoulders},
	"ankle":      {models.Calves, models.Quadriceps, models.Hamstrings},
}

// homeExcludedEquipment is gear assumed unavailable outside a gym.
var homeExcludedEquipment = map[string]bool{
	"machine":       true,
	"cable":         true,
	"smith machine": true,
}

// allowedDifficulty lists the exercise tiers visible to each experience level.
var allowedDifficulty = map[models.Experience][]models.Experience{
	models.Beginner:     {models.Beginner},
	models.Intermediate: {models.Beginner, models.Intermediate},
	models.Advanced:     {models.Beginner, models.Intermediate, models.Advanced},
}

// GroupPick is the selector's result for one muscle group. Principal is nil
// when every relaxation step still left no candidates.
type GroupPick struct {
	Group       models.MuscleGroup
	Principal   *models.Exercise
	Accessory   *models.Exercise
	Relaxations []string
}

// Selector picks concrete exercises for a split day's groups.
type Selector struct {
	// RedundancyLimit rejects an accessory whose name similarity to the
	// principal is at or above this value.
	RedundancyLimit float64
}

// filters is one relaxation stage: which optional constraints still apply.
type filters struct {
	location   bool
	difficulty bool
	injuryText bool
}

// relaxationStages is the fixed order constraints are given up in. The
// structural injury-to-group exclusion never appears here.
var relaxationStages = []struct {
	name string
	f    filters
}{
	{"none", filters{location: true, difficulty: true, injuryText: true}},
	{"location", filters{difficulty: true, injuryText: true}},
	{"difficulty", filters{injuryText: true}},
	{"injury-text", filters{}},
}

// ForGroups selects a principal (and, where possible, a distinct accessory)
// for each requested group. Groups blocked by an injury exclusion are
// skipped silently; groups with no candidates after full relaxation come
// back with a nil Principal so the caller can warn. When no group at all can
// be served the error names them.
func (s Selector) ForGroups(catalog []models.Exercise, profile models.UserProfile, groups []models.MuscleGroup) ([]GroupPick, error) {
	excluded := excludedGroups(profile.Injuries)
	injuryWords := injuryTextWords(profile.Injuries)

	var picks []GroupPick
	var starved []models.MuscleGroup
	served := false

	for _, group := range groups {
		if excluded[group] {
			continue
		}
		pick := s.pickForGroup(catalog, profile, group, injuryWords)
		if pick.Principal == nil {
			starved = append(starved, group)
		} else {
			served = true
		}
		picks = append(picks, pick)
	}

	if !served && len(starved) > 0 {
		return nil, &NoExercisesError{Groups: starved}
	}
	return picks, nil
}

func (s Selector) pickForGroup(catalog []models.Exercise, profile models.UserProfile, group models.MuscleGroup, injuryWords []string) GroupPick {
	pick := GroupPick{Group: group}

	for i, stage := range relaxationStages {
		candidates := filterCandidates(catalog, profile, group, injuryWords, stage.f)
		if len(candidates) == 0 {
			continue
		}
		for _, prior := range relaxationStages[1 : i+1] {
			pick.Relaxations = append(pick.Relaxations, prior.name)
		}
		pick.Principal, pick.Accessory = s.choose(candidates)
		return pick
	}
	return pick
}

func filterCandidates(catalog []models.Exercise, profile models.UserProfile, group models.MuscleGroup, injuryWords []string, f filters) []models.Exercise {
	var out []models.Exercise
	for _, ex := range catalog {
		if !ex.Active || ex.MuscleGroup != group {
			continue
		}
		if f.location && profile.Location == models.LocationHome && !availableAtHome(ex.Equipment) {
			continue
		}
		if f.difficulty && !difficultyAllowed(profile.Experience, ex.Difficulty) {
			continue
		}
		if f.injuryText && nameMatchesInjury(ex.Name, injuryWords) {
			continue
		}
		out = append(out, ex)
	}
	// Name order keeps selection deterministic regardless of catalog order.
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// choose picks a compound-preferred principal, then the first candidate that
// is not redundant with it as accessory, isolation moves first.
func (s Selector) choose(candidates []models.Exercise) (*models.Exercise, *models.Exercise) {
	principal := &candidates[0]
	for i := range candidates {
		if IsCompound(candidates[i]) {
			principal = &candidates[i]
			break
		}
	}

	var accessory *models.Exercise
	for pass := 0; pass < 2 && accessory == nil; pass++ {
		for i := range candidates {
			c := &candidates[i]
			if c.ID == principal.ID {
				continue
			}
			if pass == 0 && IsCompound(*c) {
				continue // prefer an isolation accessory first
			}
			if NameSimilarity(principal.Name, c.Name) >= s.RedundancyLimit {
				continue
			}
			accessory = c
			break
		}
	}
	return principal, accessory
}

func excludedGroups(injuries []string) map[models.MuscleGroup]bool {
	out := map[models.MuscleGroup]bool{}
	for _, injury := range injuries {
		norm := normalizeName(injury)
		for keyword, groups := range injuryGroupExclusions {
			if strings.Contains(norm, keyword) {
				for _, g := range groups {
					out[g] = true
				}
			}
		}
	}
	return out
}

// injuryTextWords collects the significant words of the injury descriptions
// that are not already covered by the structural keyword map, for the
// relaxable name-match filter.
func injuryTextWords(injuries []string) []string {
	var out []string
	for _, injury := range injuries {
		for w := range significantWords(normalizeName(injury)) {
			if _, structural := injuryGroupExclusions[w]; structural {
				continue
			}
			out = append(out, w)
		}
	}
	sort.Strings(out)
	return out
}

func nameMatchesInjury(name string, words []string) bool {
	if len(words) == 0 {
		return false
	}
	norm := normalizeName(name)
	for _, w := range words {
		if strings.Contains(norm, w) {
			return true
		}
	}
	return false
}

func availableAtHome(equipment []string) bool {
	for _, tag := range equipment {
		if homeExcludedEquipment[normalizeName(tag)] {
			return false
		}
	}
	return true
}

func difficultyAllowed(exp models.Experience, difficulty models.Experience) bool {
	tiers, ok := allowedDifficulty[exp]
	if !ok {
		tiers = allowedDifficulty[models.Intermediate]
	}
	for _, t := range tiers {
		if t == difficulty {
			return true
		}
	}
	return false
}
