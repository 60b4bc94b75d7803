package models

// MuscleGroup identifies a trainable muscle group. The eight "major" groups
// drive split planning; Cardio and Flexibility exist only for the fixed
// warm-up and cool-down slots.
type MuscleGroup string

const (
	Chest       MuscleGroup = "chest"
	Back        MuscleGroup = "back"
	Shoulders   MuscleGroup = "shoulders"
	Biceps      MuscleGroup = "biceps"
	Triceps     MuscleGroup = "triceps"
	Quadriceps  MuscleGroup = "quadriceps"
	Hamstrings  MuscleGroup = "hamstrings"
	Calves      MuscleGroup = "calves"
	Core        MuscleGroup = "core"
	Cardio      MuscleGroup = "cardio"
	Flexibility MuscleGroup = "flexibility"
)

// MajorGroups lists the groups eligible for split planning, in canonical order.
var MajorGroups = []MuscleGroup{
	Chest, Back, Shoulders, Biceps, Triceps, Quadriceps, Hamstrings, Calves,
}

func (g MuscleGroup) IsValid() bool {
	switch g {
	case Chest, Back, Shoulders, Biceps, Triceps, Quadriceps, Hamstrings,
		Calves, Core, Cardio, Flexibility:
		return true
	}
	return false
}

// IsAuxiliary reports whether the group is a fixed warm-up/cool-down slot
// rather than a planned strength target.
func (g MuscleGroup) IsAuxiliary() bool {
	return g == Cardio || g == Flexibility
}

// Experience is the user's training tier. It doubles as an exercise
// difficulty rating in the catalog.
type Experience string

const (
	Beginner     Experience = "beginner"
	Intermediate Experience = "intermediate"
	Advanced     Experience = "advanced"
)

func (e Experience) IsValid() bool {
	switch e {
	case Beginner, Intermediate, Advanced:
		return true
	}
	return false
}

// Goal is the user's training objective.
type Goal string

const (
	GoalStrength     Goal = "strength"
	GoalHypertrophy  Goal = "hypertrophy"
	GoalWeightLoss   Goal = "weight_loss"
	GoalConditioning Goal = "conditioning"
)

func (g Goal) IsValid() bool {
	switch g {
	case GoalStrength, GoalHypertrophy, GoalWeightLoss, GoalConditioning:
		return true
	}
	return false
}

// Location is where the user trains. Home restricts the equipment pool.
type Location string

const (
	LocationGym  Location = "gym"
	LocationHome Location = "home"
)

// Feedback is the qualitative three-level completion feedback. It is mutually
// exclusive with a legacy RPE value on any single completion.
type Feedback string

const (
	FeedbackTooEasy Feedback = "too_easy"
	FeedbackOnPoint Feedback = "on_point"
	FeedbackTooHard Feedback = "too_hard"
)

func (f Feedback) IsValid() bool {
	switch f {
	case FeedbackTooEasy, FeedbackOnPoint, FeedbackTooHard:
		return true
	}
	return false
}

// AdjustmentKind says which prescription dimension a feedback adjustment moved.
type AdjustmentKind string

const (
	AdjustLoad      AdjustmentKind = "load"
	AdjustReps      AdjustmentKind = "reps"
	AdjustSets      AdjustmentKind = "sets"
	AdjustVariation AdjustmentKind = "variation"
)

// SlotRole distinguishes the fixed session slots from the strength block.
type SlotRole string

const (
	RolePrincipal SlotRole = "principal"
	RoleAccessory SlotRole = "accessory"
	RoleCardio    SlotRole = "cardio"
	RoleStretch   SlotRole = "stretch"
)
