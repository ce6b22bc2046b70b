// Package growth maps journaling activity onto the butterfly life cycle.
package growth

import "github.com/julianstephens/bloomlet/internal/constants"

// Stage is a point in the weekly growth sequence
type Stage string

const (
	// StageEmpty is reported before the first active day of the week. It is
	// never part of a sequence returned by StagesForGoal.
	StageEmpty         Stage = "empty"
	StageEgg           Stage = "egg"
	StageSprout        Stage = "growth1"
	StageCaterpillar   Stage = "caterpillar"
	StageGrowing       Stage = "growth"
	StageChrysalis     Stage = "chrysalis"
	StageMetamorphosis Stage = "metamorphosis"
	StageButterfly     Stage = "butterfly"
)

// StagesForGoal returns the ordered stages for a weekly goal. The last stage
// is always StageButterfly. Goals outside [1,7] are not validated; use
// ClampGoal first.
func StagesForGoal(goal int) []Stage {
	switch {
	case goal <= 2:
		return []Stage{StageEgg, StageButterfly}
	case goal == 3:
		return []Stage{StageEgg, StageCaterpillar, StageButterfly}
	case goal == 4:
		return []Stage{StageEgg, StageCaterpillar, StageChrysalis, StageButterfly}
	case goal == 5:
		return []Stage{StageEgg, StageSprout, StageCaterpillar, StageChrysalis, StageButterfly}
	case goal == 6:
		return []Stage{StageEgg, StageSprout, StageCaterpillar, StageChrysalis, StageMetamorphosis, StageButterfly}
	default:
		return []Stage{StageEgg, StageSprout, StageCaterpillar, StageGrowing, StageChrysalis, StageMetamorphosis, StageButterfly}
	}
}

// StageFromCount returns the stage reached after count active days against goal.
// The final slot of the sequence is reserved for reaching the goal, so an
// intermediate count never reports StageButterfly.
func StageFromCount(count, goal int) Stage {
	if count <= 0 {
		return StageEmpty
	}
	if count >= goal {
		return StageButterfly
	}
	stages := StagesForGoal(goal)
	return stages[min(count-1, len(stages)-2)]
}

// ClampGoal bounds a configured weekly goal to [1,7].
func ClampGoal(goal int) int {
	return max(constants.MinWeeklyGoal, min(goal, constants.MaxWeeklyGoal))
}

// Terminal reports whether s is the goal-completion stage.
func (s Stage) Terminal() bool {
	return s == StageButterfly
}

var stageNames = map[Stage]string{
	StageEmpty:         "Start",
	StageEgg:           "Egg",
	StageSprout:        "Sprout",
	StageCaterpillar:   "Caterpillar",
	StageGrowing:       "Growing",
	StageChrysalis:     "Chrysalis",
	StageMetamorphosis: "Transform",
	StageButterfly:     "Butterfly",
}

var stageEmoji = map[Stage]string{
	StageEmpty:         " ",
	StageEgg:           "🥚",
	StageSprout:        "🌱",
	StageCaterpillar:   "🐛",
	StageGrowing:       "🌿",
	StageChrysalis:     "🐚",
	StageMetamorphosis: "✨",
	StageButterfly:     "🦋",
}

var stageMessages = map[Stage]string{
	StageEmpty:         "Ready to start your journey? 🦋",
	StageEgg:           "A beautiful beginning! Your egg is nestled safely. 🥚",
	StageSprout:        "Look! Something's starting to grow! 🌱",
	StageCaterpillar:   "Your little caterpillar is munching away happily! 🐛",
	StageGrowing:       "Growing stronger every day! 🌿",
	StageChrysalis:     "Transformation in progress... Something magical is happening! 🐚",
	StageMetamorphosis: "Almost there! The magic is happening! ✨",
	StageButterfly:     "You did it! A beautiful butterfly has emerged! 🦋",
}

// Name returns the display name of the stage.
func (s Stage) Name() string {
	if n, ok := stageNames[s]; ok {
		return n
	}
	return string(s)
}

// Emoji returns the glyph shown for the stage.
func (s Stage) Emoji() string {
	return stageEmoji[s]
}

// Message returns the companion's line for the stage. Outside of a fresh
// submission the companion only invites the user to write.
func (s Stage) Message(isNewEntry bool) string {
	if !isNewEntry {
		return "Ready to reflect today? 🦋"
	}
	return stageMessages[s]
}
