package workout

import (
	"strings"
	"time"
)

// MuscleGroup classifies which part of the body an exercise targets.
type MuscleGroup string

const (
	MuscleGroupChest     MuscleGroup = "chest"
	MuscleGroupBack      MuscleGroup = "back"
	MuscleGroupShoulders MuscleGroup = "shoulders"
	MuscleGroupBiceps    MuscleGroup = "biceps"
	MuscleGroupTriceps   MuscleGroup = "triceps"
	MuscleGroupLegs      MuscleGroup = "legs"
	MuscleGroupCore      MuscleGroup = "core"
	MuscleGroupFullBody  MuscleGroup = "full_body"
	MuscleGroupOther     MuscleGroup = "other"
)

// MuscleGroups lists every valid muscle group, in display order.
func MuscleGroups() []MuscleGroup {
	return []MuscleGroup{
		MuscleGroupChest,
		MuscleGroupBack,
		MuscleGroupShoulders,
		MuscleGroupBiceps,
		MuscleGroupTriceps,
		MuscleGroupLegs,
		MuscleGroupCore,
		MuscleGroupFullBody,
		MuscleGroupOther,
	}
}

// ParseMuscleGroup maps a free-form string onto a MuscleGroup, falling back
// to MuscleGroupOther for anything unrecognised.
func ParseMuscleGroup(s string) MuscleGroup {
	for _, mg := range MuscleGroups() {
		if string(mg) == s {
			return mg
		}
	}
	return MuscleGroupOther
}

// Type classifies a workout by where it came from and what it trained.
type Type string

const (
	TypeCustom   Type = "custom"
	TypePush     Type = "push"
	TypePull     Type = "pull"
	TypeLegs     Type = "legs"
	TypeArms     Type = "arms"
	TypeRest     Type = "rest"
	TypeImported Type = "imported"
)

// Exercise describes a single exercise in the catalog, e.g. Bench Press.
type Exercise struct {
	ID            string      `json:"id"`
	Name          string      `json:"name"`
	MuscleGroup   MuscleGroup `json:"muscle_group"`
	IsCompound    bool        `json:"is_compound"`
	NotesMarkdown string      `json:"notes_markdown"`
	VideoURL      string      `json:"video_url"`
}

const (
	userExercisePrefix     = "user-"
	importedExercisePrefix = "imported-"
)

// UserOwned reports whether the exercise was created by the user and may
// therefore be deleted from the catalog.
func (e Exercise) UserOwned() bool {
	return strings.HasPrefix(e.ID, userExercisePrefix)
}

// Set is a single set of an exercise: a weight lifted for a number of reps.
type Set struct {
	ID        string  `json:"id"`
	Weight    float64 `json:"weight"`
	Reps      int     `json:"reps"`
	Completed bool    `json:"completed"`
}

// ExerciseEntry groups all sets for one exercise within a workout. The
// exercise name is denormalised so that history survives catalog edits.
type ExerciseEntry struct {
	ID           string `json:"id"`
	ExerciseID   string `json:"exercise_id"`
	ExerciseName string `json:"exercise_name"`
	Sets         []Set  `json:"sets"`
}

// Workout is a single logged session: one date, a list of exercise entries,
// and completion metadata. A rest day is a completed workout of TypeRest
// with no entries.
type Workout struct {
	ID          string          `json:"id"`
	Date        time.Time       `json:"date"`
	Name        string          `json:"name"`
	Type        Type            `json:"type"`
	Exercises   []ExerciseEntry `json:"exercises"`
	Completed   bool            `json:"completed"`
	StartedAt   *time.Time      `json:"started_at,omitempty"`
	CompletedAt *time.Time      `json:"completed_at,omitempty"`
	DurationMin int             `json:"duration_min"`
}

// IsRestDay reports whether the workout records a rest day rather than a
// training session.
func (w Workout) IsRestDay() bool {
	return w.Type == TypeRest
}

// Volume is the total completed volume of the workout: the sum of
// weight x reps over completed sets.
func (w Workout) Volume() float64 {
	var total float64
	for _, entry := range w.Exercises {
		for _, set := range entry.Sets {
			if set.Completed {
				total += set.Weight * float64(set.Reps)
			}
		}
	}
	return total
}

// PlanExercise is one prescribed exercise within a day plan.
type PlanExercise struct {
	ExerciseID   string `json:"exercise_id"`
	ExerciseName string `json:"exercise_name"`
	DefaultSets  int    `json:"default_sets"`
	DefaultReps  int    `json:"default_reps"`
}

// DayPlan prescribes one day in a weekly plan. Day numbers start at 1 and
// are contiguous within a plan. Rest days carry no exercises.
type DayPlan struct {
	DayNumber int            `json:"day_number"`
	Name      string         `json:"name"`
	Exercises []PlanExercise `json:"exercises"`
	IsRestDay bool           `json:"is_rest_day"`
}

// WorkoutType derives the workout type for sessions started from this day,
// matching the day name against the split-day types.
func (d DayPlan) WorkoutType() Type {
	if d.IsRestDay {
		return TypeRest
	}
	switch {
	case strings.EqualFold(d.Name, "push"):
		return TypePush
	case strings.EqualFold(d.Name, "pull"):
		return TypePull
	case strings.EqualFold(d.Name, "legs"):
		return TypeLegs
	case strings.EqualFold(d.Name, "arms"):
		return TypeArms
	default:
		return TypeCustom
	}
}

// WeeklyPlan is a named training split of one or more day plans.
type WeeklyPlan struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Days       []DayPlan `json:"days"`
	IsCustom   bool      `json:"is_custom"`
	IsImported bool      `json:"is_imported"`
}

// Day returns the plan for the given 1-based day number.
func (p WeeklyPlan) Day(dayNumber int) (DayPlan, bool) {
	for _, day := range p.Days {
		if day.DayNumber == dayNumber {
			return day, true
		}
	}
	return DayPlan{}, false
}

// PersonalRecord is the best recorded set for an exercise. Derived from
// history, never stored.
type PersonalRecord struct {
	ExerciseID   string    `json:"exercise_id"`
	ExerciseName string    `json:"exercise_name"`
	Weight       float64   `json:"weight"`
	Reps         int       `json:"reps"`
	Date         time.Time `json:"date"`
}

// DefaultWeeklyGoal is the number of workouts per week the tracker aims for
// unless the user configures otherwise.
const DefaultWeeklyGoal = 5

// Settings holds the user's app-level preferences.
type Settings struct {
	ActivePlanID  string `json:"active_plan_id"`
	LastDayNumber int    `json:"last_day_number"`
	Theme         string `json:"theme"`
	WeeklyGoal    int    `json:"weekly_goal"`
}
