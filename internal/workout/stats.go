package workout

import (
	"math"
	"sort"
	"time"
)

// The statistics engine is pure: every function derives its answer from the
// workouts passed in and an explicit reference time, so callers and tests
// control the clock.

// trendBand is the relative change below which volume is considered flat.
const trendBand = 0.05

// missingDayLookback bounds how far back missing-day detection searches.
const missingDayLookback = 60 * 24 * time.Hour

// TrendDirection classifies how an exercise's volume is moving.
type TrendDirection string

const (
	TrendUp     TrendDirection = "up"
	TrendDown   TrendDirection = "down"
	TrendStable TrendDirection = "stable"
)

// SetComparison relates a freshly completed set to the matching set of the
// previous session.
type SetComparison string

const (
	ComparisonImproved SetComparison = "improved"
	ComparisonSame     SetComparison = "same"
	ComparisonLower    SetComparison = "lower"
	ComparisonNone     SetComparison = "none"
)

// WeekSummary aggregates the completed workouts of one week. Weeks start on
// Sunday at midnight local time.
type WeekSummary struct {
	WeekStart     time.Time `json:"week_start"`
	WorkoutCount  int       `json:"workout_count"`
	Volume        float64   `json:"volume"`
	ChangePercent float64   `json:"change_percent"`
}

// Dashboard is the headline statistics view.
type Dashboard struct {
	TotalWorkouts      int              `json:"total_workouts"`
	TotalVolume        float64          `json:"total_volume"`
	ThisWeekCount      int              `json:"this_week_count"`
	WeeklyGoal         int              `json:"weekly_goal"`
	CurrentStreak      int              `json:"current_streak"`
	LongestStreak      int              `json:"longest_streak"`
	WeeklyVolumeChange float64          `json:"weekly_volume_change"`
	PersonalRecords    []PersonalRecord `json:"personal_records"`
}

// completedWorkouts returns the workouts that count towards training
// statistics: completed, non-rest sessions. Rest days matter only for
// streaks and missing-day detection.
func completedWorkouts(workouts []Workout) []Workout {
	var out []Workout
	for _, w := range workouts {
		if w.Completed && !w.IsRestDay() {
			out = append(out, w)
		}
	}
	return out
}

// loggedWorkouts returns every completed workout, rest days included.
func loggedWorkouts(workouts []Workout) []Workout {
	var out []Workout
	for _, w := range workouts {
		if w.Completed {
			out = append(out, w)
		}
	}
	return out
}

// dateOf truncates a time to midnight in its own location.
func dateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// weekStart returns the Sunday midnight beginning the week containing t.
func weekStart(t time.Time) time.Time {
	day := dateOf(t)
	return day.AddDate(0, 0, -int(day.Weekday()))
}

// TotalVolume sums weight x reps over every completed set of every completed
// workout.
func TotalVolume(workouts []Workout) float64 {
	var total float64
	for _, w := range completedWorkouts(workouts) {
		total += w.Volume()
	}
	return total
}

// WeeklySummaries buckets completed workouts into Sunday-anchored weeks,
// oldest first. ChangePercent compares each week's volume against the
// preceding summarised week and is zero for the first.
func WeeklySummaries(workouts []Workout) []WeekSummary {
	byWeek := make(map[time.Time]*WeekSummary)
	for _, w := range completedWorkouts(workouts) {
		start := weekStart(w.Date)
		summary, ok := byWeek[start]
		if !ok {
			summary = &WeekSummary{WeekStart: start}
			byWeek[start] = summary
		}
		summary.WorkoutCount++
		summary.Volume += w.Volume()
	}

	summaries := make([]WeekSummary, 0, len(byWeek))
	for _, summary := range byWeek {
		summaries = append(summaries, *summary)
	}
	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].WeekStart.Before(summaries[j].WeekStart)
	})

	for i := 1; i < len(summaries); i++ {
		summaries[i].ChangePercent = changePercent(summaries[i-1].Volume, summaries[i].Volume)
	}

	return summaries
}

// ThisWeekCount counts completed workouts in the week containing now.
func ThisWeekCount(workouts []Workout, now time.Time) int {
	start := weekStart(now)
	end := start.AddDate(0, 0, 7)
	count := 0
	for _, w := range completedWorkouts(workouts) {
		d := dateOf(w.Date)
		if !d.Before(start) && d.Before(end) {
			count++
		}
	}
	return count
}

// trainingDates returns the distinct dates of completed training workouts
// (rest days excluded), newest first.
func trainingDates(workouts []Workout) []time.Time {
	seen := make(map[time.Time]bool)
	var dates []time.Time
	for _, w := range completedWorkouts(workouts) {
		d := dateOf(w.Date)
		if !seen[d] {
			seen[d] = true
			dates = append(dates, d)
		}
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].After(dates[j]) })
	return dates
}

// CurrentStreak counts consecutive training days ending today or yesterday.
// A single missed day does not break the streak; two do.
func CurrentStreak(workouts []Workout, now time.Time) int {
	dates := trainingDates(workouts)
	if len(dates) == 0 {
		return 0
	}

	today := dateOf(now)
	if daysBetween(dates[0], today) > 1 {
		return 0
	}

	streak := 0
	expected := today
	for _, d := range dates {
		if daysBetween(d, expected) > 1 {
			break
		}
		streak++
		expected = d.AddDate(0, 0, -1)
	}
	return streak
}

// LongestStreak finds the longest run of training days where consecutive
// recorded dates are at most two days apart, the same one-day grace the
// current streak allows.
func LongestStreak(workouts []Workout) int {
	dates := trainingDates(workouts)
	if len(dates) == 0 {
		return 0
	}

	longest, run := 1, 1
	for i := 1; i < len(dates); i++ {
		// dates is newest first, so the previous entry is the later date.
		if daysBetween(dates[i], dates[i-1]) <= 2 {
			run++
		} else {
			run = 1
		}
		if run > longest {
			longest = run
		}
	}
	return longest
}

// daysBetween returns the number of calendar days from a to b, where both
// are midnights and b is not before a. Rounding absorbs DST transitions.
func daysBetween(a, b time.Time) int {
	return int(math.Round(b.Sub(a).Hours() / 24))
}

// PersonalRecords computes the best set per exercise by scanning completed
// workouts in date order. A set must have both weight and reps above zero to
// qualify. Heavier weight wins; at equal weight, more reps wins; ties keep
// the earlier record.
func PersonalRecords(workouts []Workout) []PersonalRecord {
	completed := completedWorkouts(workouts)
	sort.SliceStable(completed, func(i, j int) bool {
		return completed[i].Date.Before(completed[j].Date)
	})

	best := make(map[string]*PersonalRecord)
	var order []string
	for _, w := range completed {
		for _, entry := range w.Exercises {
			for _, set := range entry.Sets {
				if !set.Completed || set.Weight <= 0 || set.Reps <= 0 {
					continue
				}
				record, ok := best[entry.ExerciseID]
				if !ok {
					best[entry.ExerciseID] = &PersonalRecord{
						ExerciseID:   entry.ExerciseID,
						ExerciseName: entry.ExerciseName,
						Weight:       set.Weight,
						Reps:         set.Reps,
						Date:         dateOf(w.Date),
					}
					order = append(order, entry.ExerciseID)
					continue
				}
				if beatsRecord(set, *record) {
					record.Weight = set.Weight
					record.Reps = set.Reps
					record.Date = dateOf(w.Date)
					record.ExerciseName = entry.ExerciseName
				}
			}
		}
	}

	records := make([]PersonalRecord, 0, len(order))
	for _, id := range order {
		records = append(records, *best[id])
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].ExerciseName < records[j].ExerciseName
	})
	return records
}

// PersonalRecordFor returns the record for one exercise, if any set qualifies.
func PersonalRecordFor(workouts []Workout, exerciseID string) (PersonalRecord, bool) {
	for _, record := range PersonalRecords(workouts) {
		if record.ExerciseID == exerciseID {
			return record, true
		}
	}
	return PersonalRecord{}, false
}

// beatsRecord reports whether the set outperforms the record: strictly
// heavier, or equally heavy with strictly more reps.
func beatsRecord(set Set, record PersonalRecord) bool {
	if set.Weight > record.Weight {
		return true
	}
	return set.Weight == record.Weight && set.Reps > record.Reps
}

// IsRecordSet reports whether a completed set beats the personal record
// derived from history. The in-progress workout must not be part of history,
// otherwise a session's first record set would mask the rest.
func IsRecordSet(history []Workout, exerciseID string, set Set) bool {
	if set.Weight <= 0 || set.Reps <= 0 {
		return false
	}
	record, ok := PersonalRecordFor(history, exerciseID)
	if !ok {
		return true
	}
	return beatsRecord(set, record)
}

// LastSessionSets returns the sets from the most recent completed workout
// containing the exercise, or nil when it has never been performed.
func LastSessionSets(workouts []Workout, exerciseID string) []Set {
	completed := completedWorkouts(workouts)
	sort.SliceStable(completed, func(i, j int) bool {
		return completed[i].Date.After(completed[j].Date)
	})

	for _, w := range completed {
		for _, entry := range w.Exercises {
			if entry.ExerciseID != exerciseID {
				continue
			}
			// The most recent containing workout decides the pattern,
			// even when none of its sets qualify.
			var sets []Set
			for _, set := range entry.Sets {
				if set.Completed && set.Weight > 0 {
					sets = append(sets, set)
				}
			}
			return sets
		}
	}
	return nil
}

// AutoFillWeights seeds target weights for a planned number of sets from the
// last session's pattern. Positions beyond the pattern carry the last known
// weight forward; with no history every weight is zero.
func AutoFillWeights(workouts []Workout, exerciseID string, numSets int) []float64 {
	lastSets := LastSessionSets(workouts, exerciseID)

	weights := make([]float64, numSets)
	for i := range weights {
		switch {
		case i < len(lastSets):
			weights[i] = lastSets[i].Weight
		case len(lastSets) > 0:
			weights[i] = lastSets[len(lastSets)-1].Weight
		default:
			weights[i] = 0
		}
	}
	return weights
}

// CompareSet relates a completed set to the same-position set of the
// previous session. Sets without weight and reps, or without a counterpart,
// compare as ComparisonNone.
func CompareSet(workouts []Workout, exerciseID string, setIndex int, set Set) SetComparison {
	if set.Weight <= 0 || set.Reps <= 0 {
		return ComparisonNone
	}

	lastSets := LastSessionSets(workouts, exerciseID)
	if setIndex < 0 || setIndex >= len(lastSets) {
		return ComparisonNone
	}

	prev := lastSets[setIndex]
	switch {
	case set.Weight > prev.Weight || set.Reps > prev.Reps:
		return ComparisonImproved
	case set.Weight == prev.Weight && set.Reps == prev.Reps:
		return ComparisonSame
	default:
		return ComparisonLower
	}
}

// sessionVolumes lists the per-workout volume of one exercise across
// completed workouts, oldest first. Workouts without a completed set of the
// exercise do not contribute.
func sessionVolumes(workouts []Workout, exerciseID string) []float64 {
	completed := completedWorkouts(workouts)
	sort.SliceStable(completed, func(i, j int) bool {
		return completed[i].Date.Before(completed[j].Date)
	})

	var volumes []float64
	for _, w := range completed {
		var volume float64
		found := false
		for _, entry := range w.Exercises {
			if entry.ExerciseID != exerciseID {
				continue
			}
			for _, set := range entry.Sets {
				if set.Completed {
					volume += set.Weight * float64(set.Reps)
					found = true
				}
			}
		}
		if found {
			volumes = append(volumes, volume)
		}
	}
	return volumes
}

// Trend classifies how an exercise's session volume is moving. With six or
// more sessions it compares the mean of the last three against the mean of
// the three before; with at least two it compares the last two sessions.
// Changes within five percent read as stable.
func Trend(workouts []Workout, exerciseID string) TrendDirection {
	volumes := sessionVolumes(workouts, exerciseID)

	const window = 3
	var prior, recent float64
	switch {
	case len(volumes) >= 2*window:
		recent = mean(volumes[len(volumes)-window:])
		prior = mean(volumes[len(volumes)-2*window : len(volumes)-window])
	case len(volumes) >= 2:
		recent = volumes[len(volumes)-1]
		prior = volumes[len(volumes)-2]
	default:
		return TrendStable
	}

	change := changePercent(prior, recent)
	switch {
	case change > trendBand*100:
		return TrendUp
	case change < -trendBand*100:
		return TrendDown
	default:
		return TrendStable
	}
}

// MissingDays lists dates with no logged workout of any kind, from the later
// of the earliest log and the lookback horizon up to yesterday. Today never
// counts as missing.
func MissingDays(workouts []Workout, now time.Time) []time.Time {
	all := loggedWorkouts(workouts)
	if len(all) == 0 {
		return nil
	}

	logged := make(map[time.Time]bool)
	earliest := dateOf(all[0].Date)
	for _, w := range all {
		d := dateOf(w.Date)
		logged[d] = true
		if d.Before(earliest) {
			earliest = d
		}
	}

	today := dateOf(now)
	horizon := dateOf(now.Add(-missingDayLookback))
	start := earliest
	if start.Before(horizon) {
		start = horizon
	}

	var missing []time.Time
	for d := start; d.Before(today); d = d.AddDate(0, 0, 1) {
		if !logged[d] {
			missing = append(missing, d)
		}
	}
	return missing
}

// DurationMinutes is the session duration rounded to whole minutes.
func DurationMinutes(startedAt, completedAt time.Time) int {
	return int(math.Round(completedAt.Sub(startedAt).Minutes()))
}

// WeeklyVolumeChange compares the calendar week containing now against the
// seven days right before it. An empty current week reads as a drop, not as
// the last summarised week's change.
func WeeklyVolumeChange(workouts []Workout, now time.Time) float64 {
	thisStart := weekStart(now)
	lastStart := thisStart.AddDate(0, 0, -7)
	nextStart := thisStart.AddDate(0, 0, 7)

	var thisWeek, lastWeek float64
	for _, w := range completedWorkouts(workouts) {
		d := dateOf(w.Date)
		switch {
		case !d.Before(thisStart) && d.Before(nextStart):
			thisWeek += w.Volume()
		case !d.Before(lastStart) && d.Before(thisStart):
			lastWeek += w.Volume()
		}
	}
	return changePercent(lastWeek, thisWeek)
}

// BuildDashboard assembles the headline statistics.
func BuildDashboard(workouts []Workout, settings Settings, now time.Time) Dashboard {
	goal := settings.WeeklyGoal
	if goal < 1 {
		goal = DefaultWeeklyGoal
	}

	return Dashboard{
		TotalWorkouts:      len(completedWorkouts(workouts)),
		TotalVolume:        TotalVolume(workouts),
		ThisWeekCount:      ThisWeekCount(workouts, now),
		WeeklyGoal:         goal,
		CurrentStreak:      CurrentStreak(workouts, now),
		LongestStreak:      LongestStreak(workouts),
		WeeklyVolumeChange: WeeklyVolumeChange(workouts, now),
		PersonalRecords:    PersonalRecords(workouts),
	}
}

// changePercent is the relative change from prior to recent in percent,
// reported as flat when there is no prior volume to compare against.
func changePercent(prior, recent float64) float64 {
	if prior == 0 {
		return 0
	}
	return (recent - prior) / prior * 100
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
