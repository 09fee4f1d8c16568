package workout_test

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/rishi1508/zenith/internal/workout"
)

// now is a fixed Thursday; the week containing it starts Sunday 2026-01-11.
var now = time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC)

func day(s string) time.Time {
	d, err := time.Parse(time.DateOnly, s)
	if err != nil {
		panic(err)
	}
	return d
}

// training builds a completed workout with a single exercise entry.
func training(date string, exerciseID string, sets ...workout.Set) workout.Workout {
	return workout.Workout{
		ID:        exerciseID + "-" + date,
		Date:      day(date),
		Name:      "Session",
		Type:      workout.TypeCustom,
		Completed: true,
		Exercises: []workout.ExerciseEntry{
			{
				ID:           "entry-" + exerciseID + "-" + date,
				ExerciseID:   exerciseID,
				ExerciseName: exerciseID,
				Sets:         sets,
			},
		},
	}
}

func restDay(date string) workout.Workout {
	return workout.Workout{
		ID:        "rest-" + date,
		Date:      day(date),
		Name:      "Rest day",
		Type:      workout.TypeRest,
		Completed: true,
	}
}

func set(weight float64, reps int) workout.Set {
	return workout.Set{Weight: weight, Reps: reps, Completed: true}
}

func TestTotalVolume(t *testing.T) {
	tests := []struct {
		name     string
		workouts []workout.Workout
		want     float64
	}{
		{
			name: "completed sets only",
			workouts: []workout.Workout{
				training("2026-01-05", "bench-press",
					set(50, 10),
					workout.Set{Weight: 100, Reps: 10, Completed: false}),
			},
			want: 500,
		},
		{
			name: "uncompleted workout contributes nothing",
			workouts: []workout.Workout{
				{
					ID:        "w1",
					Date:      day("2026-01-05"),
					Type:      workout.TypeCustom,
					Completed: false,
					Exercises: []workout.ExerciseEntry{
						{ID: "e1", ExerciseID: "squat", ExerciseName: "Squat", Sets: []workout.Set{set(100, 5)}},
					},
				},
			},
			want: 0,
		},
		{
			name:     "rest days carry no volume",
			workouts: []workout.Workout{restDay("2026-01-05")},
			want:     0,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := workout.TotalVolume(tt.workouts); got != tt.want {
				t.Errorf("TotalVolume() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTotalVolumeAdditive(t *testing.T) {
	a := []workout.Workout{training("2026-01-05", "bench-press", set(60, 8), set(60, 8))}
	b := []workout.Workout{training("2026-01-07", "squat", set(100, 5))}

	sum := workout.TotalVolume(a) + workout.TotalVolume(b)
	combined := workout.TotalVolume(append(append([]workout.Workout{}, a...), b...))
	if sum != combined {
		t.Errorf("volume not additive: %v + %v != %v", workout.TotalVolume(a), workout.TotalVolume(b), combined)
	}
}

func TestWeeklySummaries(t *testing.T) {
	workouts := []workout.Workout{
		// Week starting Sunday 2026-01-04.
		training("2026-01-05", "bench-press", set(50, 10)), // 500
		training("2026-01-07", "squat", set(100, 5)),       // 500
		// Week starting Sunday 2026-01-11.
		training("2026-01-12", "bench-press", set(55, 10)), // 550
		restDay("2026-01-13"),
	}

	summaries := workout.WeeklySummaries(workouts)
	if len(summaries) != 2 {
		t.Fatalf("summaries: got %d, want 2", len(summaries))
	}

	first, second := summaries[0], summaries[1]
	if got, want := first.WeekStart, day("2026-01-04"); !got.Equal(want) {
		t.Errorf("first week start: got %v, want %v", got, want)
	}
	if first.WorkoutCount != 2 || first.Volume != 1000 {
		t.Errorf("first week: got %d workouts volume %v, want 2 and 1000", first.WorkoutCount, first.Volume)
	}
	if first.ChangePercent != 0 {
		t.Errorf("first week change: got %v, want 0", first.ChangePercent)
	}
	// Rest day must not count as a workout.
	if second.WorkoutCount != 1 || second.Volume != 550 {
		t.Errorf("second week: got %d workouts volume %v, want 1 and 550", second.WorkoutCount, second.Volume)
	}
	if got, want := second.ChangePercent, -45.0; got != want {
		t.Errorf("second week change: got %v, want %v", got, want)
	}
}

func TestThisWeekCount(t *testing.T) {
	workouts := []workout.Workout{
		training("2026-01-10", "bench-press", set(50, 10)), // Saturday, previous week
		training("2026-01-11", "squat", set(100, 5)),       // Sunday, this week
		training("2026-01-14", "bench-press", set(50, 10)),
		restDay("2026-01-13"),
	}
	if got, want := workout.ThisWeekCount(workouts, now), 2; got != want {
		t.Errorf("ThisWeekCount() = %d, want %d", got, want)
	}
}

func TestCurrentStreak(t *testing.T) {
	tests := []struct {
		name     string
		workouts []workout.Workout
		want     int
	}{
		{
			name:     "no workouts",
			workouts: nil,
			want:     0,
		},
		{
			name:     "only rest days",
			workouts: []workout.Workout{restDay("2026-01-15"), restDay("2026-01-14")},
			want:     0,
		},
		{
			name:     "single workout today",
			workouts: []workout.Workout{training("2026-01-15", "bench-press", set(50, 10))},
			want:     1,
		},
		{
			name:     "single workout yesterday",
			workouts: []workout.Workout{training("2026-01-14", "bench-press", set(50, 10))},
			want:     1,
		},
		{
			name:     "two day gap breaks the streak",
			workouts: []workout.Workout{training("2026-01-13", "bench-press", set(50, 10))},
			want:     0,
		},
		{
			name: "single rest day does not break",
			workouts: []workout.Workout{
				training("2026-01-15", "bench-press", set(50, 10)),
				training("2026-01-13", "squat", set(100, 5)),
				training("2026-01-12", "bench-press", set(50, 10)),
			},
			want: 3,
		},
		{
			name: "two day gap inside history stops the walk",
			workouts: []workout.Workout{
				training("2026-01-15", "bench-press", set(50, 10)),
				training("2026-01-14", "squat", set(100, 5)),
				training("2026-01-11", "bench-press", set(50, 10)),
			},
			want: 2,
		},
		{
			name: "same day twice counts once",
			workouts: []workout.Workout{
				training("2026-01-15", "bench-press", set(50, 10)),
				training("2026-01-15", "squat", set(100, 5)),
			},
			want: 1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := workout.CurrentStreak(tt.workouts, now); got != tt.want {
				t.Errorf("CurrentStreak() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestLongestStreak(t *testing.T) {
	workouts := []workout.Workout{
		// Run of three with a one-day gap inside.
		training("2025-12-01", "bench-press", set(50, 10)),
		training("2025-12-02", "squat", set(100, 5)),
		training("2025-12-04", "bench-press", set(50, 10)),
		// Long gap; short run.
		training("2025-12-20", "squat", set(100, 5)),
	}
	if got, want := workout.LongestStreak(workouts), 3; got != want {
		t.Errorf("LongestStreak() = %d, want %d", got, want)
	}
	if got := workout.LongestStreak(nil); got != 0 {
		t.Errorf("LongestStreak(nil) = %d, want 0", got)
	}
}

func TestPersonalRecords(t *testing.T) {
	// The worked example: two bench sessions a week apart.
	workouts := []workout.Workout{
		training("2024-01-01", "bench-press", set(50, 10), set(50, 8)),
		training("2024-01-08", "bench-press", set(55, 6)),
	}

	records := workout.PersonalRecords(workouts)
	want := []workout.PersonalRecord{
		{
			ExerciseID:   "bench-press",
			ExerciseName: "bench-press",
			Weight:       55,
			Reps:         6,
			Date:         day("2024-01-08"),
		},
	}
	if diff := cmp.Diff(want, records); diff != "" {
		t.Errorf("records mismatch (-want +got):\n%s", diff)
	}

	if pattern := workout.LastSessionSets(workouts, "bench-press"); len(pattern) != 1 || pattern[0].Weight != 55 {
		t.Errorf("last session pattern: got %+v, want single set of 55", pattern)
	}
}

func TestPersonalRecordTieBreak(t *testing.T) {
	tests := []struct {
		name     string
		workouts []workout.Workout
		want     workout.PersonalRecord
	}{
		{
			name: "equal weight more reps replaces",
			workouts: []workout.Workout{
				training("2026-01-01", "squat", set(100, 5)),
				training("2026-01-08", "squat", set(100, 8)),
			},
			want: workout.PersonalRecord{
				ExerciseID: "squat", ExerciseName: "squat", Weight: 100, Reps: 8, Date: day("2026-01-08"),
			},
		},
		{
			name: "exact tie keeps the earlier record",
			workouts: []workout.Workout{
				training("2026-01-01", "squat", set(100, 5)),
				training("2026-01-08", "squat", set(100, 5)),
			},
			want: workout.PersonalRecord{
				ExerciseID: "squat", ExerciseName: "squat", Weight: 100, Reps: 5, Date: day("2026-01-01"),
			},
		},
		{
			name: "zero weight or reps never qualifies",
			workouts: []workout.Workout{
				training("2026-01-01", "squat", set(100, 5)),
				training("2026-01-08", "squat", set(200, 0), set(0, 20)),
			},
			want: workout.PersonalRecord{
				ExerciseID: "squat", ExerciseName: "squat", Weight: 100, Reps: 5, Date: day("2026-01-01"),
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			record, ok := workout.PersonalRecordFor(tt.workouts, "squat")
			if !ok {
				t.Fatal("expected a record")
			}
			if diff := cmp.Diff(tt.want, record); diff != "" {
				t.Errorf("record mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestPersonalRecordMonotonic(t *testing.T) {
	workouts := []workout.Workout{
		training("2026-01-01", "squat", set(90, 5)),
		training("2026-01-03", "squat", set(100, 3)),
		training("2026-01-05", "squat", set(95, 10)),
	}

	// Replaying prefixes must never lower the record.
	var prev workout.PersonalRecord
	for i := 1; i <= len(workouts); i++ {
		record, ok := workout.PersonalRecordFor(workouts[:i], "squat")
		if !ok {
			t.Fatalf("no record after %d workouts", i)
		}
		if record.Weight < prev.Weight {
			t.Errorf("record regressed after %d workouts: %v -> %v", i, prev.Weight, record.Weight)
		}
		prev = record
	}
}

func TestIsRecordSet(t *testing.T) {
	history := []workout.Workout{
		training("2026-01-01", "bench-press", set(60, 8)),
	}

	tests := []struct {
		name string
		set  workout.Set
		want bool
	}{
		{name: "heavier", set: set(62.5, 5), want: true},
		{name: "equal weight more reps", set: set(60, 9), want: true},
		{name: "equal weight equal reps", set: set(60, 8), want: false},
		{name: "lighter", set: set(55, 12), want: false},
		{name: "zero reps", set: set(100, 0), want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := workout.IsRecordSet(history, "bench-press", tt.set); got != tt.want {
				t.Errorf("IsRecordSet() = %v, want %v", got, tt.want)
			}
		})
	}

	t.Run("first ever qualifying set is a record", func(t *testing.T) {
		if !workout.IsRecordSet(nil, "bench-press", set(20, 5)) {
			t.Error("IsRecordSet() = false, want true with empty history")
		}
	})
}

func TestAutoFillWeights(t *testing.T) {
	history := []workout.Workout{
		training("2026-01-05", "bench-press", set(40, 8), set(40, 8), set(45, 6)),
	}

	tests := []struct {
		name    string
		numSets int
		want    []float64
	}{
		{name: "carry forward beyond pattern", numSets: 5, want: []float64{40, 40, 45, 45, 45}},
		{name: "truncate to fewer sets", numSets: 2, want: []float64{40, 40}},
		{name: "exact pattern length", numSets: 3, want: []float64{40, 40, 45}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := workout.AutoFillWeights(history, "bench-press", tt.numSets)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("weights mismatch (-want +got):\n%s", diff)
			}
		})
	}

	t.Run("no history seeds zeroes", func(t *testing.T) {
		got := workout.AutoFillWeights(nil, "bench-press", 3)
		if diff := cmp.Diff([]float64{0, 0, 0}, got); diff != "" {
			t.Errorf("weights mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("uncompleted sets do not feed the pattern", func(t *testing.T) {
		h := []workout.Workout{
			training("2026-01-05", "bench-press",
				set(40, 8),
				workout.Set{Weight: 60, Reps: 8, Completed: false}),
		}
		got := workout.AutoFillWeights(h, "bench-press", 2)
		if diff := cmp.Diff([]float64{40, 40}, got); diff != "" {
			t.Errorf("weights mismatch (-want +got):\n%s", diff)
		}
	})
}

func TestCompareSet(t *testing.T) {
	history := []workout.Workout{
		training("2026-01-05", "bench-press", set(40, 8), set(45, 6)),
	}

	tests := []struct {
		name     string
		setIndex int
		set      workout.Set
		want     workout.SetComparison
	}{
		{name: "heavier improves", setIndex: 0, set: set(42.5, 8), want: workout.ComparisonImproved},
		{name: "more reps improves", setIndex: 0, set: set(40, 9), want: workout.ComparisonImproved},
		{name: "identical is same", setIndex: 1, set: set(45, 6), want: workout.ComparisonSame},
		{name: "both lower", setIndex: 0, set: set(35, 6), want: workout.ComparisonLower},
		{name: "unfilled set has no indicator", setIndex: 0, set: workout.Set{Weight: 40}, want: workout.ComparisonNone},
		{name: "index beyond last session", setIndex: 5, set: set(40, 8), want: workout.ComparisonNone},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := workout.CompareSet(history, "bench-press", tt.setIndex, tt.set)
			if got != tt.want {
				t.Errorf("CompareSet() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTrend(t *testing.T) {
	session := func(date string, volume float64) workout.Workout {
		return training(date, "bench-press", set(volume, 1))
	}

	tests := []struct {
		name     string
		workouts []workout.Workout
		want     workout.TrendDirection
	}{
		{
			name:     "fewer than two sessions is stable",
			workouts: []workout.Workout{session("2026-01-01", 100)},
			want:     workout.TrendStable,
		},
		{
			name: "two sessions improving",
			workouts: []workout.Workout{
				session("2026-01-01", 100),
				session("2026-01-03", 110),
			},
			want: workout.TrendUp,
		},
		{
			name: "two sessions within the band",
			workouts: []workout.Workout{
				session("2026-01-01", 100),
				session("2026-01-03", 104),
			},
			want: workout.TrendStable,
		},
		{
			name: "two sessions declining",
			workouts: []workout.Workout{
				session("2026-01-01", 100),
				session("2026-01-03", 90),
			},
			want: workout.TrendDown,
		},
		{
			name: "six sessions compare three against three",
			workouts: []workout.Workout{
				session("2026-01-01", 100),
				session("2026-01-03", 100),
				session("2026-01-05", 100),
				session("2026-01-07", 120),
				session("2026-01-09", 120),
				session("2026-01-11", 120),
			},
			want: workout.TrendUp,
		},
		{
			name: "six sessions flat",
			workouts: []workout.Workout{
				session("2026-01-01", 100),
				session("2026-01-03", 102),
				session("2026-01-05", 98),
				session("2026-01-07", 101),
				session("2026-01-09", 99),
				session("2026-01-11", 100),
			},
			want: workout.TrendStable,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := workout.Trend(tt.workouts, "bench-press"); got != tt.want {
				t.Errorf("Trend() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMissingDays(t *testing.T) {
	workouts := []workout.Workout{
		training("2026-01-12", "bench-press", set(50, 10)),
		restDay("2026-01-13"),
		// 14th missing, 15th is today.
	}

	missing := workout.MissingDays(workouts, now)
	want := []time.Time{day("2026-01-14")}
	if diff := cmp.Diff(want, missing); diff != "" {
		t.Errorf("missing days mismatch (-want +got):\n%s", diff)
	}
}

func TestMissingDaysNeverIncludesToday(t *testing.T) {
	workouts := []workout.Workout{
		training("2026-01-14", "bench-press", set(50, 10)),
	}
	for _, d := range workout.MissingDays(workouts, now) {
		if d.Equal(day("2026-01-15")) {
			t.Error("today reported as missing")
		}
	}
}

func TestDurationMinutes(t *testing.T) {
	start := time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC)
	tests := []struct {
		name string
		end  time.Time
		want int
	}{
		{name: "exact hour", end: start.Add(time.Hour), want: 60},
		{name: "rounds down", end: start.Add(45*time.Minute + 20*time.Second), want: 45},
		{name: "rounds up", end: start.Add(45*time.Minute + 40*time.Second), want: 46},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := workout.DurationMinutes(start, tt.end); got != tt.want {
				t.Errorf("DurationMinutes() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestBuildDashboard(t *testing.T) {
	workouts := []workout.Workout{
		training("2026-01-12", "bench-press", set(50, 10)),
		training("2026-01-14", "squat", set(100, 5)),
		restDay("2026-01-13"),
	}

	dashboard := workout.BuildDashboard(workouts, workout.Settings{WeeklyGoal: 4}, now)
	if dashboard.TotalWorkouts != 2 {
		t.Errorf("total workouts: got %d, want 2", dashboard.TotalWorkouts)
	}
	if dashboard.TotalVolume != 1000 {
		t.Errorf("total volume: got %v, want 1000", dashboard.TotalVolume)
	}
	if dashboard.ThisWeekCount != 2 {
		t.Errorf("this week: got %d, want 2", dashboard.ThisWeekCount)
	}
	if dashboard.WeeklyGoal != 4 {
		t.Errorf("weekly goal: got %d, want 4", dashboard.WeeklyGoal)
	}
	// The rest day bridges the gap but does not count as a training day.
	if dashboard.CurrentStreak != 2 {
		t.Errorf("current streak: got %d, want 2", dashboard.CurrentStreak)
	}
	if len(dashboard.PersonalRecords) != 2 {
		t.Errorf("records: got %d, want 2", len(dashboard.PersonalRecords))
	}
}

func TestWeeklyVolumeChange(t *testing.T) {
	history := []workout.Workout{
		training("2026-01-05", "bench-press", set(100, 10)), // week of Jan 4, volume 1000
		training("2026-01-12", "bench-press", set(50, 10)),  // week of Jan 11, volume 500
	}
	tests := []struct {
		name string
		now  time.Time
		want float64
	}{
		{
			name: "both weeks trained",
			now:  time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC),
			want: -50,
		},
		{
			name: "empty current week reads as full drop",
			now:  time.Date(2026, 1, 20, 10, 0, 0, 0, time.UTC),
			want: -100,
		},
		{
			name: "no prior volume reads as flat",
			now:  time.Date(2026, 1, 6, 10, 0, 0, 0, time.UTC),
			want: 0,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := workout.WeeklyVolumeChange(history, tt.now); got != tt.want {
				t.Errorf("WeeklyVolumeChange() = %v, want %v", got, tt.want)
			}

			dashboard := workout.BuildDashboard(history, workout.Settings{}, tt.now)
			if dashboard.WeeklyVolumeChange != tt.want {
				t.Errorf("dashboard change = %v, want %v", dashboard.WeeklyVolumeChange, tt.want)
			}
		})
	}
}
