// Package completion derives exercise and workout completion from the set
// records an athlete has logged, and keeps the workout completion markers in
// step with that derivation.
package completion

import (
	"regexp"
	"strconv"

	"alcyxob/coaching-app/internal/domain"
)

// Status is the derived per-exercise (and per-workout) progress state.
type Status string

const (
	StatusNotStarted Status = "not-started"
	StatusInProgress Status = "in-progress"
	StatusCompleted  Status = "completed"
)

// ExerciseStatus is the evaluation result for one exercise of one athlete.
// TotalSetCount is the number of persisted set records, not the prescribed
// target, since athletes may add or remove sets.
type ExerciseStatus struct {
	ExerciseID        string `json:"exerciseId"`
	Name              string `json:"name"`
	Status            Status `json:"status"`
	CompletedSetCount int    `json:"completedSetCount"`
	TotalSetCount     int    `json:"totalSetCount"`
	// Display only; never affects Status.
	RepsVary bool `json:"repsVary"`
	MinReps  int  `json:"minReps,omitempty"`
	MaxReps  int  `json:"maxReps,omitempty"`
}

// Classify evaluates a set list. targetReps is used for sets that carry no
// reps of their own when looking for rep variation.
func Classify(sets []domain.SetRecord, targetReps string) ExerciseStatus {
	var st ExerciseStatus
	st.TotalSetCount = len(sets)
	for _, s := range sets {
		if s.Completed {
			st.CompletedSetCount++
		}
	}

	switch {
	case st.TotalSetCount == 0:
		st.Status = StatusNotStarted
	case st.CompletedSetCount == st.TotalSetCount:
		st.Status = StatusCompleted
	case st.CompletedSetCount > 0:
		st.Status = StatusInProgress
	default:
		st.Status = StatusNotStarted
	}

	lo, hi, ok := repsRange(sets, targetReps)
	if ok && lo != hi {
		st.RepsVary = true
		st.MinReps = lo
		st.MaxReps = hi
	}
	return st
}

var repsNumber = regexp.MustCompile(`\d+`)

// repsRange collects every integer found in the reps strings ("8", "8-10",
// "10 each side") and returns the smallest and largest.
func repsRange(sets []domain.SetRecord, targetReps string) (lo, hi int, ok bool) {
	observe := func(reps string) {
		for _, m := range repsNumber.FindAllString(reps, -1) {
			n, err := strconv.Atoi(m)
			if err != nil {
				continue
			}
			if !ok || n < lo {
				lo = n
			}
			if !ok || n > hi {
				hi = n
			}
			ok = true
		}
	}

	for _, s := range sets {
		if s.Reps != "" {
			observe(s.Reps)
		} else {
			observe(targetReps)
		}
	}
	if len(sets) == 0 {
		observe(targetReps)
	}
	return lo, hi, ok
}
