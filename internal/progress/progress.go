// Package progress holds the per-user challenge progress state machine.
// Every function here is pure: records go in, new records come out, and
// persistence is left to the caller.
package progress

import (
	"slices"
	"time"

	"ecoChallengeAPI/internal/apperr"
	"ecoChallengeAPI/internal/types/challenge"
)

type Status string

const (
	StatusRegistered Status = "Registered"
	StatusOngoing    Status = "Ongoing"
	StatusCompleted  Status = "Completed"
)

const (
	DailyTaskPoints  = 1
	UniqueTaskPoints = 10
)

var (
	ErrNotEnrolled  = apperr.New(apperr.KindNotFound, "User is not registered for this challenge")
	ErrTaskNotFound = apperr.New(apperr.KindNotFound, "Task not found")
)

type Record struct {
	ChallengeID            int64     `json:"challengeId"`
	StartedAt              time.Time `json:"startedAt"`
	Status                 Status    `json:"status"`
	DailyCompletedTaskIDs  []int     `json:"dailyCompletedTasks"`
	UniqueCompletedTaskIDs []int     `json:"uniqueCompletedTasks"`
	LastDailyResetDate     *string   `json:"lastDailyResetDate"`
	Points                 int       `json:"points"`
}

// Clone returns a deep copy so callers can mutate without aliasing.
func (r Record) Clone() Record {
	out := r
	out.DailyCompletedTaskIDs = append(make([]int, 0, len(r.DailyCompletedTaskIDs)), r.DailyCompletedTaskIDs...)
	out.UniqueCompletedTaskIDs = append(make([]int, 0, len(r.UniqueCompletedTaskIDs)), r.UniqueCompletedTaskIDs...)
	if r.LastDailyResetDate != nil {
		d := *r.LastDailyResetDate
		out.LastDailyResetDate = &d
	}
	return out
}

func (r Record) Equal(o Record) bool {
	if r.ChallengeID != o.ChallengeID || !r.StartedAt.Equal(o.StartedAt) ||
		r.Status != o.Status || r.Points != o.Points {
		return false
	}
	if (r.LastDailyResetDate == nil) != (o.LastDailyResetDate == nil) {
		return false
	}
	if r.LastDailyResetDate != nil && *r.LastDailyResetDate != *o.LastDailyResetDate {
		return false
	}
	return slices.Equal(r.DailyCompletedTaskIDs, o.DailyCompletedTaskIDs) &&
		slices.Equal(r.UniqueCompletedTaskIDs, o.UniqueCompletedTaskIDs)
}

func (r *Record) completed(t challenge.TaskType) *[]int {
	if t == challenge.TaskUnique {
		return &r.UniqueCompletedTaskIDs
	}
	return &r.DailyCompletedTaskIDs
}

// Change describes what a single update did, for events and metrics.
type Change struct {
	RolledOver      bool
	Toggled         bool
	PointsDelta     int
	BecameCompleted bool
}

type Tracker struct {
	clock Clock
}

func NewTracker(clock Clock) *Tracker {
	if clock == nil {
		clock = SystemClock
	}
	return &Tracker{clock: clock}
}

func (t *Tracker) Now() time.Time { return t.clock.Now() }

// Today is the current reference timezone date.
func (t *Tracker) Today() string { return CalendarDate(t.clock.Now()) }

// New creates the record for a first enrollment.
func (t *Tracker) New(challengeID int64) Record {
	return Record{
		ChallengeID:            challengeID,
		StartedAt:              t.clock.Now().UTC(),
		Status:                 StatusRegistered,
		DailyCompletedTaskIDs:  []int{},
		UniqueCompletedTaskIDs: []int{},
	}
}

// IsCompleted reports whether the elapsed-days rule holds: the challenge
// has a positive duration and at least that many calendar days have
// passed since the record started.
func (t *Tracker) IsCompleted(r Record, ch *challenge.Challenge) bool {
	if ch == nil || ch.Days <= 0 {
		return false
	}
	return DaysBetween(r.StartedAt, t.clock.Now()) >= ch.Days
}

// Reenroll resets status for an existing record while keeping task
// history and points. Completed stays Completed.
func (t *Tracker) Reenroll(r Record, ch *challenge.Challenge) Record {
	out := r.Clone()
	if r.Status == StatusCompleted || t.IsCompleted(r, ch) {
		out.Status = StatusCompleted
	} else {
		out.Status = StatusRegistered
	}
	return out
}

// Rollover clears daily completions when the stored reset date is not
// today. Returns false when nothing changed.
func (t *Tracker) Rollover(r Record) (Record, bool) {
	today := t.Today()
	if r.LastDailyResetDate != nil && *r.LastDailyResetDate == today {
		return r, false
	}
	out := r.Clone()
	out.DailyCompletedTaskIDs = []int{}
	out.LastDailyResetDate = &today
	return out, true
}

// Refresh is the read path: rollover, then promotion to Completed when
// the elapsed-days rule holds. It never demotes.
func (t *Tracker) Refresh(r Record, ch *challenge.Challenge) (Record, Change) {
	var change Change
	out, rolled := t.Rollover(r)
	change.RolledOver = rolled
	if out.Status != StatusCompleted && t.IsCompleted(out, ch) {
		if !rolled {
			out = out.Clone()
		}
		out.Status = StatusCompleted
		change.BecameCompleted = true
	}
	return out, change
}

// SetTaskCompletion marks a task done or undone and re-derives points and
// status. The caller guarantees r belongs to ch.
func (t *Tracker) SetTaskCompletion(r Record, ch *challenge.Challenge, taskID int, taskType challenge.TaskType, done bool) (Record, Change, error) {
	var change Change
	if !ch.HasTask(taskType, taskID) {
		return r, change, ErrTaskNotFound
	}

	out := r.Clone()
	if taskType == challenge.TaskDaily {
		out, change.RolledOver = t.Rollover(out)
	}

	set := out.completed(taskType)
	idx, present := slices.BinarySearch(*set, taskID)
	amount := DailyTaskPoints
	if taskType == challenge.TaskUnique {
		amount = UniqueTaskPoints
	}

	switch {
	case done && !present:
		*set = slices.Insert(*set, idx, taskID)
		out.Points += amount
		change.Toggled = true
		change.PointsDelta = amount
	case !done && present:
		*set = slices.Delete(*set, idx, idx+1)
		before := out.Points
		out.Points = max(0, out.Points-amount)
		change.Toggled = true
		change.PointsDelta = out.Points - before
	}

	wasCompleted := r.Status == StatusCompleted
	out.Status = t.deriveStatus(out, ch)
	change.BecameCompleted = !wasCompleted && out.Status == StatusCompleted
	return out, change, nil
}

func (t *Tracker) deriveStatus(r Record, ch *challenge.Challenge) Status {
	switch {
	case r.Status == StatusCompleted || t.IsCompleted(r, ch):
		return StatusCompleted
	case len(r.DailyCompletedTaskIDs) == 0 && len(r.UniqueCompletedTaskIDs) == 0:
		return StatusRegistered
	default:
		return StatusOngoing
	}
}
