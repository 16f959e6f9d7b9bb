package progress

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ecoChallengeAPI/internal/types/challenge"
)

type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) advance(d time.Duration) { c.now = c.now.Add(d) }

func sevenDayChallenge() *challenge.Challenge {
	return &challenge.Challenge{
		ID:          1,
		Days:        7,
		DailyTasks:  []challenge.Task{{ID: 1, Text: "Limit your shower to 5 minutes."}},
		UniqueTasks: []challenge.Task{{ID: 2, Text: "Check faucets for small leaks or drips."}},
	}
}

func newTestTracker() (*Tracker, *fakeClock) {
	clock := &fakeClock{now: time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC)}
	return NewTracker(clock), clock
}

func TestFullChallengeLifecycle(t *testing.T) {
	tracker, clock := newTestTracker()
	ch := sevenDayChallenge()

	rec := tracker.New(ch.ID)
	assert.Equal(t, StatusRegistered, rec.Status)
	assert.Equal(t, 0, rec.Points)

	rec, change, err := tracker.SetTaskCompletion(rec, ch, 1, challenge.TaskDaily, true)
	require.NoError(t, err)
	assert.Equal(t, 1, rec.Points)
	assert.Equal(t, StatusOngoing, rec.Status)
	assert.True(t, change.RolledOver)
	require.NotNil(t, rec.LastDailyResetDate)
	assert.Equal(t, "2026-03-10", *rec.LastDailyResetDate)

	rec, _, err = tracker.SetTaskCompletion(rec, ch, 2, challenge.TaskUnique, true)
	require.NoError(t, err)
	assert.Equal(t, 11, rec.Points)
	assert.Equal(t, StatusOngoing, rec.Status)

	clock.advance(7 * 24 * time.Hour)
	rec, change = tracker.Refresh(rec, ch)
	assert.Equal(t, StatusCompleted, rec.Status)
	assert.True(t, change.BecameCompleted)
	assert.Equal(t, 11, rec.Points)
	assert.Empty(t, rec.DailyCompletedTaskIDs, "read on a new day clears daily completions")
	assert.Equal(t, []int{2}, rec.UniqueCompletedTaskIDs)

	rec, _, err = tracker.SetTaskCompletion(rec, ch, 1, challenge.TaskDaily, true)
	require.NoError(t, err)
	assert.Equal(t, 12, rec.Points)

	rec, change, err = tracker.SetTaskCompletion(rec, ch, 1, challenge.TaskDaily, false)
	require.NoError(t, err)
	assert.Equal(t, 11, rec.Points)
	assert.Equal(t, -1, change.PointsDelta)
	assert.Equal(t, StatusCompleted, rec.Status)

	rec, _, err = tracker.SetTaskCompletion(rec, ch, 2, challenge.TaskUnique, false)
	require.NoError(t, err)
	assert.Equal(t, 1, rec.Points)
	assert.Equal(t, StatusCompleted, rec.Status, "completed never reverts")
}

func TestToggleIsIdempotent(t *testing.T) {
	tracker, _ := newTestTracker()
	ch := sevenDayChallenge()

	for _, tc := range []struct {
		taskType challenge.TaskType
		taskID   int
		points   int
	}{
		{challenge.TaskDaily, 1, DailyTaskPoints},
		{challenge.TaskUnique, 2, UniqueTaskPoints},
	} {
		t.Run(string(tc.taskType), func(t *testing.T) {
			once, _, err := tracker.SetTaskCompletion(tracker.New(ch.ID), ch, tc.taskID, tc.taskType, true)
			require.NoError(t, err)

			twice, change, err := tracker.SetTaskCompletion(once, ch, tc.taskID, tc.taskType, true)
			require.NoError(t, err)
			assert.False(t, change.Toggled)
			assert.Equal(t, 0, change.PointsDelta)
			assert.Equal(t, tc.points, twice.Points)
			assert.True(t, once.Equal(twice))
		})
	}
}

func TestUncompleteMissingTaskIsNoop(t *testing.T) {
	tracker, _ := newTestTracker()
	ch := sevenDayChallenge()

	rec, change, err := tracker.SetTaskCompletion(tracker.New(ch.ID), ch, 2, challenge.TaskUnique, false)
	require.NoError(t, err)
	assert.False(t, change.Toggled)
	assert.Equal(t, 0, rec.Points)
	assert.Equal(t, StatusRegistered, rec.Status)
}

func TestUntoggleBackToRegistered(t *testing.T) {
	tracker, _ := newTestTracker()
	ch := sevenDayChallenge()

	rec, _, err := tracker.SetTaskCompletion(tracker.New(ch.ID), ch, 2, challenge.TaskUnique, true)
	require.NoError(t, err)
	rec, _, err = tracker.SetTaskCompletion(rec, ch, 2, challenge.TaskUnique, false)
	require.NoError(t, err)

	assert.Equal(t, StatusRegistered, rec.Status)
	assert.Equal(t, 0, rec.Points)
}

func TestPointsNeverNegative(t *testing.T) {
	tracker, _ := newTestTracker()
	ch := sevenDayChallenge()
	today := tracker.Today()

	rec := tracker.New(ch.ID)
	rec.DailyCompletedTaskIDs = []int{1}
	rec.LastDailyResetDate = &today

	rec, change, err := tracker.SetTaskCompletion(rec, ch, 1, challenge.TaskDaily, false)
	require.NoError(t, err)
	assert.Equal(t, 0, rec.Points)
	assert.Equal(t, 0, change.PointsDelta)
}

func TestTaskMustExistInNamedList(t *testing.T) {
	tracker, _ := newTestTracker()
	ch := sevenDayChallenge()

	_, _, err := tracker.SetTaskCompletion(tracker.New(ch.ID), ch, 2, challenge.TaskDaily, true)
	assert.True(t, errors.Is(err, ErrTaskNotFound))

	_, _, err = tracker.SetTaskCompletion(tracker.New(ch.ID), ch, 1, challenge.TaskUnique, true)
	assert.True(t, errors.Is(err, ErrTaskNotFound))
}

func TestUniqueCompletionSurvivesRollover(t *testing.T) {
	tracker, clock := newTestTracker()
	ch := sevenDayChallenge()

	rec, _, err := tracker.SetTaskCompletion(tracker.New(ch.ID), ch, 1, challenge.TaskDaily, true)
	require.NoError(t, err)
	rec, _, err = tracker.SetTaskCompletion(rec, ch, 2, challenge.TaskUnique, true)
	require.NoError(t, err)

	clock.advance(24 * time.Hour)

	// A unique write on a new day does not touch daily state.
	rec, change, err := tracker.SetTaskCompletion(rec, ch, 2, challenge.TaskUnique, true)
	require.NoError(t, err)
	assert.False(t, change.RolledOver)
	assert.Equal(t, []int{1}, rec.DailyCompletedTaskIDs)

	rec, change = tracker.Refresh(rec, ch)
	assert.True(t, change.RolledOver)
	assert.Empty(t, rec.DailyCompletedTaskIDs)
	assert.Equal(t, []int{2}, rec.UniqueCompletedTaskIDs)
	assert.Equal(t, 11, rec.Points)
}

func TestRolloverIdempotentWithinDay(t *testing.T) {
	tracker, clock := newTestTracker()
	ch := sevenDayChallenge()

	first, change := tracker.Refresh(tracker.New(ch.ID), ch)
	assert.True(t, change.RolledOver)

	clock.advance(3 * time.Hour)
	second, change := tracker.Refresh(first, ch)
	assert.False(t, change.RolledOver)
	assert.False(t, change.BecameCompleted)
	assert.True(t, first.Equal(second))
}

func TestRolloverFollowsBerlinMidnight(t *testing.T) {
	tracker, clock := newTestTracker()
	ch := sevenDayChallenge()

	// 22:30 UTC in March is 23:30 in Berlin.
	clock.now = time.Date(2026, 3, 10, 22, 30, 0, 0, time.UTC)
	rec, _, err := tracker.SetTaskCompletion(tracker.New(ch.ID), ch, 1, challenge.TaskDaily, true)
	require.NoError(t, err)
	assert.Equal(t, "2026-03-10", *rec.LastDailyResetDate)

	// 23:30 UTC is already the next day in Berlin.
	clock.now = time.Date(2026, 3, 10, 23, 30, 0, 0, time.UTC)
	rec, change := tracker.Refresh(rec, ch)
	assert.True(t, change.RolledOver)
	assert.Equal(t, "2026-03-11", *rec.LastDailyResetDate)
	assert.Empty(t, rec.DailyCompletedTaskIDs)
}

func TestReenrollKeepsHistory(t *testing.T) {
	tracker, _ := newTestTracker()
	ch := sevenDayChallenge()

	rec, _, err := tracker.SetTaskCompletion(tracker.New(ch.ID), ch, 2, challenge.TaskUnique, true)
	require.NoError(t, err)
	require.Equal(t, StatusOngoing, rec.Status)

	again := tracker.Reenroll(rec, ch)
	assert.Equal(t, StatusRegistered, again.Status)
	assert.Equal(t, []int{2}, again.UniqueCompletedTaskIDs)
	assert.Equal(t, 10, again.Points)
	assert.True(t, rec.StartedAt.Equal(again.StartedAt))
}

func TestReenrollKeepsCompleted(t *testing.T) {
	tracker, clock := newTestTracker()
	ch := sevenDayChallenge()

	rec := tracker.New(ch.ID)
	clock.advance(8 * 24 * time.Hour)

	assert.Equal(t, StatusCompleted, tracker.Reenroll(rec, ch).Status)

	rec.Status = StatusCompleted
	ch.Days = 30
	assert.Equal(t, StatusCompleted, tracker.Reenroll(rec, ch).Status)
}

func TestZeroDayChallengeNeverCompletes(t *testing.T) {
	tracker, clock := newTestTracker()
	ch := sevenDayChallenge()
	ch.Days = 0

	rec := tracker.New(ch.ID)
	clock.advance(365 * 24 * time.Hour)
	rec, change := tracker.Refresh(rec, ch)
	assert.False(t, change.BecameCompleted)
	assert.Equal(t, StatusRegistered, rec.Status)
}

func TestDaysBetweenAcrossDST(t *testing.T) {
	start := time.Date(2026, 3, 28, 12, 0, 0, 0, time.UTC)
	end := time.Date(2026, 4, 4, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, 7, DaysBetween(start, end))
	assert.Equal(t, -7, DaysBetween(end, start))
}

func TestCloneDoesNotAlias(t *testing.T) {
	tracker, _ := newTestTracker()
	rec := tracker.New(1)
	rec.UniqueCompletedTaskIDs = []int{3}
	d := "2026-03-10"
	rec.LastDailyResetDate = &d

	c := rec.Clone()
	c.UniqueCompletedTaskIDs[0] = 9
	*c.LastDailyResetDate = "2026-03-11"

	assert.Equal(t, []int{3}, rec.UniqueCompletedTaskIDs)
	assert.Equal(t, "2026-03-10", *rec.LastDailyResetDate)
}
