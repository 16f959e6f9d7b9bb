package services

import (
	"context"
	"strconv"

	"go.uber.org/zap"

	"ecoChallengeAPI/internal/events"
	"ecoChallengeAPI/internal/leaderboard"
	"ecoChallengeAPI/internal/metrics"
	"ecoChallengeAPI/internal/progress"
	"ecoChallengeAPI/internal/store"
	"ecoChallengeAPI/internal/types/challenge"
)

const (
	DefaultLeaderboardSize = 50
	MaxLeaderboardSize     = 200
)

type ProgressService struct {
	progress  store.ProgressStore
	catalog   store.CatalogStore
	tracker   *progress.Tracker
	publisher events.Publisher
	logger    *zap.Logger
}

func NewProgressService(
	progressStore store.ProgressStore,
	catalogStore store.CatalogStore,
	tracker *progress.Tracker,
	publisher events.Publisher,
	logger *zap.Logger,
) *ProgressService {
	if publisher == nil {
		publisher = events.NoopPublisher{}
	}
	return &ProgressService{
		progress:  progressStore,
		catalog:   catalogStore,
		tracker:   tracker,
		publisher: publisher,
		logger:    logger,
	}
}

type TaskUpdate struct {
	UserID      int64
	ChallengeID int64
	TaskID      int
	TaskType    challenge.TaskType
	Completed   bool
}

// Enroll registers the user for a challenge. The bool reports whether a
// new record was created; re-registering keeps task history.
func (s *ProgressService) Enroll(ctx context.Context, userID, challengeID int64) (*progress.Record, bool, error) {
	ch, err := s.catalog.GetChallenge(ctx, challengeID)
	if err != nil {
		return nil, false, passOrInternal(s.logger, "Could not fetch challenge", err)
	}

	var result progress.Record
	var created bool
	_, err = s.progress.UpdateProgress(ctx, userID, func(records []progress.Record) ([]progress.Record, error) {
		if i := progress.Index(records, challengeID); i >= 0 {
			result = s.tracker.Reenroll(records[i], ch)
		} else {
			result = s.tracker.New(challengeID)
			created = true
		}
		return progress.Put(records, result), nil
	})
	if err != nil {
		return nil, false, passOrInternal(s.logger, "Could not register for challenge", err)
	}

	kind := "reregistered"
	if created {
		kind = "new"
	}
	metrics.Enrollments.WithLabelValues(kind).Inc()
	s.logger.Info("User registered for challenge",
		zap.Int64("user_id", userID),
		zap.Int64("challenge_id", challengeID),
		zap.Bool("new_record", created),
	)
	s.publish(ctx, events.ChallengeEnrolled, userID, result, nil)
	return &result, created, nil
}

// Unenroll removes the record and returns it.
func (s *ProgressService) Unenroll(ctx context.Context, userID, challengeID int64) (*progress.Record, error) {
	var removed progress.Record
	_, err := s.progress.UpdateProgress(ctx, userID, func(records []progress.Record) ([]progress.Record, error) {
		rest, r, err := progress.Remove(records, challengeID)
		if err != nil {
			return nil, err
		}
		removed = r
		return rest, nil
	})
	if err != nil {
		return nil, passOrInternal(s.logger, "Could not unregister from challenge", err)
	}

	metrics.Unenrollments.Inc()
	s.logger.Info("User unregistered from challenge",
		zap.Int64("user_id", userID),
		zap.Int64("challenge_id", challengeID),
	)
	s.publish(ctx, events.ChallengeUnenrolled, userID, removed, nil)
	return &removed, nil
}

// SetTaskCompletion toggles one task and returns the updated record.
func (s *ProgressService) SetTaskCompletion(ctx context.Context, req TaskUpdate) (*progress.Record, error) {
	ch, err := s.catalog.GetChallenge(ctx, req.ChallengeID)
	if err != nil {
		return nil, passOrInternal(s.logger, "Could not fetch challenge", err)
	}
	if !ch.HasTask(req.TaskType, req.TaskID) {
		return nil, progress.ErrTaskNotFound
	}

	var result progress.Record
	var change progress.Change
	_, err = s.progress.UpdateProgress(ctx, req.UserID, func(records []progress.Record) ([]progress.Record, error) {
		i := progress.Index(records, req.ChallengeID)
		if i < 0 {
			return nil, progress.ErrNotEnrolled
		}
		var err error
		result, change, err = s.tracker.SetTaskCompletion(records[i], ch, req.TaskID, req.TaskType, req.Completed)
		if err != nil {
			return nil, err
		}
		records[i] = result
		return records, nil
	})
	if err != nil {
		return nil, passOrInternal(s.logger, "Could not update progress", err)
	}

	s.record(change, req.TaskType, req.Completed)
	if change.Toggled {
		s.publish(ctx, events.ChallengeTaskToggled, req.UserID, result, &req, change.PointsDelta)
	}
	if change.BecameCompleted {
		s.publish(ctx, events.ChallengeCompleted, req.UserID, result, nil)
	}
	return &result, nil
}

// GetProgress returns every record of the user after the lazy daily
// rollover and completion promotion. Nothing is written when no record
// changed.
func (s *ProgressService) GetProgress(ctx context.Context, userID int64) ([]progress.Record, error) {
	challenges, err := s.catalog.ListChallenges(ctx)
	if err != nil {
		return nil, internal(s.logger, "Could not fetch challenges", err)
	}
	byID := make(map[int64]*challenge.Challenge, len(challenges))
	for i := range challenges {
		byID[challenges[i].ID] = &challenges[i]
	}

	var changes []progress.Change
	var completed []progress.Record
	records, err := s.progress.UpdateProgress(ctx, userID, func(records []progress.Record) ([]progress.Record, error) {
		changes = changes[:0]
		completed = completed[:0]
		for i := range records {
			var change progress.Change
			records[i], change = s.tracker.Refresh(records[i], byID[records[i].ChallengeID])
			changes = append(changes, change)
			if change.BecameCompleted {
				completed = append(completed, records[i])
			}
		}
		return records, nil
	})
	if err != nil {
		return nil, passOrInternal(s.logger, "Could not fetch progress", err)
	}

	for _, c := range changes {
		if c.RolledOver {
			metrics.DailyRollovers.Inc()
		}
	}
	for _, r := range completed {
		metrics.Completions.Inc()
		s.publish(ctx, events.ChallengeCompleted, userID, r, nil)
	}
	return records, nil
}

func (s *ProgressService) Leaderboard(ctx context.Context, limit int) (*leaderboard.Leaderboard, error) {
	if limit <= 0 {
		limit = DefaultLeaderboardSize
	}
	limit = min(limit, MaxLeaderboardSize)
	board, err := s.progress.Leaderboard(ctx, limit)
	if err != nil {
		return nil, internal(s.logger, "Could not fetch leaderboard", err)
	}
	return board, nil
}

func (s *ProgressService) record(change progress.Change, taskType challenge.TaskType, completed bool) {
	if change.RolledOver {
		metrics.DailyRollovers.Inc()
	}
	if change.Toggled {
		metrics.TaskToggles.WithLabelValues(string(taskType), strconv.FormatBool(completed)).Inc()
	}
	if change.PointsDelta > 0 {
		metrics.PointsAwarded.WithLabelValues(string(taskType)).Add(float64(change.PointsDelta))
	}
	if change.BecameCompleted {
		metrics.Completions.Inc()
	}
}

// publish never fails the request; a lost event is logged.
func (s *ProgressService) publish(ctx context.Context, routingKey string, userID int64, r progress.Record, task *TaskUpdate, delta ...int) {
	evt := events.ProgressEvent{
		UserID:      userID,
		ChallengeID: r.ChallengeID,
		Status:      string(r.Status),
		Points:      r.Points,
		OccurredAt:  s.tracker.Now().UTC(),
	}
	if task != nil {
		evt.TaskID = task.TaskID
		evt.TaskType = string(task.TaskType)
		done := task.Completed
		evt.Completed = &done
	}
	if len(delta) > 0 {
		evt.PointsDelta = delta[0]
	}

	if err := s.publisher.Publish(ctx, routingKey, evt); err != nil {
		s.logger.Warn("Failed to publish progress event",
			zap.String("routing_key", routingKey),
			zap.Int64("user_id", userID),
			zap.Int64("challenge_id", r.ChallengeID),
			zap.Error(err),
		)
	}
}
