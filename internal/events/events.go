package events

import (
	"context"
	"time"
)

const (
	ChallengeEnrolled    = "challenge.enrolled"
	ChallengeUnenrolled  = "challenge.unenrolled"
	ChallengeTaskToggled = "challenge.task_toggled"
	ChallengeCompleted   = "challenge.completed"
)

type ProgressEvent struct {
	UserID      int64     `json:"userId"`
	ChallengeID int64     `json:"challengeId"`
	Status      string    `json:"status"`
	Points      int       `json:"points"`
	TaskID      int       `json:"taskId,omitempty"`
	TaskType    string    `json:"taskType,omitempty"`
	Completed   *bool     `json:"completed,omitempty"`
	PointsDelta int       `json:"pointsDelta,omitempty"`
	OccurredAt  time.Time `json:"occurredAt"`
}

type Publisher interface {
	Publish(ctx context.Context, routingKey string, payload any) error
}

// NoopPublisher drops every event. Used when no broker is configured.
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, string, any) error { return nil }
