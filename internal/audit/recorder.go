package audit

import (
	"context"
	"time"
)

// Recorder adapts a Repository to the relay's event sink methods.
type Recorder struct {
	repo Repository
}

// NewRecorder creates a Recorder writing to repo.
func NewRecorder(repo Repository) *Recorder {
	return &Recorder{repo: repo}
}

// RecordMotion stores a PIR reading.
func (r *Recorder) RecordMotion(ctx context.Context, identity string, value int, at time.Time) error {
	return r.repo.Create(ctx, &Event{Identity: identity, Kind: KindMotion, Value: &value, CreatedAt: at})
}

// RecordAccessAttempt stores the outcome of a code submission.
func (r *Recorder) RecordAccessAttempt(ctx context.Context, identity string, success bool, at time.Time) error {
	return r.repo.Create(ctx, &Event{Identity: identity, Kind: KindAccess, Success: &success, CreatedAt: at})
}

// RecordIntrusion stores an intrusion signal.
func (r *Recorder) RecordIntrusion(ctx context.Context, identity string, at time.Time) error {
	return r.repo.Create(ctx, &Event{Identity: identity, Kind: KindIntrusion, CreatedAt: at})
}
