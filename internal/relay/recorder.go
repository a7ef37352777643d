package relay

import (
	"context"
	"errors"
	"time"
)

// Recorder is an event sink. influxdb.Client and audit.Recorder implement it.
type Recorder interface {
	RecordMotion(ctx context.Context, identity string, value int, at time.Time) error
	RecordAccessAttempt(ctx context.Context, identity string, success bool, at time.Time) error
	RecordIntrusion(ctx context.Context, identity string, at time.Time) error
}

// Recorders fans a record out to every sink. A failing sink does not stop
// the others; all failures are returned joined.
type Recorders []Recorder

func (rs Recorders) RecordMotion(ctx context.Context, identity string, value int, at time.Time) error {
	return rs.each(func(r Recorder) error { return r.RecordMotion(ctx, identity, value, at) })
}

func (rs Recorders) RecordAccessAttempt(ctx context.Context, identity string, success bool, at time.Time) error {
	return rs.each(func(r Recorder) error { return r.RecordAccessAttempt(ctx, identity, success, at) })
}

func (rs Recorders) RecordIntrusion(ctx context.Context, identity string, at time.Time) error {
	return rs.each(func(r Recorder) error { return r.RecordIntrusion(ctx, identity, at) })
}

func (rs Recorders) each(fn func(Recorder) error) error {
	var errs []error
	for _, r := range rs {
		if r == nil {
			continue
		}
		if err := fn(r); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
