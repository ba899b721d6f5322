// Package events provides sinks for registry notifications.
package events

import (
	"context"
	"log/slog"
	"sync"

	"github.com/ruteri/land-certificate-registry/interfaces"
)

// Kind names a notification type.
type Kind string

const (
	KindCreated         Kind = "Created"
	KindMetadataUpdated Kind = "MetadataUpdated"
)

// Record is one captured notification. Exactly one of Created and Updated is set.
type Record struct {
	Kind    Kind
	Created *interfaces.CreatedEvent
	Updated *interfaces.MetadataUpdatedEvent
}

// Recorder keeps every notification in memory, in emission order.
type Recorder struct {
	mutex   sync.Mutex
	records []Record
}

// NewRecorder creates an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Created implements interfaces.EventSink.
func (r *Recorder) Created(ctx context.Context, ev interfaces.CreatedEvent) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	r.records = append(r.records, Record{Kind: KindCreated, Created: &ev})
	return nil
}

// MetadataUpdated implements interfaces.EventSink.
func (r *Recorder) MetadataUpdated(ctx context.Context, ev interfaces.MetadataUpdatedEvent) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	r.records = append(r.records, Record{Kind: KindMetadataUpdated, Updated: &ev})
	return nil
}

// Records returns a copy of everything recorded so far.
func (r *Recorder) Records() []Record {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	out := make([]Record, len(r.records))
	copy(out, r.records)
	return out
}

// For returns the records of one certificate in emission order.
func (r *Recorder) For(id interfaces.CertificateID) []Record {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	var out []Record
	for _, rec := range r.records {
		if (rec.Created != nil && rec.Created.ID == id) || (rec.Updated != nil && rec.Updated.ID == id) {
			out = append(out, rec)
		}
	}
	return out
}

// LogSink writes notifications to a structured logger.
type LogSink struct {
	log *slog.Logger
}

// NewLogSink creates a sink logging at info level.
func NewLogSink(log *slog.Logger) *LogSink {
	return &LogSink{log: log}
}

// Created implements interfaces.EventSink.
func (s *LogSink) Created(ctx context.Context, ev interfaces.CreatedEvent) error {
	s.log.Info("Certificate created",
		slog.String("certificateID", ev.ID.String()),
		slog.String("name", ev.Metadata.Name),
		slog.String("location", ev.Metadata.Location),
		slog.Uint64("yieldPotential", ev.Metadata.YieldPotential),
		slog.Uint64("lastSurveyDate", ev.Metadata.LastSurveyDate))
	return nil
}

// MetadataUpdated implements interfaces.EventSink.
func (s *LogSink) MetadataUpdated(ctx context.Context, ev interfaces.MetadataUpdatedEvent) error {
	s.log.Info("Certificate metadata updated",
		slog.String("certificateID", ev.ID.String()),
		slog.String("location", ev.Location),
		slog.String("soilType", ev.SoilType),
		slog.Uint64("yieldPotential", ev.YieldPotential),
		slog.Uint64("lastSurveyDate", ev.LastSurveyDate))
	return nil
}

// Fanout delivers each notification to every sink in order and stops at the first error.
type Fanout []interfaces.EventSink

// Created implements interfaces.EventSink.
func (f Fanout) Created(ctx context.Context, ev interfaces.CreatedEvent) error {
	for _, sink := range f {
		if err := sink.Created(ctx, ev); err != nil {
			return err
		}
	}
	return nil
}

// MetadataUpdated implements interfaces.EventSink.
func (f Fanout) MetadataUpdated(ctx context.Context, ev interfaces.MetadataUpdatedEvent) error {
	for _, sink := range f {
		if err := sink.MetadataUpdated(ctx, ev); err != nil {
			return err
		}
	}
	return nil
}
