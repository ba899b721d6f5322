package events

import (
	"context"

	"github.com/ruteri/land-certificate-registry/interfaces"
	"github.com/ruteri/land-certificate-registry/metrics"
)

// MetricsSink counts notifications.
type MetricsSink struct {
	m *metrics.RegistryMetrics
}

// NewMetricsSink creates a sink counting into m.
func NewMetricsSink(m *metrics.RegistryMetrics) *MetricsSink {
	return &MetricsSink{m: m}
}

// Created implements interfaces.EventSink.
func (s *MetricsSink) Created(ctx context.Context, ev interfaces.CreatedEvent) error {
	s.m.IncrementEvent(string(KindCreated))
	return nil
}

// MetadataUpdated implements interfaces.EventSink.
func (s *MetricsSink) MetadataUpdated(ctx context.Context, ev interfaces.MetadataUpdatedEvent) error {
	s.m.IncrementEvent(string(KindMetadataUpdated))
	return nil
}
