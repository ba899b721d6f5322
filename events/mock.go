package events

import (
	"context"

	"github.com/ruteri/land-certificate-registry/interfaces"
	"github.com/stretchr/testify/mock"
)

// MockEventSink mocks the EventSink interface
type MockEventSink struct {
	mock.Mock
}

// Created mocks the Created method
func (m *MockEventSink) Created(ctx context.Context, ev interfaces.CreatedEvent) error {
	args := m.Called(ctx, ev)
	return args.Error(0)
}

// MetadataUpdated mocks the MetadataUpdated method
func (m *MockEventSink) MetadataUpdated(ctx context.Context, ev interfaces.MetadataUpdatedEvent) error {
	args := m.Called(ctx, ev)
	return args.Error(0)
}
