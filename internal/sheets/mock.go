package sheets

import (
	"context"

	"github.com/Veraticus/grantflow/internal/model"
	"github.com/stretchr/testify/mock"
)

// MockWriter is a testify mock of service.GraphWriter.
type MockWriter struct {
	mock.Mock
}

// Write records the call and returns the configured error.
func (m *MockWriter) Write(ctx context.Context, graph *model.ResultGraph, provenance model.Provenance) error {
	args := m.Called(ctx, graph, provenance)
	return args.Error(0)
}
