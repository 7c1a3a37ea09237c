package mock

import (
	"context"
	"errors"

	"github.com/opsdeck/opsdeck/pkg/domain/jobrun"
)

type MockJobSource struct {
	Impl struct {
		ListRecords func(context.Context, string) ([]jobrun.Record, error)
	}
	Calls struct {
		ListRecords []string
	}
}

func NewMockJobSource() *MockJobSource {
	return &MockJobSource{}
}

func (m *MockJobSource) ListRecords(ctx context.Context, namespace string) ([]jobrun.Record, error) {
	m.Calls.ListRecords = append(m.Calls.ListRecords, namespace)
	if m.Impl.ListRecords == nil {
		return nil, errors.New("[MOCK] not implemented")
	}
	return m.Impl.ListRecords(ctx, namespace)
}
