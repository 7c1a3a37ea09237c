// this package provide "mock" implementation of database for testing.
package mocks

import (
	"context"
	"errors"

	"github.com/opsdeck/opsdeck/pkg/domain/credential"
)

type MockCredentialInterface struct {
	Impl struct {
		Store func(context.Context, string, []byte) (credential.Credential, error)
	}
	Calls struct {
		Store []string
	}
}

func NewMockCredentialInterface() *MockCredentialInterface {
	return &MockCredentialInterface{}
}

func (m *MockCredentialInterface) Store(ctx context.Context, projectID string, keyData []byte) (credential.Credential, error) {
	m.Calls.Store = append(m.Calls.Store, projectID)
	if m.Impl.Store == nil {
		return credential.Credential{}, errors.New("[MOCK] not implemented")
	}
	return m.Impl.Store(ctx, projectID, keyData)
}
