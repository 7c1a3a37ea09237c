// this package provide "mock" implementation of database for testing.
package mocks

import (
	"context"
	"errors"

	"github.com/opsdeck/opsdeck/pkg/domain/stack"
)

type MockStackInterface struct {
	Impl struct {
		List   func(context.Context, stack.Scope) ([]stack.Stack, error)
		Create func(context.Context, stack.Scope, string) (stack.Stack, error)
		Delete func(context.Context, stack.Scope, string) error
	}
	Calls struct {
		List   []stack.Scope
		Create []string
		Delete []string
	}
}

func NewMockStackInterface() *MockStackInterface {
	return &MockStackInterface{}
}

func (m *MockStackInterface) List(ctx context.Context, scope stack.Scope) ([]stack.Stack, error) {
	m.Calls.List = append(m.Calls.List, scope)
	if m.Impl.List == nil {
		return nil, errors.New("[MOCK] not implemented")
	}
	return m.Impl.List(ctx, scope)
}

func (m *MockStackInterface) Create(ctx context.Context, scope stack.Scope, name string) (stack.Stack, error) {
	m.Calls.Create = append(m.Calls.Create, name)
	if m.Impl.Create == nil {
		return stack.Stack{}, errors.New("[MOCK] not implemented")
	}
	return m.Impl.Create(ctx, scope, name)
}

func (m *MockStackInterface) Delete(ctx context.Context, scope stack.Scope, id string) error {
	m.Calls.Delete = append(m.Calls.Delete, id)
	if m.Impl.Delete == nil {
		return errors.New("[MOCK] not implemented")
	}
	return m.Impl.Delete(ctx, scope, id)
}
