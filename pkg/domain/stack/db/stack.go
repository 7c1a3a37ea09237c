package db

import (
	"context"

	"github.com/opsdeck/opsdeck/pkg/domain/stack"
)

type Interface interface {
	// List stacks in the scope, newest first.
	List(ctx context.Context, scope stack.Scope) ([]stack.Stack, error)

	// Create a stack named name in the scope.
	//
	// Returns kerr.ErrConflict when a stack with the same name already
	// exists in the scope.
	Create(ctx context.Context, scope stack.Scope, name string) (stack.Stack, error)

	// Delete a stack by id.
	//
	// Returns kerr.ErrMissing when no such stack exists in the scope.
	Delete(ctx context.Context, scope stack.Scope, id string) error
}
