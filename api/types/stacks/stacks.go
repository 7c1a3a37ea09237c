package stacks

import (
	"github.com/opsdeck/opsdeck/api/types/misc/rfctime"
	"github.com/opsdeck/opsdeck/pkg/domain/stack"
)

// Revision is the latest deployed revision of a stack.
type Revision struct {
	ID uint `json:"id"`
}

// Stack is a deployed stack as listed by the dashboard.
type Stack struct {
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	Namespace      string          `json:"namespace"`
	LatestRevision *Revision       `json:"latest_revision,omitempty"`
	CreatedAt      rfctime.RFC3339 `json:"created_at"`
	UpdatedAt      rfctime.RFC3339 `json:"updated_at"`
}

func (s Stack) Equal(o Stack) bool {
	revEq := (s.LatestRevision == nil && o.LatestRevision == nil) ||
		(s.LatestRevision != nil && o.LatestRevision != nil &&
			s.LatestRevision.ID == o.LatestRevision.ID)
	return s.ID == o.ID &&
		s.Name == o.Name &&
		s.Namespace == o.Namespace &&
		revEq &&
		s.CreatedAt.Equal(o.CreatedAt) &&
		s.UpdatedAt.Equal(o.UpdatedAt)
}

// CreateRequest is the body of the stack creation endpoint.
// The scope, namespace included, comes from the request path.
type CreateRequest struct {
	Name string `json:"name"`
}

// ComposeStack builds the wire representation of s.
func ComposeStack(s stack.Stack) Stack {
	var rev *Revision
	if s.LatestRevision > 0 {
		rev = &Revision{ID: s.LatestRevision}
	}
	return Stack{
		ID:             s.ID,
		Name:           s.Name,
		Namespace:      s.Namespace,
		LatestRevision: rev,
		CreatedAt:      rfctime.New(s.CreatedAt),
		UpdatedAt:      rfctime.New(s.UpdatedAt),
	}
}
