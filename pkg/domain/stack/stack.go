package stack

import "time"

// Scope pins a stack to the project, cluster and namespace it lives in.
// All stack operations are scoped: a stack is never visible outside the
// scope it was created under.
type Scope struct {
	ProjectID string
	ClusterID string
	Namespace string
}

// Stack is a deployed stack tracked by the dashboard.
type Stack struct {
	ID             string
	Name           string
	Namespace      string
	LatestRevision uint
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (s Stack) Equal(o Stack) bool {
	return s.ID == o.ID &&
		s.Name == o.Name &&
		s.Namespace == o.Namespace &&
		s.LatestRevision == o.LatestRevision &&
		s.CreatedAt.Equal(o.CreatedAt) &&
		s.UpdatedAt.Equal(o.UpdatedAt)
}
