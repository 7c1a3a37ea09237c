package db

import (
	"context"

	"github.com/opsdeck/opsdeck/pkg/domain/credential"
)

type Interface interface {
	// Store persists a credential and returns the stored copy,
	// its ID assigned.
	Store(ctx context.Context, projectID string, keyData []byte) (credential.Credential, error)
}
