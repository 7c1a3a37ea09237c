package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	kpool "github.com/opsdeck/opsdeck/pkg/conn/db/postgres/pool"
	"github.com/opsdeck/opsdeck/pkg/domain/credential"
	kcred "github.com/opsdeck/opsdeck/pkg/domain/credential/db"
)

type pgCredential struct {
	pool kpool.Pool
}

func New(pool kpool.Pool) kcred.Interface {
	return &pgCredential{pool: pool}
}

// Init creates the credential table if it is not there yet.
func Init(ctx context.Context, pool kpool.Pool) error {
	_, err := pool.Exec(
		ctx,
		`
		create table if not exists "credential" (
			"id" varchar(36) primary key,
			"project_id" varchar(64) not null,
			"key_data" bytea not null,
			"created_at" timestamptz not null
		);
		`,
	)
	if err != nil {
		return fmt.Errorf("initialize credential table: %w", err)
	}
	return nil
}

func (c *pgCredential) Store(ctx context.Context, projectID string, keyData []byte) (credential.Credential, error) {
	cred := credential.Credential{
		ID:        uuid.NewString(),
		ProjectID: projectID,
		KeyData:   keyData,
		CreatedAt: time.Now(),
	}

	_, err := c.pool.Exec(
		ctx,
		`
		insert into "credential" ("id", "project_id", "key_data", "created_at")
		values ($1, $2, $3, $4)
		`,
		cred.ID, cred.ProjectID, cred.KeyData, cred.CreatedAt,
	)
	if err != nil {
		return credential.Credential{}, err
	}
	return cred, nil
}
