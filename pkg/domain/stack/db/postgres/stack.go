package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgconn"
	"github.com/jackc/pgerrcode"
	kpool "github.com/opsdeck/opsdeck/pkg/conn/db/postgres/pool"
	kerr "github.com/opsdeck/opsdeck/pkg/domain/errors"
	"github.com/opsdeck/opsdeck/pkg/domain/stack"
	kstack "github.com/opsdeck/opsdeck/pkg/domain/stack/db"
)

type pgStack struct {
	pool kpool.Pool
}

func New(pool kpool.Pool) kstack.Interface {
	return &pgStack{pool: pool}
}

// Init creates the stack table if it is not there yet.
func Init(ctx context.Context, pool kpool.Pool) error {
	_, err := pool.Exec(
		ctx,
		`
		create table if not exists "stack" (
			"id" varchar(36) primary key,
			"project_id" varchar(64) not null,
			"cluster_id" varchar(64) not null,
			"namespace" varchar(253) not null,
			"name" varchar(253) not null,
			"latest_revision" integer not null default 0,
			"created_at" timestamptz not null,
			"updated_at" timestamptz not null,
			unique ("project_id", "cluster_id", "namespace", "name")
		);
		`,
	)
	if err != nil {
		return fmt.Errorf("initialize stack table: %w", err)
	}
	return nil
}

func (s *pgStack) List(ctx context.Context, scope stack.Scope) ([]stack.Stack, error) {
	rows, err := s.pool.Query(
		ctx,
		`
		select "id", "name", "namespace", "latest_revision", "created_at", "updated_at"
		from "stack"
		where "project_id" = $1 and "cluster_id" = $2 and "namespace" = $3
		order by "created_at" desc, "id"
		`,
		scope.ProjectID, scope.ClusterID, scope.Namespace,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	found := []stack.Stack{}
	for rows.Next() {
		var st stack.Stack
		if err := rows.Scan(
			&st.ID, &st.Name, &st.Namespace, &st.LatestRevision,
			&st.CreatedAt, &st.UpdatedAt,
		); err != nil {
			return nil, err
		}
		found = append(found, st)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return found, nil
}

func (s *pgStack) Create(ctx context.Context, scope stack.Scope, name string) (stack.Stack, error) {
	now := time.Now()
	st := stack.Stack{
		ID:        uuid.NewString(),
		Name:      name,
		Namespace: scope.Namespace,
		CreatedAt: now,
		UpdatedAt: now,
	}

	_, err := s.pool.Exec(
		ctx,
		`
		insert into "stack"
			("id", "project_id", "cluster_id", "namespace", "name", "created_at", "updated_at")
		values ($1, $2, $3, $4, $5, $6, $6)
		`,
		st.ID, scope.ProjectID, scope.ClusterID, scope.Namespace, st.Name, now,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return stack.Stack{}, fmt.Errorf(`%w: stack "%s"`, kerr.ErrConflict, name)
		}
		return stack.Stack{}, err
	}
	return st, nil
}

func (s *pgStack) Delete(ctx context.Context, scope stack.Scope, id string) error {
	tag, err := s.pool.Exec(
		ctx,
		`
		delete from "stack"
		where "project_id" = $1 and "cluster_id" = $2 and "namespace" = $3 and "id" = $4
		`,
		scope.ProjectID, scope.ClusterID, scope.Namespace, id,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf(`%w: stack "%s"`, kerr.ErrMissing, id)
	}
	return nil
}
