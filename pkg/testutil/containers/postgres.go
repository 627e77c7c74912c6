//go:build integration

package containers

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/lib/pq"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// schema is the full schema the stores expect. Applied once at container
// startup; tests truncate between runs instead of rebuilding.
const schema = `
CREATE TABLE capability_grants (
	subject_id   UUID        NOT NULL,
	territory_id UUID        NOT NULL,
	capability   TEXT        NOT NULL,
	granted_at   TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	PRIMARY KEY (subject_id, territory_id, capability)
);

CREATE TABLE system_permission_grants (
	subject_id UUID        NOT NULL,
	permission TEXT        NOT NULL,
	granted_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	PRIMARY KEY (subject_id, permission)
);

CREATE TABLE policies (
	id           UUID PRIMARY KEY,
	kind         TEXT        NOT NULL,
	mandatory    BOOLEAN     NOT NULL DEFAULT FALSE,
	published_at TIMESTAMPTZ
);

CREATE TABLE policy_acceptances (
	policy_id   UUID        NOT NULL REFERENCES policies (id),
	subject_id  UUID        NOT NULL,
	accepted_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	PRIMARY KEY (policy_id, subject_id)
);

CREATE TABLE audit_events (
	id           UUID PRIMARY KEY,
	occurred_at  TIMESTAMPTZ NOT NULL,
	action       TEXT        NOT NULL,
	actor_id     UUID,
	territory_id UUID,
	target_type  TEXT        NOT NULL DEFAULT '',
	target_id    TEXT        NOT NULL DEFAULT '',
	decision     TEXT        NOT NULL DEFAULT '',
	reason       TEXT        NOT NULL DEFAULT '',
	request_id   TEXT        NOT NULL DEFAULT ''
);

CREATE TABLE moderation_reports (
	id           UUID PRIMARY KEY,
	reporter_id  UUID        NOT NULL,
	territory_id UUID        NOT NULL,
	target_type  TEXT        NOT NULL,
	target_id    TEXT        NOT NULL,
	reason       TEXT        NOT NULL,
	details      TEXT        NOT NULL DEFAULT '',
	status       TEXT        NOT NULL,
	created_at   TIMESTAMPTZ NOT NULL
);
CREATE INDEX moderation_reports_target ON moderation_reports (target_type, target_id, created_at);

CREATE TABLE sanctions (
	id            UUID PRIMARY KEY,
	territory_id  UUID        NOT NULL,
	target_type   TEXT        NOT NULL,
	target_id     TEXT        NOT NULL,
	sanction_type TEXT        NOT NULL,
	status        TEXT        NOT NULL,
	starts_at     TIMESTAMPTZ NOT NULL,
	ends_at       TIMESTAMPTZ NOT NULL
);
CREATE UNIQUE INDEX sanctions_one_active
	ON sanctions (target_type, target_id, sanction_type)
	WHERE status = 'active';

CREATE TABLE posts (
	id           UUID PRIMARY KEY,
	territory_id UUID        NOT NULL,
	hidden       BOOLEAN     NOT NULL DEFAULT FALSE,
	hidden_at    TIMESTAMPTZ
);

CREATE TABLE post_media (
	post_id UUID NOT NULL REFERENCES posts (id),
	url     TEXT NOT NULL
);

CREATE TABLE territory_members (
	territory_id UUID NOT NULL,
	user_id      UUID NOT NULL,
	PRIMARY KEY (territory_id, user_id)
);
`

// PostgresContainer wraps a testcontainers Postgres instance with both
// database handles the stores use.
type PostgresContainer struct {
	Container testcontainers.Container
	DSN       string
	DB        *sql.DB
	Pool      *pgxpool.Pool
}

// NewPostgresContainer starts a Postgres container and applies the schema.
func NewPostgresContainer(t *testing.T) *PostgresContainer {
	t.Helper()

	ctx := context.Background()

	container, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("commune_test"),
		tcpostgres.WithUsername("commune"),
		tcpostgres.WithPassword("commune"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		_ = container.Terminate(ctx)
		t.Fatalf("failed to get postgres connection string: %v", err)
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		_ = container.Terminate(ctx)
		t.Fatalf("failed to open postgres: %v", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = container.Terminate(ctx)
		t.Fatalf("failed to apply schema: %v", err)
	}

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		_ = container.Terminate(ctx)
		t.Fatalf("failed to create pgx pool: %v", err)
	}

	return &PostgresContainer{
		Container: container,
		DSN:       dsn,
		DB:        db,
		Pool:      pool,
	}
}

// TruncateTables empties the given tables. Use between tests for isolation.
func (p *PostgresContainer) TruncateTables(ctx context.Context, tables ...string) error {
	if len(tables) == 0 {
		return nil
	}
	_, err := p.DB.ExecContext(ctx,
		fmt.Sprintf("TRUNCATE TABLE %s CASCADE", strings.Join(tables, ", ")),
	)
	return err
}
