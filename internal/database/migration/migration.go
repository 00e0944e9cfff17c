package migration

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"marketapi/internal/config"
)

type migrationStep struct {
	Name string
	SQL  string
}

type schema struct {
	sentinel string
	steps    []migrationStep
}

// Each service owns exactly one of these schemas in its own database.
var schemas = map[string]schema{
	config.ServiceUser: {
		sentinel: "public.users",
		steps: []migrationStep{
			{
				Name: "create_table_users",
				SQL: `CREATE TABLE IF NOT EXISTS users (
  id         TEXT        PRIMARY KEY,
  name       TEXT        NOT NULL,
  email      TEXT        NOT NULL,
  password   TEXT        NOT NULL,
  role       TEXT        NOT NULL CHECK (role IN ('CLIENT', 'SELLER')),
  avatar     TEXT,
  created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
  updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
			},
			{
				Name: "create_unique_index_users_email",
				SQL:  `CREATE UNIQUE INDEX IF NOT EXISTS ux_users_email ON users (email);`,
			},
		},
	},
	config.ServiceProduct: {
		sentinel: "public.products",
		steps: []migrationStep{
			{
				Name: "create_table_products",
				SQL: `CREATE TABLE IF NOT EXISTS products (
  id          TEXT          PRIMARY KEY,
  name        TEXT          NOT NULL,
  description TEXT          NOT NULL DEFAULT '',
  price       NUMERIC(14,2) NOT NULL CHECK (price >= 0),
  quantity    INTEGER       NOT NULL CHECK (quantity >= 0),
  user_id     TEXT          NOT NULL,
  image_ids   JSONB         NOT NULL DEFAULT '[]'::jsonb,
  created_at  TIMESTAMPTZ   NOT NULL DEFAULT now(),
  updated_at  TIMESTAMPTZ   NOT NULL DEFAULT now()
);`,
			},
			{
				Name: "create_index_products_user_id",
				SQL:  `CREATE INDEX IF NOT EXISTS idx_products_user_id ON products (user_id);`,
			},
		},
	},
	config.ServiceMedia: {
		sentinel: "public.media",
		steps: []migrationStep{
			{
				Name: "create_table_media",
				SQL: `CREATE TABLE IF NOT EXISTS media (
  id           TEXT        PRIMARY KEY,
  file_name    TEXT        NOT NULL,
  content_type TEXT        NOT NULL,
  file_size    BIGINT      NOT NULL CHECK (file_size >= 0),
  image_path   TEXT        NOT NULL UNIQUE,
  product_id   TEXT,
  user_id      TEXT        NOT NULL,
  created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
			},
			{
				Name: "create_index_media_product_id",
				SQL:  `CREATE INDEX IF NOT EXISTS idx_media_product_id ON media (product_id);`,
			},
			{
				Name: "create_index_media_user_id",
				SQL:  `CREATE INDEX IF NOT EXISTS idx_media_user_id ON media (user_id);`,
			},
		},
	},
}

// EnsureMigrated checks whether the service's sentinel table exists and creates its schema if it doesn't.
func EnsureMigrated(ctx context.Context, db *sql.DB, service string, log zerolog.Logger) error {
	sc, ok := schemas[service]
	if !ok {
		return fmt.Errorf("no schema for service %q", service)
	}
	start := time.Now()
	log = log.With().Str("component", "database").Str("db_service", service).Logger()

	log.Info().Str("event", "db_migration_check").Msg("checking schema")

	var exists bool
	err := db.QueryRowContext(ctx, "SELECT to_regclass($1) IS NOT NULL", sc.sentinel).Scan(&exists)
	if err != nil {
		log.Error().Err(err).
			Str("event", "db_migration_failed").
			Int64("duration_ms", time.Since(start).Milliseconds()).
			Msg("failed to check sentinel table")
		return fmt.Errorf("failed to check sentinel table: %w", err)
	}

	if exists {
		log.Info().
			Str("event", "db_migration_skip").
			Int64("duration_ms", time.Since(start).Milliseconds()).
			Msg("schema already exists, skipping migration")
		return nil
	}

	for _, step := range sc.steps {
		stepStart := time.Now()
		if _, err := db.ExecContext(ctx, step.SQL); err != nil {
			log.Error().Err(err).
				Str("event", "db_migration_failed").
				Str("migration_step", step.Name).
				Int64("step_duration_ms", time.Since(stepStart).Milliseconds()).
				Msg("migration step failed")
			return fmt.Errorf("migration step %s failed: %w", step.Name, err)
		}
		log.Info().
			Str("event", "db_migration_step").
			Str("migration_step", step.Name).
			Int64("step_duration_ms", time.Since(stepStart).Milliseconds()).
			Msg("migration step applied")
	}

	log.Info().
		Str("event", "db_migration_success").
		Int64("duration_ms", time.Since(start).Milliseconds()).
		Msg("schema created")
	return nil
}
