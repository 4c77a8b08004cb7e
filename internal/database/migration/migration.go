package migration

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"
)

type migrationStep struct {
	Name string
	SQL  string
}

// sentinelQuery is true once the schema has been created.
const sentinelQuery = "SELECT to_regclass('public.questions') IS NOT NULL"

var steps = []migrationStep{
	{
		Name: "create_table_questions",
		SQL: `CREATE TABLE IF NOT EXISTS questions (
  id            BIGSERIAL    PRIMARY KEY,
  question_text VARCHAR(200) NOT NULL,
  pub_date      TIMESTAMPTZ  NOT NULL,
  version_id    BIGINT       NOT NULL DEFAULT 1 CHECK (version_id > 0)
);`,
	},
	{
		Name: "create_table_choices",
		SQL: `CREATE TABLE IF NOT EXISTS choices (
  id          BIGSERIAL    PRIMARY KEY,
  question_id BIGINT       NOT NULL REFERENCES questions (id) ON DELETE CASCADE,
  choice_text VARCHAR(200) NOT NULL,
  votes       INTEGER      NOT NULL DEFAULT 0 CHECK (votes >= 0)
);`,
	},
	{
		Name: "create_index_questions_pub_date",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_questions_pub_date ON questions (pub_date);`,
	},
	{
		Name: "create_index_choices_question_id",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_choices_question_id ON choices (question_id);`,
	},
}

// EnsureMigrated creates the polls schema unless the questions table already exists.
func EnsureMigrated(ctx context.Context, db *sql.DB, log *zap.Logger, dbHost string) error {
	if log == nil {
		log = zap.NewNop()
	}
	log = log.With(zap.String("component", "database"), zap.String("db_host", dbHost))
	start := time.Now()

	log.Info("db_migration_check", zap.String("status", "starting"))

	var exists bool
	if err := db.QueryRowContext(ctx, sentinelQuery).Scan(&exists); err != nil {
		log.Error("db_migration_failed",
			zap.String("status", "error"),
			zap.String("error_message", fmt.Sprintf("failed to check sentinel table: %v", err)),
			zap.Int64("duration_ms", time.Since(start).Milliseconds()),
		)
		return fmt.Errorf("failed to check sentinel table: %w", err)
	}

	if exists {
		log.Info("db_migration_skip",
			zap.String("status", "success"),
			zap.String("detail", "schema already exists, skipping migration"),
			zap.Int64("duration_ms", time.Since(start).Milliseconds()),
		)
		return nil
	}

	log.Info("db_migration_start", zap.String("status", "in_progress"), zap.Int("steps", len(steps)))

	for _, step := range steps {
		stepStart := time.Now()
		if _, err := db.ExecContext(ctx, step.SQL); err != nil {
			log.Error("db_migration_failed",
				zap.String("status", "error"),
				zap.String("migration_step", step.Name),
				zap.String("error_message", err.Error()),
				zap.Int64("duration_ms", time.Since(start).Milliseconds()),
				zap.Int64("step_duration_ms", time.Since(stepStart).Milliseconds()),
			)
			return fmt.Errorf("migration step %s failed: %w", step.Name, err)
		}

		log.Info("db_migration_step",
			zap.String("status", "success"),
			zap.String("migration_step", step.Name),
			zap.Int64("step_duration_ms", time.Since(stepStart).Milliseconds()),
		)
	}

	log.Info("db_migration_success",
		zap.String("status", "success"),
		zap.Int64("duration_ms", time.Since(start).Milliseconds()),
	)

	return nil
}
