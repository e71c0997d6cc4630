package migrations

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
	"github.com/wardenlabs/unionwarden/internal/database/types"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		models := []any{
			(*types.Member)(nil),
			(*types.Union)(nil),
			(*types.UnionLeader)(nil),
			(*types.CleanupLog)(nil),
		}

		for _, model := range models {
			_, err := db.NewCreateTable().
				Model(model).
				IfNotExists().
				Exec(ctx)
			if err != nil {
				return fmt.Errorf("failed to create table %T: %w", model, err)
			}
		}

		// Leader lookups during the sweep go both ways
		indexes := []string{
			"CREATE INDEX IF NOT EXISTS union_leaders_member_id_idx ON union_leaders (member_id)",
			"CREATE INDEX IF NOT EXISTS cleanup_logs_member_id_idx ON cleanup_logs (member_id)",
		}

		for _, index := range indexes {
			if _, err := db.NewRaw(index).Exec(ctx); err != nil {
				return fmt.Errorf("failed to create index: %w", err)
			}
		}

		return nil
	}, func(ctx context.Context, db *bun.DB) error {
		// Down migration - drop all tables
		models := []any{
			(*types.CleanupLog)(nil),
			(*types.UnionLeader)(nil),
			(*types.Union)(nil),
			(*types.Member)(nil),
		}

		for _, model := range models {
			_, err := db.NewDropTable().
				Model(model).
				IfExists().
				Cascade().
				Exec(ctx)
			if err != nil {
				return fmt.Errorf("failed to drop table %T: %w", model, err)
			}
		}

		return nil
	})
}
