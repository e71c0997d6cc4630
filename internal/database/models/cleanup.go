package models

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
	"github.com/wardenlabs/unionwarden/internal/database/dbretry"
	"github.com/wardenlabs/unionwarden/internal/database/types"
	"go.uber.org/zap"
)

// CleanupModel handles database operations for the append-only cleanup
// log. There is intentionally no update or delete operation.
type CleanupModel struct {
	db     *bun.DB
	logger *zap.Logger
}

// NewCleanup creates a new cleanup model instance.
func NewCleanup(db *bun.DB, logger *zap.Logger) *CleanupModel {
	return &CleanupModel{
		db:     db,
		logger: logger.Named("db_cleanup"),
	}
}

// LogPurge stores a purge snapshot within a transaction.
func (m *CleanupModel) LogPurge(ctx context.Context, tx bun.Tx, log *types.CleanupLog) error {
	_, err := tx.NewInsert().
		Model(log).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to log purge: %w", err)
	}

	return nil
}

// GetPurgesByMember retrieves cleanup log entries for a member, newest
// first.
func (m *CleanupModel) GetPurgesByMember(ctx context.Context, memberID uint64, limit int) ([]*types.CleanupLog, error) {
	return dbretry.Operation(ctx, func(ctx context.Context) ([]*types.CleanupLog, error) {
		var logs []*types.CleanupLog

		err := m.db.NewSelect().
			Model(&logs).
			Where("member_id = ?", memberID).
			Order("id DESC").
			Limit(limit).
			Scan(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to get purges by member: %w", err)
		}

		return logs, nil
	})
}

// CountPurges returns how many purge entries exist for an actor.
func (m *CleanupModel) CountPurges(ctx context.Context, actor types.CleanupActor) (int, error) {
	return dbretry.Operation(ctx, func(ctx context.Context) (int, error) {
		count, err := m.db.NewSelect().
			Model((*types.CleanupLog)(nil)).
			Where("actor = ?", actor).
			Count(ctx)
		if err != nil {
			return 0, fmt.Errorf("failed to count purges: %w", err)
		}

		return count, nil
	})
}
