package models

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
	"github.com/wardenlabs/unionwarden/internal/database/dbretry"
	"github.com/wardenlabs/unionwarden/internal/database/types"
	"go.uber.org/zap"
)

// LeaderModel handles database operations for union leader slots.
type LeaderModel struct {
	db     *bun.DB
	logger *zap.Logger
}

// NewLeader creates a new leader model instance.
func NewLeader(db *bun.DB, logger *zap.Logger) *LeaderModel {
	return &LeaderModel{
		db:     db,
		logger: logger.Named("db_leader"),
	}
}

// GetLeadersByMember retrieves every leader slot held by a member.
func (m *LeaderModel) GetLeadersByMember(ctx context.Context, memberID uint64) ([]*types.UnionLeader, error) {
	return dbretry.Operation(ctx, func(ctx context.Context) ([]*types.UnionLeader, error) {
		var leaders []*types.UnionLeader

		err := m.db.NewSelect().
			Model(&leaders).
			Where("member_id = ?", memberID).
			Order("union_id ASC").
			Scan(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to get leaders by member: %w", err)
		}

		return leaders, nil
	})
}

// GetLeadersByUnion retrieves the leader slots of a union.
func (m *LeaderModel) GetLeadersByUnion(ctx context.Context, unionID uint64) ([]*types.UnionLeader, error) {
	return dbretry.Operation(ctx, func(ctx context.Context) ([]*types.UnionLeader, error) {
		var leaders []*types.UnionLeader

		err := m.db.NewSelect().
			Model(&leaders).
			Where("union_id = ?", unionID).
			Order("slot ASC").
			Scan(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to get leaders by union: %w", err)
		}

		return leaders, nil
	})
}

// SaveLeader appoints a member to a leader slot, replacing any previous
// holder of the same slot on the same union.
func (m *LeaderModel) SaveLeader(ctx context.Context, leader *types.UnionLeader) error {
	err := dbretry.Transaction(ctx, m.db, func(ctx context.Context, tx bun.Tx) error {
		// A slot holds one member at a time
		_, err := tx.NewDelete().
			Model((*types.UnionLeader)(nil)).
			Where("union_id = ? AND slot = ?", leader.UnionID, leader.Slot).
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to clear leader slot: %w", err)
		}

		_, err = tx.NewInsert().
			Model(leader).
			On("CONFLICT (union_id, member_id) DO UPDATE").
			Set("slot = EXCLUDED.slot").
			Set("appointed_at = EXCLUDED.appointed_at").
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to save leader: %w", err)
		}

		return nil
	})
	if err != nil {
		return err
	}

	m.logger.Debug("Saved union leader",
		zap.Uint64("unionID", leader.UnionID),
		zap.Uint64("memberID", leader.MemberID),
		zap.String("slot", leader.Slot.String()))

	return nil
}

// DeleteLeader dismisses a member from a union's leadership.
func (m *LeaderModel) DeleteLeader(ctx context.Context, unionID, memberID uint64) error {
	return dbretry.NoResult(ctx, func(ctx context.Context) error {
		res, err := m.db.NewDelete().
			Model((*types.UnionLeader)(nil)).
			Where("union_id = ? AND member_id = ?", unionID, memberID).
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to delete leader: %w", err)
		}

		return errIfNoRows(res, types.ErrLeaderNotFound)
	})
}

// DeleteLeadersByMember removes every leader slot held by a member
// within a transaction.
func (m *LeaderModel) DeleteLeadersByMember(ctx context.Context, tx bun.Tx, memberID uint64) error {
	_, err := tx.NewDelete().
		Model((*types.UnionLeader)(nil)).
		Where("member_id = ?", memberID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete leaders by member: %w", err)
	}

	return nil
}

// DeleteLeadersByUnion removes every leader slot of a union within a
// transaction.
func (m *LeaderModel) DeleteLeadersByUnion(ctx context.Context, tx bun.Tx, unionID uint64) error {
	_, err := tx.NewDelete().
		Model((*types.UnionLeader)(nil)).
		Where("union_id = ?", unionID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete leaders by union: %w", err)
	}

	return nil
}
