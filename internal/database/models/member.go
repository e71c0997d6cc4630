package models

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"
	"github.com/wardenlabs/unionwarden/internal/database/dbretry"
	"github.com/wardenlabs/unionwarden/internal/database/types"
	"go.uber.org/zap"
)

// MemberModel handles database operations for registered members.
type MemberModel struct {
	db     *bun.DB
	logger *zap.Logger
}

// NewMember creates a new member model instance.
func NewMember(db *bun.DB, logger *zap.Logger) *MemberModel {
	return &MemberModel{
		db:     db,
		logger: logger.Named("db_member"),
	}
}

// GetAllMembers retrieves every registered member ordered by ID. The
// order carries no meaning, it only keeps sweep runs reproducible.
func (m *MemberModel) GetAllMembers(ctx context.Context) ([]*types.Member, error) {
	return dbretry.Operation(ctx, func(ctx context.Context) ([]*types.Member, error) {
		var members []*types.Member

		err := m.db.NewSelect().
			Model(&members).
			Order("id ASC").
			Scan(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to get members: %w", err)
		}

		return members, nil
	})
}

// GetMember retrieves a single member by ID.
func (m *MemberModel) GetMember(ctx context.Context, memberID uint64) (*types.Member, error) {
	return dbretry.Operation(ctx, func(ctx context.Context) (*types.Member, error) {
		var member types.Member

		err := m.db.NewSelect().
			Model(&member).
			Where("id = ?", memberID).
			Scan(ctx)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, types.ErrMemberNotFound
			}

			return nil, fmt.Errorf("failed to get member: %w", err)
		}

		return &member, nil
	})
}

// SaveMember inserts or updates a member record.
func (m *MemberModel) SaveMember(ctx context.Context, member *types.Member) error {
	err := dbretry.NoResult(ctx, func(ctx context.Context) error {
		member.UpdatedAt = time.Now()

		_, err := m.db.NewInsert().
			Model(member).
			On("CONFLICT (id) DO UPDATE").
			Set("username = EXCLUDED.username").
			Set("primary_ign = EXCLUDED.primary_ign").
			Set("secondary_ign = EXCLUDED.secondary_ign").
			Set("primary_union_id = EXCLUDED.primary_union_id").
			Set("secondary_union_id = EXCLUDED.secondary_union_id").
			Set("updated_at = EXCLUDED.updated_at").
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to save member: %w", err)
		}

		return nil
	})
	if err != nil {
		return err
	}

	m.logger.Debug("Saved member", zap.Uint64("memberID", member.ID))

	return nil
}

// ClearUnionReferences clears a union reference from every member slot
// pointing at the given role ID.
func (m *MemberModel) ClearUnionReferences(ctx context.Context, tx bun.Tx, roleID uint64) (int64, error) {
	var total int64

	res, err := tx.NewUpdate().
		Model((*types.Member)(nil)).
		Set("primary_union_id = NULL").
		Set("updated_at = ?", time.Now()).
		Where("primary_union_id = ?", roleID).
		Exec(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to clear primary union references: %w", err)
	}

	if affected, err := res.RowsAffected(); err == nil {
		total += affected
	}

	res, err = tx.NewUpdate().
		Model((*types.Member)(nil)).
		Set("secondary_union_id = NULL").
		Set("updated_at = ?", time.Now()).
		Where("secondary_union_id = ?", roleID).
		Exec(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to clear secondary union references: %w", err)
	}

	if affected, err := res.RowsAffected(); err == nil {
		total += affected
	}

	return total, nil
}

// DeleteMember removes a member row. Callers that need the cascade
// semantics go through the membership service instead.
func (m *MemberModel) DeleteMember(ctx context.Context, tx bun.Tx, memberID uint64) error {
	_, err := tx.NewDelete().
		Model((*types.Member)(nil)).
		Where("id = ?", memberID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete member: %w", err)
	}

	return nil
}
