package models

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/uptrace/bun"
	"github.com/wardenlabs/unionwarden/internal/database/dbretry"
	"github.com/wardenlabs/unionwarden/internal/database/types"
	"go.uber.org/zap"
)

// UnionModel handles database operations for registered unions.
type UnionModel struct {
	db     *bun.DB
	logger *zap.Logger
}

// NewUnion creates a new union model instance.
func NewUnion(db *bun.DB, logger *zap.Logger) *UnionModel {
	return &UnionModel{
		db:     db,
		logger: logger.Named("db_union"),
	}
}

// GetUnion retrieves a union by its role ID.
func (m *UnionModel) GetUnion(ctx context.Context, roleID uint64) (*types.Union, error) {
	return dbretry.Operation(ctx, func(ctx context.Context) (*types.Union, error) {
		var union types.Union

		err := m.db.NewSelect().
			Model(&union).
			Where("role_id = ?", roleID).
			Scan(ctx)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, types.ErrUnionNotFound
			}

			return nil, fmt.Errorf("failed to get union: %w", err)
		}

		return &union, nil
	})
}

// GetAllUnions retrieves every registered union.
func (m *UnionModel) GetAllUnions(ctx context.Context) ([]*types.Union, error) {
	return dbretry.Operation(ctx, func(ctx context.Context) ([]*types.Union, error) {
		var unions []*types.Union

		err := m.db.NewSelect().
			Model(&unions).
			Order("role_id ASC").
			Scan(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to get unions: %w", err)
		}

		return unions, nil
	})
}

// SaveUnion inserts or updates a union record.
func (m *UnionModel) SaveUnion(ctx context.Context, union *types.Union) error {
	err := dbretry.NoResult(ctx, func(ctx context.Context) error {
		_, err := m.db.NewInsert().
			Model(union).
			On("CONFLICT (role_id) DO UPDATE").
			Set("name = EXCLUDED.name").
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to save union: %w", err)
		}

		return nil
	})
	if err != nil {
		return err
	}

	m.logger.Debug("Saved union",
		zap.Uint64("roleID", union.RoleID),
		zap.String("name", union.Name))

	return nil
}

// DeleteUnion removes a union row within a transaction. The membership
// service owns the full deregistration cascade. Deleting a role that
// was never registered returns ErrUnionNotFound so callers do not
// report success on a no-op.
func (m *UnionModel) DeleteUnion(ctx context.Context, tx bun.Tx, roleID uint64) error {
	res, err := tx.NewDelete().
		Model((*types.Union)(nil)).
		Where("role_id = ?", roleID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete union: %w", err)
	}

	return errIfNoRows(res, types.ErrUnionNotFound)
}
