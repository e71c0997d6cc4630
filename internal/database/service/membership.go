package service

import (
	"context"
	"fmt"
	"time"

	"github.com/uptrace/bun"
	"github.com/wardenlabs/unionwarden/internal/database/dbretry"
	"github.com/wardenlabs/unionwarden/internal/database/models"
	"github.com/wardenlabs/unionwarden/internal/database/types"
	"go.uber.org/zap"
)

// MembershipService handles multi-table membership operations. Every
// cascade runs as a single transaction holding an advisory lock, so an
// admin command and the reconciliation sweep cannot race on the same
// member or union.
type MembershipService struct {
	db      *bun.DB
	member  *models.MemberModel
	leader  *models.LeaderModel
	cleanup *models.CleanupModel
	union   *models.UnionModel
	logger  *zap.Logger
}

// NewMembership creates a new membership service.
func NewMembership(
	db *bun.DB,
	member *models.MemberModel,
	leader *models.LeaderModel,
	cleanup *models.CleanupModel,
	union *models.UnionModel,
	logger *zap.Logger,
) *MembershipService {
	return &MembershipService{
		db:      db,
		member:  member,
		leader:  leader,
		cleanup: cleanup,
		union:   union,
		logger:  logger.Named("membership_service"),
	}
}

// PurgeMember removes a member and everything hanging off it: leader
// slots are deleted, a cleanup log snapshot is written, and the member
// row is removed, all in one transaction. Returns the leader slots the
// member held before the purge.
func (s *MembershipService) PurgeMember(
	ctx context.Context, member *types.Member, actor types.CleanupActor,
) ([]*types.UnionLeader, error) {
	var leaders []*types.UnionLeader

	err := dbretry.Transaction(ctx, s.db, func(ctx context.Context, tx bun.Tx) error {
		// Serialize against concurrent admin commands on the same member
		if _, err := tx.NewRaw("SELECT pg_advisory_xact_lock(?)", int64(member.ID)).Exec(ctx); err != nil {
			return fmt.Errorf("failed to acquire member lock: %w", err)
		}

		err := tx.NewSelect().
			Model(&leaders).
			Where("member_id = ?", member.ID).
			Order("union_id ASC").
			Scan(ctx)
		if err != nil {
			return fmt.Errorf("failed to get leader slots: %w", err)
		}

		if err := s.leader.DeleteLeadersByMember(ctx, tx, member.ID); err != nil {
			return err
		}

		log := types.NewCleanupLog(member, len(leaders) > 0, actor, time.Now())
		if err := s.cleanup.LogPurge(ctx, tx, log); err != nil {
			return err
		}

		return s.member.DeleteMember(ctx, tx, member.ID)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to purge member %d: %w", member.ID, err)
	}

	s.logger.Debug("Purged member",
		zap.Uint64("memberID", member.ID),
		zap.String("username", member.Username),
		zap.String("actor", string(actor)),
		zap.Int("leaderSlots", len(leaders)))

	return leaders, nil
}

// DeregisterUnion removes a union and cascades: union references on
// members are cleared and leader slots of the union are deleted.
func (s *MembershipService) DeregisterUnion(ctx context.Context, roleID uint64) error {
	var cleared int64

	err := dbretry.Transaction(ctx, s.db, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewRaw("SELECT pg_advisory_xact_lock(?)", int64(roleID)).Exec(ctx); err != nil {
			return fmt.Errorf("failed to acquire union lock: %w", err)
		}

		var err error

		cleared, err = s.member.ClearUnionReferences(ctx, tx, roleID)
		if err != nil {
			return err
		}

		if err := s.leader.DeleteLeadersByUnion(ctx, tx, roleID); err != nil {
			return err
		}

		return s.union.DeleteUnion(ctx, tx, roleID)
	})
	if err != nil {
		return fmt.Errorf("failed to deregister union %d: %w", roleID, err)
	}

	s.logger.Info("Deregistered union",
		zap.Uint64("roleID", roleID),
		zap.Int64("clearedReferences", cleared))

	return nil
}
