package reconcile

import (
	"context"

	"github.com/wardenlabs/unionwarden/internal/database"
	"github.com/wardenlabs/unionwarden/internal/database/types"
)

// store adapts the database client to the engine's store interface.
type store struct {
	db database.Client
}

func (s *store) GetAllMembers(ctx context.Context) ([]*types.Member, error) {
	return s.db.Model().Member().GetAllMembers(ctx)
}

func (s *store) GetLeadersByUnion(ctx context.Context, unionID uint64) ([]*types.UnionLeader, error) {
	return s.db.Model().Leader().GetLeadersByUnion(ctx, unionID)
}

func (s *store) PurgeMember(
	ctx context.Context, member *types.Member, actor types.CleanupActor,
) ([]*types.UnionLeader, error) {
	return s.db.Service().Membership().PurgeMember(ctx, member, actor)
}
