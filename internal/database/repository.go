package database

import (
	"github.com/uptrace/bun"
	"github.com/wardenlabs/unionwarden/internal/database/models"
	"go.uber.org/zap"
)

// Repository provides access to all database models.
type Repository struct {
	member  *models.MemberModel
	union   *models.UnionModel
	leader  *models.LeaderModel
	cleanup *models.CleanupModel
}

// NewRepository creates a new repository instance with all models.
func NewRepository(db *bun.DB, logger *zap.Logger) *Repository {
	return &Repository{
		member:  models.NewMember(db, logger),
		union:   models.NewUnion(db, logger),
		leader:  models.NewLeader(db, logger),
		cleanup: models.NewCleanup(db, logger),
	}
}

// Member returns the member model repository.
func (r *Repository) Member() *models.MemberModel {
	return r.member
}

// Union returns the union model repository.
func (r *Repository) Union() *models.UnionModel {
	return r.union
}

// Leader returns the union leader model repository.
func (r *Repository) Leader() *models.LeaderModel {
	return r.leader
}

// Cleanup returns the cleanup log model repository.
func (r *Repository) Cleanup() *models.CleanupModel {
	return r.cleanup
}
