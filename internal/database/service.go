package database

import (
	"github.com/uptrace/bun"
	"github.com/wardenlabs/unionwarden/internal/database/service"
	"go.uber.org/zap"
)

// Service provides access to all business logic services.
type Service struct {
	membership *service.MembershipService
}

// NewService creates a new service instance with all services.
func NewService(db *bun.DB, repository *Repository, logger *zap.Logger) *Service {
	return &Service{
		membership: service.NewMembership(
			db,
			repository.Member(),
			repository.Leader(),
			repository.Cleanup(),
			repository.Union(),
			logger,
		),
	}
}

// Membership returns the membership service.
func (s *Service) Membership() *service.MembershipService {
	return s.membership
}
