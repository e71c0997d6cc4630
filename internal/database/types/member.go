package types

import (
	"errors"
	"time"
)

var (
	ErrMemberNotFound = errors.New("member not found")
	ErrUnionNotFound  = errors.New("union not found")
	ErrLeaderNotFound = errors.New("union leader not found")
)

// Member represents a registered community member. Union references are
// Discord role IDs; zero means no union assigned for that slot. The
// references are best-effort: a union may be deregistered independently,
// leaving a dangling role ID behind.
type Member struct {
	ID               uint64    `bun:",pk"       json:"id"`
	Username         string    `bun:",notnull"  json:"username"`
	PrimaryIGN       string    `bun:",nullzero" json:"primaryIgn"`
	SecondaryIGN     string    `bun:",nullzero" json:"secondaryIgn"`
	PrimaryUnionID   uint64    `bun:",nullzero" json:"primaryUnionId"`
	SecondaryUnionID uint64    `bun:",nullzero" json:"secondaryUnionId"`
	RegisteredAt     time.Time `bun:",notnull"  json:"registeredAt"`
	UpdatedAt        time.Time `bun:",notnull"  json:"updatedAt"`
}

// UnionIDs returns the member's non-zero union references in slot order.
func (m *Member) UnionIDs() []uint64 {
	ids := make([]uint64, 0, 2)
	if m.PrimaryUnionID != 0 {
		ids = append(ids, m.PrimaryUnionID)
	}

	if m.SecondaryUnionID != 0 {
		ids = append(ids, m.SecondaryUnionID)
	}

	return ids
}

// Union represents a registered union backed by a Discord role. The name
// is a denormalized cache of the role's display name at registration time.
type Union struct {
	RoleID    uint64    `bun:",pk"      json:"roleId"`
	Name      string    `bun:",notnull" json:"name"`
	CreatedAt time.Time `bun:",notnull" json:"createdAt"`
}

// LeaderSlot identifies which leader slot of a union a member holds.
type LeaderSlot int

const (
	LeaderSlotPrimary LeaderSlot = iota
	LeaderSlotSecondary
)

// String returns the display name of the slot.
func (s LeaderSlot) String() string {
	if s == LeaderSlotSecondary {
		return "secondary"
	}

	return "primary"
}

// UnionLeader represents a member holding a leader slot of a union.
// A union has at most two slots; a leader row must always reference a
// member that is still present, which the reconciliation sweep enforces
// by deleting leader rows in the same transaction that purges the member.
type UnionLeader struct {
	UnionID     uint64     `bun:",pk"      json:"unionId"`
	MemberID    uint64     `bun:",pk"      json:"memberId"`
	Slot        LeaderSlot `bun:",notnull" json:"slot"`
	AppointedAt time.Time  `bun:",notnull" json:"appointedAt"`
}
