package types

import "time"

// CleanupActor identifies what triggered a member purge.
type CleanupActor string

const (
	// CleanupActorAuto marks purges performed by the reconciliation sweep.
	CleanupActorAuto CleanupActor = "AUTO_CLEANUP"
	// CleanupActorManual marks purges performed by an admin command.
	CleanupActorManual CleanupActor = "MANUAL"
)

// CleanupLog is an append-only snapshot of a member at the moment it was
// purged. Rows are never mutated or deleted; they are the system's only
// durable history.
type CleanupLog struct {
	ID               int64        `bun:",pk,autoincrement" json:"id"`
	MemberID         uint64       `bun:",notnull"          json:"memberId"`
	Username         string       `bun:",notnull"          json:"username"`
	PrimaryIGN       string       `bun:",nullzero"         json:"primaryIgn"`
	SecondaryIGN     string       `bun:",nullzero"         json:"secondaryIgn"`
	PrimaryUnionID   uint64       `bun:",nullzero"         json:"primaryUnionId"`
	SecondaryUnionID uint64       `bun:",nullzero"         json:"secondaryUnionId"`
	WasLeader        bool         `bun:",notnull,default:false" json:"wasLeader"`
	Actor            CleanupActor `bun:",notnull"          json:"actor"`
	PurgedAt         time.Time    `bun:"type:date,notnull" json:"purgedAt"`
}

// NewCleanupLog builds the pre-purge snapshot for a member.
func NewCleanupLog(member *Member, wasLeader bool, actor CleanupActor, purgedAt time.Time) *CleanupLog {
	return &CleanupLog{
		MemberID:         member.ID,
		Username:         member.Username,
		PrimaryIGN:       member.PrimaryIGN,
		SecondaryIGN:     member.SecondaryIGN,
		PrimaryUnionID:   member.PrimaryUnionID,
		SecondaryUnionID: member.SecondaryUnionID,
		WasLeader:        wasLeader,
		Actor:            actor,
		PurgedAt:         purgedAt.Truncate(24 * time.Hour),
	}
}
