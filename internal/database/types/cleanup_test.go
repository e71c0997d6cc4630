package types_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/wardenlabs/unionwarden/internal/database/types"
)

func TestNewCleanupLogSnapshotsMember(t *testing.T) {
	t.Parallel()

	member := &types.Member{
		ID:               100,
		Username:         "departed_user",
		PrimaryIGN:       "MainChar",
		SecondaryIGN:     "AltChar",
		PrimaryUnionID:   555,
		SecondaryUnionID: 777,
	}

	purgedAt := time.Date(2026, time.March, 14, 15, 9, 26, 535000000, time.UTC)
	log := types.NewCleanupLog(member, true, types.CleanupActorAuto, purgedAt)

	assert.Equal(t, member.ID, log.MemberID)
	assert.Equal(t, member.Username, log.Username)
	assert.Equal(t, member.PrimaryIGN, log.PrimaryIGN)
	assert.Equal(t, member.SecondaryIGN, log.SecondaryIGN)
	assert.Equal(t, member.PrimaryUnionID, log.PrimaryUnionID)
	assert.Equal(t, member.SecondaryUnionID, log.SecondaryUnionID)
	assert.True(t, log.WasLeader)
	assert.Equal(t, types.CleanupActorAuto, log.Actor)
}

func TestNewCleanupLogTruncatesPurgeDateToDay(t *testing.T) {
	t.Parallel()

	purgedAt := time.Date(2026, time.March, 14, 23, 59, 59, 999999999, time.UTC)
	log := types.NewCleanupLog(&types.Member{ID: 1}, false, types.CleanupActorManual, purgedAt)

	assert.Equal(t, time.Date(2026, time.March, 14, 0, 0, 0, 0, time.UTC), log.PurgedAt)
	assert.False(t, log.WasLeader)
	assert.Equal(t, types.CleanupActorManual, log.Actor)
}
