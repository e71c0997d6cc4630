package reconcile

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wardenlabs/unionwarden/internal/database/types"
	"go.uber.org/zap"
)

// fakeStore is an in-memory MembershipStore that records purges.
type fakeStore struct {
	mu      sync.Mutex
	members map[uint64]*types.Member
	leaders []*types.UnionLeader
	purges  []purgeRecord
	failFor map[uint64]error
}

type purgeRecord struct {
	snapshot types.Member
	actor    types.CleanupActor
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		members: make(map[uint64]*types.Member),
		failFor: make(map[uint64]error),
	}
}

func (s *fakeStore) addMember(m *types.Member) {
	s.members[m.ID] = m
}

func (s *fakeStore) addLeader(unionID, memberID uint64, slot types.LeaderSlot) {
	s.leaders = append(s.leaders, &types.UnionLeader{
		UnionID:  unionID,
		MemberID: memberID,
		Slot:     slot,
	})
}

func (s *fakeStore) GetAllMembers(context.Context) ([]*types.Member, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	members := make([]*types.Member, 0, len(s.members))
	for _, m := range s.members {
		members = append(members, m)
	}

	sort.Slice(members, func(i, j int) bool { return members[i].ID < members[j].ID })

	return members, nil
}

func (s *fakeStore) GetLeadersByUnion(_ context.Context, unionID uint64) ([]*types.UnionLeader, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var slots []*types.UnionLeader
	for _, l := range s.leaders {
		if l.UnionID == unionID {
			slots = append(slots, l)
		}
	}

	return slots, nil
}

func (s *fakeStore) PurgeMember(
	_ context.Context, member *types.Member, actor types.CleanupActor,
) ([]*types.UnionLeader, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err, ok := s.failFor[member.ID]; ok {
		return nil, err
	}

	var held []*types.UnionLeader

	remaining := s.leaders[:0]
	for _, l := range s.leaders {
		if l.MemberID == member.ID {
			held = append(held, l)
		} else {
			remaining = append(remaining, l)
		}
	}

	s.leaders = remaining
	s.purges = append(s.purges, purgeRecord{snapshot: *member, actor: actor})
	delete(s.members, member.ID)

	return held, nil
}

func (s *fakeStore) hasLeader(unionID, memberID uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, l := range s.leaders {
		if l.UnionID == unionID && l.MemberID == memberID {
			return true
		}
	}

	return false
}

// fakeOracle answers presence lookups and role names from fixed maps.
type fakeOracle struct {
	presence map[uint64]Presence
	roles    map[uint64]string
}

func (o *fakeOracle) Lookup(_ context.Context, userID uint64) Presence {
	if p, ok := o.presence[userID]; ok {
		return p
	}

	return PresencePresent
}

func (o *fakeOracle) ResolveRole(_ context.Context, roleID uint64) (string, bool) {
	name, ok := o.roles[roleID]
	return name, ok
}

// fakeSink records delivered summaries.
type fakeSink struct {
	mu        sync.Mutex
	delivered []*Summary
}

func (s *fakeSink) Deliver(_ context.Context, summary *Summary) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.delivered = append(s.delivered, summary)

	return nil
}

func member(id uint64, username string, unionIDs ...uint64) *types.Member {
	m := &types.Member{ID: id, Username: username}
	if len(unionIDs) > 0 {
		m.PrimaryUnionID = unionIDs[0]
	}

	if len(unionIDs) > 1 {
		m.SecondaryUnionID = unionIDs[1]
	}

	return m
}

func newEngine(store *fakeStore, oracle *fakeOracle, sink *fakeSink) *Engine {
	return New(store, oracle, sink, 4, zap.NewNop())
}

func TestRunEmptyStore(t *testing.T) {
	store := newFakeStore()
	sink := &fakeSink{}
	engine := newEngine(store, &fakeOracle{}, sink)

	summary, err := engine.Run(context.Background())
	require.NoError(t, err)
	assert.Nil(t, summary)
	assert.Empty(t, sink.delivered)
}

func TestRunAllPresent(t *testing.T) {
	store := newFakeStore()
	store.addMember(member(1, "alda"))
	store.addMember(member(2, "bryn"))

	sink := &fakeSink{}
	engine := newEngine(store, &fakeOracle{}, sink)

	summary, err := engine.Run(context.Background())
	require.NoError(t, err)
	require.NotNil(t, summary)

	assert.Equal(t, 2, summary.Total)
	assert.Equal(t, 2, summary.Present)
	assert.Zero(t, summary.Departed)
	assert.Empty(t, store.purges, "quiet run must not write audit records")
	assert.Empty(t, sink.delivered, "quiet run must not deliver a report")
}

func TestRunDepartedLeaderCascade(t *testing.T) {
	store := newFakeStore()
	store.addMember(member(1, "alda", 100))
	store.addMember(member(2, "bryn"))
	store.addMember(member(3, "ceri"))
	store.addLeader(100, 1, types.LeaderSlotPrimary)

	oracle := &fakeOracle{
		presence: map[uint64]Presence{1: PresenceAbsent},
		roles:    map[uint64]string{100: "Iron Vanguard"},
	}
	sink := &fakeSink{}
	engine := newEngine(store, oracle, sink)

	summary, err := engine.Run(context.Background())
	require.NoError(t, err)
	require.NotNil(t, summary)

	assert.Equal(t, 3, summary.Total)
	assert.Equal(t, 2, summary.Present)
	assert.Equal(t, 1, summary.Departed)
	assert.Equal(t, 1, summary.LeadersAffected)

	// member and leader slot are gone
	_, exists := store.members[1]
	assert.False(t, exists)
	assert.False(t, store.hasLeader(100, 1))

	// exactly one audit record with the pre-purge snapshot
	require.Len(t, store.purges, 1)
	assert.Equal(t, types.CleanupActorAuto, store.purges[0].actor)
	assert.Equal(t, uint64(1), store.purges[0].snapshot.ID)
	assert.Equal(t, "alda", store.purges[0].snapshot.Username)
	assert.Equal(t, uint64(100), store.purges[0].snapshot.PrimaryUnionID)

	// report carries the resolved union name
	require.Len(t, sink.delivered, 1)
	require.NotEmpty(t, sink.delivered[0].Actions)
	assert.Contains(t, sink.delivered[0].Actions[0], "Iron Vanguard")
}

func TestRunIdempotent(t *testing.T) {
	store := newFakeStore()
	store.addMember(member(1, "alda"))
	store.addMember(member(2, "bryn"))

	oracle := &fakeOracle{presence: map[uint64]Presence{1: PresenceAbsent}}
	sink := &fakeSink{}
	engine := newEngine(store, oracle, sink)

	first, err := engine.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, first.Departed)

	second, err := engine.Run(context.Background())
	require.NoError(t, err)
	require.NotNil(t, second)
	assert.Zero(t, second.Departed)

	// only the first run delivered a report or wrote audit records
	assert.Len(t, sink.delivered, 1)
	assert.Len(t, store.purges, 1)
}

func TestRunDanglingUnionReference(t *testing.T) {
	store := newFakeStore()
	store.addMember(member(1, "alda", 555))

	oracle := &fakeOracle{presence: map[uint64]Presence{1: PresenceAbsent}}
	sink := &fakeSink{}
	engine := newEngine(store, oracle, sink)

	summary, err := engine.Run(context.Background())
	require.NoError(t, err)
	require.NotNil(t, summary)

	assert.Equal(t, 1, summary.Departed)
	require.Len(t, summary.Actions, 1)
	assert.Contains(t, summary.Actions[0], "unknown union (555)")
}

func TestRunLookupFailureIsNotDeparture(t *testing.T) {
	store := newFakeStore()
	store.addMember(member(1, "alda"))
	store.addMember(member(2, "bryn"))

	oracle := &fakeOracle{presence: map[uint64]Presence{1: PresenceUnknown}}
	sink := &fakeSink{}
	engine := newEngine(store, oracle, sink)

	summary, err := engine.Run(context.Background())
	require.NoError(t, err)
	require.NotNil(t, summary)

	assert.Equal(t, 1, summary.CheckFailed)
	assert.Zero(t, summary.Departed)
	assert.Empty(t, store.purges, "a failed lookup must never purge")
	assert.Empty(t, sink.delivered)

	_, exists := store.members[1]
	assert.True(t, exists)
}

func TestRunPurgeFailureKeepsGoing(t *testing.T) {
	store := newFakeStore()
	store.addMember(member(1, "alda"))
	store.addMember(member(2, "bryn"))
	store.failFor[1] = errors.New("connection reset")

	oracle := &fakeOracle{presence: map[uint64]Presence{
		1: PresenceAbsent,
		2: PresenceAbsent,
	}}
	sink := &fakeSink{}
	engine := newEngine(store, oracle, sink)

	summary, err := engine.Run(context.Background())
	require.NoError(t, err)
	require.NotNil(t, summary)

	assert.Equal(t, 2, summary.Departed)
	assert.Equal(t, 1, summary.PurgeFailed)

	// the failed member survives untouched, the other is purged
	_, exists := store.members[1]
	assert.True(t, exists)
	require.Len(t, store.purges, 1)
	assert.Equal(t, uint64(2), store.purges[0].snapshot.ID)
}

func TestRunAffectedCoLeaders(t *testing.T) {
	store := newFakeStore()
	store.addMember(member(1, "alda", 100))
	store.addMember(member(2, "bryn"))
	store.addLeader(100, 1, types.LeaderSlotPrimary)
	store.addLeader(100, 2, types.LeaderSlotSecondary)

	oracle := &fakeOracle{
		presence: map[uint64]Presence{1: PresenceAbsent},
		roles:    map[uint64]string{100: "Iron Vanguard"},
	}
	engine := newEngine(store, oracle, &fakeSink{})

	summary, err := engine.Run(context.Background())
	require.NoError(t, err)
	require.NotNil(t, summary)

	assert.Equal(t, 1, summary.AffectedLeaders)
	assert.True(t, store.hasLeader(100, 2), "co-leader slot must survive")
}

func TestRunFailedPurgeCountsNoAffectedLeaders(t *testing.T) {
	store := newFakeStore()
	store.addMember(member(1, "alda", 100))
	store.addMember(member(2, "bryn"))
	store.addLeader(100, 2, types.LeaderSlotPrimary)
	store.failFor[1] = errors.New("connection reset")

	oracle := &fakeOracle{
		presence: map[uint64]Presence{1: PresenceAbsent},
		roles:    map[uint64]string{100: "Iron Vanguard"},
	}
	engine := newEngine(store, oracle, &fakeSink{})

	summary, err := engine.Run(context.Background())
	require.NoError(t, err)
	require.NotNil(t, summary)

	assert.Equal(t, 1, summary.PurgeFailed)
	assert.Equal(t, 0, summary.AffectedLeaders, "a member that was not purged affects no co-leaders")
}

func TestRunNotReentrant(t *testing.T) {
	store := newFakeStore()
	store.addMember(member(1, "alda"))

	blocker := make(chan struct{})
	oracle := &blockingOracle{block: blocker, entered: make(chan struct{})}
	engine := New(store, oracle, &fakeSink{}, 1, zap.NewNop())

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = engine.Run(context.Background())
	}()

	// Wait until the first run is inside the presence phase
	<-oracle.entered

	_, err := engine.Run(context.Background())
	assert.ErrorIs(t, err, ErrRunInProgress)

	close(blocker)
	<-done
}

// blockingOracle parks the first lookup until released.
type blockingOracle struct {
	block   chan struct{}
	entered chan struct{}
	once    sync.Once
}

func (o *blockingOracle) Lookup(context.Context, uint64) Presence {
	o.once.Do(func() { close(o.entered) })
	<-o.block

	return PresencePresent
}

func (o *blockingOracle) ResolveRole(context.Context, uint64) (string, bool) {
	return "", false
}

func TestSummaryReportLines(t *testing.T) {
	t.Run("under the cap", func(t *testing.T) {
		s := &Summary{Actions: []string{"a", "b"}}
		assert.Equal(t, []string{"a", "b"}, s.ReportLines())
	})

	t.Run("truncated", func(t *testing.T) {
		s := &Summary{}
		for i := range 15 {
			s.Actions = append(s.Actions, fmt.Sprintf("action %d", i))
		}

		lines := s.ReportLines()
		require.Len(t, lines, 11)
		assert.Equal(t, "action 9", lines[9])
		assert.Equal(t, "+5 more actions", lines[10])
	})
}
