package reconcile

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/sourcegraph/conc/pool"
	"github.com/wardenlabs/unionwarden/internal/database/types"
	"go.uber.org/zap"
)

// ErrRunInProgress is returned when a run is started while a previous
// one has not finished. Runs are never queued.
var ErrRunInProgress = errors.New("reconciliation run already in progress")

// Presence is the three-way outcome of a guild membership lookup. Only
// PresenceAbsent may trigger a purge; a failed lookup must never be
// conflated with a confirmed departure.
type Presence int

const (
	// PresenceUnknown means the lookup failed and nothing can be concluded.
	PresenceUnknown Presence = iota
	// PresencePresent means the user is still in the guild.
	PresencePresent
	// PresenceAbsent means the guild confirmed the user is gone.
	PresenceAbsent
)

// MembershipStore is the persistence surface the engine reconciles.
type MembershipStore interface {
	// GetAllMembers returns every member record ordered by ID.
	GetAllMembers(ctx context.Context) ([]*types.Member, error)
	// GetLeadersByUnion returns the leader slots of a union.
	GetLeadersByUnion(ctx context.Context, unionID uint64) ([]*types.UnionLeader, error)
	// PurgeMember removes a member with full cascade semantics and
	// returns the leader slots the member held.
	PurgeMember(ctx context.Context, member *types.Member, actor types.CleanupActor) ([]*types.UnionLeader, error)
}

// PresenceOracle answers whether users are still part of the tracked
// community and resolves role display names.
type PresenceOracle interface {
	Lookup(ctx context.Context, userID uint64) Presence
	// ResolveRole returns the live display name of a role. ok is false
	// when the role no longer resolves.
	ResolveRole(ctx context.Context, roleID uint64) (string, bool)
}

// Sink receives the summary of a run that purged at least one member.
type Sink interface {
	Deliver(ctx context.Context, summary *Summary) error
}

// Engine compares the membership store against live guild membership,
// purges departed members, and reports what happened.
type Engine struct {
	store       MembershipStore
	oracle      PresenceOracle
	sink        Sink
	logger      *zap.Logger
	concurrency int
	mu          sync.Mutex
}

// New creates a reconciliation engine. concurrency bounds the parallel
// presence lookups; values below one fall back to sequential checks.
func New(store MembershipStore, oracle PresenceOracle, sink Sink, concurrency int, logger *zap.Logger) *Engine {
	if concurrency < 1 {
		concurrency = 1
	}

	return &Engine{
		store:       store,
		oracle:      oracle,
		sink:        sink,
		logger:      logger.Named("reconcile"),
		concurrency: concurrency,
	}
}

// Run executes one reconciliation pass. It returns the run summary, or
// nil when the store held no members. The summary is delivered to the
// sink only when at least one member departed; quiet runs stay silent.
// Run is not reentrant: a call overlapping a running pass returns
// ErrRunInProgress without doing any work.
func (e *Engine) Run(ctx context.Context) (*Summary, error) {
	if !e.mu.TryLock() {
		return nil, ErrRunInProgress
	}
	defer e.mu.Unlock()

	runID := uuid.New().String()
	logger := e.logger.With(zap.String("runID", runID))

	members, err := e.store.GetAllMembers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load members: %w", err)
	}

	if len(members) == 0 {
		logger.Debug("No registered members, nothing to reconcile")
		return nil, nil
	}

	// Presence phase is read-only, so lookups run in parallel. Each
	// goroutine writes only its own slot.
	presences := make([]Presence, len(members))

	p := pool.New().WithMaxGoroutines(e.concurrency)
	for i, member := range members {
		p.Go(func() {
			presences[i] = e.oracle.Lookup(ctx, member.ID)
		})
	}
	p.Wait()

	presentSet := make(map[uint64]struct{})
	for i, member := range members {
		if presences[i] == PresencePresent {
			presentSet[member.ID] = struct{}{}
		}
	}

	summary := &Summary{RunID: runID, Total: len(members)}
	affectedLeaders := make(map[uint64]struct{})

	// Cascade phase stays sequential so two purges can never race on
	// the same leader slot or audit row.
	for i, member := range members {
		switch presences[i] {
		case PresencePresent:
			summary.Present++
		case PresenceUnknown:
			summary.CheckFailed++
			logger.Warn("Presence lookup failed, keeping member",
				zap.Uint64("memberID", member.ID),
				zap.String("username", member.Username))
		case PresenceAbsent:
			summary.Departed++
			e.cascade(ctx, logger, member, presentSet, affectedLeaders, summary)
		}
	}

	summary.AffectedLeaders = len(affectedLeaders)

	logger.Info("Reconciliation run finished",
		zap.Int("total", summary.Total),
		zap.Int("present", summary.Present),
		zap.Int("departed", summary.Departed),
		zap.Int("leadersAffected", summary.LeadersAffected),
		zap.Int("checkFailed", summary.CheckFailed),
		zap.Int("purgeFailed", summary.PurgeFailed))

	if summary.Departed == 0 {
		return summary, nil
	}

	if e.sink != nil {
		if err := e.sink.Deliver(ctx, summary); err != nil {
			logger.Error("Failed to deliver reconciliation report", zap.Error(err))
		}
	}

	return summary, nil
}

// cascade handles one departed member: record still-present co-leaders
// of the member's unions, purge the member through the store, and
// append the action-log narrative. A store failure aborts the member's
// remaining steps and is counted, never raised.
func (e *Engine) cascade(
	ctx context.Context,
	logger *zap.Logger,
	member *types.Member,
	presentSet map[uint64]struct{},
	affectedLeaders map[uint64]struct{},
	summary *Summary,
) {
	// Staged locally so a failed purge contributes nothing to the
	// affected-leader statistics.
	coLeaders := make(map[uint64]struct{})

	for _, unionID := range member.UnionIDs() {
		slots, err := e.store.GetLeadersByUnion(ctx, unionID)
		if err != nil {
			// Best-effort statistics, a broken union reference skips the union
			logger.Debug("Skipping co-leader scan for union",
				zap.Uint64("unionID", unionID), zap.Error(err))
			continue
		}

		for _, slot := range slots {
			if slot.MemberID == member.ID {
				continue
			}

			if _, ok := presentSet[slot.MemberID]; ok {
				coLeaders[slot.MemberID] = struct{}{}
			}
		}
	}

	heldSlots, err := e.store.PurgeMember(ctx, member, types.CleanupActorAuto)
	if err != nil {
		summary.PurgeFailed++
		logger.Error("Failed to purge departed member",
			zap.Uint64("memberID", member.ID),
			zap.String("username", member.Username),
			zap.Error(err))

		return
	}

	for id := range coLeaders {
		affectedLeaders[id] = struct{}{}
	}

	if len(heldSlots) > 0 {
		summary.LeadersAffected++

		for _, slot := range heldSlots {
			summary.Actions = append(summary.Actions, fmt.Sprintf(
				"Removed %s as %s leader of %s",
				member.Username, slot.Slot, e.roleName(ctx, slot.UnionID)))
		}
	}

	summary.Actions = append(summary.Actions, e.removalLine(ctx, member))

	logger.Info("Purged departed member",
		zap.Uint64("memberID", member.ID),
		zap.String("username", member.Username),
		zap.Int("leaderSlots", len(heldSlots)))
}

// removalLine builds the action-log line for a purged member.
func (e *Engine) removalLine(ctx context.Context, member *types.Member) string {
	var b strings.Builder

	b.WriteString("Removed ")
	b.WriteString(member.Username)

	if member.PrimaryIGN != "" {
		b.WriteString(" (IGN: ")
		b.WriteString(member.PrimaryIGN)

		if member.SecondaryIGN != "" {
			b.WriteString(", ")
			b.WriteString(member.SecondaryIGN)
		}

		b.WriteString(")")
	}

	unionIDs := member.UnionIDs()
	if len(unionIDs) > 0 {
		names := make([]string, 0, len(unionIDs))
		for _, unionID := range unionIDs {
			names = append(names, e.roleName(ctx, unionID))
		}

		b.WriteString(", unions: ")
		b.WriteString(strings.Join(names, ", "))
	}

	return b.String()
}

// roleName resolves a role's live display name, falling back to a
// placeholder carrying the raw identifier.
func (e *Engine) roleName(ctx context.Context, roleID uint64) string {
	if name, ok := e.oracle.ResolveRole(ctx, roleID); ok {
		return name
	}

	return fmt.Sprintf("unknown union (%d)", roleID)
}
