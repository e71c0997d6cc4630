package handlers

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/events"
	"github.com/wardenlabs/unionwarden/internal/database/types"
	"go.uber.org/zap"
)

// handleRegister upserts the caller's member record with their IGNs.
func (h *Handler) handleRegister(
	event *events.ApplicationCommandInteractionCreate, data discord.SlashCommandInteractionData,
) {
	ctx := context.Background()
	user := event.User()

	member, err := h.db.Model().Member().GetMember(ctx, uint64(user.ID))
	if err != nil {
		if !errors.Is(err, types.ErrMemberNotFound) {
			h.logger.Error("Failed to load member", zap.Error(err))
			h.replyError(event, "Something went wrong, try again later.")

			return
		}

		member = &types.Member{
			ID:           uint64(user.ID),
			RegisteredAt: time.Now(),
		}
	}

	member.Username = user.Username
	member.PrimaryIGN = data.String("ign")

	if secondary, ok := data.OptString("secondary"); ok {
		member.SecondaryIGN = secondary
	}

	if err := h.db.Model().Member().SaveMember(ctx, member); err != nil {
		h.logger.Error("Failed to save member", zap.Error(err))
		h.replyError(event, "Something went wrong, try again later.")

		return
	}

	h.reply(event, fmt.Sprintf("Registered IGN **%s**.", member.PrimaryIGN))
}

// handleUnregister clears the caller's IGNs but keeps the record.
func (h *Handler) handleUnregister(event *events.ApplicationCommandInteractionCreate) {
	ctx := context.Background()
	user := event.User()

	member, err := h.db.Model().Member().GetMember(ctx, uint64(user.ID))
	if err != nil {
		if errors.Is(err, types.ErrMemberNotFound) {
			h.replyError(event, "You are not registered.")
			return
		}

		h.logger.Error("Failed to load member", zap.Error(err))
		h.replyError(event, "Something went wrong, try again later.")

		return
	}

	member.PrimaryIGN = ""
	member.SecondaryIGN = ""

	if err := h.db.Model().Member().SaveMember(ctx, member); err != nil {
		h.logger.Error("Failed to save member", zap.Error(err))
		h.replyError(event, "Something went wrong, try again later.")

		return
	}

	h.reply(event, "Your in-game names have been cleared.")
}

// handleWhois shows a member's registration, unions and leadership.
func (h *Handler) handleWhois(
	event *events.ApplicationCommandInteractionCreate, data discord.SlashCommandInteractionData,
) {
	ctx := context.Background()
	userID := uint64(data.Snowflake("user"))

	member, err := h.db.Model().Member().GetMember(ctx, userID)
	if err != nil {
		if errors.Is(err, types.ErrMemberNotFound) {
			h.replyError(event, "That user is not registered.")
			return
		}

		h.logger.Error("Failed to load member", zap.Error(err))
		h.replyError(event, "Something went wrong, try again later.")

		return
	}

	embed := discord.NewEmbedBuilder().
		SetTitle(member.Username).
		AddField("Primary IGN", valueOrDash(member.PrimaryIGN), true).
		AddField("Secondary IGN", valueOrDash(member.SecondaryIGN), true).
		AddField("Unions", h.unionNames(ctx, member), false)

	if leaders, err := h.db.Model().Leader().GetLeadersByMember(ctx, member.ID); err == nil && len(leaders) > 0 {
		names := make([]string, 0, len(leaders))
		for _, leader := range leaders {
			names = append(names, fmt.Sprintf("%s leader of %s",
				leader.Slot, h.roleName(ctx, leader.UnionID)))
		}

		embed.AddField("Leadership", strings.Join(names, "\n"), false)
	}

	err = event.CreateMessage(discord.NewMessageCreateBuilder().
		SetEmbeds(embed.Build()).
		SetEphemeral(true).
		Build())
	if err != nil {
		h.logger.Error("Failed to send whois response", zap.Error(err))
	}
}

// handleMember handles the admin member subcommands.
func (h *Handler) handleMember(
	event *events.ApplicationCommandInteractionCreate, data discord.SlashCommandInteractionData,
) {
	if data.SubCommandName == nil || *data.SubCommandName != "purge" {
		return
	}

	if !h.requireAdmin(event) {
		return
	}

	ctx := context.Background()
	userID := uint64(data.Snowflake("user"))

	member, err := h.db.Model().Member().GetMember(ctx, userID)
	if err != nil {
		if errors.Is(err, types.ErrMemberNotFound) {
			h.replyError(event, "That user is not registered.")
			return
		}

		h.logger.Error("Failed to load member", zap.Error(err))
		h.replyError(event, "Something went wrong, try again later.")

		return
	}

	leaders, err := h.db.Service().Membership().PurgeMember(ctx, member, types.CleanupActorManual)
	if err != nil {
		h.logger.Error("Failed to purge member", zap.Error(err))
		h.replyError(event, "Failed to purge the member record.")

		return
	}

	h.reply(event, fmt.Sprintf("Purged **%s** (removed %d leader slot(s)).",
		member.Username, len(leaders)))
}

// unionNames renders a member's union references, falling back to a
// placeholder for dangling role IDs.
func (h *Handler) unionNames(ctx context.Context, member *types.Member) string {
	unionIDs := member.UnionIDs()
	if len(unionIDs) == 0 {
		return "—"
	}

	names := make([]string, 0, len(unionIDs))
	for _, unionID := range unionIDs {
		names = append(names, h.roleName(ctx, unionID))
	}

	return strings.Join(names, ", ")
}

// roleName resolves a role name with a placeholder fallback.
func (h *Handler) roleName(ctx context.Context, roleID uint64) string {
	if name, ok := h.oracle.ResolveRole(ctx, roleID); ok {
		return name
	}

	return fmt.Sprintf("unknown union (%d)", roleID)
}

func valueOrDash(value string) string {
	if value == "" {
		return "—"
	}

	return value
}
