package handlers

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/events"
	"github.com/wardenlabs/unionwarden/internal/database/types"
	"go.uber.org/zap"
)

// handleLeader handles the admin leader subcommands.
func (h *Handler) handleLeader(
	event *events.ApplicationCommandInteractionCreate, data discord.SlashCommandInteractionData,
) {
	if data.SubCommandName == nil {
		return
	}

	if !h.requireAdmin(event) {
		return
	}

	switch *data.SubCommandName {
	case "appoint":
		h.handleLeaderAppoint(event, data)
	case "dismiss":
		h.handleLeaderDismiss(event, data)
	}
}

// handleLeaderAppoint appoints a member to a union leader slot.
func (h *Handler) handleLeaderAppoint(
	event *events.ApplicationCommandInteractionCreate, data discord.SlashCommandInteractionData,
) {
	ctx := context.Background()
	userID := uint64(data.Snowflake("user"))
	roleID := uint64(data.Snowflake("role"))

	if _, err := h.db.Model().Union().GetUnion(ctx, roleID); err != nil {
		if errors.Is(err, types.ErrUnionNotFound) {
			h.replyError(event, "That role is not a registered union.")
			return
		}

		h.logger.Error("Failed to load union", zap.Error(err))
		h.replyError(event, "Something went wrong, try again later.")

		return
	}

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

	slot := slotFromOption(data)
	leader := &types.UnionLeader{
		UnionID:     roleID,
		MemberID:    member.ID,
		Slot:        slot,
		AppointedAt: time.Now(),
	}

	if err := h.db.Model().Leader().SaveLeader(ctx, leader); err != nil {
		h.logger.Error("Failed to save leader", zap.Error(err))
		h.replyError(event, "Failed to appoint the leader.")

		return
	}

	h.reply(event, fmt.Sprintf("Appointed **%s** as %s leader of **%s**.",
		member.Username, slot, h.roleName(ctx, roleID)))
}

// handleLeaderDismiss removes a member from a union's leadership.
func (h *Handler) handleLeaderDismiss(
	event *events.ApplicationCommandInteractionCreate, data discord.SlashCommandInteractionData,
) {
	ctx := context.Background()
	userID := uint64(data.Snowflake("user"))
	roleID := uint64(data.Snowflake("role"))

	if err := h.db.Model().Leader().DeleteLeader(ctx, roleID, userID); err != nil {
		if errors.Is(err, types.ErrLeaderNotFound) {
			h.replyError(event, "That user does not lead that union.")
			return
		}

		h.logger.Error("Failed to dismiss leader", zap.Error(err))
		h.replyError(event, "Failed to dismiss the leader.")

		return
	}

	h.reply(event, fmt.Sprintf("Dismissed <@%d> from the leadership of **%s**.",
		userID, h.roleName(ctx, roleID)))
}
