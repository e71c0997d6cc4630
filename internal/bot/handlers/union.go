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

// handleUnion handles the admin union subcommands.
func (h *Handler) handleUnion(
	event *events.ApplicationCommandInteractionCreate, data discord.SlashCommandInteractionData,
) {
	if data.SubCommandName == nil {
		return
	}

	if !h.requireAdmin(event) {
		return
	}

	switch *data.SubCommandName {
	case "register":
		h.handleUnionRegister(event, data)
	case "deregister":
		h.handleUnionDeregister(event, data)
	case "assign":
		h.handleUnionAssign(event, data)
	}
}

// handleUnionRegister binds a Discord role to a union record.
func (h *Handler) handleUnionRegister(
	event *events.ApplicationCommandInteractionCreate, data discord.SlashCommandInteractionData,
) {
	ctx := context.Background()
	roleID := uint64(data.Snowflake("role"))

	name, ok := h.oracle.ResolveRole(ctx, roleID)
	if !ok {
		h.replyError(event, "Could not resolve that role.")
		return
	}

	union := &types.Union{
		RoleID:    roleID,
		Name:      name,
		CreatedAt: time.Now(),
	}

	if err := h.db.Model().Union().SaveUnion(ctx, union); err != nil {
		h.logger.Error("Failed to save union", zap.Error(err))
		h.replyError(event, "Failed to register the union.")

		return
	}

	h.reply(event, fmt.Sprintf("Registered union **%s**.", name))
}

// handleUnionDeregister removes a union and clears every reference to
// it.
func (h *Handler) handleUnionDeregister(
	event *events.ApplicationCommandInteractionCreate, data discord.SlashCommandInteractionData,
) {
	ctx := context.Background()
	roleID := uint64(data.Snowflake("role"))

	if err := h.db.Service().Membership().DeregisterUnion(ctx, roleID); err != nil {
		if errors.Is(err, types.ErrUnionNotFound) {
			h.replyError(event, "That role is not a registered union.")
			return
		}

		h.logger.Error("Failed to deregister union", zap.Error(err))
		h.replyError(event, "Failed to deregister the union.")

		return
	}

	h.reply(event, "Union deregistered. Member references and leader slots were cleared.")
}

// handleUnionAssign points one of a member's union slots at a
// registered union.
func (h *Handler) handleUnionAssign(
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
	if slot == types.LeaderSlotSecondary {
		member.SecondaryUnionID = roleID
	} else {
		member.PrimaryUnionID = roleID
	}

	if err := h.db.Model().Member().SaveMember(ctx, member); err != nil {
		h.logger.Error("Failed to save member", zap.Error(err))
		h.replyError(event, "Failed to assign the union.")

		return
	}

	h.reply(event, fmt.Sprintf("Assigned **%s** to the %s union slot of **%s**.",
		h.roleName(ctx, roleID), slot, member.Username))
}

// slotFromOption parses the optional slot choice, defaulting to
// primary.
func slotFromOption(data discord.SlashCommandInteractionData) types.LeaderSlot {
	if value, ok := data.OptString("slot"); ok && value == "secondary" {
		return types.LeaderSlotSecondary
	}

	return types.LeaderSlotPrimary
}
