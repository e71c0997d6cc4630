package discord

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/disgoorg/disgo/bot"
	"github.com/disgoorg/disgo/rest"
	"github.com/disgoorg/snowflake/v2"
	"github.com/wardenlabs/unionwarden/internal/reconcile"
	"go.uber.org/zap"
)

// GuildOracle answers membership and role questions against the live
// Discord guild through the REST API. It implements
// reconcile.PresenceOracle.
type GuildOracle struct {
	client  bot.Client
	guildID snowflake.ID
	logger  *zap.Logger
}

// NewGuildOracle creates an oracle scoped to the given guild. A zero
// guild ID leaves report-channel discovery scanning every installed
// guild, which is ambiguous in multi-guild deployments.
func NewGuildOracle(client bot.Client, guildID uint64, logger *zap.Logger) *GuildOracle {
	if guildID == 0 {
		logger.Warn("No guild ID configured, report channel discovery will scan all guilds")
	}

	return &GuildOracle{
		client:  client,
		guildID: snowflake.ID(guildID),
		logger:  logger.Named("guild_oracle"),
	}
}

// Lookup checks whether the user is still a member of the guild. Only a
// confirmed 404 from Discord counts as absent; transport and rate-limit
// failures report unknown so they can never purge anyone.
func (o *GuildOracle) Lookup(ctx context.Context, userID uint64) reconcile.Presence {
	_, err := o.client.Rest().GetMember(o.guildID, snowflake.ID(userID), rest.WithCtx(ctx))
	if err == nil {
		return reconcile.PresencePresent
	}

	var restErr *rest.Error
	if errors.As(err, &restErr) && restErr.Response != nil &&
		restErr.Response.StatusCode == http.StatusNotFound {
		return reconcile.PresenceAbsent
	}

	o.logger.Warn("Member lookup failed",
		zap.Uint64("userID", userID),
		zap.Error(err))

	return reconcile.PresenceUnknown
}

// ResolveRole returns the live display name of a guild role. ok is
// false when the role no longer exists or the guild cannot be queried.
func (o *GuildOracle) ResolveRole(ctx context.Context, roleID uint64) (string, bool) {
	roles, err := o.client.Rest().GetRoles(o.guildID, rest.WithCtx(ctx))
	if err != nil {
		o.logger.Warn("Role lookup failed",
			zap.Uint64("roleID", roleID),
			zap.Error(err))

		return "", false
	}

	for _, role := range roles {
		if role.ID == snowflake.ID(roleID) {
			return role.Name, true
		}
	}

	return "", false
}

// FindReportChannel locates the reconciliation report channel by its
// sentinel name (case-insensitive exact match). When a guild is
// configured only that guild is scanned; otherwise every installed
// guild is scanned in iteration order.
func (o *GuildOracle) FindReportChannel(ctx context.Context, name string) (uint64, bool) {
	if o.guildID != 0 {
		return o.findChannelInGuild(ctx, o.guildID, name)
	}

	guilds, err := o.client.Rest().GetCurrentUserGuilds("", 0, 0, 200, false, rest.WithCtx(ctx))
	if err != nil {
		o.logger.Error("Failed to list guilds for channel discovery", zap.Error(err))
		return 0, false
	}

	for _, guild := range guilds {
		if channelID, ok := o.findChannelInGuild(ctx, guild.ID, name); ok {
			return channelID, true
		}
	}

	return 0, false
}

func (o *GuildOracle) findChannelInGuild(ctx context.Context, guildID snowflake.ID, name string) (uint64, bool) {
	channels, err := o.client.Rest().GetGuildChannels(guildID, rest.WithCtx(ctx))
	if err != nil {
		o.logger.Error("Failed to list guild channels",
			zap.Uint64("guildID", uint64(guildID)),
			zap.Error(err))

		return 0, false
	}

	for _, channel := range channels {
		if strings.EqualFold(channel.Name(), name) {
			return uint64(channel.ID()), true
		}
	}

	return 0, false
}
