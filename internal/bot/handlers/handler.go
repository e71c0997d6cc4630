package handlers

import (
	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/events"
	"github.com/wardenlabs/unionwarden/internal/database"
	discordutil "github.com/wardenlabs/unionwarden/internal/discord"
	"go.uber.org/zap"
)

// Handler processes slash command interactions against the membership
// store.
type Handler struct {
	db     database.Client
	oracle *discordutil.GuildOracle
	logger *zap.Logger
}

// New creates a new command handler.
func New(db database.Client, oracle *discordutil.GuildOracle, logger *zap.Logger) *Handler {
	return &Handler{
		db:     db,
		oracle: oracle,
		logger: logger.Named("handlers"),
	}
}

// HandleCommand routes a slash command to its handler.
func (h *Handler) HandleCommand(event *events.ApplicationCommandInteractionCreate) {
	data := event.SlashCommandInteractionData()

	switch data.CommandName() {
	case "register":
		h.handleRegister(event, data)
	case "unregister":
		h.handleUnregister(event)
	case "whois":
		h.handleWhois(event, data)
	case "union":
		h.handleUnion(event, data)
	case "leader":
		h.handleLeader(event, data)
	case "member":
		h.handleMember(event, data)
	default:
		h.logger.Warn("Unknown command", zap.String("command", data.CommandName()))
	}
}

// requireAdmin checks the invoking member for the ManageRoles
// permission and replies with an error when it is missing.
func (h *Handler) requireAdmin(event *events.ApplicationCommandInteractionCreate) bool {
	member := event.Member()
	if member != nil && member.Permissions.Has(discord.PermissionManageRoles) {
		return true
	}

	h.replyError(event, "You need the Manage Roles permission to use this command.")

	return false
}

// reply sends an ephemeral text response.
func (h *Handler) reply(event *events.ApplicationCommandInteractionCreate, content string) {
	err := event.CreateMessage(discord.NewMessageCreateBuilder().
		SetContent(content).
		SetEphemeral(true).
		Build())
	if err != nil {
		h.logger.Error("Failed to send command response", zap.Error(err))
	}
}

// replyError sends an ephemeral error response.
func (h *Handler) replyError(event *events.ApplicationCommandInteractionCreate, content string) {
	h.reply(event, "❌ "+content)
}
