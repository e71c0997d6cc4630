package bot

import (
	"context"
	"fmt"

	"github.com/disgoorg/disgo"
	"github.com/disgoorg/disgo/bot"
	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/events"
	"github.com/disgoorg/disgo/gateway"
	"github.com/wardenlabs/unionwarden/internal/bot/handlers"
	"github.com/wardenlabs/unionwarden/internal/setup"
	"go.uber.org/zap"
)

// Bot owns the Discord gateway connection and routes slash commands to
// their handlers.
type Bot struct {
	client  bot.Client
	handler *handlers.Handler
	logger  *zap.Logger
}

// New initializes a Bot instance with its command handlers and a
// Discord client configured with the required gateway intents.
func New(app *setup.App, logger *zap.Logger) (*Bot, error) {
	handler := handlers.New(app.DB, app.Oracle, logger)

	b := &Bot{
		handler: handler,
		logger:  logger.Named("bot"),
	}

	client, err := disgo.New(app.Config.Common.Discord.Token,
		bot.WithGatewayConfigOpts(
			gateway.WithIntents(
				gateway.IntentGuilds,
			),
		),
		bot.WithEventListeners(&events.ListenerAdapter{
			OnApplicationCommandInteraction: b.handleApplicationCommandInteraction,
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create Discord client: %w", err)
	}

	b.client = client

	return b, nil
}

// Start registers the slash commands with Discord and opens the gateway
// connection.
func (b *Bot) Start(ctx context.Context) error {
	b.logger.Info("Registering commands")

	_, err := b.client.Rest().SetGlobalCommands(b.client.ApplicationID(), commands())
	if err != nil {
		return fmt.Errorf("failed to register commands: %w", err)
	}

	return b.client.OpenGateway(ctx)
}

// Close gracefully shuts down the Discord connection.
func (b *Bot) Close(ctx context.Context) {
	b.client.Close(ctx)
}

// handleApplicationCommandInteraction routes slash commands.
func (b *Bot) handleApplicationCommandInteraction(event *events.ApplicationCommandInteractionCreate) {
	b.handler.HandleCommand(event)
}

// commands defines the bot's slash command surface.
func commands() []discord.ApplicationCommandCreate {
	return []discord.ApplicationCommandCreate{
		discord.SlashCommandCreate{
			Name:        "register",
			Description: "Register your in-game name",
			Options: []discord.ApplicationCommandOption{
				discord.ApplicationCommandOptionString{
					Name:        "ign",
					Description: "Your primary in-game name",
					Required:    true,
				},
				discord.ApplicationCommandOptionString{
					Name:        "secondary",
					Description: "Your secondary in-game name",
				},
			},
		},
		discord.SlashCommandCreate{
			Name:        "unregister",
			Description: "Clear your registered in-game names",
		},
		discord.SlashCommandCreate{
			Name:        "whois",
			Description: "Look up a member's registration",
			Options: []discord.ApplicationCommandOption{
				discord.ApplicationCommandOptionUser{
					Name:        "user",
					Description: "The member to look up",
					Required:    true,
				},
			},
		},
		discord.SlashCommandCreate{
			Name:        "union",
			Description: "Manage unions",
			Options: []discord.ApplicationCommandOption{
				discord.ApplicationCommandOptionSubCommand{
					Name:        "register",
					Description: "Register a role as a union",
					Options: []discord.ApplicationCommandOption{
						discord.ApplicationCommandOptionRole{
							Name:        "role",
							Description: "The union role",
							Required:    true,
						},
					},
				},
				discord.ApplicationCommandOptionSubCommand{
					Name:        "deregister",
					Description: "Deregister a union and clear its members",
					Options: []discord.ApplicationCommandOption{
						discord.ApplicationCommandOptionRole{
							Name:        "role",
							Description: "The union role",
							Required:    true,
						},
					},
				},
				discord.ApplicationCommandOptionSubCommand{
					Name:        "assign",
					Description: "Assign a member to a union",
					Options: []discord.ApplicationCommandOption{
						discord.ApplicationCommandOptionUser{
							Name:        "user",
							Description: "The member to assign",
							Required:    true,
						},
						discord.ApplicationCommandOptionRole{
							Name:        "role",
							Description: "The union role",
							Required:    true,
						},
						slotOption("Union slot to assign"),
					},
				},
			},
		},
		discord.SlashCommandCreate{
			Name:        "leader",
			Description: "Manage union leaders",
			Options: []discord.ApplicationCommandOption{
				discord.ApplicationCommandOptionSubCommand{
					Name:        "appoint",
					Description: "Appoint a union leader",
					Options: []discord.ApplicationCommandOption{
						discord.ApplicationCommandOptionRole{
							Name:        "role",
							Description: "The union role",
							Required:    true,
						},
						discord.ApplicationCommandOptionUser{
							Name:        "user",
							Description: "The member to appoint",
							Required:    true,
						},
						slotOption("Leader slot to fill"),
					},
				},
				discord.ApplicationCommandOptionSubCommand{
					Name:        "dismiss",
					Description: "Dismiss a union leader",
					Options: []discord.ApplicationCommandOption{
						discord.ApplicationCommandOptionRole{
							Name:        "role",
							Description: "The union role",
							Required:    true,
						},
						discord.ApplicationCommandOptionUser{
							Name:        "user",
							Description: "The leader to dismiss",
							Required:    true,
						},
					},
				},
			},
		},
		discord.SlashCommandCreate{
			Name:        "member",
			Description: "Manage member records",
			Options: []discord.ApplicationCommandOption{
				discord.ApplicationCommandOptionSubCommand{
					Name:        "purge",
					Description: "Remove a member record with full cascade",
					Options: []discord.ApplicationCommandOption{
						discord.ApplicationCommandOptionUser{
							Name:        "user",
							Description: "The member to purge",
							Required:    true,
						},
					},
				},
			},
		},
	}
}

// slotOption builds the shared primary/secondary slot choice option.
func slotOption(description string) discord.ApplicationCommandOptionString {
	return discord.ApplicationCommandOptionString{
		Name:        "slot",
		Description: description,
		Choices: []discord.ApplicationCommandOptionChoiceString{
			{Name: "primary", Value: "primary"},
			{Name: "secondary", Value: "secondary"},
		},
	}
}
