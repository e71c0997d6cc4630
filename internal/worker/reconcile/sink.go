package reconcile

import (
	"context"
	"fmt"

	"github.com/disgoorg/disgo/bot"
	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/rest"
	"github.com/disgoorg/snowflake/v2"
	botviews "github.com/wardenlabs/unionwarden/internal/bot/views"
	discordutil "github.com/wardenlabs/unionwarden/internal/discord"
	"github.com/wardenlabs/unionwarden/internal/reconcile"
	"go.uber.org/zap"
)

// channelSink posts sweep reports to the sentinel report channel.
type channelSink struct {
	client      bot.Client
	oracle      *discordutil.GuildOracle
	channelName string
	channelID   snowflake.ID
	logger      *zap.Logger
}

func newChannelSink(client bot.Client, oracle *discordutil.GuildOracle, channelName string, logger *zap.Logger) *channelSink {
	return &channelSink{
		client:      client,
		oracle:      oracle,
		channelName: channelName,
		logger:      logger.Named("report_sink"),
	}
}

// Resolve locates the report channel for the upcoming run. Without a
// matching channel the sweep is skipped entirely.
func (s *channelSink) Resolve(ctx context.Context) bool {
	channelID, ok := s.oracle.FindReportChannel(ctx, s.channelName)
	if !ok {
		return false
	}

	s.channelID = snowflake.ID(channelID)

	return true
}

// Deliver posts the summary embed to the resolved channel.
func (s *channelSink) Deliver(ctx context.Context, summary *reconcile.Summary) error {
	embed := botviews.BuildSweepReport(summary)

	_, err := s.client.Rest().CreateMessage(s.channelID, discord.NewMessageCreateBuilder().
		SetEmbeds(embed).
		Build(), rest.WithCtx(ctx))
	if err != nil {
		return fmt.Errorf("failed to post sweep report: %w", err)
	}

	s.logger.Info("Delivered sweep report",
		zap.Uint64("channelID", uint64(s.channelID)),
		zap.String("runID", summary.RunID))

	return nil
}
