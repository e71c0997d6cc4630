package views

import (
	"strconv"
	"strings"
	"time"

	"github.com/disgoorg/disgo/discord"
	"github.com/wardenlabs/unionwarden/internal/reconcile"
)

const (
	// ReportEmbedColor is the accent color of sweep report embeds.
	ReportEmbedColor = 0xE74C3C
)

// BuildSweepReport renders a reconciliation summary as a Discord embed.
func BuildSweepReport(summary *reconcile.Summary) discord.Embed {
	embed := discord.NewEmbedBuilder().
		SetTitle("🧹 Membership Sweep Report").
		SetDescription(strings.Join(summary.ReportLines(), "\n")).
		AddField("Checked", strconv.Itoa(summary.Total), true).
		AddField("Still Present", strconv.Itoa(summary.Present), true).
		AddField("Departed", strconv.Itoa(summary.Departed), true).
		AddField("Leaders Affected", strconv.Itoa(summary.LeadersAffected), true).
		SetColor(ReportEmbedColor).
		SetFooter("Run "+summary.RunID, "").
		SetTimestamp(time.Now())

	if summary.CheckFailed > 0 {
		embed.AddField("Lookups Failed", strconv.Itoa(summary.CheckFailed), true)
	}

	if summary.PurgeFailed > 0 {
		embed.AddField("Purges Failed", strconv.Itoa(summary.PurgeFailed), true)
	}

	return embed.Build()
}
