// Package events provides event handlers for guild (server) events
package events

import (
	"context"
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/anurag-krmkr/Parrot/internal/guildconfig"
	"github.com/anurag-krmkr/Parrot/internal/infractions"
	"github.com/anurag-krmkr/Parrot/pkg/discord"
	"github.com/anurag-krmkr/Parrot/pkg/logger"
)

// lifecycleTimeout bounds the database work done per guild event
const lifecycleTimeout = 30 * time.Second

// GuildLifecycle seeds per-guild state on join and tears it down on leave
type GuildLifecycle struct {
	configs *guildconfig.Service
	ledger  *infractions.Ledger
}

// RegisterGuildEvents registers all guild-related event handlers
func RegisterGuildEvents(client *discord.ExtendedClient, configs *guildconfig.Service, ledger *infractions.Ledger) {
	lc := &GuildLifecycle{configs: configs, ledger: ledger}
	client.EventHandler.OnGuildCreate(lc.onGuildCreate)
	client.EventHandler.OnGuildDelete(lc.onGuildDelete)
}

// onGuildCreate is called when the bot joins a server. GuildCreate also fires
// for every known guild on connect; the join-time check filters those out for
// the welcome message, but the config seed is idempotent and always runs.
func (lc *GuildLifecycle) onGuildCreate(s *discordgo.Session, g *discordgo.GuildCreate) {
	ctx, cancel := context.WithTimeout(context.Background(), lifecycleTimeout)
	defer cancel()

	if err := lc.configs.OnGuildJoin(ctx, g.ID); err != nil {
		logger.Error(fmt.Sprintf("Could not seed config for guild %s: %v", g.ID, err), "Guild")
	}

	if g.JoinedAt.Compare(time.Now().Add(-10*time.Second)) < 0 {
		return
	}

	logger.Info(fmt.Sprintf("➕ Added to guild: %s (ID: %s)", g.Name, g.ID), "Guild")
	logger.Debug(fmt.Sprintf("   Members: %d | Channels: %d", g.MemberCount, len(g.Channels)), "Guild")

	if g.SystemChannelID != "" {
		welcomeEmbed := &discordgo.MessageEmbed{
			Title:       "Thanks for adding me! 🎉",
			Description: "Hi, I am **Parrot**. Use `/mod` for moderation and `/modconfig` to set me up.",
			Color:       0x00FF00,
			Fields: []*discordgo.MessageEmbedField{
				{
					Name:   "🔧 Moderation",
					Value:  "`/mod` - warn, kick, ban and more",
					Inline: true,
				},
				{
					Name:   "⚠️ Warnings",
					Value:  "`/mod warn` with automatic escalation",
					Inline: true,
				},
				{
					Name:   "⚙️ Setup",
					Value:  "`/modconfig` - roles, log channel, thresholds",
					Inline: true,
				},
			},
			Timestamp: time.Now().Format(time.RFC3339),
		}

		if _, err := s.ChannelMessageSendEmbed(g.SystemChannelID, welcomeEmbed); err != nil {
			logger.Debug(fmt.Sprintf("Could not send welcome message in %s: %v", g.ID, err), "Guild")
		}
	}
}

// onGuildDelete is called when the bot leaves a server. All per-guild state
// is removed: config, warnings and the warning counter.
func (lc *GuildLifecycle) onGuildDelete(_ *discordgo.Session, g *discordgo.GuildDelete) {
	// Unavailable means an outage, not a removal; keep the data
	if g.Unavailable {
		return
	}

	logger.Info(fmt.Sprintf("➖ Removed from guild: %s", g.ID), "Guild")

	ctx, cancel := context.WithTimeout(context.Background(), lifecycleTimeout)
	defer cancel()

	if err := lc.configs.OnGuildRemove(ctx, g.ID); err != nil {
		logger.Error(fmt.Sprintf("Could not remove config for guild %s: %v", g.ID, err), "Guild")
	}
	if err := lc.ledger.Purge(ctx, g.ID); err != nil {
		logger.Error(fmt.Sprintf("Could not purge warnings for guild %s: %v", g.ID, err), "Guild")
	}
}
