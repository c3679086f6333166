package events

import (
	"context"
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/anurag-krmkr/Parrot/internal/automod"
	"github.com/anurag-krmkr/Parrot/internal/guildconfig"
	"github.com/anurag-krmkr/Parrot/internal/platform"
	"github.com/anurag-krmkr/Parrot/pkg/discord"
	"github.com/anurag-krmkr/Parrot/pkg/logger"
)

const automodTimeout = 15 * time.Second

// MessageWatcher feeds message traffic through the automod filter
type MessageWatcher struct {
	configs *guildconfig.Service
	filter  *automod.Filter
}

// RegisterMessageEvents registers all message-related event handlers
func RegisterMessageEvents(client *discord.ExtendedClient, configs *guildconfig.Service, filter *automod.Filter) {
	mw := &MessageWatcher{configs: configs, filter: filter}
	client.EventHandler.OnMessageCreate(mw.onMessageCreate)
	client.EventHandler.OnMessageUpdate(mw.onMessageUpdate)
}

func (mw *MessageWatcher) onMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	mw.inspect(s, m.Message)
}

// onMessageUpdate catches edits that sneak a listed word into a message that
// was clean when posted. Embed-only updates arrive without an author and are
// skipped.
func (mw *MessageWatcher) onMessageUpdate(s *discordgo.Session, m *discordgo.MessageUpdate) {
	if m.Author == nil || m.Content == "" {
		return
	}
	mw.inspect(s, m.Message)
}

func (mw *MessageWatcher) inspect(s *discordgo.Session, m *discordgo.Message) {
	if m.Author == nil || m.Author.Bot || m.GuildID == "" {
		return
	}
	if s.State != nil && s.State.User != nil && m.Author.ID == s.State.User.ID {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), automodTimeout)
	defer cancel()

	msg := automod.IncomingMessage{
		GuildID:     m.GuildID,
		ChannelID:   m.ChannelID,
		MessageID:   m.ID,
		AuthorID:    m.Author.ID,
		AuthorName:  m.Author.Username,
		AuthorIsBot: m.Author.Bot,
		Content:     m.Content,
	}

	perms, err := s.State.MessagePermissions(m)
	if err != nil {
		logger.Debug(fmt.Sprintf("Could not resolve permissions for %s in %s: %v", m.Author.ID, m.ChannelID, err), "Message")
	}
	msg.AuthorPermission = perms

	guild, err := s.State.Guild(m.GuildID)
	if err != nil {
		guild = nil
	}

	member := m.Member
	if member == nil && guild != nil {
		if cached, err := s.State.Member(m.GuildID, m.Author.ID); err == nil {
			member = cached
		}
	}

	var modRole string
	if cfg, err := mw.configs.Get(ctx, m.GuildID); err == nil {
		modRole = cfg.ModRole
	}

	author := platform.ActorFromMember(guild, member, perms, modRole)
	msg.AuthorIsMod = author.IsModerator
	msg.AuthorTopRolePos = author.TopRolePosition

	result := mw.filter.Check(ctx, msg)
	if result.Matched {
		logger.Info(fmt.Sprintf("Profanity filter hit in %s by %s (deleted=%t warned=%t)", m.GuildID, m.Author.ID, result.Deleted, result.Warned), "Message")
	}
}
