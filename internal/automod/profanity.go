// Package automod watches message traffic and enforces the per-guild
// profanity filter: matching messages are deleted and, when configured, the
// author is warned as the automated sentinel so the regular escalation rules
// apply.
package automod

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	gocache "github.com/patrickmn/go-cache"

	"github.com/anurag-krmkr/Parrot/internal/guildconfig"
	"github.com/anurag-krmkr/Parrot/internal/moderation"
	"github.com/anurag-krmkr/Parrot/pkg/logger"
)

// matcherTTL bounds how stale a compiled word list may get after a config
// change before it is rebuilt.
const matcherTTL = 5 * time.Minute

// IncomingMessage is the slice of a message event the filter needs
type IncomingMessage struct {
	GuildID          string
	ChannelID        string
	MessageID        string
	AuthorID         string
	AuthorName       string
	AuthorIsBot      bool
	AuthorPermission int64
	AuthorIsMod      bool
	AuthorTopRolePos int
	Content          string
}

// Result reports what the filter did with one message
type Result struct {
	Matched bool
	Deleted bool
	Warned  bool
	Count   int // author's warning count after the auto-warn, 0 if none
}

// BotActorFunc resolves the bot's own actor in a guild, used for the
// pipeline's second permission check.
type BotActorFunc func(guildID string) moderation.Actor

// Filter is the profanity enforcement engine. Compiled word-list matchers are
// cached per guild with a short TTL so config edits take effect without a
// restart.
type Filter struct {
	configs  *guildconfig.Service
	service  *moderation.Service
	platform moderation.Platform
	bot      BotActorFunc
	matchers *gocache.Cache
}

// NewFilter builds the profanity filter
func NewFilter(configs *guildconfig.Service, service *moderation.Service, platform moderation.Platform, bot BotActorFunc) *Filter {
	return &Filter{
		configs:  configs,
		service:  service,
		platform: platform,
		bot:      bot,
		matchers: gocache.New(matcherTTL, 2*matcherTTL),
	}
}

// Invalidate drops the cached matcher for a guild, forcing a rebuild on the
// next message. Called when the guild's word list changes.
func (f *Filter) Invalidate(guildID string) {
	f.matchers.Delete(guildID)
}

// compile builds a case-insensitive whole-word matcher over the word list.
// Returns nil for an empty list.
func compile(words []string) *regexp.Regexp {
	quoted := make([]string, 0, len(words))
	for _, w := range words {
		w = strings.TrimSpace(w)
		if w == "" {
			continue
		}
		quoted = append(quoted, regexp.QuoteMeta(strings.ToLower(w)))
	}
	if len(quoted) == 0 {
		return nil
	}
	// Substrings inside longer words never match: "class" stays clean even
	// when "ass" is listed.
	return regexp.MustCompile(`(?i)\b(?:` + strings.Join(quoted, "|") + `)\b`)
}

func (f *Filter) matcherFor(guildID string, words []string) *regexp.Regexp {
	if cached, ok := f.matchers.Get(guildID); ok {
		if re, ok := cached.(*regexp.Regexp); ok {
			return re
		}
		return nil
	}
	re := compile(words)
	if re == nil {
		// Cache the absence too, so empty lists skip recompiling
		f.matchers.Set(guildID, false, gocache.DefaultExpiration)
		return nil
	}
	f.matchers.Set(guildID, re, gocache.DefaultExpiration)
	return re
}

// exempt reports whether the author is outside the filter's reach:
// moderators, administrators and message managers are never filtered.
func exempt(msg IncomingMessage) bool {
	if msg.AuthorIsMod {
		return true
	}
	const bits = discordgo.PermissionAdministrator | discordgo.PermissionManageMessages
	return msg.AuthorPermission&bits != 0
}

func ignoredChannel(channels []string, channelID string) bool {
	for _, c := range channels {
		if c == channelID {
			return true
		}
	}
	return false
}

// Check runs one message through the filter. Message create and edit events
// both land here; an edit that introduces a listed word is treated exactly
// like a fresh message.
func (f *Filter) Check(ctx context.Context, msg IncomingMessage) Result {
	if msg.AuthorIsBot || msg.GuildID == "" {
		return Result{}
	}

	cfg, err := f.configs.Get(ctx, msg.GuildID)
	if err != nil {
		logger.Warn(fmt.Sprintf("profanity check skipped for guild %s: %v", msg.GuildID, err), "Automod")
		return Result{}
	}

	prof := cfg.Automod.Profanity
	if !prof.Enabled || ignoredChannel(prof.IgnoredChannels, msg.ChannelID) || exempt(msg) {
		return Result{}
	}

	re := f.matcherFor(msg.GuildID, prof.Words)
	if re == nil || !re.MatchString(msg.Content) {
		return Result{}
	}

	result := Result{Matched: true}

	if prof.AutoWarn.DeleteMessage {
		if err := f.platform.DeleteMessages(ctx, msg.ChannelID, []string{msg.MessageID}); err != nil {
			logger.Warn(fmt.Sprintf("could not delete message %s in %s: %v", msg.MessageID, msg.ChannelID, err), "Automod")
		} else {
			result.Deleted = true
		}
	}

	if prof.AutoWarn.Enabled {
		req := moderation.Request{
			GuildID: msg.GuildID,
			Actor:   moderation.System,
			Bot:     f.bot(msg.GuildID),
			Target:  moderation.NewMemberTarget(msg.AuthorID, msg.AuthorName, msg.AuthorTopRolePos),
			Reason:  "Profanity filter: listed word used",
		}
		req.Params.ChannelID = msg.ChannelID

		res, err := f.service.IssueWarning(ctx, req)
		if err != nil {
			logger.Warn(fmt.Sprintf("auto-warn for %s in guild %s failed: %v", msg.AuthorID, msg.GuildID, err), "Automod")
		} else {
			result.Warned = true
			result.Count = res.Count
		}
	}

	return result
}
