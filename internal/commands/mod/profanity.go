// Package mod - /modconfig profanity subcommands
package mod

import (
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/anurag-krmkr/Parrot/pkg/discord"
	"github.com/anurag-krmkr/Parrot/pkg/models"
)

// createProfanityCommand creates the /modconfig profanity subcommand
func (m *Module) createProfanityCommand() *discord.Command {
	return discord.NewCommand(
		"profanity",
		"Configure the profanity filter",
		"modconfig",
		m.profanityHandler,
	).WithOptions(
		&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionBoolean,
			Name:        "enabled",
			Description: "Turn the filter on or off",
			Required:    true,
		},
		&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionBoolean,
			Name:        "autowarn",
			Description: "Warn the author automatically on a hit",
			Required:    false,
		},
		&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionBoolean,
			Name:        "delete",
			Description: "Delete matching messages",
			Required:    false,
		},
	).WithUserPermissions(discordgo.PermissionAdministrator).
		RequiresDatabase()
}

func (m *Module) profanityHandler(ctx *discord.CommandContext) error {
	enabled := ctx.GetBoolOption("enabled")

	err := m.updateConfig(ctx, func(cfg *models.GuildConfig) {
		prof := &cfg.Automod.Profanity
		prof.Enabled = enabled
		if ctx.GetOption("autowarn") != nil {
			prof.AutoWarn.Enabled = ctx.GetBoolOption("autowarn")
		}
		if ctx.GetOption("delete") != nil {
			prof.AutoWarn.DeleteMessage = ctx.GetBoolOption("delete")
		}
	}, profanityStatusText(enabled))
	if err != nil {
		return err
	}

	m.filter.Invalidate(ctx.Interaction.GuildID)
	return nil
}

func profanityStatusText(enabled bool) string {
	if enabled {
		return "✅ Profanity filter enabled."
	}
	return "✅ Profanity filter disabled."
}

// createWordsCommand creates the /modconfig words subcommand
func (m *Module) createWordsCommand() *discord.Command {
	return discord.NewCommand(
		"words",
		"Manage the filtered word list",
		"modconfig",
		m.wordsHandler,
	).WithOptions(
		&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "action",
			Description: "What to do with the list",
			Required:    true,
			Choices: []*discordgo.ApplicationCommandOptionChoice{
				{Name: "add", Value: "add"},
				{Name: "remove", Value: "remove"},
				{Name: "list", Value: "list"},
			},
		},
		&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "word",
			Description: "Word to add or remove",
			Required:    false,
		},
	).WithUserPermissions(discordgo.PermissionAdministrator).
		RequiresDatabase()
}

func (m *Module) wordsHandler(ctx *discord.CommandContext) error {
	action := ctx.GetStringOption("action")
	word := strings.ToLower(strings.TrimSpace(ctx.GetStringOption("word")))

	if action == "list" {
		cfg, err := m.guildConfig(ctx)
		if err != nil {
			return ctx.ReplyEphemeral("❌ Could not load the configuration, please try again.")
		}
		words := cfg.Automod.Profanity.Words
		if len(words) == 0 {
			return ctx.ReplyEphemeral("The word list is empty.")
		}
		return ctx.ReplyEphemeral(fmt.Sprintf("Filtered words: ||%s||", strings.Join(words, ", ")))
	}

	if word == "" {
		return ctx.ReplyEphemeral("❌ You must specify a word.")
	}

	var text string
	err := m.updateConfig(ctx, func(cfg *models.GuildConfig) {
		prof := &cfg.Automod.Profanity
		switch action {
		case "add":
			if !containsString(prof.Words, word) {
				prof.Words = append(prof.Words, word)
			}
			text = fmt.Sprintf("✅ ||%s|| added to the word list.", word)
		case "remove":
			prof.Words = removeString(prof.Words, word)
			text = fmt.Sprintf("✅ ||%s|| removed from the word list.", word)
		}
	}, "")
	if err != nil {
		return err
	}

	m.filter.Invalidate(ctx.Interaction.GuildID)
	return ctx.Reply(text)
}

// createIgnoreChannelCommand creates the /modconfig ignorechannel subcommand
func (m *Module) createIgnoreChannelCommand() *discord.Command {
	return discord.NewCommand(
		"ignorechannel",
		"Exempt a channel from the profanity filter",
		"modconfig",
		m.ignoreChannelHandler,
	).WithOptions(
		&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionChannel,
			Name:        "channel",
			Description: "Channel to exempt or re-include",
			Required:    true,
			ChannelTypes: []discordgo.ChannelType{
				discordgo.ChannelTypeGuildText,
			},
		},
		&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionBoolean,
			Name:        "remove",
			Description: "Re-include the channel instead",
			Required:    false,
		},
	).WithUserPermissions(discordgo.PermissionAdministrator).
		RequiresDatabase()
}

func (m *Module) ignoreChannelHandler(ctx *discord.CommandContext) error {
	channel := ctx.GetChannelOption("channel")
	if channel == nil {
		return ctx.ReplyEphemeral("❌ You must specify a channel.")
	}
	reinclude := ctx.GetBoolOption("remove")

	var text string
	err := m.updateConfig(ctx, func(cfg *models.GuildConfig) {
		prof := &cfg.Automod.Profanity
		if reinclude {
			prof.IgnoredChannels = removeString(prof.IgnoredChannels, channel.ID)
			text = fmt.Sprintf("✅ <#%s> is filtered again.", channel.ID)
			return
		}
		if !containsString(prof.IgnoredChannels, channel.ID) {
			prof.IgnoredChannels = append(prof.IgnoredChannels, channel.ID)
		}
		text = fmt.Sprintf("✅ <#%s> is now exempt from the filter.", channel.ID)
	}, "")
	if err != nil {
		return err
	}
	return ctx.Reply(text)
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func removeString(list []string, s string) []string {
	out := list[:0]
	for _, v := range list {
		if v != s {
			out = append(out, v)
		}
	}
	return out
}
