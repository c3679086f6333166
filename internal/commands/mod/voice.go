// Package mod - /voice subcommands
package mod

import (
	"fmt"

	"github.com/bwmarrin/discordgo"

	"github.com/anurag-krmkr/Parrot/internal/moderation"
	"github.com/anurag-krmkr/Parrot/pkg/discord"
)

func (m *Module) voiceHandler(kind moderation.ActionKind, successFmt string) discord.CommandRunFunc {
	return func(ctx *discord.CommandContext) error {
		user := ctx.GetUserOption("user")
		if user == nil {
			return ctx.ReplyEphemeral("❌ You must specify a user.")
		}

		req, err := m.baseRequest(ctx, kind)
		if err != nil {
			return ctx.ReplyEphemeral("❌ " + err.Error())
		}
		req.Target = memberTarget(ctx, user)
		if kind == moderation.ActionVoiceMove {
			channel := ctx.GetChannelOption("channel")
			if channel == nil {
				return ctx.ReplyEphemeral("❌ You must specify a destination channel.")
			}
			req.Params.ChannelID = channel.ID
		}

		return m.runAction(ctx, req, fmt.Sprintf(successFmt, user.Username))
	}
}

// createVoiceMuteCommand creates the /voice mute subcommand
func (m *Module) createVoiceMuteCommand() *discord.Command {
	return discord.NewCommand(
		"mute",
		"Server-mute a user in voice",
		"voice",
		m.voiceHandler(moderation.ActionVoiceMute, "🎙️ **%s** is voice-muted."),
	).WithOptions(userOption(true)).
		WithUserPermissions(discordgo.PermissionVoiceMuteMembers).
		WithBotPermissions(discordgo.PermissionVoiceMuteMembers)
}

// createVoiceUnmuteCommand creates the /voice unmute subcommand
func (m *Module) createVoiceUnmuteCommand() *discord.Command {
	return discord.NewCommand(
		"unmute",
		"Lift a user's voice mute",
		"voice",
		m.voiceHandler(moderation.ActionVoiceUnmute, "🎙️ **%s** is no longer voice-muted."),
	).WithOptions(userOption(true)).
		WithUserPermissions(discordgo.PermissionVoiceMuteMembers).
		WithBotPermissions(discordgo.PermissionVoiceMuteMembers)
}

// createVoiceDeafenCommand creates the /voice deafen subcommand
func (m *Module) createVoiceDeafenCommand() *discord.Command {
	return discord.NewCommand(
		"deafen",
		"Server-deafen a user in voice",
		"voice",
		m.voiceHandler(moderation.ActionVoiceDeafen, "🔕 **%s** is deafened."),
	).WithOptions(userOption(true)).
		WithUserPermissions(discordgo.PermissionVoiceDeafenMembers).
		WithBotPermissions(discordgo.PermissionVoiceDeafenMembers)
}

// createVoiceUndeafenCommand creates the /voice undeafen subcommand
func (m *Module) createVoiceUndeafenCommand() *discord.Command {
	return discord.NewCommand(
		"undeafen",
		"Lift a user's voice deafen",
		"voice",
		m.voiceHandler(moderation.ActionVoiceUndeaf, "🔔 **%s** is no longer deafened."),
	).WithOptions(userOption(true)).
		WithUserPermissions(discordgo.PermissionVoiceDeafenMembers).
		WithBotPermissions(discordgo.PermissionVoiceDeafenMembers)
}

// createVoiceKickCommand creates the /voice kick subcommand
func (m *Module) createVoiceKickCommand() *discord.Command {
	return discord.NewCommand(
		"kick",
		"Disconnect a user from voice",
		"voice",
		m.voiceHandler(moderation.ActionVoiceKick, "👢 **%s** was disconnected from voice."),
	).WithOptions(userOption(true)).
		WithUserPermissions(discordgo.PermissionVoiceMoveMembers).
		WithBotPermissions(discordgo.PermissionVoiceMoveMembers)
}

// createVoiceMoveCommand creates the /voice move subcommand
func (m *Module) createVoiceMoveCommand() *discord.Command {
	return discord.NewCommand(
		"move",
		"Move a user to another voice channel",
		"voice",
		m.voiceHandler(moderation.ActionVoiceMove, "➡️ **%s** was moved."),
	).WithOptions(
		userOption(true),
		&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionChannel,
			Name:        "channel",
			Description: "Destination voice channel",
			Required:    true,
			ChannelTypes: []discordgo.ChannelType{
				discordgo.ChannelTypeGuildVoice,
				discordgo.ChannelTypeGuildStageVoice,
			},
		},
	).WithUserPermissions(discordgo.PermissionVoiceMoveMembers).
		WithBotPermissions(discordgo.PermissionVoiceMoveMembers)
}
