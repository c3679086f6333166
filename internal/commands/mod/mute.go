// Package mod - /mod mute and unmute commands
package mod

import (
	"fmt"

	"github.com/bwmarrin/discordgo"

	"github.com/anurag-krmkr/Parrot/internal/moderation"
	"github.com/anurag-krmkr/Parrot/pkg/discord"
)

// createMuteCommand creates the /mod mute subcommand
func (m *Module) createMuteCommand() *discord.Command {
	return discord.NewCommand(
		"mute",
		"Mute a user with the configured mute role",
		"mod",
		m.muteHandler,
	).WithOptions(
		userOption(true),
		reasonOption(),
	).WithUserPermissions(discordgo.PermissionModerateMembers).
		WithBotPermissions(discordgo.PermissionManageRoles)
}

func (m *Module) muteHandler(ctx *discord.CommandContext) error {
	user := ctx.GetUserOption("user")
	if user == nil {
		return ctx.ReplyEphemeral("❌ You must specify a user.")
	}

	req, err := m.baseRequest(ctx, moderation.ActionMute)
	if err != nil {
		return ctx.ReplyEphemeral("❌ " + err.Error())
	}
	if req.Params.MuteRoleID == "" {
		return ctx.ReplyEphemeral("❌ No mute role is configured. Use /modconfig muterole first.")
	}
	req.Target = memberTarget(ctx, user)
	req.Reason = ctx.GetStringOption("reason")

	return m.runAction(ctx, req, fmt.Sprintf("🔇 **%s** has been muted.", user.Username))
}

// createUnmuteCommand creates the /mod unmute subcommand
func (m *Module) createUnmuteCommand() *discord.Command {
	return discord.NewCommand(
		"unmute",
		"Lift a user's mute and timeout",
		"mod",
		m.unmuteHandler,
	).WithOptions(
		userOption(true),
	).WithUserPermissions(discordgo.PermissionModerateMembers).
		WithBotPermissions(discordgo.PermissionManageRoles)
}

func (m *Module) unmuteHandler(ctx *discord.CommandContext) error {
	user := ctx.GetUserOption("user")
	if user == nil {
		return ctx.ReplyEphemeral("❌ You must specify a user.")
	}

	req, err := m.baseRequest(ctx, moderation.ActionUnmute)
	if err != nil {
		return ctx.ReplyEphemeral("❌ " + err.Error())
	}
	req.Target = memberTarget(ctx, user)

	return m.runAction(ctx, req, fmt.Sprintf("🔊 **%s** has been unmuted.", user.Username))
}
