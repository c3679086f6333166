// Package mod - /mod ban, unban and softban commands
package mod

import (
	"fmt"

	"github.com/bwmarrin/discordgo"

	"github.com/anurag-krmkr/Parrot/internal/moderation"
	"github.com/anurag-krmkr/Parrot/pkg/discord"
)

// createBanCommand creates the /mod ban subcommand
func (m *Module) createBanCommand() *discord.Command {
	return discord.NewCommand(
		"ban",
		"Ban a user from the server",
		"mod",
		m.banHandler,
	).WithOptions(
		userOption(true),
		reasonOption(),
		&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionInteger,
			Name:        "days",
			Description: "Days of messages to delete (0-7)",
			Required:    false,
			MinValue:    func() *float64 { v := 0.0; return &v }(),
			MaxValue:    7,
		},
	).WithUserPermissions(discordgo.PermissionBanMembers).
		WithBotPermissions(discordgo.PermissionBanMembers)
}

func (m *Module) banHandler(ctx *discord.CommandContext) error {
	user := ctx.GetUserOption("user")
	if user == nil {
		return ctx.ReplyEphemeral("❌ You must specify a user.")
	}

	req, err := m.baseRequest(ctx, moderation.ActionBan)
	if err != nil {
		return ctx.ReplyEphemeral("❌ " + err.Error())
	}
	req.Target = memberTarget(ctx, user)
	req.Reason = ctx.GetStringOption("reason")
	req.Params.DeleteDays = int(ctx.GetIntOption("days"))

	return m.runAction(ctx, req, fmt.Sprintf("🔨 **%s** has been banned.", user.Username))
}

// createUnbanCommand creates the /mod unban subcommand
func (m *Module) createUnbanCommand() *discord.Command {
	return discord.NewCommand(
		"unban",
		"Remove a user's ban",
		"mod",
		m.unbanHandler,
	).WithOptions(
		&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "userid",
			Description: "ID of the banned user",
			Required:    true,
		},
		reasonOption(),
	).WithUserPermissions(discordgo.PermissionBanMembers).
		WithBotPermissions(discordgo.PermissionBanMembers)
}

func (m *Module) unbanHandler(ctx *discord.CommandContext) error {
	userID := ctx.GetStringOption("userid")
	if userID == "" {
		return ctx.ReplyEphemeral("❌ You must specify a user id.")
	}

	req, err := m.baseRequest(ctx, moderation.ActionUnban)
	if err != nil {
		return ctx.ReplyEphemeral("❌ " + err.Error())
	}
	req.Target = moderation.NewMemberTarget(userID, userID, 0)
	req.Reason = ctx.GetStringOption("reason")

	return m.runAction(ctx, req, fmt.Sprintf("✅ <@%s> has been unbanned.", userID))
}

// createSoftbanCommand creates the /mod softban subcommand
func (m *Module) createSoftbanCommand() *discord.Command {
	return discord.NewCommand(
		"softban",
		"Ban and immediately unban a user to clear their recent messages",
		"mod",
		m.softbanHandler,
	).WithOptions(
		userOption(true),
		reasonOption(),
	).WithUserPermissions(discordgo.PermissionBanMembers).
		WithBotPermissions(discordgo.PermissionBanMembers)
}

func (m *Module) softbanHandler(ctx *discord.CommandContext) error {
	user := ctx.GetUserOption("user")
	if user == nil {
		return ctx.ReplyEphemeral("❌ You must specify a user.")
	}

	req, err := m.baseRequest(ctx, moderation.ActionSoftban)
	if err != nil {
		return ctx.ReplyEphemeral("❌ " + err.Error())
	}
	req.Target = memberTarget(ctx, user)
	req.Reason = ctx.GetStringOption("reason")

	return m.runAction(ctx, req, fmt.Sprintf("🧹 **%s** has been softbanned.", user.Username))
}
