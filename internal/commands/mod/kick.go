// Package mod - /mod kick and timeout commands
package mod

import (
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/anurag-krmkr/Parrot/internal/moderation"
	"github.com/anurag-krmkr/Parrot/pkg/discord"
)

// createKickCommand creates the /mod kick subcommand
func (m *Module) createKickCommand() *discord.Command {
	return discord.NewCommand(
		"kick",
		"Kick a user from the server",
		"mod",
		m.kickHandler,
	).WithOptions(
		userOption(true),
		reasonOption(),
	).WithUserPermissions(discordgo.PermissionKickMembers).
		WithBotPermissions(discordgo.PermissionKickMembers)
}

func (m *Module) kickHandler(ctx *discord.CommandContext) error {
	user := ctx.GetUserOption("user")
	if user == nil {
		return ctx.ReplyEphemeral("❌ You must specify a user.")
	}

	req, err := m.baseRequest(ctx, moderation.ActionKick)
	if err != nil {
		return ctx.ReplyEphemeral("❌ " + err.Error())
	}
	req.Target = memberTarget(ctx, user)
	req.Reason = ctx.GetStringOption("reason")

	return m.runAction(ctx, req, fmt.Sprintf("👢 **%s** has been kicked.", user.Username))
}

// createTimeoutCommand creates the /mod timeout subcommand
func (m *Module) createTimeoutCommand() *discord.Command {
	return discord.NewCommand(
		"timeout",
		"Time a user out for a number of minutes",
		"mod",
		m.timeoutHandler,
	).WithOptions(
		userOption(true),
		&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionInteger,
			Name:        "minutes",
			Description: "How long the timeout lasts",
			Required:    true,
			MinValue:    func() *float64 { v := 1.0; return &v }(),
		},
		reasonOption(),
	).WithUserPermissions(discordgo.PermissionModerateMembers).
		WithBotPermissions(discordgo.PermissionModerateMembers)
}

func (m *Module) timeoutHandler(ctx *discord.CommandContext) error {
	user := ctx.GetUserOption("user")
	if user == nil {
		return ctx.ReplyEphemeral("❌ You must specify a user.")
	}
	minutes := ctx.GetIntOption("minutes")
	if minutes < 1 {
		return ctx.ReplyEphemeral("❌ The timeout must last at least one minute.")
	}

	req, err := m.baseRequest(ctx, moderation.ActionTimeout)
	if err != nil {
		return ctx.ReplyEphemeral("❌ " + err.Error())
	}
	req.Target = memberTarget(ctx, user)
	req.Reason = ctx.GetStringOption("reason")
	until := time.Now().Add(time.Duration(minutes) * time.Minute)
	req.Params.Until = &until

	return m.runAction(ctx, req,
		fmt.Sprintf("🔇 **%s** is timed out for %d minute(s).", user.Username, minutes))
}
