// Package mod - /mod warn command
package mod

import (
	"context"
	"errors"
	"fmt"

	"github.com/bwmarrin/discordgo"

	"github.com/anurag-krmkr/Parrot/internal/moderation"
	"github.com/anurag-krmkr/Parrot/pkg/discord"
)

// createWarnCommand creates the /mod warn subcommand
func (m *Module) createWarnCommand() *discord.Command {
	return discord.NewCommand(
		"warn",
		"Warn a user",
		"mod",
		m.warnHandler,
	).WithOptions(
		userOption(true),
		&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "reason",
			Description: "Reason for the warning",
			Required:    true,
		},
	).WithUserPermissions(discordgo.PermissionModerateMembers).
		WithBotPermissions(discordgo.PermissionManageMessages).
		RequiresDatabase()
}

func (m *Module) warnHandler(ctx *discord.CommandContext) error {
	user := ctx.GetUserOption("user")
	if user == nil {
		return ctx.ReplyEphemeral("❌ You must specify a user.")
	}
	reason := ctx.GetStringOption("reason")
	if reason == "" {
		return ctx.ReplyEphemeral("❌ You must specify a reason.")
	}

	req, err := m.baseRequest(ctx, moderation.ActionWarn)
	if err != nil {
		return ctx.ReplyEphemeral("❌ " + err.Error())
	}
	req.Target = memberTarget(ctx, user)
	req.Reason = reason
	req.Params.ChannelID = ctx.Interaction.ChannelID

	bg, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	res, err := m.service.IssueWarning(bg, req)
	if err != nil {
		var denied *moderation.DeniedError
		if errors.As(err, &denied) {
			return ctx.ReplyEphemeral("❌ " + failText(moderation.Outcome{Failure: denied.Reason}))
		}
		return ctx.ReplyEphemeral("❌ Could not record the warning, please try again.")
	}

	text := fmt.Sprintf("⚠️ **%s** has been warned (#%d, %d total).\n**Reason:** %s",
		user.Username, res.Record.WarnID, res.Count, reason)
	if res.Escalation != nil && res.Escalation.Success {
		text += fmt.Sprintf("\n⛔ Reached %d warnings: **%s** applied automatically.",
			res.Count, res.Escalation.Kind)
	}
	return ctx.Reply(text)
}
