// Package mod - /mod delwarn and clearwarns commands
package mod

import (
	"context"
	"errors"
	"fmt"

	"github.com/bwmarrin/discordgo"

	"github.com/anurag-krmkr/Parrot/internal/infractions"
	"github.com/anurag-krmkr/Parrot/internal/moderation"
	"github.com/anurag-krmkr/Parrot/pkg/discord"
)

// createRemoveWarnCommand creates the /mod delwarn subcommand
func (m *Module) createRemoveWarnCommand() *discord.Command {
	return discord.NewCommand(
		"delwarn",
		"Delete a single warning by its number",
		"mod",
		m.removeWarnHandler,
	).WithOptions(
		&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionInteger,
			Name:        "id",
			Description: "Warning number to delete",
			Required:    true,
			MinValue:    func() *float64 { v := 1.0; return &v }(),
		},
	).WithUserPermissions(discordgo.PermissionModerateMembers).
		RequiresDatabase()
}

func (m *Module) removeWarnHandler(ctx *discord.CommandContext) error {
	warnID := ctx.GetIntOption("id")
	if warnID < 1 {
		return ctx.ReplyEphemeral("❌ You must specify a warning number.")
	}

	req, err := m.baseRequest(ctx, moderation.ActionWarn)
	if err != nil {
		return ctx.ReplyEphemeral("❌ " + err.Error())
	}

	bg, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	removed, err := m.service.DeleteWarning(bg, req, warnID)
	if err != nil {
		var denied *moderation.DeniedError
		if errors.As(err, &denied) {
			return ctx.ReplyEphemeral("❌ " + failText(moderation.Outcome{Failure: denied.Reason}))
		}
		return ctx.ReplyEphemeral("❌ Could not delete the warning, please try again.")
	}
	if !removed {
		return ctx.ReplyEphemeral(fmt.Sprintf("❌ No warning #%d exists in this server.", warnID))
	}
	return ctx.Reply(fmt.Sprintf("🗑️ Warning #%d deleted.", warnID))
}

// createClearWarnsCommand creates the /mod clearwarns subcommand
func (m *Module) createClearWarnsCommand() *discord.Command {
	return discord.NewCommand(
		"clearwarns",
		"Delete all of a user's warnings",
		"mod",
		m.clearWarnsHandler,
	).WithOptions(
		userOption(true),
	).WithUserPermissions(discordgo.PermissionModerateMembers).
		RequiresDatabase()
}

func (m *Module) clearWarnsHandler(ctx *discord.CommandContext) error {
	user := ctx.GetUserOption("user")
	if user == nil {
		return ctx.ReplyEphemeral("❌ You must specify a user.")
	}

	req, err := m.baseRequest(ctx, moderation.ActionWarn)
	if err != nil {
		return ctx.ReplyEphemeral("❌ " + err.Error())
	}
	req.Target = memberTarget(ctx, user)

	bg, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	removed, err := m.service.DeleteWarnings(bg, req, infractions.Filter{TargetID: user.ID})
	if err != nil {
		var denied *moderation.DeniedError
		if errors.As(err, &denied) {
			return ctx.ReplyEphemeral("❌ " + failText(moderation.Outcome{Failure: denied.Reason}))
		}
		return ctx.ReplyEphemeral("❌ Could not delete the warnings, please try again.")
	}
	return ctx.Reply(fmt.Sprintf("🗑️ Deleted %d warning(s) for **%s**.", removed, user.Username))
}
