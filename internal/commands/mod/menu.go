// Package mod - /mod menu interactive command
package mod

import (
	"context"

	"github.com/bwmarrin/discordgo"

	"github.com/anurag-krmkr/Parrot/internal/moderation"
	"github.com/anurag-krmkr/Parrot/internal/platform"
	"github.com/anurag-krmkr/Parrot/pkg/discord"
	"github.com/anurag-krmkr/Parrot/pkg/errors"
)

// createMenuCommand creates the /mod menu subcommand: an interactive session
// where the moderator picks the action after invoking the command.
func (m *Module) createMenuCommand() *discord.Command {
	return discord.NewCommand(
		"menu",
		"Open an interactive moderation menu for a user",
		"mod",
		m.menuHandler,
	).WithOptions(
		userOption(true),
	).WithUserPermissions(discordgo.PermissionModerateMembers)
}

func (m *Module) menuHandler(ctx *discord.CommandContext) error {
	user := ctx.GetUserOption("user")
	if user == nil {
		return ctx.ReplyEphemeral("❌ You must specify a user.")
	}

	req, err := m.baseRequest(ctx, moderation.ActionWarn)
	if err != nil {
		return ctx.ReplyEphemeral("❌ " + err.Error())
	}
	req.Kind = ""
	req.Target = memberTarget(ctx, user)
	req.Params.ChannelID = ctx.Interaction.ChannelID

	if err := ctx.ReplyEphemeral("Opening the moderation menu..."); err != nil {
		return err
	}

	prompter := platform.NewPrompter(ctx.Session, ctx.Interaction.ChannelID, ctx.User().ID)
	menu := moderation.NewMenu(m.service, prompter)

	// The session outlives the interaction; the prompter owns the timeouts
	go func() {
		defer errors.RecoverMiddleware()()
		menu.Run(context.Background(), req)
	}()
	return nil
}
