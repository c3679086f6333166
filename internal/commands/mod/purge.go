// Package mod - /mod purge command
package mod

import (
	"fmt"

	"github.com/bwmarrin/discordgo"

	"github.com/anurag-krmkr/Parrot/internal/moderation"
	"github.com/anurag-krmkr/Parrot/pkg/discord"
)

// createPurgeCommand creates the /mod purge subcommand
func (m *Module) createPurgeCommand() *discord.Command {
	return discord.NewCommand(
		"purge",
		"Bulk delete recent messages in this channel",
		"mod",
		m.purgeHandler,
	).WithOptions(
		&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionInteger,
			Name:        "count",
			Description: "How many recent messages to inspect (1-100)",
			Required:    true,
			MinValue:    func() *float64 { v := 1.0; return &v }(),
			MaxValue:    100,
		},
		&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "filter",
			Description: "Which messages to delete",
			Required:    false,
			Choices: []*discordgo.ApplicationCommandOptionChoice{
				{Name: "all", Value: "all"},
				{Name: "from a user", Value: "author"},
				{Name: "matching a pattern", Value: "regex"},
				{Name: "with attachments", Value: "attachment"},
				{Name: "from bots", Value: "bots"},
				{Name: "with bare links", Value: "links"},
			},
		},
		&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionUser,
			Name:        "user",
			Description: "Author, for the user filter",
			Required:    false,
		},
		&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "pattern",
			Description: "Regular expression, for the pattern filter",
			Required:    false,
		},
	).WithUserPermissions(discordgo.PermissionManageMessages).
		WithBotPermissions(discordgo.PermissionManageMessages)
}

func (m *Module) purgeHandler(ctx *discord.CommandContext) error {
	count := int(ctx.GetIntOption("count"))

	req, err := m.baseRequest(ctx, moderation.ActionPurge)
	if err != nil {
		return ctx.ReplyEphemeral("❌ " + err.Error())
	}

	channel := ctx.Channel()
	if channel == nil {
		return ctx.ReplyEphemeral("❌ Could not resolve this channel.")
	}
	req.Target = moderation.NewChannelTarget(channel.ID, channel.Name)
	req.Params.ChannelID = channel.ID
	req.Params.Count = count
	req.Params.Predicate = moderation.PurgePredicate(ctx.GetStringOption("filter"))
	req.Params.Pattern = ctx.GetStringOption("pattern")
	if user := ctx.GetUserOption("user"); user != nil {
		req.Params.AuthorID = user.ID
	}

	return m.runAction(ctx, req, fmt.Sprintf("🧹 Purged up to %d message(s).", count))
}
