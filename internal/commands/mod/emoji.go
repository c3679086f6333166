// Package mod - /emoji subcommands
package mod

import (
	"fmt"

	"github.com/bwmarrin/discordgo"

	"github.com/anurag-krmkr/Parrot/internal/moderation"
	"github.com/anurag-krmkr/Parrot/pkg/discord"
)

func emojiNameOption() *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionString,
		Name:        "name",
		Description: "Emoji name",
		Required:    true,
	}
}

// createEmojiAddCommand creates the /emoji add subcommand
func (m *Module) createEmojiAddCommand() *discord.Command {
	return discord.NewCommand(
		"add",
		"Add an emoji from an image URL",
		"emoji",
		m.emojiAddHandler,
	).WithOptions(
		emojiNameOption(),
		&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "url",
			Description: "Image URL (png, jpg or gif)",
			Required:    true,
		},
	).WithUserPermissions(discordgo.PermissionManageGuildExpressions).
		WithBotPermissions(discordgo.PermissionManageGuildExpressions)
}

func (m *Module) emojiAddHandler(ctx *discord.CommandContext) error {
	name := ctx.GetStringOption("name")
	url := ctx.GetStringOption("url")
	if name == "" || url == "" {
		return ctx.ReplyEphemeral("❌ You must specify a name and an image URL.")
	}

	req, err := m.baseRequest(ctx, moderation.ActionEmojiAddURL)
	if err != nil {
		return ctx.ReplyEphemeral("❌ " + err.Error())
	}
	req.Target = moderation.Target{Type: moderation.TargetEmoji, Name: name}
	req.Params.EmojiName = name
	req.Params.EmojiURL = url

	return m.runAction(ctx, req, fmt.Sprintf("😀 Emoji **%s** added.", name))
}

// createEmojiRenameCommand creates the /emoji rename subcommand
func (m *Module) createEmojiRenameCommand() *discord.Command {
	return discord.NewCommand(
		"rename",
		"Rename an emoji",
		"emoji",
		m.emojiRenameHandler,
	).WithOptions(
		&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "id",
			Description: "ID of the emoji to rename",
			Required:    true,
		},
		emojiNameOption(),
	).WithUserPermissions(discordgo.PermissionManageGuildExpressions).
		WithBotPermissions(discordgo.PermissionManageGuildExpressions)
}

func (m *Module) emojiRenameHandler(ctx *discord.CommandContext) error {
	emojiID := ctx.GetStringOption("id")
	name := ctx.GetStringOption("name")
	if emojiID == "" || name == "" {
		return ctx.ReplyEphemeral("❌ You must specify the emoji id and its new name.")
	}

	req, err := m.baseRequest(ctx, moderation.ActionEmojiRename)
	if err != nil {
		return ctx.ReplyEphemeral("❌ " + err.Error())
	}
	req.Target = moderation.Target{Type: moderation.TargetEmoji, ID: emojiID, Name: name}
	req.Params.EmojiName = name

	return m.runAction(ctx, req, fmt.Sprintf("😀 Emoji renamed to **%s**.", name))
}

// createEmojiDeleteCommand creates the /emoji delete subcommand
func (m *Module) createEmojiDeleteCommand() *discord.Command {
	return discord.NewCommand(
		"delete",
		"Delete an emoji",
		"emoji",
		m.emojiDeleteHandler,
	).WithOptions(
		&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "id",
			Description: "ID of the emoji to delete",
			Required:    true,
		},
	).WithUserPermissions(discordgo.PermissionManageGuildExpressions).
		WithBotPermissions(discordgo.PermissionManageGuildExpressions)
}

func (m *Module) emojiDeleteHandler(ctx *discord.CommandContext) error {
	emojiID := ctx.GetStringOption("id")
	if emojiID == "" {
		return ctx.ReplyEphemeral("❌ You must specify the emoji id.")
	}

	req, err := m.baseRequest(ctx, moderation.ActionEmojiDelete)
	if err != nil {
		return ctx.ReplyEphemeral("❌ " + err.Error())
	}
	req.Target = moderation.Target{Type: moderation.TargetEmoji, ID: emojiID}

	return m.runAction(ctx, req, "🗑️ Emoji deleted.")
}
