// Package mod - /mod role and nick commands
package mod

import (
	"fmt"

	"github.com/bwmarrin/discordgo"

	"github.com/anurag-krmkr/Parrot/internal/moderation"
	"github.com/anurag-krmkr/Parrot/pkg/discord"
)

// createRoleCommand creates the /mod role subcommand (toggle add/remove)
func (m *Module) createRoleCommand() *discord.Command {
	return discord.NewCommand(
		"role",
		"Give a role to a user, or take it away",
		"mod",
		m.roleHandler,
	).WithOptions(
		userOption(true),
		&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionRole,
			Name:        "role",
			Description: "Role to give or take",
			Required:    true,
		},
		&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionBoolean,
			Name:        "remove",
			Description: "Take the role away instead of giving it",
			Required:    false,
		},
	).WithUserPermissions(discordgo.PermissionManageRoles).
		WithBotPermissions(discordgo.PermissionManageRoles)
}

func (m *Module) roleHandler(ctx *discord.CommandContext) error {
	user := ctx.GetUserOption("user")
	role := ctx.GetRoleOption("role")
	if user == nil || role == nil {
		return ctx.ReplyEphemeral("❌ You must specify both a user and a role.")
	}

	kind := moderation.ActionRoleAdd
	verb := "given"
	if ctx.GetBoolOption("remove") {
		kind = moderation.ActionRoleRemove
		verb = "removed from"
	}

	req, err := m.baseRequest(ctx, kind)
	if err != nil {
		return ctx.ReplyEphemeral("❌ " + err.Error())
	}
	req.Target = memberTarget(ctx, user)
	req.Params.RoleID = role.ID

	return m.runAction(ctx, req,
		fmt.Sprintf("🎭 Role **%s** %s **%s**.", role.Name, verb, user.Username))
}

// createNickCommand creates the /mod nick subcommand
func (m *Module) createNickCommand() *discord.Command {
	return discord.NewCommand(
		"nick",
		"Change a user's nickname",
		"mod",
		m.nickHandler,
	).WithOptions(
		userOption(true),
		&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "nickname",
			Description: "New nickname (empty to reset)",
			Required:    false,
		},
	).WithUserPermissions(discordgo.PermissionManageNicknames).
		WithBotPermissions(discordgo.PermissionManageNicknames)
}

func (m *Module) nickHandler(ctx *discord.CommandContext) error {
	user := ctx.GetUserOption("user")
	if user == nil {
		return ctx.ReplyEphemeral("❌ You must specify a user.")
	}

	req, err := m.baseRequest(ctx, moderation.ActionNick)
	if err != nil {
		return ctx.ReplyEphemeral("❌ " + err.Error())
	}
	req.Target = memberTarget(ctx, user)
	req.Params.Nickname = ctx.GetStringOption("nickname")

	return m.runAction(ctx, req, fmt.Sprintf("✏️ Nickname updated for **%s**.", user.Username))
}
