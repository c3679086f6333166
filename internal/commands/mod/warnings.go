// Package mod - /mod warns command
package mod

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/anurag-krmkr/Parrot/internal/infractions"
	"github.com/anurag-krmkr/Parrot/pkg/discord"
)

// createWarningsCommand creates the /mod warns subcommand
func (m *Module) createWarningsCommand() *discord.Command {
	return discord.NewCommand(
		"warns",
		"List a user's warnings",
		"mod",
		m.warningsHandler,
	).WithOptions(
		&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionUser,
			Name:        "user",
			Description: "[STAFF] User to look up (defaults to yourself)",
			Required:    false,
		},
	).RequiresDatabase()
}

func (m *Module) warningsHandler(ctx *discord.CommandContext) error {
	targetUser := ctx.GetUserOption("user")
	isSelf := false
	if targetUser == nil {
		targetUser = ctx.User()
		isSelf = true
	}

	// Anyone may see their own record; someone else's needs moderator rights
	isModerator := ctx.MemberPermissions()&discordgo.PermissionManageMessages != 0
	if !isSelf && !isModerator {
		return ctx.ReplyEphemeral("❌ You do not have permission to view another user's warnings.")
	}

	bg, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	warns, err := m.service.QueryWarnings(bg, ctx.Interaction.GuildID,
		infractions.Filter{TargetID: targetUser.ID})
	if err != nil {
		return ctx.ReplyEphemeral("❌ Could not fetch warnings, please try again.")
	}

	if len(warns) == 0 {
		return ctx.ReplyEphemeralEmbed(&discordgo.MessageEmbed{
			Title:       fmt.Sprintf("🔖 Warnings for %s", targetUser.Username),
			Description: "No warnings on record.",
			Color:       0x2ECC71,
		})
	}

	var b strings.Builder
	for _, w := range warns {
		ts := time.Unix(w.Timestamp, 0).UTC().Format("2006-01-02")
		fmt.Fprintf(&b, "**#%d** - %s (by <@%s>, %s)\n", w.WarnID, w.Reason, w.ModeratorID, ts)
	}

	return ctx.ReplyEphemeralEmbed(&discordgo.MessageEmbed{
		Title:       fmt.Sprintf("🔖 Warnings for %s (%d)", targetUser.Username, len(warns)),
		Description: b.String(),
		Color:       0x3498DB,
	})
}
