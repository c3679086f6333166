// Package mod - mass moderation: massban and masskick over many users at once
package mod

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"github.com/bwmarrin/discordgo"

	"github.com/anurag-krmkr/Parrot/internal/moderation"
	"github.com/anurag-krmkr/Parrot/internal/platform"
	"github.com/anurag-krmkr/Parrot/pkg/discord"
)

// maxMassTargets bounds one mass action; larger sweeps go in batches
const maxMassTargets = 20

func usersOption() *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionString,
		Name:        "users",
		Description: "User mentions or ids, separated by spaces or commas",
		Required:    true,
	}
}

// createMassBanCommand creates the /mod massban subcommand
func (m *Module) createMassBanCommand() *discord.Command {
	return discord.NewCommand(
		"massban",
		"Ban several users in one sweep",
		"mod",
		func(ctx *discord.CommandContext) error { return m.massHandler(ctx, moderation.ActionBan, "banned") },
	).WithOptions(
		usersOption(),
		reasonOption(),
	).WithUserPermissions(discordgo.PermissionBanMembers).
		WithBotPermissions(discordgo.PermissionBanMembers)
}

// createMassKickCommand creates the /mod masskick subcommand
func (m *Module) createMassKickCommand() *discord.Command {
	return discord.NewCommand(
		"masskick",
		"Kick several members in one sweep",
		"mod",
		func(ctx *discord.CommandContext) error { return m.massHandler(ctx, moderation.ActionKick, "kicked") },
	).WithOptions(
		usersOption(),
		reasonOption(),
	).WithUserPermissions(discordgo.PermissionKickMembers).
		WithBotPermissions(discordgo.PermissionKickMembers)
}

// massHandler runs one request against every listed user. Authorization and
// execution happen per target; a protected or invalid target never stops the
// rest of the sweep.
func (m *Module) massHandler(ctx *discord.CommandContext, kind moderation.ActionKind, verb string) error {
	ids := parseUserIDs(ctx.GetStringOption("users"))
	if len(ids) == 0 {
		return ctx.ReplyEphemeral("❌ No valid user mentions or ids given.")
	}
	if len(ids) > maxMassTargets {
		return ctx.ReplyEphemeral(fmt.Sprintf("❌ At most %d users per sweep.", maxMassTargets))
	}

	req, err := m.baseRequest(ctx, kind)
	if err != nil {
		return ctx.ReplyEphemeral("❌ " + err.Error())
	}
	req.Reason = ctx.GetStringOption("reason")

	targets := make([]moderation.Target, 0, len(ids))
	for _, id := range ids {
		targets = append(targets, memberTargetByID(ctx, id))
	}

	bg, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	batch := m.service.ModerateBatch(bg, req, targets)
	if batch.Succeeded == 0 {
		return ctx.ReplyEphemeral(fmt.Sprintf("❌ None of the %d users could be %s.", len(targets), verb))
	}
	if batch.Failed > 0 {
		return ctx.Reply(fmt.Sprintf("🔨 %d of %d users %s, %d skipped.",
			batch.Succeeded, len(targets), verb, batch.Failed))
	}
	return ctx.Reply(fmt.Sprintf("🔨 %d users %s.", batch.Succeeded, verb))
}

// memberTargetByID resolves a target from a bare id. A user who already left
// the guild still resolves so bans by id keep working.
func memberTargetByID(ctx *discord.CommandContext, userID string) moderation.Target {
	guild := ctx.Guild()
	member, err := ctx.Session.State.Member(ctx.Interaction.GuildID, userID)
	if err != nil {
		member, _ = ctx.Session.GuildMember(ctx.Interaction.GuildID, userID)
	}
	if member != nil && member.User != nil {
		return platform.TargetFromUser(guild, member.User, member)
	}
	return moderation.NewMemberTarget(userID, userID, 0)
}

// parseUserIDs extracts unique user ids from a free-form list of mentions
// and raw ids. Anything that is not all digits after stripping mention
// punctuation is dropped.
func parseUserIDs(raw string) []string {
	fields := strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || unicode.IsSpace(r)
	})

	seen := make(map[string]bool, len(fields))
	var ids []string
	for _, field := range fields {
		id := strings.Trim(field, "<@!>")
		if id == "" || !allDigits(id) || seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}
	return ids
}

func allDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
