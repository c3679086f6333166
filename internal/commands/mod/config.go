// Package mod - /modconfig subcommands for per-guild moderation settings
package mod

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/anurag-krmkr/Parrot/internal/guildconfig"
	"github.com/anurag-krmkr/Parrot/pkg/discord"
	"github.com/anurag-krmkr/Parrot/pkg/models"
)

// createSetModRoleCommand creates the /modconfig modrole subcommand
func (m *Module) createSetModRoleCommand() *discord.Command {
	return discord.NewCommand(
		"modrole",
		"Set the moderator role",
		"modconfig",
		m.setModRoleHandler,
	).WithOptions(
		&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionRole,
			Name:        "role",
			Description: "Role whose holders may use every moderation command",
			Required:    true,
		},
	).WithUserPermissions(discordgo.PermissionAdministrator).
		RequiresDatabase()
}

func (m *Module) setModRoleHandler(ctx *discord.CommandContext) error {
	role := ctx.GetRoleOption("role")
	if role == nil {
		return ctx.ReplyEphemeral("❌ You must specify a role.")
	}
	return m.updateConfig(ctx, func(cfg *models.GuildConfig) {
		cfg.ModRole = role.ID
	}, fmt.Sprintf("✅ Moderator role set to **%s**.", role.Name))
}

// createSetLogCommand creates the /modconfig log subcommand
func (m *Module) createSetLogCommand() *discord.Command {
	return discord.NewCommand(
		"log",
		"Set the action log channel (omit to disable logging)",
		"modconfig",
		m.setLogHandler,
	).WithOptions(
		&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionChannel,
			Name:        "channel",
			Description: "Channel that receives audit entries",
			Required:    false,
			ChannelTypes: []discordgo.ChannelType{
				discordgo.ChannelTypeGuildText,
			},
		},
	).WithUserPermissions(discordgo.PermissionAdministrator).
		RequiresDatabase()
}

func (m *Module) setLogHandler(ctx *discord.CommandContext) error {
	channel := ctx.GetChannelOption("channel")
	if channel == nil {
		return m.updateConfig(ctx, func(cfg *models.GuildConfig) {
			cfg.ActionLog = ""
		}, "✅ Action logging disabled.")
	}
	return m.updateConfig(ctx, func(cfg *models.GuildConfig) {
		cfg.ActionLog = channel.ID
	}, fmt.Sprintf("✅ Action log channel set to <#%s>.", channel.ID))
}

// createSetMuteRoleCommand creates the /modconfig muterole subcommand
func (m *Module) createSetMuteRoleCommand() *discord.Command {
	return discord.NewCommand(
		"muterole",
		"Set the role assigned by /mod mute",
		"modconfig",
		m.setMuteRoleHandler,
	).WithOptions(
		&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionRole,
			Name:        "role",
			Description: "Role given to muted members",
			Required:    true,
		},
	).WithUserPermissions(discordgo.PermissionAdministrator).
		RequiresDatabase()
}

func (m *Module) setMuteRoleHandler(ctx *discord.CommandContext) error {
	role := ctx.GetRoleOption("role")
	if role == nil {
		return ctx.ReplyEphemeral("❌ You must specify a role.")
	}
	return m.updateConfig(ctx, func(cfg *models.GuildConfig) {
		cfg.MuteRole = role.ID
	}, fmt.Sprintf("✅ Mute role set to **%s**.", role.Name))
}

// createEscalationCommand creates the /modconfig escalation subcommand.
// Rules come as a compact "count:action[:minutes]" list, e.g.
// "3:kick, 5:ban" or "2:timeout:30, 4:ban".
func (m *Module) createEscalationCommand() *discord.Command {
	return discord.NewCommand(
		"escalation",
		"Set the automated warning thresholds",
		"modconfig",
		m.escalationHandler,
	).WithOptions(
		&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "rules",
			Description: "count:action[:minutes] pairs, comma separated (empty to clear)",
			Required:    false,
		},
	).WithUserPermissions(discordgo.PermissionAdministrator).
		RequiresDatabase()
}

func (m *Module) escalationHandler(ctx *discord.CommandContext) error {
	raw := strings.TrimSpace(ctx.GetStringOption("rules"))

	rules, err := parseEscalationRules(raw)
	if err != nil {
		return ctx.ReplyEphemeral("❌ " + err.Error())
	}

	bg, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	if err := m.service.Configs().SetEscalation(bg, ctx.Interaction.GuildID, rules); err != nil {
		if errors.Is(err, guildconfig.ErrDuplicateThreshold) {
			return ctx.ReplyEphemeral("❌ Each warning count may appear only once.")
		}
		return ctx.ReplyEphemeral("❌ Could not save the rules, please try again.")
	}

	if len(rules) == 0 {
		return ctx.Reply("✅ Escalation rules cleared.")
	}
	return ctx.Reply(fmt.Sprintf("✅ %d escalation rule(s) saved.", len(rules)))
}

// parseEscalationRules parses the compact rule syntax. An empty input clears
// the rules.
func parseEscalationRules(raw string) ([]models.EscalationRule, error) {
	if raw == "" {
		return nil, nil
	}

	allowed := map[string]bool{
		"kick": true, "ban": true, "tempban": true,
		"timeout": true, "mute": true, "softban": true,
	}

	var rules []models.EscalationRule
	for _, part := range strings.Split(raw, ",") {
		fields := strings.Split(strings.TrimSpace(part), ":")
		if len(fields) < 2 || len(fields) > 3 {
			return nil, fmt.Errorf("invalid rule %q, expected count:action[:minutes]", part)
		}

		count, err := strconv.Atoi(strings.TrimSpace(fields[0]))
		if err != nil || count < 1 {
			return nil, fmt.Errorf("invalid warning count in %q", part)
		}

		action := strings.ToLower(strings.TrimSpace(fields[1]))
		if !allowed[action] {
			return nil, fmt.Errorf("unsupported action %q", action)
		}

		rule := models.EscalationRule{Count: count, Action: action}
		if len(fields) == 3 {
			minutes, err := strconv.Atoi(strings.TrimSpace(fields[2]))
			if err != nil || minutes < 1 {
				return nil, fmt.Errorf("invalid duration in %q", part)
			}
			rule.Duration = int64(minutes) * 60
		} else if action == "timeout" || action == "tempban" {
			// A timed action without an expiry would fail on every trigger
			return nil, fmt.Errorf("%s rules need a duration, e.g. %d:%s:30", action, count, action)
		}
		rules = append(rules, rule)
	}
	return rules, nil
}

// updateConfig fetches, mutates and stores the guild config
func (m *Module) updateConfig(ctx *discord.CommandContext, mutate func(*models.GuildConfig), successText string) error {
	bg, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	cfg, err := m.service.Configs().Get(bg, ctx.Interaction.GuildID)
	if err != nil {
		return ctx.ReplyEphemeral("❌ Could not load the configuration, please try again.")
	}
	mutate(cfg)
	if err := m.service.Configs().Set(bg, cfg); err != nil {
		return ctx.ReplyEphemeral("❌ Could not save the configuration, please try again.")
	}
	if successText == "" {
		return nil
	}
	return ctx.Reply(successText)
}

// guildConfig loads the invoking guild's config
func (m *Module) guildConfig(ctx *discord.CommandContext) (*models.GuildConfig, error) {
	bg, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()
	return m.service.Configs().Get(bg, ctx.Interaction.GuildID)
}
