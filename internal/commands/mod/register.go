// Package mod provides moderation commands organized as subcommands under /mod
// Each command is in its own file for better organization
package mod

import (
	"context"
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/anurag-krmkr/Parrot/internal/automod"
	"github.com/anurag-krmkr/Parrot/internal/moderation"
	"github.com/anurag-krmkr/Parrot/internal/platform"
	"github.com/anurag-krmkr/Parrot/pkg/discord"
)

// commandTimeout bounds each command's backend work
const commandTimeout = 30 * time.Second

// Module carries the services the mod commands call into
type Module struct {
	service *moderation.Service
	filter  *automod.Filter
}

// Register wires all moderation commands as /mod subcommands
func Register(client *discord.ExtendedClient, service *moderation.Service, filter *automod.Filter) {
	m := &Module{service: service, filter: filter}

	modGroup := client.CommandHandler.BuildCommandGroup(
		"mod",
		"Moderation commands",
		m.createBanCommand(),
		m.createUnbanCommand(),
		m.createSoftbanCommand(),
		m.createKickCommand(),
		m.createMassBanCommand(),
		m.createMassKickCommand(),
		m.createTimeoutCommand(),
		m.createWarnCommand(),
		m.createWarningsCommand(),
		m.createRemoveWarnCommand(),
		m.createClearWarnsCommand(),
		m.createMuteCommand(),
		m.createUnmuteCommand(),
		m.createPurgeCommand(),
		m.createLockCommand(),
		m.createUnlockCommand(),
		m.createBlockCommand(),
		m.createUnblockCommand(),
		m.createSlowmodeCommand(),
		m.createCloneCommand(),
		m.createNukeCommand(),
		m.createRoleCommand(),
		m.createNickCommand(),
		m.createMenuCommand(),
	)
	client.CommandHandler.AddGlobalCommand(modGroup)

	voiceGroup := client.CommandHandler.BuildCommandGroup(
		"voice",
		"Voice moderation commands",
		m.createVoiceMuteCommand(),
		m.createVoiceUnmuteCommand(),
		m.createVoiceDeafenCommand(),
		m.createVoiceUndeafenCommand(),
		m.createVoiceKickCommand(),
		m.createVoiceMoveCommand(),
	)
	client.CommandHandler.AddGlobalCommand(voiceGroup)

	emojiGroup := client.CommandHandler.BuildCommandGroup(
		"emoji",
		"Emoji management commands",
		m.createEmojiAddCommand(),
		m.createEmojiRenameCommand(),
		m.createEmojiDeleteCommand(),
	)
	client.CommandHandler.AddGlobalCommand(emojiGroup)

	configGroup := client.CommandHandler.BuildCommandGroup(
		"modconfig",
		"Moderation configuration",
		m.createSetModRoleCommand(),
		m.createSetLogCommand(),
		m.createSetMuteRoleCommand(),
		m.createEscalationCommand(),
		m.createProfanityCommand(),
		m.createWordsCommand(),
		m.createIgnoreChannelCommand(),
	)
	client.CommandHandler.AddGlobalCommand(configGroup)
}

// baseRequest builds the guild, actor and bot sides of a request. The target
// is filled in by the caller.
func (m *Module) baseRequest(ctx *discord.CommandContext, kind moderation.ActionKind) (moderation.Request, error) {
	guild := ctx.Guild()
	if guild == nil {
		return moderation.Request{}, fmt.Errorf("command used outside a guild")
	}

	bg, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()
	cfg, err := m.service.Configs().Get(bg, guild.ID)
	if err != nil {
		return moderation.Request{}, err
	}

	req := moderation.Request{
		Kind:    kind,
		GuildID: guild.ID,
		Actor:   platform.ActorFromMember(guild, ctx.Member(), ctx.MemberPermissions(), cfg.ModRole),
		Bot:     platform.BotActor(ctx.Session, guild),
	}
	req.Params.MuteRoleID = cfg.MuteRole
	return req, nil
}

// memberTarget resolves the target's member record for hierarchy data
func memberTarget(ctx *discord.CommandContext, user *discordgo.User) moderation.Target {
	guild := ctx.Guild()
	member, err := ctx.Session.State.Member(ctx.Interaction.GuildID, user.ID)
	if err != nil {
		member, _ = ctx.Session.GuildMember(ctx.Interaction.GuildID, user.ID)
	}
	return platform.TargetFromUser(guild, user, member)
}

// failText renders an outcome failure for the invoker
func failText(outcome moderation.Outcome) string {
	switch outcome.Failure {
	case moderation.FailurePermissionDenied:
		return "You do not have permission for that action."
	case moderation.FailureBotMissingPermission:
		return "I am missing the permission needed for that action."
	case moderation.FailureTargetProtected:
		return "That target cannot be acted on."
	case moderation.FailureTargetInvalid:
		if outcome.Detail != "" {
			return "Invalid request: " + outcome.Detail
		}
		return "Invalid request."
	case moderation.FailureAlreadyInState:
		if outcome.Detail != "" {
			return "Nothing to do: " + outcome.Detail
		}
		return "Nothing to do."
	default:
		if outcome.Detail != "" {
			return "The platform rejected the action: " + outcome.Detail
		}
		return "The platform rejected the action."
	}
}

// runAction is the shared tail of most handlers: execute and report
func (m *Module) runAction(ctx *discord.CommandContext, req moderation.Request, successText string) error {
	bg, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	outcome := m.service.Moderate(bg, req)
	if !outcome.Success {
		return ctx.ReplyEphemeral("❌ " + failText(outcome))
	}
	return ctx.Reply(successText)
}

func userOption(required bool) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionUser,
		Name:        "user",
		Description: "User to act on",
		Required:    required,
	}
}

func reasonOption() *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionString,
		Name:        "reason",
		Description: "Reason for the action",
		Required:    false,
	}
}
