// Package mod - channel moderation: lock, unlock, block, unblock, slowmode, nuke
package mod

import (
	"fmt"

	"github.com/bwmarrin/discordgo"

	"github.com/anurag-krmkr/Parrot/internal/moderation"
	"github.com/anurag-krmkr/Parrot/internal/platform"
	"github.com/anurag-krmkr/Parrot/pkg/discord"
)

func channelOption() *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionChannel,
		Name:        "channel",
		Description: "Channel to act on (defaults to this one)",
		Required:    false,
	}
}

// resolveChannelTarget picks the channel option or falls back to the current channel
func resolveChannelTarget(ctx *discord.CommandContext) (moderation.Target, bool) {
	if ch := ctx.GetChannelOption("channel"); ch != nil {
		return platform.TargetFromChannel(ch), true
	}
	if ch := ctx.Channel(); ch != nil {
		return platform.TargetFromChannel(ch), true
	}
	return moderation.Target{}, false
}

// createLockCommand creates the /mod lock subcommand
func (m *Module) createLockCommand() *discord.Command {
	return discord.NewCommand(
		"lock",
		"Lock a channel for everyone",
		"mod",
		func(ctx *discord.CommandContext) error { return m.lockHandler(ctx, moderation.ActionLock) },
	).WithOptions(channelOption()).
		WithUserPermissions(discordgo.PermissionManageChannels).
		WithBotPermissions(discordgo.PermissionManageChannels)
}

// createUnlockCommand creates the /mod unlock subcommand
func (m *Module) createUnlockCommand() *discord.Command {
	return discord.NewCommand(
		"unlock",
		"Unlock a previously locked channel",
		"mod",
		func(ctx *discord.CommandContext) error { return m.lockHandler(ctx, moderation.ActionUnlock) },
	).WithOptions(channelOption()).
		WithUserPermissions(discordgo.PermissionManageChannels).
		WithBotPermissions(discordgo.PermissionManageChannels)
}

func (m *Module) lockHandler(ctx *discord.CommandContext, kind moderation.ActionKind) error {
	req, err := m.baseRequest(ctx, kind)
	if err != nil {
		return ctx.ReplyEphemeral("❌ " + err.Error())
	}
	target, ok := resolveChannelTarget(ctx)
	if !ok {
		return ctx.ReplyEphemeral("❌ Could not resolve the channel.")
	}
	req.Target = target

	verb := "locked"
	if kind == moderation.ActionUnlock {
		verb = "unlocked"
	}
	return m.runAction(ctx, req, fmt.Sprintf("🔒 <#%s> has been %s.", target.ID, verb))
}

// createBlockCommand creates the /mod block subcommand. On a voice channel the
// block denies connecting; on a text channel it denies sending.
func (m *Module) createBlockCommand() *discord.Command {
	return discord.NewCommand(
		"block",
		"Block a user from a channel (send for text, connect for voice)",
		"mod",
		func(ctx *discord.CommandContext) error { return m.blockHandler(ctx, moderation.ActionBlock) },
	).WithOptions(userOption(true), channelOption()).
		WithUserPermissions(discordgo.PermissionManageChannels).
		WithBotPermissions(discordgo.PermissionManageRoles | discordgo.PermissionManageChannels)
}

// createUnblockCommand creates the /mod unblock subcommand
func (m *Module) createUnblockCommand() *discord.Command {
	return discord.NewCommand(
		"unblock",
		"Lift a user's channel block",
		"mod",
		func(ctx *discord.CommandContext) error { return m.blockHandler(ctx, moderation.ActionUnblock) },
	).WithOptions(userOption(true), channelOption()).
		WithUserPermissions(discordgo.PermissionManageChannels).
		WithBotPermissions(discordgo.PermissionManageRoles | discordgo.PermissionManageChannels)
}

func (m *Module) blockHandler(ctx *discord.CommandContext, kind moderation.ActionKind) error {
	user := ctx.GetUserOption("user")
	if user == nil {
		return ctx.ReplyEphemeral("❌ You must specify a user.")
	}

	req, err := m.baseRequest(ctx, kind)
	if err != nil {
		return ctx.ReplyEphemeral("❌ " + err.Error())
	}
	req.Target = memberTarget(ctx, user)

	channel := ctx.GetChannelOption("channel")
	if channel == nil {
		channel = ctx.Channel()
	}
	if channel == nil {
		return ctx.ReplyEphemeral("❌ Could not resolve the channel.")
	}
	req.Params.ChannelID = channel.ID
	req.Params.ChannelIsVoice = channel.Type == discordgo.ChannelTypeGuildVoice ||
		channel.Type == discordgo.ChannelTypeGuildStageVoice

	verb := "blocked in"
	if kind == moderation.ActionUnblock {
		verb = "unblocked in"
	}
	return m.runAction(ctx, req, fmt.Sprintf("🚫 **%s** has been %s <#%s>.", user.Username, verb, channel.ID))
}

// createSlowmodeCommand creates the /mod slowmode subcommand
func (m *Module) createSlowmodeCommand() *discord.Command {
	return discord.NewCommand(
		"slowmode",
		"Set the channel's slowmode interval (0 disables it)",
		"mod",
		m.slowmodeHandler,
	).WithOptions(
		&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionInteger,
			Name:        "seconds",
			Description: "Seconds between messages per user",
			Required:    true,
			MinValue:    func() *float64 { v := 0.0; return &v }(),
			MaxValue:    21600,
		},
		channelOption(),
	).WithUserPermissions(discordgo.PermissionManageChannels).
		WithBotPermissions(discordgo.PermissionManageChannels)
}

func (m *Module) slowmodeHandler(ctx *discord.CommandContext) error {
	req, err := m.baseRequest(ctx, moderation.ActionSlowmode)
	if err != nil {
		return ctx.ReplyEphemeral("❌ " + err.Error())
	}
	target, ok := resolveChannelTarget(ctx)
	if !ok {
		return ctx.ReplyEphemeral("❌ Could not resolve the channel.")
	}
	req.Target = target
	req.Params.Seconds = int(ctx.GetIntOption("seconds"))

	return m.runAction(ctx, req,
		fmt.Sprintf("🐢 Slowmode in <#%s> set to %d second(s).", target.ID, req.Params.Seconds))
}

// createCloneCommand creates the /mod clone subcommand
func (m *Module) createCloneCommand() *discord.Command {
	return discord.NewCommand(
		"clone",
		"Duplicate a channel with its permissions and position",
		"mod",
		m.cloneHandler,
	).WithOptions(channelOption()).
		WithUserPermissions(discordgo.PermissionManageChannels).
		WithBotPermissions(discordgo.PermissionManageChannels)
}

func (m *Module) cloneHandler(ctx *discord.CommandContext) error {
	req, err := m.baseRequest(ctx, moderation.ActionClone)
	if err != nil {
		return ctx.ReplyEphemeral("❌ " + err.Error())
	}
	target, ok := resolveChannelTarget(ctx)
	if !ok {
		return ctx.ReplyEphemeral("❌ Could not resolve the channel.")
	}
	req.Target = target

	return m.runAction(ctx, req, fmt.Sprintf("📑 **%s** has been cloned.", target.Name))
}

// createNukeCommand creates the /mod nuke subcommand
func (m *Module) createNukeCommand() *discord.Command {
	return discord.NewCommand(
		"nuke",
		"Clone this channel and delete the original, wiping its history",
		"mod",
		m.nukeHandler,
	).WithOptions(channelOption()).
		WithUserPermissions(discordgo.PermissionManageChannels).
		WithBotPermissions(discordgo.PermissionManageChannels)
}

func (m *Module) nukeHandler(ctx *discord.CommandContext) error {
	req, err := m.baseRequest(ctx, moderation.ActionNuke)
	if err != nil {
		return ctx.ReplyEphemeral("❌ " + err.Error())
	}
	target, ok := resolveChannelTarget(ctx)
	if !ok {
		return ctx.ReplyEphemeral("❌ Could not resolve the channel.")
	}
	req.Target = target

	return m.runAction(ctx, req, "💥 Channel nuked and recreated.")
}
