package platform

import (
	"github.com/bwmarrin/discordgo"

	"github.com/anurag-krmkr/Parrot/internal/moderation"
)

// topRolePosition resolves the highest role position a member holds. Members
// with no roles sit at position 0, below every role.
func topRolePosition(guild *discordgo.Guild, member *discordgo.Member) int {
	if guild == nil || member == nil {
		return 0
	}
	top := 0
	for _, roleID := range member.Roles {
		for _, role := range guild.Roles {
			if role.ID == roleID && role.Position > top {
				top = role.Position
			}
		}
	}
	return top
}

func hasRole(member *discordgo.Member, roleID string) bool {
	if member == nil || roleID == "" {
		return false
	}
	for _, r := range member.Roles {
		if r == roleID {
			return true
		}
	}
	return false
}

// ActorFromMember builds the pipeline's view of an invoking member. modRole
// is the guild's configured moderator role, empty when unset.
func ActorFromMember(guild *discordgo.Guild, member *discordgo.Member, permissions int64, modRole string) moderation.Actor {
	actor := moderation.Actor{
		TopRolePosition: topRolePosition(guild, member),
		Permissions:     permissions,
		IsModerator:     hasRole(member, modRole),
	}
	if member != nil && member.User != nil {
		actor.ID = member.User.ID
		actor.Name = member.User.Username
	}
	if guild != nil && actor.ID != "" {
		actor.IsOwner = guild.OwnerID == actor.ID
	}
	return actor
}

// BotActor builds the bot's own actor in the guild, for the pipeline's
// second permission check.
func BotActor(session *discordgo.Session, guild *discordgo.Guild) moderation.Actor {
	if session == nil || session.State == nil || session.State.User == nil || guild == nil {
		return moderation.Actor{}
	}
	botID := session.State.User.ID
	member, err := session.State.Member(guild.ID, botID)
	if err != nil {
		member, err = session.GuildMember(guild.ID, botID)
		if err != nil {
			return moderation.Actor{ID: botID}
		}
	}

	var permissions int64
	for _, roleID := range member.Roles {
		for _, role := range guild.Roles {
			if role.ID == roleID {
				permissions |= role.Permissions
			}
		}
	}
	// @everyone carries base permissions and shares the guild's id
	for _, role := range guild.Roles {
		if role.ID == guild.ID {
			permissions |= role.Permissions
		}
	}

	return moderation.Actor{
		ID:              botID,
		Name:            session.State.User.Username,
		TopRolePosition: topRolePosition(guild, member),
		Permissions:     permissions,
	}
}

// BotActorResolver returns a guild-keyed resolver over BotActor, backed by
// the session state cache
func BotActorResolver(session *discordgo.Session) func(guildID string) moderation.Actor {
	return func(guildID string) moderation.Actor {
		guild, err := session.State.Guild(guildID)
		if err != nil {
			return moderation.Actor{}
		}
		return BotActor(session, guild)
	}
}

// TargetFromUser builds a member target from a user and, when available, the
// member record carrying role data.
func TargetFromUser(guild *discordgo.Guild, user *discordgo.User, member *discordgo.Member) moderation.Target {
	target := moderation.NewMemberTarget(user.ID, user.Username, topRolePosition(guild, member))
	target.IsBot = user.Bot
	if guild != nil {
		target.IsOwner = guild.OwnerID == user.ID
	}
	return target
}

// TargetFromChannel builds a channel target of the right flavor
func TargetFromChannel(channel *discordgo.Channel) moderation.Target {
	target := moderation.NewChannelTarget(channel.ID, channel.Name)
	if channel.Type == discordgo.ChannelTypeGuildVoice || channel.Type == discordgo.ChannelTypeGuildStageVoice {
		target.Type = moderation.TargetVoiceChannel
	}
	return target
}
