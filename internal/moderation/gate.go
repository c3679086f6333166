package moderation

import (
	"github.com/bwmarrin/discordgo"
)

// Decision is the permission gate's verdict. No side effects; the gate is
// re-evaluated on every invocation because roles and permissions change
// between calls.
type Decision struct {
	Allowed bool
	Reason  Failure
}

// Allow is the positive decision
var Allow = Decision{Allowed: true}

// Deny builds a negative decision with the given reason
func Deny(reason Failure) Decision {
	return Decision{Reason: reason}
}

// requiredPermissions maps each action kind to the platform permission bits
// that authorize it. Holding the guild's moderator role authorizes any kind
// regardless of these bits (OR semantics).
var requiredPermissions = map[ActionKind]int64{
	ActionBan:         discordgo.PermissionBanMembers,
	ActionUnban:       discordgo.PermissionBanMembers,
	ActionSoftban:     discordgo.PermissionBanMembers,
	ActionTempban:     discordgo.PermissionBanMembers,
	ActionKick:        discordgo.PermissionKickMembers,
	ActionTimeout:     discordgo.PermissionModerateMembers,
	ActionMute:        discordgo.PermissionModerateMembers,
	ActionUnmute:      discordgo.PermissionManageRoles,
	ActionBlock:       discordgo.PermissionManageRoles | discordgo.PermissionManageChannels,
	ActionUnblock:     discordgo.PermissionManageRoles | discordgo.PermissionManageChannels,
	ActionLock:        discordgo.PermissionManageChannels,
	ActionUnlock:      discordgo.PermissionManageChannels,
	ActionRoleAdd:     discordgo.PermissionManageRoles,
	ActionRoleRemove:  discordgo.PermissionManageRoles,
	ActionNick:        discordgo.PermissionManageNicknames,
	ActionClone:       discordgo.PermissionManageChannels,
	ActionNuke:        discordgo.PermissionManageChannels,
	ActionPurge:       discordgo.PermissionManageMessages,
	ActionSlowmode:    discordgo.PermissionManageChannels,
	ActionVoiceMute:   discordgo.PermissionVoiceMuteMembers,
	ActionVoiceUnmute: discordgo.PermissionVoiceMuteMembers,
	ActionVoiceDeafen: discordgo.PermissionVoiceDeafenMembers,
	ActionVoiceUndeaf: discordgo.PermissionVoiceDeafenMembers,
	ActionVoiceKick:   discordgo.PermissionVoiceMoveMembers,
	ActionVoiceMove:   discordgo.PermissionVoiceMoveMembers,
	ActionEmojiAdd:    discordgo.PermissionManageGuildExpressions,
	ActionEmojiAddURL: discordgo.PermissionManageGuildExpressions,
	ActionEmojiRename: discordgo.PermissionManageGuildExpressions,
	ActionEmojiDelete: discordgo.PermissionManageGuildExpressions,
	ActionWarn:        discordgo.PermissionManageMessages,
}

// hierarchySensitive lists the kinds where the target's role position and
// protected status matter.
var hierarchySensitive = map[ActionKind]bool{
	ActionBan:         true,
	ActionUnban:       false,
	ActionSoftban:     true,
	ActionTempban:     true,
	ActionKick:        true,
	ActionTimeout:     true,
	ActionMute:        true,
	ActionUnmute:      true,
	ActionBlock:       true,
	ActionUnblock:     true,
	ActionRoleAdd:     true,
	ActionRoleRemove:  true,
	ActionNick:        true,
	ActionVoiceMute:   true,
	ActionVoiceUnmute: true,
	ActionVoiceDeafen: true,
	ActionVoiceUndeaf: true,
	ActionVoiceKick:   true,
	ActionVoiceMove:   true,
	ActionWarn:        true,
}

// Authorize decides whether the request may proceed. Checks short-circuit in
// order: actor rights, bot rights, target legality.
func Authorize(req Request) Decision {
	// The automated sentinel bypasses actor checks but not bot checks
	if !req.Actor.IsSystem() {
		if !actorAuthorized(req.Actor, req.Kind) {
			return Deny(FailurePermissionDenied)
		}
	}

	if !botAuthorized(req.Bot, req.Kind) {
		return Deny(FailureBotMissingPermission)
	}

	if req.Target.Type == TargetMember && req.Target.ID != "" && hierarchySensitive[req.Kind] {
		if reason, protected := targetProtected(req.Actor, req.Bot, req.Target); protected {
			return Deny(reason)
		}
	}

	return Allow
}

func actorAuthorized(actor Actor, kind ActionKind) bool {
	if actor.IsModerator || actor.IsOwner {
		return true
	}
	if actor.Permissions&discordgo.PermissionAdministrator != 0 {
		return true
	}
	required, ok := requiredPermissions[kind]
	if !ok {
		return false
	}
	return actor.Permissions&required == required
}

func botAuthorized(bot Actor, kind ActionKind) bool {
	if bot.Permissions&discordgo.PermissionAdministrator != 0 {
		return true
	}
	required, ok := requiredPermissions[kind]
	if !ok {
		return false
	}
	return bot.Permissions&required == required
}

// targetProtected applies the legality rules: never act on yourself, on the
// bot, on the guild owner, or on a member whose top role is at or above the
// actor's.
func targetProtected(actor Actor, bot Actor, target Target) (Failure, bool) {
	if target.ID == actor.ID {
		return FailureTargetProtected, true
	}
	if target.IsBot || target.ID == bot.ID {
		return FailureTargetProtected, true
	}
	if target.IsOwner {
		return FailureTargetProtected, true
	}
	if !actor.IsSystem() && !actor.IsOwner && target.TopRolePosition >= actor.TopRolePosition {
		return FailureTargetProtected, true
	}
	return FailureNone, false
}
