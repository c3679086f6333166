// Package moderation implements the moderation pipeline: the permission gate,
// the action executor, the warning escalation engine, the audit logger and
// the service facade the command layer talks to. The remote platform and the
// persistent store are consumed through narrow interfaces so each stage can
// be exercised in isolation.
package moderation

import (
	"context"
	"time"
)

// ActionKind identifies a moderation action
type ActionKind string

const (
	ActionBan         ActionKind = "ban"
	ActionUnban       ActionKind = "unban"
	ActionSoftban     ActionKind = "softban"
	ActionTempban     ActionKind = "tempban"
	ActionKick        ActionKind = "kick"
	ActionTimeout     ActionKind = "timeout"
	ActionMute        ActionKind = "mute"
	ActionUnmute      ActionKind = "unmute"
	ActionBlock       ActionKind = "block"
	ActionUnblock     ActionKind = "unblock"
	ActionLock        ActionKind = "lock"
	ActionUnlock      ActionKind = "unlock"
	ActionRoleAdd     ActionKind = "roleadd"
	ActionRoleRemove  ActionKind = "roleremove"
	ActionNick        ActionKind = "nick"
	ActionClone       ActionKind = "clone"
	ActionNuke        ActionKind = "nuke"
	ActionPurge       ActionKind = "purge"
	ActionSlowmode    ActionKind = "slowmode"
	ActionVoiceMute   ActionKind = "voicemute"
	ActionVoiceUnmute ActionKind = "voiceunmute"
	ActionVoiceDeafen ActionKind = "voicedeafen"
	ActionVoiceUndeaf ActionKind = "voiceundeafen"
	ActionVoiceKick   ActionKind = "voicekick"
	ActionVoiceMove   ActionKind = "voicemove"
	ActionEmojiAdd    ActionKind = "emojiadd"
	ActionEmojiAddURL ActionKind = "emojiaddurl"
	ActionEmojiRename ActionKind = "emojirename"
	ActionEmojiDelete ActionKind = "emojidelete"
	ActionWarn        ActionKind = "warn"
)

// Failure classifies why a moderation action did not happen
type Failure string

const (
	FailureNone                 Failure = ""
	FailurePermissionDenied     Failure = "permission_denied"
	FailureBotMissingPermission Failure = "bot_missing_permission"
	FailureTargetProtected      Failure = "target_protected"
	FailureTargetInvalid        Failure = "target_invalid"
	FailurePlatformRejected     Failure = "platform_rejected"
	FailureAlreadyInState       Failure = "already_in_state"
)

// TargetType discriminates the Target union
type TargetType int

const (
	TargetMember TargetType = iota
	TargetTextChannel
	TargetVoiceChannel
	TargetRole
	TargetEmoji
)

// Target is the entity an action is performed against. Exactly one category
// applies per value; member-only fields are meaningful only for TargetMember.
type Target struct {
	Type TargetType
	ID   string
	Name string

	// Member-only fields used by the permission gate
	TopRolePosition int
	IsOwner         bool
	IsBot           bool // true when the target is the bot itself
}

// NewMemberTarget builds a member target
func NewMemberTarget(id, name string, topRolePos int) Target {
	return Target{Type: TargetMember, ID: id, Name: name, TopRolePosition: topRolePos}
}

// NewChannelTarget builds a text channel target
func NewChannelTarget(id, name string) Target {
	return Target{Type: TargetTextChannel, ID: id, Name: name}
}

// Actor is whoever requested the action: a guild member or the automated
// System sentinel.
type Actor struct {
	ID              string
	Name            string
	TopRolePosition int
	Permissions     int64
	IsModerator     bool // holds the guild's configured moderator role
	IsOwner         bool
}

// System is the sentinel actor for automated actions (escalation, automod)
var System = Actor{ID: "0", Name: "Automod", IsModerator: true, IsOwner: true}

// IsSystem reports whether the actor is the automated sentinel
func (a Actor) IsSystem() bool {
	return a.ID == System.ID
}

// PurgePredicate selects which recent messages a purge removes
type PurgePredicate string

const (
	PurgeAll        PurgePredicate = "all"
	PurgeAuthor     PurgePredicate = "author"
	PurgeRegex      PurgePredicate = "regex"
	PurgeAttachment PurgePredicate = "attachment"
	PurgeBots       PurgePredicate = "bots"
	PurgeLinks      PurgePredicate = "links"
)

// Params carries per-kind action parameters; only the fields relevant to the
// request's kind are read.
type Params struct {
	DeleteDays     int        // ban: days of message history to delete (0-7)
	Until          *time.Time // timeout/tempban: expiry instant
	RoleID         string     // roleadd/roleremove
	MuteRoleID     string     // mute/unmute via the configured mute role
	Nickname       string     // nick
	ChannelID      string     // block/unblock/purge: the channel acted in
	ChannelIsVoice bool       // block/unblock: deny connect instead of send
	Count          int        // purge: number of messages to inspect
	Predicate      PurgePredicate
	AuthorID       string // purge by author
	Pattern        string // purge by regex
	EmojiName      string // emoji add/rename
	EmojiURL       string // emoji addurl
	Seconds        int    // slowmode
}

// Request is one moderation intent flowing through the pipeline
type Request struct {
	Kind    ActionKind
	GuildID string
	Actor   Actor
	Bot     Actor // the bot's own member in the guild, for the gate's second check
	Target  Target
	Params  Params
	Reason  string
}

// Outcome is the transient result of one executor call
type Outcome struct {
	Kind    ActionKind
	Success bool
	Failure Failure
	Target  Target
	Detail  string // human-readable context for the invoker, optional
}

func success(kind ActionKind, target Target) Outcome {
	return Outcome{Kind: kind, Success: true, Target: target}
}

func failure(kind ActionKind, target Target, reason Failure, detail string) Outcome {
	return Outcome{Kind: kind, Failure: reason, Target: target, Detail: detail}
}

// BatchOutcome aggregates per-item results of a batch action. One item's
// failure never aborts its siblings.
type BatchOutcome struct {
	Kind      ActionKind
	Items     []Outcome
	Succeeded int
	Failed    int
}

// Message is the minimal view of a channel message the purge predicates need
type Message struct {
	ID            string
	AuthorID      string
	AuthorIsBot   bool
	Content       string
	HasAttachment bool
}

// OverwriteKind selects the subject of a channel permission overwrite
type OverwriteKind int

const (
	OverwriteRole OverwriteKind = iota
	OverwriteMember
)

// Platform is the remote-platform capability the executor consumes. The
// discordgo-backed implementation lives in internal/platform; tests use a
// fake.
type Platform interface {
	BanMember(ctx context.Context, guildID, userID, reason string, deleteDays int) error
	UnbanMember(ctx context.Context, guildID, userID string) error
	IsBanned(ctx context.Context, guildID, userID string) (bool, error)
	KickMember(ctx context.Context, guildID, userID, reason string) error
	IsMember(ctx context.Context, guildID, userID string) (bool, error)
	TimeoutMember(ctx context.Context, guildID, userID string, until *time.Time) error
	MemberHasRole(ctx context.Context, guildID, userID, roleID string) (bool, error)
	AddRole(ctx context.Context, guildID, userID, roleID string) error
	RemoveRole(ctx context.Context, guildID, userID, roleID string) error
	RoleHasAdmin(ctx context.Context, guildID, roleID string) (bool, error)
	SetChannelPermission(ctx context.Context, channelID, overwriteID string, kind OverwriteKind, allow, deny int64) error
	SetNickname(ctx context.Context, guildID, userID, nickname string) error
	VoiceChannel(ctx context.Context, guildID, userID string) (string, error)
	SetVoiceMute(ctx context.Context, guildID, userID string, mute bool) error
	SetVoiceDeaf(ctx context.Context, guildID, userID string, deaf bool) error
	MoveToVoice(ctx context.Context, guildID, userID, channelID string) error
	CloneChannel(ctx context.Context, guildID, channelID string) (string, error)
	DeleteChannel(ctx context.Context, channelID string) error
	ChannelMessages(ctx context.Context, channelID string, limit int) ([]Message, error)
	DeleteMessages(ctx context.Context, channelID string, messageIDs []string) error
	SetSlowmode(ctx context.Context, channelID string, seconds int) error
	CreateEmoji(ctx context.Context, guildID, name string, image []byte) error
	RenameEmoji(ctx context.Context, guildID, emojiID, name string) error
	DeleteEmoji(ctx context.Context, guildID, emojiID string) error
	FetchURL(ctx context.Context, url string) ([]byte, error)
}
