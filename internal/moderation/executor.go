package moderation

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/anurag-krmkr/Parrot/pkg/logger"
)

const (
	permissionSendMessages = int64(discordgo.PermissionSendMessages)
	permissionConnect      = int64(discordgo.PermissionVoiceConnect)
)

const (
	// Discord caps nicknames at 32 characters; longer names are truncated,
	// never rejected.
	maxNicknameLength = 32
	// Discord caps bulk message deletion at 100 per call
	maxPurgeCount = 100
	// Ban message-deletion window is 0-7 days
	maxBanDeleteDays = 7
)

// linksNoProtocol matches bare domain links written without a scheme,
// e.g. "discord.gg/abc" or "example.com".
var linksNoProtocol = regexp.MustCompile(`(?i)\b(?:[a-z0-9](?:[a-z0-9-]*[a-z0-9])?\.)+[a-z]{2,}(?:/\S*)?\b`)

// Executor performs moderation actions against the platform. Every platform
// error is converted into an Outcome; nothing escapes as a fault.
type Executor struct {
	platform Platform
}

// NewExecutor creates an Executor on the given platform
func NewExecutor(platform Platform) *Executor {
	return &Executor{platform: platform}
}

// Execute performs a single action and reports the outcome
func (e *Executor) Execute(ctx context.Context, req Request) Outcome {
	switch req.Kind {
	case ActionBan, ActionTempban:
		return e.ban(ctx, req)
	case ActionUnban:
		return e.unban(ctx, req)
	case ActionSoftban:
		return e.softban(ctx, req)
	case ActionKick:
		return e.kick(ctx, req)
	case ActionTimeout:
		return e.timeout(ctx, req)
	case ActionMute:
		return e.mute(ctx, req)
	case ActionUnmute:
		return e.unmute(ctx, req)
	case ActionBlock:
		return e.block(ctx, req, true)
	case ActionUnblock:
		return e.block(ctx, req, false)
	case ActionLock:
		return e.lock(ctx, req, true)
	case ActionUnlock:
		return e.lock(ctx, req, false)
	case ActionRoleAdd:
		return e.roleChange(ctx, req, true)
	case ActionRoleRemove:
		return e.roleChange(ctx, req, false)
	case ActionNick:
		return e.nick(ctx, req)
	case ActionClone:
		return e.clone(ctx, req, false)
	case ActionNuke:
		return e.clone(ctx, req, true)
	case ActionPurge:
		return e.purge(ctx, req)
	case ActionSlowmode:
		return e.slowmode(ctx, req)
	case ActionVoiceMute:
		return e.voiceMute(ctx, req, true)
	case ActionVoiceUnmute:
		return e.voiceMute(ctx, req, false)
	case ActionVoiceDeafen:
		return e.voiceDeaf(ctx, req, true)
	case ActionVoiceUndeaf:
		return e.voiceDeaf(ctx, req, false)
	case ActionVoiceKick:
		return e.voiceKick(ctx, req)
	case ActionVoiceMove:
		return e.voiceMove(ctx, req)
	case ActionEmojiAdd, ActionEmojiAddURL:
		return e.emojiAdd(ctx, req)
	case ActionEmojiRename:
		return e.emojiRename(ctx, req)
	case ActionEmojiDelete:
		return e.emojiDelete(ctx, req)
	default:
		return failure(req.Kind, req.Target, FailureTargetInvalid, "unknown action kind")
	}
}

// ExecuteBatch applies the request to each target independently. A failing
// item never aborts its siblings.
func (e *Executor) ExecuteBatch(ctx context.Context, req Request, targets []Target) BatchOutcome {
	batch := BatchOutcome{Kind: req.Kind, Items: make([]Outcome, 0, len(targets))}

	for _, target := range targets {
		itemReq := req
		itemReq.Target = target
		outcome := e.Execute(ctx, itemReq)
		batch.Items = append(batch.Items, outcome)
		if outcome.Success {
			batch.Succeeded++
		} else {
			batch.Failed++
		}
	}
	return batch
}

// rejected maps a raw platform error onto a platform_rejected outcome
func rejected(kind ActionKind, target Target, err error) Outcome {
	logger.Debug(fmt.Sprintf("%s on %s rejected by platform: %v", kind, target.ID, err), "Executor")
	return failure(kind, target, FailurePlatformRejected, err.Error())
}

func (e *Executor) ban(ctx context.Context, req Request) Outcome {
	days := req.Params.DeleteDays
	if days < 0 || days > maxBanDeleteDays {
		return failure(req.Kind, req.Target, FailureTargetInvalid, "message deletion window must be 0-7 days")
	}
	// Banning an already-banned user succeeds silently; the platform call
	// is idempotent.
	if err := e.platform.BanMember(ctx, req.GuildID, req.Target.ID, req.Reason, days); err != nil {
		return rejected(req.Kind, req.Target, err)
	}
	return success(req.Kind, req.Target)
}

func (e *Executor) unban(ctx context.Context, req Request) Outcome {
	banned, err := e.platform.IsBanned(ctx, req.GuildID, req.Target.ID)
	if err != nil {
		return rejected(req.Kind, req.Target, err)
	}
	if !banned {
		return failure(req.Kind, req.Target, FailureTargetInvalid, "user is not banned")
	}
	if err := e.platform.UnbanMember(ctx, req.GuildID, req.Target.ID); err != nil {
		return rejected(req.Kind, req.Target, err)
	}
	return success(req.Kind, req.Target)
}

func (e *Executor) softban(ctx context.Context, req Request) Outcome {
	// Softban is ban-then-unban: removes recent messages without a lasting ban
	if err := e.platform.BanMember(ctx, req.GuildID, req.Target.ID, req.Reason, 1); err != nil {
		return rejected(req.Kind, req.Target, err)
	}
	if err := e.platform.UnbanMember(ctx, req.GuildID, req.Target.ID); err != nil {
		return rejected(req.Kind, req.Target, err)
	}
	return success(req.Kind, req.Target)
}

func (e *Executor) kick(ctx context.Context, req Request) Outcome {
	member, err := e.platform.IsMember(ctx, req.GuildID, req.Target.ID)
	if err != nil {
		return rejected(req.Kind, req.Target, err)
	}
	if !member {
		return failure(req.Kind, req.Target, FailureTargetInvalid, "user is not a guild member")
	}
	if err := e.platform.KickMember(ctx, req.GuildID, req.Target.ID, req.Reason); err != nil {
		return rejected(req.Kind, req.Target, err)
	}
	return success(req.Kind, req.Target)
}

func (e *Executor) timeout(ctx context.Context, req Request) Outcome {
	until := req.Params.Until
	if until == nil || !until.After(time.Now()) {
		return failure(req.Kind, req.Target, FailureTargetInvalid, "timeout expiry must be in the future")
	}
	if err := e.platform.TimeoutMember(ctx, req.GuildID, req.Target.ID, until); err != nil {
		return rejected(req.Kind, req.Target, err)
	}
	return success(req.Kind, req.Target)
}

// mute assigns the configured mute role. Expiry, if any, belongs to an
// external timer; this core does not manage it.
func (e *Executor) mute(ctx context.Context, req Request) Outcome {
	if req.Params.MuteRoleID == "" {
		return failure(req.Kind, req.Target, FailureTargetInvalid, "no mute role configured")
	}
	has, err := e.platform.MemberHasRole(ctx, req.GuildID, req.Target.ID, req.Params.MuteRoleID)
	if err != nil {
		return rejected(req.Kind, req.Target, err)
	}
	if has {
		return failure(req.Kind, req.Target, FailureAlreadyInState, "member is already muted")
	}
	if err := e.platform.AddRole(ctx, req.GuildID, req.Target.ID, req.Params.MuteRoleID); err != nil {
		return rejected(req.Kind, req.Target, err)
	}
	return success(req.Kind, req.Target)
}

func (e *Executor) unmute(ctx context.Context, req Request) Outcome {
	// Lift both mechanisms: clear a native timeout and drop the mute role
	if err := e.platform.TimeoutMember(ctx, req.GuildID, req.Target.ID, nil); err != nil {
		return rejected(req.Kind, req.Target, err)
	}
	if req.Params.MuteRoleID != "" {
		has, err := e.platform.MemberHasRole(ctx, req.GuildID, req.Target.ID, req.Params.MuteRoleID)
		if err != nil {
			return rejected(req.Kind, req.Target, err)
		}
		if has {
			if err := e.platform.RemoveRole(ctx, req.GuildID, req.Target.ID, req.Params.MuteRoleID); err != nil {
				return rejected(req.Kind, req.Target, err)
			}
		}
	}
	return success(req.Kind, req.Target)
}

// block denies (or restores) the target's channel permission: send for text
// channels, connect for voice channels.
func (e *Executor) block(ctx context.Context, req Request, deny bool) Outcome {
	if req.Params.ChannelID == "" {
		return failure(req.Kind, req.Target, FailureTargetInvalid, "no channel specified")
	}
	bit := permissionSendMessages
	if req.Params.ChannelIsVoice {
		bit = permissionConnect
	}
	var allow, denyBits int64
	if deny {
		denyBits = bit
	} else {
		allow = bit
	}
	if err := e.platform.SetChannelPermission(ctx, req.Params.ChannelID, req.Target.ID, OverwriteMember, allow, denyBits); err != nil {
		return rejected(req.Kind, req.Target, err)
	}
	return success(req.Kind, req.Target)
}

// lock edits the @everyone overwrite on the channel: send for text channels,
// connect for voice channels. The @everyone role id equals the guild id.
func (e *Executor) lock(ctx context.Context, req Request, deny bool) Outcome {
	var bit int64
	switch req.Target.Type {
	case TargetTextChannel:
		bit = permissionSendMessages
	case TargetVoiceChannel:
		bit = permissionConnect
	default:
		return failure(req.Kind, req.Target, FailureTargetInvalid, "lock applies to channels only")
	}
	var allow, denyBits int64
	if deny {
		denyBits = bit
	} else {
		allow = bit
	}
	if err := e.platform.SetChannelPermission(ctx, req.Target.ID, req.GuildID, OverwriteRole, allow, denyBits); err != nil {
		return rejected(req.Kind, req.Target, err)
	}
	return success(req.Kind, req.Target)
}

func (e *Executor) roleChange(ctx context.Context, req Request, add bool) Outcome {
	if req.Params.RoleID == "" {
		return failure(req.Kind, req.Target, FailureTargetInvalid, "no role specified")
	}
	// Administrator roles are never granted or revoked through this path
	admin, err := e.platform.RoleHasAdmin(ctx, req.GuildID, req.Params.RoleID)
	if err != nil {
		return rejected(req.Kind, req.Target, err)
	}
	if admin {
		return failure(req.Kind, req.Target, FailureTargetProtected, "administrator roles cannot be managed here")
	}

	has, err := e.platform.MemberHasRole(ctx, req.GuildID, req.Target.ID, req.Params.RoleID)
	if err != nil {
		return rejected(req.Kind, req.Target, err)
	}
	if add {
		if has {
			return failure(req.Kind, req.Target, FailureAlreadyInState, "member already has the role")
		}
		if err := e.platform.AddRole(ctx, req.GuildID, req.Target.ID, req.Params.RoleID); err != nil {
			return rejected(req.Kind, req.Target, err)
		}
	} else {
		if !has {
			return failure(req.Kind, req.Target, FailureAlreadyInState, "member does not have the role")
		}
		if err := e.platform.RemoveRole(ctx, req.GuildID, req.Target.ID, req.Params.RoleID); err != nil {
			return rejected(req.Kind, req.Target, err)
		}
	}
	return success(req.Kind, req.Target)
}

func (e *Executor) nick(ctx context.Context, req Request) Outcome {
	name := req.Params.Nickname
	// The cap counts characters, not bytes; a byte slice could split a rune
	if runes := []rune(name); len(runes) > maxNicknameLength {
		name = string(runes[:maxNicknameLength])
	}
	if err := e.platform.SetNickname(ctx, req.GuildID, req.Target.ID, name); err != nil {
		return rejected(req.Kind, req.Target, err)
	}
	out := success(req.Kind, req.Target)
	out.Detail = name
	return out
}

func (e *Executor) clone(ctx context.Context, req Request, deleteOriginal bool) Outcome {
	if req.Target.Type != TargetTextChannel && req.Target.Type != TargetVoiceChannel {
		return failure(req.Kind, req.Target, FailureTargetInvalid, "clone applies to channels only")
	}
	newID, err := e.platform.CloneChannel(ctx, req.GuildID, req.Target.ID)
	if err != nil {
		return rejected(req.Kind, req.Target, err)
	}
	if deleteOriginal {
		if err := e.platform.DeleteChannel(ctx, req.Target.ID); err != nil {
			return rejected(req.Kind, req.Target, err)
		}
	}
	out := success(req.Kind, req.Target)
	out.Detail = newID
	return out
}

func (e *Executor) purge(ctx context.Context, req Request) Outcome {
	count := req.Params.Count
	if count < 1 || count > maxPurgeCount {
		return failure(req.Kind, req.Target, FailureTargetInvalid,
			fmt.Sprintf("purge count must be 1-%d", maxPurgeCount))
	}
	if req.Params.ChannelID == "" {
		return failure(req.Kind, req.Target, FailureTargetInvalid, "no channel specified")
	}

	match, err := purgeMatcher(req.Params)
	if err != nil {
		return failure(req.Kind, req.Target, FailureTargetInvalid, err.Error())
	}

	messages, err := e.platform.ChannelMessages(ctx, req.Params.ChannelID, count)
	if err != nil {
		return rejected(req.Kind, req.Target, err)
	}

	var ids []string
	for _, msg := range messages {
		if match(msg) {
			ids = append(ids, msg.ID)
		}
	}
	if len(ids) > 0 {
		if err := e.platform.DeleteMessages(ctx, req.Params.ChannelID, ids); err != nil {
			return rejected(req.Kind, req.Target, err)
		}
	}

	out := success(req.Kind, req.Target)
	out.Detail = fmt.Sprintf("%d/%d", len(ids), count)
	return out
}

// purgeMatcher compiles the purge predicate. Invalid input is rejected before
// any deletion attempt.
func purgeMatcher(params Params) (func(Message) bool, error) {
	switch params.Predicate {
	case PurgeAll, "":
		return func(Message) bool { return true }, nil
	case PurgeAuthor:
		if params.AuthorID == "" {
			return nil, fmt.Errorf("author purge requires a user")
		}
		return func(m Message) bool { return m.AuthorID == params.AuthorID }, nil
	case PurgeRegex:
		re, err := regexp.Compile(params.Pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid pattern: %v", err)
		}
		return func(m Message) bool { return re.MatchString(m.Content) }, nil
	case PurgeAttachment:
		return func(m Message) bool { return m.HasAttachment }, nil
	case PurgeBots:
		return func(m Message) bool { return m.AuthorIsBot }, nil
	case PurgeLinks:
		return func(m Message) bool {
			return !strings.Contains(m.Content, "://") && linksNoProtocol.MatchString(m.Content)
		}, nil
	default:
		return nil, fmt.Errorf("unknown purge predicate %q", params.Predicate)
	}
}

func (e *Executor) slowmode(ctx context.Context, req Request) Outcome {
	if req.Params.Seconds < 0 {
		return failure(req.Kind, req.Target, FailureTargetInvalid, "slowmode seconds must be non-negative")
	}
	if err := e.platform.SetSlowmode(ctx, req.Target.ID, req.Params.Seconds); err != nil {
		return rejected(req.Kind, req.Target, err)
	}
	return success(req.Kind, req.Target)
}

func (e *Executor) voiceMute(ctx context.Context, req Request, mute bool) Outcome {
	if err := e.platform.SetVoiceMute(ctx, req.GuildID, req.Target.ID, mute); err != nil {
		return rejected(req.Kind, req.Target, err)
	}
	return success(req.Kind, req.Target)
}

func (e *Executor) voiceDeaf(ctx context.Context, req Request, deaf bool) Outcome {
	if err := e.platform.SetVoiceDeaf(ctx, req.GuildID, req.Target.ID, deaf); err != nil {
		return rejected(req.Kind, req.Target, err)
	}
	return success(req.Kind, req.Target)
}

// voiceKick disconnects the member; it requires an active voice state
func (e *Executor) voiceKick(ctx context.Context, req Request) Outcome {
	channel, err := e.platform.VoiceChannel(ctx, req.GuildID, req.Target.ID)
	if err != nil {
		return rejected(req.Kind, req.Target, err)
	}
	if channel == "" {
		return failure(req.Kind, req.Target, FailureTargetInvalid, "member is not in a voice channel")
	}
	if err := e.platform.MoveToVoice(ctx, req.GuildID, req.Target.ID, ""); err != nil {
		return rejected(req.Kind, req.Target, err)
	}
	return success(req.Kind, req.Target)
}

func (e *Executor) voiceMove(ctx context.Context, req Request) Outcome {
	if req.Params.ChannelID == "" {
		return failure(req.Kind, req.Target, FailureTargetInvalid, "no destination channel")
	}
	channel, err := e.platform.VoiceChannel(ctx, req.GuildID, req.Target.ID)
	if err != nil {
		return rejected(req.Kind, req.Target, err)
	}
	if channel == "" {
		return failure(req.Kind, req.Target, FailureTargetInvalid, "member is not in a voice channel")
	}
	if err := e.platform.MoveToVoice(ctx, req.GuildID, req.Target.ID, req.Params.ChannelID); err != nil {
		return rejected(req.Kind, req.Target, err)
	}
	return success(req.Kind, req.Target)
}

// emojiAdd handles both direct adds and addurl, which fetches the image
// bytes first.
func (e *Executor) emojiAdd(ctx context.Context, req Request) Outcome {
	if req.Params.EmojiName == "" {
		return failure(req.Kind, req.Target, FailureTargetInvalid, "no emoji name")
	}

	var image []byte
	if req.Kind == ActionEmojiAddURL {
		if req.Params.EmojiURL == "" {
			return failure(req.Kind, req.Target, FailureTargetInvalid, "no emoji url")
		}
		data, err := e.platform.FetchURL(ctx, req.Params.EmojiURL)
		if err != nil {
			return rejected(req.Kind, req.Target, err)
		}
		image = data
	}

	if err := e.platform.CreateEmoji(ctx, req.GuildID, req.Params.EmojiName, image); err != nil {
		return rejected(req.Kind, req.Target, err)
	}
	return success(req.Kind, req.Target)
}

func (e *Executor) emojiRename(ctx context.Context, req Request) Outcome {
	if req.Params.EmojiName == "" {
		return failure(req.Kind, req.Target, FailureTargetInvalid, "no emoji name")
	}
	if err := e.platform.RenameEmoji(ctx, req.GuildID, req.Target.ID, req.Params.EmojiName); err != nil {
		return rejected(req.Kind, req.Target, err)
	}
	return success(req.Kind, req.Target)
}

func (e *Executor) emojiDelete(ctx context.Context, req Request) Outcome {
	if err := e.platform.DeleteEmoji(ctx, req.GuildID, req.Target.ID); err != nil {
		return rejected(req.Kind, req.Target, err)
	}
	return success(req.Kind, req.Target)
}
