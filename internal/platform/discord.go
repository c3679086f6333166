// Package platform adapts discordgo to the moderation pipeline's interfaces.
package platform

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/anurag-krmkr/Parrot/internal/moderation"
)

// fetchLimit caps how many bytes an emoji image fetch will read
const fetchLimit = 4 << 20

// Discord implements moderation.Platform over a discordgo session
type Discord struct {
	session *discordgo.Session
	http    *http.Client
}

// New wraps the session
func New(session *discordgo.Session) *Discord {
	return &Discord{
		session: session,
		http:    &http.Client{Timeout: 15 * time.Second},
	}
}

// notFound reports whether the error is the API's 404
func notFound(err error) bool {
	var rerr *discordgo.RESTError
	if errors.As(err, &rerr) && rerr.Response != nil {
		return rerr.Response.StatusCode == http.StatusNotFound
	}
	return false
}

func (d *Discord) BanMember(ctx context.Context, guildID, userID, reason string, deleteDays int) error {
	return d.session.GuildBanCreateWithReason(guildID, userID, reason, deleteDays, discordgo.WithContext(ctx))
}

func (d *Discord) UnbanMember(ctx context.Context, guildID, userID string) error {
	return d.session.GuildBanDelete(guildID, userID, discordgo.WithContext(ctx))
}

func (d *Discord) IsBanned(ctx context.Context, guildID, userID string) (bool, error) {
	ban, err := d.session.GuildBan(guildID, userID, discordgo.WithContext(ctx))
	if err != nil {
		if notFound(err) {
			return false, nil
		}
		return false, err
	}
	return ban != nil, nil
}

func (d *Discord) KickMember(ctx context.Context, guildID, userID, reason string) error {
	return d.session.GuildMemberDeleteWithReason(guildID, userID, reason, discordgo.WithContext(ctx))
}

func (d *Discord) IsMember(ctx context.Context, guildID, userID string) (bool, error) {
	_, err := d.session.GuildMember(guildID, userID, discordgo.WithContext(ctx))
	if err != nil {
		if notFound(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (d *Discord) TimeoutMember(ctx context.Context, guildID, userID string, until *time.Time) error {
	return d.session.GuildMemberTimeout(guildID, userID, until, discordgo.WithContext(ctx))
}

func (d *Discord) MemberHasRole(ctx context.Context, guildID, userID, roleID string) (bool, error) {
	member, err := d.session.GuildMember(guildID, userID, discordgo.WithContext(ctx))
	if err != nil {
		return false, err
	}
	for _, r := range member.Roles {
		if r == roleID {
			return true, nil
		}
	}
	return false, nil
}

func (d *Discord) AddRole(ctx context.Context, guildID, userID, roleID string) error {
	return d.session.GuildMemberRoleAdd(guildID, userID, roleID, discordgo.WithContext(ctx))
}

func (d *Discord) RemoveRole(ctx context.Context, guildID, userID, roleID string) error {
	return d.session.GuildMemberRoleRemove(guildID, userID, roleID, discordgo.WithContext(ctx))
}

func (d *Discord) RoleHasAdmin(ctx context.Context, guildID, roleID string) (bool, error) {
	if role, err := d.session.State.Role(guildID, roleID); err == nil {
		return role.Permissions&discordgo.PermissionAdministrator != 0, nil
	}
	roles, err := d.session.GuildRoles(guildID, discordgo.WithContext(ctx))
	if err != nil {
		return false, err
	}
	for _, role := range roles {
		if role.ID == roleID {
			return role.Permissions&discordgo.PermissionAdministrator != 0, nil
		}
	}
	return false, fmt.Errorf("role %s not found in guild %s", roleID, guildID)
}

func (d *Discord) SetChannelPermission(ctx context.Context, channelID, overwriteID string, kind moderation.OverwriteKind, allow, deny int64) error {
	overwriteType := discordgo.PermissionOverwriteTypeRole
	if kind == moderation.OverwriteMember {
		overwriteType = discordgo.PermissionOverwriteTypeMember
	}
	return d.session.ChannelPermissionSet(channelID, overwriteID, overwriteType, allow, deny, discordgo.WithContext(ctx))
}

func (d *Discord) SetNickname(ctx context.Context, guildID, userID, nickname string) error {
	return d.session.GuildMemberNickname(guildID, userID, nickname, discordgo.WithContext(ctx))
}

func (d *Discord) VoiceChannel(_ context.Context, guildID, userID string) (string, error) {
	state, err := d.session.State.VoiceState(guildID, userID)
	if err != nil {
		if errors.Is(err, discordgo.ErrStateNotFound) {
			return "", nil
		}
		return "", err
	}
	return state.ChannelID, nil
}

func (d *Discord) SetVoiceMute(ctx context.Context, guildID, userID string, mute bool) error {
	return d.session.GuildMemberMute(guildID, userID, mute, discordgo.WithContext(ctx))
}

func (d *Discord) SetVoiceDeaf(ctx context.Context, guildID, userID string, deaf bool) error {
	return d.session.GuildMemberDeafen(guildID, userID, deaf, discordgo.WithContext(ctx))
}

func (d *Discord) MoveToVoice(ctx context.Context, guildID, userID, channelID string) error {
	var dest *string
	if channelID != "" {
		dest = &channelID
	}
	return d.session.GuildMemberMove(guildID, userID, dest, discordgo.WithContext(ctx))
}

func (d *Discord) CloneChannel(ctx context.Context, guildID, channelID string) (string, error) {
	src, err := d.session.Channel(channelID, discordgo.WithContext(ctx))
	if err != nil {
		return "", err
	}
	created, err := d.session.GuildChannelCreateComplex(guildID, discordgo.GuildChannelCreateData{
		Name:                 src.Name,
		Type:                 src.Type,
		Topic:                src.Topic,
		Bitrate:              src.Bitrate,
		UserLimit:            src.UserLimit,
		RateLimitPerUser:     src.RateLimitPerUser,
		Position:             src.Position,
		PermissionOverwrites: src.PermissionOverwrites,
		ParentID:             src.ParentID,
		NSFW:                 src.NSFW,
	}, discordgo.WithContext(ctx))
	if err != nil {
		return "", err
	}
	return created.ID, nil
}

func (d *Discord) DeleteChannel(ctx context.Context, channelID string) error {
	_, err := d.session.ChannelDelete(channelID, discordgo.WithContext(ctx))
	return err
}

func (d *Discord) ChannelMessages(ctx context.Context, channelID string, limit int) ([]moderation.Message, error) {
	raw, err := d.session.ChannelMessages(channelID, limit, "", "", "", discordgo.WithContext(ctx))
	if err != nil {
		return nil, err
	}
	messages := make([]moderation.Message, 0, len(raw))
	for _, m := range raw {
		msg := moderation.Message{
			ID:            m.ID,
			Content:       m.Content,
			HasAttachment: len(m.Attachments) > 0,
		}
		if m.Author != nil {
			msg.AuthorID = m.Author.ID
			msg.AuthorIsBot = m.Author.Bot
		}
		messages = append(messages, msg)
	}
	return messages, nil
}

func (d *Discord) DeleteMessages(ctx context.Context, channelID string, messageIDs []string) error {
	if len(messageIDs) == 1 {
		return d.session.ChannelMessageDelete(channelID, messageIDs[0], discordgo.WithContext(ctx))
	}
	return d.session.ChannelMessagesBulkDelete(channelID, messageIDs, discordgo.WithContext(ctx))
}

func (d *Discord) SetSlowmode(ctx context.Context, channelID string, seconds int) error {
	_, err := d.session.ChannelEditComplex(channelID, &discordgo.ChannelEdit{
		RateLimitPerUser: &seconds,
	}, discordgo.WithContext(ctx))
	return err
}

func (d *Discord) CreateEmoji(ctx context.Context, guildID, name string, image []byte) error {
	params := &discordgo.EmojiParams{Name: name}
	if len(image) > 0 {
		params.Image = fmt.Sprintf("data:%s;base64,%s",
			http.DetectContentType(image), base64.StdEncoding.EncodeToString(image))
	}
	_, err := d.session.GuildEmojiCreate(guildID, params, discordgo.WithContext(ctx))
	return err
}

func (d *Discord) RenameEmoji(ctx context.Context, guildID, emojiID, name string) error {
	_, err := d.session.GuildEmojiEdit(guildID, emojiID, &discordgo.EmojiParams{Name: name}, discordgo.WithContext(ctx))
	return err
}

func (d *Discord) DeleteEmoji(ctx context.Context, guildID, emojiID string) error {
	return d.session.GuildEmojiDelete(guildID, emojiID, discordgo.WithContext(ctx))
}

func (d *Discord) FetchURL(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := d.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: status %d", url, resp.StatusCode)
	}
	return io.ReadAll(io.LimitReader(resp.Body, fetchLimit))
}
