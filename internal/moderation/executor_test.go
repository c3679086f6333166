package moderation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"
	"unicode/utf8"
)

// fakePlatform is an in-memory Platform for executor tests. Set failOn to an
// operation name to make that call return an error.
type fakePlatform struct {
	banned     map[string]bool
	members    map[string]bool
	roles      map[string]map[string]bool
	adminRoles map[string]bool
	voice      map[string]string
	nicknames  map[string]string
	messages   []Message
	deleted    []string
	slowmodes  map[string]int
	emojis     map[string]string
	overwrites map[string][2]int64
	fetched    []byte
	timeouts   map[string]*time.Time
	calls      []string
	failOn     string
}

func newFakePlatform() *fakePlatform {
	return &fakePlatform{
		banned:     map[string]bool{},
		members:    map[string]bool{},
		roles:      map[string]map[string]bool{},
		adminRoles: map[string]bool{},
		voice:      map[string]string{},
		nicknames:  map[string]string{},
		slowmodes:  map[string]int{},
		emojis:     map[string]string{},
		overwrites: map[string][2]int64{},
		timeouts:   map[string]*time.Time{},
	}
}

func (f *fakePlatform) call(op string) error {
	f.calls = append(f.calls, op)
	if f.failOn == op {
		return errors.New("api error: " + op)
	}
	return nil
}

func (f *fakePlatform) BanMember(_ context.Context, _, userID, _ string, _ int) error {
	if err := f.call("BanMember"); err != nil {
		return err
	}
	f.banned[userID] = true
	delete(f.members, userID)
	return nil
}

func (f *fakePlatform) UnbanMember(_ context.Context, _, userID string) error {
	if err := f.call("UnbanMember"); err != nil {
		return err
	}
	delete(f.banned, userID)
	return nil
}

func (f *fakePlatform) IsBanned(_ context.Context, _, userID string) (bool, error) {
	if err := f.call("IsBanned"); err != nil {
		return false, err
	}
	return f.banned[userID], nil
}

func (f *fakePlatform) KickMember(_ context.Context, _, userID, _ string) error {
	if err := f.call("KickMember"); err != nil {
		return err
	}
	delete(f.members, userID)
	return nil
}

func (f *fakePlatform) IsMember(_ context.Context, _, userID string) (bool, error) {
	if err := f.call("IsMember"); err != nil {
		return false, err
	}
	return f.members[userID], nil
}

func (f *fakePlatform) TimeoutMember(_ context.Context, _, userID string, until *time.Time) error {
	if err := f.call("TimeoutMember"); err != nil {
		return err
	}
	f.timeouts[userID] = until
	return nil
}

func (f *fakePlatform) MemberHasRole(_ context.Context, _, userID, roleID string) (bool, error) {
	if err := f.call("MemberHasRole"); err != nil {
		return false, err
	}
	return f.roles[userID][roleID], nil
}

func (f *fakePlatform) AddRole(_ context.Context, _, userID, roleID string) error {
	if err := f.call("AddRole"); err != nil {
		return err
	}
	if f.roles[userID] == nil {
		f.roles[userID] = map[string]bool{}
	}
	f.roles[userID][roleID] = true
	return nil
}

func (f *fakePlatform) RemoveRole(_ context.Context, _, userID, roleID string) error {
	if err := f.call("RemoveRole"); err != nil {
		return err
	}
	delete(f.roles[userID], roleID)
	return nil
}

func (f *fakePlatform) RoleHasAdmin(_ context.Context, _, roleID string) (bool, error) {
	if err := f.call("RoleHasAdmin"); err != nil {
		return false, err
	}
	return f.adminRoles[roleID], nil
}

func (f *fakePlatform) SetChannelPermission(_ context.Context, channelID, overwriteID string, _ OverwriteKind, allow, deny int64) error {
	if err := f.call("SetChannelPermission"); err != nil {
		return err
	}
	f.overwrites[channelID+"/"+overwriteID] = [2]int64{allow, deny}
	return nil
}

func (f *fakePlatform) SetNickname(_ context.Context, _, userID, nickname string) error {
	if err := f.call("SetNickname"); err != nil {
		return err
	}
	f.nicknames[userID] = nickname
	return nil
}

func (f *fakePlatform) VoiceChannel(_ context.Context, _, userID string) (string, error) {
	if err := f.call("VoiceChannel"); err != nil {
		return "", err
	}
	return f.voice[userID], nil
}

func (f *fakePlatform) SetVoiceMute(_ context.Context, _, _ string, _ bool) error {
	return f.call("SetVoiceMute")
}

func (f *fakePlatform) SetVoiceDeaf(_ context.Context, _, _ string, _ bool) error {
	return f.call("SetVoiceDeaf")
}

func (f *fakePlatform) MoveToVoice(_ context.Context, _, userID, channelID string) error {
	if err := f.call("MoveToVoice"); err != nil {
		return err
	}
	if channelID == "" {
		delete(f.voice, userID)
	} else {
		f.voice[userID] = channelID
	}
	return nil
}

func (f *fakePlatform) CloneChannel(_ context.Context, _, channelID string) (string, error) {
	if err := f.call("CloneChannel"); err != nil {
		return "", err
	}
	return channelID + "-clone", nil
}

func (f *fakePlatform) DeleteChannel(_ context.Context, _ string) error {
	return f.call("DeleteChannel")
}

func (f *fakePlatform) ChannelMessages(_ context.Context, _ string, limit int) ([]Message, error) {
	if err := f.call("ChannelMessages"); err != nil {
		return nil, err
	}
	if limit > len(f.messages) {
		limit = len(f.messages)
	}
	return f.messages[:limit], nil
}

func (f *fakePlatform) DeleteMessages(_ context.Context, _ string, messageIDs []string) error {
	if err := f.call("DeleteMessages"); err != nil {
		return err
	}
	f.deleted = append(f.deleted, messageIDs...)
	return nil
}

func (f *fakePlatform) SetSlowmode(_ context.Context, channelID string, seconds int) error {
	if err := f.call("SetSlowmode"); err != nil {
		return err
	}
	f.slowmodes[channelID] = seconds
	return nil
}

func (f *fakePlatform) CreateEmoji(_ context.Context, _, name string, _ []byte) error {
	if err := f.call("CreateEmoji"); err != nil {
		return err
	}
	f.emojis[name] = name
	return nil
}

func (f *fakePlatform) RenameEmoji(_ context.Context, _, emojiID, name string) error {
	if err := f.call("RenameEmoji"); err != nil {
		return err
	}
	f.emojis[emojiID] = name
	return nil
}

func (f *fakePlatform) DeleteEmoji(_ context.Context, _, emojiID string) error {
	if err := f.call("DeleteEmoji"); err != nil {
		return err
	}
	delete(f.emojis, emojiID)
	return nil
}

func (f *fakePlatform) FetchURL(_ context.Context, _ string) ([]byte, error) {
	if err := f.call("FetchURL"); err != nil {
		return nil, err
	}
	return f.fetched, nil
}

func memberReq(kind ActionKind, userID string) Request {
	return Request{
		Kind:    kind,
		GuildID: "guild-1",
		Actor:   Actor{ID: "mod-1", Name: "Mod", IsModerator: true},
		Target:  NewMemberTarget(userID, "Target", 1),
		Reason:  "test",
	}
}

func TestExecutorBan(t *testing.T) {
	t.Run("bans a member", func(t *testing.T) {
		fake := newFakePlatform()
		fake.members["user-1"] = true
		exec := NewExecutor(fake)

		out := exec.Execute(context.Background(), memberReq(ActionBan, "user-1"))
		if !out.Success {
			t.Fatalf("expected success, got %s: %s", out.Failure, out.Detail)
		}
		if !fake.banned["user-1"] {
			t.Error("user should be banned")
		}
	})

	t.Run("banning an already banned user succeeds", func(t *testing.T) {
		fake := newFakePlatform()
		fake.banned["user-1"] = true
		exec := NewExecutor(fake)

		out := exec.Execute(context.Background(), memberReq(ActionBan, "user-1"))
		if !out.Success {
			t.Fatalf("expected idempotent success, got %s", out.Failure)
		}
	})

	t.Run("rejects message deletion window over 7 days", func(t *testing.T) {
		fake := newFakePlatform()
		exec := NewExecutor(fake)

		req := memberReq(ActionBan, "user-1")
		req.Params.DeleteDays = 8
		out := exec.Execute(context.Background(), req)
		if out.Success || out.Failure != FailureTargetInvalid {
			t.Fatalf("expected target_invalid, got %+v", out)
		}
		if len(fake.calls) != 0 {
			t.Error("platform should not be called")
		}
	})

	t.Run("api error maps to platform_rejected", func(t *testing.T) {
		fake := newFakePlatform()
		fake.failOn = "BanMember"
		exec := NewExecutor(fake)

		out := exec.Execute(context.Background(), memberReq(ActionBan, "user-1"))
		if out.Success || out.Failure != FailurePlatformRejected {
			t.Fatalf("expected platform_rejected, got %+v", out)
		}
	})
}

func TestExecutorUnban(t *testing.T) {
	t.Run("unbans a banned user", func(t *testing.T) {
		fake := newFakePlatform()
		fake.banned["user-1"] = true
		exec := NewExecutor(fake)

		out := exec.Execute(context.Background(), memberReq(ActionUnban, "user-1"))
		if !out.Success {
			t.Fatalf("expected success, got %s", out.Failure)
		}
		if fake.banned["user-1"] {
			t.Error("user should no longer be banned")
		}
	})

	t.Run("unbanning a non-banned user is target_invalid", func(t *testing.T) {
		fake := newFakePlatform()
		exec := NewExecutor(fake)

		out := exec.Execute(context.Background(), memberReq(ActionUnban, "user-1"))
		if out.Success || out.Failure != FailureTargetInvalid {
			t.Fatalf("expected target_invalid, got %+v", out)
		}
	})
}

func TestExecutorSoftban(t *testing.T) {
	fake := newFakePlatform()
	fake.members["user-1"] = true
	exec := NewExecutor(fake)

	out := exec.Execute(context.Background(), memberReq(ActionSoftban, "user-1"))
	if !out.Success {
		t.Fatalf("expected success, got %s", out.Failure)
	}
	if fake.banned["user-1"] {
		t.Error("softban must end with the user unbanned")
	}
	want := []string{"BanMember", "UnbanMember"}
	if fmt.Sprint(fake.calls) != fmt.Sprint(want) {
		t.Errorf("calls = %v, want %v", fake.calls, want)
	}
}

func TestExecutorKick(t *testing.T) {
	t.Run("kicks a member", func(t *testing.T) {
		fake := newFakePlatform()
		fake.members["user-1"] = true
		exec := NewExecutor(fake)

		out := exec.Execute(context.Background(), memberReq(ActionKick, "user-1"))
		if !out.Success {
			t.Fatalf("expected success, got %s", out.Failure)
		}
	})

	t.Run("kicking a non-member is target_invalid", func(t *testing.T) {
		fake := newFakePlatform()
		exec := NewExecutor(fake)

		out := exec.Execute(context.Background(), memberReq(ActionKick, "user-1"))
		if out.Success || out.Failure != FailureTargetInvalid {
			t.Fatalf("expected target_invalid, got %+v", out)
		}
	})
}

func TestExecutorTimeout(t *testing.T) {
	t.Run("applies a future expiry", func(t *testing.T) {
		fake := newFakePlatform()
		exec := NewExecutor(fake)

		until := time.Now().Add(10 * time.Minute)
		req := memberReq(ActionTimeout, "user-1")
		req.Params.Until = &until
		out := exec.Execute(context.Background(), req)
		if !out.Success {
			t.Fatalf("expected success, got %s", out.Failure)
		}
	})

	t.Run("rejects a past expiry", func(t *testing.T) {
		fake := newFakePlatform()
		exec := NewExecutor(fake)

		until := time.Now().Add(-time.Minute)
		req := memberReq(ActionTimeout, "user-1")
		req.Params.Until = &until
		out := exec.Execute(context.Background(), req)
		if out.Success || out.Failure != FailureTargetInvalid {
			t.Fatalf("expected target_invalid, got %+v", out)
		}
		if len(fake.calls) != 0 {
			t.Error("platform should not be called")
		}
	})
}

func TestExecutorMute(t *testing.T) {
	t.Run("assigns the mute role", func(t *testing.T) {
		fake := newFakePlatform()
		exec := NewExecutor(fake)

		req := memberReq(ActionMute, "user-1")
		req.Params.MuteRoleID = "muted"
		out := exec.Execute(context.Background(), req)
		if !out.Success {
			t.Fatalf("expected success, got %s", out.Failure)
		}
		if !fake.roles["user-1"]["muted"] {
			t.Error("mute role should be assigned")
		}
	})

	t.Run("muting an already muted member is already_in_state", func(t *testing.T) {
		fake := newFakePlatform()
		fake.roles["user-1"] = map[string]bool{"muted": true}
		exec := NewExecutor(fake)

		req := memberReq(ActionMute, "user-1")
		req.Params.MuteRoleID = "muted"
		out := exec.Execute(context.Background(), req)
		if out.Success || out.Failure != FailureAlreadyInState {
			t.Fatalf("expected already_in_state, got %+v", out)
		}
	})

	t.Run("no configured mute role is target_invalid", func(t *testing.T) {
		fake := newFakePlatform()
		exec := NewExecutor(fake)

		out := exec.Execute(context.Background(), memberReq(ActionMute, "user-1"))
		if out.Success || out.Failure != FailureTargetInvalid {
			t.Fatalf("expected target_invalid, got %+v", out)
		}
	})
}

func TestExecutorRoleChange(t *testing.T) {
	t.Run("refuses administrator roles", func(t *testing.T) {
		fake := newFakePlatform()
		fake.adminRoles["admin"] = true
		exec := NewExecutor(fake)

		req := memberReq(ActionRoleAdd, "user-1")
		req.Params.RoleID = "admin"
		out := exec.Execute(context.Background(), req)
		if out.Success || out.Failure != FailureTargetProtected {
			t.Fatalf("expected target_protected, got %+v", out)
		}
	})

	t.Run("adding a held role is already_in_state", func(t *testing.T) {
		fake := newFakePlatform()
		fake.roles["user-1"] = map[string]bool{"helper": true}
		exec := NewExecutor(fake)

		req := memberReq(ActionRoleAdd, "user-1")
		req.Params.RoleID = "helper"
		out := exec.Execute(context.Background(), req)
		if out.Success || out.Failure != FailureAlreadyInState {
			t.Fatalf("expected already_in_state, got %+v", out)
		}
	})

	t.Run("removing an unheld role is already_in_state", func(t *testing.T) {
		fake := newFakePlatform()
		exec := NewExecutor(fake)

		req := memberReq(ActionRoleRemove, "user-1")
		req.Params.RoleID = "helper"
		out := exec.Execute(context.Background(), req)
		if out.Success || out.Failure != FailureAlreadyInState {
			t.Fatalf("expected already_in_state, got %+v", out)
		}
	})
}

func TestExecutorNickTruncation(t *testing.T) {
	t.Run("truncates long names", func(t *testing.T) {
		fake := newFakePlatform()
		exec := NewExecutor(fake)

		req := memberReq(ActionNick, "user-1")
		req.Params.Nickname = strings.Repeat("a", 40)
		out := exec.Execute(context.Background(), req)
		if !out.Success {
			t.Fatalf("expected success, got %s", out.Failure)
		}
		if got := fake.nicknames["user-1"]; len(got) != 32 {
			t.Errorf("nickname length = %d, want 32", len(got))
		}
	})

	t.Run("truncates on rune boundaries", func(t *testing.T) {
		fake := newFakePlatform()
		exec := NewExecutor(fake)

		req := memberReq(ActionNick, "user-1")
		req.Params.Nickname = strings.Repeat("é", 40)
		out := exec.Execute(context.Background(), req)
		if !out.Success {
			t.Fatalf("expected success, got %s", out.Failure)
		}
		got := fake.nicknames["user-1"]
		if runes := []rune(got); len(runes) != 32 {
			t.Errorf("nickname runes = %d, want 32", len(runes))
		}
		if !utf8.ValidString(got) {
			t.Error("truncation produced invalid UTF-8")
		}
	})
}

func TestExecutorPurge(t *testing.T) {
	channelReq := func(predicate PurgePredicate, count int) Request {
		req := Request{
			Kind:    ActionPurge,
			GuildID: "guild-1",
			Actor:   Actor{ID: "mod-1", IsModerator: true},
			Target:  NewChannelTarget("chan-1", "general"),
		}
		req.Params.ChannelID = "chan-1"
		req.Params.Count = count
		req.Params.Predicate = predicate
		return req
	}

	t.Run("rejects counts over 100 before any deletion", func(t *testing.T) {
		fake := newFakePlatform()
		exec := NewExecutor(fake)

		out := exec.Execute(context.Background(), channelReq(PurgeAll, 150))
		if out.Success || out.Failure != FailureTargetInvalid {
			t.Fatalf("expected target_invalid, got %+v", out)
		}
		if len(fake.calls) != 0 {
			t.Error("no platform call should happen for an invalid count")
		}
	})

	t.Run("deletes only messages matching the author predicate", func(t *testing.T) {
		fake := newFakePlatform()
		fake.messages = []Message{
			{ID: "m1", AuthorID: "user-1"},
			{ID: "m2", AuthorID: "user-2"},
			{ID: "m3", AuthorID: "user-1"},
		}
		exec := NewExecutor(fake)

		req := channelReq(PurgeAuthor, 10)
		req.Params.AuthorID = "user-1"
		out := exec.Execute(context.Background(), req)
		if !out.Success {
			t.Fatalf("expected success, got %s: %s", out.Failure, out.Detail)
		}
		if fmt.Sprint(fake.deleted) != fmt.Sprint([]string{"m1", "m3"}) {
			t.Errorf("deleted = %v, want [m1 m3]", fake.deleted)
		}
	})

	t.Run("links predicate catches bare domains", func(t *testing.T) {
		fake := newFakePlatform()
		fake.messages = []Message{
			{ID: "m1", Content: "check discord.gg/abc out"},
			{ID: "m2", Content: "hello there"},
			{ID: "m3", Content: "https://example.com is fine too"},
		}
		exec := NewExecutor(fake)

		out := exec.Execute(context.Background(), channelReq(PurgeLinks, 10))
		if !out.Success {
			t.Fatalf("expected success, got %s", out.Failure)
		}
		if fmt.Sprint(fake.deleted) != fmt.Sprint([]string{"m1"}) {
			t.Errorf("deleted = %v, want [m1]", fake.deleted)
		}
	})

	t.Run("invalid regex is rejected without deletion", func(t *testing.T) {
		fake := newFakePlatform()
		fake.messages = []Message{{ID: "m1", Content: "x"}}
		exec := NewExecutor(fake)

		req := channelReq(PurgeRegex, 10)
		req.Params.Pattern = "["
		out := exec.Execute(context.Background(), req)
		if out.Success || out.Failure != FailureTargetInvalid {
			t.Fatalf("expected target_invalid, got %+v", out)
		}
		if len(fake.deleted) != 0 {
			t.Error("nothing should be deleted")
		}
	})
}

func TestExecutorBlock(t *testing.T) {
	t.Run("text block denies sending", func(t *testing.T) {
		fake := newFakePlatform()
		exec := NewExecutor(fake)

		req := memberReq(ActionBlock, "user-1")
		req.Params.ChannelID = "chan-1"
		out := exec.Execute(context.Background(), req)
		if !out.Success {
			t.Fatalf("expected success, got %s", out.Failure)
		}
		if got := fake.overwrites["chan-1/user-1"]; got[1] != permissionSendMessages {
			t.Errorf("denied bits = %d, want send", got[1])
		}
	})

	t.Run("voice block denies connecting", func(t *testing.T) {
		fake := newFakePlatform()
		exec := NewExecutor(fake)

		req := memberReq(ActionBlock, "user-1")
		req.Params.ChannelID = "vc-1"
		req.Params.ChannelIsVoice = true
		out := exec.Execute(context.Background(), req)
		if !out.Success {
			t.Fatalf("expected success, got %s", out.Failure)
		}
		if got := fake.overwrites["vc-1/user-1"]; got[1] != permissionConnect {
			t.Errorf("denied bits = %d, want connect", got[1])
		}
	})

	t.Run("unblock restores the same bit", func(t *testing.T) {
		fake := newFakePlatform()
		exec := NewExecutor(fake)

		req := memberReq(ActionUnblock, "user-1")
		req.Params.ChannelID = "vc-1"
		req.Params.ChannelIsVoice = true
		out := exec.Execute(context.Background(), req)
		if !out.Success {
			t.Fatalf("expected success, got %s", out.Failure)
		}
		if got := fake.overwrites["vc-1/user-1"]; got[0] != permissionConnect {
			t.Errorf("allowed bits = %d, want connect", got[0])
		}
	})
}

func TestExecutorVoice(t *testing.T) {
	t.Run("voice kick requires an active voice state", func(t *testing.T) {
		fake := newFakePlatform()
		exec := NewExecutor(fake)

		out := exec.Execute(context.Background(), memberReq(ActionVoiceKick, "user-1"))
		if out.Success || out.Failure != FailureTargetInvalid {
			t.Fatalf("expected target_invalid, got %+v", out)
		}
	})

	t.Run("voice move changes the channel", func(t *testing.T) {
		fake := newFakePlatform()
		fake.voice["user-1"] = "vc-1"
		exec := NewExecutor(fake)

		req := memberReq(ActionVoiceMove, "user-1")
		req.Params.ChannelID = "vc-2"
		out := exec.Execute(context.Background(), req)
		if !out.Success {
			t.Fatalf("expected success, got %s", out.Failure)
		}
		if fake.voice["user-1"] != "vc-2" {
			t.Errorf("voice channel = %s, want vc-2", fake.voice["user-1"])
		}
	})
}

func TestExecutorNuke(t *testing.T) {
	fake := newFakePlatform()
	exec := NewExecutor(fake)

	req := Request{
		Kind:    ActionNuke,
		GuildID: "guild-1",
		Actor:   Actor{ID: "mod-1", IsModerator: true},
		Target:  NewChannelTarget("chan-1", "general"),
	}
	out := exec.Execute(context.Background(), req)
	if !out.Success {
		t.Fatalf("expected success, got %s", out.Failure)
	}
	if out.Detail != "chan-1-clone" {
		t.Errorf("detail = %s, want the clone's id", out.Detail)
	}
	want := []string{"CloneChannel", "DeleteChannel"}
	if fmt.Sprint(fake.calls) != fmt.Sprint(want) {
		t.Errorf("calls = %v, want %v", fake.calls, want)
	}
}

func TestExecutorEmojiAddURL(t *testing.T) {
	fake := newFakePlatform()
	fake.fetched = []byte("png-bytes")
	exec := NewExecutor(fake)

	req := memberReq(ActionEmojiAddURL, "ignored")
	req.Params.EmojiName = "pepe"
	req.Params.EmojiURL = "https://cdn.example.com/pepe.png"
	out := exec.Execute(context.Background(), req)
	if !out.Success {
		t.Fatalf("expected success, got %s", out.Failure)
	}
	want := []string{"FetchURL", "CreateEmoji"}
	if fmt.Sprint(fake.calls) != fmt.Sprint(want) {
		t.Errorf("calls = %v, want %v", fake.calls, want)
	}
}

func TestExecuteBatchIsolatesFailures(t *testing.T) {
	fake := newFakePlatform()
	fake.members["user-1"] = true
	fake.members["user-3"] = true
	exec := NewExecutor(fake)

	req := memberReq(ActionKick, "")
	targets := []Target{
		NewMemberTarget("user-1", "A", 1),
		NewMemberTarget("user-2", "B", 1),
		NewMemberTarget("user-3", "C", 1),
	}
	batch := exec.ExecuteBatch(context.Background(), req, targets)
	if batch.Succeeded != 2 || batch.Failed != 1 {
		t.Fatalf("succeeded=%d failed=%d, want 2/1", batch.Succeeded, batch.Failed)
	}
	if batch.Items[1].Failure != FailureTargetInvalid {
		t.Errorf("middle item failure = %s, want target_invalid", batch.Items[1].Failure)
	}
	if !batch.Items[2].Success {
		t.Error("failure of one item must not abort the rest")
	}
}
