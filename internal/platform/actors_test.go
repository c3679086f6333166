package platform

import (
	"testing"

	"github.com/bwmarrin/discordgo"

	"github.com/anurag-krmkr/Parrot/internal/moderation"
)

func testGuild() *discordgo.Guild {
	return &discordgo.Guild{
		ID:      "guild-1",
		OwnerID: "owner-1",
		Roles: []*discordgo.Role{
			{ID: "guild-1", Position: 0}, // @everyone
			{ID: "role-mod", Position: 5, Permissions: discordgo.PermissionKickMembers},
			{ID: "role-top", Position: 9},
		},
	}
}

func TestActorFromMember(t *testing.T) {
	guild := testGuild()

	t.Run("resolves top role position", func(t *testing.T) {
		member := &discordgo.Member{
			User:  &discordgo.User{ID: "user-1", Username: "Mod"},
			Roles: []string{"role-mod", "role-top"},
		}
		actor := ActorFromMember(guild, member, discordgo.PermissionKickMembers, "role-mod")
		if actor.TopRolePosition != 9 {
			t.Errorf("TopRolePosition = %d, want 9", actor.TopRolePosition)
		}
		if !actor.IsModerator {
			t.Error("member holding the mod role should be a moderator")
		}
		if actor.IsOwner {
			t.Error("not the owner")
		}
	})

	t.Run("roleless member sits at position zero", func(t *testing.T) {
		member := &discordgo.Member{User: &discordgo.User{ID: "user-2", Username: "Plain"}}
		actor := ActorFromMember(guild, member, 0, "role-mod")
		if actor.TopRolePosition != 0 || actor.IsModerator {
			t.Errorf("actor = %+v, want plain member", actor)
		}
	})

	t.Run("owner is flagged", func(t *testing.T) {
		member := &discordgo.Member{User: &discordgo.User{ID: "owner-1", Username: "Owner"}}
		actor := ActorFromMember(guild, member, 0, "")
		if !actor.IsOwner {
			t.Error("guild owner should be flagged")
		}
	})
}

func TestTargetFromUser(t *testing.T) {
	guild := testGuild()

	t.Run("bot users are marked", func(t *testing.T) {
		target := TargetFromUser(guild, &discordgo.User{ID: "bot-2", Username: "OtherBot", Bot: true}, nil)
		if !target.IsBot {
			t.Error("bot user should be marked")
		}
	})

	t.Run("owner target is marked", func(t *testing.T) {
		target := TargetFromUser(guild, &discordgo.User{ID: "owner-1", Username: "Owner"}, nil)
		if !target.IsOwner {
			t.Error("owner target should be marked")
		}
	})

	t.Run("member roles raise the position", func(t *testing.T) {
		member := &discordgo.Member{Roles: []string{"role-top"}}
		target := TargetFromUser(guild, &discordgo.User{ID: "user-1", Username: "High"}, member)
		if target.TopRolePosition != 9 {
			t.Errorf("TopRolePosition = %d, want 9", target.TopRolePosition)
		}
	})
}

func TestTargetFromChannel(t *testing.T) {
	text := TargetFromChannel(&discordgo.Channel{ID: "c1", Name: "general", Type: discordgo.ChannelTypeGuildText})
	if text.Type != moderation.TargetTextChannel {
		t.Errorf("type = %v, want text channel", text.Type)
	}

	voice := TargetFromChannel(&discordgo.Channel{ID: "c2", Name: "voice", Type: discordgo.ChannelTypeGuildVoice})
	if voice.Type != moderation.TargetVoiceChannel {
		t.Errorf("type = %v, want voice channel", voice.Type)
	}
}
