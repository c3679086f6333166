package automod

import (
	"context"
	"errors"
	"testing"

	"github.com/bwmarrin/discordgo"

	"github.com/anurag-krmkr/Parrot/internal/guildconfig"
	"github.com/anurag-krmkr/Parrot/internal/infractions"
	"github.com/anurag-krmkr/Parrot/internal/moderation"
	"github.com/anurag-krmkr/Parrot/pkg/database"
	"github.com/anurag-krmkr/Parrot/pkg/models"
)

// stubPlatform overrides only the calls the filter and its escalations reach;
// anything else panics via the embedded nil interface.
type stubPlatform struct {
	moderation.Platform
	deleted    []string
	failDelete bool
	kicked     []string
	members    map[string]bool
}

func (s *stubPlatform) DeleteMessages(_ context.Context, _ string, ids []string) error {
	if s.failDelete {
		return errors.New("message already gone")
	}
	s.deleted = append(s.deleted, ids...)
	return nil
}

func (s *stubPlatform) IsMember(_ context.Context, _, userID string) (bool, error) {
	return s.members[userID], nil
}

func (s *stubPlatform) KickMember(_ context.Context, _, userID, _ string) error {
	s.kicked = append(s.kicked, userID)
	delete(s.members, userID)
	return nil
}

type dropSender struct{}

func (dropSender) SendAudit(context.Context, string, moderation.AuditEntry) error { return nil }

func newFilterFixture(t *testing.T, cfg *models.GuildConfig) (*Filter, *stubPlatform, *moderation.Service) {
	t.Helper()
	store := database.NewMemoryStore()
	configs := guildconfig.NewService(store, "$", 100)
	if err := configs.Set(context.Background(), cfg); err != nil {
		t.Fatalf("seeding config: %v", err)
	}
	platform := &stubPlatform{members: map[string]bool{}}
	service := moderation.NewService(configs, infractions.NewLedger(store),
		moderation.NewExecutor(platform), moderation.NewAuditor(dropSender{}, nil))
	bot := moderation.Actor{ID: "bot-1", Name: "Bot", Permissions: discordgo.PermissionAdministrator}
	return NewFilter(configs, service, platform, func(string) moderation.Actor { return bot }), platform, service
}

func filterConfig(words []string) *models.GuildConfig {
	return &models.GuildConfig{
		GuildID: "guild-1",
		Prefix:  "$",
		Automod: models.AutomodConfig{
			Profanity: models.ProfanityConfig{
				Enabled: true,
				Words:   words,
				AutoWarn: models.AutoWarnConfig{
					Enabled:       true,
					DeleteMessage: true,
				},
			},
		},
	}
}

func message(content string) IncomingMessage {
	return IncomingMessage{
		GuildID:   "guild-1",
		ChannelID: "chan-1",
		MessageID: "msg-1",
		AuthorID:  "user-1",
		Content:   content,
	}
}

func TestFilterCheck(t *testing.T) {
	t.Run("listed word is deleted and warned", func(t *testing.T) {
		filter, platform, service := newFilterFixture(t, filterConfig([]string{"heck"}))

		res := filter.Check(context.Background(), message("what the HECK is this"))
		if !res.Matched || !res.Deleted || !res.Warned {
			t.Fatalf("result = %+v, want matched+deleted+warned", res)
		}
		if len(platform.deleted) != 1 || platform.deleted[0] != "msg-1" {
			t.Errorf("deleted = %v, want [msg-1]", platform.deleted)
		}
		count, err := service.WarningCount(context.Background(), "guild-1", "user-1")
		if err != nil || count != 1 {
			t.Errorf("count=%d err=%v, want 1", count, err)
		}
	})

	t.Run("whole words only", func(t *testing.T) {
		filter, platform, _ := newFilterFixture(t, filterConfig([]string{"ass"}))

		res := filter.Check(context.Background(), message("the class was assigned homework"))
		if res.Matched {
			t.Fatalf("substring inside longer words must not match, got %+v", res)
		}
		if len(platform.deleted) != 0 {
			t.Error("nothing should be deleted")
		}
	})

	t.Run("clean message passes", func(t *testing.T) {
		filter, _, _ := newFilterFixture(t, filterConfig([]string{"heck"}))

		if res := filter.Check(context.Background(), message("hello friends")); res.Matched {
			t.Fatalf("result = %+v, want no match", res)
		}
	})

	t.Run("bots are ignored", func(t *testing.T) {
		filter, _, _ := newFilterFixture(t, filterConfig([]string{"heck"}))
		msg := message("heck")
		msg.AuthorIsBot = true

		if res := filter.Check(context.Background(), msg); res.Matched {
			t.Fatalf("bot messages are never filtered, got %+v", res)
		}
	})

	t.Run("ignored channels pass through", func(t *testing.T) {
		cfg := filterConfig([]string{"heck"})
		cfg.Automod.Profanity.IgnoredChannels = []string{"chan-1"}
		filter, _, _ := newFilterFixture(t, cfg)

		if res := filter.Check(context.Background(), message("heck")); res.Matched {
			t.Fatalf("ignored channel still filtered: %+v", res)
		}
	})

	t.Run("message managers are exempt", func(t *testing.T) {
		filter, _, _ := newFilterFixture(t, filterConfig([]string{"heck"}))
		msg := message("heck")
		msg.AuthorPermission = discordgo.PermissionManageMessages

		if res := filter.Check(context.Background(), msg); res.Matched {
			t.Fatalf("exempt author still filtered: %+v", res)
		}
	})

	t.Run("failed deletion still warns", func(t *testing.T) {
		filter, platform, _ := newFilterFixture(t, filterConfig([]string{"heck"}))
		platform.failDelete = true

		res := filter.Check(context.Background(), message("heck"))
		if !res.Matched || res.Deleted || !res.Warned {
			t.Fatalf("result = %+v, want matched+warned without deleted", res)
		}
	})

	t.Run("auto-warn off deletes only", func(t *testing.T) {
		cfg := filterConfig([]string{"heck"})
		cfg.Automod.Profanity.AutoWarn.Enabled = false
		filter, _, service := newFilterFixture(t, cfg)

		res := filter.Check(context.Background(), message("heck"))
		if !res.Matched || !res.Deleted || res.Warned {
			t.Fatalf("result = %+v, want deleted without warn", res)
		}
		count, _ := service.WarningCount(context.Background(), "guild-1", "user-1")
		if count != 0 {
			t.Errorf("count = %d, want 0", count)
		}
	})

	t.Run("auto-warns feed the escalation rules", func(t *testing.T) {
		cfg := filterConfig([]string{"heck"})
		cfg.WarnAuto = []models.EscalationRule{{Count: 2, Action: "kick"}}
		filter, platform, _ := newFilterFixture(t, cfg)
		platform.members["user-1"] = true

		filter.Check(context.Background(), message("heck"))
		res := filter.Check(context.Background(), message("heck again"))
		if res.Count != 2 {
			t.Fatalf("count = %d, want 2", res.Count)
		}
		if len(platform.kicked) != 1 || platform.kicked[0] != "user-1" {
			t.Errorf("kicked = %v, want [user-1]", platform.kicked)
		}
	})

	t.Run("invalidate picks up a new word list", func(t *testing.T) {
		cfg := filterConfig([]string{"heck"})
		filter, _, _ := newFilterFixture(t, cfg)

		// Prime the matcher cache
		if res := filter.Check(context.Background(), message("darn")); res.Matched {
			t.Fatal("darn is not listed yet")
		}

		store := cfg
		store.Automod.Profanity.Words = []string{"heck", "darn"}
		filter.configs.Set(context.Background(), store)
		filter.Invalidate("guild-1")

		if res := filter.Check(context.Background(), message("darn")); !res.Matched {
			t.Fatal("new word should match after invalidation")
		}
	})
}
