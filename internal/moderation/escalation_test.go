package moderation

import (
	"context"
	"testing"

	"github.com/anurag-krmkr/Parrot/pkg/models"
)

func escalationConfig() *models.GuildConfig {
	return &models.GuildConfig{
		GuildID: "guild-1",
		WarnAuto: []models.EscalationRule{
			{Count: 5, Action: "ban"},
			{Count: 3, Action: "kick"},
		},
	}
}

func TestEscalate(t *testing.T) {
	t.Run("below every threshold does nothing", func(t *testing.T) {
		fake := newFakePlatform()
		esc := NewEscalator(NewExecutor(fake))

		out := esc.Escalate(context.Background(), escalationConfig(), NewMemberTarget("user-1", "U", 1), 2)
		if out != nil {
			t.Fatalf("expected no escalation, got %+v", out)
		}
		if len(fake.calls) != 0 {
			t.Error("platform should not be called")
		}
	})

	t.Run("exact threshold fires that rule", func(t *testing.T) {
		fake := newFakePlatform()
		fake.members["user-1"] = true
		esc := NewEscalator(NewExecutor(fake))

		out := esc.Escalate(context.Background(), escalationConfig(), NewMemberTarget("user-1", "U", 1), 3)
		if out == nil || !out.Success {
			t.Fatalf("expected successful escalation, got %+v", out)
		}
		if out.Kind != ActionKick {
			t.Errorf("kind = %s, want kick", out.Kind)
		}
	})

	t.Run("count past several thresholds picks the most severe", func(t *testing.T) {
		fake := newFakePlatform()
		fake.members["user-1"] = true
		esc := NewEscalator(NewExecutor(fake))

		out := esc.Escalate(context.Background(), escalationConfig(), NewMemberTarget("user-1", "U", 1), 7)
		if out == nil || out.Kind != ActionBan {
			t.Fatalf("expected ban, got %+v", out)
		}
		if !fake.banned["user-1"] {
			t.Error("user should be banned")
		}
	})

	t.Run("timed rule carries its duration", func(t *testing.T) {
		fake := newFakePlatform()
		cfg := &models.GuildConfig{
			GuildID:  "guild-1",
			WarnAuto: []models.EscalationRule{{Count: 2, Action: "timeout", Duration: 600}},
		}
		esc := NewEscalator(NewExecutor(fake))

		out := esc.Escalate(context.Background(), cfg, NewMemberTarget("user-1", "U", 1), 2)
		if out == nil || !out.Success {
			t.Fatalf("expected timeout, got %+v", out)
		}
		if fake.timeouts["user-1"] == nil {
			t.Error("timeout expiry should be set")
		}
	})

	t.Run("a rejected follow-up is reported, not raised", func(t *testing.T) {
		fake := newFakePlatform()
		fake.failOn = "BanMember"
		cfg := &models.GuildConfig{
			GuildID:  "guild-1",
			WarnAuto: []models.EscalationRule{{Count: 1, Action: "ban"}},
		}
		esc := NewEscalator(NewExecutor(fake))

		out := esc.Escalate(context.Background(), cfg, NewMemberTarget("user-1", "U", 1), 1)
		if out == nil || out.Success {
			t.Fatalf("expected a failed outcome, got %+v", out)
		}
		if out.Failure != FailurePlatformRejected {
			t.Errorf("failure = %s, want platform_rejected", out.Failure)
		}
	})
}
