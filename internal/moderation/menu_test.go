package moderation

import (
	"context"
	"testing"
	"time"

	"github.com/anurag-krmkr/Parrot/pkg/models"
)

// scriptedPrompter replays canned responses; empty choice means timeout
type scriptedPrompter struct {
	choice    string
	choiceOK  bool
	followup  string
	followOK  bool
	shown     []MenuChoice
	outcomes  []Outcome
	followups []string
}

func (s *scriptedPrompter) ShowChoices(_ context.Context, choices []MenuChoice) error {
	s.shown = choices
	return nil
}

func (s *scriptedPrompter) AwaitChoice(_ context.Context, _ time.Duration) (string, bool) {
	return s.choice, s.choiceOK
}

func (s *scriptedPrompter) AskFollowup(_ context.Context, prompt string, _ time.Duration) (string, bool) {
	s.followups = append(s.followups, prompt)
	return s.followup, s.followOK
}

func (s *scriptedPrompter) ShowOutcome(_ context.Context, outcome Outcome) error {
	s.outcomes = append(s.outcomes, outcome)
	return nil
}

func menuRequest() Request {
	return Request{
		GuildID: "guild-1",
		Actor:   modActor(),
		Bot:     botActor(),
		Target:  NewMemberTarget("user-1", "Troubler", 1),
	}
}

func TestMenuRun(t *testing.T) {
	cfg := &models.GuildConfig{GuildID: "guild-1", Prefix: "$", ActionLog: "log-chan"}

	t.Run("kick choice with reason runs the pipeline", func(t *testing.T) {
		p := newTestPipeline(t, cfg)
		p.fake.members["user-1"] = true
		prompter := &scriptedPrompter{choice: "3", choiceOK: true, followup: "spamming", followOK: true}
		menu := NewMenu(p.service, prompter)

		out := menu.Run(context.Background(), menuRequest())
		if out == nil || !out.Success {
			t.Fatalf("expected kick success, got %+v", out)
		}
		if menu.State() != MenuDone {
			t.Errorf("state = %s, want done", menu.State())
		}
		if len(p.sender.entries) != 1 || p.sender.entries[0].Reason != "spamming" {
			t.Errorf("audit = %+v, want kick with reason spamming", p.sender.entries)
		}
		if len(prompter.outcomes) != 1 {
			t.Error("outcome should be shown to the moderator")
		}
	})

	t.Run("timeout at the choice prompt abandons silently", func(t *testing.T) {
		p := newTestPipeline(t, cfg)
		prompter := &scriptedPrompter{choiceOK: false}
		menu := NewMenu(p.service, prompter)

		out := menu.Run(context.Background(), menuRequest())
		if out != nil {
			t.Fatalf("expected no outcome, got %+v", out)
		}
		if menu.State() != MenuTimedOut {
			t.Errorf("state = %s, want timed_out", menu.State())
		}
		if len(p.fake.calls) != 0 {
			t.Error("no action may run after a timeout")
		}
	})

	t.Run("timeout at the followup prompt abandons silently", func(t *testing.T) {
		p := newTestPipeline(t, cfg)
		prompter := &scriptedPrompter{choice: "5", choiceOK: true, followOK: false}
		menu := NewMenu(p.service, prompter)

		out := menu.Run(context.Background(), menuRequest())
		if out != nil || menu.State() != MenuTimedOut {
			t.Fatalf("expected silent timeout, got %+v state %s", out, menu.State())
		}
		if len(p.fake.calls) != 0 {
			t.Error("no action may run after a timeout")
		}
	})

	t.Run("warn choice goes through the ledger", func(t *testing.T) {
		p := newTestPipeline(t, cfg)
		prompter := &scriptedPrompter{choice: "1", choiceOK: true, followup: "first offense", followOK: true}
		menu := NewMenu(p.service, prompter)

		out := menu.Run(context.Background(), menuRequest())
		if out == nil || !out.Success {
			t.Fatalf("expected warn success, got %+v", out)
		}
		count, err := p.service.WarningCount(context.Background(), "guild-1", "user-1")
		if err != nil || count != 1 {
			t.Errorf("count=%d err=%v, want 1", count, err)
		}
	})

	t.Run("timeout choice parses the duration", func(t *testing.T) {
		p := newTestPipeline(t, cfg)
		prompter := &scriptedPrompter{choice: "2", choiceOK: true, followup: "15", followOK: true}
		menu := NewMenu(p.service, prompter)

		out := menu.Run(context.Background(), menuRequest())
		if out == nil || !out.Success {
			t.Fatalf("expected timeout success, got %+v", out)
		}
		if p.fake.timeouts["user-1"] == nil {
			t.Error("timeout expiry should be set")
		}
	})

	t.Run("garbage duration ends the session without acting", func(t *testing.T) {
		p := newTestPipeline(t, cfg)
		prompter := &scriptedPrompter{choice: "2", choiceOK: true, followup: "soon", followOK: true}
		menu := NewMenu(p.service, prompter)

		out := menu.Run(context.Background(), menuRequest())
		if out != nil || menu.State() != MenuDone {
			t.Fatalf("expected abandoned session, got %+v state %s", out, menu.State())
		}
		if len(p.fake.calls) != 0 {
			t.Error("no action may run on invalid input")
		}
	})

	t.Run("unknown choice key ends the session", func(t *testing.T) {
		p := newTestPipeline(t, cfg)
		prompter := &scriptedPrompter{choice: "9", choiceOK: true}
		menu := NewMenu(p.service, prompter)

		out := menu.Run(context.Background(), menuRequest())
		if out != nil || menu.State() != MenuDone {
			t.Fatalf("expected abandoned session, got %+v", out)
		}
	})
}
