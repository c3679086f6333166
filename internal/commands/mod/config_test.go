package mod

import (
	"testing"
)

func TestParseEscalationRules(t *testing.T) {
	t.Run("empty clears the rules", func(t *testing.T) {
		rules, err := parseEscalationRules("")
		if err != nil || rules != nil {
			t.Fatalf("rules=%v err=%v, want nil/nil", rules, err)
		}
	})

	t.Run("simple pairs", func(t *testing.T) {
		rules, err := parseEscalationRules("3:kick, 5:ban")
		if err != nil {
			t.Fatalf("parse: %v", err)
		}
		if len(rules) != 2 {
			t.Fatalf("len = %d, want 2", len(rules))
		}
		if rules[0].Count != 3 || rules[0].Action != "kick" {
			t.Errorf("rules[0] = %+v", rules[0])
		}
		if rules[1].Count != 5 || rules[1].Action != "ban" {
			t.Errorf("rules[1] = %+v", rules[1])
		}
	})

	t.Run("timed action carries minutes as seconds", func(t *testing.T) {
		rules, err := parseEscalationRules("2:timeout:30")
		if err != nil {
			t.Fatalf("parse: %v", err)
		}
		if rules[0].Duration != 1800 {
			t.Errorf("Duration = %d, want 1800", rules[0].Duration)
		}
	})

	t.Run("rejects timed actions without a duration", func(t *testing.T) {
		if _, err := parseEscalationRules("3:timeout"); err == nil {
			t.Fatal("expected an error for timeout without minutes")
		}
		if _, err := parseEscalationRules("5:tempban"); err == nil {
			t.Fatal("expected an error for tempban without minutes")
		}
	})

	t.Run("rejects unknown actions", func(t *testing.T) {
		if _, err := parseEscalationRules("3:explode"); err == nil {
			t.Fatal("expected an error")
		}
	})

	t.Run("rejects zero counts", func(t *testing.T) {
		if _, err := parseEscalationRules("0:kick"); err == nil {
			t.Fatal("expected an error")
		}
	})

	t.Run("rejects malformed pairs", func(t *testing.T) {
		if _, err := parseEscalationRules("kick"); err == nil {
			t.Fatal("expected an error")
		}
	})
}
