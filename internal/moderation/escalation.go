package moderation

import (
	"context"
	"fmt"
	"time"

	"github.com/anurag-krmkr/Parrot/pkg/logger"
	"github.com/anurag-krmkr/Parrot/pkg/models"
)

// Escalator turns a member's warning count into the automated follow-up
// action configured for the guild. Escalation is fire-and-forget: a rejected
// follow-up never bubbles back into the warning that triggered it.
type Escalator struct {
	executor *Executor
}

// NewEscalator creates an Escalator on the given executor
func NewEscalator(executor *Executor) *Escalator {
	return &Escalator{executor: executor}
}

// pickRule returns the rule with the highest Count that the warning count
// satisfies, or nil when no threshold is reached. A member jumping past
// several thresholds at once gets only the most severe one.
func pickRule(rules []models.EscalationRule, count int) *models.EscalationRule {
	var best *models.EscalationRule
	for i := range rules {
		rule := &rules[i]
		if count < rule.Count {
			continue
		}
		if best == nil || rule.Count > best.Count {
			best = rule
		}
	}
	return best
}

// Escalate applies the configured rule for the given warning count, if any.
// The returned outcome is nil when no threshold is crossed.
func (e *Escalator) Escalate(ctx context.Context, cfg *models.GuildConfig, target Target, count int) *Outcome {
	rule := pickRule(cfg.WarnAuto, count)
	if rule == nil {
		return nil
	}

	req := Request{
		Kind:    ActionKind(rule.Action),
		GuildID: cfg.GuildID,
		Actor:   System,
		Target:  target,
		Reason:  fmt.Sprintf("Automatic action: reached %d warnings", rule.Count),
	}

	switch req.Kind {
	case ActionTimeout, ActionTempban:
		if rule.Duration > 0 {
			until := time.Now().Add(time.Duration(rule.Duration) * time.Second)
			req.Params.Until = &until
		}
	case ActionMute:
		req.Params.MuteRoleID = cfg.MuteRole
	}

	outcome := e.executor.Execute(ctx, req)
	if !outcome.Success {
		logger.Warn(fmt.Sprintf("escalation %s on %s in guild %s failed: %s %s",
			rule.Action, target.ID, cfg.GuildID, outcome.Failure, outcome.Detail), "Escalator")
	}
	return &outcome
}
