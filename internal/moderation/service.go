package moderation

import (
	"context"
	"time"

	"github.com/anurag-krmkr/Parrot/internal/guildconfig"
	"github.com/anurag-krmkr/Parrot/internal/infractions"
	"github.com/anurag-krmkr/Parrot/pkg/models"
)

// Service is the moderation pipeline: every action flows gate, then executor,
// then audit. Warnings additionally hit the infraction ledger and the
// escalation engine.
type Service struct {
	configs   *guildconfig.Service
	ledger    *infractions.Ledger
	executor  *Executor
	escalator *Escalator
	auditor   *Auditor
}

// NewService wires the pipeline together
func NewService(configs *guildconfig.Service, ledger *infractions.Ledger, executor *Executor, auditor *Auditor) *Service {
	return &Service{
		configs:   configs,
		ledger:    ledger,
		executor:  executor,
		escalator: NewEscalator(executor),
		auditor:   auditor,
	}
}

// Ledger exposes the infraction ledger for read-side callers (warnings
// listing commands, the web API).
func (s *Service) Ledger() *infractions.Ledger {
	return s.ledger
}

// Configs exposes the guild configuration service
func (s *Service) Configs() *guildconfig.Service {
	return s.configs
}

// Moderate runs one action through the full pipeline. A gate denial is
// returned as a failed outcome and is never audited; every attempted
// execution, successful or not, reaches the action log.
func (s *Service) Moderate(ctx context.Context, req Request) Outcome {
	if decision := Authorize(req); !decision.Allowed {
		return failure(req.Kind, req.Target, decision.Reason, "")
	}

	cfg, err := s.configs.Get(ctx, req.GuildID)
	if err != nil {
		return failure(req.Kind, req.Target, FailurePlatformRejected, err.Error())
	}
	if req.Params.MuteRoleID == "" {
		req.Params.MuteRoleID = cfg.MuteRole
	}

	outcome := s.executor.Execute(ctx, req)
	s.auditor.Record(ctx, cfg, req, outcome)
	return outcome
}

// ModerateBatch applies one request to many targets. The gate runs per
// target; one denial or failure never aborts the rest. Each executed item is
// audited individually; denied items are not.
func (s *Service) ModerateBatch(ctx context.Context, req Request, targets []Target) BatchOutcome {
	batch := BatchOutcome{Kind: req.Kind, Items: make([]Outcome, 0, len(targets))}

	cfg, err := s.configs.Get(ctx, req.GuildID)
	if err != nil {
		for _, target := range targets {
			batch.Items = append(batch.Items, failure(req.Kind, target, FailurePlatformRejected, err.Error()))
			batch.Failed++
		}
		return batch
	}

	for _, target := range targets {
		itemReq := req
		itemReq.Target = target
		if itemReq.Params.MuteRoleID == "" {
			itemReq.Params.MuteRoleID = cfg.MuteRole
		}

		var outcome Outcome
		if decision := Authorize(itemReq); !decision.Allowed {
			outcome = failure(req.Kind, target, decision.Reason, "")
		} else {
			outcome = s.executor.Execute(ctx, itemReq)
			s.auditor.Record(ctx, cfg, itemReq, outcome)
		}

		batch.Items = append(batch.Items, outcome)
		if outcome.Success {
			batch.Succeeded++
		} else {
			batch.Failed++
		}
	}
	return batch
}

// WarnResult reports an issued warning together with any automated follow-up
// the new count triggered.
type WarnResult struct {
	Record     *models.WarnRecord
	Count      int
	Escalation *Outcome // nil when no threshold was crossed
}

// IssueWarning records a warning and applies the guild's escalation rules.
// The ledger write is the source of truth: if it fails, nothing happened and
// the error is returned. Escalation and audit after a successful write are
// best-effort.
func (s *Service) IssueWarning(ctx context.Context, req Request) (*WarnResult, error) {
	req.Kind = ActionWarn
	if decision := Authorize(req); !decision.Allowed {
		return nil, &DeniedError{Reason: decision.Reason}
	}

	cfg, err := s.configs.Get(ctx, req.GuildID)
	if err != nil {
		return nil, err
	}

	record, err := s.ledger.Add(ctx, req.GuildID, req.Target.ID, req.Actor.ID,
		req.Reason, req.Params.ChannelID, "", time.Now())
	if err != nil {
		return nil, err
	}

	count, err := s.ledger.Count(ctx, req.GuildID, req.Target.ID)
	if err != nil {
		// The warning is recorded; without a count escalation cannot run
		count = 0
	}

	outcome := success(ActionWarn, req.Target)
	s.auditor.Record(ctx, cfg, req, outcome)

	result := &WarnResult{Record: record, Count: count}
	if count > 0 {
		if esc := s.escalator.Escalate(ctx, cfg, req.Target, count); esc != nil {
			result.Escalation = esc
			escReq := Request{
				Kind:    esc.Kind,
				GuildID: req.GuildID,
				Actor:   System,
				Target:  req.Target,
			}
			s.auditor.Record(ctx, cfg, escReq, *esc)
		}
	}
	return result, nil
}

// QueryWarnings lists a guild's warnings matching the filter, oldest first
func (s *Service) QueryWarnings(ctx context.Context, guildID string, filter infractions.Filter) ([]models.WarnRecord, error) {
	return s.ledger.List(ctx, guildID, filter)
}

// WarningCount reports how many warnings a member has in a guild
func (s *Service) WarningCount(ctx context.Context, guildID, targetID string) (int, error) {
	return s.ledger.Count(ctx, guildID, targetID)
}

// DeleteWarning removes one warning by its per-guild id. The audit entry
// names the removed id.
func (s *Service) DeleteWarning(ctx context.Context, req Request, warnID int64) (bool, error) {
	if decision := Authorize(req); !decision.Allowed {
		return false, &DeniedError{Reason: decision.Reason}
	}
	removed, err := s.ledger.Delete(ctx, req.GuildID, warnID)
	if err != nil || !removed {
		return removed, err
	}
	if cfg, cfgErr := s.configs.Get(ctx, req.GuildID); cfgErr == nil {
		out := success(req.Kind, req.Target)
		s.auditor.Record(ctx, cfg, req, out)
	}
	return true, nil
}

// DeleteWarnings removes every warning matching the filter and reports how
// many went away.
func (s *Service) DeleteWarnings(ctx context.Context, req Request, filter infractions.Filter) (int64, error) {
	if decision := Authorize(req); !decision.Allowed {
		return 0, &DeniedError{Reason: decision.Reason}
	}
	removed, err := s.ledger.DeleteMatching(ctx, req.GuildID, filter)
	if err != nil || removed == 0 {
		return removed, err
	}
	if cfg, cfgErr := s.configs.Get(ctx, req.GuildID); cfgErr == nil {
		out := success(req.Kind, req.Target)
		s.auditor.Record(ctx, cfg, req, out)
	}
	return removed, nil
}

// DeniedError reports a gate denial on the warning paths, where the caller
// needs an error rather than an Outcome.
type DeniedError struct {
	Reason Failure
}

func (e *DeniedError) Error() string {
	return "action denied: " + string(e.Reason)
}
