package moderation

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/anurag-krmkr/Parrot/pkg/logger"
	"github.com/anurag-krmkr/Parrot/pkg/models"
)

// AuditEntry is a single human-readable record of an executed action,
// destined for the guild's configured action-log channel.
type AuditEntry struct {
	ID        string    `json:"id"`
	GuildID   string    `json:"guildId"`
	Command   string    `json:"command"`
	ActorID   string    `json:"actorId"`
	ActorName string    `json:"actorName"`
	TargetID  string    `json:"targetId"`
	Target    string    `json:"target"`
	Reason    string    `json:"reason"`
	Detail    string    `json:"detail,omitempty"`
	Success   bool      `json:"success"`
	Failure   string    `json:"failure,omitempty"`
	Automated bool      `json:"automated"`
	Timestamp time.Time `json:"timestamp"`
}

// AuditSender delivers an entry to a log channel. The discordgo-backed
// implementation posts an embed.
type AuditSender interface {
	SendAudit(ctx context.Context, channelID string, entry AuditEntry) error
}

// Telemetry mirrors audit entries to an external sink (the MQTT bridge).
// Implementations must never block the moderation path.
type Telemetry interface {
	PublishAudit(entry AuditEntry)
}

type multiTelemetry []Telemetry

func (m multiTelemetry) PublishAudit(entry AuditEntry) {
	for _, t := range m {
		t.PublishAudit(entry)
	}
}

// FanOutTelemetry combines several sinks into one. Nil sinks are skipped.
func FanOutTelemetry(sinks ...Telemetry) Telemetry {
	var m multiTelemetry
	for _, s := range sinks {
		if s != nil {
			m = append(m, s)
		}
	}
	if len(m) == 0 {
		return nil
	}
	return m
}

// Auditor writes audit entries for executed actions. Auditing is strictly
// best-effort: a missing channel or a failed send is logged and dropped,
// never surfaced to the action's invoker.
type Auditor struct {
	sender    AuditSender
	telemetry Telemetry
}

// NewAuditor creates an Auditor. telemetry may be nil.
func NewAuditor(sender AuditSender, telemetry Telemetry) *Auditor {
	return &Auditor{sender: sender, telemetry: telemetry}
}

// Record builds and delivers the audit entry for one executed action
func (a *Auditor) Record(ctx context.Context, cfg *models.GuildConfig, req Request, outcome Outcome) {
	reason := req.Reason
	if reason == "" {
		reason = fmt.Sprintf("Action requested by %s", req.Actor.Name)
	}

	entry := AuditEntry{
		ID:        uuid.NewString(),
		GuildID:   req.GuildID,
		Command:   string(req.Kind),
		ActorID:   req.Actor.ID,
		ActorName: req.Actor.Name,
		TargetID:  req.Target.ID,
		Target:    req.Target.Name,
		Reason:    reason,
		Detail:    outcome.Detail,
		Success:   outcome.Success,
		Failure:   string(outcome.Failure),
		Automated: req.Actor.IsSystem(),
		Timestamp: time.Now().UTC(),
	}

	if a.telemetry != nil {
		a.telemetry.PublishAudit(entry)
	}

	if cfg.ActionLog == "" {
		return
	}
	if err := a.sender.SendAudit(ctx, cfg.ActionLog, entry); err != nil {
		logger.Warn(fmt.Sprintf("audit entry %s for guild %s dropped: %v", entry.ID, req.GuildID, err), "Audit")
	}
}
