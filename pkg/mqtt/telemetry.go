package mqtt

import (
	"fmt"

	"github.com/anurag-krmkr/Parrot/internal/moderation"
	"github.com/anurag-krmkr/Parrot/pkg/logger"
)

// telemetryBuffer is how many audit entries may queue before new ones are
// dropped. Telemetry is best effort; a slow broker must never stall the
// moderation pipeline.
const telemetryBuffer = 256

// Telemetry streams audit entries to the MQTT broker, one topic per guild.
// Publishing happens on a single worker goroutine so PublishAudit never
// blocks the caller.
type Telemetry struct {
	mc      *MqttCommunicator
	entries chan moderation.AuditEntry
	done    chan struct{}
}

// NewTelemetry starts the telemetry worker on the given communicator
func NewTelemetry(mc *MqttCommunicator) *Telemetry {
	t := &Telemetry{
		mc:      mc,
		entries: make(chan moderation.AuditEntry, telemetryBuffer),
		done:    make(chan struct{}),
	}
	go t.run()
	return t
}

// PublishAudit queues an audit entry for publication. Entries are dropped
// when the queue is full or the worker has stopped.
func (t *Telemetry) PublishAudit(entry moderation.AuditEntry) {
	select {
	case t.entries <- entry:
	default:
		logger.Debug(fmt.Sprintf("telemetry queue full, dropping audit entry %s", entry.ID), "MQTT")
	}
}

// Close stops the worker after draining queued entries
func (t *Telemetry) Close() {
	close(t.entries)
	<-t.done
}

func (t *Telemetry) run() {
	defer close(t.done)
	for entry := range t.entries {
		if !t.mc.IsConnected() {
			continue
		}
		topic := fmt.Sprintf("parrot/moderation/%s", entry.GuildID)
		if err := t.mc.Publish(topic, entry); err != nil {
			logger.Debug(fmt.Sprintf("could not publish audit entry %s: %v", entry.ID, err), "MQTT")
		}
	}
}
