package mqtt

import (
	"testing"
	"time"

	"github.com/anurag-krmkr/Parrot/internal/moderation"
)

// A disconnected broker must never stall callers: entries queue, the worker
// discards them, and Close returns promptly.
func TestTelemetryNeverBlocksWhenDisconnected(t *testing.T) {
	tel := NewTelemetry(&MqttCommunicator{})

	done := make(chan struct{})
	go func() {
		for i := 0; i < telemetryBuffer*2; i++ {
			tel.PublishAudit(moderation.AuditEntry{ID: "entry", GuildID: "guild-1"})
		}
		tel.Close()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("telemetry publishing blocked")
	}
}
