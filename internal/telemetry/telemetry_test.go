package telemetry

import (
	"testing"

	"github.com/nihalmohammedm/n8n/internal/config"
)

func TestInitFollowsFeatureFlag(t *testing.T) {
	recorder := NewRecorder(config.TelemetryConfig{})

	recorder.Init(map[string]any{"telemetry": true})
	if !recorder.Enabled() {
		t.Fatalf("tracking not enabled by flag bundle")
	}

	recorder.Init(map[string]any{"telemetry": false})
	if recorder.Enabled() {
		t.Fatalf("tracking enabled despite disabled flag")
	}

	recorder.Init(nil)
	if recorder.Enabled() {
		t.Fatalf("tracking enabled with no flag bundle")
	}
}

func TestResetDeactivatesTracking(t *testing.T) {
	recorder := NewRecorder(config.TelemetryConfig{})
	recorder.Init(map[string]any{"telemetry": true})

	recorder.Reset()
	if recorder.Enabled() {
		t.Fatalf("tracking still enabled after reset")
	}
}
