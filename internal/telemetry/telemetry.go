// Package telemetry activates and deactivates product analytics from a
// feature-flag bundle.
package telemetry

import (
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/nihalmohammedm/n8n/internal/config"
	log "github.com/sirupsen/logrus"
)

// telemetryFlag is the feature flag gating event collection.
const telemetryFlag = "telemetry"

// Recorder tracks whether analytics is active and ships events to the
// configured endpoint. Event delivery is fire-and-forget: failures are
// logged and dropped.
type Recorder struct {
	rest     *resty.Client
	endpoint string

	mu      sync.Mutex
	enabled bool
	flags   map[string]any
}

// NewRecorder constructs a Recorder. An empty endpoint disables delivery;
// Init/Reset still maintain the enabled state for callers that query it.
func NewRecorder(cfg config.TelemetryConfig) *Recorder {
	r := &Recorder{endpoint: cfg.Endpoint}
	if cfg.Enabled && cfg.Endpoint != "" {
		r.rest = resty.New().SetBaseURL(cfg.Endpoint).SetTimeout(5 * time.Second)
	}
	return r
}

// Init activates tracking according to the user's feature-flag bundle.
func (r *Recorder) Init(flags map[string]any) {
	r.mu.Lock()
	r.flags = flags
	r.enabled = flagEnabled(flags, telemetryFlag)
	r.mu.Unlock()
}

// Reset deactivates tracking and forgets the flag bundle.
func (r *Recorder) Reset() {
	r.mu.Lock()
	r.flags = nil
	r.enabled = false
	r.mu.Unlock()
}

// Enabled reports whether tracking is currently active.
func (r *Recorder) Enabled() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.enabled
}

// Track ships one event when tracking is active.
func (r *Recorder) Track(event string, properties map[string]any) {
	if !r.Enabled() || r.rest == nil {
		return
	}
	payload := map[string]any{
		"event":      event,
		"properties": properties,
		"sentAt":     time.Now().UTC().Format(time.RFC3339),
	}
	go func() {
		if _, errPost := r.rest.R().SetBody(payload).Post("/track"); errPost != nil {
			log.WithError(errPost).Debug("telemetry: track event dropped")
		}
	}()
}

// flagEnabled reads a boolean flag from the bundle, false when absent.
func flagEnabled(flags map[string]any, key string) bool {
	if flags == nil {
		return false
	}
	enabled, _ := flags[key].(bool)
	return enabled
}
