// Package analytics sends anonymous, opt-out command telemetry:
// which subcommand ran, nothing else. It never includes a file path,
// package name, or process name in an event payload — that is exactly
// the data hdas exists to observe on the user's behalf, not to report
// on it.
//
// Grounded on the teacher's internal/analytics/event.go shape (one
// TrackCommandX function per subcommand, named pmg_command_X events),
// generalized to name the hdas_command_X events and backed by an
// actual posthog-go client, which the teacher's own copy of this file
// references (TrackEvent) but never defines in the retrieved tree.
package analytics

import (
	"os"
	"sync"

	"github.com/google/uuid"
	"github.com/posthog/posthog-go"

	"github.com/safedep/dry/log"
)

const (
	// postHogAPIKey is a write-only ingestion key for anonymous,
	// opt-out product analytics; it carries no read access.
	postHogAPIKey = "phc_hdas_anonymous_telemetry"
	postHogHost   = "https://us.i.posthog.com"

	disableEnvVar = "HDAS_DISABLE_TELEMETRY"
)

var (
	once       sync.Once
	client     posthog.Client
	disabled   bool
	anonymous  string
)

func ensureClient() {
	once.Do(func() {
		if os.Getenv(disableEnvVar) != "" {
			disabled = true
			return
		}

		c, err := posthog.NewWithConfig(postHogAPIKey, posthog.Config{Endpoint: postHogHost})
		if err != nil {
			log.Debugf("analytics: failed to initialise client: %v", err)
			disabled = true
			return
		}

		client = c
		anonymous = uuid.NewString()
	})
}

// TrackEvent fires a single named event carrying no properties beyond
// its name, identified by a per-process random id rather than any
// durable machine or user identifier.
func TrackEvent(name string) {
	ensureClient()
	if disabled || client == nil {
		return
	}

	if err := client.Enqueue(posthog.Capture{
		DistinctId: anonymous,
		Event:      name,
	}); err != nil {
		log.Debugf("analytics: failed to enqueue event %s: %v", name, err)
	}
}

// Close flushes any buffered events. Safe to call even if telemetry is
// disabled or was never initialised.
func Close() {
	if client != nil {
		_ = client.Close()
	}
}
