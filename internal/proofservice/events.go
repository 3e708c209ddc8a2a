package proofservice

import (
	"log/slog"

	"github.com/starford/fitch/internal/index"
	"github.com/starford/fitch/internal/metrics"
	"github.com/starford/fitch/internal/models"
	"github.com/starford/fitch/internal/verify"
)

// Publisher pushes proof events to connected clients. *sse.Broker
// satisfies it and reads EventPayload through sse.Tracked.
type Publisher interface {
	PublishProofEvent(kind, path string, data any)
}

// EventPayload is the data of a proof.verified or proof.deleted event.
type EventPayload struct {
	Path         string               `json:"path"`
	PassID       string               `json:"pass_id,omitempty"`
	Generation   uint64               `json:"generation,omitempty"`
	Summary      *models.ProofSummary `json:"summary,omitempty"`
	Diagnostics  []verify.Diagnostic  `json:"diagnostics,omitempty"`
	Placeholders []int                `json:"placeholders,omitempty"`
	DurationMS   float64              `json:"duration_ms,omitempty"`
}

// EventID returns the pass id, used as the SSE event id.
func (p EventPayload) EventID() string { return p.PassID }

// EventGeneration returns the scheduler generation of the pass.
func (p EventPayload) EventGeneration() uint64 { return p.Generation }

// Notify returns an index callback that records pass metrics and forwards
// every event to pub. pub may be nil.
func Notify(pub Publisher, logger *slog.Logger) index.EventCallback {
	return func(ev index.Event) {
		payload := EventPayload{Path: ev.Path, Summary: ev.Summary}
		if p := ev.Pass; p != nil {
			metrics.ObservePass(metrics.SourceIndex, *p)
			payload.PassID = p.ID.String()
			payload.Generation = p.Generation
			payload.Diagnostics = p.Report.Diagnostics
			payload.Placeholders = p.Report.Placeholders
			payload.DurationMS = float64(p.Duration.Microseconds()) / 1000
		}
		logger.Debug("proof event", slog.String("kind", ev.Kind), slog.String("path", ev.Path))
		if pub != nil {
			pub.PublishProofEvent(ev.Kind, ev.Path, payload)
		}
	}
}
