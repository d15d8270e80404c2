package obfx

import (
	"context"
	"sync"
)

// ObservabilityHook receives one notification per obfuscation call, after
// the stream completed or failed. The engine only ever passes format tags,
// record counts, field names and errors; key material and field values are
// never part of a notification.
type ObservabilityHook interface {
	// OnStreamComplete is called once after a stream was fully processed.
	OnStreamComplete(ctx context.Context, format string, records int, sensitiveFields []string)

	// OnStreamError is called once when a stream fails.
	OnStreamError(ctx context.Context, format string, err error)
}

// NoOpObservabilityHook is a no-op implementation of ObservabilityHook.
type NoOpObservabilityHook struct{}

func (n *NoOpObservabilityHook) OnStreamComplete(ctx context.Context, format string, records int, sensitiveFields []string) {
}
func (n *NoOpObservabilityHook) OnStreamError(ctx context.Context, format string, err error) {}

// StreamCompletion is one successful stream recorded by a
// RecordingObservabilityHook.
type StreamCompletion struct {
	Format          string
	Records         int
	SensitiveFields []string
}

// RecordingObservabilityHook is a simple in-memory implementation for
// testing and development.
type RecordingObservabilityHook struct {
	mu          sync.Mutex
	completions []StreamCompletion
	failures    []error
}

// NewRecordingObservabilityHook creates a new in-memory hook.
func NewRecordingObservabilityHook() *RecordingObservabilityHook {
	return &RecordingObservabilityHook{}
}

func (h *RecordingObservabilityHook) OnStreamComplete(ctx context.Context, format string, records int, sensitiveFields []string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	fields := make([]string, len(sensitiveFields))
	copy(fields, sensitiveFields)
	h.completions = append(h.completions, StreamCompletion{
		Format:          format,
		Records:         records,
		SensitiveFields: fields,
	})
}

func (h *RecordingObservabilityHook) OnStreamError(ctx context.Context, format string, err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.failures = append(h.failures, err)
}

// Completions returns the recorded successful streams.
func (h *RecordingObservabilityHook) Completions() []StreamCompletion {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]StreamCompletion(nil), h.completions...)
}

// Failures returns the recorded stream errors.
func (h *RecordingObservabilityHook) Failures() []error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]error(nil), h.failures...)
}
