// Package handler implements the JSON invocation boundary used by the
// Lambda entry point and any other caller that speaks the request format.
//
// A request names a source object, the fields to obfuscate, and optionally
// a target to upload the result to. Every outcome, including panics and
// malformed payloads, is reported as a Response; the handler never raises.
// Responses carry sizes and URIs only, never transformed data, raw values
// or key material.
package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/hengadev/errsx"
	"github.com/hengadev/obfx"
)

// Response status values.
const (
	StatusOK    = "ok"
	StatusError = "error"
)

// ObjectProcessor is the part of the object store the handler drives.
// *s3store.Store satisfies it.
type ObjectProcessor interface {
	ProcessToBytes(ctx context.Context, uri string, sensitiveFields []string, format string, opts ...obfx.Option) ([]byte, error)
	ProcessAndUpload(ctx context.Context, sourceURI, targetURI string, sensitiveFields []string, format string, opts ...obfx.Option) error
}

// Request is a single obfuscation job.
type Request struct {
	// SourceURI is the object to read, e.g. "s3://bucket/export.csv". Required.
	SourceURI string `json:"source_uri"`

	// Fields lists the column names to obfuscate. Required, at least one.
	Fields []string `json:"fields"`

	// PrimaryKey is the column whose value seeds each token.
	// Defaults to "id" when empty.
	PrimaryKey string `json:"primary_key,omitempty"`

	// TargetURI, when set, receives the transformed object. When empty the
	// object is processed in place and only its size is reported.
	TargetURI string `json:"target_uri,omitempty"`
}

// Response reports the outcome of a request.
type Response struct {
	Status    string `json:"status"`
	Message   string `json:"message,omitempty"`
	Uploaded  bool   `json:"uploaded"`
	Target    string `json:"target,omitempty"`
	Length    int    `json:"length,omitempty"`
	RequestID string `json:"request_id"`
}

// Handler processes requests against an object store.
//
// Usage:
//
//	keys, _ := awssm.New(ctx, awssm.Config{SecretName: "obfuscator/key"})
//	h := &handler.Handler{Store: store, Keys: keys, Logger: slog.Default()}
//	resp := h.Handle(ctx, payload)
type Handler struct {
	// Store fetches, transforms and uploads objects. Required.
	Store ObjectProcessor

	// Keys supplies the obfuscation key. When nil the engine falls back to
	// the OBFUSCATOR_KEY environment variable.
	Keys obfx.KeySource

	// Logger receives structured request logs. Defaults to slog.Default().
	Logger *slog.Logger
}

// Handle decodes a raw JSON payload and processes it. A payload that is not
// valid JSON yields an error response rather than an error.
func (h *Handler) Handle(ctx context.Context, payload []byte) Response {
	requestID := uuid.NewString()

	var req Request
	if err := json.Unmarshal(payload, &req); err != nil {
		return h.fail(ctx, requestID, fmt.Errorf("%w: malformed request payload: %w", obfx.ErrInvalidRequest, err))
	}

	return h.process(ctx, requestID, req)
}

// HandleRequest processes an already-decoded request.
func (h *Handler) HandleRequest(ctx context.Context, req Request) Response {
	return h.process(ctx, uuid.NewString(), req)
}

func (h *Handler) process(ctx context.Context, requestID string, req Request) (resp Response) {
	defer func() {
		if r := recover(); r != nil {
			h.log().ErrorContext(ctx, "request panicked",
				"request_id", requestID,
				"panic", fmt.Sprintf("%v", r),
			)
			resp = Response{Status: StatusError, Message: "internal error", RequestID: requestID}
		}
	}()

	if err := req.validate(); err != nil {
		return h.fail(ctx, requestID, fmt.Errorf("%w: %w", obfx.ErrInvalidRequest, err))
	}

	primaryKey := req.PrimaryKey
	if primaryKey == "" {
		primaryKey = obfx.DefaultPrimaryKeyField
	}

	opts := []obfx.Option{
		obfx.WithPrimaryKey(primaryKey),
		obfx.WithLogger(h.log()),
	}
	if h.Keys != nil {
		opts = append(opts, obfx.WithKeySource(h.Keys))
	}

	h.log().InfoContext(ctx, "processing request",
		"request_id", requestID,
		"source", req.SourceURI,
		"fields", req.Fields,
		"upload", req.TargetURI != "",
	)

	if req.TargetURI != "" {
		if err := h.Store.ProcessAndUpload(ctx, req.SourceURI, req.TargetURI, req.Fields, "", opts...); err != nil {
			return h.fail(ctx, requestID, err)
		}
		return Response{
			Status:    StatusOK,
			Uploaded:  true,
			Target:    req.TargetURI,
			RequestID: requestID,
		}
	}

	data, err := h.Store.ProcessToBytes(ctx, req.SourceURI, req.Fields, "", opts...)
	if err != nil {
		return h.fail(ctx, requestID, err)
	}
	return Response{
		Status:    StatusOK,
		Uploaded:  false,
		Length:    len(data),
		RequestID: requestID,
	}
}

func (r Request) validate() error {
	var errs errsx.Map
	if r.SourceURI == "" {
		errs.Set("source_uri", "is required")
	}
	if len(r.Fields) == 0 {
		errs.Set("fields", "at least one field is required")
	}
	return errs.AsError()
}

func (h *Handler) fail(ctx context.Context, requestID string, err error) Response {
	h.log().ErrorContext(ctx, "request failed",
		"request_id", requestID,
		"error", err,
		"configuration_error", obfx.IsConfigurationError(err),
		"retryable", obfx.IsRetryableError(err),
	)
	return Response{Status: StatusError, Message: err.Error(), RequestID: requestID}
}

func (h *Handler) log() *slog.Logger {
	if h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}
