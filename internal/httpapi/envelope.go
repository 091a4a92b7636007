package httpapi

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/teamspace-io/teamspace/internal/auth"
	"github.com/teamspace-io/teamspace/internal/telemetry"
)

// envelope is the single wire shape every handler outcome is normalized
// into. Exactly one envelope is produced per request.
type envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Code    string `json:"code,omitempty"`
}

// Result lets a handler override the success status code (e.g. 201 on
// create). Handlers that return any other value get a 200.
type Result struct {
	Status int
	Data   any
}

// writeSuccess emits the canonical success envelope.
func writeSuccess(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(envelope{Success: true, Data: data}); err != nil {
		log.Error().Err(err).Msg("Failed to encode success envelope")
	}
}

// writeFailure classifies the error, logs the internal detail server-side,
// and emits the stable taxonomy-derived message. Internal detail never
// reaches the client.
func writeFailure(ctx context.Context, w http.ResponseWriter, err error) {
	authErr := auth.Classify(err)

	logger := zerolog.Ctx(ctx)
	event := logger.Warn()
	if authErr.Kind == auth.KindInternal || authErr.Kind == auth.KindUpstream {
		event = logger.Error()
	}
	event.Err(err).Str("code", string(authErr.Kind)).Msg("Request failed")

	m := telemetry.GetMetrics()
	m.RecordEnvelopeFailure(ctx, string(authErr.Kind))
	if authErr.Kind == auth.KindForbiddenWorkspace {
		m.ScopeDenialsTotal.Add(ctx, 1)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(authErr.Kind.HTTPStatus())
	_ = json.NewEncoder(w).Encode(envelope{
		Success: false,
		Error:   authErr.Message,
		Code:    string(authErr.Kind),
	})
}

// decodeJSON decodes a request body into dst, mapping malformed input to the
// validation taxonomy.
func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return auth.ErrValidation("request body is not valid JSON for this operation")
	}
	return nil
}
