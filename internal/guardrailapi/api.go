// Package guardrailapi serves a guardrail validator out-of-process,
// carrying the guardrail request/response JSON shapes verbatim plus a
// well-known discovery descriptor.
package guardrailapi

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/linnemanlabs/go-core/log"
	"github.com/linnemanlabs/go-core/xerrors"

	"github.com/mwill20/MultiAgent-SOC/internal/guardrail"
)

// ValidatePath is the endpoint advertised in the descriptor.
const ValidatePath = "/v1/validate"

// API holds dependencies for the guardrail HTTP surface.
type API struct {
	logger    log.Logger
	validator guardrail.Validator
}

// New creates a new guardrail API handler.
func New(logger log.Logger, validator guardrail.Validator) *API {
	if logger == nil {
		logger = log.Nop()
	}
	if validator == nil {
		panic(xerrors.New("validator is required"))
	}
	return &API{logger: logger, validator: validator}
}

// RegisterRoutes attaches the validate endpoint and the well-known
// descriptor to the router.
func (a *API) RegisterRoutes(r chi.Router) {
	r.Post(ValidatePath, a.handleValidate)
	r.Get(guardrail.DescriptorPath, a.handleDescriptor)
}

func (a *API) handleValidate(w http.ResponseWriter, r *http.Request) {
	var req guardrail.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid payload"}`, http.StatusBadRequest)
		return
	}

	resp, err := a.validator.Validate(r.Context(), &req)
	if err != nil {
		a.logger.Error(r.Context(), err, "validation failed")
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		return
	}

	a.logger.Info(r.Context(), "guardrail verdict",
		"allow", resp.Allow,
		"normalized_action", resp.NormalizedAction,
	)

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

func (a *API) handleDescriptor(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"name":        "aegis-guardrail",
		"description": "Validates SOC triage recommendations and normalizes actions.",
		"endpoints": map[string]string{
			"validate": ValidatePath,
		},
	})
}
