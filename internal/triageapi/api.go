// Package triageapi exposes the triage pipeline over HTTP.
package triageapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/go-chi/chi/v5"
	"github.com/linnemanlabs/go-core/log"
	"github.com/linnemanlabs/go-core/xerrors"

	"github.com/mwill20/MultiAgent-SOC/internal/alertstore"
	"github.com/mwill20/MultiAgent-SOC/internal/audit"
	"github.com/mwill20/MultiAgent-SOC/internal/llm"
	"github.com/mwill20/MultiAgent-SOC/internal/triage"
)

// TriageService defines the business operations the API needs.
type TriageService interface {
	Triage(ctx context.Context, req *triage.TurnRequest) (*triage.Summary, error)
	Session(ctx context.Context, incidentID string) (*triage.SessionView, bool, error)
}

// AlertSource is the read-only alert listing the API serves.
type AlertSource interface {
	Load(alertID string) ([]alertstore.Alert, error)
}

// API holds dependencies for HTTP handlers.
type API struct {
	logger log.Logger
	svc    TriageService
	alerts AlertSource
}

// New creates a new API handler.
func New(logger log.Logger, svc TriageService, alerts AlertSource) *API {
	if logger == nil {
		logger = log.Nop()
	}
	if svc == nil {
		panic(xerrors.New("triage service is required"))
	}
	return &API{
		logger: logger,
		svc:    svc,
		alerts: alerts,
	}
}

// RegisterRoutes attaches API endpoints to the router.
func (a *API) RegisterRoutes(r chi.Router) {
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/triage", a.handleTriage)
		r.Get("/sessions/{incidentID}", a.handleGetSession)
		r.Get("/sessions/{incidentID}/events", a.handleGetEvents)
		r.Get("/alerts", a.handleListAlerts)
	})
}

func (a *API) handleTriage(w http.ResponseWriter, r *http.Request) {
	var req triage.TurnRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid payload"}`, http.StatusBadRequest)
		return
	}

	span := trace.SpanFromContext(r.Context())
	span.SetAttributes(
		attribute.String("aegis.incident.id", req.IncidentID),
		attribute.String("aegis.alert.id", req.AlertID),
	)

	summary, err := a.svc.Triage(r.Context(), &req)
	if err != nil {
		a.writeError(w, r, err, "triage turn failed")
		return
	}

	span.SetAttributes(attribute.String("aegis.triage.action", string(summary.Action)))

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(summary)
}

func (a *API) handleGetSession(w http.ResponseWriter, r *http.Request) {
	incidentID := chi.URLParam(r, "incidentID")

	span := trace.SpanFromContext(r.Context())
	span.SetAttributes(attribute.String("aegis.incident.id", incidentID))

	view, ok, err := a.svc.Session(r.Context(), incidentID)
	if err != nil {
		a.writeError(w, r, err, "failed to get session")
		return
	}
	if !ok {
		http.Error(w, `{"error":"not found"}`, http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(view)
}

func (a *API) handleGetEvents(w http.ResponseWriter, r *http.Request) {
	incidentID := chi.URLParam(r, "incidentID")
	wantType := r.URL.Query().Get("type")
	wantActor := r.URL.Query().Get("actor")

	view, ok, err := a.svc.Session(r.Context(), incidentID)
	if err != nil {
		a.writeError(w, r, err, "failed to get session")
		return
	}
	if !ok {
		http.Error(w, `{"error":"not found"}`, http.StatusNotFound)
		return
	}

	filtered := make([]audit.Event, 0, len(view.Events))
	for _, e := range view.Events {
		if wantType != "" && string(e.Type) != wantType {
			continue
		}
		if wantActor != "" && e.Actor != wantActor {
			continue
		}
		filtered = append(filtered, e)
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"incident_id": incidentID,
		"events":      filtered,
	})
}

func (a *API) handleListAlerts(w http.ResponseWriter, r *http.Request) {
	alerts, err := a.alerts.Load(r.URL.Query().Get("id"))
	if err != nil {
		a.writeError(w, r, err, "failed to load alerts")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"alerts": alerts})
}

// writeError maps domain error kinds onto HTTP statuses.
func (a *API) writeError(w http.ResponseWriter, r *http.Request, err error, msg string) {
	a.logger.Error(r.Context(), err, msg)
	switch {
	case errors.Is(err, triage.ErrMissingIncident):
		http.Error(w, `{"error":"incident_id is required"}`, http.StatusBadRequest)
	case errors.Is(err, alertstore.ErrNotFound):
		http.Error(w, `{"error":"alert data not found"}`, http.StatusNotFound)
	case errors.Is(err, llm.ErrTransient):
		http.Error(w, `{"error":"inference backend unavailable"}`, http.StatusBadGateway)
	default:
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
	}
}
