package triage

import (
	"context"
	"time"

	"github.com/linnemanlabs/go-core/log"
	"github.com/linnemanlabs/go-core/xerrors"

	"github.com/mwill20/MultiAgent-SOC/internal/audit"
	"github.com/mwill20/MultiAgent-SOC/internal/session"
)

// ErrMissingIncident is returned for a turn request without an
// incident id.
var ErrMissingIncident = xerrors.New("triage: incident_id is required")

// Notifier delivers a finalized summary to an external channel.
type Notifier interface {
	Notify(ctx context.Context, s *Summary) error
}

// Service is the business boundary for triage operations. It owns the
// session lifecycle and serializes turns per incident; the session
// lock is held for the whole turn so concurrent requests for the same
// incident queue rather than interleave.
type Service struct {
	sessions session.Store
	orch     *Orchestrator
	logger   log.Logger
	metrics  *Metrics
	notifier Notifier
}

// NewService creates a new triage service. metrics and notifier may be
// nil.
func NewService(sessions session.Store, orch *Orchestrator, logger log.Logger, metrics *Metrics, notifier Notifier) *Service {
	if logger == nil {
		logger = log.Nop()
	}
	return &Service{
		sessions: sessions,
		orch:     orch,
		logger:   logger,
		metrics:  metrics,
		notifier: notifier,
	}
}

// Triage runs one turn for the incident, creating its session on first
// contact and reusing it afterwards.
func (s *Service) Triage(ctx context.Context, req *TurnRequest) (*Summary, error) {
	if req.IncidentID == "" {
		return nil, ErrMissingIncident
	}

	sess, err := s.sessions.Create(ctx, req.IncidentID)
	if err != nil {
		return nil, err
	}

	sess.Lock()
	defer sess.Unlock()

	start := time.Now()
	summary, err := s.orch.RunTurn(ctx, sess, req)
	if err != nil {
		s.observeTurn("failed", time.Since(start).Seconds(), 0)
		return nil, err
	}
	s.observeTurn("finalized", summary.Duration, summary.AlertCount)

	if s.notifier != nil {
		// Notification is best-effort and must not block or cancel
		// with the request.
		go func(sum *Summary) {
			nctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 15*time.Second)
			defer cancel()
			if err := s.notifier.Notify(nctx, sum); err != nil {
				s.logger.Warn(nctx, "notify failed", "incident_id", sum.IncidentID, "error", err)
			}
		}(summary)
	}

	return summary, nil
}

// Session returns a read-only view of an incident's session.
func (s *Service) Session(ctx context.Context, incidentID string) (*SessionView, bool, error) {
	sess, ok, err := s.sessions.Get(ctx, incidentID)
	if err != nil || !ok {
		return nil, false, err
	}

	state := sess.View()
	events := audit.Events(state)
	delete(state, audit.StateKey)

	return &SessionView{
		IncidentID: sess.IncidentID,
		SessionID:  sess.ID,
		CreatedAt:  sess.CreatedAt,
		State:      state,
		Events:     events,
	}, true, nil
}

func (s *Service) observeTurn(outcome string, seconds float64, alerts int) {
	if s.metrics == nil {
		return
	}
	s.metrics.TurnsTotal.WithLabelValues(outcome).Inc()
	s.metrics.TurnDuration.WithLabelValues(outcome).Observe(seconds)
	if outcome == "finalized" {
		s.metrics.AlertsLoaded.Observe(float64(alerts))
	}
}
