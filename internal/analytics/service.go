package analytics

import (
	"context"
	"fmt"

	"github.com/angelmondragon/pointsdash/pkg/enums"
	pkgerrors "github.com/angelmondragon/pointsdash/pkg/errors"
	"github.com/angelmondragon/pointsdash/pkg/logger"
	"github.com/angelmondragon/pointsdash/pkg/metrics"
)

// Service serves dashboards with stale-result protection.
type Service interface {
	Dashboard(ctx context.Context, req Request) (*Snapshot, error)
	State(ctx context.Context, userID string) State
	Latest(ctx context.Context, userID string) (*Snapshot, error)
	Facet(ctx context.Context, req Request, facet Facet) (*Snapshot, error)
}

type service struct {
	computer Computer
	tracker  *Tracker
	metrics  *metrics.AggregationMetrics
	logg     *logger.Logger
}

func NewService(computer Computer, tracker *Tracker, m *metrics.AggregationMetrics, logg *logger.Logger) (Service, error) {
	if computer == nil {
		return nil, fmt.Errorf("computer required")
	}
	if tracker == nil {
		tracker = NewTracker()
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &service{
		computer: computer,
		tracker:  tracker,
		metrics:  m,
		logg:     logg,
	}, nil
}

func (s *service) Dashboard(ctx context.Context, req Request) (*Snapshot, error) {
	if req.UserID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user required")
	}
	role := req.Role.DashboardRole().String()

	token := s.tracker.Begin(req.UserID)
	ctx = s.logg.WithGeneration(ctx, token.Generation)

	snapshot, err := s.computer.Compute(ctx, req)
	if err != nil {
		if !s.tracker.Fail(token, err) {
			s.metrics.ObserveSnapshot(role, metrics.OutcomeStale)
			return nil, staleError(token)
		}
		s.metrics.ObserveSnapshot(role, metrics.OutcomeFailed)
		s.logg.Error(ctx, "dashboard snapshot failed", err)
		return nil, err
	}

	snapshot.Generation = token.Generation
	if !s.tracker.Commit(token, snapshot) {
		s.metrics.ObserveSnapshot(role, metrics.OutcomeStale)
		s.logg.Warn(ctx, "discarded stale dashboard snapshot")
		return nil, staleError(token)
	}
	s.metrics.ObserveSnapshot(role, metrics.OutcomeCommitted)
	return snapshot, nil
}

func (s *service) State(_ context.Context, userID string) State {
	return s.tracker.State(userID)
}

// Latest returns the last committed snapshot without recomputing.
func (s *service) Latest(_ context.Context, userID string) (*Snapshot, error) {
	snapshot, ok := s.tracker.Latest(userID)
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no dashboard computed yet")
	}
	return snapshot, nil
}

// Facet recomputes one manager facet. It does not touch the tracked snapshot.
func (s *service) Facet(ctx context.Context, req Request, facet Facet) (*Snapshot, error) {
	if req.UserID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user required")
	}
	if req.Role.DashboardRole() != enums.RoleManager {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "manager role required")
	}
	fc, ok := s.computer.(FacetComputer)
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "facet refresh unavailable")
	}
	snapshot, err := fc.ComputeFacet(s.logg.WithFacet(ctx, string(facet)), facet, req.Now)
	if err != nil {
		s.logg.Error(ctx, "dashboard facet failed", err)
		return nil, err
	}
	return snapshot, nil
}

func staleError(token Token) error {
	return pkgerrors.New(pkgerrors.CodeStaleSnapshot, "a newer dashboard request superseded this one").
		WithDetails(map[string]any{"generation": token.Generation})
}
