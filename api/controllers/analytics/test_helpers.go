package analytics

import (
	"context"

	"github.com/angelmondragon/pointsdash/internal/analytics"
	"github.com/angelmondragon/pointsdash/pkg/enums"
)

type testDashboardService struct {
	last      analytics.Request
	lastFacet analytics.Facet
	snapshot  *analytics.Snapshot
	state     analytics.State
	err       error
}

func (s *testDashboardService) Dashboard(_ context.Context, req analytics.Request) (*analytics.Snapshot, error) {
	s.last = req
	if s.err != nil {
		return nil, s.err
	}
	return s.snapshot, nil
}

func (s *testDashboardService) State(_ context.Context, userID string) analytics.State {
	s.last = analytics.Request{UserID: userID}
	return s.state
}

func (s *testDashboardService) Latest(_ context.Context, userID string) (*analytics.Snapshot, error) {
	s.last = analytics.Request{UserID: userID}
	if s.err != nil {
		return nil, s.err
	}
	return s.snapshot, nil
}

func (s *testDashboardService) Facet(_ context.Context, req analytics.Request, facet analytics.Facet) (*analytics.Snapshot, error) {
	s.last = req
	s.lastFacet = facet
	if s.err != nil {
		return nil, s.err
	}
	return s.snapshot, nil
}

func (s *testDashboardService) called() bool {
	return s.last.UserID != ""
}

func (s *testDashboardService) role() enums.Role {
	return s.last.Role
}
