package analytics

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/pointsdash/pkg/enums"
	pkgerrors "github.com/angelmondragon/pointsdash/pkg/errors"
)

type computerFunc func(ctx context.Context, req Request) (*Snapshot, error)

func (f computerFunc) Compute(ctx context.Context, req Request) (*Snapshot, error) {
	return f(ctx, req)
}

func newTestService(t *testing.T, computer Computer) Service {
	t.Helper()
	svc, err := NewService(computer, NewTracker(), nil, nil)
	require.NoError(t, err)
	return svc
}

func TestServiceDashboardCommits(t *testing.T) {
	svc := newTestService(t, computerFunc(func(_ context.Context, req Request) (*Snapshot, error) {
		return &Snapshot{Role: req.Role.DashboardRole()}, nil
	}))

	snapshot, err := svc.Dashboard(context.Background(), Request{UserID: "u1", Role: enums.RoleRegular})
	require.NoError(t, err)
	assert.Equal(t, uint64(1), snapshot.Generation)

	state := svc.State(context.Background(), "u1")
	assert.Equal(t, enums.DashboardReady, state.Status)
	assert.Equal(t, uint64(1), state.Generation)
}

func TestServiceDashboardFailureSettlesError(t *testing.T) {
	svc := newTestService(t, computerFunc(func(context.Context, Request) (*Snapshot, error) {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "upstream down")
	}))

	snapshot, err := svc.Dashboard(context.Background(), Request{UserID: "u1", Role: enums.RoleManager})
	assert.Nil(t, snapshot)
	assert.Equal(t, pkgerrors.CodeDependency, pkgerrors.CodeOf(err))
	assert.Equal(t, enums.DashboardError, svc.State(context.Background(), "u1").Status)
}

func TestServiceDashboardDiscardsSupersededResult(t *testing.T) {
	slowNow := time.Date(2025, 4, 15, 9, 0, 0, 0, time.UTC)
	started := make(chan struct{})
	release := make(chan struct{})
	svc := newTestService(t, computerFunc(func(_ context.Context, req Request) (*Snapshot, error) {
		if req.Now.Equal(slowNow) {
			close(started)
			<-release
		}
		return &Snapshot{Role: req.Role, GeneratedAt: req.Now}, nil
	}))

	slow := make(chan error, 1)
	go func() {
		_, err := svc.Dashboard(context.Background(), Request{UserID: "u1", Role: enums.RoleRegular, Now: slowNow})
		slow <- err
	}()
	<-started

	fresh, err := svc.Dashboard(context.Background(), Request{UserID: "u1", Role: enums.RoleRegular, Now: fixedNow})
	require.NoError(t, err)
	assert.Equal(t, uint64(2), fresh.Generation)

	close(release)
	staleErr := <-slow
	require.Error(t, staleErr)
	assert.Equal(t, pkgerrors.CodeStaleSnapshot, pkgerrors.CodeOf(staleErr))

	state := svc.State(context.Background(), "u1")
	assert.Equal(t, enums.DashboardReady, state.Status)
	assert.Equal(t, uint64(2), state.Generation)
}

func TestServiceDashboardRequiresUser(t *testing.T) {
	svc := newTestService(t, computerFunc(func(context.Context, Request) (*Snapshot, error) {
		t.Fatal("compute must not run without a user")
		return nil, nil
	}))
	_, err := svc.Dashboard(context.Background(), Request{Role: enums.RoleRegular})
	assert.Equal(t, pkgerrors.CodeUnauthorized, pkgerrors.CodeOf(err))
}

func TestNewServiceRequiresComputer(t *testing.T) {
	_, err := NewService(nil, nil, nil, nil)
	assert.Error(t, err)
}

type facetComputer struct {
	computerFunc
	facet func(ctx context.Context, facet Facet, now time.Time) (*Snapshot, error)
}

func (f facetComputer) ComputeFacet(ctx context.Context, facet Facet, now time.Time) (*Snapshot, error) {
	return f.facet(ctx, facet, now)
}

func TestServiceLatestReturnsCommittedSnapshot(t *testing.T) {
	svc := newTestService(t, computerFunc(func(_ context.Context, req Request) (*Snapshot, error) {
		return &Snapshot{Role: req.Role}, nil
	}))

	_, err := svc.Latest(context.Background(), "u1")
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.CodeOf(err))

	committed, err := svc.Dashboard(context.Background(), Request{UserID: "u1", Role: enums.RoleCashier})
	require.NoError(t, err)

	latest, err := svc.Latest(context.Background(), "u1")
	require.NoError(t, err)
	assert.Same(t, committed, latest)
}

func TestServiceFacetRequiresManager(t *testing.T) {
	var called Facet
	svc := newTestService(t, facetComputer{
		facet: func(_ context.Context, facet Facet, _ time.Time) (*Snapshot, error) {
			called = facet
			return &Snapshot{Role: enums.RoleManager}, nil
		},
	})

	_, err := svc.Facet(context.Background(), Request{UserID: "u1", Role: enums.RoleCashier}, FacetUsers)
	assert.Equal(t, pkgerrors.CodeForbidden, pkgerrors.CodeOf(err))
	assert.Empty(t, called)

	snapshot, err := svc.Facet(context.Background(), Request{UserID: "u1", Role: enums.RoleSuperuser}, FacetUsers)
	require.NoError(t, err)
	assert.Equal(t, enums.RoleManager, snapshot.Role)
	assert.Equal(t, FacetUsers, called)
	assert.Equal(t, enums.DashboardIdle, svc.State(context.Background(), "u1").Status)
}

func TestServiceFacetUnsupportedComputer(t *testing.T) {
	svc := newTestService(t, computerFunc(func(context.Context, Request) (*Snapshot, error) {
		return nil, nil
	}))
	_, err := svc.Facet(context.Background(), Request{UserID: "u1", Role: enums.RoleManager}, FacetUsers)
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.CodeOf(err))
}
