package analytics

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	"github.com/angelmondragon/pointsdash/internal/records"
	"github.com/angelmondragon/pointsdash/pkg/enums"
	pkgerrors "github.com/angelmondragon/pointsdash/pkg/errors"
	"github.com/angelmondragon/pointsdash/pkg/logger"
	"github.com/angelmondragon/pointsdash/pkg/metrics"
	"github.com/angelmondragon/pointsdash/pkg/pagination"
)

// Record sources for the member and cashier pipelines. They label fetch metrics
// and errors the same way manager facets do.
const (
	sourceMyTransactions     Facet = "myTransactions"
	sourceEvents             Facet = "events"
	sourcePromotions         Facet = "promotions"
	sourceCashierStats       Facet = "cashierStats"
	sourcePendingRedemptions Facet = "pendingRedemptions"
	sourceRecentTransactions Facet = "recentTransactions"
)

var timeNowUTC = func() time.Time { return time.Now().UTC() }

// Request identifies whose dashboard to compute. Role is resolved by the caller.
type Request struct {
	UserID string
	Role   enums.Role
	Now    time.Time
}

// Engine fetches records for a role and reduces them into a Snapshot.
type Engine struct {
	fetcher Fetcher
	opts    Options
	metrics *metrics.AggregationMetrics
	logg    *logger.Logger
}

func NewEngine(fetcher Fetcher, opts Options, m *metrics.AggregationMetrics, logg *logger.Logger) (*Engine, error) {
	if fetcher == nil {
		return nil, fmt.Errorf("fetcher required")
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &Engine{
		fetcher: fetcher,
		opts:    opts.withDefaults(),
		metrics: m,
		logg:    logg,
	}, nil
}

// Compute runs the pipeline for req.Role. Superusers get the manager dashboard.
func (e *Engine) Compute(ctx context.Context, req Request) (*Snapshot, error) {
	role := req.Role.DashboardRole()
	if !role.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unsupported role").
			WithDetails(map[string]any{"role": req.Role})
	}
	now := req.Now
	if now.IsZero() {
		now = timeNowUTC()
	}
	now = now.In(e.opts.Location)

	var (
		snapshot *Snapshot
		err      error
	)
	switch role {
	case enums.RoleRegular:
		snapshot, err = e.computeRegular(ctx, now)
	case enums.RoleCashier:
		snapshot, err = e.computeCashier(ctx, now)
	default:
		snapshot, err = e.computeManager(ctx, now)
	}
	if err != nil {
		return nil, fetchError(err)
	}
	return snapshot, nil
}

// ComputeFacet builds a manager Snapshot holding only facet. It bypasses the join
// policy since a single facet either builds or fails.
func (e *Engine) ComputeFacet(ctx context.Context, facet Facet, now time.Time) (*Snapshot, error) {
	var job *facetJob
	for _, candidate := range e.managerJobs() {
		if candidate.facet == facet {
			job = &candidate
			break
		}
	}
	if job == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "unknown facet").
			WithDetails(map[string]any{"facet": facet})
	}
	if now.IsZero() {
		now = timeNowUTC()
	}
	now = now.In(e.opts.Location)

	apply, err := e.runFacet(ctx, *job, now)
	if err != nil {
		return nil, fetchError(err)
	}
	snapshot := &Snapshot{Role: enums.RoleManager, GeneratedAt: now}
	apply(snapshot)
	return snapshot, nil
}

func (e *Engine) computeRegular(ctx context.Context, now time.Time) (*Snapshot, error) {
	var in RegularInput
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return e.observe(gctx, sourceMyTransactions, func(ctx context.Context) (err error) {
			in.Transactions, err = collect(ctx, e.opts, e.fetcher.ListMyTransactions, records.Query{})
			return err
		})
	})
	g.Go(func() error {
		return e.observe(gctx, sourceEvents, func(ctx context.Context) (err error) {
			in.Events, err = collect(ctx, e.opts, e.fetcher.ListEvents, records.Query{})
			return err
		})
	})
	g.Go(func() error {
		return e.observe(gctx, sourcePromotions, func(ctx context.Context) (err error) {
			in.Promotions, err = collect(ctx, e.opts, e.fetcher.ListPromotions, records.Query{})
			return err
		})
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return BuildRegular(in, now, e.opts), nil
}

func (e *Engine) computeCashier(ctx context.Context, now time.Time) (*Snapshot, error) {
	var in CashierInput
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return e.observe(gctx, sourceCashierStats, func(ctx context.Context) error {
			stats, err := e.fetcher.CashierStats(ctx)
			if err != nil {
				return err
			}
			in.Stats = &stats
			return nil
		})
	})
	g.Go(func() error {
		return e.observe(gctx, sourcePendingRedemptions, func(ctx context.Context) (err error) {
			in.PendingRedemptions, err = collect(ctx, e.opts, e.fetcher.ListTransactions, records.Query{
				Type:      enums.TransactionRedemption,
				Processed: records.Bool(false),
			})
			return err
		})
	})
	g.Go(func() error {
		// The remote service promises no ordering, so recency is decided over the whole ledger.
		return e.observe(gctx, sourceRecentTransactions, func(ctx context.Context) (err error) {
			in.Recent, err = collect(ctx, e.opts, e.fetcher.ListTransactions, records.Query{})
			return err
		})
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return BuildCashier(in, now, e.opts), nil
}

type facetApply func(*Snapshot)

type facetJob struct {
	facet Facet
	run   func(ctx context.Context, now time.Time) (facetApply, error)
}

func (e *Engine) managerJobs() []facetJob {
	return []facetJob{
		{facet: FacetOverview, run: e.overviewFacet},
		{facet: FacetUsers, run: e.usersFacet},
		{facet: FacetTransactions, run: e.transactionsFacet},
		{facet: FacetEvents, run: e.eventsFacet},
		{facet: FacetPromotions, run: e.promotionsFacet},
		{facet: FacetFinancial, run: e.financialFacet},
	}
}

func (e *Engine) computeManager(ctx context.Context, now time.Time) (*Snapshot, error) {
	jobs := e.managerJobs()
	applies := make([]facetApply, len(jobs))
	snapshot := &Snapshot{Role: enums.RoleManager, GeneratedAt: now}

	if e.opts.JoinPolicy == enums.JoinBestEffort {
		errs := make([]error, len(jobs))
		var wg sync.WaitGroup
		for i, job := range jobs {
			wg.Add(1)
			go func() {
				defer wg.Done()
				applies[i], errs[i] = e.runFacet(ctx, job, now)
			}()
		}
		wg.Wait()

		var combined error
		for i, err := range errs {
			if err != nil {
				combined = multierr.Append(combined, err)
				snapshot.Errors = append(snapshot.Errors, FacetFailure{
					Facet:   jobs[i].facet,
					Message: pkgerrors.MetadataFor(pkgerrors.CodeOf(err)).PublicMessage,
				})
				continue
			}
			applies[i](snapshot)
		}
		if len(snapshot.Errors) == len(jobs) {
			return nil, combined
		}
		if combined != nil {
			e.logg.Warn(e.logg.WithField(ctx, "failed_facets", len(snapshot.Errors)), "manager snapshot built without some facets")
		}
		return snapshot, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	for i, job := range jobs {
		g.Go(func() error {
			apply, err := e.runFacet(gctx, job, now)
			if err != nil {
				return err
			}
			applies[i] = apply
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	for _, apply := range applies {
		apply(snapshot)
	}
	return snapshot, nil
}

func (e *Engine) runFacet(ctx context.Context, job facetJob, now time.Time) (facetApply, error) {
	var apply facetApply
	err := e.observe(ctx, job.facet, func(ctx context.Context) (err error) {
		apply, err = job.run(ctx, now)
		return err
	})
	return apply, err
}

func (e *Engine) overviewFacet(ctx context.Context, _ time.Time) (facetApply, error) {
	one := records.Query{Limit: 1, Page: 1}
	var counts OverviewCounts

	users, err := e.fetcher.ListUsers(ctx, one)
	if err != nil {
		return nil, err
	}
	counts.Users = users.Count

	txs, err := e.fetcher.ListTransactions(ctx, one)
	if err != nil {
		return nil, err
	}
	counts.Transactions = txs.Count

	events, err := e.fetcher.ListEvents(ctx, one)
	if err != nil {
		return nil, err
	}
	counts.Events = events.Count

	promotions, err := e.fetcher.ListPromotions(ctx, one)
	if err != nil {
		return nil, err
	}
	counts.Promotions = promotions.Count

	overview := BuildOverview(counts)
	return func(s *Snapshot) { s.Overview = overview }, nil
}

func (e *Engine) usersFacet(ctx context.Context, now time.Time) (facetApply, error) {
	users, err := collect(ctx, e.opts, e.fetcher.ListUsers, records.Query{})
	if err != nil {
		return nil, err
	}
	txs, err := collect(ctx, e.opts, e.fetcher.ListTransactions, records.Query{})
	if err != nil {
		return nil, err
	}
	facet := BuildUserAnalytics(users, txs, now, e.opts.TopK)
	return func(s *Snapshot) { s.Users = facet }, nil
}

func (e *Engine) transactionsFacet(ctx context.Context, now time.Time) (facetApply, error) {
	txs, err := collect(ctx, e.opts, e.fetcher.ListTransactions, records.Query{})
	if err != nil {
		return nil, err
	}
	facet := BuildTransactionAnalytics(txs, now)
	return func(s *Snapshot) { s.Transactions = facet }, nil
}

func (e *Engine) eventsFacet(ctx context.Context, now time.Time) (facetApply, error) {
	events, err := collect(ctx, e.opts, e.fetcher.ListEvents, records.Query{})
	if err != nil {
		return nil, err
	}
	facet := BuildEventAnalytics(events, now, e.opts.TopK)
	return func(s *Snapshot) { s.Events = facet }, nil
}

func (e *Engine) promotionsFacet(ctx context.Context, now time.Time) (facetApply, error) {
	promotions, err := collect(ctx, e.opts, e.fetcher.ListPromotions, records.Query{})
	if err != nil {
		return nil, err
	}
	facet := BuildPromotionAnalytics(promotions, now, e.opts.TopK)
	return func(s *Snapshot) { s.Promotions = facet }, nil
}

func (e *Engine) financialFacet(ctx context.Context, now time.Time) (facetApply, error) {
	txs, err := collect(ctx, e.opts, e.fetcher.ListTransactions, records.Query{})
	if err != nil {
		return nil, err
	}
	facet := BuildFinancial(txs, now)
	return func(s *Snapshot) { s.Financial = facet }, nil
}

// observe times fn under facet and tags its error. Cancellations caused by a
// sibling failure are not counted as failures of their own.
func (e *Engine) observe(ctx context.Context, facet Facet, fn func(context.Context) error) error {
	start := time.Now()
	err := fn(ctx)

	counted := err
	if err != nil && ctx.Err() != nil && errors.Is(err, context.Canceled) {
		counted = nil
	}
	e.metrics.ObserveFacet(string(facet), time.Since(start), counted)

	if err != nil {
		if counted != nil {
			e.logg.Error(e.logg.WithFacet(ctx, string(facet)), "facet fetch failed", err)
		}
		return &FacetError{Facet: facet, Err: err}
	}
	return nil
}

// collect walks every page of a list endpoint with the engine's page size.
func collect[T any](
	ctx context.Context,
	opts Options,
	list func(context.Context, records.Query) (records.Page[T], error),
	base records.Query,
) ([]T, error) {
	return pagination.Collect(ctx, opts.PageSize, opts.MaxPages, func(ctx context.Context, p pagination.Params) ([]T, int, error) {
		q := base
		q.Limit = p.Limit
		q.Page = p.Page
		page, err := list(ctx, q)
		if err != nil {
			return nil, 0, err
		}
		return page.Results, page.Count, nil
	})
}

// fetchError maps a pipeline failure onto the public error taxonomy, keeping
// auth and timeout codes reported by the fetcher.
func fetchError(err error) error {
	code := pkgerrors.CodeDependency
	switch pkgerrors.CodeOf(err) {
	case pkgerrors.CodeUnauthorized, pkgerrors.CodeForbidden, pkgerrors.CodeTimeout:
		code = pkgerrors.CodeOf(err)
	default:
		if errors.Is(err, context.DeadlineExceeded) {
			code = pkgerrors.CodeTimeout
		}
	}

	details := map[string]any{}
	if facet, ok := FailedFacet(err); ok {
		details["facet"] = facet
	}
	if inner := pkgerrors.As(err); inner != nil {
		if d, ok := inner.Details().(map[string]any); ok && d["truncated"] == true {
			details["truncated"] = true
		}
	}
	return pkgerrors.Wrap(code, err, "dashboard fetch failed").WithDetails(details)
}
