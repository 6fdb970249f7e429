package services

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"fintrack/internal/core"
	"fintrack/internal/period"
	"fintrack/internal/report"
	"fintrack/internal/store"
)

// ReportResult is a fully evaluated report for one period: aggregates for
// the current and previous windows, the derived insights, and navigation
// hints for the period controls.
type ReportResult struct {
	Spec               period.Spec      `json:"-"`
	Current            report.Report    `json:"report"`
	Previous           *report.Report   `json:"-"`
	Insights           []report.Insight `json:"insights"`
	CanNavigateForward bool             `json:"canNavigateForward"`
}

// ReportService builds period reports from the transaction store.
type ReportService struct {
	source store.TransactionSource
	now    func() time.Time
}

func NewReportService(source store.TransactionSource) *ReportService {
	return &ReportService{source: source, now: time.Now}
}

// Generate resolves the requested period, aggregates the owner's
// transactions over the current and previous windows, and derives insights.
func (s *ReportService) Generate(ctx context.Context, ownerID string, spec period.Spec) (ReportResult, error) {
	today := s.today()

	window, err := period.Resolve(spec, today)
	if err != nil {
		return ReportResult{}, err
	}

	// One fetch covers both windows; aggregation filters per interval.
	txs, err := s.source.ListByOwner(ctx, ownerID)
	if err != nil {
		return ReportResult{}, fmt.Errorf("list transactions: %w", err)
	}

	var current, previous report.Report
	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error {
		current = report.Aggregate(txs, window.Current)
		return nil
	})
	g.Go(func() error {
		previous = report.Aggregate(txs, window.Previous)
		return nil
	})
	if err := g.Wait(); err != nil {
		return ReportResult{}, err
	}

	result := ReportResult{
		Spec:               spec,
		Current:            current,
		Previous:           &previous,
		Insights:           report.DeriveInsights(current, &previous),
		CanNavigateForward: period.CanNavigateForward(spec, today),
	}
	return result, nil
}

func (s *ReportService) today() core.Date {
	t := s.now().UTC()
	return core.NewDate(t.Year(), int(t.Month()), t.Day())
}
