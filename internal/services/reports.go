package services

import (
	"context"
	"time"

	"github.com/Emma781227/Ble-dor/gate"
	"github.com/Emma781227/Ble-dor/internal/models"
	"github.com/Emma781227/Ble-dor/internal/policy"
	"github.com/Emma781227/Ble-dor/internal/reports"
)

const dashboardTopProducts = 5

type ReportStore interface {
	StatusBreakdown(ctx context.Context, from, to time.Time) ([]reports.StatusRow, error)
	TopProducts(ctx context.Context, from, to time.Time, limit int) ([]reports.ProductRow, error)
	ProductSummary(ctx context.Context) (reports.ProductSummary, error)
}

type Dashboard struct {
	Period      reports.Period         `json:"period"`
	Summary     reports.Summary        `json:"summary"`
	TopProducts []reports.ProductRow   `json:"top_products"`
	Products    reports.ProductSummary `json:"products"`
}

// ReportService serves the owner dashboard.
type ReportService struct {
	store ReportStore
	gate  Authorizer
}

func NewReportService(store ReportStore) *ReportService {
	return &ReportService{store: store, gate: policy.NewActorGate()}
}

func (s *ReportService) Dashboard(ctx context.Context, actor models.Actor, period reports.Period) (*Dashboard, error) {
	if err := authzErr(s.gate.Authorize(ctx, actor, gate.ActionView, policy.ResourceReport, nil)); err != nil {
		return nil, err
	}
	rows, err := s.store.StatusBreakdown(ctx, period.From, period.To)
	if err != nil {
		return nil, storageErr("status breakdown", err)
	}
	top, err := s.store.TopProducts(ctx, period.From, period.To, dashboardTopProducts)
	if err != nil {
		return nil, storageErr("top products", err)
	}
	products, err := s.store.ProductSummary(ctx)
	if err != nil {
		return nil, storageErr("product summary", err)
	}
	if top == nil {
		top = []reports.ProductRow{}
	}
	return &Dashboard{
		Period:      period,
		Summary:     reports.Summarize(rows),
		TopProducts: top,
		Products:    products,
	}, nil
}
