package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/trude-tech/trude-carwash/internal/core"
	"github.com/trude-tech/trude-carwash/internal/ledger"
)

// ReportKind selects which report surface is being built.
type ReportKind string

const (
	ReportCarWash ReportKind = "carwash"
	ReportDrinks  ReportKind = "drinks"
	ReportOverall ReportKind = "overall"
)

// KPITile is one formatted metric for the dashboard or a report header.
type KPITile struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// ChartPoint is one category slice in a bar or pie series.
type ChartPoint struct {
	Label  string          `json:"label"`
	Amount decimal.Decimal `json:"amount"`
}

// DashboardData is everything the dashboard page renders for one filter:
// KPI tiles, chart series, the daily trend and the raw record table.
type DashboardData struct {
	Tiles          []KPITile             `json:"tiles"`
	Summary        ledger.Summary        `json:"summary"`
	DailyTrend     []ledger.TrendPoint   `json:"daily_trend"`
	PaymentMethods []ChartPoint          `json:"payment_methods"`
	Sources        []ChartPoint          `json:"sources"`
	Records        []core.NormalizedSale `json:"records"`
}

// SalesReport is a materialized report ready for rendering or export.
// Columns and Rows carry the tabular dump; Tiles the formatted metrics;
// Weekly the trend series the report page charts.
type SalesReport struct {
	Title       string              `json:"title"`
	DateLabel   string              `json:"date_label"`
	GeneratedAt time.Time           `json:"generated_at"`
	Tiles       []KPITile           `json:"tiles"`
	Summary     ledger.Summary      `json:"summary"`
	Columns     []string            `json:"columns"`
	Rows        [][]string          `json:"rows"`
	Weekly      []ledger.TrendPoint `json:"weekly"`
}

// ReportService builds dashboard summaries and exportable reports. All three
// surfaces (dashboard, per-source reports, overall report) go through the
// same ledger contract, so a filter behaves identically everywhere.
type ReportService struct {
	carWashRepo  core.CarWashSaleRepository
	drinkRepo    core.DrinkSaleRepository
	cache        core.SummaryCache
	businessName string
}

// NewReportService creates a new report service
func NewReportService(
	carWashRepo core.CarWashSaleRepository,
	drinkRepo core.DrinkSaleRepository,
	cache core.SummaryCache,
	businessName string,
) *ReportService {
	return &ReportService{
		carWashRepo:  carWashRepo,
		drinkRepo:    drinkRepo,
		cache:        cache,
		businessName: businessName,
	}
}

// loadNormalized fetches both ledgers for the filter's date window and runs
// them through normalize + filter.
func (s *ReportService) loadNormalized(ctx context.Context, spec ledger.FilterSpec) ([]core.NormalizedSale, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}

	var carWash []*core.CarWashSale
	if spec.Source == "" || spec.Source == ledger.All || spec.Source == string(core.SourceCarWash) {
		var err error
		carWash, err = s.carWashRepo.ListByDateRange(ctx, spec.StartDate, spec.EndDate)
		if err != nil {
			return nil, err
		}
	}

	var drinks []*core.DrinkSale
	if spec.Source == "" || spec.Source == ledger.All || spec.Source == string(core.SourceDrink) {
		var err error
		drinks, err = s.drinkRepo.ListByDateRange(ctx, spec.StartDate, spec.EndDate)
		if err != nil {
			return nil, err
		}
	}

	return ledger.Filter(ledger.Normalize(carWash, drinks), spec)
}

// Dashboard builds the full dashboard payload for a filter. Results are
// cached briefly; any write to either ledger invalidates the cache.
func (s *ReportService) Dashboard(ctx context.Context, spec ledger.FilterSpec) (*DashboardData, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}

	cacheKey := dashboardCacheKey(spec)
	if s.cache != nil {
		if payload, ok := s.cache.Get(ctx, cacheKey); ok {
			var cached DashboardData
			if err := json.Unmarshal(payload, &cached); err == nil {
				return &cached, nil
			}
		}
	}

	sales, err := s.loadNormalized(ctx, spec)
	if err != nil {
		return nil, err
	}

	summary := ledger.Aggregate(sales)

	// Per-source unpaid splits for the dashboard tiles.
	carWashOnly, err := ledger.Filter(sales, ledger.FilterSpec{Source: string(core.SourceCarWash)})
	if err != nil {
		return nil, err
	}
	drinksOnly, err := ledger.Filter(sales, ledger.FilterSpec{Source: string(core.SourceDrink)})
	if err != nil {
		return nil, err
	}
	carWashSummary := ledger.Aggregate(carWashOnly)
	drinksSummary := ledger.Aggregate(drinksOnly)

	trend, err := ledger.BucketByPeriod(sales, ledger.ByDay)
	if err != nil {
		return nil, err
	}

	records := make([]core.NormalizedSale, len(sales))
	copy(records, sales)
	ledger.SortNewestFirst(records)

	data := &DashboardData{
		Tiles: []KPITile{
			{Label: "Total Revenue", Value: FormatKES(summary.TotalRevenue)},
			{Label: "Car Wash Revenue", Value: FormatKES(summary.BySource[core.SourceCarWash])},
			{Label: "Drinks Revenue", Value: FormatKES(summary.BySource[core.SourceDrink])},
			{Label: "Payout (30% Car Wash)", Value: FormatKES(summary.Payout)},
			{Label: "Unpaid Car Wash", Value: FormatKES(carWashSummary.UnpaidTotal)},
			{Label: "Unpaid Drinks", Value: FormatKES(drinksSummary.UnpaidTotal)},
		},
		Summary:        summary,
		DailyTrend:     trend,
		PaymentMethods: chartSeries(ledger.SumByCategory(sales, func(s core.NormalizedSale) string { return s.PaymentMethod })),
		Sources:        chartSeries(ledger.SumByCategory(sales, func(s core.NormalizedSale) string { return string(s.Source) })),
		Records:        records,
	}

	if s.cache != nil {
		if payload, err := json.Marshal(data); err == nil {
			_ = s.cache.Set(ctx, cacheKey, payload)
		}
	}

	return data, nil
}

// Trend builds a revenue trend series at the requested granularity.
func (s *ReportService) Trend(ctx context.Context, spec ledger.FilterSpec, granularity ledger.Granularity) ([]ledger.TrendPoint, error) {
	sales, err := s.loadNormalized(ctx, spec)
	if err != nil {
		return nil, err
	}
	return ledger.BucketByPeriod(sales, granularity)
}

// BuildReport materializes one of the three report surfaces for a filter.
func (s *ReportService) BuildReport(ctx context.Context, kind ReportKind, spec ledger.FilterSpec) (*SalesReport, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}

	switch kind {
	case ReportCarWash:
		return s.buildCarWashReport(ctx, spec)
	case ReportDrinks:
		return s.buildDrinksReport(ctx, spec)
	case ReportOverall:
		return s.buildOverallReport(ctx, spec)
	default:
		return nil, fmt.Errorf("%w: unknown report kind %q", core.ErrInvalidInput, kind)
	}
}

func (s *ReportService) buildCarWashReport(ctx context.Context, spec ledger.FilterSpec) (*SalesReport, error) {
	spec.Source = string(core.SourceCarWash)
	sales, err := s.listCarWash(ctx, spec)
	if err != nil {
		return nil, err
	}

	normalized, err := ledger.Filter(ledger.Normalize(sales, nil), spec)
	if err != nil {
		return nil, err
	}
	summary := ledger.Aggregate(normalized)
	weekly, err := ledger.BucketByPeriod(normalized, ledger.ByWeek)
	if err != nil {
		return nil, err
	}

	rows := make([][]string, len(sales))
	for i, sale := range sales {
		rows[i] = []string{
			sale.Date.Format(core.DateLayout),
			sale.CarType,
			sale.PlateNumber,
			sale.ServiceType,
			formatAmount(sale.Price),
			sale.PaymentMethod,
			string(sale.PaymentStatus),
		}
	}

	return &SalesReport{
		Title:       s.businessName + " - Car Wash Report",
		DateLabel:   dateLabel(spec),
		GeneratedAt: time.Now(),
		Tiles: []KPITile{
			{Label: "Total Sales", Value: FormatKES(summary.TotalRevenue)},
			{Label: "Paid", Value: FormatKES(summary.PaidTotal)},
			{Label: "Unpaid", Value: FormatKES(summary.UnpaidTotal)},
			{Label: "Payout (30%)", Value: FormatKES(summary.Payout)},
		},
		Summary: summary,
		Columns: []string{"Date", "Car Type", "Plate Number", "Service Type", "Price", "Payment Method", "Payment Status"},
		Rows:    rows,
		Weekly:  weekly,
	}, nil
}

func (s *ReportService) buildDrinksReport(ctx context.Context, spec ledger.FilterSpec) (*SalesReport, error) {
	spec.Source = string(core.SourceDrink)
	sales, err := s.listDrinks(ctx, spec)
	if err != nil {
		return nil, err
	}

	normalized, err := ledger.Filter(ledger.Normalize(nil, sales), spec)
	if err != nil {
		return nil, err
	}
	summary := ledger.Aggregate(normalized)
	weekly, err := ledger.BucketByPeriod(normalized, ledger.ByWeek)
	if err != nil {
		return nil, err
	}

	rows := make([][]string, len(sales))
	for i, sale := range sales {
		rows[i] = []string{
			sale.Date.Format(core.DateLayout),
			sale.DrinkName,
			strconv.Itoa(sale.Quantity),
			formatAmount(sale.UnitPrice),
			formatAmount(sale.Total),
			sale.PaymentMethod,
			string(sale.PaymentStatus),
		}
	}

	return &SalesReport{
		Title:       s.businessName + " - Drinks Report",
		DateLabel:   dateLabel(spec),
		GeneratedAt: time.Now(),
		Tiles: []KPITile{
			{Label: "Total Sales", Value: FormatKES(summary.TotalRevenue)},
			{Label: "Paid", Value: FormatKES(summary.PaidTotal)},
			{Label: "Unpaid", Value: FormatKES(summary.UnpaidTotal)},
		},
		Summary: summary,
		Columns: []string{"Date", "Drink", "Quantity", "Unit Price", "Total", "Payment Method", "Payment Status"},
		Rows:    rows,
		Weekly:  weekly,
	}, nil
}

func (s *ReportService) buildOverallReport(ctx context.Context, spec ledger.FilterSpec) (*SalesReport, error) {
	carWash, err := s.listCarWash(ctx, spec)
	if err != nil {
		return nil, err
	}
	drinks, err := s.listDrinks(ctx, spec)
	if err != nil {
		return nil, err
	}

	normalized, err := ledger.Filter(ledger.Normalize(carWash, drinks), spec)
	if err != nil {
		return nil, err
	}
	summary := ledger.Aggregate(normalized)
	weekly, err := ledger.BucketByPeriod(normalized, ledger.ByWeek)
	if err != nil {
		return nil, err
	}

	type overallRow struct {
		date time.Time
		row  []string
	}
	combined := make([]overallRow, 0, len(carWash)+len(drinks))
	for _, sale := range carWash {
		combined = append(combined, overallRow{sale.Date, []string{
			sale.Date.Format(core.DateLayout),
			string(core.SourceCarWash),
			sale.CarType + " " + sale.PlateNumber,
			formatAmount(sale.Price),
			sale.PaymentMethod,
			string(sale.PaymentStatus),
		}})
	}
	for _, sale := range drinks {
		combined = append(combined, overallRow{sale.Date, []string{
			sale.Date.Format(core.DateLayout),
			string(core.SourceDrink),
			fmt.Sprintf("%dx %s", sale.Quantity, sale.DrinkName),
			formatAmount(sale.Total),
			sale.PaymentMethod,
			string(sale.PaymentStatus),
		}})
	}
	// Tabular listings are newest-first.
	sort.SliceStable(combined, func(i, j int) bool {
		return combined[i].date.After(combined[j].date)
	})
	rows := make([][]string, len(combined))
	for i := range combined {
		rows[i] = combined[i].row
	}

	return &SalesReport{
		Title:       s.businessName + " - Overall Report",
		DateLabel:   dateLabel(spec),
		GeneratedAt: time.Now(),
		Tiles: []KPITile{
			{Label: "Total Sales", Value: FormatKES(summary.TotalRevenue)},
			{Label: "Paid", Value: FormatKES(summary.PaidTotal)},
			{Label: "Unpaid", Value: FormatKES(summary.UnpaidTotal)},
			{Label: "Car Wash Payout (30%)", Value: FormatKES(summary.Payout)},
		},
		Summary: summary,
		Columns: []string{"Date", "Source", "Item", "Amount", "Payment Method", "Payment Status"},
		Rows:    rows,
		Weekly:  weekly,
	}, nil
}

// listCarWash applies the non-date constraints in memory after the
// date-scoped fetch, keeping filter semantics identical to the ledger's.
func (s *ReportService) listCarWash(ctx context.Context, spec ledger.FilterSpec) ([]*core.CarWashSale, error) {
	sales, err := s.carWashRepo.ListByDateRange(ctx, spec.StartDate, spec.EndDate)
	if err != nil {
		return nil, err
	}
	out := make([]*core.CarWashSale, 0, len(sales))
	for _, sale := range sales {
		if spec.PaymentMethod != "" && spec.PaymentMethod != ledger.All && sale.PaymentMethod != spec.PaymentMethod {
			continue
		}
		if spec.PaymentStatus != "" && spec.PaymentStatus != ledger.All &&
			!core.StatusEquals(sale.PaymentStatus, core.PaymentStatus(spec.PaymentStatus)) {
			continue
		}
		out = append(out, sale)
	}
	return out, nil
}

func (s *ReportService) listDrinks(ctx context.Context, spec ledger.FilterSpec) ([]*core.DrinkSale, error) {
	sales, err := s.drinkRepo.ListByDateRange(ctx, spec.StartDate, spec.EndDate)
	if err != nil {
		return nil, err
	}
	out := make([]*core.DrinkSale, 0, len(sales))
	for _, sale := range sales {
		if spec.PaymentMethod != "" && spec.PaymentMethod != ledger.All && sale.PaymentMethod != spec.PaymentMethod {
			continue
		}
		if spec.PaymentStatus != "" && spec.PaymentStatus != ledger.All &&
			!core.StatusEquals(sale.PaymentStatus, core.PaymentStatus(spec.PaymentStatus)) {
			continue
		}
		out = append(out, sale)
	}
	return out, nil
}

func chartSeries(byCategory map[string]decimal.Decimal) []ChartPoint {
	out := make([]ChartPoint, 0, len(byCategory))
	for label, amount := range byCategory {
		out = append(out, ChartPoint{Label: label, Amount: amount})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Label < out[j].Label })
	return out
}

func dateLabel(spec ledger.FilterSpec) string {
	switch {
	case spec.StartDate.IsZero() && spec.EndDate.IsZero():
		return "All time"
	case spec.StartDate.IsZero():
		return "Up to " + spec.EndDate.Format(core.DateLayout)
	case spec.EndDate.IsZero():
		return "From " + spec.StartDate.Format(core.DateLayout)
	case spec.StartDate.Equal(spec.EndDate):
		return spec.StartDate.Format(core.DateLayout)
	default:
		return spec.StartDate.Format(core.DateLayout) + " to " + spec.EndDate.Format(core.DateLayout)
	}
}

func dashboardCacheKey(spec ledger.FilterSpec) string {
	return fmt.Sprintf("dashboard:%s:%s:%s:%s:%s",
		spec.Source, spec.PaymentMethod, spec.PaymentStatus,
		spec.StartDate.Format(core.DateLayout), spec.EndDate.Format(core.DateLayout))
}
