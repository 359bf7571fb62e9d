// backend-go/internal/domain/models.go
package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// DemandPoint is one daily aggregation bucket of units sold for a product.
type DemandPoint struct {
	Date     time.Time `json:"date" db:"date"`
	Quantity float64   `json:"quantity" db:"quantity"`
}

// DemandSeries is a gap-free daily demand series over [Start, End].
// Dates are strictly increasing and consecutive; days without sales carry
// quantity 0.
type DemandSeries struct {
	TenantID   string        `json:"tenant_id"`
	ProductID  string        `json:"product_id"`
	LocationID string        `json:"location_id,omitempty"`
	Start      time.Time     `json:"start"`
	End        time.Time     `json:"end"`
	Points     []DemandPoint `json:"points"`
	SaleDays   int           `json:"sale_days"`
}

// Quantities returns the quantity column of the series.
func (s DemandSeries) Quantities() []float64 {
	out := make([]float64, len(s.Points))
	for i, p := range s.Points {
		out[i] = p.Quantity
	}
	return out
}

// SeasonalityProfile describes a detected seasonal pattern. Indices are
// multiplicative factors whose mean over one period is 1.0.
type SeasonalityProfile struct {
	IsSeasonal bool      `json:"is_seasonal"`
	Period     int       `json:"period"`
	Indices    []float64 `json:"indices"`
	Strength   float64   `json:"strength"`
}

// ForecastMethod identifies one forecasting algorithm.
type ForecastMethod string

const (
	MethodMovingAvg    ForecastMethod = "MOVING_AVG"
	MethodExpSmoothing ForecastMethod = "EXP_SMOOTHING"
	MethodSeasonal     ForecastMethod = "SEASONAL"
	MethodLinearTrend  ForecastMethod = "LINEAR_TREND"
)

// ForecastResult holds one method's forecast over a horizon.
type ForecastResult struct {
	ProductID     string         `json:"product_id"`
	Method        ForecastMethod `json:"method"`
	HorizonPoints []float64      `json:"horizon_points"`
	MAPE          float64        `json:"mape"`
	Selected      bool           `json:"selected"`
	GeneratedAt   time.Time      `json:"generated_at"`
}

// PastForecast is a previously persisted forecast awaiting accuracy
// evaluation once its period has elapsed.
type PastForecast struct {
	ProductID     string         `json:"product_id" db:"product_id"`
	Method        ForecastMethod `json:"method" db:"method"`
	ForecastedQty float64        `json:"forecasted_qty" db:"forecasted_qty"`
	PeriodDate    time.Time      `json:"period_date" db:"period_date"`
}

// AccuracyRecord is the realized error of one past forecast period.
type AccuracyRecord struct {
	TenantID      string         `json:"tenant_id" db:"tenant_id"`
	ProductID     string         `json:"product_id" db:"product_id"`
	Method        ForecastMethod `json:"method" db:"method"`
	ForecastedQty float64        `json:"forecasted_qty" db:"forecasted_qty"`
	ActualQty     float64        `json:"actual_qty" db:"actual_qty"`
	PeriodDate    time.Time      `json:"period_date" db:"period_date"`
	AbsError      float64        `json:"abs_error" db:"abs_error"`
	PctError      float64        `json:"pct_error" db:"pct_error"`
}

// EvaluationSummary reports the outcome of one accuracy-evaluation batch.
type EvaluationSummary struct {
	Evaluated        int                        `json:"evaluated"`
	Failed           int                        `json:"failed"`
	FailedProducts   []string                   `json:"failed_products,omitempty"`
	AccuracyByMethod map[ForecastMethod]float64 `json:"accuracy_by_method"`
}

// BullwhipIndexUndefined is reported when demand variance is zero while
// order variance is not: the amplification ratio has no finite value, and
// the sentinel keeps JSON payloads finite and sortable.
const BullwhipIndexUndefined = 999.0

// BullwhipMetric compares replenishment-order variance against customer
// demand variance for one product.
type BullwhipMetric struct {
	ProductID      string  `json:"product_id"`
	DemandVariance float64 `json:"demand_variance"`
	OrderVariance  float64 `json:"order_variance"`
	BullwhipIndex  float64 `json:"bullwhip_index"`
	LookbackDays   int     `json:"lookback_days"`
}

// BullwhipDashboard is the paginated bullwhip report plus summary stats.
type BullwhipDashboard struct {
	Metrics        []BullwhipMetric `json:"metrics"`
	Total          int              `json:"total"`
	Page           int              `json:"page"`
	PageSize       int              `json:"page_size"`
	MeanIndex      float64          `json:"mean_index"`
	AmplifiedCount int              `json:"amplified_count"`
	SkippedCount   int              `json:"skipped_count"`
}

// EchelonNode is one location in the tenant's distribution hierarchy.
// ParentLocationID is empty for the root node.
type EchelonNode struct {
	LocationID       string  `json:"location_id" db:"location_id"`
	ParentLocationID string  `json:"parent_location_id,omitempty" db:"parent_location_id"`
	LeadTimeDays     float64 `json:"lead_time_days" db:"lead_time_days"`
	ServiceLevel     float64 `json:"service_level" db:"service_level"`
}

// SafetyStockRecommendation is the derived replenishment parameters for one
// (location, product) pair.
type SafetyStockRecommendation struct {
	TenantID            string          `json:"tenant_id"`
	LocationID          string          `json:"location_id"`
	ProductID           string          `json:"product_id"`
	MeanDailyDemand     float64         `json:"mean_daily_demand"`
	DemandStdDev        float64         `json:"demand_std_dev"`
	SafetyStock         float64         `json:"safety_stock"`
	ReorderPoint        float64         `json:"reorder_point"`
	RecommendedOrderQty float64         `json:"recommended_order_qty"`
	OrderValue          decimal.Decimal `json:"order_value"`
	GeneratedAt         time.Time       `json:"generated_at"`
}

// EchelonDashboard bundles the hierarchy with per-node recommendations.
type EchelonDashboard struct {
	Nodes           []EchelonNode               `json:"nodes"`
	Recommendations []SafetyStockRecommendation `json:"recommendations"`
	FailedProducts  []string                    `json:"failed_products,omitempty"`
	ServiceLevel    float64                     `json:"service_level"`
	LookbackDays    int                         `json:"lookback_days"`
}

// AlertSeverity classifies how badly a node breaches its stock floor.
type AlertSeverity string

const (
	SeverityWarning  AlertSeverity = "warning"  // below reorder point
	SeverityCritical AlertSeverity = "critical" // below safety stock
)

// StockAlert flags a location whose on-hand stock breaches its floor.
type StockAlert struct {
	LocationID   string        `json:"location_id"`
	ProductID    string        `json:"product_id"`
	OnHand       float64       `json:"on_hand"`
	SafetyStock  float64       `json:"safety_stock"`
	ReorderPoint float64       `json:"reorder_point"`
	Severity     AlertSeverity `json:"severity"`
}

// ReportFilter carries the common query parameters of the report endpoints.
type ReportFilter struct {
	LookbackDays int     `json:"lookback_days"`
	ServiceLevel float64 `json:"service_level"`
	Page         int     `json:"page"`
	PageSize     int     `json:"page_size"`
	Limit        int     `json:"limit"`
}
