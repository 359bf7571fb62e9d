// backend-go/internal/analytics/lotsize.go
package analytics

import (
	"math"

	"github.com/shopspring/decimal"
)

// LotSizeRule decides the replenishment order quantity for a location given
// its mean daily demand. The optimizer is parameterized over this so the
// quantity policy is never hard-coded.
type LotSizeRule interface {
	Name() string
	OrderQty(meanDailyDemand float64) float64
}

// EOQRule is the classic economic order quantity: sqrt(2DK/h) with D the
// annualized demand, K the fixed ordering cost and h the yearly holding
// cost per unit.
type EOQRule struct {
	OrderingCost       decimal.Decimal
	HoldingCostPerYear decimal.Decimal
}

func (r EOQRule) Name() string { return "eoq" }

func (r EOQRule) OrderQty(meanDailyDemand float64) float64 {
	if meanDailyDemand <= 0 {
		return 0
	}
	holding, _ := r.HoldingCostPerYear.Float64()
	ordering, _ := r.OrderingCost.Float64()
	if holding <= 0 || ordering <= 0 {
		return 0
	}
	annualDemand := meanDailyDemand * 365
	return math.Ceil(math.Sqrt(2 * annualDemand * ordering / holding))
}

// FixedLotRule always orders in multiples of a fixed lot, at least one lot
// whenever there is any demand.
type FixedLotRule struct {
	LotSize float64
}

func (r FixedLotRule) Name() string { return "fixed_lot" }

func (r FixedLotRule) OrderQty(meanDailyDemand float64) float64 {
	if meanDailyDemand <= 0 || r.LotSize <= 0 {
		return 0
	}
	return r.LotSize
}
