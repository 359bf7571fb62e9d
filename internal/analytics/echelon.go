// backend-go/internal/analytics/echelon.go
package analytics

import (
	"context"
	"errors"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/demandloop/backend-go/internal/domain"
	"github.com/demandloop/backend-go/internal/repository"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// DefaultServiceLevel is used when neither the request nor the node
// configuration specifies one.
const DefaultServiceLevel = 0.95

// MultiEchelonOptimizer propagates demand and safety-stock requirements
// bottom-up through a tenant's location hierarchy.
type MultiEchelonOptimizer struct {
	aggregator  *TimeSeriesAggregator
	demand      repository.DemandReader
	hierarchy   repository.HierarchyReader
	sink        repository.SuggestionSink
	rule        LotSizeRule
	unitCost    decimal.Decimal
	concurrency int
	now         func() time.Time
}

func NewMultiEchelonOptimizer(aggregator *TimeSeriesAggregator, demand repository.DemandReader, hierarchy repository.HierarchyReader, sink repository.SuggestionSink, rule LotSizeRule, unitCost decimal.Decimal, concurrency int) *MultiEchelonOptimizer {
	if rule == nil {
		rule = FixedLotRule{LotSize: 1}
	}
	if concurrency < 1 {
		concurrency = DefaultEvalConcurrency
	}
	return &MultiEchelonOptimizer{
		aggregator:  aggregator,
		demand:      demand,
		hierarchy:   hierarchy,
		sink:        sink,
		rule:        rule,
		unitCost:    unitCost,
		concurrency: concurrency,
		now:         time.Now,
	}
}

// echelonStat is the per-node aggregate carried up the tree.
type echelonStat struct {
	mean     float64
	variance float64
}

// Dashboard computes safety-stock recommendations for every
// (location, product) pair of the tenant. serviceLevel overrides each
// node's configured target when positive. Per-product failures are
// isolated and reported, not fatal; an invalid hierarchy is fatal for the
// whole computation.
func (o *MultiEchelonOptimizer) Dashboard(ctx context.Context, auth domain.AuthContext, lookbackDays int, serviceLevel float64) (domain.EchelonDashboard, error) {
	if lookbackDays < 1 {
		lookbackDays = 30
	}

	nodes, err := o.hierarchy.LocationHierarchy(ctx, auth.TenantID)
	if err != nil {
		return domain.EchelonDashboard{}, &domain.UpstreamDataError{Op: "hierarchy fetch", Err: err}
	}

	tree, err := buildEchelonTree(auth.TenantID, nodes)
	if err != nil {
		return domain.EchelonDashboard{}, err
	}

	since := truncateDay(o.now()).AddDate(0, 0, -lookbackDays)
	products, err := o.demand.ProductsWithDemand(ctx, auth.TenantID, since)
	if err != nil {
		return domain.EchelonDashboard{}, &domain.UpstreamDataError{Op: "product listing", Err: err}
	}

	var (
		mu     sync.Mutex
		recs   []domain.SafetyStockRecommendation
		failed []string
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.concurrency)

	for _, productID := range products {
		g.Go(func() error {
			productRecs, perr := o.optimizeProduct(gctx, auth, tree, productID, lookbackDays, serviceLevel)

			mu.Lock()
			defer mu.Unlock()
			if perr != nil {
				log.Warn().Err(perr).Str("product_id", productID).Msg("echelon: product skipped")
				failed = append(failed, productID)
				return nil
			}
			recs = append(recs, productRecs...)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return domain.EchelonDashboard{}, err
	}

	sort.Slice(recs, func(i, j int) bool {
		if recs[i].ProductID != recs[j].ProductID {
			return recs[i].ProductID < recs[j].ProductID
		}
		return recs[i].LocationID < recs[j].LocationID
	})
	sort.Strings(failed)

	return domain.EchelonDashboard{
		Nodes:           nodes,
		Recommendations: recs,
		FailedProducts:  failed,
		ServiceLevel:    serviceLevel,
		LookbackDays:    lookbackDays,
	}, nil
}

// Alerts flags locations whose on-hand stock sits below the computed floor.
func (o *MultiEchelonOptimizer) Alerts(ctx context.Context, auth domain.AuthContext) ([]domain.StockAlert, error) {
	dashboard, err := o.Dashboard(ctx, auth, 30, 0)
	if err != nil {
		return nil, err
	}

	alerts := make([]domain.StockAlert, 0)
	for _, rec := range dashboard.Recommendations {
		onHand, err := o.hierarchy.OnHandStock(ctx, auth.TenantID, rec.LocationID, rec.ProductID)
		if err != nil {
			log.Warn().Err(err).Str("location_id", rec.LocationID).Str("product_id", rec.ProductID).
				Msg("echelon: on-hand lookup failed, alert skipped")
			continue
		}
		if onHand >= rec.ReorderPoint {
			continue
		}
		severity := domain.SeverityWarning
		if onHand < rec.SafetyStock {
			severity = domain.SeverityCritical
		}
		alerts = append(alerts, domain.StockAlert{
			LocationID:   rec.LocationID,
			ProductID:    rec.ProductID,
			OnHand:       onHand,
			SafetyStock:  rec.SafetyStock,
			ReorderPoint: rec.ReorderPoint,
			Severity:     severity,
		})
	}
	return alerts, nil
}

func (o *MultiEchelonOptimizer) optimizeProduct(ctx context.Context, auth domain.AuthContext, tree *echelonTree, productID string, lookbackDays int, serviceLevel float64) ([]domain.SafetyStockRecommendation, error) {
	stats := make(map[string]echelonStat, len(tree.nodes))
	recs := make([]domain.SafetyStockRecommendation, 0, len(tree.nodes))
	generatedAt := o.now()

	// Post-order walk: children before parents, so a node only ever reads
	// already-computed child stats.
	var walk func(locationID string) error
	walk = func(locationID string) error {
		node := tree.nodes[locationID]

		agg := echelonStat{}
		for _, childID := range tree.children[locationID] {
			if err := walk(childID); err != nil {
				return err
			}
			child := stats[childID]
			// Independent child demands: means and variances both add.
			agg.mean += child.mean
			agg.variance += child.variance
		}

		local, err := o.localStat(ctx, auth, productID, lookbackDays, locationID)
		if err != nil {
			return err
		}
		agg.mean += local.mean
		agg.variance += local.variance
		stats[locationID] = agg

		sl := serviceLevel
		if sl <= 0 {
			sl = node.ServiceLevel
		}
		if sl <= 0 {
			sl = DefaultServiceLevel
		}

		leadTime := node.LeadTimeDays
		if leadTime < 0 {
			leadTime = 0
		}

		// Square-root-of-time scaling of daily volatility over lead time.
		safetyStock := NormalQuantile(sl) * math.Sqrt(agg.variance) * math.Sqrt(leadTime)
		reorderPoint := agg.mean*leadTime + safetyStock
		orderQty := o.rule.OrderQty(agg.mean)

		if math.IsNaN(safetyStock) || math.IsInf(safetyStock, 0) {
			return &domain.ComputationError{ProductID: productID, Err: errors.New("non-finite safety stock")}
		}

		rec := domain.SafetyStockRecommendation{
			TenantID:            auth.TenantID,
			LocationID:          locationID,
			ProductID:           productID,
			MeanDailyDemand:     agg.mean,
			DemandStdDev:        math.Sqrt(agg.variance),
			SafetyStock:         safetyStock,
			ReorderPoint:        reorderPoint,
			RecommendedOrderQty: orderQty,
			OrderValue:          o.unitCost.Mul(decimal.NewFromFloat(orderQty)),
			GeneratedAt:         generatedAt,
		}
		recs = append(recs, rec)

		if o.sink != nil {
			if err := o.sink.SaveSuggestion(ctx, rec); err != nil {
				log.Warn().Err(err).Str("location_id", locationID).Str("product_id", productID).
					Msg("echelon: suggestion write-back failed")
			}
		}
		return nil
	}

	if err := walk(tree.rootID); err != nil {
		return nil, err
	}
	return recs, nil
}

// localStat computes a location's own customer-facing demand statistics.
// Locations with no local sales (pure distribution nodes) contribute zero.
func (o *MultiEchelonOptimizer) localStat(ctx context.Context, auth domain.AuthContext, productID string, lookbackDays int, locationID string) (echelonStat, error) {
	series, err := o.aggregator.BuildSeries(ctx, auth, productID, lookbackDays, locationID)
	if err != nil {
		if errors.Is(err, domain.ErrInsufficientData) {
			return echelonStat{}, nil
		}
		return echelonStat{}, err
	}
	values := series.Quantities()
	return echelonStat{mean: Mean(values), variance: Variance(values)}, nil
}

type echelonTree struct {
	rootID   string
	nodes    map[string]domain.EchelonNode
	children map[string][]string
}

// buildEchelonTree validates the hierarchy configuration: every parent must
// exist, exactly one root, no cycles. Cycle detection walks each node's
// parent chain with a visited set so a malformed tree can never loop
// forever.
func buildEchelonTree(tenantID string, nodes []domain.EchelonNode) (*echelonTree, error) {
	if len(nodes) == 0 {
		return nil, &domain.InvalidHierarchyError{TenantID: tenantID, Reason: "no locations configured"}
	}

	byID := make(map[string]domain.EchelonNode, len(nodes))
	for _, n := range nodes {
		if _, dup := byID[n.LocationID]; dup {
			return nil, &domain.InvalidHierarchyError{TenantID: tenantID, Reason: "duplicate location " + n.LocationID}
		}
		byID[n.LocationID] = n
	}

	children := make(map[string][]string, len(nodes))
	rootID := ""
	for _, n := range nodes {
		if n.ParentLocationID == "" {
			if rootID != "" {
				return nil, &domain.InvalidHierarchyError{TenantID: tenantID, Reason: "multiple roots: " + rootID + ", " + n.LocationID}
			}
			rootID = n.LocationID
			continue
		}
		if _, ok := byID[n.ParentLocationID]; !ok {
			return nil, &domain.InvalidHierarchyError{TenantID: tenantID, Reason: "location " + n.LocationID + " references missing parent " + n.ParentLocationID}
		}
		children[n.ParentLocationID] = append(children[n.ParentLocationID], n.LocationID)
	}
	if rootID == "" {
		return nil, &domain.InvalidHierarchyError{TenantID: tenantID, Reason: "no root location"}
	}

	for _, n := range nodes {
		visited := map[string]bool{n.LocationID: true}
		current := n.ParentLocationID
		for current != "" {
			if visited[current] {
				return nil, &domain.InvalidHierarchyError{TenantID: tenantID, Reason: "cycle through location " + current}
			}
			visited[current] = true
			current = byID[current].ParentLocationID
		}
	}

	for _, kids := range children {
		sort.Strings(kids)
	}

	return &echelonTree{rootID: rootID, nodes: byID, children: children}, nil
}
