// backend-go/internal/domain/errors.go
package domain

import (
	"errors"
	"fmt"
)

// ErrInsufficientData signals that a product does not have enough history
// for the requested computation. Callers treat it as "no result", not as a
// fault.
var ErrInsufficientData = errors.New("insufficient demand history")

// InvalidHierarchyError is a configuration fault in a tenant's location
// tree: a cycle, a dangling parent reference, or an ambiguous root.
type InvalidHierarchyError struct {
	TenantID string
	Reason   string
}

func (e *InvalidHierarchyError) Error() string {
	return fmt.Sprintf("invalid location hierarchy for tenant %s: %s", e.TenantID, e.Reason)
}

// ComputationError wraps a numeric edge case hit while computing one
// product's metrics. Batch operations record it and move on.
type ComputationError struct {
	ProductID string
	Err       error
}

func (e *ComputationError) Error() string {
	return fmt.Sprintf("computation failed for product %s: %v", e.ProductID, e.Err)
}

func (e *ComputationError) Unwrap() error { return e.Err }

// UpstreamDataError wraps a storage-collaborator failure. No retry logic
// lives here; the caller surfaces it as an internal failure.
type UpstreamDataError struct {
	Op  string
	Err error
}

func (e *UpstreamDataError) Error() string {
	return fmt.Sprintf("upstream data access failed during %s: %v", e.Op, e.Err)
}

func (e *UpstreamDataError) Unwrap() error { return e.Err }
