package service

import "github.com/agrisetu/pumptrack/internal/workorder/entity"

// Breakdown 按泵型号拆分的数量
type Breakdown struct {
	HP3  int `json:"hp_3"`
	HP5  int `json:"hp_5"`
	HP75 int `json:"hp_7_5"`
}

// Total 三个型号数量之和
func (b Breakdown) Total() int {
	return b.HP3 + b.HP5 + b.HP75
}

// validateBreakdown checks the reported total against the variant sum.
// A claimed total that disagrees with its own buckets is rejected before
// any write.
func validateBreakdown(b Breakdown, claimedTotal int) error {
	if b.HP3 < 0 || b.HP5 < 0 || b.HP75 < 0 {
		return validationErr("quantities must be non-negative")
	}
	if sum := b.Total(); sum != claimedTotal {
		return quantityMismatchErr("variant sum %d does not match reported total %d", sum, claimedTotal)
	}
	return nil
}

// checkTarget bounds the submitted total by the work order target.
// The bound is aggregate-only; per-variant totals are not constrained
// individually.
func checkTarget(b Breakdown, wo *entity.WorkOrder) error {
	if total := b.Total(); total > wo.TotalQuantity {
		return quantityExceedsErr("submitted total %d exceeds work order target %d", total, wo.TotalQuantity)
	}
	return nil
}
