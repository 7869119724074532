package aggregator

// detailBudget caps the number of expensive per-item detail calls issued for
// one repository and one resource kind. A negative limit means unlimited.
type detailBudget struct {
	limit int
	used  int
}

func newDetailBudget(limit int) *detailBudget {
	return &detailBudget{limit: limit}
}

// Take consumes one detail call from the budget and reports whether the call
// may be issued. The budget is charged per attempt, not per success, so the
// total number of outbound detail calls stays bounded even when fetches fail.
func (b *detailBudget) Take() bool {
	if b.limit >= 0 && b.used >= b.limit {
		return false
	}
	b.used++
	return true
}

// Used returns how many detail calls were attempted
func (b *detailBudget) Used() int {
	return b.used
}

// Exhausted reports whether the cap has been reached
func (b *detailBudget) Exhausted() bool {
	return b.limit >= 0 && b.used >= b.limit
}
