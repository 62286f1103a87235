package registry

import (
	"fmt"
)

// Registry holds the static set of authorized operators and the approval
// quorum. Membership is immutable after construction, so lookups need no
// locking.
type Registry struct {
	operators map[int64]struct{}
	required  int
}

// New builds a Registry from the configured operator IDs and quorum.
// A quorum larger than the operator set is unsatisfiable and rejected.
func New(operators []int64, required int) (*Registry, error) {
	if required < 1 {
		return nil, fmt.Errorf("required approvals must be at least 1, got %d", required)
	}
	set := make(map[int64]struct{}, len(operators))
	for _, id := range operators {
		set[id] = struct{}{}
	}
	if required > len(set) {
		return nil, fmt.Errorf("required approvals (%d) exceed distinct operators (%d)", required, len(set))
	}
	return &Registry{operators: set, required: required}, nil
}

// IsAuthorized reports whether the operator may create, approve, or reject
// withdrawals.
func (r *Registry) IsAuthorized(operator int64) bool {
	_, ok := r.operators[operator]
	return ok
}

// RequiredApprovals returns the quorum size.
func (r *Registry) RequiredApprovals() int {
	return r.required
}

// Size returns the number of authorized operators.
func (r *Registry) Size() int {
	return len(r.operators)
}
