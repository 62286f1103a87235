package registry

import "testing"

func TestNewRejectsUnsatisfiableQuorum(t *testing.T) {
	if _, err := New([]int64{1, 2}, 3); err == nil {
		t.Fatal("quorum larger than operator set must be rejected")
	}
}

func TestNewRejectsZeroQuorum(t *testing.T) {
	if _, err := New([]int64{1, 2}, 0); err == nil {
		t.Fatal("zero quorum must be rejected")
	}
}

func TestNewCountsDistinctOperators(t *testing.T) {
	if _, err := New([]int64{1, 1, 1}, 2); err == nil {
		t.Fatal("duplicate operator IDs must not satisfy the quorum")
	}
}

func TestIsAuthorized(t *testing.T) {
	reg, err := New([]int64{10, 20, 30}, 2)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if !reg.IsAuthorized(10) {
		t.Fatal("configured operator must be authorized")
	}
	if reg.IsAuthorized(40) {
		t.Fatal("unknown operator must not be authorized")
	}
	if reg.RequiredApprovals() != 2 {
		t.Fatalf("expected quorum 2, got %d", reg.RequiredApprovals())
	}
	if reg.Size() != 3 {
		t.Fatalf("expected 3 operators, got %d", reg.Size())
	}
}
