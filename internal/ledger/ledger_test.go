package ledger

import (
	"errors"
	"testing"
	"time"

	domainErrors "github.com/polkiloo/custodian/internal/domain/errors"
	"github.com/polkiloo/custodian/internal/domain/model"
	"github.com/polkiloo/custodian/internal/registry"
)

const (
	alice   int64 = 100
	bob     int64 = 200
	carol   int64 = 300
	mallory int64 = 999

	destination = "0x742d35Cc6634C0532925a3b844Bc454e4438f44e"
)

func newTestLedger(t *testing.T, operators []int64, required int) *Ledger {
	t.Helper()
	reg, err := registry.New(operators, required)
	if err != nil {
		t.Fatalf("registry.New: %v", err)
	}
	return New(reg)
}

func TestCreateRejectsUnknownOperator(t *testing.T) {
	l := newTestLedger(t, []int64{alice, bob}, 2)

	_, _, err := l.Create(mallory, "Mallory", destination, "1.5")
	if !errors.Is(err, domainErrors.ErrNotAuthorized) {
		t.Fatalf("expected ErrNotAuthorized, got %v", err)
	}
}

func TestCreateValidation(t *testing.T) {
	tests := []struct {
		name        string
		destination string
		amount      string
		wantErr     error
	}{
		{"zero amount", destination, "0", domainErrors.ErrInvalidAmount},
		{"negative amount", destination, "-1", domainErrors.ErrInvalidAmount},
		{"not a number", destination, "one", domainErrors.ErrInvalidAmount},
		{"too many decimals", destination, "0.0000000000000000001", domainErrors.ErrInvalidAmount},
		{"bad address", "not-an-address", "1", domainErrors.ErrInvalidAddress},
		{"short address", "0x742d35Cc", "1", domainErrors.ErrInvalidAddress},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := newTestLedger(t, []int64{alice, bob}, 2)
			_, _, err := l.Create(alice, "Alice", tt.destination, tt.amount)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestCreateAutoApprovesCreator(t *testing.T) {
	l := newTestLedger(t, []int64{alice, bob, carol}, 2)

	req, quorumReached, err := l.Create(alice, "Alice", destination, "2.5")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if quorumReached {
		t.Fatal("quorum must not be reached with one of two approvals")
	}
	if req.Status != model.WithdrawalStatusPending {
		t.Fatalf("expected pending, got %s", req.Status)
	}
	if !req.ApprovedBy(alice) {
		t.Fatal("creator must auto-approve")
	}
	if len(req.Approvals) != 1 {
		t.Fatalf("expected 1 approval, got %d", len(req.Approvals))
	}
	if req.Amount.String() != "2.5" {
		t.Fatalf("amount changed on the way through: %s", req.Amount)
	}
}

func TestCreateQuorumOfOneApprovesImmediately(t *testing.T) {
	l := newTestLedger(t, []int64{alice}, 1)

	req, quorumReached, err := l.Create(alice, "Alice", destination, "1")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if !quorumReached {
		t.Fatal("single-operator quorum must be reached at creation")
	}
	if req.Status != model.WithdrawalStatusApproved {
		t.Fatalf("expected approved, got %s", req.Status)
	}
}

func TestSecondCreateFailsWhileActive(t *testing.T) {
	l := newTestLedger(t, []int64{alice, bob}, 2)

	if _, _, err := l.Create(alice, "Alice", destination, "1"); err != nil {
		t.Fatalf("first create: %v", err)
	}
	_, _, err := l.Create(bob, "Bob", destination, "2")
	if !errors.Is(err, domainErrors.ErrRequestActive) {
		t.Fatalf("expected ErrRequestActive, got %v", err)
	}
}

func TestRejectReleasesSlotForNewRequest(t *testing.T) {
	l := newTestLedger(t, []int64{alice, bob}, 2)

	req, _, err := l.Create(alice, "Alice", destination, "1")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := l.Reject(req.ID, bob); err != nil {
		t.Fatalf("reject: %v", err)
	}
	if l.Active() != nil {
		t.Fatal("active slot must be released after rejection")
	}
	if _, _, err := l.Create(bob, "Bob", destination, "2"); err != nil {
		t.Fatalf("create after rejection: %v", err)
	}
}

func TestApproveReachesQuorumExactlyOnce(t *testing.T) {
	l := newTestLedger(t, []int64{alice, bob, carol}, 2)

	req, _, err := l.Create(alice, "Alice", destination, "1")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	got, quorumReached, err := l.Approve(req.ID, bob)
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if !quorumReached {
		t.Fatal("second approval must reach the quorum")
	}
	if got.Status != model.WithdrawalStatusApproved {
		t.Fatalf("expected approved, got %s", got.Status)
	}

	_, _, err = l.Approve(req.ID, carol)
	if !errors.Is(err, domainErrors.ErrNotPending) {
		t.Fatalf("late approval: expected ErrNotPending, got %v", err)
	}
}

func TestApproveDuplicate(t *testing.T) {
	l := newTestLedger(t, []int64{alice, bob, carol}, 3)

	req, _, err := l.Create(alice, "Alice", destination, "1")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	_, _, err = l.Approve(req.ID, alice)
	if !errors.Is(err, domainErrors.ErrAlreadyApproved) {
		t.Fatalf("creator re-approval: expected ErrAlreadyApproved, got %v", err)
	}

	if _, _, err := l.Approve(req.ID, bob); err != nil {
		t.Fatalf("approve: %v", err)
	}
	_, _, err = l.Approve(req.ID, bob)
	if !errors.Is(err, domainErrors.ErrAlreadyApproved) {
		t.Fatalf("expected ErrAlreadyApproved, got %v", err)
	}
}

func TestApproveAfterQuorumDistinguishesPriorApprover(t *testing.T) {
	l := newTestLedger(t, []int64{alice, bob, carol}, 2)

	req, _, err := l.Create(alice, "Alice", destination, "1")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, _, err := l.Approve(req.ID, bob); err != nil {
		t.Fatalf("approve: %v", err)
	}

	_, _, err = l.Approve(req.ID, bob)
	if !errors.Is(err, domainErrors.ErrAlreadyApproved) {
		t.Fatalf("prior approver: expected ErrAlreadyApproved, got %v", err)
	}
	_, _, err = l.Approve(req.ID, carol)
	if !errors.Is(err, domainErrors.ErrNotPending) {
		t.Fatalf("newcomer: expected ErrNotPending, got %v", err)
	}
}

func TestApproveUnknownRequest(t *testing.T) {
	l := newTestLedger(t, []int64{alice, bob}, 2)

	_, _, err := l.Approve("WD-0-0", alice)
	if !errors.Is(err, domainErrors.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestRejectWinsOverPendingApprovals(t *testing.T) {
	l := newTestLedger(t, []int64{alice, bob, carol}, 3)

	req, _, err := l.Create(alice, "Alice", destination, "1")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, _, err := l.Approve(req.ID, bob); err != nil {
		t.Fatalf("approve: %v", err)
	}

	rejected, err := l.Reject(req.ID, carol)
	if err != nil {
		t.Fatalf("reject: %v", err)
	}
	if rejected.Status != model.WithdrawalStatusRejected {
		t.Fatalf("expected rejected, got %s", rejected.Status)
	}

	_, _, err = l.Approve(req.ID, carol)
	if !errors.Is(err, domainErrors.ErrNotPending) {
		t.Fatalf("approval after veto: expected ErrNotPending, got %v", err)
	}
}

func TestRejectByPriorApprover(t *testing.T) {
	l := newTestLedger(t, []int64{alice, bob, carol}, 3)

	req, _, err := l.Create(alice, "Alice", destination, "1")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := l.Reject(req.ID, alice); err != nil {
		t.Fatalf("creator must be able to veto their own request: %v", err)
	}
}

func TestRejectBeatsUndispatchedApproval(t *testing.T) {
	l := newTestLedger(t, []int64{alice, bob, carol}, 2)

	req, _, err := l.Create(alice, "Alice", destination, "1")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, _, err := l.Approve(req.ID, bob); err != nil {
		t.Fatalf("approve: %v", err)
	}

	rejected, err := l.Reject(req.ID, carol)
	if err != nil {
		t.Fatalf("veto before dispatch: %v", err)
	}
	if rejected.Status != model.WithdrawalStatusRejected {
		t.Fatalf("expected rejected, got %s", rejected.Status)
	}
	if l.Active() != nil {
		t.Fatal("active slot must be released by the veto")
	}
	if err := l.BeginDispatch(req.ID); !errors.Is(err, domainErrors.ErrNotPending) {
		t.Fatalf("dispatch claim after veto: expected ErrNotPending, got %v", err)
	}
}

func TestRejectRefusedWhileDispatchClaimed(t *testing.T) {
	l := newTestLedger(t, []int64{alice, bob, carol}, 2)

	req, _, err := l.Create(alice, "Alice", destination, "1")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, _, err := l.Approve(req.ID, bob); err != nil {
		t.Fatalf("approve: %v", err)
	}
	if err := l.BeginDispatch(req.ID); err != nil {
		t.Fatalf("dispatch claim: %v", err)
	}

	_, err = l.Reject(req.ID, carol)
	if !errors.Is(err, domainErrors.ErrNotPending) {
		t.Fatalf("veto during dispatch: expected ErrNotPending, got %v", err)
	}

	l.ReleaseDispatch(req.ID)

	rejected, err := l.Reject(req.ID, carol)
	if err != nil {
		t.Fatalf("manual veto after the claim was released: %v", err)
	}
	if rejected.Status != model.WithdrawalStatusRejected {
		t.Fatalf("expected rejected, got %s", rejected.Status)
	}
	if l.Active() != nil {
		t.Fatal("active slot must be released by the manual veto")
	}
}

func TestBeginDispatchGuards(t *testing.T) {
	l := newTestLedger(t, []int64{alice, bob}, 2)

	if err := l.BeginDispatch("WD-0-0"); !errors.Is(err, domainErrors.ErrNotFound) {
		t.Fatalf("unknown ID: expected ErrNotFound, got %v", err)
	}

	req, _, err := l.Create(alice, "Alice", destination, "1")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := l.BeginDispatch(req.ID); !errors.Is(err, domainErrors.ErrNotPending) {
		t.Fatalf("pending request: expected ErrNotPending, got %v", err)
	}

	if _, _, err := l.Approve(req.ID, bob); err != nil {
		t.Fatalf("approve: %v", err)
	}
	if err := l.BeginDispatch(req.ID); err != nil {
		t.Fatalf("claim on an approved request: %v", err)
	}
	if err := l.BeginDispatch(req.ID); !errors.Is(err, domainErrors.ErrNotPending) {
		t.Fatalf("double claim: expected ErrNotPending, got %v", err)
	}

	l.MarkExecuted(req.ID)

	next, _, err := l.Create(alice, "Alice", destination, "2")
	if err != nil {
		t.Fatalf("create after execution: %v", err)
	}
	if _, _, err := l.Approve(next.ID, bob); err != nil {
		t.Fatalf("approve: %v", err)
	}
	if err := l.BeginDispatch(next.ID); err != nil {
		t.Fatalf("execution must clear the previous claim: %v", err)
	}
}

func TestRejectTerminalRequest(t *testing.T) {
	l := newTestLedger(t, []int64{alice}, 1)

	req, _, err := l.Create(alice, "Alice", destination, "1")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	l.MarkExecuted(req.ID)

	_, err = l.Reject(req.ID, alice)
	if !errors.Is(err, domainErrors.ErrNotPending) {
		t.Fatalf("expected ErrNotPending, got %v", err)
	}
}

func TestMarkExecutedIsIdempotent(t *testing.T) {
	l := newTestLedger(t, []int64{alice, bob}, 2)

	req, _, err := l.Create(alice, "Alice", destination, "1")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, _, err := l.Approve(req.ID, bob); err != nil {
		t.Fatalf("approve: %v", err)
	}

	l.MarkExecuted(req.ID)
	l.MarkExecuted(req.ID)

	got, err := l.Get(req.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Status != model.WithdrawalStatusExecuted {
		t.Fatalf("expected executed, got %s", got.Status)
	}
	if l.Active() != nil {
		t.Fatal("active slot must be released after execution")
	}
}

func TestMarkExecutedSkipsPending(t *testing.T) {
	l := newTestLedger(t, []int64{alice, bob}, 2)

	req, _, err := l.Create(alice, "Alice", destination, "1")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	l.MarkExecuted(req.ID)

	got, _ := l.Get(req.ID)
	if got.Status != model.WithdrawalStatusPending {
		t.Fatalf("pending request must not execute, got %s", got.Status)
	}
}

func TestAbortRollsBackApprovedRequest(t *testing.T) {
	l := newTestLedger(t, []int64{alice}, 1)

	req, _, err := l.Create(alice, "Alice", destination, "1")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	l.Abort(req.ID)

	got, _ := l.Get(req.ID)
	if got.Status != model.WithdrawalStatusRejected {
		t.Fatalf("expected rejected, got %s", got.Status)
	}
	if l.Active() != nil {
		t.Fatal("active slot must be released after abort")
	}
}

func TestAbortLeavesTerminalUntouched(t *testing.T) {
	l := newTestLedger(t, []int64{alice}, 1)

	req, _, err := l.Create(alice, "Alice", destination, "1")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	l.MarkExecuted(req.ID)

	l.Abort(req.ID)
	l.Abort("WD-0-0")

	got, _ := l.Get(req.ID)
	if got.Status != model.WithdrawalStatusExecuted {
		t.Fatalf("executed request must stay executed, got %s", got.Status)
	}
}

func TestSetTxHash(t *testing.T) {
	l := newTestLedger(t, []int64{alice}, 1)

	req, _, err := l.Create(alice, "Alice", destination, "1")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	l.SetTxHash(req.ID, "0xdeadbeef")

	got, _ := l.Get(req.ID)
	if got.TxHash != "0xdeadbeef" {
		t.Fatalf("expected tx hash recorded, got %q", got.TxHash)
	}
}

func TestListFiltersAndPreservesOrder(t *testing.T) {
	l := newTestLedger(t, []int64{alice}, 1)

	first, _, err := l.Create(alice, "Alice", destination, "1")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	l.MarkExecuted(first.ID)

	second, _, err := l.Create(alice, "Alice", destination, "2")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	l.Abort(second.ID)

	third, _, err := l.Create(alice, "Alice", destination, "3")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	all := l.List("")
	if len(all) != 3 {
		t.Fatalf("expected 3 requests, got %d", len(all))
	}
	if all[0].ID != first.ID || all[1].ID != second.ID || all[2].ID != third.ID {
		t.Fatal("list must preserve creation order")
	}

	executed := l.List(model.WithdrawalStatusExecuted)
	if len(executed) != 1 || executed[0].ID != first.ID {
		t.Fatalf("executed filter mismatch: %v", executed)
	}
}

func TestPruneDropsOnlyOldTerminalRequests(t *testing.T) {
	l := newTestLedger(t, []int64{alice}, 1)

	base := time.Now()
	l.now = func() time.Time { return base.Add(-48 * time.Hour) }

	old, _, err := l.Create(alice, "Alice", destination, "1")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	l.MarkExecuted(old.ID)

	stale, _, err := l.Create(alice, "Alice", destination, "2")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	l.now = func() time.Time { return base }

	if _, _, err := l.Create(alice, "Alice", destination, "3"); !errors.Is(err, domainErrors.ErrRequestActive) {
		t.Fatalf("stale pending request still holds the slot, got %v", err)
	}

	removed := l.Prune(24 * time.Hour)
	if removed != 1 {
		t.Fatalf("expected 1 pruned, got %d", removed)
	}

	if _, err := l.Get(old.ID); !errors.Is(err, domainErrors.ErrNotFound) {
		t.Fatalf("old executed request must be pruned, got %v", err)
	}
	if _, err := l.Get(stale.ID); err != nil {
		t.Fatalf("old pending request must survive pruning: %v", err)
	}
}

func TestReturnedRequestsAreCopies(t *testing.T) {
	l := newTestLedger(t, []int64{alice, bob}, 2)

	req, _, err := l.Create(alice, "Alice", destination, "1")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	req.Status = model.WithdrawalStatusExecuted
	req.Approvals[mallory] = struct{}{}

	got, _ := l.Get(req.ID)
	if got.Status != model.WithdrawalStatusPending {
		t.Fatal("mutating a returned request must not affect the ledger")
	}
	if got.ApprovedBy(mallory) {
		t.Fatal("mutating a returned approval set must not affect the ledger")
	}
}

func TestRequestIDsAreUnique(t *testing.T) {
	l := newTestLedger(t, []int64{alice}, 1)

	seen := make(map[string]struct{})
	for i := 0; i < 5; i++ {
		req, _, err := l.Create(alice, "Alice", destination, "1")
		if err != nil {
			t.Fatalf("create %d: %v", i, err)
		}
		if _, dup := seen[req.ID]; dup {
			t.Fatalf("duplicate request ID %s", req.ID)
		}
		seen[req.ID] = struct{}{}
		l.MarkExecuted(req.ID)
	}
}
