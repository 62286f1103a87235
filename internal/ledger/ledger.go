package ledger

import (
	"fmt"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"

	domainErrors "github.com/polkiloo/custodian/internal/domain/errors"
	"github.com/polkiloo/custodian/internal/domain/model"
)

// Quorum supplies authorization decisions to the ledger.
type Quorum interface {
	IsAuthorized(operator int64) bool
	RequiredApprovals() int
}

// Ledger owns all withdrawal requests and their approval state machine.
// Every mutation runs under one mutex: the check of the active slot, the
// approval count, and the resulting transition commit atomically. At most
// one request is pending or approved at any time.
type Ledger struct {
	mu          sync.Mutex
	requests    map[string]*model.WithdrawalRequest
	order       []string
	activeID    string
	executingID string
	seq         uint64
	quorum      Quorum
	now         func() time.Time
}

// New constructs an empty in-memory ledger.
func New(quorum Quorum) *Ledger {
	return &Ledger{
		requests: make(map[string]*model.WithdrawalRequest),
		quorum:   quorum,
		now:      time.Now,
	}
}

// Create registers a new withdrawal request. The creator auto-approves, so
// with a quorum of one the request is approved by the act of creation;
// quorumReached reports that case. While another request occupies the active
// slot creation fails with ErrRequestActive.
func (l *Ledger) Create(requestedBy int64, requestedByName, destination, amount string) (*model.WithdrawalRequest, bool, error) {
	if !l.quorum.IsAuthorized(requestedBy) {
		return nil, false, domainErrors.ErrNotAuthorized
	}
	parsed, err := model.ParseAmount(amount)
	if err != nil {
		return nil, false, err
	}
	if !common.IsHexAddress(destination) {
		return nil, false, domainErrors.ErrInvalidAddress
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.activeID != "" {
		return nil, false, domainErrors.ErrRequestActive
	}

	l.seq++
	req := &model.WithdrawalRequest{
		ID:              fmt.Sprintf("WD-%d-%d", l.now().UnixMilli(), l.seq),
		RequestedBy:     requestedBy,
		RequestedByName: requestedByName,
		Destination:     destination,
		Amount:          parsed,
		Approvals:       map[int64]struct{}{requestedBy: {}},
		Status:          model.WithdrawalStatusPending,
		CreatedAt:       l.now(),
	}

	quorumReached := len(req.Approvals) >= l.quorum.RequiredApprovals()
	if quorumReached {
		req.Status = model.WithdrawalStatusApproved
	}

	l.requests[req.ID] = req
	l.order = append(l.order, req.ID)
	l.activeID = req.ID

	return req.Clone(), quorumReached, nil
}

// Approve records the operator's approval on a pending request.
// quorumReached is true on exactly the call whose approval first satisfies
// the quorum; that call also transitions the request to approved.
func (l *Ledger) Approve(id string, operator int64) (*model.WithdrawalRequest, bool, error) {
	if !l.quorum.IsAuthorized(operator) {
		return nil, false, domainErrors.ErrNotAuthorized
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	req, ok := l.requests[id]
	if !ok {
		return nil, false, domainErrors.ErrNotFound
	}
	if req.Status != model.WithdrawalStatusPending {
		if req.ApprovedBy(operator) {
			return nil, false, domainErrors.ErrAlreadyApproved
		}
		return nil, false, domainErrors.ErrNotPending
	}
	if req.ApprovedBy(operator) {
		return nil, false, domainErrors.ErrAlreadyApproved
	}

	req.Approvals[operator] = struct{}{}
	quorumReached := len(req.Approvals) >= l.quorum.RequiredApprovals()
	if quorumReached {
		req.Status = model.WithdrawalStatusApproved
	}

	return req.Clone(), quorumReached, nil
}

// Reject vetoes a request. Any single authorized operator may veto,
// regardless of prior involvement with the request. A veto on an approved
// request succeeds only while no dispatch claim is held: before the bridge
// claims it (the veto wins and the dispatch is refused) or after a claim
// was released without a verdict (the manual override for an unobserved
// outcome). While a transfer is being sent the veto is refused.
func (l *Ledger) Reject(id string, operator int64) (*model.WithdrawalRequest, error) {
	if !l.quorum.IsAuthorized(operator) {
		return nil, domainErrors.ErrNotAuthorized
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	req, ok := l.requests[id]
	if !ok {
		return nil, domainErrors.ErrNotFound
	}
	if req.Status.Terminal() || l.executingID == id {
		return nil, domainErrors.ErrNotPending
	}

	req.Status = model.WithdrawalStatusRejected
	l.releaseActive(id)

	return req.Clone(), nil
}

// BeginDispatch claims an approved request for execution. The status check
// and the claim commit atomically, so a veto can no longer land between
// quorum and the irreversible send: once claimed the request cannot be
// rejected, and a request vetoed first cannot be claimed.
func (l *Ledger) BeginDispatch(id string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	req, ok := l.requests[id]
	if !ok {
		return domainErrors.ErrNotFound
	}
	if req.Status != model.WithdrawalStatusApproved || l.executingID != "" {
		return domainErrors.ErrNotPending
	}

	l.executingID = id
	return nil
}

// ReleaseDispatch ends an execution claim without a verdict. The request
// stays approved and becomes vetoable again, which is how an operator
// resolves an unobserved outcome after checking the chain.
func (l *Ledger) ReleaseDispatch(id string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.clearExecuting(id)
}

// Abort rolls a not-yet-executed request back to rejected and releases the
// active slot. It is reserved for the execution bridge when the dispatch
// fails before a transaction handle exists; it is not a user operation.
// Terminal requests and unknown IDs are left untouched.
func (l *Ledger) Abort(id string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	req, ok := l.requests[id]
	if !ok || req.Status.Terminal() {
		return
	}

	req.Status = model.WithdrawalStatusRejected
	l.clearExecuting(id)
	l.releaseActive(id)
}

// MarkExecuted transitions an approved request to executed. Idempotent:
// repeated calls and unknown IDs are no-ops. Never called speculatively;
// the bridge invokes it only after a confirmation was observed.
func (l *Ledger) MarkExecuted(id string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	req, ok := l.requests[id]
	if !ok || req.Status != model.WithdrawalStatusApproved {
		return
	}

	req.Status = model.WithdrawalStatusExecuted
	l.clearExecuting(id)
	l.releaseActive(id)
}

// SetTxHash records the dispatched transaction handle for audit listings.
func (l *Ledger) SetTxHash(id, hash string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if req, ok := l.requests[id]; ok {
		req.TxHash = hash
	}
}

// Active returns the current pending or approved request, or nil.
func (l *Ledger) Active() *model.WithdrawalRequest {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.activeID == "" {
		return nil
	}
	return l.requests[l.activeID].Clone()
}

// Get returns the request with the given ID.
func (l *Ledger) Get(id string) (*model.WithdrawalRequest, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	req, ok := l.requests[id]
	if !ok {
		return nil, domainErrors.ErrNotFound
	}
	return req.Clone(), nil
}

// List returns requests in creation order. An empty status matches all.
func (l *Ledger) List(status model.WithdrawalStatus) []*model.WithdrawalRequest {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]*model.WithdrawalRequest, 0, len(l.order))
	for _, id := range l.order {
		req := l.requests[id]
		if status != "" && req.Status != status {
			continue
		}
		out = append(out, req.Clone())
	}
	return out
}

// Prune drops rejected and executed requests older than maxAge and reports
// how many were removed. Pending and approved requests are never pruned.
func (l *Ledger) Prune(maxAge time.Duration) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	cutoff := l.now().Add(-maxAge)
	kept := l.order[:0]
	removed := 0
	for _, id := range l.order {
		req := l.requests[id]
		if req.Status.Terminal() && req.CreatedAt.Before(cutoff) {
			delete(l.requests, id)
			removed++
			continue
		}
		kept = append(kept, id)
	}
	l.order = kept
	return removed
}

func (l *Ledger) releaseActive(id string) {
	if l.activeID == id {
		l.activeID = ""
	}
}

func (l *Ledger) clearExecuting(id string) {
	if l.executingID == id {
		l.executingID = ""
	}
}
