package service

import (
	"context"
	"sync"
	"time"

	"github.com/iyhunko/inventory-console/internal/model"
)

// Kind names the three optimistic mutations.
type Kind string

const (
	KindCreate Kind = "create"
	KindUpdate Kind = "update"
	KindDelete Kind = "delete"
)

// Status is the lifecycle state of a mutation.
type Status string

const (
	// StatusQueued waits behind another mutation on the same id; nothing applied yet.
	StatusQueued Status = "queued"
	// StatusPending is applied locally and waiting for the remote catalog.
	StatusPending Status = "pending"
	// StatusConfirmed is terminal: the remote catalog accepted the change.
	StatusConfirmed Status = "confirmed"
	// StatusFailed is terminal: the change was rolled back or never applied.
	StatusFailed Status = "failed"
)

// Mutation is the handle of one optimistic create, update or delete.
type Mutation struct {
	kind      Kind
	seq       uint64
	startedAt time.Time
	done      chan struct{}

	// guarded by Engine.mu
	laneKey model.ID

	mu            sync.Mutex
	target        model.ID
	pendingID     model.ID
	status        Status
	err           error
	product       model.Product
	rollback      *model.Product
	rollbackIndex int
}

// MutationInfo is a read-only view of a mutation.
type MutationInfo struct {
	Kind      Kind           `json:"kind"`
	ProductID model.ID       `json:"product_id"`
	PendingID model.ID       `json:"pending_id,omitempty"`
	Status    Status         `json:"status"`
	StartedAt time.Time      `json:"started_at"`
	Rollback  *model.Product `json:"rollback,omitempty"`
	Error     string         `json:"error,omitempty"`
}

func newMutation(kind Kind, seq uint64, target model.ID) *Mutation {
	return &Mutation{
		kind:      kind,
		seq:       seq,
		startedAt: time.Now(),
		done:      make(chan struct{}),
		laneKey:   target,
		target:    target,
		status:    StatusQueued,
	}
}

// Kind returns the mutation kind.
func (m *Mutation) Kind() Kind {
	return m.kind
}

// Target returns the product id the mutation applies to. For a confirmed create this is the server id.
func (m *Mutation) Target() model.ID {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.target
}

// Product returns the product as applied to the catalog by this mutation.
func (m *Mutation) Product() model.Product {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.product
}

// Status returns the current lifecycle state.
func (m *Mutation) Status() Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.status
}

// Err returns the terminal error of a failed mutation.
func (m *Mutation) Err() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.err
}

// Done is closed once the mutation reached a terminal state.
func (m *Mutation) Done() <-chan struct{} {
	return m.done
}

// Wait blocks until the mutation settles or ctx ends, and returns the mutation error.
func (m *Mutation) Wait(ctx context.Context) error {
	select {
	case <-m.done:
		return m.Err()
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Info returns a snapshot of the mutation state.
func (m *Mutation) Info() MutationInfo {
	m.mu.Lock()
	defer m.mu.Unlock()

	info := MutationInfo{
		Kind:      m.kind,
		ProductID: m.target,
		PendingID: m.pendingID,
		Status:    m.status,
		StartedAt: m.startedAt,
	}
	if m.rollback != nil {
		rb := *m.rollback
		info.Rollback = &rb
	}
	if m.err != nil {
		info.Error = m.err.Error()
	}
	return info
}

func (m *Mutation) setApplied(target model.ID, product model.Product, rollback *model.Product, rollbackIndex int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.target = target
	m.product = product
	m.rollback = rollback
	m.rollbackIndex = rollbackIndex
	m.status = StatusPending
}

func (m *Mutation) setTarget(target model.ID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.target = target
	m.product.ID = target
}

func (m *Mutation) complete(status Status, err error) {
	m.mu.Lock()
	m.status = status
	m.err = err
	m.mu.Unlock()
	close(m.done)
}
