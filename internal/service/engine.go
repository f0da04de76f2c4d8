package service

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/iyhunko/inventory-console/internal/catalog"
	"github.com/iyhunko/inventory-console/internal/metrics"
	"github.com/iyhunko/inventory-console/internal/model"
	"github.com/iyhunko/inventory-console/internal/remote"
	"github.com/iyhunko/inventory-console/internal/sqs"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// DefaultRemoteTimeout bounds a remote call when no timeout option is given.
const DefaultRemoteTimeout = 10 * time.Second

// ErrMutationsInFlight is returned by Load while optimistic mutations are unsettled.
var ErrMutationsInFlight = errors.New("mutations in flight")

// Reporter surfaces failures to the operator.
type Reporter interface {
	Report(ctx context.Context, level model.NotificationLevel, productID model.ID, message string)
}

// EventSink receives the outcome of every settled mutation.
type EventSink interface {
	Record(ctx context.Context, msg sqs.MutationMessage) error
}

// LoadResult summarizes a full catalog load.
type LoadResult struct {
	Loaded  int
	Skipped []error
}

// Engine applies catalog mutations optimistically and reconciles them with the remote catalog.
// It is the only writer of its store. Mutations on one id run strictly one after another;
// mutations on different ids run concurrently.
type Engine struct {
	store    *catalog.Store
	client   remote.Client
	ids      *model.PendingIDSource
	reporter Reporter
	sink     EventSink
	tracer   trace.Tracer
	timeout  time.Duration

	mu       sync.Mutex
	seq      uint64
	lanes    map[model.ID]*Mutation
	aliases  map[model.ID]model.ID
	inflight map[*Mutation]struct{}

	wg sync.WaitGroup
}

// Option configures an Engine.
type Option func(*Engine)

// WithReporter sets where failures are surfaced.
func WithReporter(r Reporter) Option {
	return func(e *Engine) { e.reporter = r }
}

// WithEventSink sets where mutation outcomes are recorded.
func WithEventSink(s EventSink) Option {
	return func(e *Engine) { e.sink = s }
}

// WithRemoteTimeout bounds every remote call issued by the engine.
func WithRemoteTimeout(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.timeout = d
		}
	}
}

// WithPendingIDSource replaces the pending id generator.
func WithPendingIDSource(src *model.PendingIDSource) Option {
	return func(e *Engine) { e.ids = src }
}

// WithTracer replaces the tracer taken from the global provider.
func WithTracer(t trace.Tracer) Option {
	return func(e *Engine) { e.tracer = t }
}

// NewEngine creates an engine owning store and talking to client.
func NewEngine(store *catalog.Store, client remote.Client, opts ...Option) *Engine {
	e := &Engine{
		store:    store,
		client:   client,
		ids:      model.NewPendingIDSource(),
		tracer:   otel.Tracer("github.com/iyhunko/inventory-console/internal/service"),
		timeout:  DefaultRemoteTimeout,
		lanes:    make(map[model.ID]*Mutation),
		aliases:  make(map[model.ID]model.ID),
		inflight: make(map[*Mutation]struct{}),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Snapshot returns the current catalog for read-only views.
func (e *Engine) Snapshot() catalog.Snapshot {
	return e.store.Snapshot()
}

// InFlight lists unsettled mutations in submission order.
func (e *Engine) InFlight() []MutationInfo {
	e.mu.Lock()
	pending := make([]*Mutation, 0, len(e.inflight))
	for m := range e.inflight {
		pending = append(pending, m)
	}
	e.mu.Unlock()

	slices.SortFunc(pending, func(a, b *Mutation) int {
		return cmp.Compare(a.seq, b.seq)
	})
	infos := make([]MutationInfo, 0, len(pending))
	for _, m := range pending {
		infos = append(infos, m.Info())
	}
	return infos
}

// Load replaces the catalog with the remote one. It refuses to run while mutations are unsettled.
func (e *Engine) Load(ctx context.Context) (LoadResult, error) {
	ctx, span := e.tracer.Start(ctx, "Engine.Load")
	defer span.End()

	if e.busy() {
		return LoadResult{}, ErrMutationsInFlight
	}

	var items []model.RemoteProduct
	err := e.callRemote(ctx, remote.OpList, func(ctx context.Context) error {
		var err error
		items, err = e.client.List(ctx)
		return err
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "load failed")
		return LoadResult{}, fmt.Errorf("failed to load catalog: %w", err)
	}

	e.mu.Lock()
	if len(e.inflight) > 0 {
		e.mu.Unlock()
		return LoadResult{}, ErrMutationsInFlight
	}
	skipped := e.store.Load(items)
	clear(e.aliases)
	e.mu.Unlock()

	result := LoadResult{Loaded: len(items) - len(skipped), Skipped: skipped}
	metrics.RecordsSkipped.Add(float64(len(skipped)))
	metrics.CatalogProducts.Set(float64(e.store.Len()))
	span.SetAttributes(attribute.Int("catalog.loaded", result.Loaded), attribute.Int("catalog.skipped", len(skipped)))
	slog.InfoContext(ctx, "catalog loaded", slog.Int("loaded", result.Loaded), slog.Int("skipped", len(skipped)))

	if len(skipped) > 0 && e.reporter != nil {
		e.reporter.Report(ctx, model.NotificationWarning, "",
			fmt.Sprintf("%d malformed catalog record(s) were skipped", len(skipped)))
	}
	return result, nil
}

// Create inserts the draft under a fresh pending id and submits it to the remote catalog.
// The returned mutation is already applied locally.
func (e *Engine) Create(ctx context.Context, draft model.Draft) (*Mutation, error) {
	if err := draft.Validate(); err != nil {
		return nil, err
	}
	payload := draft.Payload()
	pendingID := e.ids.Next()
	product := payload.Apply(model.Product{ID: pendingID})

	e.mu.Lock()
	m := e.newMutationLocked(KindCreate, pendingID)
	m.pendingID = pendingID
	e.store.Insert(product)
	m.setApplied(pendingID, product, nil, 0)
	e.lanes[pendingID] = m
	e.inflight[m] = struct{}{}
	e.mu.Unlock()

	metrics.MutationsInFlight.Inc()
	metrics.CatalogProducts.Set(float64(e.store.Len()))
	slog.DebugContext(ctx, "optimistic create applied", slog.String("product_id", pendingID.String()))

	e.goCommit(ctx, m, func(ctx context.Context) {
		e.commitCreate(ctx, m, payload)
	})
	return m, nil
}

// Update replaces the editable fields of product id and submits the change. An empty
// image keeps the current one.
func (e *Engine) Update(ctx context.Context, id model.ID, draft model.Draft) (*Mutation, error) {
	if err := draft.Validate(); err != nil {
		return nil, err
	}

	var payload model.ProductPayload
	apply := func(m *Mutation, target model.ID) error {
		prev, ok := e.store.Get(target)
		if !ok {
			return &catalog.NotFoundError{ID: target}
		}
		payload = draft.Payload()
		if strings.TrimSpace(draft.Image) == "" && prev.Image != "" {
			payload.Image = prev.Image
		}
		next := payload.Apply(prev)
		if err := e.store.Replace(target, next); err != nil {
			return err
		}
		m.setApplied(target, next, &prev, -1)
		return nil
	}
	commit := func(ctx context.Context, m *Mutation) {
		e.commitUpdate(ctx, m, payload)
	}
	return e.submit(ctx, KindUpdate, id, apply, commit)
}

// Delete removes product id and submits the removal. A product whose create is not yet
// confirmed is removed locally without a remote call.
func (e *Engine) Delete(ctx context.Context, id model.ID) (*Mutation, error) {
	e.mu.Lock()
	target := e.resolveLocked(id)
	if target.IsPending() {
		removed, index, err := e.store.Remove(target)
		if err != nil {
			e.mu.Unlock()
			return nil, err
		}
		m := e.newMutationLocked(KindDelete, target)
		m.pendingID = target
		m.setApplied(target, removed, nil, index)
		e.mu.Unlock()

		slog.InfoContext(ctx, "pending product removed locally", slog.String("product_id", target.String()))
		metrics.CatalogProducts.Set(float64(e.store.Len()))
		e.settle(ctx, m, StatusConfirmed, sqs.OutcomeLocal, nil)
		return m, nil
	}
	e.mu.Unlock()

	apply := func(m *Mutation, target model.ID) error {
		removed, index, err := e.store.Remove(target)
		if err != nil {
			return err
		}
		m.setApplied(target, removed, &removed, index)
		return nil
	}
	commit := func(ctx context.Context, m *Mutation) {
		e.commitDelete(ctx, m)
	}
	return e.submit(ctx, KindDelete, id, apply, commit)
}

// Close waits for all unsettled mutations or for ctx to end.
func (e *Engine) Close(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		e.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// submit applies the mutation now when its id is idle, otherwise queues it behind the lane tail.
func (e *Engine) submit(
	ctx context.Context,
	kind Kind,
	id model.ID,
	apply func(m *Mutation, target model.ID) error,
	commit func(ctx context.Context, m *Mutation),
) (*Mutation, error) {
	e.mu.Lock()
	target := e.resolveLocked(id)
	m := e.newMutationLocked(kind, target)
	prev := e.lanes[target]

	if prev == nil {
		if err := apply(m, target); err != nil {
			e.mu.Unlock()
			slog.WarnContext(ctx, "mutation target missing", slog.String("mutation", string(kind)), slog.String("product_id", target.String()), slog.Any("err", err))
			return nil, err
		}
		e.lanes[target] = m
		e.inflight[m] = struct{}{}
		e.mu.Unlock()

		metrics.MutationsInFlight.Inc()
		metrics.CatalogProducts.Set(float64(e.store.Len()))
		e.goCommit(ctx, m, func(ctx context.Context) {
			commit(ctx, m)
		})
		return m, nil
	}

	e.lanes[target] = m
	e.inflight[m] = struct{}{}
	e.mu.Unlock()

	metrics.MutationsInFlight.Inc()
	slog.DebugContext(ctx, "mutation queued", slog.String("mutation", string(kind)), slog.String("product_id", target.String()))

	e.goCommit(ctx, m, func(ctx context.Context) {
		<-prev.done

		e.mu.Lock()
		target := e.resolveLocked(id)
		err := apply(m, target)
		e.mu.Unlock()
		if err != nil {
			m.setTarget(target)
			slog.WarnContext(ctx, "queued mutation target missing", slog.String("mutation", string(kind)), slog.String("product_id", target.String()), slog.Any("err", err))
			e.settle(ctx, m, StatusFailed, sqs.OutcomeRejected, err)
			return
		}
		metrics.CatalogProducts.Set(float64(e.store.Len()))
		commit(ctx, m)
	})
	return m, nil
}

func (e *Engine) goCommit(ctx context.Context, m *Mutation, fn func(ctx context.Context)) {
	// The remote leg outlives the caller's request.
	ctx = context.WithoutCancel(ctx)
	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		ctx, span := e.tracer.Start(ctx, "Engine."+string(m.kind), trace.WithAttributes(
			attribute.String("mutation.kind", string(m.kind)),
			attribute.String("product.id", m.Target().String()),
		))
		defer span.End()
		fn(ctx)
		if err := m.Err(); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "mutation failed")
		}
	}()
}

func (e *Engine) commitCreate(ctx context.Context, m *Mutation, payload model.ProductPayload) {
	pendingID := m.pendingID

	var serverID model.ID
	err := e.callRemote(ctx, remote.OpCreate, func(ctx context.Context) error {
		var err error
		serverID, err = e.client.Create(ctx, payload)
		if err == nil && serverID == "" {
			err = &remote.RemoteError{Op: remote.OpCreate, Err: remote.ErrMissingServerID}
		}
		return err
	})
	if err != nil {
		e.mu.Lock()
		_, _, rmErr := e.store.Remove(pendingID)
		e.mu.Unlock()
		if rmErr != nil {
			slog.DebugContext(ctx, "pending product already gone", slog.String("product_id", pendingID.String()))
		}
		slog.ErrorContext(ctx, "create failed, rolled back", slog.String("product_id", pendingID.String()), slog.Any("err", err))
		e.settle(ctx, m, StatusFailed, sqs.OutcomeRolledBack, err)
		return
	}

	e.mu.Lock()
	err = e.store.ReassignID(pendingID, serverID)
	switch {
	case err == nil:
		e.aliases[pendingID] = serverID
		e.moveLaneLocked(pendingID, serverID, m)
		e.mu.Unlock()
		m.setTarget(serverID)
		slog.InfoContext(ctx, "create confirmed", slog.String("pending_id", pendingID.String()), slog.String("product_id", serverID.String()))
		e.settle(ctx, m, StatusConfirmed, sqs.OutcomeConfirmed, nil)

	case errors.Is(err, catalog.ErrNotFound):
		// Deleted locally while the create was in flight.
		e.mu.Unlock()
		m.setTarget(serverID)
		e.compensate(ctx, serverID)
		e.settle(ctx, m, StatusConfirmed, sqs.OutcomeConfirmed, nil)

	default:
		_, _, _ = e.store.Remove(pendingID)
		e.mu.Unlock()
		slog.ErrorContext(ctx, "create reconciliation conflict", slog.String("pending_id", pendingID.String()), slog.String("product_id", serverID.String()), slog.Any("err", err))
		e.settle(ctx, m, StatusFailed, sqs.OutcomeRolledBack, err)
	}
}

// compensate removes a product the catalog created after the operator already deleted it locally.
func (e *Engine) compensate(ctx context.Context, serverID model.ID) {
	err := e.callRemote(ctx, remote.OpDelete, func(ctx context.Context) error {
		return e.client.Delete(ctx, serverID)
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to delete abandoned product", slog.String("product_id", serverID.String()), slog.Any("err", err))
		if e.reporter != nil {
			e.reporter.Report(ctx, model.NotificationWarning, serverID,
				fmt.Sprintf("Product %s was created remotely after being deleted locally and could not be removed", serverID))
		}
		return
	}
	slog.InfoContext(ctx, "abandoned product deleted remotely", slog.String("product_id", serverID.String()))
}

func (e *Engine) commitUpdate(ctx context.Context, m *Mutation, payload model.ProductPayload) {
	target := m.Target()
	err := e.callRemote(ctx, remote.OpUpdate, func(ctx context.Context) error {
		return e.client.Update(ctx, target, payload)
	})
	if err == nil {
		e.settle(ctx, m, StatusConfirmed, sqs.OutcomeConfirmed, nil)
		return
	}

	m.mu.Lock()
	prev := *m.rollback
	m.mu.Unlock()

	e.mu.Lock()
	rbErr := e.store.Replace(target, prev)
	e.mu.Unlock()
	if rbErr != nil {
		slog.WarnContext(ctx, "update rollback target missing", slog.String("product_id", target.String()), slog.Any("err", rbErr))
	}
	slog.ErrorContext(ctx, "update failed, rolled back", slog.String("product_id", target.String()), slog.Any("err", err))
	e.settle(ctx, m, StatusFailed, sqs.OutcomeRolledBack, err)
}

func (e *Engine) commitDelete(ctx context.Context, m *Mutation) {
	target := m.Target()
	err := e.callRemote(ctx, remote.OpDelete, func(ctx context.Context) error {
		return e.client.Delete(ctx, target)
	})
	if err == nil {
		e.settle(ctx, m, StatusConfirmed, sqs.OutcomeConfirmed, nil)
		return
	}

	m.mu.Lock()
	prev, index := *m.rollback, m.rollbackIndex
	m.mu.Unlock()

	e.mu.Lock()
	if _, exists := e.store.Get(target); exists {
		slog.WarnContext(ctx, "delete rollback skipped, id reappeared", slog.String("product_id", target.String()))
	} else {
		e.store.InsertAt(index, prev)
	}
	e.mu.Unlock()
	slog.ErrorContext(ctx, "delete failed, rolled back", slog.String("product_id", target.String()), slog.Any("err", err))
	e.settle(ctx, m, StatusFailed, sqs.OutcomeRolledBack, err)
}

func (e *Engine) callRemote(ctx context.Context, op remote.Op, fn func(ctx context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	start := time.Now()
	err := fn(ctx)
	metrics.RemoteCallDuration.WithLabelValues(string(op)).Observe(time.Since(start).Seconds())
	return err
}

// settle releases the lane, records and reports the outcome, then closes the handle.
func (e *Engine) settle(ctx context.Context, m *Mutation, status Status, outcome sqs.Outcome, err error) {
	e.mu.Lock()
	if e.lanes[m.laneKey] == m {
		delete(e.lanes, m.laneKey)
	}
	_, tracked := e.inflight[m]
	delete(e.inflight, m)
	e.mu.Unlock()

	if tracked {
		metrics.MutationsInFlight.Dec()
	}
	metrics.MutationsTotal.WithLabelValues(string(m.kind), string(outcome)).Inc()
	metrics.CatalogProducts.Set(float64(e.store.Len()))

	product := m.Product()
	if e.sink != nil {
		msg := sqs.MutationMessage{
			Action:    string(m.kind),
			Outcome:   outcome,
			ProductID: m.Target().String(),
			PendingID: m.pendingID.String(),
			Name:      product.Name,
			Price:     product.Price,
		}
		if err != nil {
			msg.Error = err.Error()
		}
		if sinkErr := e.sink.Record(ctx, msg); sinkErr != nil {
			// Log error but don't fail the mutation
			slog.ErrorContext(ctx, "failed to record mutation outcome", slog.Any("err", sinkErr), slog.String("mutation", string(m.kind)), slog.String("product_id", msg.ProductID))
		}
	}

	if status == StatusFailed && e.reporter != nil {
		level := model.NotificationError
		if outcome == sqs.OutcomeRejected {
			level = model.NotificationWarning
		}
		e.reporter.Report(ctx, level, m.Target(), failureMessage(m.kind, outcome, product.Name))
	}

	m.complete(status, err)
}

func failureMessage(kind Kind, outcome sqs.Outcome, name string) string {
	if outcome == sqs.OutcomeRejected {
		return fmt.Sprintf("Product %q no longer exists, the %s was dropped", name, kind)
	}
	switch kind {
	case KindCreate:
		return fmt.Sprintf("Failed to create product %q", name)
	case KindUpdate:
		return fmt.Sprintf("Failed to update product %q. Changes were reverted.", name)
	default:
		return fmt.Sprintf("Failed to delete product %q. Changes were reverted.", name)
	}
}

func (e *Engine) busy() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.inflight) > 0
}

func (e *Engine) newMutationLocked(kind Kind, target model.ID) *Mutation {
	e.seq++
	return newMutation(kind, e.seq, target)
}

// resolveLocked follows pending id renames to the id the product holds now.
func (e *Engine) resolveLocked(id model.ID) model.ID {
	for {
		next, ok := e.aliases[id]
		if !ok {
			return id
		}
		id = next
	}
}

// moveLaneLocked re-keys the lane of a confirmed create so queued mutations follow the server id.
func (e *Engine) moveLaneLocked(from, to model.ID, m *Mutation) {
	tail, ok := e.lanes[from]
	if !ok {
		return
	}
	delete(e.lanes, from)
	if tail != m {
		tail.laneKey = to
		e.lanes[to] = tail
	}
}
