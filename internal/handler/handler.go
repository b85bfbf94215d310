package handler

import (
	"context"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/robertarktes/hotel-booking-saga/internal/domain"
	"github.com/robertarktes/hotel-booking-saga/internal/observability"
	"github.com/robertarktes/hotel-booking-saga/internal/saga"
	"golang.org/x/sync/semaphore"
)

// Locks are the two mutual-exclusion zones of the handler. Capacity covers
// every write that can affect room capacity; Lookup covers confirm and
// compensate. Coarser than per-room locking, acceptable while the in-flight
// cap stays small.
type Locks struct {
	Capacity sync.Mutex
	Lookup   sync.Mutex
}

// Delayer injects the processing delay on the confirm/compensate paths.
// Tests pass a no-op to stay deterministic.
type Delayer func(ctx context.Context)

// Auditor records each saga decision. Implementations log their own failures;
// auditing never blocks a reply.
type Auditor interface {
	Decision(ctx context.Context, transactionID uuid.UUID, inState, outState saga.State)
}

// Params wires a Handler. Requests and Publish form the message channel pair:
// the broker bridge feeds Requests and drains Publish.
type Params struct {
	Requests    <-chan saga.Message
	Publish     chan<- saga.Message
	Gateway     Gateway
	HoldTTL     time.Duration
	MaxInFlight int64
	Locks       *Locks
	Delay       Delayer
	Audit       Auditor
	Logger      observability.Logger
}

// Handler is the saga dispatch loop. It reads inbound messages, classifies
// them by saga state and fans the work out under a bounded semaphore, so
// back-pressure lands on the channel reader instead of an unbounded backlog.
type Handler struct {
	requests  <-chan saga.Message
	publish   chan<- saga.Message
	gw        Gateway
	admission *AdmissionController
	locks     *Locks
	sem       *semaphore.Weighted
	delay     Delayer
	audit     Auditor
	logger    observability.Logger
	wg        sync.WaitGroup
}

func New(p Params) *Handler {
	if p.Locks == nil {
		p.Locks = &Locks{}
	}
	if p.Delay == nil {
		p.Delay = randomDelay
	}
	if p.MaxInFlight <= 0 {
		p.MaxInFlight = 6
	}
	return &Handler{
		requests:  p.Requests,
		publish:   p.Publish,
		gw:        p.Gateway,
		admission: NewAdmissionController(p.Gateway, p.HoldTTL),
		locks:     p.Locks,
		sem:       semaphore.NewWeighted(p.MaxInFlight),
		delay:     p.Delay,
		audit:     p.Audit,
		logger:    p.Logger,
	}
}

func randomDelay(ctx context.Context) {
	d := time.Duration(rand.IntN(100)) * time.Millisecond
	select {
	case <-ctx.Done():
	case <-time.After(d):
	}
}

// Run consumes the request channel until it closes or ctx is cancelled.
// Each message runs in its own goroutine after a semaphore slot is acquired.
func (h *Handler) Run(ctx context.Context) error {
	defer h.wg.Wait()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-h.requests:
			if !ok {
				return nil
			}
			if err := h.sem.Acquire(ctx, 1); err != nil {
				return err
			}
			h.wg.Add(1)
			go func(m saga.Message) {
				defer h.wg.Done()
				defer h.sem.Release(1)
				h.dispatch(ctx, m)
			}(msg)
		}
	}
}

func (h *Handler) dispatch(ctx context.Context, msg saga.Message) {
	observability.MessagesConsumed.WithLabelValues(string(msg.State)).Inc()

	switch msg.State {
	case saga.StateBegin:
		h.placeHold(ctx, msg)
	case saga.StatePaymentAccept:
		h.confirmHold(ctx, msg)
	case saga.StateHotelTimedRollback:
		h.compensate(ctx, msg)
	default:
		observability.MessagesDropped.WithLabelValues("unhandled_state").Inc()
		h.logger.WithField("state", string(msg.State)).Debug("ignoring message for foreign saga state")
	}
}

func (h *Handler) placeHold(ctx context.Context, msg saga.Message) {
	req, ok := msg.Body.(saga.HotelRequest)
	if !ok {
		observability.MessagesDropped.WithLabelValues("bad_body").Inc()
		h.logger.WithField("transaction_id", msg.TransactionID).Warn("begin message without hotel request body")
		return
	}

	// The capacity lock spans the whole read-decide-write sequence. Two
	// concurrent requests must not both observe spare capacity.
	start := time.Now()
	h.locks.Capacity.Lock()
	err := h.admission.PlaceHold(ctx, msg.TransactionID, req)
	h.locks.Capacity.Unlock()
	observability.StorageTxDuration.Observe(time.Since(start).Seconds())

	switch {
	case err == nil:
		observability.HoldsAccepted.Inc()
		h.reply(ctx, msg, saga.StateHotelTimedAccept, saga.TypePaymentRequest)
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrNoCapacity):
		observability.HoldsRejected.Inc()
		h.reply(ctx, msg, saga.StateHotelTimedFail, saga.TypePaymentRequest)
	default:
		h.dropOnStorageError(msg, err)
	}
}

func (h *Handler) confirmHold(ctx context.Context, msg saga.Message) {
	h.delay(ctx)

	start := time.Now()
	h.locks.Lookup.Lock()
	_, err := h.gw.ConfirmHold(ctx, msg.TransactionID)
	h.locks.Lookup.Unlock()
	observability.StorageTxDuration.Observe(time.Since(start).Seconds())

	switch {
	case err == nil:
		observability.BookingsConfirmed.Inc()
		h.reply(ctx, msg, saga.StateHotelFullAccept, saga.TypeOrderReply)
	case errors.Is(err, domain.ErrNotFound):
		h.reply(ctx, msg, saga.StateHotelFullFail, saga.TypeOrderReply)
	default:
		h.dropOnStorageError(msg, err)
	}
}

func (h *Handler) compensate(ctx context.Context, msg saga.Message) {
	h.delay(ctx)

	start := time.Now()
	h.locks.Lookup.Lock()
	_, err := h.gw.DeleteByTransaction(ctx, msg.TransactionID)
	h.locks.Lookup.Unlock()
	observability.StorageTxDuration.Observe(time.Since(start).Seconds())

	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		h.dropOnStorageError(msg, err)
		return
	}

	// Compensation acknowledges unconditionally, deleting zero rows included.
	observability.Rollbacks.Inc()
	h.reply(ctx, msg, saga.StateHotelTimedRollback, saga.TypeOrderReply)
}

func (h *Handler) reply(ctx context.Context, in saga.Message, state saga.State, messageType saga.MessageType) {
	out := saga.Reply(in, state, messageType)

	if h.audit != nil {
		h.audit.Decision(ctx, in.TransactionID, in.State, out.State)
	}

	select {
	case <-ctx.Done():
	case h.publish <- out:
		h.logger.
			WithField("transaction_id", in.TransactionID).
			WithField("state", string(out.State)).
			Debug("reply queued for publishing")
	}
}

// Storage failures emit no reply. The orchestrator's own timeout and retry
// is the recovery path; there is no outbox of undelivered replies here.
func (h *Handler) dropOnStorageError(msg saga.Message, err error) {
	observability.MessagesDropped.WithLabelValues("storage_error").Inc()
	h.logger.
		WithError(err).
		WithField("transaction_id", msg.TransactionID).
		WithField("state", string(msg.State)).
		Error("storage failure, dropping message for this attempt")
}
