package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"workhive/models"
	"workhive/services/payments"

	"go.uber.org/zap"
)

// events records the order of side effects across fakes so tests can assert
// sequencing (payment settlement strictly before booking confirmation).
type events struct {
	log []string
}

func (e *events) add(name string) { e.log = append(e.log, name) }

type fakeBookingRepo struct {
	events   *events
	bookings map[string]*models.Booking

	createErr      error
	confirmErr     error
	confirmNoMatch bool
	confirmed      []string
	setPI          map[string]string
}

func newFakeBookingRepo(ev *events) *fakeBookingRepo {
	return &fakeBookingRepo{
		events:   ev,
		bookings: make(map[string]*models.Booking),
		setPI:    make(map[string]string),
	}
}

func (r *fakeBookingRepo) Create(b *models.Booking) error {
	if r.createErr != nil {
		return r.createErr
	}
	b.CreatedAt = time.Now()
	r.bookings[b.ID] = b
	return nil
}

func (r *fakeBookingRepo) GetByID(id string) (*models.Booking, error) {
	b, ok := r.bookings[id]
	if !ok {
		return nil, fmt.Errorf("booking with id %s not found", id)
	}
	copied := *b
	return &copied, nil
}

func (r *fakeBookingRepo) CountOverlapping(spaceID, date, startTime, endTime, excludeID string) (int64, error) {
	var n int64
	for _, b := range r.bookings {
		if b.SpaceID != spaceID || b.BookingDate != date || b.ID == excludeID {
			continue
		}
		switch b.Status {
		case models.BookingStatusPending, models.BookingStatusPendingApproval, models.BookingStatusConfirmed:
		default:
			continue
		}
		if b.StartTime < endTime && b.EndTime > startTime {
			n++
		}
	}
	return n, nil
}

func (r *fakeBookingRepo) SetPaymentIntentID(id, paymentIntentID string) error {
	b, ok := r.bookings[id]
	if !ok {
		return fmt.Errorf("booking with id %s not found", id)
	}
	b.StripePaymentIntentID = paymentIntentID
	r.setPI[id] = paymentIntentID
	return nil
}

func (r *fakeBookingRepo) Confirm(id string) (bool, error) {
	r.events.add("booking_confirm")
	if r.confirmErr != nil {
		return false, r.confirmErr
	}
	if r.confirmNoMatch {
		return false, nil
	}
	b, ok := r.bookings[id]
	if !ok || b.Status != models.BookingStatusPendingApproval {
		return false, nil
	}
	b.Status = models.BookingStatusConfirmed
	r.confirmed = append(r.confirmed, id)
	return true, nil
}

func (r *fakeBookingRepo) Cancel(id, reason string, byHost bool, from []string) (bool, error) {
	b, ok := r.bookings[id]
	if !ok {
		return false, nil
	}
	matched := false
	for _, st := range from {
		if b.Status == st {
			matched = true
			break
		}
	}
	if !matched {
		return false, nil
	}
	now := time.Now()
	b.Status = models.BookingStatusCancelled
	b.CancellationReason = reason
	b.CancelledByHost = byHost
	b.CancelledAt = &now
	return true, nil
}

type fakeSpaceRepo struct {
	spaces map[string]*models.Space
}

func newFakeSpaceRepo() *fakeSpaceRepo {
	return &fakeSpaceRepo{spaces: make(map[string]*models.Space)}
}

func (r *fakeSpaceRepo) GetByID(id string) (*models.Space, error) {
	s, ok := r.spaces[id]
	if !ok {
		return nil, fmt.Errorf("space with id %s not found", id)
	}
	return s, nil
}

type fakePaymentRepo struct {
	events   *events
	payments map[string]*models.Payment // keyed by booking ID

	markSucceededErr error
	succeeded        []string
	refunded         []string
	cancelled        []string
	setPI            map[string]string
}

func newFakePaymentRepo(ev *events) *fakePaymentRepo {
	return &fakePaymentRepo{
		events:   ev,
		payments: make(map[string]*models.Payment),
		setPI:    make(map[string]string),
	}
}

func (r *fakePaymentRepo) Create(p *models.Payment) error {
	r.payments[p.BookingID] = p
	return nil
}

func (r *fakePaymentRepo) GetByBookingID(bookingID string) (*models.Payment, error) {
	p, ok := r.payments[bookingID]
	if !ok {
		return nil, fmt.Errorf("payment for booking %s not found", bookingID)
	}
	copied := *p
	return &copied, nil
}

func (r *fakePaymentRepo) byID(id string) *models.Payment {
	for _, p := range r.payments {
		if p.ID == id {
			return p
		}
	}
	return nil
}

func (r *fakePaymentRepo) MarkSucceeded(id string) error {
	r.events.add("payment_succeeded")
	if r.markSucceededErr != nil {
		return r.markSucceededErr
	}
	if p := r.byID(id); p != nil {
		p.PaymentStatus = models.PaymentStatusSucceeded
	}
	r.succeeded = append(r.succeeded, id)
	return nil
}

func (r *fakePaymentRepo) MarkRefunded(id string) error {
	if p := r.byID(id); p != nil {
		p.PaymentStatus = models.PaymentStatusRefunded
	}
	r.refunded = append(r.refunded, id)
	return nil
}

func (r *fakePaymentRepo) MarkCancelled(id string) error {
	if p := r.byID(id); p != nil {
		p.PaymentStatus = models.PaymentStatusCancelled
	}
	r.cancelled = append(r.cancelled, id)
	return nil
}

func (r *fakePaymentRepo) SetPaymentIntentID(id, paymentIntentID string) error {
	if p := r.byID(id); p != nil {
		p.StripePaymentIntentID = paymentIntentID
	}
	r.setPI[id] = paymentIntentID
	return nil
}

type fakeGateway struct {
	intents  map[string]*payments.PaymentIntent
	sessions map[string]*payments.CheckoutSession

	captureErr error
	refundErr  error
	createErr  error

	createCalls  int
	getPICalls   int
	captureCalls int
	cancelCalls  int
	refundCalls  int
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		intents:  make(map[string]*payments.PaymentIntent),
		sessions: make(map[string]*payments.CheckoutSession),
	}
}

func (g *fakeGateway) CreateCheckoutSession(ctx context.Context, p payments.CheckoutParams) (*payments.CheckoutSession, error) {
	g.createCalls++
	if g.createErr != nil {
		return nil, g.createErr
	}
	sess := &payments.CheckoutSession{
		ID:              fmt.Sprintf("cs_%d", g.createCalls),
		URL:             "https://checkout.test/session",
		PaymentIntentID: fmt.Sprintf("pi_%d", g.createCalls),
	}
	g.sessions[sess.ID] = sess
	g.intents[sess.PaymentIntentID] = &payments.PaymentIntent{
		ID:     sess.PaymentIntentID,
		Status: payments.IntentRequiresCapture,
	}
	return sess, nil
}

func (g *fakeGateway) GetCheckoutSession(ctx context.Context, id string) (*payments.CheckoutSession, error) {
	sess, ok := g.sessions[id]
	if !ok {
		return nil, fmt.Errorf("session %s not found", id)
	}
	return sess, nil
}

func (g *fakeGateway) GetPaymentIntent(ctx context.Context, id string) (*payments.PaymentIntent, error) {
	g.getPICalls++
	pi, ok := g.intents[id]
	if !ok {
		return nil, fmt.Errorf("payment intent %s not found", id)
	}
	copied := *pi
	return &copied, nil
}

func (g *fakeGateway) CapturePaymentIntent(ctx context.Context, id string) (*payments.PaymentIntent, error) {
	g.captureCalls++
	if g.captureErr != nil {
		return nil, g.captureErr
	}
	pi, ok := g.intents[id]
	if !ok {
		return nil, fmt.Errorf("payment intent %s not found", id)
	}
	pi.Status = payments.IntentSucceeded
	copied := *pi
	return &copied, nil
}

func (g *fakeGateway) CancelPaymentIntent(ctx context.Context, id string) error {
	g.cancelCalls++
	pi, ok := g.intents[id]
	if !ok {
		return fmt.Errorf("payment intent %s not found", id)
	}
	pi.Status = payments.IntentCanceled
	return nil
}

func (g *fakeGateway) Refund(ctx context.Context, paymentIntentID string, metadata map[string]string) error {
	g.refundCalls++
	if g.refundErr != nil {
		return g.refundErr
	}
	return nil
}

type fakeDispatcher struct {
	dispatchErr error
	dispatched  []string // "type:bookingID"
	scheduled   []string
}

func (d *fakeDispatcher) Dispatch(ctx context.Context, bookingID, eventType string) error {
	if d.dispatchErr != nil {
		return d.dispatchErr
	}
	d.dispatched = append(d.dispatched, eventType+":"+bookingID)
	return nil
}

func (d *fakeDispatcher) ScheduleExpiry(ctx context.Context, bookingID string, at time.Time) error {
	d.scheduled = append(d.scheduled, bookingID)
	return nil
}

// testEnv bundles a service with its fakes.
type testEnv struct {
	svc        *DefaultBookingService
	events     *events
	bookings   *fakeBookingRepo
	spaces     *fakeSpaceRepo
	payments   *fakePaymentRepo
	gateway    *fakeGateway
	dispatcher *fakeDispatcher
}

func newTestEnv() *testEnv {
	ev := &events{}
	env := &testEnv{
		events:     ev,
		bookings:   newFakeBookingRepo(ev),
		spaces:     newFakeSpaceRepo(),
		payments:   newFakePaymentRepo(ev),
		gateway:    newFakeGateway(),
		dispatcher: &fakeDispatcher{},
	}
	env.svc = &DefaultBookingService{
		Bookings:            env.bookings,
		Spaces:              env.spaces,
		Payments:            env.payments,
		Gateway:             env.gateway,
		Dispatcher:          env.dispatcher,
		Logger:              zap.NewNop(),
		CheckoutRedirectURL: "http://localhost:3000",
	}
	return env
}

// seedApprovable sets up a host, a space and a pending_approval booking with a
// held payment intent in the given state.
func (env *testEnv) seedApprovable(bookingID, piStatus string) {
	env.spaces.spaces["space-1"] = &models.Space{
		ID: "space-1", HostID: "host-1", Name: "Loft 21", PricePerHour: 10, Currency: "EUR",
	}
	env.bookings.bookings[bookingID] = &models.Booking{
		ID:          bookingID,
		SpaceID:     "space-1",
		UserID:      "coworker-1",
		Status:      models.BookingStatusPendingApproval,
		BookingDate: "2026-10-01",
		StartTime:   "09:00",
		EndTime:     "11:00",
		Price:       20,
		Currency:    "EUR",

		StripePaymentIntentID: "pi_held",
	}
	env.payments.payments[bookingID] = &models.Payment{
		ID:                    "pay-1",
		BookingID:             bookingID,
		UserID:                "coworker-1",
		Amount:                21,
		Currency:              "EUR",
		PaymentStatus:         models.PaymentStatusPending,
		Method:                "stripe",
		StripeSessionID:       "cs_held",
		StripePaymentIntentID: "pi_held",
	}
	env.gateway.intents["pi_held"] = &payments.PaymentIntent{ID: "pi_held", Status: piStatus}
	env.gateway.sessions["cs_held"] = &payments.CheckoutSession{
		ID: "cs_held", URL: "https://checkout.test/held", PaymentIntentID: "pi_held",
	}
}

var errDBDown = errors.New("database connection lost")
