package booking

import (
	"context"
	"testing"
	"time"

	"workhive/models"
	"workhive/services/notification"
	"workhive/services/payments"
)

func TestRejectReleasesHoldAndCancels(t *testing.T) {
	env := newTestEnv()
	env.seedApprovable("b-1", payments.IntentRequiresCapture)

	if err := env.svc.Reject(context.Background(), "b-1", "host-1", "Space under maintenance"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if env.gateway.cancelCalls != 1 {
		t.Errorf("expected hold released once, got %d cancels", env.gateway.cancelCalls)
	}
	b := env.bookings.bookings["b-1"]
	if b.Status != models.BookingStatusCancelled || !b.CancelledByHost {
		t.Errorf("expected host cancellation, got status=%s byHost=%v", b.Status, b.CancelledByHost)
	}
	if b.CancellationReason != "Space under maintenance" {
		t.Errorf("reason not recorded: %q", b.CancellationReason)
	}
	if len(env.payments.cancelled) != 1 {
		t.Errorf("expected payment marked cancelled, got %v", env.payments.cancelled)
	}
	want := notification.TypeRejection + ":b-1"
	if len(env.dispatcher.dispatched) != 1 || env.dispatcher.dispatched[0] != want {
		t.Errorf("expected dispatched [%s], got %v", want, env.dispatcher.dispatched)
	}
}

func TestRejectRefundsCapturedHold(t *testing.T) {
	env := newTestEnv()
	env.seedApprovable("b-1", payments.IntentSucceeded)

	if err := env.svc.Reject(context.Background(), "b-1", "host-1", ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if env.gateway.refundCalls != 1 || env.gateway.cancelCalls != 0 {
		t.Errorf("expected refund instead of cancel, got refunds=%d cancels=%d",
			env.gateway.refundCalls, env.gateway.cancelCalls)
	}
	if len(env.payments.refunded) != 1 {
		t.Errorf("expected payment marked refunded, got %v", env.payments.refunded)
	}
	if got := env.bookings.bookings["b-1"].CancellationReason; got != "Rejected by host" {
		t.Errorf("expected default reason, got %q", got)
	}
}

func TestRejectForbiddenForNonHost(t *testing.T) {
	env := newTestEnv()
	env.seedApprovable("b-1", payments.IntentRequiresCapture)

	assertCode(t, env.svc.Reject(context.Background(), "b-1", "coworker-1", ""), CodeForbidden)
	if env.gateway.cancelCalls != 0 {
		t.Errorf("expected no processor call, got %d cancels", env.gateway.cancelCalls)
	}
}

func TestRejectWrongState(t *testing.T) {
	env := newTestEnv()
	env.seedApprovable("b-1", payments.IntentRequiresCapture)
	env.bookings.bookings["b-1"].Status = models.BookingStatusConfirmed

	assertCode(t, env.svc.Reject(context.Background(), "b-1", "host-1", ""), CodeInvalidState)
}

func TestRejectProceedsWhenProcessorDown(t *testing.T) {
	// A dead processor must not leave the coworker waiting on the rejection.
	env := newTestEnv()
	env.seedApprovable("b-1", payments.IntentRequiresCapture)
	delete(env.gateway.intents, "pi_held")

	if err := env.svc.Reject(context.Background(), "b-1", "host-1", ""); err != nil {
		t.Fatalf("rejection must survive processor failure: %v", err)
	}
	if got := env.bookings.bookings["b-1"].Status; got != models.BookingStatusCancelled {
		t.Errorf("expected cancelled, got %s", got)
	}
}

func TestCancelReleasesUncapturedHold(t *testing.T) {
	env := newTestEnv()
	env.seedApprovable("b-1", payments.IntentRequiresCapture)

	result, err := env.svc.Cancel(context.Background(), "b-1", "coworker-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Released || result.Refunded {
		t.Errorf("expected released without refund, got %+v", result)
	}
	if env.gateway.cancelCalls != 1 {
		t.Errorf("expected hold released once, got %d", env.gateway.cancelCalls)
	}
	b := env.bookings.bookings["b-1"]
	if b.Status != models.BookingStatusCancelled || b.CancelledByHost {
		t.Errorf("expected coworker cancellation, got status=%s byHost=%v", b.Status, b.CancelledByHost)
	}
}

func TestCancelRefundsInsideWindow(t *testing.T) {
	env := newTestEnv()
	env.seedApprovable("b-1", payments.IntentSucceeded)
	env.bookings.bookings["b-1"].Status = models.BookingStatusConfirmed
	// Booking starts in 48h, well outside the 24h cutoff.
	start := time.Now().Add(48 * time.Hour)
	env.bookings.bookings["b-1"].BookingDate = start.Format("2006-01-02")
	env.bookings.bookings["b-1"].StartTime = start.Format("15:04")

	result, err := env.svc.Cancel(context.Background(), "b-1", "coworker-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Refunded {
		t.Errorf("expected a refund, got %+v", result)
	}
	if env.gateway.refundCalls != 1 {
		t.Errorf("expected 1 refund, got %d", env.gateway.refundCalls)
	}
}

func TestCancelKeepsFundsPastCutoff(t *testing.T) {
	env := newTestEnv()
	env.seedApprovable("b-1", payments.IntentSucceeded)
	env.bookings.bookings["b-1"].Status = models.BookingStatusConfirmed
	start := time.Now().Add(3 * time.Hour)
	env.bookings.bookings["b-1"].BookingDate = start.Format("2006-01-02")
	env.bookings.bookings["b-1"].StartTime = start.Format("15:04")

	result, err := env.svc.Cancel(context.Background(), "b-1", "coworker-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Refunded {
		t.Error("expected no refund inside the 24h cutoff")
	}
	if env.gateway.refundCalls != 0 {
		t.Errorf("expected no refund call, got %d", env.gateway.refundCalls)
	}
	if got := env.bookings.bookings["b-1"].Status; got != models.BookingStatusCancelled {
		t.Errorf("cancellation itself must still happen, got %s", got)
	}
}

func TestCancelForbiddenForNonOwner(t *testing.T) {
	env := newTestEnv()
	env.seedApprovable("b-1", payments.IntentRequiresCapture)

	_, err := env.svc.Cancel(context.Background(), "b-1", "host-1")
	assertCode(t, err, CodeForbidden)
}

func TestCancelRejectsFinalizedBooking(t *testing.T) {
	env := newTestEnv()
	env.seedApprovable("b-1", payments.IntentRequiresCapture)
	env.bookings.bookings["b-1"].Status = models.BookingStatusCancelled

	_, err := env.svc.Cancel(context.Background(), "b-1", "coworker-1")
	assertCode(t, err, CodeInvalidState)
}

func TestExpireReleasesHoldAndCancels(t *testing.T) {
	env := newTestEnv()
	env.seedApprovable("b-1", payments.IntentRequiresCapture)

	if err := env.svc.Expire(context.Background(), "b-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if env.gateway.cancelCalls != 1 {
		t.Errorf("expected hold released, got %d cancels", env.gateway.cancelCalls)
	}
	b := env.bookings.bookings["b-1"]
	if b.Status != models.BookingStatusCancelled {
		t.Errorf("expected cancelled, got %s", b.Status)
	}
	if b.CancellationReason != "Payment deadline expired" {
		t.Errorf("unexpected reason %q", b.CancellationReason)
	}
	want := notification.TypeExpiry + ":b-1"
	if len(env.dispatcher.dispatched) != 1 || env.dispatcher.dispatched[0] != want {
		t.Errorf("expected dispatched [%s], got %v", want, env.dispatcher.dispatched)
	}
}

func TestExpireIgnoresSettledBooking(t *testing.T) {
	env := newTestEnv()
	env.seedApprovable("b-1", payments.IntentRequiresCapture)
	env.bookings.bookings["b-1"].Status = models.BookingStatusConfirmed

	if err := env.svc.Expire(context.Background(), "b-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := env.bookings.bookings["b-1"].Status; got != models.BookingStatusConfirmed {
		t.Errorf("confirmed booking must survive the expiry sweep, got %s", got)
	}
	if env.gateway.cancelCalls != 0 {
		t.Errorf("expected no processor call, got %d", env.gateway.cancelCalls)
	}
}

func TestExpireMissingBookingIsANoop(t *testing.T) {
	env := newTestEnv()
	if err := env.svc.Expire(context.Background(), "gone"); err != nil {
		t.Fatalf("missing booking must not error the task: %v", err)
	}
}

func TestGetVisibleToRequesterAndHost(t *testing.T) {
	env := newTestEnv()
	env.seedApprovable("b-1", payments.IntentRequiresCapture)

	if _, err := env.svc.Get(context.Background(), "b-1", "coworker-1"); err != nil {
		t.Errorf("requester must see their booking: %v", err)
	}
	if _, err := env.svc.Get(context.Background(), "b-1", "host-1"); err != nil {
		t.Errorf("host must see bookings of their space: %v", err)
	}
	_, err := env.svc.Get(context.Background(), "b-1", "stranger")
	assertCode(t, err, CodeForbidden)
}
