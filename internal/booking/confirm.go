package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/iliyamo/venue-booking/internal/apperror"
	"github.com/iliyamo/venue-booking/internal/metrics"
	"github.com/iliyamo/venue-booking/internal/model"
	"github.com/iliyamo/venue-booking/internal/repository"
)

// bookingNamespace seeds DeriveBookingID.  Changing it changes every
// derived booking id.
var bookingNamespace = uuid.MustParse("6f1c7e0a-2b8d-5d4e-9a37-0c5e8b1f4d21")

// DeriveBookingID maps a hold id to the id of the booking it becomes.
// Every confirmation attempt for the same hold computes the same id, so
// retries converge on one row.
func DeriveBookingID(holdID string) string {
	return uuid.NewSHA1(bookingNamespace, []byte(holdID)).String()
}

// PaymentPaid is the payment status recorded when a charge carries no
// explicit status.
const PaymentPaid = "paid"

// ConfirmResult is the booking a confirmation produced.  Replayed is true
// when the booking already existed and nothing new happened.
type ConfirmResult struct {
	Booking  model.Booking
	Replayed bool
}

// ConfirmHold turns a hold into a booking.  It is idempotent: replays and
// concurrent attempts for the same hold return the same booking, and only
// the attempt that links the hold notifies.  A booking left by an attempt
// that died before linking its hold is picked up and the hold repaired.
//
// A lapsed or expired hold is only confirmed when payment carries an
// external charge id; canceled holds are never confirmed unless their
// booking was already written.
func (s *Service) ConfirmHold(ctx context.Context, orgID, holdID string, payment *model.PaymentProof) (res ConfirmResult, err error) {
	defer func() {
		switch {
		case err != nil:
			metrics.Confirmations.WithLabelValues("rejected").Inc()
		case res.Replayed:
			metrics.Confirmations.WithLabelValues("replayed").Inc()
		default:
			metrics.Confirmations.WithLabelValues("created").Inc()
		}
	}()

	hold, err := s.loadHold(ctx, orgID, holdID)
	if err != nil {
		return ConfirmResult{}, err
	}
	if hold.Status == model.HoldConfirmed {
		b, err := s.existingBooking(ctx, hold)
		if err != nil {
			return ConfirmResult{}, err
		}
		return ConfirmResult{Booking: b, Replayed: true}, nil
	}

	now := s.clock()
	// a booking written by an earlier attempt is authoritative whatever
	// happened to the hold since
	if b, found, err := s.findBooking(ctx, hold); err != nil {
		return ConfirmResult{}, err
	} else if found {
		if err := s.relink(ctx, hold, b, now); err != nil {
			return ConfirmResult{}, err
		}
		return ConfirmResult{Booking: b, Replayed: true}, nil
	}

	if err := s.checkConfirmable(ctx, hold, payment, now); err != nil {
		return ConfirmResult{}, err
	}

	b := newBooking(hold, payment, now)
	err = s.store.InsertBooking(ctx, b)
	if errors.Is(err, repository.ErrConflict) {
		// another attempt created it first
		existing, err := s.existingBooking(ctx, hold)
		if err != nil {
			return ConfirmResult{}, err
		}
		if err := s.relink(ctx, hold, existing, now); err != nil {
			return ConfirmResult{}, err
		}
		return ConfirmResult{Booking: existing, Replayed: true}, nil
	}
	if err != nil {
		return ConfirmResult{}, fmt.Errorf("insert booking: %w", err)
	}

	ok, err := s.markConfirmed(ctx, hold, b.ID, now)
	if err != nil {
		return ConfirmResult{}, err
	}

	s.log.Info("booking confirmed",
		zap.String("org_id", orgID),
		zap.String("hold_id", holdID),
		zap.String("booking_id", b.ID),
		zap.Bool("paid", payment.HasExternalCharge()),
	)
	if ok {
		s.notify(ctx, b)
	}
	return ConfirmResult{Booking: b}, nil
}

// relink marks the hold of an already written booking as confirmed.  The
// attempt that moves the hold sends the notification, so a booking left
// behind by a crashed attempt is still announced exactly once.
func (s *Service) relink(ctx context.Context, hold model.Hold, b model.Booking, now time.Time) error {
	ok, err := s.markConfirmed(ctx, hold, b.ID, now)
	if err != nil {
		return err
	}
	if ok {
		s.log.Info("hold relinked to existing booking",
			zap.String("org_id", hold.OrgID), zap.String("hold_id", hold.ID), zap.String("booking_id", b.ID))
		s.notify(ctx, b)
	}
	return nil
}

// checkConfirmable applies the hold state machine.  A lapsed active hold
// without payment proof is persisted as expired on the way out.
func (s *Service) checkConfirmable(ctx context.Context, hold model.Hold, payment *model.PaymentProof, now time.Time) error {
	status := hold.EffectiveStatus(now)
	switch {
	case status == model.HoldActive:
		return nil
	case status == model.HoldExpired && payment.HasExternalCharge():
		s.log.Info("confirming expired hold backed by a payment",
			zap.String("hold_id", hold.ID), zap.String("charge_id", payment.ExternalChargeID))
		return nil
	}
	if hold.Lapsed(now) {
		if _, err := s.store.TransitionHold(ctx, hold.OrgID, hold.ID, []model.HoldStatus{model.HoldActive}, model.HoldExpired, "", now); err != nil {
			s.log.Warn("could not persist hold expiry", zap.String("hold_id", hold.ID), zap.Error(err))
		}
	}
	return apperror.Newf(apperror.CodeHoldNotActive, "hold is %s", status).With("status", string(status))
}

// markConfirmed links the hold to its booking.  Once the booking row
// exists it wins over any expiry or cancel that raced it.  It reports
// whether this call moved the hold.
func (s *Service) markConfirmed(ctx context.Context, hold model.Hold, bookingID string, now time.Time) (bool, error) {
	ok, err := s.store.TransitionHold(ctx, hold.OrgID, hold.ID,
		[]model.HoldStatus{model.HoldActive, model.HoldExpired, model.HoldCanceled}, model.HoldConfirmed, bookingID, now)
	if err != nil {
		return false, fmt.Errorf("mark hold %s confirmed: %w", hold.ID, err)
	}
	return ok, nil
}

// findBooking looks up the booking a hold turns into without failing
// when there is none.
func (s *Service) findBooking(ctx context.Context, hold model.Hold) (model.Booking, bool, error) {
	b, err := s.store.GetBooking(ctx, hold.OrgID, DeriveBookingID(hold.ID))
	if errors.Is(err, repository.ErrNotFound) {
		b, err = s.store.GetBookingByHold(ctx, hold.OrgID, hold.ID)
	}
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return model.Booking{}, false, nil
	case err != nil:
		return model.Booking{}, false, fmt.Errorf("look up booking for hold %s: %w", hold.ID, err)
	}
	return b, true, nil
}

func (s *Service) existingBooking(ctx context.Context, hold model.Hold) (model.Booking, error) {
	id := hold.BookingID
	if id == "" {
		id = DeriveBookingID(hold.ID)
	}
	b, err := s.store.GetBooking(ctx, hold.OrgID, id)
	if errors.Is(err, repository.ErrNotFound) {
		b, err = s.store.GetBookingByHold(ctx, hold.OrgID, hold.ID)
	}
	return b, lookup(err, apperror.CodeBookingNotFound, "booking for hold", hold.ID)
}

func newBooking(hold model.Hold, payment *model.PaymentProof, now time.Time) model.Booking {
	b := model.Booking{
		ID:            DeriveBookingID(hold.ID),
		OrgID:         hold.OrgID,
		GameID:        hold.GameID,
		RoomID:        hold.RoomID,
		HoldID:        hold.ID,
		BookingType:   hold.BookingType,
		StartAt:       hold.StartAt,
		EndAt:         hold.EndAt,
		Players:       hold.Players,
		Status:        model.BookingConfirmed,
		Customer:      hold.Customer,
		PromoCode:     hold.PromoCode,
		Currency:      hold.Currency,
		SubtotalCents: hold.SubtotalCents,
		FeeCents:      hold.FeeCents,
		TotalCents:    hold.TotalCents,
		PaymentStatus: model.PaymentUnpaid,
		CreatedAt:     now,
	}
	if payment != nil {
		b.PaymentStatus = payment.Status
		if b.PaymentStatus == "" {
			b.PaymentStatus = model.PaymentUnpaid
			if payment.HasExternalCharge() {
				b.PaymentStatus = PaymentPaid
			}
		}
		b.PaidCents = payment.PaidCents
		b.ExternalChargeID = payment.ExternalChargeID
		b.PaidAt = payment.PaidAt
	}
	return b
}

// notify hands the booking to the notifier on a context that survives
// the caller's cancellation but not a stuck broker.
func (s *Service) notify(ctx context.Context, b model.Booking) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), notifyTimeout)
	defer cancel()

	n := Notification{Booking: b}
	if org, err := s.store.GetOrg(ctx, b.OrgID); err == nil {
		n.Org = org
	}
	if game, err := s.store.GetGame(ctx, b.OrgID, b.GameID); err == nil {
		n.Game = game
	}
	if err := s.notifier.BookingConfirmed(ctx, n); err != nil {
		s.log.Error("booking notification failed",
			zap.String("booking_id", b.ID), zap.Error(err))
	}
}
