package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/iliyamo/venue-booking/internal/apperror"
	"github.com/iliyamo/venue-booking/internal/availability"
	"github.com/iliyamo/venue-booking/internal/metrics"
	"github.com/iliyamo/venue-booking/internal/model"
	"github.com/iliyamo/venue-booking/internal/pricing"
	"github.com/iliyamo/venue-booking/internal/repository"
)

// CreateHoldInput is a request to reserve one room for one session.
type CreateHoldInput struct {
	OrgID       string            `json:"-"`
	GameID      string            `json:"game_id"`
	RoomID      string            `json:"room_id"`
	BookingType model.BookingType `json:"booking_type"`
	StartAt     time.Time         `json:"start_at"`
	EndAt       time.Time         `json:"end_at"`
	Players     int               `json:"players"`
	Customer    model.Customer    `json:"customer"`
	PromoCode   string            `json:"promo_code,omitempty"`
}

// CreateHold validates the request, re-checks contention against the
// current holds and bookings of the room and persists an active hold.
// The insert is conditional on the room version read alongside the
// contention snapshot; a lost race is re-validated a bounded number of
// times and then reported as slot_unavailable.
func (s *Service) CreateHold(ctx context.Context, in CreateHoldInput) (hold model.Hold, err error) {
	defer func() {
		if code := apperror.CodeOf(err); code != "" {
			metrics.HoldsRejected.WithLabelValues(code).Inc()
		}
	}()

	org, err := s.loadOrg(ctx, in.OrgID)
	if err != nil {
		return model.Hold{}, err
	}
	game, err := s.loadGame(ctx, in.OrgID, in.GameID)
	if err != nil {
		return model.Hold{}, err
	}
	room, err := s.store.GetRoom(ctx, in.OrgID, in.RoomID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return model.Hold{}, fmt.Errorf("load room %s: %w", in.RoomID, err)
	}
	if err != nil || room.GameID != game.ID || !room.Enabled {
		return model.Hold{}, apperror.Newf(apperror.CodeRoomNotFound, "room %q not found for game %q", in.RoomID, game.ID)
	}
	if !game.Allows(in.BookingType) {
		return model.Hold{}, apperror.Newf(apperror.CodeBookingTypeNotAllowed, "booking type %q is not offered for this game", in.BookingType)
	}
	minPlayers, maxPlayers := max(game.MinPlayers, 1), min(game.MaxPlayers, room.MaxPlayers)
	if in.Players < minPlayers || in.Players > maxPlayers {
		return model.Hold{}, partySizeError(minPlayers, maxPlayers)
	}
	if in.StartAt.IsZero() || !in.StartAt.Before(in.EndAt) {
		return model.Hold{}, apperror.New(apperror.CodeInvalidTimeWindow, "start_at must be before end_at")
	}
	if game.DurationMins > 0 && in.EndAt.Sub(in.StartAt) != time.Duration(game.DurationMins)*time.Minute {
		return model.Hold{}, apperror.Newf(apperror.CodeInvalidTimeWindow, "a session of this game lasts %d minutes", game.DurationMins).
			With("durationMins", game.DurationMins)
	}
	quote, err := pricing.Calculate(&org, game, in.Players)
	if err != nil {
		return model.Hold{}, err
	}

	start, end := in.StartAt.UTC(), in.EndAt.UTC()
	window := availability.BlockingWindow(start, end, game.BufferMins)
	buffer := time.Duration(game.BufferMins) * time.Minute

	for attempt := 1; attempt <= maxHoldAttempts; attempt++ {
		// the room is read first so the version guards everything read after it
		room, err = s.store.GetRoom(ctx, in.OrgID, in.RoomID)
		if err != nil {
			return model.Hold{}, lookup(err, apperror.CodeRoomNotFound, "room", in.RoomID)
		}
		holds, err := s.store.ListActiveHolds(ctx, in.OrgID, game.ID, start.Add(-buffer), window.End)
		if err != nil {
			return model.Hold{}, fmt.Errorf("list holds: %w", err)
		}
		bookings, err := s.store.ListConfirmedBookings(ctx, in.OrgID, game.ID, start.Add(-buffer), window.End)
		if err != nil {
			return model.Hold{}, fmt.Errorf("list bookings: %w", err)
		}

		now := s.clock()
		d := availability.Evaluate(availability.RoomCheck{
			Room:        room,
			BufferMins:  game.BufferMins,
			BookingType: in.BookingType,
			Players:     in.Players,
			Window:      window,
			Holds:       holds,
			Bookings:    bookings,
			Now:         now,
		})
		if !d.Available {
			return model.Hold{}, rejection(d)
		}

		hold = model.Hold{
			ID:            uuid.NewString(),
			OrgID:         in.OrgID,
			GameID:        game.ID,
			RoomID:        room.ID,
			BookingType:   in.BookingType,
			StartAt:       start,
			EndAt:         end,
			Players:       in.Players,
			Status:        model.HoldActive,
			Customer:      in.Customer,
			PromoCode:     in.PromoCode,
			Currency:      quote.Currency,
			SubtotalCents: quote.SubtotalCents,
			FeeCents:      quote.FeeCents,
			TotalCents:    quote.TotalCents,
			CreatedAt:     now,
			ExpiresAt:     now.Add(model.HoldTTL),
			UpdatedAt:     now,
		}
		err = s.store.InsertHold(ctx, hold, room.Version)
		if errors.Is(err, repository.ErrConflict) {
			metrics.HoldWriteConflicts.Inc()
			s.log.Debug("hold insert lost room version race",
				zap.String("room_id", room.ID), zap.Int("attempt", attempt))
			continue
		}
		if err != nil {
			return model.Hold{}, fmt.Errorf("insert hold: %w", err)
		}

		metrics.HoldsCreated.WithLabelValues(string(in.BookingType)).Inc()
		s.log.Info("hold created",
			zap.String("org_id", hold.OrgID),
			zap.String("hold_id", hold.ID),
			zap.String("room_id", hold.RoomID),
			zap.String("booking_type", string(hold.BookingType)),
			zap.Time("start_at", hold.StartAt),
			zap.Int("players", hold.Players),
		)
		return hold, nil
	}
	return model.Hold{}, apperror.New(apperror.CodeSlotUnavailable, "the slot was taken by a concurrent request")
}

func rejection(d availability.Decision) error {
	if d.Code == apperror.CodeSlotCapacityExceeded {
		return apperror.Newf(d.Code, "only %d places left in this session", d.Remaining).
			With("remainingPlayers", d.Remaining)
	}
	return apperror.New(apperror.CodeSlotUnavailable, "the room is not available for this session")
}

// GetHold returns a hold with lazy expiry applied to its status.
func (s *Service) GetHold(ctx context.Context, orgID, holdID string) (model.Hold, error) {
	hold, err := s.loadHold(ctx, orgID, holdID)
	if err != nil {
		return model.Hold{}, err
	}
	hold.Status = hold.EffectiveStatus(s.clock())
	return hold, nil
}

// CancelHold moves an active hold to canceled.  Holds that are already
// terminal, including lapsed ones, are returned unchanged.
func (s *Service) CancelHold(ctx context.Context, orgID, holdID string) (model.Hold, error) {
	hold, err := s.loadHold(ctx, orgID, holdID)
	if err != nil {
		return model.Hold{}, err
	}
	now := s.clock()
	if hold.EffectiveStatus(now) != model.HoldActive {
		hold.Status = hold.EffectiveStatus(now)
		return hold, nil
	}
	ok, err := s.store.TransitionHold(ctx, orgID, holdID, []model.HoldStatus{model.HoldActive}, model.HoldCanceled, "", now)
	if err != nil {
		return model.Hold{}, fmt.Errorf("cancel hold %s: %w", holdID, err)
	}
	if ok {
		s.log.Info("hold canceled", zap.String("org_id", orgID), zap.String("hold_id", holdID))
	}
	return s.GetHold(ctx, orgID, holdID)
}

// ExpireStaleHolds persists the expiry of every lapsed active hold and
// returns how many changed.  Lazy expiry already hides them from every
// decision; this keeps storage in line.
func (s *Service) ExpireStaleHolds(ctx context.Context) (int64, error) {
	n, err := s.store.ExpireHolds(ctx, s.clock())
	if err != nil {
		return 0, fmt.Errorf("expire stale holds: %w", err)
	}
	if n > 0 {
		metrics.HoldsExpired.Add(float64(n))
		s.log.Info("expired stale holds", zap.Int64("count", n))
	}
	return n, nil
}
