// Package booking is the write side of the engine: it creates and cancels
// holds, confirms them into bookings and expires stale ones.  It also
// serves the read queries (slots, calendar, quotes) so handlers only talk
// to one service.
package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/iliyamo/venue-booking/internal/apperror"
	"github.com/iliyamo/venue-booking/internal/model"
	"github.com/iliyamo/venue-booking/internal/repository"
)

// Notification is what a Notifier receives after a first-time
// confirmation.  Org and Game are best effort and may be zero.
type Notification struct {
	Booking model.Booking
	Org     model.Org
	Game    model.Game
}

// Notifier delivers booking confirmations out of band.  Errors are logged
// by the service and never fail a confirmation.
type Notifier interface {
	BookingConfirmed(ctx context.Context, n Notification) error
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(ctx context.Context, n Notification) error

func (f NotifierFunc) BookingConfirmed(ctx context.Context, n Notification) error { return f(ctx, n) }

type nopNotifier struct{}

func (nopNotifier) BookingConfirmed(context.Context, Notification) error { return nil }

const (
	// hold inserts that lose the room version race are re-validated this
	// many times before the slot is reported unavailable
	maxHoldAttempts = 3

	notifyTimeout = 5 * time.Second
)

// Service implements hold management, confirmation and the availability
// read path on top of a repository.Store.
type Service struct {
	store    repository.Store
	notifier Notifier
	log      *zap.Logger
	now      func() time.Time
}

// NewService wires a Service.  A nil notifier disables notifications, a
// nil logger discards logs and a nil clock uses time.Now.
func NewService(store repository.Store, notifier Notifier, log *zap.Logger, now func() time.Time) *Service {
	if notifier == nil {
		notifier = nopNotifier{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	if now == nil {
		now = time.Now
	}
	return &Service{store: store, notifier: notifier, log: log, now: now}
}

func (s *Service) clock() time.Time { return s.now().UTC() }

// lookup maps repository.ErrNotFound to the given domain code and wraps
// any other storage error.
func lookup(err error, code, what, id string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, repository.ErrNotFound) {
		return apperror.Newf(code, "%s %q not found", what, id)
	}
	return fmt.Errorf("load %s %s: %w", what, id, err)
}

func (s *Service) loadOrg(ctx context.Context, orgID string) (model.Org, error) {
	org, err := s.store.GetOrg(ctx, orgID)
	return org, lookup(err, apperror.CodeOrgNotFound, "org", orgID)
}

func (s *Service) loadGame(ctx context.Context, orgID, gameID string) (model.Game, error) {
	game, err := s.store.GetGame(ctx, orgID, gameID)
	return game, lookup(err, apperror.CodeGameNotFound, "game", gameID)
}

func (s *Service) loadHold(ctx context.Context, orgID, holdID string) (model.Hold, error) {
	hold, err := s.store.GetHold(ctx, orgID, holdID)
	return hold, lookup(err, apperror.CodeHoldNotFound, "hold", holdID)
}
