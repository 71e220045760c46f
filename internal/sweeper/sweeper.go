// Package sweeper persists hold expiry on a cron schedule.
package sweeper

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Expirer is the operation the sweeper schedules.
type Expirer interface {
	ExpireStaleHolds(ctx context.Context) (int64, error)
}

// Sweeper runs Expirer on a cron schedule.  A run still in progress when
// the next tick fires makes that tick a no-op.
type Sweeper struct {
	expirer Expirer
	log     *zap.Logger
	cron    *cron.Cron
	ctx     context.Context
	cancel  context.CancelFunc
}

// New parses schedule (standard five-field spec or descriptors such as
// "@every 1m") and returns a stopped sweeper.
func New(expirer Expirer, schedule string, log *zap.Logger) (*Sweeper, error) {
	if log == nil {
		log = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(context.Background())
	s := &Sweeper{expirer: expirer, log: log, ctx: ctx, cancel: cancel}
	s.cron = cron.New(cron.WithChain(
		cron.Recover(cronLogger{log}),
		cron.SkipIfStillRunning(cronLogger{log}),
	))
	if _, err := s.cron.AddFunc(schedule, func() { _, _ = s.RunOnce(s.ctx) }); err != nil {
		cancel()
		return nil, fmt.Errorf("invalid sweep schedule %q: %w", schedule, err)
	}
	return s, nil
}

// Start begins scheduling in the background.
func (s *Sweeper) Start() {
	s.cron.Start()
	s.log.Info("hold sweeper started")
}

// Stop halts scheduling, cancels a running sweep and waits for it to
// return or for ctx to end.
func (s *Sweeper) Stop(ctx context.Context) error {
	done := s.cron.Stop()
	s.cancel()
	select {
	case <-done.Done():
		s.log.Info("hold sweeper stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// RunOnce expires lapsed holds now.
func (s *Sweeper) RunOnce(ctx context.Context) (int64, error) {
	n, err := s.expirer.ExpireStaleHolds(ctx)
	if err != nil {
		s.log.Error("hold sweep failed", zap.Error(err))
		return 0, err
	}
	if n > 0 {
		s.log.Info("expired stale holds", zap.Int64("count", n))
	}
	return n, nil
}

// cronLogger adapts zap to cron.Logger.
type cronLogger struct{ log *zap.Logger }

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Sugar().Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Sugar().Errorw(msg, append(keysAndValues, "error", err)...)
}
