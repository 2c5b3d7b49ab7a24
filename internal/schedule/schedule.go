// Package schedule opens and tears down the two protocol sessions
// against the exchange trading calendar: a once-per-minute evaluation
// of the current UTC+8 wall clock against fixed session windows.
package schedule

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/tabxx/ctpbridge/internal/observ"
)

// Window is a half-open trading session [Start, End) in minutes of the
// UTC+8 day. End < Start marks a window that wraps past midnight.
type Window struct {
	Start int
	End   int
}

// Contains reports whether the minute-of-day falls inside the window.
func (w Window) Contains(minute int) bool {
	if w.End < w.Start {
		return minute >= w.Start || minute < w.End
	}
	return minute >= w.Start && minute < w.End
}

func minuteOf(h, m int) int { return h*60 + m }

// DefaultWindows are the exchange trading sessions: 08:40-11:40,
// 13:20-15:10 and the night session 20:50-02:40.
func DefaultWindows() []Window {
	return []Window{
		{Start: minuteOf(8, 40), End: minuteOf(11, 40)},
		{Start: minuteOf(13, 20), End: minuteOf(15, 10)},
		{Start: minuteOf(20, 50), End: minuteOf(2, 40)},
	}
}

// dayCloseMinute is the window end that closes the trading day; the
// archiver runs there.
const dayCloseMinute = 15*60 + 10

// Sessions is what the scheduler drives: open both sessions, tear both
// down. Both must be idempotent.
type Sessions interface {
	Connect() error
	Disconnect() error
}

// Workflow is the slice of the trading workflow the scheduler needs at
// window close.
type Workflow interface {
	// TradingDay is the business date latched at the most recent login.
	TradingDay() string
	// Teardown unsubscribes live instruments and clears session state.
	Teardown()
}

// Archiver packages one trading day's recorded artifacts.
type Archiver interface {
	Archive(tradingDay string) error
}

// Scheduler re-evaluates the clock once per minute. Boundary matching
// is by exact minute equality; a tick delayed past a boundary minute
// skips that transition.
type Scheduler struct {
	windows  []Window
	sessions Sessions
	workflow Workflow
	archiver Archiver
	log      *zap.Logger

	loc *time.Location
	now func() time.Time
}

func New(sessions Sessions, workflow Workflow, archiver Archiver, log *zap.Logger) *Scheduler {
	return &Scheduler{
		windows:  DefaultWindows(),
		sessions: sessions,
		workflow: workflow,
		archiver: archiver,
		log:      log.Named("schedule"),
		loc:      time.FixedZone("UTC+8", 8*60*60),
		now:      time.Now,
	}
}

// Run ticks until the context is canceled. If the process starts
// mid-window the sessions connect immediately rather than waiting for
// the next boundary.
func (s *Scheduler) Run(ctx context.Context) {
	if s.inWindow(s.now()) {
		s.log.Info("inside trading window, connecting immediately")
		s.connect()
	} else {
		s.log.Info("outside trading windows, waiting for boundary")
	}

	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case t := <-ticker.C:
			s.Tick(t)
		}
	}
}

// Tick evaluates one clock reading. Exported for tests; Run calls it
// once per minute.
func (s *Scheduler) Tick(t time.Time) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("tick panic", zap.Any("panic", r))
		}
	}()

	local := t.In(s.loc)
	minute := minuteOf(local.Hour(), local.Minute())

	for _, w := range s.windows {
		switch minute {
		case w.Start:
			s.log.Info("trading window open", zap.Int("minute", minute))
			s.connect()
			return
		case w.End:
			s.log.Info("trading window close", zap.Int("minute", minute))
			s.teardown(minute)
			return
		}
	}
}

func (s *Scheduler) inWindow(t time.Time) bool {
	local := t.In(s.loc)
	minute := minuteOf(local.Hour(), local.Minute())
	for _, w := range s.windows {
		if w.Contains(minute) {
			return true
		}
	}
	return false
}

func (s *Scheduler) connect() {
	observ.IncCounter("trading_window_transitions_total", map[string]string{"kind": "open"})
	observ.SetGauge("trading_window_open", 1, nil)
	if err := s.sessions.Connect(); err != nil {
		s.log.Error("connect", zap.Error(err))
	}
}

// teardown closes the sessions; the day-close boundary additionally
// archives the just-ended trading day. The day key is captured before
// teardown clears it.
func (s *Scheduler) teardown(minute int) {
	observ.IncCounter("trading_window_transitions_total", map[string]string{"kind": "close"})
	observ.SetGauge("trading_window_open", 0, nil)
	day := s.workflow.TradingDay()
	s.workflow.Teardown()
	if err := s.sessions.Disconnect(); err != nil {
		s.log.Error("disconnect", zap.Error(err))
	}

	if minute != dayCloseMinute {
		return
	}
	if day == "" {
		s.log.Warn("trading day unknown, skipping archive")
		return
	}
	if err := s.archiver.Archive(day); err != nil {
		s.log.Error("archive", zap.String("trading_day", day), zap.Error(err))
		return
	}
	s.log.Info("archived", zap.String("trading_day", day))
}
