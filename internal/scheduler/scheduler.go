package scheduler

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strconv"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"

	"DrawdownSentinel/internal/collector"
	"DrawdownSentinel/internal/metrics"
	"DrawdownSentinel/internal/model"
	"DrawdownSentinel/internal/notifier"
	"DrawdownSentinel/internal/recorder"
	"DrawdownSentinel/internal/watchlist"
)

const historyLimit = 10

// Notifier delivers reports and plain replies to the chat.
type Notifier interface {
	Deliver(ctx context.Context, rep *model.DailyReport) model.DeliveryResult
	SendWithRetry(ctx context.Context, text string, maxRetries int) error
}

// Scheduler manages the daily report job and bot commands.
type Scheduler struct {
	Cron      *cron.Cron
	Collector *collector.Collector
	Watchlist *watchlist.Store
	Notifier  Notifier
	Recorder  recorder.Recorder
	Metrics   *metrics.Metrics
	Period    model.Period
	Ctx       context.Context
}

// NewScheduler creates a new Scheduler. loc may be nil for the local zone.
func NewScheduler(ctx context.Context, col *collector.Collector, wl *watchlist.Store, n Notifier,
	rec recorder.Recorder, m *metrics.Metrics, period model.Period, loc *time.Location) *Scheduler {
	if loc == nil {
		loc = time.Local
	}
	if rec == nil {
		rec = recorder.NewNoopRecorder()
	}
	return &Scheduler{
		Cron:      cron.New(cron.WithSeconds(), cron.WithLocation(loc)),
		Collector: col,
		Watchlist: wl,
		Notifier:  n,
		Recorder:  rec,
		Metrics:   m,
		Period:    period,
		Ctx:       ctx,
	}
}

// RegisterDaily registers the daily report job.
func (s *Scheduler) RegisterDaily(dailyCron string) error {
	if _, err := s.Cron.AddFunc(dailyCron, s.dailyTask); err != nil {
		return fmt.Errorf("register daily task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Info("scheduler started")
}

// Stop stops the cron scheduler and waits for a running job.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	log.Info("scheduler stopped")
}

func (s *Scheduler) dailyTask() {
	log.Infof("running daily report (%s)", s.Period)
	s.RunReport(s.Period)
}

// RunReport builds a report for the current watch-list, delivers it and
// records the outcome.
func (s *Scheduler) RunReport(period model.Period) model.DeliveryResult {
	rep := s.Collector.Collect(s.Ctx, s.Watchlist.Snapshot(), period)

	res := s.Notifier.Deliver(s.Ctx, rep)
	s.Metrics.RecordDelivery(res.OK)
	if res.OK {
		log.Infof("report delivered (message_id: %s)", res.MessageID)
	} else {
		log.Errorf("report delivery failed: %s", res.Error)
	}

	if err := s.Recorder.RecordReport(rep, res); err != nil {
		log.Errorf("record report: %v", err)
	}
	return res
}

// HandleCommand processes a user command and returns a reply.
func (s *Scheduler) HandleCommand(command string) string {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return notifier.FormatHelp()
	}
	name := strings.ToLower(fields[0])
	if i := strings.IndexByte(name, '@'); i > 0 {
		name = name[:i]
	}
	args := fields[1:]

	switch name {
	case "/report":
		return s.cmdReport(args)
	case "/list":
		return notifier.FormatWatchlist(s.Watchlist.Snapshot())
	case "/add":
		return s.cmdAdd(args)
	case "/remove":
		return s.cmdRemove(args)
	case "/ma":
		return s.cmdTrend(args)
	case "/history":
		return s.cmdHistory(args)
	default:
		return notifier.FormatHelp()
	}
}

func (s *Scheduler) cmdReport(args []string) string {
	period := s.Period
	if len(args) > 0 {
		p, err := model.ParsePeriod(args[0])
		if err != nil {
			return "❌ " + html.EscapeString(err.Error())
		}
		period = p
	}
	res := s.RunReport(period)
	if !res.OK {
		return "❌ delivery failed: " + html.EscapeString(res.Error)
	}
	return ""
}

func (s *Scheduler) cmdAdd(args []string) string {
	if len(args) == 0 {
		return "usage: /add SYM"
	}
	sym, err := s.Watchlist.Add(args[0])
	switch {
	case errors.Is(err, watchlist.ErrSymbolExists):
		return fmt.Sprintf("⚠️ %s is already on the watch-list", html.EscapeString(sym))
	case err != nil:
		return commandError(err)
	}
	log.WithField("symbol", sym).Info("symbol added")
	return fmt.Sprintf("✅ %s added", html.EscapeString(sym))
}

func (s *Scheduler) cmdRemove(args []string) string {
	if len(args) == 0 {
		return "usage: /remove SYM"
	}
	sym, err := s.Watchlist.Remove(args[0])
	switch {
	case errors.Is(err, watchlist.ErrSymbolNotFound):
		return fmt.Sprintf("⚠️ %s is not on the watch-list", html.EscapeString(sym))
	case err != nil:
		return commandError(err)
	}
	log.WithField("symbol", sym).Info("symbol removed")
	return fmt.Sprintf("🗑 %s removed", html.EscapeString(sym))
}

func (s *Scheduler) cmdTrend(args []string) string {
	if len(args) != 2 {
		return "usage: /ma SYM on|off"
	}
	var enable bool
	switch strings.ToLower(args[1]) {
	case "on":
		enable = true
	case "off":
	default:
		return "usage: /ma SYM on|off"
	}

	sym, err := s.Watchlist.SetTrend(args[0], enable)
	esc := html.EscapeString(sym)
	switch {
	case errors.Is(err, watchlist.ErrSymbolNotFound):
		return fmt.Sprintf("⚠️ %s is not on the watch-list", esc)
	case errors.Is(err, watchlist.ErrAlreadyEnabled):
		return fmt.Sprintf("⚠️ MA analysis already on for %s", esc)
	case errors.Is(err, watchlist.ErrNotEnabled):
		return fmt.Sprintf("⚠️ MA analysis already off for %s", esc)
	case err != nil:
		return commandError(err)
	}
	log.WithFields(log.Fields{"symbol": sym, "enabled": enable}).Info("trend analysis toggled")
	if enable {
		return fmt.Sprintf("📈 MA analysis on for %s", esc)
	}
	return fmt.Sprintf("📉 MA analysis off for %s", esc)
}

func (s *Scheduler) cmdHistory(args []string) string {
	if len(args) == 0 {
		return "usage: /history SYM [n]"
	}
	sym := watchlist.Normalize(args[0])
	limit := historyLimit
	if len(args) > 1 {
		n, err := strconv.Atoi(args[1])
		if err != nil || n <= 0 {
			return "usage: /history SYM [n]"
		}
		limit = n
	}
	snaps, err := s.Recorder.History(sym, limit)
	if err != nil {
		log.Errorf("history %s: %v", sym, err)
		return commandError(err)
	}
	return notifier.FormatHistory(sym, snaps)
}

func commandError(err error) string {
	if errors.Is(err, watchlist.ErrEmptySymbol) {
		return "❌ symbol is empty"
	}
	return "❌ " + html.EscapeString(err.Error())
}
