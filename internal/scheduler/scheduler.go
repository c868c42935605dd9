package scheduler

import (
	"context"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/dairyops/milkledger/internal/config"
	"github.com/dairyops/milkledger/internal/domain/models"
	"github.com/dairyops/milkledger/internal/service/payments"
	"github.com/dairyops/milkledger/pkg/clients/mailer"
)

// Scheduler drives the payment reminder tick. Once per wall-clock minute it
// reads the stored reminder configs and, per shift, dispatches the unpaid
// report when the current minute equals the configured target time. A tick
// that lands past the target minute does not fire.
type Scheduler struct {
	cron        *cron.Cron
	paymentsSvc *payments.Service
	mailClient  mailer.Client
	cfg         config.MailerConfig
	loc         *time.Location
	now         func() time.Time
	logger      *zap.Logger
}

// NewScheduler creates a new scheduler instance. mailClient may be nil, in
// which case ticks evaluate but nothing is sent.
func NewScheduler(cfg config.MailerConfig, paymentsSvc *payments.Service, mailClient mailer.Client, loc *time.Location, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if loc == nil {
		loc = time.Local
	}

	// SkipIfStillRunning keeps ticks serialized with themselves; a slow
	// dispatch drops the next minute instead of overlapping it.
	c := cron.New(
		cron.WithLocation(loc),
		cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)),
	)

	return &Scheduler{
		cron:        c,
		paymentsSvc: paymentsSvc,
		mailClient:  mailClient,
		cfg:         cfg,
		loc:         loc,
		now:         time.Now,
		logger:      logger,
	}
}

// Start starts the scheduler.
func (s *Scheduler) Start() {
	s.logger.Info("starting reminder scheduler")

	_, err := s.cron.AddFunc("* * * * *", s.tick)
	if err != nil {
		s.logger.Error("failed to schedule reminder tick", zap.Error(err))
	}

	s.cron.Start()
}

// Stop stops the scheduler.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping reminder scheduler")
	s.cron.Stop()
}

func (s *Scheduler) tick() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	s.evaluate(ctx, s.now())
}

// evaluate runs one tick as of the given instant. Configs are read fresh so
// a restart or a config change never needs in-process state.
func (s *Scheduler) evaluate(ctx context.Context, asOf time.Time) {
	local := asOf.In(s.loc)
	minute := local.Format("15:04")
	today := local.Format(models.DateLayout)

	configs, err := s.paymentsSvc.Configs(ctx)
	if err != nil {
		s.logger.Error("failed to load reminder configs", zap.Error(err))
		return
	}

	for _, cfg := range configs {
		if !cfg.Enabled || cfg.TargetTime != minute {
			continue
		}
		s.dispatch(ctx, cfg.Shift, today)
	}
}

// dispatch sends the unpaid report for one shift. Send failures are logged
// and swallowed; the next minute's tick must not be affected.
func (s *Scheduler) dispatch(ctx context.Context, shift, date string) {
	rows, err := s.paymentsSvc.UnpaidReport(ctx, shift, date)
	if err != nil {
		s.logger.Error("failed to build unpaid report",
			zap.String("shift", shift), zap.Error(err))
		return
	}
	if len(rows) == 0 {
		s.logger.Info("no unpaid customers, skipping reminder",
			zap.String("shift", shift), zap.String("date", date))
		return
	}
	if s.mailClient == nil {
		s.logger.Warn("mailer not configured, dropping reminder",
			zap.String("shift", shift), zap.Int("rows", len(rows)))
		return
	}

	msg := mailer.Message{
		From:    s.cfg.FromAddress,
		To:      s.cfg.ReminderEmail,
		Subject: fmt.Sprintf("Unpaid Customers (%s) - %s", shift, date),
		HTML:    renderReminderHTML(shift, rows),
	}

	if err := s.mailClient.SendHTML(ctx, msg); err != nil {
		s.logger.Error("failed to send reminder mail",
			zap.String("shift", shift), zap.Error(err))
		return
	}

	s.logger.Info("reminder mail sent",
		zap.String("shift", shift),
		zap.String("date", date),
		zap.Int("rows", len(rows)))
}

func renderReminderHTML(shift string, rows []models.ReminderRow) string {
	var b strings.Builder

	fmt.Fprintf(&b, "<h2>Unpaid Customers - %s Shift</h2>", html.EscapeString(shift))
	b.WriteString("<table border='1' cellpadding='8' cellspacing='0'>")
	b.WriteString("<tr><th>Name</th><th>Litres</th><th>Rate</th><th>Total</th></tr>")

	for _, row := range rows {
		fmt.Fprintf(&b, "<tr><td>%s</td><td>%g</td><td>%g</td><td><b>%g</b></td></tr>",
			html.EscapeString(row.CustomerName), row.Quantity, row.Rate, row.Amount)
	}

	b.WriteString("</table>")
	return b.String()
}
