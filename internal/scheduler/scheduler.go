package scheduler

import (
	"context"
	"time"

	"github.com/go-co-op/gocron/v2"
	"go.uber.org/zap"

	"quicksell-bot/internal/messages"
	"quicksell-bot/internal/models"
)

// PaymentLister is the storage query the reminder job needs.
type PaymentLister interface {
	ListPaymentsExpiring(ctx context.Context, from, to int64) ([]models.ExpiringPayment, error)
}

// Sweeper drops expired conversation state.
type Sweeper interface {
	Sweep() int
}

type Deps struct {
	Bot      messages.Sender
	Payments PaymentLister
	Sessions Sweeper // nil when state lives in Redis
	Log      *zap.Logger
	Location *time.Location
}

// reminders go out this many days before a subscription ends
var remindAhead = []int{3, 1}

func Start(d Deps) (gocron.Scheduler, error) {
	s, err := gocron.NewScheduler(gocron.WithLocation(d.Location))
	if err != nil {
		return nil, err
	}

	if d.Sessions != nil {
		_, err = s.NewJob(
			gocron.DurationJob(5*time.Minute),
			gocron.NewTask(func() {
				if n := d.Sessions.Sweep(); n > 0 {
					d.Log.Debug("expired sessions dropped", zap.Int("count", n))
				}
			}),
		)
		if err != nil {
			return nil, err
		}
	}

	_, err = s.NewJob(
		gocron.DailyJob(1, gocron.NewAtTimes(gocron.NewAtTime(10, 0, 0))),
		gocron.NewTask(func() {
			ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
			defer cancel()
			RemindExpiring(ctx, d, time.Now())
		}),
	)
	if err != nil {
		return nil, err
	}

	s.Start()
	return s, nil
}

// RemindExpiring messages owners whose subscription ends 3 days or 1 day
// from now. Each window is one day wide so a daily run reminds once per
// window.
func RemindExpiring(ctx context.Context, d Deps, now time.Time) int {
	sent := 0
	for _, days := range remindAhead {
		from := now.Add(time.Duration(days-1) * 24 * time.Hour)
		to := from.Add(24 * time.Hour)

		due, err := d.Payments.ListPaymentsExpiring(ctx, from.Unix(), to.Unix())
		if err != nil {
			d.Log.Error("list expiring payments", zap.Error(err))
			return sent
		}
		for _, p := range due {
			if err := messages.SendExpiryReminder(d.Bot, p, now, d.Location); err != nil {
				d.Log.Warn("expiry reminder not sent",
					zap.Int64("chat_id", p.TelegramID), zap.Int64("payment_id", p.ID), zap.Error(err))
				continue
			}
			sent++
		}
	}
	return sent
}
