package scheduler

import (
	"context"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// NotificationCleaner removes notifications past their expiry.
type NotificationCleaner interface {
	DeleteExpiredNotifications(ctx context.Context) error
}

// CounterSweeper drops expired rate limit counters held in memory.
type CounterSweeper interface {
	Sweep() int
}

// NewCleanupCron registers the periodic cleanup jobs. sweeper may be nil when
// counters live in Mongo, where the TTL index expires them. The caller starts
// and stops the returned scheduler.
func NewCleanupCron(notifications NotificationCleaner, sweeper CounterSweeper) (*cron.Cron, error) {
	c := cron.New()

	// Expired notifications
	if _, err := c.AddFunc("@hourly", func() {
		if err := notifications.DeleteExpiredNotifications(context.Background()); err != nil {
			logrus.WithError(err).Error("DeleteExpiredNotifications failed")
		}
	}); err != nil {
		return nil, err
	}

	// Rate limit counters
	if sweeper != nil {
		if _, err := c.AddFunc("@every 1m", func() {
			if n := sweeper.Sweep(); n > 0 {
				logrus.WithField("removed", n).Debug("Swept expired rate limit counters")
			}
		}); err != nil {
			return nil, err
		}
	}

	return c, nil
}
