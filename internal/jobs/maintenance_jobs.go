package jobs

import (
	"context"
	"time"

	"equiprent-backend/internal/logger"
)

// retention period for read notifications before they are pruned
const readNotificationRetention = 90 * 24 * time.Hour

// ExpireOTPCodes clears verification codes whose expiry has passed so
// that stale codes can never be replayed.
func (jr *JobRunner) ExpireOTPCodes() {
	jr.runWithRecovery("ExpireOTPCodes", func() {
		ctx := context.Background()

		cleared, err := jr.store.UserRepository.ExpireOTPCodes(ctx, time.Now().UTC())
		if err != nil {
			logger.Error("Failed to expire OTP codes", "error", err)
			return
		}
		if cleared > 0 {
			logger.Info("Expired OTP codes cleared", "count", cleared)
		}
	})
}

// PruneReadNotifications deletes read notifications older than the
// retention period to keep the table small.
func (jr *JobRunner) PruneReadNotifications() {
	jr.runWithRecovery("PruneReadNotifications", func() {
		ctx := context.Background()

		cutoff := time.Now().UTC().Add(-readNotificationRetention)
		pruned, err := jr.store.NotificationRepository.PruneRead(ctx, cutoff)
		if err != nil {
			logger.Error("Failed to prune read notifications", "error", err)
			return
		}
		if pruned > 0 {
			logger.Info("Pruned read notifications", "count", pruned)
		}
	})
}
