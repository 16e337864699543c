package jobs

import (
	"context"
	"fmt"
	"time"

	"equiprent-backend/internal/logger"
)

// SendBookingReminders emails renters whose approved bookings start
// tomorrow and drops a matching in-app notification.
func (jr *JobRunner) SendBookingReminders() {
	jr.runWithRecovery("SendBookingReminders", func() {
		ctx := context.Background()

		tomorrow := time.Now().UTC().AddDate(0, 0, 1).Format("2006-01-02")
		bookings, err := jr.store.BookingRepository.ListApprovedStartingOn(ctx, tomorrow)
		if err != nil {
			logger.Error("Failed to query upcoming bookings", "error", err)
			return
		}

		count := 0
		for _, b := range bookings {
			if err := jr.services.Email.SendBookingReminder(ctx, b.RenterEmail, b.RenterFirstName, b.EquipmentTitle, b.StartDate); err != nil {
				logger.Error("Failed to send booking reminder email",
					"bookingId", b.ID, "renterId", b.RenterID, "error", err)
				continue
			}

			jr.services.Notifications.Notify(ctx, b.RenterID, "booking_reminder",
				"Your rental starts tomorrow",
				fmt.Sprintf("Your booking for %q starts on %s. Make sure you are ready for pickup.", b.EquipmentTitle, b.StartDate),
				map[string]string{"bookingId": fmt.Sprintf("%d", b.ID)})
			count++
		}

		if count > 0 {
			logger.Info("Booking reminders sent", "count", count, "startDate", tomorrow)
		}
	})
}
