package jobs

import (
	"context"
	"time"

	"gomate-backend/internal/domain"
	"gomate-backend/internal/logger"
)

// SweepTeamStatuses advances teams whose hike window has started or ended.
// The read path derives the same statuses on the fly, so this only persists
// what readers already see.
func (jr *JobRunner) SweepTeamStatuses() {
	jr.runWithRecovery("SweepTeamStatuses", func() {
		ctx := context.Background()

		count, err := jr.services.Team.SweepSchedule(ctx, time.Now().UTC())
		if err != nil {
			logger.Error("Failed to sweep team statuses", "error", err)
			return
		}
		logger.Info("Swept team statuses", "transitioned", count)
	})
}

// SendHikeReminders emails approved members of teams whose hike starts
// within the next 24 hours.
func (jr *JobRunner) SendHikeReminders() {
	jr.runWithRecovery("SendHikeReminders", func() {
		ctx := context.Background()
		now := time.Now().UTC()

		teams, err := jr.store.TeamRepository.ListStartingBetween(ctx, now, now.Add(24*time.Hour))
		if err != nil {
			logger.Error("Failed to list upcoming teams", "error", err)
			return
		}

		sent := 0
		for _, team := range teams {
			users, _, err := jr.store.TeamRepository.ListMembers(ctx, team.ID, domain.MembershipStatusApproved)
			if err != nil {
				logger.Error("Failed to list team members", "team_id", team.ID, "error", err)
				continue
			}
			for _, user := range users {
				if err := jr.services.Email.SendHikeReminder(ctx, user.Email, user.Name, team.Title, team.StartTime); err != nil {
					logger.Error("Failed to send hike reminder",
						"team_id", team.ID,
						"user_id", user.ID,
						"error", err)
					continue
				}
				sent++
			}
		}
		logger.Info("Sent hike reminders", "teams", len(teams), "emails", sent)
	})
}
