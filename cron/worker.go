package cron

import (
	"context"
	"time"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"frontdesk/config"
	integrationRepo "frontdesk/database/repository/integration"
	pendingRepo "frontdesk/database/repository/pending"
	"frontdesk/services/notification"
	"frontdesk/utils"
)

const (
	// TypePendingRemind reminds staff about review requests left open too long.
	TypePendingRemind = "pending:remind"
	// TypeIntegrationSweep flags credentials that lapsed without a refresh.
	TypeIntegrationSweep = "integration:sweep"
)

func redisOpts() asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisQueueDB,
	}
}

// InitWorker runs the background worker and its periodic schedule.
func InitWorker(
	pendings pendingRepo.PendingBookingRepository,
	integrations integrationRepo.IntegrationRepository,
	notifSvc notification.NotificationService,
) {
	logger := utils.GetLogger()

	srv := asynq.NewServer(redisOpts(), asynq.Config{
		Concurrency: 5,
		Queues: map[string]int{
			"default": 1,
		},
	})

	mux := asynq.NewServeMux()
	mux.HandleFunc(TypePendingRemind, handlePendingRemind(pendings, notifSvc))
	mux.HandleFunc(TypeIntegrationSweep, handleIntegrationSweep(integrations, notifSvc))

	scheduler := asynq.NewScheduler(redisOpts(), nil)
	if _, err := scheduler.Register("@every 15m", asynq.NewTask(TypePendingRemind, nil)); err != nil {
		logger.Error("failed to register pending reminder schedule", zap.Error(err))
	}
	if _, err := scheduler.Register("@every 30m", asynq.NewTask(TypeIntegrationSweep, nil)); err != nil {
		logger.Error("failed to register integration sweep schedule", zap.Error(err))
	}

	go func() {
		if err := scheduler.Run(); err != nil {
			logger.Error("asynq scheduler stopped", zap.Error(err))
		}
	}()
	go func() {
		if err := srv.Run(mux); err != nil {
			logger.Error("asynq worker stopped", zap.Error(err))
		}
	}()
}

func handlePendingRemind(
	pendings pendingRepo.PendingBookingRepository,
	notifSvc notification.NotificationService,
) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		age := time.Duration(config.AppConfig.PendingReminderAfterMin) * time.Minute
		cutoff := time.Now().UTC().Add(-age)

		stale, err := pendings.ListStale(ctx, cutoff)
		if err != nil {
			return err
		}
		for i := range stale {
			if err := notifSvc.NotifyStaffPendingReview(ctx, &stale[i]); err != nil {
				utils.GetLogger().Warn("pending review reminder failed",
					zap.String("pendingID", stale[i].ID), zap.Error(err))
			}
		}
		return nil
	}
}

func handleIntegrationSweep(
	integrations integrationRepo.IntegrationRepository,
	notifSvc notification.NotificationService,
) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		// Look an hour ahead so staff hear about a dying credential before
		// live calls start failing. Actual refresh happens on the request path.
		lapsed, err := integrations.ListExpiring(ctx, time.Now().UTC().Add(time.Hour))
		if err != nil {
			return err
		}
		for i := range lapsed {
			if err := notifSvc.NotifyIntegrationExpired(ctx, &lapsed[i]); err != nil {
				utils.GetLogger().Warn("integration expiry notice failed",
					zap.String("integrationID", lapsed[i].ID), zap.Error(err))
			}
		}
		return nil
	}
}
