package cron

import (
	"context"
	"time"

	"bookify/config"
	providerRepo "bookify/database/repository/provider"
	"bookify/services/availability"
	"bookify/services/payout"
	"bookify/services/slotlock"
	"bookify/utils"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

const (
	TypePayoutProcessDue = "payout:process_due"
	TypeSlotLockSweep    = "slots:sweep_locks"
	TypeSlotCacheRefresh = "slots:refresh"
)

// InitWorkers starts the background task server and the periodic scheduler:
// payout processing every 15 minutes, slot-lock sweeping every 5 and a
// slot-cache warm-up for active providers every 30.
func InitWorkers(payoutSvc payout.Service, lockSvc slotlock.Service,
	availabilitySvc availability.Service, providers providerRepo.ProviderRepository) {
	logger := utils.GetLogger()

	redisOpts := asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisQueueDB,
	}

	srv := asynq.NewServer(redisOpts, asynq.Config{
		Concurrency: 4,
		Queues: map[string]int{
			"default": 1,
		},
	})

	mux := asynq.NewServeMux()
	mux.HandleFunc(TypePayoutProcessDue, handlePayoutProcessDue(payoutSvc))
	mux.HandleFunc(TypeSlotLockSweep, handleSlotLockSweep(lockSvc))
	mux.HandleFunc(TypeSlotCacheRefresh, handleSlotCacheRefresh(availabilitySvc, providers))

	go func() {
		logger.Info("starting background task worker")
		const maxAttempts = 5
		for attempt := 1; attempt <= maxAttempts; attempt++ {
			if err := srv.Run(mux); err != nil {
				logger.Error("task worker failed to start",
					zap.Int("attempt", attempt), zap.Error(err))
				if attempt == maxAttempts {
					logger.Fatal("task worker exhausted start attempts")
				}
				time.Sleep(time.Duration(attempt*2) * time.Second)
			} else {
				break
			}
		}
	}()

	scheduler := asynq.NewScheduler(redisOpts, &asynq.SchedulerOpts{})
	mustRegister(scheduler, "@every 15m", asynq.NewTask(TypePayoutProcessDue, nil))
	mustRegister(scheduler, "@every 5m", asynq.NewTask(TypeSlotLockSweep, nil))
	mustRegister(scheduler, "@every 30m", asynq.NewTask(TypeSlotCacheRefresh, nil))

	go func() {
		logger.Info("starting periodic task scheduler")
		if err := scheduler.Run(); err != nil {
			logger.Fatal("periodic scheduler failed", zap.Error(err))
		}
	}()
}

func mustRegister(s *asynq.Scheduler, spec string, task *asynq.Task) {
	if _, err := s.Register(spec, task); err != nil {
		utils.GetLogger().Fatal("failed to register periodic task",
			zap.String("task", task.Type()), zap.Error(err))
	}
}

func handlePayoutProcessDue(svc payout.Service) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		report, err := svc.ProcessDue(ctx)
		if err != nil {
			utils.GetLogger().Error("payout processing pass failed", zap.Error(err))
			return err
		}
		if report.Completed+report.Rescheduled+report.Failed > 0 {
			utils.GetLogger().Info("payout processing pass finished",
				zap.Int("completed", report.Completed),
				zap.Int("rescheduled", report.Rescheduled),
				zap.Int("failed", report.Failed))
		}
		return nil
	}
}

// handleSlotCacheRefresh warms the slot cache for today and tomorrow so the
// first availability lookup after an invalidation does not pay the compute
// cost on the request path. Failures for one provider do not stop the pass.
func handleSlotCacheRefresh(svc availability.Service, providers providerRepo.ProviderRepository) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		ids, err := providers.ListActiveIDs(ctx)
		if err != nil {
			utils.GetLogger().Error("slot cache refresh: listing providers failed", zap.Error(err))
			return err
		}
		now := time.Now()
		dates := []string{
			now.Format(utils.DateLayout),
			now.AddDate(0, 0, 1).Format(utils.DateLayout),
		}
		var failed int
		for _, id := range ids {
			for _, date := range dates {
				if _, err := svc.GetDaySlots(ctx, id, date, 0); err != nil {
					failed++
					utils.GetLogger().Warn("slot cache refresh failed for provider",
						zap.String("provider_id", id), zap.String("date", date), zap.Error(err))
				}
			}
		}
		utils.GetLogger().Info("slot cache refresh finished",
			zap.Int("providers", len(ids)), zap.Int("failed", failed))
		return nil
	}
}

func handleSlotLockSweep(svc slotlock.Service) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		swept, err := svc.Sweep(ctx)
		if err != nil {
			utils.GetLogger().Error("slot lock sweep failed", zap.Error(err))
			return err
		}
		if swept > 0 {
			utils.GetLogger().Info("slot lock sweep finished", zap.Int("swept", swept))
		}
		return nil
	}
}
