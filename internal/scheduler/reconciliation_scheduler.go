package scheduler

import (
	"context"
	"time"

	"github.com/lexcase/lexcase-backend/internal/app/service"
	"github.com/lexcase/lexcase-backend/pkg/logger"
	"github.com/robfig/cron/v3"
)

// lookback covers the longest plausible gap between a commit and its sweep,
// with slack for clock skew between app instances
const lookback = 2 * time.Hour

// ReconciliationScheduler 감사 로그 정합성 스케줄러
type ReconciliationScheduler struct {
	cron       *cron.Cron
	reconciler service.ReconciliationService
	spec       string
}

// NewReconciliationScheduler 정합성 스케줄러 생성
func NewReconciliationScheduler(reconciler service.ReconciliationService, spec string) *ReconciliationScheduler {
	return &ReconciliationScheduler{
		cron:       cron.New(),
		reconciler: reconciler,
		spec:       spec,
	}
}

// Start 스케줄러 시작
func (s *ReconciliationScheduler) Start() error {
	_, err := s.cron.AddFunc(s.spec, func() {
		logger.Info("Starting scheduled audit reconciliation sweep", nil)

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()

		if err := s.reconciler.Reconcile(ctx, time.Now().Add(-lookback)); err != nil {
			logger.Error("Scheduled reconciliation sweep failed", err)
			return
		}
	})

	if err != nil {
		logger.Error("Failed to add cron job for audit reconciliation", err)
		return err
	}

	s.cron.Start()
	logger.Info("Reconciliation scheduler started", map[string]interface{}{
		"spec": s.spec,
	})

	return nil
}

// Stop 스케줄러 중지
func (s *ReconciliationScheduler) Stop() {
	logger.Info("Stopping reconciliation scheduler...", nil)
	s.cron.Stop()
	logger.Info("Reconciliation scheduler stopped", nil)
}
