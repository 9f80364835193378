package service

import (
	"context"
	"time"

	"github.com/lexcase/lexcase-backend/internal/app/repository"
	"github.com/lexcase/lexcase-backend/pkg/logger"
)

// ReconciliationService sweeps recently committed registry and verification
// state and re-derives any audit entries or notifications a crashed dispatch
// left behind. Every re-dispatch is dedup-keyed, so sweeping rows whose
// effects already landed is a no-op.
type ReconciliationService interface {
	Reconcile(ctx context.Context, since time.Time) error
}

type reconciliationService struct {
	documents     repository.DocumentRepository
	verifications repository.VerificationRepository
	dispatcher    *SideEffectDispatcher
}

func NewReconciliationService(documents repository.DocumentRepository, verifications repository.VerificationRepository, dispatcher *SideEffectDispatcher) ReconciliationService {
	return &reconciliationService{
		documents:     documents,
		verifications: verifications,
		dispatcher:    dispatcher,
	}
}

func (s *reconciliationService) Reconcile(ctx context.Context, since time.Time) error {
	docs, err := s.documents.ListUploadedSince(since)
	if err != nil {
		logger.Error("Reconciliation failed to list documents", err)
		return err
	}
	for i := range docs {
		if err := s.dispatcher.DocumentAttached(ctx, &docs[i]); err != nil {
			logger.Warn("Reconciliation left document for next sweep", map[string]interface{}{
				"document_id": docs[i].ID,
				"error":       err.Error(),
			})
		}
	}

	decided, err := s.verifications.ListDecidedSince(since)
	if err != nil {
		logger.Error("Reconciliation failed to list decided requests", err)
		return err
	}
	for i := range decided {
		if err := s.dispatcher.VerificationDecided(ctx, &decided[i]); err != nil {
			logger.Warn("Reconciliation left request for next sweep", map[string]interface{}{
				"request_id": decided[i].ID,
				"error":      err.Error(),
			})
		}
	}

	logger.Info("Reconciliation sweep finished", map[string]interface{}{
		"documents": len(docs),
		"requests":  len(decided),
		"since":     since,
	})
	return nil
}
