package services

import (
	"context"
	"time"

	"PrintStation/app/database"
)

// RetentionService prunes the print audit log in the background so the
// local database does not grow without bound.
type RetentionService struct {
	store    *database.Store
	logger   *LoggerService
	keepDays int
	interval time.Duration
}

// NewRetentionService creates a pruner keeping keepDays of audit history.
func NewRetentionService(store *database.Store, logger *LoggerService, keepDays int) *RetentionService {
	if keepDays <= 0 {
		keepDays = 7
	}
	return &RetentionService{
		store:    store,
		logger:   logger,
		keepDays: keepDays,
		interval: 24 * time.Hour,
	}
}

// Run prunes immediately (catch-up after the agent was offline) and then
// once per interval, until ctx is cancelled. Intended to run on its own
// goroutine.
func (s *RetentionService) Run(ctx context.Context) {
	s.prune()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.prune()
		}
	}
}

func (s *RetentionService) prune() {
	if err := s.store.PrunePrintLog(s.keepDays); err != nil {
		s.logger.LogWarning("Falha ao limpar histórico de impressão: %v", err)
		return
	}
	s.logger.LogInfo("Histórico de impressão limpo (retenção: %d dias).", s.keepDays)
}
