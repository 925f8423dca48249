package service

import (
	"context"

	"ai-scribe-be/internal/dto"
	"ai-scribe-be/internal/pkg/logger"
	"ai-scribe-be/internal/repository/contract"

	"github.com/google/uuid"
)

type IHistoryService interface {
	List(ctx context.Context, userId uuid.UUID) ([]*dto.HistoryEntryResponse, error)
	Remove(ctx context.Context, userId uuid.UUID, id uuid.UUID) error
	Clear(ctx context.Context, userId uuid.UUID) error
}

// historyService reads and prunes the append-only note history. Creation
// happens inside finalization, never through this surface.
type historyService struct {
	historyRepo contract.HistoryRepository
	logger      logger.ILogger
}

func NewHistoryService(historyRepo contract.HistoryRepository, sysLogger logger.ILogger) IHistoryService {
	return &historyService{
		historyRepo: historyRepo,
		logger:      sysLogger,
	}
}

func (s *historyService) List(ctx context.Context, userId uuid.UUID) ([]*dto.HistoryEntryResponse, error) {
	entries, err := s.historyRepo.FindAllByUserId(ctx, userId)
	if err != nil {
		return nil, err
	}

	out := make([]*dto.HistoryEntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, dto.FromHistoryEntry(e))
	}
	return out, nil
}

func (s *historyService) Remove(ctx context.Context, userId uuid.UUID, id uuid.UUID) error {
	return s.historyRepo.Delete(ctx, userId, id)
}

func (s *historyService) Clear(ctx context.Context, userId uuid.UUID) error {
	count, err := s.historyRepo.CountByUserId(ctx, userId)
	if err == nil && count > 0 {
		s.logger.Info("History", "Clearing note history", map[string]interface{}{
			"user_id": userId.String(),
			"count":   count,
		})
	}
	return s.historyRepo.DeleteAllByUserId(ctx, userId)
}
