package implementation

import (
	"context"

	"ai-scribe-be/internal/entity"
	"ai-scribe-be/internal/mapper"
	"ai-scribe-be/internal/model"
	"ai-scribe-be/internal/repository/contract"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type HistoryRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.HistoryMapper
}

func NewHistoryRepository(db *gorm.DB) contract.HistoryRepository {
	return &HistoryRepositoryImpl{
		db:     db,
		mapper: mapper.NewHistoryMapper(),
	}
}

func (r *HistoryRepositoryImpl) Create(ctx context.Context, entry *entity.HistoryEntry) error {
	m := r.mapper.ToModel(entry)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*entry = *r.mapper.ToEntity(m)
	return nil
}

func (r *HistoryRepositoryImpl) Delete(ctx context.Context, userId uuid.UUID, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("user_id = ?", userId).
		Delete(&model.HistoryEntry{}, id).Error
}

func (r *HistoryRepositoryImpl) DeleteAllByUserId(ctx context.Context, userId uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("user_id = ?", userId).
		Delete(&model.HistoryEntry{}).Error
}

func (r *HistoryRepositoryImpl) FindAllByUserId(ctx context.Context, userId uuid.UUID) ([]*entity.HistoryEntry, error) {
	var models []*model.HistoryEntry
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userId).
		Order("created_at DESC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

func (r *HistoryRepositoryImpl) CountByUserId(ctx context.Context, userId uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.HistoryEntry{}).
		Where("user_id = ?", userId).
		Count(&count).Error
	return count, err
}
