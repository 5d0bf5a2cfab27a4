package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/d60-Lab/socialfeed/internal/model"
)

// FanRepository 粉丝表（user <- fan），与关注表在同一事务中维护
type FanRepository interface {
	WithTx(tx *gorm.DB) FanRepository
	Create(ctx context.Context, userID, fanID string) (bool, error)
	Delete(ctx context.Context, userID, fanID string) (bool, error)
	Exists(ctx context.Context, userID, fanID string) (bool, error)
	ListFans(ctx context.Context, userID string, offset, limit int) ([]*model.Fan, error)
	CountFans(ctx context.Context, userID string) (int64, error)
}

type fanRepository struct{ db *gorm.DB }

func NewFanRepository(db *gorm.DB) FanRepository { return &fanRepository{db: db} }

func (r *fanRepository) WithTx(tx *gorm.DB) FanRepository { return &fanRepository{db: tx} }

func (r *fanRepository) Create(ctx context.Context, userID, fanID string) (bool, error) {
	f := &model.Fan{ID: uuid.New().String(), UserID: userID, FanID: fanID}
	res := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(f)
	return res.RowsAffected > 0, res.Error
}

func (r *fanRepository) Delete(ctx context.Context, userID, fanID string) (bool, error) {
	res := r.db.WithContext(ctx).Where("user_id = ? AND fan_id = ?", userID, fanID).Delete(&model.Fan{})
	return res.RowsAffected > 0, res.Error
}

func (r *fanRepository) Exists(ctx context.Context, userID, fanID string) (bool, error) {
	var cnt int64
	err := r.db.WithContext(ctx).Model(&model.Fan{}).Where("user_id = ? AND fan_id = ?", userID, fanID).Count(&cnt).Error
	return cnt > 0, err
}

func (r *fanRepository) ListFans(ctx context.Context, userID string, offset, limit int) ([]*model.Fan, error) {
	var res []*model.Fan
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").Order("id").
		Offset(offset).Limit(limit).
		Find(&res).Error
	return res, err
}

func (r *fanRepository) CountFans(ctx context.Context, userID string) (int64, error) {
	var cnt int64
	err := r.db.WithContext(ctx).Model(&model.Fan{}).Where("user_id = ?", userID).Count(&cnt).Error
	return cnt, err
}
