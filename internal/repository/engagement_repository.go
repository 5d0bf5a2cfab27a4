package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/d60-Lab/socialfeed/internal/model"
)

// LikeResult 点赞切换后的状态
type LikeResult struct {
	Liked      bool
	LikesCount int64
	AuthorID   string
}

// EngagementRepository 点赞与评论
type EngagementRepository interface {
	// ToggleLike 在锁住帖子行的事务中切换点赞，post 不存在时返回 gorm.ErrRecordNotFound
	ToggleLike(ctx context.Context, postID, userID string, at time.Time) (*LikeResult, error)
	IsLiked(ctx context.Context, postID, userID string) (bool, error)
	// AddComment 追加评论并回填作者信息，postAuthor 非 nil 时写入帖子作者 ID
	AddComment(ctx context.Context, c *model.Comment, postAuthor *string) error
	ListComments(ctx context.Context, postID string) ([]*model.Comment, error)
}

type engagementRepository struct{ db *gorm.DB }

func NewEngagementRepository(db *gorm.DB) EngagementRepository {
	return &engagementRepository{db: db}
}

func lockPost(tx *gorm.DB, postID string) (*model.Post, error) {
	var p model.Post
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Select("id", "author_id").
		Where("id = ?", postID).
		Take(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *engagementRepository) ToggleLike(ctx context.Context, postID, userID string, at time.Time) (*LikeResult, error) {
	var res LikeResult
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		p, err := lockPost(tx, postID)
		if err != nil {
			return err
		}
		res.AuthorID = p.AuthorID

		del := tx.Where("post_id = ? AND user_id = ?", postID, userID).Delete(&model.Like{})
		if del.Error != nil {
			return del.Error
		}
		if del.RowsAffected == 0 {
			if err := tx.Create(&model.Like{PostID: postID, UserID: userID, CreatedAt: at}).Error; err != nil {
				return err
			}
			res.Liked = true
		}
		return tx.Model(&model.Like{}).Where("post_id = ?", postID).Count(&res.LikesCount).Error
	})
	if err != nil {
		return nil, err
	}
	return &res, nil
}

func (r *engagementRepository) IsLiked(ctx context.Context, postID, userID string) (bool, error) {
	var cnt int64
	err := r.db.WithContext(ctx).Model(&model.Like{}).
		Where("post_id = ? AND user_id = ?", postID, userID).
		Count(&cnt).Error
	return cnt > 0, err
}

func (r *engagementRepository) AddComment(ctx context.Context, c *model.Comment, postAuthor *string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		p, err := lockPost(tx, c.PostID)
		if err != nil {
			return err
		}
		if postAuthor != nil {
			*postAuthor = p.AuthorID
		}
		if err := tx.Omit("Author").Create(c).Error; err != nil {
			return err
		}
		var a model.Author
		if err := tx.Select("id", "username", "name", "avatar").Where("id = ?", c.AuthorID).Take(&a).Error; err != nil {
			return err
		}
		c.Author = &a
		return nil
	})
}

func (r *engagementRepository) ListComments(ctx context.Context, postID string) ([]*model.Comment, error) {
	comments := make([]*model.Comment, 0)
	err := r.db.WithContext(ctx).
		Preload("Author", preloadAuthor).
		Where("post_id = ?", postID).
		Order("created_at").Order("id").
		Find(&comments).Error
	return comments, err
}
