package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/d60-Lab/socialfeed/internal/model"
)

// 计数由子查询实时得出，与集合本身不会出现偏差
const postColumns = `posts.*,
	(SELECT COUNT(*) FROM post_likes WHERE post_likes.post_id = posts.id) AS likes_count,
	(SELECT COUNT(*) FROM post_comments WHERE post_comments.post_id = posts.id) AS comments_count,
	(SELECT COUNT(*) FROM posts AS reposts WHERE reposts.repost_of = posts.id) AS reposts_count`

// PostFilter 描述 feed / explore / 用户主页的查询条件
type PostFilter struct {
	Visibility string
	// AuthorIDs 为 nil 表示不限作者
	AuthorIDs []string
	// Tag 精确匹配（已小写）；非空时忽略 Search
	Tag string
	// Search 对正文或任一标签做不区分大小写的子串匹配
	Search string
}

// PostRepository 帖子仓储
type PostRepository interface {
	WithTx(tx *gorm.DB) PostRepository
	// Create 在一个事务内写入帖子、媒体与标签
	Create(ctx context.Context, p *model.Post) error
	GetByID(ctx context.Context, id string, withComments bool) (*model.Post, error)
	// Delete 删除帖子及其点赞、评论、标签、媒体记录
	Delete(ctx context.Context, id string) error
	Find(ctx context.Context, f PostFilter, offset, limit int) ([]*model.Post, int64, error)
}

type postRepository struct{ db *gorm.DB }

func NewPostRepository(db *gorm.DB) PostRepository { return &postRepository{db: db} }

func (r *postRepository) WithTx(tx *gorm.DB) PostRepository { return &postRepository{db: tx} }

func (r *postRepository) Create(ctx context.Context, p *model.Post) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(p).Error
	})
}

func preloadAuthor(db *gorm.DB) *gorm.DB {
	return db.Select("id", "username", "name", "avatar")
}

func preloadMedia(db *gorm.DB) *gorm.DB {
	return db.Order("position")
}

func (r *postRepository) GetByID(ctx context.Context, id string, withComments bool) (*model.Post, error) {
	tx := r.db.WithContext(ctx).
		Select(postColumns).
		Preload("Author", preloadAuthor).
		Preload("Media", preloadMedia).
		Preload("TagRows")
	if withComments {
		tx = tx.
			Preload("Comments", func(db *gorm.DB) *gorm.DB { return db.Order("created_at").Order("id") }).
			Preload("Comments.Author", preloadAuthor)
	}
	var p model.Post
	if err := tx.Where("posts.id = ?", id).Take(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *postRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, m := range []interface{}{&model.Like{}, &model.Comment{}, &model.PostTag{}, &model.Media{}} {
			if err := tx.Where("post_id = ?", id).Delete(m).Error; err != nil {
				return err
			}
		}
		return tx.Where("id = ?", id).Delete(&model.Post{}).Error
	})
}

func (f PostFilter) apply(db *gorm.DB) *gorm.DB {
	if f.Visibility != "" {
		db = db.Where("posts.visibility = ?", f.Visibility)
	}
	if f.AuthorIDs != nil {
		db = db.Where("posts.author_id IN ?", f.AuthorIDs)
	}
	tags := db.Session(&gorm.Session{NewDB: true}).Model(&model.PostTag{}).Select("post_id")
	switch {
	case f.Tag != "":
		db = db.Where("posts.id IN (?)", tags.Where("tag = ?", f.Tag))
	case strings.TrimSpace(f.Search) != "":
		q := strings.TrimSpace(f.Search)
		// 正文匹配折叠列；标签入库时已转小写
		db = db.Where("(posts.text_folded LIKE ? ESCAPE '\\' OR posts.id IN (?))",
			"%"+EscapeLike(model.Fold(q))+"%",
			tags.Where("tag LIKE ? ESCAPE '\\'", "%"+EscapeLike(strings.ToLower(q))+"%"))
	}
	return db
}

func (r *postRepository) Find(ctx context.Context, f PostFilter, offset, limit int) ([]*model.Post, int64, error) {
	if f.AuthorIDs != nil && len(f.AuthorIDs) == 0 {
		return []*model.Post{}, 0, nil
	}

	var total int64
	if err := r.db.WithContext(ctx).Model(&model.Post{}).Scopes(f.apply).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	posts := make([]*model.Post, 0, limit)
	err := r.db.WithContext(ctx).
		Select(postColumns).
		Scopes(f.apply).
		Preload("Author", preloadAuthor).
		Preload("Media", preloadMedia).
		Preload("TagRows").
		Order("posts.created_at DESC").Order("posts.id DESC").
		Offset(offset).Limit(limit).
		Find(&posts).Error
	if err != nil {
		return nil, 0, err
	}
	return posts, total, nil
}
