package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/d60-Lab/socialfeed/internal/model"
	"github.com/d60-Lab/socialfeed/internal/notify"
	"github.com/d60-Lab/socialfeed/internal/repository"
	"github.com/d60-Lab/socialfeed/pkg/apperr"
)

const maxCommentLength = 1000

type LikeResult struct {
	Liked      bool  `json:"liked"`
	LikesCount int64 `json:"likesCount"`
}

// EngagementService 点赞与评论
type EngagementService interface {
	// ToggleLike 每次调用恰好翻转一次点赞状态
	ToggleLike(ctx context.Context, viewerID, postID string) (*LikeResult, error)
	// AddComment 追加评论；重试会产生重复评论
	AddComment(ctx context.Context, viewerID, postID, text string) (*model.Comment, error)
}

type engagementService struct {
	repo     repository.EngagementRepository
	users    repository.UserRepository
	notifier Notifier
	now      func() time.Time
}

func NewEngagementService(repo repository.EngagementRepository, users repository.UserRepository, notifier Notifier) EngagementService {
	return &engagementService{repo: repo, users: users, notifier: notifierOrNop(notifier), now: time.Now}
}

func (s *engagementService) ToggleLike(ctx context.Context, viewerID, postID string) (*LikeResult, error) {
	res, err := s.repo.ToggleLike(ctx, postID, viewerID, s.now().UTC())
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("post not found")
		}
		return nil, apperr.Server("toggle like failed", err)
	}
	if res.Liked && res.AuthorID != viewerID {
		notifyAuthor(ctx, s.users, s.notifier, res.AuthorID, viewerID, notify.Notification{
			Type:  notify.TypeLike,
			Title: "New like",
			Body:  "%s liked your post",
		}, postID)
	}
	return &LikeResult{Liked: res.Liked, LikesCount: res.LikesCount}, nil
}

func (s *engagementService) AddComment(ctx context.Context, viewerID, postID, text string) (*model.Comment, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, apperr.InvalidInput("comment text is required")
	}
	id, err := uuid.NewV7()
	if err != nil {
		return nil, apperr.Server("add comment failed", err)
	}
	c := &model.Comment{
		ID:        id.String(),
		PostID:    postID,
		AuthorID:  viewerID,
		Text:      truncateRunes(text, maxCommentLength),
		CreatedAt: s.now().UTC(),
	}
	var authorID string
	if err := s.repo.AddComment(ctx, c, &authorID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("post not found")
		}
		return nil, apperr.Server("add comment failed", err)
	}
	if authorID != viewerID {
		notifyAuthor(ctx, s.users, s.notifier, authorID, viewerID, notify.Notification{
			Type:  notify.TypeComment,
			Title: "New comment",
			Body:  "%s commented on your post",
		}, postID)
	}
	return c, nil
}
