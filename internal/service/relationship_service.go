package service

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/d60-Lab/socialfeed/internal/model"
	"github.com/d60-Lab/socialfeed/internal/notify"
	"github.com/d60-Lab/socialfeed/internal/repository"
	"github.com/d60-Lab/socialfeed/pkg/apperr"
)

// FollowResult 关注/取关后的状态
type FollowResult struct {
	Following      bool  `json:"following"`
	FollowersCount int64 `json:"followersCount"`
}

// RelationshipService 关系链服务
type RelationshipService interface {
	// Follow 幂等关注，关注表与粉丝表在同一事务内写入
	Follow(ctx context.Context, viewerID, targetUsername string) (*FollowResult, error)
	Unfollow(ctx context.Context, viewerID, targetUsername string) (*FollowResult, error)
	IsFollowing(ctx context.Context, viewerID, targetID string) (bool, error)
}

type relationshipService struct {
	db         *gorm.DB
	users      repository.UserRepository
	followRepo repository.FollowRepository
	fanRepo    repository.FanRepository
	cache      FollowingInvalidator
	notifier   Notifier
}

// NewRelationshipService cache 与 notifier 可为 nil
func NewRelationshipService(
	db *gorm.DB,
	users repository.UserRepository,
	followRepo repository.FollowRepository,
	fanRepo repository.FanRepository,
	cache FollowingInvalidator,
	notifier Notifier,
) RelationshipService {
	return &relationshipService{
		db:         db,
		users:      users,
		followRepo: followRepo,
		fanRepo:    fanRepo,
		cache:      cache,
		notifier:   notifierOrNop(notifier),
	}
}

func (s *relationshipService) resolve(ctx context.Context, viewerID, targetUsername string) (*model.User, *model.User, error) {
	target, err := s.users.GetByUsername(ctx, strings.ToLower(strings.TrimSpace(targetUsername)))
	if err != nil {
		if isNotFound(err) {
			return nil, nil, apperr.NotFound("user not found")
		}
		return nil, nil, apperr.Server("load user failed", err)
	}
	if target.ID == viewerID {
		return nil, nil, apperr.InvalidInput("you cannot follow yourself")
	}
	viewer, err := s.users.GetByID(ctx, viewerID)
	if err != nil {
		if isNotFound(err) {
			return nil, nil, apperr.Unauthorized("user no longer exists")
		}
		return nil, nil, apperr.Server("load user failed", err)
	}
	return viewer, target, nil
}

func (s *relationshipService) Follow(ctx context.Context, viewerID, targetUsername string) (*FollowResult, error) {
	viewer, target, err := s.resolve(ctx, viewerID, targetUsername)
	if err != nil {
		return nil, err
	}

	var created bool
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if created, err = s.followRepo.WithTx(tx).Create(ctx, viewer.ID, target.ID); err != nil {
			return fmt.Errorf("write follow: %w", err)
		}
		if _, err = s.fanRepo.WithTx(tx).Create(ctx, target.ID, viewer.ID); err != nil {
			return fmt.Errorf("write fan: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, apperr.Server("follow failed", err)
	}

	s.invalidate(ctx, viewer.ID)
	if created {
		s.notifier.Notify(target.ID, notify.Notification{
			Type:  notify.TypeFollow,
			Title: "New follower",
			Body:  fmt.Sprintf("%s started following you", viewer.Username),
			Data:  map[string]interface{}{"userId": viewer.ID, "username": viewer.Username},
		})
	}
	return s.result(ctx, target.ID, true)
}

func (s *relationshipService) Unfollow(ctx context.Context, viewerID, targetUsername string) (*FollowResult, error) {
	viewer, target, err := s.resolve(ctx, viewerID, targetUsername)
	if err != nil {
		return nil, err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := s.followRepo.WithTx(tx).Delete(ctx, viewer.ID, target.ID); err != nil {
			return fmt.Errorf("delete follow: %w", err)
		}
		if _, err := s.fanRepo.WithTx(tx).Delete(ctx, target.ID, viewer.ID); err != nil {
			return fmt.Errorf("delete fan: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, apperr.Server("unfollow failed", err)
	}

	s.invalidate(ctx, viewer.ID)
	return s.result(ctx, target.ID, false)
}

func (s *relationshipService) IsFollowing(ctx context.Context, viewerID, targetID string) (bool, error) {
	if viewerID == "" || viewerID == targetID {
		return false, nil
	}
	ok, err := s.followRepo.Exists(ctx, viewerID, targetID)
	if err != nil {
		return false, apperr.Server("load relation failed", err)
	}
	return ok, nil
}

func (s *relationshipService) invalidate(ctx context.Context, userID string) {
	if s.cache != nil {
		s.cache.Invalidate(ctx, userID)
	}
}

func (s *relationshipService) result(ctx context.Context, targetID string, following bool) (*FollowResult, error) {
	n, err := s.fanRepo.CountFans(ctx, targetID)
	if err != nil {
		return nil, apperr.Server("count followers failed", err)
	}
	return &FollowResult{Following: following, FollowersCount: n}, nil
}
